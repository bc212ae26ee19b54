package main

import (
	"os"

	"github.com/adam-palmer1/calview/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
