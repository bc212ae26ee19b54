package cmd

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/adam-palmer1/calview/internal/appointment"
	"github.com/adam-palmer1/calview/internal/config"
	appLog "github.com/adam-palmer1/calview/internal/log"
	"github.com/adam-palmer1/calview/internal/parser"
	"github.com/adam-palmer1/calview/internal/ui"
)

var (
	cfgFile  string
	files    []string
	dateExpr string
	weekView bool
)

var rootCmd = &cobra.Command{
	Use:   "calview",
	Short: "A terminal calendar that lays out overlapping appointments side by side",
	Long: `calview shows appointments from JSON and iCalendar files in a day or
week view. Appointments that overlap in time are placed in side-by-side
columns so that none of them hide another.`,
	SilenceUsage: true,
	RunE:         runTUI,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (rc or .yaml); searched for when empty")
	rootCmd.PersistentFlags().StringSliceVarP(&files, "file", "f", []string{}, "appointment file(s), .json or .ics (can be specified multiple times)")
	rootCmd.PersistentFlags().StringVar(&dateExpr, "date", "", `day to show, e.g. "tomorrow", "next mon 2pm" or "2025-08-25"`)
	rootCmd.PersistentFlags().BoolVar(&weekView, "week", false, "show the whole week")
}

func loadConfig() (*config.Config, error) {
	if cfgFile != "" {
		return config.LoadFile(config.ExpandHome(cfgFile))
	}
	return config.LoadConfig()
}

// newSource reads the --file flags, falling back to the configured files.
func newSource(cfg *config.Config) (*appointment.CompositeSource, error) {
	paths := cfg.AppointmentFiles
	if len(files) > 0 {
		paths = make([]string, len(files))
		for i, f := range files {
			paths[i] = config.ExpandHome(f)
		}
		cfg.AppointmentFiles = paths
	}

	source, err := appointment.NewSource(paths)
	if err != nil {
		return nil, fmt.Errorf("cannot open appointment files: %w", err)
	}
	return source, nil
}

// resolveDate parses expr relative to now. An empty expr means now.
func resolveDate(expr string, now time.Time) (parser.Target, error) {
	if expr == "" {
		expr = "now"
	}
	p := parser.NewTimeParser()
	p.SetNow(now)
	target, err := p.Parse(expr)
	if err != nil {
		return parser.Target{}, fmt.Errorf("invalid --date %q: %w", expr, err)
	}
	return target, nil
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// The TUI owns the terminal: log to the configured file or nowhere.
	flush, err := appLog.Init(appLog.Options{
		Level:   cfg.LogLevel,
		Path:    cfg.LogFile,
		Discard: cfg.LogFile == "",
	})
	if err != nil {
		return fmt.Errorf("cannot open log file: %w", err)
	}
	defer flush()

	start, err := resolveDate(dateExpr, time.Now())
	if err != nil {
		return err
	}
	if weekView {
		cfg.StartupView = "week"
	}

	source, err := newSource(cfg)
	if err != nil {
		return err
	}
	appLog.Info("starting", "files", cfg.AppointmentFiles, "config", cfg.Path)

	model := ui.NewModel(cfg, source, start)
	p := tea.NewProgram(model, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running program: %w", err)
	}

	return nil
}
