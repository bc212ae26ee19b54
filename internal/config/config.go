package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// File settings
	AppointmentFiles []string

	// Display settings
	WeekStartDay  time.Weekday
	TimeFormat    string
	DateFormat    string
	TimeIncrement int     // minutes per grid row: 15, 30 or 60
	SlotHeight    int     // terminal rows per increment
	Gutter        float64 // subtracted from block height and width
	DayStartHour  int     // first hour shown when the view opens
	StartupView   string  // "day" or "week"
	ShowIDs       bool

	// UI settings
	Colors      map[string]string
	KeyBindings map[string]string // action -> key

	// Behavior settings
	AutoRefresh bool
	RefreshRate time.Duration

	// Logging
	LogFile  string
	LogLevel string

	// Path is the file the config was read from, empty for defaults.
	Path string
}

var (
	setRe   = regexp.MustCompile(`^set\s+(\w+)\s+(.+)$`)
	bindRe  = regexp.MustCompile(`^bind\s+(\S+)\s+(\S+)$`)
	colorRe = regexp.MustCompile(`^color\s+(\w+)\s+(.+)$`)
)

func DefaultConfig() *Config {
	home, _ := os.UserHomeDir()

	return &Config{
		AppointmentFiles: []string{filepath.Join(home, ".local", "share", "calview", "appointments.json")},

		WeekStartDay:  time.Monday,
		TimeFormat:    "15:04",
		DateFormat:    "Mon Jan 2, 2006",
		TimeIncrement: 30,
		SlotHeight:    1,
		Gutter:        0,
		DayStartHour:  8,
		StartupView:   "day",

		Colors: map[string]string{
			"event":    "#3b82f6",
			"today":    "#f59e0b",
			"selected": "#f472b6",
			"now":      "#ef4444",
			"grid":     "#4b5563",
			"header":   "#e5e7eb",
			"weekend":  "#60a5fa",
			"allday":   "#10b981",
		},

		KeyBindings: map[string]string{
			"quit":       "q",
			"help":       "?",
			"today":      "t",
			"refresh":    "r",
			"day_view":   "d",
			"week_view":  "w",
			"next_day":   "l",
			"prev_day":   "h",
			"next_week":  "L",
			"prev_week":  "H",
			"slot_down":  "j",
			"slot_up":    "k",
			"zoom":       "z",
			"goto_date":  "g",
			"toggle_ids": "i",
		},

		AutoRefresh: true,
		RefreshRate: 30 * time.Second,

		LogLevel: "info",
	}
}

// SearchPaths lists the config locations in the order they are tried.
func SearchPaths() []string {
	home, _ := os.UserHomeDir()
	var paths []string
	if p := os.Getenv("CALVIEW_CONFIG"); p != "" {
		paths = append(paths, p)
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		paths = append(paths, filepath.Join(xdg, "calview", "calviewrc"))
	}
	if home != "" {
		paths = append(paths,
			filepath.Join(home, ".config", "calview", "calviewrc"),
			filepath.Join(home, ".calviewrc"),
		)
	}
	return paths
}

// LoadConfig reads the first config file found in SearchPaths. Missing files
// are not an error; the defaults are returned.
func LoadConfig() (*Config, error) {
	for _, path := range SearchPaths() {
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}

	config := DefaultConfig()
	config.Normalize()
	return config, nil
}

// LoadFile reads path on top of the defaults. Files ending in .yaml or .yml
// are read as YAML, anything else as rc lines.
func LoadFile(path string) (*Config, error) {
	config := DefaultConfig()

	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = config.loadFromYAML(path)
	default:
		err = config.loadFromFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("error loading config from %s: %w", path, err)
	}

	config.Path = path
	config.Normalize()
	return config, nil
}

func (c *Config) loadFromFile(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		if err := c.parseLine(scanner.Text()); err != nil {
			return fmt.Errorf("line %d: %w", lineNum, err)
		}
	}

	return scanner.Err()
}

func (c *Config) parseLine(line string) error {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return nil
	}

	// set variable value
	if matches := setRe.FindStringSubmatch(line); matches != nil {
		return c.setVariable(matches[1], matches[2])
	}

	// bind key action
	if matches := bindRe.FindStringSubmatch(line); matches != nil {
		c.KeyBindings[matches[2]] = matches[1]
		return nil
	}

	// color element color_spec
	if matches := colorRe.FindStringSubmatch(line); matches != nil {
		c.Colors[matches[1]] = strings.Trim(matches[2], `"'`)
		return nil
	}

	return fmt.Errorf("unknown config line: %s", line)
}

// loadFromYAML accepts the same variable names as the rc form at the top
// level, plus "colors" and "bindings" maps.
func (c *Config) loadFromYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var doc map[string]yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return err
	}

	names := make([]string, 0, len(doc))
	for name := range doc {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		node := doc[name]
		switch name {
		case "colors":
			var colors map[string]string
			if err := node.Decode(&colors); err != nil {
				return fmt.Errorf("line %d: colors: %w", node.Line, err)
			}
			for k, v := range colors {
				c.Colors[k] = v
			}

		case "bindings":
			var bindings map[string]string
			if err := node.Decode(&bindings); err != nil {
				return fmt.Errorf("line %d: bindings: %w", node.Line, err)
			}
			for action, key := range bindings {
				c.KeyBindings[action] = key
			}

		default:
			value, err := scalarValue(&node)
			if err != nil {
				return fmt.Errorf("line %d: %s: %w", node.Line, name, err)
			}
			if err := c.setVariable(name, value); err != nil {
				return fmt.Errorf("line %d: %w", node.Line, err)
			}
		}
	}

	return nil
}

// scalarValue flattens a scalar or a list of scalars to the rc string form.
func scalarValue(node *yaml.Node) (string, error) {
	switch node.Kind {
	case yaml.ScalarNode:
		return node.Value, nil
	case yaml.SequenceNode:
		var items []string
		if err := node.Decode(&items); err != nil {
			return "", err
		}
		return strings.Join(items, ","), nil
	default:
		return "", fmt.Errorf("expected a value or a list")
	}
}

func (c *Config) setVariable(name, value string) error {
	value = strings.Trim(strings.TrimSpace(value), `"'`)

	switch name {
	case "appointment_file", "appointment_files":
		var files []string
		for _, file := range strings.Split(value, ",") {
			if file = strings.TrimSpace(file); file != "" {
				files = append(files, ExpandHome(file))
			}
		}
		c.AppointmentFiles = files

	case "week_start_day":
		day, err := ParseWeekday(value)
		if err != nil {
			return err
		}
		c.WeekStartDay = day

	case "time_format":
		c.TimeFormat = value

	case "date_format":
		c.DateFormat = value

	case "time_increment":
		n, err := strconv.Atoi(value)
		if err != nil || (n != 15 && n != 30 && n != 60) {
			return fmt.Errorf("invalid time_increment: %s (want 15, 30 or 60)", value)
		}
		c.TimeIncrement = n

	case "slot_height":
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 {
			return fmt.Errorf("invalid slot_height: %s", value)
		}
		c.SlotHeight = n

	case "gutter":
		g, err := strconv.ParseFloat(value, 64)
		if err != nil || g < 0 {
			return fmt.Errorf("invalid gutter: %s", value)
		}
		c.Gutter = g

	case "day_start_hour":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 || n > 23 {
			return fmt.Errorf("invalid day_start_hour: %s", value)
		}
		c.DayStartHour = n

	case "startup_view":
		switch strings.ToLower(value) {
		case "day", "week":
			c.StartupView = strings.ToLower(value)
		default:
			return fmt.Errorf("invalid startup_view: %s", value)
		}

	case "show_ids":
		c.ShowIDs = parseBool(value)

	case "auto_refresh":
		c.AutoRefresh = parseBool(value)

	case "refresh_rate":
		rate, err := time.ParseDuration(value)
		if err != nil {
			// Try parsing as seconds
			if seconds, err2 := strconv.Atoi(value); err2 == nil {
				rate = time.Duration(seconds) * time.Second
			} else {
				return fmt.Errorf("invalid refresh_rate: %s", value)
			}
		}
		c.RefreshRate = rate

	case "log_file":
		c.LogFile = ExpandHome(value)

	case "log_level":
		c.LogLevel = strings.ToLower(value)

	default:
		return fmt.Errorf("unknown config variable: %s", name)
	}

	return nil
}

// Normalize fills in zero or out-of-range values so partially written
// configs still behave.
func (c *Config) Normalize() {
	switch c.TimeIncrement {
	case 15, 30, 60:
	default:
		c.TimeIncrement = 30
	}
	if c.SlotHeight < 1 {
		c.SlotHeight = 1
	}
	if c.Gutter < 0 {
		c.Gutter = 0
	}
	if c.DayStartHour < 0 || c.DayStartHour > 23 {
		c.DayStartHour = 8
	}
	if c.StartupView != "week" {
		c.StartupView = "day"
	}
	if c.RefreshRate < time.Second {
		c.RefreshRate = 30 * time.Second
	}
	if c.TimeFormat == "" {
		c.TimeFormat = "15:04"
	}
	if c.DateFormat == "" {
		c.DateFormat = "Mon Jan 2, 2006"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Colors == nil {
		c.Colors = map[string]string{}
	}
	if c.KeyBindings == nil {
		c.KeyBindings = map[string]string{}
	}
}

// ParseWeekday accepts full or three-letter English names, or 0-6.
func ParseWeekday(value string) (time.Weekday, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	if n, err := strconv.Atoi(v); err == nil && n >= 0 && n <= 6 {
		return time.Weekday(n), nil
	}
	for d := time.Sunday; d <= time.Saturday; d++ {
		name := strings.ToLower(d.String())
		if v == name || v == name[:3] {
			return d, nil
		}
	}
	return time.Sunday, fmt.Errorf("invalid week_start_day: %s", value)
}

// ExpandHome expands a leading ~/ to the user's home directory.
func ExpandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

func parseBool(value string) bool {
	return strings.ToLower(value) == "true" || value == "1" || strings.ToLower(value) == "yes"
}
