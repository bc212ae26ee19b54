package ui

import (
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss/v2"
	"github.com/lucasb-eyer/go-colorful"
)

type Styles struct {
	Normal   lipgloss.Style
	Selected lipgloss.Style
	Cursor   lipgloss.Style
	Today    lipgloss.Style
	Weekend  lipgloss.Style
	Header   lipgloss.Style
	Grid     lipgloss.Style
	Now      lipgloss.Style
	AllDay   lipgloss.Style
	Help     lipgloss.Style
	Message  lipgloss.Style
	Border   lipgloss.Style

	// EventColor is used for appointments without their own colour.
	EventColor color.Color
}

// namedColors maps the plain names accepted in "color" config lines to ANSI
// palette entries.
var namedColors = map[string]string{
	"black":   "0",
	"red":     "1",
	"green":   "2",
	"yellow":  "3",
	"blue":    "4",
	"magenta": "5",
	"cyan":    "6",
	"white":   "7",
	"gray":    "8",
	"grey":    "8",
}

// parseColor accepts "#rrggbb", an ANSI index, or a basic colour name. It
// returns nil for anything else, including "default".
func parseColor(spec string) color.Color {
	spec = strings.ToLower(strings.TrimSpace(spec))
	if spec == "" || spec == "default" {
		return nil
	}
	if idx, ok := namedColors[spec]; ok {
		spec = idx
	}
	if strings.HasPrefix(spec, "#") {
		if _, err := colorful.Hex(spec); err != nil {
			return nil
		}
	}
	return lipgloss.Color(spec)
}

// NewStyles builds the styles from the config colour map.
func NewStyles(colors map[string]string) Styles {
	pick := func(name, fallback string) color.Color {
		if c := parseColor(colors[name]); c != nil {
			return c
		}
		return lipgloss.Color(fallback)
	}

	today := pick("today", "#f59e0b")
	selected := pick("selected", "#f472b6")
	header := pick("header", "#e5e7eb")
	grid := pick("grid", "#4b5563")

	return Styles{
		Normal: lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")),
		Selected: lipgloss.NewStyle().
			Foreground(lipgloss.Color("235")).
			Background(selected).
			Bold(true),
		Cursor: lipgloss.NewStyle().
			Background(lipgloss.Color("236")),
		Today: lipgloss.NewStyle().
			Foreground(today).
			Bold(true),
		Weekend: lipgloss.NewStyle().
			Foreground(pick("weekend", "#60a5fa")),
		Header: lipgloss.NewStyle().
			Foreground(header).
			Bold(true),
		Grid: lipgloss.NewStyle().
			Foreground(grid),
		Now: lipgloss.NewStyle().
			Foreground(pick("now", "#ef4444")).
			Bold(true),
		AllDay: lipgloss.NewStyle().
			Foreground(pick("allday", "#10b981")),
		Help: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")),
		Message: lipgloss.NewStyle().
			Foreground(today).
			Background(lipgloss.Color("235")).
			Padding(0, 1),
		Border: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(grid),

		EventColor: pick("event", "#3b82f6"),
	}
}

// blockColors returns the background for an appointment block and a
// foreground that stays readable on it.
func (s Styles) blockColors(spec string) (bg, fg color.Color) {
	bg = parseColor(spec)
	if bg == nil {
		bg = s.EventColor
	}
	return bg, contrastText(bg)
}

func contrastText(bg color.Color) color.Color {
	c, ok := colorful.MakeColor(bg)
	if !ok {
		return lipgloss.Color("255")
	}
	l, _, _ := c.Lab()
	if l > 0.6 {
		return lipgloss.Color("232")
	}
	return lipgloss.Color("255")
}
