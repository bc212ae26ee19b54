package ui

import (
	"github.com/charmbracelet/lipgloss/v2"
)

func (m *Model) viewHelp() string {
	lines := []string{
		m.styles.Header.Render("calview help"),
		"",
		m.help.FullHelpView(m.keys.FullHelp()),
		"",
		m.styles.Normal.Render("Go to accepts:"),
		m.styles.Help.Render("  today, tomorrow, yesterday, next fri, last monday"),
		m.styles.Help.Render("  in 3 days, 2 weeks ago, +5d, -1w"),
		m.styles.Help.Render("  2025-08-25, 8/25, aug 25, 25 august 2025"),
		m.styles.Help.Render("  with an optional time: 2pm, 14:30, noon, now"),
		"",
		m.styles.Help.Render("Press any key to return..."),
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// viewGoto keeps the previous view on screen; the status bar shows the
// prompt while the mode is ViewGoto.
func (m *Model) viewGoto() string {
	if m.prevMode == ViewWeek {
		return m.renderWeekView()
	}
	return m.renderDayView()
}
