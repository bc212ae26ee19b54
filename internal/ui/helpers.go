package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss/v2"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wordwrap"

	"github.com/adam-palmer1/calview/internal/appointment"
	"github.com/adam-palmer1/calview/internal/calendar"
)

// createSidebarLayer stacks the mini calendar, the selected slot, what is
// happening now and the all-day list.
func (m *Model) createSidebarLayer(day calendar.Day, x, width int) *lipgloss.Layer {
	inner := width - 4 // border and padding
	if inner < 10 {
		inner = 10
	}

	sections := []string{
		m.renderMiniCalendar(),
		m.renderSelectedSlotEvents(day, inner),
	}
	if now := m.renderNow(inner); now != "" {
		sections = append(sections, now)
	}
	sections = append(sections, m.renderAllDayList(day, inner))

	sidebar := lipgloss.JoinVertical(lipgloss.Left, sections...)
	sidebar = lipgloss.NewStyle().MaxHeight(m.gridRows() + 1).Render(sidebar)
	return lipgloss.NewLayer(sidebar).X(x).Y(0).Z(zSidebar)
}

// weekdayHeader returns two-letter weekday names starting at first.
func weekdayHeader(first time.Weekday) string {
	names := make([]string, 7)
	for i := range names {
		names[i] = time.Weekday((int(first) + i) % 7).String()[:2]
	}
	return strings.Join(names, " ")
}

// renderMiniCalendar renders the selected month, weeks starting on the
// configured day.
func (m *Model) renderMiniCalendar() string {
	var lines []string

	lines = append(lines, m.styles.Header.Render(m.selectedDate.Format("January 2006")))
	lines = append(lines, weekdayHeader(m.config.WeekStartDay))

	firstDay := time.Date(m.selectedDate.Year(), m.selectedDate.Month(), 1, 0, 0, 0, 0, m.selectedDate.Location())
	day := calendar.WeekStart(firstDay, m.config.WeekStartDay)
	today := calendar.StartOfDay(m.clock())

	for week := 0; week < 6; week++ {
		cells := make([]string, 7)
		for i := range cells {
			dayStr := fmt.Sprintf("%2d", day.Day())

			switch {
			case day.Month() != m.selectedDate.Month():
				dayStr = m.styles.Help.Render(dayStr) // dimmed
			case day.Equal(m.selectedDate):
				dayStr = m.styles.Selected.Render(dayStr)
			case day.Equal(today):
				dayStr = m.styles.Today.Render(dayStr)
			case day.Weekday() == time.Saturday || day.Weekday() == time.Sunday:
				dayStr = m.styles.Weekend.Render(dayStr)
			default:
				dayStr = m.styles.Normal.Render(dayStr)
			}

			cells[i] = dayStr
			day = day.AddDate(0, 0, 1)
		}
		lines = append(lines, strings.Join(cells, " "))

		if day.Month() != m.selectedDate.Month() {
			break
		}
	}

	return m.styles.Border.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// renderSelectedSlotEvents lists the appointments overlapping the selected
// slot of day.
func (m *Model) renderSelectedSlotEvents(day calendar.Day, width int) string {
	from := m.selectedMinute()
	slotStart := m.selectedDate.Add(time.Duration(from) * time.Minute)
	header := m.styles.Header.Render(slotStart.Format("Mon Jan 2 " + m.config.TimeFormat))

	lines := []string{header}
	placements := calendar.Between(day, from, from+m.timeIncrement)
	if len(placements) == 0 {
		lines = append(lines, m.styles.Help.Render("No appointments"))
	}
	for i, p := range placements {
		if i > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, m.describe(p.Item, width)...)
	}

	return m.styles.Border.Width(width + 4).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// describe renders the details of one appointment, wrapped to width.
func (m *Model) describe(item calendar.Item, width int) []string {
	a := item.Appt
	title := a.Title
	if title == "" {
		title = "(untitled)"
	}

	bg, _ := m.styles.blockColors(a.Color)
	marker := lipgloss.NewStyle().Foreground(bg).Render("■")

	lines := []string{marker + " " + m.styles.Normal.Bold(true).Render(wordwrap.String(title, width-2))}
	lines = append(lines, m.styles.Help.Render(m.formatSpan(item)))
	if a.Location != "" {
		lines = append(lines, wordwrap.String("@ "+a.Location, width))
	}
	if len(a.Tags) > 0 {
		lines = append(lines, m.styles.Help.Render(truncate.StringWithTail(strings.Join(a.Tags, ", "), uint(width), "…")))
	}
	if m.showEventIDs {
		lines = append(lines, m.styles.Grid.Render(truncate.StringWithTail("id "+a.ID, uint(width), "…")))
	}
	if a.Description != "" {
		desc := strings.Split(wordwrap.String(a.Description, width), "\n")
		if len(desc) > 4 {
			desc = append(desc[:3], "…")
		}
		lines = append(lines, desc...)
	}
	return lines
}

// renderNow lists what is happening at the current minute, if anything.
func (m *Model) renderNow(width int) string {
	now := m.clock()
	today := calendar.DayLayout(m.appts, now)
	active := calendar.ActiveAt(today, now.Hour()*60+now.Minute())
	if len(active) == 0 {
		return ""
	}

	lines := []string{m.styles.Now.Render("Now")}
	for _, p := range active {
		lines = append(lines, truncate.StringWithTail("• "+p.Item.Appt.Title, uint(width), "…"))
	}
	return lipgloss.NewStyle().Padding(0, 1).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// renderAllDayList lists the all-day appointments of day.
func (m *Model) renderAllDayList(day calendar.Day, width int) string {
	lines := []string{m.styles.AllDay.Bold(true).Render("All day")}
	if len(day.AllDay) == 0 {
		lines = append(lines, m.styles.Help.Render("(none)"))
	}
	for _, a := range day.AllDay {
		lines = append(lines, m.styles.AllDay.Render(truncate.StringWithTail("• "+allDayLabel(a), uint(width), "…")))
	}
	return lipgloss.NewStyle().Padding(0, 1).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// allDayLabel adds the date range for appointments spanning several days.
func allDayLabel(a appointment.Appointment) string {
	days := int(a.End.Sub(a.Start).Hours()+0.5) / 24
	if days <= 1 {
		return a.Title
	}
	last := a.End.AddDate(0, 0, -1)
	return fmt.Sprintf("%s (%s–%s)", a.Title, a.Start.Format("Jan 2"), last.Format("Jan 2"))
}
