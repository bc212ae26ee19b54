package ui

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss/v2"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wordwrap"

	"github.com/adam-palmer1/calview/internal/calendar"
)

// Layer depths. Later layers with a higher Z are drawn on top.
const (
	zGrid    = 0
	zBlocks  = 10
	zNow     = 900
	zSidebar = 1000
	zStatus  = 2000
)

// renderDayView renders one day using a lipgloss Canvas.
func (m *Model) renderDayView() string {
	day := calendar.DayLayout(m.appts, m.selectedDate)
	scheduleWidth := m.scheduleWidth()
	timeWidth := m.timeColumnWidth()
	areaWidth := scheduleWidth - timeWidth

	var layers []*lipgloss.Layer
	layers = append(layers, m.dayHeaderLayer(day, timeWidth, areaWidth))
	layers = append(layers, m.createTimeColumnLayers()...)
	layers = append(layers, m.cursorLayer(timeWidth, areaWidth))
	layers = append(layers, m.createBlockLayers(day, timeWidth, areaWidth)...)
	layers = append(layers, m.nowLineLayers(day.Date, timeWidth, areaWidth)...)

	return m.finishCanvas(day, scheduleWidth, layers)
}

// renderWeekView renders seven day columns, each laid out on its own.
func (m *Model) renderWeekView() string {
	week := calendar.WeekLayout(m.appts, m.selectedDate, m.config.WeekStartDay)
	scheduleWidth := m.scheduleWidth()
	timeWidth := m.timeColumnWidth()
	dayWidth := (scheduleWidth - timeWidth) / 7
	if dayWidth < 3 {
		dayWidth = 3
	}

	var layers []*lipgloss.Layer
	layers = append(layers, m.createTimeColumnLayers()...)

	selected := m.selectedDate
	var selectedDay calendar.Day
	for i, day := range week.Days {
		x := timeWidth + i*dayWidth
		layers = append(layers, m.weekHeaderLayer(day.Date, x, dayWidth))
		if day.Date.Equal(selected) {
			selectedDay = day
			layers = append(layers, m.cursorLayer(x, dayWidth))
		}
		// A one-cell gap keeps neighbouring days apart.
		layers = append(layers, m.createBlockLayers(day, x, dayWidth-1)...)
		layers = append(layers, m.nowLineLayers(day.Date, x, dayWidth-1)...)
	}

	return m.finishCanvas(selectedDay, scheduleWidth, layers)
}

// finishCanvas adds the sidebar and status bar and renders the canvas.
func (m *Model) finishCanvas(day calendar.Day, scheduleWidth int, layers []*lipgloss.Layer) string {
	if sidebarWidth := m.width - scheduleWidth - 1; sidebarWidth > 0 {
		layers = append(layers, m.createSidebarLayer(day, scheduleWidth+1, sidebarWidth))
	}
	layers = append(layers, m.createStatusBarLayers()...)

	canvas := lipgloss.NewCanvas(layers...)
	return canvas.Render()
}

func (m *Model) scheduleWidth() int {
	w := m.width * 2 / 3
	if w < 40 {
		w = 40
	}
	if w > m.width {
		w = m.width
	}
	return w
}

// timeColumnWidth fits the widest label the time format produces.
func (m *Model) timeColumnWidth() int {
	widest := time.Date(2006, 1, 2, 23, 59, 0, 0, time.UTC).Format(m.config.TimeFormat)
	w := lipgloss.Width(widest) + 2
	if w < 7 {
		w = 7
	}
	return w
}

func (m *Model) slotRows() int {
	if m.config.SlotHeight < 1 {
		return 1
	}
	return m.config.SlotHeight
}

// rowsPerHour is the terminal height of one hour at the current zoom.
func (m *Model) rowsPerHour() float64 {
	return float64(m.slotRows()*60) / float64(m.timeIncrement)
}

func (m *Model) metrics() calendar.Metrics {
	return calendar.Metrics{
		SlotHeight: m.rowsPerHour(),
		Gutter:     m.config.Gutter,
	}
}

// gridY maps a minute of the day to a row of the visible grid. The result
// may fall outside [0, gridRows).
func (m *Model) gridY(minute int) int {
	return int(math.Floor(float64(minute)/60*m.rowsPerHour())) - m.topSlot*m.slotRows()
}

func (m *Model) isToday(day time.Time) bool {
	return calendar.StartOfDay(m.clock()).Equal(calendar.StartOfDay(day))
}

func (m *Model) dayHeaderLayer(day calendar.Day, x, width int) *lipgloss.Layer {
	title := day.Date.Format(m.config.DateFormat)
	if n := len(day.AllDay); n > 0 {
		title += fmt.Sprintf("  +%d all day", n)
	}
	style := m.styles.Header
	if m.isToday(day.Date) {
		style = m.styles.Today
	}
	return lipgloss.NewLayer(style.Render(truncate.StringWithTail(title, uint(width), "…"))).
		X(x).Y(0).Z(zGrid)
}

func (m *Model) weekHeaderLayer(date time.Time, x, width int) *lipgloss.Layer {
	label := date.Format("Mon 2")
	style := m.styles.Header
	switch {
	case date.Equal(m.selectedDate):
		style = m.styles.Selected
	case m.isToday(date):
		style = m.styles.Today
	case date.Weekday() == time.Saturday || date.Weekday() == time.Sunday:
		style = m.styles.Weekend
	}
	label = truncate.String(label, uint(width-1))
	return lipgloss.NewLayer(style.Render(label)).X(x).Y(0).Z(zGrid)
}

// createTimeColumnLayers creates one label per visible slot.
func (m *Model) createTimeColumnLayers() []*lipgloss.Layer {
	var layers []*lipgloss.Layer
	now := m.clock()
	nowMinute := now.Hour()*60 + now.Minute()
	today := m.isToday(m.selectedDate)

	for i := 0; i < m.visibleSlots(); i++ {
		slot := m.topSlot + i
		minute := slot * m.timeIncrement
		slotTime := m.selectedDate.Add(time.Duration(minute) * time.Minute)
		label := slotTime.Format(m.config.TimeFormat)

		style := m.styles.Grid
		if minute%60 == 0 {
			style = m.styles.Normal
		}
		if today && minute <= nowMinute && nowMinute < minute+m.timeIncrement {
			style = m.styles.Today
		}
		if slot == m.selectedSlot {
			style = m.styles.Selected
		}

		layers = append(layers, lipgloss.NewLayer(style.Render(label)).
			X(0).Y(1+i*m.slotRows()).Z(zGrid))
	}

	return layers
}

// cursorLayer shades the selected slot across one day column.
func (m *Model) cursorLayer(x, width int) *lipgloss.Layer {
	y := (m.selectedSlot - m.topSlot) * m.slotRows()
	bar := m.styles.Cursor.Width(width).Height(m.slotRows()).Render("")
	return lipgloss.NewLayer(bar).X(x).Y(1 + y).Z(zGrid + 1)
}

// createBlockLayers turns each placement's geometry into a coloured block
// inside the day column starting at x.
func (m *Model) createBlockLayers(day calendar.Day, x, areaWidth int) []*lipgloss.Layer {
	var layers []*lipgloss.Layer
	if areaWidth < 1 {
		return layers
	}

	metrics := m.metrics()
	topRow := m.topSlot * m.slotRows()
	rows := m.gridRows()

	for i, p := range day.Timed {
		box := metrics.Geometry(p)

		start := int(math.Floor(box.Top)) - topRow
		height := int(math.Ceil(box.Height))
		if height < 1 {
			height = 1
		}
		end := start + height
		if end <= 0 || start >= rows {
			continue
		}
		clippedAbove := start < 0
		if start < 0 {
			start = 0
		}
		if end > rows {
			end = rows
		}

		left := x + int(math.Round(box.Left/100*float64(areaWidth)))
		width := int(math.Round(box.Width / 100 * float64(areaWidth)))
		if p.TotalColumns > 1 && p.Column < p.TotalColumns-1 && width > 1 {
			width-- // gap before the next column
		}
		if width < 1 {
			width = 1
		}
		if left+width > x+areaWidth {
			width = x + areaWidth - left
		}
		if width < 1 {
			continue
		}

		text := m.blockText(p.Item, width, end-start, clippedAbove)
		bg, fg := m.styles.blockColors(p.Item.Appt.Color)
		block := lipgloss.NewStyle().
			Background(bg).
			Foreground(fg).
			Width(width).
			Height(end - start).
			MaxHeight(end - start).
			Render(text)

		layers = append(layers, lipgloss.NewLayer(block).X(left).Y(1+start).Z(zBlocks+i))
	}

	return layers
}

// blockText fits an appointment's title and time range into a block.
func (m *Model) blockText(item calendar.Item, width, height int, clippedAbove bool) string {
	title := item.Appt.Title
	if title == "" {
		title = "(untitled)"
	}
	if m.showEventIDs {
		title = fmt.Sprintf("[%s] %s", item.Appt.ID, title)
	}
	if clippedAbove {
		title = "↑ " + title
	}
	span := m.formatSpan(item)

	if height == 1 {
		return truncate.StringWithTail(span+" "+title, uint(width), "…")
	}

	var lines []string
	for _, line := range strings.Split(wordwrap.String(title, width), "\n") {
		lines = append(lines, truncate.StringWithTail(line, uint(width), "…"))
	}
	if len(lines) >= height {
		lines = lines[:height]
	} else {
		lines = append(lines, truncate.StringWithTail(span, uint(width), "…"))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) formatSpan(item calendar.Item) string {
	start := item.Appt.Start.In(m.selectedDate.Location())
	if item.End <= item.Start {
		return start.Format(m.config.TimeFormat)
	}
	end := item.Appt.End.In(m.selectedDate.Location())
	return start.Format(m.config.TimeFormat) + "–" + end.Format(m.config.TimeFormat)
}

// nowLineLayers marks the current time across today's column.
func (m *Model) nowLineLayers(date time.Time, x, width int) []*lipgloss.Layer {
	if !m.isToday(date) || width < 1 {
		return nil
	}
	now := m.clock()
	y := m.gridY(now.Hour()*60 + now.Minute())
	if y < 0 || y >= m.gridRows() {
		return nil
	}
	line := m.styles.Now.Render(strings.Repeat("─", width))
	return []*lipgloss.Layer{lipgloss.NewLayer(line).X(x).Y(1 + y).Z(zNow)}
}

// createStatusBarLayers creates the two status lines under the grid.
func (m *Model) createStatusBarLayers() []*lipgloss.Layer {
	var layers []*lipgloss.Layer
	y := m.gridRows() + 1

	now := m.clock()
	status := fmt.Sprintf(" Currently: %s  ·  %dm slots  ·  %d appointments",
		now.Format("Monday, January 2 at "+m.config.TimeFormat), m.timeIncrement, len(m.appts))
	layers = append(layers, lipgloss.NewLayer(m.styles.Help.Render(status)).X(0).Y(y).Z(zStatus))

	var second string
	switch {
	case m.mode == ViewGoto:
		second = m.input.View()
	case m.message != "":
		second = m.styles.Message.Render(m.message)
	default:
		second = m.styles.Help.Width(m.width).Align(lipgloss.Right).
			Render(m.help.ShortHelpView(m.keys.ShortHelp()))
	}
	layers = append(layers, lipgloss.NewLayer(second).X(0).Y(y+1).Z(zStatus))

	return layers
}
