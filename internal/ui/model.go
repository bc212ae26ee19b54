package ui

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/adam-palmer1/calview/internal/appointment"
	"github.com/adam-palmer1/calview/internal/calendar"
	"github.com/adam-palmer1/calview/internal/config"
	appLog "github.com/adam-palmer1/calview/internal/log"
	"github.com/adam-palmer1/calview/internal/parser"
)

type ViewMode int

const (
	ViewDay ViewMode = iota
	ViewWeek
	ViewHelp
	ViewGoto
)

const messageTimeout = 3 * time.Second

type Model struct {
	// Core components
	config *config.Config
	source appointment.Source
	parser *parser.TimeParser
	clock  func() time.Time

	// View state
	mode         ViewMode
	prevMode     ViewMode
	selectedDate time.Time // local midnight of the focused day
	appts        []appointment.Appointment
	loadedFrom   time.Time
	loadedTo     time.Time

	// Time grid state
	selectedSlot  int // slot index within selectedDate
	timeIncrement int // minutes per slot (15, 30, or 60)
	topSlot       int // first visible slot

	// UI state
	width        int
	height       int
	message      string
	messageSeq   int
	showEventIDs bool
	changes      <-chan appointment.FileChangeEvent

	keys   keyMap
	help   help.Model
	input  textinput.Model
	styles Styles
}

// NewModel builds the model and loads the appointments around start. Without
// a time of day the view opens at the configured day start hour.
func NewModel(cfg *config.Config, source appointment.Source, start parser.Target) *Model {
	input := textinput.New()
	input.Prompt = "Go to: "
	input.Placeholder = "tomorrow 2pm, next mon, 2025-08-25..."
	input.CharLimit = 64

	m := &Model{
		config:        cfg,
		source:        source,
		parser:        parser.NewTimeParser(),
		clock:         time.Now,
		mode:          ViewDay,
		timeIncrement: cfg.TimeIncrement,
		showEventIDs:  cfg.ShowIDs,
		keys:          newKeyMap(cfg.KeyBindings),
		help:          help.New(),
		input:         input,
		styles:        NewStyles(cfg.Colors),
	}
	if cfg.StartupView == "week" {
		m.mode = ViewWeek
	}

	minute := cfg.DayStartHour * 60
	if start.HasTime {
		minute = start.Minutes
	}
	m.focus(start.Date, minute)
	m.topSlot = m.selectedSlot

	if source != nil {
		changes, err := source.WatchFiles()
		if err != nil {
			appLog.Error("file watching disabled", err)
		} else {
			m.changes = changes
		}
	}

	return m
}

func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{nowTickCmd()}
	if m.config.AutoRefresh {
		cmds = append(cmds, m.refreshCmd())
	}
	if m.changes != nil {
		cmds = append(cmds, waitForChange(m.changes))
	}
	return tea.Batch(cmds...)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.input.Width = msg.Width - lenPrompt(m.input.Prompt) - 2
		m.ensureVisible()
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case nowTickMsg:
		// Redraw for the current-time marker.
		return m, nowTickCmd()

	case refreshMsg:
		if !m.config.AutoRefresh {
			return m, nil
		}
		m.reload()
		return m, m.refreshCmd()

	case fileChangedMsg:
		appLog.Debug("appointment file changed", "path", msg.Path)
		m.reload()
		return m, tea.Batch(m.showMessage("Reloaded "+msg.Path), waitForChange(m.changes))

	case messageTimeoutMsg:
		if msg.seq == m.messageSeq {
			m.message = ""
		}
		return m, nil
	}

	return m, nil
}

func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	switch m.mode {
	case ViewHelp:
		return m.viewHelp()
	case ViewGoto:
		return m.viewGoto()
	case ViewWeek:
		return m.renderWeekView()
	default:
		return m.renderDayView()
	}
}

func (m *Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.mode {
	case ViewGoto:
		return m.handleGotoKeys(msg)
	case ViewHelp:
		// Any key returns
		m.mode = m.prevMode
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		if m.source != nil {
			if err := m.source.StopWatching(); err != nil {
				appLog.Error("stop watching", err)
			}
		}
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.prevMode = m.mode
		m.mode = ViewHelp

	case key.Matches(msg, m.keys.Goto):
		m.prevMode = m.mode
		m.mode = ViewGoto
		m.input.SetValue("")
		return m, m.input.Focus()

	case key.Matches(msg, m.keys.DayView):
		m.mode = ViewDay

	case key.Matches(msg, m.keys.WeekView):
		m.mode = ViewWeek

	case key.Matches(msg, m.keys.Refresh):
		m.reload()
		return m, m.showMessage(fmt.Sprintf("Reloaded %d appointments", len(m.appts)))

	case key.Matches(msg, m.keys.ToggleIDs):
		m.showEventIDs = !m.showEventIDs
		if m.showEventIDs {
			return m, m.showMessage("Showing appointment IDs")
		}
		return m, m.showMessage("Hiding appointment IDs")

	case key.Matches(msg, m.keys.Today):
		now := m.clock()
		m.focus(now, now.Hour()*60+now.Minute())
		m.centerSelected()

	case key.Matches(msg, m.keys.SlotDown):
		m.moveSlot(1)

	case key.Matches(msg, m.keys.SlotUp):
		m.moveSlot(-1)

	case key.Matches(msg, m.keys.NextDay):
		m.moveDays(1)

	case key.Matches(msg, m.keys.PrevDay):
		m.moveDays(-1)

	case key.Matches(msg, m.keys.NextWeek):
		m.moveDays(7)

	case key.Matches(msg, m.keys.PrevWeek):
		m.moveDays(-7)

	case key.Matches(msg, m.keys.Zoom):
		m.zoom()
		return m, m.showMessage(fmt.Sprintf("%d minute slots", m.timeIncrement))
	}

	return m, nil
}

func (m *Model) handleGotoKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.input.Blur()
		m.mode = m.prevMode
		return m, nil

	case tea.KeyEnter:
		m.input.Blur()
		m.mode = m.prevMode

		m.parser.SetNow(m.clock())
		target, err := m.parser.Parse(m.input.Value())
		if err != nil {
			return m, m.showMessage(fmt.Sprintf("Parse error: %v", err))
		}

		minute := m.selectedMinute()
		if target.HasTime {
			minute = target.Minutes
		}
		m.focus(target.Date, minute)
		m.centerSelected()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// focus selects day and the slot containing minute, reloading if day is
// outside the loaded range.
func (m *Model) focus(day time.Time, minute int) {
	m.selectedDate = time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	m.selectedSlot = minute / m.timeIncrement
	if m.needsReload() {
		m.loadAppointments()
	}
	m.ensureVisible()
}

func (m *Model) slotsPerDay() int {
	return 24 * 60 / m.timeIncrement
}

func (m *Model) selectedMinute() int {
	return m.selectedSlot * m.timeIncrement
}

// gridRows is the number of terminal rows available to the time grid: one
// header row and two status rows are reserved.
func (m *Model) gridRows() int {
	rows := m.height - 3
	if rows < 1 {
		rows = 1
	}
	return rows
}

func (m *Model) visibleSlots() int {
	n := m.gridRows() / m.slotRows()
	if n < 1 {
		n = 1
	}
	if n > m.slotsPerDay() {
		n = m.slotsPerDay()
	}
	return n
}

// moveSlot rolls over into the neighbouring day at either end.
func (m *Model) moveSlot(delta int) {
	m.selectedSlot += delta
	switch {
	case m.selectedSlot >= m.slotsPerDay():
		m.selectedSlot = 0
		m.topSlot = 0
		m.selectedDate = m.selectedDate.AddDate(0, 0, 1)
	case m.selectedSlot < 0:
		m.selectedSlot = m.slotsPerDay() - 1
		m.topSlot = m.slotsPerDay()
		m.selectedDate = m.selectedDate.AddDate(0, 0, -1)
	}
	if m.needsReload() {
		m.loadAppointments()
	}
	m.ensureVisible()
}

func (m *Model) moveDays(n int) {
	m.selectedDate = m.selectedDate.AddDate(0, 0, n)
	if m.needsReload() {
		m.loadAppointments()
	}
}

// zoom cycles 60 -> 30 -> 15 -> 60 minute slots, keeping the selected time.
func (m *Model) zoom() {
	minute := m.selectedMinute()
	topMinute := m.topSlot * m.timeIncrement

	switch m.timeIncrement {
	case 60:
		m.timeIncrement = 30
	case 30:
		m.timeIncrement = 15
	default:
		m.timeIncrement = 60
	}

	m.selectedSlot = minute / m.timeIncrement
	m.topSlot = topMinute / m.timeIncrement
	m.ensureVisible()
}

// ensureVisible scrolls the grid so the selected slot is on screen.
func (m *Model) ensureVisible() {
	visible := m.visibleSlots()
	if m.selectedSlot < m.topSlot {
		m.topSlot = m.selectedSlot
	}
	if m.selectedSlot >= m.topSlot+visible {
		m.topSlot = m.selectedSlot - visible + 1
	}
	if last := m.slotsPerDay() - visible; m.topSlot > last {
		m.topSlot = last
	}
	if m.topSlot < 0 {
		m.topSlot = 0
	}
}

func (m *Model) centerSelected() {
	m.topSlot = m.selectedSlot - m.visibleSlots()/2
	m.ensureVisible()
}

// loadRange covers the week around the selected date plus a week either
// side, so day and week navigation rarely reloads.
func (m *Model) loadRange() (time.Time, time.Time) {
	weekStart := calendar.WeekStart(m.selectedDate, m.config.WeekStartDay)
	return weekStart.AddDate(0, 0, -7), weekStart.AddDate(0, 0, 14)
}

// needsReload reports whether the selected week has left the loaded range.
func (m *Model) needsReload() bool {
	if m.loadedFrom.IsZero() {
		return true
	}
	weekStart := calendar.WeekStart(m.selectedDate, m.config.WeekStartDay)
	return weekStart.Before(m.loadedFrom) || weekStart.AddDate(0, 0, 7).After(m.loadedTo)
}

func (m *Model) loadAppointments() {
	if m.source == nil {
		return
	}
	start, end := m.loadRange()

	appts, err := m.source.Appointments(start, end)
	switch {
	case errors.Is(err, appointment.ErrNoFiles):
		m.message = "No appointment files configured"
		return
	case err != nil:
		appLog.Error("failed to load appointments", err)
		m.message = fmt.Sprintf("Error loading appointments: %v", err)
		return
	}

	m.appts = appts
	m.loadedFrom = start
	m.loadedTo = end
	appLog.Debug("appointments loaded", "count", len(appts), "from", start, "to", end)
}

// reload forces a read of the current range.
func (m *Model) reload() {
	m.loadedFrom = time.Time{}
	m.loadAppointments()
}

func (m *Model) showMessage(msg string) tea.Cmd {
	m.message = msg
	m.messageSeq++
	seq := m.messageSeq
	return tea.Tick(messageTimeout, func(time.Time) tea.Msg {
		return messageTimeoutMsg{seq: seq}
	})
}

func (m *Model) refreshCmd() tea.Cmd {
	return tea.Tick(m.config.RefreshRate, func(time.Time) tea.Msg {
		return refreshMsg{}
	})
}

// nowTickCmd fires on the next minute boundary.
func nowTickCmd() tea.Cmd {
	return tea.Every(time.Minute, func(t time.Time) tea.Msg {
		return nowTickMsg(t)
	})
}

func waitForChange(changes <-chan appointment.FileChangeEvent) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-changes
		if !ok {
			return nil
		}
		return fileChangedMsg(event)
	}
}

func lenPrompt(p string) int {
	return len([]rune(p))
}

// Message types
type nowTickMsg time.Time
type refreshMsg struct{}
type fileChangedMsg appointment.FileChangeEvent
type messageTimeoutMsg struct {
	seq int
}
