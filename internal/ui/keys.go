package ui

import (
	"github.com/charmbracelet/bubbles/key"
)

type keyMap struct {
	Quit      key.Binding
	Help      key.Binding
	Today     key.Binding
	Refresh   key.Binding
	DayView   key.Binding
	WeekView  key.Binding
	NextDay   key.Binding
	PrevDay   key.Binding
	NextWeek  key.Binding
	PrevWeek  key.Binding
	SlotDown  key.Binding
	SlotUp    key.Binding
	Zoom      key.Binding
	Goto      key.Binding
	ToggleIDs key.Binding
}

// actions lists every bindable action with its arrow-key aliases and help
// text. Config "bind" lines replace the first key only.
var actions = []struct {
	name    string
	aliases []string
	help    string
	field   func(*keyMap) *key.Binding
}{
	{"quit", []string{"ctrl+c"}, "quit", func(k *keyMap) *key.Binding { return &k.Quit }},
	{"help", nil, "help", func(k *keyMap) *key.Binding { return &k.Help }},
	{"today", nil, "now", func(k *keyMap) *key.Binding { return &k.Today }},
	{"refresh", nil, "reload", func(k *keyMap) *key.Binding { return &k.Refresh }},
	{"day_view", nil, "day", func(k *keyMap) *key.Binding { return &k.DayView }},
	{"week_view", nil, "week", func(k *keyMap) *key.Binding { return &k.WeekView }},
	{"next_day", []string{"right"}, "next day", func(k *keyMap) *key.Binding { return &k.NextDay }},
	{"prev_day", []string{"left"}, "prev day", func(k *keyMap) *key.Binding { return &k.PrevDay }},
	{"next_week", []string{"pgdown"}, "next week", func(k *keyMap) *key.Binding { return &k.NextWeek }},
	{"prev_week", []string{"pgup"}, "prev week", func(k *keyMap) *key.Binding { return &k.PrevWeek }},
	{"slot_down", []string{"down"}, "later", func(k *keyMap) *key.Binding { return &k.SlotDown }},
	{"slot_up", []string{"up"}, "earlier", func(k *keyMap) *key.Binding { return &k.SlotUp }},
	{"zoom", nil, "zoom", func(k *keyMap) *key.Binding { return &k.Zoom }},
	{"goto_date", nil, "goto", func(k *keyMap) *key.Binding { return &k.Goto }},
	{"toggle_ids", nil, "ids", func(k *keyMap) *key.Binding { return &k.ToggleIDs }},
}

// newKeyMap builds bindings from an action -> key map. Actions missing from
// bindings keep only their aliases.
func newKeyMap(bindings map[string]string) keyMap {
	var km keyMap
	for _, a := range actions {
		var keys []string
		if k := bindings[a.name]; k != "" {
			keys = append(keys, k)
		}
		keys = append(keys, a.aliases...)

		helpKey := a.name
		if len(keys) > 0 {
			helpKey = keys[0]
		}
		*a.field(&km) = key.NewBinding(key.WithKeys(keys...), key.WithHelp(helpKey, a.help))
	}
	return km
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.SlotDown, k.SlotUp, k.PrevDay, k.NextDay, k.WeekView, k.DayView, k.Goto, k.Zoom, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.SlotDown, k.SlotUp, k.NextDay, k.PrevDay, k.NextWeek, k.PrevWeek},
		{k.DayView, k.WeekView, k.Today, k.Goto, k.Zoom},
		{k.Refresh, k.ToggleIDs, k.Help, k.Quit},
	}
}
