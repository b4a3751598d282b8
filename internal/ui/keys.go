package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Submit          key.Binding
	Up              key.Binding
	Down            key.Binding
	Delete          key.Binding
	ClearCompleted  key.Binding
	NextFilter      key.Binding
	PrevFilter      key.Binding
	FilterAll       key.Binding
	FilterActive    key.Binding
	FilterCompleted key.Binding
	DismissError    key.Binding
	Quit            key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Submit:          key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "add")),
		Up:              key.NewBinding(key.WithKeys("up"), key.WithHelp("↑", "up")),
		Down:            key.NewBinding(key.WithKeys("down"), key.WithHelp("↓", "down")),
		Delete:          key.NewBinding(key.WithKeys("ctrl+d"), key.WithHelp("ctrl+d", "delete")),
		ClearCompleted:  key.NewBinding(key.WithKeys("ctrl+x"), key.WithHelp("ctrl+x", "clear completed")),
		NextFilter:      key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next filter")),
		PrevFilter:      key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev filter")),
		FilterAll:       key.NewBinding(key.WithKeys("alt+1"), key.WithHelp("alt+1", "all")),
		FilterActive:    key.NewBinding(key.WithKeys("alt+2"), key.WithHelp("alt+2", "active")),
		FilterCompleted: key.NewBinding(key.WithKeys("alt+3"), key.WithHelp("alt+3", "completed")),
		DismissError:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "dismiss error")),
		Quit:            key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Submit, k.Delete, k.ClearCompleted, k.NextFilter, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Submit, k.Up, k.Down, k.Delete, k.ClearCompleted},
		{k.NextFilter, k.PrevFilter, k.FilterAll, k.FilterActive, k.FilterCompleted},
		{k.DismissError, k.Quit},
	}
}
