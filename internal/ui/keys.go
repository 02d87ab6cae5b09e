package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap holds every binding of the dashboard and its dialogs.
type keyMap struct {
	Quit, Help, CycleTheme, Refresh key.Binding
	Create, Delete                  key.Binding
	Up, Down, Top, Bottom           key.Binding

	// Dialogs. Left, Right and Toggle only apply to the platform row.
	NextField, PrevField  key.Binding
	Left, Right, Toggle   key.Binding
	Confirm, Cancel       key.Binding
	ConfirmYes, ConfirmNo key.Binding
}

func bind(help, desc string, keys ...string) key.Binding {
	return key.NewBinding(key.WithKeys(keys...), key.WithHelp(help, desc))
}

func defaultKeys() keyMap {
	return keyMap{
		Quit:       bind("q", "Quit", "q", "ctrl+c"),
		Help:       bind("h/?", "Toggle help", "h", "?"),
		CycleTheme: bind("T", "Cycle theme", "T"),
		Refresh:    bind("r", "Refresh", "r"),

		Create: bind("n", "New audience", "n"),
		Delete: bind("d", "Delete audience", "d", "delete"),

		Up:     bind("k", "Move up", "k", "up"),
		Down:   bind("j", "Move down", "j", "down"),
		Top:    bind("g", "Go to top", "g", "home"),
		Bottom: bind("G", "Go to bottom", "G", "end"),

		NextField:  bind("tab", "Next field", "tab"),
		PrevField:  bind("shift+tab", "Previous field", "shift+tab"),
		Left:       bind("←/h", "Previous platform", "left", "h"),
		Right:      bind("→/l", "Next platform", "right", "l"),
		Toggle:     bind("space", "Toggle platform", " ", "x"),
		Confirm:    bind("enter", "Confirm", "enter"),
		Cancel:     bind("esc", "Cancel", "esc"),
		ConfirmYes: bind("y", "Delete", "y", "Y", "enter"),
		ConfirmNo:  bind("n", "Keep", "n", "N"),
	}
}
