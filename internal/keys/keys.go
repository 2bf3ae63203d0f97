package keys

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the global keybindings for the application.
type KeyMap struct {
	// Navigation
	Down key.Binding
	Up   key.Binding

	// Selection
	Select key.Binding

	// Back / Quit
	Back key.Binding
	Quit key.Binding

	// Notification popover
	Notifications key.Binding

	// Manual refresh
	Refresh key.Binding

	// Theme toggle
	Theme key.Binding

	// Screen switching
	GoHome       key.Binding
	GoExecution  key.Binding
	GoAnomalies  key.Binding
	GoEmails     key.Binding
	GoSettings   key.Binding

	// Row actions
	New     key.Binding
	Edit    key.Binding
	Delete  key.Binding
	Comment key.Binding

	// Session
	LogOut key.Binding
}

// DefaultKeyMap returns the default set of keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "down"),
		),
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "up"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
		Notifications: key.NewBinding(
			key.WithKeys("N"),
			key.WithHelp("N", "notifications"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Theme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "toggle theme"),
		),
		GoHome: key.NewBinding(
			key.WithKeys("g"),
			key.WithHelp("g", "home"),
		),
		GoExecution: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "executions"),
		),
		GoAnomalies: key.NewBinding(
			key.WithKeys("b"),
			key.WithHelp("b", "anomalies"),
		),
		GoEmails: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "emails"),
		),
		GoSettings: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "settings"),
		),
		New: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		Comment: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "comments"),
		),
		LogOut: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "log out"),
		),
	}
}
