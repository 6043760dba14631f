package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Enable  key.Binding
	Disable key.Binding
	Check   key.Binding
	Clear   key.Binding
	Show    key.Binding
	Dismiss key.Binding
	Quit    key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Enable: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "enable"),
		),
		Disable: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "disable"),
		),
		Check: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "check now"),
		),
		Clear: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "clear state"),
		),
		Show: key.NewBinding(
			key.WithKeys("enter", "s"),
			key.WithHelp("enter", "show session"),
		),
		Dismiss: key.NewBinding(
			key.WithKeys("esc", "n"),
			key.WithHelp("esc", "dismiss"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Enable, k.Disable, k.Check, k.Clear, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp(), {k.Show, k.Dismiss}}
}

// pendingHelp is shown while a notification awaits an answer.
func (k keyMap) pendingHelp() []key.Binding {
	return []key.Binding{k.Show, k.Dismiss, k.Quit}
}
