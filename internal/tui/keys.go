package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Add    key.Binding
	Search key.Binding
	Toggle key.Binding
	Delete key.Binding
	Up     key.Binding
	Down   key.Binding
	Submit key.Binding
	Back   key.Binding
	Quit   key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Add:    key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
		Search: key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Toggle: key.NewBinding(key.WithKeys(" ", "x"), key.WithHelp("space", "check")),
		Delete: key.NewBinding(key.WithKeys("d", "delete"), key.WithHelp("d", "delete")),
		Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Submit: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "submit")),
		Back:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Add, k.Search, k.Toggle, k.Delete, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Toggle, k.Delete},
		{k.Add, k.Search, k.Submit, k.Back, k.Quit},
	}
}
