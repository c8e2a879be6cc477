package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up          key.Binding
	Down        key.Binding
	MoveUp      key.Binding
	MoveDown    key.Binding
	PrevSet     key.Binding
	NextSet     key.Binding
	Delete      key.Binding
	NewWindow   key.Binding
	NewGroup    key.Binding
	Rename      key.Binding
	CycleColor  key.Binding
	Collapse    key.Binding
	SearchTitle key.Binding
	SearchURL   key.Binding
	ClearSearch key.Binding
	Duplicates  key.Binding
	Import      key.Binding
	Export      key.Binding
	Copy        key.Binding
	Preview     key.Binding
	Theme       key.Binding
	ClearSaved  key.Binding
	Help        key.Binding
	Quit        key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:          key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:        key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		MoveUp:      key.NewBinding(key.WithKeys("shift+up", "K"), key.WithHelp("K", "move tab up")),
		MoveDown:    key.NewBinding(key.WithKeys("shift+down", "J"), key.WithHelp("J", "move tab down")),
		PrevSet:     key.NewBinding(key.WithKeys("["), key.WithHelp("[", "move to previous group")),
		NextSet:     key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "move to next group")),
		Delete:      key.NewBinding(key.WithKeys("d", "delete"), key.WithHelp("d", "delete")),
		NewWindow:   key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "new window")),
		NewGroup:    key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "new group")),
		Rename:      key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "rename group")),
		CycleColor:  key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "next colour")),
		Collapse:    key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "collapse group")),
		SearchTitle: key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search titles")),
		SearchURL:   key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "search URLs")),
		ClearSearch: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear search")),
		Duplicates:  key.NewBinding(key.WithKeys("D"), key.WithHelp("D", "duplicates only")),
		Import:      key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "import JSON")),
		Export:      key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "export JSON")),
		Copy:        key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy Markdown")),
		Preview:     key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "preview JSON")),
		Theme:       key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "theme")),
		ClearSaved:  key.NewBinding(key.WithKeys("X"), key.WithHelp("X", "clear autosave")),
		Help:        key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:        key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.MoveUp, k.MoveDown, k.SearchTitle, k.Export, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.MoveUp, k.MoveDown, k.PrevSet, k.NextSet},
		{k.Delete, k.NewWindow, k.NewGroup, k.Rename, k.CycleColor, k.Collapse},
		{k.SearchTitle, k.SearchURL, k.ClearSearch, k.Duplicates},
		{k.Import, k.Export, k.Copy, k.Preview, k.Theme, k.ClearSaved, k.Help, k.Quit},
	}
}
