package main

import "github.com/charmbracelet/bubbles/key"

type KeyMap struct {
	Undo        key.Binding
	Redo        key.Binding
	Search      key.Binding
	Place       key.Binding
	Up          key.Binding
	Down        key.Binding
	SortTime    key.Binding
	SortName    key.Binding
	SortGlyph   key.Binding
	DarkMode    key.Binding
	Dismiss     key.Binding
	Delete      key.Binding
	ResetCanvas key.Binding
	ResetAll    key.Binding
	Copy        key.Binding
	ExportPNG   key.Binding
	Help        key.Binding
	Quit        key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Undo:        key.NewBinding(key.WithKeys("ctrl+z"), key.WithHelp("ctrl+z", "undo")),
		Redo:        key.NewBinding(key.WithKeys("ctrl+y", "ctrl+shift+z"), key.WithHelp("ctrl+y", "redo")),
		Search:      key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Place:       key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "place highlighted")),
		Up:          key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "palette up")),
		Down:        key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "palette down")),
		SortTime:    key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "sort by time")),
		SortName:    key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "sort by name")),
		SortGlyph:   key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "sort by emoji")),
		DarkMode:    key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "dark mode")),
		Dismiss:     key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "dismiss notification")),
		Delete:      key.NewBinding(key.WithKeys("delete", "backspace"), key.WithHelp("del", "delete selected")),
		ResetCanvas: key.NewBinding(key.WithKeys("C"), key.WithHelp("C", "clear canvas")),
		ResetAll:    key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "reset everything")),
		Copy:        key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy selection")),
		ExportPNG:   key.NewBinding(key.WithKeys("P"), key.WithHelp("P", "export png")),
		Help:        key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:        key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k KeyMap) HelpRows() [][]key.Binding {
	return [][]key.Binding{
		{k.Undo, k.Redo, k.Delete, k.Copy},
		{k.Search, k.Up, k.Down, k.Place},
		{k.SortTime, k.SortName, k.SortGlyph},
		{k.DarkMode, k.Dismiss, k.ExportPNG},
		{k.ResetCanvas, k.ResetAll, k.Help, k.Quit},
	}
}
