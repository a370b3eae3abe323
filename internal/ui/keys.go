package ui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

type keyMap struct {
	Pause  key.Binding
	Reset  key.Binding
	Layout key.Binding
	Sound  key.Binding
	Glitch key.Binding
	Title  key.Binding
	Help   key.Binding
	Quit   key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Pause:  key.NewBinding(key.WithKeys(" ", "space"), key.WithHelp("space", "pause")),
		Reset:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reset")),
		Layout: key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "layout")),
		Sound:  key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sound")),
		Glitch: key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "glitch")),
		Title:  key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "edit title")),
		Help:   key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:   key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Pause, k.Layout, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Pause, k.Reset, k.Layout},
		{k.Sound, k.Glitch, k.Title},
		{k.Help, k.Quit},
	}
}

func isQuit(msg tea.KeyMsg) bool {
	switch msg.String() {
	case "q", "esc", "ctrl+c":
		return true
	}
	return false
}
