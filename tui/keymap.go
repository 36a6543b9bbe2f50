// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the key bindings for the portal screens.
type KeyMap struct {
	Up        key.Binding
	Down      key.Binding
	PrevBlock key.Binding
	NextBlock key.Binding
	Apply     key.Binding
	Remove    key.Binding
	Submit    key.Binding
	Switch    key.Binding
	Accept    key.Binding
	Decline   key.Binding
	Refresh   key.Binding
	Help      key.Binding
	Quit      key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		PrevBlock: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "prev block"),
		),
		NextBlock: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "next block"),
		),
		Apply: key.NewBinding(
			key.WithKeys("enter", " "),
			key.WithHelp("enter", "select residence"),
		),
		Remove: key.NewBinding(
			key.WithKeys("x", "delete", "backspace"),
			key.WithHelp("x", "remove"),
		),
		Submit: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "submit"),
		),
		Switch: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "switch screen"),
		),
		Accept: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "accept offer"),
		),
		Decline: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "decline offer"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("ctrl+r", "R"),
			key.WithHelp("R", "refresh"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Apply, k.Remove, k.Submit, k.Switch, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PrevBlock, k.NextBlock},
		{k.Apply, k.Remove, k.Submit},
		{k.Accept, k.Decline, k.Refresh},
		{k.Switch, k.Help, k.Quit},
	}
}
