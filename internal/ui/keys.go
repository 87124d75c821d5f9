package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Send       key.Binding
	Quit       key.Binding
	PrevReply  key.Binding
	NextReply  key.Binding
	ThumbsUp   key.Binding
	ThumbsDown key.Binding
	PageUp     key.Binding
	PageDown   key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Send: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "send"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
		PrevReply: key.NewBinding(
			key.WithKeys("ctrl+up", "alt+k"),
			key.WithHelp("ctrl+↑", "previous reply"),
		),
		NextReply: key.NewBinding(
			key.WithKeys("ctrl+down", "alt+j"),
			key.WithHelp("ctrl+↓", "next reply"),
		),
		ThumbsUp: key.NewBinding(
			key.WithKeys("ctrl+y"),
			key.WithHelp("ctrl+y", "👍"),
		),
		ThumbsDown: key.NewBinding(
			key.WithKeys("ctrl+n"),
			key.WithHelp("ctrl+n", "👎"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("pgup", "scroll up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("pgdn", "scroll down"),
		),
	}
}

func (k keyMap) hints() []key.Binding {
	return []key.Binding{k.Send, k.PrevReply, k.NextReply, k.ThumbsUp, k.ThumbsDown, k.Quit}
}
