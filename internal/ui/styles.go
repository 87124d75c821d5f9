package ui

import "github.com/charmbracelet/lipgloss"

type styles struct {
	header     lipgloss.Style
	muted      lipgloss.Style
	userLabel  lipgloss.Style
	agentLabel lipgloss.Style
	selected   lipgloss.Style
	errorText  lipgloss.Style
	reference  lipgloss.Style
	hint       lipgloss.Style
	inputPanel lipgloss.Style
	status     lipgloss.Style
	footer     lipgloss.Style
}

func newStyles() styles {
	blue := lipgloss.Color("#01cdfe")
	mint := lipgloss.Color("#05ffa1")
	pink := lipgloss.Color("#ff71ce")
	muted := lipgloss.Color("#9ca3d8")

	return styles{
		header: lipgloss.NewStyle().
			Bold(true).
			Foreground(blue).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(blue).
			Padding(0, 1),
		muted:      lipgloss.NewStyle().Foreground(muted),
		userLabel:  lipgloss.NewStyle().Foreground(mint).Bold(true),
		agentLabel: lipgloss.NewStyle().Foreground(blue).Bold(true),
		selected: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#22062f")).
			Background(pink).
			Bold(true),
		errorText: lipgloss.NewStyle().Foreground(pink).Bold(true),
		reference: lipgloss.NewStyle().Foreground(muted).Italic(true),
		hint:      lipgloss.NewStyle().Foreground(lipgloss.Color("#ffd166")),
		inputPanel: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(mint).
			Padding(0, 1),
		status: lipgloss.NewStyle().Foreground(blue),
		footer: lipgloss.NewStyle().Foreground(muted),
	}
}
