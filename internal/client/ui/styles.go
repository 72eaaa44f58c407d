// Package ui formats docchat output for the terminal.
package ui

import "github.com/charmbracelet/lipgloss"

// Styles defines all lipgloss styles used by the terminal client.
var Styles = struct {
	Bold       lipgloss.Style
	Muted      lipgloss.Style
	Heading    lipgloss.Style
	Italic     lipgloss.Style
	Strike     lipgloss.Style
	InlineCode lipgloss.Style
	CodeBlock  lipgloss.Style
	CodeLabel  lipgloss.Style
	Copied     lipgloss.Style
	Link       lipgloss.Style
	Quote      lipgloss.Style
	UserLabel  lipgloss.Style
	BotLabel   lipgloss.Style
	Banner     lipgloss.Style
	SuccessBox lipgloss.Style
	ErrorBox   lipgloss.Style
}{
	Bold:       lipgloss.NewStyle().Bold(true),
	Muted:      lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	Heading:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86")),
	Italic:     lipgloss.NewStyle().Italic(true),
	Strike:     lipgloss.NewStyle().Strikethrough(true),
	InlineCode: lipgloss.NewStyle().Foreground(lipgloss.Color("212")),
	CodeBlock:  lipgloss.NewStyle().Foreground(lipgloss.Color("229")),
	CodeLabel:  lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true),
	Copied:     lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true),
	Link:       lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Underline(true),
	Quote:      lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Italic(true),
	UserLabel:  lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true),
	BotLabel:   lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true),

	Banner: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("86")).
		Padding(0, 2).
		Bold(true),

	SuccessBox: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("42")).
		Padding(0, 1).
		Width(60),

	ErrorBox: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("196")).
		Padding(0, 1).
		Width(60),
}
