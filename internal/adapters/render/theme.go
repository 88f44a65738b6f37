// Package render draws polls as styled terminal text.
package render

import "github.com/charmbracelet/lipgloss"

type Theme struct {
	Title    lipgloss.Style
	Muted    lipgloss.Style
	Notice   lipgloss.Style
	Error    lipgloss.Style
	Selected lipgloss.Style
	Cursor   lipgloss.Style
	Bar      lipgloss.Style
	BarEmpty lipgloss.Style
	Card     lipgloss.Style

	BadgeActive   lipgloss.Style
	BadgeExpired  lipgloss.Style
	BadgeInactive lipgloss.Style
}

var DefaultTheme = Theme{
	Title:    lipgloss.NewStyle().Bold(true),
	Muted:    lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	Notice:   lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Italic(true),
	Error:    lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
	Selected: lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true),
	Cursor:   lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true),
	Bar:      lipgloss.NewStyle().Foreground(lipgloss.Color("63")),
	BarEmpty: lipgloss.NewStyle().Foreground(lipgloss.Color("238")),
	Card: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1),

	BadgeActive:   lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
	BadgeExpired:  lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
	BadgeInactive: lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
}
