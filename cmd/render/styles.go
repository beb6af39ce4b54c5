package render

import "github.com/charmbracelet/lipgloss"

var (
	accentColor = lipgloss.Color("86")
	dimColor    = lipgloss.Color("240")
	warnColor   = lipgloss.Color("11")
	errorColor  = lipgloss.Color("9")

	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(accentColor)
	labelStyle  = lipgloss.NewStyle().Foreground(warnColor)
	dimStyle    = lipgloss.NewStyle().Foreground(dimColor)
	errorStyle  = lipgloss.NewStyle().Foreground(errorColor)
	activeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)
	doneStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	boxStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("63")).Padding(0, 1)
)
