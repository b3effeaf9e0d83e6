package tester

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	// Base colors
	primaryColor = lipgloss.Color("212")
	mutedColor   = lipgloss.Color("241")
	successColor = lipgloss.Color("42")
	warningColor = lipgloss.Color("214")
	errorColor   = lipgloss.Color("196")

	// Panel styles
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	activePanelStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(primaryColor).
				Padding(0, 1)

	panelTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Background(lipgloss.Color("237")).
			Foreground(lipgloss.Color("255")).
			Padding(0, 1)

	// The pressed key, drawn as a key cap
	keyCapStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("255")).
			Border(lipgloss.ThickBorder()).
			BorderForeground(primaryColor).
			Padding(0, 2).
			Align(lipgloss.Center)

	idleKeyCapStyle = keyCapStyle.
			BorderForeground(lipgloss.Color("238")).
			Foreground(mutedColor)

	// Text styles
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(primaryColor)
	subtleStyle = lipgloss.NewStyle().Foreground(mutedColor)
	helpStyle   = lipgloss.NewStyle().Foreground(mutedColor)
	okStyle     = lipgloss.NewStyle().Foreground(successColor)
	warnStyle   = lipgloss.NewStyle().Foreground(warningColor)
	errStyle    = lipgloss.NewStyle().Foreground(errorColor).Bold(true)
	emptyStyle  = lipgloss.NewStyle().Foreground(mutedColor).Italic(true)
	stateBadge  = lipgloss.NewStyle().Foreground(lipgloss.Color("45"))
)
