package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorTitle   = lipgloss.Color("#FFFFFF")
	colorSubtle  = lipgloss.Color("#666666")
	colorFocused = lipgloss.Color("#7D56F4")
	colorWarning = lipgloss.Color("#FFD700")
	colorSuccess = lipgloss.Color("#A3BE8C")
	colorError   = lipgloss.Color("#FF6B6B")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorTitle)

	subtleStyle = lipgloss.NewStyle().
			Foreground(colorSubtle)

	labelStyle = lipgloss.NewStyle().
			Bold(true)

	focusedLabelStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorFocused)

	helpStyle = lipgloss.NewStyle().
			Foreground(colorSubtle)

	warningStyle = lipgloss.NewStyle().
			Foreground(colorWarning)

	successPanelStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.RoundedBorder()).
				BorderForeground(colorSuccess).
				Padding(0, 1)

	successHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorSuccess)

	errorPanelStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(colorError).
			Foreground(colorError).
			Padding(0, 1)
)
