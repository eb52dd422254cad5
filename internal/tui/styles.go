package tui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	stateStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))

	buttonStyle = lipgloss.NewStyle().
			Padding(0, 2).
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("63"))
	busyButtonStyle = buttonStyle.
			Background(lipgloss.Color("240"))
	stopButtonStyle = buttonStyle.
			Background(lipgloss.Color("160"))

	meterOnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	meterOffStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	recStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203")).
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color("203")).
			PaddingLeft(1)
	hintStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	replyStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)
)
