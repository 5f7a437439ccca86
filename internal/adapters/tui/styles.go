package tui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#5B8DEF")).
			Padding(0, 1)

	labelStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F7B801"))
	loadingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#5B8DEF"))
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF6B6B"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	sectionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#4CAF50"))

	paneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#555555")).
			Padding(0, 1)

	focusedPaneStyle = paneStyle.BorderForeground(lipgloss.Color("#5B8DEF"))

	helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666")).Padding(0, 1)
)
