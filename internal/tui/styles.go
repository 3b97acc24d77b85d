package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorPrimary = lipgloss.AdaptiveColor{Light: "#7D56F4", Dark: "#9D79FF"}
	colorSuccess = lipgloss.AdaptiveColor{Light: "#2E7D32", Dark: "#66BB6A"}
	colorDanger  = lipgloss.AdaptiveColor{Light: "#C62828", Dark: "#EF5350"}
	colorMuted   = lipgloss.AdaptiveColor{Light: "#757575", Dark: "#9E9E9E"}
	colorBorder  = lipgloss.AdaptiveColor{Light: "#BDBDBD", Dark: "#616161"}

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary)

	statStyle = lipgloss.NewStyle().
			Foreground(colorSuccess).
			Bold(true)

	mutedStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorDanger).
			Bold(true)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(1, 2)
)
