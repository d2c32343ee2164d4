package ui

import "github.com/charmbracelet/lipgloss"

// Color palette for sample rows
var (
	colorRising  = lipgloss.AdaptiveColor{Light: "28", Dark: "114"}  // Vibrant green
	colorFalling = lipgloss.AdaptiveColor{Light: "124", Dark: "210"} // Subtle red
	colorFlat    = lipgloss.AdaptiveColor{Light: "240", Dark: "247"} // Very subtle gray
	colorPending = lipgloss.AdaptiveColor{Light: "130", Dark: "178"} // Subtle orange
	colorIndex   = lipgloss.AdaptiveColor{Light: "238", Dark: "252"}
	colorMuted   = lipgloss.AdaptiveColor{Light: "246", Dark: "240"}
)

// UI accent color used in headers
var accentColor = lipgloss.AdaptiveColor{Light: "33", Dark: "110"}

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accentColor).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true)

	footerStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			BorderStyle(lipgloss.NormalBorder()).
			BorderTop(true)

	indexStyle   = lipgloss.NewStyle().Foreground(colorIndex)
	pendingStyle = lipgloss.NewStyle().Foreground(colorPending).Bold(true)
	messageStyle = lipgloss.NewStyle().Foreground(accentColor)
)

// TrendColor returns the row color for a value compared to the one before it
func TrendColor(prev, cur float64, hasPrev bool) lipgloss.TerminalColor {
	switch {
	case !hasPrev || cur == prev:
		return colorFlat
	case cur > prev:
		return colorRising
	default:
		return colorFalling
	}
}
