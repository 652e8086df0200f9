package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	primaryStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF8C00"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFF00"))
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#00CFCF"))
	silentStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#808080"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#32CD32")).Bold(true)
)

func Primary(text string) string { return primaryStyle.Render(text) }
func Error(text string) string   { return errorStyle.Render(text) }
func Warning(text string) string { return warningStyle.Render(text) }
func Info(text string) string    { return infoStyle.Render(text) }
func Silent(text string) string  { return silentStyle.Render(text) }
func Success(text string) string { return successStyle.Render(text) }

// Rate colors a completion percentage: green at the goal, orange from the
// shortfall threshold, red below it.
func Rate(rate int, text string) string {
	switch {
	case rate >= 100:
		return Success(text)
	case rate >= 80:
		return Primary(text)
	default:
		return Error(text)
	}
}

// Bar renders a horizontal bar of width cells filled to fraction.
func Bar(fraction float64, width int) string {
	if width <= 0 {
		return ""
	}
	fraction = min(max(fraction, 0), 1)
	filled := int(fraction*float64(width) + 0.5)
	return Primary(strings.Repeat("█", filled)) + Silent(strings.Repeat("░", width-filled))
}
