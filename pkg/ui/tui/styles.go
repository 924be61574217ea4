package tui

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	// Palette
	accentCyan  = lipgloss.Color("#00D7D7")
	accentPink  = lipgloss.Color("#FF5FAF")
	okGreen     = lipgloss.Color("#5FD75F")
	warnOrange  = lipgloss.Color("#FF8700")
	failRed     = lipgloss.Color("#FF3030")
	valueYellow = lipgloss.Color("#FFD75F")
	dimWhite    = lipgloss.Color("#A8A8A8")
	darkBg      = lipgloss.Color("#121212")

	baseStyle = lipgloss.NewStyle().
			Foreground(dimWhite)

	headerStyle = lipgloss.NewStyle().
			Foreground(accentCyan).
			Bold(true).
			Padding(0, 1)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accentPink).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Background(accentPink).
			Foreground(darkBg).
			Bold(true).
			Padding(0, 1)

	statsLabelStyle = lipgloss.NewStyle().
			Foreground(accentCyan).
			Bold(true)

	statsValueStyle = lipgloss.NewStyle().
			Foreground(valueYellow)

	successStyle = lipgloss.NewStyle().
			Foreground(okGreen).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(failRed).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(warnOrange).
			Bold(true)

	skippedStyle = lipgloss.NewStyle().
			Foreground(dimWhite).
			Faint(true)

	logTimestampStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#666666"))

	logMessageStyle = lipgloss.NewStyle().
			Foreground(dimWhite)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262")).
			Padding(0, 0, 0, 1)
)

// levelColor maps a log level to its display color
func levelColor(level string) lipgloss.Color {
	switch level {
	case "ERROR", "FATAL":
		return failRed
	case "WARN":
		return warnOrange
	case "SUCCESS":
		return okGreen
	case "INFO":
		return accentCyan
	default:
		return dimWhite
	}
}

// stateStyle returns the style used for an item in the given state
func stateStyle(s ItemState) lipgloss.Style {
	switch s {
	case ItemProcessed:
		return successStyle
	case ItemFailed:
		return errorStyle
	case ItemSkipped:
		return skippedStyle
	default:
		return warningStyle
	}
}
