package theme

import (
	"charm.land/lipgloss/v2"
)

// Color palette
var (
	Primary   = lipgloss.Color("#8B5CF6") // Vivid Purple
	Secondary = lipgloss.Color("#14B8A6") // Teal
	Accent    = lipgloss.Color("#F97316") // Orange
	Success   = lipgloss.Color("#22C55E") // Green
	Error     = lipgloss.Color("#F43F5E") // Rose
	Text      = lipgloss.Color("#F8FAFC") // White
	TextDim   = lipgloss.Color("#94A3B8") // Slate
	Border    = lipgloss.Color("#334155") // Slate
)

// Enabled turns styling on. Commands switch it off for pipes, NO_COLOR
// and machine-readable output.
var Enabled = true

// Typography
var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary)

	Header = lipgloss.NewStyle().
		Bold(true).
		Foreground(Text)

	Dim = lipgloss.NewStyle().
		Foreground(TextDim)

	Hint = lipgloss.NewStyle().
		Foreground(TextDim).
		Italic(true)
)

// Risk and trend markers
var (
	Good = lipgloss.NewStyle().
		Foreground(Success).
		Bold(true)

	Warn = lipgloss.NewStyle().
		Foreground(Accent).
		Bold(true)

	Bad = lipgloss.NewStyle().
		Foreground(Error).
		Bold(true)
)

// Render applies style to s when styling is enabled.
func Render(style lipgloss.Style, s string) string {
	if !Enabled {
		return s
	}
	return style.Render(s)
}

// Risk picks the marker style for a risk level name.
func Risk(level string) lipgloss.Style {
	switch level {
	case "low":
		return Good
	case "medium":
		return Warn
	default:
		return Bad
	}
}

// Mastery picks the marker style for a mastery level in [0,1].
func Mastery(m float64) lipgloss.Style {
	switch {
	case m >= 0.7:
		return Good
	case m >= 0.4:
		return Warn
	default:
		return Bad
	}
}
