package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/masteryrank/internal/ui/theme"
)

// MasteryBar renders a mastery level as a fixed-width text bar.
type MasteryBar struct {
	Percent     float64 // 0-1
	ShowPercent bool
	Width       int
}

// NewMasteryBar creates a mastery bar.
func NewMasteryBar(percent float64, showPercent bool, width int) MasteryBar {
	return MasteryBar{
		Percent:     percent,
		ShowPercent: showPercent,
		Width:       width,
	}
}

// View renders the bar. Without styling the bar is drawn with # and .
// so it survives plain terminals and logs.
func (p MasteryBar) View() string {
	barWidth := max(p.Width, 4)

	filled := int(float64(barWidth)*p.Percent + 0.5)
	filled = min(max(filled, 0), barWidth)
	empty := barWidth - filled

	var result string
	if theme.Enabled {
		result = lipgloss.NewStyle().
			Foreground(theme.Mastery(p.Percent).GetForeground()).
			Render(strings.Repeat("█", filled)) +
			lipgloss.NewStyle().
				Foreground(theme.Border).
				Render(strings.Repeat("░", empty))
	} else {
		result = strings.Repeat("#", filled) + strings.Repeat(".", empty)
	}

	if p.ShowPercent {
		result += theme.Render(theme.Dim, fmt.Sprintf(" %3d%%", int(p.Percent*100+0.5)))
	}
	return result
}
