package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/masteryrank/internal/knowledge"
	"github.com/abhisek/masteryrank/internal/ui/components"
	"github.com/abhisek/masteryrank/internal/ui/theme"
)

const barWidth = 20

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func heading(w io.Writer, title string, width int) {
	fmt.Fprintln(w, theme.Render(theme.Title, title))
	fmt.Fprintln(w, theme.Render(theme.Dim, strings.Repeat("─", width)))
}

func rule(w io.Writer, width int) {
	fmt.Fprintln(w, theme.Render(theme.Dim, strings.Repeat("─", width)))
}

func masteryBar(m float64) string {
	return components.NewMasteryBar(m, true, barWidth).View()
}

func riskLabel(r knowledge.RiskLevel) string {
	return theme.Render(theme.Risk(string(r)), fmt.Sprintf("%-6s", r))
}

func trendLabel(t knowledge.Trend) string {
	switch t {
	case knowledge.TrendImproving:
		return theme.Render(theme.Good, "↑ improving")
	case knowledge.TrendDeclining:
		return theme.Render(theme.Bad, "↓ declining")
	default:
		return theme.Render(theme.Dim, "→ stable")
	}
}

func skillLabel(id, name string) string {
	if name == "" || name == id {
		return id
	}
	return fmt.Sprintf("%s (%s)", id, name)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

func formatCost(usd float64) string {
	if usd < 0.01 {
		return fmt.Sprintf("$%.4f", usd)
	}
	return fmt.Sprintf("$%.2f", usd)
}

// formatDuration renders whole days, hours or minutes.
func formatDuration(d time.Duration) string {
	switch {
	case d <= 0:
		return "now"
	case d >= 48*time.Hour:
		return fmt.Sprintf("%.0fd", d.Hours()/24)
	case d >= time.Hour:
		return fmt.Sprintf("%.0fh", d.Hours())
	default:
		return fmt.Sprintf("%.0fm", d.Minutes())
	}
}

func formatAgo(t, now time.Time) string {
	if t.IsZero() {
		return "never"
	}
	d := now.Sub(t)
	if d <= 0 {
		return "just now"
	}
	return formatDuration(d) + " ago"
}

// padRight pads s to width visible cells, ignoring styling escapes.
func padRight(s string, width int) string {
	return s + strings.Repeat(" ", max(0, width-lipgloss.Width(s)))
}
