package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/verdancy/bramble"
)

var (
	summaryBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#22c55e")).
			Padding(0, 1)
	summaryLabel = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#22c55e"))
	summaryDim   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6e7681"))
)

// Summary renders a one-box recap of a render result.
func Summary(res *bramble.Result) string {
	parts := []string{
		fmt.Sprintf("%s %d", summaryLabel.Render("segments"), res.Path.Len()),
		fmt.Sprintf("%s %d", summaryLabel.Render("draws"), res.Expansion.DrawCount),
		fmt.Sprintf("%s %s", summaryLabel.Render("elapsed"), res.Elapsed.Round(elapsedUnit(res.Elapsed))),
	}
	if res.Preset != "" {
		parts = append([]string{summaryLabel.Render("preset") + " " + res.Preset}, parts...)
	}

	var flags []string
	if res.Expansion.Truncated {
		flags = append(flags, "budget hit")
	}
	if res.Expansion.Dropped > 0 {
		flags = append(flags, fmt.Sprintf("%d symbols dropped", res.Expansion.Dropped))
	}
	if res.CacheHit {
		flags = append(flags, "cached")
	}

	line := strings.Join(parts, summaryDim.Render("  ·  "))
	if len(flags) > 0 {
		line += "\n" + summaryDim.Render(strings.Join(flags, ", "))
	}
	return summaryBorder.Render(line)
}

// elapsedUnit picks a rounding unit that keeps the elapsed time readable.
func elapsedUnit(d time.Duration) time.Duration {
	switch {
	case d < time.Millisecond:
		return time.Microsecond
	case d < time.Second:
		return time.Millisecond
	default:
		return 10 * time.Millisecond
	}
}
