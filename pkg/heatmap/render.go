package heatmap

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// barWidth is the column budget for the score bar; 100 points map onto it.
const barWidth = 25

// Render produces a terminal visualization of a day's heatmap. Each line is
// one candidate UTC hour with its score bar, grade and status buckets; the
// organizer's originally proposed hour is marked. The best-scoring hours are
// the "sweet spots" an organizer should gravitate toward.
func Render(entries []Entry, proposedHour int) string {
	var output strings.Builder

	output.WriteString("📊 Equity Heatmap (UTC start hours)\n")
	output.WriteString(strings.Repeat("─", 60) + "\n")

	best := -1.0
	for _, e := range entries {
		if e.Score.Normalized > best {
			best = e.Score.Normalized
		}
	}

	for _, e := range entries {
		line := fmt.Sprintf("%02d:%02d ", e.Hour, e.StartUTC.Minute())

		barLength := int(e.Score.Normalized) * barWidth / 100
		if barLength == 0 && e.Score.Normalized > 0 {
			barLength = 1
		}
		bar := strings.Repeat("█", barLength)

		c := scoreColor(e.Score.Normalized)
		line += c.Sprintf("%-*s", barWidth, bar)
		line += fmt.Sprintf(" %3.0f", e.Score.Normalized)

		counts := e.Score.Counts
		line += color.New(color.FgHiBlack).Sprintf("  g:%d o:%d r:%d cr:%d",
			counts.Green, counts.Orange, counts.Red, counts.CriticalRed)

		if e.Hour == proposedHour {
			line += color.New(color.FgCyan).Sprint("  ◀ proposed")
		} else if e.Score.Normalized == best && best > 0 {
			line += color.New(color.FgGreen).Sprint("  ★")
		}

		output.WriteString(line + "\n")
	}

	return output.String()
}

func scoreColor(normalized float64) *color.Color {
	switch {
	case normalized >= 70:
		return color.New(color.FgGreen)
	case normalized >= 50:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgRed)
	}
}
