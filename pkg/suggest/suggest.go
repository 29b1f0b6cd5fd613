// Package suggest ranks heatmap entries into a short list of better
// alternative meeting times.
package suggest

import (
	"sort"

	"github.com/jbillay/coordino/pkg/heatmap"
)

// DefaultTopN is the usual suggestion list length.
const DefaultTopN = 3

// Rank orders heatmap entries by normalized score descending and returns the
// top topN. Ties break toward fewer critical-red participants, then fewer
// red participants, then the hour numerically closest to proposedHour so the
// organizer's intent is disturbed as little as possible.
//
// The input is never mutated; ranking works on a copy. When the entries hold
// fewer than topN distinct scores the full sorted list is returned rather
// than padding or inventing entries.
func Rank(entries []heatmap.Entry, topN, proposedHour int) []heatmap.Entry {
	ranked := make([]heatmap.Entry, len(entries))
	copy(ranked, entries)

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Score.Normalized != b.Score.Normalized {
			return a.Score.Normalized > b.Score.Normalized
		}
		if a.Score.Counts.CriticalRed != b.Score.Counts.CriticalRed {
			return a.Score.Counts.CriticalRed < b.Score.Counts.CriticalRed
		}
		if a.Score.Counts.Red != b.Score.Counts.Red {
			return a.Score.Counts.Red < b.Score.Counts.Red
		}
		return hourDistance(a.Hour, proposedHour) < hourDistance(b.Hour, proposedHour)
	})

	if topN <= 0 || topN >= len(ranked) {
		return ranked
	}
	if distinctScores(ranked) < topN {
		return ranked
	}
	return ranked[:topN]
}

func distinctScores(entries []heatmap.Entry) int {
	seen := make(map[float64]bool, len(entries))
	for _, e := range entries {
		seen[e.Score.Normalized] = true
	}
	return len(seen)
}

func hourDistance(a, b int) int {
	if a > b {
		return a - b
	}
	return b - a
}
