package suggest

import (
	"testing"
	"time"

	"github.com/jbillay/coordino/pkg/heatmap"
	"github.com/jbillay/coordino/pkg/score"
)

func entry(hour int, normalized float64, criticalRed, red int) heatmap.Entry {
	return heatmap.Entry{
		Hour:     hour,
		StartUTC: time.Date(2026, 3, 12, hour, 0, 0, 0, time.UTC),
		Score: score.Result{
			Normalized: normalized,
			Counts:     score.Counts{CriticalRed: criticalRed, Red: red},
		},
	}
}

func TestRankOrdersByScoreDescending(t *testing.T) {
	entries := []heatmap.Entry{
		entry(1, 40, 0, 2),
		entry(2, 90, 0, 0),
		entry(3, 65, 0, 1),
		entry(4, 100, 0, 0),
	}

	ranked := Rank(entries, 4, 1)
	want := []int{4, 2, 3, 1}
	for i, hour := range want {
		if ranked[i].Hour != hour {
			t.Errorf("position %d: hour %d, want %d", i, ranked[i].Hour, hour)
		}
	}
}

func TestRankTieBreaks(t *testing.T) {
	// Equal scores: fewer critical reds first, then fewer reds, then the
	// hour closest to the proposal.
	entries := []heatmap.Entry{
		entry(3, 50, 2, 0),
		entry(5, 50, 1, 3),
		entry(7, 50, 1, 1),
		entry(14, 50, 1, 1),
	}

	ranked := Rank(entries, 4, 15)
	want := []int{14, 7, 5, 3}
	for i, hour := range want {
		if ranked[i].Hour != hour {
			t.Errorf("position %d: hour %d, want %d (ranked: %v)", i, ranked[i].Hour, hour, hours(ranked))
		}
	}
}

func TestRankTruncatesToTopN(t *testing.T) {
	entries := make([]heatmap.Entry, 0, 24)
	for h := range 24 {
		entries = append(entries, entry(h, float64(h*4), 0, 0))
	}

	ranked := Rank(entries, 3, 12)
	if len(ranked) != 3 {
		t.Fatalf("got %d suggestions, want 3", len(ranked))
	}
	if ranked[0].Hour != 23 {
		t.Errorf("best suggestion hour = %d, want 23", ranked[0].Hour)
	}
}

func TestRankReturnsAllWhenScoresCollapse(t *testing.T) {
	// Fewer distinct scores than topN: return everything sorted instead of
	// padding or inventing entries.
	entries := make([]heatmap.Entry, 0, 24)
	for h := range 24 {
		entries = append(entries, entry(h, 50, 0, 0))
	}

	ranked := Rank(entries, 3, 12)
	if len(ranked) != 24 {
		t.Fatalf("got %d suggestions, want all 24 when scores collapse", len(ranked))
	}
	// Proximity tie-break puts the proposed hour itself first.
	if ranked[0].Hour != 12 {
		t.Errorf("first suggestion hour = %d, want 12", ranked[0].Hour)
	}
}

func TestRankDoesNotMutateInput(t *testing.T) {
	entries := []heatmap.Entry{entry(0, 10, 0, 0), entry(1, 90, 0, 0)}
	Rank(entries, 2, 0)
	if entries[0].Hour != 0 || entries[1].Hour != 1 {
		t.Error("input slice order must be preserved")
	}
}

func hours(entries []heatmap.Entry) []int {
	out := make([]int, len(entries))
	for i, e := range entries {
		out[i] = e.Hour
	}
	return out
}
