package score

import (
	"math"
	"testing"

	"github.com/jbillay/coordino/pkg/comfort"
)

func green() comfort.Classification {
	return comfort.Classification{Status: comfort.StatusGreen}
}

func orange() comfort.Classification {
	return comfort.Classification{Status: comfort.StatusOrange}
}

func red() comfort.Classification {
	return comfort.Classification{Status: comfort.StatusRed}
}

func criticalRed() comfort.Classification {
	return comfort.Classification{Status: comfort.StatusRed, CriticalRed: true}
}

// TestWorkedExample reproduces the documented scenario: four participants,
// two critical red and two red, score 29/100 (Poor).
func TestWorkedExample(t *testing.T) {
	result := Score([]comfort.Classification{criticalRed(), criticalRed(), red(), red()})

	if result.Raw != -130 {
		t.Errorf("raw = %d, want -130", result.Raw)
	}
	if result.Max != 40 {
		t.Errorf("max = %d, want 40", result.Max)
	}
	// ((-130 + 200) / (40 + 200)) * 100 = 29.166...
	if math.Round(result.Normalized) != 29 {
		t.Errorf("normalized = %.4f, want ~29", result.Normalized)
	}
	if result.Grade() != "Poor" {
		t.Errorf("grade = %q, want Poor", result.Grade())
	}
	if result.Counts.CriticalRed != 2 || result.Counts.Red != 2 || result.Counts.Green != 0 {
		t.Errorf("counts = %+v, want 2 critical red + 2 red", result.Counts)
	}
}

func TestZeroParticipants(t *testing.T) {
	result := Score(nil)
	if result.Normalized != 100 {
		t.Errorf("empty set normalized = %v, want 100 (no one to inconvenience)", result.Normalized)
	}
	if result.Max != 0 || result.Raw != 0 {
		t.Errorf("empty set raw/max = %d/%d, want 0/0", result.Raw, result.Max)
	}
}

func TestAllGreenIsPerfect(t *testing.T) {
	result := Score([]comfort.Classification{green(), green(), green()})
	if result.Normalized != 100 {
		t.Errorf("all green normalized = %v, want 100", result.Normalized)
	}
}

func TestAllCriticalRedIsZero(t *testing.T) {
	// raw = -50N exactly cancels the +50N offset.
	result := Score([]comfort.Classification{criticalRed(), criticalRed()})
	if result.Normalized != 0 {
		t.Errorf("all critical red normalized = %v, want 0", result.Normalized)
	}
}

// TestMonotonicity upgrades a single participant one step at a time while
// the rest stay fixed; the normalized score must strictly increase.
func TestMonotonicity(t *testing.T) {
	ladder := []comfort.Classification{criticalRed(), red(), orange(), green()}
	background := []comfort.Classification{green(), red(), orange()}

	prev := -1.0
	for i, status := range ladder {
		result := Score(append([]comfort.Classification{status}, background...))
		if result.Normalized <= prev {
			t.Errorf("step %d: normalized %.4f did not increase from %.4f", i, result.Normalized, prev)
		}
		prev = result.Normalized
	}
}

func TestBounds(t *testing.T) {
	ladder := []comfort.Classification{criticalRed(), red(), orange(), green()}

	// Every assignment of 1..4 participants drawn from the ladder stays in
	// [0, 100].
	for _, a := range ladder {
		for _, b := range ladder {
			for _, c := range ladder {
				result := Score([]comfort.Classification{a, b, c})
				if result.Normalized < 0 || result.Normalized > 100 {
					t.Fatalf("normalized %.4f out of [0, 100] for %+v", result.Normalized, result.Counts)
				}
			}
		}
	}
}

func TestGradeBands(t *testing.T) {
	tests := []struct {
		normalized float64
		want       string
	}{
		{100, "Excellent"},
		{90, "Excellent"},
		{75, "Good"},
		{55, "Fair"},
		{29, "Poor"},
		{0, "Poor"},
	}
	for _, tt := range tests {
		r := Result{Normalized: tt.normalized}
		if got := r.Grade(); got != tt.want {
			t.Errorf("Grade(%.0f) = %q, want %q", tt.normalized, got, tt.want)
		}
	}
}
