// Package score aggregates per-participant comfort classifications into a
// normalized 0-100 equity score.
package score

import "github.com/jbillay/coordino/pkg/comfort"

// Point values per participant status. Critical red (holiday/rest day) is
// penalized far harder than an ordinary out-of-hours red.
const (
	pointsGreen       = 10
	pointsOrange      = 5
	pointsRed         = -15
	pointsCriticalRed = -50

	// offsetPerParticipant shifts both sides of the normalization ratio so
	// it stays non-negative even when every participant is critically red
	// (raw can reach -50 x N), and compresses the penalty of a single
	// critical red relative to the scale. The same constant must appear in
	// the numerator and denominator.
	offsetPerParticipant = 50
	maxPerParticipant    = 10
)

// Counts buckets participants by classification outcome. Red counts only
// non-critical reds; critical reds have their own bucket.
type Counts struct {
	Green       int `json:"green"`
	Orange      int `json:"orange"`
	Red         int `json:"red"`
	CriticalRed int `json:"critical_red"`
}

// Result is the aggregate equity outcome for one candidate time.
type Result struct {
	Raw        int     `json:"raw_score"`
	Max        int     `json:"max_score"`
	Normalized float64 `json:"normalized_score"`
	Counts     Counts  `json:"counts"`
}

// Grade maps a normalized score onto the display band used across the UI.
func (r Result) Grade() string {
	switch {
	case r.Normalized >= 90:
		return "Excellent"
	case r.Normalized >= 70:
		return "Good"
	case r.Normalized >= 50:
		return "Fair"
	default:
		return "Poor"
	}
}

// Score computes the equity score for a set of classifications:
//
//	normalized = ((raw + N*50) / (max + N*50)) * 100
//
// where max is N*10 (all green). The result is clamped to [0, 100] as a
// guard against future point-value changes; under the current values it
// never leaves that range. Zero participants scores 100: there is no one to
// inconvenience.
func Score(classifications []comfort.Classification) Result {
	n := len(classifications)
	if n == 0 {
		return Result{Normalized: 100}
	}

	var r Result
	for _, c := range classifications {
		switch {
		case c.CriticalRed:
			r.Counts.CriticalRed++
			r.Raw += pointsCriticalRed
		case c.Status == comfort.StatusRed:
			r.Counts.Red++
			r.Raw += pointsRed
		case c.Status == comfort.StatusOrange:
			r.Counts.Orange++
			r.Raw += pointsOrange
		default:
			r.Counts.Green++
			r.Raw += pointsGreen
		}
	}

	r.Max = n * maxPerParticipant
	offset := n * offsetPerParticipant
	r.Normalized = float64(r.Raw+offset) / float64(r.Max+offset) * 100

	if r.Normalized < 0 {
		r.Normalized = 0
	}
	if r.Normalized > 100 {
		r.Normalized = 100
	}
	return r
}
