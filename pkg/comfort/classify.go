// Package comfort classifies a participant's local meeting time against
// their effective working-hour configuration.
package comfort

import (
	"fmt"

	"github.com/jbillay/coordino/pkg/localtime"
	"github.com/jbillay/coordino/pkg/workcfg"
)

// Status is the per-participant comfort color for a candidate time.
type Status int

const (
	// StatusGreen means the local time falls inside optimal working hours.
	StatusGreen Status = iota
	// StatusOrange means the local time is acceptable but outside the
	// optimal window.
	StatusOrange
	// StatusRed means the local time is outside all acceptable ranges, or
	// falls on a holiday or rest day.
	StatusRed
)

func (s Status) String() string {
	switch s {
	case StatusGreen:
		return "green"
	case StatusOrange:
		return "orange"
	case StatusRed:
		return "red"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// MarshalJSON encodes the status as its color name.
func (s Status) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// Classification is the result of evaluating one participant at one instant.
type Classification struct {
	Status Status `json:"status"`
	// CriticalRed is set only when the red was produced by the holiday or
	// rest-day rule, which carries a heavier score penalty than an
	// ordinary out-of-hours red.
	CriticalRed bool `json:"critical_red"`
	// Local is the projection the classification was derived from.
	Local localtime.Projection `json:"local"`
}

// Classify applies the comfort rules to a local date/time in strict priority
// order, first match wins:
//
//  1. holiday or rest day            -> red, critical
//  2. outside every configured range -> red
//  3. inside either orange range     -> orange
//  4. inside the green range         -> green
//
// The ordering is load-bearing: a holiday dominates any time-range match,
// and a configuration with gaps or overlaps still yields a single
// deterministic result (degrading to red) rather than an error. Classify
// never fails.
func Classify(local localtime.Projection, cfg workcfg.CountryConfig) Classification {
	c := Classification{Local: local}

	if cfg.IsHoliday(local.Date) || !cfg.IsWorkDay(local.Weekday) {
		c.Status = StatusRed
		c.CriticalRed = true
		return c
	}

	inOrange := cfg.OrangeMorning.Contains(local.TimeOfDay) || cfg.OrangeEvening.Contains(local.TimeOfDay)
	inGreen := cfg.Green.Contains(local.TimeOfDay)

	switch {
	case !inOrange && !inGreen:
		c.Status = StatusRed
	case inOrange:
		c.Status = StatusOrange
	default:
		c.Status = StatusGreen
	}
	return c
}
