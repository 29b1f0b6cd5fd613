package equity

import (
	"time"

	"github.com/jbillay/coordino/pkg/comfort"
	"github.com/jbillay/coordino/pkg/evalcache"
	"github.com/jbillay/coordino/pkg/localtime"
	"github.com/jbillay/coordino/pkg/score"
	"github.com/jbillay/coordino/pkg/workcfg"
)

// Participant is one attendee of a proposed meeting. The engine treats it as
// immutable input; it is never mutated or retained across calls.
type Participant struct {
	// ID is an opaque identifier owned by the caller.
	ID string `json:"id"`
	// Timezone is an IANA timezone identifier, e.g. "America/New_York".
	Timezone string `json:"timezone"`
	// Country selects a country-level configuration override, if one is
	// registered. Optional.
	Country string `json:"country,omitempty"`
	// Override, when set, wins over any country or default configuration
	// wholesale.
	Override *workcfg.CountryConfig `json:"-"`
}

// Meeting is a candidate meeting: a UTC start instant plus a duration. The
// duration is display context only; classification uses the start instant.
type Meeting struct {
	Start    time.Time     `json:"start"`
	Duration time.Duration `json:"duration,omitempty"`
}

// ParticipantStatus is one participant's classification for a candidate time.
type ParticipantStatus struct {
	ParticipantID string               `json:"participant_id"`
	Timezone      string               `json:"timezone"`
	Status        comfort.Status       `json:"status"`
	CriticalRed   bool                 `json:"critical_red"`
	Local         localtime.Projection `json:"local"`
}

// Evaluation is the full result for one candidate meeting time.
type Evaluation struct {
	Meeting      Meeting             `json:"meeting"`
	Participants []ParticipantStatus `json:"participants"`
	Score        score.Result        `json:"score"`
	Grade        string              `json:"grade"`
}

// Projector converts a UTC instant into a participant's local wall clock.
// The default implementation is backed by the system timezone database; tests
// may substitute their own.
type Projector interface {
	Project(utc time.Time, timezoneID string) (localtime.Projection, error)
}

// Option configures an Engine.
type Option func(*options)

type options struct {
	projector Projector
	cache     *evalcache.Cache
}

// WithProjector replaces the timezone projector.
func WithProjector(p Projector) Option {
	return func(o *options) {
		o.projector = p
	}
}

// WithCache injects a caller-owned classification cache. The engine never
// creates or hides one itself; without this option every call recomputes.
func WithCache(c *evalcache.Cache) Option {
	return func(o *options) {
		o.cache = c
	}
}
