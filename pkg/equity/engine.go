// Package equity computes how fair a proposed meeting time is across
// participants scattered over timezones, countries and working-hour
// conventions: per-participant comfort classifications, an aggregate 0-100
// equity score, a full-day heatmap and ranked alternative times.
//
// The engine is pure and stateless: it performs no I/O, retains nothing
// between calls and receives every input explicitly, so a single evaluation
// runs to completion synchronously on the calling goroutine.
package equity

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jbillay/coordino/pkg/comfort"
	"github.com/jbillay/coordino/pkg/evalcache"
	"github.com/jbillay/coordino/pkg/heatmap"
	"github.com/jbillay/coordino/pkg/localtime"
	"github.com/jbillay/coordino/pkg/score"
	"github.com/jbillay/coordino/pkg/suggest"
	"github.com/jbillay/coordino/pkg/workcfg"
)

// Engine evaluates candidate meeting times. Construct with New; the zero
// value is not usable.
type Engine struct {
	logger    *slog.Logger
	registry  *workcfg.Registry
	projector Projector
	cache     *evalcache.Cache
}

// New creates an Engine around a configuration registry. A nil logger falls
// back to slog.Default, a nil registry means "defaults only", and the
// projector defaults to the system timezone database.
func New(logger *slog.Logger, registry *workcfg.Registry, opts ...Option) *Engine {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if logger == nil {
		logger = slog.Default()
	}
	if o.projector == nil {
		o.projector = localtime.NewDB()
	}
	if registry == nil {
		registry = workcfg.NewRegistry(workcfg.Default(), nil)
	}
	return &Engine{
		logger:    logger,
		registry:  registry,
		projector: o.projector,
		cache:     o.cache,
	}
}

// Evaluate classifies every participant at the meeting's start instant and
// aggregates the equity score. Any participant with an unresolvable timezone
// fails the whole evaluation: a partial equity score is meaningless.
func (e *Engine) Evaluate(ctx context.Context, meeting Meeting, participants []Participant) (*Evaluation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := meeting.Start.UTC()
	statuses := make([]ParticipantStatus, 0, len(participants))
	classifications := make([]comfort.Classification, 0, len(participants))

	for _, p := range participants {
		cls, err := e.classify(start, p)
		if err != nil {
			return nil, err
		}
		classifications = append(classifications, cls)
		statuses = append(statuses, ParticipantStatus{
			ParticipantID: p.ID,
			Timezone:      p.Timezone,
			Status:        cls.Status,
			CriticalRed:   cls.CriticalRed,
			Local:         cls.Local,
		})
	}

	result := score.Score(classifications)
	e.logger.Debug("meeting evaluated",
		"start", start,
		"participants", len(participants),
		"score", result.Normalized,
		"critical_red", result.Counts.CriticalRed)

	return &Evaluation{
		Meeting:      Meeting{Start: start, Duration: meeting.Duration},
		Participants: statuses,
		Score:        result,
		Grade:        result.Grade(),
	}, nil
}

// Heatmap scores all 24 candidate start hours of the UTC calendar day of the
// proposal. The minute component of the proposal is applied uniformly to
// every slot so entries stay comparable.
func (e *Engine) Heatmap(ctx context.Context, proposal Meeting, participants []Participant) ([]heatmap.Entry, error) {
	start := proposal.Start.UTC()
	attendees := make([]heatmap.Attendee, 0, len(participants))
	for _, p := range participants {
		attendees = append(attendees, heatmap.Attendee{
			ID:     p.ID,
			Zone:   p.Timezone,
			Config: e.registry.Resolve(p.Override, p.Country),
		})
	}

	began := time.Now()
	entries, err := heatmap.Generate(ctx, start, start.Minute(), attendees, e.projector)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("heatmap generated",
		"day", start.Format("2006-01-02"),
		"participants", len(participants),
		"duration_ms", time.Since(began).Milliseconds())
	return entries, nil
}

// Suggest returns the topN best alternative start hours for the proposal's
// day, ranked by score with ties broken toward fewer critical reds, fewer
// reds, then proximity to the proposed hour.
func (e *Engine) Suggest(ctx context.Context, proposal Meeting, participants []Participant, topN int) ([]heatmap.Entry, error) {
	entries, err := e.Heatmap(ctx, proposal, participants)
	if err != nil {
		return nil, err
	}
	return suggest.Rank(entries, topN, proposal.Start.UTC().Hour()), nil
}

// classify resolves one participant's effective configuration and classifies
// their local time, consulting the injected cache when one was provided.
// The cache key covers the resolved configuration, not just the registry, so
// a participant-level override never collides with an earlier evaluation of
// the same participant and instant.
func (e *Engine) classify(start time.Time, p Participant) (comfort.Classification, error) {
	cfg := e.registry.Resolve(p.Override, p.Country)

	var key string
	if e.cache != nil {
		key = evalcache.Key(p.ID, start, cfg.Fingerprint())
		if cls, ok := e.cache.Get(key); ok {
			return cls, nil
		}
	}

	local, err := e.projector.Project(start, p.Timezone)
	if err != nil {
		return comfort.Classification{}, fmt.Errorf("participant %s: %w", p.ID, err)
	}

	cls := comfort.Classify(local, cfg)

	if e.cache != nil {
		e.cache.Set(key, cls)
	}
	return cls, nil
}
