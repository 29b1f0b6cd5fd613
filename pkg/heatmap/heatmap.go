// Package heatmap scores every candidate start hour of a UTC calendar day
// across all participants, producing one entry per hour.
package heatmap

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jbillay/coordino/pkg/comfort"
	"github.com/jbillay/coordino/pkg/localtime"
	"github.com/jbillay/coordino/pkg/score"
	"github.com/jbillay/coordino/pkg/workcfg"
)

// HoursPerDay is the number of candidate slots in a heatmap.
const HoursPerDay = 24

// Projector converts a UTC instant into a participant's local wall clock.
type Projector interface {
	Project(utc time.Time, timezoneID string) (localtime.Projection, error)
}

// Attendee is one participant with their configuration already resolved.
// Resolution happens once per participant; it does not vary by hour.
type Attendee struct {
	ID     string
	Zone   string
	Config workcfg.CountryConfig
}

// Entry is the score for one candidate hour of the day.
type Entry struct {
	Hour     int          `json:"hour"`
	StartUTC time.Time    `json:"start_utc"`
	Score    score.Result `json:"score"`
}

// Generate evaluates all 24 candidate start hours of the UTC calendar day
// containing day, with the minute component fixed uniformly at minute so
// entries stay comparable. Hours are evaluated concurrently; every slot is
// an independent pure computation, so evaluation order cannot change the
// result. The heatmap is exhaustive: no hour is skipped even when every
// participant is red for it.
//
// An unresolvable participant timezone fails the whole generation; a partial
// heatmap would not be meaningful.
func Generate(ctx context.Context, day time.Time, minute int, attendees []Attendee, projector Projector) ([]Entry, error) {
	utcDay := day.UTC()
	base := time.Date(utcDay.Year(), utcDay.Month(), utcDay.Day(), 0, minute, 0, 0, time.UTC)

	var (
		entries [HoursPerDay]Entry
		errs    [HoursPerDay]error
		wg      sync.WaitGroup
	)

	for hour := range HoursPerDay {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := ctx.Err(); err != nil {
				errs[hour] = err
				return
			}
			start := base.Add(time.Duration(hour) * time.Hour)
			result, err := evaluate(start, attendees, projector)
			if err != nil {
				errs[hour] = err
				return
			}
			entries[hour] = Entry{Hour: hour, StartUTC: start, Score: result}
		}()
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return entries[:], nil
}

func evaluate(start time.Time, attendees []Attendee, projector Projector) (score.Result, error) {
	classifications := make([]comfort.Classification, 0, len(attendees))
	for _, a := range attendees {
		local, err := projector.Project(start, a.Zone)
		if err != nil {
			return score.Result{}, fmt.Errorf("participant %s: %w", a.ID, err)
		}
		classifications = append(classifications, comfort.Classify(local, a.Config))
	}
	return score.Score(classifications), nil
}
