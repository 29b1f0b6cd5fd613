// Package localtime projects UTC instants into a participant's local wall
// clock using the IANA timezone database, so daylight-saving rules in effect
// on the specific candidate date are honored.
package localtime

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jbillay/coordino/pkg/workcfg"
)

// ErrUnknownTimezone marks an unrecognized IANA timezone identifier. The
// projector never falls back to UTC: a silent substitution would corrupt a
// scheduling decision downstream.
var ErrUnknownTimezone = errors.New("unknown timezone")

// Projection is the local view of one UTC instant. Local date may differ
// from the UTC calendar date when the offset rolls past midnight; holiday and
// work-day checks must use Date, never the UTC date.
type Projection struct {
	Local     time.Time         `json:"local"`
	Date      workcfg.Date      `json:"date"`
	TimeOfDay workcfg.TimeOfDay `json:"time_of_day"`
	Weekday   time.Weekday      `json:"weekday"`
}

// DB projects instants through the system timezone database, memoizing
// location lookups. Safe for concurrent use.
type DB struct {
	mu        sync.RWMutex
	locations map[string]*time.Location
}

// NewDB returns an empty projector backed by time.LoadLocation.
func NewDB() *DB {
	return &DB{locations: make(map[string]*time.Location)}
}

// Project converts a UTC instant into the local wall clock of the given
// timezone. The DST offset applied is the one in force at that instant, not
// a fixed current offset, so candidates weeks ahead that cross a transition
// resolve correctly.
func (db *DB) Project(utc time.Time, timezoneID string) (Projection, error) {
	loc, err := db.location(timezoneID)
	if err != nil {
		return Projection{}, err
	}

	local := utc.In(loc)
	return Projection{
		Local:     local,
		Date:      workcfg.DateOf(local),
		TimeOfDay: workcfg.ClockTime(local.Hour(), local.Minute()),
		Weekday:   local.Weekday(),
	}, nil
}

func (db *DB) location(id string) (*time.Location, error) {
	db.mu.RLock()
	loc, ok := db.locations[id]
	db.mu.RUnlock()
	if ok {
		return loc, nil
	}

	loc, err := time.LoadLocation(id)
	if err != nil || id == "" {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTimezone, id)
	}

	db.mu.Lock()
	db.locations[id] = loc
	db.mu.Unlock()
	return loc, nil
}
