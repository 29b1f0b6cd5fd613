// Package workcfg models per-country working-hour conventions and resolves
// the effective configuration for a meeting participant.
package workcfg

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"
)

// TimeOfDay is a local wall-clock time expressed as minutes since midnight.
type TimeOfDay int

// ClockTime builds a TimeOfDay from an hour and minute.
func ClockTime(hour, minute int) TimeOfDay {
	return TimeOfDay(hour*60 + minute)
}

// ParseTimeOfDay parses an "HH:MM" string. The format is exact: two-digit
// hour and minute, nothing before or after, so a malformed registry entry
// fails loudly instead of half-parsing.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	// time.Parse alone tolerates a one-digit hour; the length guard keeps
	// the format exact.
	if len(s) != 5 || s[2] != ':' {
		return 0, fmt.Errorf("invalid time of day %q: want HH:MM", s)
	}
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	return ClockTime(t.Hour(), t.Minute()), nil
}

// Hour returns the hour component (0-23).
func (t TimeOfDay) Hour() int { return int(t) / 60 }

// Minute returns the minute component (0-59).
func (t TimeOfDay) Minute() int { return int(t) % 60 }

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

// TimeRange is a half-open [Start, End) wall-clock interval within one day.
// A range with Start == End is empty.
type TimeRange struct {
	Start TimeOfDay `json:"start"`
	End   TimeOfDay `json:"end"`
}

// Contains reports whether t falls inside the half-open interval.
// The start bound is inclusive, the end bound exclusive, so adjacent
// ranges never overlap or gap at the boundary instant.
func (r TimeRange) Contains(t TimeOfDay) bool {
	return t >= r.Start && t < r.End
}

// Date is a calendar date in some participant's local calendar.
type Date struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
	Day   int        `json:"day"`
}

// DateOf extracts the calendar date of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDate parses a "YYYY-MM-DD" string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return DateOf(t), nil
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// CountryConfig is the effective working-hour convention for one country or
// one participant: the comfort time ranges, the set of working weekdays and
// the holiday calendar. Values are treated as immutable once built.
type CountryConfig struct {
	Green         TimeRange
	OrangeMorning TimeRange
	OrangeEvening TimeRange
	WorkDays      map[time.Weekday]bool
	Holidays      map[Date]bool
}

// IsWorkDay reports whether w is a working day under this configuration.
func (c CountryConfig) IsWorkDay(w time.Weekday) bool {
	return c.WorkDays[w]
}

// IsHoliday reports whether d is a holiday under this configuration.
func (c CountryConfig) IsHoliday(d Date) bool {
	return c.Holidays[d]
}

// Fingerprint is a stable digest of the configuration's contents. Two
// configurations classify identically if and only if their fingerprints
// match, which makes it the right cache-key component for memoized
// classifications: a participant-level override changes the fingerprint even
// when the registry itself is unchanged.
func (c CountryConfig) Fingerprint() string {
	var b strings.Builder
	writeConfig(&b, "cfg", c)
	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:8])
}

// Default returns the fallback configuration used when neither a
// participant-level nor a country-level override exists: green 09:00-17:00,
// orange 08:00-09:00 and 17:00-18:00, Monday-Friday work week, no holidays.
func Default() CountryConfig {
	return CountryConfig{
		Green:         TimeRange{Start: ClockTime(9, 0), End: ClockTime(17, 0)},
		OrangeMorning: TimeRange{Start: ClockTime(8, 0), End: ClockTime(9, 0)},
		OrangeEvening: TimeRange{Start: ClockTime(17, 0), End: ClockTime(18, 0)},
		WorkDays:      WeekdaysMonFri(),
		Holidays:      map[Date]bool{},
	}
}

// WeekdaysMonFri returns a fresh Monday-Friday work week set.
func WeekdaysMonFri() map[time.Weekday]bool {
	return map[time.Weekday]bool{
		time.Monday:    true,
		time.Tuesday:   true,
		time.Wednesday: true,
		time.Thursday:  true,
		time.Friday:    true,
	}
}

// Registry holds the default configuration plus per-country overrides and
// answers effective-configuration lookups. It is immutable after creation;
// the engine never mutates it.
type Registry struct {
	defaults  CountryConfig
	countries map[string]CountryConfig
	version   string
}

// NewRegistry builds a registry from an explicit default configuration and a
// country-code keyed override table. The default is dependency-injected
// rather than shared module state so tests can substitute their own.
func NewRegistry(defaults CountryConfig, countries map[string]CountryConfig) *Registry {
	if countries == nil {
		countries = map[string]CountryConfig{}
	}
	r := &Registry{defaults: defaults, countries: countries}
	r.version = r.fingerprint()
	return r
}

// Resolve returns the effective configuration for a participant, applying
// override precedence: participant-level override first, then the country
// override, then the default. Whichever level matches wins wholesale; fields
// are never merged across levels. A country code with no registered override
// silently falls through to the default; that is not an error.
func (r *Registry) Resolve(override *CountryConfig, countryCode string) CountryConfig {
	if override != nil {
		return *override
	}
	if cfg, ok := r.countries[countryCode]; ok {
		return cfg
	}
	return r.defaults
}

// Default returns the registry's fallback configuration.
func (r *Registry) Default() CountryConfig { return r.defaults }

// Version is a stable fingerprint of the registry contents, suitable as the
// "config version" component of caller-owned cache keys.
func (r *Registry) Version() string { return r.version }

func (r *Registry) fingerprint() string {
	var b strings.Builder
	writeConfig(&b, "default", r.defaults)
	codes := make([]string, 0, len(r.countries))
	for code := range r.countries {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	for _, code := range codes {
		writeConfig(&b, code, r.countries[code])
	}
	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:8])
}

func writeConfig(b *strings.Builder, key string, cfg CountryConfig) {
	fmt.Fprintf(b, "%s|g=%s-%s|om=%s-%s|oe=%s-%s|wd=",
		key,
		cfg.Green.Start, cfg.Green.End,
		cfg.OrangeMorning.Start, cfg.OrangeMorning.End,
		cfg.OrangeEvening.Start, cfg.OrangeEvening.End)
	for w := time.Sunday; w <= time.Saturday; w++ {
		if cfg.WorkDays[w] {
			fmt.Fprintf(b, "%d", int(w))
		}
	}
	holidays := make([]string, 0, len(cfg.Holidays))
	for d := range cfg.Holidays {
		holidays = append(holidays, d.String())
	}
	sort.Strings(holidays)
	fmt.Fprintf(b, "|h=%s\n", strings.Join(holidays, ","))
}
