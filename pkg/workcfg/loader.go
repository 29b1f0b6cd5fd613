package workcfg

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/teambition/rrule-go"
	"gopkg.in/yaml.v3"
)

// RangeSpec is the on-disk form of a TimeRange, with "HH:MM" bounds.
type RangeSpec struct {
	Start string `yaml:"start" json:"start"`
	End   string `yaml:"end" json:"end"`
}

// ConfigSpec is the on-disk form of a CountryConfig. Weekdays are lowercase
// English names; holidays are "YYYY-MM-DD" dates or yearly RRULE expressions
// expanded over the compile window.
type ConfigSpec struct {
	Green             RangeSpec `yaml:"green" json:"green"`
	OrangeMorning     RangeSpec `yaml:"orange_morning" json:"orange_morning"`
	OrangeEvening     RangeSpec `yaml:"orange_evening" json:"orange_evening"`
	WorkDays          []string  `yaml:"work_days" json:"work_days,omitempty"`
	Holidays          []string  `yaml:"holidays" json:"holidays,omitempty"`
	RecurringHolidays []string  `yaml:"recurring_holidays" json:"recurring_holidays,omitempty"`
}

// RegistrySpec is the top-level registry file: an optional replacement for
// the built-in default plus per-country overrides.
type RegistrySpec struct {
	Default   *ConfigSpec           `yaml:"default" json:"default,omitempty"`
	Countries map[string]ConfigSpec `yaml:"countries" json:"countries,omitempty"`
}

var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// Compile validates the spec and produces a CountryConfig. Recurring holiday
// rules are expanded into concrete dates between from and to; fixed holiday
// dates are kept regardless of the window. An empty work_days list means the
// conventional Monday-Friday week.
func (s ConfigSpec) Compile(from, to time.Time) (CountryConfig, error) {
	cfg := CountryConfig{Holidays: map[Date]bool{}}

	var err error
	if cfg.Green, err = s.Green.compile(); err != nil {
		return CountryConfig{}, fmt.Errorf("green: %w", err)
	}
	if cfg.OrangeMorning, err = s.OrangeMorning.compile(); err != nil {
		return CountryConfig{}, fmt.Errorf("orange_morning: %w", err)
	}
	if cfg.OrangeEvening, err = s.OrangeEvening.compile(); err != nil {
		return CountryConfig{}, fmt.Errorf("orange_evening: %w", err)
	}

	if len(s.WorkDays) == 0 {
		cfg.WorkDays = WeekdaysMonFri()
	} else {
		cfg.WorkDays = map[time.Weekday]bool{}
		for _, name := range s.WorkDays {
			w, ok := weekdayNames[strings.ToLower(strings.TrimSpace(name))]
			if !ok {
				return CountryConfig{}, fmt.Errorf("unknown weekday %q", name)
			}
			cfg.WorkDays[w] = true
		}
	}

	for _, raw := range s.Holidays {
		d, err := ParseDate(raw)
		if err != nil {
			return CountryConfig{}, err
		}
		cfg.Holidays[d] = true
	}

	for _, raw := range s.RecurringHolidays {
		if err := expandRecurring(raw, from, to, cfg.Holidays); err != nil {
			return CountryConfig{}, err
		}
	}

	return cfg, nil
}

func (r RangeSpec) compile() (TimeRange, error) {
	// Both bounds empty means "no such range"; TimeRange{} is empty by
	// construction since [0,0) contains nothing.
	if r.Start == "" && r.End == "" {
		return TimeRange{}, nil
	}
	start, err := ParseTimeOfDay(r.Start)
	if err != nil {
		return TimeRange{}, err
	}
	end, err := ParseTimeOfDay(r.End)
	if err != nil {
		return TimeRange{}, err
	}
	return TimeRange{Start: start, End: end}, nil
}

// expandRecurring evaluates a yearly RRULE over [from, to] and records each
// occurrence's calendar date as a holiday.
func expandRecurring(raw string, from, to time.Time, into map[Date]bool) error {
	rule, err := rrule.StrToRRule(strings.TrimPrefix(strings.TrimSpace(raw), "RRULE:"))
	if err != nil {
		return fmt.Errorf("invalid recurring holiday %q: %w", raw, err)
	}
	rule.DTStart(from.UTC())
	for _, occ := range rule.Between(from.UTC(), to.UTC(), true) {
		into[DateOf(occ)] = true
	}
	return nil
}

// Compile builds a Registry from the spec, expanding recurring holidays over
// the given window for every country.
func (s RegistrySpec) Compile(from, to time.Time) (*Registry, error) {
	defaults := Default()
	if s.Default != nil {
		var err error
		if defaults, err = s.Default.Compile(from, to); err != nil {
			return nil, fmt.Errorf("default: %w", err)
		}
	}

	countries := make(map[string]CountryConfig, len(s.Countries))
	for code, spec := range s.Countries {
		cfg, err := spec.Compile(from, to)
		if err != nil {
			return nil, fmt.Errorf("country %s: %w", code, err)
		}
		countries[strings.ToUpper(code)] = cfg
	}

	return NewRegistry(defaults, countries), nil
}

// ParseRegistry parses a YAML registry document and compiles it.
func ParseRegistry(data []byte, from, to time.Time) (*Registry, error) {
	var spec RegistrySpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("parsing registry: %w", err)
	}
	return spec.Compile(from, to)
}

// LoadRegistry reads and compiles a YAML registry file.
func LoadRegistry(path string, from, to time.Time) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading registry: %w", err)
	}
	return ParseRegistry(data, from, to)
}
