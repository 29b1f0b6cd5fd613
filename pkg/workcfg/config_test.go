package workcfg

import (
	"testing"
	"time"
)

func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		input   string
		want    TimeOfDay
		wantErr bool
	}{
		{"09:00", ClockTime(9, 0), false},
		{"00:00", ClockTime(0, 0), false},
		{"23:59", ClockTime(23, 59), false},
		{"17:30", ClockTime(17, 30), false},
		{"24:00", 0, true},
		{"09:60", 0, true},
		{"09:00junk", 0, true},
		{"9:5", 0, true},
		{"9:30", 0, true},
		{" 09:00", 0, true},
		{"garbage", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseTimeOfDay(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseTimeOfDay(%q): expected error, got %v", tt.input, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseTimeOfDay(%q): unexpected error: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseTimeOfDay(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestTimeRangeHalfOpen(t *testing.T) {
	r := TimeRange{Start: ClockTime(9, 0), End: ClockTime(17, 0)}

	if !r.Contains(ClockTime(9, 0)) {
		t.Error("start bound must be inclusive: 09:00 should be inside [09:00, 17:00)")
	}
	if r.Contains(ClockTime(17, 0)) {
		t.Error("end bound must be exclusive: 17:00 should be outside [09:00, 17:00)")
	}
	if !r.Contains(ClockTime(16, 59)) {
		t.Error("16:59 should be inside [09:00, 17:00)")
	}
	if r.Contains(ClockTime(8, 59)) {
		t.Error("08:59 should be outside [09:00, 17:00)")
	}

	empty := TimeRange{}
	if empty.Contains(ClockTime(0, 0)) {
		t.Error("the zero range is empty and contains nothing")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := Default()

	if cfg.Green.Start != ClockTime(9, 0) || cfg.Green.End != ClockTime(17, 0) {
		t.Errorf("default green = %v-%v, want 09:00-17:00", cfg.Green.Start, cfg.Green.End)
	}
	if cfg.OrangeMorning.Start != ClockTime(8, 0) || cfg.OrangeMorning.End != ClockTime(9, 0) {
		t.Errorf("default orange morning = %v-%v, want 08:00-09:00", cfg.OrangeMorning.Start, cfg.OrangeMorning.End)
	}
	if cfg.OrangeEvening.Start != ClockTime(17, 0) || cfg.OrangeEvening.End != ClockTime(18, 0) {
		t.Errorf("default orange evening = %v-%v, want 17:00-18:00", cfg.OrangeEvening.Start, cfg.OrangeEvening.End)
	}
	if len(cfg.Holidays) != 0 {
		t.Errorf("default config should have no holidays, got %d", len(cfg.Holidays))
	}
	for _, w := range []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday} {
		if !cfg.IsWorkDay(w) {
			t.Errorf("default work week should include %v", w)
		}
	}
	if cfg.IsWorkDay(time.Saturday) || cfg.IsWorkDay(time.Sunday) {
		t.Error("default work week should exclude the weekend")
	}
}

func TestResolvePrecedence(t *testing.T) {
	defaults := Default()

	country := Default()
	country.Green = TimeRange{Start: ClockTime(10, 0), End: ClockTime(16, 0)}

	participant := Default()
	participant.Green = TimeRange{Start: ClockTime(7, 0), End: ClockTime(12, 0)}

	registry := NewRegistry(defaults, map[string]CountryConfig{"FR": country})

	// Participant override wins over everything, wholesale.
	got := registry.Resolve(&participant, "FR")
	if got.Green.Start != ClockTime(7, 0) {
		t.Errorf("participant override should win: green start = %v, want 07:00", got.Green.Start)
	}

	// Country override wins over the default.
	got = registry.Resolve(nil, "FR")
	if got.Green.Start != ClockTime(10, 0) {
		t.Errorf("country override should win: green start = %v, want 10:00", got.Green.Start)
	}

	// Unregistered country falls through to defaults silently.
	got = registry.Resolve(nil, "XX")
	if got.Green.Start != ClockTime(9, 0) {
		t.Errorf("unregistered country should use defaults: green start = %v, want 09:00", got.Green.Start)
	}
}

func TestConfigFingerprint(t *testing.T) {
	if Default().Fingerprint() != Default().Fingerprint() {
		t.Error("identical configurations must share a fingerprint")
	}

	restDays := Default()
	restDays.WorkDays = map[time.Weekday]bool{}
	if restDays.Fingerprint() == Default().Fingerprint() {
		t.Error("changing the work week must change the fingerprint")
	}

	holiday := Default()
	holiday.Holidays = map[Date]bool{{Year: 2026, Month: time.December, Day: 25}: true}
	if holiday.Fingerprint() == Default().Fingerprint() {
		t.Error("adding a holiday must change the fingerprint")
	}

	shifted := Default()
	shifted.Green.End = ClockTime(18, 0)
	if shifted.Fingerprint() == Default().Fingerprint() {
		t.Error("changing a range must change the fingerprint")
	}
}

func TestRegistryVersionFingerprint(t *testing.T) {
	a := NewRegistry(Default(), nil)
	b := NewRegistry(Default(), nil)
	if a.Version() != b.Version() {
		t.Error("identical registries must share a version fingerprint")
	}

	changed := Default()
	changed.Green.End = ClockTime(18, 0)
	c := NewRegistry(changed, nil)
	if a.Version() == c.Version() {
		t.Error("changing a config must change the version fingerprint")
	}

	d := NewRegistry(Default(), map[string]CountryConfig{"JP": Default()})
	if a.Version() == d.Version() {
		t.Error("adding a country must change the version fingerprint")
	}
}
