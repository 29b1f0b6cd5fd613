package localtime

import (
	"errors"
	"testing"
	"time"

	"github.com/jbillay/coordino/pkg/workcfg"
)

func TestProjectAppliesDSTForCandidateDate(t *testing.T) {
	db := NewDB()

	// US DST starts 2026-03-08. The same UTC hour lands an hour later on
	// the New York wall clock after the transition.
	before, err := db.Project(time.Date(2026, 3, 2, 15, 0, 0, 0, time.UTC), "America/New_York")
	if err != nil {
		t.Fatalf("Project before transition: %v", err)
	}
	after, err := db.Project(time.Date(2026, 3, 9, 15, 0, 0, 0, time.UTC), "America/New_York")
	if err != nil {
		t.Fatalf("Project after transition: %v", err)
	}

	if before.TimeOfDay != workcfg.ClockTime(10, 0) {
		t.Errorf("before DST: local = %v, want 10:00 (EST)", before.TimeOfDay)
	}
	if after.TimeOfDay != workcfg.ClockTime(11, 0) {
		t.Errorf("after DST: local = %v, want 11:00 (EDT)", after.TimeOfDay)
	}
	if delta := int(after.TimeOfDay - before.TimeOfDay); delta != 60 {
		t.Errorf("DST transition delta = %d minutes, want 60", delta)
	}
}

func TestProjectRollsDateForward(t *testing.T) {
	db := NewDB()

	// 23:00 UTC on Thursday is already Friday morning in Tokyo.
	p, err := db.Project(time.Date(2026, 3, 12, 23, 0, 0, 0, time.UTC), "Asia/Tokyo")
	if err != nil {
		t.Fatalf("Project: %v", err)
	}
	want := workcfg.Date{Year: 2026, Month: time.March, Day: 13}
	if p.Date != want {
		t.Errorf("local date = %v, want %v", p.Date, want)
	}
	if p.Weekday != time.Friday {
		t.Errorf("weekday = %v, want Friday", p.Weekday)
	}
	if p.TimeOfDay != workcfg.ClockTime(8, 0) {
		t.Errorf("local time = %v, want 08:00", p.TimeOfDay)
	}
}

func TestProjectRollsDateBackward(t *testing.T) {
	db := NewDB()

	// 05:00 UTC on Thursday is still Wednesday evening in Honolulu (UTC-10,
	// no DST).
	p, err := db.Project(time.Date(2026, 3, 12, 5, 0, 0, 0, time.UTC), "Pacific/Honolulu")
	if err != nil {
		t.Fatalf("Project: %v", err)
	}
	want := workcfg.Date{Year: 2026, Month: time.March, Day: 11}
	if p.Date != want {
		t.Errorf("local date = %v, want %v", p.Date, want)
	}
	if p.TimeOfDay != workcfg.ClockTime(19, 0) {
		t.Errorf("local time = %v, want 19:00", p.TimeOfDay)
	}
}

func TestProjectUnknownTimezone(t *testing.T) {
	db := NewDB()

	for _, zone := range []string{"Mars/Olympus_Mons", "", "America/NotACity"} {
		_, err := db.Project(time.Now(), zone)
		if err == nil {
			t.Errorf("Project(%q): expected error", zone)
			continue
		}
		if !errors.Is(err, ErrUnknownTimezone) {
			t.Errorf("Project(%q): error %v should wrap ErrUnknownTimezone", zone, err)
		}
	}
}

func TestProjectMemoizesLocations(t *testing.T) {
	db := NewDB()

	instant := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	first, err := db.Project(instant, "Europe/Paris")
	if err != nil {
		t.Fatalf("Project: %v", err)
	}
	second, err := db.Project(instant, "Europe/Paris")
	if err != nil {
		t.Fatalf("Project (cached): %v", err)
	}
	if first.TimeOfDay != second.TimeOfDay || first.Date != second.Date {
		t.Error("memoized lookup must match the first projection")
	}
	if second.TimeOfDay != workcfg.ClockTime(14, 0) {
		t.Errorf("Paris summer local = %v, want 14:00 (CEST)", second.TimeOfDay)
	}
}
