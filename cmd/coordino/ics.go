package main

import (
	"fmt"
	"os"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/jbillay/coordino/pkg/equity"
	"github.com/jbillay/coordino/pkg/heatmap"
)

// writeSuggestionsICS exports ranked suggestions as VEVENTs so an organizer
// can import the alternatives straight into a calendar client.
func writeSuggestionsICS(path string, proposal equity.Meeting, suggestions []heatmap.Entry) error {
	dur := proposal.Duration
	if dur <= 0 {
		dur = time.Hour
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId("-//coordino//equity//EN")

	now := time.Now().UTC()
	for i, s := range suggestions {
		uid := fmt.Sprintf("coordino-%s-%02d@coordino", s.StartUTC.Format("20060102"), s.Hour)
		event := cal.AddEvent(uid)
		event.SetCreatedTime(now)
		event.SetDtStampTime(now)
		event.SetStartAt(s.StartUTC)
		event.SetEndAt(s.StartUTC.Add(dur))
		event.SetSummary(fmt.Sprintf("Meeting option %d — equity %.0f/100 (%s)",
			i+1, s.Score.Normalized, s.Score.Grade()))
		event.SetDescription(fmt.Sprintf(
			"Alternative to the %s UTC proposal. Buckets: %d green, %d orange, %d red, %d critical red.",
			proposal.Start.Format("15:04"),
			s.Score.Counts.Green, s.Score.Counts.Orange, s.Score.Counts.Red, s.Score.Counts.CriticalRed))
	}

	return os.WriteFile(path, []byte(cal.Serialize()), 0o600)
}
