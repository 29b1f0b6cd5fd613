// Package main implements the coordino CLI for evaluating meeting time
// equity across participant timezones.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/fatih/color"

	"github.com/jbillay/coordino/pkg/comfort"
	"github.com/jbillay/coordino/pkg/equity"
	"github.com/jbillay/coordino/pkg/heatmap"
	"github.com/jbillay/coordino/pkg/suggest"
	"github.com/jbillay/coordino/pkg/workcfg"
)

var (
	meetingAt    = flag.String("meeting", "", "Proposed meeting start, RFC3339 (e.g. 2026-03-14T15:00:00Z)")
	duration     = flag.Duration("duration", time.Hour, "Meeting duration (display context only)")
	rosterPath   = flag.String("roster", "", "Participant roster: YAML/JSON file or HTTP(S) URL (or set COORDINO_ROSTER)")
	registryPath = flag.String("config", "", "Country configuration registry YAML (or set COORDINO_CONFIG)")
	topN         = flag.Int("top", suggest.DefaultTopN, "Number of alternative times to suggest")
	icsPath      = flag.String("ics", "", "Write the top suggestions to an iCalendar file")
	jsonOut      = flag.Bool("json", false, "Emit results as JSON instead of text")
	verbose      = flag.Bool("verbose", false, "Enable verbose logging")
	version      = flag.Bool("version", false, "Show version")
)

func main() {
	flag.Parse()

	if *version {
		fmt.Println("coordino CLI v1.2.0")
		return
	}

	level := slog.LevelError
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if *rosterPath == "" {
		*rosterPath = os.Getenv("COORDINO_ROSTER")
	}
	if *registryPath == "" {
		*registryPath = os.Getenv("COORDINO_CONFIG")
	}

	if *meetingAt == "" || *rosterPath == "" {
		fmt.Fprintf(os.Stderr, "Usage: %s -meeting <RFC3339> -roster <file-or-url> [flags]\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(1)
	}

	start, err := time.Parse(time.RFC3339, *meetingAt)
	if err != nil {
		logger.Error("invalid -meeting value", "error", err)
		os.Exit(1)
	}
	meeting := equity.Meeting{Start: start.UTC(), Duration: *duration}

	// Recurring holidays are expanded around the candidate day, generously.
	windowFrom := meeting.Start.AddDate(-1, 0, 0)
	windowTo := meeting.Start.AddDate(1, 0, 0)

	var registry *workcfg.Registry
	if *registryPath != "" {
		registry, err = workcfg.LoadRegistry(*registryPath, windowFrom, windowTo)
		if err != nil {
			logger.Error("loading registry failed", "error", err, "path", *registryPath)
			os.Exit(1)
		}
		logger.Debug("registry loaded", "path", *registryPath, "version", registry.Version())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	participants, err := loadRoster(ctx, logger, *rosterPath, windowFrom, windowTo)
	if err != nil {
		logger.Error("loading roster failed", "error", err, "roster", *rosterPath)
		os.Exit(1)
	}
	if len(participants) == 0 {
		logger.Warn("roster contains no participants; score defaults to 100")
	}

	engine := equity.New(logger, registry)

	evaluation, err := engine.Evaluate(ctx, meeting, participants)
	if err != nil {
		logger.Error("evaluation failed", "error", err)
		os.Exit(1)
	}

	entries, err := engine.Heatmap(ctx, meeting, participants)
	if err != nil {
		logger.Error("heatmap generation failed", "error", err)
		os.Exit(1)
	}
	suggestions := suggest.Rank(entries, *topN, meeting.Start.Hour())

	if *jsonOut {
		printJSON(evaluation, entries, suggestions)
	} else {
		printReport(evaluation, entries, suggestions)
	}

	if *icsPath != "" {
		if err := writeSuggestionsICS(*icsPath, meeting, suggestions); err != nil {
			logger.Error("writing iCalendar file failed", "error", err, "path", *icsPath)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "Wrote %d suggestion(s) to %s\n", len(suggestions), *icsPath)
	}
}

func printJSON(evaluation *equity.Evaluation, entries, suggestions []heatmap.Entry) {
	out := struct {
		Evaluation  *equity.Evaluation `json:"evaluation"`
		Heatmap     []heatmap.Entry    `json:"heatmap"`
		Suggestions []heatmap.Entry    `json:"suggestions"`
	}{evaluation, entries, suggestions}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		fmt.Fprintf(os.Stderr, "encoding output: %v\n", err)
		os.Exit(1)
	}
}

func printReport(evaluation *equity.Evaluation, entries, suggestions []heatmap.Entry) {
	meeting := evaluation.Meeting
	fmt.Printf("🌍 Meeting Equity — %s UTC (%s)\n",
		meeting.Start.Format("Mon 2006-01-02 15:04"), meeting.Duration)
	fmt.Println()

	for _, p := range evaluation.Participants {
		marker := statusMarker(p)
		fmt.Printf("  %-16s %-22s %s  %s\n",
			p.ParticipantID,
			p.Timezone,
			p.Local.Local.Format("Mon 15:04"),
			marker)
	}
	fmt.Println()

	grade := color.New(gradeColor(evaluation.Score.Normalized), color.Bold)
	fmt.Printf("Equity Score: %s\n", grade.Sprintf("%.0f/100 (%s)", evaluation.Score.Normalized, evaluation.Grade))
	counts := evaluation.Score.Counts
	fmt.Printf("  %d green · %d orange · %d red · %d critical red\n\n",
		counts.Green, counts.Orange, counts.Red, counts.CriticalRed)

	fmt.Print(heatmap.Render(entries, meeting.Start.Hour()))
	fmt.Println()

	if len(suggestions) > 0 {
		fmt.Println("💡 Better times (same day):")
		for i, s := range suggestions {
			fmt.Printf("  %d. %s UTC — %.0f/100 (%s)\n",
				i+1, s.StartUTC.Format("15:04"), s.Score.Normalized, s.Score.Grade())
		}
	}
}

func statusMarker(p equity.ParticipantStatus) string {
	switch {
	case p.CriticalRed:
		return color.New(color.FgRed, color.Bold).Sprint("🔴 red (holiday/rest day)")
	case p.Status == comfort.StatusRed:
		return color.New(color.FgRed).Sprint("🔴 red")
	case p.Status == comfort.StatusOrange:
		return color.New(color.FgYellow).Sprint("🟠 orange")
	default:
		return color.New(color.FgGreen).Sprint("🟢 green")
	}
}

func gradeColor(normalized float64) color.Attribute {
	switch {
	case normalized >= 70:
		return color.FgGreen
	case normalized >= 50:
		return color.FgYellow
	default:
		return color.FgRed
	}
}
