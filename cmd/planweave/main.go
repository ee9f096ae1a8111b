// Package main implements the planweave CLI tool for weekly schedule
// generation.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/planweave/planweave/pkg/gcal"
	"github.com/planweave/planweave/pkg/planner"
)

var (
	prefsFile      = flag.String("prefs", "", "Path to a JSON file with preferences")
	workHours      = flag.String("work-hours", "", "Working hours, e.g. '9-17'")
	deepWork       = flag.Float64("deep-work", 0, "Daily deep work hours")
	activities     = flag.String("activities", "", "Comma-separated personal activities")
	workoutTime    = flag.String("workout", "", "Preferred workout time, e.g. 'morning'")
	meetingPref    = flag.String("meeting-pref", "", "Meeting time preference, e.g. 'afternoon'")
	meetingsPerDay = flag.String("meetings-per-day", "", "How many meetings per day")
	notes          = flag.String("notes", "", "Free-form notes that override other preferences")
	geminiAPIKey   = flag.String("gemini-key", "", "Gemini API key (or set GEMINI_API_KEY)")
	geminiModel    = flag.String("gemini-model", "gemini-2.5-flash-lite", "Gemini model to use (or set GEMINI_MODEL)")
	gcpProject     = flag.String("gcp-project", "", "GCP project ID for Vertex AI (or set GCP_PROJECT)")
	timezone       = flag.String("timezone", "", "IANA timezone for event times (default: local)")
	noCache        = flag.Bool("no-cache", false, "Disable response caching")
	jsonOutput     = flag.Bool("json", false, "Print the schedule as JSON instead of a weekly view")
	exportCal      = flag.Bool("export", false, "Export the schedule to Google Calendar")
	calendarID     = flag.String("calendar", "", "Target calendar ID for export (default: primary)")
	verbose        = flag.Bool("verbose", false, "Enable verbose logging")
	version        = flag.Bool("version", false, "Show version")
)

func main() {
	flag.Parse()

	if *version {
		fmt.Println("planweave CLI v1.0.0")
		return
	}

	// Configure logging
	level := slog.LevelError
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))

	// Get keys from environment if not provided as flags
	if *geminiAPIKey == "" {
		*geminiAPIKey = os.Getenv("GEMINI_API_KEY")
	}
	if *geminiModel == "gemini-2.5-flash-lite" && os.Getenv("GEMINI_MODEL") != "" {
		*geminiModel = os.Getenv("GEMINI_MODEL")
	}
	if *gcpProject == "" {
		*gcpProject = os.Getenv("GCP_PROJECT")
	}

	prefs, err := buildPreferences()
	if err != nil {
		logger.Error("Invalid preferences", "error", err)
		os.Exit(1)
	}

	loc := time.Local
	if *timezone != "" {
		loc, err = time.LoadLocation(*timezone)
		if err != nil {
			logger.Error("Invalid timezone", "timezone", *timezone, "error", err)
			os.Exit(1)
		}
	}

	plannerOpts := []planner.Option{
		planner.WithGeminiAPIKey(*geminiAPIKey),
		planner.WithGeminiModel(*geminiModel),
		planner.WithGCPProject(*gcpProject),
		planner.WithLocation(loc),
	}
	if *noCache {
		plannerOpts = append(plannerOpts, planner.WithNoCache())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	p := planner.NewWithLogger(logger, plannerOpts...)

	result, err := p.Generate(ctx, prefs)
	if err != nil {
		cancel()
		logger.Error("Generation failed", "error", err)
		os.Exit(1)
	}

	if *jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result.Envelope()); err != nil {
			logger.Error("Failed to encode result", "error", err)
			os.Exit(1)
		}
	} else {
		printSchedule(result)
	}

	if *exportCal {
		srv, err := gcal.NewService(ctx)
		if err != nil {
			logger.Error("Calendar authentication failed", "error", err)
			os.Exit(1)
		}
		exporter := gcal.NewExporter(srv, *calendarID)
		inserted, err := exporter.Export(ctx, result.Events)
		if err != nil {
			logger.Error("Calendar export failed", "error", err)
			os.Exit(1)
		}
		fmt.Printf("\nExported %d of %d events to Google Calendar.\n", inserted, len(result.Events))
	}
}

// buildPreferences assembles preferences from a JSON file or individual
// flags. Flags win over file values when both are set.
func buildPreferences() (*planner.Preferences, error) {
	prefs := &planner.Preferences{}

	if *prefsFile != "" {
		data, err := os.ReadFile(*prefsFile)
		if err != nil {
			return nil, fmt.Errorf("read preferences file: %w", err)
		}
		if err := json.Unmarshal(data, prefs); err != nil {
			return nil, fmt.Errorf("parse preferences file: %w", err)
		}
	}

	if *workHours != "" {
		prefs.WorkHours = *workHours
	}
	if *deepWork > 0 {
		prefs.DeepWorkHours = *deepWork
	}
	if *activities != "" {
		for _, a := range strings.Split(*activities, ",") {
			if a = strings.TrimSpace(a); a != "" {
				prefs.PersonalActivities = append(prefs.PersonalActivities, a)
			}
		}
	}
	if *workoutTime != "" {
		prefs.WorkoutTime = *workoutTime
	}
	if *meetingPref != "" {
		prefs.MeetingPreference = *meetingPref
	}
	if *meetingsPerDay != "" {
		prefs.MeetingsPerDay = *meetingsPerDay
	}
	if *notes != "" {
		prefs.CustomPreferences = *notes
	}

	return prefs, nil
}
