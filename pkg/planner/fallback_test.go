package planner

import (
	"testing"
	"time"
)

func TestFallbackIsDeterministic(t *testing.T) {
	prefs := &Preferences{
		WorkHours:         "9-5",
		DeepWorkHours:     2,
		WorkoutTime:       "morning",
		MeetingPreference: "afternoon",
	}

	a := fallbackSchedule(prefs, refWednesday, time.UTC)
	b := fallbackSchedule(prefs, refWednesday, time.UTC)

	if len(a) == 0 {
		t.Fatal("fallback produced no events")
	}
	if len(a) != len(b) {
		t.Fatalf("two runs produced different lengths: %d vs %d", len(a), len(b))
	}
	for i := range a {
		// IDs may differ between runs; the schedule content must not.
		if a[i].Title != b[i].Title || a[i].Day != b[i].Day ||
			a[i].Hour != b[i].Hour || a[i].Duration != b[i].Duration ||
			a[i].Type != b[i].Type {
			t.Errorf("event %d differs between runs:\n%+v\n%+v", i, a[i], b[i])
		}
	}
}

func TestFallbackCoversAllSevenDays(t *testing.T) {
	events := fallbackSchedule(&Preferences{}, refWednesday, time.UTC)

	byDay := make(map[int]int)
	for _, ev := range events {
		byDay[ev.Day]++
	}
	for day := 0; day < 7; day++ {
		if byDay[day] == 0 {
			t.Errorf("day %d has no events", day)
		}
	}
}

func TestFallbackFieldsAlwaysInDomain(t *testing.T) {
	// Even hostile preference text must not push the template out of
	// the event domain.
	prefs := &Preferences{
		WorkHours:     "25-99 o'clock",
		DeepWorkHours: 1000,
		WorkoutTime:   "whenever",
	}

	for _, ev := range fallbackSchedule(prefs, refWednesday, time.UTC) {
		if ev.Day < 0 || ev.Day > 6 {
			t.Errorf("day out of range: %+v", ev)
		}
		if ev.Hour < 0 || ev.Hour > 23 {
			t.Errorf("hour out of range: %+v", ev)
		}
		if ev.Duration < 0.25 || ev.Duration > 24 {
			t.Errorf("duration out of range: %+v", ev)
		}
		if !validEventTypes[ev.Type] {
			t.Errorf("invalid type: %+v", ev)
		}
		if ev.Title == "" {
			t.Errorf("empty title: %+v", ev)
		}
	}
}

func TestFallbackHonorsWorkoutPlacement(t *testing.T) {
	morning := fallbackSchedule(&Preferences{WorkoutTime: "morning"}, refWednesday, time.UTC)
	evening := fallbackSchedule(&Preferences{}, refWednesday, time.UTC)

	hourOfWorkout := func(events []ScheduleEvent) float64 {
		for _, ev := range events {
			if ev.Type == TypeWorkout {
				return ev.Hour
			}
		}
		t.Fatal("no workout event found")
		return 0
	}

	if got := hourOfWorkout(morning); got != 6 {
		t.Errorf("morning workout at hour %g, want 6", got)
	}
	if got := hourOfWorkout(evening); got != 18 {
		t.Errorf("default workout at hour %g, want 18", got)
	}
}

func TestFallbackWeekdayStructure(t *testing.T) {
	events := fallbackSchedule(&Preferences{WorkHours: "8-4", DeepWorkHours: 3}, refWednesday, time.UTC)

	var mondayDeepWork, mondayMeeting, saturdayLearning bool
	for _, ev := range events {
		if ev.Day == 1 && ev.Type == TypeDeepWork {
			mondayDeepWork = true
			if ev.Hour != 8 {
				t.Errorf("deep work should start at the sniffed work hour 8, got %g", ev.Hour)
			}
			if ev.Duration != 3 {
				t.Errorf("deep work duration should follow the preference, got %g", ev.Duration)
			}
		}
		if ev.Day == 1 && ev.Type == TypeMeeting {
			mondayMeeting = true
		}
		if ev.Day == 6 && ev.Type == TypeLearning {
			saturdayLearning = true
		}
		if ev.Day == 6 && (ev.Type == TypeMeeting || ev.Type == TypeDeepWork) {
			t.Errorf("weekend should not carry work blocks: %+v", ev)
		}
	}
	if !mondayDeepWork || !mondayMeeting {
		t.Error("weekday template missing deep work or meeting block")
	}
	if !saturdayLearning {
		t.Error("weekend template missing learning block")
	}
}

func TestParseWorkHours(t *testing.T) {
	tests := []struct {
		in        string
		wantStart float64
		wantEnd   float64
	}{
		{"9-5", 9, 17},
		{"8-4", 8, 16},
		{"10 to 6", 10, 18},
		{"9:00 - 17:00", 9, 17},
		{"flexible", 9, 17},
		{"", 9, 17},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			start, end := parseWorkHours(tt.in)
			if start != tt.wantStart || end != tt.wantEnd {
				t.Errorf("parseWorkHours(%q) = %g, %g; want %g, %g", tt.in, start, end, tt.wantStart, tt.wantEnd)
			}
		})
	}
}
