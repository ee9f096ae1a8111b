package planner

import (
	"strings"
	"testing"
)

func TestBuildPromptIncludesPreferences(t *testing.T) {
	prefs := &Preferences{
		WorkHours:          "9-5",
		DeepWorkHours:      2,
		PersonalActivities: []string{"gym", "reading"},
		WorkoutTime:        "morning",
		MeetingPreference:  "afternoon",
		MeetingsPerDay:     "1-3",
		AutoReschedule:     true,
	}

	system, user := buildPrompt(prefs)

	for _, want := range []string{"9-5", "2 hours", "gym, reading", "morning", "afternoon", "1-3", "rescheduling"} {
		if !strings.Contains(user, want) {
			t.Errorf("user prompt missing %q:\n%s", want, user)
		}
	}
	if !strings.Contains(system, "ONLY the JSON object") {
		t.Error("system prompt must demand JSON-only output")
	}
	if !strings.Contains(system, `"schedule"`) {
		t.Error("system prompt must name the schedule envelope key")
	}
}

func TestBuildPromptCustomNotesOverride(t *testing.T) {
	_, user := buildPrompt(&Preferences{CustomPreferences: "no meetings on Fridays"})
	if !strings.Contains(user, "no meetings on Fridays") {
		t.Error("custom notes not forwarded")
	}
	if !strings.Contains(user, "OVERRIDE") {
		t.Error("custom notes must carry override wording")
	}
}

func TestBuildPromptOmitsEmptyFields(t *testing.T) {
	_, user := buildPrompt(&Preferences{})
	if strings.Contains(user, "Meetings per day") || strings.Contains(user, "Custom notes") {
		t.Errorf("empty optional fields should be omitted:\n%s", user)
	}
	if !strings.Contains(user, "weekly schedule") {
		t.Errorf("prompt lost its framing:\n%s", user)
	}
}

func TestBuildPromptDeterministic(t *testing.T) {
	prefs := &Preferences{WorkHours: "8-4", DeepWorkHours: 3}
	s1, u1 := buildPrompt(prefs)
	s2, u2 := buildPrompt(prefs)
	if s1 != s2 || u1 != u2 {
		t.Error("prompt building must be deterministic")
	}
}
