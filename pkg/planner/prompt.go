package planner

import (
	"fmt"
	"strings"
)

// systemPrompt instructs the generator to emit a machine-readable weekly
// schedule. The parser chain tolerates deviations, but the prompt asks
// for strict JSON anyway: the cheap direct-parse strategy should win in
// the common case.
const systemPrompt = `You are a weekly schedule generator. Given a user's scheduling preferences, produce a complete 7-day weekly schedule.

You must output ONLY a JSON object with this exact shape:
{"schedule": [{"title": string, "day": number, "hour": number, "duration": number, "type": string, "description": string}, ...]}

Field rules:
- day: integer 0 to 6, where 0 is Sunday
- hour: start hour 0 to 23; use fractions for half-hour starts (e.g. 9.5)
- duration: hours, between 0.25 and 24
- type: one of [work, meeting, deep-work, workout, meals, break, personal, learning, relaxation, commute, sleep]
- cover all 7 days, including meals, breaks, a workout and a sleep block per day

CRITICAL RULES:
1. Output ONLY the JSON object, no markdown, no explanation
2. Honor the user's working hours and deep work target on weekdays
3. If custom notes are present, they OVERRIDE every other preference
4. Use strict JSON: double-quoted keys and strings, no trailing commas`

// buildPrompt turns one Preferences value into the system+user prompt
// pair for the generator. Deterministic string templating.
func buildPrompt(prefs *Preferences) (system, user string) {
	var b strings.Builder
	b.WriteString("Generate my weekly schedule with these preferences:\n")

	if prefs.WorkHours != "" {
		fmt.Fprintf(&b, "- Working hours: %s\n", prefs.WorkHours)
	}
	if prefs.DeepWorkHours > 0 {
		fmt.Fprintf(&b, "- Deep work target: %g hours per day\n", prefs.DeepWorkHours)
	}
	if len(prefs.PersonalActivities) > 0 {
		fmt.Fprintf(&b, "- Personal activities to include: %s\n", strings.Join(prefs.PersonalActivities, ", "))
	}
	if prefs.WorkoutTime != "" {
		fmt.Fprintf(&b, "- Preferred workout time: %s\n", prefs.WorkoutTime)
	}
	if prefs.MeetingPreference != "" {
		fmt.Fprintf(&b, "- Meeting preference: %s\n", prefs.MeetingPreference)
	}
	if prefs.MeetingsPerDay != "" {
		fmt.Fprintf(&b, "- Meetings per day: %s\n", prefs.MeetingsPerDay)
	}
	if prefs.AutoReschedule {
		b.WriteString("- The user allows automatic rescheduling of conflicting events\n")
	}
	if prefs.CustomPreferences != "" {
		fmt.Fprintf(&b, "\nCustom notes (these OVERRIDE all preferences above): %s\n", prefs.CustomPreferences)
	}

	return systemPrompt, b.String()
}
