package planner

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	workHourNumberRE = regexp.MustCompile(`\d{1,2}`)
	minuteSuffixRE   = regexp.MustCompile(`:\d{2}`)
)

// fallbackSchedule deterministically synthesizes a complete 7-day
// schedule from the preferences alone. It always succeeds and every
// numeric field is in-domain by construction. It honors the broad
// strokes of the preferences (work start, workout placement, deep-work
// target) and deliberately ignores the finer ones: the point is a
// reasonable week, not a faithful one.
func fallbackSchedule(prefs *Preferences, ref time.Time, loc *time.Location) []ScheduleEvent {
	workStart, _ := parseWorkHours(prefs.WorkHours)

	deepWork := prefs.DeepWorkHours
	if deepWork <= 0 {
		deepWork = 2
	}
	if deepWork > 4 {
		deepWork = 4
	}

	workoutHour := 18.0
	if strings.Contains(strings.ToLower(prefs.WorkoutTime), "morning") {
		workoutHour = 6
	}

	meetingHour := 14.0
	if strings.Contains(strings.ToLower(prefs.MeetingPreference), "morning") {
		meetingHour = workStart + 1
	}

	seen := make(map[string]bool)
	var events []ScheduleEvent
	add := func(day int, hour, duration float64, typ EventType, title string) {
		ev := ScheduleEvent{
			ID:       uniqueID(seen),
			Title:    title,
			Day:      day,
			Hour:     hour,
			Duration: duration,
			Type:     typ,
		}
		ev.StartTime, ev.EndTime = deriveTimes(day, hour, duration, ref, loc)
		events = append(events, ev)
	}

	for day := 0; day < 7; day++ {
		add(day, 7, 0.5, TypePersonal, "Morning Routine")
		add(day, 7.5, 0.5, TypeMeals, "Breakfast")

		weekday := day >= 1 && day <= 5
		if weekday {
			add(day, workStart, deepWork, TypeDeepWork, "Deep Work Block")
			add(day, meetingHour, 1, TypeMeeting, "Team Meeting")
			add(day, 15, 0.25, TypeBreak, "Short Break")
			add(day, 15.25, 1.75, TypeWork, "Project Work")
		} else {
			add(day, 10, 1.5, TypeLearning, "Learning & Reading")
			add(day, 14, 2, TypePersonal, "Personal Projects")
		}

		add(day, 12, 1, TypeMeals, "Lunch")
		add(day, workoutHour, 1, TypeWorkout, "Workout")
		add(day, 19, 1, TypeMeals, "Dinner")
		add(day, 20.5, 1.5, TypeRelaxation, "Evening Relaxation")
		add(day, 23, 8, TypeSleep, "Sleep")
	}

	return events
}

// parseWorkHours sniffs a nominal work start/end hour out of the
// free-form workHours descriptor. Keyword matching only: "9-5" yields
// 9 and 17, anything unintelligible yields 9 and 17.
func parseWorkHours(s string) (start, end float64) {
	start, end = 9, 17

	// ":00"/":30" minute suffixes would read as separate numbers.
	s = minuteSuffixRE.ReplaceAllString(s, "")
	nums := workHourNumberRE.FindAllString(s, 2)
	if len(nums) >= 1 {
		if n, err := strconv.Atoi(nums[0]); err == nil && n >= 5 && n <= 12 {
			start = float64(n)
		}
	}
	if len(nums) >= 2 {
		if n, err := strconv.Atoi(nums[1]); err == nil {
			e := float64(n)
			if e <= start {
				e += 12 // "9-5" means 17:00
			}
			if e > start && e <= 22 {
				end = e
			}
		}
	}
	return start, end
}
