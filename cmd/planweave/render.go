package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fatih/color"

	"github.com/planweave/planweave/pkg/planner"
)

var dayNames = [...]string{
	"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday",
}

// typeColorFunc picks a display color per event type so the weekly view
// stays scannable.
func typeColorFunc(t planner.EventType) *color.Color {
	switch t {
	case planner.TypeWork, planner.TypeDeepWork:
		return color.New(color.FgBlue)
	case planner.TypeMeeting:
		return color.New(color.FgYellow)
	case planner.TypeWorkout:
		return color.New(color.FgRed)
	case planner.TypeMeals, planner.TypeBreak:
		return color.New(color.FgGreen)
	case planner.TypeLearning:
		return color.New(color.FgCyan)
	case planner.TypeSleep:
		return color.New(color.FgHiBlack)
	default:
		return color.New(color.Reset)
	}
}

// printSchedule renders the weekly view grouped by day, Sunday first,
// events sorted by start hour within each day.
func printSchedule(result *planner.GenerationResult) {
	if result.Fallback {
		grey := color.New(color.FgHiBlack)
		grey.Printf("Note: %s\n\n", result.Message)
	}

	byDay := make(map[int][]planner.ScheduleEvent)
	for _, ev := range result.Events {
		byDay[ev.Day] = append(byDay[ev.Day], ev)
	}

	for day := range dayNames {
		events := byDay[day]
		if len(events) == 0 {
			continue
		}
		sort.SliceStable(events, func(i, j int) bool {
			return events[i].Hour < events[j].Hour
		})

		bold := color.New(color.Bold)
		bold.Printf("%s\n", dayNames[day])
		fmt.Println(strings.Repeat("─", 50))

		for _, ev := range events {
			c := typeColorFunc(ev.Type)
			c.Printf("  %s  %-30s", formatTimeRange(ev.Hour, ev.Duration), ev.Title)
			grey := color.New(color.FgHiBlack)
			grey.Printf(" [%s]\n", ev.Type)
			if ev.Description != "" {
				grey.Printf("                   %s\n", ev.Description)
			}
		}
		fmt.Println()
	}
}

// formatTimeRange renders "09:00-10:30" from a fractional start hour and
// duration. Ranges past midnight wrap.
func formatTimeRange(hour, duration float64) string {
	end := hour + duration
	for end >= 24 {
		end -= 24
	}
	return fmt.Sprintf("%s-%s", formatClock(hour), formatClock(end))
}

func formatClock(hour float64) string {
	h := int(hour)
	m := int((hour - float64(h)) * 60)
	return fmt.Sprintf("%02d:%02d", h, m)
}
