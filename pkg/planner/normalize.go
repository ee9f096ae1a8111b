package planner

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Canonical per-field defaults for malformed items. Applied uniformly
// at every call site.
const (
	defaultTitle    = "Untitled Event"
	defaultDay      = 1 // Monday
	defaultHour     = 9.0
	defaultDuration = 1.0
)

// normalizeEvents converts a loosely-typed parsed value into the strict
// ScheduleEvent contract. Individual malformed items never fail the
// batch: they are skipped and logged. Output preserves input order.
func normalizeEvents(parsed any, ref time.Time, loc *time.Location, logger *slog.Logger) ([]ScheduleEvent, error) {
	items, err := locateEventArray(parsed)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(items))
	events := make([]ScheduleEvent, 0, len(items))
	for i, item := range items {
		ev, ok := normalizeItem(item, ref, loc, seen)
		if !ok {
			logger.Warn("skipping unusable schedule item",
				"index", i,
				"item", truncate(fmt.Sprintf("%v", item), 200))
			continue
		}
		events = append(events, ev)
	}

	if len(events) == 0 {
		return nil, ErrEmptySchedule
	}
	return events, nil
}

// locateEventArray finds the candidate event list: the value itself, a
// "schedule" or "events" key, or the first array-valued property of the
// object in source key order.
func locateEventArray(parsed any) ([]any, error) {
	switch v := parsed.(type) {
	case []any:
		return v, nil
	case *orderedObject:
		for _, key := range []string{"schedule", "events"} {
			if arr, ok := v.fields[key].([]any); ok {
				return arr, nil
			}
		}
		for _, k := range v.keys {
			if arr, ok := v.fields[k].([]any); ok {
				return arr, nil
			}
		}
	}
	return nil, ErrNoScheduleFound
}

// normalizeItem coerces one event-like object. It never panics; a
// fully-unusable item reports ok=false and is skipped by the caller,
// never substituted with a placeholder.
func normalizeItem(item any, ref time.Time, loc *time.Location, seen map[string]bool) (ScheduleEvent, bool) {
	m, ok := item.(map[string]any)
	if !ok {
		return ScheduleEvent{}, false
	}

	// An object with nothing event-like in it is unusable.
	if !hasAnyKey(m, "title", "day", "hour", "duration", "type") {
		return ScheduleEvent{}, false
	}

	ev := ScheduleEvent{
		ID:          uniqueID(seen),
		Title:       stringOr(m["title"], defaultTitle),
		Day:         int(clamp(numberOr(m["day"], defaultDay), 0, 6)),
		Hour:        clamp(numberOr(m["hour"], defaultHour), 0, 23),
		Duration:    clamp(numberOr(m["duration"], defaultDuration), 0.25, 24),
		Type:        normalizeType(m["type"]),
		Description: stringOr(m["description"], ""),
	}
	ev.StartTime, ev.EndTime = deriveTimes(ev.Day, ev.Hour, ev.Duration, ref, loc)
	return ev, true
}

// uniqueID generates a batch-unique event id. The seen set guards the
// uniqueness contract even if the id source ever collides.
func uniqueID(seen map[string]bool) string {
	id := uuid.NewString()
	for seen[id] {
		id = id + "-" + uuid.NewString()[:8]
	}
	seen[id] = true
	return id
}

func normalizeType(v any) EventType {
	s, ok := v.(string)
	if !ok {
		return defaultEventType
	}
	t := EventType(strings.ToLower(strings.TrimSpace(s)))
	if !validEventTypes[t] {
		return defaultEventType
	}
	return t
}

// stringOr coerces v to a non-empty string or returns def.
func stringOr(v any, def string) string {
	switch s := v.(type) {
	case string:
		if strings.TrimSpace(s) == "" {
			return def
		}
		return s
	case nil:
		return def
	default:
		return fmt.Sprintf("%v", s)
	}
}

// numberOr accepts a JSON number or a numeric string; anything else
// falls back to def.
func numberOr(v any, def float64) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(n), 64); err == nil {
			return f
		}
	}
	return def
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func hasAnyKey(m map[string]any, keys ...string) bool {
	for _, k := range keys {
		if _, ok := m[k]; ok {
			return true
		}
	}
	return false
}

// deriveTimes projects day/hour/duration onto concrete instants: the
// next occurrence of the weekday relative to ref, in loc. These are
// display values only; day/hour/duration stay authoritative.
func deriveTimes(day int, hour, duration float64, ref time.Time, loc *time.Location) (start, end time.Time) {
	ref = ref.In(loc)
	delta := (day - int(ref.Weekday()) + 7) % 7
	midnight := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, loc)
	start = midnight.AddDate(0, 0, delta).Add(time.Duration(hour * float64(time.Hour)))
	end = start.Add(time.Duration(duration * float64(time.Hour)))
	return start, end
}
