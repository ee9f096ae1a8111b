package gcal

import (
	"testing"
	"time"

	"github.com/planweave/planweave/pkg/planner"
)

func TestConvertEvent(t *testing.T) {
	start := time.Date(2026, 1, 9, 9, 30, 0, 0, time.UTC)
	ev := planner.ScheduleEvent{
		ID:          "abc-123",
		Title:       "Deep Work",
		Description: "focus block",
		Type:        planner.TypeDeepWork,
		StartTime:   start,
		EndTime:     start.Add(2 * time.Hour),
	}

	got := convertEvent(ev)

	if got.Summary != "Deep Work" || got.Description != "focus block" {
		t.Errorf("summary/description wrong: %+v", got)
	}
	if got.Start.DateTime != "2026-01-09T09:30:00Z" {
		t.Errorf("start: got %q", got.Start.DateTime)
	}
	if got.End.DateTime != "2026-01-09T11:30:00Z" {
		t.Errorf("end: got %q", got.End.DateTime)
	}
	if got.ExtendedProperties == nil || got.ExtendedProperties.Private[eventIDProperty] != "abc-123" {
		t.Errorf("batch id not carried in extended properties: %+v", got.ExtendedProperties)
	}
}

func TestNewExporterDefaultsToPrimary(t *testing.T) {
	e := NewExporter(nil, "")
	if e.calendarID != "primary" {
		t.Errorf("got calendar id %q, want primary", e.calendarID)
	}
}
