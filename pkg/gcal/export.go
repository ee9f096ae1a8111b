package gcal

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/api/calendar/v3"

	"github.com/planweave/planweave/pkg/planner"
)

// eventIDProperty is the private extended property that ties a calendar
// event back to its batch event id, making re-export idempotent.
const eventIDProperty = "planweaveId"

// Exporter pushes a generated batch into one Google calendar.
type Exporter struct {
	srv        *calendar.Service
	calendarID string
}

// NewExporter creates an exporter for the given calendar. An empty
// calendarID targets the user's primary calendar.
func NewExporter(srv *calendar.Service, calendarID string) *Exporter {
	if calendarID == "" {
		calendarID = "primary"
	}
	return &Exporter{srv: srv, calendarID: calendarID}
}

// Export inserts the batch, skipping events that were already exported
// in a previous run. Returns how many events were newly inserted.
func (e *Exporter) Export(ctx context.Context, events []planner.ScheduleEvent) (int, error) {
	inserted := 0
	for _, ev := range events {
		exists, err := e.exists(ctx, ev.ID)
		if err != nil {
			return inserted, fmt.Errorf("checking for existing event %q: %w", ev.Title, err)
		}
		if exists {
			continue
		}
		if _, err := e.srv.Events.Insert(e.calendarID, convertEvent(ev)).Context(ctx).Do(); err != nil {
			return inserted, fmt.Errorf("inserting event %q: %w", ev.Title, err)
		}
		inserted++
	}
	return inserted, nil
}

func (e *Exporter) exists(ctx context.Context, id string) (bool, error) {
	list, err := e.srv.Events.List(e.calendarID).
		PrivateExtendedProperty(eventIDProperty + "=" + id).
		MaxResults(1).
		Context(ctx).
		Do()
	if err != nil {
		return false, err
	}
	return len(list.Items) > 0, nil
}

func convertEvent(ev planner.ScheduleEvent) *calendar.Event {
	return &calendar.Event{
		Summary:     ev.Title,
		Description: ev.Description,
		Start: &calendar.EventDateTime{
			DateTime: ev.StartTime.Format(time.RFC3339),
		},
		End: &calendar.EventDateTime{
			DateTime: ev.EndTime.Format(time.RFC3339),
		},
		ExtendedProperties: &calendar.EventExtendedProperties{
			Private: map[string]string{
				eventIDProperty: ev.ID,
				"planweaveType": string(ev.Type),
			},
		},
	}
}
