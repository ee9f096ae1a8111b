package planner

import (
	"context"
	"time"
)

// Option configures a Planner.
type Option func(*OptionHolder)

// Options for Planner.
func WithGeminiAPIKey(key string) Option {
	return func(o *OptionHolder) {
		o.geminiAPIKey = key
	}
}

func WithGeminiModel(model string) Option {
	return func(o *OptionHolder) {
		o.geminiModel = model
	}
}

func WithGCPProject(projectID string) Option {
	return func(o *OptionHolder) {
		o.gcpProject = projectID
	}
}

// WithTimeout bounds each outbound generator call.
func WithTimeout(d time.Duration) Option {
	return func(o *OptionHolder) {
		o.timeout = d
	}
}

// WithLocation sets the zone used when deriving event start/end instants.
func WithLocation(loc *time.Location) Option {
	return func(o *OptionHolder) {
		o.location = loc
	}
}

// WithNoCache disables caching of generator responses.
func WithNoCache() Option {
	return func(o *OptionHolder) {
		o.noCache = true
	}
}

// WithGenerator replaces the Gemini-backed generator. Useful for tests
// and alternate completion backends.
func WithGenerator(g GeneratorFunc) Option {
	return func(o *OptionHolder) {
		o.generator = g
	}
}

// OptionHolder holds configuration options.
type OptionHolder struct {
	geminiAPIKey string
	geminiModel  string
	gcpProject   string
	timeout      time.Duration
	location     *time.Location
	noCache      bool
	generator    GeneratorFunc
}

// GeneratorFunc produces a text completion for a system+user prompt pair.
// The returned text is expected to be JSON or near-JSON; the parser chain
// tolerates the difference.
type GeneratorFunc func(ctx context.Context, systemPrompt, userPrompt string) (string, error)

// EventType is the closed set of schedule event categories.
type EventType string

const (
	TypeWork       EventType = "work"
	TypeMeeting    EventType = "meeting"
	TypeDeepWork   EventType = "deep-work"
	TypeWorkout    EventType = "workout"
	TypeMeals      EventType = "meals"
	TypeBreak      EventType = "break"
	TypePersonal   EventType = "personal"
	TypeLearning   EventType = "learning"
	TypeRelaxation EventType = "relaxation"
	TypeCommute    EventType = "commute"
	TypeSleep      EventType = "sleep"
)

// defaultEventType replaces unrecognized type tags.
const defaultEventType = TypePersonal

var validEventTypes = map[EventType]bool{
	TypeWork:       true,
	TypeMeeting:    true,
	TypeWorkout:    true,
	TypeDeepWork:   true,
	TypeMeals:      true,
	TypeBreak:      true,
	TypePersonal:   true,
	TypeLearning:   true,
	TypeRelaxation: true,
	TypeCommute:    true,
	TypeSleep:      true,
}

// Preferences describes the shape of a week the user wants. It is
// immutable for the duration of one generation request.
type Preferences struct {
	// WorkHours is a free-form descriptor like "9-5"; no structure is
	// enforced.
	WorkHours string `json:"workHours"`
	// DeepWorkHours is the target of focused hours per day.
	DeepWorkHours float64 `json:"deepWorkHours"`
	// PersonalActivities lists activity tags in display order.
	PersonalActivities []string `json:"personalActivities"`
	// WorkoutTime is an optional time-of-day category ("morning", "evening").
	WorkoutTime string `json:"workoutTime"`
	// MeetingPreference is optional: morning/afternoon/grouped/spread.
	MeetingPreference string `json:"meetingPreference"`
	// MeetingsPerDay is an optional numeric or range descriptor ("2", "1-3").
	MeetingsPerDay string `json:"meetingsPerDay"`
	// AutoReschedule is advisory only: it is forwarded to the generator
	// but no conflict detection or rescheduling happens locally.
	AutoReschedule bool `json:"autoReschedule"`
	// CustomPreferences are free-text notes the generator is told to
	// treat as overriding the structured fields above.
	CustomPreferences string `json:"customPreferences"`
}

// ScheduleEvent is one calendar entry. Day, Hour and Duration are the
// source of truth; StartTime and EndTime are a projection for display.
type ScheduleEvent struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Day         int       `json:"day"`  // 0=Sunday .. 6=Saturday
	Hour        float64   `json:"hour"` // 0..23, fractional for half-hour starts
	Duration    float64   `json:"duration"`
	Type        EventType `json:"type"`
	Description string    `json:"description"`
	StartTime   time.Time `json:"startTime"`
	EndTime     time.Time `json:"endTime"`
}

// GenerationResult is the single result envelope for one generation
// request: either the generator's normalized events or the fallback
// template, never both, never empty.
type GenerationResult struct {
	Events []ScheduleEvent `json:"events"`
	// Fallback is true when the deterministic template was served
	// instead of a generator-produced schedule. The event shape is
	// identical; this is for UX messaging only.
	Fallback bool `json:"fallback"`
	// Message explains why the fallback was served, for display.
	Message string `json:"message,omitempty"`
}

// ResponseEnvelope is the single serialization shape for a generation
// outcome, shared by the HTTP API and the CLI's JSON output.
type ResponseEnvelope struct {
	Success  bool            `json:"success"`
	Fallback bool            `json:"fallback"`
	Data     []ScheduleEvent `json:"data"`
	Error    string          `json:"error,omitempty"`
	Message  string          `json:"message,omitempty"`
}

// Envelope wraps a successful result for serialization.
func (r *GenerationResult) Envelope() ResponseEnvelope {
	return ResponseEnvelope{
		Success:  true,
		Fallback: r.Fallback,
		Data:     r.Events,
		Message:  r.Message,
	}
}

// ErrorEnvelope builds the envelope for a failed request. Data is an
// empty list, never null, so clients can decode both shapes uniformly.
func ErrorEnvelope(message string) ResponseEnvelope {
	return ResponseEnvelope{Data: []ScheduleEvent{}, Error: message}
}
