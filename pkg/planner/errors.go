package planner

import "errors"

// Failure taxonomy for one generation request. Only ErrInvalidInput is
// ever returned to the caller of Generate; every other category is
// absorbed by the fallback template.
var (
	// ErrInvalidInput means the preferences object was missing or
	// malformed at the boundary. Not eligible for fallback.
	ErrInvalidInput = errors.New("invalid preferences")

	// ErrGeneratorUnavailable covers network errors, timeouts and
	// non-success responses from the generator.
	ErrGeneratorUnavailable = errors.New("generator unavailable")

	// ErrParseFailure means every recovery strategy was exhausted
	// without producing a JSON value.
	ErrParseFailure = errors.New("unparseable generator response")

	// ErrNoScheduleFound means the response parsed but contained no
	// event array anywhere.
	ErrNoScheduleFound = errors.New("no schedule array in response")

	// ErrEmptySchedule means every candidate item was unusable.
	ErrEmptySchedule = errors.New("empty schedule after validation")
)
