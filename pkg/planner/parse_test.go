package planner

import (
	"errors"
	"io"
	"log/slog"
	"reflect"
	"strings"
	"testing"
	"unicode/utf8"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestExtractJSONDirect(t *testing.T) {
	raw := `{"schedule":[{"title":"Standup","day":1,"hour":9,"duration":0.5,"type":"meeting"}]}`

	v, err := extractJSON(raw, discardLogger())
	if err != nil {
		t.Fatalf("extractJSON failed on clean JSON: %v", err)
	}
	obj, ok := v.(*orderedObject)
	if !ok {
		t.Fatalf("expected object, got %T", v)
	}
	if _, ok := obj.fields["schedule"].([]any); !ok {
		t.Errorf("schedule key missing or not an array: %v", obj.fields)
	}
}

func TestExtractJSONRejectsScalar(t *testing.T) {
	// "42" is valid JSON but useless to the pipeline.
	if _, err := parseDirect("42"); err == nil {
		t.Error("parseDirect accepted a bare scalar")
	}
}

func TestExtractJSONFencedBlock(t *testing.T) {
	inner := `{"schedule":[{"title":"Lunch","day":2,"hour":12,"duration":1,"type":"meals"}]}`
	tests := []struct {
		name string
		raw  string
	}{
		{
			name: "fenced with language tag and prose",
			raw:  "Here is your weekly schedule:\n```json\n" + inner + "\n```\nLet me know if you want changes!",
		},
		{
			name: "fenced without language tag",
			raw:  "```\n" + inner + "\n```",
		},
	}

	want, err := parseDirect(inner)
	if err != nil {
		t.Fatalf("parsing the reference content failed: %v", err)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := extractJSON(tt.raw, discardLogger())
			if err != nil {
				t.Fatalf("extractJSON failed: %v", err)
			}
			if !reflect.DeepEqual(got, want) {
				t.Errorf("fenced extraction diverged from parsing the fenced content alone:\ngot  %v\nwant %v", got, want)
			}
		})
	}
}

func TestExtractJSONBraceSubstring(t *testing.T) {
	raw := `Sure! Your schedule is ready: {"schedule":[{"title":"Gym","day":3,"hour":18,"duration":1,"type":"workout"}]} Enjoy your week.`

	v, err := extractJSON(raw, discardLogger())
	if err != nil {
		t.Fatalf("extractJSON failed: %v", err)
	}
	obj, ok := v.(*orderedObject)
	if !ok {
		t.Fatalf("expected object, got %T", v)
	}
	arr, ok := obj.fields["schedule"].([]any)
	if !ok || len(arr) != 1 {
		t.Errorf("expected one-event schedule, got %v", obj.fields)
	}
}

func TestExtractJSONRepairsSloppyText(t *testing.T) {
	// Unquoted keys, single-quoted strings, trailing comma: the usual
	// LLM mistakes, all at once.
	raw := `{schedule: [{title: 'Standup', day: 1, hour: 9, duration: 0.5, type: 'meeting'},]}`

	v, err := extractJSON(raw, discardLogger())
	if err != nil {
		t.Fatalf("extractJSON failed on repairable text: %v", err)
	}

	want, err := parseDirect(`{"schedule":[{"title":"Standup","day":1,"hour":9,"duration":0.5,"type":"meeting"}]}`)
	if err != nil {
		t.Fatalf("parsing the intended JSON failed: %v", err)
	}
	if !reflect.DeepEqual(v, want) {
		t.Errorf("repaired value diverged from intended JSON:\ngot  %v\nwant %v", v, want)
	}
}

func TestParseScheduleKeyExtraction(t *testing.T) {
	raw := `I could not format this properly, sorry. schedule: [{"title":"Focus","day":2,"hour":10,"duration":2,"type":"deep-work"}]`

	v, err := parseScheduleKey(raw)
	if err != nil {
		t.Fatalf("parseScheduleKey failed: %v", err)
	}
	obj, ok := v.(*orderedObject)
	if !ok {
		t.Fatalf("expected wrapped object, got %T", v)
	}
	arr, ok := obj.fields["schedule"].([]any)
	if !ok || len(arr) != 1 {
		t.Errorf("expected one-event schedule array, got %v", obj.fields)
	}
}

func TestTopLevelKeysPreserveSourceOrder(t *testing.T) {
	raw := `{"zebra":[1],"nested":{"inner":[2]},"alpha":"x","list":[{"a":1},{"b":[3]}]}`

	got := topLevelKeys(raw)
	want := []string{"zebra", "nested", "alpha", "list"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got keys %v, want %v", got, want)
	}
}

func TestTruncateKeepsRuneBoundaries(t *testing.T) {
	s := strings.Repeat("é", 100) // two bytes per rune

	got := truncate(s, 5)
	if !utf8.ValidString(got) {
		t.Errorf("truncated string is not valid UTF-8: %q", got)
	}
	if got != "éé..." {
		t.Errorf("got %q, want %q", got, "éé...")
	}
}

func TestExtractJSONAllStrategiesFail(t *testing.T) {
	_, err := extractJSON("the weather is nice today", discardLogger())
	if err == nil {
		t.Fatal("expected an error for pure prose")
	}
	if !errors.Is(err, ErrParseFailure) {
		t.Errorf("expected ErrParseFailure, got %v", err)
	}
}
