package planner

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	fencedBlockRE   = regexp.MustCompile("(?s)```[a-zA-Z]*\\s*\\n?(.*?)```")
	unquotedKeyRE   = regexp.MustCompile(`([{,]\s*)([A-Za-z_][A-Za-z0-9_]*)\s*:`)
	singleQuotedRE  = regexp.MustCompile(`'([^']*)'`)
	trailingCommaRE = regexp.MustCompile(`,\s*([}\]])`)
	whitespaceRE    = regexp.MustCompile(`\s+`)
	scheduleKeyRE   = regexp.MustCompile(`(?s)"?schedule"?\s*:\s*(\[.*\])`)
)

// orderedObject pairs a decoded JSON object with its top-level keys in
// source order. encoding/json maps lose key order, and the last-resort
// event array location depends on it.
type orderedObject struct {
	fields map[string]any
	keys   []string
}

// extractJSON recovers a JSON value (object or array) from a raw
// generator response. Strategies run in order, first success wins.
// The order matters: later strategies are lossier and must not shadow
// a cheap exact parse.
func extractJSON(raw string, logger *slog.Logger) (any, error) {
	strategies := []struct {
		name string
		fn   func(string) (any, error)
	}{
		{"direct", parseDirect},
		{"fenced_block", parseFencedBlock},
		{"brace_substring", parseBraceSubstring},
		{"text_repair", parseRepaired},
		{"schedule_key", parseScheduleKey},
	}

	for _, s := range strategies {
		v, err := s.fn(raw)
		if err == nil {
			logger.Debug("generator response parsed", "strategy", s.name)
			return v, nil
		}
		// Non-fatal: fall through to the next strategy.
		logger.Debug("parse strategy failed",
			"strategy", s.name,
			"error", err,
			"content", truncate(raw, 200))
	}

	return nil, fmt.Errorf("%w: all %d strategies exhausted", ErrParseFailure, 5)
}

// parseDirect parses the whole string as JSON. Scalar values are
// rejected: the pipeline needs an object or array to work with.
func parseDirect(raw string) (any, error) {
	raw = strings.TrimSpace(raw)
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return nil, err
	}
	switch obj := v.(type) {
	case map[string]any:
		return &orderedObject{fields: obj, keys: topLevelKeys(raw)}, nil
	case []any:
		return v, nil
	default:
		return nil, fmt.Errorf("parsed value is %T, not an object or array", v)
	}
}

// topLevelKeys re-scans raw (already known to be a valid JSON object)
// and returns its top-level keys in source order.
func topLevelKeys(raw string) []string {
	dec := json.NewDecoder(strings.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil
	}

	var keys []string
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return keys
		}
		key, ok := keyTok.(string)
		if !ok {
			return keys
		}
		keys = append(keys, key)
		if err := skipValue(dec); err != nil {
			return keys
		}
	}
	return keys
}

// skipValue consumes one complete JSON value from the decoder.
func skipValue(dec *json.Decoder) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	d, ok := tok.(json.Delim)
	if !ok || (d != '{' && d != '[') {
		return nil
	}
	depth := 1
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		if d, ok := tok.(json.Delim); ok {
			switch d {
			case '{', '[':
				depth++
			case '}', ']':
				depth--
			}
		}
	}
	return nil
}

// parseFencedBlock parses the content of the first fenced code block,
// with or without a language tag.
func parseFencedBlock(raw string) (any, error) {
	m := fencedBlockRE.FindStringSubmatch(raw)
	if m == nil {
		return nil, fmt.Errorf("no fenced code block found")
	}
	return parseDirect(m[1])
}

// parseBraceSubstring parses the substring between the first "{" and
// the last "}" in the text.
func parseBraceSubstring(raw string) (any, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end == -1 || end <= start {
		return nil, fmt.Errorf("no balanced brace span found")
	}
	return parseDirect(raw[start : end+1])
}

// parseRepaired applies heuristic fixes for the usual LLM formatting
// mistakes (unquoted keys, single quotes, trailing commas) and then
// parses the repaired text.
func parseRepaired(raw string) (any, error) {
	s := strings.ReplaceAll(raw, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	s = strings.TrimSpace(s)
	s = unquotedKeyRE.ReplaceAllString(s, `$1"$2":`)
	s = singleQuotedRE.ReplaceAllString(s, `"$1"`)
	s = trailingCommaRE.ReplaceAllString(s, "$1")
	s = whitespaceRE.ReplaceAllString(s, " ")
	return parseDirect(s)
}

// parseScheduleKey extracts just the array bound to a "schedule" key and
// wraps it back into an object shape. Last resort: everything around the
// array is discarded.
func parseScheduleKey(raw string) (any, error) {
	m := scheduleKeyRE.FindStringSubmatch(raw)
	if m == nil {
		return nil, fmt.Errorf("no schedule array literal found")
	}
	var arr []any
	if err := json.Unmarshal([]byte(m[1]), &arr); err != nil {
		return nil, fmt.Errorf("schedule array literal does not parse: %w", err)
	}
	return &orderedObject{
		fields: map[string]any{"schedule": arr},
		keys:   []string{"schedule"},
	}, nil
}

// truncate shortens s for log output, backing off to a rune boundary so
// the logged text stays valid UTF-8.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
