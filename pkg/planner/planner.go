// Package planner turns user scheduling preferences into a 7-day event
// list. Generation is delegated to the Gemini API; a layered response
// parser recovers JSON from its occasionally malformed output, a
// normalizer enforces the event contract, and a deterministic local
// template backstops every failure so a caller always gets a schedule.
package planner

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/maypok86/otter/v2"
)

const (
	defaultModel   = "gemini-2.5-flash-lite"
	defaultTimeout = 60 * time.Second
)

// Planner orchestrates one generation request: prompt, generator call,
// parse, normalize, fallback. Safe for concurrent use: all per-request
// state is local to Generate.
type Planner struct {
	geminiAPIKey string
	geminiModel  string
	gcpProject   string
	timeout      time.Duration
	location     *time.Location
	logger       *slog.Logger
	cache        *otter.Cache[string, string]
	generate     GeneratorFunc
}

func New(opts ...Option) *Planner {
	return NewWithLogger(slog.Default(), opts...)
}

func NewWithLogger(logger *slog.Logger, opts ...Option) *Planner {
	optHolder := &OptionHolder{}
	for _, opt := range opts {
		opt(optHolder)
	}

	p := &Planner{
		geminiAPIKey: optHolder.geminiAPIKey,
		geminiModel:  optHolder.geminiModel,
		gcpProject:   optHolder.gcpProject,
		timeout:      optHolder.timeout,
		location:     optHolder.location,
		logger:       logger,
		generate:     optHolder.generator,
	}
	if p.geminiModel == "" {
		p.geminiModel = defaultModel
	}
	if p.timeout <= 0 {
		p.timeout = defaultTimeout
	}
	if p.location == nil {
		p.location = time.Local
	}
	if p.generate == nil {
		p.generate = p.callGeminiWithSDK
	}
	if !optHolder.noCache {
		p.cache = otter.Must(&otter.Options[string, string]{
			MaximumSize:      10_000,
			InitialCapacity:  100,
			ExpiryCalculator: otter.ExpiryWriting[string, string](time.Hour),
		})
	}

	return p
}

// Generate produces a non-empty, well-formed event list for the given
// preferences, or ErrInvalidInput. Every failure past input validation
// is absorbed: generator, parse and validation errors all fall back to
// the deterministic template, flagged in the result.
func (p *Planner) Generate(ctx context.Context, prefs *Preferences) (*GenerationResult, error) {
	if prefs == nil {
		return nil, fmt.Errorf("%w: preferences must not be nil", ErrInvalidInput)
	}

	system, user := buildPrompt(prefs)
	p.logger.Info("generating schedule",
		"work_hours", prefs.WorkHours,
		"deep_work_hours", prefs.DeepWorkHours,
		"prompt_length", len(user))

	raw, err := p.generate(ctx, system, user)
	if err != nil {
		p.logger.Warn("generator call failed, serving fallback schedule", "error", err)
		return p.fallback(prefs, "the schedule generator was unavailable"), nil
	}

	parsed, err := extractJSON(raw, p.logger)
	if err != nil {
		p.logger.Warn("response unparseable, serving fallback schedule",
			"error", err,
			"content", truncate(raw, 200))
		return p.fallback(prefs, "the generated schedule could not be parsed"), nil
	}

	events, err := normalizeEvents(parsed, time.Now(), p.location, p.logger)
	if err != nil {
		p.logger.Warn("no usable events in response, serving fallback schedule",
			"error", err,
			"content", truncate(raw, 200))
		return p.fallback(prefs, "the generated schedule contained no usable events"), nil
	}

	p.logger.Info("schedule generated", "events", len(events))
	return &GenerationResult{Events: events}, nil
}

func (p *Planner) fallback(prefs *Preferences, reason string) *GenerationResult {
	events := fallbackSchedule(prefs, time.Now(), p.location)
	return &GenerationResult{
		Events:   events,
		Fallback: true,
		Message:  fmt.Sprintf("Served a standard weekly template because %s.", reason),
	}
}
