// Package main implements the planweave web server for AI-assisted
// weekly schedule generation.
package main

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/maypok86/otter"

	"github.com/planweave/planweave/pkg/config"
	"github.com/planweave/planweave/pkg/planner"
)

var (
	configPath   = flag.String("config", "", "Path to YAML config file (or set PLANWEAVE_CONFIG)")
	listen       = flag.String("listen", "", "Listen address, overrides config")
	geminiAPIKey = flag.String("gemini-key", "", "Gemini API key (or set GEMINI_API_KEY)")
	geminiModel  = flag.String("gemini-model", "", "Gemini model, overrides config")
	gcpProject   = flag.String("gcp-project", "", "GCP project ID for Vertex AI (or set GCP_PROJECT)")
	verbose      = flag.Bool("verbose", false, "Enable verbose logging")
	version      = flag.Bool("version", false, "Show version")
)

type rateLimiter struct {
	requests map[string][]time.Time
	perMin   int
	mu       sync.Mutex
}

func newRateLimiter(perMin int) *rateLimiter {
	return &rateLimiter{
		requests: make(map[string][]time.Time),
		perMin:   perMin,
	}
}

func (rl *rateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	cutoff := now.Add(-time.Minute)

	var valid []time.Time
	for _, t := range rl.requests[ip] {
		if t.After(cutoff) {
			valid = append(valid, t)
		}
	}

	if len(valid) >= rl.perMin {
		rl.requests[ip] = valid
		return false
	}

	rl.requests[ip] = append(valid, now)
	return true
}

func main() {
	flag.Parse()

	if *version {
		fmt.Println("planweave Server v1.0.0")
		return
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if *configPath == "" {
		*configPath = os.Getenv("PLANWEAVE_CONFIG")
	}
	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	if *listen != "" {
		cfg.Listen = *listen
	}
	if *geminiModel != "" {
		cfg.GeminiModel = *geminiModel
	}
	if *geminiAPIKey == "" {
		*geminiAPIKey = os.Getenv("GEMINI_API_KEY")
	}
	if *gcpProject == "" {
		*gcpProject = os.Getenv("GCP_PROJECT")
	}

	loc := time.Local
	if cfg.Timezone != "" {
		loc, err = time.LoadLocation(cfg.Timezone)
		if err != nil {
			logger.Error("Invalid timezone in config", "timezone", cfg.Timezone, "error", err)
			os.Exit(1)
		}
	}

	// Log configuration (without exposing sensitive keys)
	logger.Info("Server configuration",
		"listen", cfg.Listen,
		"verbose", *verbose,
		"gemini_model", cfg.GeminiModel,
		"timezone", loc.String(),
		"timeout_seconds", cfg.TimeoutSeconds,
		"has_gemini_key", *geminiAPIKey != "",
		"has_gcp_project", *gcpProject != "")

	p := planner.NewWithLogger(logger,
		planner.WithGeminiAPIKey(*geminiAPIKey),
		planner.WithGeminiModel(cfg.GeminiModel),
		planner.WithGCPProject(*gcpProject),
		planner.WithTimeout(time.Duration(cfg.TimeoutSeconds)*time.Second),
		planner.WithLocation(loc),
	)

	cache, err := otter.MustBuilder[string, []byte](10_000).
		WithTTL(time.Duration(cfg.CacheTTLMinutes) * time.Minute).
		Build()
	if err != nil {
		logger.Error("Failed to build cache", "error", err)
		return
	}

	server := &server{
		planner: p,
		cache:   cache,
		limiter: newRateLimiter(cfg.RateLimitPerMinute),
		logger:  logger,
		timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", server.handleHealth)
	mux.HandleFunc("POST /api/v1/generate", server.handleGenerate)

	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           server.wrap(mux),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      90 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		logger.Info("Server starting", "listen", cfg.Listen)
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Shutdown failed", "error", err)
	}
	logger.Info("Server stopped")
}

type server struct {
	planner *planner.Planner
	cache   otter.Cache[string, []byte]
	limiter *rateLimiter
	logger  *slog.Logger
	timeout time.Duration
}

func (s *server) wrap(handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := fmt.Sprintf("%d-%d", time.Now().Unix(), time.Now().Nanosecond())
		w.Header().Set("X-Request-ID", requestID)

		defer func() {
			if err := recover(); err != nil {
				clientIP := strings.Split(r.RemoteAddr, ":")[0]
				s.logger.Error("PANIC: Request handler crashed",
					"error", err,
					"path", r.URL.Path,
					"method", r.Method,
					"request_id", requestID,
					"client_ip", clientIP)
				http.Error(w, "Internal server error", http.StatusInternalServerError)
			}
		}()

		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")

		if strings.HasPrefix(r.URL.Path, "/api/") {
			w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate, private")
		}

		handler.ServeHTTP(w, r)
	})
}

func (s *server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]string{"status": "ok"}); err != nil {
		s.logger.Error("Failed to encode health response", "error", err)
	}
}

type generateRequest struct {
	Preferences *planner.Preferences `json:"preferences"`
}

func (s *server) handleGenerate(writer http.ResponseWriter, request *http.Request) {
	start := time.Now()
	clientIP := strings.Split(request.RemoteAddr, ":")[0]
	requestID := writer.Header().Get("X-Request-ID")

	s.logger.Info("Generation request started",
		"request_id", requestID,
		"client_ip", clientIP)

	if !s.limiter.allow(clientIP) {
		s.logger.Error("Rate limit exceeded",
			"request_id", requestID,
			"client_ip", clientIP)
		s.writeError(writer, http.StatusTooManyRequests, "Rate limit exceeded", requestID)
		return
	}

	var req generateRequest
	if err := json.NewDecoder(request.Body).Decode(&req); err != nil {
		s.logger.Error("Invalid request body",
			"request_id", requestID,
			"error", err,
			"duration_ms", time.Since(start).Milliseconds())
		s.writeError(writer, http.StatusBadRequest, "Invalid request body", requestID)
		return
	}

	// A missing preferences object is a client error, never a fallback
	// schedule.
	if req.Preferences == nil {
		s.logger.Error("Missing preferences",
			"request_id", requestID,
			"duration_ms", time.Since(start).Milliseconds())
		s.writeError(writer, http.StatusBadRequest, "Missing preferences object", requestID)
		return
	}

	cacheKey := preferencesCacheKey(req.Preferences)
	if data, found := s.cache.Get(cacheKey); found {
		writer.Header().Set("Content-Type", "application/json")
		writer.Header().Set("X-Cache", "hit")
		if _, err := writer.Write(data); err != nil {
			s.logger.Error("Failed to write cached response",
				"request_id", requestID,
				"error", err)
		}
		s.logger.Info("Generation request completed (cache)",
			"request_id", requestID,
			"duration_ms", time.Since(start).Milliseconds())
		return
	}

	ctx, cancel := context.WithTimeout(request.Context(), s.timeout+5*time.Second)
	defer cancel()

	result, err := s.planner.Generate(ctx, req.Preferences)
	if err != nil {
		// Only InvalidInput escapes Generate; everything else became a
		// fallback schedule already.
		statusCode := http.StatusInternalServerError
		if errors.Is(err, planner.ErrInvalidInput) {
			statusCode = http.StatusBadRequest
		}
		s.logger.Error("Generation failed",
			"request_id", requestID,
			"error", err,
			"duration_ms", time.Since(start).Milliseconds())
		s.writeError(writer, statusCode, err.Error(), requestID)
		return
	}

	data, err := json.Marshal(result.Envelope())
	if err != nil {
		s.logger.Error("JSON encoding failed",
			"request_id", requestID,
			"error", err)
		s.writeError(writer, http.StatusInternalServerError, "Encoding failed", requestID)
		return
	}

	// Fallback schedules are not cached: a later request should get
	// another chance at the generator.
	if !result.Fallback {
		s.cache.Set(cacheKey, data)
	}

	writer.Header().Set("Content-Type", "application/json")
	writer.Header().Set("X-Cache", "miss")
	if _, err := writer.Write(data); err != nil {
		s.logger.Error("Failed to write response",
			"request_id", requestID,
			"error", err,
			"duration_ms", time.Since(start).Milliseconds())
		return
	}

	s.logger.Info("Generation request completed",
		"request_id", requestID,
		"events", len(result.Events),
		"fallback", result.Fallback,
		"duration_ms", time.Since(start).Milliseconds())
}

func (s *server) writeError(w http.ResponseWriter, statusCode int, message, requestID string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(planner.ErrorEnvelope(message)); err != nil {
		s.logger.Error("Failed to encode error response",
			"request_id", requestID,
			"encode_error", err)
	}
}

// preferencesCacheKey hashes the canonical JSON form of the preferences.
func preferencesCacheKey(prefs *planner.Preferences) string {
	data, err := json.Marshal(prefs)
	if err != nil {
		return fmt.Sprintf("unmarshalable-%d", time.Now().UnixNano())
	}
	h := sha256.Sum256(data)
	return "generate:" + hex.EncodeToString(h[:])
}
