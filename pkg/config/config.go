// Package config loads the server configuration from a YAML file and
// fills in defaults for anything left unset.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the top-level server configuration. Flags and environment
// variables override file values at startup; the struct itself is
// read-only after that.
type Config struct {
	// Listen is the HTTP listen address.
	Listen string `yaml:"listen" json:"listen"`

	// Timezone is the IANA zone used when projecting event start/end
	// instants (e.g. "America/New_York"). Empty means the host zone.
	Timezone string `yaml:"timezone" json:"timezone"`

	// GeminiModel selects the generator model.
	GeminiModel string `yaml:"gemini_model" json:"gemini_model"`

	// TimeoutSeconds bounds each outbound generator call.
	TimeoutSeconds int `yaml:"timeout_seconds" json:"timeout_seconds"`

	// RateLimitPerMinute is the per-IP request budget.
	RateLimitPerMinute int `yaml:"rate_limit_per_minute" json:"rate_limit_per_minute"`

	// CacheTTLMinutes is how long generated schedules are served from
	// the result cache.
	CacheTTLMinutes int `yaml:"cache_ttl_minutes" json:"cache_ttl_minutes"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:             ":8080",
		GeminiModel:        "gemini-2.5-flash-lite",
		TimeoutSeconds:     60,
		RateLimitPerMinute: 15,
		CacheTTLMinutes:    720,
	}
}

// Normalize fills in missing/zero values so partially-filled configs
// still behave correctly.
func (c *Config) Normalize() {
	def := DefaultConfig()
	if c.Listen == "" {
		c.Listen = def.Listen
	}
	if c.GeminiModel == "" {
		c.GeminiModel = def.GeminiModel
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = def.TimeoutSeconds
	}
	if c.RateLimitPerMinute <= 0 {
		c.RateLimitPerMinute = def.RateLimitPerMinute
	}
	if c.CacheTTLMinutes <= 0 {
		c.CacheTTLMinutes = def.CacheTTLMinutes
	}
}

// Load reads the configuration from path. A missing file is not an
// error: the defaults are returned so the server can run unconfigured.
func Load(path string) (*Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	cfg.Normalize()
	return cfg, nil
}
