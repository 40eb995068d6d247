// Package config holds process configuration for the judge server and CLI.
package config

import (
	"errors"
	"time"
)

var ErrInvalidConfig = errors.New("invalid config")

// Config contains process configuration.
type Config struct {
	// Addr is the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// GeminiAPIKey is the default credential for the generation service.
	// Requests may override it.
	GeminiAPIKey string `koanf:"gemini_api_key"`

	// DefaultModel is used when a request names no model.
	DefaultModel string `koanf:"default_model"`

	FetchTimeoutMS int    `koanf:"fetch_timeout_ms"`
	DialTimeoutMS  int    `koanf:"dial_timeout_ms"`
	SizeCapBytes   int64  `koanf:"size_cap_bytes"`
	UserAgent      string `koanf:"user_agent"`

	// RubricCharLimit and DescriptionCharLimit bound the text embedded in prompts.
	RubricCharLimit      int `koanf:"rubric_char_limit"`
	DescriptionCharLimit int `koanf:"description_char_limit"`

	// SessionDB is the SQLite file backing /sessions. Empty disables sessions.
	SessionDB string `koanf:"session_db"`

	MaxUploadBytes int64 `koanf:"max_upload_bytes"`
}

// DefaultUserAgent looks like a desktop browser; some gallery hosts reject bot agents.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		Addr:                 ":8080",
		LogLevel:             "info",
		DefaultModel:         "gemini-2.5-flash",
		FetchTimeoutMS:       15_000,
		DialTimeoutMS:        5_000,
		SizeCapBytes:         5 * 1024 * 1024,
		UserAgent:            DefaultUserAgent,
		RubricCharLimit:      15_000,
		DescriptionCharLimit: 12_000,
		SessionDB:            "judge-sessions.db",
		MaxUploadBytes:       32 << 20,
	}
}

func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutMS) * time.Millisecond
}

func (c *Config) DialTimeout() time.Duration {
	return time.Duration(c.DialTimeoutMS) * time.Millisecond
}
