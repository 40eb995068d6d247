package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering sources. Order of precedence (low -> high):
//  1. defaults (New())
//  2. YAML file if JUDGE_CONFIG is set
//  3. GEMINI_API_KEY
//  4. env vars with prefix JUDGE_ (JUDGE_ADDR, JUDGE_DEFAULT_MODEL, ...)
func Load() (*Config, error) {
	k := koanf.New(".")

	if path := os.Getenv("JUDGE_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	// The key name most Gemini tooling already exports.
	if err := k.Load(env.Provider("GEMINI_API_KEY", ".", func(string) string {
		return "gemini_api_key"
	}), nil); err != nil {
		return nil, err
	}

	// JUDGE_SIZE_CAP_BYTES -> size_cap_bytes (flat keys, underscores kept)
	if err := k.Load(env.Provider("JUDGE_", ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), "judge_")
	}), nil); err != nil {
		return nil, err
	}

	cfg := *New()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the server cannot run with. A missing API key is
// not an error here: requests may carry their own.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.DefaultModel == "":
		return fmt.Errorf("%w: default_model must not be empty", ErrInvalidConfig)
	case c.SizeCapBytes <= 0:
		return fmt.Errorf("%w: size_cap_bytes must be positive", ErrInvalidConfig)
	case c.RubricCharLimit <= 0 || c.DescriptionCharLimit <= 0:
		return fmt.Errorf("%w: char limits must be positive", ErrInvalidConfig)
	}
	return nil
}
