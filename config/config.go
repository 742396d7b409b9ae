// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

// Package config loads analysis settings from YAML.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/go-air/regnet/fix"
	"github.com/go-air/regnet/prime"
)

// PrimesConfig bounds prime implicant computation.
type PrimesConfig struct {
	MaxSupport int `yaml:"max_support,omitempty"` // largest rule support accepted (default 16, at most 62)
	Workers    int `yaml:"workers,omitempty"`     // rules processed in parallel, 0 = one per rule
}

// FixpointsConfig selects how stable states are enumerated.
type FixpointsConfig struct {
	Backend        string `yaml:"backend,omitempty"`         // auto, clauses, circuit or bdd
	Max            int    `yaml:"max,omitempty"`             // 0 = all states
	PatternSupport int    `yaml:"pattern_support,omitempty"` // widest rule turned into clauses (default 10)
}

// LogConfig configures the slog handler.
type LogConfig struct {
	Level  string `yaml:"level,omitempty"`  // debug, info, warn or error
	Format string `yaml:"format,omitempty"` // text or json
}

// Config is the top-level configuration.
type Config struct {
	Primes    PrimesConfig    `yaml:"primes"`
	Fixpoints FixpointsConfig `yaml:"fixpoints"`
	Log       LogConfig       `yaml:"log"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Primes:    PrimesConfig{MaxSupport: prime.DefaultMaxSupport},
		Fixpoints: FixpointsConfig{Backend: fix.Clauses.String()},
		Log:       LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads and validates the configuration file at path.  Settings absent
// from the file keep their default value.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse parses and validates a YAML configuration.
func Parse(data []byte) (*Config, error) {
	c := Default()
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return c, nil
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.Primes.MaxSupport < 0 || c.Primes.MaxSupport > prime.MaxSupport {
		return fmt.Errorf("primes.max_support must be between 0 and %d, got %d", prime.MaxSupport, c.Primes.MaxSupport)
	}
	if c.Primes.Workers < 0 {
		return fmt.Errorf("primes.workers must be >= 0, got %d", c.Primes.Workers)
	}
	if _, err := fix.ParseBackend(c.Fixpoints.Backend); err != nil {
		return fmt.Errorf("fixpoints.backend: %w", err)
	}
	if c.Fixpoints.PatternSupport < 0 || c.Fixpoints.PatternSupport >= prime.MaxSupport {
		return fmt.Errorf("fixpoints.pattern_support must be between 0 and %d, got %d", prime.MaxSupport-1, c.Fixpoints.PatternSupport)
	}
	if c.Fixpoints.Max < 0 {
		return fmt.Errorf("fixpoints.max must be >= 0, got %d", c.Fixpoints.Max)
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		return err
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("log.format must be 'text' or 'json', got %q", c.Log.Format)
	}
	return nil
}

// FixOptions returns the solver options described by c.  The logger is
// left unset.
func (c *Config) FixOptions() fix.Options {
	b, _ := fix.ParseBackend(c.Fixpoints.Backend)
	return fix.Options{
		Backend:    b,
		Max:        c.Fixpoints.Max,
		MaxSupport: c.Fixpoints.PatternSupport,
		Workers:    c.Primes.Workers,
	}
}

// TrapOptions returns the trap space options described by c: the limits
// of prime implicant computation apply.  Mode and logger are left unset.
func (c *Config) TrapOptions() fix.TrapOptions {
	return fix.TrapOptions{
		MaxSupport: c.Primes.MaxSupport,
		Workers:    c.Primes.Workers,
	}
}

// Logger returns a logger writing to w as described by c.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	lvl, err := parseLevel(c.Log.Level)
	if err != nil {
		lvl = slog.LevelInfo
	}
	hopts := &slog.HandlerOptions{Level: lvl}
	if strings.ToLower(c.Log.Format) == "json" {
		return slog.New(slog.NewJSONHandler(w, hopts))
	}
	return slog.New(slog.NewTextHandler(w, hopts))
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("log.level must be debug, info, warn or error, got %q", s)
}
