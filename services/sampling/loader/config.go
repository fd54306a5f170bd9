// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package loader

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/AleutianAI/AleutianMCMC/services/sampling/diagnostics"
)

// Config contains all suite-related configuration.
// Loadable from YAML or JSON files; zero fields fall back to defaults.
//
// Thread Safety: safe to read concurrently, not safe to modify after
// creation.
type Config struct {
	// Geweke contains the early/late segment comparison settings.
	Geweke GewekeConfig `json:"geweke" yaml:"geweke"`

	// MaxLag bounds the autocorrelation lags per quantity.
	// Zero means no bound beyond the chain length.
	MaxLag int `json:"max_lag" yaml:"max_lag"`

	// Workers is the number of concurrent quantity workers.
	// Zero means one per CPU.
	Workers int `json:"workers" yaml:"workers"`
}

// GewekeConfig contains Geweke diagnostic settings.
type GewekeConfig struct {
	First     float64 `json:"first" yaml:"first"`
	Last      float64 `json:"last" yaml:"last"`
	Intervals int     `json:"intervals" yaml:"intervals"`
}

// DefaultConfig returns the conventional configuration: Geweke over the
// first 10% against the last 50% at 20 intervals, unbounded lags, one
// worker per CPU.
func DefaultConfig() Config {
	return Config{
		Geweke: GewekeConfig{First: 0.1, Last: 0.5, Intervals: 20},
	}
}

// Validate checks all fields against their allowed ranges.
func (c Config) Validate() error {
	g := c.Geweke
	if g.First <= 0 || g.First >= 1 {
		return fmt.Errorf("geweke.first %v outside (0,1)", g.First)
	}
	if g.Last <= 0 || g.Last >= 1 {
		return fmt.Errorf("geweke.last %v outside (0,1)", g.Last)
	}
	if g.First+g.Last > 1 {
		return fmt.Errorf("geweke.first + geweke.last = %v exceeds 1", g.First+g.Last)
	}
	if g.Intervals < 1 {
		return fmt.Errorf("geweke.intervals %d, need >= 1", g.Intervals)
	}
	if c.MaxLag < 0 {
		return fmt.Errorf("max_lag %d, need >= 0", c.MaxLag)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers %d, need >= 0", c.Workers)
	}
	return nil
}

// SuiteOptions converts the config into diagnostics suite options.
func (c Config) SuiteOptions() []diagnostics.SuiteOption {
	opts := []diagnostics.SuiteOption{
		diagnostics.WithGewekeOptions(diagnostics.GewekeOptions{
			First:     c.Geweke.First,
			Last:      c.Geweke.Last,
			Intervals: c.Geweke.Intervals,
		}),
		diagnostics.WithMaxLag(c.MaxLag),
	}
	if c.Workers > 0 {
		opts = append(opts, diagnostics.WithWorkers(c.Workers))
	}
	return opts
}

// LoadConfig reads a YAML (.yaml/.yml) or JSON (.json) config file,
// fills unset fields from DefaultConfig, and validates the result.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}

	cfg := Config{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("decoding yaml config: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("decoding json config: %w", err)
		}
	default:
		return Config{}, fmt.Errorf("unsupported config extension %q", filepath.Ext(path))
	}

	defaults := DefaultConfig()
	if cfg.Geweke.First == 0 {
		cfg.Geweke.First = defaults.Geweke.First
	}
	if cfg.Geweke.Last == 0 {
		cfg.Geweke.Last = defaults.Geweke.Last
	}
	if cfg.Geweke.Intervals == 0 {
		cfg.Geweke.Intervals = defaults.Geweke.Intervals
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
