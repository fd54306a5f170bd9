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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/AleutianMCMC/services/sampling/chains"
)

func TestParseChainFile(t *testing.T) {
	data := []byte(`{
		"draws": {
			"mu":    [[0.1, 0.2, 0.3], [0.4, 0.5, 0.6]],
			"sigma": [[1.0, 1.1, 1.2], [0.9, 1.0, 1.1]]
		},
		"stats": [
			{"energy": [10, 11, 12], "diverging": [0, 1, 0]},
			{"energy": [13, 14, 15], "diverging": [0, 0, 0]}
		]
	}`)

	set, err := ParseChainFile(data)
	require.NoError(t, err)

	assert.Equal(t, 2, set.NumChains())
	assert.Equal(t, 3, set.Len())
	assert.Equal(t, []string{"mu", "sigma"}, set.Quantities())
	assert.True(t, set.HasStats())

	stats, err := set.Stats(0)
	require.NoError(t, err)
	require.NotNil(t, stats)
	energy, err := stats.Series(chains.StatEnergy)
	require.NoError(t, err)
	assert.Equal(t, []float64{10, 11, 12}, energy)
}

func TestParseChainFile_NoStats(t *testing.T) {
	data := []byte(`{"draws": {"mu": [[1, 2], [3, 4]]}}`)

	set, err := ParseChainFile(data)
	require.NoError(t, err)
	assert.False(t, set.HasStats())
}

func TestParseChainFile_Malformed(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"invalid json", `{"draws": `},
		{"ragged chains", `{"draws": {"mu": [[1, 2], [3]]}}`},
		{"no draws", `{"draws": {}}`},
		{"misaligned stats", `{"draws": {"mu": [[1, 2]]}, "stats": [{"energy": [1, 2, 3]}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseChainFile([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestLoadChainFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chains.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"draws": {"mu": [[1, 2, 3]]}}`), 0600))

	set, err := LoadChainFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1, set.NumChains())

	_, err = LoadChainFile(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}

func TestDefaultConfig_Valid(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"default", func(c *Config) {}, false},
		{"fractions sum over one", func(c *Config) { c.Geweke.First = 0.6; c.Geweke.Last = 0.6 }, true},
		{"zero first", func(c *Config) { c.Geweke.First = 0 }, true},
		{"last at one", func(c *Config) { c.Geweke.Last = 1 }, true},
		{"zero intervals", func(c *Config) { c.Geweke.Intervals = 0 }, true},
		{"negative max lag", func(c *Config) { c.MaxLag = -1 }, true},
		{"negative workers", func(c *Config) { c.Workers = -2 }, true},
		{"explicit workers", func(c *Config) { c.Workers = 4 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadConfig_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "suite.yaml")
	content := []byte("geweke:\n  first: 0.2\n  last: 0.4\nmax_lag: 200\nworkers: 2\n")
	require.NoError(t, os.WriteFile(path, content, 0600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 0.2, cfg.Geweke.First)
	assert.Equal(t, 0.4, cfg.Geweke.Last)
	assert.Equal(t, 20, cfg.Geweke.Intervals, "unset fields take defaults")
	assert.Equal(t, 200, cfg.MaxLag)
	assert.Equal(t, 2, cfg.Workers)
}

func TestLoadConfig_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "suite.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"max_lag": 50}`), 0600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.MaxLag)
	assert.Equal(t, 0.1, cfg.Geweke.First)
}

func TestLoadConfig_Rejections(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("geweke:\n  first: 0.7\n  last: 0.7\n"), 0600))
	_, err := LoadConfig(bad)
	assert.Error(t, err)

	unsupported := filepath.Join(dir, "suite.toml")
	require.NoError(t, os.WriteFile(unsupported, []byte(""), 0600))
	_, err = LoadConfig(unsupported)
	assert.Error(t, err)

	_, err = LoadConfig(filepath.Join(dir, "absent.yaml"))
	assert.Error(t, err)
}

func TestConfig_SuiteOptions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Workers = 3

	opts := cfg.SuiteOptions()
	assert.Len(t, opts, 3)
}
