// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package loader reads sampler output files and suite configuration.
//
// Chain files are JSON, with one array of chains per quantity and an
// optional per-chain sampler statistics block:
//
//	{
//	  "draws": {
//	    "mu":    [[0.1, 0.2, ...], [0.3, 0.1, ...]],
//	    "sigma": [[1.1, 1.0, ...], [0.9, 1.2, ...]]
//	  },
//	  "stats": [
//	    {"energy": [...], "diverging": [...]},
//	    {"energy": [...], "diverging": [...]}
//	  ]
//	}
//
// The loader only decodes and hands off; all structural validation
// (rectangularity, alignment, name rules) lives in the chains package.
package loader

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/AleutianAI/AleutianMCMC/services/sampling/chains"
)

// chainFile mirrors the JSON layout of a sampler output file.
type chainFile struct {
	Draws map[string][][]float64 `json:"draws"`
	Stats []map[string][]float64 `json:"stats,omitempty"`
}

// LoadChainFile reads a JSON chain file into an immutable chain set.
func LoadChainFile(path string) (*chains.Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading chain file: %w", err)
	}
	return ParseChainFile(data)
}

// ParseChainFile decodes chain-file JSON into an immutable chain set.
func ParseChainFile(data []byte) (*chains.Set, error) {
	var file chainFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decoding chain file: %w", err)
	}

	var opts []chains.Option
	if len(file.Stats) > 0 {
		stats := make([]*chains.Stats, len(file.Stats))
		for i, series := range file.Stats {
			if len(series) == 0 {
				continue
			}
			s, err := chains.NewStats(series)
			if err != nil {
				return nil, fmt.Errorf("chain %d stats: %w", i, err)
			}
			stats[i] = s
		}
		opts = append(opts, chains.WithStats(stats))
	}

	set, err := chains.NewSet(file.Draws, opts...)
	if err != nil {
		return nil, fmt.Errorf("building chain set: %w", err)
	}
	return set, nil
}
