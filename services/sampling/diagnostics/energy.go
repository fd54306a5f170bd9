// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package diagnostics

import (
	"fmt"
	"math"

	"github.com/AleutianAI/AleutianMCMC/services/sampling/chains"
)

// BFMI computes the Bayesian Fraction of Missing Information from one
// chain's per-iteration energy trace:
//
//	BFMI = Σ_n (E_n − E_{n−1})² / Σ_n (E_n − Ē)²
//
// Values near 1 indicate momentum resampling matches the marginal energy
// distribution; values well below ~0.3 indicate the sampler cannot move
// across energy sets efficiently. Energy traces are chain-specific, so
// BFMI is computed per chain; concatenating chains would bias the
// transition term at the seams.
//
// Fails with ErrInsufficientData when the trace has fewer than 2 values.
// A constant trace returns NaN with the ErrDegenerateVariance sentinel.
func BFMI(energy []float64) (float64, error) {
	n := len(energy)
	if n < 2 {
		return 0, fmt.Errorf("bfmi needs >= 2 energy values, have %d: %w",
			n, ErrInsufficientData)
	}

	num := 0.0
	for i := 1; i < n; i++ {
		d := energy[i] - energy[i-1]
		num += d * d
	}

	em := mean(energy)
	den := 0.0
	for _, e := range energy {
		d := e - em
		den += d * d
	}

	if den == 0 {
		return math.NaN(), fmt.Errorf("energy variance is zero: %w", ErrDegenerateVariance)
	}
	return num / den, nil
}

// DivergenceResult records the divergent transitions of one chain.
type DivergenceResult struct {
	// Indices are the iteration indices flagged divergent, in order.
	Indices []int `json:"indices"`

	// Count is len(Indices).
	Count int `json:"count"`

	// Fraction is Count over the total iterations, 0 when no statistics
	// were available.
	Fraction float64 `json:"fraction"`

	// MissingStatistic is set when the diverging statistic was absent
	// from the sampler stats entirely, as opposed to present with no
	// iteration flagged.
	MissingStatistic bool `json:"missing_statistic,omitempty"`
}

// Divergences extracts the divergent-transition indices from one chain's
// sampler statistics. A nonzero value of the diverging statistic marks an
// iteration as divergent.
//
// Never fails: absent stats (nil) or an absent diverging statistic yield
// an empty result with MissingStatistic set, which callers may surface as
// an advisory warning.
func Divergences(stats *chains.Stats) DivergenceResult {
	if stats == nil {
		return DivergenceResult{MissingStatistic: true}
	}

	flags, err := stats.Series(chains.StatDiverging)
	if err != nil {
		return DivergenceResult{MissingStatistic: true}
	}

	result := DivergenceResult{}
	for i, f := range flags {
		if f != 0 {
			result.Indices = append(result.Indices, i)
		}
	}
	result.Count = len(result.Indices)
	if len(flags) > 0 {
		result.Fraction = float64(result.Count) / float64(len(flags))
	}
	return result
}
