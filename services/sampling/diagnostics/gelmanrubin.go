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

// GelmanRubinResult holds the potential-scale-reduction statistic and the
// variance components it is built from.
type GelmanRubinResult struct {
	// RHat is the potential scale reduction sqrt(V̂/W). Values near 1
	// indicate the chains sample a common distribution. NaN when the
	// within-chain variance is zero (Degenerate set).
	RHat float64 `json:"r_hat"`

	// Between is the between-chain variance B.
	Between float64 `json:"between"`

	// Within is the mean within-chain variance W.
	Within float64 `json:"within"`

	// PooledVariance is V̂ = ((n−1)/n)·W + B/n.
	PooledVariance float64 `json:"pooled_variance"`

	// Degenerate is set when W = 0 (every chain constant), which leaves
	// RHat undefined.
	Degenerate bool `json:"degenerate,omitempty"`
}

// GelmanRubin computes the potential-scale-reduction statistic over m >= 2
// chains of equal length n >= 2:
//
//	B  = n/(m−1) · Σ_j (θ̄_j − θ̄)²
//	W  = (1/m) · Σ_j s²_j
//	V̂  = ((n−1)/n)·W + B/n
//	R̂  = sqrt(V̂/W)
//
// Fails with ErrInsufficientChains (m < 2) or ErrInsufficientData (n < 2).
// When W = 0 the result is returned with RHat = NaN, Degenerate = true,
// and the ErrDegenerateVariance sentinel, so batch callers can match the
// sentinel and continue with the populated result.
func GelmanRubin(draws [][]float64) (GelmanRubinResult, error) {
	m := len(draws)
	if m < 2 {
		return GelmanRubinResult{}, fmt.Errorf("gelman-rubin needs >= 2 chains, have %d: %w",
			m, ErrInsufficientChains)
	}
	n := len(draws[0])
	if n < 2 {
		return GelmanRubinResult{}, fmt.Errorf("gelman-rubin needs >= 2 draws per chain, have %d: %w",
			n, ErrInsufficientData)
	}
	for j, chain := range draws {
		if len(chain) != n {
			return GelmanRubinResult{}, fmt.Errorf("chain %d has %d draws, want %d: %w",
				j, len(chain), n, chains.ErrRaggedChains)
		}
	}

	chainMeans := make([]float64, m)
	grand := 0.0
	for j, chain := range draws {
		chainMeans[j] = mean(chain)
		grand += chainMeans[j]
	}
	grand /= float64(m)

	between := 0.0
	for _, cm := range chainMeans {
		d := cm - grand
		between += d * d
	}
	between *= float64(n) / float64(m-1)

	within := 0.0
	for j, chain := range draws {
		s2 := 0.0
		for _, v := range chain {
			d := v - chainMeans[j]
			s2 += d * d
		}
		within += s2 / float64(n-1)
	}
	within /= float64(m)

	pooled := float64(n-1)/float64(n)*within + between/float64(n)

	result := GelmanRubinResult{
		Between:        between,
		Within:         within,
		PooledVariance: pooled,
	}

	if within == 0 {
		result.RHat = math.NaN()
		result.Degenerate = true
		return result, fmt.Errorf("within-chain variance is zero: %w", ErrDegenerateVariance)
	}

	result.RHat = math.Sqrt(pooled / within)
	return result, nil
}
