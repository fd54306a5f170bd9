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

// biasedESSRatio flags effective sample sizes so small relative to the
// total draws that the variogram estimate itself is suspect. Advisory
// only; the threshold is conventional rather than derived.
const biasedESSRatio = 0.001

// ESSResult holds the variogram autocorrelation sequence and the derived
// effective sample size for one quantity.
type ESSResult struct {
	// Autocorrelation is ρ̂ indexed by lag; Autocorrelation[0] is 1 and
	// Autocorrelation[i] is the lag-i estimate.
	Autocorrelation []float64 `json:"autocorrelation"`

	// ESS is n_eff = m·n / (1 + 2·Σ_{i<=T} ρ̂_i).
	ESS float64 `json:"ess"`

	// TruncationLag is T, the last lag included in the ESS sum.
	TruncationLag int `json:"truncation_lag"`

	// Truncated is set when no odd T with ρ̂_{T+1}+ρ̂_{T+2} < 0 was found
	// within the available lags and the sum stopped at the maximum lag.
	Truncated bool `json:"truncated,omitempty"`

	// BiasedEstimate is set when n_eff/(m·n) falls below 0.001; the value
	// stands but is likely an unreliable estimate.
	BiasedEstimate bool `json:"biased_estimate,omitempty"`

	// Degenerate is set when the pooled variance is zero (constant
	// chains), which leaves the autocorrelation undefined.
	Degenerate bool `json:"degenerate,omitempty"`
}

// EffectiveSampleSize estimates the effective sample size of m >= 1 chains
// of a quantity from the variogram
//
//	V_i = 1/(m·(n−i)) · Σ_j Σ_t (θ_{j,t} − θ_{j,t−i})²
//	ρ̂_i = 1 − V_i/(2·V̂)
//
// with V̂ the Gelman-Rubin pooled variance (for m = 1 the between-chain
// term vanishes and V̂ reduces to ((n−1)/n)·W). The sum over ρ̂ truncates
// at the first odd lag T whose following pair sum ρ̂_{T+1}+ρ̂_{T+2} is
// negative, the initial-positive-sequence rule.
//
// maxLag bounds the computed lags; values <= 0 or beyond n−1 fall back
// to n−1. Failing to find a truncation lag sets Truncated instead of
// erroring. Fails with ErrInsufficientData when n < 4. Constant input
// returns ESS = NaN with Degenerate set and the ErrDegenerateVariance
// sentinel.
func EffectiveSampleSize(draws [][]float64, maxLag int) (ESSResult, error) {
	m := len(draws)
	if m < 1 {
		return ESSResult{}, fmt.Errorf("effective sample size needs >= 1 chain: %w",
			ErrInsufficientChains)
	}
	n := len(draws[0])
	if n < 4 {
		return ESSResult{}, fmt.Errorf("effective sample size needs >= 4 draws, have %d: %w",
			n, ErrInsufficientData)
	}
	for j, chain := range draws {
		if len(chain) != n {
			return ESSResult{}, fmt.Errorf("chain %d has %d draws, want %d: %w",
				j, len(chain), n, chains.ErrRaggedChains)
		}
	}
	if maxLag <= 0 || maxLag > n-1 {
		maxLag = n - 1
	}

	pooled := pooledVariance(draws)
	if pooled == 0 {
		return ESSResult{ESS: math.NaN(), Degenerate: true},
			fmt.Errorf("pooled variance is zero: %w", ErrDegenerateVariance)
	}

	rho := make([]float64, maxLag+1)
	rho[0] = 1
	for i := 1; i <= maxLag; i++ {
		v := 0.0
		for _, chain := range draws {
			for t := i; t < n; t++ {
				d := chain[t] - chain[t-i]
				v += d * d
			}
		}
		v /= float64(m) * float64(n-i)
		rho[i] = 1 - v/(2*pooled)
	}

	result := ESSResult{Autocorrelation: rho}

	t := -1
	for candidate := 1; candidate+2 <= maxLag; candidate += 2 {
		if rho[candidate+1]+rho[candidate+2] < 0 {
			t = candidate
			break
		}
	}
	if t < 0 {
		t = maxLag
		result.Truncated = true
	}
	result.TruncationLag = t

	sum := 0.0
	for i := 1; i <= t; i++ {
		sum += rho[i]
	}

	total := float64(m) * float64(n)
	result.ESS = total / (1 + 2*sum)
	if result.ESS/total < biasedESSRatio {
		result.BiasedEstimate = true
	}
	return result, nil
}

// pooledVariance computes the Gelman-Rubin V̂ over the draws. With a
// single chain the between-chain term is zero by definition.
func pooledVariance(draws [][]float64) float64 {
	m := len(draws)
	n := len(draws[0])

	chainMeans := make([]float64, m)
	grand := 0.0
	for j, chain := range draws {
		chainMeans[j] = mean(chain)
		grand += chainMeans[j]
	}
	grand /= float64(m)

	between := 0.0
	if m > 1 {
		for _, cm := range chainMeans {
			d := cm - grand
			between += d * d
		}
		between *= float64(n) / float64(m-1)
	}

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

	return float64(n-1)/float64(n)*within + between/float64(n)
}
