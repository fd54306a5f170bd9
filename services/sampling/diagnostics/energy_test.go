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
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/AleutianMCMC/services/sampling/chains"
)

func TestBFMI_WhiteNoiseEnergy(t *testing.T) {
	// For an uncorrelated energy trace Var(ΔE) = 2·Var(E), so the ratio
	// lands near 2.
	energy := normalChain(21, 5000, 100, 3)

	bfmi, err := BFMI(energy)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, bfmi, 0.2)
}

func TestBFMI_HealthyEnergyNearOne(t *testing.T) {
	// Successive energies of a well-tuned sampler are positively
	// correlated; AR(1) with phi=0.5 gives Var(ΔE) = Var(E) and BFMI ≈ 1.
	energy := ar1Chain(23, 5000, 0.5)

	bfmi, err := BFMI(energy)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, bfmi, 0.2)
}

func TestBFMI_SlowDriftFarBelowOne(t *testing.T) {
	// A slow drift dominates the marginal variance while transitions stay
	// tiny, the classic poor-exploration signature.
	n := 5000
	noise := normalChain(29, n, 0, 0.05)
	energy := make([]float64, n)
	for i := range energy {
		energy[i] = 10*float64(i)/float64(n) + noise[i]
	}

	bfmi, err := BFMI(energy)
	require.NoError(t, err)
	assert.Less(t, bfmi, 0.3)
}

func TestBFMI_TooShort(t *testing.T) {
	_, err := BFMI([]float64{42})
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestBFMI_ConstantEnergy(t *testing.T) {
	bfmi, err := BFMI([]float64{5, 5, 5, 5})
	require.ErrorIs(t, err, ErrDegenerateVariance)
	assert.True(t, math.IsNaN(bfmi))
}

func TestDivergences_Extraction(t *testing.T) {
	stats, err := chains.NewStats(map[string][]float64{
		chains.StatDiverging: {0, 0, 1, 0, 1},
	})
	require.NoError(t, err)

	result := Divergences(stats)
	assert.Equal(t, []int{2, 4}, result.Indices)
	assert.Equal(t, 2, result.Count)
	assert.InDelta(t, 0.4, result.Fraction, 1e-12)
	assert.False(t, result.MissingStatistic)
}

func TestDivergences_NoneFlagged(t *testing.T) {
	stats, err := chains.NewStats(map[string][]float64{
		chains.StatDiverging: {0, 0, 0},
	})
	require.NoError(t, err)

	result := Divergences(stats)
	assert.Empty(t, result.Indices)
	assert.Equal(t, 0, result.Count)
	assert.Equal(t, 0.0, result.Fraction)
	assert.False(t, result.MissingStatistic, "present-but-all-false is not missing")
}

func TestDivergences_MissingStatistic(t *testing.T) {
	stats, err := chains.NewStats(map[string][]float64{
		chains.StatEnergy: {1, 2, 3},
	})
	require.NoError(t, err)

	result := Divergences(stats)
	assert.True(t, result.MissingStatistic)
	assert.Equal(t, 0, result.Count)

	nilResult := Divergences(nil)
	assert.True(t, nilResult.MissingStatistic)
}
