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
)

func iidChains(baseSeed int64, m, n int) [][]float64 {
	draws := make([][]float64, m)
	for j := range draws {
		draws[j] = normalChain(baseSeed+int64(j), n, 0, 1)
	}
	return draws
}

func TestGelmanRubin_IIDNearOne(t *testing.T) {
	result, err := GelmanRubin(iidChains(100, 4, 2000))
	require.NoError(t, err)

	assert.InDelta(t, 1.0, result.RHat, 0.02)
	assert.False(t, result.Degenerate)
	assert.Greater(t, result.Within, 0.0)
}

func TestGelmanRubin_ConvergesWithLength(t *testing.T) {
	// Average |R̂−1| over repeated trials shrinks as chains grow.
	const trials = 20

	avgDeviation := func(n int) float64 {
		sum := 0.0
		for trial := 0; trial < trials; trial++ {
			result, err := GelmanRubin(iidChains(int64(5000+trial*10), 3, n))
			require.NoError(t, err)
			sum += math.Abs(result.RHat - 1)
		}
		return sum / trials
	}

	assert.Less(t, avgDeviation(10000), avgDeviation(100))
}

func TestGelmanRubin_SeparatedChainsExceedOne(t *testing.T) {
	// Chains stuck at different locations should push R̂ well above 1.
	draws := [][]float64{
		normalChain(1, 500, 0, 1),
		normalChain(2, 500, 5, 1),
	}

	result, err := GelmanRubin(draws)
	require.NoError(t, err)
	assert.Greater(t, result.RHat, 1.5)
}

func TestGelmanRubin_SingleChain(t *testing.T) {
	_, err := GelmanRubin([][]float64{normalChain(1, 100, 0, 1)})
	assert.ErrorIs(t, err, ErrInsufficientChains)
}

func TestGelmanRubin_TooShort(t *testing.T) {
	_, err := GelmanRubin([][]float64{{1}, {2}})
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestGelmanRubin_DegenerateVariance(t *testing.T) {
	// Two chains of constant identical values: W = 0, R̂ undefined.
	draws := [][]float64{
		{2, 2, 2, 2, 2},
		{2, 2, 2, 2, 2},
	}

	result, err := GelmanRubin(draws)
	require.ErrorIs(t, err, ErrDegenerateVariance)
	assert.True(t, result.Degenerate)
	assert.True(t, math.IsNaN(result.RHat), "R̂ should be reported as NaN, not crash")
	assert.Equal(t, 0.0, result.Within)
}

func TestGelmanRubin_RaggedChains(t *testing.T) {
	_, err := GelmanRubin([][]float64{{1, 2, 3}, {1, 2}})
	assert.Error(t, err)
}

func TestGelmanRubin_Purity(t *testing.T) {
	draws := iidChains(777, 3, 500)

	first, err := GelmanRubin(draws)
	require.NoError(t, err)
	second, err := GelmanRubin(draws)
	require.NoError(t, err)

	assert.Equal(t, first, second, "re-running on identical input must be bit-identical")
}
