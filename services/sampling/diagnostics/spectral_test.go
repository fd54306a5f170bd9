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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpectralDensityZero_IIDMatchesVariance(t *testing.T) {
	// For uncorrelated data the zero-frequency density is the variance.
	chain := normalChain(7, 5000, 0, 2)

	s, err := SpectralDensityZero(chain)
	require.NoError(t, err)

	assert.InDelta(t, 4.0, s, 1.5, "spectral density should track the variance (sd=2)")
}

func TestSpectralDensityZero_CorrelatedExceedsVariance(t *testing.T) {
	// Positive autocorrelation inflates the long-run variance: for AR(1)
	// with phi=0.8 the true S(0) is variance·(1+phi)/(1−phi) = 9·variance.
	chain := ar1Chain(11, 5000, 0.8)

	s, err := SpectralDensityZero(chain)
	require.NoError(t, err)

	variance := autocovariance(chain, mean(chain), 0)
	assert.Greater(t, s, 3*variance, "long-run variance should far exceed marginal variance")
}

func TestSpectralDensityZero_TooShort(t *testing.T) {
	chain := normalChain(3, MinSpectralSegment-1, 0, 1)

	_, err := SpectralDensityZero(chain)
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestSpectralDensityZero_ConstantSegment(t *testing.T) {
	chain := make([]float64, 50)
	for i := range chain {
		chain[i] = 3.5
	}

	s, err := SpectralDensityZero(chain)
	require.NoError(t, err)
	assert.Equal(t, 0.0, s)
}

func TestSpectralDensityZero_NonNegative(t *testing.T) {
	// Strong anticorrelation drives the raw lag-window sum toward zero;
	// the clamp keeps the contract.
	chain := make([]float64, 100)
	for i := range chain {
		if i%2 == 0 {
			chain[i] = 1
		} else {
			chain[i] = -1
		}
	}

	s, err := SpectralDensityZero(chain)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, s, 0.0)
}
