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
)

// MinSpectralSegment is the shortest segment SpectralDensityZero accepts.
// Spectral estimates on shorter segments are too noisy to be useful.
const MinSpectralSegment = 10

// SpectralDensityZero estimates the spectral density of a chain segment at
// zero frequency: the long-run variance accounting for autocorrelation.
//
// The estimator sums Bartlett-windowed autocovariances up to lag
// floor(sqrt(len(segment))):
//
//	S(0) = γ₀ + 2·Σ_k (1 − k/(L+1))·γ_k
//
// For an uncorrelated segment this reduces to the ordinary variance in
// expectation. The result is clamped at zero; a lag-window estimate can
// dip negative for short, strongly anticorrelated segments.
//
// Fails with ErrInsufficientData when the segment has fewer than
// MinSpectralSegment samples.
func SpectralDensityZero(segment []float64) (float64, error) {
	n := len(segment)
	if n < MinSpectralSegment {
		return 0, fmt.Errorf("spectral estimate needs >= %d samples, have %d: %w",
			MinSpectralSegment, n, ErrInsufficientData)
	}

	m := mean(segment)
	maxLag := int(math.Floor(math.Sqrt(float64(n))))

	s := autocovariance(segment, m, 0)
	for k := 1; k <= maxLag; k++ {
		window := 1 - float64(k)/float64(maxLag+1)
		s += 2 * window * autocovariance(segment, m, k)
	}

	if s < 0 {
		s = 0
	}
	return s, nil
}

// autocovariance computes γ_k = (1/n)·Σ_t (x_t − mean)(x_{t−k} − mean).
func autocovariance(x []float64, mean float64, lag int) float64 {
	n := len(x)
	sum := 0.0
	for t := lag; t < n; t++ {
		sum += (x[t] - mean) * (x[t-lag] - mean)
	}
	return sum / float64(n)
}

// mean computes the arithmetic mean of x. Callers guarantee len(x) > 0.
func mean(x []float64) float64 {
	sum := 0.0
	for _, v := range x {
		sum += v
	}
	return sum / float64(len(x))
}
