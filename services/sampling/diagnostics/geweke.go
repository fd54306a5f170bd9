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

// GewekeOptions configures the Geweke convergence diagnostic.
type GewekeOptions struct {
	// First is the fraction of the chain each early segment covers.
	// Must be in (0, 1). Default 0.1.
	First float64

	// Last is the fraction of the chain the fixed late segment covers
	// (the most recent Last·n samples). Must be in (0, 1), and
	// First+Last must not exceed 1. Default 0.5.
	Last float64

	// Intervals is the number of early-segment start offsets evaluated,
	// evenly spaced over the range that keeps the early segment clear of
	// the late segment. Must be >= 1. Default 20.
	Intervals int
}

// DefaultGewekeOptions returns the conventional first=0.1, last=0.5,
// intervals=20 configuration.
func DefaultGewekeOptions() GewekeOptions {
	return GewekeOptions{First: 0.1, Last: 0.5, Intervals: 20}
}

// GewekeScore is one early-vs-late comparison: the start offset of the
// early segment and the z-score of the mean difference.
type GewekeScore struct {
	// Start is the iteration index where the early segment begins.
	Start int `json:"start"`

	// Z is the standardized mean difference. As a rule of thumb |Z| > 2
	// over many intervals suggests the chain had not yet converged; that
	// interpretation is advisory and nothing here turns it into a verdict.
	Z float64 `json:"z"`
}

// Geweke compares a sliding early segment of one chain against its fixed
// late segment. For each start offset it computes
//
//	z = (mean_early − mean_late) / sqrt(S_early/n_early + S_late/n_late)
//
// where S is the zero-frequency spectral density of the segment, so the
// denominator is the standard error of the mean difference under
// autocorrelation.
//
// Fails with ErrInvalidFraction when the fractions are outside (0,1),
// their sum exceeds 1, or Intervals < 1; with ErrInsufficientData when
// the chain cannot hold one early and one late segment of
// MinSpectralSegment samples each.
func Geweke(chain []float64, opts GewekeOptions) ([]GewekeScore, error) {
	if opts.First <= 0 || opts.First >= 1 || opts.Last <= 0 || opts.Last >= 1 {
		return nil, fmt.Errorf("first=%v last=%v outside (0,1): %w",
			opts.First, opts.Last, ErrInvalidFraction)
	}
	if opts.First+opts.Last > 1 {
		return nil, fmt.Errorf("first=%v + last=%v exceeds 1: %w",
			opts.First, opts.Last, ErrInvalidFraction)
	}
	if opts.Intervals < 1 {
		return nil, fmt.Errorf("intervals=%d, need >= 1: %w",
			opts.Intervals, ErrInvalidFraction)
	}

	n := len(chain)
	earlyLen := int(opts.First * float64(n))
	lateLen := int(opts.Last * float64(n))
	if earlyLen < MinSpectralSegment || lateLen < MinSpectralSegment {
		return nil, fmt.Errorf("chain of %d gives segments of %d and %d, need >= %d: %w",
			n, earlyLen, lateLen, MinSpectralSegment, ErrInsufficientData)
	}

	lateStart := n - lateLen
	late := chain[lateStart:]
	lateMean := mean(late)
	lateSpec, err := SpectralDensityZero(late)
	if err != nil {
		return nil, err
	}

	// Last usable start keeps the early segment clear of the late one.
	maxStart := lateStart - earlyLen

	scores := make([]GewekeScore, 0, opts.Intervals)
	for i := 0; i < opts.Intervals; i++ {
		start := 0
		if opts.Intervals > 1 {
			start = int(math.Round(float64(i) * float64(maxStart) / float64(opts.Intervals-1)))
		}

		early := chain[start : start+earlyLen]
		earlyMean := mean(early)
		earlySpec, err := SpectralDensityZero(early)
		if err != nil {
			return nil, err
		}

		se := math.Sqrt(earlySpec/float64(earlyLen) + lateSpec/float64(lateLen))
		z := (earlyMean - lateMean) / se // NaN or Inf when both segments are constant
		scores = append(scores, GewekeScore{Start: start, Z: z})
	}
	return scores, nil
}
