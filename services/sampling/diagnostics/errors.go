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

import "errors"

// Sentinel errors for the diagnostics package.
//
// Structural errors (insufficient data/chains, invalid fractions) abort
// the single computation and are never downgraded. ErrDegenerateVariance
// is the one recoverable sentinel: the result is still populated, with
// NaN where a variance ratio is undefined, so batch sweeps can continue.
var (
	// ErrInsufficientData indicates a chain or segment shorter than the
	// minimum a computation requires.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrInsufficientChains indicates fewer independent chains than the
	// diagnostic requires.
	ErrInsufficientChains = errors.New("insufficient chains")

	// ErrInvalidFraction indicates caller-supplied fractions or counts
	// outside their required ranges.
	ErrInvalidFraction = errors.New("invalid fraction")

	// ErrDegenerateVariance indicates a zero variance denominator; the
	// accompanying result carries NaN rather than a crash.
	ErrDegenerateVariance = errors.New("degenerate variance")
)
