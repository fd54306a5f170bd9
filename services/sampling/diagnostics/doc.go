// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package diagnostics computes MCMC convergence and efficiency measures
// over immutable chain sets.
//
// # Description
//
// The package covers the standard post-sampling checks: Geweke z-scores
// over sliding early segments, the Gelman-Rubin potential-scale-reduction
// statistic across chains, variogram-based autocorrelation with effective
// sample size, and the HMC energy diagnostics (BFMI, divergent-transition
// extraction). Each diagnostic is a pure function of its inputs; Suite
// batches all of them over every quantity of a chains.Set and collects
// advisory warnings alongside the numbers.
//
// Interpretation stays with the caller: the package reports z-scores,
// R-hat values, and fractions; it never decides whether a run "passed".
//
// # Thread Safety
//
// All functions are pure over read-only inputs and safe to call
// concurrently. Suite instances are immutable after construction.
package diagnostics
