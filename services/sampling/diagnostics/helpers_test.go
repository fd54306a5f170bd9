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

import "math/rand"

// normalChain generates n iid normal(mean, sd) samples from a fixed seed.
func normalChain(seed int64, n int, mean, sd float64) []float64 {
	rng := rand.New(rand.NewSource(seed))
	chain := make([]float64, n)
	for i := range chain {
		chain[i] = mean + sd*rng.NormFloat64()
	}
	return chain
}

// ar1Chain generates an AR(1) process x_t = phi·x_{t−1} + ε_t with unit
// normal innovations from a fixed seed. The same seed gives the same
// innovation stream across different phi values, so autocorrelation
// comparisons between coefficients are not confounded by noise.
func ar1Chain(seed int64, n int, phi float64) []float64 {
	rng := rand.New(rand.NewSource(seed))
	chain := make([]float64, n)
	x := 0.0
	for i := range chain {
		x = phi*x + rng.NormFloat64()
		chain[i] = x
	}
	return chain
}
