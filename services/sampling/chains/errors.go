// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package chains

import "errors"

// Sentinel errors for the chains package.
var (
	// ErrEmptySet indicates a set with no quantities or no draws.
	ErrEmptySet = errors.New("chain set is empty")

	// ErrRaggedChains indicates chains of unequal length or count.
	ErrRaggedChains = errors.New("ragged chains")

	// ErrUnknownQuantity indicates a quantity name not present in the set.
	ErrUnknownQuantity = errors.New("unknown quantity")

	// ErrUnknownStatistic indicates a sampler statistic not present.
	ErrUnknownStatistic = errors.New("unknown statistic")

	// ErrMisalignedStats indicates sampler stats that don't match the
	// chain count or iteration count of the draws.
	ErrMisalignedStats = errors.New("misaligned sampler stats")
)
