// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package chains provides immutable containers for MCMC sampler output.
//
// # Description
//
// A Set holds the draws of one sampling run: for each named quantity,
// m independent chains of n iterations each. HMC-family samplers can
// attach per-chain Stats (energy, divergence flags, tree depth, ...)
// aligned iteration-for-iteration with the draws. Diagnostics consume a
// Set read-only; nothing mutates it after construction.
//
// Vector-valued quantities are stored componentwise under indexed names
// such as "theta[0]", "theta[1]"; ExpandVector produces that layout.
//
// # Thread Safety
//
// Set and Stats are immutable after construction and safe for concurrent
// readers without synchronization.
package chains

import (
	"fmt"
	"sort"

	"github.com/AleutianAI/AleutianMCMC/pkg/validation"
)

// Canonical sampler statistic names. Presence is sampler-dependent;
// samplers outside the HMC/NUTS family typically supply none of these.
const (
	// StatAcceptProb is the Metropolis acceptance probability.
	StatAcceptProb = "accept_prob"

	// StatDiverging flags iterations whose trajectory diverged
	// (nonzero means diverged).
	StatDiverging = "diverging"

	// StatTreeDepth is the NUTS doubling depth reached.
	StatTreeDepth = "tree_depth"

	// StatEnergy is the Hamiltonian energy at the accepted point.
	StatEnergy = "energy"

	// StatStepSize is the integrator step size used.
	StatStepSize = "step_size"
)

// Stats holds per-iteration sampler statistics for one chain, keyed by
// statistic name. Every series has the same length as the chain's draws.
type Stats struct {
	series map[string][]float64
	length int
}

// NewStats builds a Stats record from named statistic series.
// All series must have equal, nonzero length, and names must be valid
// identifiers. Input slices are copied.
func NewStats(series map[string][]float64) (*Stats, error) {
	if len(series) == 0 {
		return nil, fmt.Errorf("stats: %w", ErrEmptySet)
	}

	s := &Stats{series: make(map[string][]float64, len(series)), length: -1}
	for name, values := range series {
		if err := validation.ValidateQuantityName(name); err != nil {
			return nil, fmt.Errorf("stats: %w", err)
		}
		if s.length == -1 {
			s.length = len(values)
		}
		if len(values) != s.length || s.length == 0 {
			return nil, fmt.Errorf("stats %q: length %d, want %d: %w",
				name, len(values), s.length, ErrMisalignedStats)
		}
		s.series[name] = append([]float64(nil), values...)
	}
	return s, nil
}

// Len returns the number of iterations covered by every series.
func (s *Stats) Len() int {
	return s.length
}

// Has reports whether the named statistic is present.
func (s *Stats) Has(name string) bool {
	_, ok := s.series[name]
	return ok
}

// Names returns the statistic names in sorted order.
func (s *Stats) Names() []string {
	names := make([]string, 0, len(s.series))
	for name := range s.series {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Series returns the named statistic stream. The returned slice is shared
// and must be treated as read-only. Fails with ErrUnknownStatistic when
// the name is absent.
func (s *Stats) Series(name string) ([]float64, error) {
	values, ok := s.series[name]
	if !ok {
		return nil, fmt.Errorf("statistic %q: %w", name, ErrUnknownStatistic)
	}
	return values, nil
}

// Set aggregates the chains of one sampling run.
//
// Invariant: every quantity has exactly NumChains chains of exactly Len
// iterations; ragged input is rejected at construction.
type Set struct {
	draws     map[string][][]float64
	stats     []*Stats
	numChains int
	length    int
}

// Option configures Set construction.
type Option func(*Set) error

// WithStats attaches per-chain sampler statistics. The slice must have
// one entry per chain, each covering the same iteration count as the
// draws. Individual entries may be nil when a chain supplied no stats.
func WithStats(stats []*Stats) Option {
	return func(s *Set) error {
		if len(stats) != s.numChains {
			return fmt.Errorf("stats for %d chains, have %d chains: %w",
				len(stats), s.numChains, ErrMisalignedStats)
		}
		for i, st := range stats {
			if st != nil && st.length != s.length {
				return fmt.Errorf("chain %d stats cover %d iterations, draws have %d: %w",
					i, st.length, s.length, ErrMisalignedStats)
			}
		}
		s.stats = append([]*Stats(nil), stats...)
		return nil
	}
}

// NewSet builds an immutable Set from quantity draws. The outer map key is
// the quantity name; the value holds m chains of n samples. All quantities
// must agree on m and n. Input slices are copied.
func NewSet(draws map[string][][]float64, opts ...Option) (*Set, error) {
	if len(draws) == 0 {
		return nil, ErrEmptySet
	}

	s := &Set{
		draws:     make(map[string][][]float64, len(draws)),
		numChains: -1,
		length:    -1,
	}

	for name, qChains := range draws {
		if err := validation.ValidateQuantityName(name); err != nil {
			return nil, fmt.Errorf("quantity: %w", err)
		}
		if len(qChains) == 0 {
			return nil, fmt.Errorf("quantity %q has no chains: %w", name, ErrEmptySet)
		}
		if s.numChains == -1 {
			s.numChains = len(qChains)
		}
		if len(qChains) != s.numChains {
			return nil, fmt.Errorf("quantity %q has %d chains, want %d: %w",
				name, len(qChains), s.numChains, ErrRaggedChains)
		}

		copied := make([][]float64, len(qChains))
		for i, chain := range qChains {
			if s.length == -1 {
				s.length = len(chain)
			}
			if len(chain) != s.length || s.length == 0 {
				return nil, fmt.Errorf("quantity %q chain %d has length %d, want %d: %w",
					name, i, len(chain), s.length, ErrRaggedChains)
			}
			copied[i] = append([]float64(nil), chain...)
		}
		s.draws[name] = copied
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// NumChains returns the number of independent chains m.
func (s *Set) NumChains() int {
	return s.numChains
}

// Len returns the per-chain iteration count n.
func (s *Set) Len() int {
	return s.length
}

// Quantities returns the tracked quantity names in sorted order.
func (s *Set) Quantities() []string {
	names := make([]string, 0, len(s.draws))
	for name := range s.draws {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Draws returns the m×n draws for a quantity. The returned slices are
// shared and must be treated as read-only. Fails with ErrUnknownQuantity
// when the name is absent.
func (s *Set) Draws(name string) ([][]float64, error) {
	qChains, ok := s.draws[name]
	if !ok {
		return nil, fmt.Errorf("quantity %q: %w", name, ErrUnknownQuantity)
	}
	return qChains, nil
}

// HasStats reports whether any chain carries sampler statistics.
func (s *Set) HasStats() bool {
	for _, st := range s.stats {
		if st != nil {
			return true
		}
	}
	return false
}

// Stats returns the sampler statistics for one chain, or nil when that
// chain carries none. Chain index out of range fails with ErrRaggedChains.
func (s *Set) Stats(chain int) (*Stats, error) {
	if chain < 0 || chain >= s.numChains {
		return nil, fmt.Errorf("chain %d of %d: %w", chain, s.numChains, ErrRaggedChains)
	}
	if s.stats == nil {
		return nil, nil
	}
	return s.stats[chain], nil
}

// ExpandVector flattens a vector-valued quantity into componentwise scalar
// streams named name[0]..name[d-1]. Input is m chains × n iterations × d
// components; every iteration must have the same dimension.
func ExpandVector(name string, draws [][][]float64) (map[string][][]float64, error) {
	if err := validation.ValidateQuantityName(name); err != nil {
		return nil, fmt.Errorf("quantity: %w", err)
	}
	if len(draws) == 0 || len(draws[0]) == 0 || len(draws[0][0]) == 0 {
		return nil, fmt.Errorf("quantity %q: %w", name, ErrEmptySet)
	}

	m, n, dim := len(draws), len(draws[0]), len(draws[0][0])
	out := make(map[string][][]float64, dim)
	for d := 0; d < dim; d++ {
		component := make([][]float64, m)
		for j := range component {
			component[j] = make([]float64, n)
		}
		out[fmt.Sprintf("%s[%d]", name, d)] = component
	}

	for j, chain := range draws {
		if len(chain) != n {
			return nil, fmt.Errorf("quantity %q chain %d has %d iterations, want %d: %w",
				name, j, len(chain), n, ErrRaggedChains)
		}
		for t, vec := range chain {
			if len(vec) != dim {
				return nil, fmt.Errorf("quantity %q chain %d iteration %d has dim %d, want %d: %w",
					name, j, t, len(vec), dim, ErrRaggedChains)
			}
			for d, v := range vec {
				out[fmt.Sprintf("%s[%d]", name, d)][j][t] = v
			}
		}
	}
	return out, nil
}
