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
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/AleutianAI/AleutianMCMC/pkg/logging"
	"github.com/AleutianAI/AleutianMCMC/services/sampling/chains"
)

// QuantityResult aggregates every per-quantity diagnostic for one tracked
// quantity of a chain set.
type QuantityResult struct {
	// Name is the quantity name.
	Name string `json:"name"`

	// GelmanRubin is the R̂ computation; nil when the set has a single
	// chain (the statistic needs at least two).
	GelmanRubin *GelmanRubinResult `json:"gelman_rubin,omitempty"`

	// ESS is the effective-sample-size computation; nil when it failed
	// structurally (see Errors).
	ESS *ESSResult `json:"ess,omitempty"`

	// Geweke holds the z-scores per chain, indexed by chain.
	Geweke [][]GewekeScore `json:"geweke,omitempty"`

	// WorstZ is the largest |z| over all chains and intervals, NaN when
	// no Geweke scores were produced.
	WorstZ float64 `json:"worst_z"`

	// Errors lists structural failures of individual diagnostics for
	// this quantity. A failed diagnostic leaves the rest intact.
	Errors []string `json:"errors,omitempty"`
}

// ChainResult holds the HMC energy diagnostics for one chain. Only
// produced when the set carries sampler statistics.
type ChainResult struct {
	// Chain is the chain index.
	Chain int `json:"chain"`

	// BFMI is the Bayesian Fraction of Missing Information, NaN when the
	// energy trace was degenerate or absent.
	BFMI float64 `json:"bfmi"`

	// Divergences records the divergent transitions of the chain.
	Divergences DivergenceResult `json:"divergences"`
}

// Report is the complete output of one suite run.
type Report struct {
	// RunID uniquely identifies this run.
	RunID string `json:"run_id"`

	// GeneratedAt is when the run started.
	GeneratedAt time.Time `json:"generated_at"`

	// NumChains and Draws describe the input set.
	NumChains int `json:"num_chains"`
	Draws     int `json:"draws"`

	// Quantities holds the per-quantity results in name order.
	Quantities []QuantityResult `json:"quantities"`

	// Chains holds per-chain energy diagnostics when sampler stats were
	// present.
	Chains []ChainResult `json:"chains,omitempty"`

	// Warnings lists advisory conditions (degenerate variances, missing
	// statistics, truncated autocorrelation sums, biased estimates).
	Warnings []string `json:"warnings,omitempty"`

	// Elapsed is the wall-clock duration of the run.
	Elapsed time.Duration `json:"elapsed"`
}

// Suite sweeps every diagnostic over every quantity of a chain set.
//
// Quantities are independent, so the sweep fans out across a bounded
// worker pool. All computation is pure over the immutable set; running
// the same suite twice over the same set yields identical numbers.
type Suite struct {
	geweke  GewekeOptions
	maxLag  int
	workers int
	logger  *logging.Logger
}

// SuiteOption configures a Suite.
type SuiteOption func(*Suite)

// WithGewekeOptions overrides the default Geweke configuration.
func WithGewekeOptions(opts GewekeOptions) SuiteOption {
	return func(s *Suite) { s.geweke = opts }
}

// WithMaxLag bounds the autocorrelation lags computed per quantity.
// Zero means no bound beyond the chain length.
func WithMaxLag(maxLag int) SuiteOption {
	return func(s *Suite) { s.maxLag = maxLag }
}

// WithWorkers sets the number of concurrent quantity workers.
// Defaults to GOMAXPROCS.
func WithWorkers(workers int) SuiteOption {
	return func(s *Suite) {
		if workers > 0 {
			s.workers = workers
		}
	}
}

// WithLogger attaches a logger for per-run progress and warnings.
func WithLogger(logger *logging.Logger) SuiteOption {
	return func(s *Suite) { s.logger = logger }
}

// NewSuite creates a Suite with default Geweke options, no lag bound,
// and one worker per CPU.
func NewSuite(opts ...SuiteOption) *Suite {
	s := &Suite{
		geweke:  DefaultGewekeOptions(),
		workers: runtime.GOMAXPROCS(0),
		logger:  logging.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run computes the full diagnostic report for a chain set.
//
// Structural failures of a single diagnostic on a single quantity are
// recorded in that quantity's Errors and do not abort the sweep.
// Degenerate variances, truncated autocorrelation sums, biased ESS
// estimates, and missing sampler statistics surface as Warnings.
// Run returns an error only when the context is canceled.
func (s *Suite) Run(ctx context.Context, set *chains.Set) (*Report, error) {
	start := time.Now()
	names := set.Quantities()

	ctx, span := startRunSpan(ctx, set.NumChains(), set.Len(), len(names))
	defer span.End()

	report := &Report{
		RunID:       uuid.NewString(),
		GeneratedAt: start,
		NumChains:   set.NumChains(),
		Draws:       set.Len(),
		Quantities:  make([]QuantityResult, len(names)),
	}

	logger := s.logger.With("run_id", report.RunID)
	logger.Info("diagnostic sweep started",
		"quantities", len(names),
		"chains", set.NumChains(),
		"draws", set.Len(),
	)

	// Each quantity's warnings are gathered separately and merged after
	// Wait so result order stays deterministic.
	quantityWarnings := make([][]string, len(names))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, name := range names {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			result, warnings := s.sweepQuantity(set, name)
			report.Quantities[i] = result
			quantityWarnings[i] = warnings
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		setRunSpanResult(span, 0, false)
		recordRunMetrics(ctx, time.Since(start), len(names), 0, false)
		return nil, fmt.Errorf("diagnostic sweep: %w", err)
	}

	for _, warnings := range quantityWarnings {
		report.Warnings = append(report.Warnings, warnings...)
	}

	if set.HasStats() {
		report.Chains = s.sweepEnergy(set, report)
	}

	report.Elapsed = time.Since(start)
	for _, w := range report.Warnings {
		logger.Warn(w)
	}
	logger.Info("diagnostic sweep finished",
		"elapsed", report.Elapsed,
		"warnings", len(report.Warnings),
	)

	setRunSpanResult(span, len(report.Warnings), true)
	recordRunMetrics(ctx, report.Elapsed, len(names), len(report.Warnings), true)
	return report, nil
}

// sweepQuantity runs R̂, ESS, and Geweke for one quantity.
func (s *Suite) sweepQuantity(set *chains.Set, name string) (QuantityResult, []string) {
	result := QuantityResult{Name: name, WorstZ: math.NaN()}
	var warnings []string

	draws, err := set.Draws(name)
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
		return result, nil
	}

	if set.NumChains() >= 2 {
		gr, err := GelmanRubin(draws)
		switch {
		case err == nil:
			result.GelmanRubin = &gr
		case errors.Is(err, ErrDegenerateVariance):
			result.GelmanRubin = &gr
			warnings = append(warnings, fmt.Sprintf("%s: gelman-rubin degenerate variance", name))
		default:
			result.Errors = append(result.Errors, fmt.Sprintf("gelman-rubin: %v", err))
		}
	}

	ess, err := EffectiveSampleSize(draws, s.maxLag)
	switch {
	case err == nil:
		result.ESS = &ess
		if ess.Truncated {
			warnings = append(warnings, fmt.Sprintf("%s: autocorrelation sum truncated at max lag %d", name, ess.TruncationLag))
		}
		if ess.BiasedEstimate {
			warnings = append(warnings, fmt.Sprintf("%s: effective sample size below bias threshold", name))
		}
	case errors.Is(err, ErrDegenerateVariance):
		result.ESS = &ess
		warnings = append(warnings, fmt.Sprintf("%s: effective sample size degenerate variance", name))
	default:
		result.Errors = append(result.Errors, fmt.Sprintf("ess: %v", err))
	}

	result.Geweke = make([][]GewekeScore, len(draws))
	for j, chain := range draws {
		scores, err := Geweke(chain, s.geweke)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("geweke chain %d: %v", j, err))
			continue
		}
		result.Geweke[j] = scores
		for _, score := range scores {
			z := math.Abs(score.Z)
			if math.IsNaN(result.WorstZ) || z > result.WorstZ {
				result.WorstZ = z
			}
		}
	}

	return result, warnings
}

// sweepEnergy runs BFMI and divergence extraction per chain.
func (s *Suite) sweepEnergy(set *chains.Set, report *Report) []ChainResult {
	results := make([]ChainResult, 0, set.NumChains())
	for j := 0; j < set.NumChains(); j++ {
		stats, err := set.Stats(j)
		if err != nil {
			continue
		}

		result := ChainResult{Chain: j, BFMI: math.NaN()}
		result.Divergences = Divergences(stats)
		if result.Divergences.MissingStatistic {
			report.Warnings = append(report.Warnings,
				fmt.Sprintf("chain %d: diverging statistic missing", j))
		}

		if stats != nil {
			if energy, err := stats.Series(chains.StatEnergy); err == nil {
				bfmi, err := BFMI(energy)
				switch {
				case err == nil:
					result.BFMI = bfmi
				case errors.Is(err, ErrDegenerateVariance):
					result.BFMI = bfmi
					report.Warnings = append(report.Warnings,
						fmt.Sprintf("chain %d: bfmi degenerate energy trace", j))
				default:
					report.Warnings = append(report.Warnings,
						fmt.Sprintf("chain %d: bfmi: %v", j, err))
				}
			} else {
				report.Warnings = append(report.Warnings,
					fmt.Sprintf("chain %d: energy statistic missing", j))
			}
		}

		results = append(results, result)
	}
	return results
}
