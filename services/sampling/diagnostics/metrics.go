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
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Package-level tracer and meter for diagnostic suite runs.
var (
	tracer = otel.Tracer("aleutian.mcmc")
	meter  = otel.Meter("aleutian.mcmc")
)

// Metrics for diagnostic suite runs.
var (
	runLatency      metric.Float64Histogram
	runTotal        metric.Int64Counter
	runWarnings     metric.Int64Histogram
	quantitiesSwept metric.Int64Histogram

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics initializes the metrics. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		runLatency, err = meter.Float64Histogram(
			"diagnostics_run_duration_seconds",
			metric.WithDescription("Duration of diagnostic suite runs"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		runTotal, err = meter.Int64Counter(
			"diagnostics_runs_total",
			metric.WithDescription("Total number of diagnostic suite runs"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		runWarnings, err = meter.Int64Histogram(
			"diagnostics_run_warnings",
			metric.WithDescription("Number of advisory warnings per run"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		quantitiesSwept, err = meter.Int64Histogram(
			"diagnostics_quantities_swept",
			metric.WithDescription("Number of quantities per run"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

// startRunSpan creates a span for a diagnostic suite run.
func startRunSpan(ctx context.Context, numChains, draws, quantities int) (context.Context, trace.Span) {
	return tracer.Start(ctx, "Suite.Run",
		trace.WithAttributes(
			attribute.Int("mcmc.chains", numChains),
			attribute.Int("mcmc.draws", draws),
			attribute.Int("mcmc.quantities", quantities),
		),
	)
}

// setRunSpanResult sets the result attributes on a run span.
func setRunSpanResult(span trace.Span, warningCount int, success bool) {
	span.SetAttributes(
		attribute.Int("mcmc.warnings", warningCount),
		attribute.Bool("mcmc.success", success),
	)
}

// recordRunMetrics records metrics for a completed suite run.
func recordRunMetrics(ctx context.Context, duration time.Duration, quantities, warnings int, success bool) {
	if err := initMetrics(); err != nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.Bool("success", success),
	)

	runLatency.Record(ctx, duration.Seconds(), attrs)
	runTotal.Add(ctx, 1, attrs)
	runWarnings.Record(ctx, int64(warnings))
	quantitiesSwept.Record(ctx, int64(quantities))
}
