// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command mcdiag runs MCMC convergence diagnostics over a chain file.
//
// mcdiag is glue around the sampling diagnostics library: it loads the
// chains a sampler wrote, sweeps every diagnostic over every quantity,
// and prints the report. No diagnostic logic lives here.
//
// Usage:
//
//	mcdiag run --chains chains.json
//	mcdiag run --chains chains.json --config suite.yaml --format json
//	mcdiag run --chains chains.json --verbose --metrics
//
// Exit code is nonzero only for structural failures (unreadable file,
// invalid config); advisory diagnostic warnings still exit 0.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/AleutianAI/AleutianMCMC/pkg/logging"
	"github.com/AleutianAI/AleutianMCMC/services/sampling/diagnostics"
	"github.com/AleutianAI/AleutianMCMC/services/sampling/loader"
	"github.com/AleutianAI/AleutianMCMC/services/sampling/report"
)

var (
	chainsPath  string
	configPath  string
	format      string
	verbose     bool
	withMetrics bool
)

var rootCmd = &cobra.Command{
	Use:          "mcdiag",
	Short:        "MCMC convergence and efficiency diagnostics",
	SilenceUsage: true,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the diagnostic suite over a chain file",
	RunE:  runDiagnostics,
}

func init() {
	runCmd.Flags().StringVar(&chainsPath, "chains", "", "path to the JSON chain file (required)")
	runCmd.Flags().StringVar(&configPath, "config", "", "optional suite config (YAML or JSON)")
	runCmd.Flags().StringVar(&format, "format", "text", "report format: text or json")
	runCmd.Flags().BoolVar(&verbose, "verbose", false, "enable debug logging")
	runCmd.Flags().BoolVar(&withMetrics, "metrics", false, "emit OpenTelemetry metrics to stdout on exit")
	_ = runCmd.MarkFlagRequired("chains")

	rootCmd.AddCommand(runCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runDiagnostics(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	level := logging.LevelInfo
	if verbose {
		level = logging.LevelDebug
	}
	logger := logging.New(logging.Config{Level: level, Service: "mcdiag"})
	defer logger.Close()

	if withMetrics {
		shutdown, err := setupMetrics()
		if err != nil {
			return fmt.Errorf("setting up metrics: %w", err)
		}
		defer shutdown()
	}

	cfg := loader.DefaultConfig()
	if configPath != "" {
		var err error
		if cfg, err = loader.LoadConfig(configPath); err != nil {
			return err
		}
		logger.Debug("config loaded", "path", configPath)
	}

	set, err := loader.LoadChainFile(chainsPath)
	if err != nil {
		return err
	}
	logger.Debug("chain file loaded",
		"path", chainsPath,
		"quantities", len(set.Quantities()),
		"chains", set.NumChains(),
		"draws", set.Len(),
	)

	opts := append(cfg.SuiteOptions(), diagnostics.WithLogger(logger))
	rep, err := diagnostics.NewSuite(opts...).Run(ctx, set)
	if err != nil {
		return err
	}

	return report.Render(cmd.OutOrStdout(), rep, report.Format(format))
}

// setupMetrics installs a stdout metric exporter; the returned shutdown
// flushes collected instruments before the process exits.
func setupMetrics() (func(), error) {
	exporter, err := stdoutmetric.New()
	if err != nil {
		return nil, err
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter)),
	)
	otel.SetMeterProvider(provider)

	return func() {
		// Flush on a fresh context; the signal context may already be
		// canceled when the process is interrupted.
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = provider.Shutdown(sctx)
	}, nil
}
