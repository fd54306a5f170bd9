// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package report renders diagnostic suite reports for humans and machines.
//
// Rendering is deliberately separate from the diagnostics package: the
// library reports numbers, this package decides how they look. Two
// formats are supported, a tabwriter text table for terminals and
// indented JSON for downstream tooling. No plotting.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"
	"text/tabwriter"

	"github.com/AleutianAI/AleutianMCMC/services/sampling/diagnostics"
)

// Format selects a rendering.
type Format string

const (
	// FormatText renders an aligned table for terminals.
	FormatText Format = "text"

	// FormatJSON renders the report as indented JSON.
	FormatJSON Format = "json"
)

// Render writes the report to w in the requested format.
func Render(w io.Writer, rep *diagnostics.Report, format Format) error {
	switch format {
	case FormatText:
		return renderText(w, rep)
	case FormatJSON:
		return renderJSON(w, rep)
	default:
		return fmt.Errorf("unsupported report format %q", format)
	}
}

func renderJSON(w io.Writer, rep *diagnostics.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(sanitizeForJSON(rep))
}

func renderText(w io.Writer, rep *diagnostics.Report) error {
	fmt.Fprintf(w, "run %s  chains=%d draws=%d elapsed=%s\n\n",
		rep.RunID, rep.NumChains, rep.Draws, rep.Elapsed)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "QUANTITY\tR_HAT\tESS\tESS/N\tWORST|Z|\tFLAGS")
	total := float64(rep.NumChains * rep.Draws)
	for _, q := range rep.Quantities {
		rhat := "-"
		if q.GelmanRubin != nil {
			rhat = num(q.GelmanRubin.RHat)
		}
		ess, ratio := "-", "-"
		if q.ESS != nil {
			ess = num(q.ESS.ESS)
			if total > 0 {
				ratio = num(q.ESS.ESS / total)
			}
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			q.Name, rhat, ess, ratio, num(q.WorstZ), flags(q))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(rep.Chains) > 0 {
		fmt.Fprintln(w)
		tw = tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "CHAIN\tBFMI\tDIVERGENCES\tFRACTION")
		for _, c := range rep.Chains {
			fmt.Fprintf(tw, "%d\t%s\t%d\t%s\n",
				c.Chain, num(c.BFMI), c.Divergences.Count, num(c.Divergences.Fraction))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	if len(rep.Warnings) > 0 {
		fmt.Fprintln(w)
		for _, warning := range rep.Warnings {
			fmt.Fprintf(w, "warning: %s\n", warning)
		}
	}
	return nil
}

// num formats a value to four significant figures, with NaN spelled out.
func num(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	return fmt.Sprintf("%.4g", v)
}

// flags summarizes a quantity's advisory markers for the table.
func flags(q diagnostics.QuantityResult) string {
	var out []string
	if q.GelmanRubin != nil && q.GelmanRubin.Degenerate {
		out = append(out, "degenerate")
	}
	if q.ESS != nil {
		if q.ESS.Truncated {
			out = append(out, "truncated")
		}
		if q.ESS.BiasedEstimate {
			out = append(out, "biased")
		}
	}
	if len(q.Errors) > 0 {
		out = append(out, fmt.Sprintf("%d errors", len(q.Errors)))
	}
	if len(out) == 0 {
		return "-"
	}
	return strings.Join(out, ",")
}

// sanitizeForJSON rewrites NaN values, which encoding/json rejects, into
// nulls via a generic pass over the marshal-ready structure.
func sanitizeForJSON(rep *diagnostics.Report) map[string]any {
	// Marshal through an intermediate representation so NaN handling
	// stays in one place instead of leaking custom MarshalJSON methods
	// into the diagnostics result types.
	quantities := make([]map[string]any, len(rep.Quantities))
	for i, q := range rep.Quantities {
		entry := map[string]any{
			"name":    q.Name,
			"worst_z": nullableNum(q.WorstZ),
		}
		if q.GelmanRubin != nil {
			entry["gelman_rubin"] = map[string]any{
				"r_hat":           nullableNum(q.GelmanRubin.RHat),
				"between":         q.GelmanRubin.Between,
				"within":          q.GelmanRubin.Within,
				"pooled_variance": q.GelmanRubin.PooledVariance,
				"degenerate":      q.GelmanRubin.Degenerate,
			}
		}
		if q.ESS != nil {
			entry["ess"] = map[string]any{
				"ess":             nullableNum(q.ESS.ESS),
				"truncation_lag":  q.ESS.TruncationLag,
				"truncated":       q.ESS.Truncated,
				"biased_estimate": q.ESS.BiasedEstimate,
				"degenerate":      q.ESS.Degenerate,
			}
		}
		if len(q.Errors) > 0 {
			entry["errors"] = q.Errors
		}
		quantities[i] = entry
	}

	chainEntries := make([]map[string]any, len(rep.Chains))
	for i, c := range rep.Chains {
		chainEntries[i] = map[string]any{
			"chain":       c.Chain,
			"bfmi":        nullableNum(c.BFMI),
			"divergences": c.Divergences,
		}
	}

	out := map[string]any{
		"run_id":       rep.RunID,
		"generated_at": rep.GeneratedAt,
		"num_chains":   rep.NumChains,
		"draws":        rep.Draws,
		"quantities":   quantities,
		"elapsed_ms":   rep.Elapsed.Milliseconds(),
	}
	if len(chainEntries) > 0 {
		out["chains"] = chainEntries
	}
	if len(rep.Warnings) > 0 {
		out["warnings"] = rep.Warnings
	}
	return out
}

// nullableNum maps NaN to nil for JSON output.
func nullableNum(v float64) any {
	if math.IsNaN(v) {
		return nil
	}
	return v
}
