// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package validation provides input validation for user-supplied identifiers.
//
// Quantity and statistic names arrive from chain files and caller code and
// end up in log lines, report tables, and JSON keys. Validating them up
// front keeps malformed or control-character names out of every downstream
// surface.
package validation

import (
	"fmt"
	"regexp"
	"strings"
)

// quantityPattern matches valid quantity/statistic names.
// Allows: letters, digits, underscores, dots (model.sigma), and bracketed
// component indices (theta[3]). Max length: 64 characters.
var quantityPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.]*(\[[0-9]+\])?$`)

// maxNameLength bounds quantity names so report columns stay readable.
const maxNameLength = 64

// ValidateQuantityName validates a sampled-quantity or sampler-statistic name.
//
// Valid names:
//   - start with a letter or underscore
//   - contain letters, digits, underscores, dots
//   - optionally end with a bracketed component index, e.g. theta[3]
//   - are at most 64 characters
//
// Returns an error if the name is invalid.
//
// Example:
//
//	if err := validation.ValidateQuantityName(name); err != nil {
//	    return nil, fmt.Errorf("invalid quantity: %w", err)
//	}
func ValidateQuantityName(name string) error {
	if name == "" {
		return fmt.Errorf("quantity name cannot be empty")
	}

	if len(name) > maxNameLength {
		return fmt.Errorf("quantity name too long: %d chars (max %d)", len(name), maxNameLength)
	}

	if !quantityPattern.MatchString(name) {
		return fmt.Errorf("invalid quantity name: %q (letters, digits, underscore, dot, optional [index])", name)
	}

	return nil
}

// ValidateQuantityNames validates multiple names.
// Returns an error listing all invalid names if any fail validation.
func ValidateQuantityNames(names []string) error {
	var invalid []string
	for _, n := range names {
		if err := ValidateQuantityName(n); err != nil {
			invalid = append(invalid, n)
		}
	}

	if len(invalid) > 0 {
		return fmt.Errorf("invalid quantity names: %v", invalid)
	}
	return nil
}

// SanitizeQuantityName trims whitespace and validates a name.
// Returns the trimmed name if valid, or an error if invalid.
func SanitizeQuantityName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if err := ValidateQuantityName(trimmed); err != nil {
		return "", err
	}
	return trimmed, nil
}
