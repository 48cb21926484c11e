// Copyright (C) 2025 Quorumworks (jmcallister@quorumworks.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package validation provides input validation utilities for
// security-critical operations.
//
// This package contains validators for user-provided inputs that end up
// in storage keys, log lines, or lookups. Using these validators keeps
// injection-shaped input out of those paths.
package validation

import (
	"fmt"
	"regexp"
)

// memberNamePattern matches valid board member names as they appear in
// URL paths, e.g. CSO_Sentinel. Letters, digits, underscores and
// hyphens, starting with a letter, at most 64 characters.
var memberNamePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_\-]{0,63}$`)

// ValidateMemberName validates a board member name taken from a request
// path before it is used for panel lookup.
//
// Example:
//
//	if err := validation.ValidateMemberName(name); err != nil {
//	    c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
//	    return
//	}
func ValidateMemberName(name string) error {
	if name == "" {
		return fmt.Errorf("member name cannot be empty")
	}
	if !memberNamePattern.MatchString(name) {
		return fmt.Errorf("invalid member name format: %q", name)
	}
	return nil
}

// ValidateDecisionID validates a decision ID taken from a request path.
// Decision IDs are UUIDs; anything longer or containing separators is
// rejected before it reaches the store.
var decisionIDPattern = regexp.MustCompile(`^[A-Za-z0-9\-]{1,64}$`)

func ValidateDecisionID(id string) error {
	if id == "" {
		return fmt.Errorf("decision ID cannot be empty")
	}
	if !decisionIDPattern.MatchString(id) {
		return fmt.Errorf("invalid decision ID format: %q", id)
	}
	return nil
}
