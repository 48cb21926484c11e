// Copyright (C) 2025 Quorumworks (jmcallister@quorumworks.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
package risk_engine

import (
	"strings"

	"github.com/quorumworks/boardroom/services/board/datatypes"
)

// Risk tolerance doctrine: the standing policy action for each band.
// The consensus aggregator matches on these texts, so they are part of
// the decision semantics, not just display strings.
var riskTolerance = map[datatypes.RiskLevel]string{
	datatypes.RiskLow:      "Proceed with standard logging",
	datatypes.RiskMedium:   "Require additional confirmation",
	datatypes.RiskHigh:     "Require human approval",
	datatypes.RiskCritical: "Automatic rejection",
	datatypes.RiskExtreme:  "System halt + immediate alert",
}

// doctrineOrder fixes the presentation order of the tolerance table.
var doctrineOrder = []datatypes.RiskLevel{
	datatypes.RiskLow,
	datatypes.RiskMedium,
	datatypes.RiskHigh,
	datatypes.RiskCritical,
	datatypes.RiskExtreme,
}

// PolicyFor returns the doctrine action for a risk level. Unknown levels
// fall back to the CRITICAL policy so a corrupted level can never relax
// enforcement.
func PolicyFor(level datatypes.RiskLevel) string {
	if action, ok := riskTolerance[level]; ok {
		return action
	}
	return riskTolerance[datatypes.RiskCritical]
}

// RiskTolerance returns the full doctrine table in band order.
func RiskTolerance() []datatypes.DoctrinePolicy {
	out := make([]datatypes.DoctrinePolicy, 0, len(doctrineOrder))
	for _, level := range doctrineOrder {
		out = append(out, datatypes.DoctrinePolicy{Level: level, Action: riskTolerance[level]})
	}
	return out
}

// AutoRejects reports whether a doctrine action mandates rejection
// regardless of the vote tally.
func AutoRejects(policyAction string) bool {
	return strings.Contains(strings.ToLower(policyAction), "rejection")
}

// TriggersHalt reports whether a doctrine action calls for a system halt.
// Halt actions also reject; the halt itself is raised by the caller, not
// by consensus evaluation.
func TriggersHalt(policyAction string) bool {
	return strings.Contains(strings.ToLower(policyAction), "halt")
}
