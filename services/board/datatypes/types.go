// Copyright (C) 2025 Quorumworks (jmcallister@quorumworks.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package datatypes provides data structures shared across the board service.
//
// This file contains the core consensus types: risk levels, decisions,
// per-member assessments and votes, and the final board decision record.
// Request/response payloads live in requests.go, panel configuration in
// config.go.
package datatypes

import (
	"fmt"
	"time"
)

// =============================================================================
// Risk Levels
// =============================================================================

// RiskLevel is the severity band assigned to an action by a risk assessment.
type RiskLevel string

const (
	RiskLow      RiskLevel = "LOW"
	RiskMedium   RiskLevel = "MEDIUM"
	RiskHigh     RiskLevel = "HIGH"
	RiskCritical RiskLevel = "CRITICAL"
	RiskExtreme  RiskLevel = "EXTREME"
)

// Severity returns the ordering rank of a risk level. Higher means more
// severe. Unknown levels rank below LOW so a corrupted value can never
// win a severity comparison.
func (r RiskLevel) Severity() int {
	switch r {
	case RiskLow:
		return 1
	case RiskMedium:
		return 2
	case RiskHigh:
		return 3
	case RiskCritical:
		return 4
	case RiskExtreme:
		return 5
	default:
		return 0
	}
}

// AtLeast reports whether r is as severe as, or more severe than, other.
func (r RiskLevel) AtLeast(other RiskLevel) bool {
	return r.Severity() >= other.Severity()
}

// ParseRiskLevel converts a wire string into a RiskLevel.
func ParseRiskLevel(s string) (RiskLevel, error) {
	switch RiskLevel(s) {
	case RiskLow, RiskMedium, RiskHigh, RiskCritical, RiskExtreme:
		return RiskLevel(s), nil
	default:
		return "", fmt.Errorf("unknown risk level %q", s)
	}
}

// =============================================================================
// Decisions
// =============================================================================

// Decision is a board member's vote, and also the final consensus outcome.
type Decision string

const (
	DecisionApproved Decision = "APPROVED"
	DecisionRejected Decision = "REJECTED"
	DecisionDeferred Decision = "DEFERRED"
)

// ConsultationState tracks a consultation through the aggregation pipeline.
// Transitions are strictly forward:
//
//	COLLECTING -> AGGREGATING -> {VETOED | AUTO_RULED | TALLIED} -> DECIDED
type ConsultationState string

const (
	StateCollecting  ConsultationState = "COLLECTING"
	StateAggregating ConsultationState = "AGGREGATING"
	StateVetoed      ConsultationState = "VETOED"
	StateAutoRuled   ConsultationState = "AUTO_RULED"
	StateTallied     ConsultationState = "TALLIED"
	StateDecided     ConsultationState = "DECIDED"
)

// =============================================================================
// Per-Member Results
// =============================================================================

// RiskAssessment is a single member's risk evaluation of an action.
// Score is in [0, 100]; Level is the band the score (or a veto escalation)
// falls into. Factors lists the matched factor names that contributed to
// the score, in table order.
type RiskAssessment struct {
	MemberName     string    `json:"member_name"`
	Level          RiskLevel `json:"level"`
	Score          float64   `json:"score"`
	Factors        []string  `json:"factors,omitempty"`
	Recommendation string    `json:"recommendation"`
	HasVeto        bool      `json:"has_veto"`
}

// BoardVote is one member's vote together with the assessment and narrative
// that produced it.
type BoardVote struct {
	MemberName string         `json:"member_name"`
	Role       string         `json:"role"`
	Vote       Decision       `json:"vote"`
	Narrative  string         `json:"narrative,omitempty"`
	Assessment RiskAssessment `json:"assessment"`
}

// MemberFailure records a member whose evaluation could not be obtained.
// Failed members are observational only: they contribute to no tally and
// no risk average.
type MemberFailure struct {
	MemberName string `json:"member_name"`
	Reason     string `json:"reason"`
}

// Failure reasons recorded on MemberFailure entries.
const (
	FailureTimeout = "timeout"
	FailureError   = "error"
)

// =============================================================================
// Aggregates
// =============================================================================

// OverallRisk is the board-level risk reduction over all successful
// assessments. Indeterminate is set when no member responded and the
// conservative fallback was applied.
type OverallRisk struct {
	Level         RiskLevel `json:"level"`
	Score         float64   `json:"score"`
	Indeterminate bool      `json:"indeterminate,omitempty"`
}

// BoardDecision is the durable record of one completed consultation.
//
// Everything below CreatedAt is a pure function of the member results, so
// two consultations over identical inputs produce identical records apart
// from ID and CreatedAt.
type BoardDecision struct {
	ID           string            `json:"id"`
	Action       string            `json:"action"`
	Decision     Decision          `json:"decision"`
	Reason       string            `json:"reason"`
	OverallRisk  OverallRisk       `json:"overall_risk"`
	PolicyAction string            `json:"policy_action"`
	VetoedBy     string            `json:"vetoed_by,omitempty"`
	Approvals    int               `json:"approvals"`
	Rejections   int               `json:"rejections"`
	Deferrals    int               `json:"deferrals"`
	Votes        []BoardVote       `json:"votes"`
	Failures     []MemberFailure   `json:"failures,omitempty"`
	State        ConsultationState `json:"state"`
	CreatedAt    time.Time         `json:"created_at"`
}
