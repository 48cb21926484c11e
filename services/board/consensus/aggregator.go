// Copyright (C) 2025 Quorumworks (jmcallister@quorumworks.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package consensus reduces a set of board member votes into a single
// decision: overall risk reduction, veto short-circuit, doctrine
// auto-rules, and the quorum tally, in that precedence order.
package consensus

import (
	"fmt"
	"sort"

	"github.com/quorumworks/boardroom/services/board/datatypes"
	"github.com/quorumworks/boardroom/services/risk_engine"
)

// Result is the outcome of one aggregation. Given identical votes it is
// identical regardless of arrival order: votes are sorted by member name
// before any reduction runs.
type Result struct {
	Decision     datatypes.Decision
	Reason       string
	OverallRisk  datatypes.OverallRisk
	PolicyAction string
	Approvals    int
	Rejections   int
	Deferrals    int
	Votes        []datatypes.BoardVote
	// Path is the terminal branch that produced the decision:
	// VETOED, AUTO_RULED, or TALLIED.
	Path datatypes.ConsultationState
	// Vetoer names the member whose veto carried, when Path is VETOED.
	Vetoer string
	// HaltRequired is set when the doctrine auto-rule that fired calls
	// for a system halt. The aggregator only reports this; raising the
	// halt is the caller's responsibility.
	HaltRequired bool
}

// Aggregator reduces one consultation's votes. It is single-use: a fresh
// aggregator is created per request, and Aggregate enforces the forward
// state machine COLLECTING -> AGGREGATING -> terminal branch -> DECIDED.
type Aggregator struct {
	panelSize int
	quorum    int
	state     datatypes.ConsultationState
}

// NewAggregator creates a single-use aggregator for a panel of the given
// size and approval quorum.
func NewAggregator(panelSize, quorum int) *Aggregator {
	return &Aggregator{
		panelSize: panelSize,
		quorum:    quorum,
		state:     datatypes.StateCollecting,
	}
}

// State returns the aggregator's current pipeline state.
func (a *Aggregator) State() datatypes.ConsultationState {
	return a.state
}

// Aggregate reduces the collected votes to a final decision. Failed
// members are not represented in votes and therefore contribute to no
// reduction. Returns an error if the aggregator has already been used.
func (a *Aggregator) Aggregate(votes []datatypes.BoardVote) (*Result, error) {
	if a.state != datatypes.StateCollecting {
		return nil, fmt.Errorf("aggregator already consumed (state %s)", a.state)
	}
	a.state = datatypes.StateAggregating

	// Sort a copy so the reduction is independent of arrival order.
	sorted := make([]datatypes.BoardVote, len(votes))
	copy(sorted, votes)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].MemberName < sorted[j].MemberName
	})

	assessments := make([]datatypes.RiskAssessment, len(sorted))
	for i, v := range sorted {
		assessments[i] = v.Assessment
	}

	overall := EvaluateAssessments(assessments)
	res := &Result{
		OverallRisk:  overall,
		PolicyAction: risk_engine.PolicyFor(overall.Level),
		Votes:        sorted,
	}
	for _, v := range sorted {
		switch v.Vote {
		case datatypes.DecisionApproved:
			res.Approvals++
		case datatypes.DecisionRejected:
			res.Rejections++
		case datatypes.DecisionDeferred:
			res.Deferrals++
		}
	}

	a.determineConsensus(res)
	a.state = datatypes.StateDecided
	return res, nil
}

// EvaluateAssessments reduces per-member assessments to the board-level
// risk.
//
// An empty set falls back to {HIGH, 0} with the Indeterminate flag set.
// Any veto holder assessing HIGH or above short-circuits to that holder's
// level with score 100; when several veto holders qualify, the most
// severe level wins and ties break on member name ascending, so the
// outcome never depends on arrival order. Otherwise the arithmetic mean
// of the scores is banded on the standard scale.
func EvaluateAssessments(assessments []datatypes.RiskAssessment) datatypes.OverallRisk {
	if len(assessments) == 0 {
		return datatypes.OverallRisk{
			Level:         datatypes.RiskHigh,
			Score:         0,
			Indeterminate: true,
		}
	}

	var veto *datatypes.RiskAssessment
	for i := range assessments {
		a := &assessments[i]
		if !a.HasVeto || !a.Level.AtLeast(datatypes.RiskHigh) {
			continue
		}
		if veto == nil ||
			a.Level.Severity() > veto.Level.Severity() ||
			(a.Level.Severity() == veto.Level.Severity() && a.MemberName < veto.MemberName) {
			veto = a
		}
	}
	if veto != nil {
		return datatypes.OverallRisk{Level: veto.Level, Score: risk_engine.MaxRiskScore}
	}

	var sum float64
	for _, a := range assessments {
		sum += a.Score
	}
	avg := sum / float64(len(assessments))
	level, _ := risk_engine.BandFor(avg)
	return datatypes.OverallRisk{Level: level, Score: avg}
}

// determineConsensus fills in Decision, Reason, Path, and HaltRequired
// on a result whose tallies and overall risk are already computed.
func (a *Aggregator) determineConsensus(res *Result) {
	// 1. Veto: a rejected vote from a veto holder, with the board-level
	// risk at HIGH or above, overrides everything. Votes are sorted, and
	// the most severe qualifying assessment wins, so the named vetoer is
	// deterministic.
	if vetoer := selectVetoer(res.Votes, res.OverallRisk.Level); vetoer != "" {
		res.Decision = datatypes.DecisionRejected
		res.Reason = fmt.Sprintf("Vetoed by %s", vetoer)
		res.Path = datatypes.StateVetoed
		res.Vetoer = vetoer
		return
	}

	// 2. Doctrine auto-rules keyed on the policy action text.
	if risk_engine.AutoRejects(res.PolicyAction) {
		res.Decision = datatypes.DecisionRejected
		res.Reason = fmt.Sprintf("Risk level %s requires automatic rejection", res.OverallRisk.Level)
		res.Path = datatypes.StateAutoRuled
		return
	}
	if risk_engine.TriggersHalt(res.PolicyAction) {
		res.Decision = datatypes.DecisionRejected
		res.Reason = fmt.Sprintf("Risk level %s triggered system halt", res.OverallRisk.Level)
		res.Path = datatypes.StateAutoRuled
		res.HaltRequired = true
		return
	}

	// 3. Quorum tally.
	res.Path = datatypes.StateTallied
	switch {
	case res.Approvals >= a.quorum:
		res.Decision = datatypes.DecisionApproved
		res.Reason = fmt.Sprintf("Approved by %d/%d board members", res.Approvals, a.panelSize)
	case res.Rejections > a.panelSize-a.quorum:
		res.Decision = datatypes.DecisionRejected
		res.Reason = fmt.Sprintf("Rejected by %d/%d board members", res.Rejections, a.panelSize)
	default:
		res.Decision = datatypes.DecisionDeferred
		res.Reason = fmt.Sprintf("Insufficient consensus (Approved: %d, Rejected: %d)",
			res.Approvals, res.Rejections)
	}
}

// selectVetoer returns the name of the veto holder whose rejected vote
// carries the veto, or "" when no veto applies. Among qualifying voters
// the most severe assessment wins, ties broken by member name ascending.
func selectVetoer(votes []datatypes.BoardVote, overall datatypes.RiskLevel) string {
	if !overall.AtLeast(datatypes.RiskHigh) {
		return ""
	}
	var chosen *datatypes.BoardVote
	for i := range votes {
		v := &votes[i]
		if !v.Assessment.HasVeto || v.Vote != datatypes.DecisionRejected {
			continue
		}
		if chosen == nil ||
			v.Assessment.Level.Severity() > chosen.Assessment.Level.Severity() ||
			(v.Assessment.Level.Severity() == chosen.Assessment.Level.Severity() &&
				v.MemberName < chosen.MemberName) {
			chosen = v
		}
	}
	if chosen == nil {
		return ""
	}
	return chosen.MemberName
}
