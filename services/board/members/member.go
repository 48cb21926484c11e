// Copyright (C) 2025 Quorumworks (jmcallister@quorumworks.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package members implements the evaluator pool: the seated board
// members, each pairing a persona-prompted LLM backend with the
// deterministic risk engine.
package members

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/quorumworks/boardroom/services/board/datatypes"
	"github.com/quorumworks/boardroom/services/llm"
	"github.com/quorumworks/boardroom/services/risk_engine"
)

// Evaluator is one board seat as seen by the query orchestrator. The
// concrete implementation is Member; tests substitute fakes.
type Evaluator interface {
	Name() string
	Evaluate(ctx context.Context, action string, actionContext map[string]any) (datatypes.BoardVote, error)
}

// Member is a seated board member. The risk engine drives the vote; the
// LLM backend supplies the deliberation narrative. A member whose backend
// call fails contributes nothing to the consultation.
type Member struct {
	name         string
	role         string
	model        string
	temperature  float32
	instructions string
	hasVeto      bool

	client llm.LLMClient
	risk   *risk_engine.Engine
}

// NewMember seats a member over an explicit LLM client. Used directly by
// tests; production seating goes through NewPanel.
func NewMember(cfg datatypes.MemberConfig, client llm.LLMClient, risk *risk_engine.Engine) *Member {
	return &Member{
		name:         cfg.Name,
		role:         cfg.Role,
		model:        cfg.Model,
		temperature:  cfg.Temperature,
		instructions: cfg.Instructions,
		hasVeto:      cfg.HasVeto,
		client:       client,
		risk:         risk,
	}
}

func (m *Member) Name() string { return m.name }

// Role returns the member's board role.
func (m *Member) Role() string { return m.role }

// Model returns the model name the member deliberates with.
func (m *Member) Model() string { return m.model }

// Temperature returns the member's configured sampling temperature.
func (m *Member) Temperature() float32 { return m.temperature }

// HasVeto reports whether the member holds veto power.
func (m *Member) HasVeto() bool { return m.hasVeto }

// Evaluate produces the member's vote on an action.
//
// The risk assessment is computed locally and never fails; the vote is
// synthesized from the assessment band. The LLM call only produces the
// narrative, but its failure fails the whole evaluation so a
// non-responsive member is excluded from aggregation rather than
// contributing a vote nobody deliberated.
func (m *Member) Evaluate(ctx context.Context, action string, actionContext map[string]any) (datatypes.BoardVote, error) {
	assessment := m.risk.Assess(m.name, m.hasVeto, action, actionContext)

	narrative, err := m.client.Generate(ctx, m.buildPrompt(action, actionContext, assessment), llm.GenerationParams{
		Temperature:  &m.temperature,
		SystemPrompt: m.systemPrompt(),
	})
	if err != nil {
		return datatypes.BoardVote{}, fmt.Errorf("member %s evaluation failed: %w", m.name, err)
	}

	return datatypes.BoardVote{
		MemberName: m.name,
		Role:       m.role,
		Vote:       risk_engine.SynthesizeVote(assessment.Level),
		Narrative:  strings.TrimSpace(narrative),
		Assessment: assessment,
	}, nil
}

// systemPrompt renders the member persona handed to the backend.
func (m *Member) systemPrompt() string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are %s, the %s on a governance board.\n", m.name, m.role)
	b.WriteString(m.instructions)
	b.WriteString("\nGive a concise assessment of the proposed action from your role's perspective.")
	return b.String()
}

// buildPrompt renders the deliberation request, including the risk
// assessment the vote will be based on so the narrative can speak to it.
func (m *Member) buildPrompt(action string, actionContext map[string]any, assessment datatypes.RiskAssessment) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Proposed action: %s\n", action)
	if len(actionContext) > 0 {
		if ctxJSON, err := json.Marshal(actionContext); err == nil {
			fmt.Fprintf(&b, "Context: %s\n", ctxJSON)
		}
	}
	fmt.Fprintf(&b, "Risk screening: level %s (score %.0f). %s\n",
		assessment.Level, assessment.Score, assessment.Recommendation)
	if len(assessment.Factors) > 0 {
		fmt.Fprintf(&b, "Matched risk factors: %s\n", strings.Join(assessment.Factors, ", "))
	}
	b.WriteString("State your position on this action.")
	return b.String()
}
