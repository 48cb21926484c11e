// Copyright (C) 2025 Quorumworks (jmcallister@quorumworks.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package risk_engine implements deterministic risk assessment for board
// consultations: an additive keyword factor table, a fixed banding scale,
// and the vote synthesis rule that turns a risk band into a member vote.
package risk_engine

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/quorumworks/boardroom/services/board/datatypes"
	"github.com/quorumworks/boardroom/services/risk_engine/enforcement"
	"gopkg.in/yaml.v3"
)

// MaxRiskScore caps the additive factor total.
const MaxRiskScore = 100.0

// Band thresholds. A score lands in the highest band whose floor it meets.
const (
	extremeFloor  = 80.0
	criticalFloor = 60.0
	highFloor     = 40.0
	mediumFloor   = 20.0
)

// Recommendations attached to assessments per band.
const (
	RecommendExtreme  = "Immediate rejection required"
	RecommendCritical = "Requires explicit approval"
	RecommendHigh     = "Needs security review"
	RecommendMedium   = "Enhanced monitoring required"
	RecommendLow      = "Safe to proceed with logging"
)

// Engine scores proposed actions against the embedded factor table.
// Assessment is a pure function of its inputs: the engine holds no
// mutable state after construction and is safe for concurrent use.
type Engine struct {
	factors []RiskFactor
}

// NewEngine initializes a risk engine from the factor table embedded in
// the binary via the enforcement package. Returns an error if the
// embedded YAML is malformed or contains invalid factor entries.
func NewEngine() (*Engine, error) {
	var file RiskFactorFile
	if err := yaml.Unmarshal(enforcement.RiskFactors, &file); err != nil {
		return nil, fmt.Errorf("failed to unmarshal the embedded factor table: %w", err)
	}
	if len(file.Factors) == 0 {
		return nil, fmt.Errorf("embedded factor table contains no factors")
	}
	return &Engine{factors: file.Factors}, nil
}

// Factors returns a copy of the loaded factor table, in table order.
func (e *Engine) Factors() []RiskFactor {
	out := make([]RiskFactor, len(e.factors))
	copy(out, e.factors)
	return out
}

// Assess scores an action on behalf of one board member.
//
// The action text and the serialized context are lowercased and every
// factor whose name appears as a substring contributes its weight. The
// total is capped at MaxRiskScore and banded. Assess never fails: context
// entries that cannot be serialized are skipped, and an empty action
// simply matches no factors.
func (e *Engine) Assess(memberName string, hasVeto bool, action string, context map[string]any) datatypes.RiskAssessment {
	haystack := strings.ToLower(action) + "\n" + serializeContext(context)

	var score float64
	var matched []string
	for _, f := range e.factors {
		if strings.Contains(haystack, f.Name) {
			score += f.Weight
			matched = append(matched, f.Name)
		}
	}
	if score > MaxRiskScore {
		score = MaxRiskScore
	}

	level, recommendation := BandFor(score)
	return datatypes.RiskAssessment{
		MemberName:     memberName,
		Level:          level,
		Score:          score,
		Factors:        matched,
		Recommendation: recommendation,
		HasVeto:        hasVeto,
	}
}

// BandFor maps a risk score onto its severity band and the band's
// standing recommendation.
func BandFor(score float64) (datatypes.RiskLevel, string) {
	switch {
	case score >= extremeFloor:
		return datatypes.RiskExtreme, RecommendExtreme
	case score >= criticalFloor:
		return datatypes.RiskCritical, RecommendCritical
	case score >= highFloor:
		return datatypes.RiskHigh, RecommendHigh
	case score >= mediumFloor:
		return datatypes.RiskMedium, RecommendMedium
	default:
		return datatypes.RiskLow, RecommendLow
	}
}

// serializeContext renders the context map as lowercased "key=value"
// lines in key order, so assessment is independent of map iteration
// order. Values that cannot be marshaled are skipped rather than
// failing the assessment.
func serializeContext(context map[string]any) string {
	if len(context) == 0 {
		return ""
	}
	keys := make([]string, 0, len(context))
	for k := range context {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		v, err := json.Marshal(context[k])
		if err != nil {
			slog.Debug("Skipping unserializable context entry", "key", k, "error", err)
			continue
		}
		b.WriteString(strings.ToLower(k))
		b.WriteByte('=')
		b.Write(v)
		b.WriteByte('\n')
	}
	return strings.ToLower(b.String())
}
