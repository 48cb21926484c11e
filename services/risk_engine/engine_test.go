// Copyright (C) 2025 Quorumworks (jmcallister@quorumworks.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
package risk_engine

import (
	"math"
	"reflect"
	"testing"

	"github.com/quorumworks/boardroom/services/board/datatypes"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	engine, err := NewEngine()
	if err != nil {
		t.Fatalf("NewEngine returned error: %v", err)
	}
	return engine
}

func TestNewEngineLoadsFactorTable(t *testing.T) {
	engine := newTestEngine(t)
	factors := engine.Factors()
	if len(factors) != 20 {
		t.Fatalf("loaded %d factors, want 20", len(factors))
	}
	weights := make(map[string]float64, len(factors))
	for _, f := range factors {
		weights[f.Name] = f.Weight
	}
	// Spot-check the extremes of the table.
	if weights["external_api"] != 20 {
		t.Errorf("external_api weight = %v, want 20", weights["external_api"])
	}
	if weights["children_data"] != 100 {
		t.Errorf("children_data weight = %v, want 100", weights["children_data"])
	}
}

func TestAssessNoFactors(t *testing.T) {
	engine := newTestEngine(t)
	got := engine.Assess("CEO_Visionary", false, "read the daily summary", nil)

	if got.Score != 0 {
		t.Errorf("score = %v, want 0", got.Score)
	}
	if got.Level != datatypes.RiskLow {
		t.Errorf("level = %s, want LOW", got.Level)
	}
	if got.Recommendation != RecommendLow {
		t.Errorf("recommendation = %q, want %q", got.Recommendation, RecommendLow)
	}
	if len(got.Factors) != 0 {
		t.Errorf("factors = %v, want none", got.Factors)
	}
}

func TestAssessFactorMatching(t *testing.T) {
	engine := newTestEngine(t)

	tests := []struct {
		name      string
		action    string
		context   map[string]any
		wantScore float64
		wantLevel datatypes.RiskLevel
	}{
		{
			name:      "single factor in action",
			action:    "call the external_api for quotes",
			wantScore: 20,
			wantLevel: datatypes.RiskMedium,
		},
		{
			name:      "case insensitive",
			action:    "Call the EXTERNAL_API for quotes",
			wantScore: 20,
			wantLevel: datatypes.RiskMedium,
		},
		{
			name:      "factor in context value",
			action:    "run nightly job",
			context:   map[string]any{"target": "unencrypted volume"},
			wantScore: 50,
			wantLevel: datatypes.RiskHigh,
		},
		{
			name:      "factor in context key",
			action:    "run nightly job",
			context:   map[string]any{"payment_provider": "acme"},
			wantScore: 40,
			wantLevel: datatypes.RiskHigh,
		},
		{
			name:      "additive factors",
			action:    "data_export to third_party",
			wantScore: 70, // 30 + 40
			wantLevel: datatypes.RiskCritical,
		},
		{
			name:      "capped at 100",
			action:    "export family_data including children_data",
			wantScore: 100, // 80 + 100 capped
			wantLevel: datatypes.RiskExtreme,
		},
		{
			name:      "space-separated words do not match underscore factors",
			action:    "call the external api",
			wantScore: 0,
			wantLevel: datatypes.RiskLow,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := engine.Assess("CTO_Architect", false, tt.action, tt.context)
			if got.Score != tt.wantScore {
				t.Errorf("score = %v, want %v (factors %v)", got.Score, tt.wantScore, got.Factors)
			}
			if got.Level != tt.wantLevel {
				t.Errorf("level = %s, want %s", got.Level, tt.wantLevel)
			}
		})
	}
}

func TestAssessSkipsUnserializableContext(t *testing.T) {
	engine := newTestEngine(t)
	context := map[string]any{
		"rate":   math.Inf(1), // json.Marshal rejects this
		"detail": "transaction batch",
	}
	got := engine.Assess("CRO_Guardian", true, "nightly settlement", context)

	if got.Score != 30 {
		t.Errorf("score = %v, want 30 (transaction only)", got.Score)
	}
	if !got.HasVeto {
		t.Error("veto flag should carry through from the member")
	}
}

func TestAssessDeterministic(t *testing.T) {
	engine := newTestEngine(t)
	context := map[string]any{"a": "payment", "b": "investment", "c": 3}

	first := engine.Assess("CSO_Sentinel", true, "approve vendor payment", context)
	for i := 0; i < 10; i++ {
		again := engine.Assess("CSO_Sentinel", true, "approve vendor payment", context)
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("assessment not deterministic: %+v vs %+v", first, again)
		}
	}
}

func TestBandFor(t *testing.T) {
	tests := []struct {
		score     float64
		wantLevel datatypes.RiskLevel
		wantRec   string
	}{
		{0, datatypes.RiskLow, RecommendLow},
		{19.9, datatypes.RiskLow, RecommendLow},
		{20, datatypes.RiskMedium, RecommendMedium},
		{39.9, datatypes.RiskMedium, RecommendMedium},
		{40, datatypes.RiskHigh, RecommendHigh},
		{59.9, datatypes.RiskHigh, RecommendHigh},
		{60, datatypes.RiskCritical, RecommendCritical},
		{79.9, datatypes.RiskCritical, RecommendCritical},
		{80, datatypes.RiskExtreme, RecommendExtreme},
		{100, datatypes.RiskExtreme, RecommendExtreme},
	}
	for _, tt := range tests {
		level, rec := BandFor(tt.score)
		if level != tt.wantLevel {
			t.Errorf("BandFor(%v) level = %s, want %s", tt.score, level, tt.wantLevel)
		}
		if rec != tt.wantRec {
			t.Errorf("BandFor(%v) recommendation = %q, want %q", tt.score, rec, tt.wantRec)
		}
	}
}
