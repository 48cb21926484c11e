// Copyright (C) 2025 Quorumworks (jmcallister@quorumworks.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
package risk_engine

import (
	"testing"

	"github.com/quorumworks/boardroom/services/board/datatypes"
)

func TestSynthesizeVote(t *testing.T) {
	tests := []struct {
		level datatypes.RiskLevel
		want  datatypes.Decision
	}{
		{datatypes.RiskLow, datatypes.DecisionApproved},
		{datatypes.RiskMedium, datatypes.DecisionApproved},
		{datatypes.RiskHigh, datatypes.DecisionDeferred},
		{datatypes.RiskCritical, datatypes.DecisionRejected},
		{datatypes.RiskExtreme, datatypes.DecisionRejected},
	}
	for _, tt := range tests {
		if got := SynthesizeVote(tt.level); got != tt.want {
			t.Errorf("SynthesizeVote(%s) = %s, want %s", tt.level, got, tt.want)
		}
	}
}
