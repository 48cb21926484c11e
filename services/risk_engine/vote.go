// Copyright (C) 2025 Quorumworks (jmcallister@quorumworks.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
package risk_engine

import "github.com/quorumworks/boardroom/services/board/datatypes"

// SynthesizeVote derives a member's vote from its risk assessment band.
//
// CRITICAL and EXTREME assessments reject, HIGH defers to the board, and
// everything below approves. Total over all bands: every assessment yields
// exactly one vote.
func SynthesizeVote(level datatypes.RiskLevel) datatypes.Decision {
	switch level {
	case datatypes.RiskCritical, datatypes.RiskExtreme:
		return datatypes.DecisionRejected
	case datatypes.RiskHigh:
		return datatypes.DecisionDeferred
	default:
		return datatypes.DecisionApproved
	}
}
