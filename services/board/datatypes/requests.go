// Copyright (C) 2025 Quorumworks (jmcallister@quorumworks.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package datatypes: request and response payloads for the board HTTP API.
package datatypes

import "time"

// MaxActionBytes bounds the action description accepted by the query
// endpoints. Oversized actions are rejected at binding time; the max in
// QueryRequest's binding tag must stay in sync with this value.
const MaxActionBytes = 16 * 1024

// QueryRequest is the payload for POST /v1/board/query and for the
// single-member variant. Context carries arbitrary structured detail about
// the action; entries that cannot be serialized are skipped during risk
// assessment rather than failing the request. RequireConsensus is accepted
// for client compatibility; the full board is always convened on the
// board-wide endpoint.
type QueryRequest struct {
	Action           string         `json:"action" binding:"required,min=1,max=16384"`
	Context          map[string]any `json:"context,omitempty"`
	RequireConsensus bool           `json:"require_consensus"`
}

// QueryResponse wraps the board decision for the full-board query endpoint.
// RecordError is populated when the decision was reached but could not be
// persisted; the decision itself is still authoritative.
type QueryResponse struct {
	Decision    *BoardDecision `json:"decision"`
	RecordError string         `json:"record_error,omitempty"`
}

// MemberQueryResponse is the result of consulting a single board member.
type MemberQueryResponse struct {
	MemberName string         `json:"member_name"`
	Role       string         `json:"role"`
	Vote       Decision       `json:"vote"`
	Narrative  string         `json:"narrative,omitempty"`
	Assessment RiskAssessment `json:"assessment"`
}

// RosterEntry describes one seated board member.
type RosterEntry struct {
	Name    string  `json:"name"`
	Role    string  `json:"role"`
	Model   string  `json:"model"`
	HasVeto bool    `json:"has_veto"`
	Temp    float32 `json:"temperature"`
}

// DoctrinePolicy is one row of the risk tolerance table.
type DoctrinePolicy struct {
	Level  RiskLevel `json:"level"`
	Action string    `json:"action"`
}

// DoctrineResponse describes the governing consensus policy: the risk
// tolerance table plus the quorum and veto configuration in force.
type DoctrineResponse struct {
	RiskTolerance   []DoctrinePolicy `json:"risk_tolerance"`
	QuorumThreshold int              `json:"quorum_threshold"`
	PanelSize       int              `json:"panel_size"`
	VetoMembers     []string         `json:"veto_members"`
}

// SystemStatusResponse reports the halt state of the board.
type SystemStatusResponse struct {
	Halted    bool      `json:"halted"`
	Reason    string    `json:"reason,omitempty"`
	ChangedAt time.Time `json:"changed_at"`
}

// HaltRequest is the payload for POST /v1/system/halt.
type HaltRequest struct {
	Reason string `json:"reason" binding:"required,min=1"`
}

// ControlEvent is broadcast on the system control websocket whenever the
// halt state changes.
type ControlEvent struct {
	Event     string    `json:"event"` // "HALT" or "RESUME"
	Reason    string    `json:"reason,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// DecisionListResponse is the payload for GET /v1/board/decisions.
type DecisionListResponse struct {
	Decisions []BoardDecision `json:"decisions"`
	Count     int             `json:"count"`
}
