// Copyright (C) 2025 Quorumworks (jmcallister@quorumworks.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
package members

import (
	"fmt"
	"log/slog"

	"github.com/quorumworks/boardroom/services/board/datatypes"
	"github.com/quorumworks/boardroom/services/llm"
	"github.com/quorumworks/boardroom/services/risk_engine"
)

// Panel is the seated board: members in configuration order plus a
// by-name index.
type Panel struct {
	members []*Member
	byName  map[string]*Member
}

// NewPanel seats every configured member, constructing the LLM backend
// each member's model routes to. Seating fails if any backend cannot be
// constructed; a board missing seats must not silently convene.
func NewPanel(cfg *datatypes.BoardConfig, risk *risk_engine.Engine) (*Panel, error) {
	p := &Panel{byName: make(map[string]*Member, len(cfg.Members))}
	for _, mc := range cfg.Members {
		client, err := llm.NewClientForModel(mc.Model)
		if err != nil {
			return nil, fmt.Errorf("failed to seat member %s: %w", mc.Name, err)
		}
		m := NewMember(mc, client, risk)
		p.members = append(p.members, m)
		p.byName[mc.Name] = m
		slog.Info("Seated board member", "name", mc.Name, "role", mc.Role,
			"model", mc.Model, "backend", llm.BackendForModel(mc.Model), "veto", mc.HasVeto)
	}
	return p, nil
}

// NewPanelFromMembers seats pre-built members. Used by tests.
func NewPanelFromMembers(members []*Member) *Panel {
	p := &Panel{byName: make(map[string]*Member, len(members))}
	for _, m := range members {
		p.members = append(p.members, m)
		p.byName[m.Name()] = m
	}
	return p
}

// Members returns the seated members in panel order.
func (p *Panel) Members() []*Member {
	return p.members
}

// Evaluators returns the panel as the interface slice the orchestrator
// fans out over.
func (p *Panel) Evaluators() []Evaluator {
	out := make([]Evaluator, len(p.members))
	for i, m := range p.members {
		out[i] = m
	}
	return out
}

// Lookup returns the member with the given name, or nil.
func (p *Panel) Lookup(name string) *Member {
	return p.byName[name]
}

// Size returns the number of seated members.
func (p *Panel) Size() int {
	return len(p.members)
}

// Roster renders the panel for the roster endpoint.
func (p *Panel) Roster() []datatypes.RosterEntry {
	out := make([]datatypes.RosterEntry, 0, len(p.members))
	for _, m := range p.members {
		out = append(out, datatypes.RosterEntry{
			Name:    m.Name(),
			Role:    m.Role(),
			Model:   m.Model(),
			HasVeto: m.HasVeto(),
			Temp:    m.Temperature(),
		})
	}
	return out
}
