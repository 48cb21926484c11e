// Copyright (C) 2025 Quorumworks (jmcallister@quorumworks.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package datatypes: panel configuration for the board service.
package datatypes

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultMemberTimeout bounds each member's LLM call during a fan-out.
const DefaultMemberTimeout = 60 * time.Second

// DefaultQuorumThreshold is the approvals needed for consensus on the
// default eleven-seat panel.
const DefaultQuorumThreshold = 7

// MemberConfig describes one seated board member.
type MemberConfig struct {
	Name         string  `yaml:"name" json:"name"`
	Role         string  `yaml:"role" json:"role"`
	Model        string  `yaml:"model" json:"model"`
	Temperature  float32 `yaml:"temperature" json:"temperature"`
	Instructions string  `yaml:"instructions" json:"instructions"`
	HasVeto      bool    `yaml:"has_veto" json:"has_veto"`
}

// BoardConfig is the full panel configuration. Loaded from YAML when
// BOARDROOM_BOARD_CONFIG is set, otherwise DefaultBoardConfig applies.
type BoardConfig struct {
	Members         []MemberConfig `yaml:"members"`
	QuorumThreshold int            `yaml:"quorum_threshold"`
	MemberTimeout   time.Duration  `yaml:"member_timeout"`
}

// Validate checks structural invariants of the panel configuration.
func (c *BoardConfig) Validate() error {
	if len(c.Members) == 0 {
		return fmt.Errorf("board config: at least one member required")
	}
	if c.QuorumThreshold < 1 || c.QuorumThreshold > len(c.Members) {
		return fmt.Errorf("board config: quorum threshold %d out of range [1, %d]",
			c.QuorumThreshold, len(c.Members))
	}
	if c.MemberTimeout <= 0 {
		return fmt.Errorf("board config: member timeout must be positive, got %s",
			c.MemberTimeout)
	}
	seen := make(map[string]bool, len(c.Members))
	for i, m := range c.Members {
		if m.Name == "" {
			return fmt.Errorf("board config: member %d has empty name", i)
		}
		if seen[m.Name] {
			return fmt.Errorf("board config: duplicate member name %q", m.Name)
		}
		seen[m.Name] = true
		if m.Model == "" {
			return fmt.Errorf("board config: member %q has no model", m.Name)
		}
	}
	return nil
}

// VetoMembers returns the names of the members holding veto power, in
// panel order.
func (c *BoardConfig) VetoMembers() []string {
	var names []string
	for _, m := range c.Members {
		if m.HasVeto {
			names = append(names, m.Name)
		}
	}
	return names
}

// LoadBoardConfig reads a panel configuration from a YAML file and
// validates it. Fields left zero in the file fall back to defaults.
func LoadBoardConfig(path string) (*BoardConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read board config %s: %w", path, err)
	}
	var cfg BoardConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse board config %s: %w", path, err)
	}
	if cfg.QuorumThreshold == 0 {
		cfg.QuorumThreshold = DefaultQuorumThreshold
	}
	if cfg.MemberTimeout == 0 {
		cfg.MemberTimeout = DefaultMemberTimeout
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// DefaultBoardConfig returns the standard eleven-seat panel. The security
// and risk officers hold veto power.
func DefaultBoardConfig() *BoardConfig {
	return &BoardConfig{
		QuorumThreshold: DefaultQuorumThreshold,
		MemberTimeout:   DefaultMemberTimeout,
		Members: []MemberConfig{
			{
				Name:        "CEO_Visionary",
				Role:        "Chief Executive Officer",
				Model:       "gpt-4o",
				Temperature: 0.8,
				Instructions: "Lead strategic vision and ensure initiatives align with the principal's goals. " +
					"Balance innovation against operational security. Break ties when the board is split. " +
					"Focus on long-term value.",
			},
			{
				Name:        "CQO_Quality",
				Role:        "Chief Quality Officer",
				Model:       "claude-3-5-sonnet-20241022",
				Temperature: 0.3,
				Instructions: "Verify capabilities before any claim is made. Insist on rigorous testing and " +
					"validation. Never allow unverified functionality to be relied upon.",
			},
			{
				Name:        "CTO_Architect",
				Role:        "Chief Technology Officer",
				Model:       "gpt-4o",
				Temperature: 0.6,
				Instructions: "Own technical architecture decisions. Weigh scalability, security, and " +
					"maintainability. Coordinate with the security officer on anything with security implications.",
			},
			{
				Name:        "CSO_Sentinel",
				Role:        "Chief Security Officer",
				Model:       "claude-3-5-sonnet-20241022",
				Temperature: 0.2,
				HasVeto:     true,
				Instructions: "You hold veto power on all security matters. Apply zero-trust thinking and " +
					"defense in depth. Escalate any security concern immediately. Actions must be defensive, " +
					"never offensive.",
			},
			{
				Name:        "CDO_Alchemist",
				Role:        "Chief Data Officer",
				Model:       "gpt-4o",
				Temperature: 0.5,
				Instructions: "Protect data sovereignty. Enforce privacy compliance, encryption, and retention " +
					"policy. Watch data flows for unauthorized access.",
			},
			{
				Name:        "CRO_Guardian",
				Role:        "Chief Risk Officer",
				Model:       "claude-3-5-sonnet-20241022",
				Temperature: 0.2,
				HasVeto:     true,
				Instructions: "You hold veto power on high-risk actions. Assess every decision against the risk " +
					"tolerance doctrine and escalate anything CRITICAL or above immediately. Protect against " +
					"financial, legal, and reputational exposure.",
			},
			{
				Name:        "COO_Orchestrator",
				Role:        "Chief Operating Officer",
				Model:       "gpt-4o",
				Temperature: 0.5,
				Instructions: "Ensure smooth execution of board decisions. Coordinate across the panel and watch " +
					"operational performance and resource use.",
			},
			{
				Name:        "CINO_Pioneer",
				Role:        "Chief Innovation Officer",
				Model:       "gemini-1.5-pro",
				Temperature: 0.9,
				Instructions: "Explore emerging opportunities and technologies. Balance innovation with security, " +
					"deferring to the security and risk officers. Prove innovations in a sandbox first.",
			},
			{
				Name:        "CCDO_Diplomat",
				Role:        "Chief Customer & Digital Officer",
				Model:       "gpt-4o",
				Temperature: 0.7,
				Instructions: "Manage external stakeholder relationships. Protect privacy in all communications " +
					"and coordinate external interactions with the security officer.",
			},
			{
				Name:        "CPHO_Sage",
				Role:        "Chief Philosophy & Ethics Officer",
				Model:       "claude-3-5-sonnet-20241022",
				Temperature: 0.6,
				Instructions: "Ensure actions align with stated values and ethics. Weigh long-term consequences " +
					"and guide decision-making in ambiguous situations.",
			},
			{
				Name:        "CXO_Catalyst",
				Role:        "Chief Transformation Officer",
				Model:       "gpt-4o",
				Temperature: 0.7,
				Instructions: "Drive transformation initiatives. Coordinate cross-functional improvements and " +
					"balance disruption against stability.",
			},
		},
	}
}
