// Copyright (C) 2025 Quorumworks (jmcallister@quorumworks.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var decisionsLimit int

// =============================================================================
// COMMAND DEFINITIONS
// =============================================================================

var membersCmd = &cobra.Command{
	Use:   "members",
	Short: "List the seated board members",
	RunE:  runMembersCommand,
}

var doctrineCmd = &cobra.Command{
	Use:   "doctrine",
	Short: "Show the governing consensus doctrine",
	Long: `Shows the risk tolerance table, the approval quorum, and which
members hold veto power.`,
	RunE: runDoctrineCommand,
}

var decisionsCmd = &cobra.Command{
	Use:   "decisions [id]",
	Short: "List recorded decisions, or show one by ID",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runDecisionsCommand,
}

func init() {
	decisionsCmd.Flags().IntVarP(&decisionsLimit, "limit", "n", 20,
		"Maximum number of decisions to list")
}

// =============================================================================
// COMMAND IMPLEMENTATIONS
// =============================================================================

func runMembersCommand(cmd *cobra.Command, args []string) error {
	members, err := client().Roster(context.Background())
	if err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(members)
	}

	fmt.Printf("%-18s %-28s %-30s %s\n", "NAME", "ROLE", "MODEL", "VETO")
	for _, m := range members {
		veto := ""
		if m.HasVeto {
			veto = "yes"
		}
		fmt.Printf("%-18s %-28s %-30s %s\n", m.Name, m.Role, m.Model, veto)
	}
	return nil
}

func runDoctrineCommand(cmd *cobra.Command, args []string) error {
	doctrine, err := client().Doctrine(context.Background())
	if err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(doctrine)
	}

	fmt.Println("Risk tolerance:")
	for _, p := range doctrine.RiskTolerance {
		fmt.Printf("  %-10s %s\n", p.Level, p.Action)
	}
	fmt.Printf("Quorum:       %d of %d members\n", doctrine.QuorumThreshold, doctrine.PanelSize)
	fmt.Printf("Veto holders: %v\n", doctrine.VetoMembers)
	return nil
}

func runDecisionsCommand(cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		decision, err := client().Decision(context.Background(), args[0])
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(decision)
		}
		printDecision(decision)
		return nil
	}

	decisions, err := client().Decisions(context.Background(), decisionsLimit)
	if err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(decisions)
	}

	fmt.Printf("%-36s %-20s %-9s %-9s %s\n", "ID", "CREATED", "DECISION", "RISK", "ACTION")
	for _, d := range decisions {
		action := d.Action
		if len(action) > 48 {
			action = action[:45] + "..."
		}
		fmt.Printf("%-36s %-20s %-9s %-9s %s\n",
			d.ID, d.CreatedAt.Format("2006-01-02 15:04:05"), d.Decision, d.OverallRisk.Level, action)
	}
	return nil
}
