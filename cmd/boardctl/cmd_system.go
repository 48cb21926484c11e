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
	"strings"

	"github.com/spf13/cobra"
)

// =============================================================================
// COMMAND DEFINITIONS
// =============================================================================

var haltCmd = &cobra.Command{
	Use:   "halt [reason]",
	Short: "Engage the system halt (requires the operator token)",
	Long: `Engages the system halt. A halted board refuses all
consultations until resumed. The reason is recorded and shown in
status output.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runHaltCommand,
}

var resumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Lift the system halt (requires the operator token)",
	RunE:  runResumeCommand,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the board's halt state",
	RunE:  runStatusCommand,
}

// =============================================================================
// COMMAND IMPLEMENTATIONS
// =============================================================================

func runHaltCommand(cmd *cobra.Command, args []string) error {
	reason := strings.Join(args, " ")
	if err := client().Halt(context.Background(), reason); err != nil {
		return err
	}
	logger.Warn("system halt engaged", "reason", reason)
	fmt.Printf("System halted: %s\n", reason)
	return nil
}

func runResumeCommand(cmd *cobra.Command, args []string) error {
	if err := client().Resume(context.Background()); err != nil {
		return err
	}
	logger.Info("system halt lifted")
	fmt.Println("System resumed.")
	return nil
}

func runStatusCommand(cmd *cobra.Command, args []string) error {
	status, err := client().Status(context.Background())
	if err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(status)
	}

	if status.Halted {
		fmt.Printf("HALTED since %s: %s\n",
			status.ChangedAt.Format("2006-01-02 15:04:05 MST"), status.Reason)
	} else {
		fmt.Println("RUNNING")
	}
	return nil
}
