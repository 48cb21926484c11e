// Copyright (C) 2025 Quorumworks (jmcallister@quorumworks.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/quorumworks/boardroom/services/board/datatypes"
	"github.com/spf13/cobra"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	queryContextPairs []string // key=value context entries
	queryMember       string   // consult a single member instead of the board
)

// =============================================================================
// COMMAND DEFINITION
// =============================================================================

var queryCmd = &cobra.Command{
	Use:   "query [action]",
	Short: "Submit a proposed action to the board for a decision",
	Long: `Submits a proposed action to the full board of advisors. Every
member assesses the action's risk and votes; the service reduces the
votes to APPROVED, REJECTED, or DEFERRED under the governing doctrine.

Examples:
  boardctl query "rotate the signing keys"
  boardctl query "export the user table" -c dataset=personal_info
  boardctl query "upgrade the scheduler" --member CTO_Architect`,
	Args: cobra.MinimumNArgs(1),
	RunE: runQueryCommand,
}

func init() {
	queryCmd.Flags().StringArrayVarP(&queryContextPairs, "context", "c", nil,
		"Context entry as key=value (repeatable)")
	queryCmd.Flags().StringVar(&queryMember, "member", "",
		"Consult a single board member instead of the full board")
}

// =============================================================================
// COMMAND IMPLEMENTATION
// =============================================================================

func runQueryCommand(cmd *cobra.Command, args []string) error {
	action := strings.Join(args, " ")
	actionContext, err := parseContextPairs(queryContextPairs)
	if err != nil {
		return err
	}
	req := datatypes.QueryRequest{Action: action, Context: actionContext}

	if queryMember != "" {
		resp, err := client().MemberQuery(context.Background(), queryMember, req)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(resp)
		}
		printMemberVote(resp)
		return nil
	}

	resp, err := client().Query(context.Background(), req)
	if err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(resp)
	}
	printDecision(resp.Decision)
	if resp.RecordError != "" {
		fmt.Fprintf(os.Stderr, "warning: decision was not persisted: %s\n", resp.RecordError)
	}
	return nil
}

// parseContextPairs turns repeated key=value flags into the context map.
func parseContextPairs(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, value, found := strings.Cut(pair, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("invalid context entry %q, expected key=value", pair)
		}
		out[key] = value
	}
	return out, nil
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func printDecision(d *datatypes.BoardDecision) {
	fmt.Println("==================================================")
	fmt.Printf("Decision:   %s\n", d.Decision)
	fmt.Printf("Reason:     %s\n", d.Reason)
	fmt.Printf("Risk:       %s (score %.1f)\n", d.OverallRisk.Level, d.OverallRisk.Score)
	fmt.Printf("Policy:     %s\n", d.PolicyAction)
	fmt.Printf("Tally:      %d approved / %d rejected / %d deferred\n",
		d.Approvals, d.Rejections, d.Deferrals)
	fmt.Printf("ID:         %s\n", d.ID)
	fmt.Println("==================================================")
	for _, v := range d.Votes {
		fmt.Printf("  [%s] %s (%s)", v.Vote, v.MemberName, v.Assessment.Level)
		if len(v.Assessment.Factors) > 0 {
			fmt.Printf("  factors: %s", strings.Join(v.Assessment.Factors, ", "))
		}
		fmt.Println()
	}
	for _, f := range d.Failures {
		fmt.Printf("  [NO VOTE] %s (%s)\n", f.MemberName, f.Reason)
	}
}

func printMemberVote(resp *datatypes.MemberQueryResponse) {
	fmt.Println("==================================================")
	fmt.Printf("Member:     %s (%s)\n", resp.MemberName, resp.Role)
	fmt.Printf("Vote:       %s\n", resp.Vote)
	fmt.Printf("Risk:       %s (score %.1f)\n", resp.Assessment.Level, resp.Assessment.Score)
	if len(resp.Assessment.Factors) > 0 {
		fmt.Printf("Factors:    %s\n", strings.Join(resp.Assessment.Factors, ", "))
	}
	fmt.Println("==================================================")
	if resp.Narrative != "" {
		fmt.Println(resp.Narrative)
	}
}
