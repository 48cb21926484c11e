// Copyright (C) 2025 Quorumworks (jmcallister@quorumworks.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"log"
	"os"

	"github.com/quorumworks/boardroom/pkg/logging"
	"github.com/spf13/cobra"
)

// =============================================================================
// GLOBAL FLAGS
// =============================================================================

var (
	serverURL  string // Board service base URL
	apiToken   string // Operator token for halt/resume
	jsonOutput bool   // Print raw JSON instead of formatted text
)

var logger *logging.Logger

var rootCmd = &cobra.Command{
	Use:   "boardctl",
	Short: "A CLI to consult and operate the boardroom consensus service",
	Long: `boardctl submits proposed actions to the board of advisors,
inspects past decisions and the governing doctrine, and operates the
system halt switch.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server",
		envOr("BOARDROOM_SERVER_URL", "http://localhost:12220"),
		"Base URL of the board service")
	rootCmd.PersistentFlags().StringVar(&apiToken, "token",
		os.Getenv("BOARDROOM_API_TOKEN"),
		"Operator token for guarded commands (halt/resume)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false,
		"Output raw JSON for scripting")

	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(membersCmd)
	rootCmd.AddCommand(doctrineCmd)
	rootCmd.AddCommand(decisionsCmd)
	rootCmd.AddCommand(haltCmd)
	rootCmd.AddCommand(resumeCmd)
	rootCmd.AddCommand(statusCmd)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func client() *apiClient {
	return newAPIClient(serverURL, apiToken)
}

func main() {
	logger = logging.New(logging.Config{
		Level:   logging.LevelWarn,
		LogDir:  "~/.boardroom/logs",
		Service: "boardctl",
		Quiet:   true,
	})
	defer logger.Close()

	if err := rootCmd.Execute(); err != nil {
		logger.Error("command failed", "error", err)
		log.Fatalf("Error executing command: %v", err)
	}
}
