// Copyright (C) 2025 Quorumworks (jmcallister@quorumworks.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/quorumworks/boardroom/pkg/validation"
	"github.com/quorumworks/boardroom/services/board/datatypes"
	"github.com/quorumworks/boardroom/services/board/members"
	"github.com/quorumworks/boardroom/services/board/storage/badgerstore"
	"github.com/quorumworks/boardroom/services/risk_engine"
)

// defaultDecisionListLimit bounds GET /v1/board/decisions when the
// caller gives no limit.
const defaultDecisionListLimit = 50

// HandleRoster lists the seated board members.
//
// GET /v1/board/members
func HandleRoster(panel *members.Panel) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"members": panel.Roster(),
			"count":   panel.Size(),
		})
	}
}

// HandleDoctrine exposes the governing consensus policy.
//
// GET /v1/board/doctrine
func HandleDoctrine(cfg *datatypes.BoardConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, datatypes.DoctrineResponse{
			RiskTolerance:   risk_engine.RiskTolerance(),
			QuorumThreshold: cfg.QuorumThreshold,
			PanelSize:       len(cfg.Members),
			VetoMembers:     cfg.VetoMembers(),
		})
	}
}

// HandleListDecisions lists recorded decisions, newest first.
//
// GET /v1/board/decisions?limit=N
func HandleListDecisions(store *badgerstore.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := defaultDecisionListLimit
		if raw := c.Query("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed < 1 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
				return
			}
			limit = parsed
		}

		decisions, err := store.ListDecisions(c.Request.Context(), limit)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list decisions"})
			return
		}
		c.JSON(http.StatusOK, datatypes.DecisionListResponse{
			Decisions: decisions,
			Count:     len(decisions),
		})
	}
}

// HandleGetDecision loads one recorded decision by ID.
//
// GET /v1/board/decisions/:id
func HandleGetDecision(store *badgerstore.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		if err := validation.ValidateDecisionID(id); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		decision, err := store.GetDecision(c.Request.Context(), id)
		if err != nil {
			if errors.Is(err, badgerstore.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "decision not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load decision"})
			return
		}
		c.JSON(http.StatusOK, decision)
	}
}
