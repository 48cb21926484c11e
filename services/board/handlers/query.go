// Copyright (C) 2025 Quorumworks (jmcallister@quorumworks.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package handlers contains the gin handlers for the board HTTP API.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/quorumworks/boardroom/pkg/validation"
	"github.com/quorumworks/boardroom/services/board/datatypes"
	"github.com/quorumworks/boardroom/services/board/members"
	"github.com/quorumworks/boardroom/services/board/override"
	"github.com/quorumworks/boardroom/services/board/services"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("boardroom.board.handlers")

// HandleBoardQuery runs a full-board consultation.
//
// POST /v1/board/query
//
// Returns 503 when the system is halted, 400 on a malformed request.
// A recorder failure does not fail the request: the decision is returned
// with record_error set.
func HandleBoardQuery(svc *services.BoardService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracer.Start(c.Request.Context(), "HandleBoardQuery")
		defer span.End()

		var req datatypes.QueryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
			return
		}
		span.SetAttributes(attribute.Int("board.action_bytes", len(req.Action)))

		outcome, err := svc.Consult(ctx, req.Action, req.Context)
		if err != nil {
			if errors.Is(err, services.ErrHalted) {
				c.JSON(http.StatusServiceUnavailable, gin.H{"error": "system is halted"})
				return
			}
			span.RecordError(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "consultation failed"})
			return
		}

		resp := datatypes.QueryResponse{Decision: outcome.Decision}
		if outcome.RecordErr != nil {
			resp.RecordError = outcome.RecordErr.Error()
		}
		c.JSON(http.StatusOK, resp)
	}
}

// HandleMemberQuery consults a single board member.
//
// POST /v1/board/members/:name/query
//
// The member's evaluation is bounded by the same per-member timeout the
// fan-out uses. Returns 404 for an unseated member and 503 when halted.
func HandleMemberQuery(panel *members.Panel, control *override.Controller, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracer.Start(c.Request.Context(), "HandleMemberQuery")
		defer span.End()

		name := c.Param("name")
		if err := validation.ValidateMemberName(name); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		span.SetAttributes(attribute.String("board.member", name))

		if control.Halted() {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "system is halted"})
			return
		}

		member := panel.Lookup(name)
		if member == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown board member: " + name})
			return
		}

		var req datatypes.QueryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
			return
		}

		callCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		vote, err := member.Evaluate(callCtx, req.Action, req.Context)
		if err != nil {
			span.RecordError(err)
			c.JSON(http.StatusBadGateway, gin.H{"error": "member evaluation failed: " + err.Error()})
			return
		}

		c.JSON(http.StatusOK, datatypes.MemberQueryResponse{
			MemberName: vote.MemberName,
			Role:       vote.Role,
			Vote:       vote.Vote,
			Narrative:  vote.Narrative,
			Assessment: vote.Assessment,
		})
	}
}
