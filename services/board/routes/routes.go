// Copyright (C) 2025 Quorumworks (jmcallister@quorumworks.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/quorumworks/boardroom/services/board/datatypes"
	"github.com/quorumworks/boardroom/services/board/handlers"
	"github.com/quorumworks/boardroom/services/board/members"
	"github.com/quorumworks/boardroom/services/board/middleware"
	"github.com/quorumworks/boardroom/services/board/override"
	"github.com/quorumworks/boardroom/services/board/services"
	"github.com/quorumworks/boardroom/services/board/storage/badgerstore"
)

// Dependencies carries everything the route tree needs.
type Dependencies struct {
	Service *services.BoardService
	Panel   *members.Panel
	Config  *datatypes.BoardConfig
	Store   *badgerstore.Store
	Control *override.Controller

	// OperatorToken guards the halt/resume routes. Empty disables the
	// guard (local single-user mode).
	OperatorToken string
}

func SetupRoutes(router *gin.Engine, deps Dependencies) {
	router.GET("/health", handlers.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API version 1 group
	v1 := router.Group("/v1")
	{
		board := v1.Group("/board")
		{
			board.POST("/query", handlers.HandleBoardQuery(deps.Service))
			board.GET("/members", handlers.HandleRoster(deps.Panel))
			board.POST("/members/:name/query",
				handlers.HandleMemberQuery(deps.Panel, deps.Control, deps.Config.MemberTimeout))
			board.GET("/doctrine", handlers.HandleDoctrine(deps.Config))
			board.GET("/decisions", handlers.HandleListDecisions(deps.Store))
			board.GET("/decisions/:id", handlers.HandleGetDecision(deps.Store))
		}

		system := v1.Group("/system")
		{
			system.GET("/status", handlers.HandleSystemStatus(deps.Control))
			system.GET("/control/ws", handlers.HandleControlWebSocket(deps.Control))

			// Halt and resume change system state and require the
			// operator token.
			guarded := system.Group("")
			guarded.Use(middleware.TokenAuth(deps.OperatorToken))
			{
				guarded.POST("/halt", handlers.HandleHalt(deps.Control))
				guarded.POST("/resume", handlers.HandleResume(deps.Control))
			}
		}
	}
}
