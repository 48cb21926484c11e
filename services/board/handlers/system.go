// Copyright (C) 2025 Quorumworks (jmcallister@quorumworks.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/quorumworks/boardroom/services/board/datatypes"
	"github.com/quorumworks/boardroom/services/board/override"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  4 * 1024,
	WriteBufferSize: 4 * 1024,
}

// HandleHalt engages the system halt.
//
// POST /v1/system/halt
func HandleHalt(control *override.Controller) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req datatypes.HaltRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
			return
		}

		changed := control.Halt(req.Reason)
		c.JSON(http.StatusOK, gin.H{
			"halted":  true,
			"changed": changed,
		})
	}
}

// HandleResume lifts the system halt.
//
// POST /v1/system/resume
func HandleResume(control *override.Controller) gin.HandlerFunc {
	return func(c *gin.Context) {
		changed := control.Resume()
		c.JSON(http.StatusOK, gin.H{
			"halted":  false,
			"changed": changed,
		})
	}
}

// HandleSystemStatus reports the halt state.
//
// GET /v1/system/status
func HandleSystemStatus(control *override.Controller) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, control.Status())
	}
}

// HandleControlWebSocket streams halt/resume events to a client.
//
// GET /v1/system/control/ws
//
// On connect the current status is sent once, then every state change is
// pushed as a ControlEvent until the client disconnects.
func HandleControlWebSocket(control *override.Controller) gin.HandlerFunc {
	return func(c *gin.Context) {
		ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			slog.Error("Failed to upgrade control websocket", "error", err)
			return
		}
		defer ws.Close()
		slog.Info("Control channel client connected", "remote", ws.RemoteAddr().String())

		events, cancel := control.Subscribe()
		defer cancel()

		if err := ws.WriteJSON(control.Status()); err != nil {
			slog.Warn("Failed to send initial control status", "error", err)
			return
		}

		// Drain the client read side so close frames are processed.
		clientGone := make(chan struct{})
		go func() {
			defer close(clientGone)
			for {
				if _, _, err := ws.ReadMessage(); err != nil {
					return
				}
			}
		}()

		for {
			select {
			case event, ok := <-events:
				if !ok {
					return
				}
				if err := ws.WriteJSON(event); err != nil {
					slog.Info("Control channel client disconnected", "error", err)
					return
				}
			case <-clientGone:
				slog.Info("Control channel client disconnected")
				return
			case <-c.Request.Context().Done():
				return
			}
		}
	}
}
