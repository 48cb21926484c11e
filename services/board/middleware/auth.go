// Copyright (C) 2025 Quorumworks (jmcallister@quorumworks.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package middleware provides HTTP middleware for the board service.
//
// The auth middleware guards the privileged system routes (halt, resume,
// status). It extracts a bearer token from the Authorization header and
// compares it against the operator token configured at startup.
//
// # Local Behavior
//
// When no operator token is configured, all requests pass. This keeps a
// local single-user deployment usable without any auth infrastructure.
package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// TokenAuth creates a Gin middleware that requires the configured
// operator bearer token. An empty configured token disables the check.
func TokenAuth(operatorToken string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if operatorToken == "" {
			c.Next()
			return
		}

		token := extractBearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "missing bearer token",
			})
			return
		}
		if subtle.ConstantTimeCompare([]byte(token), []byte(operatorToken)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "unauthorized",
			})
			return
		}

		c.Next()
	}
}

// extractBearerToken parses the Authorization header, expecting the
// format "Bearer <token>". Returns empty string if the header is missing
// or malformed. The "Bearer" prefix is case-insensitive per RFC 7235.
func extractBearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}
