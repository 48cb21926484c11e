// Copyright (C) 2025 Quorumworks (jmcallister@quorumworks.dev)
// Tests for the board service API client.

package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/quorumworks/boardroom/services/board/datatypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIClient_QueryDecodesDecision(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/board/query", r.URL.Path)

		var req datatypes.QueryRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "rotate the signing keys", req.Action)

		json.NewEncoder(w).Encode(datatypes.QueryResponse{
			Decision: &datatypes.BoardDecision{
				ID:       "dec-1",
				Decision: datatypes.DecisionApproved,
				Reason:   "Approved by 11/11 board members",
			},
		})
	}))
	defer server.Close()

	c := newAPIClient(server.URL, "")
	resp, err := c.Query(context.Background(), datatypes.QueryRequest{Action: "rotate the signing keys"})
	require.NoError(t, err)
	assert.Equal(t, "dec-1", resp.Decision.ID)
	assert.Equal(t, datatypes.DecisionApproved, resp.Decision.Decision)
}

func TestAPIClient_ForwardsBearerToken(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"halted":true,"changed":true}`))
	}))
	defer server.Close()

	c := newAPIClient(server.URL, "secret-token")
	require.NoError(t, c.Halt(context.Background(), "drill"))
	assert.Equal(t, "Bearer secret-token", gotAuth)
}

func TestAPIClient_SurfacesServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"error":"system is halted"}`))
	}))
	defer server.Close()

	c := newAPIClient(server.URL, "")
	_, err := c.Query(context.Background(), datatypes.QueryRequest{Action: "anything"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "system is halted")
	assert.Contains(t, err.Error(), "503")
}

func TestAPIClient_EscapesMemberName(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		w.Write([]byte(`{"member_name":"CSO_Sentinel"}`))
	}))
	defer server.Close()

	c := newAPIClient(server.URL, "")
	_, err := c.MemberQuery(context.Background(), "CSO_Sentinel", datatypes.QueryRequest{Action: "x"})
	require.NoError(t, err)
	assert.Equal(t, "/v1/board/members/CSO_Sentinel/query", gotPath)
}

func TestParseContextPairs(t *testing.T) {
	got, err := parseContextPairs([]string{"dataset=personal_info", "region=eu-west-1"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"dataset": "personal_info", "region": "eu-west-1"}, got)

	got, err = parseContextPairs(nil)
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = parseContextPairs([]string{"no-separator"})
	assert.Error(t, err)

	_, err = parseContextPairs([]string{"=empty-key"})
	assert.Error(t, err)
}
