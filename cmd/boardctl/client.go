// Copyright (C) 2025 Quorumworks (jmcallister@quorumworks.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/quorumworks/boardroom/services/board/datatypes"
)

// apiClient talks to the board service HTTP API.
type apiClient struct {
	baseURL string
	token   string
	http    *http.Client
}

// newAPIClient builds a client for the given server. Consultations fan
// out to every board member, so the request timeout is generous.
func newAPIClient(baseURL, token string) *apiClient {
	return &apiClient{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: 5 * time.Minute},
	}
}

// do performs one request and decodes the JSON response into out. A
// non-2xx status is returned as an error carrying the server's message.
func (c *apiClient) do(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("board service unreachable: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%s (HTTP %d)", apiErr.Error, resp.StatusCode)
		}
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, path)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *apiClient) Query(ctx context.Context, req datatypes.QueryRequest) (*datatypes.QueryResponse, error) {
	var resp datatypes.QueryResponse
	if err := c.do(ctx, http.MethodPost, "/v1/board/query", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *apiClient) MemberQuery(ctx context.Context, member string, req datatypes.QueryRequest) (*datatypes.MemberQueryResponse, error) {
	var resp datatypes.MemberQueryResponse
	path := "/v1/board/members/" + url.PathEscape(member) + "/query"
	if err := c.do(ctx, http.MethodPost, path, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *apiClient) Roster(ctx context.Context) ([]datatypes.RosterEntry, error) {
	var resp struct {
		Members []datatypes.RosterEntry `json:"members"`
	}
	if err := c.do(ctx, http.MethodGet, "/v1/board/members", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Members, nil
}

func (c *apiClient) Doctrine(ctx context.Context) (*datatypes.DoctrineResponse, error) {
	var resp datatypes.DoctrineResponse
	if err := c.do(ctx, http.MethodGet, "/v1/board/doctrine", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *apiClient) Decisions(ctx context.Context, limit int) ([]datatypes.BoardDecision, error) {
	var resp datatypes.DecisionListResponse
	path := fmt.Sprintf("/v1/board/decisions?limit=%d", limit)
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Decisions, nil
}

func (c *apiClient) Decision(ctx context.Context, id string) (*datatypes.BoardDecision, error) {
	var decision datatypes.BoardDecision
	if err := c.do(ctx, http.MethodGet, "/v1/board/decisions/"+url.PathEscape(id), nil, &decision); err != nil {
		return nil, err
	}
	return &decision, nil
}

func (c *apiClient) Halt(ctx context.Context, reason string) error {
	return c.do(ctx, http.MethodPost, "/v1/system/halt", datatypes.HaltRequest{Reason: reason}, nil)
}

func (c *apiClient) Resume(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/v1/system/resume", struct{}{}, nil)
}

func (c *apiClient) Status(ctx context.Context) (*datatypes.SystemStatusResponse, error) {
	var status datatypes.SystemStatusResponse
	if err := c.do(ctx, http.MethodGet, "/v1/system/status", nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}
