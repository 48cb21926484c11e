// Copyright (C) 2025 Quorumworks (jmcallister@quorumworks.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package services implements the query orchestrator: the pre-flight
// halt gate, the concurrent member fan-out, aggregation, and decision
// recording.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/quorumworks/boardroom/services/board/consensus"
	"github.com/quorumworks/boardroom/services/board/datatypes"
	"github.com/quorumworks/boardroom/services/board/members"
	"github.com/quorumworks/boardroom/services/board/observability"
	"github.com/quorumworks/boardroom/services/board/override"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("boardroom.board.consult")

// ErrHalted is returned by Consult when the halt gate refuses the query.
var ErrHalted = errors.New("system is halted")

// DecisionRecorder persists completed decisions. A recorder failure is
// secondary: the decision is still returned to the caller.
type DecisionRecorder interface {
	RecordDecision(ctx context.Context, decision *datatypes.BoardDecision) error
}

// ConsultOutcome is a completed consultation: the decision plus the
// persistence error, if recording failed.
type ConsultOutcome struct {
	Decision  *datatypes.BoardDecision
	RecordErr error
}

// BoardService orchestrates full-board consultations. The service itself
// is long-lived and safe for concurrent use; all per-consultation state
// (result buffers, the aggregator) is created fresh inside Consult.
type BoardService struct {
	evaluators    []members.Evaluator
	panelSize     int
	quorum        int
	memberTimeout time.Duration
	recorder      DecisionRecorder
	control       *override.Controller
	metrics       *observability.BoardMetrics
}

// NewBoardService wires the orchestrator. Metrics may be nil (all
// recording becomes a no-op), everything else is required.
func NewBoardService(
	evaluators []members.Evaluator,
	quorum int,
	memberTimeout time.Duration,
	recorder DecisionRecorder,
	control *override.Controller,
	metrics *observability.BoardMetrics,
) *BoardService {
	return &BoardService{
		evaluators:    evaluators,
		panelSize:     len(evaluators),
		quorum:        quorum,
		memberTimeout: memberTimeout,
		recorder:      recorder,
		control:       control,
		metrics:       metrics,
	}
}

// Consult runs one full-board consultation.
//
// The halt gate is checked before any member is contacted; a halted
// system refuses with ErrHalted. Members are queried in parallel, each
// bounded by the configured per-member timeout. A member that errors or
// times out becomes a MemberFailure and is excluded from every reduction.
// If the doctrine auto-rule that decided the consultation calls for a
// system halt, the halt is raised here after the decision is recorded.
func (s *BoardService) Consult(ctx context.Context, action string, actionContext map[string]any) (*ConsultOutcome, error) {
	ctx, span := tracer.Start(ctx, "BoardService.Consult")
	defer span.End()
	span.SetAttributes(attribute.Int("board.panel_size", s.panelSize))

	if s.control.Halted() {
		s.metrics.RecordHaltRefusal()
		span.SetStatus(codes.Error, "halted")
		return nil, ErrHalted
	}

	finish := s.metrics.ConsultationStarted()
	defer finish()
	start := time.Now()

	votes, failures := s.fanOut(ctx, action, actionContext)

	agg := consensus.NewAggregator(s.panelSize, s.quorum)
	res, err := agg.Aggregate(votes)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("aggregation failed: %w", err)
	}
	if res.Vetoer != "" {
		s.metrics.RecordVeto(res.Vetoer)
	}

	decision := &datatypes.BoardDecision{
		ID:           uuid.New().String(),
		Action:       action,
		Decision:     res.Decision,
		Reason:       res.Reason,
		OverallRisk:  res.OverallRisk,
		PolicyAction: res.PolicyAction,
		VetoedBy:     res.Vetoer,
		Approvals:    res.Approvals,
		Rejections:   res.Rejections,
		Deferrals:    res.Deferrals,
		Votes:        res.Votes,
		Failures:     failures,
		State:        datatypes.StateDecided,
		CreatedAt:    time.Now().UTC(),
	}
	span.SetAttributes(
		attribute.String("board.decision", string(decision.Decision)),
		attribute.String("board.overall_risk", string(decision.OverallRisk.Level)),
		attribute.Int("board.failures", len(failures)),
	)
	s.metrics.RecordConsultation(string(decision.Decision), time.Since(start))

	slog.Info("Board consultation decided",
		"decision_id", decision.ID,
		"decision", decision.Decision,
		"reason", decision.Reason,
		"overall_risk", decision.OverallRisk.Level,
		"approvals", decision.Approvals,
		"rejections", decision.Rejections,
		"failures", len(failures),
	)

	outcome := &ConsultOutcome{Decision: decision}
	if err := s.recorder.RecordDecision(ctx, decision); err != nil {
		// The decision stands even when it cannot be persisted.
		s.metrics.RecordRecordFailure()
		slog.Error("Failed to record board decision", "decision_id", decision.ID, "error", err)
		outcome.RecordErr = err
	}

	if res.HaltRequired {
		s.control.Halt(fmt.Sprintf("board decision %s: %s", decision.ID, decision.Reason))
	}

	return outcome, nil
}

// fanOut queries every member in parallel and partitions the results
// into votes and failures. Failures are sorted by member name so the
// recorded decision is independent of completion order.
func (s *BoardService) fanOut(ctx context.Context, action string, actionContext map[string]any) ([]datatypes.BoardVote, []datatypes.MemberFailure) {
	var (
		mu       sync.Mutex
		votes    []datatypes.BoardVote
		failures []datatypes.MemberFailure
		wg       sync.WaitGroup
	)

	for _, ev := range s.evaluators {
		wg.Add(1)
		go func(ev members.Evaluator) {
			defer wg.Done()

			callCtx, cancel := context.WithTimeout(ctx, s.memberTimeout)
			defer cancel()

			begin := time.Now()
			vote, err := ev.Evaluate(callCtx, action, actionContext)
			s.metrics.RecordMemberLatency(ev.Name(), time.Since(begin))

			if err != nil {
				reason := datatypes.FailureError
				if errors.Is(err, context.DeadlineExceeded) || errors.Is(callCtx.Err(), context.DeadlineExceeded) {
					reason = datatypes.FailureTimeout
				}
				s.metrics.RecordMemberFailure(ev.Name(), reason)
				slog.Warn("Board member failed to evaluate",
					"member", ev.Name(), "reason", reason, "error", err)
				mu.Lock()
				failures = append(failures, datatypes.MemberFailure{MemberName: ev.Name(), Reason: reason})
				mu.Unlock()
				return
			}

			mu.Lock()
			votes = append(votes, vote)
			mu.Unlock()
		}(ev)
	}
	wg.Wait()

	sort.Slice(failures, func(i, j int) bool {
		return failures[i].MemberName < failures[j].MemberName
	})
	return votes, failures
}
