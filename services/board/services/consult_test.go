// Copyright (C) 2025 Quorumworks (jmcallister@quorumworks.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
package services

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/quorumworks/boardroom/services/board/datatypes"
	"github.com/quorumworks/boardroom/services/board/members"
	"github.com/quorumworks/boardroom/services/board/override"
	"github.com/quorumworks/boardroom/services/risk_engine"
)

// fakeEvaluator is a scripted board seat.
type fakeEvaluator struct {
	name  string
	vote  datatypes.BoardVote
	err   error
	delay time.Duration
	calls atomic.Int64
}

func (f *fakeEvaluator) Name() string { return f.name }

func (f *fakeEvaluator) Evaluate(ctx context.Context, action string, actionContext map[string]any) (datatypes.BoardVote, error) {
	f.calls.Add(1)
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return datatypes.BoardVote{}, ctx.Err()
		}
	}
	if f.err != nil {
		return datatypes.BoardVote{}, f.err
	}
	return f.vote, nil
}

func scriptedSeat(name string, level datatypes.RiskLevel, score float64, hasVeto bool) *fakeEvaluator {
	return &fakeEvaluator{
		name: name,
		vote: datatypes.BoardVote{
			MemberName: name,
			Vote:       risk_engine.SynthesizeVote(level),
			Assessment: datatypes.RiskAssessment{
				MemberName: name, Level: level, Score: score, HasVeto: hasVeto,
			},
		},
	}
}

// elevenSeats builds a full panel of approving seats.
func elevenSeats() []*fakeEvaluator {
	names := []string{
		"CEO_Visionary", "CQO_Quality", "CTO_Architect", "CSO_Sentinel",
		"CDO_Alchemist", "CRO_Guardian", "COO_Orchestrator", "CINO_Pioneer",
		"CCDO_Diplomat", "CPHO_Sage", "CXO_Catalyst",
	}
	seats := make([]*fakeEvaluator, len(names))
	for i, n := range names {
		hasVeto := n == "CSO_Sentinel" || n == "CRO_Guardian"
		seats[i] = scriptedSeat(n, datatypes.RiskLow, 5, hasVeto)
	}
	return seats
}

func asEvaluators(seats []*fakeEvaluator) []members.Evaluator {
	out := make([]members.Evaluator, len(seats))
	for i, s := range seats {
		out[i] = s
	}
	return out
}

// fakeRecorder captures recorded decisions.
type fakeRecorder struct {
	mu       sync.Mutex
	err      error
	recorded []*datatypes.BoardDecision
}

func (r *fakeRecorder) RecordDecision(ctx context.Context, d *datatypes.BoardDecision) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.recorded = append(r.recorded, d)
	return nil
}

func (r *fakeRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.recorded)
}

func newTestService(seats []*fakeEvaluator, recorder *fakeRecorder, control *override.Controller, timeout time.Duration) *BoardService {
	return NewBoardService(asEvaluators(seats), 7, timeout, recorder, control, nil)
}

func TestConsultHaltGateRefuses(t *testing.T) {
	seats := elevenSeats()
	recorder := &fakeRecorder{}
	control := override.NewController()
	control.Halt("maintenance")

	svc := newTestService(seats, recorder, control, time.Second)
	_, err := svc.Consult(context.Background(), "anything", nil)
	if !errors.Is(err, ErrHalted) {
		t.Fatalf("err = %v, want ErrHalted", err)
	}
	for _, s := range seats {
		if s.calls.Load() != 0 {
			t.Errorf("member %s was contacted despite the halt", s.name)
		}
	}
	if recorder.count() != 0 {
		t.Error("nothing should be recorded for a refused query")
	}
}

func TestConsultUnanimousApproval(t *testing.T) {
	seats := elevenSeats()
	recorder := &fakeRecorder{}
	svc := newTestService(seats, recorder, override.NewController(), time.Second)

	outcome, err := svc.Consult(context.Background(), "publish weekly report", nil)
	if err != nil {
		t.Fatalf("Consult returned error: %v", err)
	}
	d := outcome.Decision
	if d.Decision != datatypes.DecisionApproved {
		t.Errorf("decision = %s, want APPROVED", d.Decision)
	}
	if d.Reason != "Approved by 11/11 board members" {
		t.Errorf("reason = %q", d.Reason)
	}
	if len(d.Failures) != 0 {
		t.Errorf("failures = %v, want none", d.Failures)
	}
	if d.ID == "" || d.CreatedAt.IsZero() {
		t.Error("decision must carry an ID and timestamp")
	}
	if d.State != datatypes.StateDecided {
		t.Errorf("state = %s, want DECIDED", d.State)
	}
	if recorder.count() != 1 {
		t.Errorf("recorded %d decisions, want 1", recorder.count())
	}
	if outcome.RecordErr != nil {
		t.Errorf("unexpected record error: %v", outcome.RecordErr)
	}
}

func TestConsultFailedMembersAreExcluded(t *testing.T) {
	seats := elevenSeats()
	// Four seats fail outright: quorum must still be reachable from the
	// seven that responded, and the failures must be observational only.
	for _, i := range []int{1, 4, 7, 10} {
		seats[i].err = errors.New("backend unavailable")
	}
	recorder := &fakeRecorder{}
	svc := newTestService(seats, recorder, override.NewController(), time.Second)

	outcome, err := svc.Consult(context.Background(), "routine maintenance", nil)
	if err != nil {
		t.Fatalf("Consult returned error: %v", err)
	}
	d := outcome.Decision
	if d.Decision != datatypes.DecisionApproved {
		t.Errorf("decision = %s, want APPROVED", d.Decision)
	}
	if d.Reason != "Approved by 7/11 board members" {
		t.Errorf("reason = %q", d.Reason)
	}
	if len(d.Failures) != 4 {
		t.Fatalf("failures = %d, want 4", len(d.Failures))
	}
	for i := 1; i < len(d.Failures); i++ {
		if d.Failures[i].MemberName < d.Failures[i-1].MemberName {
			t.Error("failures must be sorted by member name")
		}
	}
	if d.Failures[0].Reason != datatypes.FailureError {
		t.Errorf("failure reason = %q, want error", d.Failures[0].Reason)
	}
	if len(d.Votes) != 7 {
		t.Errorf("votes = %d, want 7", len(d.Votes))
	}
}

func TestConsultTimeoutBecomesFailure(t *testing.T) {
	seats := elevenSeats()
	seats[0].delay = 500 * time.Millisecond

	svc := newTestService(seats, &fakeRecorder{}, override.NewController(), 50*time.Millisecond)
	outcome, err := svc.Consult(context.Background(), "routine maintenance", nil)
	if err != nil {
		t.Fatalf("Consult returned error: %v", err)
	}
	d := outcome.Decision
	if len(d.Failures) != 1 {
		t.Fatalf("failures = %d, want 1", len(d.Failures))
	}
	if d.Failures[0].MemberName != "CEO_Visionary" || d.Failures[0].Reason != datatypes.FailureTimeout {
		t.Errorf("failure = %+v, want CEO_Visionary/timeout", d.Failures[0])
	}
	if d.Decision != datatypes.DecisionApproved {
		t.Errorf("decision = %s, want APPROVED from the 10 remaining", d.Decision)
	}
}

func TestConsultAllMembersFail(t *testing.T) {
	seats := elevenSeats()
	for _, s := range seats {
		s.err = errors.New("backend unavailable")
	}
	svc := newTestService(seats, &fakeRecorder{}, override.NewController(), time.Second)

	outcome, err := svc.Consult(context.Background(), "routine maintenance", nil)
	if err != nil {
		t.Fatalf("Consult returned error: %v", err)
	}
	d := outcome.Decision
	if !d.OverallRisk.Indeterminate {
		t.Error("overall risk must be flagged indeterminate")
	}
	if d.OverallRisk.Level != datatypes.RiskHigh {
		t.Errorf("overall level = %s, want conservative HIGH", d.OverallRisk.Level)
	}
	if d.Decision != datatypes.DecisionDeferred {
		t.Errorf("decision = %s, want DEFERRED", d.Decision)
	}
	if len(d.Failures) != 11 {
		t.Errorf("failures = %d, want 11", len(d.Failures))
	}
}

func TestConsultRecorderFailureIsSecondary(t *testing.T) {
	recorder := &fakeRecorder{err: errors.New("disk full")}
	svc := newTestService(elevenSeats(), recorder, override.NewController(), time.Second)

	outcome, err := svc.Consult(context.Background(), "publish weekly report", nil)
	if err != nil {
		t.Fatalf("Consult returned error: %v", err)
	}
	if outcome.Decision == nil {
		t.Fatal("decision must be returned even when recording fails")
	}
	if outcome.RecordErr == nil {
		t.Fatal("record error must be surfaced")
	}
}

func TestConsultExtremeDecisionRaisesHalt(t *testing.T) {
	// Non-veto seats all assessing EXTREME drive the mean to 90: the
	// doctrine auto-rule rejects and calls for a system halt, which the
	// orchestrator raises after recording.
	var seats []*fakeEvaluator
	for i := 0; i < 11; i++ {
		seats = append(seats, scriptedSeat(fmt.Sprintf("Member_%02d", i), datatypes.RiskExtreme, 90, false))
	}
	control := override.NewController()
	svc := newTestService(seats, &fakeRecorder{}, control, time.Second)

	outcome, err := svc.Consult(context.Background(), "wire large_amount to third_party", nil)
	if err != nil {
		t.Fatalf("Consult returned error: %v", err)
	}
	if outcome.Decision.Reason != "Risk level EXTREME triggered system halt" {
		t.Errorf("reason = %q", outcome.Decision.Reason)
	}
	if !control.Halted() {
		t.Fatal("orchestrator must raise the halt after an EXTREME auto-rule")
	}

	// The gate now refuses follow-up queries.
	if _, err := svc.Consult(context.Background(), "anything", nil); !errors.Is(err, ErrHalted) {
		t.Errorf("follow-up err = %v, want ErrHalted", err)
	}
}

func TestConsultVetoShortCircuit(t *testing.T) {
	seats := elevenSeats()
	seats[3] = scriptedSeat("CSO_Sentinel", datatypes.RiskExtreme, 100, true)
	svc := newTestService(seats, &fakeRecorder{}, override.NewController(), time.Second)

	outcome, err := svc.Consult(context.Background(), "disable authentication", nil)
	if err != nil {
		t.Fatalf("Consult returned error: %v", err)
	}
	d := outcome.Decision
	if d.Decision != datatypes.DecisionRejected {
		t.Errorf("decision = %s, want REJECTED", d.Decision)
	}
	if d.Reason != "Vetoed by CSO_Sentinel" {
		t.Errorf("reason = %q", d.Reason)
	}
	if d.VetoedBy != "CSO_Sentinel" {
		t.Errorf("vetoed_by = %q, want CSO_Sentinel", d.VetoedBy)
	}
	if d.OverallRisk.Level != datatypes.RiskExtreme || d.OverallRisk.Score != 100 {
		t.Errorf("overall = {%s, %v}", d.OverallRisk.Level, d.OverallRisk.Score)
	}
}

func TestConsultDeterministicAcrossRuns(t *testing.T) {
	build := func() *BoardService {
		seats := elevenSeats()
		seats[2] = scriptedSeat("CTO_Architect", datatypes.RiskMedium, 30, false)
		return newTestService(seats, &fakeRecorder{}, override.NewController(), time.Second)
	}

	first, err := build().Consult(context.Background(), "apply config_change", nil)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		again, err := build().Consult(context.Background(), "apply config_change", nil)
		if err != nil {
			t.Fatal(err)
		}
		// Identical inputs must yield identical decisions apart from
		// the record identity.
		a, b := *first.Decision, *again.Decision
		a.ID, b.ID = "", ""
		a.CreatedAt, b.CreatedAt = time.Time{}, time.Time{}
		if !reflect.DeepEqual(a, b) {
			t.Fatalf("run %d differed:\n%+v\n%+v", i, a, b)
		}
	}
}
