// Copyright (C) 2025 Quorumworks (jmcallister@quorumworks.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package observability provides Prometheus metrics for the board service.
//
// Metrics cover the consultation pipeline: fan-out latency per member,
// member failures, final decisions by outcome, vetoes, and halt-gate
// refusals. All metric operations are thread-safe via Prometheus's
// internal locking.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace for all metrics
const metricsNamespace = "boardroom"

// Subsystem for consensus metrics
const consensusSubsystem = "consensus"

// BoardMetrics holds all Prometheus metrics for board consultations.
// Initialize once at startup via InitMetrics().
type BoardMetrics struct {
	// ConsultationsTotal counts completed consultations.
	// Labels: decision (APPROVED, REJECTED, DEFERRED)
	ConsultationsTotal *prometheus.CounterVec

	// ConsultationDurationSeconds measures full fan-out-to-decision time.
	// Labels: status (success, halted)
	ConsultationDurationSeconds *prometheus.HistogramVec

	// MemberLatencySeconds measures individual member evaluation time.
	// Labels: member
	MemberLatencySeconds *prometheus.HistogramVec

	// MemberFailuresTotal counts member evaluations that produced no vote.
	// Labels: member, reason (timeout, error)
	MemberFailuresTotal *prometheus.CounterVec

	// VetoesTotal counts decisions short-circuited by a veto holder.
	// Labels: member
	VetoesTotal *prometheus.CounterVec

	// HaltRefusalsTotal counts queries refused at the pre-flight halt gate.
	HaltRefusalsTotal prometheus.Counter

	// ActiveConsultations tracks consultations currently in flight.
	ActiveConsultations prometheus.Gauge

	// RecordFailuresTotal counts decisions that could not be persisted.
	RecordFailuresTotal prometheus.Counter
}

// DefaultMetrics is the singleton instance of BoardMetrics.
// Initialized by InitMetrics().
var DefaultMetrics *BoardMetrics

// InitMetrics creates and registers all Prometheus metrics. Call once at
// application startup; a second call panics on duplicate registration.
func InitMetrics() *BoardMetrics {
	DefaultMetrics = &BoardMetrics{
		ConsultationsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: consensusSubsystem,
				Name:      "consultations_total",
				Help:      "Completed board consultations by final decision.",
			},
			[]string{"decision"},
		),
		ConsultationDurationSeconds: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: consensusSubsystem,
				Name:      "consultation_duration_seconds",
				Help:      "Wall time from fan-out to recorded decision.",
				Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
			},
			[]string{"status"},
		),
		MemberLatencySeconds: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: consensusSubsystem,
				Name:      "member_latency_seconds",
				Help:      "Per-member evaluation latency.",
				Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
			},
			[]string{"member"},
		),
		MemberFailuresTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: consensusSubsystem,
				Name:      "member_failures_total",
				Help:      "Member evaluations excluded from aggregation.",
			},
			[]string{"member", "reason"},
		),
		VetoesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: consensusSubsystem,
				Name:      "vetoes_total",
				Help:      "Decisions short-circuited by a veto holder.",
			},
			[]string{"member"},
		),
		HaltRefusalsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: consensusSubsystem,
				Name:      "halt_refusals_total",
				Help:      "Queries refused because the system was halted.",
			},
		),
		ActiveConsultations: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Subsystem: consensusSubsystem,
				Name:      "active_consultations",
				Help:      "Consultations currently in flight.",
			},
		),
		RecordFailuresTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: consensusSubsystem,
				Name:      "record_failures_total",
				Help:      "Decisions that could not be persisted.",
			},
		),
	}
	return DefaultMetrics
}

// RecordConsultation records a completed consultation.
func (m *BoardMetrics) RecordConsultation(decision string, duration time.Duration) {
	if m == nil {
		return
	}
	m.ConsultationsTotal.WithLabelValues(decision).Inc()
	m.ConsultationDurationSeconds.WithLabelValues("success").Observe(duration.Seconds())
}

// RecordMemberLatency records one member's evaluation time.
func (m *BoardMetrics) RecordMemberLatency(member string, duration time.Duration) {
	if m == nil {
		return
	}
	m.MemberLatencySeconds.WithLabelValues(member).Observe(duration.Seconds())
}

// RecordMemberFailure records a member evaluation that produced no vote.
func (m *BoardMetrics) RecordMemberFailure(member, reason string) {
	if m == nil {
		return
	}
	m.MemberFailuresTotal.WithLabelValues(member, reason).Inc()
}

// RecordVeto records a veto short-circuit by the named member.
func (m *BoardMetrics) RecordVeto(member string) {
	if m == nil {
		return
	}
	m.VetoesTotal.WithLabelValues(member).Inc()
}

// RecordHaltRefusal records a query refused at the halt gate.
func (m *BoardMetrics) RecordHaltRefusal() {
	if m == nil {
		return
	}
	m.HaltRefusalsTotal.Inc()
}

// RecordRecordFailure records a persistence failure for a decision.
func (m *BoardMetrics) RecordRecordFailure() {
	if m == nil {
		return
	}
	m.RecordFailuresTotal.Inc()
}

// ConsultationStarted marks a consultation in flight; call the returned
// function when it completes.
func (m *BoardMetrics) ConsultationStarted() func() {
	if m == nil {
		return func() {}
	}
	m.ActiveConsultations.Inc()
	return func() { m.ActiveConsultations.Dec() }
}
