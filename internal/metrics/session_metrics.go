package metrics

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var meter = otel.Meter("gis-copilot")

// SessionMetrics provides metrics collection for assist sessions
type SessionMetrics struct {
	sessionsStartedCounter   metric.Int64Counter
	sessionsCompletedCounter metric.Int64Counter
	sessionsFailedCounter    metric.Int64Counter
	repairCyclesCounter      metric.Int64Counter
	sessionDurationHistogram metric.Float64Histogram
	sessionsActiveGauge      metric.Int64UpDownCounter
}

// NewSessionMetrics creates a new session metrics collector
func NewSessionMetrics() (*SessionMetrics, error) {
	sessionsStartedCounter, err := meter.Int64Counter(
		"gis_copilot.sessions.started",
		metric.WithDescription("Total number of assist sessions started"),
		metric.WithUnit("{session}"),
	)
	if err != nil {
		return nil, err
	}

	sessionsCompletedCounter, err := meter.Int64Counter(
		"gis_copilot.sessions.completed",
		metric.WithDescription("Total number of assist sessions that reached Done"),
		metric.WithUnit("{session}"),
	)
	if err != nil {
		return nil, err
	}

	sessionsFailedCounter, err := meter.Int64Counter(
		"gis_copilot.sessions.failed",
		metric.WithDescription("Total number of assist sessions that failed"),
		metric.WithUnit("{session}"),
	)
	if err != nil {
		return nil, err
	}

	repairCyclesCounter, err := meter.Int64Counter(
		"gis_copilot.sessions.repair_cycles",
		metric.WithDescription("Total number of regenerate-and-re-execute cycles"),
		metric.WithUnit("{cycle}"),
	)
	if err != nil {
		return nil, err
	}

	sessionDurationHistogram, err := meter.Float64Histogram(
		"gis_copilot.session.duration",
		metric.WithDescription("Duration of assist sessions in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	sessionsActiveGauge, err := meter.Int64UpDownCounter(
		"gis_copilot.sessions.active",
		metric.WithDescription("Number of currently running assist sessions"),
		metric.WithUnit("{session}"),
	)
	if err != nil {
		return nil, err
	}

	return &SessionMetrics{
		sessionsStartedCounter:   sessionsStartedCounter,
		sessionsCompletedCounter: sessionsCompletedCounter,
		sessionsFailedCounter:    sessionsFailedCounter,
		repairCyclesCounter:      repairCyclesCounter,
		sessionDurationHistogram: sessionDurationHistogram,
		sessionsActiveGauge:      sessionsActiveGauge,
	}, nil
}

// RecordSessionStarted records a new assist session
func (sm *SessionMetrics) RecordSessionStarted(ctx context.Context, sessionID string) {
	sm.sessionsStartedCounter.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("session.id", sessionID),
		),
	)
	sm.sessionsActiveGauge.Add(ctx, 1)
}

// RecordSessionCompleted records a session that reached Done
func (sm *SessionMetrics) RecordSessionCompleted(ctx context.Context, sessionID string, repaired, cancelled bool, duration time.Duration) {
	sm.sessionsCompletedCounter.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("session.id", sessionID),
			attribute.Bool("session.repaired", repaired),
			attribute.Bool("session.cancelled", cancelled),
		),
	)
	sm.sessionDurationHistogram.Record(ctx, duration.Seconds(),
		metric.WithAttributes(
			attribute.String("status", "completed"),
			attribute.Bool("session.repaired", repaired),
		),
	)
	sm.sessionsActiveGauge.Add(ctx, -1)
}

// RecordSessionFailed records a session that ended in a terminal failure
func (sm *SessionMetrics) RecordSessionFailed(ctx context.Context, sessionID, failureKind string, duration time.Duration) {
	sm.sessionsFailedCounter.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("session.id", sessionID),
			attribute.String("failure.kind", failureKind),
		),
	)
	sm.sessionDurationHistogram.Record(ctx, duration.Seconds(),
		metric.WithAttributes(
			attribute.String("status", "failed"),
			attribute.String("failure.kind", failureKind),
		),
	)
	sm.sessionsActiveGauge.Add(ctx, -1)
}

// RecordRepairCycle records one regenerate-and-re-execute cycle
func (sm *SessionMetrics) RecordRepairCycle(ctx context.Context, sessionID string) {
	sm.repairCyclesCounter.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("session.id", sessionID),
		),
	)
}
