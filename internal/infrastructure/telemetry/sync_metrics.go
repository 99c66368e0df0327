// Package telemetry provides OpenTelemetry integration for metrics collection.
package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// SyncMetrics provides sync engine metrics. It tracks job activity, push
// throughput, throttle pressure from the Target, and inbound webhook events.
type SyncMetrics struct {
	meter  metric.Meter
	logger *zap.Logger

	// Counter metrics (monotonically increasing)
	jobsStartedTotal    *Counter
	jobsCompletedTotal  *Counter
	itemsProcessedTotal *Counter
	throttleEventsTotal *Counter
	webhookEventsTotal  *Counter

	// Distributions
	jobDuration *Histogram

	// Gauge metrics (point-in-time values)
	pushThroughput *FloatGauge
}

// SyncMetricsConfig holds configuration for sync metrics.
type SyncMetricsConfig struct {
	Meter  metric.Meter
	Logger *zap.Logger
}

// NewSyncMetrics creates a new SyncMetrics instance.
func NewSyncMetrics(cfg SyncMetricsConfig) (*SyncMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	sm := &SyncMetrics{
		meter:  cfg.Meter,
		logger: logger,
	}

	var err error

	sm.jobsStartedTotal, err = NewCounter(
		cfg.Meter,
		"sync_jobs_started_total",
		"Total number of sync jobs started",
		"{jobs}",
	)
	if err != nil {
		return nil, err
	}

	sm.jobsCompletedTotal, err = NewCounter(
		cfg.Meter,
		"sync_jobs_completed_total",
		"Total number of sync jobs reaching a terminal state",
		"{jobs}",
	)
	if err != nil {
		return nil, err
	}

	sm.itemsProcessedTotal, err = NewCounter(
		cfg.Meter,
		"sync_items_processed_total",
		"Total number of entities processed by sync jobs",
		"{items}",
	)
	if err != nil {
		return nil, err
	}

	sm.throttleEventsTotal, err = NewCounter(
		cfg.Meter,
		"sync_throttle_events_total",
		"Total number of rate-limit responses from the target",
		"{events}",
	)
	if err != nil {
		return nil, err
	}

	sm.webhookEventsTotal, err = NewCounter(
		cfg.Meter,
		"sync_webhook_events_total",
		"Total number of inbound webhook events processed",
		"{events}",
	)
	if err != nil {
		return nil, err
	}

	sm.jobDuration, err = NewHistogram(cfg.Meter, HistogramOpts{
		Name:        "sync_job_duration_seconds",
		Description: "Wall-clock duration of sync jobs",
		Unit:        "s",
		Boundaries:  []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800},
	})
	if err != nil {
		return nil, err
	}

	sm.pushThroughput, err = NewFloatGauge(
		cfg.Meter,
		"sync_push_throughput_items_per_second",
		"Observed push throughput of the most recent batch window",
		"{items}/s",
	)
	if err != nil {
		return nil, err
	}

	return sm, nil
}

// RecordJobStarted records a job start event.
func (sm *SyncMetrics) RecordJobStarted(ctx context.Context, kind string) {
	sm.jobsStartedTotal.Inc(ctx, AttrJobKind.String(kind))
}

// RecordJobCompleted records a terminal job transition and its duration.
func (sm *SyncMetrics) RecordJobCompleted(ctx context.Context, kind, status string, duration time.Duration) {
	sm.jobsCompletedTotal.Inc(ctx,
		AttrJobKind.String(kind),
		AttrJobStatus.String(status),
	)
	sm.jobDuration.RecordDuration(ctx, duration, AttrJobKind.String(kind))
}

// RecordItemsProcessed records a batch of processed entities by outcome.
func (sm *SyncMetrics) RecordItemsProcessed(ctx context.Context, kind, outcome string, count int64) {
	if count <= 0 {
		return
	}
	sm.itemsProcessedTotal.Add(ctx, count,
		AttrJobKind.String(kind),
		AttrSyncOutcome.String(outcome),
	)
}

// RecordThrottle records a rate-limit response from the target.
func (sm *SyncMetrics) RecordThrottle(ctx context.Context, kind string) {
	sm.throttleEventsTotal.Inc(ctx, AttrJobKind.String(kind))
}

// RecordWebhookEvent records an inbound webhook event and its outcome.
func (sm *SyncMetrics) RecordWebhookEvent(ctx context.Context, eventKind, outcome string) {
	sm.webhookEventsTotal.Inc(ctx,
		AttrEventKind.String(eventKind),
		AttrSyncOutcome.String(outcome),
	)
}

// RecordPushThroughput records the current push throughput.
func (sm *SyncMetrics) RecordPushThroughput(ctx context.Context, itemsPerSecond float64) {
	sm.pushThroughput.Record(ctx, itemsPerSecond)
}

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewSyncMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Err)
}
