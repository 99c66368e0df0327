package sync

import (
	"context"
	"time"
)

// Metrics receives sync engine telemetry. Implementations must be safe for
// concurrent use; services default to a nop recorder so the telemetry
// backend stays optional.
type Metrics interface {
	RecordJobStarted(ctx context.Context, kind string)
	RecordJobCompleted(ctx context.Context, kind, status string, duration time.Duration)
	RecordItemsProcessed(ctx context.Context, kind, outcome string, count int64)
	RecordThrottle(ctx context.Context, kind string)
	RecordWebhookEvent(ctx context.Context, eventKind, outcome string)
	RecordPushThroughput(ctx context.Context, itemsPerSecond float64)
}

type nopMetrics struct{}

func (nopMetrics) RecordJobStarted(context.Context, string)                          {}
func (nopMetrics) RecordJobCompleted(context.Context, string, string, time.Duration) {}
func (nopMetrics) RecordItemsProcessed(context.Context, string, string, int64)       {}
func (nopMetrics) RecordThrottle(context.Context, string)                            {}
func (nopMetrics) RecordWebhookEvent(context.Context, string, string)                {}
func (nopMetrics) RecordPushThroughput(context.Context, float64)                     {}
