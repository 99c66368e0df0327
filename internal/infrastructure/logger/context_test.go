package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"go.uber.org/zap/zapcore"
)

func TestWithContext(t *testing.T) {
	t.Run("Round trips the logger", func(t *testing.T) {
		logger := zap.NewNop()
		ctx := WithContext(context.Background(), logger)
		assert.Same(t, logger, FromContext(ctx))
	})

	t.Run("Missing logger falls back to no-op", func(t *testing.T) {
		assert.NotNil(t, FromContext(context.Background()))
	})
}

func TestWithRequestID(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger := zap.New(core)

	ctx, enriched := WithRequestID(context.Background(), logger, "req-123")
	assert.Equal(t, "req-123", GetRequestID(ctx))

	enriched.Info("hello")
	entries := logs.All()
	assert.Len(t, entries, 1)
	assert.Equal(t, "req-123", entries[0].ContextMap()["request_id"])
}

func TestWithJobID(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger := zap.New(core)

	ctx, enriched := WithJobID(context.Background(), logger, "job-42")
	assert.Equal(t, "job-42", GetJobID(ctx))

	enriched.Info("page done")
	entries := logs.All()
	assert.Len(t, entries, 1)
	assert.Equal(t, "job-42", entries[0].ContextMap()["job_id"])
}

func TestTraceCorrelation(t *testing.T) {
	t.Run("No span yields empty ids", func(t *testing.T) {
		assert.Empty(t, GetTraceID(context.Background()))
		assert.Empty(t, GetSpanID(context.Background()))
	})

	t.Run("No span leaves logger unchanged", func(t *testing.T) {
		logger := zap.NewNop()
		assert.Same(t, logger, WithTraceContext(context.Background(), logger))
	})
}
