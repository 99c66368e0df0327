package sync

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	syncdomain "github.com/syncbridge/backend/internal/domain/sync"
)

// JobLedger is the durable record of long-running operations. Progress
// updates are a best-effort observability side channel: their failures are
// logged and swallowed so a broken ledger row can never abort a run that is
// otherwise making progress. Create and Complete remain fatal on error.
type JobLedger struct {
	jobs    syncdomain.JobRepository
	metrics Metrics
	logger  *zap.Logger
}

// NewJobLedger creates a JobLedger.
func NewJobLedger(jobs syncdomain.JobRepository, logger *zap.Logger) *JobLedger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &JobLedger{jobs: jobs, metrics: nopMetrics{}, logger: logger}
}

// SetMetrics replaces the nop metrics recorder.
func (l *JobLedger) SetMetrics(m Metrics) {
	if m != nil {
		l.metrics = m
	}
}

// Create opens a new job row in PENDING and immediately moves it to RUNNING.
func (l *JobLedger) Create(ctx context.Context, kind syncdomain.JobKind, total int, metadata map[string]string) (*syncdomain.Job, error) {
	job, err := syncdomain.NewJob(kind, total, metadata)
	if err != nil {
		return nil, err
	}
	if err := job.Start(); err != nil {
		return nil, err
	}
	if err := l.jobs.Save(ctx, job); err != nil {
		return nil, err
	}
	l.metrics.RecordJobStarted(ctx, kind.String())
	return job, nil
}

// Progress merges a counter/metadata delta into the job row using atomic
// increments, never read-modify-write, so parallel batch workers cannot lose
// updates. Best effort: failures are logged, never returned.
func (l *JobLedger) Progress(ctx context.Context, jobID uuid.UUID, delta syncdomain.JobDelta) {
	if err := l.jobs.IncrementCounters(ctx, jobID, delta); err != nil {
		l.logger.Warn("job progress update dropped",
			zap.String("job_id", jobID.String()),
			zap.Error(err))
	}
}

// SetTotal records the discovered item count once known. Writes only the
// total column: counters incremented on the row by parallel workers must
// never be overwritten from a stale in-memory snapshot. Best effort.
func (l *JobLedger) SetTotal(ctx context.Context, job *syncdomain.Job, total int) {
	if err := job.SetTotal(total); err != nil {
		l.logger.Warn("job total update dropped",
			zap.String("job_id", job.ID.String()),
			zap.Error(err))
		return
	}
	if err := l.jobs.SetTotal(ctx, job.ID, total); err != nil {
		l.logger.Warn("job total update dropped",
			zap.String("job_id", job.ID.String()),
			zap.Error(err))
	}
}

// Complete moves the job to a terminal status exactly once. Only the
// terminal columns are written; counters and metadata stay as the row
// accumulated them through Progress.
func (l *JobLedger) Complete(ctx context.Context, job *syncdomain.Job, runErr error) {
	var transitionErr error
	if runErr != nil {
		transitionErr = job.Fail(runErr.Error())
	} else {
		transitionErr = job.Complete()
	}
	if transitionErr != nil {
		l.logger.Warn("job already terminal",
			zap.String("job_id", job.ID.String()),
			zap.Error(transitionErr))
		return
	}
	if err := l.jobs.Finalize(ctx, job.ID, job.Status, job.Error, *job.CompletedAt); err != nil {
		l.logger.Error("job completion not persisted",
			zap.String("job_id", job.ID.String()),
			zap.Error(err))
	}

	var elapsed time.Duration
	if job.StartedAt != nil && job.CompletedAt != nil {
		elapsed = job.CompletedAt.Sub(*job.StartedAt)
	}
	l.metrics.RecordJobCompleted(ctx, job.Kind.String(), job.Status.String(), elapsed)
}
