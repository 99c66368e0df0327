package sync

import (
	"context"

	"github.com/google/uuid"

	syncdomain "github.com/syncbridge/backend/internal/domain/sync"
)

// JobService is the read side of the job ledger, polled by the dashboard.
type JobService struct {
	jobs     syncdomain.JobRepository
	syncLogs syncdomain.SyncLogRepository
}

// NewJobService creates a JobService.
func NewJobService(jobs syncdomain.JobRepository, syncLogs syncdomain.SyncLogRepository) *JobService {
	return &JobService{jobs: jobs, syncLogs: syncLogs}
}

// GetJob returns a job by identifier.
func (s *JobService) GetJob(ctx context.Context, id uuid.UUID) (*syncdomain.Job, error) {
	return s.jobs.FindByID(ctx, id)
}

// ListJobs lists jobs matching the filter, newest first, with total count.
func (s *JobService) ListJobs(ctx context.Context, filter syncdomain.JobFilter) ([]syncdomain.Job, int64, error) {
	return s.jobs.FindAll(ctx, filter)
}

// GetJobLogs returns the audit trail of a job, oldest first.
func (s *JobService) GetJobLogs(ctx context.Context, id uuid.UUID, limit int) ([]syncdomain.SyncLog, error) {
	if _, err := s.jobs.FindByID(ctx, id); err != nil {
		return nil, err
	}
	return s.syncLogs.FindByJob(ctx, id, limit)
}
