package sync

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ---------------------------------------------------------------------------
// JobKind
// ---------------------------------------------------------------------------

// JobKind identifies the kind of background operation a Job tracks.
type JobKind string

const (
	// JobKindPullCustomers pulls customer records from the Source.
	JobKindPullCustomers JobKind = "PULL_CUSTOMERS"
	// JobKindPullProducts pulls product records from the Source.
	JobKindPullProducts JobKind = "PULL_PRODUCTS"
	// JobKindPushInventory pushes aggregated inventory levels to the Target.
	JobKindPushInventory JobKind = "PUSH_INVENTORY"
	// JobKindAutoMatch links source entities to target counterparts by SKU/email.
	JobKindAutoMatch JobKind = "AUTO_MATCH"
)

// IsValid returns true if the job kind is valid.
func (k JobKind) IsValid() bool {
	switch k {
	case JobKindPullCustomers, JobKindPullProducts, JobKindPushInventory, JobKindAutoMatch:
		return true
	default:
		return false
	}
}

// String returns the string representation of JobKind.
func (k JobKind) String() string {
	return string(k)
}

// IsPull returns true for kinds that page through the Source.
func (k JobKind) IsPull() bool {
	return k == JobKindPullCustomers || k == JobKindPullProducts
}

// EntityKind returns the mapping kind this job operates on.
func (k JobKind) EntityKind() MappingKind {
	if k == JobKindPullCustomers {
		return MappingKindCustomer
	}
	return MappingKindProduct
}

// ---------------------------------------------------------------------------
// JobStatus
// ---------------------------------------------------------------------------

// JobStatus represents the lifecycle state of a Job.
type JobStatus string

const (
	JobStatusPending   JobStatus = "PENDING"
	JobStatusRunning   JobStatus = "RUNNING"
	JobStatusCompleted JobStatus = "COMPLETED"
	JobStatusFailed    JobStatus = "FAILED"
	JobStatusCancelled JobStatus = "CANCELLED"
)

// IsValid returns true if the status is valid.
func (s JobStatus) IsValid() bool {
	switch s {
	case JobStatusPending, JobStatusRunning, JobStatusCompleted, JobStatusFailed, JobStatusCancelled:
		return true
	default:
		return false
	}
}

// IsTerminal returns true if the status is a final state. A terminal job is
// never reopened.
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed || s == JobStatusCancelled
}

// String returns the string representation of JobStatus.
func (s JobStatus) String() string {
	return string(s)
}

// ---------------------------------------------------------------------------
// Job Entity
// ---------------------------------------------------------------------------

// Job is the durable ledger row for one invoked background operation.
// A job is created when an orchestrator run starts and mutated only by that
// run; parallel batch workers report progress through atomic counter
// increments at the repository level, never read-modify-write.
type Job struct {
	ID          uuid.UUID
	Kind        JobKind
	Status      JobStatus
	Total       int
	Processed   int
	Successful  int
	Failed      int
	Metadata    map[string]string
	Error       string
	StartedAt   *time.Time
	CompletedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewJob creates a new pending job.
func NewJob(kind JobKind, total int, metadata map[string]string) (*Job, error) {
	if !kind.IsValid() {
		return nil, ErrJobInvalidKind
	}
	if total < 0 {
		return nil, ErrJobInvalidTotal
	}
	if metadata == nil {
		metadata = make(map[string]string)
	}
	now := time.Now()
	return &Job{
		ID:        uuid.New(),
		Kind:      kind,
		Status:    JobStatusPending,
		Total:     total,
		Metadata:  metadata,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Start marks the job as running.
func (j *Job) Start() error {
	if j.Status != JobStatusPending {
		return ErrJobTerminal
	}
	now := time.Now()
	j.Status = JobStatusRunning
	j.StartedAt = &now
	j.UpdatedAt = now
	return nil
}

// SetTotal records the total item count once it is known (e.g. after
// aggregation for a push run).
func (j *Job) SetTotal(total int) error {
	if j.Status.IsTerminal() {
		return ErrJobTerminal
	}
	if total < 0 {
		return ErrJobInvalidTotal
	}
	j.Total = total
	j.UpdatedAt = time.Now()
	return nil
}

// ApplyDelta merges a progress delta into the in-memory job. Persistence of
// concurrent deltas goes through JobRepository.IncrementCounters instead.
func (j *Job) ApplyDelta(d JobDelta) error {
	if j.Status.IsTerminal() {
		return ErrJobTerminal
	}
	j.Processed += d.Processed
	j.Successful += d.Successful
	j.Failed += d.Failed
	for k, v := range d.Metadata {
		j.Metadata[k] = v
	}
	j.UpdatedAt = time.Now()
	return nil
}

// Complete marks the job as successfully finished.
func (j *Job) Complete() error {
	return j.finish(JobStatusCompleted, "")
}

// Fail marks the job as failed with the captured error text.
func (j *Job) Fail(errText string) error {
	return j.finish(JobStatusFailed, errText)
}

// Cancel marks the job as cancelled.
func (j *Job) Cancel() error {
	return j.finish(JobStatusCancelled, "")
}

func (j *Job) finish(status JobStatus, errText string) error {
	if j.Status.IsTerminal() {
		return ErrJobTerminal
	}
	now := time.Now()
	j.Status = status
	j.Error = errText
	j.CompletedAt = &now
	j.UpdatedAt = now
	return nil
}

// Duration returns how long the job has been (or was) running.
func (j *Job) Duration() time.Duration {
	if j.StartedAt == nil {
		return 0
	}
	end := time.Now()
	if j.CompletedAt != nil {
		end = *j.CompletedAt
	}
	return end.Sub(*j.StartedAt)
}

// ---------------------------------------------------------------------------
// JobDelta
// ---------------------------------------------------------------------------

// JobDelta is a progress increment reported after a page or sub-batch.
type JobDelta struct {
	Processed  int
	Successful int
	Failed     int
	Metadata   map[string]string
}

// IsZero returns true if the delta carries no change.
func (d JobDelta) IsZero() bool {
	return d.Processed == 0 && d.Successful == 0 && d.Failed == 0 && len(d.Metadata) == 0
}

// ---------------------------------------------------------------------------
// JobRepository
// ---------------------------------------------------------------------------

// JobFilter defines filter criteria for listing jobs.
type JobFilter struct {
	Kind     *JobKind
	Status   *JobStatus
	Page     int
	PageSize int
}

// JobRepository persists job ledger rows.
type JobRepository interface {
	// Save creates a job row. Every later write goes through the targeted
	// methods below so counters written by parallel workers are never
	// clobbered by a stale in-memory snapshot.
	Save(ctx context.Context, job *Job) error

	// IncrementCounters applies a progress delta as atomic SQL increments,
	// merging metadata. Returns ErrJobNotFound if the job row is gone; the
	// ledger service treats that as a logged no-op.
	IncrementCounters(ctx context.Context, id uuid.UUID, delta JobDelta) error

	// SetTotal updates only the total column.
	SetTotal(ctx context.Context, id uuid.UUID, total int) error

	// Finalize updates only the terminal columns (status, error,
	// completed_at), leaving counters and metadata as the row holds them.
	Finalize(ctx context.Context, id uuid.UUID, status JobStatus, errText string, completedAt time.Time) error

	// FindByID returns a job by identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Job, error)

	// FindAll lists jobs matching the filter, newest first, with total count.
	FindAll(ctx context.Context, filter JobFilter) ([]Job, int64, error)
}
