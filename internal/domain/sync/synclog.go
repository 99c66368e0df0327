package sync

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ---------------------------------------------------------------------------
// SyncOutcome
// ---------------------------------------------------------------------------

// SyncOutcome is the auditable result of one reconciliation attempt.
type SyncOutcome string

const (
	SyncOutcomeSynced          SyncOutcome = "SYNCED"
	SyncOutcomeSkipped         SyncOutcome = "SKIPPED"
	SyncOutcomePendingApproval SyncOutcome = "PENDING_APPROVAL"
	SyncOutcomeFailed          SyncOutcome = "FAILED"
	SyncOutcomeIgnored         SyncOutcome = "IGNORED"
)

// String returns the string representation of SyncOutcome.
func (o SyncOutcome) String() string {
	return string(o)
}

// ---------------------------------------------------------------------------
// Append-only audit rows
// ---------------------------------------------------------------------------

// SyncLog is one append-only audit row per sync attempt. Never updated after
// insert; retention and pruning are external concerns.
type SyncLog struct {
	ID          uuid.UUID
	JobID       *uuid.UUID
	Kind        MappingKind
	SourceEvent string
	EntityID    string
	Outcome     SyncOutcome
	Error       string
	CreatedAt   time.Time
}

// NewSyncLog creates an audit row for a sync attempt.
func NewSyncLog(jobID *uuid.UUID, kind MappingKind, sourceEvent, entityID string, outcome SyncOutcome, errText string) *SyncLog {
	return &SyncLog{
		ID:          uuid.New(),
		JobID:       jobID,
		Kind:        kind,
		SourceEvent: sourceEvent,
		EntityID:    entityID,
		Outcome:     outcome,
		Error:       errText,
		CreatedAt:   time.Now(),
	}
}

// WebhookLog is one append-only audit row per inbound event.
type WebhookLog struct {
	ID        uuid.UUID
	EventKind string
	Payload   string
	Outcome   SyncOutcome
	Error     string
	CreatedAt time.Time
}

// NewWebhookLog creates an audit row for an inbound event.
func NewWebhookLog(eventKind, payload string, outcome SyncOutcome, errText string) *WebhookLog {
	return &WebhookLog{
		ID:        uuid.New(),
		EventKind: eventKind,
		Payload:   payload,
		Outcome:   outcome,
		Error:     errText,
		CreatedAt: time.Now(),
	}
}

// ---------------------------------------------------------------------------
// SyncLogRepository
// ---------------------------------------------------------------------------

// SyncLogRepository appends audit rows. Failures here are observability
// failures: callers log and continue, they never abort a run over a lost
// audit row.
type SyncLogRepository interface {
	// Append inserts a sync audit row.
	Append(ctx context.Context, log *SyncLog) error

	// AppendWebhook inserts a webhook audit row.
	AppendWebhook(ctx context.Context, log *WebhookLog) error

	// FindByJob lists audit rows for a job, oldest first.
	FindByJob(ctx context.Context, jobID uuid.UUID, limit int) ([]SyncLog, error)
}
