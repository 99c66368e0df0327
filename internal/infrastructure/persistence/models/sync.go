package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	syncdomain "github.com/syncbridge/backend/internal/domain/sync"
)

// JobModel is the persistence model for the Job ledger entity.
type JobModel struct {
	ID           uuid.UUID            `gorm:"type:uuid;primary_key"`
	Kind         syncdomain.JobKind   `gorm:"type:varchar(20);not null;index:idx_sync_jobs_kind"`
	Status       syncdomain.JobStatus `gorm:"type:varchar(20);not null;index:idx_sync_jobs_status"`
	Total        int                  `gorm:"not null;default:0"`
	Processed    int                  `gorm:"not null;default:0"`
	Successful   int                  `gorm:"not null;default:0"`
	Failed       int                  `gorm:"not null;default:0"`
	MetadataJSON string               `gorm:"type:jsonb;column:metadata"`
	Error        string               `gorm:"type:text"`
	StartedAt    *time.Time
	CompletedAt  *time.Time
	CreatedAt    time.Time `gorm:"not null;index:idx_sync_jobs_created"`
	UpdatedAt    time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (JobModel) TableName() string {
	return "sync_jobs"
}

// ToDomain converts the persistence model to a domain Job entity.
func (m *JobModel) ToDomain() *syncdomain.Job {
	job := &syncdomain.Job{
		ID:          m.ID,
		Kind:        m.Kind,
		Status:      m.Status,
		Total:       m.Total,
		Processed:   m.Processed,
		Successful:  m.Successful,
		Failed:      m.Failed,
		Metadata:    make(map[string]string),
		Error:       m.Error,
		StartedAt:   m.StartedAt,
		CompletedAt: m.CompletedAt,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}

	if m.MetadataJSON != "" {
		var metadata map[string]string
		if err := json.Unmarshal([]byte(m.MetadataJSON), &metadata); err == nil {
			job.Metadata = metadata
		}
	}

	return job
}

// JobModelFromDomain builds a persistence model from a domain Job entity.
func JobModelFromDomain(job *syncdomain.Job) *JobModel {
	model := &JobModel{
		ID:          job.ID,
		Kind:        job.Kind,
		Status:      job.Status,
		Total:       job.Total,
		Processed:   job.Processed,
		Successful:  job.Successful,
		Failed:      job.Failed,
		Error:       job.Error,
		StartedAt:   job.StartedAt,
		CompletedAt: job.CompletedAt,
		CreatedAt:   job.CreatedAt,
		UpdatedAt:   job.UpdatedAt,
	}

	metadata := job.Metadata
	if metadata == nil {
		metadata = make(map[string]string)
	}
	if raw, err := json.Marshal(metadata); err == nil {
		model.MetadataJSON = string(raw)
	}

	return model
}

// PullCursorModel is the persistence model for the PullCursor entity.
// The filter fingerprint is the primary key; one checkpoint per filter set.
type PullCursorModel struct {
	Fingerprint    string             `gorm:"type:varchar(64);primary_key"`
	Kind           syncdomain.JobKind `gorm:"type:varchar(20);not null;index:idx_pull_cursors_kind"`
	NextToken      string             `gorm:"type:text"`
	TotalPulled    int                `gorm:"not null;default:0"`
	Completed      bool               `gorm:"not null;default:false"`
	LastActivityAt time.Time          `gorm:"not null;index:idx_pull_cursors_activity"`
	FiltersJSON    string             `gorm:"type:jsonb;column:filters"`
	CreatedAt      time.Time          `gorm:"not null"`
	UpdatedAt      time.Time          `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PullCursorModel) TableName() string {
	return "pull_cursors"
}

// ToDomain converts the persistence model to a domain PullCursor entity.
func (m *PullCursorModel) ToDomain() *syncdomain.PullCursor {
	return &syncdomain.PullCursor{
		Fingerprint:    m.Fingerprint,
		Kind:           m.Kind,
		NextToken:      m.NextToken,
		TotalPulled:    m.TotalPulled,
		Completed:      m.Completed,
		LastActivityAt: m.LastActivityAt,
		FiltersJSON:    m.FiltersJSON,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

// PullCursorModelFromDomain builds a persistence model from a domain PullCursor.
func PullCursorModelFromDomain(cursor *syncdomain.PullCursor) *PullCursorModel {
	return &PullCursorModel{
		Fingerprint:    cursor.Fingerprint,
		Kind:           cursor.Kind,
		NextToken:      cursor.NextToken,
		TotalPulled:    cursor.TotalPulled,
		Completed:      cursor.Completed,
		LastActivityAt: cursor.LastActivityAt,
		FiltersJSON:    cursor.FiltersJSON,
		CreatedAt:      cursor.CreatedAt,
		UpdatedAt:      cursor.UpdatedAt,
	}
}

// SyncLogModel is the persistence model for sync audit rows.
type SyncLogModel struct {
	ID          uuid.UUID              `gorm:"type:uuid;primary_key"`
	JobID       *uuid.UUID             `gorm:"type:uuid;index:idx_sync_logs_job"`
	Kind        syncdomain.MappingKind `gorm:"type:varchar(20);not null"`
	SourceEvent string                 `gorm:"type:varchar(50);not null"`
	EntityID    string                 `gorm:"type:varchar(100);not null;index:idx_sync_logs_entity"`
	Outcome     syncdomain.SyncOutcome `gorm:"type:varchar(20);not null"`
	Error       string                 `gorm:"type:text"`
	CreatedAt   time.Time              `gorm:"not null;index:idx_sync_logs_created"`
}

// TableName returns the table name for GORM
func (SyncLogModel) TableName() string {
	return "sync_logs"
}

// ToDomain converts the persistence model to a domain SyncLog.
func (m *SyncLogModel) ToDomain() *syncdomain.SyncLog {
	return &syncdomain.SyncLog{
		ID:          m.ID,
		JobID:       m.JobID,
		Kind:        m.Kind,
		SourceEvent: m.SourceEvent,
		EntityID:    m.EntityID,
		Outcome:     m.Outcome,
		Error:       m.Error,
		CreatedAt:   m.CreatedAt,
	}
}

// SyncLogModelFromDomain builds a persistence model from a domain SyncLog.
func SyncLogModelFromDomain(log *syncdomain.SyncLog) *SyncLogModel {
	return &SyncLogModel{
		ID:          log.ID,
		JobID:       log.JobID,
		Kind:        log.Kind,
		SourceEvent: log.SourceEvent,
		EntityID:    log.EntityID,
		Outcome:     log.Outcome,
		Error:       log.Error,
		CreatedAt:   log.CreatedAt,
	}
}

// WebhookLogModel is the persistence model for inbound event audit rows.
type WebhookLogModel struct {
	ID        uuid.UUID              `gorm:"type:uuid;primary_key"`
	EventKind string                 `gorm:"type:varchar(50);not null;index:idx_webhook_logs_kind"`
	Payload   string                 `gorm:"type:jsonb"`
	Outcome   syncdomain.SyncOutcome `gorm:"type:varchar(20);not null"`
	Error     string                 `gorm:"type:text"`
	CreatedAt time.Time              `gorm:"not null;index:idx_webhook_logs_created"`
}

// TableName returns the table name for GORM
func (WebhookLogModel) TableName() string {
	return "webhook_logs"
}

// ToDomain converts the persistence model to a domain WebhookLog.
func (m *WebhookLogModel) ToDomain() *syncdomain.WebhookLog {
	return &syncdomain.WebhookLog{
		ID:        m.ID,
		EventKind: m.EventKind,
		Payload:   m.Payload,
		Outcome:   m.Outcome,
		Error:     m.Error,
		CreatedAt: m.CreatedAt,
	}
}

// WebhookLogModelFromDomain builds a persistence model from a domain WebhookLog.
func WebhookLogModelFromDomain(log *syncdomain.WebhookLog) *WebhookLogModel {
	return &WebhookLogModel{
		ID:        log.ID,
		EventKind: log.EventKind,
		Payload:   log.Payload,
		Outcome:   log.Outcome,
		Error:     log.Error,
		CreatedAt: log.CreatedAt,
	}
}
