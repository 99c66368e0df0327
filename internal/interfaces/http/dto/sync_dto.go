package dto

import (
	"time"

	syncdomain "github.com/syncbridge/backend/internal/domain/sync"
)

// StartPullRequest starts a bulk pull from the Source.
type StartPullRequest struct {
	Kind         string            `json:"kind" binding:"required,oneof=PULL_CUSTOMERS PULL_PRODUCTS"`
	Filters      map[string]string `json:"filters"`
	ForceRestart bool              `json:"force_restart"`
}

// StartPushRequest starts a bulk inventory push to the Target. An empty
// entity_ids list pushes every synced product mapping.
type StartPushRequest struct {
	EntityIDs []string `json:"entity_ids" binding:"omitempty,max=10000"`
}

// StartAutoMatchRequest starts a batch auto-match run.
type StartAutoMatchRequest struct {
	Kind string `json:"kind" binding:"required,oneof=PRODUCT CUSTOMER"`
}

// JobAcceptedResponse is the 202 body returned when a job is queued.
type JobAcceptedResponse struct {
	JobID  string `json:"job_id"`
	Kind   string `json:"kind"`
	Status string `json:"status"`
}

// NewJobAcceptedResponse converts a freshly created job.
func NewJobAcceptedResponse(job *syncdomain.Job) JobAcceptedResponse {
	return JobAcceptedResponse{
		JobID:  job.ID.String(),
		Kind:   string(job.Kind),
		Status: string(job.Status),
	}
}

// JobResponse represents a job ledger row.
type JobResponse struct {
	ID          string            `json:"id"`
	Kind        string            `json:"kind"`
	Status      string            `json:"status"`
	Total       int               `json:"total"`
	Processed   int               `json:"processed"`
	Successful  int               `json:"successful"`
	Failed      int               `json:"failed"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	Error       string            `json:"error,omitempty"`
	StartedAt   *time.Time        `json:"started_at,omitempty"`
	CompletedAt *time.Time        `json:"completed_at,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// NewJobResponse converts a domain job.
func NewJobResponse(job *syncdomain.Job) JobResponse {
	return JobResponse{
		ID:          job.ID.String(),
		Kind:        string(job.Kind),
		Status:      string(job.Status),
		Total:       job.Total,
		Processed:   job.Processed,
		Successful:  job.Successful,
		Failed:      job.Failed,
		Metadata:    job.Metadata,
		Error:       job.Error,
		StartedAt:   job.StartedAt,
		CompletedAt: job.CompletedAt,
		CreatedAt:   job.CreatedAt,
		UpdatedAt:   job.UpdatedAt,
	}
}

// NewJobListResponse converts a page of jobs.
func NewJobListResponse(jobs []syncdomain.Job) []JobResponse {
	out := make([]JobResponse, 0, len(jobs))
	for i := range jobs {
		out = append(out, NewJobResponse(&jobs[i]))
	}
	return out
}

// ListJobsRequest filters the job ledger.
type ListJobsRequest struct {
	Kind     string `form:"kind" binding:"omitempty,oneof=PULL_CUSTOMERS PULL_PRODUCTS PUSH_INVENTORY AUTO_MATCH"`
	Status   string `form:"status" binding:"omitempty,oneof=PENDING RUNNING COMPLETED FAILED CANCELLED"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// ToFilter converts the request to a domain job filter.
func (r ListJobsRequest) ToFilter() syncdomain.JobFilter {
	filter := syncdomain.JobFilter{
		Page:     r.Page,
		PageSize: r.PageSize,
	}
	if r.Kind != "" {
		kind := syncdomain.JobKind(r.Kind)
		filter.Kind = &kind
	}
	if r.Status != "" {
		status := syncdomain.JobStatus(r.Status)
		filter.Status = &status
	}
	return filter
}

// SyncLogResponse represents one audit row of a job.
type SyncLogResponse struct {
	ID          string    `json:"id"`
	JobID       string    `json:"job_id,omitempty"`
	Kind        string    `json:"kind"`
	SourceEvent string    `json:"source_event,omitempty"`
	EntityID    string    `json:"entity_id"`
	Outcome     string    `json:"outcome"`
	Error       string    `json:"error,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewSyncLogResponse converts a domain sync log entry.
func NewSyncLogResponse(entry *syncdomain.SyncLog) SyncLogResponse {
	resp := SyncLogResponse{
		ID:          entry.ID.String(),
		Kind:        string(entry.Kind),
		SourceEvent: entry.SourceEvent,
		EntityID:    entry.EntityID,
		Outcome:     string(entry.Outcome),
		Error:       entry.Error,
		CreatedAt:   entry.CreatedAt,
	}
	if entry.JobID != nil {
		resp.JobID = entry.JobID.String()
	}
	return resp
}

// NewSyncLogListResponse converts a batch of sync log entries.
func NewSyncLogListResponse(entries []syncdomain.SyncLog) []SyncLogResponse {
	out := make([]SyncLogResponse, 0, len(entries))
	for i := range entries {
		out = append(out, NewSyncLogResponse(&entries[i]))
	}
	return out
}

// CursorResponse represents a pull cursor checkpoint.
type CursorResponse struct {
	Fingerprint    string    `json:"fingerprint"`
	Kind           string    `json:"kind"`
	NextToken      string    `json:"next_token,omitempty"`
	TotalPulled    int       `json:"total_pulled"`
	Completed      bool      `json:"completed"`
	Filters        string    `json:"filters"`
	LastActivityAt time.Time `json:"last_activity_at"`
	CreatedAt      time.Time `json:"created_at"`
}

// NewCursorResponse converts a domain pull cursor.
func NewCursorResponse(cursor *syncdomain.PullCursor) CursorResponse {
	return CursorResponse{
		Fingerprint:    cursor.Fingerprint,
		Kind:           string(cursor.Kind),
		NextToken:      cursor.NextToken,
		TotalPulled:    cursor.TotalPulled,
		Completed:      cursor.Completed,
		Filters:        cursor.FiltersJSON,
		LastActivityAt: cursor.LastActivityAt,
		CreatedAt:      cursor.CreatedAt,
	}
}

// NewCursorListResponse converts a batch of cursors.
func NewCursorListResponse(cursors []syncdomain.PullCursor) []CursorResponse {
	out := make([]CursorResponse, 0, len(cursors))
	for i := range cursors {
		out = append(out, NewCursorResponse(&cursors[i]))
	}
	return out
}

// ResetCursorsRequest resets every cursor of a pull kind.
type ResetCursorsRequest struct {
	Kind string `form:"kind" binding:"required,oneof=PULL_CUSTOMERS PULL_PRODUCTS"`
}

// WebhookEventRequest is the decoded body of an inbound change notification.
// Signature verification happens upstream of this service.
type WebhookEventRequest struct {
	EntityID    string   `json:"entity_id" binding:"required"`
	SKU         string   `json:"sku"`
	Name        string   `json:"name"`
	Email       string   `json:"email"`
	Phone       string   `json:"phone"`
	Quantity    string   `json:"quantity"`
	Field       string   `json:"field"`
	Value       string   `json:"value"`
	WarehouseID string   `json:"warehouse_id"`
	Tags        []string `json:"tags"`
}

// WebhookOutcomeResponse reports how an inbound event was reconciled.
type WebhookOutcomeResponse struct {
	Outcome string `json:"outcome"`
}
