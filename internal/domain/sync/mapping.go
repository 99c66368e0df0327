package sync

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ---------------------------------------------------------------------------
// MappingKind
// ---------------------------------------------------------------------------

// MappingKind identifies which entity type a mapping reconciles.
type MappingKind string

const (
	MappingKindProduct  MappingKind = "PRODUCT"
	MappingKindCustomer MappingKind = "CUSTOMER"
)

// IsValid returns true if the mapping kind is valid.
func (k MappingKind) IsValid() bool {
	return k == MappingKindProduct || k == MappingKindCustomer
}

// String returns the string representation of MappingKind.
func (k MappingKind) String() string {
	return string(k)
}

// ---------------------------------------------------------------------------
// MappingStatus
// ---------------------------------------------------------------------------

// MappingStatus represents the reconciliation state of an entity mapping.
type MappingStatus string

const (
	MappingStatusUnmapped        MappingStatus = "UNMAPPED"
	MappingStatusPending         MappingStatus = "PENDING"
	MappingStatusPendingApproval MappingStatus = "PENDING_APPROVAL"
	MappingStatusSynced          MappingStatus = "SYNCED"
	MappingStatusFailed          MappingStatus = "FAILED"
)

// IsValid returns true if the status is valid.
func (s MappingStatus) IsValid() bool {
	switch s {
	case MappingStatusUnmapped, MappingStatusPending, MappingStatusPendingApproval,
		MappingStatusSynced, MappingStatusFailed:
		return true
	default:
		return false
	}
}

// String returns the string representation of MappingStatus.
func (s MappingStatus) String() string {
	return string(s)
}

// ---------------------------------------------------------------------------
// EntityMapping Entity
// ---------------------------------------------------------------------------

// EntityMapping is the reconciliation link between a Source entity and its
// Target counterpart. Created on first successful match (manual or
// automatic), mutated by every sync attempt, and deleted only by explicit
// operator unmap.
type EntityMapping struct {
	ID       uuid.UUID
	Kind     MappingKind
	SourceID string
	TargetID string

	// Cached denormalized fields for display.
	SourceSKU   string
	SourceName  string
	SourceEmail string
	TargetName  string

	Status         MappingStatus
	ApprovalReason string
	LastSyncedAt   *time.Time
	LastError      string
	Attempts       int
	Tags           []string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewEntityMapping creates an unmapped entry for a source entity.
func NewEntityMapping(kind MappingKind, sourceID string) (*EntityMapping, error) {
	if !kind.IsValid() {
		return nil, ErrMappingInvalidKind
	}
	if sourceID == "" {
		return nil, ErrMappingInvalidSource
	}
	now := time.Now()
	return &EntityMapping{
		ID:        uuid.New(),
		Kind:      kind,
		SourceID:  sourceID,
		Status:    MappingStatusUnmapped,
		Tags:      make([]string, 0),
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Link attaches the target counterpart, moving the mapping to PENDING.
func (m *EntityMapping) Link(targetID, targetName string) error {
	if targetID == "" {
		return ErrMappingNotLinked
	}
	if m.TargetID != "" && m.TargetID != targetID {
		return ErrMappingAlreadyLinked
	}
	m.TargetID = targetID
	m.TargetName = targetName
	if m.Status == MappingStatusUnmapped {
		m.Status = MappingStatusPending
	}
	m.UpdatedAt = time.Now()
	return nil
}

// Unlink detaches the target counterpart. Operator unmap path.
func (m *EntityMapping) Unlink() {
	m.TargetID = ""
	m.TargetName = ""
	m.Status = MappingStatusUnmapped
	m.ApprovalReason = ""
	m.LastError = ""
	m.UpdatedAt = time.Now()
}

// IsLinked returns true if the mapping has a target counterpart.
func (m *EntityMapping) IsLinked() bool {
	return m.TargetID != ""
}

// RecordSyncSuccess records a successful sync attempt.
func (m *EntityMapping) RecordSyncSuccess() {
	now := time.Now()
	m.Status = MappingStatusSynced
	m.ApprovalReason = ""
	m.LastError = ""
	m.LastSyncedAt = &now
	m.Attempts++
	m.UpdatedAt = now
}

// RecordSyncFailure records a failed sync attempt.
func (m *EntityMapping) RecordSyncFailure(errMsg string) {
	now := time.Now()
	m.Status = MappingStatusFailed
	m.LastError = errMsg
	m.LastSyncedAt = &now
	m.Attempts++
	m.UpdatedAt = now
}

// MarkSkippedSynced marks the entity SYNCED without contacting the Target.
// Used when a rule decides the sync should be skipped; counted as processed,
// not as failed.
func (m *EntityMapping) MarkSkippedSynced() {
	now := time.Now()
	m.Status = MappingStatusSynced
	m.LastError = ""
	m.LastSyncedAt = &now
	m.UpdatedAt = now
}

// HoldForApproval parks the mapping until an operator approves it. Held
// entities are excluded from push phases entirely.
func (m *EntityMapping) HoldForApproval(reason string) {
	m.Status = MappingStatusPendingApproval
	m.ApprovalReason = reason
	m.UpdatedAt = time.Now()
}

// Approve releases a held mapping back to PENDING.
func (m *EntityMapping) Approve() {
	if m.Status != MappingStatusPendingApproval {
		return
	}
	m.Status = MappingStatusPending
	m.ApprovalReason = ""
	m.UpdatedAt = time.Now()
}

// AddTag appends a tag if not already present.
func (m *EntityMapping) AddTag(tag string) {
	if tag == "" {
		return
	}
	for _, t := range m.Tags {
		if t == tag {
			return
		}
	}
	m.Tags = append(m.Tags, tag)
	m.UpdatedAt = time.Now()
}

// RemoveTag removes a tag if present.
func (m *EntityMapping) RemoveTag(tag string) {
	for i, t := range m.Tags {
		if t == tag {
			m.Tags = append(m.Tags[:i], m.Tags[i+1:]...)
			m.UpdatedAt = time.Now()
			return
		}
	}
}

// ---------------------------------------------------------------------------
// EntityMappingRepository
// ---------------------------------------------------------------------------

// MappingFilter defines filter criteria for listing entity mappings.
type MappingFilter struct {
	Kind     *MappingKind
	Status   *MappingStatus
	Search   string
	Page     int
	PageSize int
}

// EntityMappingRepository persists reconciliation links.
type EntityMappingRepository interface {
	// FindByID returns a mapping by identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*EntityMapping, error)

	// FindBySourceID returns the mapping for a source entity, or
	// ErrMappingNotFound.
	FindBySourceID(ctx context.Context, kind MappingKind, sourceID string) (*EntityMapping, error)

	// FindBySourceIDs returns mappings for many source entities, keyed by
	// source ID. Missing entities are simply absent from the result.
	FindBySourceIDs(ctx context.Context, kind MappingKind, sourceIDs []string) (map[string]*EntityMapping, error)

	// FindAll lists mappings matching the filter with total count.
	FindAll(ctx context.Context, filter MappingFilter) ([]EntityMapping, int64, error)

	// CountByStatus returns mapping counts grouped by status for a kind.
	CountByStatus(ctx context.Context, kind MappingKind) (map[MappingStatus]int64, error)

	// Save creates or updates a mapping.
	Save(ctx context.Context, mapping *EntityMapping) error

	// SaveBatch creates or updates multiple mappings.
	SaveBatch(ctx context.Context, mappings []*EntityMapping) error

	// Delete removes a mapping. Operator unmap only.
	Delete(ctx context.Context, id uuid.UUID) error
}
