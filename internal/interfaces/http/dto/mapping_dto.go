package dto

import (
	"time"

	syncdomain "github.com/syncbridge/backend/internal/domain/sync"
)

// ListMappingsRequest filters the entity mapping table.
type ListMappingsRequest struct {
	Kind     string `form:"kind" binding:"omitempty,oneof=PRODUCT CUSTOMER"`
	Status   string `form:"status" binding:"omitempty,oneof=UNMAPPED PENDING PENDING_APPROVAL SYNCED FAILED"`
	Search   string `form:"search"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=200"`
}

// ToFilter converts the request to a domain mapping filter.
func (r ListMappingsRequest) ToFilter() syncdomain.MappingFilter {
	filter := syncdomain.MappingFilter{
		Search:   r.Search,
		Page:     r.Page,
		PageSize: r.PageSize,
	}
	if r.Kind != "" {
		kind := syncdomain.MappingKind(r.Kind)
		filter.Kind = &kind
	}
	if r.Status != "" {
		status := syncdomain.MappingStatus(r.Status)
		filter.Status = &status
	}
	return filter
}

// MapEntityRequest manually links a source entity to a target counterpart.
type MapEntityRequest struct {
	Kind       string `json:"kind" binding:"required,oneof=PRODUCT CUSTOMER"`
	SourceID   string `json:"source_id" binding:"required"`
	TargetID   string `json:"target_id" binding:"required"`
	TargetName string `json:"target_name"`
}

// MappingResponse represents one reconciliation link.
type MappingResponse struct {
	ID             string     `json:"id"`
	Kind           string     `json:"kind"`
	SourceID       string     `json:"source_id"`
	TargetID       string     `json:"target_id,omitempty"`
	SourceSKU      string     `json:"source_sku,omitempty"`
	SourceName     string     `json:"source_name,omitempty"`
	SourceEmail    string     `json:"source_email,omitempty"`
	TargetName     string     `json:"target_name,omitempty"`
	Status         string     `json:"status"`
	ApprovalReason string     `json:"approval_reason,omitempty"`
	LastSyncedAt   *time.Time `json:"last_synced_at,omitempty"`
	LastError      string     `json:"last_error,omitempty"`
	Attempts       int        `json:"attempts"`
	Tags           []string   `json:"tags,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// NewMappingResponse converts a domain entity mapping.
func NewMappingResponse(m *syncdomain.EntityMapping) MappingResponse {
	return MappingResponse{
		ID:             m.ID.String(),
		Kind:           string(m.Kind),
		SourceID:       m.SourceID,
		TargetID:       m.TargetID,
		SourceSKU:      m.SourceSKU,
		SourceName:     m.SourceName,
		SourceEmail:    m.SourceEmail,
		TargetName:     m.TargetName,
		Status:         string(m.Status),
		ApprovalReason: m.ApprovalReason,
		LastSyncedAt:   m.LastSyncedAt,
		LastError:      m.LastError,
		Attempts:       m.Attempts,
		Tags:           m.Tags,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

// NewMappingListResponse converts a page of entity mappings.
func NewMappingListResponse(mappings []syncdomain.EntityMapping) []MappingResponse {
	out := make([]MappingResponse, 0, len(mappings))
	for i := range mappings {
		out = append(out, NewMappingResponse(&mappings[i]))
	}
	return out
}

// MappingStatsRequest selects the mapping kind to aggregate.
type MappingStatsRequest struct {
	Kind string `form:"kind" binding:"required,oneof=PRODUCT CUSTOMER"`
}

// MappingStatsResponse aggregates mapping counts by status.
type MappingStatsResponse struct {
	Kind     string           `json:"kind"`
	Total    int64            `json:"total"`
	ByStatus map[string]int64 `json:"by_status"`
}

// SaveLocationMappingRequest creates or replaces a warehouse-to-location edge.
type SaveLocationMappingRequest struct {
	WarehouseID   string `json:"warehouse_id" binding:"required"`
	WarehouseName string `json:"warehouse_name"`
	LocationID    string `json:"location_id" binding:"required"`
	LocationName  string `json:"location_name"`
}

// LocationMappingResponse represents a warehouse-to-location edge.
type LocationMappingResponse struct {
	ID            string    `json:"id"`
	WarehouseID   string    `json:"warehouse_id"`
	WarehouseName string    `json:"warehouse_name,omitempty"`
	LocationID    string    `json:"location_id"`
	LocationName  string    `json:"location_name,omitempty"`
	Active        bool      `json:"active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// NewLocationMappingResponse converts a domain location mapping.
func NewLocationMappingResponse(m *syncdomain.LocationMapping) LocationMappingResponse {
	return LocationMappingResponse{
		ID:            m.ID.String(),
		WarehouseID:   m.WarehouseID,
		WarehouseName: m.WarehouseName,
		LocationID:    m.LocationID,
		LocationName:  m.LocationName,
		Active:        m.Active,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

// NewLocationMappingListResponse converts a batch of location mappings.
func NewLocationMappingListResponse(mappings []syncdomain.LocationMapping) []LocationMappingResponse {
	out := make([]LocationMappingResponse, 0, len(mappings))
	for i := range mappings {
		out = append(out, NewLocationMappingResponse(&mappings[i]))
	}
	return out
}
