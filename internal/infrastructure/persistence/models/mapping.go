package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	syncdomain "github.com/syncbridge/backend/internal/domain/sync"
)

// EntityMappingModel is the persistence model for the EntityMapping entity.
type EntityMappingModel struct {
	ID             uuid.UUID                `gorm:"type:uuid;primary_key"`
	Kind           syncdomain.MappingKind   `gorm:"type:varchar(20);not null;uniqueIndex:uq_entity_mappings_source,priority:1;index:idx_entity_mappings_kind_status,priority:1"`
	SourceID       string                   `gorm:"type:varchar(100);not null;uniqueIndex:uq_entity_mappings_source,priority:2"`
	TargetID       string                   `gorm:"type:varchar(100);index:idx_entity_mappings_target"`
	SourceSKU      string                   `gorm:"type:varchar(100);index:idx_entity_mappings_sku"`
	SourceName     string                   `gorm:"type:varchar(255)"`
	SourceEmail    string                   `gorm:"type:varchar(255);index:idx_entity_mappings_email"`
	TargetName     string                   `gorm:"type:varchar(255)"`
	Status         syncdomain.MappingStatus `gorm:"type:varchar(20);not null;index:idx_entity_mappings_kind_status,priority:2"`
	ApprovalReason string                   `gorm:"type:text"`
	LastSyncedAt   *time.Time
	LastError      string    `gorm:"type:text"`
	Attempts       int       `gorm:"not null;default:0"`
	TagsJSON       string    `gorm:"type:jsonb;column:tags"`
	CreatedAt      time.Time `gorm:"not null"`
	UpdatedAt      time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (EntityMappingModel) TableName() string {
	return "entity_mappings"
}

// ToDomain converts the persistence model to a domain EntityMapping entity.
func (m *EntityMappingModel) ToDomain() *syncdomain.EntityMapping {
	mapping := &syncdomain.EntityMapping{
		ID:             m.ID,
		Kind:           m.Kind,
		SourceID:       m.SourceID,
		TargetID:       m.TargetID,
		SourceSKU:      m.SourceSKU,
		SourceName:     m.SourceName,
		SourceEmail:    m.SourceEmail,
		TargetName:     m.TargetName,
		Status:         m.Status,
		ApprovalReason: m.ApprovalReason,
		LastSyncedAt:   m.LastSyncedAt,
		LastError:      m.LastError,
		Attempts:       m.Attempts,
		Tags:           make([]string, 0),
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}

	if m.TagsJSON != "" {
		var tags []string
		if err := json.Unmarshal([]byte(m.TagsJSON), &tags); err == nil {
			mapping.Tags = tags
		}
	}

	return mapping
}

// EntityMappingModelFromDomain builds a persistence model from a domain EntityMapping.
func EntityMappingModelFromDomain(mapping *syncdomain.EntityMapping) *EntityMappingModel {
	model := &EntityMappingModel{
		ID:             mapping.ID,
		Kind:           mapping.Kind,
		SourceID:       mapping.SourceID,
		TargetID:       mapping.TargetID,
		SourceSKU:      mapping.SourceSKU,
		SourceName:     mapping.SourceName,
		SourceEmail:    mapping.SourceEmail,
		TargetName:     mapping.TargetName,
		Status:         mapping.Status,
		ApprovalReason: mapping.ApprovalReason,
		LastSyncedAt:   mapping.LastSyncedAt,
		LastError:      mapping.LastError,
		Attempts:       mapping.Attempts,
		CreatedAt:      mapping.CreatedAt,
		UpdatedAt:      mapping.UpdatedAt,
	}

	tags := mapping.Tags
	if tags == nil {
		tags = make([]string, 0)
	}
	if raw, err := json.Marshal(tags); err == nil {
		model.TagsJSON = string(raw)
	}

	return model
}

// LocationMappingModel is the persistence model for warehouse-to-location edges.
type LocationMappingModel struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key"`
	WarehouseID   string    `gorm:"type:varchar(100);not null;uniqueIndex:uq_location_mappings_warehouse"`
	WarehouseName string    `gorm:"type:varchar(255)"`
	LocationID    string    `gorm:"type:varchar(100);not null;index:idx_location_mappings_location"`
	LocationName  string    `gorm:"type:varchar(255)"`
	Active        bool      `gorm:"not null;default:true"`
	CreatedAt     time.Time `gorm:"not null"`
	UpdatedAt     time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (LocationMappingModel) TableName() string {
	return "location_mappings"
}

// ToDomain converts the persistence model to a domain LocationMapping entity.
func (m *LocationMappingModel) ToDomain() *syncdomain.LocationMapping {
	return &syncdomain.LocationMapping{
		ID:            m.ID,
		WarehouseID:   m.WarehouseID,
		WarehouseName: m.WarehouseName,
		LocationID:    m.LocationID,
		LocationName:  m.LocationName,
		Active:        m.Active,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

// LocationMappingModelFromDomain builds a persistence model from a domain LocationMapping.
func LocationMappingModelFromDomain(mapping *syncdomain.LocationMapping) *LocationMappingModel {
	return &LocationMappingModel{
		ID:            mapping.ID,
		WarehouseID:   mapping.WarehouseID,
		WarehouseName: mapping.WarehouseName,
		LocationID:    mapping.LocationID,
		LocationName:  mapping.LocationName,
		Active:        mapping.Active,
		CreatedAt:     mapping.CreatedAt,
		UpdatedAt:     mapping.UpdatedAt,
	}
}
