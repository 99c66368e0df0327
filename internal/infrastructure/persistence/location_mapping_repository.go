package persistence

import (
	"context"

	"github.com/google/uuid"
	syncdomain "github.com/syncbridge/backend/internal/domain/sync"
	"github.com/syncbridge/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormLocationMappingRepository implements LocationMappingRepository using GORM
type GormLocationMappingRepository struct {
	db *gorm.DB
}

var _ syncdomain.LocationMappingRepository = (*GormLocationMappingRepository)(nil)

// NewGormLocationMappingRepository creates a new GormLocationMappingRepository
func NewGormLocationMappingRepository(db *gorm.DB) *GormLocationMappingRepository {
	return &GormLocationMappingRepository{db: db}
}

// FindAll lists every mapping edge
func (r *GormLocationMappingRepository) FindAll(ctx context.Context) ([]syncdomain.LocationMapping, error) {
	return r.findWhere(ctx, r.db.WithContext(ctx))
}

// FindActive lists active mapping edges only
func (r *GormLocationMappingRepository) FindActive(ctx context.Context) ([]syncdomain.LocationMapping, error) {
	return r.findWhere(ctx, r.db.WithContext(ctx).Where("active = ?", true))
}

func (r *GormLocationMappingRepository) findWhere(_ context.Context, query *gorm.DB) ([]syncdomain.LocationMapping, error) {
	var mappingModels []models.LocationMappingModel
	if err := query.Order("warehouse_id ASC").Find(&mappingModels).Error; err != nil {
		return nil, err
	}

	mappings := make([]syncdomain.LocationMapping, len(mappingModels))
	for i, model := range mappingModels {
		mappings[i] = *model.ToDomain()
	}
	return mappings, nil
}

// Save creates or updates an edge
func (r *GormLocationMappingRepository) Save(ctx context.Context, mapping *syncdomain.LocationMapping) error {
	model := models.LocationMappingModelFromDomain(mapping)
	return r.db.WithContext(ctx).Save(model).Error
}

// Delete removes an edge
func (r *GormLocationMappingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.LocationMappingModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return syncdomain.ErrLocationNotFound
	}
	return nil
}
