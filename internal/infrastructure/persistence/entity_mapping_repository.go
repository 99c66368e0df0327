package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	syncdomain "github.com/syncbridge/backend/internal/domain/sync"
	"github.com/syncbridge/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormEntityMappingRepository implements EntityMappingRepository using GORM
type GormEntityMappingRepository struct {
	db *gorm.DB
}

var _ syncdomain.EntityMappingRepository = (*GormEntityMappingRepository)(nil)

// NewGormEntityMappingRepository creates a new GormEntityMappingRepository
func NewGormEntityMappingRepository(db *gorm.DB) *GormEntityMappingRepository {
	return &GormEntityMappingRepository{db: db}
}

// FindByID finds a mapping by its ID
func (r *GormEntityMappingRepository) FindByID(ctx context.Context, id uuid.UUID) (*syncdomain.EntityMapping, error) {
	var model models.EntityMappingModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, syncdomain.ErrMappingNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindBySourceID finds the mapping for a source entity
func (r *GormEntityMappingRepository) FindBySourceID(ctx context.Context, kind syncdomain.MappingKind, sourceID string) (*syncdomain.EntityMapping, error) {
	var model models.EntityMappingModel
	if err := r.db.WithContext(ctx).
		Where("kind = ? AND source_id = ?", kind, sourceID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, syncdomain.ErrMappingNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindBySourceIDs finds mappings for many source entities, keyed by source ID
func (r *GormEntityMappingRepository) FindBySourceIDs(ctx context.Context, kind syncdomain.MappingKind, sourceIDs []string) (map[string]*syncdomain.EntityMapping, error) {
	result := make(map[string]*syncdomain.EntityMapping, len(sourceIDs))
	if len(sourceIDs) == 0 {
		return result, nil
	}

	var mappingModels []models.EntityMappingModel
	if err := r.db.WithContext(ctx).
		Where("kind = ? AND source_id IN ?", kind, sourceIDs).
		Find(&mappingModels).Error; err != nil {
		return nil, err
	}

	for i := range mappingModels {
		mapping := mappingModels[i].ToDomain()
		result[mapping.SourceID] = mapping
	}
	return result, nil
}

// FindAll lists mappings matching the filter with a total count
func (r *GormEntityMappingRepository) FindAll(ctx context.Context, filter syncdomain.MappingFilter) ([]syncdomain.EntityMapping, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.EntityMappingModel{})
	if filter.Kind != nil {
		query = query.Where("kind = ?", *filter.Kind)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where(
			"LOWER(source_sku) LIKE ? OR LOWER(source_name) LIKE ? OR LOWER(source_email) LIKE ?",
			pattern, pattern, pattern,
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = 50
	}

	var mappingModels []models.EntityMappingModel
	if err := query.
		Order("updated_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&mappingModels).Error; err != nil {
		return nil, 0, err
	}

	mappings := make([]syncdomain.EntityMapping, len(mappingModels))
	for i, model := range mappingModels {
		mappings[i] = *model.ToDomain()
	}
	return mappings, total, nil
}

// CountByStatus returns mapping counts grouped by status for a kind
func (r *GormEntityMappingRepository) CountByStatus(ctx context.Context, kind syncdomain.MappingKind) (map[syncdomain.MappingStatus]int64, error) {
	type statusCount struct {
		Status syncdomain.MappingStatus
		Count  int64
	}

	var rows []statusCount
	if err := r.db.WithContext(ctx).
		Model(&models.EntityMappingModel{}).
		Select("status, COUNT(*) as count").
		Where("kind = ?", kind).
		Group("status").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[syncdomain.MappingStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// Save creates or updates a mapping
func (r *GormEntityMappingRepository) Save(ctx context.Context, mapping *syncdomain.EntityMapping) error {
	model := models.EntityMappingModelFromDomain(mapping)
	return r.db.WithContext(ctx).Save(model).Error
}

// SaveBatch creates or updates multiple mappings
func (r *GormEntityMappingRepository) SaveBatch(ctx context.Context, mappings []*syncdomain.EntityMapping) error {
	if len(mappings) == 0 {
		return nil
	}

	mappingModels := make([]*models.EntityMappingModel, len(mappings))
	for i, m := range mappings {
		mappingModels[i] = models.EntityMappingModelFromDomain(m)
	}

	return r.db.WithContext(ctx).Save(mappingModels).Error
}

// Delete removes a mapping
func (r *GormEntityMappingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.EntityMappingModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return syncdomain.ErrMappingNotFound
	}
	return nil
}
