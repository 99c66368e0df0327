package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	syncdomain "github.com/syncbridge/backend/internal/domain/sync"
	"github.com/syncbridge/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormJobRepository implements JobRepository using GORM
type GormJobRepository struct {
	db *gorm.DB
}

var _ syncdomain.JobRepository = (*GormJobRepository)(nil)

// NewGormJobRepository creates a new GormJobRepository
func NewGormJobRepository(db *gorm.DB) *GormJobRepository {
	return &GormJobRepository{db: db}
}

// Save creates or updates a job row
func (r *GormJobRepository) Save(ctx context.Context, job *syncdomain.Job) error {
	model := models.JobModelFromDomain(job)
	return r.db.WithContext(ctx).Save(model).Error
}

// SetTotal updates only the total column, so counters already incremented on
// the row survive.
func (r *GormJobRepository) SetTotal(ctx context.Context, id uuid.UUID, total int) error {
	result := r.db.WithContext(ctx).
		Model(&models.JobModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"total":      total,
			"updated_at": gorm.Expr("NOW()"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return syncdomain.ErrJobNotFound
	}
	return nil
}

// Finalize writes the terminal columns and nothing else. Counters and
// metadata keep whatever IncrementCounters accumulated on the row.
func (r *GormJobRepository) Finalize(ctx context.Context, id uuid.UUID, status syncdomain.JobStatus, errText string, completedAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&models.JobModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":       status.String(),
			"error":        errText,
			"completed_at": completedAt,
			"updated_at":   gorm.Expr("NOW()"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return syncdomain.ErrJobNotFound
	}
	return nil
}

// IncrementCounters applies a progress delta as atomic SQL increments so
// parallel batch workers never lose updates to read-modify-write races.
// Metadata keys are merged into the existing JSONB document.
func (r *GormJobRepository) IncrementCounters(ctx context.Context, id uuid.UUID, delta syncdomain.JobDelta) error {
	if delta.IsZero() {
		return nil
	}

	updates := map[string]any{
		"updated_at": gorm.Expr("NOW()"),
	}
	if delta.Processed != 0 {
		updates["processed"] = gorm.Expr("processed + ?", delta.Processed)
	}
	if delta.Successful != 0 {
		updates["successful"] = gorm.Expr("successful + ?", delta.Successful)
	}
	if delta.Failed != 0 {
		updates["failed"] = gorm.Expr("failed + ?", delta.Failed)
	}
	if len(delta.Metadata) > 0 {
		patch, err := json.Marshal(delta.Metadata)
		if err != nil {
			return err
		}
		updates["metadata"] = gorm.Expr("COALESCE(metadata, '{}'::jsonb) || ?::jsonb", string(patch))
	}

	result := r.db.WithContext(ctx).
		Model(&models.JobModel{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return syncdomain.ErrJobNotFound
	}
	return nil
}

// FindByID finds a job by its ID
func (r *GormJobRepository) FindByID(ctx context.Context, id uuid.UUID) (*syncdomain.Job, error) {
	var model models.JobModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, syncdomain.ErrJobNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll lists jobs matching the filter, newest first, with a total count
func (r *GormJobRepository) FindAll(ctx context.Context, filter syncdomain.JobFilter) ([]syncdomain.Job, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.JobModel{})
	if filter.Kind != nil {
		query = query.Where("kind = ?", *filter.Kind)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
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
		pageSize = 20
	}

	var jobModels []models.JobModel
	if err := query.
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&jobModels).Error; err != nil {
		return nil, 0, err
	}

	jobs := make([]syncdomain.Job, len(jobModels))
	for i, model := range jobModels {
		jobs[i] = *model.ToDomain()
	}
	return jobs, total, nil
}
