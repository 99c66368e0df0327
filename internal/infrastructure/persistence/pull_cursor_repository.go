package persistence

import (
	"context"
	"errors"

	syncdomain "github.com/syncbridge/backend/internal/domain/sync"
	"github.com/syncbridge/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormPullCursorRepository implements PullCursorRepository using GORM
type GormPullCursorRepository struct {
	db *gorm.DB
}

var _ syncdomain.PullCursorRepository = (*GormPullCursorRepository)(nil)

// NewGormPullCursorRepository creates a new GormPullCursorRepository
func NewGormPullCursorRepository(db *gorm.DB) *GormPullCursorRepository {
	return &GormPullCursorRepository{db: db}
}

// FindByFingerprint finds a cursor by its filter fingerprint
func (r *GormPullCursorRepository) FindByFingerprint(ctx context.Context, fingerprint string) (*syncdomain.PullCursor, error) {
	var model models.PullCursorModel
	if err := r.db.WithContext(ctx).First(&model, "fingerprint = ?", fingerprint).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, syncdomain.ErrCursorNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save creates or updates a cursor row
func (r *GormPullCursorRepository) Save(ctx context.Context, cursor *syncdomain.PullCursor) error {
	model := models.PullCursorModelFromDomain(cursor)
	return r.db.WithContext(ctx).Save(model).Error
}

// Delete removes a cursor by fingerprint
func (r *GormPullCursorRepository) Delete(ctx context.Context, fingerprint string) error {
	result := r.db.WithContext(ctx).Delete(&models.PullCursorModel{}, "fingerprint = ?", fingerprint)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return syncdomain.ErrCursorNotFound
	}
	return nil
}

// DeleteByKind removes every cursor for a job kind
func (r *GormPullCursorRepository) DeleteByKind(ctx context.Context, kind syncdomain.JobKind) error {
	return r.db.WithContext(ctx).
		Delete(&models.PullCursorModel{}, "kind = ?", kind).Error
}

// FindAll lists stored cursors, most recently active first
func (r *GormPullCursorRepository) FindAll(ctx context.Context) ([]syncdomain.PullCursor, error) {
	var cursorModels []models.PullCursorModel
	if err := r.db.WithContext(ctx).
		Order("last_activity_at DESC").
		Find(&cursorModels).Error; err != nil {
		return nil, err
	}

	cursors := make([]syncdomain.PullCursor, len(cursorModels))
	for i, model := range cursorModels {
		cursors[i] = *model.ToDomain()
	}
	return cursors, nil
}
