package persistence

import (
	"context"

	"github.com/google/uuid"
	syncdomain "github.com/syncbridge/backend/internal/domain/sync"
	"github.com/syncbridge/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormSyncLogRepository implements SyncLogRepository using GORM
type GormSyncLogRepository struct {
	db *gorm.DB
}

var _ syncdomain.SyncLogRepository = (*GormSyncLogRepository)(nil)

// NewGormSyncLogRepository creates a new GormSyncLogRepository
func NewGormSyncLogRepository(db *gorm.DB) *GormSyncLogRepository {
	return &GormSyncLogRepository{db: db}
}

// Append inserts a sync audit row
func (r *GormSyncLogRepository) Append(ctx context.Context, log *syncdomain.SyncLog) error {
	model := models.SyncLogModelFromDomain(log)
	return r.db.WithContext(ctx).Create(model).Error
}

// AppendWebhook inserts a webhook audit row
func (r *GormSyncLogRepository) AppendWebhook(ctx context.Context, log *syncdomain.WebhookLog) error {
	model := models.WebhookLogModelFromDomain(log)
	return r.db.WithContext(ctx).Create(model).Error
}

// FindByJob lists audit rows for a job, oldest first
func (r *GormSyncLogRepository) FindByJob(ctx context.Context, jobID uuid.UUID, limit int) ([]syncdomain.SyncLog, error) {
	if limit < 1 {
		limit = 100
	}

	var logModels []models.SyncLogModel
	if err := r.db.WithContext(ctx).
		Where("job_id = ?", jobID).
		Order("created_at ASC").
		Limit(limit).
		Find(&logModels).Error; err != nil {
		return nil, err
	}

	logs := make([]syncdomain.SyncLog, len(logModels))
	for i, model := range logModels {
		logs[i] = *model.ToDomain()
	}
	return logs, nil
}
