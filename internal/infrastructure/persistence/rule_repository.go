package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/syncbridge/backend/internal/domain/rules"
	"github.com/syncbridge/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormRuleRepository implements RuleRepository using GORM
type GormRuleRepository struct {
	db *gorm.DB
}

var _ rules.RuleRepository = (*GormRuleRepository)(nil)

// NewGormRuleRepository creates a new GormRuleRepository
func NewGormRuleRepository(db *gorm.DB) *GormRuleRepository {
	return &GormRuleRepository{db: db}
}

// FindByID finds a rule by its ID
func (r *GormRuleRepository) FindByID(ctx context.Context, id uuid.UUID) (*rules.Rule, error) {
	var model models.RuleModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, rules.ErrRuleNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindActive lists active rules applicable to the kind, highest priority first.
// Rules targeting ALL always apply.
func (r *GormRuleRepository) FindActive(ctx context.Context, kind rules.TargetKind) ([]rules.Rule, error) {
	var ruleModels []models.RuleModel
	if err := r.db.WithContext(ctx).
		Where("active = ? AND target_kind IN ?", true, []rules.TargetKind{kind, rules.TargetKindAll}).
		Order("priority DESC").
		Find(&ruleModels).Error; err != nil {
		return nil, err
	}
	return toDomainRules(ruleModels), nil
}

// FindAll lists every rule, highest priority first
func (r *GormRuleRepository) FindAll(ctx context.Context) ([]rules.Rule, error) {
	var ruleModels []models.RuleModel
	if err := r.db.WithContext(ctx).
		Order("priority DESC").
		Find(&ruleModels).Error; err != nil {
		return nil, err
	}
	return toDomainRules(ruleModels), nil
}

// Save creates or updates a rule
func (r *GormRuleRepository) Save(ctx context.Context, rule *rules.Rule) error {
	model := models.RuleModelFromDomain(rule)
	return r.db.WithContext(ctx).Save(model).Error
}

// Delete removes a rule
func (r *GormRuleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.RuleModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return rules.ErrRuleNotFound
	}
	return nil
}

func toDomainRules(ruleModels []models.RuleModel) []rules.Rule {
	result := make([]rules.Rule, len(ruleModels))
	for i, model := range ruleModels {
		result[i] = *model.ToDomain()
	}
	return result
}
