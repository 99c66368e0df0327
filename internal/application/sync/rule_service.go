package sync

import (
	"context"

	"github.com/google/uuid"

	"github.com/syncbridge/backend/internal/domain/rules"
)

// RuleService is the operator surface over gating rules.
type RuleService struct {
	rules rules.RuleRepository
}

// NewRuleService creates a RuleService.
func NewRuleService(ruleRepo rules.RuleRepository) *RuleService {
	return &RuleService{rules: ruleRepo}
}

// ListRules lists every rule, priority descending.
func (s *RuleService) ListRules(ctx context.Context) ([]rules.Rule, error) {
	return s.rules.FindAll(ctx)
}

// GetRule returns a rule by identifier.
func (s *RuleService) GetRule(ctx context.Context, id uuid.UUID) (*rules.Rule, error) {
	return s.rules.FindByID(ctx, id)
}

// CreateRule validates and persists a new rule.
func (s *RuleService) CreateRule(ctx context.Context, name string, kind rules.TargetKind, priority int, combinator rules.Combinator, conditions []rules.Condition, actions []rules.Action) (*rules.Rule, error) {
	rule, err := rules.NewRule(name, kind, priority, combinator, conditions, actions)
	if err != nil {
		return nil, err
	}
	if err := s.rules.Save(ctx, rule); err != nil {
		return nil, err
	}
	return rule, nil
}

// UpdateRule replaces a rule's definition in place.
func (s *RuleService) UpdateRule(ctx context.Context, id uuid.UUID, name string, kind rules.TargetKind, priority int, combinator rules.Combinator, conditions []rules.Condition, actions []rules.Action, active bool) (*rules.Rule, error) {
	existing, err := s.rules.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	updated, err := rules.NewRule(name, kind, priority, combinator, conditions, actions)
	if err != nil {
		return nil, err
	}
	updated.ID = existing.ID
	updated.CreatedAt = existing.CreatedAt
	updated.Active = active
	if err := s.rules.Save(ctx, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteRule removes a rule.
func (s *RuleService) DeleteRule(ctx context.Context, id uuid.UUID) error {
	return s.rules.Delete(ctx, id)
}
