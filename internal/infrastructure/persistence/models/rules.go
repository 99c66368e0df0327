package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/syncbridge/backend/internal/domain/rules"
)

// RuleModel is the persistence model for the Rule entity. Conditions and
// actions are stored as JSONB documents.
type RuleModel struct {
	ID             uuid.UUID        `gorm:"type:uuid;primary_key"`
	Name           string           `gorm:"type:varchar(100);not null"`
	TargetKind     rules.TargetKind `gorm:"type:varchar(20);not null;index:idx_sync_rules_kind"`
	Priority       int              `gorm:"not null;default:0;index:idx_sync_rules_priority"`
	Combinator     rules.Combinator `gorm:"type:varchar(5);not null;default:'AND'"`
	ConditionsJSON string           `gorm:"type:jsonb;column:conditions"`
	ActionsJSON    string           `gorm:"type:jsonb;column:actions"`
	Active         bool             `gorm:"not null;default:true;index:idx_sync_rules_active"`
	CreatedAt      time.Time        `gorm:"not null"`
	UpdatedAt      time.Time        `gorm:"not null"`
}

// TableName returns the table name for GORM
func (RuleModel) TableName() string {
	return "sync_rules"
}

// ToDomain converts the persistence model to a domain Rule entity.
func (m *RuleModel) ToDomain() *rules.Rule {
	rule := &rules.Rule{
		ID:         m.ID,
		Name:       m.Name,
		TargetKind: m.TargetKind,
		Priority:   m.Priority,
		Combinator: m.Combinator,
		Conditions: make([]rules.Condition, 0),
		Actions:    make([]rules.Action, 0),
		Active:     m.Active,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}

	if m.ConditionsJSON != "" {
		var conditions []rules.Condition
		if err := json.Unmarshal([]byte(m.ConditionsJSON), &conditions); err == nil {
			rule.Conditions = conditions
		}
	}
	if m.ActionsJSON != "" {
		var actions []rules.Action
		if err := json.Unmarshal([]byte(m.ActionsJSON), &actions); err == nil {
			rule.Actions = actions
		}
	}

	return rule
}

// RuleModelFromDomain builds a persistence model from a domain Rule entity.
func RuleModelFromDomain(rule *rules.Rule) *RuleModel {
	model := &RuleModel{
		ID:         rule.ID,
		Name:       rule.Name,
		TargetKind: rule.TargetKind,
		Priority:   rule.Priority,
		Combinator: rule.Combinator,
		Active:     rule.Active,
		CreatedAt:  rule.CreatedAt,
		UpdatedAt:  rule.UpdatedAt,
	}

	if raw, err := json.Marshal(rule.Conditions); err == nil {
		model.ConditionsJSON = string(raw)
	}
	if raw, err := json.Marshal(rule.Actions); err == nil {
		model.ActionsJSON = string(raw)
	}

	return model
}
