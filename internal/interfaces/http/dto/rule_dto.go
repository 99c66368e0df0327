package dto

import (
	"time"

	"github.com/syncbridge/backend/internal/domain/rules"
)

// RuleConditionDTO is one field comparison inside a rule.
type RuleConditionDTO struct {
	Field    string `json:"field" binding:"required"`
	Operator string `json:"operator" binding:"required,oneof=eq neq lt lte gt gte contains starts_with"`
	Value    string `json:"value"`
}

// RuleActionDTO is one effect applied when a rule matches.
type RuleActionDTO struct {
	Type  string `json:"type" binding:"required,oneof=SKIP_SYNC REQUIRE_APPROVAL ADD_TAG REMOVE_TAG LOG_WARNING"`
	Value string `json:"value"`
}

// CreateRuleRequest creates a gating rule.
type CreateRuleRequest struct {
	Name       string             `json:"name" binding:"required,max=200"`
	TargetKind string             `json:"target_kind" binding:"required,oneof=PRODUCT CUSTOMER ALL"`
	Priority   int                `json:"priority" binding:"omitempty,gte=0,lte=1000"`
	Combinator string             `json:"combinator" binding:"omitempty,oneof=AND OR"`
	Conditions []RuleConditionDTO `json:"conditions" binding:"required,min=1,dive"`
	Actions    []RuleActionDTO    `json:"actions" binding:"required,min=1,dive"`
}

// UpdateRuleRequest replaces a rule's definition.
type UpdateRuleRequest struct {
	Name       string             `json:"name" binding:"required,max=200"`
	TargetKind string             `json:"target_kind" binding:"required,oneof=PRODUCT CUSTOMER ALL"`
	Priority   int                `json:"priority" binding:"omitempty,gte=0,lte=1000"`
	Combinator string             `json:"combinator" binding:"omitempty,oneof=AND OR"`
	Conditions []RuleConditionDTO `json:"conditions" binding:"required,min=1,dive"`
	Actions    []RuleActionDTO    `json:"actions" binding:"required,min=1,dive"`
	Active     bool               `json:"active"`
}

// ToConditions converts condition DTOs to domain conditions.
func ToConditions(in []RuleConditionDTO) []rules.Condition {
	out := make([]rules.Condition, 0, len(in))
	for _, c := range in {
		out = append(out, rules.Condition{
			Field:    c.Field,
			Operator: rules.Operator(c.Operator),
			Value:    c.Value,
		})
	}
	return out
}

// ToActions converts action DTOs to domain actions.
func ToActions(in []RuleActionDTO) []rules.Action {
	out := make([]rules.Action, 0, len(in))
	for _, a := range in {
		out = append(out, rules.Action{
			Type:  rules.ActionType(a.Type),
			Value: a.Value,
		})
	}
	return out
}

// RuleResponse represents a gating rule.
type RuleResponse struct {
	ID         string             `json:"id"`
	Name       string             `json:"name"`
	TargetKind string             `json:"target_kind"`
	Priority   int                `json:"priority"`
	Combinator string             `json:"combinator"`
	Conditions []RuleConditionDTO `json:"conditions"`
	Actions    []RuleActionDTO    `json:"actions"`
	Active     bool               `json:"active"`
	CreatedAt  time.Time          `json:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at"`
}

// NewRuleResponse converts a domain rule.
func NewRuleResponse(rule *rules.Rule) RuleResponse {
	conditions := make([]RuleConditionDTO, 0, len(rule.Conditions))
	for _, c := range rule.Conditions {
		conditions = append(conditions, RuleConditionDTO{
			Field:    c.Field,
			Operator: string(c.Operator),
			Value:    c.Value,
		})
	}
	actions := make([]RuleActionDTO, 0, len(rule.Actions))
	for _, a := range rule.Actions {
		actions = append(actions, RuleActionDTO{
			Type:  string(a.Type),
			Value: a.Value,
		})
	}
	return RuleResponse{
		ID:         rule.ID.String(),
		Name:       rule.Name,
		TargetKind: string(rule.TargetKind),
		Priority:   rule.Priority,
		Combinator: string(rule.Combinator),
		Conditions: conditions,
		Actions:    actions,
		Active:     rule.Active,
		CreatedAt:  rule.CreatedAt,
		UpdatedAt:  rule.UpdatedAt,
	}
}

// NewRuleListResponse converts a batch of rules.
func NewRuleListResponse(ruleList []rules.Rule) []RuleResponse {
	out := make([]RuleResponse, 0, len(ruleList))
	for i := range ruleList {
		out = append(out, NewRuleResponse(&ruleList[i]))
	}
	return out
}
