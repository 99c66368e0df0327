// Package rules implements the declarative gating policy evaluated against
// every entity before it is synchronized. Rules are static configuration
// maintained by operators; the engine never mutates them.
package rules

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ---------------------------------------------------------------------------
// TargetKind
// ---------------------------------------------------------------------------

// TargetKind selects which entity types a rule applies to.
type TargetKind string

const (
	TargetKindProduct  TargetKind = "PRODUCT"
	TargetKindCustomer TargetKind = "CUSTOMER"
	TargetKindAll      TargetKind = "ALL"
)

// IsValid returns true if the target kind is valid.
func (k TargetKind) IsValid() bool {
	return k == TargetKindProduct || k == TargetKindCustomer || k == TargetKindAll
}

// String returns the string representation of TargetKind.
func (k TargetKind) String() string {
	return string(k)
}

// AppliesTo reports whether a rule with this target kind applies to an
// entity of the given kind.
func (k TargetKind) AppliesTo(entity TargetKind) bool {
	return k == TargetKindAll || k == entity
}

// ---------------------------------------------------------------------------
// Combinator
// ---------------------------------------------------------------------------

// Combinator joins a rule's conditions.
type Combinator string

const (
	CombinatorAnd Combinator = "AND"
	CombinatorOr  Combinator = "OR"
)

// IsValid returns true if the combinator is valid.
func (c Combinator) IsValid() bool {
	return c == CombinatorAnd || c == CombinatorOr
}

// ---------------------------------------------------------------------------
// Operator
// ---------------------------------------------------------------------------

// Operator compares an extracted entity field against a literal.
type Operator string

const (
	OperatorEq         Operator = "eq"
	OperatorNeq        Operator = "neq"
	OperatorLt         Operator = "lt"
	OperatorLte        Operator = "lte"
	OperatorGt         Operator = "gt"
	OperatorGte        Operator = "gte"
	OperatorContains   Operator = "contains"
	OperatorStartsWith Operator = "starts_with"
)

// IsValid returns true if the operator is valid.
func (o Operator) IsValid() bool {
	switch o {
	case OperatorEq, OperatorNeq, OperatorLt, OperatorLte,
		OperatorGt, OperatorGte, OperatorContains, OperatorStartsWith:
		return true
	default:
		return false
	}
}

// ---------------------------------------------------------------------------
// ActionType
// ---------------------------------------------------------------------------

// ActionType is what a matching rule does to the entity's sync.
type ActionType string

const (
	ActionSkipSync        ActionType = "SKIP_SYNC"
	ActionRequireApproval ActionType = "REQUIRE_APPROVAL"
	ActionAddTag          ActionType = "ADD_TAG"
	ActionRemoveTag       ActionType = "REMOVE_TAG"
	ActionLogWarning      ActionType = "LOG_WARNING"
)

// IsValid returns true if the action type is valid.
func (a ActionType) IsValid() bool {
	switch a {
	case ActionSkipSync, ActionRequireApproval, ActionAddTag, ActionRemoveTag, ActionLogWarning:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether the action ends rule evaluation for an entity.
func (a ActionType) IsTerminal() bool {
	return a == ActionSkipSync || a == ActionRequireApproval
}

// ---------------------------------------------------------------------------
// Rule Entity
// ---------------------------------------------------------------------------

// Condition compares a named entity field against a literal value.
type Condition struct {
	Field    string   `json:"field"`
	Operator Operator `json:"operator"`
	Value    string   `json:"value"`
}

// Action is one effect applied when a rule matches. Value carries the tag
// name for tag actions, the approval reason for REQUIRE_APPROVAL, and the
// message for LOG_WARNING.
type Action struct {
	Type  ActionType `json:"type"`
	Value string     `json:"value"`
}

// Rule is an ordered, prioritized gating policy.
type Rule struct {
	ID         uuid.UUID
	Name       string
	TargetKind TargetKind
	Priority   int
	Combinator Combinator
	Conditions []Condition
	Actions    []Action
	Active     bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewRule creates an active rule after validating its parts.
func NewRule(name string, kind TargetKind, priority int, combinator Combinator, conditions []Condition, actions []Action) (*Rule, error) {
	if name == "" {
		return nil, ErrRuleInvalidName
	}
	if !kind.IsValid() {
		return nil, ErrRuleInvalidKind
	}
	if !combinator.IsValid() {
		combinator = CombinatorAnd
	}
	for _, c := range conditions {
		if !c.Operator.IsValid() {
			return nil, ErrRuleInvalidOperator
		}
	}
	for _, a := range actions {
		if !a.Type.IsValid() {
			return nil, ErrRuleInvalidAction
		}
	}
	now := time.Now()
	return &Rule{
		ID:         uuid.New(),
		Name:       name,
		TargetKind: kind,
		Priority:   priority,
		Combinator: combinator,
		Conditions: conditions,
		Actions:    actions,
		Active:     true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// ---------------------------------------------------------------------------
// RuleRepository
// ---------------------------------------------------------------------------

// RuleRepository persists gating rules.
type RuleRepository interface {
	// FindByID returns a rule by identifier or ErrRuleNotFound.
	FindByID(ctx context.Context, id uuid.UUID) (*Rule, error)

	// FindActive lists active rules applicable to the kind, priority
	// descending. Loaded fresh per evaluation call.
	FindActive(ctx context.Context, kind TargetKind) ([]Rule, error)

	// FindAll lists every rule, priority descending.
	FindAll(ctx context.Context) ([]Rule, error)

	// Save creates or updates a rule.
	Save(ctx context.Context, rule *Rule) error

	// Delete removes a rule.
	Delete(ctx context.Context, id uuid.UUID) error
}
