package rules

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	syncdomain "github.com/syncbridge/backend/internal/domain/sync"
)

// Evaluation is the gating decision for one entity.
type Evaluation struct {
	SkipSync        bool
	RequireApproval bool
	ApprovalReason  string
	TagsToAdd       []string
	TagsToRemove    []string
	Warnings        []string
}

// Proceed reports whether the entity should be pushed to the Target.
func (e *Evaluation) Proceed() bool {
	return !e.SkipSync && !e.RequireApproval
}

// Evaluate applies the rule set to one entity, priority descending. Within a
// rule, conditions join via the rule's combinator. The first matching rule
// carrying a terminal action (skip or require-approval) ends evaluation;
// non-terminal actions from earlier matching rules still accumulate.
//
// A malformed rule, unknown field, or uncomparable value never blocks the
// entity: the rule is recorded as a warning and evaluation continues, so a
// misconfigured rule cannot halt all synchronization.
func Evaluate(ruleSet []Rule, entity syncdomain.SourceEntity) Evaluation {
	result := Evaluation{}

	entityKind, err := entityTargetKind(entity.Kind)
	if err != nil {
		result.Warnings = append(result.Warnings, err.Error())
		return result
	}

	ordered := make([]Rule, len(ruleSet))
	copy(ordered, ruleSet)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Priority > ordered[j].Priority
	})

	for _, rule := range ordered {
		if !rule.Active || !rule.TargetKind.AppliesTo(entityKind) {
			continue
		}

		matched, err := ruleMatches(rule, entityKind, entity)
		if err != nil {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("rule %q: %v", rule.Name, err))
			continue
		}
		if !matched {
			continue
		}

		terminal := applyActions(rule, &result)
		if terminal {
			return result
		}
	}
	return result
}

func ruleMatches(rule Rule, kind TargetKind, entity syncdomain.SourceEntity) (bool, error) {
	if len(rule.Conditions) == 0 {
		return false, nil
	}
	for _, cond := range rule.Conditions {
		ok, err := conditionMatches(cond, kind, entity)
		if err != nil {
			return false, err
		}
		if rule.Combinator == CombinatorOr && ok {
			return true, nil
		}
		if rule.Combinator != CombinatorOr && !ok {
			return false, nil
		}
	}
	return rule.Combinator != CombinatorOr, nil
}

func conditionMatches(cond Condition, kind TargetKind, entity syncdomain.SourceEntity) (bool, error) {
	value, err := extractField(kind, cond.Field, entity)
	if err != nil {
		return false, err
	}

	switch {
	case value.isList:
		return compareList(value.list, cond.Operator, cond.Value)
	case value.isNum:
		return compareNumber(value.num, cond.Operator, cond.Value)
	default:
		return compareString(value.str, cond.Operator, cond.Value), nil
	}
}

func compareNumber(actual decimal.Decimal, op Operator, literal string) (bool, error) {
	expected, err := decimal.NewFromString(strings.TrimSpace(literal))
	if err != nil {
		return false, fmt.Errorf("%w: %q is not numeric", ErrRuleInvalidValue, literal)
	}
	switch op {
	case OperatorEq:
		return actual.Equal(expected), nil
	case OperatorNeq:
		return !actual.Equal(expected), nil
	case OperatorLt:
		return actual.LessThan(expected), nil
	case OperatorLte:
		return actual.LessThanOrEqual(expected), nil
	case OperatorGt:
		return actual.GreaterThan(expected), nil
	case OperatorGte:
		return actual.GreaterThanOrEqual(expected), nil
	default:
		return false, fmt.Errorf("%w: %s on numeric field", ErrRuleInvalidOperator, op)
	}
}

func compareString(actual string, op Operator, literal string) bool {
	a := strings.ToLower(strings.TrimSpace(actual))
	b := strings.ToLower(strings.TrimSpace(literal))
	switch op {
	case OperatorEq:
		return a == b
	case OperatorNeq:
		return a != b
	case OperatorContains:
		return strings.Contains(a, b)
	case OperatorStartsWith:
		return strings.HasPrefix(a, b)
	case OperatorLt:
		return a < b
	case OperatorLte:
		return a <= b
	case OperatorGt:
		return a > b
	case OperatorGte:
		return a >= b
	default:
		return false
	}
}

func compareList(actual []string, op Operator, literal string) (bool, error) {
	want := strings.ToLower(strings.TrimSpace(literal))
	found := false
	for _, item := range actual {
		if strings.ToLower(strings.TrimSpace(item)) == want {
			found = true
			break
		}
	}
	switch op {
	case OperatorContains, OperatorEq:
		return found, nil
	case OperatorNeq:
		return !found, nil
	default:
		return false, fmt.Errorf("%w: %s on tag field", ErrRuleInvalidOperator, op)
	}
}

// applyActions folds a matched rule's actions into the result and reports
// whether a terminal action was hit.
func applyActions(rule Rule, result *Evaluation) bool {
	for _, action := range rule.Actions {
		switch action.Type {
		case ActionSkipSync:
			result.SkipSync = true
			return true
		case ActionRequireApproval:
			result.RequireApproval = true
			reason := action.Value
			if reason == "" {
				reason = fmt.Sprintf("held by rule %q", rule.Name)
			}
			result.ApprovalReason = reason
			return true
		case ActionAddTag:
			if action.Value != "" {
				result.TagsToAdd = appendUnique(result.TagsToAdd, action.Value)
			}
		case ActionRemoveTag:
			if action.Value != "" {
				result.TagsToRemove = appendUnique(result.TagsToRemove, action.Value)
			}
		case ActionLogWarning:
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("rule %q: %s", rule.Name, action.Value))
		}
	}
	return false
}

func appendUnique(list []string, value string) []string {
	for _, v := range list {
		if v == value {
			return list
		}
	}
	return append(list, value)
}
