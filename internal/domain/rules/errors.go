package rules

import "errors"

var (
	ErrRuleNotFound        = errors.New("rules: rule not found")
	ErrRuleInvalidName     = errors.New("rules: rule name is required")
	ErrRuleInvalidKind     = errors.New("rules: invalid target kind")
	ErrRuleInvalidOperator = errors.New("rules: invalid condition operator")
	ErrRuleInvalidAction   = errors.New("rules: invalid action type")
	ErrRuleInvalidField    = errors.New("rules: unknown condition field")
	ErrRuleInvalidValue    = errors.New("rules: condition value cannot be compared")
)
