package rules

import (
	"fmt"

	"github.com/shopspring/decimal"

	syncdomain "github.com/syncbridge/backend/internal/domain/sync"
)

// fieldValue is the typed result of extracting a named field from an entity.
type fieldValue struct {
	str    string
	num    decimal.Decimal
	list   []string
	isNum  bool
	isList bool
}

func stringValue(s string) fieldValue        { return fieldValue{str: s} }
func numberValue(d decimal.Decimal) fieldValue { return fieldValue{num: d, isNum: true} }
func listValue(l []string) fieldValue        { return fieldValue{list: l, isList: true} }

type fieldExtractor func(e syncdomain.SourceEntity) fieldValue

// Closed sets of recognized fields per target kind. Unknown fields are an
// evaluation error, which the engine fails open on.
var productFields = map[string]fieldExtractor{
	"sku":       func(e syncdomain.SourceEntity) fieldValue { return stringValue(e.SKU) },
	"name":      func(e syncdomain.SourceEntity) fieldValue { return stringValue(e.Name) },
	"inventory": func(e syncdomain.SourceEntity) fieldValue { return numberValue(e.Quantity) },
	"price":     func(e syncdomain.SourceEntity) fieldValue { return numberValue(e.Price) },
	"tag":       func(e syncdomain.SourceEntity) fieldValue { return listValue(e.Tags) },
}

var customerFields = map[string]fieldExtractor{
	"email":       func(e syncdomain.SourceEntity) fieldValue { return stringValue(e.Email) },
	"name":        func(e syncdomain.SourceEntity) fieldValue { return stringValue(e.Name) },
	"phone":       func(e syncdomain.SourceEntity) fieldValue { return stringValue(e.Phone) },
	"total_spent": func(e syncdomain.SourceEntity) fieldValue { return numberValue(e.TotalSpent) },
	"tag":         func(e syncdomain.SourceEntity) fieldValue { return listValue(e.Tags) },
}

// extractField resolves a named field for an entity of the given kind.
func extractField(kind TargetKind, field string, entity syncdomain.SourceEntity) (fieldValue, error) {
	var extractors map[string]fieldExtractor
	switch kind {
	case TargetKindProduct:
		extractors = productFields
	case TargetKindCustomer:
		extractors = customerFields
	default:
		return fieldValue{}, fmt.Errorf("%w: kind %s", ErrRuleInvalidField, kind)
	}
	extract, ok := extractors[field]
	if !ok {
		return fieldValue{}, fmt.Errorf("%w: %q for kind %s", ErrRuleInvalidField, field, kind)
	}
	return extract(entity), nil
}

// entityTargetKind maps an entity's reconciliation kind onto the rule
// universe it is evaluated against.
func entityTargetKind(kind syncdomain.MappingKind) (TargetKind, error) {
	switch kind {
	case syncdomain.MappingKindProduct:
		return TargetKindProduct, nil
	case syncdomain.MappingKindCustomer:
		return TargetKindCustomer, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrRuleInvalidKind, kind)
	}
}
