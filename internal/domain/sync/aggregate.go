package sync

import (
	"sort"

	"github.com/shopspring/decimal"
)

// QuantityKey addresses a Source stock figure by entity and warehouse.
type QuantityKey struct {
	EntityID    string
	WarehouseID string
}

// Aggregation is the result of combining per-warehouse quantities into
// per-location totals: location ID -> entity ID -> quantity.
type Aggregation map[string]map[string]decimal.Decimal

// AggregateQuantities combines Source quantities into per-Target-location
// totals according to the {location -> warehouses} grouping.
//
// For each location the aggregated quantity of an entity is the sum of its
// quantities across the location's warehouses. An entity that reports no
// depot-specific quantity in any mapped warehouse falls back to its total
// quantity, applied to exactly one canonical location (the lexicographically
// smallest location ID) so it is never double counted. The function is pure:
// the same inputs always produce the same result.
func AggregateQuantities(
	quantities map[QuantityKey]decimal.Decimal,
	fallback map[string]decimal.Decimal,
	grouping map[string][]string,
) Aggregation {
	result := make(Aggregation, len(grouping))
	if len(grouping) == 0 {
		return result
	}

	locations := make([]string, 0, len(grouping))
	for loc := range grouping {
		result[loc] = make(map[string]decimal.Decimal)
		locations = append(locations, loc)
	}
	sort.Strings(locations)
	canonical := locations[0]

	reported := make(map[string]bool)
	for key, qty := range quantities {
		for _, loc := range locations {
			for _, wh := range grouping[loc] {
				if wh != key.WarehouseID {
					continue
				}
				if existing, ok := result[loc][key.EntityID]; ok {
					result[loc][key.EntityID] = existing.Add(qty)
				} else {
					result[loc][key.EntityID] = qty
				}
				reported[key.EntityID] = true
			}
		}
	}

	// Entities with no depot-specific stock anywhere: the global total is a
	// safe floor, booked once at the canonical location.
	for entityID, total := range fallback {
		if reported[entityID] {
			continue
		}
		result[canonical][entityID] = total
	}

	return result
}

// SingleLocationMode reports whether aggregation should be bypassed: with no
// location mapping rows the engine uses each entity's single aggregate
// quantity directly.
func SingleLocationMode(grouping map[string][]string) bool {
	return len(grouping) == 0
}
