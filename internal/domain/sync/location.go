package sync

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
)

// ---------------------------------------------------------------------------
// LocationMapping Entity
// ---------------------------------------------------------------------------

// LocationMapping is a many-to-one edge from a Source warehouse to a Target
// location. Read-only from the engine's perspective; maintained by operators.
type LocationMapping struct {
	ID            uuid.UUID
	WarehouseID   string
	WarehouseName string
	LocationID    string
	LocationName  string
	Active        bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewLocationMapping creates an active warehouse-to-location edge.
func NewLocationMapping(warehouseID, warehouseName, locationID, locationName string) (*LocationMapping, error) {
	if warehouseID == "" || locationID == "" {
		return nil, ErrLocationInvalid
	}
	now := time.Now()
	return &LocationMapping{
		ID:            uuid.New(),
		WarehouseID:   warehouseID,
		WarehouseName: warehouseName,
		LocationID:    locationID,
		LocationName:  locationName,
		Active:        true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// GroupByLocation groups active mappings into {target location -> source
// warehouses}, warehouses sorted for deterministic aggregation.
func GroupByLocation(mappings []LocationMapping) map[string][]string {
	grouped := make(map[string][]string)
	for _, m := range mappings {
		if !m.Active {
			continue
		}
		grouped[m.LocationID] = append(grouped[m.LocationID], m.WarehouseID)
	}
	for _, warehouses := range grouped {
		sort.Strings(warehouses)
	}
	return grouped
}

// ---------------------------------------------------------------------------
// LocationMappingRepository
// ---------------------------------------------------------------------------

// LocationMappingRepository persists warehouse-to-location edges.
type LocationMappingRepository interface {
	// FindAll lists every mapping edge.
	FindAll(ctx context.Context) ([]LocationMapping, error)

	// FindActive lists active mapping edges only.
	FindActive(ctx context.Context) ([]LocationMapping, error)

	// Save creates or updates an edge.
	Save(ctx context.Context, mapping *LocationMapping) error

	// Delete removes an edge.
	Delete(ctx context.Context, id uuid.UUID) error
}
