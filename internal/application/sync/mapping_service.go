package sync

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	syncdomain "github.com/syncbridge/backend/internal/domain/sync"
)

// MappingService is the operator surface over reconciliation mappings:
// manual map/unmap, approval release, and dashboard listings.
type MappingService struct {
	mappings  syncdomain.EntityMappingRepository
	locations syncdomain.LocationMappingRepository
	logger    *zap.Logger
}

// NewMappingService creates a MappingService.
func NewMappingService(
	mappings syncdomain.EntityMappingRepository,
	locations syncdomain.LocationMappingRepository,
	logger *zap.Logger,
) *MappingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MappingService{mappings: mappings, locations: locations, logger: logger}
}

// ListMappings lists mappings matching the filter with total count.
func (s *MappingService) ListMappings(ctx context.Context, filter syncdomain.MappingFilter) ([]syncdomain.EntityMapping, int64, error) {
	return s.mappings.FindAll(ctx, filter)
}

// GetMapping returns one mapping by identifier.
func (s *MappingService) GetMapping(ctx context.Context, id uuid.UUID) (*syncdomain.EntityMapping, error) {
	return s.mappings.FindByID(ctx, id)
}

// MapEntity links a source entity to a target counterpart, creating the
// mapping row when the entity has never been pulled.
func (s *MappingService) MapEntity(ctx context.Context, kind syncdomain.MappingKind, sourceID, targetID, targetName string) (*syncdomain.EntityMapping, error) {
	mapping, err := s.mappings.FindBySourceID(ctx, kind, sourceID)
	if err != nil {
		if err != syncdomain.ErrMappingNotFound {
			return nil, err
		}
		mapping, err = syncdomain.NewEntityMapping(kind, sourceID)
		if err != nil {
			return nil, err
		}
	}
	if err := mapping.Link(targetID, targetName); err != nil {
		return nil, err
	}
	if err := s.mappings.Save(ctx, mapping); err != nil {
		return nil, err
	}
	return mapping, nil
}

// UnmapEntity detaches a mapping from its target counterpart.
func (s *MappingService) UnmapEntity(ctx context.Context, id uuid.UUID) (*syncdomain.EntityMapping, error) {
	mapping, err := s.mappings.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	mapping.Unlink()
	if err := s.mappings.Save(ctx, mapping); err != nil {
		return nil, err
	}
	return mapping, nil
}

// ApproveMapping releases a held mapping back into the pushable pool.
func (s *MappingService) ApproveMapping(ctx context.Context, id uuid.UUID) (*syncdomain.EntityMapping, error) {
	mapping, err := s.mappings.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	mapping.Approve()
	if err := s.mappings.Save(ctx, mapping); err != nil {
		return nil, err
	}
	return mapping, nil
}

// MappingStats is a per-status breakdown for one entity kind.
type MappingStats struct {
	Kind     syncdomain.MappingKind
	Total    int64
	ByStatus map[syncdomain.MappingStatus]int64
}

// GetStats returns mapping counts grouped by status for a kind.
func (s *MappingService) GetStats(ctx context.Context, kind syncdomain.MappingKind) (*MappingStats, error) {
	if !kind.IsValid() {
		return nil, syncdomain.ErrMappingInvalidKind
	}
	byStatus, err := s.mappings.CountByStatus(ctx, kind)
	if err != nil {
		return nil, err
	}
	stats := &MappingStats{Kind: kind, ByStatus: byStatus}
	for _, count := range byStatus {
		stats.Total += count
	}
	return stats, nil
}

// ListLocationMappings lists every warehouse-to-location edge.
func (s *MappingService) ListLocationMappings(ctx context.Context) ([]syncdomain.LocationMapping, error) {
	return s.locations.FindAll(ctx)
}

// SaveLocationMapping creates a warehouse-to-location edge.
func (s *MappingService) SaveLocationMapping(ctx context.Context, warehouseID, warehouseName, locationID, locationName string) (*syncdomain.LocationMapping, error) {
	mapping, err := syncdomain.NewLocationMapping(warehouseID, warehouseName, locationID, locationName)
	if err != nil {
		return nil, err
	}
	if err := s.locations.Save(ctx, mapping); err != nil {
		return nil, err
	}
	return mapping, nil
}

// DeleteLocationMapping removes a warehouse-to-location edge.
func (s *MappingService) DeleteLocationMapping(ctx context.Context, id uuid.UUID) error {
	return s.locations.Delete(ctx, id)
}
