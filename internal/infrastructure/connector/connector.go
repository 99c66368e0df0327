// Package connector holds the deployment seam for the Source and Target
// backends plus the HTTP plumbing an adapter builds on: shared client
// construction with credential injection, response classification onto the
// sync error taxonomy, and Retry-After handling. The wire-protocol adapters
// themselves live outside this module; until one is linked in, the
// unconfigured placeholders below keep the server bootable and make every
// sync attempt fail with the proper unavailable error instead of a nil
// dereference.
package connector

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	syncdomain "github.com/syncbridge/backend/internal/domain/sync"
)

// UnconfiguredSource satisfies the Source port while no connector is wired.
type UnconfiguredSource struct{}

var _ syncdomain.SourceClient = (*UnconfiguredSource)(nil)

// NewUnconfiguredSource creates the placeholder Source client.
func NewUnconfiguredSource() *UnconfiguredSource {
	return &UnconfiguredSource{}
}

// ListEntities always fails with ErrSourceUnavailable.
func (c *UnconfiguredSource) ListEntities(_ context.Context, kind syncdomain.MappingKind, _ map[string]string, _ string, _ int) (*syncdomain.EntityPage, error) {
	return nil, fmt.Errorf("%w: no source connector configured (kind %s)", syncdomain.ErrSourceUnavailable, kind)
}

// GetQuantities always fails with ErrSourceUnavailable.
func (c *UnconfiguredSource) GetQuantities(_ context.Context, _ []string, _ string) (map[string]decimal.Decimal, error) {
	return nil, fmt.Errorf("%w: no source connector configured", syncdomain.ErrSourceUnavailable)
}

// UnconfiguredTarget satisfies the Target port while no connector is wired.
type UnconfiguredTarget struct{}

var _ syncdomain.TargetClient = (*UnconfiguredTarget)(nil)

// NewUnconfiguredTarget creates the placeholder Target client.
func NewUnconfiguredTarget() *UnconfiguredTarget {
	return &UnconfiguredTarget{}
}

// SetInventory always fails with ErrTargetUnavailable.
func (c *UnconfiguredTarget) SetInventory(_ context.Context, _ string, _ decimal.Decimal, _ string) (string, error) {
	return "", fmt.Errorf("%w: no target connector configured", syncdomain.ErrTargetUnavailable)
}

// SetInventoryByItemID always fails with ErrTargetUnavailable.
func (c *UnconfiguredTarget) SetInventoryByItemID(_ context.Context, _ string, _ decimal.Decimal, _ string) error {
	return fmt.Errorf("%w: no target connector configured", syncdomain.ErrTargetUnavailable)
}

// UpdateCustomerField always fails with ErrTargetUnavailable.
func (c *UnconfiguredTarget) UpdateCustomerField(_ context.Context, _, _, _ string) error {
	return fmt.Errorf("%w: no target connector configured", syncdomain.ErrTargetUnavailable)
}

// FindVariantBySKU always fails with ErrTargetUnavailable.
func (c *UnconfiguredTarget) FindVariantBySKU(_ context.Context, _ string) (string, error) {
	return "", fmt.Errorf("%w: no target connector configured", syncdomain.ErrTargetUnavailable)
}

// FindCustomerByEmail always fails with ErrTargetUnavailable.
func (c *UnconfiguredTarget) FindCustomerByEmail(_ context.Context, _ string) (string, error) {
	return "", fmt.Errorf("%w: no target connector configured", syncdomain.ErrTargetUnavailable)
}
