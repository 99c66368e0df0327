package sync

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// MaxQuantityBatchSize is the Source's hard cap on ids per quantity lookup.
const MaxQuantityBatchSize = 100

// ---------------------------------------------------------------------------
// Source value objects
// ---------------------------------------------------------------------------

// SourceEntity is the slice of a Source record the engine reconciles: the
// identifiers, SKU, quantities and monetary totals needed for sync, never
// the full catalog document.
type SourceEntity struct {
	ID         string
	Kind       MappingKind
	SKU        string
	Name       string
	Email      string
	Phone      string
	Quantity   decimal.Decimal
	Price      decimal.Decimal
	TotalSpent decimal.Decimal
	Tags       []string
	UpdatedAt  time.Time
}

// EntityPage is one page of a cursor-paginated Source listing.
type EntityPage struct {
	Items     []SourceEntity
	NextToken string
	HasMore   bool
}

// ---------------------------------------------------------------------------
// Ports
// ---------------------------------------------------------------------------

// SourceClient is the port to the POS/ERP backend. Implementations are thin
// HTTP wrappers owned by collaborators outside this core.
type SourceClient interface {
	// ListEntities returns one page of entities matching the filters.
	ListEntities(ctx context.Context, kind MappingKind, filters map[string]string, pageToken string, pageSize int) (*EntityPage, error)

	// GetQuantities returns quantities for up to MaxQuantityBatchSize ids.
	// An empty warehouseID requests each entity's total quantity.
	GetQuantities(ctx context.Context, ids []string, warehouseID string) (map[string]decimal.Decimal, error)
}

// TargetClient is the port to the storefront backend.
type TargetClient interface {
	// SetInventory sets (not deltas) the available quantity of a variant at
	// a location, returning the target's inventory item identifier. The
	// implementation resolves variant to inventory item first, which costs
	// an extra upstream round trip.
	SetInventory(ctx context.Context, targetVariantID string, quantity decimal.Decimal, locationID string) (string, error)

	// SetInventoryByItemID sets the quantity through an already-resolved
	// inventory item identifier, skipping the variant lookup. Fails when the
	// identifier is no longer valid on the target.
	SetInventoryByItemID(ctx context.Context, inventoryItemID string, quantity decimal.Decimal, locationID string) error

	// UpdateCustomerField updates a single field on a target customer.
	UpdateCustomerField(ctx context.Context, targetCustomerID, field, value string) error

	// FindVariantBySKU resolves a target variant by SKU for auto-matching.
	FindVariantBySKU(ctx context.Context, sku string) (string, error)

	// FindCustomerByEmail resolves a target customer by email for
	// auto-matching.
	FindCustomerByEmail(ctx context.Context, email string) (string, error)
}

// VariantCache caches target-side derived identifiers (variant id ->
// inventory item id) for the duration of a run. Owned by the caller and
// passed by reference so tests inject a fresh instance per run.
type VariantCache interface {
	GetInventoryItemID(ctx context.Context, variantID string) (string, bool)
	PutInventoryItemID(ctx context.Context, variantID, inventoryItemID string)
}

// IsRateLimited reports whether an error is an upstream throttle signal.
// Client wrappers wrap 429/"rate limit" responses in ErrTargetRateLimited,
// but the raw message is also recognized for resilience.
func IsRateLimited(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTargetRateLimited) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") || strings.Contains(msg, "rate limit") || strings.Contains(msg, "throttl")
}
