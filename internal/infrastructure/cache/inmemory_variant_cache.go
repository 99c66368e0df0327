package cache

import (
	"context"
	"sync"
	"time"

	syncdomain "github.com/syncbridge/backend/internal/domain/sync"
)

// variantEntry represents a cached inventory item ID with expiration
type variantEntry struct {
	inventoryItemID string
	expiresAt       time.Time
}

// InMemoryVariantCache implements VariantCache using an in-memory map.
// Suitable for single-instance deployments and testing.
type InMemoryVariantCache struct {
	mu      sync.RWMutex
	entries map[string]variantEntry
	ttl     time.Duration
}

var _ syncdomain.VariantCache = (*InMemoryVariantCache)(nil)

// NewInMemoryVariantCache creates a new in-memory variant cache
func NewInMemoryVariantCache(ttl time.Duration) *InMemoryVariantCache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &InMemoryVariantCache{
		entries: make(map[string]variantEntry),
		ttl:     ttl,
	}
}

// GetInventoryItemID returns the cached inventory item ID for a variant
func (c *InMemoryVariantCache) GetInventoryItemID(_ context.Context, variantID string) (string, bool) {
	c.mu.RLock()
	entry, exists := c.entries[variantID]
	c.mu.RUnlock()

	if !exists || time.Now().After(entry.expiresAt) {
		return "", false
	}
	return entry.inventoryItemID, true
}

// PutInventoryItemID stores the inventory item ID for a variant
func (c *InMemoryVariantCache) PutInventoryItemID(_ context.Context, variantID, inventoryItemID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Opportunistically drop expired entries to bound memory between runs.
	now := time.Now()
	for key, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, key)
		}
	}

	c.entries[variantID] = variantEntry{
		inventoryItemID: inventoryItemID,
		expiresAt:       now.Add(c.ttl),
	}
}

// Len returns the number of live entries
func (c *InMemoryVariantCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
