package gateway

import (
	"fmt"
	"sync/atomic"

	"github.com/goccy/go-json"
	"github.com/jellydator/ttlcache/v3"
	"github.com/zeebo/xxh3"

	"github.com/thedoughmonster/doughmonster-worker-sub001/domain"
)

const defaultCompositionCapacity = 128

// CacheStats is a snapshot of the composition cache counters.
type CacheStats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
	Size   int64 `json:"size"`
}

// CompositionCache memoizes the expanded-orders computation keyed by a
// content fingerprint, so repeated requests for the same upstream
// snapshot skip recomputation. Values are isolated both ways: entries
// are stored as independent copies and every read hands out a fresh
// deep copy. Process-wide state, safe for concurrent handlers.
type CompositionCache struct {
	entries *ttlcache.Cache[string, []domain.Document]
	hits    atomic.Int64
	misses  atomic.Int64
}

// NewCompositionCache creates a cache bounded to capacity entries
// (oldest evicted first). A non-positive capacity selects the default.
func NewCompositionCache(capacity int) *CompositionCache {
	if capacity <= 0 {
		capacity = defaultCompositionCapacity
	}
	return &CompositionCache{
		entries: ttlcache.New(
			ttlcache.WithCapacity[string, []domain.Document](uint64(capacity)),
		),
	}
}

// get returns a deep copy of the cached value for key, counting the
// outcome.
func (c *CompositionCache) get(key string) ([]domain.Document, bool) {
	item := c.entries.Get(key)
	if item == nil {
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	return deepCopyOrders(item.Value()), true
}

// put stores an independent copy of orders under key.
func (c *CompositionCache) put(key string, orders []domain.Document) {
	c.entries.Set(key, deepCopyOrders(orders), ttlcache.NoTTL)
}

// Stats reports the hit/miss/size counters.
func (c *CompositionCache) Stats() CacheStats {
	return CacheStats{
		Hits:   c.hits.Load(),
		Misses: c.misses.Load(),
		Size:   int64(c.entries.Len()),
	}
}

// compositionFingerprint derives the cache key from content, not
// object identity: a canonical serialization (map keys sorted by the
// encoder) of the orders payload plus the menu's change stamp, hashed
// with xxh3. Two structurally equal payloads always fingerprint alike.
func compositionFingerprint(orders []domain.Document, menuUpdatedAt string) (string, error) {
	raw, err := json.Marshal(struct {
		Orders        []domain.Document `json:"orders"`
		MenuUpdatedAt string            `json:"menuUpdatedAt"`
	}{Orders: orders, MenuUpdatedAt: menuUpdatedAt})
	if err != nil {
		return "", fmt.Errorf("fingerprint orders payload: %w", err)
	}
	sum := xxh3.Hash128(raw)
	return fmt.Sprintf("%016x%016x", sum.Hi, sum.Lo), nil
}

// deepCopyOrders clones documents through a JSON round-trip so no map
// or slice is shared with the source.
func deepCopyOrders(orders []domain.Document) []domain.Document {
	if orders == nil {
		return nil
	}
	raw, err := json.Marshal(orders)
	if err != nil {
		return orders
	}
	out := make([]domain.Document, 0, len(orders))
	if err := json.Unmarshal(raw, &out); err != nil {
		return orders
	}
	return out
}
