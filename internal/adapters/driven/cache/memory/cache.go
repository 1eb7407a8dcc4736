// Package memory provides the in-process TTL response cache.
package memory

import (
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/bayani-labs/lakbay/internal/core/domain"
	"github.com/bayani-labs/lakbay/internal/core/ports/driven"
)

// Ensure Cache implements the interface.
var _ driven.ResponseCache = (*Cache)(nil)

// Default expiry configuration.
const (
	// DefaultTTL is how long an entry lives after insertion.
	DefaultTTL = 10 * time.Minute

	// DefaultSweepInterval is how often expired entries are purged.
	// Expired entries are never returned regardless of sweep timing.
	DefaultSweepInterval = 2 * time.Minute
)

// Cache memoizes search results keyed by normalized query text.
// A disabled cache misses on every Get and ignores every Put.
type Cache struct {
	enabled bool
	entries *gocache.Cache
}

// New creates a response cache. Zero ttl or sweep fall back to defaults.
func New(ttl, sweep time.Duration, enabled bool) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if sweep <= 0 {
		sweep = DefaultSweepInterval
	}
	return &Cache{
		enabled: enabled,
		entries: gocache.New(ttl, sweep),
	}
}

// Enabled reports whether caching is active.
func (c *Cache) Enabled() bool {
	return c.enabled
}

// Get returns the cached results for the query, or false on a miss.
func (c *Cache) Get(query string) ([]domain.SearchResult, bool) {
	if !c.enabled {
		return nil, false
	}
	value, ok := c.entries.Get(query)
	if !ok {
		return nil, false
	}
	results, ok := value.([]domain.SearchResult)
	return results, ok
}

// Put stores results for the query, overwriting any existing entry.
func (c *Cache) Put(query string, results []domain.SearchResult) {
	if !c.enabled {
		return
	}
	c.entries.Set(query, results, gocache.DefaultExpiration)
}
