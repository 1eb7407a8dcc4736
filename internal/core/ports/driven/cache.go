package driven

import "github.com/bayani-labs/lakbay/internal/core/domain"

// ResponseCache memoizes search results keyed by normalized query text.
// Entries expire a fixed duration after insertion and are never returned
// past their expiry.
//
// The cache is a latency optimisation only. A disabled cache misses on
// every Get and ignores every Put; callers must behave identically either
// way, apart from speed.
type ResponseCache interface {
	// Get returns the cached results for the query, or false on a miss.
	Get(query string) ([]domain.SearchResult, bool)

	// Put stores results for the query, overwriting any existing entry.
	Put(query string, results []domain.SearchResult)

	// Enabled reports whether caching is active.
	Enabled() bool
}
