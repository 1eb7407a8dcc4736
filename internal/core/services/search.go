package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/bayani-labs/lakbay/internal/core/domain"
	"github.com/bayani-labs/lakbay/internal/core/ports/driven"
	"github.com/bayani-labs/lakbay/internal/core/ports/driving"
	"github.com/bayani-labs/lakbay/internal/logger"
)

// Ensure SearchService implements the interface.
var _ driving.SearchService = (*SearchService)(nil)

// SearchService ranks index chunks by similarity to a query.
type SearchService struct {
	vectorIndex driven.VectorIndex
	embedder    driven.EmbeddingService
	cache       driven.ResponseCache
}

// NewSearchService creates a new search service.
// The cache parameter is optional (can be nil).
func NewSearchService(
	vectorIndex driven.VectorIndex,
	embedder driven.EmbeddingService,
	cache driven.ResponseCache,
) *SearchService {
	return &SearchService{
		vectorIndex: vectorIndex,
		embedder:    embedder,
		cache:       cache,
	}
}

// NormalizeQuery produces the cache key for a query: lower-cased and
// whitespace-trimmed. Applied identically on read and write so hit rates
// are insensitive to casing and padding.
func NormalizeQuery(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}

// Search embeds the query and returns the topK most similar chunks.
func (s *SearchService) Search(
	ctx context.Context, query string, opts domain.SearchOptions,
) ([]domain.SearchResult, error) {
	logger.Section("Search Execution")

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domain.ErrEmptyQuery
	}
	logger.Debug("Query: %q", query)

	topK := opts.TopK
	if topK <= 0 {
		topK = domain.DefaultTopK
	}
	logger.Debug("TopK: %d", topK)

	if s.vectorIndex == nil {
		return nil, domain.ErrIndexUnavailable
	}

	key := NormalizeQuery(query)
	if s.cache != nil {
		if results, ok := s.cache.Get(key); ok {
			logger.Info("Cache hit for %q", key)
			if len(results) > topK {
				results = results[:topK]
			}
			return results, nil
		}
		logger.Debug("Cache miss for %q", key)
	}

	logger.Debug("Generating query embedding...")
	embedding, err := s.embedder.Embed(ctx, query)
	if err != nil {
		logger.Warn("Query embedding failed: %v", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrEmbeddingUnavailable, err)
	}
	logger.Debug("Query embedding: %d dimensions", len(embedding))

	results, err := s.vectorIndex.Search(ctx, embedding, topK)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}
	logger.Info("Results: %d", len(results))

	// Failures are never cached; only a completed search reaches here.
	if s.cache != nil {
		s.cache.Put(key, results)
	}

	return results, nil
}
