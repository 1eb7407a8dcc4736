package driving

import (
	"context"

	"github.com/bayani-labs/lakbay/internal/core/domain"
)

// SearchService exposes similarity search over the embedding index.
type SearchService interface {
	// Search embeds the query and returns the most similar chunks.
	// Fails with domain.ErrEmptyQuery, domain.ErrEmbeddingUnavailable or
	// domain.ErrIndexUnavailable; an empty result slice means the search
	// ran and genuinely found nothing.
	Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.SearchResult, error)
}
