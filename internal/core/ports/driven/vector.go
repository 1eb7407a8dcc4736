package driven

import (
	"context"

	"github.com/bayani-labs/lakbay/internal/core/domain"
)

// VectorIndex ranks indexed chunks by similarity to a query vector.
//
// The shipped implementation is an exhaustive cosine scan, which is the
// right trade-off at hundreds to low thousands of chunks. If the corpus
// grows, an approximate-nearest-neighbour index is a drop-in replacement
// behind this interface.
type VectorIndex interface {
	// Search returns the k most similar chunks, sorted descending by
	// similarity with ties broken by index insertion order. Chunks whose
	// similarity is undefined (zero-magnitude vectors) sort last.
	Search(ctx context.Context, query []float32, k int) ([]domain.SearchResult, error)

	// Size returns the number of indexed chunks.
	Size() int
}
