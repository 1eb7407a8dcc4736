// Package linear provides an exhaustive cosine-similarity vector index.
//
// Every query scans all chunks: O(index size × vector dimension). That is
// the right trade-off at the corpus sizes Lakbay targets (hundreds to low
// thousands of chunks); a future ANN index can replace this behind the
// same VectorIndex interface.
package linear

import (
	"context"
	"math"
	"sort"

	"github.com/bayani-labs/lakbay/internal/core/domain"
	"github.com/bayani-labs/lakbay/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// Index holds the loaded chunks. It is immutable after construction and
// safe for concurrent reads without locking.
type Index struct {
	chunks []domain.Chunk
}

// New creates an index over the loaded chunks. The slice is retained;
// callers must not mutate it afterwards.
func New(chunks []domain.Chunk) *Index {
	return &Index{chunks: chunks}
}

// Size returns the number of indexed chunks.
func (idx *Index) Size() int {
	return len(idx.chunks)
}

// Search ranks every chunk by cosine similarity to the query vector.
func (idx *Index) Search(ctx context.Context, query []float32, k int) ([]domain.SearchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if k <= 0 {
		return []domain.SearchResult{}, nil
	}

	results := make([]domain.SearchResult, len(idx.chunks))
	for i, chunk := range idx.chunks {
		results[i] = domain.SearchResult{
			Chunk:      chunk,
			Similarity: Cosine(query, chunk.Vector),
		}
	}

	// Descending by similarity; stable keeps insertion order on ties.
	// NaN (undefined similarity, e.g. a zero-magnitude vector) sorts last.
	sort.SliceStable(results, func(i, j int) bool {
		si, sj := results[i].Similarity, results[j].Similarity
		if math.IsNaN(si) {
			return false
		}
		if math.IsNaN(sj) {
			return true
		}
		return si > sj
	})

	if k < len(results) {
		results = results[:k]
	}
	return results, nil
}

// Cosine returns the cosine similarity of two vectors: their dot product
// divided by the product of their magnitudes. A zero-magnitude operand
// yields NaN rather than a division-by-zero panic; callers rank NaN last.
func Cosine(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	var dot, magA, magB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
	}
	for _, v := range a {
		magA += float64(v) * float64(v)
	}
	for _, v := range b {
		magB += float64(v) * float64(v)
	}

	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}
