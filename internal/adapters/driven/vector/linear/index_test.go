package linear

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bayani-labs/lakbay/internal/core/domain"
)

func chunk(source string, section int, title string, vector []float32) domain.Chunk {
	return domain.Chunk{
		SourceID:     source,
		SectionIndex: section,
		Title:        title,
		Text:         title + "\nbody",
		Vector:       vector,
	}
}

func TestCosine(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 0, 0}, []float32{1, 0, 0}, 1.0},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0.0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1.0},
		{"scaled", []float32{2, 0}, []float32{5, 0}, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Cosine(tt.a, tt.b), 1e-6)
		})
	}
}

func TestCosineZeroVectorIsNaN(t *testing.T) {
	got := Cosine([]float32{0, 0}, []float32{1, 0})
	assert.True(t, math.IsNaN(got))
}

func TestSearchOrdersBySimilarityDescending(t *testing.T) {
	idx := New([]domain.Chunk{
		chunk("beaches.md", 0, "Boracay White Beach", []float32{0.1, 0.9}),
		chunk("islands.md", 0, "Palawan Island Hopping", []float32{0.9, 0.1}),
		chunk("cities.md", 0, "Manila Nightlife", []float32{0.5, 0.5}),
	})

	results, err := idx.Search(context.Background(), []float32{1, 0}, 3)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, "Palawan Island Hopping", results[0].Chunk.Title)
	assert.Equal(t, "Manila Nightlife", results[1].Chunk.Title)
	assert.Equal(t, "Boracay White Beach", results[2].Chunk.Title)

	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].Similarity, results[i].Similarity)
	}
}

func TestSearchTruncatesToK(t *testing.T) {
	idx := New([]domain.Chunk{
		chunk("a.md", 0, "A", []float32{1, 0}),
		chunk("b.md", 0, "B", []float32{0.9, 0.1}),
		chunk("c.md", 0, "C", []float32{0.8, 0.2}),
	})

	results, err := idx.Search(context.Background(), []float32{1, 0}, 2)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestSearchKLargerThanIndex(t *testing.T) {
	idx := New([]domain.Chunk{
		chunk("a.md", 0, "A", []float32{1, 0}),
	})

	results, err := idx.Search(context.Background(), []float32{1, 0}, 10)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestSearchTiesKeepInsertionOrder(t *testing.T) {
	// Identical vectors produce identical similarities; the earlier
	// chunk must stay first.
	idx := New([]domain.Chunk{
		chunk("first.md", 0, "First", []float32{1, 0}),
		chunk("second.md", 0, "Second", []float32{1, 0}),
		chunk("third.md", 0, "Third", []float32{1, 0}),
	})

	results, err := idx.Search(context.Background(), []float32{1, 0}, 3)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, "First", results[0].Chunk.Title)
	assert.Equal(t, "Second", results[1].Chunk.Title)
	assert.Equal(t, "Third", results[2].Chunk.Title)
	assert.Equal(t, results[0].Similarity, results[1].Similarity)
}

func TestSearchZeroMagnitudeVectorsSortLast(t *testing.T) {
	idx := New([]domain.Chunk{
		chunk("zero.md", 0, "Zero", []float32{0, 0}),
		chunk("real.md", 0, "Real", []float32{0.2, 0.8}),
	})

	results, err := idx.Search(context.Background(), []float32{1, 1}, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "Real", results[0].Chunk.Title)
	assert.Equal(t, "Zero", results[1].Chunk.Title)
	assert.True(t, math.IsNaN(results[1].Similarity))
}

func TestSearchEmptyIndex(t *testing.T) {
	idx := New(nil)
	assert.Equal(t, 0, idx.Size())

	results, err := idx.Search(context.Background(), []float32{1, 0}, 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSize(t *testing.T) {
	idx := New([]domain.Chunk{
		chunk("a.md", 0, "A", []float32{1, 0}),
		chunk("b.md", 0, "B", []float32{0, 1}),
	})
	assert.Equal(t, 2, idx.Size())
}
