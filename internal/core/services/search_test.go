package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cachemem "github.com/bayani-labs/lakbay/internal/adapters/driven/cache/memory"
	"github.com/bayani-labs/lakbay/internal/adapters/driven/vector/linear"
	"github.com/bayani-labs/lakbay/internal/core/domain"
	"github.com/bayani-labs/lakbay/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockEmbeddingService implements driven.EmbeddingService for testing.
type mockEmbeddingService struct {
	embedding []float32
	embedErr  error
	calls     int
}

func (m *mockEmbeddingService) Embed(_ context.Context, _ string) ([]float32, error) {
	m.calls++
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	return m.embedding, nil
}

func (m *mockEmbeddingService) Dimensions() int { return len(m.embedding) }

func (m *mockEmbeddingService) ModelName() string { return "mock-embed" }

func (m *mockEmbeddingService) Ping(_ context.Context) error { return nil }

func (m *mockEmbeddingService) Close() error { return nil }

// --- Test helpers ---

func testChunks() []domain.Chunk {
	return []domain.Chunk{
		{SourceID: "boracay.md", SectionIndex: 0, Title: "White Beach", Text: "White Beach\nFour kilometres of powder sand.", Vector: []float32{0.9, 0.1}},
		{SourceID: "palawan.md", SectionIndex: 0, Title: "El Nido", Text: "El Nido\nLimestone cliffs and lagoons.", Vector: []float32{0.1, 0.9}},
		{SourceID: "palawan.md", SectionIndex: 1, Title: "Coron", Text: "Coron\nWreck diving and lakes.", Vector: []float32{0.5, 0.5}},
	}
}

func newTestSearchService(embedder *mockEmbeddingService, cache driven.ResponseCache) *SearchService {
	return NewSearchService(linear.New(testChunks()), embedder, cache)
}

// --- Tests ---

func TestNormalizeQuery(t *testing.T) {
	assert.Equal(t, "el nido", NormalizeQuery("  El NIDO  "))
	assert.Equal(t, "", NormalizeQuery("   "))
}

func TestSearchEmptyQuery(t *testing.T) {
	svc := newTestSearchService(&mockEmbeddingService{embedding: []float32{1, 0}}, nil)

	_, err := svc.Search(context.Background(), "   ", domain.SearchOptions{})
	assert.ErrorIs(t, err, domain.ErrEmptyQuery)
}

func TestSearchNilIndex(t *testing.T) {
	svc := NewSearchService(nil, &mockEmbeddingService{embedding: []float32{1, 0}}, nil)

	_, err := svc.Search(context.Background(), "beaches", domain.SearchOptions{})
	assert.ErrorIs(t, err, domain.ErrIndexUnavailable)
}

func TestSearchEmbedFailureWrapsSentinel(t *testing.T) {
	embedder := &mockEmbeddingService{embedErr: errors.New("quota exceeded")}
	svc := newTestSearchService(embedder, nil)

	_, err := svc.Search(context.Background(), "beaches", domain.SearchOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestSearchReturnsMostSimilarFirst(t *testing.T) {
	embedder := &mockEmbeddingService{embedding: []float32{1, 0}}
	svc := newTestSearchService(embedder, nil)

	results, err := svc.Search(context.Background(), "white sand beach", domain.SearchOptions{TopK: 2})
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "White Beach", results[0].Chunk.Title)
	assert.Greater(t, results[0].Similarity, results[1].Similarity)
}

func TestSearchDefaultTopK(t *testing.T) {
	embedder := &mockEmbeddingService{embedding: []float32{1, 0}}
	svc := newTestSearchService(embedder, nil)

	// Three chunks indexed, default topK is larger; all come back.
	results, err := svc.Search(context.Background(), "anywhere", domain.SearchOptions{})
	require.NoError(t, err)
	assert.Len(t, results, 3)
}

func TestSearchCacheRoundTrip(t *testing.T) {
	embedder := &mockEmbeddingService{embedding: []float32{1, 0}}
	cache := cachemem.New(time.Minute, time.Minute, true)
	svc := newTestSearchService(embedder, cache)

	first, err := svc.Search(context.Background(), "El Nido", domain.SearchOptions{TopK: 2})
	require.NoError(t, err)
	require.Equal(t, 1, embedder.calls)

	// Same query normalized differently must hit the cache: no new embed.
	second, err := svc.Search(context.Background(), "  el nido ", domain.SearchOptions{TopK: 2})
	require.NoError(t, err)
	assert.Equal(t, 1, embedder.calls)
	assert.Equal(t, first, second)
}

func TestSearchCacheHitTruncatedToSmallerTopK(t *testing.T) {
	embedder := &mockEmbeddingService{embedding: []float32{1, 0}}
	cache := cachemem.New(time.Minute, time.Minute, true)
	svc := newTestSearchService(embedder, cache)

	_, err := svc.Search(context.Background(), "islands", domain.SearchOptions{TopK: 3})
	require.NoError(t, err)

	results, err := svc.Search(context.Background(), "islands", domain.SearchOptions{TopK: 1})
	require.NoError(t, err)
	assert.Len(t, results, 1)
	assert.Equal(t, 1, embedder.calls)
}

func TestSearchCacheExpiry(t *testing.T) {
	embedder := &mockEmbeddingService{embedding: []float32{1, 0}}
	cache := cachemem.New(30*time.Millisecond, 10*time.Millisecond, true)
	svc := newTestSearchService(embedder, cache)

	_, err := svc.Search(context.Background(), "coron", domain.SearchOptions{})
	require.NoError(t, err)
	require.Equal(t, 1, embedder.calls)

	time.Sleep(60 * time.Millisecond)

	_, err = svc.Search(context.Background(), "coron", domain.SearchOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, embedder.calls, "expired entry must not be served")
}

func TestSearchDisabledCacheAlwaysMisses(t *testing.T) {
	embedder := &mockEmbeddingService{embedding: []float32{1, 0}}
	cache := cachemem.New(time.Minute, time.Minute, false)
	svc := newTestSearchService(embedder, cache)

	_, err := svc.Search(context.Background(), "boracay", domain.SearchOptions{})
	require.NoError(t, err)
	_, err = svc.Search(context.Background(), "boracay", domain.SearchOptions{})
	require.NoError(t, err)

	assert.Equal(t, 2, embedder.calls)
}

func TestSearchFailuresAreNotCached(t *testing.T) {
	embedder := &mockEmbeddingService{embedErr: errors.New("transient")}
	cache := cachemem.New(time.Minute, time.Minute, true)
	svc := newTestSearchService(embedder, cache)

	_, err := svc.Search(context.Background(), "siargao", domain.SearchOptions{})
	require.Error(t, err)

	// Recovered embedder: the query must be re-executed, not served from
	// a poisoned cache entry.
	embedder.embedErr = nil
	embedder.embedding = []float32{1, 0}

	results, err := svc.Search(context.Background(), "siargao", domain.SearchOptions{})
	require.NoError(t, err)
	assert.NotEmpty(t, results)
	assert.Equal(t, 2, embedder.calls)
}
