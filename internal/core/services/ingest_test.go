package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bayani-labs/lakbay/internal/core/domain"
	"github.com/bayani-labs/lakbay/internal/core/ports/driven"
	"github.com/bayani-labs/lakbay/internal/corpus/markdown"
)

// --- Mock implementations ---

// memoryIndexStore implements driven.IndexStore for testing.
type memoryIndexStore struct {
	chunks    []domain.Chunk
	appendErr error
}

func (m *memoryIndexStore) Load(_ context.Context) ([]domain.Chunk, error) {
	if len(m.chunks) == 0 {
		return nil, domain.ErrIndexUnavailable
	}
	return m.chunks, nil
}

func (m *memoryIndexStore) Append(_ context.Context, chunk domain.Chunk) error {
	if m.appendErr != nil {
		return m.appendErr
	}
	m.chunks = append(m.chunks, chunk)
	return nil
}

func (m *memoryIndexStore) Sources(_ context.Context) (map[string]bool, error) {
	sources := make(map[string]bool)
	for _, c := range m.chunks {
		sources[c.SourceID] = true
	}
	return sources, nil
}

func (m *memoryIndexStore) Close() error { return nil }

// flakyEmbedder fails its first failures calls, then succeeds.
type flakyEmbedder struct {
	failures int
	calls    int
}

func (f *flakyEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, errors.New("rate limited")
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

func (f *flakyEmbedder) Dimensions() int { return 3 }

func (f *flakyEmbedder) ModelName() string { return "mock-embed" }

func (f *flakyEmbedder) Ping(_ context.Context) error { return nil }

func (f *flakyEmbedder) Close() error { return nil }

// --- Test helpers ---

func writeCorpusFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0600))
}

const sampleMarkdown = `# Boracay

White Beach runs four kilometres.

## Getting There

Fly to Caticlan, then take the ferry.

## Empty Heading

`

func newTestIngestService(store driven.IndexStore, embedder driven.EmbeddingService) *IngestService {
	return NewIngestService(
		store,
		embedder,
		[]driven.SectionSplitter{markdown.New()},
		WithRetryPolicy(3, 0), // no backoff delay in tests
	)
}

// --- Tests ---

func TestIngestSplitsAndPersists(t *testing.T) {
	dir := t.TempDir()
	writeCorpusFile(t, dir, "boracay.md", sampleMarkdown)

	store := &memoryIndexStore{}
	svc := newTestIngestService(store, &flakyEmbedder{})

	stats, err := svc.Ingest(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, 1, stats.SourcesSeen)
	assert.Equal(t, 0, stats.SourcesSkipped)
	assert.Equal(t, 2, stats.ChunksAdded, "the empty-bodied section is discarded")
	assert.Equal(t, 0, stats.ChunksFailed)

	require.Len(t, store.chunks, 2)
	first := store.chunks[0]
	assert.Equal(t, "boracay.md", first.SourceID)
	assert.Equal(t, 0, first.SectionIndex)
	assert.Equal(t, "Boracay", first.Title)
	assert.Equal(t, "Boracay\nWhite Beach runs four kilometres.", first.Text)
	assert.NotEmpty(t, first.Vector)

	assert.Equal(t, 1, store.chunks[1].SectionIndex)
	assert.Equal(t, "Getting There", store.chunks[1].Title)
}

func TestIngestSkipsUnsupportedFiles(t *testing.T) {
	dir := t.TempDir()
	writeCorpusFile(t, dir, "notes.txt", "plain text")
	writeCorpusFile(t, dir, "boracay.md", sampleMarkdown)

	store := &memoryIndexStore{}
	svc := newTestIngestService(store, &flakyEmbedder{})

	stats, err := svc.Ingest(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.SourcesSeen, "unsupported files are not counted")
}

func TestIngestResumesSkippingIngestedSources(t *testing.T) {
	dir := t.TempDir()
	writeCorpusFile(t, dir, "boracay.md", sampleMarkdown)
	writeCorpusFile(t, dir, "palawan.md", "# El Nido\n\nLagoons and cliffs.\n")

	store := &memoryIndexStore{chunks: []domain.Chunk{
		{SourceID: "boracay.md", SectionIndex: 0, Title: "Boracay", Vector: []float32{1}},
	}}
	svc := newTestIngestService(store, &flakyEmbedder{})

	stats, err := svc.Ingest(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.SourcesSeen)
	assert.Equal(t, 1, stats.SourcesSkipped)
	assert.Equal(t, 1, stats.ChunksAdded, "only the new source is embedded")
}

func TestIngestRetriesTransientEmbedFailures(t *testing.T) {
	dir := t.TempDir()
	writeCorpusFile(t, dir, "palawan.md", "# El Nido\n\nLagoons and cliffs.\n")

	store := &memoryIndexStore{}
	embedder := &flakyEmbedder{failures: 2}
	svc := newTestIngestService(store, embedder)

	stats, err := svc.Ingest(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, 1, stats.ChunksAdded)
	assert.Equal(t, 0, stats.ChunksFailed)
	assert.Equal(t, 3, embedder.calls, "two failures then one success")
}

func TestIngestSkipsChunkAfterExhaustedRetries(t *testing.T) {
	dir := t.TempDir()
	writeCorpusFile(t, dir, "palawan.md", "# El Nido\n\nLagoons and cliffs.\n")

	store := &memoryIndexStore{}
	embedder := &flakyEmbedder{failures: 100}
	svc := newTestIngestService(store, embedder)

	stats, err := svc.Ingest(context.Background(), dir)
	require.NoError(t, err, "chunk failures never abort the run")

	assert.Equal(t, 0, stats.ChunksAdded)
	assert.Equal(t, 1, stats.ChunksFailed)
	assert.Equal(t, 3, embedder.calls)
	assert.Empty(t, store.chunks)
}

func TestIngestAbortsOnPersistFailure(t *testing.T) {
	dir := t.TempDir()
	writeCorpusFile(t, dir, "palawan.md", "# El Nido\n\nLagoons and cliffs.\n")

	store := &memoryIndexStore{appendErr: errors.New("disk full")}
	svc := newTestIngestService(store, &flakyEmbedder{})

	_, err := svc.Ingest(context.Background(), dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestIngestMissingDirectory(t *testing.T) {
	svc := newTestIngestService(&memoryIndexStore{}, &flakyEmbedder{})

	_, err := svc.Ingest(context.Background(), filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestIngestHonoursCancellation(t *testing.T) {
	dir := t.TempDir()
	writeCorpusFile(t, dir, "boracay.md", sampleMarkdown)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	svc := newTestIngestService(&memoryIndexStore{}, &flakyEmbedder{})
	_, err := svc.Ingest(ctx, dir)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSleepContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := sleepContext(ctx, time.Second)
	assert.ErrorIs(t, err, context.Canceled)
}
