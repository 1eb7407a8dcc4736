package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bayani-labs/lakbay/internal/core/domain"
	"github.com/bayani-labs/lakbay/internal/core/ports/driven"
	"github.com/bayani-labs/lakbay/internal/core/ports/driving"
	"github.com/bayani-labs/lakbay/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// Embedding retry policy: a failed embed call is retried with exponential
// backoff (base delay doubled per attempt) before the chunk is skipped.
const (
	DefaultEmbedRetries   = 3
	DefaultEmbedBaseDelay = 1500 * time.Millisecond
)

// IngestService builds the embedding index from a corpus directory.
// Ingestion is append-only and resumable: sources already present in the
// index are skipped, and every successful chunk is persisted immediately,
// so a crash loses at most the one in-flight chunk.
type IngestService struct {
	store     driven.IndexStore
	embedder  driven.EmbeddingService
	splitters []driven.SectionSplitter
	retries   int
	baseDelay time.Duration
}

// IngestOption configures the ingestion service.
type IngestOption func(*IngestService)

// WithRetryPolicy overrides the embed retry count and backoff base delay.
func WithRetryPolicy(retries int, baseDelay time.Duration) IngestOption {
	return func(s *IngestService) {
		if retries > 0 {
			s.retries = retries
		}
		if baseDelay >= 0 {
			s.baseDelay = baseDelay
		}
	}
}

// NewIngestService creates a new ingestion service.
func NewIngestService(
	store driven.IndexStore,
	embedder driven.EmbeddingService,
	splitters []driven.SectionSplitter,
	opts ...IngestOption,
) *IngestService {
	s := &IngestService{
		store:     store,
		embedder:  embedder,
		splitters: splitters,
		retries:   DefaultEmbedRetries,
		baseDelay: DefaultEmbedBaseDelay,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ingest processes every supported file under dir.
func (s *IngestService) Ingest(ctx context.Context, dir string) (driving.IngestStats, error) {
	logger.Section("Corpus Ingestion")
	var stats driving.IngestStats

	done, err := s.store.Sources(ctx)
	if err != nil {
		return stats, fmt.Errorf("load ingested sources: %w", err)
	}
	logger.Debug("Index already holds %d sources", len(done))

	entries, err := os.ReadDir(dir)
	if err != nil {
		return stats, fmt.Errorf("read corpus directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		splitter := s.splitterFor(entry.Name())
		if splitter == nil {
			continue
		}
		stats.SourcesSeen++

		sourceID := entry.Name()
		if done[sourceID] {
			logger.Debug("Skipping %s - already ingested", sourceID)
			stats.SourcesSkipped++
			continue
		}

		if err := s.ingestFile(ctx, filepath.Join(dir, entry.Name()), sourceID, splitter, &stats); err != nil {
			return stats, err
		}
	}

	logger.Info("Ingestion complete: %d added, %d failed, %d sources skipped",
		stats.ChunksAdded, stats.ChunksFailed, stats.SourcesSkipped)
	return stats, nil
}

// ingestFile splits one source into sections and embeds and persists each.
// Embedding failures skip the chunk; persistence failures abort the run.
func (s *IngestService) ingestFile(
	ctx context.Context,
	path, sourceID string,
	splitter driven.SectionSplitter,
	stats *driving.IngestStats,
) error {
	content, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("Skipping %s: %v", sourceID, err)
		return nil
	}

	sections, err := splitter.Split(content)
	if err != nil {
		logger.Warn("Skipping %s: %v", sourceID, err)
		return nil
	}
	logger.Info("Ingesting %s: %d sections", sourceID, len(sections))

	for _, section := range sections {
		if err := ctx.Err(); err != nil {
			return err
		}

		vector, err := s.embedWithRetry(ctx, section.ChunkText())
		if err != nil {
			logger.Warn("Skipping section %d of %s after retries: %v",
				section.Index, sourceID, err)
			stats.ChunksFailed++
			continue
		}

		chunk := domain.Chunk{
			SourceID:     sourceID,
			SectionIndex: section.Index,
			Title:        section.Title,
			Text:         section.ChunkText(),
			Vector:       vector,
		}
		if err := s.store.Append(ctx, chunk); err != nil {
			return fmt.Errorf("persist chunk %s/%d: %w", sourceID, section.Index, err)
		}
		stats.ChunksAdded++
	}

	return nil
}

// embedWithRetry calls the embedding capability with exponential backoff.
func (s *IngestService) embedWithRetry(ctx context.Context, text string) ([]float32, error) {
	var lastErr error
	for attempt := 1; attempt <= s.retries; attempt++ {
		vector, err := s.embedder.Embed(ctx, text)
		if err == nil {
			return vector, nil
		}
		lastErr = err
		logger.Warn("Embed attempt %d/%d failed: %v", attempt, s.retries, err)

		if attempt == s.retries {
			break
		}
		wait := s.baseDelay * (1 << (attempt - 1))
		if err := sleepContext(ctx, wait); err != nil {
			return nil, err
		}
	}
	return nil, lastErr
}

// splitterFor returns the first splitter supporting the file name.
func (s *IngestService) splitterFor(name string) driven.SectionSplitter {
	for _, splitter := range s.splitters {
		if splitter.Supports(name) {
			return splitter
		}
	}
	return nil
}

// sleepContext waits for d or until ctx is cancelled.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
