package driving

import "context"

// IngestStats summarises one ingestion run.
type IngestStats struct {
	// SourcesSeen is the number of corpus files considered.
	SourcesSeen int

	// SourcesSkipped is the number already represented in the index.
	SourcesSkipped int

	// ChunksAdded is the number of chunks embedded and persisted.
	ChunksAdded int

	// ChunksFailed is the number skipped after exhausting embed retries.
	ChunksFailed int
}

// IngestService builds the embedding index from a corpus directory.
type IngestService interface {
	// Ingest processes every supported file under dir, appending new
	// chunks to the index. Already-ingested sources are skipped, so a
	// re-run after a crash resumes rather than duplicates. Per-chunk
	// failures are logged and skipped; the run itself never aborts on
	// them.
	Ingest(ctx context.Context, dir string) (IngestStats, error)
}
