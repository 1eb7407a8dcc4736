package driven

import (
	"context"

	"github.com/bayani-labs/lakbay/internal/core/domain"
)

// IndexStore persists the embedding index: the sole durable artifact of the
// system. Ingestion appends to it; serving loads it wholesale at startup and
// treats it as read-only thereafter.
//
// Implementations must keep the artifact parseable after interruption:
// durability is per successful chunk, not per batch, so a crash loses at
// most the one in-flight chunk.
type IndexStore interface {
	// Load reads every chunk record in insertion order.
	// Returns domain.ErrIndexUnavailable if the artifact is missing or
	// malformed. Serving must refuse to start in that case rather than
	// fall back to an empty index.
	Load(ctx context.Context) ([]domain.Chunk, error)

	// Append persists a single chunk and flushes it before returning.
	Append(ctx context.Context, chunk domain.Chunk) error

	// Sources returns the set of source IDs already represented in the
	// index, so a re-run of ingestion resumes instead of duplicating work.
	// An absent artifact yields an empty set, not an error.
	Sources(ctx context.Context) (map[string]bool, error)

	// Close releases resources.
	Close() error
}
