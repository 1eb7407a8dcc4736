package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrEmptyQuery indicates a blank search query.
	// Rejected before any external call is made.
	ErrEmptyQuery = errors.New("empty query")

	// ErrEmptyMessage indicates a blank chat message.
	// Rejected before any external call is made.
	ErrEmptyMessage = errors.New("empty message")

	// ErrIndexUnavailable indicates the persisted embedding index is
	// missing or malformed. Search-dependent operations must refuse to
	// run rather than fall back to empty results.
	ErrIndexUnavailable = errors.New("embedding index unavailable")

	// ErrEmbeddingUnavailable indicates the embedding capability failed
	// or timed out. Callers must not cache this as an empty result.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrGenerationFailed indicates the generation capability failed or
	// timed out. The session context is left unchanged.
	ErrGenerationFailed = errors.New("generation failed")
)
