package driven

import "context"

// EmbeddingService generates vector embeddings from text.
// The same model and version must be used for corpus and query embedding;
// mixing embedding spaces is a documented precondition, not enforced at
// runtime.
//
// Implementations may include:
//   - Gemini (embedding-001)
//   - Ollama (nomic-embed-text, all-minilm)
//   - Local models via inference servers
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimensions returns the embedding vector size (e.g., 768, 1536).
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test
	// request. Used at startup before committing to search operations.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
