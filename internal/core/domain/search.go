package domain

// DefaultTopK is the number of results returned when no limit is given.
const DefaultTopK = 5

// SearchOptions configures a similarity search.
type SearchOptions struct {
	// TopK is the maximum number of results. Defaults to DefaultTopK.
	TopK int
}

// SearchResult represents a single similarity search hit.
type SearchResult struct {
	// Chunk is the matched chunk.
	Chunk Chunk `json:"chunk"`

	// Similarity is the cosine similarity between the query vector and
	// the chunk vector, in [-1, 1]. NaN for zero-magnitude vectors;
	// such results rank last.
	Similarity float64 `json:"similarity"`
}
