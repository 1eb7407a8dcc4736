package domain

// Chunk is a unit of retrievable knowledge: a titled section of a corpus
// document together with its embedding vector.
// A chunk is immutable once created; identity is (SourceID, SectionIndex).
type Chunk struct {
	// SourceID identifies the corpus document the chunk came from.
	SourceID string `json:"sourceId"`

	// SectionIndex is the ordinal position of the section within the source.
	SectionIndex int `json:"sectionIndex"`

	// Title is the heading text of the section.
	Title string `json:"title"`

	// Text is the full chunk text: the title followed by the section body.
	Text string `json:"text"`

	// Vector is the embedding of Text. All vectors in an index share the
	// same dimensionality.
	Vector []float32 `json:"vector"`
}

// Key returns the chunk's identity within an index.
func (c Chunk) Key() ChunkKey {
	return ChunkKey{SourceID: c.SourceID, SectionIndex: c.SectionIndex}
}

// ChunkKey is the identity of a chunk: no two chunks in an index share one.
type ChunkKey struct {
	SourceID     string
	SectionIndex int
}

// Section is a titled slice of a corpus document before embedding.
// Produced by the corpus splitters, consumed by the ingestion pipeline.
type Section struct {
	// Index is the ordinal of the section's heading within the document.
	// Headings whose sections are discarded for having no body still
	// advance the ordinal, so identity is stable across re-runs.
	Index int

	// Title is the heading text.
	Title string

	// Body is the content between this heading and the next.
	Body string
}

// ChunkText returns the text submitted to the embedding capability:
// the title and body joined by a newline.
func (s Section) ChunkText() string {
	return s.Title + "\n" + s.Body
}
