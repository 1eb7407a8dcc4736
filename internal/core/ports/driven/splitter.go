package driven

import "github.com/bayani-labs/lakbay/internal/core/domain"

// SectionSplitter segments a raw corpus document into titled sections at
// heading boundaries (levels 1-3). Sections with empty bodies are not
// returned.
//
// Implementations exist for HTML and Markdown corpus files.
type SectionSplitter interface {
	// Supports reports whether the splitter handles the given file name.
	Supports(name string) bool

	// Split returns the document's sections in order of appearance.
	Split(content []byte) ([]domain.Section, error)
}
