// Package markdown splits Markdown corpus files into titled sections at
// level 1-3 heading boundaries.
package markdown

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/bayani-labs/lakbay/internal/core/domain"
	"github.com/bayani-labs/lakbay/internal/core/ports/driven"
)

// Ensure Splitter implements the interface.
var _ driven.SectionSplitter = (*Splitter)(nil)

// Splitter handles Markdown documents.
type Splitter struct{}

// New creates a new Markdown splitter.
func New() *Splitter {
	return &Splitter{}
}

// Supports reports whether the splitter handles the given file name.
func (s *Splitter) Supports(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".md", ".markdown":
		return true
	}
	return false
}

var headingPattern = regexp.MustCompile(`^(#{1,3})\s+(.+)$`)

// Split returns the document's sections in order of appearance.
// A section is a level 1-3 heading plus everything up to the next such
// heading; sections with empty bodies are discarded but still advance
// the section ordinal, keeping chunk identity stable.
func (s *Splitter) Split(content []byte) ([]domain.Section, error) {
	lines := strings.Split(string(content), "\n")

	var sections []domain.Section
	var current *domain.Section
	var body []string
	ordinal := 0

	flush := func() {
		if current == nil {
			return
		}
		text := cleanBody(strings.Join(body, "\n"))
		if text != "" {
			current.Body = text
			sections = append(sections, *current)
		}
		current = nil
		body = nil
	}

	for _, line := range lines {
		if m := headingPattern.FindStringSubmatch(strings.TrimRight(line, " \t")); m != nil {
			flush()
			current = &domain.Section{
				Index: ordinal,
				Title: strings.TrimSpace(m[2]),
			}
			ordinal++
			continue
		}
		if current != nil {
			body = append(body, line)
		}
		// Content before the first heading has no title and is dropped.
	}
	flush()

	return sections, nil
}

var (
	codeBlockPattern  = regexp.MustCompile("(?s)```[^`]*```")
	inlineCodePattern = regexp.MustCompile("`([^`]+)`")
	imagePattern      = regexp.MustCompile(`!\[[^\]]*\]\([^)]+\)`)
	linkPattern       = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	listPattern       = regexp.MustCompile(`(?m)^\s*[-*+]\s+`)
	numberedPattern   = regexp.MustCompile(`(?m)^\s*\d+\.\s+`)
	blankRunPattern   = regexp.MustCompile(`\n{3,}`)
)

// cleanBody strips common markdown formatting from section body text so
// the embedded chunk is close to plain prose.
func cleanBody(body string) string {
	body = codeBlockPattern.ReplaceAllString(body, "")
	body = imagePattern.ReplaceAllString(body, "")
	body = linkPattern.ReplaceAllString(body, "$1")
	body = inlineCodePattern.ReplaceAllString(body, "$1")
	body = listPattern.ReplaceAllString(body, "")
	body = numberedPattern.ReplaceAllString(body, "")
	body = strings.ReplaceAll(body, "**", "")
	body = strings.ReplaceAll(body, "__", "")
	body = blankRunPattern.ReplaceAllString(body, "\n\n")
	return strings.TrimSpace(body)
}
