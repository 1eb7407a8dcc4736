// Package html splits HTML corpus pages into titled sections at h1-h3
// boundaries.
package html

import (
	"bytes"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/bayani-labs/lakbay/internal/core/domain"
	"github.com/bayani-labs/lakbay/internal/core/ports/driven"
)

// Ensure Splitter implements the interface.
var _ driven.SectionSplitter = (*Splitter)(nil)

// headingSelector matches the heading levels that open a section.
const headingSelector = "h1, h2, h3"

// Splitter handles HTML documents.
type Splitter struct{}

// New creates a new HTML splitter.
func New() *Splitter {
	return &Splitter{}
}

// Supports reports whether the splitter handles the given file name.
func (s *Splitter) Supports(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".html", ".htm":
		return true
	}
	return false
}

// Split returns the page's sections in order of appearance.
// A section is a heading plus the text of every following sibling element
// up to the next heading. Sections with empty bodies are discarded but
// still advance the section ordinal.
func (s *Splitter) Split(content []byte) ([]domain.Section, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(content))
	if err != nil {
		return nil, err
	}

	// Script and style text is markup noise, not corpus content.
	doc.Find("script, style").Remove()

	var sections []domain.Section
	doc.Find(headingSelector).Each(func(i int, heading *goquery.Selection) {
		title := strings.TrimSpace(heading.Text())

		var parts []string
		heading.NextUntil(headingSelector).Each(func(_ int, el *goquery.Selection) {
			if text := strings.TrimSpace(el.Text()); text != "" {
				parts = append(parts, text)
			}
		})

		body := strings.TrimSpace(strings.Join(parts, " "))
		if title == "" || body == "" {
			return
		}
		sections = append(sections, domain.Section{
			Index: i,
			Title: title,
			Body:  body,
		})
	})

	return sections, nil
}
