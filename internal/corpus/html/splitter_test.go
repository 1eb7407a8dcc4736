package html

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSupports(t *testing.T) {
	s := New()

	assert.True(t, s.Supports("page.html"))
	assert.True(t, s.Supports("page.htm"))
	assert.True(t, s.Supports("PAGE.HTML"))
	assert.False(t, s.Supports("page.md"))
}

func TestSplitSectionsAtHeadings(t *testing.T) {
	page := `<html><body>
<h1>Boracay</h1>
<p>Island intro.</p>
<h2>Beaches</h2>
<p>White Beach and Puka.</p>
<p>Four kilometres of sand.</p>
<h3>Getting Around</h3>
<p>Tricycles everywhere.</p>
</body></html>`

	sections, err := New().Split([]byte(page))
	require.NoError(t, err)
	require.Len(t, sections, 3)

	assert.Equal(t, "Boracay", sections[0].Title)
	assert.Equal(t, 0, sections[0].Index)
	assert.Equal(t, "Island intro.", sections[0].Body)

	assert.Equal(t, "Beaches", sections[1].Title)
	assert.Equal(t, "White Beach and Puka. Four kilometres of sand.", sections[1].Body)

	assert.Equal(t, "Getting Around", sections[2].Title)
	assert.Equal(t, 2, sections[2].Index)
}

func TestSplitStripsScriptAndStyle(t *testing.T) {
	page := `<html><head><style>p { color: red; }</style></head><body>
<h1>Palawan</h1>
<p>Lagoons and cliffs.</p>
<script>console.log("tracking");</script>
</body></html>`

	sections, err := New().Split([]byte(page))
	require.NoError(t, err)
	require.Len(t, sections, 1)

	assert.NotContains(t, sections[0].Body, "tracking")
	assert.NotContains(t, sections[0].Body, "color")
	assert.Contains(t, sections[0].Body, "Lagoons and cliffs.")
}

func TestSplitSkipsHeadingsWithoutBody(t *testing.T) {
	page := `<html><body>
<h1>Has Body</h1>
<p>Some text.</p>
<h2>No Body</h2>
<h2>Also Has Body</h2>
<p>More text.</p>
</body></html>`

	sections, err := New().Split([]byte(page))
	require.NoError(t, err)
	require.Len(t, sections, 2)

	assert.Equal(t, "Has Body", sections[0].Title)
	assert.Equal(t, 0, sections[0].Index)
	// The bodiless heading still consumed ordinal 1.
	assert.Equal(t, "Also Has Body", sections[1].Title)
	assert.Equal(t, 2, sections[1].Index)
}

func TestSplitLowerHeadingsAreBodyText(t *testing.T) {
	page := `<html><body>
<h3>Section</h3>
<h4>Subsection label</h4>
<p>Details.</p>
</body></html>`

	sections, err := New().Split([]byte(page))
	require.NoError(t, err)
	require.Len(t, sections, 1)
	assert.Contains(t, sections[0].Body, "Subsection label")
	assert.Contains(t, sections[0].Body, "Details.")
}

func TestSplitEmptyDocument(t *testing.T) {
	sections, err := New().Split([]byte("<html><body><p>no headings</p></body></html>"))
	require.NoError(t, err)
	assert.Empty(t, sections)
}
