package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSupports(t *testing.T) {
	s := New()

	assert.True(t, s.Supports("guide.md"))
	assert.True(t, s.Supports("guide.markdown"))
	assert.True(t, s.Supports("GUIDE.MD"))
	assert.False(t, s.Supports("guide.html"))
	assert.False(t, s.Supports("guide.txt"))
	assert.False(t, s.Supports("md"))
}

func TestSplitHeadingLevels(t *testing.T) {
	content := `# Boracay

Island intro.

## Beaches

White Beach and Puka.

### Getting Around

Tricycles everywhere.

#### Too Deep

This level is body text, not a heading.
`
	sections, err := New().Split([]byte(content))
	require.NoError(t, err)
	require.Len(t, sections, 3)

	assert.Equal(t, "Boracay", sections[0].Title)
	assert.Equal(t, 0, sections[0].Index)
	assert.Equal(t, "Island intro.", sections[0].Body)

	assert.Equal(t, "Beaches", sections[1].Title)
	assert.Equal(t, 1, sections[1].Index)

	assert.Equal(t, "Getting Around", sections[2].Title)
	// A level-4 heading does not open a section; its line joins the body.
	assert.Contains(t, sections[2].Body, "This level is body text")
}

func TestSplitDiscardedSectionsKeepOrdinals(t *testing.T) {
	content := `# First

Has a body.

## Empty

## Third

Also has a body.
`
	sections, err := New().Split([]byte(content))
	require.NoError(t, err)
	require.Len(t, sections, 2)

	assert.Equal(t, 0, sections[0].Index)
	assert.Equal(t, "First", sections[0].Title)
	// "Empty" consumed ordinal 1 even though it produced no section.
	assert.Equal(t, 2, sections[1].Index)
	assert.Equal(t, "Third", sections[1].Title)
}

func TestSplitContentBeforeFirstHeadingIsDropped(t *testing.T) {
	content := `Preamble with no heading.

# Real Section

Body.
`
	sections, err := New().Split([]byte(content))
	require.NoError(t, err)
	require.Len(t, sections, 1)
	assert.Equal(t, "Real Section", sections[0].Title)
	assert.NotContains(t, sections[0].Body, "Preamble")
}

func TestSplitNoHeadings(t *testing.T) {
	sections, err := New().Split([]byte("just some text\nwith no headings"))
	require.NoError(t, err)
	assert.Empty(t, sections)
}

func TestCleanBodyStripsFormatting(t *testing.T) {
	content := "# Section\n\n" +
		"See [El Nido](https://example.com/el-nido) and ![photo](img.png).\n\n" +
		"- Kayak rental\n" +
		"1. Island hopping\n\n" +
		"Use `the ferry` and **bring cash**.\n\n" +
		"```\ncode block gone\n```\n"

	sections, err := New().Split([]byte(content))
	require.NoError(t, err)
	require.Len(t, sections, 1)

	body := sections[0].Body
	assert.Contains(t, body, "El Nido")
	assert.NotContains(t, body, "https://example.com")
	assert.NotContains(t, body, "![photo]")
	assert.NotContains(t, body, "- Kayak")
	assert.Contains(t, body, "Kayak rental")
	assert.Contains(t, body, "the ferry")
	assert.NotContains(t, body, "`")
	assert.Contains(t, body, "bring cash")
	assert.NotContains(t, body, "**")
	assert.NotContains(t, body, "code block gone")
}

func TestChunkTextJoinsTitleAndBody(t *testing.T) {
	sections, err := New().Split([]byte("# Coron\n\nWreck diving.\n"))
	require.NoError(t, err)
	require.Len(t, sections, 1)
	assert.Equal(t, "Coron\nWreck diving.", sections[0].ChunkText())
}
