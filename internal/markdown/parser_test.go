package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/draftaid-io/draftaid/internal/core/domain"
)

func TestParse_Empty(t *testing.T) {
	doc := Parse("")

	require.Len(t, doc.Blocks, 1)
	assert.Equal(t, domain.BlockParagraph, doc.Blocks[0].Kind)
	assert.Equal(t, "", doc.Blocks[0].Text)
}

func TestParse_Headings(t *testing.T) {
	doc := Parse("# Title\n\n## Section\n\nBody text.")

	require.Len(t, doc.Blocks, 3)
	assert.Equal(t, domain.BlockHeading, doc.Blocks[0].Kind)
	assert.Equal(t, 1, doc.Blocks[0].Level)
	assert.Equal(t, "Title", doc.Blocks[0].Text)
	assert.Equal(t, domain.BlockHeading, doc.Blocks[1].Kind)
	assert.Equal(t, 2, doc.Blocks[1].Level)
	assert.Equal(t, domain.BlockParagraph, doc.Blocks[2].Kind)
	assert.Equal(t, "Body text.", doc.Blocks[2].Text)
}

func TestParse_ParagraphJoinsWrappedLines(t *testing.T) {
	doc := Parse("First line of the paragraph\ncontinues on the second line.\n\nNext paragraph.")

	require.Len(t, doc.Blocks, 2)
	assert.Equal(t, "First line of the paragraph continues on the second line.", doc.Blocks[0].Text)
	assert.Equal(t, "Next paragraph.", doc.Blocks[1].Text)
}

func TestParse_BulletList(t *testing.T) {
	doc := Parse("- first item\n- second item\n  - nested item")

	require.Len(t, doc.Blocks, 3)
	for _, b := range doc.Blocks {
		assert.Equal(t, domain.BlockListItem, b.Kind)
	}
	assert.Equal(t, 1, doc.Blocks[0].Level)
	assert.Equal(t, "first item", doc.Blocks[0].Text)
	assert.Equal(t, 2, doc.Blocks[2].Level)
	assert.Equal(t, "nested item", doc.Blocks[2].Text)
}

func TestParse_NumberedList(t *testing.T) {
	doc := Parse("1. first\n2. second")

	require.Len(t, doc.Blocks, 2)
	assert.Equal(t, domain.BlockListItem, doc.Blocks[0].Kind)
	assert.Equal(t, "first", doc.Blocks[0].Text)
	assert.Equal(t, "second", doc.Blocks[1].Text)
}

func TestParse_CodeBlocksSkipped(t *testing.T) {
	doc := Parse("Before the code.\n\n```go\nfunc main() {}\n```\n\nAfter the code.")

	require.Len(t, doc.Blocks, 2)
	assert.Equal(t, "Before the code.", doc.Blocks[0].Text)
	assert.Equal(t, "After the code.", doc.Blocks[1].Text)
}

func TestParse_HorizontalRuleSeparatesParagraphs(t *testing.T) {
	doc := Parse("Above the rule.\n---\nBelow the rule.")

	require.Len(t, doc.Blocks, 2)
	assert.Equal(t, "Above the rule.", doc.Blocks[0].Text)
	assert.Equal(t, "Below the rule.", doc.Blocks[1].Text)
}

func TestParse_BlockquoteMarkerStripped(t *testing.T) {
	doc := Parse("> Quoted prose is still essay text.")

	require.Len(t, doc.Blocks, 1)
	assert.Equal(t, "Quoted prose is still essay text.", doc.Blocks[0].Text)
}

func TestParse_InlineFormattingStripped(t *testing.T) {
	doc := Parse("This has **bold**, *italic*, `code` and a [link](https://example.com) in it.")

	require.Len(t, doc.Blocks, 1)
	assert.Equal(t, "This has bold, italic, code and a link in it.", doc.Blocks[0].Text)
}

func TestParse_ImagesRemoved(t *testing.T) {
	doc := Parse("Before ![alt text](image.png) after.")

	require.Len(t, doc.Blocks, 1)
	assert.Equal(t, "Before  after.", doc.Blocks[0].Text)
}

func TestParse_PlainTextProjection(t *testing.T) {
	doc := Parse("# Title\n\nA paragraph.\n\n- an item")

	assert.Equal(t, "Title\nA paragraph.\nan item", doc.PlainText())
}
