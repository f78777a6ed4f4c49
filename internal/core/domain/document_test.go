package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTextDocument_Empty(t *testing.T) {
	doc := NewTextDocument()

	require.Len(t, doc.Blocks, 1)
	assert.Equal(t, BlockParagraph, doc.Blocks[0].Kind)
	assert.Equal(t, "", doc.PlainText())
	assert.Equal(t, 0, doc.PlainLength())
	assert.Equal(t, 2, doc.Length())
}

func TestDocument_PlainText_JoinsBlocksWithNewline(t *testing.T) {
	doc := NewTextDocument("Hello", "World")

	assert.Equal(t, "Hello\nWorld", doc.PlainText())
	assert.Equal(t, 11, doc.PlainLength())
	assert.Equal(t, 14, doc.Length())
}

func TestDocument_PositionRoundTrip(t *testing.T) {
	doc := NewTextDocument("Hello", "World", "Again")

	for offset := 0; offset <= doc.PlainLength(); offset++ {
		pos, err := doc.DocumentPosition(offset)
		require.NoError(t, err, "offset %d", offset)

		back, err := doc.PlainOffset(pos)
		require.NoError(t, err, "position %d", pos)
		assert.Equal(t, offset, back, "offset %d did not round-trip", offset)
	}
}

func TestDocument_DocumentPosition_FirstAndLast(t *testing.T) {
	doc := NewTextDocument("Hello", "World")

	pos, err := doc.DocumentPosition(0)
	require.NoError(t, err)
	assert.Equal(t, 1, pos)

	pos, err = doc.DocumentPosition(doc.PlainLength())
	require.NoError(t, err)
	assert.Equal(t, 13, pos)
}

func TestDocument_DocumentPosition_OutOfRange(t *testing.T) {
	doc := NewTextDocument("Hello")

	_, err := doc.DocumentPosition(-1)
	assert.ErrorIs(t, err, ErrOffsetOutOfRange)

	_, err = doc.DocumentPosition(doc.PlainLength() + 1)
	assert.ErrorIs(t, err, ErrOffsetOutOfRange)
}

func TestDocument_PlainOffset_BoundarySlotInvalid(t *testing.T) {
	doc := NewTextDocument("Hello", "World")

	// Position 0 is the opening slot of the first block, position 7 the
	// slot between the two blocks.
	_, err := doc.PlainOffset(0)
	assert.ErrorIs(t, err, ErrOffsetOutOfRange)

	_, err = doc.PlainOffset(7)
	assert.ErrorIs(t, err, ErrOffsetOutOfRange)
}

func TestDocument_ReplaceRange_WithinBlock(t *testing.T) {
	doc := NewTextDocument("Hello", "World")

	err := doc.ReplaceRange(3, 5, "EY")
	require.NoError(t, err)

	assert.Equal(t, "HeEYo\nWorld", doc.PlainText())
	assert.Len(t, doc.Blocks, 2)
}

func TestDocument_ReplaceRange_MergesSpannedBlocks(t *testing.T) {
	doc := NewTextDocument("Hello", "World")

	// From inside the first block to inside the second.
	err := doc.ReplaceRange(4, 10, "X")
	require.NoError(t, err)

	require.Len(t, doc.Blocks, 1)
	assert.Equal(t, "HelXrld", doc.PlainText())
	assert.Equal(t, BlockParagraph, doc.Blocks[0].Kind)
}

func TestDocument_ReplaceRange_InvalidRange(t *testing.T) {
	doc := NewTextDocument("Hello")

	err := doc.ReplaceRange(5, 3, "x")
	assert.ErrorIs(t, err, ErrOffsetOutOfRange)

	err = doc.ReplaceRange(0, 3, "x")
	assert.ErrorIs(t, err, ErrOffsetOutOfRange)
}

func TestDocument_ReplaceRange_SplicesMarks(t *testing.T) {
	doc := NewTextDocument("Hello")
	doc.Blocks[0].Marks = []BlockMark{
		{Mark: Mark{Type: "a"}, From: 0, To: 2},
		{Mark: Mark{Type: "b"}, From: 2, To: 4},
		{Mark: Mark{Type: "c"}, From: 4, To: 5},
	}

	// Replace "ll" with "xyz": block offsets [2, 4).
	err := doc.ReplaceRange(3, 5, "xyz")
	require.NoError(t, err)
	assert.Equal(t, "Hexyzo", doc.PlainText())

	marks := doc.Blocks[0].Marks
	require.Len(t, marks, 2)
	assert.Equal(t, "a", marks[0].Type)
	assert.Equal(t, 0, marks[0].From)
	assert.Equal(t, 2, marks[0].To)
	// The mark after the splice shifts by the length delta.
	assert.Equal(t, "c", marks[1].Type)
	assert.Equal(t, 5, marks[1].From)
	assert.Equal(t, 6, marks[1].To)
}

func TestDocument_ApplyMark_ClipsToBlocks(t *testing.T) {
	doc := NewTextDocument("Hello", "World")

	err := doc.ApplyMark(3, 11, Mark{Type: MarkTypeSuggestion})
	require.NoError(t, err)

	marks := doc.MarksOfType(MarkTypeSuggestion)
	require.Len(t, marks, 2)
	assert.Equal(t, 3, marks[0].From)
	assert.Equal(t, 6, marks[0].To)
	assert.Equal(t, 8, marks[1].From)
	assert.Equal(t, 11, marks[1].To)
}

func TestDocument_ApplyMark_EmptyRangeInvalid(t *testing.T) {
	doc := NewTextDocument("Hello")

	err := doc.ApplyMark(3, 3, Mark{Type: MarkTypeSuggestion})
	assert.ErrorIs(t, err, ErrOffsetOutOfRange)
}

func TestDocument_ClearMarks_OnlyNamedType(t *testing.T) {
	doc := NewTextDocument("Hello World")
	require.NoError(t, doc.ApplyMark(1, 6, Mark{Type: MarkTypeSuggestion}))
	require.NoError(t, doc.ApplyMark(1, 6, Mark{Type: "bold"}))

	err := doc.ClearMarks(MarkTypeSuggestion, 1, doc.Length())
	require.NoError(t, err)

	assert.Empty(t, doc.MarksOfType(MarkTypeSuggestion))
	assert.Len(t, doc.MarksOfType("bold"), 1)
}

func TestDocument_ClearMarks_OverlapOnly(t *testing.T) {
	doc := NewTextDocument("Hello World")
	require.NoError(t, doc.ApplyMark(1, 4, Mark{Type: MarkTypeSuggestion}))
	require.NoError(t, doc.ApplyMark(8, 12, Mark{Type: MarkTypeSuggestion}))

	err := doc.ClearMarks(MarkTypeSuggestion, 1, 4)
	require.NoError(t, err)

	marks := doc.MarksOfType(MarkTypeSuggestion)
	require.Len(t, marks, 1)
	assert.Equal(t, 8, marks[0].From)
}

func TestDocument_Clone_IsIndependent(t *testing.T) {
	doc := NewTextDocument("Hello")
	require.NoError(t, doc.ApplyMark(1, 4, Mark{Type: MarkTypeSuggestion}))

	clone := doc.Clone()
	clone.Blocks[0].Text = "changed"
	clone.Blocks[0].Marks[0].From = 99

	assert.Equal(t, "Hello", doc.Blocks[0].Text)
	assert.Equal(t, 1, doc.Blocks[0].Marks[0].From)
}
