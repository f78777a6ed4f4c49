package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/draftaid-io/draftaid/internal/core/domain"
)

func TestMapper_RoundTrip(t *testing.T) {
	m := NewMapper()
	doc := domain.NewTextDocument("First paragraph.", "Second one.", "Third.")

	for offset := 0; offset <= doc.PlainLength(); offset++ {
		pos, err := m.ToDocumentPosition(doc, offset)
		require.NoError(t, err)

		back, err := m.ToPlainOffset(doc, pos)
		require.NoError(t, err)
		assert.Equal(t, offset, back)
	}
}

func TestMapper_ToDocumentPosition_OutOfRange(t *testing.T) {
	m := NewMapper()
	doc := domain.NewTextDocument("Hello")

	_, err := m.ToDocumentPosition(doc, -1)
	assert.ErrorIs(t, err, domain.ErrOffsetOutOfRange)

	_, err = m.ToDocumentPosition(doc, 6)
	assert.ErrorIs(t, err, domain.ErrOffsetOutOfRange)
}

func TestMapper_ToPlainOffset_BoundarySlot(t *testing.T) {
	m := NewMapper()
	doc := domain.NewTextDocument("Hello", "World")

	_, err := m.ToPlainOffset(doc, 7)
	assert.ErrorIs(t, err, domain.ErrOffsetOutOfRange)
}

func TestMapper_SpanToDocument(t *testing.T) {
	m := NewMapper()
	doc := domain.NewTextDocument("Hello", "World")

	// "World" occupies plain offsets [6, 11).
	from, to, err := m.SpanToDocument(doc, domain.Span{Start: 6, End: 11})

	require.NoError(t, err)
	assert.Equal(t, 8, from)
	assert.Equal(t, 13, to)
}

func TestMapper_SpanToDocument_OutOfRange(t *testing.T) {
	m := NewMapper()
	doc := domain.NewTextDocument("Hello")

	_, _, err := m.SpanToDocument(doc, domain.Span{Start: 0, End: 99})
	assert.ErrorIs(t, err, domain.ErrOffsetOutOfRange)
}
