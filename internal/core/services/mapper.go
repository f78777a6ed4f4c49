package services

import (
	"fmt"

	"github.com/draftaid-io/draftaid/internal/core/domain"
)

// Mapper converts between plain-text offsets and document positions of
// a structured document. The document model reserves a boundary slot on
// each side of every block, so the two coordinate systems drift apart
// by one slot per block boundary plus the opening slot; the correction
// is applied consistently in both directions by the document's own
// traversal and round-trip tested explicitly.
//
// Out-of-range input is a contract violation: the mapper returns
// domain.ErrOffsetOutOfRange and the caller must not apply any
// mutation.
type Mapper struct{}

// NewMapper creates a mapper.
func NewMapper() *Mapper {
	return &Mapper{}
}

// ToDocumentPosition converts a plain-text offset in [0, PlainLength]
// into a document position.
func (m *Mapper) ToDocumentPosition(doc *domain.Document, offset int) (int, error) {
	pos, err := doc.DocumentPosition(offset)
	if err != nil {
		return 0, fmt.Errorf("map offset %d: %w", offset, err)
	}
	return pos, nil
}

// ToPlainOffset converts a document position back into a plain-text
// offset.
func (m *Mapper) ToPlainOffset(doc *domain.Document, pos int) (int, error) {
	offset, err := doc.PlainOffset(pos)
	if err != nil {
		return 0, fmt.Errorf("map position %d: %w", pos, err)
	}
	return offset, nil
}

// SpanToDocument converts a plain-text span into a document-position
// range.
func (m *Mapper) SpanToDocument(doc *domain.Document, span domain.Span) (int, int, error) {
	from, err := m.ToDocumentPosition(doc, span.Start)
	if err != nil {
		return 0, 0, err
	}
	to, err := m.ToDocumentPosition(doc, span.End)
	if err != nil {
		return 0, 0, err
	}
	return from, to, nil
}
