package domain

import (
	"fmt"
	"strings"
)

// MarkTypeSuggestion is the mark type the suggestion overlay owns.
// Formatting marks applied by the editing surface use other types and
// are never touched by the engine.
const MarkTypeSuggestion = "suggestion"

// BlockKind identifies the structural role of a block node.
type BlockKind string

// Available block kinds.
const (
	BlockParagraph BlockKind = "paragraph"
	BlockHeading   BlockKind = "heading"
	BlockListItem  BlockKind = "list_item"
)

// Mark is a named decoration with arbitrary attributes. Ranges are
// carried separately (BlockMark within a block, MarkRange absolute).
type Mark struct {
	// Type names the mark kind, e.g. MarkTypeSuggestion.
	Type string

	// Category partitions suggestion marks by analysis category.
	Category Category

	// AnnotationID links a suggestion mark back to its annotation.
	AnnotationID string

	// Attrs holds arbitrary rendering attributes.
	Attrs map[string]string
}

// BlockMark is a mark over a byte range within a single block's text.
type BlockMark struct {
	Mark

	// From is the inclusive start offset within the block text.
	From int

	// To is the exclusive end offset within the block text.
	To int
}

// MarkRange is a mark projected to absolute document positions.
type MarkRange struct {
	Mark

	// From is the inclusive start document position.
	From int

	// To is the exclusive end document position.
	To int
}

// Block is a single block node: a paragraph, heading or list item
// holding one run of text plus any marks over it.
type Block struct {
	// Kind is the structural role of the block.
	Kind BlockKind

	// Level is the heading level or list nesting depth. Zero for
	// paragraphs.
	Level int

	// Text is the block's text content.
	Text string

	// Marks are the decorations over Text.
	Marks []BlockMark
}

// Document is the structured tree of blocks being edited. The engine
// reads it through the plain-text projection and patches it through a
// narrow set of operations; the editing surface owns it.
//
// Addressing follows the structured-document convention of reserving a
// boundary slot on each side of every block: block i's text starts at
// document position sum(len_j + 2 for j < i) + 1. The plain-text
// projection joins block texts with a single newline, so a plain offset
// and its document position differ by the number of preceding block
// boundaries plus one. That conversion lives in DocumentPosition and
// PlainOffset and nowhere else.
type Document struct {
	Blocks []*Block
}

// NewTextDocument builds a document of plain paragraphs. An empty call
// yields a single empty paragraph so the document always has at least
// one valid position.
func NewTextDocument(paragraphs ...string) *Document {
	if len(paragraphs) == 0 {
		paragraphs = []string{""}
	}
	blocks := make([]*Block, len(paragraphs))
	for i, p := range paragraphs {
		blocks[i] = &Block{Kind: BlockParagraph, Text: p}
	}
	return &Document{Blocks: blocks}
}

// Clone returns a deep copy of the document.
func (d *Document) Clone() *Document {
	blocks := make([]*Block, len(d.Blocks))
	for i, b := range d.Blocks {
		nb := &Block{Kind: b.Kind, Level: b.Level, Text: b.Text}
		if len(b.Marks) > 0 {
			nb.Marks = make([]BlockMark, len(b.Marks))
			copy(nb.Marks, b.Marks)
		}
		blocks[i] = nb
	}
	return &Document{Blocks: blocks}
}

// PlainText returns the plain-text projection: block texts joined by a
// single newline, in left-to-right traversal order.
func (d *Document) PlainText() string {
	texts := make([]string, len(d.Blocks))
	for i, b := range d.Blocks {
		texts[i] = b.Text
	}
	return strings.Join(texts, "\n")
}

// PlainLength returns the length of the plain-text projection in bytes.
func (d *Document) PlainLength() int {
	n := 0
	for _, b := range d.Blocks {
		n += len(b.Text)
	}
	if len(d.Blocks) > 1 {
		n += len(d.Blocks) - 1
	}
	return n
}

// Length returns the document size including boundary slots.
func (d *Document) Length() int {
	n := 0
	for _, b := range d.Blocks {
		n += len(b.Text) + 2
	}
	return n
}

// blockStart returns the document position of block i's first character.
func (d *Document) blockStart(i int) int {
	pos := 1
	for j := 0; j < i; j++ {
		pos += len(d.Blocks[j].Text) + 2
	}
	return pos
}

// resolve maps a document position to (block index, intra-block offset).
// Only content positions are valid: boundary slots between blocks
// resolve to an error. A position at the shared edge of two blocks'
// content ranges resolves into the earlier block.
func (d *Document) resolve(pos int) (int, int, error) {
	start := 1
	for i, b := range d.Blocks {
		end := start + len(b.Text)
		if pos >= start && pos <= end {
			return i, pos - start, nil
		}
		start = end + 2
	}
	return 0, 0, fmt.Errorf("%w: document position %d", ErrOffsetOutOfRange, pos)
}

// DocumentPosition converts a plain-text offset into a document
// position. Offsets must fall within [0, PlainLength()].
func (d *Document) DocumentPosition(offset int) (int, error) {
	if offset < 0 || offset > d.PlainLength() {
		return 0, fmt.Errorf("%w: plain offset %d of %d", ErrOffsetOutOfRange, offset, d.PlainLength())
	}
	start := 0
	for i, b := range d.Blocks {
		end := start + len(b.Text)
		if offset <= end {
			// Each preceding block contributes one extra boundary slot
			// relative to its newline separator, plus the open slot of
			// the containing block.
			return offset + i + 1, nil
		}
		start = end + 1
	}
	// Unreachable given the range check above.
	return 0, fmt.Errorf("%w: plain offset %d", ErrOffsetOutOfRange, offset)
}

// PlainOffset converts a document position back into a plain-text
// offset. Positions on block boundary slots are invalid.
func (d *Document) PlainOffset(pos int) (int, error) {
	i, _, err := d.resolve(pos)
	if err != nil {
		return 0, err
	}
	return pos - i - 1, nil
}

// ReplaceRange replaces the text between two content positions with the
// given text. A range spanning several blocks merges them into the
// first block. Marks overlapping the replaced range are dropped; marks
// after it shift.
func (d *Document) ReplaceRange(from, to int, text string) error {
	if to < from {
		return fmt.Errorf("%w: range [%d, %d)", ErrOffsetOutOfRange, from, to)
	}
	bi1, i1, err := d.resolve(from)
	if err != nil {
		return err
	}
	bi2, i2, err := d.resolve(to)
	if err != nil {
		return err
	}

	if bi1 == bi2 {
		b := d.Blocks[bi1]
		b.Marks = spliceMarks(b.Marks, i1, i2, len(text))
		b.Text = b.Text[:i1] + text + b.Text[i2:]
		return nil
	}

	// Merge the spanned blocks into the first one.
	first, last := d.Blocks[bi1], d.Blocks[bi2]
	merged := &Block{
		Kind:  first.Kind,
		Level: first.Level,
		Text:  first.Text[:i1] + text + last.Text[i2:],
	}
	shift := i1 + len(text) - i2
	for _, m := range first.Marks {
		if m.To <= i1 {
			merged.Marks = append(merged.Marks, m)
		}
	}
	for _, m := range last.Marks {
		if m.From >= i2 {
			m.From += shift
			m.To += shift
			merged.Marks = append(merged.Marks, m)
		}
	}
	blocks := append([]*Block{}, d.Blocks[:bi1]...)
	blocks = append(blocks, merged)
	blocks = append(blocks, d.Blocks[bi2+1:]...)
	d.Blocks = blocks
	return nil
}

// ApplyMark decorates the [from, to) document-position range with the
// mark, clipping it to each intersected block.
func (d *Document) ApplyMark(from, to int, mark Mark) error {
	if to <= from {
		return fmt.Errorf("%w: mark range [%d, %d)", ErrOffsetOutOfRange, from, to)
	}
	if _, _, err := d.resolve(from); err != nil {
		return err
	}
	if _, _, err := d.resolve(to); err != nil {
		return err
	}
	start := 1
	for _, b := range d.Blocks {
		end := start + len(b.Text)
		lo, hi := max(from, start), min(to, end)
		if lo < hi {
			b.Marks = append(b.Marks, BlockMark{Mark: mark, From: lo - start, To: hi - start})
		}
		start = end + 2
	}
	return nil
}

// ClearMarks removes every mark of the given type overlapping the
// [from, to) document-position range.
func (d *Document) ClearMarks(markType string, from, to int) error {
	if to < from {
		return fmt.Errorf("%w: clear range [%d, %d)", ErrOffsetOutOfRange, from, to)
	}
	start := 1
	for _, b := range d.Blocks {
		end := start + len(b.Text)
		lo, hi := max(from, start), min(to, end)
		if lo <= hi {
			kept := b.Marks[:0]
			for _, m := range b.Marks {
				if m.Type == markType && m.From < hi-start && lo-start < m.To {
					continue
				}
				kept = append(kept, m)
			}
			b.Marks = kept
		}
		start = end + 2
	}
	return nil
}

// MarksOfType returns all marks of the given type with their ranges
// projected to absolute document positions, in traversal order.
func (d *Document) MarksOfType(markType string) []MarkRange {
	var out []MarkRange
	start := 1
	for _, b := range d.Blocks {
		for _, m := range b.Marks {
			if m.Type == markType {
				out = append(out, MarkRange{Mark: m.Mark, From: start + m.From, To: start + m.To})
			}
		}
		start += len(b.Text) + 2
	}
	return out
}

// spliceMarks adjusts intra-block marks for a text splice replacing
// [i1, i2) with newLen bytes: marks before the splice are kept, marks
// after it shift, marks overlapping it are dropped.
func spliceMarks(marks []BlockMark, i1, i2, newLen int) []BlockMark {
	delta := newLen - (i2 - i1)
	kept := marks[:0]
	for _, m := range marks {
		switch {
		case m.To <= i1:
			kept = append(kept, m)
		case m.From >= i2:
			m.From += delta
			m.To += delta
			kept = append(kept, m)
		}
	}
	return kept
}
