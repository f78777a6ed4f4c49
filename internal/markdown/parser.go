// Package markdown parses markdown source into the block-tree document
// the engine operates on. It handles the subset that matters for essay
// drafts: headings, paragraphs, list items and inline formatting.
package markdown

import (
	"regexp"
	"strings"

	"github.com/draftaid-io/draftaid/internal/core/domain"
)

var (
	headingPattern  = regexp.MustCompile(`^(#{1,6})\s+(.*)$`)
	bulletPattern   = regexp.MustCompile(`^(\s*)[-*+]\s+(.*)$`)
	numberedPattern = regexp.MustCompile(`^(\s*)\d+\.\s+(.*)$`)
	hrPattern       = regexp.MustCompile(`^[-*_]{3,}\s*$`)

	inlineCode   = regexp.MustCompile("`([^`]+)`")
	imagePattern = regexp.MustCompile(`!\[[^\]]*\]\([^)]+\)`)
	linkPattern  = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
)

// Parse converts markdown source into a document. Structure the engine
// needs (headings, list items) is preserved as typed blocks; inline
// formatting markers are stripped so the plain-text projection is what
// the analysis service should see.
func Parse(source string) *domain.Document {
	var blocks []*domain.Block
	var paragraph []string

	flush := func() {
		if len(paragraph) == 0 {
			return
		}
		blocks = append(blocks, &domain.Block{
			Kind: domain.BlockParagraph,
			Text: stripInline(strings.Join(paragraph, " ")),
		})
		paragraph = nil
	}

	inCodeBlock := false
	for _, line := range strings.Split(source, "\n") {
		trimmed := strings.TrimSpace(line)

		// Fenced code blocks carry no prose; skip their contents.
		if strings.HasPrefix(trimmed, "```") {
			inCodeBlock = !inCodeBlock
			flush()
			continue
		}
		if inCodeBlock {
			continue
		}

		switch {
		case trimmed == "" || hrPattern.MatchString(trimmed):
			flush()

		case headingPattern.MatchString(trimmed):
			flush()
			m := headingPattern.FindStringSubmatch(trimmed)
			blocks = append(blocks, &domain.Block{
				Kind:  domain.BlockHeading,
				Level: len(m[1]),
				Text:  stripInline(m[2]),
			})

		case bulletPattern.MatchString(line):
			flush()
			m := bulletPattern.FindStringSubmatch(line)
			blocks = append(blocks, &domain.Block{
				Kind:  domain.BlockListItem,
				Level: indentLevel(m[1]),
				Text:  stripInline(m[2]),
			})

		case numberedPattern.MatchString(line):
			flush()
			m := numberedPattern.FindStringSubmatch(line)
			blocks = append(blocks, &domain.Block{
				Kind:  domain.BlockListItem,
				Level: indentLevel(m[1]),
				Text:  stripInline(m[2]),
			})

		default:
			// Blockquote markers are dropped; the quoted prose is still
			// essay text worth analysing.
			paragraph = append(paragraph, strings.TrimPrefix(trimmed, "> "))
		}
	}
	flush()

	if len(blocks) == 0 {
		return domain.NewTextDocument()
	}
	return &domain.Document{Blocks: blocks}
}

// stripInline removes inline formatting markers, keeping the text they
// wrap.
func stripInline(text string) string {
	text = imagePattern.ReplaceAllString(text, "")
	text = linkPattern.ReplaceAllString(text, "$1")
	text = inlineCode.ReplaceAllString(text, "$1")
	text = strings.ReplaceAll(text, "**", "")
	text = strings.ReplaceAll(text, "__", "")
	text = strings.ReplaceAll(text, "*", "")
	return strings.TrimSpace(text)
}

// indentLevel maps leading whitespace to a list nesting depth. Two
// spaces or one tab per level.
func indentLevel(indent string) int {
	width := 0
	for _, r := range indent {
		if r == '\t' {
			width += 2
		} else {
			width++
		}
	}
	return 1 + width/2
}
