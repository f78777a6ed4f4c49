package services

import (
	"regexp"
	"strings"

	"github.com/draftaid-io/draftaid/internal/core/domain"
	"github.com/draftaid-io/draftaid/internal/logger"
)

// Locator finds occurrences of analysis-service fragments in the
// plain-text projection. Matching is literal and case-sensitive except
// that any run of whitespace in the needle matches any run of
// whitespace in the haystack, which absorbs the reformatting and
// line-wrap differences between what the service echoed back and the
// live text.
type Locator struct{}

// NewLocator creates a locator.
func NewLocator() *Locator {
	return &Locator{}
}

// FindOccurrences returns all non-overlapping matches of needle in
// haystack, left to right. An empty needle returns no matches. A needle
// that cannot be compiled into a safe matcher is recovered: empty
// result plus a logged warning, never an error.
func (l *Locator) FindOccurrences(haystack, needle string) []domain.Span {
	parts := strings.Fields(needle)
	if len(parts) == 0 {
		return nil
	}

	for i, p := range parts {
		parts[i] = regexp.QuoteMeta(p)
	}
	re, err := regexp.Compile(strings.Join(parts, `\s+`))
	if err != nil {
		logger.Warn("Locator: fragment %q did not compile: %v", needle, err)
		return nil
	}

	idx := re.FindAllStringIndex(haystack, -1)
	if len(idx) == 0 {
		return nil
	}
	spans := make([]domain.Span, len(idx))
	for i, m := range idx {
		spans[i] = domain.Span{Start: m[0], End: m[1]}
	}
	return spans
}
