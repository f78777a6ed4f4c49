package prompt

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/draftaid-io/draftaid/internal/core/domain"
)

// payload is the loosely-typed response shape. Fields the model omits
// or mistypes surface as zero values and are handled per item.
type payload struct {
	Suggestions []payloadItem `json:"suggestions"`
}

// payloadItem is one suggestion as the model reports it.
type payloadItem struct {
	Category    string `json:"category"`
	Severity    string `json:"severity"`
	Original    string `json:"original"`
	Replacement string `json:"replacement"`
	Explanation string `json:"explanation"`
}

// ParseSuggestions validates a raw provider response for the given
// requested category. Structurally invalid items are dropped rather
// than failing the call; the second return value counts them. A
// response that is not JSON at all returns an error.
func ParseSuggestions(requested domain.Category, raw string) ([]domain.Suggestion, int, error) {
	body := stripFences(raw)
	if body == "" {
		return nil, 0, fmt.Errorf("%w: empty analysis response", domain.ErrInvalidInput)
	}

	var p payload
	if err := json.Unmarshal([]byte(body), &p); err != nil {
		// Some models reply with a bare array instead of the wrapper
		// object.
		var items []payloadItem
		if arrErr := json.Unmarshal([]byte(body), &items); arrErr != nil {
			return nil, 0, fmt.Errorf("%w: decode analysis response: %v", domain.ErrInvalidInput, err)
		}
		p.Suggestions = items
	}

	suggestions := make([]domain.Suggestion, 0, len(p.Suggestions))
	dropped := 0
	for _, item := range p.Suggestions {
		s := domain.Suggestion{
			Category:    normaliseCategory(requested, item.Category),
			Severity:    normaliseSeverity(item.Severity),
			Original:    item.Original,
			Replacement: strings.TrimRight(item.Replacement, "\n"),
			Explanation: strings.TrimSpace(item.Explanation),
		}
		if err := s.Validate(); err != nil {
			dropped++
			continue
		}
		suggestions = append(suggestions, s)
	}
	return suggestions, dropped, nil
}

// normaliseCategory accepts a self-reported category only when it is
// the requested one or a coaching sub-category of it; anything else is
// replaced by the requested category.
func normaliseCategory(requested domain.Category, reported string) domain.Category {
	c := domain.Category(strings.ToLower(strings.TrimSpace(reported)))
	if c.IsValid() && c.Parent() == requested {
		return c
	}
	return requested
}

// normaliseSeverity falls back to warning for unrecognised values.
func normaliseSeverity(reported string) domain.Severity {
	s := domain.Severity(strings.ToLower(strings.TrimSpace(reported)))
	if s.IsValid() {
		return s
	}
	return domain.SeverityWarning
}

// stripFences removes a surrounding markdown code fence, which models
// add despite instructions, and trims to the outermost JSON value.
func stripFences(raw string) string {
	body := strings.TrimSpace(raw)
	if strings.HasPrefix(body, "```") {
		body = strings.TrimPrefix(body, "```json")
		body = strings.TrimPrefix(body, "```")
		if idx := strings.LastIndex(body, "```"); idx >= 0 {
			body = body[:idx]
		}
		body = strings.TrimSpace(body)
	}

	// Tolerate prose around the JSON object by slicing from the first
	// opening brace or bracket to the matching last one.
	start := strings.IndexAny(body, "{[")
	if start < 0 {
		return ""
	}
	var end int
	if body[start] == '{' {
		end = strings.LastIndex(body, "}")
	} else {
		end = strings.LastIndex(body, "]")
	}
	if end < start {
		return ""
	}
	return body[start : end+1]
}
