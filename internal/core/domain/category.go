package domain

const unknownDescription = "Unknown"

// Category classifies a suggestion and partitions the annotation overlay.
// Each analysis pass targets exactly one top-level category; coaching
// calls may self-report a finer-grained sub-category.
type Category string

// Top-level analysis categories.
const (
	// CategoryGrammar covers grammar and mechanics fixes.
	CategoryGrammar Category = "grammar"

	// CategoryTone covers word choice and register adjustments.
	CategoryTone Category = "tone"

	// CategoryEvidence flags claims that need supporting evidence.
	CategoryEvidence Category = "evidence"

	// CategoryArgumentation flags weaknesses in reasoning structure.
	CategoryArgumentation Category = "argumentation"
)

// Coaching sub-categories. These are the only category values accepted
// from an analysis response; everything else is stamped by the engine.
const (
	// CategoryUnsupportedClaim is a claim made without evidence.
	CategoryUnsupportedClaim Category = "unsupported_claim"

	// CategoryLogicalFallacy is a reasoning error in an argument.
	CategoryLogicalFallacy Category = "logical_fallacy"
)

// AnalysisCategories returns the top-level categories the engine
// schedules analysis passes for, in a stable order.
func AnalysisCategories() []Category {
	return []Category{CategoryGrammar, CategoryTone, CategoryEvidence, CategoryArgumentation}
}

// IsValid returns true if the category is recognised.
func (c Category) IsValid() bool {
	switch c {
	case CategoryGrammar, CategoryTone, CategoryEvidence, CategoryArgumentation,
		CategoryUnsupportedClaim, CategoryLogicalFallacy:
		return true
	default:
		return false
	}
}

// IsTopLevel returns true if the category is scheduled directly.
func (c Category) IsTopLevel() bool {
	switch c {
	case CategoryGrammar, CategoryTone, CategoryEvidence, CategoryArgumentation:
		return true
	default:
		return false
	}
}

// Parent returns the top-level category a sub-category belongs to.
// Top-level categories return themselves.
func (c Category) Parent() Category {
	switch c {
	case CategoryUnsupportedClaim:
		return CategoryEvidence
	case CategoryLogicalFallacy:
		return CategoryArgumentation
	default:
		return c
	}
}

// CanReplace returns true if suggestions of this category carry
// replacement text that accept applies to the document. Coaching
// categories return false: accept only dismisses the annotation.
func (c Category) CanReplace() bool {
	switch c.Parent() {
	case CategoryGrammar, CategoryTone:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (c Category) String() string {
	return string(c)
}

// Description returns a human-readable description of the category.
func (c Category) Description() string {
	switch c {
	case CategoryGrammar:
		return "Grammar & mechanics"
	case CategoryTone:
		return "Tone & word choice"
	case CategoryEvidence:
		return "Evidence"
	case CategoryArgumentation:
		return "Argumentation"
	case CategoryUnsupportedClaim:
		return "Unsupported claim"
	case CategoryLogicalFallacy:
		return "Logical fallacy"
	default:
		return unknownDescription
	}
}

// Severity classifies how strongly a suggestion should be surfaced.
type Severity string

// Available severities.
const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// IsValid returns true if the severity is recognised.
func (s Severity) IsValid() bool {
	switch s {
	case SeverityInfo, SeverityWarning, SeverityError:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (s Severity) String() string {
	return string(s)
}
