// Package prompt builds the per-category analysis prompts and validates
// the suggestion payloads the providers return. All three provider
// adapters share this package so a category behaves the same regardless
// of which model serves it.
package prompt

import (
	"fmt"
	"strings"

	"github.com/draftaid-io/draftaid/internal/core/domain"
)

// responseSchema tells the model exactly what shape to reply in. Every
// category prompt ends with it so payload parsing stays uniform.
const responseSchema = `Respond with JSON only, no prose and no code fences, in this shape:
{"suggestions": [{"category": "%s", "severity": "info|warning|error", "original": "<exact fragment copied from the text>", "replacement": "%s", "explanation": "<one sentence>"}]}

Rules:
- "original" must be copied verbatim from the text, including its exact spacing.
- Keep each "original" fragment short: a phrase or single sentence, never a whole paragraph.
- Return {"suggestions": []} if there is nothing to flag.
- Do not flag the same fragment twice.`

const grammarInstructions = `You are a copy editor reviewing an excerpt from an essay.
Find grammar, spelling, punctuation and mechanics errors. Only flag real
errors, not stylistic preferences. Each suggestion must carry a
replacement that fixes the fragment in place.`

const toneInstructions = `You are an editor reviewing an excerpt from an essay for tone and word
choice. Flag wording that is too informal, too vague, or inconsistent
with an academic register. Each suggestion must carry a replacement
phrased in the register the rest of the text uses.`

const evidenceInstructions = `You are a writing coach reviewing an excerpt from an essay.
Flag factual claims that are presented without supporting evidence.
Use the category "unsupported_claim" for each finding. Do not propose
replacement text: leave "replacement" empty and explain what kind of
support the claim needs.`

const argumentationInstructions = `You are a writing coach reviewing an excerpt from an essay.
Flag weaknesses in the reasoning: logical fallacies, circular arguments,
non sequiturs, unsupported leaps. Use the category "logical_fallacy"
for each finding. Do not propose replacement text: leave "replacement"
empty and name the flaw in the explanation.`

// Build assembles the full prompt for one analysis pass.
func Build(category domain.Category, text string) (string, error) {
	var instructions string
	var replyCategory domain.Category
	replacementHint := "<corrected fragment>"

	switch category {
	case domain.CategoryGrammar:
		instructions = grammarInstructions
		replyCategory = domain.CategoryGrammar
	case domain.CategoryTone:
		instructions = toneInstructions
		replyCategory = domain.CategoryTone
	case domain.CategoryEvidence:
		instructions = evidenceInstructions
		replyCategory = domain.CategoryUnsupportedClaim
		replacementHint = ""
	case domain.CategoryArgumentation:
		instructions = argumentationInstructions
		replyCategory = domain.CategoryLogicalFallacy
		replacementHint = ""
	default:
		return "", fmt.Errorf("%w: no prompt for category %q", domain.ErrInvalidInput, category)
	}

	var b strings.Builder
	b.WriteString(instructions)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, responseSchema, replyCategory, replacementHint)
	b.WriteString("\n\nText:\n")
	b.WriteString(text)
	return b.String(), nil
}

// SystemPrompt is the system message sent to chat-style providers.
const SystemPrompt = "You are a precise writing-analysis service. You reply with a single JSON object and nothing else."
