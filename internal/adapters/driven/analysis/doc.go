// Package analysis provides factory functions and rate limiting for
// analysis-service adapters. The concrete HTTP adapters live in the
// anthropic, openai and ollama subpackages; the prompt templates and
// response payload validation they share live in the prompt subpackage.
package analysis
