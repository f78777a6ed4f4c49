package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrOffsetOutOfRange indicates a plain-text offset or document
	// position outside the valid range. Callers must not apply any
	// mutation after receiving this error.
	ErrOffsetOutOfRange = errors.New("offset out of range")

	// ErrAnalysisUnavailable indicates no analysis provider is configured.
	// The engine still tracks edits but never schedules a call.
	ErrAnalysisUnavailable = errors.New("analysis service unavailable")

	// ErrStaleResult indicates an analysis result arrived after the text
	// it was computed from changed. Expected under normal operation.
	ErrStaleResult = errors.New("stale analysis result")

	// ErrAnnotationLost indicates an annotation's text can no longer be
	// located in the document. Accept and dismiss treat this as a no-op.
	ErrAnnotationLost = errors.New("annotation can no longer be located")

	// ErrEngineClosed indicates the engine has been shut down.
	ErrEngineClosed = errors.New("engine closed")
)
