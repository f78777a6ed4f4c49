package domain

import "time"

// AnalysisPhase is a category's position in the scheduling state
// machine: Idle → Scheduled → InFlight → Idle.
type AnalysisPhase string

// Available phases.
const (
	// PhaseIdle means no analysis is pending for the category.
	PhaseIdle AnalysisPhase = "idle"

	// PhaseScheduled means a qualifying edit armed the debounce timer.
	PhaseScheduled AnalysisPhase = "scheduled"

	// PhaseInFlight means a window was handed to the request cache and
	// the result has not arrived yet.
	PhaseInFlight AnalysisPhase = "in_flight"
)

// CategoryStatus is the per-category state snapshot the UI consumes to
// render inline status indicators.
type CategoryStatus struct {
	// Phase is the current scheduling phase.
	Phase AnalysisPhase

	// LastError is the most recent analysis failure, empty after a
	// successful pass. Existing annotations survive a failure.
	LastError string

	// LastAnalyzed is when the category last completed a pass.
	LastAnalyzed time.Time
}
