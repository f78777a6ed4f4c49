// Package services implements the suggestion reconciliation engine:
// occurrence location, position mapping, the annotation overlay, change
// detection with debounced scheduling, the request cache, and the
// lifecycle controller that ties them together.
package services
