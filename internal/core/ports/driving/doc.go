// Package driving provides interfaces for primary/inbound adapters:
// the API a UI or CLI uses to drive the suggestion engine.
package driving
