// Package driven provides interfaces for infrastructure adapters
// (secondary/outbound ports): the external analysis service, the
// editing surface, decision storage and configuration.
package driven
