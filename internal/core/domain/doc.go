// Package domain contains the core business entities for the suggestion
// engine: documents, suggestions, annotations, analysis windows and the
// configuration values that tune reconciliation. Types here have no
// dependencies on adapters or services.
package domain
