// Package data supplies per-call variables to expression evaluation. Providers read
// variables from static maps or from the context.Context of the call, and the
// evaluator layers them over the shared variable store.
package data

import (
	"context"
)

// Provider supplies variables for one evaluation.
type Provider interface {
	// GetData returns the variables visible to an evaluation running under ctx.
	GetData(ctx context.Context) (map[string]any, error)

	// AddDataToContext returns a context carrying the given variable maps, for
	// providers that read from the context.
	AddDataToContext(ctx context.Context, data ...any) (context.Context, error)
}
