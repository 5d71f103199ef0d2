package data

import (
	"context"
	"maps"
)

// StaticProvider returns a fixed set of variables, independent of the call context.
type StaticProvider struct {
	data map[string]any
}

// NewStaticProvider creates a StaticProvider over a copy of data.
func NewStaticProvider(data map[string]any) *StaticProvider {
	if data == nil {
		data = make(map[string]any)
	}
	return &StaticProvider{data: maps.Clone(data)}
}

// GetData returns a copy of the static variables.
func (p *StaticProvider) GetData(_ context.Context) (map[string]any, error) {
	return maps.Clone(p.data), nil
}

// AddDataToContext always fails: static variables are fixed at construction.
func (p *StaticProvider) AddDataToContext(ctx context.Context, _ ...any) (context.Context, error) {
	return ctx, ErrStaticProviderNoRuntimeUpdates
}
