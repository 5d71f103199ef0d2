package data

import (
	"context"
	"errors"
	"fmt"
	"maps"

	"github.com/robbyt/go-polyexpr/execution/constants"
)

// ContextProvider reads and stores variables in the call context under a key.
type ContextProvider struct {
	contextKey constants.ContextKey
}

// NewContextProvider creates a ContextProvider for the given context key.
func NewContextProvider(contextKey constants.ContextKey) *ContextProvider {
	return &ContextProvider{contextKey: contextKey}
}

// GetData returns the variables stored in ctx, or an empty map when there are none.
func (p *ContextProvider) GetData(ctx context.Context) (map[string]any, error) {
	if p.contextKey == "" {
		return nil, ErrEmptyContextKey
	}

	stored := ctx.Value(p.contextKey)
	if stored == nil {
		return make(map[string]any), nil
	}
	vars, ok := stored.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: expected map[string]any, got %T", ErrUnsupportedData, stored)
	}
	return maps.Clone(vars), nil
}

// AddDataToContext merges each map[string]any argument, later maps winning, on top of
// the variables already stored in ctx. Nil items are skipped. Unsupported items are
// reported, but the returned context still carries everything that could be merged.
func (p *ContextProvider) AddDataToContext(ctx context.Context, data ...any) (context.Context, error) {
	if p.contextKey == "" {
		return ctx, ErrEmptyContextKey
	}

	toStore := make(map[string]any)
	if existing, ok := ctx.Value(p.contextKey).(map[string]any); ok {
		maps.Copy(toStore, existing)
	}

	var errz []error
	for _, item := range data {
		switch v := item.(type) {
		case nil:
			continue
		case map[string]any:
			maps.Copy(toStore, v)
		default:
			errz = append(errz, fmt.Errorf("%w for ContextProvider: %T", ErrUnsupportedData, item))
		}
	}

	return context.WithValue(ctx, p.contextKey, toStore), errors.Join(errz...)
}
