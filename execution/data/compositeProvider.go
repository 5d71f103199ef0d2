package data

import (
	"context"
	"errors"
	"fmt"
	"maps"
)

// CompositeProvider merges the variables of several providers. Later providers
// override earlier ones for duplicate names.
type CompositeProvider struct {
	providers []Provider
}

// NewCompositeProvider creates a CompositeProvider querying providers in order.
func NewCompositeProvider(providers ...Provider) *CompositeProvider {
	return &CompositeProvider{providers: providers}
}

// GetData implements Provider.
func (p *CompositeProvider) GetData(ctx context.Context) (map[string]any, error) {
	result := make(map[string]any)
	for i, provider := range p.providers {
		if provider == nil {
			continue
		}
		data, err := provider.GetData(ctx)
		if err != nil {
			return nil, fmt.Errorf("error from provider %d: %w", i, err)
		}
		maps.Copy(result, data)
	}
	return result, nil
}

// AddDataToContext offers the data to every provider in order, threading the
// context through. Static providers are skipped. It fails only when no provider
// accepted the data.
func (p *CompositeProvider) AddDataToContext(ctx context.Context, data ...any) (context.Context, error) {
	var errz []error
	accepted := false
	for i, provider := range p.providers {
		if provider == nil {
			continue
		}
		next, err := provider.AddDataToContext(ctx, data...)
		if errors.Is(err, ErrStaticProviderNoRuntimeUpdates) {
			continue
		}
		ctx = next
		accepted = true
		if err != nil {
			errz = append(errz, fmt.Errorf("error from provider %d: %w", i, err))
		}
	}
	if !accepted {
		return ctx, ErrStaticProviderNoRuntimeUpdates
	}
	return ctx, errors.Join(errz...)
}
