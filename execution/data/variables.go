package data

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robbyt/go-polyexpr/execution/value"
)

// Variables fetches the provider's data for ctx and converts it to expression values.
func Variables(ctx context.Context, provider Provider) (map[string]value.Value, error) {
	if provider == nil {
		return nil, nil
	}
	raw, err := provider.GetData(ctx)
	if err != nil {
		return nil, err
	}
	vars := make(map[string]value.Value, len(raw))
	for name, item := range raw {
		v, err := value.FromGo(item)
		if err != nil {
			return nil, fmt.Errorf("variable %q: %w", name, err)
		}
		vars[name] = v
	}
	return vars, nil
}

// PrepareContextHelper hands per-call variable maps to provider and returns the
// context carrying them. On error the returned context still holds whatever the
// provider accepted.
func PrepareContextHelper(
	ctx context.Context,
	logger *slog.Logger,
	provider Provider,
	d ...any,
) (context.Context, error) {
	if provider == nil {
		logger.WarnContext(ctx, "cannot store variables without a data provider", "items", len(d))
		return ctx, ErrNoProvider
	}

	next, err := provider.AddDataToContext(ctx, d...)
	if err != nil {
		logger.ErrorContext(ctx, "variables were not stored", "items", len(d), "error", err)
		return next, err
	}
	logger.DebugContext(ctx, "variables stored", "items", len(d))
	return next, nil
}
