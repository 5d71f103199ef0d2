package script

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/robbyt/go-polyexpr/execution/constants"
	"github.com/robbyt/go-polyexpr/execution/data"
	"github.com/robbyt/go-polyexpr/execution/env"
	"github.com/robbyt/go-polyexpr/execution/ops"
	"github.com/robbyt/go-polyexpr/execution/value"
	"github.com/robbyt/go-polyexpr/internal/helpers"
)

const checksumLength = 12

// ExpressionID returns the short content hash used to identify source in logs.
func ExpressionID(source string) string {
	return helpers.ShortSHA256([]byte(source), checksumLength)
}

// ExecutableUnit is a compiled expression bound to the providers of its per-call
// variables.
type ExecutableUnit struct {
	// ID is a short hash of Source.
	ID string

	// CreatedAt records when the unit was built.
	CreatedAt time.Time

	// Source is the expression text.
	Source string

	// Operation is the compiled, immutable tree.
	Operation ops.Operation

	// DataProvider supplies variables layered over the evaluation context on each
	// call. Static variables given at construction come first; runtime data from the
	// passed-in provider overrides them.
	DataProvider data.Provider

	logHandler slog.Handler
	logger     *slog.Logger
}

// NewExecutableUnit binds a compiled operation to its variables.
func NewExecutableUnit(
	handler slog.Handler,
	source string,
	op ops.Operation,
	dataProvider data.Provider,
	staticVars map[string]any,
) (*ExecutableUnit, error) {
	handler, logger := helpers.SetupLogger(handler, "script", "ExecutableUnit")

	if strings.TrimSpace(source) == "" {
		return nil, ErrEmptySource
	}
	if op == nil {
		return nil, ErrNilOperation
	}

	var provider data.Provider
	switch {
	case len(staticVars) > 0 && dataProvider != nil:
		provider = data.NewCompositeProvider(data.NewStaticProvider(staticVars), dataProvider)
	case len(staticVars) > 0:
		provider = data.NewStaticProvider(staticVars)
	default:
		provider = dataProvider
	}

	id := ExpressionID(source)
	return &ExecutableUnit{
		ID:           id,
		CreatedAt:    time.Now(),
		Source:       source,
		Operation:    op,
		DataProvider: provider,
		logHandler:   handler,
		logger:       logger.With("exprID", id),
	}, nil
}

func (exe *ExecutableUnit) String() string {
	return fmt.Sprintf("ExecutableUnit{ID: %s, CreatedAt: %s, Source: %q}", exe.ID, exe.CreatedAt, exe.Source)
}

// GetID returns the expression ID.
func (exe *ExecutableUnit) GetID() string {
	return exe.ID
}

// GetDataProvider returns the provider of per-call variables, which may be nil.
func (exe *ExecutableUnit) GetDataProvider() data.Provider {
	return exe.DataProvider
}

// Eval runs the unit against base, with the provider's variables for ctx layered
// on top. When there are such variables, assignments made by the expression stay in
// the per-call overlay. Host functions see the unit's ID under constants.ExprID.
func (exe *ExecutableUnit) Eval(ctx context.Context, base env.Context) (value.Value, error) {
	ctx = context.WithValue(ctx, constants.ExprID, exe.ID)

	vars, err := data.Variables(ctx, exe.DataProvider)
	if err != nil {
		exe.logger.ErrorContext(ctx, "failed to load variables", "error", err)
		return value.Null, fmt.Errorf("failed to load variables: %w", err)
	}

	ec := base
	if len(vars) > 0 {
		ec = env.NewOverlay(base, vars)
	}

	start := time.Now()
	result, err := ops.Run(ctx, ec, exe.Operation)
	if err != nil {
		exe.logger.DebugContext(ctx, "evaluation failed", "error", err, "duration", time.Since(start))
		return value.Null, err
	}
	exe.logger.DebugContext(ctx, "evaluation finished", "type", result.Type().String(), "duration", time.Since(start))
	return result, nil
}
