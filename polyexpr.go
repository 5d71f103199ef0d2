// Package polyexpr evaluates small expressions against a host-supplied evaluation
// context. Expressions are compiled once into immutable operation trees, kept in a
// FIFO cache keyed by source text, and run on a per-call value stack.
//
// # Example
//
//	ev, err := polyexpr.New()
//	if err != nil {
//		return err
//	}
//	ctx, _ = ev.PrepareContext(ctx, map[string]any{"name": "World"})
//	greeting, err := polyexpr.EvalAs[string](ctx, ev, `"Hello, " + name`)
package polyexpr

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robbyt/go-polyexpr/execution/cache"
	"github.com/robbyt/go-polyexpr/execution/convert"
	"github.com/robbyt/go-polyexpr/execution/data"
	"github.com/robbyt/go-polyexpr/execution/env"
	"github.com/robbyt/go-polyexpr/execution/ops"
	"github.com/robbyt/go-polyexpr/execution/script"
	"github.com/robbyt/go-polyexpr/execution/value"
	"github.com/robbyt/go-polyexpr/internal/helpers"
	"github.com/robbyt/go-polyexpr/options"
)

// Evaluator compiles and runs expressions against one evaluation context. It is safe
// for concurrent use when its context is.
type Evaluator struct {
	evalContext  env.Context
	compiler     script.Compiler
	dataProvider data.Provider
	cache        *cache.Cache[*script.ExecutableUnit]
	logHandler   slog.Handler
	logger       *slog.Logger
}

// New creates an Evaluator. Unset options fall back to a fresh env.Environment, the
// starlark-grammar compiler, and a context data provider.
func New(opts ...options.Option) (*Evaluator, error) {
	cfg := &options.Config{}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, fmt.Errorf("error applying option: %w", err)
		}
	}

	if err := options.WithDefaults()(cfg); err != nil {
		return nil, fmt.Errorf("error applying defaults: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var cacheOpts []cache.Option
	if !cfg.CacheLocking() {
		cacheOpts = append(cacheOpts, cache.WithoutLocking())
	}

	handler, logger := helpers.SetupLogger(cfg.GetHandler(), "polyexpr", "Evaluator")
	return &Evaluator{
		evalContext:  cfg.GetContext(),
		compiler:     cfg.GetCompiler(),
		dataProvider: cfg.GetDataProvider(),
		cache:        cache.New[*script.ExecutableUnit](cfg.GetCacheCapacity(), cacheOpts...),
		logHandler:   handler,
		logger:       logger,
	}, nil
}

func (e *Evaluator) String() string {
	return "polyexpr.Evaluator"
}

// Context returns the evaluation context expressions run against.
func (e *Evaluator) Context() env.Context {
	return e.evalContext
}

// Cache returns the compiled expression cache. Entries are executable units, so a hit
// skips hashing the source as well as compiling it.
func (e *Evaluator) Cache() *cache.Cache[*script.ExecutableUnit] {
	return e.cache
}

// Compile returns the operation tree for text, compiling and caching it on a miss.
func (e *Evaluator) Compile(text string) (ops.Operation, error) {
	unit, err := e.unit(text)
	if err != nil {
		return nil, err
	}
	return unit.Operation, nil
}

func (e *Evaluator) unit(text string) (*script.ExecutableUnit, error) {
	return e.cache.GetOrCompile(text, func() (*script.ExecutableUnit, error) {
		op, err := e.compiler.Compile(text)
		if err != nil {
			e.logger.Debug("compile failed", "exprID", script.ExpressionID(text), "error", err)
			return nil, fmt.Errorf("%w: %w", script.ErrCompiler, err)
		}
		return script.NewExecutableUnit(e.logHandler, text, op, e.dataProvider, nil)
	})
}

// Eval compiles text (or takes it from the cache) and runs it with the per-call
// variables found in ctx.
func (e *Evaluator) Eval(ctx context.Context, text string) (value.Value, error) {
	unit, err := e.unit(text)
	if err != nil {
		return value.Null, err
	}
	return unit.Eval(ctx, e.evalContext)
}

// EvalTo evaluates text and converts the result to target.
func (e *Evaluator) EvalTo(ctx context.Context, text string, target *value.Type) (value.Value, error) {
	v, err := e.Eval(ctx, text)
	if err != nil {
		return value.Null, err
	}
	if target == nil {
		return v, nil
	}
	return convert.Convert(target, v)
}

// EvalOperation runs an already compiled tree with the per-call variables found in
// ctx. The tree is not cached.
func (e *Evaluator) EvalOperation(ctx context.Context, op ops.Operation) (value.Value, error) {
	if op == nil {
		return value.Null, script.ErrNilOperation
	}
	vars, err := data.Variables(ctx, e.dataProvider)
	if err != nil {
		return value.Null, fmt.Errorf("failed to load variables: %w", err)
	}
	ec := e.evalContext
	if len(vars) > 0 {
		ec = env.NewOverlay(ec, vars)
	}
	return ops.Run(ctx, ec, op)
}

// PrepareContext stores per-call variables in ctx for a later Eval.
func (e *Evaluator) PrepareContext(ctx context.Context, d ...any) (context.Context, error) {
	return data.PrepareContextHelper(ctx, e.logger, e.dataProvider, d...)
}
