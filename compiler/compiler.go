// Package compiler is the reference parser front end. It reads expressions written
// in the Starlark expression grammar and lowers them to operation trees.
//
// Besides literals, lists, arithmetic, comparisons, boolean operators, indexing, and
// conditional expressions, the grammar is extended with a few builtin calls:
//
//	new("T", args..., init=[...])  construct a value of type T
//	isinstance(x, T)               type test
//	coalesce(a, b, ...)            first non-None argument
//	dump(x, "label")               emit x on the context's dump channel
//	assign("name", x)              store x in a variable
package compiler

import (
	"fmt"
	"log/slog"
	"strings"

	"go.starlark.net/syntax"

	"github.com/robbyt/go-polyexpr/execution/ops"
	"github.com/robbyt/go-polyexpr/execution/script"
)

// Compiler lowers expression text to ops.Operation trees.
type Compiler struct {
	noNameRoot string
	logHandler slog.Handler
	logger     *slog.Logger
}

var _ script.Compiler = (*Compiler)(nil)

// New creates a Compiler with the given options.
func New(opts ...FunctionalOption) (*Compiler, error) {
	c := &Compiler{}
	c.applyDefaults()

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, fmt.Errorf("error applying compiler option: %w", err)
		}
	}

	if err := c.validate(); err != nil {
		return nil, fmt.Errorf("invalid compiler configuration: %w", err)
	}

	c.setupLogger()
	return c, nil
}

func (c *Compiler) String() string {
	return "compiler.Compiler"
}

// Compile implements script.Compiler. The returned tree is validated to leave exactly
// one value on the stack.
func (c *Compiler) Compile(source string) (ops.Operation, error) {
	if strings.TrimSpace(source) == "" {
		return nil, fmt.Errorf("%w: %w", ErrCompileFailed, ErrContentEmpty)
	}

	opts := &syntax.FileOptions{}
	expr, err := opts.ParseExpr("expr", source, 0)
	if err != nil {
		c.logger.Debug("parse failed", "error", err)
		return nil, fmt.Errorf("%w: %w", ErrCompileFailed, err)
	}

	l := &lowerer{noNameRoot: c.noNameRoot}
	op, err := l.expr(expr)
	if err != nil {
		c.logger.Debug("lowering failed", "error", err)
		return nil, fmt.Errorf("%w: %w", ErrCompileFailed, err)
	}
	if err := ops.Validate(op); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCompileFailed, err)
	}
	c.logger.Debug("compiled expression", "exprID", script.ExpressionID(source))
	return op, nil
}
