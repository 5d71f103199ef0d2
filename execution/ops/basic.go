package ops

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/robbyt/go-polyexpr/execution/convert"
	"github.com/robbyt/go-polyexpr/execution/env"
	"github.com/robbyt/go-polyexpr/execution/evalerr"
	"github.com/robbyt/go-polyexpr/execution/value"
)

// Push pushes a constant.
type Push struct {
	Value value.Value
}

// NewPush returns a Push of v.
func NewPush(v value.Value) *Push {
	return &Push{Value: v}
}

func (o *Push) Eval(_ context.Context, _ env.Context, st *Stack) error {
	st.Push(o.Value)
	return nil
}

func (o *Push) StackBalance() int { return 1 }

func (o *Push) String() string {
	return fmt.Sprintf("Push(%s)", o.Value)
}

type varOptionKind uint8

const (
	varName varOptionKind = iota
	varLiteral
	varSubExpr
)

// VarOption is one fallback of a VariableAccess.
type VarOption struct {
	kind    varOptionKind
	name    string
	literal value.Value
	sub     Operation
}

// Name hits when the variable store holds name.
func Name(name string) VarOption {
	return VarOption{kind: varName, name: name}
}

// Literal always hits with v.
func Literal(v value.Value) VarOption {
	return VarOption{kind: varLiteral, literal: v}
}

// SubExpr hits with the result of op unless op fails with an undefined variable.
// The sub-expression must have a stack balance of one.
func SubExpr(op Operation) VarOption {
	return VarOption{kind: varSubExpr, sub: op}
}

// VariableAccess pushes the first option that hits, in order.
type VariableAccess struct {
	options []VarOption
}

// NewVariableAccess returns a VariableAccess over the given fallbacks.
func NewVariableAccess(options ...VarOption) *VariableAccess {
	return &VariableAccess{options: options}
}

func (o *VariableAccess) Eval(ctx context.Context, ec env.Context, st *Stack) error {
	var names []string
	for _, opt := range o.options {
		switch opt.kind {
		case varName:
			if v, ok := ec.TryGetVariable(opt.name); ok {
				st.Push(v)
				return nil
			}
			names = append(names, opt.name)
		case varLiteral:
			st.Push(opt.literal)
			return nil
		case varSubExpr:
			depth := st.Len()
			err := opt.sub.Eval(ctx, ec, st)
			if err == nil {
				return nil
			}
			var undef *evalerr.UndefinedVariableError
			if !errors.As(err, &undef) {
				return err
			}
			st.truncate(depth)
			names = append(names, undef.Names...)
		}
	}
	return &evalerr.UndefinedVariableError{Names: names}
}

func (o *VariableAccess) StackBalance() int { return 1 }

func (o *VariableAccess) String() string {
	parts := make([]string, len(o.options))
	for i, opt := range o.options {
		switch opt.kind {
		case varName:
			parts[i] = opt.name
		case varLiteral:
			parts[i] = opt.literal.String()
		default:
			parts[i] = fmt.Sprint(opt.sub)
		}
	}
	return "Var(" + strings.Join(parts, " | ") + ")"
}

// Conditional pops a condition and evaluates exactly one branch.
type Conditional struct {
	Then Operation
	Else Operation
}

// NewConditional returns a Conditional. Both branches must have the same balance.
func NewConditional(then, els Operation) *Conditional {
	return &Conditional{Then: then, Else: els}
}

func (o *Conditional) Eval(ctx context.Context, ec env.Context, st *Stack) error {
	cond, err := st.Pop()
	if err != nil {
		return err
	}
	b, err := convert.ToBool(cond)
	if err != nil {
		return err
	}
	if b {
		return o.Then.Eval(ctx, ec, st)
	}
	return o.Else.Eval(ctx, ec, st)
}

func (o *Conditional) StackBalance() int { return -1 + o.Then.StackBalance() }

func (o *Conditional) String() string {
	return fmt.Sprintf("If(%v, %v)", o.Then, o.Else)
}

// Coalesce pops a value and evaluates its fallback only when the value is absent.
type Coalesce struct {
	Else Operation
}

// NewCoalesce returns a Coalesce. The fallback must have a balance of one.
func NewCoalesce(els Operation) *Coalesce {
	return &Coalesce{Else: els}
}

func (o *Coalesce) Eval(ctx context.Context, ec env.Context, st *Stack) error {
	v, err := st.Pop()
	if err != nil {
		return err
	}
	if v.IsNull() {
		return o.Else.Eval(ctx, ec, st)
	}
	st.Push(v)
	return nil
}

func (o *Coalesce) StackBalance() int { return o.Else.StackBalance() - 1 }

func (o *Coalesce) String() string {
	return fmt.Sprintf("Coalesce(%v)", o.Else)
}

// Sequence evaluates its children in order on the same stack.
type Sequence struct {
	Ops []Operation
}

// NewSequence returns a Sequence of ops.
func NewSequence(ops ...Operation) *Sequence {
	return &Sequence{Ops: ops}
}

func (o *Sequence) Eval(ctx context.Context, ec env.Context, st *Stack) error {
	for _, op := range o.Ops {
		if err := op.Eval(ctx, ec, st); err != nil {
			return err
		}
	}
	return nil
}

func (o *Sequence) StackBalance() int {
	n := 0
	for _, op := range o.Ops {
		n += op.StackBalance()
	}
	return n
}

func (o *Sequence) String() string {
	parts := make([]string, len(o.Ops))
	for i, op := range o.Ops {
		parts[i] = fmt.Sprint(op)
	}
	return "Seq(" + strings.Join(parts, ", ") + ")"
}
