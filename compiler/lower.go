package compiler

import (
	"fmt"
	"math"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
	"go.starlark.net/syntax"

	"github.com/robbyt/go-polyexpr/execution/ops"
	"github.com/robbyt/go-polyexpr/execution/value"
)

// methods maps binary operators to the member invoked on the left operand.
var methods = map[syntax.Token]string{
	syntax.GT:      "GT",
	syntax.GE:      "GE",
	syntax.LT:      "LT",
	syntax.LE:      "LE",
	syntax.EQL:     "EQ",
	syntax.NEQ:     "NE",
	syntax.PLUS:    "Add",
	syntax.MINUS:   "Sub",
	syntax.STAR:    "Mul",
	syntax.SLASH:   "Div",
	syntax.PERCENT: "Mod",
}

var (
	pushTrue  = ops.NewPush(value.Bool(true))
	pushFalse = ops.NewPush(value.Bool(false))
	pushNull  = ops.NewPush(value.Null)
)

// toBool coerces the top of the stack to a boolean.
func toBool() ops.Operation {
	return ops.NewConditional(pushTrue, pushFalse)
}

func not() ops.Operation {
	return ops.NewConditional(pushFalse, pushTrue)
}

type lowerer struct {
	noNameRoot string
}

func unsupported(n syntax.Node, what string) error {
	start, _ := n.Span()
	return fmt.Errorf("%w: %s at %s", ErrUnsupported, what, start)
}

func (l *lowerer) expr(e syntax.Expr) (ops.Operation, error) {
	switch e := e.(type) {
	case *syntax.ParenExpr:
		return l.expr(e.X)
	case *syntax.Literal:
		return literal(e)
	case *syntax.Ident:
		return l.ident(e), nil
	case *syntax.DotExpr:
		return l.member(e, nil, true)
	case *syntax.CallExpr:
		return l.call(e)
	case *syntax.BinaryExpr:
		return l.binary(e)
	case *syntax.UnaryExpr:
		return l.unary(e)
	case *syntax.CondExpr:
		return l.seq(e.Cond, func(cond ops.Operation) (ops.Operation, error) {
			then, err := l.expr(e.True)
			if err != nil {
				return nil, err
			}
			els, err := l.expr(e.False)
			if err != nil {
				return nil, err
			}
			return ops.NewSequence(cond, ops.NewConditional(then, els)), nil
		})
	case *syntax.ListExpr:
		items, err := l.list(e.List)
		if err != nil {
			return nil, err
		}
		return ops.NewSequence(append(items, ops.NewCreateBlock(len(e.List)))...), nil
	case *syntax.IndexExpr:
		x, err := l.expr(e.X)
		if err != nil {
			return nil, err
		}
		i, err := l.expr(e.Y)
		if err != nil {
			return nil, err
		}
		return ops.NewSequence(x, i, ops.NewCall("Item", true, false, 1)), nil
	}
	return nil, unsupported(e, fmt.Sprintf("%T", e))
}

func (l *lowerer) seq(e syntax.Expr, fn func(ops.Operation) (ops.Operation, error)) (ops.Operation, error) {
	op, err := l.expr(e)
	if err != nil {
		return nil, err
	}
	return fn(op)
}

func (l *lowerer) list(exprs []syntax.Expr) ([]ops.Operation, error) {
	out := make([]ops.Operation, 0, len(exprs)+1)
	for _, e := range exprs {
		op, err := l.expr(e)
		if err != nil {
			return nil, err
		}
		out = append(out, op)
	}
	return out, nil
}

func literal(e *syntax.Literal) (ops.Operation, error) {
	switch v := e.Value.(type) {
	case int64:
		if v >= math.MinInt32 && v <= math.MaxInt32 {
			return ops.NewPush(value.Int32(int32(v))), nil
		}
		return ops.NewPush(value.Int64(v)), nil
	case *big.Int:
		if v.IsUint64() {
			return ops.NewPush(value.UInt64(v.Uint64())), nil
		}
		return ops.NewPush(value.Decimal(decimal.NewFromBigInt(v, 0))), nil
	case float64:
		return ops.NewPush(value.Float64(v)), nil
	case string:
		if e.Token == syntax.BYTES {
			return nil, unsupported(e, "bytes literal")
		}
		return ops.NewPush(value.String(v)), nil
	}
	return nil, unsupported(e, fmt.Sprintf("literal %s", e.Raw))
}

func (l *lowerer) ident(e *syntax.Ident) ops.Operation {
	switch e.Name {
	case "None":
		return pushNull
	case "True":
		return pushTrue
	case "False":
		return pushFalse
	}
	return ops.NewVariableAccess(
		ops.Name(e.Name),
		ops.SubExpr(ops.NewCall(e.Name, false, true, 0)),
	)
}

// chain flattens a.b.c into its segments when the root is an identifier.
func chain(e syntax.Expr) ([]string, bool) {
	switch e := e.(type) {
	case *syntax.Ident:
		return []string{e.Name}, true
	case *syntax.DotExpr:
		head, ok := chain(e.X)
		if !ok {
			return nil, false
		}
		return append(head, e.Name.Name), true
	}
	return nil, false
}

// member lowers a property read (args == nil, property set) or a method call on a
// dotted expression. An identifier-rooted chain first tries the root as a variable
// and resolves the rest as its members; when no such variable exists the whole chain
// is resolved against named objects and types.
func (l *lowerer) member(e *syntax.DotExpr, args []ops.Operation, property bool) (ops.Operation, error) {
	argc := len(args)
	segments, ok := chain(e)
	if !ok {
		recv, err := l.expr(e.X)
		if err != nil {
			return nil, err
		}
		body := append([]ops.Operation{recv}, args...)
		return ops.NewSequence(append(body, ops.NewCall(e.Name.Name, true, property, argc))...), nil
	}

	root, rest := segments[0], strings.Join(segments[1:], ".")
	if root == l.noNameRoot {
		return ops.NewSequence(append(args, ops.NewCall("."+rest, false, property, argc))...), nil
	}

	viaVariable := ops.NewSequence(
		append(
			append([]ops.Operation{ops.NewVariableAccess(ops.Name(root))}, args...),
			ops.NewCall(rest, true, property, argc),
		)...,
	)
	viaScope := ops.NewSequence(append(args, ops.NewCall(strings.Join(segments, "."), false, property, argc))...)
	return ops.NewVariableAccess(ops.SubExpr(viaVariable), ops.SubExpr(viaScope)), nil
}

func (l *lowerer) call(e *syntax.CallExpr) (ops.Operation, error) {
	if id, ok := e.Fn.(*syntax.Ident); ok {
		if b, ok := builtins[id.Name]; ok {
			return b(l, e)
		}
	}

	args, err := l.positional(e)
	if err != nil {
		return nil, err
	}
	switch fn := e.Fn.(type) {
	case *syntax.Ident:
		return ops.NewSequence(append(args, ops.NewCall(fn.Name, false, false, len(args)))...), nil
	case *syntax.DotExpr:
		return l.member(fn, args, false)
	}
	return nil, unsupported(e, "call of a computed function")
}

func (l *lowerer) positional(e *syntax.CallExpr) ([]ops.Operation, error) {
	for _, a := range e.Args {
		if b, ok := a.(*syntax.BinaryExpr); ok && b.Op == syntax.EQ {
			return nil, unsupported(a, "keyword argument")
		}
		if u, ok := a.(*syntax.UnaryExpr); ok && (u.Op == syntax.STAR || u.Op == syntax.STARSTAR) {
			return nil, unsupported(a, "variadic argument")
		}
	}
	return l.list(e.Args)
}

func (l *lowerer) binary(e *syntax.BinaryExpr) (ops.Operation, error) {
	x, err := l.expr(e.X)
	if err != nil {
		return nil, err
	}
	y, err := l.expr(e.Y)
	if err != nil {
		return nil, err
	}

	switch e.Op {
	case syntax.AND:
		return ops.NewSequence(x, ops.NewConditional(ops.NewSequence(y, toBool()), pushFalse)), nil
	case syntax.OR:
		return ops.NewSequence(x, ops.NewConditional(pushTrue, ops.NewSequence(y, toBool()))), nil
	case syntax.IN:
		return ops.NewSequence(y, x, ops.NewCall("Contains", true, false, 1)), nil
	case syntax.NOT_IN:
		return ops.NewSequence(y, x, ops.NewCall("Contains", true, false, 1), not()), nil
	case syntax.EQL, syntax.NEQ:
		if other, ok := nullComparison(e, x, y); ok {
			isSet := ops.NewSequence(other, ops.NewIs("object"))
			if e.Op == syntax.EQL {
				return ops.NewSequence(isSet, not()), nil
			}
			return isSet, nil
		}
	}

	name, ok := methods[e.Op]
	if !ok {
		return nil, unsupported(e, "operator "+e.Op.String())
	}
	return ops.NewSequence(x, y, ops.NewCall(name, true, false, 1)), nil
}

// nullComparison returns the non-None side of a comparison against None.
func nullComparison(e *syntax.BinaryExpr, x, y ops.Operation) (ops.Operation, bool) {
	isNone := func(e syntax.Expr) bool {
		id, ok := e.(*syntax.Ident)
		return ok && id.Name == "None"
	}
	switch {
	case isNone(e.Y):
		return x, true
	case isNone(e.X):
		return y, true
	}
	return nil, false
}

func (l *lowerer) unary(e *syntax.UnaryExpr) (ops.Operation, error) {
	x, err := l.expr(e.X)
	if err != nil {
		return nil, err
	}
	switch e.Op {
	case syntax.NOT:
		return ops.NewSequence(x, not()), nil
	case syntax.MINUS:
		return ops.NewSequence(x, ops.NewCall("Negate", true, false, 0)), nil
	case syntax.PLUS:
		return x, nil
	}
	return nil, unsupported(e, "operator "+e.Op.String())
}
