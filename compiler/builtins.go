package compiler

import (
	"strings"

	"go.starlark.net/syntax"

	"github.com/robbyt/go-polyexpr/execution/ops"
)

type builtin func(l *lowerer, e *syntax.CallExpr) (ops.Operation, error)

var builtins map[string]builtin

func init() {
	builtins = map[string]builtin{
		"new":        lowerNew,
		"isinstance": lowerIsInstance,
		"coalesce":   lowerCoalesce,
		"dump":       lowerDump,
		"assign":     lowerAssign,
	}
}

// typeName reads a type reference written as an identifier, a dotted chain, or a
// string literal such as "int[]".
func typeName(e syntax.Expr) (string, bool) {
	if lit, ok := e.(*syntax.Literal); ok && lit.Token == syntax.STRING {
		s, ok := lit.Value.(string)
		return s, ok
	}
	if segments, ok := chain(e); ok {
		return strings.Join(segments, "."), true
	}
	return "", false
}

func stringLiteral(e syntax.Expr) (string, bool) {
	lit, ok := e.(*syntax.Literal)
	if !ok || lit.Token != syntax.STRING {
		return "", false
	}
	s, ok := lit.Value.(string)
	return s, ok
}

func lowerNew(l *lowerer, e *syntax.CallExpr) (ops.Operation, error) {
	if len(e.Args) == 0 {
		return nil, unsupported(e, "new without a type")
	}
	name, ok := typeName(e.Args[0])
	if !ok {
		return nil, unsupported(e.Args[0], "type name")
	}

	var (
		body   []ops.Operation
		initOp ops.Operation
	)
	for _, a := range e.Args[1:] {
		if kw, ok := a.(*syntax.BinaryExpr); ok && kw.Op == syntax.EQ {
			id, ok := kw.X.(*syntax.Ident)
			if !ok || id.Name != "init" || initOp != nil {
				return nil, unsupported(a, "keyword argument")
			}
			op, err := l.expr(kw.Y)
			if err != nil {
				return nil, err
			}
			initOp = op
			continue
		}
		if initOp != nil {
			return nil, unsupported(a, "positional argument after init")
		}
		op, err := l.expr(a)
		if err != nil {
			return nil, err
		}
		body = append(body, op)
	}

	argc := len(body)
	if initOp != nil {
		body = append(body, initOp)
	}
	return ops.NewSequence(append(body, ops.NewNewObject(name, argc, initOp != nil))...), nil
}

func lowerIsInstance(l *lowerer, e *syntax.CallExpr) (ops.Operation, error) {
	if len(e.Args) != 2 {
		return nil, unsupported(e, "isinstance takes two arguments")
	}
	name, ok := typeName(e.Args[1])
	if !ok {
		return nil, unsupported(e.Args[1], "type name")
	}
	x, err := l.expr(e.Args[0])
	if err != nil {
		return nil, err
	}
	return ops.NewSequence(x, ops.NewIs(name)), nil
}

func lowerCoalesce(l *lowerer, e *syntax.CallExpr) (ops.Operation, error) {
	args, err := l.positional(e)
	if err != nil {
		return nil, err
	}
	if len(args) == 0 {
		return nil, unsupported(e, "coalesce without arguments")
	}
	op := args[len(args)-1]
	for i := len(args) - 2; i >= 0; i-- {
		op = ops.NewSequence(args[i], ops.NewCoalesce(op))
	}
	return op, nil
}

func lowerDump(l *lowerer, e *syntax.CallExpr) (ops.Operation, error) {
	if len(e.Args) != 1 && len(e.Args) != 2 {
		return nil, unsupported(e, "dump takes one or two arguments")
	}
	label := "dump"
	if len(e.Args) == 2 {
		s, ok := stringLiteral(e.Args[1])
		if !ok {
			return nil, unsupported(e.Args[1], "dump label must be a string literal")
		}
		label = s
	}
	x, err := l.expr(e.Args[0])
	if err != nil {
		return nil, err
	}
	return ops.NewSequence(x, ops.NewDump(label)), nil
}

func lowerAssign(l *lowerer, e *syntax.CallExpr) (ops.Operation, error) {
	if len(e.Args) != 2 {
		return nil, unsupported(e, "assign takes two arguments")
	}
	name, ok := stringLiteral(e.Args[0])
	if !ok || name == "" {
		return nil, unsupported(e.Args[0], "variable name must be a string literal")
	}
	x, err := l.expr(e.Args[1])
	if err != nil {
		return nil, err
	}
	return ops.NewSequence(x, ops.NewAssign(name)), nil
}
