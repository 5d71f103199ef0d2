package ops

import (
	"github.com/robbyt/go-polyexpr/execution/evalerr"
)

// Validate checks that op, evaluated from an empty stack, never underflows and leaves
// exactly one value, and that the branches of every Conditional agree.
func Validate(op Operation) error {
	if op == nil {
		return evalerr.InvalidProgram("nil operation")
	}
	depth, err := simulate(op, 0)
	if err != nil {
		return err
	}
	if depth != 1 {
		return evalerr.InvalidProgram("%v leaves %d values on the stack", op, depth)
	}
	return nil
}

// simulate returns the stack depth after op runs from depth without executing it.
func simulate(op Operation, depth int) (int, error) {
	need := func(n int) error {
		if depth < n {
			return evalerr.InvalidProgram("%v needs %d values, stack holds %d", op, n, depth)
		}
		return nil
	}

	switch o := op.(type) {
	case *Sequence:
		var err error
		for _, child := range o.Ops {
			if depth, err = simulate(child, depth); err != nil {
				return 0, err
			}
		}
		return depth, nil
	case *Conditional:
		if err := need(1); err != nil {
			return 0, err
		}
		then, err := simulate(o.Then, depth-1)
		if err != nil {
			return 0, err
		}
		els, err := simulate(o.Else, depth-1)
		if err != nil {
			return 0, err
		}
		if then != els {
			return 0, evalerr.InvalidProgram("%v branches disagree: %d and %d", op, then-depth+1, els-depth+1)
		}
		return then, nil
	case *Coalesce:
		if err := need(1); err != nil {
			return 0, err
		}
		after, err := simulate(o.Else, depth-1)
		if err != nil {
			return 0, err
		}
		if after != depth {
			return 0, evalerr.InvalidProgram("%v fallback must leave one value", op)
		}
		return depth, nil
	case *VariableAccess:
		for _, opt := range o.options {
			if opt.kind != varSubExpr {
				continue
			}
			after, err := simulate(opt.sub, depth)
			if err != nil {
				return 0, err
			}
			if after != depth+1 {
				return 0, evalerr.InvalidProgram("%v sub-expression must leave one value", op)
			}
		}
		return depth + 1, nil
	case *Call:
		pops := o.Argc
		if o.ThisCall {
			pops++
		}
		if err := need(pops); err != nil {
			return 0, err
		}
	case *NewObject:
		pops := o.Argc
		if o.HasInit {
			pops++
		}
		if err := need(pops); err != nil {
			return 0, err
		}
	case *CreateBlock:
		if err := need(o.N); err != nil {
			return 0, err
		}
	case *Is, *Assign, *Dump:
		if err := need(1); err != nil {
			return 0, err
		}
	}
	after := depth + op.StackBalance()
	if after < 0 {
		return 0, evalerr.InvalidProgram("%v underflows the stack", op)
	}
	return after, nil
}
