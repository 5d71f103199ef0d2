// Package ops is the operation VM: immutable expression-tree nodes evaluated against a
// per-call value stack and an evaluation context.
package ops

import (
	"context"

	"github.com/robbyt/go-polyexpr/execution/env"
	"github.com/robbyt/go-polyexpr/execution/evalerr"
	"github.com/robbyt/go-polyexpr/execution/value"
)

// Operation is one immutable node of a compiled expression. Nodes hold no per-call
// state and may be shared by concurrent evaluations.
type Operation interface {
	// Eval executes the node, consuming and producing stack values per its balance.
	Eval(ctx context.Context, ec env.Context, st *Stack) error

	// StackBalance is the net number of values the node leaves on the stack.
	StackBalance() int
}

// Stack is the evaluation stack. It is created per evaluation and never shared.
type Stack struct {
	data []value.Value
}

// NewStack returns an empty stack.
func NewStack() *Stack {
	return &Stack{data: make([]value.Value, 0, 16)}
}

// Push adds v to the top of the stack.
func (s *Stack) Push(v value.Value) {
	s.data = append(s.data, v)
}

// Pop removes and returns the top value.
func (s *Stack) Pop() (value.Value, error) {
	n := len(s.data)
	if n == 0 {
		return value.Null, evalerr.InvalidProgram("stack underflow")
	}
	v := s.data[n-1]
	s.data[n-1] = value.Null
	s.data = s.data[:n-1]
	return v, nil
}

// PopN removes the top n values and returns them in push order.
func (s *Stack) PopN(n int) ([]value.Value, error) {
	if n < 0 || n > len(s.data) {
		return nil, evalerr.InvalidProgram("stack underflow: need %d values, have %d", n, len(s.data))
	}
	if n == 0 {
		return nil, nil
	}
	start := len(s.data) - n
	out := make([]value.Value, n)
	copy(out, s.data[start:])
	clear(s.data[start:])
	s.data = s.data[:start]
	return out, nil
}

// Peek returns the top value without removing it.
func (s *Stack) Peek() (value.Value, error) {
	if len(s.data) == 0 {
		return value.Null, evalerr.InvalidProgram("stack underflow")
	}
	return s.data[len(s.data)-1], nil
}

// Len returns the number of values on the stack.
func (s *Stack) Len() int {
	return len(s.data)
}

func (s *Stack) truncate(n int) {
	if n < len(s.data) {
		clear(s.data[n:])
		s.data = s.data[:n]
	}
}

// Run evaluates op on a fresh stack and returns its single result.
func Run(ctx context.Context, ec env.Context, op Operation) (value.Value, error) {
	if op == nil {
		return value.Null, evalerr.InvalidProgram("nil operation")
	}
	st := NewStack()
	if err := op.Eval(ctx, ec, st); err != nil {
		return value.Null, err
	}
	if st.Len() != 1 {
		return value.Null, evalerr.InvalidProgram("expression left %d values on the stack", st.Len())
	}
	return st.Pop()
}
