// Package evalerr holds the failure taxonomy shared by the evaluator packages.
package evalerr

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidProgram marks a malformed operation tree, such as a stack underflow.
	// It indicates a bug in whatever built the tree and is never retried.
	ErrInvalidProgram = errors.New("invalid program")

	// ErrMissingMember marks an identifier chain that could not be resolved.
	ErrMissingMember = errors.New("missing member")

	// ErrInvalidCast marks a value that cannot be coerced to the requested type.
	ErrInvalidCast = errors.New("invalid cast")

	// ErrUndefinedVariable marks a variable access whose fallbacks were all exhausted.
	ErrUndefinedVariable = errors.New("undefined variable")

	// ErrNotPermitted marks an operation disabled by the context capability flags.
	ErrNotPermitted = errors.New("operation not permitted")
)

// MissingMemberError names the identifier segment (or full chain) that failed to resolve.
type MissingMemberError struct {
	Name string
	Err  error
}

// MissingMember builds a MissingMemberError for name.
func MissingMember(name string) *MissingMemberError {
	return &MissingMemberError{Name: name}
}

func (e *MissingMemberError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", ErrMissingMember, e.Name, e.Err)
	}
	return fmt.Sprintf("%s: %s", ErrMissingMember, e.Name)
}

func (e *MissingMemberError) Is(target error) bool {
	return target == ErrMissingMember
}

func (e *MissingMemberError) Unwrap() error {
	return e.Err
}

// UndefinedVariableError lists the names tried by an exhausted variable access.
type UndefinedVariableError struct {
	Names []string
}

func (e *UndefinedVariableError) Error() string {
	return fmt.Sprintf("%s: %s", ErrUndefinedVariable, strings.Join(e.Names, ", "))
}

func (e *UndefinedVariableError) Is(target error) bool {
	return target == ErrUndefinedVariable
}

// InvalidCastError describes a failed coercion.
type InvalidCastError struct {
	From   string
	To     string
	Reason string
}

// InvalidCast builds an InvalidCastError.
func InvalidCast(from, to, reason string) *InvalidCastError {
	return &InvalidCastError{From: from, To: to, Reason: reason}
}

func (e *InvalidCastError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("%s: %s to %s", ErrInvalidCast, e.From, e.To)
	}
	return fmt.Sprintf("%s: %s to %s: %s", ErrInvalidCast, e.From, e.To, e.Reason)
}

func (e *InvalidCastError) Is(target error) bool {
	return target == ErrInvalidCast
}

// InvalidProgram wraps ErrInvalidProgram with a formatted detail.
func InvalidProgram(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidProgram, fmt.Sprintf(format, args...))
}
