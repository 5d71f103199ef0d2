package polyexpr

import "github.com/robbyt/go-polyexpr/execution/evalerr"

var (
	ErrInvalidProgram    = evalerr.ErrInvalidProgram
	ErrMissingMember     = evalerr.ErrMissingMember
	ErrInvalidCast       = evalerr.ErrInvalidCast
	ErrUndefinedVariable = evalerr.ErrUndefinedVariable
	ErrNotPermitted      = evalerr.ErrNotPermitted
)

type (
	MissingMemberError     = evalerr.MissingMemberError
	UndefinedVariableError = evalerr.UndefinedVariableError
	InvalidCastError       = evalerr.InvalidCastError
)
