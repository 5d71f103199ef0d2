package env

import "errors"

var (
	ErrNilType         = errors.New("type is nil")
	ErrEmptyName       = errors.New("name is empty")
	ErrNilHandler      = errors.New("log handler cannot be nil")
	ErrNoConstructor   = errors.New("type has no constructor")
	ErrMemberArguments = errors.New("wrong number of member arguments")
	ErrVariableType    = errors.New("unsupported variable type")
)
