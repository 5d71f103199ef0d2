package script

import "errors"

var (
	ErrCompiler     = errors.New("compiler failed or is invalid")
	ErrEmptySource  = errors.New("expression source is empty")
	ErrNilOperation = errors.New("compiled operation is nil")
)
