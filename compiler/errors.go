package compiler

import "errors"

var (
	ErrCompileFailed = errors.New("failed to compile expression")
	ErrContentEmpty  = errors.New("expression content is empty")
	ErrUnsupported   = errors.New("unsupported expression")
)
