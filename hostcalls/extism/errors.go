package extism

import "errors"

var (
	ErrContentNil     = errors.New("wasm content is nil")
	ErrInvalidBinary  = errors.New("invalid wasm binary")
	ErrCompileFailed  = errors.New("failed to compile wasm module")
	ErrNilPlugin      = errors.New("compiled plugin is nil")
	ErrExecution      = errors.New("wasm execution failed")
	ErrNonZeroExit    = errors.New("function returned non-zero exit code")
	ErrNotExported    = errors.New("function is not exported by the plugin")
	ErrNotAllowed     = errors.New("function is not in the allow list")
	ErrMarshalArgs    = errors.New("failed to marshal call arguments")
	ErrDecodeResponse = errors.New("failed to decode call result")
)
