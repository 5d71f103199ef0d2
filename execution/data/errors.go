package data

import "errors"

var (
	ErrStaticProviderNoRuntimeUpdates = errors.New("static provider does not accept runtime updates")
	ErrEmptyContextKey                = errors.New("context key is empty")
	ErrUnsupportedData                = errors.New("unsupported data type")
	ErrNoProvider                     = errors.New("no data provider available")
)
