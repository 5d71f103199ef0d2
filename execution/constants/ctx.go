// Package constants holds the context keys shared by the evaluator packages.
package constants

// ContextKey is the type of context.Context keys set by this module.
type ContextKey string

const (
	EvalData ContextKey = "eval_data" // per-call variables stored by data.ContextProvider
	ExprID   ContextKey = "expr_id"   // short content hash of the expression being evaluated
)
