package script

import "github.com/robbyt/go-polyexpr/execution/ops"

// Compiler turns expression source text into an operation tree. It is the parser
// boundary of the evaluator: the tree it returns is immutable and may be cached and
// shared across evaluations.
//
// Example usage:
//
//	var comp Compiler = compiler.New()
//	op, err := comp.Compile("a.Length > 3")
//	if err != nil {
//	    // Handle syntax error
//	}
type Compiler interface {
	// Compile parses source and returns its operation tree.
	//
	// Returns:
	//   - ops.Operation: the compiled tree, with a stack balance of one
	//   - error: syntax errors and unsupported constructs, wrapping ErrCompiler
	Compile(source string) (ops.Operation, error)
}

// CompilerFunc adapts a function to the Compiler interface.
type CompilerFunc func(source string) (ops.Operation, error)

// Compile implements Compiler.
func (f CompilerFunc) Compile(source string) (ops.Operation, error) {
	return f(source)
}
