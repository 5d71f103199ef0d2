package script

import (
	"github.com/stretchr/testify/mock"

	"github.com/robbyt/go-polyexpr/execution/ops"
)

// MockCompiler is a mock implementation of the Compiler interface.
type MockCompiler struct {
	mock.Mock
}

// Compile mocks the Compile method of the Compiler interface.
func (m *MockCompiler) Compile(source string) (ops.Operation, error) {
	args := m.Called(source)
	op, ok := args.Get(0).(ops.Operation)
	if !ok {
		return nil, args.Error(1)
	}
	return op, args.Error(1)
}
