package data

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockProvider is a testify mock of Provider.
type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) GetData(ctx context.Context) (map[string]any, error) {
	args := m.Called(ctx)
	data, _ := args.Get(0).(map[string]any)
	return data, args.Error(1)
}

func (m *MockProvider) AddDataToContext(ctx context.Context, data ...any) (context.Context, error) {
	args := m.Called(ctx, data)
	next, ok := args.Get(0).(context.Context)
	if !ok {
		next = ctx
	}
	return next, args.Error(1)
}
