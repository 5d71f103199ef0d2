// Package mocks holds testify mocks of the evaluation context contract.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/robbyt/go-polyexpr/execution/env"
	"github.com/robbyt/go-polyexpr/execution/value"
)

// Context is a mock implementation of env.Context for testing purposes.
type Context struct {
	mock.Mock
}

func val(args mock.Arguments, i int) value.Value {
	v, _ := args.Get(i).(value.Value)
	return v
}

// TryGetVariable is a mock implementation of the TryGetVariable method.
func (m *Context) TryGetVariable(name string) (value.Value, bool) {
	args := m.Called(name)
	return val(args, 0), args.Bool(1)
}

// SetVariable is a mock implementation of the SetVariable method.
func (m *Context) SetVariable(name string, v value.Value) {
	m.Called(name, v)
}

// TryGetNamedObject is a mock implementation of the TryGetNamedObject method.
func (m *Context) TryGetNamedObject(name string) (env.Pair, bool) {
	args := m.Called(name)
	p, _ := args.Get(0).(env.Pair)
	return p, args.Bool(1)
}

// FindType is a mock implementation of the FindType method.
func (m *Context) FindType(name string) (*value.Type, bool) {
	args := m.Called(name)
	t, _ := args.Get(0).(*value.Type)
	return t, args.Bool(1)
}

// CallExternal is a mock implementation of the CallExternal method.
func (m *Context) CallExternal(ctx context.Context, name string, a []value.Value) (value.Value, error) {
	args := m.Called(ctx, name, a)
	return val(args, 0), args.Error(1)
}

// NoNameScopes is a mock implementation of the NoNameScopes method.
func (m *Context) NoNameScopes() []env.Pair {
	args := m.Called()
	p, _ := args.Get(0).([]env.Pair)
	return p
}

// TryResolveMember is a mock implementation of the TryResolveMember method.
func (m *Context) TryResolveMember(
	instance value.Value,
	t *value.Type,
	isProperty bool,
	name string,
	a []value.Value,
	allowPrivate bool,
) (value.Value, bool, error) {
	args := m.Called(instance, t, isProperty, name, a, allowPrivate)
	return val(args, 0), args.Bool(1), args.Error(2)
}

// TrySetMember is a mock implementation of the TrySetMember method.
func (m *Context) TrySetMember(
	instance value.Value,
	t *value.Type,
	name string,
	v value.Value,
	allowPrivate bool,
) (bool, error) {
	args := m.Called(instance, t, name, v, allowPrivate)
	return args.Bool(0), args.Error(1)
}

// InvokeNative is a mock implementation of the InvokeNative method.
func (m *Context) InvokeNative(instance value.Value, name string, a []value.Value) (value.Value, bool, error) {
	args := m.Called(instance, name, a)
	return val(args, 0), args.Bool(1), args.Error(2)
}

// Construct is a mock implementation of the Construct method.
func (m *Context) Construct(t *value.Type, a []value.Value) (value.Value, error) {
	args := m.Called(t, a)
	return val(args, 0), args.Error(1)
}

// Capabilities is a mock implementation of the Capabilities method.
func (m *Context) Capabilities() env.Capabilities {
	args := m.Called()
	c, _ := args.Get(0).(env.Capabilities)
	return c
}

// Dump is a mock implementation of the Dump method.
func (m *Context) Dump(label string, v value.Value) {
	m.Called(label, v)
}

// ExternalCaller is a mock implementation of env.ExternalCaller.
type ExternalCaller struct {
	mock.Mock
}

// CallExternal is a mock implementation of the CallExternal method.
func (m *ExternalCaller) CallExternal(ctx context.Context, name string, a []value.Value) (value.Value, error) {
	args := m.Called(ctx, name, a)
	return val(args, 0), args.Error(1)
}
