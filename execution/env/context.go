// Package env defines the evaluation context the operation VM runs against, and a
// reference implementation of it.
package env

import (
	"context"

	"github.com/robbyt/go-polyexpr/execution/value"
)

// Pair is a resolution scope: a type and, for instance scopes, the instance itself.
// A static scope has a null Instance.
type Pair struct {
	Type     *value.Type
	Instance value.Value
}

// StaticPair returns the static scope of t.
func StaticPair(t *value.Type) Pair {
	return Pair{Type: t}
}

// PairOf returns the instance scope of v, or false for absence.
func PairOf(v value.Value) (Pair, bool) {
	if v.IsNull() {
		return Pair{}, false
	}
	return Pair{Type: v.Type(), Instance: v}, true
}

// IsStatic reports whether p has no instance.
func (p Pair) IsStatic() bool {
	return p.Instance.IsNull()
}

// Capabilities are the host switches consulted during evaluation.
type Capabilities struct {
	// AllowPrivate lets member resolution reach non-public members.
	AllowPrivate bool
	// AllowNativeInterop enables the direct-invocation fallback of member resolution.
	AllowNativeInterop bool
	// AllowDump enables the side-channel dump operation.
	AllowDump bool
}

// Context is the runtime surface the VM consumes from its host. Implementations must
// not block: the VM never suspends.
type Context interface {
	// TryGetVariable looks up a variable.
	TryGetVariable(name string) (value.Value, bool)

	// SetVariable creates or replaces a variable.
	SetVariable(name string, v value.Value)

	// TryGetNamedObject looks up a named object or type by exact name.
	TryGetNamedObject(name string) (Pair, bool)

	// FindType resolves a type name, consulting the namespace list when the bare name
	// is unknown.
	FindType(name string) (*value.Type, bool)

	// CallExternal invokes a host-defined global function.
	CallExternal(ctx context.Context, name string, args []value.Value) (value.Value, error)

	// NoNameScopes returns, in order, the scopes tried for leading-dot member access.
	NoNameScopes() []Pair

	// TryResolveMember reads a property (isProperty) or calls a method on an instance,
	// or on the static scope of t when instance is null.
	TryResolveMember(
		instance value.Value,
		t *value.Type,
		isProperty bool,
		name string,
		args []value.Value,
		allowPrivate bool,
	) (value.Value, bool, error)

	// TrySetMember assigns a property of an instance or static scope.
	TrySetMember(instance value.Value, t *value.Type, name string, v value.Value, allowPrivate bool) (bool, error)

	// InvokeNative calls name directly on the instance's native call surface.
	InvokeNative(instance value.Value, name string, args []value.Value) (value.Value, bool, error)

	// Construct creates a new instance of a non-primitive type.
	Construct(t *value.Type, args []value.Value) (value.Value, error)

	// Capabilities returns the host switches.
	Capabilities() Capabilities

	// Dump receives values emitted by the dump operation.
	Dump(label string, v value.Value)
}

// ExternalCaller resolves free function calls that are not registered on an Environment.
type ExternalCaller interface {
	CallExternal(ctx context.Context, name string, args []value.Value) (value.Value, error)
}

// Func is a host function callable from expressions.
type Func func(ctx context.Context, args []value.Value) (value.Value, error)

// Object is the capability interface host values implement to expose members.
// The boolean result reports whether the member exists.
type Object interface {
	GetMember(name string, allowPrivate bool) (value.Value, bool, error)
	CallMethod(name string, args []value.Value, allowPrivate bool) (value.Value, bool, error)
}

// Settable is implemented by objects with assignable members.
type Settable interface {
	SetMember(name string, v value.Value, allowPrivate bool) (bool, error)
}

// NativeInvoker is implemented by opaque foreign objects that accept direct calls by
// name, including get_X and set_X accessor names.
type NativeInvoker interface {
	InvokeNative(name string, args []value.Value) (value.Value, bool, error)
}

// Constructor creates instances of a registered type.
type Constructor func(args []value.Value) (value.Value, error)
