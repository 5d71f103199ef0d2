package env

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/robbyt/go-polyexpr/execution/evalerr"
	"github.com/robbyt/go-polyexpr/execution/value"
	"github.com/robbyt/go-polyexpr/internal/helpers"
)

// Option configures an Environment.
type Option func(*Environment) error

// WithLogHandler sets the handler used by the dump side channel and diagnostics.
func WithLogHandler(handler slog.Handler) Option {
	return func(e *Environment) error {
		if handler == nil {
			return ErrNilHandler
		}
		e.logHandler = handler
		return nil
	}
}

// WithCapabilities replaces the capability switches.
func WithCapabilities(caps Capabilities) Option {
	return func(e *Environment) error {
		e.caps = caps
		return nil
	}
}

// WithNamespaces appends to the namespace list consulted by FindType.
func WithNamespaces(namespaces ...string) Option {
	return func(e *Environment) error {
		for _, ns := range namespaces {
			if ns == "" {
				return fmt.Errorf("%w: namespace", ErrEmptyName)
			}
		}
		e.namespaces = append(e.namespaces, namespaces...)
		return nil
	}
}

// WithExternalCaller sets the fallback for function calls not registered with
// RegisterFunction.
func WithExternalCaller(caller ExternalCaller) Option {
	return func(e *Environment) error {
		e.external = caller
		return nil
	}
}

// WithCaseSensitiveVariables makes variable lookups case-sensitive, regardless of
// where it appears relative to WithVariables.
func WithCaseSensitiveVariables() Option {
	return func(e *Environment) error {
		e.caseSensitive = true
		return nil
	}
}

// WithVariables seeds variables from plain Go values. Later seeds override earlier
// ones.
func WithVariables(vars map[string]any) Option {
	return func(e *Environment) error {
		for name, raw := range vars {
			v, err := value.FromGo(raw)
			if err != nil {
				return fmt.Errorf("%w %q: %w", ErrVariableType, name, err)
			}
			e.seed = append(e.seed, seededVar{name: name, v: v})
		}
		return nil
	}
}

type seededVar struct {
	name string
	v    value.Value
}

// WithFunction registers a host function.
func WithFunction(name string, fn Func) Option {
	return func(e *Environment) error {
		return e.RegisterFunction(name, fn)
	}
}

type typeEntry struct {
	t       *value.Type
	statics Object
	ctor    Constructor
}

// TypeOption configures a registered type.
type TypeOption func(*typeEntry)

// WithStatics exposes obj as the static member surface of the type.
func WithStatics(obj Object) TypeOption {
	return func(te *typeEntry) { te.statics = obj }
}

// WithConstructor makes the type constructible.
func WithConstructor(ctor Constructor) TypeOption {
	return func(te *typeEntry) { te.ctor = ctor }
}

// Environment is the reference Context: a variable store, named objects, a type
// registry with namespace search, host functions, and the no-name scope list. It is
// safe for concurrent use.
type Environment struct {
	variables     *store[value.Value]
	caseSensitive bool
	seed          []seededVar

	objects   *store[Pair]
	types     *store[*typeEntry]
	functions *store[Func]

	mu         sync.RWMutex
	byType     map[*value.Type]*typeEntry
	namespaces []string
	noName     []Pair

	caps       Capabilities
	external   ExternalCaller
	logHandler slog.Handler
	logger     *slog.Logger
}

var _ Context = (*Environment)(nil)

// New creates an Environment with the predeclared named objects and primitive types.
func New(opts ...Option) (*Environment, error) {
	e := &Environment{
		objects:   newStore[Pair](false),
		types:     newStore[*typeEntry](false),
		functions: newStore[Func](true),
		byType:    make(map[*value.Type]*typeEntry),
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, fmt.Errorf("error applying option: %w", err)
		}
	}
	e.logHandler, e.logger = helpers.SetupLogger(e.logHandler, "env", "")

	e.variables = newStore[value.Value](!e.caseSensitive)
	for _, sv := range e.seed {
		e.variables.set(sv.name, sv.v)
	}
	e.seed = nil

	e.objects.set("null", Pair{Type: value.AnyType, Instance: value.Null})
	e.objects.set("true", Pair{Type: value.BoolType, Instance: value.Bool(true)})
	e.objects.set("false", Pair{Type: value.BoolType, Instance: value.Bool(false)})
	for name, t := range primitiveNames {
		e.registerType(name, t)
	}
	return e, nil
}

var primitiveNames = map[string]*value.Type{
	"object":   value.AnyType,
	"Object":   value.AnyType,
	"bool":     value.BoolType,
	"Boolean":  value.BoolType,
	"char":     value.CharType,
	"Char":     value.CharType,
	"sbyte":    value.SByteType,
	"SByte":    value.SByteType,
	"byte":     value.ByteType,
	"Byte":     value.ByteType,
	"short":    value.Int16Type,
	"Int16":    value.Int16Type,
	"ushort":   value.UInt16Type,
	"UInt16":   value.UInt16Type,
	"int":      value.Int32Type,
	"Int32":    value.Int32Type,
	"uint":     value.UInt32Type,
	"UInt32":   value.UInt32Type,
	"long":     value.Int64Type,
	"Int64":    value.Int64Type,
	"ulong":    value.UInt64Type,
	"UInt64":   value.UInt64Type,
	"float":    value.Float32Type,
	"Single":   value.Float32Type,
	"double":   value.Float64Type,
	"Double":   value.Float64Type,
	"decimal":  value.DecimalType,
	"Decimal":  value.DecimalType,
	"string":   value.StringType,
	"String":   value.StringType,
	"TimeSpan": value.DurationType,
	"duration": value.DurationType,
	"Guid":     value.IdentifierType,
	"uuid":     value.IdentifierType,
}

func (e *Environment) registerType(name string, t *value.Type, opts ...TypeOption) {
	e.mu.Lock()
	defer e.mu.Unlock()
	te, ok := e.byType[t]
	if !ok {
		te = &typeEntry{t: t}
		e.byType[t] = te
	}
	for _, opt := range opts {
		opt(te)
	}
	e.types.set(name, te)
}

// RegisterType makes t resolvable by its own name and by any aliases.
func (e *Environment) RegisterType(t *value.Type, opts ...TypeOption) error {
	if t == nil {
		return ErrNilType
	}
	e.registerType(t.Name(), t, opts...)
	return nil
}

// RegisterTypeAlias makes t resolvable under an additional name.
func (e *Environment) RegisterTypeAlias(alias string, t *value.Type) error {
	if t == nil {
		return ErrNilType
	}
	if alias == "" {
		return fmt.Errorf("%w: type alias", ErrEmptyName)
	}
	e.registerType(alias, t)
	return nil
}

// RegisterFunction exposes fn as a free function. Function names are case-insensitive.
func (e *Environment) RegisterFunction(name string, fn Func) error {
	if name == "" {
		return fmt.Errorf("%w: function", ErrEmptyName)
	}
	e.functions.set(name, fn)
	return nil
}

// SetNamedObject binds a scope to a name.
func (e *Environment) SetNamedObject(name string, p Pair) {
	e.objects.set(name, p)
}

// SetNamedValue binds the instance scope of v to a name.
func (e *Environment) SetNamedValue(name string, v value.Value) {
	e.objects.set(name, Pair{Type: v.Type(), Instance: v})
}

// RemoveNamedObject unbinds name and reports whether it was bound.
func (e *Environment) RemoveNamedObject(name string) bool {
	return e.objects.delete(name)
}

// AddNoNameScope appends a scope for leading-dot member access.
func (e *Environment) AddNoNameScope(p Pair) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.noName = append(e.noName, p)
}

// DeleteVariable removes a variable and reports whether it existed.
func (e *Environment) DeleteVariable(name string) bool {
	return e.variables.delete(name)
}

// VariableNames returns the stored variable names in sorted order.
func (e *Environment) VariableNames() []string {
	return e.variables.names()
}

// CaseSensitiveVariables reports whether variable names are matched exactly.
func (e *Environment) CaseSensitiveVariables() bool {
	return e.caseSensitive
}

// TryGetVariable implements Context.
func (e *Environment) TryGetVariable(name string) (value.Value, bool) {
	return e.variables.get(name)
}

// SetVariable implements Context.
func (e *Environment) SetVariable(name string, v value.Value) {
	e.variables.set(name, v)
}

// TryGetNamedObject implements Context. Registered types resolve to their static
// scope when no object of that name is bound.
func (e *Environment) TryGetNamedObject(name string) (Pair, bool) {
	if p, ok := e.objects.get(name); ok {
		return p, true
	}
	if te, ok := e.types.get(name); ok {
		return StaticPair(te.t), true
	}
	return Pair{}, false
}

// FindType implements Context. Array and nullable suffixes resolve against their
// element type.
func (e *Environment) FindType(name string) (*value.Type, bool) {
	switch {
	case strings.HasSuffix(name, "[]"):
		elem, ok := e.FindType(strings.TrimSuffix(name, "[]"))
		if !ok {
			return nil, false
		}
		return value.ArrayOf(elem), true
	case strings.HasSuffix(name, "?"):
		elem, ok := e.FindType(strings.TrimSuffix(name, "?"))
		if !ok {
			return nil, false
		}
		return value.NullableOf(elem), true
	}

	if te, ok := e.types.get(name); ok {
		return te.t, true
	}
	e.mu.RLock()
	namespaces := e.namespaces
	e.mu.RUnlock()
	for _, ns := range namespaces {
		if te, ok := e.types.get(ns + "." + name); ok {
			return te.t, true
		}
	}
	return nil, false
}

// CallExternal implements Context. Registered functions take precedence over the
// external caller.
func (e *Environment) CallExternal(ctx context.Context, name string, args []value.Value) (value.Value, error) {
	if fn, ok := e.functions.get(name); ok {
		return fn(ctx, args)
	}
	if e.external != nil {
		return e.external.CallExternal(ctx, name, args)
	}
	return value.Null, evalerr.MissingMember(name)
}

// NoNameScopes implements Context.
func (e *Environment) NoNameScopes() []Pair {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]Pair, len(e.noName))
	copy(out, e.noName)
	return out
}

func (e *Environment) entryFor(t *value.Type) (*typeEntry, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	te, ok := e.byType[t]
	return te, ok
}

// TryResolveMember implements Context. Instances implementing Object are asked
// first, then the built-in members of primitive, array, and map values. Static scopes
// consult registered statics, then the built-in static members of primitive and enum
// types.
func (e *Environment) TryResolveMember(
	instance value.Value,
	t *value.Type,
	isProperty bool,
	name string,
	args []value.Value,
	allowPrivate bool,
) (value.Value, bool, error) {
	if !instance.IsNull() {
		if obj, ok := instance.Raw().(Object); ok {
			var (
				v     value.Value
				found bool
				err   error
			)
			if isProperty {
				v, found, err = obj.GetMember(name, allowPrivate)
			} else {
				v, found, err = obj.CallMethod(name, args, allowPrivate)
			}
			if err != nil || found {
				return v, found, err
			}
		}
		return instanceMember(instance, isProperty, name, args)
	}

	if t == nil {
		return value.Null, false, nil
	}
	if te, ok := e.entryFor(t); ok && te.statics != nil {
		var (
			v     value.Value
			found bool
			err   error
		)
		if isProperty {
			v, found, err = te.statics.GetMember(name, allowPrivate)
		} else {
			v, found, err = te.statics.CallMethod(name, args, allowPrivate)
		}
		if err != nil || found {
			return v, found, err
		}
	}
	return staticMember(t, isProperty, name, args)
}

// TrySetMember implements Context.
func (e *Environment) TrySetMember(
	instance value.Value,
	t *value.Type,
	name string,
	v value.Value,
	allowPrivate bool,
) (bool, error) {
	var target any
	if !instance.IsNull() {
		target = instance.Raw()
	} else if te, ok := e.entryFor(t); ok {
		target = te.statics
	}
	if s, ok := target.(Settable); ok {
		return s.SetMember(name, v, allowPrivate)
	}
	return false, nil
}

// InvokeNative implements Context.
func (e *Environment) InvokeNative(instance value.Value, name string, args []value.Value) (value.Value, bool, error) {
	if n, ok := instance.Raw().(NativeInvoker); ok {
		return n.InvokeNative(name, args)
	}
	return value.Null, false, nil
}

// Construct implements Context.
func (e *Environment) Construct(t *value.Type, args []value.Value) (value.Value, error) {
	if t == nil {
		return value.Null, ErrNilType
	}
	te, ok := e.entryFor(t)
	if !ok || te.ctor == nil {
		return value.Null, fmt.Errorf("%w: %s", ErrNoConstructor, t.Name())
	}
	return te.ctor(args)
}

// Capabilities implements Context.
func (e *Environment) Capabilities() Capabilities {
	return e.caps
}

// Dump implements Context by logging the value.
func (e *Environment) Dump(label string, v value.Value) {
	e.logger.Info("dump", "label", label, "type", v.Type().String(), "value", v.String())
}
