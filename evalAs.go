package polyexpr

import (
	"context"
	"reflect"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/robbyt/go-polyexpr/execution/evalerr"
	"github.com/robbyt/go-polyexpr/execution/value"
)

var goTypes = map[reflect.Type]*value.Type{
	reflect.TypeFor[decimal.Decimal](): value.DecimalType,
	reflect.TypeFor[time.Duration]():   value.DurationType,
	reflect.TypeFor[uuid.UUID]():       value.IdentifierType,
}

var goKinds = map[reflect.Kind]*value.Type{
	reflect.Bool:    value.BoolType,
	reflect.Int8:    value.SByteType,
	reflect.Uint8:   value.ByteType,
	reflect.Int16:   value.Int16Type,
	reflect.Uint16:  value.UInt16Type,
	reflect.Int32:   value.Int32Type,
	reflect.Uint32:  value.UInt32Type,
	reflect.Int:     value.Int64Type,
	reflect.Int64:   value.Int64Type,
	reflect.Uint:    value.UInt64Type,
	reflect.Uint64:  value.UInt64Type,
	reflect.Float32: value.Float32Type,
	reflect.Float64: value.Float64Type,
	reflect.String:  value.StringType,
}

// targetType maps a Go type onto the value type the coercion engine converts to, or
// nil when the result is passed through unconverted.
func targetType(rt reflect.Type) *value.Type {
	if t, ok := goTypes[rt]; ok {
		return t
	}
	if rt.Kind() == reflect.Slice {
		if elem := targetType(rt.Elem()); elem != nil {
			return value.ArrayOf(elem)
		}
		return nil
	}
	return goKinds[rt.Kind()]
}

// EvalAs evaluates text and returns the result as T. Primitive targets, including Go's
// int and uint and slices of primitives, go through the coercion engine; any other T
// must match the result's Go value.
func EvalAs[T any](ctx context.Context, e *Evaluator, text string) (T, error) {
	var zero T
	rt := reflect.TypeFor[T]()

	v, err := e.EvalTo(ctx, text, targetType(rt))
	if err != nil {
		return zero, err
	}
	if v.IsNull() {
		return zero, nil
	}

	if out, ok := v.Interface().(T); ok {
		return out, nil
	}
	rv, ok := goValue(v, rt)
	if !ok {
		return zero, evalerr.InvalidCast(v.Type().String(), rt.String(), "result type mismatch")
	}
	return rv.Interface().(T), nil
}

// goValue builds a Go value of type rt from an already converted result.
func goValue(v value.Value, rt reflect.Type) (reflect.Value, bool) {
	if v.IsNull() {
		return reflect.Zero(rt), true
	}
	if v.Kind() == value.KindArray {
		if rt.Kind() != reflect.Slice {
			return reflect.Value{}, false
		}
		items := v.Items()
		out := reflect.MakeSlice(rt, len(items), len(items))
		for i, item := range items {
			elem, ok := goValue(item, rt.Elem())
			if !ok {
				return reflect.Value{}, false
			}
			out.Index(i).Set(elem)
		}
		return out, true
	}

	raw := reflect.ValueOf(v.Interface())
	if raw.Type() == rt {
		return raw, true
	}
	if targetType(rt) == nil || raw.Kind() != goKind(rt.Kind()) || !raw.Type().ConvertibleTo(rt) {
		return reflect.Value{}, false
	}
	return raw.Convert(rt), true
}

// goKind folds the platform-sized integer kinds onto the fixed-width kinds the value
// package stores.
func goKind(k reflect.Kind) reflect.Kind {
	switch k {
	case reflect.Int:
		return reflect.Int64
	case reflect.Uint:
		return reflect.Uint64
	}
	return k
}
