// Package value defines the closed set of values the evaluator manipulates and the
// type descriptors attached to them.
package value

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MapType is the object type given to string-keyed maps imported from Go data.
var MapType = NewObjectType("map", nil)

// Value is a dynamically typed, immutable evaluator value. The zero Value is absence.
type Value struct {
	t *Type
	v any
}

// Null is the absence value.
var Null = Value{}

// Constructors, one per kind.
func Bool(b bool) Value               { return Value{BoolType, b} }
func Char(r rune) Value               { return Value{CharType, r} }
func SByte(i int8) Value              { return Value{SByteType, i} }
func Byte(i uint8) Value              { return Value{ByteType, i} }
func Int16(i int16) Value             { return Value{Int16Type, i} }
func UInt16(i uint16) Value           { return Value{UInt16Type, i} }
func Int32(i int32) Value             { return Value{Int32Type, i} }
func UInt32(i uint32) Value           { return Value{UInt32Type, i} }
func Int64(i int64) Value             { return Value{Int64Type, i} }
func UInt64(i uint64) Value           { return Value{UInt64Type, i} }
func Float32(f float32) Value         { return Value{Float32Type, f} }
func Float64(f float64) Value         { return Value{Float64Type, f} }
func Decimal(d decimal.Decimal) Value { return Value{DecimalType, d} }
func String(s string) Value           { return Value{StringType, s} }
func Duration(d time.Duration) Value  { return Value{DurationType, d} }
func Identifier(id uuid.UUID) Value   { return Value{IdentifierType, id} }
func Enum(t *Type, bits uint64) Value { return Value{t, bits} }
func Handle(t *Type, obj any) Value   { return Value{t, obj} }

// Array builds an array value of ArrayOf(elem).
func Array(elem *Type, items []Value) Value {
	return Value{ArrayOf(elem), append([]Value(nil), items...)}
}

// ArrayOfType builds an array value for an existing array type.
func ArrayOfType(t *Type, items []Value) Value {
	return Value{t, append([]Value(nil), items...)}
}

// Type returns the runtime type, or nil for absence.
func (v Value) Type() *Type { return v.t }

// Kind returns the runtime kind, or KindInvalid for absence.
func (v Value) Kind() Kind { return v.t.Kind() }

// IsNull reports absence.
func (v Value) IsNull() bool { return v.t == nil }

// Raw returns the Go payload: bool, rune, fixed-size integers, floats,
// decimal.Decimal, string, time.Duration, uuid.UUID, uint64 enum bits, []Value or
// the host handle.
func (v Value) Raw() any { return v.v }

// Items returns the elements of an array value. The slice must not be modified.
func (v Value) Items() []Value {
	items, _ := v.v.([]Value)
	return items
}

// Len returns the number of elements of an array value, or 0.
func (v Value) Len() int { return len(v.Items()) }

// Interface converts v to a plain Go value. Arrays become []any and enums their member
// name when one matches exactly.
func (v Value) Interface() any {
	switch x := v.v.(type) {
	case nil:
		return nil
	case []Value:
		out := make([]any, len(x))
		for i, item := range x {
			out[i] = item.Interface()
		}
		return out
	case uint64:
		if v.t.Kind() == KindEnum {
			if name, ok := v.t.EnumName(x); ok {
				return name
			}
		}
		return x
	}
	return v.v
}

func (v Value) String() string {
	switch x := v.v.(type) {
	case nil:
		return "null"
	case bool:
		return strconv.FormatBool(x)
	case rune:
		if v.t.Kind() == KindChar {
			return string(x)
		}
		return strconv.FormatInt(int64(x), 10)
	case int8:
		return strconv.FormatInt(int64(x), 10)
	case uint8:
		return strconv.FormatUint(uint64(x), 10)
	case int16:
		return strconv.FormatInt(int64(x), 10)
	case uint16:
		return strconv.FormatUint(uint64(x), 10)
	case uint32:
		return strconv.FormatUint(uint64(x), 10)
	case int64:
		return strconv.FormatInt(x, 10)
	case uint64:
		if v.t.Kind() == KindEnum {
			return FormatEnum(v.t, x)
		}
		return strconv.FormatUint(x, 10)
	case float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case decimal.Decimal:
		return x.String()
	case string:
		return x
	case time.Duration:
		return x.String()
	case uuid.UUID:
		return x.String()
	case []Value:
		parts := make([]string, len(x))
		for i, item := range x {
			parts[i] = item.String()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case fmt.Stringer:
		return x.String()
	}
	return fmt.Sprint(v.v)
}

// FormatEnum renders enumeration bits as a member name, a flags list or raw digits.
func FormatEnum(t *Type, bits uint64) string {
	if name, ok := t.EnumName(bits); ok {
		return name
	}
	if t.IsFlags() && bits != 0 {
		var names []string
		rest := bits
		for _, m := range t.EnumMembers() {
			if m.Value != 0 && rest&m.Value == m.Value {
				names = append(names, m.Name)
				rest &^= m.Value
			}
		}
		if rest == 0 {
			return strings.Join(names, ", ")
		}
	}
	return strconv.FormatUint(bits, 10)
}

// FromGo wraps a plain Go value. Maps become MapType handles and slices untyped
// arrays; json.Number becomes a long when integral and a double otherwise.
func FromGo(x any) (Value, error) {
	switch v := x.(type) {
	case nil:
		return Null, nil
	case Value:
		return v, nil
	case bool:
		return Bool(v), nil
	case int:
		return Int64(int64(v)), nil
	case int8:
		return SByte(v), nil
	case int16:
		return Int16(v), nil
	case int32:
		return Int32(v), nil
	case int64:
		return Int64(v), nil
	case uint:
		return UInt64(uint64(v)), nil
	case uint8:
		return Byte(v), nil
	case uint16:
		return UInt16(v), nil
	case uint32:
		return UInt32(v), nil
	case uint64:
		return UInt64(v), nil
	case float32:
		return Float32(v), nil
	case float64:
		return Float64(v), nil
	case decimal.Decimal:
		return Decimal(v), nil
	case string:
		return String(v), nil
	case time.Duration:
		return Duration(v), nil
	case uuid.UUID:
		return Identifier(v), nil
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return Int64(i), nil
		}
		f, err := v.Float64()
		if err != nil {
			return Null, fmt.Errorf("invalid json number %q: %w", v, err)
		}
		return Float64(f), nil
	case []Value:
		return Array(AnyType, v), nil
	case []any:
		items := make([]Value, len(v))
		for i, item := range v {
			iv, err := FromGo(item)
			if err != nil {
				return Null, fmt.Errorf("element %d: %w", i, err)
			}
			items[i] = iv
		}
		return Value{ArrayOf(AnyType), items}, nil
	case []string:
		items := make([]Value, len(v))
		for i, s := range v {
			items[i] = String(s)
		}
		return Value{ArrayOf(StringType), items}, nil
	case map[string]any:
		return Handle(MapType, v), nil
	}
	return Null, fmt.Errorf("unsupported Go type %T", x)
}

// Equal reports whether two values have equal types and payloads.
func Equal(a, b Value) bool {
	if a.IsNull() || b.IsNull() {
		return a.IsNull() && b.IsNull()
	}
	if !a.t.Equal(b.t) {
		return false
	}
	switch x := a.v.(type) {
	case []Value:
		y := b.Items()
		if len(x) != len(y) {
			return false
		}
		for i := range x {
			if !Equal(x[i], y[i]) {
				return false
			}
		}
		return true
	case decimal.Decimal:
		y, ok := b.v.(decimal.Decimal)
		return ok && x.Equal(y)
	case map[string]any:
		y, ok := b.v.(map[string]any)
		return ok && fmt.Sprint(x) == fmt.Sprint(y)
	}
	if !reflect.TypeOf(a.v).Comparable() || !reflect.TypeOf(b.v).Comparable() {
		return false
	}
	return a.v == b.v
}
