// Package convert is the value coercion engine: it converts any Value to a requested
// semantic type, and implements the common-base rule used to type array literals.
package convert

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/robbyt/go-polyexpr/execution/evalerr"
	"github.com/robbyt/go-polyexpr/execution/value"
	"github.com/shopspring/decimal"
)

// Convert coerces v to target. Rules apply in priority order: identity, absence,
// string formatting, array reshaping, string parsing, then numeric conversion.
// Failures wrap evalerr.ErrInvalidCast.
func Convert(target *value.Type, v value.Value) (value.Value, error) {
	if target == nil {
		return v, nil
	}
	if !v.IsNull() && v.Type().AssignableTo(target) {
		return v, nil
	}
	if v.IsNull() {
		return convertNull(target)
	}

	switch target.Kind() {
	case value.KindNullable:
		return Convert(target.Elem(), v)
	case value.KindString:
		return toString(v)
	case value.KindArray:
		return toArray(target, v)
	}

	if v.Kind() == value.KindArray {
		items := v.Items()
		switch len(items) {
		case 0:
			return convertNull(target)
		case 1:
			return Convert(target, items[0])
		}
		return value.Null, evalerr.InvalidCast(v.Type().String(), target.String(), "array has more than one element")
	}

	if s, ok := v.Raw().(string); ok && v.Kind() == value.KindString {
		return fromString(target, s)
	}

	switch target.Kind() {
	case value.KindDuration:
		if v.Kind().IsNumeric() {
			return fromNumeric(target, v)
		}
	case value.KindEnum:
		if v.Kind().IsNumeric() || v.Kind() == value.KindEnum {
			return fromNumeric(target, v)
		}
	default:
		if target.Kind().IsNumeric() && (v.Kind().IsNumeric() || v.Kind() == value.KindEnum) {
			return fromNumeric(target, v)
		}
	}
	return value.Null, evalerr.InvalidCast(v.Type().String(), target.String(), "")
}

// ToBool applies the boolean coercion used by conditional operations.
func ToBool(v value.Value) (bool, error) {
	b, err := Convert(value.BoolType, v)
	if err != nil {
		return false, err
	}
	return b.Raw().(bool), nil
}

// ToInt converts v to a Go int through the int type.
func ToInt(v value.Value) (int, error) {
	i, err := Convert(value.Int32Type, v)
	if err != nil {
		return 0, err
	}
	return int(i.Raw().(int32)), nil
}

// Zero returns the zero-equivalent of a primitive-like type, and absence for every
// other type.
func Zero(t *value.Type) value.Value {
	switch t.Kind() {
	case value.KindBool:
		return value.Bool(false)
	case value.KindChar:
		return value.Char(0)
	case value.KindSByte:
		return value.SByte(0)
	case value.KindByte:
		return value.Byte(0)
	case value.KindInt16:
		return value.Int16(0)
	case value.KindUInt16:
		return value.UInt16(0)
	case value.KindInt32:
		return value.Int32(0)
	case value.KindUInt32:
		return value.UInt32(0)
	case value.KindInt64:
		return value.Int64(0)
	case value.KindUInt64:
		return value.UInt64(0)
	case value.KindFloat32:
		return value.Float32(0)
	case value.KindFloat64:
		return value.Float64(0)
	case value.KindDecimal:
		return value.Decimal(decimal.Zero)
	case value.KindDuration:
		return value.Duration(0)
	case value.KindIdentifier:
		return value.Identifier(uuid.Nil)
	case value.KindEnum:
		return value.Enum(t, 0)
	}
	return value.Null
}

func convertNull(target *value.Type) (value.Value, error) {
	if target.Kind() == value.KindArray {
		elem, err := convertNull(target.Elem())
		if err != nil {
			return value.Null, err
		}
		return value.ArrayOfType(target, []value.Value{elem}), nil
	}
	return Zero(target), nil
}

func toString(v value.Value) (value.Value, error) {
	if v.Kind() == value.KindArray {
		items := v.Items()
		switch len(items) {
		case 0:
			return value.Null, nil
		case 1:
			return Convert(value.StringType, items[0])
		}
		return value.Null, evalerr.InvalidCast(v.Type().String(), "string", "array has more than one element")
	}
	return value.String(v.String()), nil
}

func toArray(target *value.Type, v value.Value) (value.Value, error) {
	elem := target.Elem()
	if v.Kind() != value.KindArray {
		item, err := Convert(elem, v)
		if err != nil {
			return value.Null, err
		}
		return value.ArrayOfType(target, []value.Value{item}), nil
	}
	src := v.Items()
	out := make([]value.Value, len(src))
	for i, item := range src {
		converted, err := Convert(elem, item)
		if err != nil {
			return value.Null, err
		}
		out[i] = converted
	}
	return value.ArrayOfType(target, out), nil
}

func fromNumeric(target *value.Type, v value.Value) (value.Value, error) {
	n, ok := numberOf(v)
	if !ok {
		return value.Null, evalerr.InvalidCast(v.Type().String(), target.String(), "")
	}
	return makeNumeric(target, n, v.Type().String())
}

func fromString(target *value.Type, s string) (value.Value, error) {
	switch target.Kind() {
	case value.KindBool:
		t := strings.TrimSpace(s)
		switch {
		case strings.EqualFold(t, "true"):
			return value.Bool(true), nil
		case strings.EqualFold(t, "false"):
			return value.Bool(false), nil
		}
		n, _, err := parseNumber(t)
		if err != nil || n.class == classFloat || n.class == classDecimal {
			return value.Null, evalerr.InvalidCast("string", "bool", "not a boolean: "+s)
		}
		return value.Bool(!n.isZero()), nil
	case value.KindChar:
		if utf8.RuneCountInString(s) == 1 {
			r, _ := utf8.DecodeRuneInString(s)
			return value.Char(r), nil
		}
		n, _, err := parseNumber(s)
		if err != nil {
			return value.Null, err
		}
		return makeNumeric(target, n, "string")
	case value.KindDecimal:
		t := strings.TrimSuffix(strings.TrimSuffix(strings.TrimSpace(s), "m"), "M")
		if d, err := decimal.NewFromString(t); err == nil {
			return value.Decimal(d), nil
		}
		n, _, err := parseNumber(s)
		if err != nil {
			return value.Null, err
		}
		return makeNumeric(target, n, "string")
	case value.KindEnum:
		return ParseEnum(target, s)
	case value.KindDuration:
		return ParseDuration(s)
	case value.KindIdentifier:
		id, err := uuid.Parse(strings.TrimSpace(s))
		if err != nil {
			return value.Null, evalerr.InvalidCast("string", target.String(), err.Error())
		}
		return value.Identifier(id), nil
	}
	if target.Kind().IsNumeric() {
		n, _, err := parseNumber(s)
		if err != nil {
			return value.Null, err
		}
		return makeNumeric(target, n, "string")
	}
	return value.Null, evalerr.InvalidCast("string", target.String(), "")
}

// durationOf extracts a duration payload.
func durationOf(v value.Value) (time.Duration, bool) {
	d, ok := v.Raw().(time.Duration)
	return d, ok && v.Kind() == value.KindDuration
}
