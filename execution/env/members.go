package env

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/robbyt/go-polyexpr/execution/convert"
	"github.com/robbyt/go-polyexpr/execution/value"
)

var arithmeticMethods = map[string]convert.Op{
	"add": convert.OpAdd,
	"sub": convert.OpSub,
	"mul": convert.OpMul,
	"div": convert.OpDiv,
	"mod": convert.OpMod,
}

func arity(name string, args []value.Value, n int) error {
	if len(args) != n {
		return fmt.Errorf("%w: %s expects %d, got %d", ErrMemberArguments, name, n, len(args))
	}
	return nil
}

// instanceMember resolves the built-in members every non-null value carries, followed
// by the members specific to its kind. Member names are case-insensitive.
func instanceMember(v value.Value, isProperty bool, name string, args []value.Value) (value.Value, bool, error) {
	lname := strings.ToLower(name)

	if !isProperty {
		if r, found, err := commonMethod(v, lname, args); found || err != nil {
			return r, found, err
		}
	}

	switch v.Kind() {
	case value.KindString:
		return stringMember(v.Raw().(string), isProperty, lname, args)
	case value.KindArray:
		return arrayMember(v, isProperty, lname, args)
	case value.KindDuration:
		if isProperty {
			return durationProperty(v.Raw().(time.Duration), lname)
		}
	case value.KindEnum:
		if !isProperty && lname == "hasflag" {
			if err := arity(name, args, 1); err != nil {
				return value.Null, true, err
			}
			flag, err := convert.Convert(v.Type(), args[0])
			if err != nil {
				return value.Null, true, err
			}
			bits := flag.Raw().(uint64)
			return value.Bool(v.Raw().(uint64)&bits == bits), true, nil
		}
	case value.KindBool:
		if !isProperty {
			return boolMethod(v.Raw().(bool), lname, args)
		}
	case value.KindObject:
		if m, ok := v.Raw().(map[string]any); ok {
			return mapMember(m, isProperty, name, args)
		}
	}
	return value.Null, false, nil
}

func commonMethod(v value.Value, lname string, args []value.Value) (value.Value, bool, error) {
	switch lname {
	case "tostring":
		if err := arity(lname, args, 0); err != nil {
			return value.Null, true, err
		}
		return value.String(v.String()), true, nil
	case "equals", "eq":
		if err := arity(lname, args, 1); err != nil {
			return value.Null, true, err
		}
		return value.Bool(convert.Equals(v, args[0])), true, nil
	case "ne":
		if err := arity(lname, args, 1); err != nil {
			return value.Null, true, err
		}
		return value.Bool(!convert.Equals(v, args[0])), true, nil
	case "compareto":
		if err := arity(lname, args, 1); err != nil {
			return value.Null, true, err
		}
		c, err := convert.Compare(v, args[0])
		if err != nil {
			return value.Null, true, err
		}
		return value.Int32(int32(c)), true, nil
	case "gt", "ge", "lt", "le":
		if err := arity(lname, args, 1); err != nil {
			return value.Null, true, err
		}
		if args[0].IsNull() {
			return value.Bool(false), true, nil
		}
		c, err := convert.Compare(v, args[0])
		if err != nil {
			return value.Null, true, err
		}
		switch lname {
		case "gt":
			return value.Bool(c > 0), true, nil
		case "ge":
			return value.Bool(c >= 0), true, nil
		case "lt":
			return value.Bool(c < 0), true, nil
		}
		return value.Bool(c <= 0), true, nil
	case "negate":
		if err := arity(lname, args, 0); err != nil {
			return value.Null, true, err
		}
		r, err := convert.Negate(v)
		return r, true, err
	}
	if op, ok := arithmeticMethods[lname]; ok {
		if err := arity(lname, args, 1); err != nil {
			return value.Null, true, err
		}
		r, err := convert.Arithmetic(op, v, args[0])
		return r, true, err
	}
	return value.Null, false, nil
}

func boolMethod(b bool, lname string, args []value.Value) (value.Value, bool, error) {
	if lname == "not" {
		return value.Bool(!b), true, nil
	}
	if lname != "and" && lname != "or" && lname != "xor" {
		return value.Null, false, nil
	}
	if err := arity(lname, args, 1); err != nil {
		return value.Null, true, err
	}
	o, err := convert.ToBool(args[0])
	if err != nil {
		return value.Null, true, err
	}
	switch lname {
	case "and":
		return value.Bool(b && o), true, nil
	case "or":
		return value.Bool(b || o), true, nil
	}
	return value.Bool(b != o), true, nil
}

func stringArg(name string, args []value.Value, i int) (string, error) {
	s, err := convert.Convert(value.StringType, args[i])
	if err != nil {
		return "", fmt.Errorf("%s argument %d: %w", name, i, err)
	}
	if s.IsNull() {
		return "", nil
	}
	return s.Raw().(string), nil
}

func stringMember(s string, isProperty bool, lname string, args []value.Value) (value.Value, bool, error) {
	if isProperty {
		switch lname {
		case "length":
			return value.Int32(int32(len([]rune(s)))), true, nil
		case "isempty":
			return value.Bool(s == ""), true, nil
		}
		return value.Null, false, nil
	}

	switch lname {
	case "toupper":
		return value.String(strings.ToUpper(s)), true, nil
	case "tolower":
		return value.String(strings.ToLower(s)), true, nil
	case "trim":
		return value.String(strings.TrimSpace(s)), true, nil
	case "contains", "startswith", "endswith", "indexof":
		if err := arity(lname, args, 1); err != nil {
			return value.Null, true, err
		}
		sub, err := stringArg(lname, args, 0)
		if err != nil {
			return value.Null, true, err
		}
		switch lname {
		case "contains":
			return value.Bool(strings.Contains(s, sub)), true, nil
		case "startswith":
			return value.Bool(strings.HasPrefix(s, sub)), true, nil
		case "endswith":
			return value.Bool(strings.HasSuffix(s, sub)), true, nil
		}
		i := strings.Index(s, sub)
		if i > 0 {
			i = len([]rune(s[:i]))
		}
		return value.Int32(int32(i)), true, nil
	case "replace":
		if err := arity(lname, args, 2); err != nil {
			return value.Null, true, err
		}
		from, err := stringArg(lname, args, 0)
		if err != nil {
			return value.Null, true, err
		}
		to, err := stringArg(lname, args, 1)
		if err != nil {
			return value.Null, true, err
		}
		return value.String(strings.ReplaceAll(s, from, to)), true, nil
	case "split":
		if err := arity(lname, args, 1); err != nil {
			return value.Null, true, err
		}
		sep, err := stringArg(lname, args, 0)
		if err != nil {
			return value.Null, true, err
		}
		parts := strings.Split(s, sep)
		items := make([]value.Value, len(parts))
		for i, p := range parts {
			items[i] = value.String(p)
		}
		return value.Array(value.StringType, items), true, nil
	case "substring":
		return substring([]rune(s), args)
	case "item", "chars":
		if err := arity(lname, args, 1); err != nil {
			return value.Null, true, err
		}
		runes := []rune(s)
		i, err := convert.ToInt(args[0])
		if err != nil {
			return value.Null, true, err
		}
		if i < 0 || i >= len(runes) {
			return value.Null, true, fmt.Errorf("index %d out of range [0,%d)", i, len(runes))
		}
		return value.Char(runes[i]), true, nil
	}
	return value.Null, false, nil
}

func substring(runes []rune, args []value.Value) (value.Value, bool, error) {
	if len(args) != 1 && len(args) != 2 {
		return value.Null, true, fmt.Errorf("%w: Substring expects 1 or 2, got %d", ErrMemberArguments, len(args))
	}
	start, err := convert.ToInt(args[0])
	if err != nil {
		return value.Null, true, err
	}
	end := len(runes)
	if len(args) == 2 {
		n, err := convert.ToInt(args[1])
		if err != nil {
			return value.Null, true, err
		}
		end = start + n
	}
	if start < 0 || end < start || end > len(runes) {
		return value.Null, true, fmt.Errorf("substring [%d:%d] out of range for length %d", start, end, len(runes))
	}
	return value.String(string(runes[start:end])), true, nil
}

func arrayMember(v value.Value, isProperty bool, lname string, args []value.Value) (value.Value, bool, error) {
	items := v.Items()
	if isProperty {
		if lname == "length" || lname == "count" {
			return value.Int32(int32(len(items))), true, nil
		}
		return value.Null, false, nil
	}

	switch lname {
	case "item", "get":
		if err := arity(lname, args, 1); err != nil {
			return value.Null, true, err
		}
		i, err := convert.ToInt(args[0])
		if err != nil {
			return value.Null, true, err
		}
		if i < 0 || i >= len(items) {
			return value.Null, true, fmt.Errorf("index %d out of range [0,%d)", i, len(items))
		}
		return items[i], true, nil
	case "contains", "indexof":
		if err := arity(lname, args, 1); err != nil {
			return value.Null, true, err
		}
		idx := -1
		for i, item := range items {
			if convert.Equals(item, args[0]) {
				idx = i
				break
			}
		}
		if lname == "contains" {
			return value.Bool(idx >= 0), true, nil
		}
		return value.Int32(int32(idx)), true, nil
	}
	return value.Null, false, nil
}

func mapLookup(m map[string]any, key string) (any, bool) {
	if raw, ok := m[key]; ok {
		return raw, true
	}
	for k, raw := range m {
		if strings.EqualFold(k, key) {
			return raw, true
		}
	}
	return nil, false
}

func mapMember(m map[string]any, isProperty bool, name string, args []value.Value) (value.Value, bool, error) {
	lname := strings.ToLower(name)
	if isProperty {
		if raw, ok := mapLookup(m, name); ok {
			v, err := value.FromGo(raw)
			return v, true, err
		}
		if lname == "count" {
			return value.Int32(int32(len(m))), true, nil
		}
		return value.Null, false, nil
	}

	if lname != "item" && lname != "containskey" {
		return value.Null, false, nil
	}
	if err := arity(name, args, 1); err != nil {
		return value.Null, true, err
	}
	key, err := stringArg(name, args, 0)
	if err != nil {
		return value.Null, true, err
	}
	raw, ok := mapLookup(m, key)
	if lname == "containskey" {
		return value.Bool(ok), true, nil
	}
	if !ok {
		return value.Null, true, nil
	}
	v, err := value.FromGo(raw)
	return v, true, err
}

func durationProperty(d time.Duration, lname string) (value.Value, bool, error) {
	switch lname {
	case "totalmilliseconds":
		return value.Float64(float64(d) / float64(time.Millisecond)), true, nil
	case "totalseconds":
		return value.Float64(d.Seconds()), true, nil
	case "totalminutes":
		return value.Float64(d.Minutes()), true, nil
	case "totalhours":
		return value.Float64(d.Hours()), true, nil
	case "totaldays":
		return value.Float64(d.Hours() / 24), true, nil
	case "days":
		return value.Int32(int32(d / (24 * time.Hour))), true, nil
	case "hours":
		return value.Int32(int32(d / time.Hour % 24)), true, nil
	case "minutes":
		return value.Int32(int32(d / time.Minute % 60)), true, nil
	case "seconds":
		return value.Int32(int32(d / time.Second % 60)), true, nil
	case "milliseconds":
		return value.Int32(int32(d / time.Millisecond % 1000)), true, nil
	}
	return value.Null, false, nil
}

// staticMember resolves the built-in static members of primitive and enum types.
func staticMember(t *value.Type, isProperty bool, name string, args []value.Value) (value.Value, bool, error) {
	lname := strings.ToLower(name)

	if !isProperty && lname == "parse" {
		if err := arity(name, args, 1); err != nil {
			return value.Null, true, err
		}
		if args[0].Kind() != value.KindString {
			return value.Null, true, fmt.Errorf("%w: Parse expects a string", ErrMemberArguments)
		}
		r, err := convert.Convert(t, args[0])
		return r, true, err
	}

	if t.Kind() == value.KindEnum {
		if bits, ok := t.LookupEnum(name); ok {
			return value.Enum(t, bits), true, nil
		}
		return value.Null, false, nil
	}

	if isProperty {
		if lname == "minvalue" || lname == "maxvalue" {
			if v, ok := limit(t.Kind(), lname == "maxvalue"); ok {
				return v, true, nil
			}
		}
		switch {
		case t.Kind() == value.KindString && lname == "empty":
			return value.String(""), true, nil
		case t.Kind() == value.KindIdentifier && lname == "empty":
			return value.Identifier(uuid.Nil), true, nil
		case t.Kind() == value.KindDuration && lname == "zero":
			return value.Duration(0), true, nil
		}
		return value.Null, false, nil
	}

	switch {
	case t.Kind() == value.KindIdentifier && lname == "newguid":
		return value.Identifier(uuid.New()), true, nil
	case t.Kind() == value.KindDuration && strings.HasPrefix(lname, "from"):
		unit, ok := durationUnits[lname]
		if !ok {
			return value.Null, false, nil
		}
		if err := arity(name, args, 1); err != nil {
			return value.Null, true, err
		}
		f, err := convert.Convert(value.Float64Type, args[0])
		if err != nil {
			return value.Null, true, err
		}
		return value.Duration(time.Duration(f.Raw().(float64) * float64(unit))), true, nil
	}
	return value.Null, false, nil
}

var durationUnits = map[string]time.Duration{
	"frommilliseconds": time.Millisecond,
	"fromseconds":      time.Second,
	"fromminutes":      time.Minute,
	"fromhours":        time.Hour,
	"fromdays":         24 * time.Hour,
}

func limit(k value.Kind, upper bool) (value.Value, bool) {
	pick := func(lo, hi value.Value) (value.Value, bool) {
		if upper {
			return hi, true
		}
		return lo, true
	}
	switch k {
	case value.KindChar:
		return pick(value.Char(0), value.Char(0xFFFF))
	case value.KindSByte:
		return pick(value.SByte(math.MinInt8), value.SByte(math.MaxInt8))
	case value.KindByte:
		return pick(value.Byte(0), value.Byte(math.MaxUint8))
	case value.KindInt16:
		return pick(value.Int16(math.MinInt16), value.Int16(math.MaxInt16))
	case value.KindUInt16:
		return pick(value.UInt16(0), value.UInt16(math.MaxUint16))
	case value.KindInt32:
		return pick(value.Int32(math.MinInt32), value.Int32(math.MaxInt32))
	case value.KindUInt32:
		return pick(value.UInt32(0), value.UInt32(math.MaxUint32))
	case value.KindInt64:
		return pick(value.Int64(math.MinInt64), value.Int64(math.MaxInt64))
	case value.KindUInt64:
		return pick(value.UInt64(0), value.UInt64(math.MaxUint64))
	case value.KindFloat32:
		return pick(value.Float32(-math.MaxFloat32), value.Float32(math.MaxFloat32))
	case value.KindFloat64:
		return pick(value.Float64(-math.MaxFloat64), value.Float64(math.MaxFloat64))
	case value.KindDecimal:
		hi := decimal.RequireFromString("79228162514264337593543950335")
		return pick(value.Decimal(hi.Neg()), value.Decimal(hi))
	}
	return value.Null, false
}
