package convert

import (
	"errors"
	"math"
	"strings"

	"github.com/robbyt/go-polyexpr/execution/evalerr"
	"github.com/robbyt/go-polyexpr/execution/value"
)

// Op is a binary arithmetic operator.
type Op uint8

const (
	OpAdd Op = iota
	OpSub
	OpMul
	OpDiv
	OpMod
)

var opNames = [...]string{OpAdd: "Add", OpSub: "Sub", OpMul: "Mul", OpDiv: "Div", OpMod: "Mod"}

func (o Op) String() string {
	if int(o) < len(opNames) {
		return opNames[o]
	}
	return "?"
}

// ErrDivideByZero is returned for integral and decimal division by zero.
var ErrDivideByZero = errors.New("division by zero")

// promote applies binary numeric promotion: operands narrower than int widen to int,
// and mixing a signed operand with uint or ulong moves to a kind that holds both.
func promote(a, b value.Kind) value.Kind {
	k := max(a, b, value.KindInt32)
	switch {
	case k == value.KindUInt32 && (a.IsSigned() || b.IsSigned()):
		return value.KindInt64
	case k == value.KindUInt64 && (a.IsSigned() || b.IsSigned()):
		return value.KindDecimal
	}
	return k
}

// Arithmetic applies op to two values. Strings concatenate under OpAdd, durations add
// and subtract, and numeric operands follow binary numeric promotion with wrap-around
// integer semantics.
func Arithmetic(op Op, a, b value.Value) (value.Value, error) {
	if a.IsNull() || b.IsNull() {
		if op == OpAdd && (a.Kind() == value.KindString || b.Kind() == value.KindString) {
			return value.String(stringOrEmpty(a) + stringOrEmpty(b)), nil
		}
		return value.Null, nil
	}
	if op == OpAdd && (a.Kind() == value.KindString || b.Kind() == value.KindString) {
		return value.String(a.String() + b.String()), nil
	}
	if da, ok := durationOf(a); ok {
		if db, ok := durationOf(b); ok {
			switch op {
			case OpAdd:
				return value.Duration(da + db), nil
			case OpSub:
				return value.Duration(da - db), nil
			}
		}
	}

	na, okA := numberOf(a)
	nb, okB := numberOf(b)
	if !okA || !okB {
		return value.Null, evalerr.InvalidCast(a.Type().String(), b.Type().String(), "operator "+op.String()+" not defined")
	}

	k := promote(a.Kind(), b.Kind())
	switch {
	case k == value.KindInt32 || k == value.KindInt64:
		x, _ := na.toInt64()
		y, _ := nb.toInt64()
		r, err := intOp(op, x, y)
		if err != nil {
			return value.Null, err
		}
		if k == value.KindInt32 {
			return value.Int32(int32(r)), nil
		}
		return value.Int64(r), nil
	case k == value.KindUInt32 || k == value.KindUInt64:
		x, _ := na.toUint64()
		y, _ := nb.toUint64()
		r, err := uintOp(op, x, y)
		if err != nil {
			return value.Null, err
		}
		if k == value.KindUInt32 {
			return value.UInt32(uint32(r)), nil
		}
		return value.UInt64(r), nil
	case k.IsFloat():
		r := floatOp(op, na.toFloat64(), nb.toFloat64())
		if k == value.KindFloat32 {
			return value.Float32(float32(r)), nil
		}
		return value.Float64(r), nil
	}

	x, okX := na.toDecimal()
	y, okY := nb.toDecimal()
	if !okX || !okY {
		return value.Null, evalerr.InvalidCast("double", "decimal", "not a finite number")
	}
	if (op == OpDiv || op == OpMod) && y.IsZero() {
		return value.Null, ErrDivideByZero
	}
	switch op {
	case OpAdd:
		return value.Decimal(x.Add(y)), nil
	case OpSub:
		return value.Decimal(x.Sub(y)), nil
	case OpMul:
		return value.Decimal(x.Mul(y)), nil
	case OpDiv:
		return value.Decimal(x.Div(y)), nil
	}
	return value.Decimal(x.Mod(y)), nil
}

func stringOrEmpty(v value.Value) string {
	if v.IsNull() {
		return ""
	}
	return v.String()
}

func intOp(op Op, x, y int64) (int64, error) {
	switch op {
	case OpAdd:
		return x + y, nil
	case OpSub:
		return x - y, nil
	case OpMul:
		return x * y, nil
	}
	if y == 0 {
		return 0, ErrDivideByZero
	}
	if op == OpDiv {
		return x / y, nil
	}
	return x % y, nil
}

func uintOp(op Op, x, y uint64) (uint64, error) {
	switch op {
	case OpAdd:
		return x + y, nil
	case OpSub:
		return x - y, nil
	case OpMul:
		return x * y, nil
	}
	if y == 0 {
		return 0, ErrDivideByZero
	}
	if op == OpDiv {
		return x / y, nil
	}
	return x % y, nil
}

func floatOp(op Op, x, y float64) float64 {
	switch op {
	case OpAdd:
		return x + y
	case OpSub:
		return x - y
	case OpMul:
		return x * y
	case OpDiv:
		return x / y
	}
	return math.Mod(x, y)
}

// Negate returns the arithmetic negation of a numeric or duration value.
func Negate(v value.Value) (value.Value, error) {
	if d, ok := durationOf(v); ok {
		return value.Duration(-d), nil
	}
	return Arithmetic(OpSub, value.Int32(0), v)
}

// Compare orders two values. Numeric operands compare after promotion, strings
// ordinally, durations by length; other values only compare for equality. Absence
// sorts before everything else.
func Compare(a, b value.Value) (int, error) {
	switch {
	case a.IsNull() && b.IsNull():
		return 0, nil
	case a.IsNull():
		return -1, nil
	case b.IsNull():
		return 1, nil
	}

	if sa, ok := a.Raw().(string); ok && a.Kind() == value.KindString {
		if sb, ok := b.Raw().(string); ok && b.Kind() == value.KindString {
			return strings.Compare(sa, sb), nil
		}
	}
	if da, ok := durationOf(a); ok {
		if db, ok := durationOf(b); ok {
			return cmp3(da < db, da > db), nil
		}
	}

	na, okA := numberOf(a)
	nb, okB := numberOf(b)
	if okA && okB {
		k := promote(a.Kind(), b.Kind())
		switch {
		case k == value.KindInt32 || k == value.KindInt64:
			x, _ := na.toInt64()
			y, _ := nb.toInt64()
			return cmp3(x < y, x > y), nil
		case k == value.KindUInt32 || k == value.KindUInt64:
			x, _ := na.toUint64()
			y, _ := nb.toUint64()
			return cmp3(x < y, x > y), nil
		case k.IsFloat():
			x, y := na.toFloat64(), nb.toFloat64()
			return cmp3(x < y, x > y), nil
		}
		x, okX := na.toDecimal()
		y, okY := nb.toDecimal()
		if okX && okY {
			return x.Cmp(y), nil
		}
		x2, y2 := na.toFloat64(), nb.toFloat64()
		return cmp3(x2 < y2, x2 > y2), nil
	}

	if value.Equal(a, b) {
		return 0, nil
	}
	return 0, evalerr.InvalidCast(a.Type().String(), b.Type().String(), "values are not ordered")
}

// Equals reports value equality across numeric kinds.
func Equals(a, b value.Value) bool {
	if c, err := Compare(a, b); err == nil {
		return c == 0
	}
	return false
}

func cmp3(less, greater bool) int {
	switch {
	case less:
		return -1
	case greater:
		return 1
	}
	return 0
}
