package convert

import (
	"math"
	"math/big"
	"time"

	"github.com/robbyt/go-polyexpr/execution/evalerr"
	"github.com/robbyt/go-polyexpr/execution/value"
	"github.com/shopspring/decimal"
)

type numClass uint8

const (
	classSigned numClass = iota
	classUnsigned
	classFloat
	classDecimal
)

// number is the canonical intermediate form used for every numeric conversion.
type number struct {
	class numClass
	i     int64
	u     uint64
	f     float64
	d     decimal.Decimal
}

func signedNumber(i int64) number    { return number{class: classSigned, i: i} }
func unsignedNumber(u uint64) number { return number{class: classUnsigned, u: u} }
func floatNumber(f float64) number   { return number{class: classFloat, f: f} }
func decimalNumber(d decimal.Decimal) number {
	return number{class: classDecimal, d: d}
}

// float32Overflow is the smallest magnitude that rounds to infinity as a float32:
// MaxFloat32 plus half an ulp. Shortest float32 text such as "3.4028235e+38" parses
// above MaxFloat32 as a float64 but still rounds back to it.
const float32Overflow = 0x1p128 - 0x1p103

var (
	maxInt64Dec  = decimal.NewFromInt(math.MaxInt64)
	minInt64Dec  = decimal.NewFromInt(math.MinInt64)
	maxUint64Dec = decimal.NewFromBigInt(new(big.Int).SetUint64(math.MaxUint64), 0)
)

// numberOf extracts the numeric payload of bool, char, integral, floating, decimal
// and enum values.
func numberOf(v value.Value) (number, bool) {
	switch x := v.Raw().(type) {
	case bool:
		if x {
			return signedNumber(1), true
		}
		return signedNumber(0), true
	case int8:
		return signedNumber(int64(x)), true
	case int16:
		return signedNumber(int64(x)), true
	case int32:
		return signedNumber(int64(x)), true
	case int64:
		return signedNumber(x), true
	case uint8:
		return unsignedNumber(uint64(x)), true
	case uint16:
		return unsignedNumber(uint64(x)), true
	case uint32:
		return unsignedNumber(uint64(x)), true
	case uint64:
		return unsignedNumber(x), true
	case float32:
		return floatNumber(float64(x)), true
	case float64:
		return floatNumber(x), true
	case decimal.Decimal:
		return decimalNumber(x), true
	}
	return number{}, false
}

func (n number) isZero() bool {
	switch n.class {
	case classSigned:
		return n.i == 0
	case classUnsigned:
		return n.u == 0
	case classFloat:
		return n.f == 0
	}
	return n.d.IsZero()
}

func (n number) toInt64() (int64, bool) {
	switch n.class {
	case classSigned:
		return n.i, true
	case classUnsigned:
		return int64(n.u), n.u <= math.MaxInt64
	case classFloat:
		r := math.RoundToEven(n.f)
		if math.IsNaN(r) || r < -(1<<63) || r >= 1<<63 {
			return 0, false
		}
		return int64(r), true
	}
	r := n.d.RoundBank(0)
	if r.GreaterThan(maxInt64Dec) || r.LessThan(minInt64Dec) {
		return 0, false
	}
	return r.IntPart(), true
}

func (n number) toUint64() (uint64, bool) {
	switch n.class {
	case classSigned:
		return uint64(n.i), n.i >= 0
	case classUnsigned:
		return n.u, true
	case classFloat:
		r := math.RoundToEven(n.f)
		if math.IsNaN(r) || r < 0 || r >= 1<<64 {
			return 0, false
		}
		return uint64(r), true
	}
	r := n.d.RoundBank(0)
	if r.IsNegative() || r.GreaterThan(maxUint64Dec) {
		return 0, false
	}
	return r.BigInt().Uint64(), true
}

func (n number) toFloat64() float64 {
	switch n.class {
	case classSigned:
		return float64(n.i)
	case classUnsigned:
		return float64(n.u)
	case classFloat:
		return n.f
	}
	return n.d.InexactFloat64()
}

func (n number) toDecimal() (decimal.Decimal, bool) {
	switch n.class {
	case classSigned:
		return decimal.NewFromInt(n.i), true
	case classUnsigned:
		return decimal.NewFromBigInt(new(big.Int).SetUint64(n.u), 0), true
	case classFloat:
		if math.IsNaN(n.f) || math.IsInf(n.f, 0) {
			return decimal.Zero, false
		}
		return decimal.NewFromFloat(n.f), true
	}
	return n.d, true
}

// makeNumeric builds a value of the numeric-like target type t from n, failing with
// InvalidCast when n does not fit.
func makeNumeric(t *value.Type, n number, from string) (value.Value, error) {
	overflow := func() (value.Value, error) {
		return value.Null, evalerr.InvalidCast(from, t.String(), "value out of range")
	}
	switch t.Kind() {
	case value.KindBool:
		return value.Bool(!n.isZero()), nil
	case value.KindChar:
		u, ok := n.toUint64()
		if !ok || u > math.MaxUint16 {
			return overflow()
		}
		return value.Char(rune(u)), nil
	case value.KindSByte, value.KindInt16, value.KindInt32, value.KindInt64:
		i, ok := n.toInt64()
		if !ok {
			return overflow()
		}
		switch t.Kind() {
		case value.KindSByte:
			if i < math.MinInt8 || i > math.MaxInt8 {
				return overflow()
			}
			return value.SByte(int8(i)), nil
		case value.KindInt16:
			if i < math.MinInt16 || i > math.MaxInt16 {
				return overflow()
			}
			return value.Int16(int16(i)), nil
		case value.KindInt32:
			if i < math.MinInt32 || i > math.MaxInt32 {
				return overflow()
			}
			return value.Int32(int32(i)), nil
		}
		return value.Int64(i), nil
	case value.KindByte, value.KindUInt16, value.KindUInt32, value.KindUInt64:
		u, ok := n.toUint64()
		if !ok {
			return overflow()
		}
		switch t.Kind() {
		case value.KindByte:
			if u > math.MaxUint8 {
				return overflow()
			}
			return value.Byte(uint8(u)), nil
		case value.KindUInt16:
			if u > math.MaxUint16 {
				return overflow()
			}
			return value.UInt16(uint16(u)), nil
		case value.KindUInt32:
			if u > math.MaxUint32 {
				return overflow()
			}
			return value.UInt32(uint32(u)), nil
		}
		return value.UInt64(u), nil
	case value.KindFloat32:
		f := n.toFloat64()
		if !math.IsInf(f, 0) && !math.IsNaN(f) && math.Abs(f) >= float32Overflow {
			return overflow()
		}
		return value.Float32(float32(f)), nil
	case value.KindFloat64:
		return value.Float64(n.toFloat64()), nil
	case value.KindDecimal:
		d, ok := n.toDecimal()
		if !ok {
			return overflow()
		}
		return value.Decimal(d), nil
	case value.KindEnum:
		if n.class == classSigned {
			return value.Enum(t, uint64(n.i)), nil
		}
		u, ok := n.toUint64()
		if !ok {
			return overflow()
		}
		return value.Enum(t, u), nil
	case value.KindDuration:
		ms := n.toFloat64()
		if math.IsNaN(ms) || math.Abs(ms) > float64(math.MaxInt64)/float64(time.Millisecond) {
			return overflow()
		}
		return value.Duration(time.Duration(ms * float64(time.Millisecond))), nil
	}
	return value.Null, evalerr.InvalidCast(from, t.String(), "not a numeric type")
}
