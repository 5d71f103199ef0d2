package convert

import (
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robbyt/go-polyexpr/execution/evalerr"
	"github.com/robbyt/go-polyexpr/execution/value"
)

var access = value.NewEnumType("Access", true,
	value.EnumMember{Name: "None", Value: 0},
	value.EnumMember{Name: "Read", Value: 1},
	value.EnumMember{Name: "Write", Value: 2},
	value.EnumMember{Name: "Exec", Value: 4},
)

var weekday = value.NewEnumType("Weekday", false,
	value.EnumMember{Name: "Monday", Value: 1},
	value.EnumMember{Name: "Tuesday", Value: 2},
)

func TestStringRoundTrip(t *testing.T) {
	t.Parallel()

	values := []value.Value{
		value.Bool(true),
		value.Char('q'),
		value.SByte(math.MinInt8),
		value.Byte(math.MaxUint8),
		value.Int16(-1234),
		value.UInt16(60000),
		value.Int32(42),
		value.UInt32(math.MaxUint32),
		value.Int64(math.MinInt64),
		value.UInt64(math.MaxUint64),
		value.Float32(1.25),
		value.Float32(math.MaxFloat32),
		value.Float32(-math.MaxFloat32),
		value.Float32(math.SmallestNonzeroFloat32),
		value.Float64(0.1),
		value.Float64(math.MaxFloat64),
		value.Decimal(decimal.RequireFromString("12345678901234567890.5")),
		value.Duration(90 * time.Minute),
		value.Identifier(uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")),
		value.Enum(access, 3),
	}

	for _, v := range values {
		t.Run(v.Type().String(), func(t *testing.T) {
			t.Parallel()
			s, err := Convert(value.StringType, v)
			require.NoError(t, err)
			require.Equal(t, value.KindString, s.Kind())

			back, err := Convert(v.Type(), s)
			require.NoError(t, err)
			assert.True(t, value.Equal(v, back), "%s: %v round-tripped to %v", v.Type(), v, back)
		})
	}
}

func TestConvertBasics(t *testing.T) {
	t.Parallel()

	got, err := Convert(value.Int32Type, value.String("42"))
	require.NoError(t, err)
	assert.Equal(t, value.Int32(42), got)

	got, err = Convert(value.StringType, value.Int32(42))
	require.NoError(t, err)
	assert.Equal(t, value.String("42"), got)

	v := value.Int64(7)
	got, err = Convert(value.Int64Type, v)
	require.NoError(t, err)
	assert.Equal(t, v, got)

	got, err = Convert(nil, v)
	require.NoError(t, err)
	assert.Equal(t, v, got)
}

func TestConvertNull(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		target *value.Type
		want   value.Value
	}{
		{"int", value.Int32Type, value.Int32(0)},
		{"bool", value.BoolType, value.Bool(false)},
		{"decimal", value.DecimalType, value.Decimal(decimal.Zero)},
		{"duration", value.DurationType, value.Duration(0)},
		{"enum", access, value.Enum(access, 0)},
		{"string", value.StringType, value.Null},
		{"object", value.AnyType, value.Null},
		{"nullable", value.NullableOf(value.Int32Type), value.Null},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := Convert(tt.target, value.Null)
			require.NoError(t, err)
			assert.True(t, value.Equal(tt.want, got), "got %v", got)
		})
	}

	t.Run("array", func(t *testing.T) {
		t.Parallel()
		got, err := Convert(value.ArrayOf(value.Int32Type), value.Null)
		require.NoError(t, err)
		require.Equal(t, 1, got.Len())
		assert.Equal(t, value.Int32(0), got.Items()[0])
	})
}

func TestConvertArrays(t *testing.T) {
	t.Parallel()

	ints := value.Array(value.Int32Type, []value.Value{value.Int32(1), value.Int32(2)})

	got, err := Convert(value.ArrayOf(value.Int64Type), ints)
	require.NoError(t, err)
	assert.Equal(t, "long[]", got.Type().String())
	assert.Equal(t, []any{int64(1), int64(2)}, got.Interface())

	got, err = Convert(value.ArrayOf(value.StringType), value.Int32(5))
	require.NoError(t, err)
	assert.Equal(t, []any{"5"}, got.Interface())

	got, err = Convert(value.Int64Type, value.Array(value.Int32Type, []value.Value{value.Int32(9)}))
	require.NoError(t, err)
	assert.Equal(t, value.Int64(9), got)

	got, err = Convert(value.Int32Type, value.Array(value.Int32Type, nil))
	require.NoError(t, err)
	assert.Equal(t, value.Int32(0), got)

	got, err = Convert(value.StringType, value.Array(value.Int32Type, nil))
	require.NoError(t, err)
	assert.True(t, got.IsNull())

	_, err = Convert(value.Int32Type, ints)
	require.ErrorIs(t, err, evalerr.ErrInvalidCast)
}

func TestConvertStringToBool(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    bool
		wantErr bool
	}{
		{in: "true", want: true},
		{in: " False ", want: false},
		{in: "1", want: true},
		{in: "0", want: false},
		{in: "-3", want: true},
		{in: "1.5", wantErr: true},
		{in: "yes", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got, err := Convert(value.BoolType, value.String(tt.in))
			if tt.wantErr {
				require.ErrorIs(t, err, evalerr.ErrInvalidCast)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, value.Bool(tt.want), got)
		})
	}
}

func TestConvertNumericRange(t *testing.T) {
	t.Parallel()

	_, err := Convert(value.ByteType, value.Int32(256))
	require.ErrorIs(t, err, evalerr.ErrInvalidCast)

	_, err = Convert(value.UInt32Type, value.Int32(-1))
	require.ErrorIs(t, err, evalerr.ErrInvalidCast)

	_, err = Convert(value.Int32Type, value.String("3000000000"))
	require.ErrorIs(t, err, evalerr.ErrInvalidCast)

	got, err := Convert(value.Float32Type, value.String("3.4028235e+38"))
	require.NoError(t, err)
	assert.Equal(t, value.Float32(math.MaxFloat32), got)

	_, err = Convert(value.Float32Type, value.String("3.5e38"))
	require.ErrorIs(t, err, evalerr.ErrInvalidCast)

	_, err = Convert(value.Float32Type, value.Float64(-math.MaxFloat64))
	require.ErrorIs(t, err, evalerr.ErrInvalidCast)

	got, err = Convert(value.Float64Type, value.Int32(3))
	require.NoError(t, err)
	assert.Equal(t, value.Float64(3), got)

	got, err = Convert(value.DurationType, value.Int32(1500))
	require.NoError(t, err)
	assert.Equal(t, value.Duration(1500*time.Millisecond), got)

	_, err = Convert(value.IdentifierType, value.Int32(1))
	require.ErrorIs(t, err, evalerr.ErrInvalidCast)
}

func TestParseNumber(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want value.Value
	}{
		{"42", value.Int32(42)},
		{"-42", value.Int32(-42)},
		{"3000000000", value.Int64(3000000000)},
		{"18446744073709551615", value.UInt64(math.MaxUint64)},
		{"0xff", value.Int32(255)},
		{"0x10u", value.UInt32(16)},
		{"10L", value.Int64(10)},
		{"10ul", value.UInt64(10)},
		{"1.5", value.Float64(1.5)},
		{"1e3", value.Float64(1000)},
		{"2.5f", value.Float32(2.5)},
		{"2d", value.Float64(2)},
		{"1.10m", value.Decimal(decimal.RequireFromString("1.1"))},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got, err := ParseNumber(tt.in)
			require.NoError(t, err)
			assert.True(t, value.Equal(tt.want, got), "got %v of %s", got, got.Type())
		})
	}

	for _, bad := range []string{"", "abc", "0xzz", "-5u", "1.2.3"} {
		t.Run("invalid "+bad, func(t *testing.T) {
			t.Parallel()
			_, err := ParseNumber(bad)
			require.ErrorIs(t, err, evalerr.ErrInvalidCast)
		})
	}
}

func TestParseEnum(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		typ  *value.Type
		in   string
		want uint64
	}{
		{"single", access, "Read", 1},
		{"case insensitive", access, "write", 2},
		{"plus", access, "Read+Write", 3},
		{"mixed delimiters", access, "read, write|exec", 7},
		{"semicolon and spaces", access, " Read ; Exec ", 5},
		{"digits", access, "6", 6},
		{"digits and names", access, "Read 4", 5},
		{"empty with zero member", access, "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := ParseEnum(tt.typ, tt.in)
			require.NoError(t, err)
			assert.Equal(t, value.Enum(tt.typ, tt.want), got)
		})
	}

	t.Run("empty without zero member", func(t *testing.T) {
		t.Parallel()
		_, err := ParseEnum(weekday, "")
		require.ErrorIs(t, err, evalerr.ErrInvalidCast)
	})

	t.Run("unknown name", func(t *testing.T) {
		t.Parallel()
		_, err := ParseEnum(access, "Delete")
		require.ErrorIs(t, err, evalerr.ErrInvalidCast)
	})
}

func TestParseDuration(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want time.Duration
	}{
		{"PT1H30M", 90 * time.Minute},
		{"P1DT2H", 26 * time.Hour},
		{"-PT5S", -5 * time.Second},
		{"250", 250 * time.Millisecond},
		{"1.5", 1500 * time.Microsecond},
		{"1h30m", 90 * time.Minute},
		{"01:02:03", time.Hour + 2*time.Minute + 3*time.Second},
		{"2.00:00", 48 * time.Hour},
		{"-00:00:01.5", -1500 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got, err := ParseDuration(tt.in)
			require.NoError(t, err)
			assert.Equal(t, value.Duration(tt.want), got)
		})
	}

	for _, bad := range []string{"", "soon", "25:00", "1:60"} {
		t.Run("invalid "+bad, func(t *testing.T) {
			t.Parallel()
			_, err := ParseDuration(bad)
			require.ErrorIs(t, err, evalerr.ErrInvalidCast)
		})
	}
}

func TestCommonType(t *testing.T) {
	t.Parallel()

	animal := value.NewObjectType("Animal", nil)
	dog := value.NewObjectType("Dog", animal)
	cat := value.NewObjectType("Cat", animal)

	tests := []struct {
		name   string
		values []value.Value
		want   string
	}{
		{"ints", []value.Value{value.Int32(1), value.Int32(2)}, "int"},
		{"widening", []value.Value{value.Byte(1), value.Int32(2), value.Float64(3)}, "double"},
		{"bool and char widen", []value.Value{value.Bool(true), value.Char('a')}, "char"},
		{"nullable", []value.Value{value.Int32(1), value.Null}, "int?"},
		{"strings", []value.Value{value.String("a"), value.Null}, "string"},
		{"siblings", []value.Value{value.Handle(dog, nil), value.Handle(cat, nil)}, "Animal"},
		{"unrelated", []value.Value{value.String("a"), value.Int32(1)}, "object"},
		{"all null", []value.Value{value.Null, value.Null}, "object"},
		{"empty", nil, "object"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, CommonType(tt.values).String())
		})
	}
}

func TestArithmetic(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		op   Op
		a, b value.Value
		want value.Value
	}{
		{"int add", OpAdd, value.Int32(2), value.Int32(3), value.Int32(5)},
		{"byte promotes", OpAdd, value.Byte(200), value.Byte(100), value.Int32(300)},
		{"int wraps", OpAdd, value.Int32(math.MaxInt32), value.Int32(1), value.Int32(math.MinInt32)},
		{"mixed long", OpMul, value.Int32(3), value.Int64(4), value.Int64(12)},
		{"uint with int", OpAdd, value.UInt32(1), value.Int32(1), value.Int64(2)},
		{"float", OpDiv, value.Float64(1), value.Int32(4), value.Float64(0.25)},
		{"int division truncates", OpDiv, value.Int32(7), value.Int32(2), value.Int32(3)},
		{"mod", OpMod, value.Int32(7), value.Int32(4), value.Int32(3)},
		{
			"decimal", OpAdd,
			value.Decimal(decimal.RequireFromString("0.1")), value.Int32(1),
			value.Decimal(decimal.RequireFromString("1.1")),
		},
		{"concat", OpAdd, value.String("a"), value.Int32(1), value.String("a1")},
		{"concat null", OpAdd, value.String("a"), value.Null, value.String("a")},
		{"null propagates", OpSub, value.Int32(1), value.Null, value.Null},
		{"durations", OpAdd, value.Duration(time.Second), value.Duration(time.Second), value.Duration(2 * time.Second)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := Arithmetic(tt.op, tt.a, tt.b)
			require.NoError(t, err)
			assert.True(t, value.Equal(tt.want, got), "got %v of %s", got, got.Type())
		})
	}

	t.Run("divide by zero", func(t *testing.T) {
		t.Parallel()
		_, err := Arithmetic(OpDiv, value.Int32(1), value.Int32(0))
		require.ErrorIs(t, err, ErrDivideByZero)
	})

	t.Run("not numeric", func(t *testing.T) {
		t.Parallel()
		_, err := Arithmetic(OpMul, value.String("a"), value.Int32(2))
		require.ErrorIs(t, err, evalerr.ErrInvalidCast)
	})

	t.Run("negate", func(t *testing.T) {
		t.Parallel()
		got, err := Negate(value.Int64(5))
		require.NoError(t, err)
		assert.Equal(t, value.Int64(-5), got)

		got, err = Negate(value.Duration(time.Second))
		require.NoError(t, err)
		assert.Equal(t, value.Duration(-time.Second), got)
	})
}

func TestCompare(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a, b value.Value
		want int
	}{
		{"ints", value.Int32(1), value.Int32(2), -1},
		{"mixed numeric", value.Int64(2), value.Float64(1.5), 1},
		{"equal across kinds", value.Byte(3), value.Decimal(decimal.NewFromInt(3)), 0},
		{"strings", value.String("b"), value.String("a"), 1},
		{"null first", value.Null, value.Int32(0), -1},
		{"durations", value.Duration(time.Second), value.Duration(time.Minute), -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := Compare(tt.a, tt.b)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := Compare(value.String("a"), value.Int32(1))
	require.ErrorIs(t, err, evalerr.ErrInvalidCast)

	assert.True(t, Equals(value.Int32(1), value.Int64(1)))
	assert.False(t, Equals(value.String("1"), value.Int32(1)))
}
