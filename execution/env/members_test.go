package env

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robbyt/go-polyexpr/execution/value"
)

func TestInstanceMembers(t *testing.T) {
	t.Parallel()

	str := value.String("Hello, World")
	arr := value.Array(value.Int32Type, []value.Value{value.Int32(3), value.Int32(5)})
	m, err := value.FromGo(map[string]any{"Key": "v", "n": 2})
	require.NoError(t, err)
	perm := value.NewEnumType("Perm", true,
		value.EnumMember{Name: "Read", Value: 1},
		value.EnumMember{Name: "Write", Value: 2},
	)

	tests := []struct {
		name       string
		v          value.Value
		isProperty bool
		member     string
		args       []value.Value
		want       value.Value
	}{
		{"ToString", value.Int32(5), false, "ToString", nil, value.String("5")},
		{"Equals across kinds", value.Int32(5), false, "Equals", []value.Value{value.Int64(5)}, value.Bool(true)},
		{"NE", value.Int32(5), false, "ne", []value.Value{value.Int32(6)}, value.Bool(true)},
		{"CompareTo", value.Int32(5), false, "CompareTo", []value.Value{value.Int32(6)}, value.Int32(-1)},
		{"GT", value.Int32(5), false, "GT", []value.Value{value.Float64(4.5)}, value.Bool(true)},
		{"LE null", value.Int32(5), false, "LE", []value.Value{value.Null}, value.Bool(false)},
		{"Add", value.Int32(5), false, "Add", []value.Value{value.Int32(2)}, value.Int32(7)},
		{"Negate", value.Int32(5), false, "Negate", nil, value.Int32(-5)},
		{"string Length", str, true, "Length", nil, value.Int32(12)},
		{"string length lower", str, true, "length", nil, value.Int32(12)},
		{"IsEmpty", str, true, "IsEmpty", nil, value.Bool(false)},
		{"ToLower", str, false, "ToLower", nil, value.String("hello, world")},
		{"Contains", str, false, "Contains", []value.Value{value.String("World")}, value.Bool(true)},
		{"StartsWith", str, false, "StartsWith", []value.Value{value.String("Hell")}, value.Bool(true)},
		{"IndexOf", str, false, "IndexOf", []value.Value{value.String("o")}, value.Int32(4)},
		{"IndexOf missing", str, false, "IndexOf", []value.Value{value.String("z")}, value.Int32(-1)},
		{"Replace", str, false, "Replace", []value.Value{value.String("World"), value.String("Go")}, value.String("Hello, Go")},
		{"Substring", str, false, "Substring", []value.Value{value.Int32(7)}, value.String("World")},
		{"Substring length", str, false, "Substring", []value.Value{value.Int32(0), value.Int32(5)}, value.String("Hello")},
		{"Item", str, false, "Item", []value.Value{value.Int32(1)}, value.Char('e')},
		{"array Length", arr, true, "Length", nil, value.Int32(2)},
		{"array Count", arr, true, "Count", nil, value.Int32(2)},
		{"array Item", arr, false, "Item", []value.Value{value.Int32(1)}, value.Int32(5)},
		{"array Contains", arr, false, "Contains", []value.Value{value.Int64(3)}, value.Bool(true)},
		{"array IndexOf", arr, false, "IndexOf", []value.Value{value.Int32(9)}, value.Int32(-1)},
		{"map key", m, true, "Key", nil, value.String("v")},
		{"map key folded", m, true, "key", nil, value.String("v")},
		{"map Count", m, true, "Count", nil, value.Int32(2)},
		{"map ContainsKey", m, false, "ContainsKey", []value.Value{value.String("n")}, value.Bool(true)},
		{"map Item missing", m, false, "Item", []value.Value{value.String("zzz")}, value.Null},
		{"duration TotalSeconds", value.Duration(90 * time.Second), true, "TotalSeconds", nil, value.Float64(90)},
		{"duration Minutes", value.Duration(90 * time.Second), true, "Minutes", nil, value.Int32(1)},
		{"duration Seconds", value.Duration(90 * time.Second), true, "Seconds", nil, value.Int32(30)},
		{"HasFlag", value.Enum(perm, 3), false, "HasFlag", []value.Value{value.Enum(perm, 2)}, value.Bool(true)},
		{"HasFlag by name", value.Enum(perm, 1), false, "HasFlag", []value.Value{value.String("Write")}, value.Bool(false)},
		{"bool And", value.Bool(true), false, "And", []value.Value{value.Bool(false)}, value.Bool(false)},
		{"bool Not", value.Bool(true), false, "Not", nil, value.Bool(false)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, found, err := instanceMember(tt.v, tt.isProperty, tt.member, tt.args)
			require.NoError(t, err)
			require.True(t, found)
			assert.True(t, value.Equal(tt.want, got), "got %v of %s", got, got.Type())
		})
	}

	t.Run("Split", func(t *testing.T) {
		t.Parallel()
		got, found, err := instanceMember(value.String("a,b"), false, "Split", []value.Value{value.String(",")})
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, "string[]", got.Type().String())
		assert.Equal(t, []any{"a", "b"}, got.Interface())
	})

	t.Run("not found", func(t *testing.T) {
		t.Parallel()
		_, found, err := instanceMember(str, true, "Nope", nil)
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("wrong arity", func(t *testing.T) {
		t.Parallel()
		_, found, err := instanceMember(value.Int32(1), false, "Add", nil)
		assert.True(t, found)
		require.ErrorIs(t, err, ErrMemberArguments)
	})

	t.Run("index out of range", func(t *testing.T) {
		t.Parallel()
		_, found, err := instanceMember(arr, false, "Item", []value.Value{value.Int32(5)})
		assert.True(t, found)
		require.Error(t, err)
	})
}

func TestStaticMembers(t *testing.T) {
	t.Parallel()

	perm := value.NewEnumType("Perm", true,
		value.EnumMember{Name: "Read", Value: 1},
		value.EnumMember{Name: "Write", Value: 2},
	)

	tests := []struct {
		name       string
		t          *value.Type
		isProperty bool
		member     string
		args       []value.Value
		want       value.Value
	}{
		{"int Parse", value.Int32Type, false, "Parse", []value.Value{value.String("12")}, value.Int32(12)},
		{"enum Parse", perm, false, "Parse", []value.Value{value.String("Read|Write")}, value.Enum(perm, 3)},
		{"enum member", perm, true, "Write", nil, value.Enum(perm, 2)},
		{"byte MaxValue", value.ByteType, true, "MaxValue", nil, value.Byte(255)},
		{"short MinValue", value.Int16Type, true, "MinValue", nil, value.Int16(-32768)},
		{"String Empty", value.StringType, true, "Empty", nil, value.String("")},
		{"Guid Empty", value.IdentifierType, true, "Empty", nil, value.Identifier(uuid.Nil)},
		{"TimeSpan Zero", value.DurationType, true, "Zero", nil, value.Duration(0)},
		{"TimeSpan FromMinutes", value.DurationType, false, "FromMinutes", []value.Value{value.Float64(1.5)}, value.Duration(90 * time.Second)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, found, err := staticMember(tt.t, tt.isProperty, tt.member, tt.args)
			require.NoError(t, err)
			require.True(t, found)
			assert.True(t, value.Equal(tt.want, got), "got %v of %s", got, got.Type())
		})
	}

	t.Run("NewGuid", func(t *testing.T) {
		t.Parallel()
		got, found, err := staticMember(value.IdentifierType, false, "NewGuid", nil)
		require.NoError(t, err)
		require.True(t, found)
		assert.NotEqual(t, uuid.Nil, got.Raw())
	})

	t.Run("Parse requires a string", func(t *testing.T) {
		t.Parallel()
		_, found, err := staticMember(value.Int32Type, false, "Parse", []value.Value{value.Int32(1)})
		assert.True(t, found)
		require.ErrorIs(t, err, ErrMemberArguments)
	})
}
