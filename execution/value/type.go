package value

import (
	"strings"
)

// Type describes the semantic type of a Value. Types are immutable after construction
// and safe to share between goroutines.
type Type struct {
	name string
	kind Kind
	elem *Type
	base *Type
	enum *enumDef
}

// EnumMember is one named constant of an enumeration type.
type EnumMember struct {
	Name  string
	Value uint64
}

type enumDef struct {
	members []EnumMember
	flags   bool
}

// Predeclared types.
var (
	AnyType        = &Type{name: "object", kind: KindAny}
	BoolType       = &Type{name: "bool", kind: KindBool}
	CharType       = &Type{name: "char", kind: KindChar}
	SByteType      = &Type{name: "sbyte", kind: KindSByte}
	ByteType       = &Type{name: "byte", kind: KindByte}
	Int16Type      = &Type{name: "short", kind: KindInt16}
	UInt16Type     = &Type{name: "ushort", kind: KindUInt16}
	Int32Type      = &Type{name: "int", kind: KindInt32}
	UInt32Type     = &Type{name: "uint", kind: KindUInt32}
	Int64Type      = &Type{name: "long", kind: KindInt64}
	UInt64Type     = &Type{name: "ulong", kind: KindUInt64}
	Float32Type    = &Type{name: "float", kind: KindFloat32}
	Float64Type    = &Type{name: "double", kind: KindFloat64}
	DecimalType    = &Type{name: "decimal", kind: KindDecimal}
	StringType     = &Type{name: "string", kind: KindString}
	DurationType   = &Type{name: "TimeSpan", kind: KindDuration}
	IdentifierType = &Type{name: "Guid", kind: KindIdentifier}
)

// Primitives lists the predeclared non-object types in Kind order.
var Primitives = []*Type{
	BoolType, CharType, SByteType, ByteType, Int16Type, UInt16Type, Int32Type, UInt32Type,
	Int64Type, UInt64Type, Float32Type, Float64Type, DecimalType, StringType, DurationType,
	IdentifierType,
}

// NumericType returns the predeclared type of a numeric kind, or nil.
func NumericType(k Kind) *Type {
	if !k.IsNumeric() {
		return nil
	}
	return Primitives[k-KindBool]
}

// NewObjectType declares a host reference type. A nil base makes it a direct
// descendant of AnyType.
func NewObjectType(name string, base *Type) *Type {
	return &Type{name: name, kind: KindObject, base: base}
}

// NewEnumType declares an enumeration. Flags enumerations format composite values as
// a list of member names.
func NewEnumType(name string, flags bool, members ...EnumMember) *Type {
	return &Type{
		name: name,
		kind: KindEnum,
		enum: &enumDef{members: append([]EnumMember(nil), members...), flags: flags},
	}
}

// ArrayOf returns the array type with the given element type.
func ArrayOf(elem *Type) *Type {
	if elem == nil {
		elem = AnyType
	}
	return &Type{name: elem.name + "[]", kind: KindArray, elem: elem}
}

// NullableOf wraps a primitive type so it also admits absence. Types that already admit
// absence are returned unchanged.
func NullableOf(elem *Type) *Type {
	if elem == nil || !elem.kind.IsPrimitive() {
		return elem
	}
	return &Type{name: elem.name + "?", kind: KindNullable, elem: elem}
}

func (t *Type) String() string {
	if t == nil {
		return "null"
	}
	return t.name
}

// Name returns the declared name.
func (t *Type) Name() string { return t.name }

// Kind returns the semantic kind.
func (t *Type) Kind() Kind {
	if t == nil {
		return KindInvalid
	}
	return t.kind
}

// Elem returns the element type of an array or nullable type.
func (t *Type) Elem() *Type { return t.elem }

// Base returns the declared ancestor of an object type, or nil.
func (t *Type) Base() *Type { return t.base }

// IsFlags reports whether an enumeration composes its members bitwise.
func (t *Type) IsFlags() bool { return t.enum != nil && t.enum.flags }

// EnumMembers returns the members of an enumeration in declaration order.
func (t *Type) EnumMembers() []EnumMember {
	if t.enum == nil {
		return nil
	}
	return append([]EnumMember(nil), t.enum.members...)
}

// LookupEnum finds a member by case-insensitive name.
func (t *Type) LookupEnum(name string) (uint64, bool) {
	if t.enum == nil {
		return 0, false
	}
	for _, m := range t.enum.members {
		if strings.EqualFold(m.Name, name) {
			return m.Value, true
		}
	}
	return 0, false
}

// EnumName returns the first member declared with exactly bits.
func (t *Type) EnumName(bits uint64) (string, bool) {
	if t.enum == nil {
		return "", false
	}
	for _, m := range t.enum.members {
		if m.Value == bits {
			return m.Name, true
		}
	}
	return "", false
}

// Equal reports type identity. Named types compare by declaration, composite types
// structurally.
func (t *Type) Equal(o *Type) bool {
	if t == o {
		return true
	}
	if t == nil || o == nil || t.kind != o.kind {
		return false
	}
	switch t.kind {
	case KindArray, KindNullable:
		return t.elem.Equal(o.elem)
	}
	return false
}

// AssignableTo reports whether a value of type t already satisfies target without
// conversion.
func (t *Type) AssignableTo(target *Type) bool {
	if t == nil || target == nil {
		return false
	}
	if t.Equal(target) || target.kind == KindAny {
		return true
	}
	switch target.kind {
	case KindNullable:
		return t.Equal(target.elem)
	case KindArray:
		return t.kind == KindArray && !t.elem.kind.IsPrimitive() && t.elem.AssignableTo(target.elem)
	case KindObject:
		for b := t.base; b != nil; b = b.base {
			if b.Equal(target) {
				return true
			}
		}
	}
	return false
}
