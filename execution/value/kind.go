package value

// Kind is the semantic category of a Type.
//
// The numeric-like kinds are declared in widening order: a larger Kind can
// represent every value of a smaller one, which is what the common-base rule
// relies on.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindBool
	KindChar
	KindSByte
	KindByte
	KindInt16
	KindUInt16
	KindInt32
	KindUInt32
	KindInt64
	KindUInt64
	KindFloat32
	KindFloat64
	KindDecimal
	KindString
	KindDuration
	KindIdentifier
	KindEnum
	KindArray
	KindNullable
	KindObject
	KindAny
)

var kindNames = [...]string{
	KindInvalid:    "invalid",
	KindBool:       "bool",
	KindChar:       "char",
	KindSByte:      "sbyte",
	KindByte:       "byte",
	KindInt16:      "short",
	KindUInt16:     "ushort",
	KindInt32:      "int",
	KindUInt32:     "uint",
	KindInt64:      "long",
	KindUInt64:     "ulong",
	KindFloat32:    "float",
	KindFloat64:    "double",
	KindDecimal:    "decimal",
	KindString:     "string",
	KindDuration:   "duration",
	KindIdentifier: "guid",
	KindEnum:       "enum",
	KindArray:      "array",
	KindNullable:   "nullable",
	KindObject:     "object",
	KindAny:        "any",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "invalid"
}

// IsNumeric reports whether k takes part in numeric widening (bool and char included).
func (k Kind) IsNumeric() bool {
	return k >= KindBool && k <= KindDecimal
}

// IsInteger reports whether k is one of the integral kinds.
func (k Kind) IsInteger() bool {
	return k >= KindSByte && k <= KindUInt64
}

// IsSigned reports whether k is a signed integral kind.
func (k Kind) IsSigned() bool {
	switch k {
	case KindSByte, KindInt16, KindInt32, KindInt64:
		return true
	}
	return false
}

// IsFloat reports whether k is a binary floating point kind.
func (k Kind) IsFloat() bool {
	return k == KindFloat32 || k == KindFloat64
}

// IsPrimitive reports whether values of k have a zero-equivalent that null converts to.
func (k Kind) IsPrimitive() bool {
	return k.IsNumeric() || k == KindDuration || k == KindIdentifier || k == KindEnum
}
