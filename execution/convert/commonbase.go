package convert

import "github.com/robbyt/go-polyexpr/execution/value"

// CommonBase folds v into the running candidate type of a sequence of values.
//
// A nil candidate adopts v's type and absence leaves the candidate untouched.
// Numeric-like types widen along the Kind order. Any other pair walks up the
// candidate's ancestor chain until v's type is assignable; AnyType never takes part
// in the walk, so unrelated types collapse to AnyType.
func CommonBase(candidate *value.Type, v value.Value) *value.Type {
	if v.IsNull() {
		return candidate
	}
	vt := v.Type()
	if candidate == nil {
		return vt
	}
	if vt.Equal(candidate) {
		return candidate
	}

	ck, vk := candidate.Kind(), vt.Kind()
	if ck.IsNumeric() && vk.IsNumeric() {
		if vk > ck {
			return vt
		}
		return candidate
	}

	for t := candidate; t != nil && t.Kind() != value.KindAny; t = t.Base() {
		if vt.AssignableTo(t) {
			return t
		}
	}
	return value.AnyType
}

// CommonType folds CommonBase over values. It returns AnyType when no narrower type
// is shared, including when every value is absent. A primitive common type becomes
// nullable when some values are absent.
func CommonType(values []value.Value) *value.Type {
	var candidate *value.Type
	sawNull := false
	for _, v := range values {
		if v.IsNull() {
			sawNull = true
			continue
		}
		candidate = CommonBase(candidate, v)
		if candidate == value.AnyType {
			return candidate
		}
	}
	if candidate == nil {
		return value.AnyType
	}
	if sawNull {
		return value.NullableOf(candidate)
	}
	return candidate
}
