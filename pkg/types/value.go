package types

import (
	"fmt"
	"strconv"
)

// ValueKind enumerates the native types a stored value can hold.
type ValueKind int

// Value kinds, in wire-tag order.
const (
	KindBool ValueKind = iota
	KindInt
	KindFloat
	KindString
	KindLink
)

// String returns the wire tag for the kind.
func (k ValueKind) String() string {
	switch k {
	case KindBool:
		return "boolean"
	case KindInt:
		return "integer"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindLink:
		return "link"
	default:
		return "unknown"
	}
}

// Link is an untyped reference to another record.
type Link int64

// Value is a tagged union over the native types the store understands:
// boolean, integer, floating-point, UTF-8 string, and record link.
// The zero Value is the empty string.
type Value struct {
	kind ValueKind
	b    bool
	i    int64
	f    float64
	s    string
}

// Bool wraps a boolean.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Int wraps an integer.
func Int(i int64) Value { return Value{kind: KindInt, i: i} }

// Float wraps a floating-point number.
func Float(f float64) Value { return Value{kind: KindFloat, f: f} }

// String wraps a UTF-8 string.
func String(s string) Value { return Value{kind: KindString, s: s} }

// LinkTo wraps a reference to the given record.
func LinkTo(record int64) Value { return Value{kind: KindLink, i: record} }

// FromAny converts a native Go value to a Value. Booleans, integer types,
// floats, strings, and Links map to their kinds; anything else is carried
// as its string representation.
func FromAny(v any) Value {
	switch x := v.(type) {
	case Value:
		return x
	case bool:
		return Bool(x)
	case int:
		return Int(int64(x))
	case int8:
		return Int(int64(x))
	case int16:
		return Int(int64(x))
	case int32:
		return Int(int64(x))
	case int64:
		return Int(x)
	case uint:
		return Int(int64(x))
	case uint8:
		return Int(int64(x))
	case uint16:
		return Int(int64(x))
	case uint32:
		return Int(int64(x))
	case float32:
		return Float(float64(x))
	case float64:
		return Float(x)
	case string:
		return String(x)
	case Link:
		return LinkTo(int64(x))
	default:
		return String(fmt.Sprint(v))
	}
}

// Kind reports which native type the Value holds.
func (v Value) Kind() ValueKind { return v.kind }

// Bool returns the boolean payload; false when the kind differs.
func (v Value) Bool() bool { return v.kind == KindBool && v.b }

// Int returns the integer payload; zero when the kind differs.
func (v Value) Int() int64 {
	if v.kind == KindInt {
		return v.i
	}
	return 0
}

// Float returns the floating-point payload; zero when the kind differs.
func (v Value) Float() float64 {
	if v.kind == KindFloat {
		return v.f
	}
	return 0
}

// Str returns the string payload; empty when the kind differs.
func (v Value) Str() string {
	if v.kind == KindString {
		return v.s
	}
	return ""
}

// Link returns the linked record; zero when the kind differs.
func (v Value) Link() Link {
	if v.kind == KindLink {
		return Link(v.i)
	}
	return 0
}

// Native returns the payload as a plain Go value.
func (v Value) Native() any {
	switch v.kind {
	case KindBool:
		return v.b
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindLink:
		return Link(v.i)
	default:
		return v.s
	}
}

// Equal reports whether two values have the same kind and payload.
func (v Value) Equal(o Value) bool { return v == o }

// Compare orders two values. Integers and floats compare numerically with
// each other; strings compare lexically; booleans order false before true;
// links compare by record. The second return is false when the kinds are
// not comparable.
func (v Value) Compare(o Value) (int, bool) {
	if v.numeric() && o.numeric() {
		a, b := v.asFloat(), o.asFloat()
		switch {
		case a < b:
			return -1, true
		case a > b:
			return 1, true
		default:
			return 0, true
		}
	}
	if v.kind != o.kind {
		return 0, false
	}
	switch v.kind {
	case KindString:
		switch {
		case v.s < o.s:
			return -1, true
		case v.s > o.s:
			return 1, true
		default:
			return 0, true
		}
	case KindBool:
		switch {
		case v.b == o.b:
			return 0, true
		case o.b:
			return -1, true
		default:
			return 1, true
		}
	case KindLink:
		switch {
		case v.i < o.i:
			return -1, true
		case v.i > o.i:
			return 1, true
		default:
			return 0, true
		}
	default:
		return 0, false
	}
}

func (v Value) numeric() bool { return v.kind == KindInt || v.kind == KindFloat }

func (v Value) asFloat() float64 {
	if v.kind == KindInt {
		return float64(v.i)
	}
	return v.f
}

// String renders the value for display and audit descriptions.
func (v Value) String() string {
	switch v.kind {
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindLink:
		return "@" + strconv.FormatInt(v.i, 10)
	default:
		return v.s
	}
}
