// Package node is the in-memory representation of parsed JSON used by
// graphmap. A Value is independent of any Go target type: the parser produces
// it, the mapping engine consumes it, and fields whose shape varies per payload
// keep it as an opaque value.
//
// Objects keep their keys in first-seen order and arrays keep element order,
// so Stringify is byte-stable for the same tree.
package node

import "fmt"

// Kind enumerates the variants of a Value.
type Kind int

const (
	KindInvalid Kind = iota // Zero Value: absent, not JSON null.
	KindNull
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "invalid"
	}
}

// Value is a closed variant over the JSON value kinds. The zero Value is
// KindInvalid and represents an absent value.
type Value struct {
	kind Kind
	s    string // string payload or number text
	b    bool
	arr  []Value
	obj  *Object
}

// NullValue returns the JSON null.
func NullValue() Value { return Value{kind: KindNull} }

// BoolValue wraps a boolean.
func BoolValue(b bool) Value { return Value{kind: KindBool, b: b} }

// StringValue wraps a string.
func StringValue(s string) Value { return Value{kind: KindString, s: s} }

// NumberValue wraps a Number. The text is trusted; use ParseNumber for
// untrusted input.
func NumberValue(n Number) Value { return Value{kind: KindNumber, s: string(n)} }

// ArrayValue wraps the given elements. The slice is copied.
func ArrayValue(elems ...Value) Value {
	arr := make([]Value, len(elems))
	copy(arr, elems)
	return Value{kind: KindArray, arr: arr}
}

// ObjectValue wraps an ordered object. A nil object yields an empty one.
func ObjectValue(o *Object) Value {
	if o == nil {
		o = NewObject()
	}
	return Value{kind: KindObject, obj: o}
}

// Kind reports the variant held by v.
func (v Value) Kind() Kind { return v.kind }

// IsValid reports whether v holds any JSON value (including null).
func (v Value) IsValid() bool { return v.kind != KindInvalid }

// IsNull reports whether v is the JSON null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Str returns the string payload and whether v is a String.
func (v Value) Str() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.s, true
}

// Bool returns the boolean payload and whether v is a Bool.
func (v Value) Bool() (bool, bool) {
	if v.kind != KindBool {
		return false, false
	}
	return v.b, true
}

// Num returns the number payload and whether v is a Number.
func (v Value) Num() (Number, bool) {
	if v.kind != KindNumber {
		return "", false
	}
	return Number(v.s), true
}

// Array returns a copy of the elements and whether v is an Array.
func (v Value) Array() ([]Value, bool) {
	if v.kind != KindArray {
		return nil, false
	}
	out := make([]Value, len(v.arr))
	copy(out, v.arr)
	return out, true
}

// Object returns the underlying ordered object and whether v is an Object.
// The returned object is shared with v.
func (v Value) Object() (*Object, bool) {
	if v.kind != KindObject {
		return nil, false
	}
	return v.obj, true
}

// Len returns the number of elements of an Array or entries of an Object.
func (v Value) Len() int {
	switch v.kind {
	case KindArray:
		return len(v.arr)
	case KindObject:
		return v.obj.Len()
	default:
		return 0
	}
}

// Index returns the i-th array element, or the zero Value when out of range.
func (v Value) Index(i int) Value {
	if v.kind != KindArray || i < 0 || i >= len(v.arr) {
		return Value{}
	}
	return v.arr[i]
}

// Get looks up key on an Object. It returns the zero Value and false for
// missing keys and non-object values.
func (v Value) Get(key string) (Value, bool) {
	if v.kind != KindObject {
		return Value{}, false
	}
	return v.obj.Get(key)
}

// Text returns the string payload of a String or the text of a Number.
func (v Value) Text() (string, bool) {
	switch v.kind {
	case KindString, KindNumber:
		return v.s, true
	default:
		return "", false
	}
}

// GoString renders the compact JSON form for %#v.
func (v Value) GoString() string { return fmt.Sprintf("node.Value(%s)", Stringify(v)) }

func (v Value) String() string { return Stringify(v) }
