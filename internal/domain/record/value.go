package record

import (
	"math"
	"strconv"
	"strings"
)

// Kind classifies a Value.
type Kind uint8

// Value kinds. Absent marks a path that does not resolve; Null is an explicit null.
const (
	Absent Kind = iota
	Null
	Bool
	Number
	String
	Object
	List
)

// Value is a JSON-shaped scalar or container read from a record.
// The zero Value is Absent.
type Value struct {
	kind Kind
	b    bool
	n    float64
	s    string
	obj  map[string]Value
	list []Value
}

// NullValue returns an explicit null.
func NullValue() Value { return Value{kind: Null} }

// Boolean wraps a bool.
func Boolean(b bool) Value { return Value{kind: Bool, b: b} }

// Num wraps a number.
func Num(n float64) Value { return Value{kind: Number, n: n} }

// Int wraps an integer as a number.
func Int(n int64) Value { return Value{kind: Number, n: float64(n)} }

// Str wraps a string.
func Str(s string) Value { return Value{kind: String, s: s} }

// Obj wraps a nested object. A nil map is treated as an empty object.
func Obj(m map[string]Value) Value {
	if m == nil {
		m = map[string]Value{}
	}
	return Value{kind: Object, obj: m}
}

// Arr wraps a list of values.
func Arr(items ...Value) Value { return Value{kind: List, list: items} }

// Kind returns the value kind.
func (v Value) Kind() Kind { return v.kind }

// IsMissing reports whether the value is absent or null.
func (v Value) IsMissing() bool { return v.kind == Absent || v.kind == Null }

// AsString returns the string payload for String values.
func (v Value) AsString() (string, bool) { return v.s, v.kind == String }

// AsNumber returns the numeric payload for Number values.
func (v Value) AsNumber() (float64, bool) { return v.n, v.kind == Number }

// AsBool returns the boolean payload for Bool values.
func (v Value) AsBool() (bool, bool) { return v.b, v.kind == Bool }

// Field returns the named member of an Object value, or Absent.
func (v Value) Field(name string) Value {
	if v.kind != Object {
		return Value{}
	}
	return v.obj[name]
}

// Items returns the elements of a List value.
func (v Value) Items() []Value {
	if v.kind != List {
		return nil
	}
	return v.list
}

// Truthy reports whether the value would pass a loose boolean test:
// missing values, false, 0, NaN and "" are falsy.
func (v Value) Truthy() bool {
	switch v.kind {
	case Bool:
		return v.b
	case Number:
		return v.n != 0 && !math.IsNaN(v.n)
	case String:
		return v.s != ""
	case Object, List:
		return true
	default:
		return false
	}
}

// Text returns the string form used for free-text matching.
func (v Value) Text() string {
	switch v.kind {
	case Null:
		return "null"
	case Bool:
		return strconv.FormatBool(v.b)
	case Number:
		return formatNumber(v.n)
	case String:
		return v.s
	case Object:
		return "[object Object]"
	case List:
		parts := make([]string, len(v.list))
		for i, item := range v.list {
			if !item.IsMissing() {
				parts[i] = item.Text()
			}
		}
		return strings.Join(parts, ",")
	default:
		return ""
	}
}

// Equal reports strict equality: same kind and same scalar payload.
// Objects and lists are never equal to anything.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case Absent, Null:
		return true
	case Bool:
		return v.b == o.b
	case Number:
		return v.n == o.n
	case String:
		return v.s == o.s
	default:
		return false
	}
}

// Compare orders two present values. Values of the same scalar kind use their
// natural order; differing kinds order bool < number < string < object < list.
// Containers of the same kind compare equal.
func Compare(a, b Value) int {
	if a.kind != b.kind {
		if a.kind < b.kind {
			return -1
		}
		return 1
	}
	switch a.kind {
	case Bool:
		switch {
		case a.b == b.b:
			return 0
		case !a.b:
			return -1
		default:
			return 1
		}
	case Number:
		switch {
		case a.n < b.n:
			return -1
		case a.n > b.n:
			return 1
		default:
			return 0
		}
	case String:
		return strings.Compare(a.s, b.s)
	default:
		return 0
	}
}

func formatNumber(n float64) string {
	if n == math.Trunc(n) && math.Abs(n) < 1e21 {
		return strconv.FormatFloat(n, 'f', -1, 64)
	}
	return strconv.FormatFloat(n, 'g', -1, 64)
}
