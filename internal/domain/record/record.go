// Package record models the field-addressable items the query engine scans.
package record

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Record is a map-shaped item addressed by dotted field paths.
type Record map[string]Value

// Resolve walks a dotted path ("author.name") and returns Absent when any
// segment is missing or descends into a non-object.
func (r Record) Resolve(path string) Value {
	if path == "" {
		return Value{}
	}
	head, rest, nested := strings.Cut(path, ".")
	v, ok := r[head]
	if !ok {
		return Value{}
	}
	for nested {
		head, rest, nested = strings.Cut(rest, ".")
		v = v.Field(head)
		if v.kind == Absent {
			return v
		}
	}
	return v
}

// Access resolves path on r. It matches the engine's accessor signature.
func Access(r Record, path string) Value { return r.Resolve(path) }

// With returns a shallow copy of r with key set to v.
func (r Record) With(key string, v Value) Record {
	out := make(Record, len(r)+1)
	for k, val := range r {
		out[k] = val
	}
	out[key] = v
	return out
}

// Without returns a shallow copy of r without the given keys.
func (r Record) Without(keys ...string) Record {
	out := make(Record, len(r))
	for k, val := range r {
		out[k] = val
	}
	for _, k := range keys {
		delete(out, k)
	}
	return out
}

// FromAny converts a decoded JSON tree (or plain Go scalars) into a Value.
func FromAny(x any) Value {
	switch t := x.(type) {
	case nil:
		return NullValue()
	case Value:
		return t
	case bool:
		return Boolean(t)
	case string:
		return Str(t)
	case float64:
		return Num(t)
	case float32:
		return Num(float64(t))
	case int:
		return Int(int64(t))
	case int64:
		return Int(t)
	case int32:
		return Int(int64(t))
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return Str(t.String())
		}
		return Num(f)
	case map[string]any:
		m := make(map[string]Value, len(t))
		for k, val := range t {
			m[k] = FromAny(val)
		}
		return Obj(m)
	case []any:
		items := make([]Value, len(t))
		for i, val := range t {
			items[i] = FromAny(val)
		}
		return Arr(items...)
	default:
		return Str(fmt.Sprint(t))
	}
}

// ToAny converts a Value back into a plain JSON-compatible tree.
func ToAny(v Value) any {
	switch v.kind {
	case Bool:
		return v.b
	case Number:
		return v.n
	case String:
		return v.s
	case Object:
		m := make(map[string]any, len(v.obj))
		for k, val := range v.obj {
			if val.kind != Absent {
				m[k] = ToAny(val)
			}
		}
		return m
	case List:
		items := make([]any, len(v.list))
		for i, val := range v.list {
			items[i] = ToAny(val)
		}
		return items
	default:
		return nil
	}
}

// MarshalJSON encodes the value as plain JSON.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(ToAny(v))
}

// UnmarshalJSON decodes any JSON value.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode value: %w", err)
	}
	*v = FromAny(raw)
	return nil
}

// FromJSON decodes a JSON object into a Record.
func FromJSON(data []byte) (Record, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	if raw == nil {
		return nil, fmt.Errorf("decode record: not a JSON object")
	}
	r := make(Record, len(raw))
	for k, val := range raw {
		r[k] = FromAny(val)
	}
	return r, nil
}
