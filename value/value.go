// Copyright (C) 2025 Michael J. Fromberger. All Rights Reserved.

// Package value implements a dynamic representation of JSON values.
//
// A Value holds exactly one of null, a Boolean, a number, a string, an array
// of values, or an object mapping names to values. The zero Value is null.
//
// The typed views of a Value (Boolean, Number, Text, Array, Object) coerce:
// asking for a view whose type differs from the current one discards the
// current contents and replaces them with the zero value of the requested
// type. The read accessors Get and Index never fail; they return null when
// the requested element does not exist.
package value

import (
	"bytes"
	"fmt"
	"maps"
	"slices"

	"github.com/creachadair/jcomb"
)

// A Value is a dynamically-typed JSON value.
type Value struct {
	kind jcomb.Kind
	b    bool
	n    float64
	s    string
	a    []Value
	o    map[string]Value
}

// null is returned by read accessors that find nothing.
var null Value

// Null returns a null value.
func Null() Value { return null }

// Bool returns a Boolean value.
func Bool(b bool) Value { return Value{kind: jcomb.Bool, b: b} }

// Number returns a number value.
func Number(f float64) Value { return Value{kind: jcomb.Number, n: f} }

// String returns a string value.
func String(s string) Value { return Value{kind: jcomb.String, s: s} }

// Array returns an array value with the given elements.
func Array(vs ...Value) Value {
	if vs == nil {
		vs = []Value{}
	}
	return Value{kind: jcomb.Array, a: vs}
}

// Object returns an object value with the given members. The map is not
// copied.
func Object(m map[string]Value) Value {
	if m == nil {
		m = make(map[string]Value)
	}
	return Value{kind: jcomb.Object, o: m}
}

// Kind reports the type of v.
func (v Value) Kind() jcomb.Kind { return v.kind }

// IsNull reports whether v is null.
func (v Value) IsNull() bool { return v.kind == jcomb.Null }

// SetNull discards the contents of v and makes it null.
func (v *Value) SetNull() { *v = Value{} }

func (v *Value) coerce(k jcomb.Kind) {
	if v.kind != k {
		*v = Value{kind: k}
	}
}

// Boolean returns a pointer to the Boolean content of v, first replacing v
// with false if it is not a Boolean.
func (v *Value) Boolean() *bool {
	v.coerce(jcomb.Bool)
	return &v.b
}

// Number returns a pointer to the numeric content of v, first replacing v
// with 0 if it is not a number.
func (v *Value) Number() *float64 {
	v.coerce(jcomb.Number)
	return &v.n
}

// Text returns a pointer to the string content of v, first replacing v with
// "" if it is not a string.
func (v *Value) Text() *string {
	v.coerce(jcomb.String)
	return &v.s
}

// Array returns a pointer to the elements of v, first replacing v with an
// empty array if it is not an array.
func (v *Value) Array() *[]Value {
	v.coerce(jcomb.Array)
	if v.a == nil {
		v.a = []Value{}
	}
	return &v.a
}

// Object returns the members of v, first replacing v with an empty object if
// it is not an object. Changes to the returned map are reflected in v.
func (v *Value) Object() map[string]Value {
	v.coerce(jcomb.Object)
	if v.o == nil {
		v.o = make(map[string]Value)
	}
	return v.o
}

// Len reports the number of elements of an array or members of an object.
// It returns 0 for all other values.
func (v Value) Len() int {
	switch v.kind {
	case jcomb.Array:
		return len(v.a)
	case jcomb.Object:
		return len(v.o)
	}
	return 0
}

// Get returns the member of v with the given name, or null if v is not an
// object or has no such member.
func (v Value) Get(key string) Value {
	if v.kind == jcomb.Object {
		if m, ok := v.o[key]; ok {
			return m
		}
	}
	return null
}

// HasKey reports whether v is an object with a member of the given name.
func (v Value) HasKey(key string) bool {
	if v.kind != jcomb.Object {
		return false
	}
	_, ok := v.o[key]
	return ok
}

// Index returns the element of v at offset i, or null if v is not an array
// or i is out of range.
func (v Value) Index(i int) Value {
	if v.kind == jcomb.Array && i >= 0 && i < len(v.a) {
		return v.a[i]
	}
	return null
}

// Keys returns the member names of an object in sorted order, or nil if v is
// not an object.
func (v Value) Keys() []string {
	if v.kind != jcomb.Object {
		return nil
	}
	return slices.Sorted(maps.Keys(v.o))
}

// Set sets the member of v with the given name to m, first replacing v with
// an empty object if it is not an object.
func (v *Value) Set(key string, m Value) { v.Object()[key] = m }

// Append appends elements to v, first replacing v with an empty array if it
// is not an array.
func (v *Value) Append(vs ...Value) {
	a := v.Array()
	*a = append(*a, vs...)
}

// Equal reports whether v and w are structurally equal. Numbers are
// compared with ==, so NaN is not equal to itself.
func (v Value) Equal(w Value) bool {
	if v.kind != w.kind {
		return false
	}
	switch v.kind {
	case jcomb.Null:
		return true
	case jcomb.Bool:
		return v.b == w.b
	case jcomb.Number:
		return v.n == w.n
	case jcomb.String:
		return v.s == w.s
	case jcomb.Array:
		return slices.EqualFunc(v.a, w.a, Value.Equal)
	case jcomb.Object:
		return maps.EqualFunc(v.o, w.o, Value.Equal)
	}
	return false
}

// Interface converts v into a tree of plain Go values: nil, bool, float64,
// string, []any, and map[string]any.
func (v Value) Interface() any {
	switch v.kind {
	case jcomb.Bool:
		return v.b
	case jcomb.Number:
		return v.n
	case jcomb.String:
		return v.s
	case jcomb.Array:
		out := make([]any, len(v.a))
		for i, e := range v.a {
			out[i] = e.Interface()
		}
		return out
	case jcomb.Object:
		out := make(map[string]any, len(v.o))
		for k, e := range v.o {
			out[k] = e.Interface()
		}
		return out
	}
	return nil
}

// FromInterface converts a tree of plain Go values of the kinds produced by
// Interface into a Value. Integer and float32 values are also accepted as
// numbers.
func FromInterface(x any) (Value, error) {
	switch t := x.(type) {
	case nil:
		return null, nil
	case bool:
		return Bool(t), nil
	case float64:
		return Number(t), nil
	case float32:
		return Number(float64(t)), nil
	case int:
		return Number(float64(t)), nil
	case int64:
		return Number(float64(t)), nil
	case string:
		return String(t), nil
	case []any:
		out := make([]Value, len(t))
		for i, e := range t {
			ev, err := FromInterface(e)
			if err != nil {
				return null, fmt.Errorf("index %d: %w", i, err)
			}
			out[i] = ev
		}
		return Array(out...), nil
	case map[string]any:
		out := make(map[string]Value, len(t))
		for k, e := range t {
			ev, err := FromInterface(e)
			if err != nil {
				return null, fmt.Errorf("member %q: %w", k, err)
			}
			out[k] = ev
		}
		return Object(out), nil
	}
	return null, fmt.Errorf("unsupported type %T", x)
}

// Emit delivers the events describing v to h. Object members are delivered
// in sorted order by name.
func (v Value) Emit(h jcomb.Handler) error {
	switch v.kind {
	case jcomb.Null:
		return h.Value(jcomb.NullValue())
	case jcomb.Bool:
		return h.Value(jcomb.BoolValue(v.b))
	case jcomb.Number:
		return h.Value(jcomb.NumberValue(v.n))
	case jcomb.String:
		return h.Value(jcomb.StringValue(v.s))
	case jcomb.Array:
		if err := h.BeginArray(); err != nil {
			return err
		}
		for _, e := range v.a {
			if err := e.Emit(h); err != nil {
				return err
			}
		}
		return h.EndArray()
	case jcomb.Object:
		if err := h.BeginObject(); err != nil {
			return err
		}
		for _, k := range v.Keys() {
			if err := h.Member(k); err != nil {
				return err
			}
			if err := v.o[k].Emit(h); err != nil {
				return err
			}
		}
		return h.EndObject()
	}
	return fmt.Errorf("invalid value kind %v", v.kind)
}

// String renders v as compact JSON text. If v cannot be rendered (for
// example, it contains a non-finite number), String describes the error.
func (v Value) String() string {
	var buf bytes.Buffer
	w := jcomb.NewWriter(&buf)
	if err := v.Emit(w); err != nil {
		return fmt.Sprintf("<invalid value: %v>", err)
	}
	if err := w.Flush(); err != nil {
		return fmt.Sprintf("<invalid value: %v>", err)
	}
	return buf.String()
}
