// Copyright (C) 2025 Michael J. Fromberger. All Rights Reserved.

package bind

import (
	"cmp"
	"math"
	"reflect"
	"slices"
	"strconv"

	"github.com/creachadair/jcomb"
	"github.com/creachadair/jcomb/value"
)

// A Capability describes how values of one Go type are constructed from
// parser events, and how they are walked to produce events. Each method
// reports ErrUnsupported if the type does not support that operation.
//
// The dst argument of the construction methods is always addressable.
type Capability interface {
	// Accept stores the scalar s into dst.
	Accept(dst reflect.Value, s jcomb.Scalar) error

	// Begin prepares dst to receive the contents of an array or object.
	Begin(dst reflect.Value, k jcomb.Kind) error

	// End completes the array or object begun in dst.
	End(dst reflect.Value) error

	// Child returns a slot for the member of dst with the given name.
	Child(dst reflect.Value, name string) (Slot, error)

	// Append returns a slot for a new element at the end of dst.
	Append(dst reflect.Value) (Slot, error)

	// Walk delivers the events describing src to h.
	Walk(src reflect.Value, h jcomb.Handler) error
}

// A Slot is a location where a value can be constructed, together with the
// capability for its type. The slot does not own the memory it refers to.
type Slot struct {
	v    reflect.Value
	cap  Capability
	done func()
}

// NewSlot constructs a slot for the addressable value v with capability c.
// If done != nil, it is called when construction of v is complete.
func NewSlot(v reflect.Value, c Capability, done func()) Slot {
	return Slot{v: v, cap: c, done: done}
}

// Value returns the location of s.
func (s Slot) Value() reflect.Value { return s.v }

// Capability returns the capability for the type of s.
func (s Slot) Capability() Capability { return s.cap }

// IsZero reports whether s is the zero Slot, which refers to nothing.
func (s Slot) IsZero() bool { return s.cap == nil }

// unsupported is a Capability that supports no operations. The other
// capabilities embed it to supply the operations they lack.
type unsupported struct{}

func (unsupported) Accept(reflect.Value, jcomb.Scalar) error { return ErrUnsupported }
func (unsupported) Begin(reflect.Value, jcomb.Kind) error    { return ErrUnsupported }
func (unsupported) End(reflect.Value) error                  { return ErrUnsupported }
func (unsupported) Child(reflect.Value, string) (Slot, error) {
	return Slot{}, ErrUnsupported
}
func (unsupported) Append(reflect.Value) (Slot, error)      { return Slot{}, ErrUnsupported }
func (unsupported) Walk(reflect.Value, jcomb.Handler) error { return ErrUnsupported }

// boolCap binds bool kinds.
type boolCap struct{ unsupported }

func (boolCap) Accept(dst reflect.Value, s jcomb.Scalar) error {
	if s.Kind != jcomb.Bool {
		return ErrUnsupported
	}
	dst.SetBool(s.Bool)
	return nil
}

func (boolCap) Walk(src reflect.Value, h jcomb.Handler) error {
	return h.Value(jcomb.BoolValue(src.Bool()))
}

// numCap binds integer, unsigned, and floating-point kinds. Numbers are
// converted with truncation toward zero for integer destinations.
type numCap struct{ unsupported }

// Bounds of the int64 and uint64 ranges as float64 values.
const (
	minInt64  = -(1 << 63)
	maxInt64  = 1 << 63 // exclusive
	maxUint64 = 1 << 64 // exclusive
)

func (numCap) Accept(dst reflect.Value, s jcomb.Scalar) error {
	if s.Kind != jcomb.Number {
		return ErrUnsupported
	}
	switch dst.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		z, err := numberToInt(s)
		if err != nil || dst.OverflowInt(z) {
			return ErrRange
		}
		dst.SetInt(z)

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		z, err := numberToUint(s)
		if err != nil || dst.OverflowUint(z) {
			return ErrRange
		}
		dst.SetUint(z)

	case reflect.Float32, reflect.Float64:
		if math.IsInf(s.Num, 0) || dst.OverflowFloat(s.Num) {
			return ErrRange
		}
		dst.SetFloat(s.Num)

	default:
		return ErrUnsupported
	}
	return nil
}

// numberToInt converts s to an int64, exactly if s carries integer text.
func numberToInt(s jcomb.Scalar) (int64, error) {
	if s.Text != "" {
		if z, err := strconv.ParseInt(s.Text, 10, 64); err == nil {
			return z, nil
		}
	}
	t := math.Trunc(s.Num)
	if math.IsNaN(t) || t < minInt64 || t >= maxInt64 {
		return 0, ErrRange
	}
	return int64(t), nil
}

// numberToUint converts s to a uint64, exactly if s carries integer text.
func numberToUint(s jcomb.Scalar) (uint64, error) {
	if s.Text != "" {
		if z, err := strconv.ParseUint(s.Text, 10, 64); err == nil {
			return z, nil
		}
	}
	t := math.Trunc(s.Num)
	if math.IsNaN(t) || t < 0 || t >= maxUint64 {
		return 0, ErrRange
	}
	return uint64(t), nil
}

func (numCap) Walk(src reflect.Value, h jcomb.Handler) error {
	switch src.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		z := src.Int()
		return h.Value(jcomb.Scalar{Kind: jcomb.Number, Num: float64(z), Text: strconv.FormatInt(z, 10)})
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		z := src.Uint()
		return h.Value(jcomb.Scalar{Kind: jcomb.Number, Num: float64(z), Text: strconv.FormatUint(z, 10)})
	case reflect.Float32:
		f := src.Float()
		return h.Value(jcomb.Scalar{Kind: jcomb.Number, Num: f, Text: jcomb.FormatFloat(f, 32)})
	case reflect.Float64:
		return h.Value(jcomb.NumberValue(src.Float()))
	}
	return ErrUnsupported
}

// textCap binds string kinds.
type textCap struct{ unsupported }

func (textCap) Accept(dst reflect.Value, s jcomb.Scalar) error {
	if s.Kind != jcomb.String {
		return ErrUnsupported
	}
	dst.SetString(s.Text)
	return nil
}

func (textCap) Walk(src reflect.Value, h jcomb.Handler) error {
	return h.Value(jcomb.StringValue(src.String()))
}

var valueType = reflect.TypeFor[value.Value]()

// valueCap binds value.Value, which supports every operation. Storing into a
// value replaces its contents, whatever they were.
type valueCap struct{}

func asValue(dst reflect.Value) *value.Value { return dst.Addr().Interface().(*value.Value) }

func (valueCap) Accept(dst reflect.Value, s jcomb.Scalar) error {
	v := asValue(dst)
	switch s.Kind {
	case jcomb.Null:
		v.SetNull()
	case jcomb.Bool:
		*v.Boolean() = s.Bool
	case jcomb.Number:
		if math.IsInf(s.Num, 0) {
			return ErrRange
		}
		*v.Number() = s.Num
	case jcomb.String:
		*v.Text() = s.Text
	default:
		return ErrUnsupported
	}
	return nil
}

func (valueCap) Begin(dst reflect.Value, k jcomb.Kind) error {
	v := asValue(dst)
	v.SetNull()
	switch k {
	case jcomb.Array:
		v.Array()
	case jcomb.Object:
		v.Object()
	default:
		return ErrUnsupported
	}
	return nil
}

func (valueCap) End(reflect.Value) error { return nil }

func (c valueCap) Child(dst reflect.Value, name string) (Slot, error) {
	obj := asValue(dst).Object()
	tmp := reflect.New(valueType).Elem()
	if old, ok := obj[name]; ok {
		tmp.Set(reflect.ValueOf(old))
	}
	return Slot{v: tmp, cap: c, done: func() {
		obj[name] = tmp.Interface().(value.Value)
	}}, nil
}

func (c valueCap) Append(dst reflect.Value) (Slot, error) {
	arr := asValue(dst).Array()
	*arr = append(*arr, value.Value{})
	return Slot{v: reflect.ValueOf(&(*arr)[len(*arr)-1]).Elem(), cap: c}, nil
}

func (valueCap) Walk(src reflect.Value, h jcomb.Handler) error {
	return src.Interface().(value.Value).Emit(h)
}

// sliceCap binds slice types. The element capability is resolved on use, so
// that recursive types are supported.
type sliceCap struct {
	unsupported
	r    *Registry
	elem reflect.Type
}

func (c sliceCap) Begin(dst reflect.Value, k jcomb.Kind) error {
	if k != jcomb.Array {
		return ErrUnsupported
	}
	dst.Set(reflect.MakeSlice(dst.Type(), 0, 0))
	return nil
}

func (sliceCap) End(reflect.Value) error { return nil }

func (c sliceCap) Append(dst reflect.Value) (Slot, error) {
	dst.Set(reflect.Append(dst, reflect.Zero(c.elem)))
	return Slot{v: dst.Index(dst.Len() - 1), cap: c.r.Lookup(c.elem)}, nil
}

// Walk writes the elements of src. A nil slice is written as an empty array.
func (c sliceCap) Walk(src reflect.Value, h jcomb.Handler) error {
	if err := h.BeginArray(); err != nil {
		return err
	}
	ec := c.r.Lookup(c.elem)
	for i := range src.Len() {
		if err := walkValue(ec, src.Index(i), h); err != nil {
			return underPath(err, indexLabel(i))
		}
	}
	return h.EndArray()
}

// mapCap binds map types with string-kind keys. Map elements are not
// addressable, so each child is constructed in a temporary that is stored
// into the map when it is complete.
type mapCap struct {
	unsupported
	r         *Registry
	key, elem reflect.Type
}

func (c mapCap) Begin(dst reflect.Value, k jcomb.Kind) error {
	if k != jcomb.Object {
		return ErrUnsupported
	}
	dst.Set(reflect.MakeMap(dst.Type()))
	return nil
}

func (mapCap) End(reflect.Value) error { return nil }

func (c mapCap) Child(dst reflect.Value, name string) (Slot, error) {
	key := reflect.ValueOf(name).Convert(c.key)
	tmp := reflect.New(c.elem).Elem()
	if old := dst.MapIndex(key); old.IsValid() {
		tmp.Set(old)
	}
	return Slot{v: tmp, cap: c.r.Lookup(c.elem), done: func() {
		dst.SetMapIndex(key, tmp)
	}}, nil
}

// Walk writes the members of src in sorted order by key. A nil map is
// written as an empty object.
func (c mapCap) Walk(src reflect.Value, h jcomb.Handler) error {
	if err := h.BeginObject(); err != nil {
		return err
	}
	keys := src.MapKeys()
	slices.SortFunc(keys, func(a, b reflect.Value) int { return cmp.Compare(a.String(), b.String()) })
	ec := c.r.Lookup(c.elem)
	for _, k := range keys {
		name := k.String()
		if err := h.Member(name); err != nil {
			return err
		}
		if err := walkValue(ec, src.MapIndex(k), h); err != nil {
			return underPath(err, memberLabel(name))
		}
	}
	return h.EndObject()
}

// structCap binds struct types according to a schema. Members not named by
// the schema are rejected with ErrUnknownMember.
type structCap struct {
	unsupported
	r      *Registry
	schema *Schema
}

func (c structCap) Begin(dst reflect.Value, k jcomb.Kind) error {
	if k != jcomb.Object {
		return ErrUnsupported
	}
	return nil
}

func (structCap) End(reflect.Value) error { return nil }

func (c structCap) Child(dst reflect.Value, name string) (Slot, error) {
	f, ok := c.schema.Lookup(name)
	if !ok {
		return Slot{}, ErrUnknownMember
	}
	return Slot{v: dst.FieldByIndex(f.Index), cap: c.r.Lookup(f.Type)}, nil
}

// Walk writes the fields of src in schema order. Fields marked OmitEmpty are
// skipped when they are empty.
func (c structCap) Walk(src reflect.Value, h jcomb.Handler) error {
	if err := h.BeginObject(); err != nil {
		return err
	}
	for _, f := range c.schema.Fields {
		fv := src.FieldByIndex(f.Index)
		if f.OmitEmpty && isEmpty(fv) {
			continue
		}
		if err := h.Member(f.Member); err != nil {
			return err
		}
		if err := walkValue(c.r.Lookup(f.Type), fv, h); err != nil {
			return underPath(err, memberLabel(f.Member))
		}
	}
	return h.EndObject()
}

// isEmpty reports whether v is zero, or an empty slice or map.
func isEmpty(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Slice, reflect.Map:
		return v.Len() == 0
	}
	return v.IsZero()
}

// walkValue calls c.Walk for v, and reports an *Error if the capability does
// not support walking.
func walkValue(c Capability, v reflect.Value, h jcomb.Handler) error {
	err := c.Walk(v, h)
	if err == ErrUnsupported || err == ErrRange {
		return &Error{Path: "$", Type: v.Type(), Op: "walk", Err: err}
	}
	return err
}
