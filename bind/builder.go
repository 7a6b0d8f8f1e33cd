// Copyright (C) 2025 Michael J. Fromberger. All Rights Reserved.

package bind

import (
	"errors"
	"reflect"
	"strings"

	"github.com/creachadair/jcomb"
)

// A Builder is a jcomb.Handler that constructs a Go value from the events it
// receives, using the capabilities of a Registry.
//
// The Builder keeps a stack of frames, one for each value under
// construction. The bottom frame is the destination passed to NewBuilder.
// Array elements are not created until their first event arrives, so that
// an empty array does not gain a spurious element.
type Builder struct {
	r   *Registry
	stk []frame
}

type frame struct {
	slot  Slot   // the zero Slot marks an unresolved array element
	label string // the path segment for this frame
	kind  jcomb.Kind
	n     int // for arrays, the number of elements resolved so far
}

// NewBuilder constructs a Builder that stores into *dst using the capabilities
// of r. It reports an error if dst is not a non-nil pointer.
func (r *Registry) NewBuilder(dst any) (*Builder, error) {
	v := reflect.ValueOf(dst)
	if v.Kind() != reflect.Pointer || v.IsNil() {
		return nil, errors.New("destination must be a non-nil pointer")
	}
	root := v.Elem()
	return &Builder{
		r:   r,
		stk: []frame{{slot: Slot{v: root, cap: r.Lookup(root.Type())}, label: "$"}},
	}, nil
}

// NewBuilder constructs a Builder that stores into *dst using the Default
// registry.
func NewBuilder(dst any) (*Builder, error) { return Default.NewBuilder(dst) }

// Done reports an error if b received an incomplete sequence of events.
func (b *Builder) Done() error {
	if len(b.stk) > 1 || (len(b.stk) == 1 && b.stk[0].kind != jcomb.Null) {
		return errors.New("incomplete value")
	}
	return nil
}

// path renders the location of the top frame.
func (b *Builder) path() string {
	var sb strings.Builder
	for _, f := range b.stk {
		sb.WriteString(f.label)
	}
	return sb.String()
}

func (b *Builder) fail(op string, err error) error {
	var t reflect.Type
	if top := b.top(); top != nil && top.slot.v.IsValid() {
		t = top.slot.v.Type()
	}
	return &Error{Path: b.path(), Type: t, Op: op, Err: err}
}

func (b *Builder) top() *frame {
	if len(b.stk) == 0 {
		return nil
	}
	return &b.stk[len(b.stk)-1]
}

// pre prepares the top frame to receive a value, resolving an array element
// placeholder through the enclosing array.
func (b *Builder) pre() error {
	top := b.top()
	if top == nil {
		return errors.New("value after end of input")
	}
	if !top.slot.IsZero() {
		return nil
	}
	parent := &b.stk[len(b.stk)-2]
	top.label = indexLabel(parent.n)
	parent.n++
	slot, err := parent.slot.cap.Append(parent.slot.v)
	if err != nil {
		b.stk = b.stk[:len(b.stk)-1] // report the error at the array
		return b.fail("append", err)
	}
	top.slot = slot
	return nil
}

// post completes the top frame and pops it. If the enclosing frame is an
// array, a placeholder for its next element is pushed.
func (b *Builder) post() {
	top := b.stk[len(b.stk)-1]
	b.stk = b.stk[:len(b.stk)-1]
	if top.slot.done != nil {
		top.slot.done()
	}
	if p := b.top(); p != nil && p.kind == jcomb.Array {
		b.stk = append(b.stk, frame{})
	}
}

// Value implements part of the jcomb.Handler interface.
func (b *Builder) Value(s jcomb.Scalar) error {
	if err := b.pre(); err != nil {
		return err
	}
	top := b.top()
	if err := top.slot.cap.Accept(top.slot.v, s); err != nil {
		return b.fail("accept "+s.Kind.String(), err)
	}
	b.post()
	return nil
}

// BeginArray implements part of the jcomb.Handler interface.
func (b *Builder) BeginArray() error { return b.begin(jcomb.Array) }

// BeginObject implements part of the jcomb.Handler interface.
func (b *Builder) BeginObject() error { return b.begin(jcomb.Object) }

func (b *Builder) begin(k jcomb.Kind) error {
	if err := b.pre(); err != nil {
		return err
	}
	top := b.top()
	if err := top.slot.cap.Begin(top.slot.v, k); err != nil {
		return b.fail("begin "+k.String(), err)
	}
	top.kind = k
	if k == jcomb.Array {
		b.stk = append(b.stk, frame{})
	}
	return nil
}

// Member implements part of the jcomb.Handler interface.
func (b *Builder) Member(name string) error {
	top := b.top()
	if top == nil || top.kind != jcomb.Object {
		return errors.New("member outside object")
	}
	slot, err := top.slot.cap.Child(top.slot.v, name)
	if err != nil {
		b.stk = append(b.stk, frame{label: memberLabel(name)})
		defer func() { b.stk = b.stk[:len(b.stk)-1] }()
		return b.failAt(top.slot.v.Type(), "member", err)
	}
	b.stk = append(b.stk, frame{slot: slot, label: memberLabel(name)})
	return nil
}

// failAt is like fail, but reports the given destination type.
func (b *Builder) failAt(t reflect.Type, op string, err error) error {
	return &Error{Path: b.path(), Type: t, Op: op, Err: err}
}

// EndArray implements part of the jcomb.Handler interface.
func (b *Builder) EndArray() error {
	if top := b.top(); top == nil || !top.slot.IsZero() {
		return errors.New("unbalanced end of array")
	}
	b.stk = b.stk[:len(b.stk)-1] // the unresolved placeholder
	return b.end(jcomb.Array)
}

// EndObject implements part of the jcomb.Handler interface.
func (b *Builder) EndObject() error { return b.end(jcomb.Object) }

func (b *Builder) end(k jcomb.Kind) error {
	top := b.top()
	if top == nil || top.kind != k {
		return errors.New("unbalanced end of " + k.String())
	}
	if err := top.slot.cap.End(top.slot.v); err != nil {
		return b.fail("end "+k.String(), err)
	}
	b.post()
	return nil
}
