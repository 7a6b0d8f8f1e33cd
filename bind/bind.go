// Copyright (C) 2025 Michael J. Fromberger. All Rights Reserved.

// Package bind binds JSON text to Go values, and renders Go values as JSON
// text, according to the shape of their types.
//
// Each Go type resolves to a Capability that describes how values of that
// type are built from parser events and walked to produce events. The
// built-in capabilities support bool, integer and floating-point kinds,
// string kinds, value.Value, slices, maps with string-kind keys, and structs
// that have a schema. A type that satisfies more than one condition resolves
// in the order given by the Shape constants.
//
// By default the schema of a struct comes from its exported fields and their
// "json" tags (see TagSchema). Members not named by the schema are rejected
// with ErrUnknownMember.
//
// Parsing into a destination is strict: a value whose kind does not match
// its destination fails with ErrUnsupported, and a number out of range for
// its destination fails with ErrRange. Failures are reported as *Error
// values naming the path of the offending value, for example $.items[2].
package bind

import (
	"bytes"
	"io"
	"reflect"

	"github.com/creachadair/jcomb"
	"github.com/creachadair/jcomb/peg"
)

// Parse parses the JSON text in s into *dst using the Default registry.
func Parse(dst any, s string) error { return ParseWith(jcomb.NewParser(peg.NewString(s)), dst) }

// ParseBytes parses the JSON text in data into *dst using the Default
// registry.
func ParseBytes(dst any, data []byte) error {
	return ParseWith(jcomb.NewParser(peg.NewBuffer(data)), dst)
}

// ParseReader parses the JSON text read from r into *dst using the Default
// registry.
func ParseReader(dst any, r io.Reader) error {
	src, err := jcomb.ReaderSource(r)
	if err != nil {
		return err
	}
	return ParseWith(jcomb.NewParser(src), dst)
}

// ParseWith parses the input of p into *dst using the Default registry.
func ParseWith(p *jcomb.Parser, dst any) error { return Default.ParseWith(p, dst) }

// ParseWith parses the input of p into *dst using the capabilities of r.
//
// Unless p is in incremental mode, *dst is not modified if the input is not
// valid JSON. A binding error may leave *dst partially updated.
func (r *Registry) ParseWith(p *jcomb.Parser, dst any) error {
	b, err := r.NewBuilder(dst)
	if err != nil {
		return err
	}
	if err := p.Parse(b); err != nil {
		return err
	}
	return b.Done()
}

// Walk delivers the events describing src to h, using the Default registry.
func Walk(src any, h jcomb.Handler) error { return Default.Walk(src, h) }

// Walk delivers the events describing src to h, using the capabilities of r.
// If src is a non-nil pointer, Walk describes the value it points to.
func (r *Registry) Walk(src any, h jcomb.Handler) error {
	v := reflect.ValueOf(src)
	if !v.IsValid() {
		return h.Value(jcomb.NullValue())
	}
	if v.Kind() == reflect.Pointer && !v.IsNil() {
		v = v.Elem()
	}
	return walkValue(r.Lookup(v.Type()), v, h)
}

// Write writes the JSON encoding of src to w, indented if indent is true.
func Write(w io.Writer, src any, indent bool) error {
	jw := jcomb.NewWriter(w)
	jw.Indent(indent)
	if err := Walk(src, jw); err != nil {
		return err
	}
	return jw.Flush()
}

// Marshal returns the compact JSON encoding of src.
func Marshal(src any) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, src, false); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// MarshalIndent returns the indented JSON encoding of src.
func MarshalIndent(src any) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, src, true); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Convert stores the value of src into *dst, as if src were encoded as JSON
// and parsed into dst, but without constructing the text.
func Convert(dst, src any) error {
	b, err := NewBuilder(dst)
	if err != nil {
		return err
	}
	if err := Walk(src, b); err != nil {
		return err
	}
	return b.Done()
}
