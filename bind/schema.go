// Copyright (C) 2025 Michael J. Fromberger. All Rights Reserved.

package bind

import (
	"fmt"
	"reflect"
	"strings"
)

// A Field describes one member of a struct schema.
type Field struct {
	Member    string       // the JSON member name
	Name      string       // the Go field name
	Index     []int        // the index sequence for reflect.Value.FieldByIndex
	Type      reflect.Type // the type of the field
	OmitEmpty bool         // omit the member when writing an empty value
}

// A Schema describes the members of a struct type, in the order they are
// written.
type Schema struct {
	Fields []Field
	byName map[string]int
}

// NewSchema constructs a schema with the given fields. It reports an error
// if two fields share a member name.
func NewSchema(fields ...Field) (*Schema, error) {
	s := &Schema{Fields: fields, byName: make(map[string]int, len(fields))}
	for i, f := range fields {
		if _, ok := s.byName[f.Member]; ok {
			return nil, fmt.Errorf("duplicate member %q", f.Member)
		}
		s.byName[f.Member] = i
	}
	return s, nil
}

// Lookup returns the field with the given member name, if there is one.
func (s *Schema) Lookup(member string) (Field, bool) {
	i, ok := s.byName[member]
	if !ok {
		return Field{}, false
	}
	return s.Fields[i], true
}

// A SchemaProvider reports the schema for a struct type. If the provider has
// no schema for t, it reports false and the type is not bindable. A provider
// is called while its registry is locked, and must not use the registry.
type SchemaProvider interface {
	Schema(t reflect.Type) (*Schema, bool)
}

// TagSchema is a SchemaProvider that derives a schema from the exported
// fields of a struct. Member names are taken from "json" struct tags when
// present, or from the field name otherwise:
//
//	Name string `json:"name"`            // member "name"
//	Size int    `json:"size,omitempty"`  // member "size", omitted if empty
//	Skip bool   `json:"-"`               // not a member
//
// The exported fields of an embedded struct without a name tag are promoted
// into the embedding struct, unless the embedding struct already has a field
// with the same member name.
type TagSchema struct{}

// Schema implements the SchemaProvider interface.
func (TagSchema) Schema(t reflect.Type) (*Schema, bool) {
	if t.Kind() != reflect.Struct {
		return nil, false
	}
	var fields []Field
	seen := make(map[string]bool)
	addTagFields(t, nil, seen, &fields)
	s, err := NewSchema(fields...)
	if err != nil {
		return nil, false // not possible, seen filters duplicates
	}
	return s, true
}

// addTagFields adds the fields of t to *out in breadth-first order, so that
// shallower fields shadow promoted ones with the same member name.
func addTagFields(t reflect.Type, prefix []int, seen map[string]bool, out *[]Field) {
	var embedded []reflect.StructField
	for i := range t.NumField() {
		ft := t.Field(i)
		tag, hasTag := ft.Tag.Lookup("json")
		if tag == "-" {
			continue
		}
		name, opts, _ := strings.Cut(tag, ",")
		if ft.Anonymous && ft.Type.Kind() == reflect.Struct && name == "" {
			embedded = append(embedded, ft)
			continue
		}
		if !ft.IsExported() {
			continue
		}
		if !hasTag || name == "" {
			name = ft.Name
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		*out = append(*out, Field{
			Member:    name,
			Name:      ft.Name,
			Index:     append(append([]int(nil), prefix...), i),
			Type:      ft.Type,
			OmitEmpty: strings.Contains(","+opts+",", ",omitempty,"),
		})
	}
	for _, ft := range embedded {
		addTagFields(ft.Type, append(append([]int(nil), prefix...), ft.Index...), seen, out)
	}
}

// A FieldSpec declares that the struct field with the given Go name is bound
// to the given JSON member name. It is used with Registry.Declare.
type FieldSpec struct {
	Member string
	Field  string
}

// declaredSchema constructs a schema for struct type t from specs.
func declaredSchema(t reflect.Type, specs []FieldSpec) (*Schema, error) {
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("type %v is not a struct", t)
	}
	fields := make([]Field, len(specs))
	for i, spec := range specs {
		ft, ok := t.FieldByName(spec.Field)
		if !ok {
			return nil, fmt.Errorf("type %v has no field %q", t, spec.Field)
		} else if !ft.IsExported() {
			return nil, fmt.Errorf("field %q of %v is not exported", spec.Field, t)
		}
		fields[i] = Field{Member: spec.Member, Name: ft.Name, Index: ft.Index, Type: ft.Type}
	}
	return NewSchema(fields...)
}
