// Copyright (C) 2025 Michael J. Fromberger. All Rights Reserved.

package bind

import (
	"fmt"
	"reflect"
	"sync"
)

// Shape identifies which built-in capability a type resolves to.
type Shape int

// Constants defining the valid Shape values, in resolution order. A type
// resolves to the first shape whose condition it satisfies.
const (
	ShapeBool        Shape = iota // bool kinds
	ShapeNumber                   // integer, unsigned, and floating-point kinds
	ShapeText                     // string kinds
	ShapeValue                    // value.Value
	ShapeSequence                 // slices
	ShapeMap                      // maps with string-kind keys
	ShapeStruct                   // structs with a schema
	ShapeUnsupported              // everything else
)

var shapeStr = [...]string{
	ShapeBool:        "bool",
	ShapeNumber:      "number",
	ShapeText:        "text",
	ShapeValue:       "value",
	ShapeSequence:    "sequence",
	ShapeMap:         "map",
	ShapeStruct:      "struct",
	ShapeUnsupported: "unsupported",
}

func (s Shape) String() string {
	if s < 0 || int(s) >= len(shapeStr) {
		return fmt.Sprintf("Shape(%d)", int(s))
	}
	return shapeStr[s]
}

// resolution is the table of conditions for each shape, in order.
var resolution = []struct {
	shape Shape
	match func(t reflect.Type, hasSchema func() bool) bool
}{
	{ShapeBool, func(t reflect.Type, _ func() bool) bool { return t.Kind() == reflect.Bool }},
	{ShapeNumber, func(t reflect.Type, _ func() bool) bool { return isNumberKind(t.Kind()) }},
	{ShapeText, func(t reflect.Type, _ func() bool) bool { return t.Kind() == reflect.String }},
	{ShapeValue, func(t reflect.Type, _ func() bool) bool { return t == valueType }},
	{ShapeSequence, func(t reflect.Type, _ func() bool) bool { return t.Kind() == reflect.Slice }},
	{ShapeMap, func(t reflect.Type, _ func() bool) bool {
		return t.Kind() == reflect.Map && t.Key().Kind() == reflect.String
	}},
	{ShapeStruct, func(t reflect.Type, hasSchema func() bool) bool {
		return t.Kind() == reflect.Struct && hasSchema()
	}},
	{ShapeUnsupported, func(reflect.Type, func() bool) bool { return true }},
}

func isNumberKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// A Registry maps Go types to their capabilities. The capability for a type
// is built on first use and does not change thereafter. A Registry is safe
// for concurrent use by multiple goroutines.
//
// Configuration (Declare and SetSchemaProvider) must be done before the
// affected types are first used.
type Registry struct {
	mu       sync.Mutex // held while configuring or building a new entry
	provider SchemaProvider
	declared map[reflect.Type]*Schema

	caps sync.Map // reflect.Type → *entry
}

type entry struct {
	shape Shape
	cap   Capability
}

// Default is the registry used by the package-level functions.
var Default = NewRegistry()

// NewRegistry constructs a new empty Registry using TagSchema to describe
// struct types.
func NewRegistry() *Registry {
	return &Registry{provider: TagSchema{}, declared: make(map[reflect.Type]*Schema)}
}

// SetSchemaProvider sets the provider r uses to find schemas for struct types
// that have no declared schema. It reports an error if any type has already
// been resolved by r.
func (r *Registry) SetSchemaProvider(p SchemaProvider) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.used() {
		return fmt.Errorf("set schema provider: %w", ErrFrozen)
	}
	r.provider = p
	return nil
}

// Declare declares the schema for struct type t, binding each member name to
// the named field. A declared schema takes precedence over the schema
// provider. It reports an error if t has already been resolved by r, or if
// the fields are not valid for t.
func (r *Registry) Declare(t reflect.Type, fields ...FieldSpec) error {
	s, err := declaredSchema(t, fields)
	if err != nil {
		return fmt.Errorf("declare %v: %w", t, err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.caps.Load(t); ok {
		return fmt.Errorf("declare %v: %w", t, ErrFrozen)
	}
	r.declared[t] = s
	return nil
}

func (r *Registry) used() bool {
	var found bool
	r.caps.Range(func(_, _ any) bool {
		found = true
		return false
	})
	return found
}

// Lookup returns the capability for t, building it if necessary.
func (r *Registry) Lookup(t reflect.Type) Capability { return r.lookup(t).cap }

// Shape reports the shape that t resolves to.
func (r *Registry) Shape(t reflect.Type) Shape { return r.lookup(t).shape }

// Schema reports the schema used for struct type t, if it has one. Like
// Lookup, it resolves t, so t can no longer be declared afterward.
func (r *Registry) Schema(t reflect.Type) (*Schema, bool) {
	if sc, ok := r.lookup(t).cap.(structCap); ok {
		return sc.schema, true
	}
	return nil, false
}

func (r *Registry) lookup(t reflect.Type) *entry {
	if e, ok := r.caps.Load(t); ok {
		return e.(*entry)
	}

	// Build under the lock, so that a concurrent Declare either precedes the
	// build or reports ErrFrozen.
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.caps.Load(t); ok {
		return e.(*entry)
	}
	e := r.build(t)
	r.caps.Store(t, e)
	return e
}

// build constructs a capability for t. Element capabilities are not built
// here, so that recursive types terminate. The caller must hold r.mu.
func (r *Registry) build(t reflect.Type) *entry {
	var schema *Schema
	hasSchema := func() bool {
		schema = r.schemaFor(t)
		return schema != nil
	}
	var shape Shape
	for _, rule := range resolution {
		if rule.match(t, hasSchema) {
			shape = rule.shape
			break
		}
	}

	var c Capability
	switch shape {
	case ShapeBool:
		c = boolCap{}
	case ShapeNumber:
		c = numCap{}
	case ShapeText:
		c = textCap{}
	case ShapeValue:
		c = valueCap{}
	case ShapeSequence:
		c = sliceCap{r: r, elem: t.Elem()}
	case ShapeMap:
		c = mapCap{r: r, key: t.Key(), elem: t.Elem()}
	case ShapeStruct:
		c = structCap{r: r, schema: schema}
	default:
		c = unsupported{}
	}
	return &entry{shape: shape, cap: c}
}

// schemaFor returns the schema for t, or nil. The caller must hold r.mu.
func (r *Registry) schemaFor(t reflect.Type) *Schema {
	if s, ok := r.declared[t]; ok {
		return s
	}
	if s, ok := r.provider.Schema(t); ok {
		return s
	}
	return nil
}
