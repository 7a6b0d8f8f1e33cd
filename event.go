// Copyright (C) 2025 Michael J. Fromberger. All Rights Reserved.

package jcomb

import (
	"fmt"
	"strconv"
)

// Kind is the type of a JSON value.
type Kind byte

// Constants defining the valid Kind values.
const (
	Null   Kind = iota // the constant null
	Bool               // true or false
	Number             // a number
	String             // a quoted string
	Array              // [ ... ]
	Object             // { ... }
)

var kindStr = [...]string{
	Null:   "null",
	Bool:   "bool",
	Number: "number",
	String: "string",
	Array:  "array",
	Object: "object",
}

func (k Kind) String() string {
	if int(k) >= len(kindStr) {
		return "invalid kind " + strconv.Itoa(int(k))
	}
	return kindStr[k]
}

// A Scalar is a JSON value that is not a container: null, a Boolean, a
// number, or a string. Only the field selected by Kind is meaningful, except
// that a Number may carry its source text in Text.
type Scalar struct {
	Kind Kind
	Bool bool    // for Bool
	Num  float64 // for Number
	Text string  // for String, the decoded text; for Number, the literal text if known
}

// NullValue returns a Scalar for the null constant.
func NullValue() Scalar { return Scalar{Kind: Null} }

// BoolValue returns a Scalar for the Boolean b.
func BoolValue(b bool) Scalar { return Scalar{Kind: Bool, Bool: b} }

// NumberValue returns a Scalar for the number f.
func NumberValue(f float64) Scalar { return Scalar{Kind: Number, Num: f} }

// StringValue returns a Scalar for the string s.
func StringValue(s string) Scalar { return Scalar{Kind: String, Text: s} }

func (s Scalar) String() string {
	switch s.Kind {
	case Null:
		return "null"
	case Bool:
		return strconv.FormatBool(s.Bool)
	case Number:
		if s.Text != "" {
			return s.Text
		}
		return FormatFloat(s.Num, 64)
	case String:
		return Quote(s.Text)
	default:
		return fmt.Sprintf("invalid scalar %v", s.Kind)
	}
}

// A Handler handles events from parsing an input, or from walking a value to
// be written. If a method reports an error, processing stops and that error
// is returned to the caller. Begin and End calls are correctly balanced, and
// every Member call is followed by exactly one value: either a call to Value
// or a balanced object or array.
type Handler interface {
	// Begin a new object.
	BeginObject() error

	// Begin a new member of the current object, with the given name. The
	// name has already been unescaped.
	Member(name string) error

	// End the most-recently-opened object.
	EndObject() error

	// Begin a new array.
	BeginArray() error

	// End the most-recently-opened array.
	EndArray() error

	// Report a scalar value.
	Value(s Scalar) error
}

// Discard is a Handler that accepts and ignores all events.
var Discard Handler = discard{}

type discard struct{}

func (discard) BeginObject() error   { return nil }
func (discard) Member(string) error  { return nil }
func (discard) EndObject() error     { return nil }
func (discard) BeginArray() error    { return nil }
func (discard) EndArray() error      { return nil }
func (discard) Value(s Scalar) error { return nil }
