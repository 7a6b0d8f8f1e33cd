// Copyright (C) 2025 Michael J. Fromberger. All Rights Reserved.

package jcomb

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/creachadair/jcomb/internal/escape"

	"go4.org/mem"
)

// A Writer is a Handler that renders the events it receives as JSON text.
//
// In compact form, the output is written on a single line, with ", "
// between elements and " : " after member names:
//
//	{"a" : 1, "b" : [1, 2]}
//
// In indented form, each element of a non-empty array or object is written
// on its own line, indented two spaces per level of nesting. Empty arrays and
// objects are written as [] and {} in both forms.
//
// A number is written using its Text field if that is a valid JSON number,
// so that numbers parsed from input are written as they were spelled.
// Otherwise the number is formatted as by FormatFloat.
//
// Output is buffered; call Flush when done to write it to the underlying
// writer.
type Writer struct {
	w       *bufio.Writer
	indent  bool
	levels  []level
	member  bool // a member name was just written
	wrote   bool // a top-level value has been written
	scratch []byte
	err     error
}

type level struct {
	kind Kind // Array or Object
	n    int  // elements written so far
}

// NewWriter constructs a Writer that writes compact JSON text to w.
func NewWriter(w io.Writer) *Writer { return &Writer{w: bufio.NewWriter(w)} }

// Indent configures w to write indented (true) or compact (false) text.
func (w *Writer) Indent(ok bool) { w.indent = ok }

// Flush writes any buffered output to the underlying writer, and reports an
// error if the output was not well-formed or could not be written.
func (w *Writer) Flush() error {
	if w.err != nil {
		return w.err
	}
	if len(w.levels) != 0 {
		return fmt.Errorf("unclosed %v at end of output", w.levels[len(w.levels)-1].kind)
	}
	return w.w.Flush()
}

// BeginObject implements part of the Handler interface.
func (w *Writer) BeginObject() error { return w.begin(Object, '{') }

// EndObject implements part of the Handler interface.
func (w *Writer) EndObject() error { return w.end(Object, '}') }

// BeginArray implements part of the Handler interface.
func (w *Writer) BeginArray() error { return w.begin(Array, '[') }

// EndArray implements part of the Handler interface.
func (w *Writer) EndArray() error { return w.end(Array, ']') }

// Member implements part of the Handler interface.
func (w *Writer) Member(name string) error {
	if err := w.pre(true); err != nil {
		return err
	}
	w.scratch = escape.AppendQuote(w.scratch[:0], mem.S(name))
	w.w.Write(w.scratch)
	w.w.WriteString(" : ")
	w.member = true
	return nil
}

// Value implements part of the Handler interface.
func (w *Writer) Value(s Scalar) error {
	if err := w.pre(false); err != nil {
		return err
	}
	switch s.Kind {
	case Null:
		w.w.WriteString("null")
	case Bool:
		w.w.WriteString(strconv.FormatBool(s.Bool))
	case Number:
		if isNumber(s.Text) {
			w.w.WriteString(s.Text)
		} else if math.IsInf(s.Num, 0) || math.IsNaN(s.Num) {
			return w.fail(fmt.Errorf("invalid number %v", s.Num))
		} else {
			w.w.WriteString(FormatFloat(s.Num, 64))
		}
	case String:
		w.scratch = escape.AppendQuote(w.scratch[:0], mem.S(s.Text))
		w.w.Write(w.scratch)
	default:
		return w.fail(fmt.Errorf("invalid scalar kind %v", s.Kind))
	}
	return nil
}

func (w *Writer) begin(k Kind, open byte) error {
	if err := w.pre(false); err != nil {
		return err
	}
	w.w.WriteByte(open)
	w.levels = append(w.levels, level{kind: k})
	return nil
}

func (w *Writer) end(k Kind, close byte) error {
	if w.err != nil {
		return w.err
	}
	if len(w.levels) == 0 || w.levels[len(w.levels)-1].kind != k {
		return w.fail(fmt.Errorf("unbalanced end of %v", k))
	} else if w.member {
		return w.fail(errors.New("missing value after member name"))
	}
	top := w.levels[len(w.levels)-1]
	w.levels = w.levels[:len(w.levels)-1]
	if w.indent && top.n != 0 {
		w.newline()
	}
	return w.fail(w.w.WriteByte(close))
}

// pre writes the separator that precedes a value or member name, and checks
// that the item is permitted in the current context.
func (w *Writer) pre(isMember bool) error {
	if w.err != nil {
		return w.err
	}
	if w.member {
		if isMember {
			return w.fail(errors.New("missing value after member name"))
		}
		w.member = false
		return nil
	}
	if len(w.levels) == 0 {
		if isMember {
			return w.fail(errors.New("member name outside object"))
		}
		if w.wrote {
			w.w.WriteByte('\n')
		}
		w.wrote = true
		return nil
	}
	top := &w.levels[len(w.levels)-1]
	if top.kind == Object && !isMember {
		return w.fail(errors.New("object value without member name"))
	} else if top.kind == Array && isMember {
		return w.fail(errors.New("member name inside array"))
	}
	if top.n != 0 {
		w.w.WriteByte(',')
		if !w.indent {
			w.w.WriteByte(' ')
		}
	}
	top.n++
	if w.indent {
		w.newline()
	}
	return nil
}

func (w *Writer) newline() {
	w.w.WriteByte('\n')
	w.w.WriteString(strings.Repeat("  ", len(w.levels)))
}

func (w *Writer) fail(err error) error {
	if err != nil && w.err == nil {
		w.err = err
	}
	return err
}

// isNumber reports whether s is a JSON number:
//
//	-?(0|[1-9][0-9]*)(\.[0-9]+)?([eE][+-]?[0-9]+)?
func isNumber(s string) bool {
	i := 0
	digits := func() int {
		start := i
		for i < len(s) && '0' <= s[i] && s[i] <= '9' {
			i++
		}
		return i - start
	}
	if i < len(s) && s[i] == '-' {
		i++
	}
	if n := digits(); n == 0 || (n > 1 && s[i-n] == '0') {
		return false
	}
	if i < len(s) && s[i] == '.' {
		i++
		if digits() == 0 {
			return false
		}
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		i++
		if i < len(s) && (s[i] == '+' || s[i] == '-') {
			i++
		}
		if digits() == 0 {
			return false
		}
	}
	return i == len(s)
}
