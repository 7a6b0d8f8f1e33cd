// Copyright (C) 2025 Michael J. Fromberger. All Rights Reserved.

package jcomb

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/creachadair/jcomb/peg"
)

// DefaultMaxDepth is the default limit on the nesting depth of arrays and
// objects accepted by a Parser.
const DefaultMaxDepth = 10000

// A Parser matches JSON text from a peg.Source and delivers the structure of
// the input to a Handler.
type Parser struct {
	src         peg.Source
	comments    bool
	incremental bool
	maxDepth    int
}

// NewParser constructs a new Parser that reads input from src. By default
// the parser admits comments, delivers events only after the whole input has
// matched, and limits nesting to DefaultMaxDepth.
func NewParser(src peg.Source) *Parser {
	return &Parser{src: src, comments: true, maxDepth: DefaultMaxDepth}
}

// AllowComments configures the parser to accept (true) or reject (false)
// line and block comments in its input.
func (p *Parser) AllowComments(ok bool) { p.comments = ok }

// Incremental configures whether the parser delivers events to its handler
// as soon as they are recognized (true), or only once the entire input has
// matched (false). In incremental mode a handler may receive events for a
// prefix of an input that later fails to parse.
func (p *Parser) Incremental(ok bool) { p.incremental = ok }

// SetMaxDepth sets the maximum nesting depth of arrays and objects. A value
// of zero or less removes the limit.
func (p *Parser) SetMaxDepth(n int) { p.maxDepth = n }

// Parse parses the input of p and delivers events to h. If the input is not
// valid, Parse returns a *SyntaxError describing the furthest point reached.
// If h reports an error, Parse returns that error.
func (p *Parser) Parse(h Handler) error {
	st := peg.NewState(p.src)
	st.SetMaxDepth(p.maxDepth)
	ss := &session{h: h, incremental: p.incremental}
	st.SetEnv(ss)
	if !p.incremental {
		st.Attach(ss)
	}

	ok, err := peg.Match(grammar(p.comments), st)
	if err != nil {
		var herr handlerError
		if errors.As(err, &herr) {
			return herr.error
		} else if errors.Is(err, peg.ErrTooDeep) {
			return fmt.Errorf("at offset %d: %w", st.Pos(), err)
		}
		return err
	}
	if rerr := p.src.Err(); rerr != nil {
		return fmt.Errorf("reading input: %w", rerr)
	}
	if !ok {
		return newSyntaxError(st)
	}
	return ss.replay()
}

// ParseString parses the JSON text in s and delivers events to h.
func ParseString(s string, h Handler) error { return NewParser(peg.NewString(s)).Parse(h) }

// ParseBytes parses the JSON text in data and delivers events to h.
func ParseBytes(data []byte, h Handler) error { return NewParser(peg.NewBuffer(data)).Parse(h) }

// ParseReader parses the JSON text read from r and delivers events to h.
func ParseReader(r io.Reader, h Handler) error {
	src, err := ReaderSource(r)
	if err != nil {
		return err
	}
	return NewParser(src).Parse(h)
}

// Valid reports whether s is a valid JSON document (comments allowed).
func Valid(s string) bool { return ParseString(s, Discard) == nil }

// ReaderSource returns a peg.Source for the contents of r. If r implements
// io.ReadSeeker and can seek, the source reads it in place; otherwise the
// remaining contents of r are read into memory. Files that cannot seek, such
// as pipes, are read into memory.
func ReaderSource(r io.Reader) (peg.Source, error) {
	if rs, ok := r.(io.ReadSeeker); ok {
		if _, err := rs.Seek(0, io.SeekCurrent); err == nil {
			return peg.NewStream(rs), nil
		}
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}
	return peg.NewBuffer(buf.Bytes()), nil
}

// handlerError is a wrapper for errors reported by a Handler, so they can be
// told apart from other reasons a parse was aborted.
type handlerError struct{ error }

func (h handlerError) Unwrap() error { return h.error }

type eventOp byte

const (
	opValue eventOp = iota
	opMember
	opBeginObject
	opEndObject
	opBeginArray
	opEndArray
)

type event struct {
	op   eventOp
	name string // for opMember
	v    Scalar // for opValue
}

func (e event) send(h Handler) error {
	switch e.op {
	case opValue:
		return h.Value(e.v)
	case opMember:
		return h.Member(e.name)
	case opBeginObject:
		return h.BeginObject()
	case opEndObject:
		return h.EndObject()
	case opBeginArray:
		return h.BeginArray()
	case opEndArray:
		return h.EndArray()
	default:
		panic(fmt.Sprintf("invalid event op %d", e.op))
	}
}

// A session carries the events of a single call to Parse. In incremental
// mode events go directly to the handler; otherwise they are recorded in a
// log that is truncated when the parser backtracks, and replayed on success.
type session struct {
	h           Handler
	incremental bool
	log         []event
}

func (ss *session) emit(st *peg.State, e event) {
	if !ss.incremental {
		ss.log = append(ss.log, e)
	} else if err := e.send(ss.h); err != nil {
		st.Abort(handlerError{err})
	}
}

// Mark implements peg.Journal.
func (ss *session) Mark() int { return len(ss.log) }

// Rewind implements peg.Journal.
func (ss *session) Rewind(mark int) { ss.log = ss.log[:mark] }

func (ss *session) replay() error {
	for _, e := range ss.log {
		if err := e.send(ss.h); err != nil {
			return err
		}
	}
	ss.log = nil
	return nil
}
