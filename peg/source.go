// Copyright (C) 2025 Michael J. Fromberger. All Rights Reserved.

// Package peg implements a backtracking parser built from grammar
// combinators.
//
// A grammar is a graph of Rule values. Each rule matches against a State,
// which wraps a Source with a stack of checkpoints. A rule that fails leaves
// the state positioned where it started; compound rules enforce this by
// pushing a checkpoint before they try their parts and rolling back to it if
// any part fails.
//
// The state remembers the furthest position it reached across all attempts,
// including the ones that were rolled back. That position is usually the
// best available guess for where a syntax error lies; see State.Report.
package peg

import (
	"go4.org/mem"
)

// A Pos is an offset into a Source. Positions are totally ordered and
// increase as input is consumed.
type Pos int64

// A Source is a random-access view of input text.
type Source interface {
	// AtEnd reports whether the current position is at or past the end of
	// the input.
	AtEnd() bool

	// Peek returns the byte at the current position.
	// The result is unspecified if AtEnd is true.
	Peek() byte

	// Advance moves the current position forward by one byte, if possible.
	Advance()

	// Pos returns the current position.
	Pos() Pos

	// Seek sets the current position to p.
	Seek(p Pos)

	// Slice returns a copy of n bytes of text starting at p. It does not
	// change the current position.
	Slice(p Pos, n int) string

	// LineSpan returns the start and end positions of the line containing p,
	// not including the line terminator.
	LineSpan(p Pos) (start, end Pos)

	// Err reports an error from the underlying input, if any.
	Err() error
}

// Buffer is a Source backed by an in-memory buffer.
type Buffer struct {
	buf mem.RO
	pos int
}

// NewBuffer constructs a Source that reads from b. The caller must not modify
// b while the Buffer is in use.
func NewBuffer(b []byte) *Buffer { return &Buffer{buf: mem.B(b)} }

// NewString constructs a Source that reads from s.
func NewString(s string) *Buffer { return &Buffer{buf: mem.S(s)} }

// AtEnd implements part of the Source interface.
func (b *Buffer) AtEnd() bool { return b.pos >= b.buf.Len() }

// Peek implements part of the Source interface.
func (b *Buffer) Peek() byte { return b.buf.At(b.pos) }

// Advance implements part of the Source interface.
func (b *Buffer) Advance() {
	if b.pos < b.buf.Len() {
		b.pos++
	}
}

// Pos implements part of the Source interface.
func (b *Buffer) Pos() Pos { return Pos(b.pos) }

// Seek implements part of the Source interface.
func (b *Buffer) Seek(p Pos) { b.pos = b.clamp(p) }

// Slice implements part of the Source interface.
func (b *Buffer) Slice(p Pos, n int) string {
	lo := b.clamp(p)
	hi := b.clamp(p + Pos(n))
	return b.buf.Slice(lo, hi).StringCopy()
}

// LineSpan implements part of the Source interface.
func (b *Buffer) LineSpan(p Pos) (start, end Pos) {
	i := b.clamp(p)
	lo := mem.LastIndexByte(b.buf.SliceTo(i), '\n') + 1
	hi := b.buf.Len()
	if j := mem.IndexByte(b.buf.SliceFrom(i), '\n'); j >= 0 {
		hi = i + j
	}
	return Pos(lo), Pos(hi)
}

// Err implements part of the Source interface. A Buffer never fails.
func (*Buffer) Err() error { return nil }

func (b *Buffer) clamp(p Pos) int {
	if p < 0 {
		return 0
	} else if int64(p) > int64(b.buf.Len()) {
		return b.buf.Len()
	}
	return int(p)
}
