// Copyright (C) 2025 Michael J. Fromberger. All Rights Reserved.

package peg

import (
	"errors"
	"fmt"
	"io"
)

// blockSize is the size of the window a Stream caches from its reader.
const blockSize = 4096

// Stream is a Source backed by a seekable reader. It keeps a logical cursor
// separate from the offset of the underlying reader, so lookaside reads for
// Slice and LineSpan do not disturb the parse position.
//
// Positions reported by a Stream are offsets relative to the position of the
// reader when the Stream was constructed.
type Stream struct {
	r      io.ReadSeeker
	origin int64 // reader offset of position 0
	pos    int64 // logical cursor

	win  []byte // cached block
	base int64  // position of win[0]
	end  int64  // length of the input once known, else -1
	err  error
}

// NewStream constructs a Source that reads from the current offset of r.
// I/O errors are recorded and reported by Err; once an error occurs the
// stream reports that it is at the end of its input.
func NewStream(r io.ReadSeeker) *Stream {
	s := &Stream{r: r, end: -1}
	off, err := r.Seek(0, io.SeekCurrent)
	if err != nil {
		s.err = fmt.Errorf("seek: %w", err)
	}
	s.origin = off
	return s
}

// AtEnd implements part of the Source interface.
func (s *Stream) AtEnd() bool { return !s.load(s.pos) }

// Peek implements part of the Source interface.
func (s *Stream) Peek() byte {
	if !s.load(s.pos) {
		return 0
	}
	return s.win[s.pos-s.base]
}

// Advance implements part of the Source interface.
func (s *Stream) Advance() {
	if s.load(s.pos) {
		s.pos++
	}
}

// Pos implements part of the Source interface.
func (s *Stream) Pos() Pos { return Pos(s.pos) }

// Seek implements part of the Source interface.
func (s *Stream) Seek(p Pos) { s.pos = max(int64(p), 0) }

// Slice implements part of the Source interface.
func (s *Stream) Slice(p Pos, n int) string {
	lo, hi := max(int64(p), 0), int64(p)+int64(n)
	buf := make([]byte, 0, max(hi-lo, 0))
	for i := lo; i < hi; i++ {
		if !s.load(i) {
			break
		}
		buf = append(buf, s.win[i-s.base])
	}
	return string(buf)
}

// LineSpan implements part of the Source interface.
func (s *Stream) LineSpan(p Pos) (start, end Pos) {
	lo := int64(p)
	for lo > 0 && s.load(lo-1) && s.win[lo-1-s.base] != '\n' {
		lo--
	}
	hi := int64(p)
	for s.load(hi) && s.win[hi-s.base] != '\n' {
		hi++
	}
	return Pos(lo), Pos(hi)
}

// Err implements part of the Source interface.
func (s *Stream) Err() error { return s.err }

// load ensures the byte at position p is cached, and reports whether there is
// such a byte.
func (s *Stream) load(p int64) bool {
	if p >= s.base && p < s.base+int64(len(s.win)) {
		return true
	} else if p < 0 || s.err != nil || (s.end >= 0 && p >= s.end) {
		return false
	}

	base := p - p%blockSize
	if _, err := s.r.Seek(s.origin+base, io.SeekStart); err != nil {
		s.err = fmt.Errorf("seek: %w", err)
		return false
	}
	if s.win == nil {
		s.win = make([]byte, blockSize)
	}
	nr, err := io.ReadFull(s.r, s.win[:blockSize])
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		s.end = base + int64(nr)
	} else if err != nil {
		s.err = fmt.Errorf("read: %w", err)
		s.win = s.win[:0]
		return false
	}
	s.win = s.win[:nr]
	s.base = base
	return p < base+int64(nr)
}
