// Copyright (C) 2025 Michael J. Fromberger. All Rights Reserved.

package peg

import (
	"errors"
	"fmt"
	"strings"

	"github.com/creachadair/mds/stack"
)

// ErrTooDeep is reported when a parse exceeds the nesting limit of its State.
var ErrTooDeep = errors.New("nesting too deep")

// A Journal records side effects that should be undone when the parser
// backtracks. When a journal is attached to a State, every checkpoint saves
// the journal's Mark, and rolling back to that checkpoint calls Rewind with
// the saved mark.
type Journal interface {
	Mark() int
	Rewind(mark int)
}

type checkpoint struct {
	pos  Pos
	line int
	mark int
}

// State is the backtracking state of a parse. It wraps a Source with a stack
// of checkpoints, and tracks the current line number and the furthest
// position reached.
type State struct {
	src  Source
	stk  *stack.Stack[checkpoint]
	line int // 1-based

	max     Pos
	maxLine int

	env     any
	journal Journal

	depth, maxDepth int
}

// NewState constructs a new State reading from src. The state has no
// nesting limit until one is set with SetMaxDepth.
func NewState(src Source) *State {
	return &State{
		src:     src,
		stk:     stack.New[checkpoint](),
		line:    1,
		max:     src.Pos(),
		maxLine: 1,
	}
}

// Source returns the Source underlying s.
func (s *State) Source() Source { return s.src }

// SetEnv sets the environment value of s. Semantic actions use the
// environment to reach the context of the parse they are part of.
func (s *State) SetEnv(v any) { s.env = v }

// Env returns the environment value of s, or nil if none was set.
func (s *State) Env() any { return s.env }

// Attach attaches j to s. Checkpoints pushed after this call record the mark
// of j, and rollbacks rewind j to that mark.
func (s *State) Attach(j Journal) { s.journal = j }

// SetMaxDepth sets the maximum nesting depth permitted by Nested rules.
// A value of zero or less removes the limit.
func (s *State) SetMaxDepth(n int) { s.maxDepth = n }

// AtEnd reports whether s is at the end of its input.
func (s *State) AtEnd() bool { return s.src.AtEnd() }

// Peek returns the byte at the current position.
func (s *State) Peek() byte { return s.src.Peek() }

// Is reports whether the byte at the current position is c, without
// consuming it.
func (s *State) Is(c byte) bool { return !s.src.AtEnd() && s.src.Peek() == c }

// Advance consumes one byte of input, if any is available.
func (s *State) Advance() {
	if s.src.AtEnd() {
		return
	}
	if s.src.Peek() == '\n' {
		s.line++
	}
	s.src.Advance()
}

// Accept consumes the current byte and reports true if it is c. Otherwise it
// reports false and consumes nothing.
func (s *State) Accept(c byte) bool {
	if s.Is(c) {
		s.Advance()
		return true
	}
	return false
}

// Pos returns the current position of s.
func (s *State) Pos() Pos { return s.src.Pos() }

// Line returns the current 1-based line number of s.
func (s *State) Line() int { return s.line }

// Text returns a copy of n bytes of input starting at p.
func (s *State) Text(p Pos, n int) string { return s.src.Slice(p, n) }

// Depth returns the number of checkpoints currently saved.
func (s *State) Depth() int { return s.stk.Len() }

// Push saves a checkpoint at the current position.
func (s *State) Push() {
	cp := checkpoint{pos: s.Pos(), line: s.line}
	if s.journal != nil {
		cp.mark = s.journal.Mark()
	}
	s.stk.Push(cp)
}

// Commit discards the most recent checkpoint and keeps the current position.
func (s *State) Commit() {
	s.track()
	if _, ok := s.stk.Pop(); !ok {
		panic("peg: commit without checkpoint")
	}
}

// Rollback restores the position saved by the most recent checkpoint and
// discards it.
func (s *State) Rollback() {
	s.track()
	cp, ok := s.stk.Pop()
	if !ok {
		panic("peg: rollback without checkpoint")
	}
	s.src.Seek(cp.pos)
	s.line = cp.line
	if s.journal != nil {
		s.journal.Rewind(cp.mark)
	}
}

func (s *State) track() {
	if p := s.Pos(); p > s.max {
		s.max, s.maxLine = p, s.line
	}
}

// Furthest reports the furthest position reached by s at any commit or
// rollback, and the line number at that position.
func (s *State) Furthest() (Pos, int) {
	s.track()
	return s.max, s.maxLine
}

// Column reports the 0-based byte offset of p within its line.
func (s *State) Column(p Pos) int {
	start, _ := s.src.LineSpan(p)
	return int(p - start)
}

// Report renders the line of input containing the furthest position reached
// by s, followed by a line with a caret "^" under that position. Tabs in the
// source line are preserved in the caret line so the caret lines up.
func (s *State) Report() string {
	p, _ := s.Furthest()
	start, end := s.src.LineSpan(p)
	line := s.src.Slice(start, int(end-start))

	var sb strings.Builder
	sb.WriteString(line)
	sb.WriteByte('\n')
	for i := 0; i < int(p-start) && i < len(line); i++ {
		if line[i] == '\t' {
			sb.WriteByte('\t')
		} else {
			sb.WriteByte(' ')
		}
	}
	sb.WriteString("^\n")
	return sb.String()
}

// enter records entry into a nested rule, reporting false if that exceeds
// the nesting limit.
func (s *State) enter() bool {
	s.depth++
	return s.maxDepth <= 0 || s.depth <= s.maxDepth
}

func (s *State) leave() { s.depth-- }

// abort is the panic value used by Abort to unwind a parse.
type abort struct{ err error }

// Abort stops the parse in progress, causing Match to report err.
// Semantic actions use Abort to report failures that are not syntax errors.
func (s *State) Abort(err error) { panic(abort{err}) }

// Match matches r against s, and reports whether it succeeded. If the parse
// was stopped by a call to Abort, Match reports false and the error that was
// passed to Abort.
func Match(r Rule, s *State) (ok bool, err error) {
	defer func() {
		if x := recover(); x != nil {
			a, isAbort := x.(abort)
			if !isAbort {
				panic(x)
			}
			ok, err = false, a.err
		}
	}()
	return r.Match(s), nil
}

// String returns a summary of the position of s, for debugging.
func (s *State) String() string {
	return fmt.Sprintf("peg.State(pos=%d, line=%d, depth=%d)", s.Pos(), s.line, s.stk.Len())
}
