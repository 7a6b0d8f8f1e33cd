// Copyright (C) 2025 Michael J. Fromberger. All Rights Reserved.

package peg

import "strings"

// A Rule is a grammar rule that can be matched against a State.
//
// If Match reports false, the state must be left at the position where the
// attempt began. Rules that consume a single byte satisfy this by testing
// before they advance; compound rules save a checkpoint and roll back.
type Rule interface {
	Match(*State) bool
}

// RuleFunc adapts a function to the Rule interface.
type RuleFunc func(*State) bool

// Match implements the Rule interface.
func (f RuleFunc) Match(s *State) bool { return f(s) }

// Empty is a rule that matches without consuming input.
var Empty Rule = RuleFunc(func(*State) bool { return true })

// Fail is a rule that never matches.
var Fail Rule = RuleFunc(func(*State) bool { return false })

// EOF matches at the end of the input.
var EOF Rule = RuleFunc(func(s *State) bool { return s.AtEnd() })

// AnyChar matches any single byte.
var AnyChar Rule = Pred(func(byte) bool { return true })

// Char matches the byte c.
func Char(c byte) Rule { return RuleFunc(func(s *State) bool { return s.Accept(c) }) }

// NotChar matches any single byte except c.
func NotChar(c byte) Rule { return Pred(func(b byte) bool { return b != c }) }

// Range matches any single byte between lo and hi inclusive.
func Range(lo, hi byte) Rule { return Pred(func(b byte) bool { return lo <= b && b <= hi }) }

// OneOf matches any single byte in set.
func OneOf(set string) Rule {
	return Pred(func(b byte) bool { return strings.IndexByte(set, b) >= 0 })
}

// NoneOf matches any single byte not in set.
func NoneOf(set string) Rule {
	return Pred(func(b byte) bool { return strings.IndexByte(set, b) < 0 })
}

// Pred matches any single byte for which f reports true.
func Pred(f func(byte) bool) Rule {
	return RuleFunc(func(s *State) bool {
		if s.AtEnd() || !f(s.Peek()) {
			return false
		}
		s.Advance()
		return true
	})
}

// Lit matches the literal text lit.
func Lit(lit string) Rule {
	return RuleFunc(func(s *State) bool {
		s.Push()
		for i := 0; i < len(lit); i++ {
			if !s.Accept(lit[i]) {
				s.Rollback()
				return false
			}
		}
		s.Commit()
		return true
	})
}

// Seq matches each of rs in order. If any of them fails, the remainder are
// not tried and Seq fails.
func Seq(rs ...Rule) Rule {
	return RuleFunc(func(s *State) bool {
		s.Push()
		for _, r := range rs {
			if !r.Match(s) {
				s.Rollback()
				return false
			}
		}
		s.Commit()
		return true
	})
}

// Or matches the first of rs that succeeds, trying them in order. Each
// alternative begins at the same position.
func Or(rs ...Rule) Rule {
	return RuleFunc(func(s *State) bool {
		s.Push()
		for _, r := range rs {
			if r.Match(s) {
				s.Commit()
				return true
			}
		}
		s.Rollback()
		return false
	})
}

// Star matches zero or more repetitions of r, as many as possible.
// Repetition stops if r matches without consuming input.
func Star(r Rule) Rule {
	return RuleFunc(func(s *State) bool {
		repeat(r, s)
		return true
	})
}

// Plus matches one or more repetitions of r, as many as possible.
func Plus(r Rule) Rule {
	return RuleFunc(func(s *State) bool {
		if !r.Match(s) {
			return false
		}
		repeat(r, s)
		return true
	})
}

func repeat(r Rule, s *State) {
	for {
		p := s.Pos()
		if !r.Match(s) || s.Pos() == p {
			return
		}
	}
}

// Opt matches r if possible; it always succeeds.
func Opt(r Rule) Rule {
	return RuleFunc(func(s *State) bool {
		r.Match(s)
		return true
	})
}

// UntilChars consumes input up to and including the first occurrence of the
// two-byte sequence c1 c2. It fails if the input ends first.
func UntilChars(c1, c2 byte) Rule {
	return RuleFunc(func(s *State) bool {
		s.Push()
		for !s.AtEnd() {
			first := s.Is(c1)
			s.Advance()
			if first && s.Accept(c2) {
				s.Commit()
				return true
			}
		}
		s.Rollback()
		return false
	})
}

// Until matches body repeatedly until end matches. It fails if body fails
// before end has matched.
func Until(body, end Rule) Rule {
	return RuleFunc(func(s *State) bool {
		s.Push()
		for !end.Match(s) {
			if !body.Match(s) {
				s.Rollback()
				return false
			}
		}
		s.Commit()
		return true
	})
}

// Through consumes input up to and including the first occurrence of c.
func Through(c byte) Rule { return Seq(Star(NotChar(c)), Char(c)) }

// An ActionFunc receives the start position and length of the text matched by
// the rule it is attached to.
type ActionFunc func(s *State, start Pos, n int)

// Action matches r, and if it succeeds calls f with the span of input that r
// consumed before reporting success.
//
// The effects of f are not undone if an enclosing rule later fails, unless
// they are recorded in a Journal attached to the State.
func Action(r Rule, f ActionFunc) Rule {
	return RuleFunc(func(s *State) bool {
		start := s.Pos()
		if !r.Match(s) {
			return false
		}
		f(s, start, int(s.Pos()-start))
		return true
	})
}

// Nested matches r one nesting level deeper than its caller. If that exceeds
// the nesting limit of the State, the parse is aborted with ErrTooDeep.
func Nested(r Rule) Rule {
	return RuleFunc(func(s *State) bool {
		if !s.enter() {
			s.Abort(ErrTooDeep)
		}
		ok := r.Match(s)
		s.leave()
		return ok
	})
}

// Ref is a Rule that refers to another rule set later. It allows a grammar to
// refer to a rule before the rule is defined, as recursive grammars must.
// The zero value is ready for use, but must be Set before it is matched.
type Ref struct{ r Rule }

// Set sets the rule that f refers to.
func (f *Ref) Set(r Rule) { f.r = r }

// Match implements the Rule interface.
func (f *Ref) Match(s *State) bool {
	if f.r == nil {
		panic("peg: match of unset rule reference")
	}
	return f.r.Match(s)
}
