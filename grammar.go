// Copyright (C) 2025 Michael J. Fromberger. All Rights Reserved.

package jcomb

import (
	"errors"
	"strconv"
	"sync"

	"github.com/creachadair/jcomb/internal/escape"
	"github.com/creachadair/jcomb/peg"

	"go4.org/mem"
)

// The grammar is constructed once for each comment setting and shared by all
// parsers. Semantic actions find the parse session via the state environment.
var (
	grammarWithComments = sync.OnceValue(func() peg.Rule { return newGrammar(true) })
	grammarNoComments   = sync.OnceValue(func() peg.Rule { return newGrammar(false) })
)

func grammar(comments bool) peg.Rule {
	if comments {
		return grammarWithComments()
	}
	return grammarNoComments()
}

func sessionOf(s *peg.State) *session { return s.Env().(*session) }

// emitAction returns an action that sends a fixed event to the session.
func emitAction(e event) peg.ActionFunc {
	return func(s *peg.State, _ peg.Pos, _ int) { sessionOf(s).emit(s, e) }
}

// newGrammar constructs the rules for a JSON document.
//
//	document = ws [atom ws] EOF
//	atom     = bool / number / string / array / object / null
//	array    = "[" ws [atom ws *("," ws atom ws)] "]"
//	object   = "{" ws [member ws *("," ws member ws)] "}"
//	member   = string ws ":" ws atom
//
// If comments is true, ws also admits "//" line comments and "/* */" block
// comments.
func newGrammar(comments bool) peg.Rule {
	space := peg.OneOf(" \t\r\n")
	ws := peg.Star(space)
	if comments {
		lineComment := peg.Seq(peg.Lit("//"), peg.Star(peg.NotChar('\n')))
		blockComment := peg.Seq(peg.Lit("/*"), peg.UntilChars('*', '/'))
		ws = peg.Star(peg.Or(space, lineComment, blockComment))
	}

	digit := peg.Range('0', '9')
	digits := peg.Plus(digit)
	sign := peg.OneOf("+-")

	// Escapes are checked for shape only; Unquote decodes them.
	plain := peg.NoneOf(`"\`)
	escaped := peg.Seq(peg.Char('\\'), peg.Or(
		peg.Seq(peg.Char('u'), plain, plain, plain, plain),
		peg.NotChar('u'),
	))
	quoted := peg.Seq(peg.Char('"'), peg.Star(peg.Or(plain, escaped)), peg.Char('"'))

	boolRule := peg.Or(
		peg.Action(peg.Lit("true"), emitAction(event{op: opValue, v: BoolValue(true)})),
		peg.Action(peg.Lit("false"), emitAction(event{op: opValue, v: BoolValue(false)})),
	)
	nullRule := peg.Action(peg.Lit("null"), emitAction(event{op: opValue, v: NullValue()}))

	numberRule := peg.Action(peg.Seq(
		peg.Opt(sign),
		digits,
		peg.Opt(peg.Seq(peg.Char('.'), digits)),
		peg.Opt(peg.Seq(peg.OneOf("eE"), peg.Opt(sign), digits)),
	), func(s *peg.State, start peg.Pos, n int) {
		text := s.Text(start, n)
		f, err := strconv.ParseFloat(text, 64)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			s.Abort(err) // not possible for a well-formed lexeme
		}
		sessionOf(s).emit(s, event{op: opValue, v: Scalar{Kind: Number, Num: f, Text: text}})
	})

	stringRule := peg.Action(quoted, func(s *peg.State, start peg.Pos, n int) {
		sessionOf(s).emit(s, event{op: opValue, v: StringValue(unquoteSpan(s, start, n))})
	})
	memberName := peg.Action(quoted, func(s *peg.State, start peg.Pos, n int) {
		sessionOf(s).emit(s, event{op: opMember, name: unquoteSpan(s, start, n)})
	})

	var atom peg.Ref

	arrayRule := peg.Seq(
		peg.Action(peg.Char('['), emitAction(event{op: opBeginArray})),
		peg.Nested(peg.Seq(
			ws,
			peg.Opt(peg.Seq(
				&atom, ws,
				peg.Star(peg.Seq(peg.Char(','), ws, &atom, ws)),
			)),
			peg.Action(peg.Char(']'), emitAction(event{op: opEndArray})),
		)),
	)

	member := peg.Seq(memberName, ws, peg.Char(':'), ws, &atom)
	objectRule := peg.Seq(
		peg.Action(peg.Char('{'), emitAction(event{op: opBeginObject})),
		peg.Nested(peg.Seq(
			ws,
			peg.Opt(peg.Seq(
				member, ws,
				peg.Star(peg.Seq(peg.Char(','), ws, member, ws)),
			)),
			peg.Action(peg.Char('}'), emitAction(event{op: opEndObject})),
		)),
	)

	atom.Set(peg.Or(boolRule, numberRule, stringRule, arrayRule, objectRule, nullRule))

	return peg.Seq(ws, peg.Opt(peg.Seq(&atom, ws)), peg.EOF)
}

// unquoteSpan decodes the quoted string of n bytes at start.
func unquoteSpan(s *peg.State, start peg.Pos, n int) string {
	dec, err := escape.Unquote(mem.S(s.Text(start+1, n-2)))
	if err != nil {
		s.Abort(err) // the lexer admits only complete escapes
	}
	return string(dec)
}
