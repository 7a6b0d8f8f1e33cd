// Copyright (C) 2025 Michael J. Fromberger. All Rights Reserved.

package jcomb

import (
	"errors"
	"fmt"

	"github.com/creachadair/jcomb/peg"
)

// SyntaxError is the concrete type of errors reported when the input to a
// Parser is not valid JSON.
type SyntaxError struct {
	Location LineCol // the location of the furthest position reached
	Offset   int64   // the byte offset of that position
	Message  string

	// Context is the line of input containing the error, followed by a
	// line with a caret under the error column.
	Context string
}

// Error satisfies the error interface.
func (s *SyntaxError) Error() string {
	return fmt.Sprintf("at %s: %s", s.Location, s.Message)
}

// Report returns a multi-line description of the error: the error message,
// the offending line of input, and a caret marking the error column.
func (s *SyntaxError) Report() string {
	return fmt.Sprintf("%s\n%s", s.Error(), s.Context)
}

func newSyntaxError(st *peg.State) *SyntaxError {
	p, line := st.Furthest()
	msg := "unexpected end of input"
	if t := st.Text(p, 1); t != "" {
		msg = fmt.Sprintf("unexpected %q", t)
	}
	return &SyntaxError{
		Location: LineCol{Line: line, Column: st.Column(p)},
		Offset:   int64(p),
		Message:  msg,
		Context:  st.Report(),
	}
}

// ErrorReport returns a multi-line report for err. If err is or wraps a
// *SyntaxError, the report includes the offending line of input with a caret
// under the error column; otherwise it is the text of err.
func ErrorReport(err error) string {
	if err == nil {
		return ""
	}
	var serr *SyntaxError
	if errors.As(err, &serr) {
		return serr.Report()
	}
	return err.Error()
}
