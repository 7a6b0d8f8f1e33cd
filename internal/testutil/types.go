// Package testutil defines support code for unit tests.
package testutil

import (
	"errors"
	"strings"

	"github.com/creachadair/jcomb"
)

// ErrStop is the error reported by a Recorder whose StopAt limit is reached.
var ErrStop = errors.New("recorder stopped")

// A Recorder is a jcomb.Handler that records a compact description of each
// event it receives:
//
//	BeginObject    {
//	EndObject      }
//	BeginArray     [
//	EndArray       ]
//	Member("a")    .a
//	Value(s)       s.String()
type Recorder struct {
	Events []string

	// If StopAt > 0, the Recorder reports ErrStop from the event with that
	// 1-based index, without recording it.
	StopAt int
}

func (r *Recorder) add(s string) error {
	if r.StopAt > 0 && len(r.Events)+1 >= r.StopAt {
		return ErrStop
	}
	r.Events = append(r.Events, s)
	return nil
}

// String returns the recorded events joined by spaces.
func (r *Recorder) String() string { return strings.Join(r.Events, " ") }

func (r *Recorder) BeginObject() error         { return r.add("{") }
func (r *Recorder) EndObject() error           { return r.add("}") }
func (r *Recorder) BeginArray() error          { return r.add("[") }
func (r *Recorder) EndArray() error            { return r.add("]") }
func (r *Recorder) Member(name string) error   { return r.add("." + name) }
func (r *Recorder) Value(s jcomb.Scalar) error { return r.add(s.String()) }
