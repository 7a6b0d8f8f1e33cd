// Copyright (C) 2025 Michael J. Fromberger. All Rights Reserved.

package bind

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
)

var (
	// ErrUnsupported is reported when a destination does not support an
	// operation, for example storing a string into an int.
	ErrUnsupported = errors.New("unsupported operation")

	// ErrUnknownMember is reported when an object member has no corresponding
	// field in the schema of a destination struct.
	ErrUnknownMember = errors.New("unknown member")

	// ErrRange is reported when a number is out of range for its destination.
	ErrRange = errors.New("value out of range")

	// ErrFrozen is reported when a registry is configured for a type after
	// the type has already been resolved.
	ErrFrozen = errors.New("type already resolved")
)

// Error is the concrete type of errors reported when a value cannot be bound
// to its destination. Use errors.Is to check for ErrUnsupported,
// ErrUnknownMember, and ErrRange.
type Error struct {
	Path string       // the location of the value, for example $.a[2]
	Type reflect.Type // the type of the destination
	Op   string       // the operation that failed
	Err  error        // the underlying error
}

// Error satisfies the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("bind %s at %s (%v): %v", e.Op, e.Path, e.Type, e.Err)
}

// Unwrap supports error wrapping.
func (e *Error) Unwrap() error { return e.Err }

// underPath adds seg to the front of the path of err, if it is an *Error.
func underPath(err error, seg string) error {
	var berr *Error
	if errors.As(err, &berr) {
		berr.Path = "$" + seg + berr.Path[1:]
	}
	return err
}

// memberLabel renders a member name as a path segment.
func memberLabel(name string) string {
	if isIdent(name) {
		return "." + name
	}
	return "[" + strconv.Quote(name) + "]"
}

func indexLabel(i int) string { return "[" + strconv.Itoa(i) + "]" }

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '_', 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z':
		case '0' <= c && c <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}
