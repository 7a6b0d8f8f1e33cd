// Copyright (C) 2025 Michael J. Fromberger. All Rights Reserved.

// Package jcomb implements a JSON parser built from backtracking grammar
// combinators, and a writer for JSON text.
//
// # Parsing
//
// The Parser type matches the JSON grammar against a peg.Source and reports
// the structure of the input by calling methods on a Handler. Construct a
// parser from a source and call its Parse method:
//
//	p := jcomb.NewParser(peg.NewString(input))
//	if err := p.Parse(handler); err != nil {
//	   log.Fatalf("Parse failed: %v", err)
//	}
//
// In case of a syntax error, Parse returns an error of concrete type
// *jcomb.SyntaxError, whose Report method renders the offending line of input
// with a caret under the furthest position the parser reached:
//
//	var serr *jcomb.SyntaxError
//	if errors.As(err, &serr) {
//	   fmt.Print(serr.Report())
//	}
//
// If a Handler method reports an error, parsing stops and that error is
// returned.
//
// The accepted grammar is JSON plus two extensions: line comments ("// ...")
// and block comments ("/* ... */") may appear anywhere whitespace is allowed.
// Comments are discarded. Use AllowComments(false) to reject them.
//
// # Handlers
//
// The Handler interface accepts parser events. The methods of a handler
// correspond to the syntax of JSON values:
//
//	JSON type  | Methods                   | Description
//	---------- | ------------------------- | ---------------------------------
//	object     | BeginObject, EndObject    | { ... }
//	member     | Member                    | "key": (value follows)
//	array      | BeginArray, EndArray      | [ ... ]
//	value      | Value                     | true, false, null, number, string
//
// By default the parser records events while it matches, discards events
// produced by alternatives it backtracks out of, and delivers the rest to the
// handler only once the whole input has matched. A handler therefore sees
// nothing from an input that fails to parse. Call Incremental(true) to have
// events delivered as soon as they are recognized instead; in that mode a
// handler may observe a prefix of the events before a syntax error is found.
//
// # Writing
//
// The Writer type is a Handler that renders the events it receives as JSON
// text, either compactly on one line or indented two spaces per level.
package jcomb
