// Copyright (C) 2023 Michael J. Fromberger. All Rights Reserved.

// Package escape handles quoting and unquoting of JSON strings.
package escape

import (
	"errors"
	"unicode/utf16"
	"unicode/utf8"

	"go4.org/mem"
)

// Unquote decodes a byte slice containing the JSON encoding of a string. The
// input must have the enclosing double quotation marks already removed.
//
// Escape sequences are replaced with their unescaped equivalents. A \u escape
// for a high surrogate followed by a \u escape for a low surrogate decodes as
// a single rune. Invalid escapes and unpaired surrogates are replaced by the
// Unicode replacement rune. Unquote reports an error for an incomplete escape
// sequence.
func Unquote(src mem.RO) ([]byte, error) {
	i := mem.IndexByte(src, '\\')
	if i < 0 {
		return mem.Append(make([]byte, 0, src.Len()), src), nil
	}

	dec := make([]byte, 0, src.Len())
	for {
		dec = mem.Append(dec, src.SliceTo(i))
		src = src.SliceFrom(i + 1)
		if src.Len() == 0 {
			return nil, errors.New("incomplete escape sequence")
		}

		c := src.At(0)
		src = src.SliceFrom(1)
		switch c {
		case '"', '\\', '/':
			dec = append(dec, c)
		case 'b':
			dec = append(dec, '\b')
		case 'f':
			dec = append(dec, '\f')
		case 'n':
			dec = append(dec, '\n')
		case 'r':
			dec = append(dec, '\r')
		case 't':
			dec = append(dec, '\t')
		case 'u':
			r, rest, err := unicodeEscape(src)
			if err != nil {
				return nil, err
			}
			dec = utf8.AppendRune(dec, r)
			src = rest
		default:
			dec = utf8.AppendRune(dec, utf8.RuneError)
		}

		// Look for the next escape sequence, and if one is not found we can blit
		// the rest of the input and go home.
		i = mem.IndexByte(src, '\\')
		if i < 0 {
			return mem.Append(dec, src), nil
		}
	}
}

// unicodeEscape decodes the hex digits of a \u escape at the front of src,
// along with a following low-surrogate escape when the first is a high
// surrogate. It returns the decoded rune and the remaining input.
func unicodeEscape(src mem.RO) (rune, mem.RO, error) {
	if src.Len() < 4 {
		return 0, src, errors.New("incomplete Unicode escape")
	}
	v, ok := parseHex4(src)
	src = src.SliceFrom(4)
	if !ok {
		return utf8.RuneError, src, nil
	}
	r := rune(v)
	if !utf16.IsSurrogate(r) {
		return r, src, nil
	}

	// A high surrogate must be followed by an escaped low surrogate.
	if src.Len() >= 6 && src.At(0) == '\\' && src.At(1) == 'u' {
		if lo, ok := parseHex4(src.SliceFrom(2)); ok {
			if pr := utf16.DecodeRune(r, rune(lo)); pr != utf8.RuneError {
				return pr, src.SliceFrom(6), nil
			}
		}
	}
	return utf8.RuneError, src, nil
}

// parseHex4 decodes the first four bytes of data as hexadecimal digits.
func parseHex4(data mem.RO) (int, bool) {
	var v int
	for i := range 4 {
		b := data.At(i)
		v <<= 4
		switch {
		case '0' <= b && b <= '9':
			v += int(b - '0')
		case 'a' <= b && b <= 'f':
			v += int(b - 'a' + 10)
		case 'A' <= b && b <= 'F':
			v += int(b - 'A' + 10)
		default:
			return 0, false
		}
	}
	return v, true
}
