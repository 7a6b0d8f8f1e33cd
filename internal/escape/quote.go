// Copyright (C) 2023 Michael J. Fromberger. All Rights Reserved.

package escape

import (
	"unicode/utf8"

	"go4.org/mem"
)

var controlEsc = [...]byte{
	'\b': 'b',
	'\f': 'f',
	'\n': 'n',
	'\r': 'r',
	'\t': 't',
	' ':  ' ', // sentinel
}

var hexDigit = []byte("0123456789abcdef")

// AppendQuote appends the JSON string encoding of src to dst, including the
// enclosing double quotation marks, and returns the extended slice.
//
// Quotation marks, backslashes, and control characters are escaped. Invalid
// UTF-8 sequences are replaced by the escaped replacement rune, and the line
// and paragraph separators U+2028 and U+2029 are escaped so the output is
// safe to embed in JavaScript source.
func AppendQuote(dst []byte, src mem.RO) []byte {
	dst = append(dst, '"')
	for src.Len() != 0 {
		b := src.At(0)
		if b < utf8.RuneSelf {
			switch {
			case b < ' ':
				if e := controlEsc[b]; e != 0 {
					dst = append(dst, '\\', e)
				} else {
					dst = append(dst, '\\', 'u', '0', '0', hexDigit[b>>4], hexDigit[b&15])
				}
			case b == '\\' || b == '"':
				dst = append(dst, '\\', b)
			default:
				dst = append(dst, b)
			}
			src = src.SliceFrom(1)
			continue
		}

		r, n := mem.DecodeRune(src)
		switch {
		case r == utf8.RuneError && n <= 1:
			dst = append(dst, `\ufffd`...)
		case r == '\u2028':
			dst = append(dst, `\u2028`...)
		case r == '\u2029':
			dst = append(dst, `\u2029`...)
		default:
			dst = utf8.AppendRune(dst, r)
		}
		src = src.SliceFrom(max(n, 1))
	}
	return append(dst, '"')
}

// Quote returns the JSON string encoding of src, including the enclosing
// double quotation marks.
func Quote(src mem.RO) []byte { return AppendQuote(make([]byte, 0, src.Len()+2), src) }
