// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package base

import "strings"

// ToJSON appends a JSON string literal (including the surrounding quotes)
// for b to dst. Control bytes below 0x20 that have no named escape are
// written as \u00XX; everything else is emitted verbatim, matching the
// narrower escape table the on-disk summary bodies were written with.
func ToJSON(b []byte, dst *strings.Builder) {
	dst.WriteByte('"')

	for _, c := range b {
		switch c {
		case '\\':
			dst.WriteString(`\\`)
		case '"':
			dst.WriteString(`\"`)
		case '\a':
			dst.WriteString(`\a`)
		case '\b':
			dst.WriteString(`\b`)
		case '\t':
			dst.WriteString(`\t`)
		case '\n':
			dst.WriteString(`\n`)
		case '\v':
			dst.WriteString(`\v`)
		case '\f':
			dst.WriteString(`\f`)
		case '\r':
			dst.WriteString(`\r`)
		default:
			if c < 0x20 {
				const hex = "0123456789abcdef"
				dst.WriteString(`\u00`)
				dst.WriteByte(hex[c>>4])
				dst.WriteByte(hex[c&0xf])
			} else {
				dst.WriteByte(c)
			}
		}
	}

	dst.WriteByte('"')
}

// JSONString is a convenience wrapper around ToJSON for callers that just
// want the escaped literal as a string.
func JSONString(b []byte) string {
	var sb strings.Builder
	sb.Grow(len(b) + 2)
	ToJSON(b, &sb)
	return sb.String()
}
