// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package posting

import (
	"encoding/binary"

	"github.com/cockroachdb/errors"
)

// groupVarintEncode packs vals four at a time behind a 2-byte selector
// (3 bits per value, encoding a 1-8 byte width), in the spirit of the
// oroch group-varint codec the original posting encoder delegated to.
// There is no surviving reference implementation for this corner; the
// scheme here is a self-contained substitute chosen for a compact,
// round-trippable encoding, not a byte-for-byte port.
func groupVarintEncode(dst []byte, vals []uint64) []byte {
	for i := 0; i < len(vals); i += 4 {
		chunk := vals[i:min(i+4, len(vals))]

		var selector uint16
		for j, v := range chunk {
			w := byteWidth(v)
			selector |= uint16(w-1) << uint(3*j)
		}

		var sel [2]byte
		binary.LittleEndian.PutUint16(sel[:], selector)
		dst = append(dst, sel[:]...)

		for _, v := range chunk {
			w := byteWidth(v)
			var buf [8]byte
			binary.LittleEndian.PutUint64(buf[:], v)
			dst = append(dst, buf[:w]...)
		}
	}
	return dst
}

// groupVarintDecode decodes exactly n values from the front of b, returning
// the values and the number of bytes consumed.
func groupVarintDecode(b []byte, n int) ([]uint64, int, error) {
	out := make([]uint64, 0, n)
	pos := 0

	for len(out) < n {
		if pos+2 > len(b) {
			return nil, 0, errors.New("posting: group-varint selector overrun")
		}
		selector := binary.LittleEndian.Uint16(b[pos:])
		pos += 2

		groupCount := min(4, n-len(out))
		for j := 0; j < groupCount; j++ {
			w := int((selector>>uint(3*j))&0x7) + 1
			if pos+w > len(b) {
				return nil, 0, errors.New("posting: group-varint value overrun")
			}
			var buf [8]byte
			copy(buf[:], b[pos:pos+w])
			out = append(out, binary.LittleEndian.Uint64(buf[:]))
			pos += w
		}
	}

	return out, pos, nil
}

func byteWidth(v uint64) int {
	w := 1
	for v >= 1<<8 {
		v >>= 8
		w++
	}
	if w > 8 {
		w = 8
	}
	return w
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// zigzagEncode maps a signed value to an unsigned one with small absolute
// values mapping to small encodings.
func zigzagEncode(v int64) uint64 {
	return uint64((v << 1) ^ (v >> 63))
}

// zigzagDecode is the inverse of zigzagEncode.
func zigzagDecode(v uint64) int64 {
	return int64(v>>1) ^ -int64(v&1)
}
