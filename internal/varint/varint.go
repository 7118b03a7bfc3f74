// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Package varint implements the unsigned LEB128-style varint codec shared
// by the block, index and posting layers: 7 payload bits per byte, MSB set
// to indicate a continuation byte, little-endian group order.
package varint

import "fmt"

// ErrOverrun is returned when a varint's continuation bit never clears
// within the bytes available, or within the maximum of 10 bytes for a
// 64-bit value.
var ErrOverrun = fmt.Errorf("varint: buffer overrun")

// Space returns the number of bytes Put(v) would write.
func Space(v uint64) int {
	n := 1
	for v >= 0x80 {
		v >>= 7
		n++
	}
	return n
}

// Put appends the varint encoding of v to dst and returns the extended
// slice.
func Put(dst []byte, v uint64) []byte {
	for v >= 0x80 {
		dst = append(dst, byte(v)|0x80)
		v >>= 7
	}
	return append(dst, byte(v))
}

// Get decodes a varint from the front of b, returning the value, the
// number of bytes consumed, and an error if b is exhausted before the
// continuation bit clears.
func Get(b []byte) (uint64, int, error) {
	var v uint64
	var shift uint
	for i := 0; i < len(b) && i < 10; i++ {
		c := b[i]
		v |= uint64(c&0x7f) << shift
		if c&0x80 == 0 {
			return v, i + 1, nil
		}
		shift += 7
	}
	return 0, 0, ErrOverrun
}

// PutArray appends the varint encoding of each element of vs to dst.
func PutArray(dst []byte, vs []uint64) []byte {
	for _, v := range vs {
		dst = Put(dst, v)
	}
	return dst
}

// ArraySpace returns the total byte length of the varint encoding of vs.
func ArraySpace(vs []uint64) int {
	n := 0
	for _, v := range vs {
		n += Space(v)
	}
	return n
}

// GetArray decodes n varints from the front of b.
func GetArray(b []byte, n int) ([]uint64, int, error) {
	out := make([]uint64, n)
	total := 0
	for i := 0; i < n; i++ {
		v, used, err := Get(b[total:])
		if err != nil {
			return nil, 0, err
		}
		out[i] = v
		total += used
	}
	return out, total, nil
}

// PutDeltaArray appends varint(xs[0]) followed by varint(xs[i]-xs[i-1]) for
// i>0. xs must be non-decreasing.
func PutDeltaArray(dst []byte, xs []uint64) []byte {
	var prev uint64
	for i, x := range xs {
		if i == 0 {
			dst = Put(dst, x)
		} else {
			dst = Put(dst, x-prev)
		}
		prev = x
	}
	return dst
}

// DeltaArraySpace returns the encoded length of PutDeltaArray(xs).
func DeltaArraySpace(xs []uint64) int {
	n := 0
	var prev uint64
	for i, x := range xs {
		if i == 0 {
			n += Space(x)
		} else {
			n += Space(x - prev)
		}
		prev = x
	}
	return n
}

// GetDeltaArray decodes n delta-encoded values from the front of b,
// returning the reconstructed strictly cumulative sequence.
func GetDeltaArray(b []byte, n int) ([]uint64, int, error) {
	out := make([]uint64, n)
	total := 0
	var prev uint64
	for i := 0; i < n; i++ {
		v, used, err := Get(b[total:])
		if err != nil {
			return nil, 0, err
		}
		total += used
		if i == 0 {
			prev = v
		} else {
			prev += v
		}
		out[i] = prev
	}
	return out, total, nil
}
