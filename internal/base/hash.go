// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package base

import "encoding/binary"

// Hash computes a 64-bit, FarmHash-like mix of b. The mix is a fixed
// algorithm: callers depend on its exact bit pattern for shard assignment
// and legacy key probes, so it must never change across builds.
func Hash(b []byte) uint64 {
	const mul = (uint64(0xc6a4a793) << 32) + 0x5bd1e995
	const seed = uint64(0xe17a1465)

	h := seed ^ (uint64(len(b)) * mul)

	for len(b) >= 8 {
		v := binary.LittleEndian.Uint64(b)
		v *= mul
		v = shiftMix(v) * mul
		h ^= v
		h *= mul
		b = b[8:]
	}

	switch len(b) {
	case 7:
		h ^= uint64(b[6]) << 48
		fallthrough
	case 6:
		h ^= uint64(b[5]) << 40
		fallthrough
	case 5:
		h ^= uint64(b[4]) << 32
		fallthrough
	case 4:
		h ^= uint64(b[3]) << 24
		fallthrough
	case 3:
		h ^= uint64(b[2]) << 16
		fallthrough
	case 2:
		h ^= uint64(b[1]) << 8
		fallthrough
	case 1:
		h ^= uint64(b[0])
		h *= mul
	}

	h = shiftMix(h) * mul
	h = shiftMix(h)
	return h
}

func shiftMix(v uint64) uint64 {
	return v ^ (v >> 47)
}
