// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package base

// Compression is the closed block-compression enum stored in the table
// header. It is defined here, rather than in the root package, so that
// both the root package and the sstable package can depend on it without
// creating an import cycle.
type Compression uint8

const (
	CompressionNone Compression = 0
	CompressionZstd Compression = 1
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionZstd:
		return "zstd"
	default:
		return "unknown"
	}
}

// DefaultCompressionLevel is the zstd level used when compression is
// enabled and the caller does not override it.
const DefaultCompressionLevel = 3
