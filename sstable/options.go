// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Package sstable implements the write-once table format: a key-ordered,
// immutable, block-structured file with a block index trailer, pluggable
// zstd block compression, and both sequential (pread) and seekable (mmap)
// readers.
package sstable

import (
	"go.uber.org/zap"

	"github.com/cantera/table/internal/base"
)

const (
	// blockSizeMax is the soft ceiling on a block's estimated serialized
	// size before the builder flushes it.
	blockSizeMax = 32 * 1024

	// entrySizeLimit is the row-size threshold above which a row starts
	// its own block, unless the current block is still under
	// blockSizeMin.
	entrySizeLimit = blockSizeMax - 4

	// blockSizeMin is the soft floor below which an oversized row is
	// still folded into the current block rather than starting a new
	// one.
	blockSizeMin = 12 * 1024
)

const (
	magic = uint64(0x6c6261742e692e70)

	majorVersion = 4
	maxMajorVersionReadable = 4
	minorVersion = 0

	headerSize = 24

	flagSeekable uint8 = 1 << 0
	flagExtended uint8 = 1 << 1
)

// WriterOptions configures a Builder.
type WriterOptions struct {
	// Seekable selects the seekable (per-row-offset) block layout used
	// for summary tables, versus the compact layout used for index
	// tables.
	Seekable bool

	// Compression selects the block/index compression codec.
	Compression base.Compression

	// CompressionLevel is the zstd level used when Compression is
	// CompressionZstd; 0 selects base.DefaultCompressionLevel.
	CompressionLevel int

	// NoFSync skips the fsync before atomic publish; only useful for
	// tests and scratch tables that tolerate loss on crash.
	NoFSync bool

	Logger *zap.Logger
}

func (o WriterOptions) compressionLevel() int {
	if o.CompressionLevel != 0 {
		return o.CompressionLevel
	}
	return base.DefaultCompressionLevel
}

func (o WriterOptions) logger() *zap.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return zap.NewNop()
}

// ReaderOptions configures a Reader or SeekableReader.
type ReaderOptions struct {
	Logger *zap.Logger
}

func (o ReaderOptions) logger() *zap.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return zap.NewNop()
}
