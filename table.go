// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package table

import "github.com/cantera/table/internal/base"

// Table is the minimal capability set every backend (write-once compact,
// write-once seekable, LevelDB adapter) implements.
type Table interface {
	// SeekToKey positions the cursor at the first entry >= k. It reports
	// true iff that entry's key equals k exactly.
	SeekToKey(k []byte) (bool, error)

	// ReadRow returns the entry under the cursor and advances it. ok is
	// false once the table is exhausted.
	ReadRow() (key, value []byte, ok bool, err error)

	// IsSorted reports whether rows are guaranteed to be read back in
	// strictly increasing key order. Every reader implemented by this
	// module is sorted; the capability exists so callers (notably the
	// k-way merge) can assert it the way the original did.
	IsSorted() bool

	// Close releases resources held by the table.
	Close() error
}

// Builder is the write path capability set.
type Builder interface {
	// InsertRow appends a row. key must be strictly greater than the
	// previously inserted key.
	InsertRow(key, value []byte) error

	// Sync flushes all buffered data, writes the block index and header,
	// fsyncs (unless disabled), and atomically publishes the file at its
	// final path. Sync is irreversible; the builder cannot be used
	// afterwards.
	Sync() error

	// Abort discards the builder without publishing anything at the
	// final path.
	Abort() error
}

// SeekableTable extends Table with byte-offset addressing, used for
// summary tables whose rows are referenced by postings via a global,
// base-offset-partitioned offset space.
type SeekableTable interface {
	Table

	// Offset returns the current cursor's byte offset from the start of
	// the row stream (i.e. excluding the fixed header).
	Offset() (uint64, error)

	// Seek repositions the cursor to a raw byte offset, interpreted per
	// whence (io.SeekStart, io.SeekCurrent, io.SeekEnd).
	Seek(offset int64, whence int) (uint64, error)

	// Skip advances the cursor by n rows without necessarily decoding
	// the blocks in between.
	Skip(n int) error
}

// TableCompression is the closed block-compression enum from the table
// header.
type TableCompression = base.Compression

const (
	CompressionNone = base.CompressionNone
	CompressionZstd = base.CompressionZstd
)
