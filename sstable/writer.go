// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package sstable

import (
	"go.uber.org/zap"

	"github.com/cantera/table/internal/base"
)

// Builder implements the write-once table builder (C3): buffered, sorted
// key/value ingestion into blocks, optional compression, an index
// trailer, and atomic publish on Sync. States are Open -> Writing ->
// Syncing -> Finished, and the transition is irreversible: once Sync or
// Abort has run the Builder must not be used again.
type Builder struct {
	opts WriterOptions
	path string
	log  *zap.Logger

	pending *base.PendingFile

	hasLastKey bool
	lastKey    []byte

	curRows []Row
	curSize int

	blocks []blockMeta

	writeOffset uint64 // absolute file offset, past the fixed header

	finished bool
}

// Create opens a new Builder that will publish at path once Sync
// succeeds.
func Create(path string, opts WriterOptions) (*Builder, error) {
	pf, err := base.CreatePendingFile(path)
	if err != nil {
		return nil, base.IoErrorf("create", path, err)
	}

	b := &Builder{
		opts:        opts,
		path:        path,
		log:         opts.logger(),
		pending:     pf,
		writeOffset: headerSize,
	}

	// Reserve the header; it is rewritten with the true index_offset and
	// flags in Sync.
	placeholder := header{
		majorVersion: majorVersion,
		minorVersion: minorVersion,
		flags:        b.flags(),
		compression:  opts.Compression,
		indexOffset:  0,
	}
	if err := b.pending.File().Truncate(headerSize); err != nil {
		pf.Abort()
		return nil, base.IoErrorf("truncate", path, err)
	}
	if _, err := b.pending.File().WriteAt(placeholder.encode(), 0); err != nil {
		pf.Abort()
		return nil, base.IoErrorf("write header", path, err)
	}

	return b, nil
}

func (b *Builder) flags() uint8 {
	var f uint8
	if b.opts.Seekable {
		f |= flagSeekable
	}
	return f
}

// InsertRow appends a row. key must be strictly greater than the
// previously inserted key.
func (b *Builder) InsertRow(key, value []byte) error {
	if b.finished {
		return base.InvalidErrorf("InsertRow called after Sync/Abort")
	}
	if b.hasLastKey && base.Compare(key, b.lastKey) <= 0 {
		return base.OutOfOrderError(b.lastKey, key)
	}

	// Defensive copies: callers frequently reuse key/value buffers across
	// calls (e.g. when reading from an upstream iterator).
	k := append([]byte(nil), key...)
	v := append([]byte(nil), value...)

	rowSize := estimateBlockSize([]Row{{Key: k, Value: v}})
	if rowSize > entrySizeLimit && b.curSize >= blockSizeMin {
		if err := b.flushBlock(); err != nil {
			return err
		}
	}

	b.curRows = append(b.curRows, Row{Key: k, Value: v})
	b.curSize = estimateBlockSize(b.curRows)
	b.hasLastKey = true
	b.lastKey = k

	if b.curSize > blockSizeMax {
		if err := b.flushBlock(); err != nil {
			return err
		}
	}
	return nil
}

func (b *Builder) flushBlock() error {
	if len(b.curRows) == 0 {
		return nil
	}

	var raw []byte
	blockCompression := b.opts.Compression
	if b.opts.Seekable {
		// Seekable tables are addressed by raw byte offset into the
		// uncompressed row stream (see SeekableReader.Offset). Block
		// compression would decouple stored bytes from addressable
		// offsets, so seekable blocks are always stored uncompressed;
		// only the index trailer honors opts.Compression.
		raw = marshalSeekableBlock(b.curRows)
		blockCompression = base.CompressionNone
	} else {
		raw = marshalCompactBlock(b.curRows)
	}

	compressed, err := compressBlock(raw, blockCompression, b.opts.compressionLevel())
	if err != nil {
		return err
	}

	if _, err := b.pending.File().WriteAt(compressed, int64(b.writeOffset)); err != nil {
		return base.IoErrorf("write block", b.path, err)
	}

	b.blocks = append(b.blocks, blockMeta{
		compressedSize: uint64(len(compressed)),
		rowCount:       uint64(len(b.curRows)),
		lastKey:        b.curRows[len(b.curRows)-1].Key,
	})
	b.writeOffset += uint64(len(compressed))

	b.log.Debug("flushed block", zap.Int("rows", len(b.curRows)), zap.Int("compressed_bytes", len(compressed)))

	b.curRows = nil
	b.curSize = 0
	return nil
}

// Sync flushes the current block, writes the index trailer, rewrites the
// header with the true index_offset and flags, fsyncs (unless NoFSync),
// and atomically publishes the file. The Builder must not be used
// afterwards.
func (b *Builder) Sync() error {
	if b.finished {
		return base.InvalidErrorf("Sync called twice")
	}
	b.finished = true

	if err := b.flushBlock(); err != nil {
		b.pending.Abort()
		return err
	}

	indexOffset := b.writeOffset
	rawIndex := marshalBlockIndex(b.blocks)
	compressedIndex, err := compressBlock(rawIndex, b.opts.Compression, b.opts.compressionLevel())
	if err != nil {
		b.pending.Abort()
		return err
	}
	if _, err := b.pending.File().WriteAt(compressedIndex, int64(indexOffset)); err != nil {
		b.pending.Abort()
		return base.IoErrorf("write index", b.path, err)
	}

	h := header{
		majorVersion: majorVersion,
		minorVersion: minorVersion,
		flags:        b.flags(),
		compression:  b.opts.Compression,
		indexOffset:  indexOffset,
	}
	if _, err := b.pending.File().WriteAt(h.encode(), 0); err != nil {
		b.pending.Abort()
		return base.IoErrorf("rewrite header", b.path, err)
	}

	if !b.opts.NoFSync {
		if err := b.pending.Sync(); err != nil {
			b.pending.Abort()
			return base.IoErrorf("fsync", b.path, err)
		}
	}

	if err := b.pending.Finish(); err != nil {
		return err
	}

	b.log.Debug("published table", zap.String("path", b.path), zap.Int("blocks", len(b.blocks)))
	return nil
}

// Abort discards the builder without publishing anything at the final
// path.
func (b *Builder) Abort() error {
	if b.finished {
		return nil
	}
	b.finished = true
	return b.pending.Abort()
}

// empty reports whether no rows have ever been inserted and no blocks
// have been flushed; used by tests that exercise the empty-build
// scenario (S4).
func (b *Builder) empty() bool {
	return len(b.blocks) == 0 && len(b.curRows) == 0
}
