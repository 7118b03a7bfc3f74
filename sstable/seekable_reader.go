// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package sstable

import (
	"io"
	"os"

	"go.uber.org/zap"
	"golang.org/x/sys/unix"

	"github.com/cantera/table/internal/base"
)

// SeekableReader is the mmap-based write-once table reader (C4) used for
// summary tables, which are addressed by raw byte offset into the
// uncompressed row stream rather than by cursor alone. SeekToKey scans
// raw varints directly within the mapped region; no block is ever fully
// materialized into a []Row slice.
type SeekableReader struct {
	opts ReaderOptions
	log  *zap.Logger

	f    *os.File
	data []byte // mmap of the whole file
	h    header
	idx  blockIndex

	rowStreamEnd uint64 // absolute file offset where the index trailer begins

	curBlock int
	curOff   int // byte offset within the current block's payload
}

// OpenSeekable opens path as a SeekableReader. It fails with Invalid if
// the file was not built with the seekable flag set.
func OpenSeekable(path string, opts ReaderOptions) (*SeekableReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, base.IoErrorf("open", path, err)
	}

	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, base.IoErrorf("stat", path, err)
	}
	size := fi.Size()
	if size < headerSize {
		f.Close()
		return nil, base.CorruptErrorf("header", "file too small: %d bytes", size)
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, base.IoErrorf("mmap", path, err)
	}

	h, err := decodeHeader(data[:headerSize])
	if err != nil {
		unix.Munmap(data)
		f.Close()
		return nil, err
	}
	if !h.seekable() {
		unix.Munmap(data)
		f.Close()
		return nil, base.InvalidErrorf("%s was built without seekable blocks; use Open", path)
	}
	if h.indexOffset > uint64(size) {
		unix.Munmap(data)
		f.Close()
		return nil, base.CorruptErrorf("header", "index_offset %d past end of file (%d bytes)", h.indexOffset, size)
	}

	indexBytes, err := decompressBlock(data[h.indexOffset:], h.compression)
	if err != nil {
		unix.Munmap(data)
		f.Close()
		return nil, err
	}
	idx, err := unmarshalBlockIndex(indexBytes, headerSize)
	if err != nil {
		unix.Munmap(data)
		f.Close()
		return nil, err
	}

	return &SeekableReader{
		opts:         opts,
		log:          opts.logger(),
		f:            f,
		data:         data,
		h:            h,
		idx:          idx,
		rowStreamEnd: h.indexOffset,
	}, nil
}

func (r *SeekableReader) IsSorted() bool { return true }

func (r *SeekableReader) Close() error {
	if err := unix.Munmap(r.data); err != nil {
		r.f.Close()
		return base.IoErrorf("munmap", "", err)
	}
	return r.f.Close()
}

// blockBytes returns the raw (always uncompressed, per Builder) row
// payload for block i, checksum-verified and stripped of its trailing
// checksum, sliced directly out of the mmap region (CompressionNone
// never copies).
func (r *SeekableReader) blockBytes(i int) ([]byte, error) {
	m := r.idx.blocks[i]
	stored := r.data[m.blockOffset : m.blockOffset+m.compressedSize]
	return decompressBlock(stored, base.CompressionNone)
}

// SeekToKey scans blocks' last keys to find a candidate block, then
// linearly scans raw rows within it since no sorted in-block offset
// array is kept for the seekable layout.
func (r *SeekableReader) SeekToKey(k []byte) (bool, error) {
	i, found := r.idx.findBlockByKey(k)
	if !found {
		r.curBlock = len(r.idx.blocks)
		r.curOff = 0
		return false, nil
	}

	buf, err := r.blockBytes(i)
	if err != nil {
		return false, err
	}
	off := 0
	for off < len(buf) {
		row, next, err := seekableRowAt(buf, off)
		if err != nil {
			return false, err
		}
		if base.Compare(row.Key, k) >= 0 {
			r.curBlock = i
			r.curOff = off
			return base.Compare(row.Key, k) == 0, nil
		}
		off = next
	}

	// Every row in the candidate block sorted below k; since its last
	// key is >= k by construction, this cannot happen for a well-formed
	// table, but fail closed rather than wrap around.
	r.curBlock = i
	r.curOff = len(buf)
	return false, nil
}

// ReadRow returns the entry under the cursor and advances it.
func (r *SeekableReader) ReadRow() ([]byte, []byte, bool, error) {
	for r.curBlock < len(r.idx.blocks) {
		buf, err := r.blockBytes(r.curBlock)
		if err != nil {
			return nil, nil, false, err
		}
		if r.curOff >= len(buf) {
			r.curBlock++
			r.curOff = 0
			continue
		}
		row, next, err := seekableRowAt(buf, r.curOff)
		if err != nil {
			return nil, nil, false, err
		}
		r.curOff = next
		return row.Key, row.Value, true, nil
	}
	return nil, nil, false, nil
}

// Offset reports the cursor's current position as a byte offset into
// the uncompressed row stream, counted from the end of the header. This
// is the addressing scheme postings reference.
func (r *SeekableReader) Offset() (uint64, error) {
	if r.curBlock >= len(r.idx.blocks) {
		return r.rowStreamEnd - headerSize, nil
	}
	m := r.idx.blocks[r.curBlock]
	return (m.blockOffset - headerSize) + uint64(r.curOff), nil
}

// Seek repositions the cursor to the row beginning at the given
// row-stream byte offset, per whence (io.SeekStart/Current/End).
func (r *SeekableReader) Seek(offset int64, whence int) (uint64, error) {
	var origin int64
	switch whence {
	case io.SeekStart:
		origin = 0
	case io.SeekCurrent:
		cur, err := r.Offset()
		if err != nil {
			return 0, err
		}
		origin = int64(cur)
	case io.SeekEnd:
		origin = int64(r.rowStreamEnd - headerSize)
	default:
		return 0, base.InvalidErrorf("invalid whence %d", whence)
	}

	target := origin + offset
	if target < 0 || uint64(target) > r.rowStreamEnd-headerSize {
		return 0, base.InvalidErrorf("seek target %d out of range [0,%d]", target, r.rowStreamEnd-headerSize)
	}
	absTarget := headerSize + uint64(target)

	if absTarget == r.rowStreamEnd {
		r.curBlock = len(r.idx.blocks)
		r.curOff = 0
		return uint64(target), nil
	}

	for i, m := range r.idx.blocks {
		if absTarget >= m.blockOffset && absTarget < m.blockOffset+m.compressedSize {
			r.curBlock = i
			r.curOff = int(absTarget - m.blockOffset)
			return uint64(target), nil
		}
	}
	return 0, base.CorruptErrorf("seek", "offset %d does not land on a block boundary", target)
}

// Skip advances the cursor past n rows without returning them.
func (r *SeekableReader) Skip(n int) error {
	for i := 0; i < n; i++ {
		_, _, ok, err := r.ReadRow()
		if err != nil {
			return err
		}
		if !ok {
			return base.InvalidErrorf("Skip(%d) ran past end of table after %d rows", n, i)
		}
	}
	return nil
}
