// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package sstable

import (
	"os"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/cantera/table/internal/base"
)

// Reader is the non-seekable write-once table reader (C4): pread-based,
// blocks are fully decoded on demand and cached one-deep, matching the
// spec's explicit "LRU 1 entry is enough" note. Offset() is unsupported;
// use a SeekableReader for byte-offset addressing.
type Reader struct {
	opts ReaderOptions
	log  *zap.Logger

	fio *base.FileIO
	h   header
	idx blockIndex

	cache *lru.Cache[int, []Row]

	curBlock int
	curEntry int
}

// Open opens path as a non-seekable Reader. It fails with Invalid if
// the file was built with the seekable flag set; use OpenSeekable there.
func Open(path string, opts ReaderOptions) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, base.IoErrorf("open", path, err)
	}
	fio := base.NewFileIO(f)

	hdrBuf := make([]byte, headerSize)
	if err := fio.PreadFull(hdrBuf, 0); err != nil {
		fio.Close()
		return nil, base.IoErrorf("read header", path, err)
	}
	h, err := decodeHeader(hdrBuf)
	if err != nil {
		fio.Close()
		return nil, err
	}
	if h.seekable() {
		fio.Close()
		return nil, base.InvalidErrorf("%s was built with seekable blocks; use OpenSeekable", path)
	}

	size, err := fio.Size()
	if err != nil {
		fio.Close()
		return nil, base.IoErrorf("stat", path, err)
	}
	if h.indexOffset > uint64(size) {
		fio.Close()
		return nil, base.CorruptErrorf("header", "index_offset %d past end of file (%d bytes)", h.indexOffset, size)
	}

	rawIndex := make([]byte, uint64(size)-h.indexOffset)
	if err := fio.PreadFull(rawIndex, int64(h.indexOffset)); err != nil {
		fio.Close()
		return nil, base.IoErrorf("read index", path, err)
	}
	indexBytes, err := decompressBlock(rawIndex, h.compression)
	if err != nil {
		fio.Close()
		return nil, err
	}
	idx, err := unmarshalBlockIndex(indexBytes, headerSize)
	if err != nil {
		fio.Close()
		return nil, err
	}

	cache, _ := lru.New[int, []Row](1)

	return &Reader{
		opts:  opts,
		log:   opts.logger(),
		fio:   fio,
		h:     h,
		idx:   idx,
		cache: cache,
	}, nil
}

// IsSorted always reports true: every reader this module implements
// yields rows in strictly increasing key order.
func (r *Reader) IsSorted() bool { return true }

// Close releases the underlying file descriptor.
func (r *Reader) Close() error {
	return r.fio.Close()
}

func (r *Reader) loadBlock(i int) ([]Row, error) {
	if rows, ok := r.cache.Get(i); ok {
		return rows, nil
	}

	meta := r.idx.blocks[i]
	raw := make([]byte, meta.compressedSize)
	if err := r.fio.PreadFull(raw, int64(meta.blockOffset)); err != nil {
		return nil, base.IoErrorf("read block", "", err)
	}
	decompressed, err := decompressBlock(raw, r.h.compression)
	if err != nil {
		return nil, err
	}
	rows, err := unmarshalCompactBlock(decompressed)
	if err != nil {
		return nil, err
	}

	r.cache.Add(i, rows)
	return rows, nil
}

// SeekToKey binary-searches the block index for the first block whose
// last key is >= k, decodes that block, and binary-searches within it.
func (r *Reader) SeekToKey(k []byte) (bool, error) {
	i, found := r.idx.findBlockByKey(k)
	if !found {
		r.curBlock = len(r.idx.blocks)
		r.curEntry = 0
		return false, nil
	}

	rows, err := r.loadBlock(i)
	if err != nil {
		return false, err
	}

	lo, hi := 0, len(rows)
	for lo < hi {
		mid := (lo + hi) / 2
		if base.Compare(rows[mid].Key, k) < 0 {
			lo = mid + 1
		} else {
			hi = mid
		}
	}

	r.curBlock = i
	r.curEntry = lo
	return lo < len(rows) && base.Compare(rows[lo].Key, k) == 0, nil
}

// ReadRow returns the entry under the cursor and advances it.
func (r *Reader) ReadRow() ([]byte, []byte, bool, error) {
	for r.curBlock < len(r.idx.blocks) {
		rows, err := r.loadBlock(r.curBlock)
		if err != nil {
			return nil, nil, false, err
		}
		if r.curEntry < len(rows) {
			row := rows[r.curEntry]
			r.curEntry++
			return row.Key, row.Value, true, nil
		}
		r.curBlock++
		r.curEntry = 0
	}
	return nil, nil, false, nil
}
