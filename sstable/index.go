// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package sstable

import (
	"sort"

	"github.com/cantera/table/internal/base"
	"github.com/cantera/table/internal/varint"
)

// blockMeta describes one block's placement and contents in the index
// trailer.
type blockMeta struct {
	compressedSize uint64
	rowCount       uint64
	lastKey        []byte

	// blockOffset is the absolute file offset of this block's first
	// byte; computed on load by cumulative sum, not stored.
	blockOffset uint64
	// rowsBefore is the number of rows in all preceding blocks; also
	// computed on load.
	rowsBefore uint64
}

// blockIndex is the fully-decoded index trailer.
type blockIndex struct {
	blocks []blockMeta
}

func marshalBlockIndex(blocks []blockMeta) []byte {
	var buf []byte
	buf = varint.Put(buf, uint64(len(blocks)))
	for _, b := range blocks {
		buf = varint.Put(buf, b.compressedSize)
	}
	for _, b := range blocks {
		buf = varint.Put(buf, b.rowCount)
	}
	for _, b := range blocks {
		buf = varint.Put(buf, uint64(len(b.lastKey)))
	}
	for _, b := range blocks {
		buf = append(buf, b.lastKey...)
	}
	return buf
}

func unmarshalBlockIndex(buf []byte, firstBlockOffset uint64) (blockIndex, error) {
	n, used, err := varint.Get(buf)
	if err != nil {
		return blockIndex{}, base.CorruptErrorf("index", "num_blocks: %s", err)
	}
	buf = buf[used:]

	sizes, used, err := varint.GetArray(buf, int(n))
	if err != nil {
		return blockIndex{}, base.CorruptErrorf("index", "compressed sizes: %s", err)
	}
	buf = buf[used:]

	rowCounts, used, err := varint.GetArray(buf, int(n))
	if err != nil {
		return blockIndex{}, base.CorruptErrorf("index", "row counts: %s", err)
	}
	buf = buf[used:]

	keySizes, used, err := varint.GetArray(buf, int(n))
	if err != nil {
		return blockIndex{}, base.CorruptErrorf("index", "last key sizes: %s", err)
	}
	buf = buf[used:]

	blocks := make([]blockMeta, n)
	offset := firstBlockOffset
	var rowsBefore uint64
	for i := range blocks {
		ks := int(keySizes[i])
		if ks > len(buf) {
			return blockIndex{}, base.CorruptErrorf("index", "truncated last key bytes")
		}
		blocks[i] = blockMeta{
			compressedSize: sizes[i],
			rowCount:       rowCounts[i],
			lastKey:        buf[:ks],
			blockOffset:    offset,
			rowsBefore:     rowsBefore,
		}
		buf = buf[ks:]
		offset += sizes[i]
		rowsBefore += rowCounts[i]
	}
	return blockIndex{blocks: blocks}, nil
}

// findBlockByKey returns the index of the first block whose last key is
// >= k, and whether such a block exists (false when k is greater than
// every last key in the index).
func (idx blockIndex) findBlockByKey(k []byte) (int, bool) {
	i := sort.Search(len(idx.blocks), func(i int) bool {
		return base.Compare(idx.blocks[i].lastKey, k) >= 0
	})
	return i, i < len(idx.blocks)
}

func (idx blockIndex) totalRows() uint64 {
	var n uint64
	for _, b := range idx.blocks {
		n += b.rowCount
	}
	return n
}
