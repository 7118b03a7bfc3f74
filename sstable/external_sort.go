// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package sstable

import (
	"os"
	"sort"

	"github.com/cantera/table/internal/base"
	"github.com/cantera/table/internal/varint"
)

// keyPrefixLen is the width of the in-memory sort key used to order
// spilled rows before a full-key disk tiebreak; rows sharing a 24-byte
// prefix fall back to re-reading their full keys off disk.
const keyPrefixLen = 24

type spillEntry struct {
	prefix    [keyPrefixLen]byte
	fileOff   int64
	keySize   int
	valueSize int
}

// SortingBuilder accepts rows in arbitrary order, spills them to an
// anonymous temp file, and on Sync sorts by key and replays them into an
// inner write-once Builder (C5). Grounded on the external sort stage used
// ahead of summary/index table construction, where upstream rows are not
// already key-ordered.
type SortingBuilder struct {
	opts WriterOptions
	path string

	spill    *os.File
	spillOff int64
	entries  []spillEntry

	finished bool
}

// NewSortingBuilder opens a spill file in dir (os.TempDir() if empty) and
// returns a builder that will publish the final sorted table at path once
// Sync succeeds.
func NewSortingBuilder(path, dir string, opts WriterOptions) (*SortingBuilder, error) {
	f, err := os.CreateTemp(dir, "cantera-table-sort-*")
	if err != nil {
		return nil, base.IoErrorf("create spill file", dir, err)
	}
	// The spill file only needs to exist for the lifetime of this
	// process; unlink it immediately so a crash never leaves scratch
	// data behind.
	os.Remove(f.Name())

	return &SortingBuilder{
		opts:  opts,
		path:  path,
		spill: f,
	}, nil
}

// InsertRow appends a row in any order; it is spilled to disk
// immediately and indexed in memory by a 24-byte key prefix.
func (b *SortingBuilder) InsertRow(key, value []byte) error {
	if b.finished {
		return base.InvalidErrorf("InsertRow called after Sync/Abort")
	}

	var rec []byte
	rec = varint.Put(rec, uint64(len(key)))
	rec = varint.Put(rec, uint64(len(value)))
	rec = append(rec, key...)
	rec = append(rec, value...)

	off := b.spillOff
	if _, err := b.spill.WriteAt(rec, off); err != nil {
		return base.IoErrorf("write spill record", "", err)
	}
	b.spillOff += int64(len(rec))

	e := spillEntry{fileOff: off, keySize: len(key), valueSize: len(value)}
	n := copy(e.prefix[:], key)
	for i := n; i < keyPrefixLen; i++ {
		e.prefix[i] = 0
	}
	b.entries = append(b.entries, e)
	return nil
}

func (b *SortingBuilder) readKey(e spillEntry) ([]byte, error) {
	// The record header (two varints) precedes the key; recompute its
	// width rather than storing it, since it is cheap to re-derive and
	// keeps spillEntry small.
	hdrMax := varint.Space(uint64(e.keySize)) + varint.Space(uint64(e.valueSize))
	buf := make([]byte, hdrMax+e.keySize)
	n, err := b.spill.ReadAt(buf, e.fileOff)
	if err != nil && n < len(buf) {
		return nil, base.IoErrorf("read spill record", "", err)
	}

	_, used, err := varint.Get(buf)
	if err != nil {
		return nil, base.CorruptErrorf("spill", "key size: %s", err)
	}
	_, used2, err := varint.Get(buf[used:])
	if err != nil {
		return nil, base.CorruptErrorf("spill", "value size: %s", err)
	}
	hdrLen := used + used2
	return buf[hdrLen : hdrLen+e.keySize], nil
}

func (b *SortingBuilder) readRow(e spillEntry) ([]byte, []byte, error) {
	hdrMax := varint.Space(uint64(e.keySize)) + varint.Space(uint64(e.valueSize))
	buf := make([]byte, hdrMax+e.keySize+e.valueSize)
	n, err := b.spill.ReadAt(buf, e.fileOff)
	if err != nil && n < len(buf) {
		return nil, nil, base.IoErrorf("read spill record", "", err)
	}

	_, used, err := varint.Get(buf)
	if err != nil {
		return nil, nil, base.CorruptErrorf("spill", "key size: %s", err)
	}
	_, used2, err := varint.Get(buf[used:])
	if err != nil {
		return nil, nil, base.CorruptErrorf("spill", "value size: %s", err)
	}
	hdrLen := used + used2
	key := buf[hdrLen : hdrLen+e.keySize]
	value := buf[hdrLen+e.keySize : hdrLen+e.keySize+e.valueSize]
	return key, value, nil
}

// Sync sorts the spilled rows by key (prefix comparison, falling back to
// a full-key disk read on a tie) and replays them, in order, into a fresh
// inner Builder, which then performs the normal block/index/atomic-publish
// sequence.
func (b *SortingBuilder) Sync() error {
	if b.finished {
		return base.InvalidErrorf("Sync called twice")
	}
	b.finished = true
	defer b.spill.Close()

	var sortErr error
	sort.SliceStable(b.entries, func(i, j int) bool {
		if sortErr != nil {
			return false
		}
		c := base.Compare(b.entries[i].prefix[:], b.entries[j].prefix[:])
		if c != 0 {
			return c < 0
		}
		ki, err := b.readKey(b.entries[i])
		if err != nil {
			sortErr = err
			return false
		}
		kj, err := b.readKey(b.entries[j])
		if err != nil {
			sortErr = err
			return false
		}
		return base.Compare(ki, kj) < 0
	})
	if sortErr != nil {
		return sortErr
	}

	inner, err := Create(b.path, b.opts)
	if err != nil {
		return err
	}
	for _, e := range b.entries {
		key, value, err := b.readRow(e)
		if err != nil {
			inner.Abort()
			return err
		}
		if err := inner.InsertRow(key, value); err != nil {
			inner.Abort()
			return err
		}
	}
	return inner.Sync()
}

// Abort discards all spilled data without publishing anything.
func (b *SortingBuilder) Abort() error {
	if b.finished {
		return nil
	}
	b.finished = true
	return b.spill.Close()
}
