// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package sstable

import (
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/iterator"
	"github.com/syndtr/goleveldb/leveldb/opt"

	"github.com/cantera/table/internal/base"
)

// leveldbMagic is the trailing 8 bytes of a LevelDB table file's footer.
// Nothing in this package reads it; the root package's format sniffing
// keeps its own copy of the value (leveldbFooterMagic).
const leveldbMagic = uint64(0xdb4775248b80fb57)

// LevelDBReader adapts a github.com/syndtr/goleveldb database directory
// to the Table interface, fulfilling C10's "LevelDB backend" with a
// concrete, read-only implementation. It is opened read-only: this
// module never writes LevelDB-format tables, only reads them for
// migration/interop with stores built by older tooling.
type LevelDBReader struct {
	db   *leveldb.DB
	iter iterator.Iterator

	exhausted bool
	// skipNext is set after a successful SeekToKey/initial positioning so
	// the following ReadRow reads the already-positioned entry instead of
	// advancing past it.
	skipNext bool
}

// OpenLevelDB opens the LevelDB database at path read-only and returns a
// Table positioned before the first row.
func OpenLevelDB(path string) (*LevelDBReader, error) {
	db, err := leveldb.OpenFile(path, &opt.Options{ReadOnly: true})
	if err != nil {
		return nil, base.IoErrorf("open leveldb", path, err)
	}
	return &LevelDBReader{
		db:   db,
		iter: db.NewIterator(nil, nil),
	}, nil
}

func (r *LevelDBReader) IsSorted() bool { return true }

func (r *LevelDBReader) Close() error {
	r.iter.Release()
	return r.db.Close()
}

// SeekToKey repositions to the first key >= k.
func (r *LevelDBReader) SeekToKey(k []byte) (bool, error) {
	ok := r.iter.Seek(k)
	if !ok {
		r.exhausted = true
		r.skipNext = false
		return false, r.iter.Error()
	}
	r.exhausted = false
	r.skipNext = true
	return base.Compare(r.iter.Key(), k) == 0, r.iter.Error()
}

// ReadRow returns the entry under the cursor and advances it.
func (r *LevelDBReader) ReadRow() ([]byte, []byte, bool, error) {
	if r.exhausted {
		return nil, nil, false, nil
	}

	if r.skipNext {
		r.skipNext = false
	} else if !r.iter.Next() {
		r.exhausted = true
		return nil, nil, false, r.iter.Error()
	}

	if err := r.iter.Error(); err != nil {
		return nil, nil, false, base.IoErrorf("iterate leveldb", "", err)
	}

	key := append([]byte(nil), r.iter.Key()...)
	value := append([]byte(nil), r.iter.Value()...)
	return key, value, true, nil
}
