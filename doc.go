// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Package table implements Cantera Table, a key-ordered, immutable,
// block-structured storage format together with a posting-list codec,
// k-way merge, schema loader and boolean query engine built on top of it.
//
// A table is either opened for reading or created for writing, never
// both. Writers require strictly increasing keys; readers never observe a
// partially-written file, since publication is atomic (see
// internal/base.PendingFile).
//
// To build a table:
//
//	b, err := table.Create("shard-00.wo", table.WriterOptions{}, table.RuntimeConfig{})
//	if err != nil { ... }
//	if err := b.InsertRow([]byte("a"), []byte("1")); err != nil { ... }
//	if err := b.Sync(); err != nil { ... }
//
// To read it back:
//
//	r, err := table.Open("shard-00.wo", table.RuntimeConfig{})
//	if err != nil { ... }
//	defer r.Close()
//	if ok, err := r.SeekToKey([]byte("a")); err != nil {
//		...
//	} else if ok {
//		key, value, ok, err := r.ReadRow()
//		...
//	}
package table
