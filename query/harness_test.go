// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package query

import (
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cantera/table"
	"github.com/cantera/table/posting"
	"github.com/cantera/table/sstable"
)

// buildIndexTable builds a compact-layout table whose rows map keys to
// encoded posting lists.
func buildIndexTable(t *testing.T, rows map[string][]posting.Entry) table.Table {
	t.Helper()
	keys := make([]string, 0, len(rows))
	for k := range rows {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	path := filepath.Join(t.TempDir(), "index.sst")
	b, err := sstable.Create(path, sstable.WriterOptions{NoFSync: true})
	require.NoError(t, err)
	for _, k := range keys {
		require.NoError(t, b.InsertRow([]byte(k), posting.Encode(rows[k])))
	}
	require.NoError(t, b.Sync())

	r, err := sstable.Open(path, sstable.ReaderOptions{})
	require.NoError(t, err)
	return r
}

// buildSummaryTable builds a seekable-layout table from key/JSON-body
// rows, in key order.
func buildSummaryTable(t *testing.T, rows [][2]string) table.SeekableTable {
	t.Helper()
	path := filepath.Join(t.TempDir(), "summary.sst")
	b, err := sstable.Create(path, sstable.WriterOptions{Seekable: true, NoFSync: true})
	require.NoError(t, err)
	for _, r := range rows {
		require.NoError(t, b.InsertRow([]byte(r[0]), []byte(r[1])))
	}
	require.NoError(t, b.Sync())

	r, err := sstable.OpenSeekable(path, sstable.ReaderOptions{})
	require.NoError(t, err)
	return r
}
