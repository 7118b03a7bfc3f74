// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package merge

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cantera/table"
	"github.com/cantera/table/sstable"
)

func buildSimpleTable(t *testing.T, rows [][2]string) table.Table {
	t.Helper()
	path := filepath.Join(t.TempDir(), "t.sst")
	b, err := sstable.Create(path, sstable.WriterOptions{NoFSync: true})
	require.NoError(t, err)
	for _, r := range rows {
		require.NoError(t, b.InsertRow([]byte(r[0]), []byte(r[1])))
	}
	require.NoError(t, b.Sync())

	r, err := sstable.Open(path, sstable.ReaderOptions{})
	require.NoError(t, err)
	return r
}

func TestMergeInterleaved(t *testing.T) {
	t1 := buildSimpleTable(t, [][2]string{{"a", "1"}, {"c", "3"}})
	t2 := buildSimpleTable(t, [][2]string{{"b", "2"}, {"d", "4"}})
	defer t1.Close()
	defer t2.Close()

	var keys []string
	var vals []string
	err := Merge([]table.Table{t1, t2}, func(k, v []byte) error {
		keys = append(keys, string(k))
		vals = append(vals, string(v))
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b", "c", "d"}, keys)
	require.Equal(t, []string{"1", "2", "3", "4"}, vals)
}

// Mirrors S6: both tables contribute a posting for key "a"; a merge must
// surface every value for the duplicated key, earlier table first.
func TestMergeGroupedDuplicateKeys(t *testing.T) {
	t1 := buildSimpleTable(t, [][2]string{{"a", "posting-1"}})
	t2 := buildSimpleTable(t, [][2]string{{"a", "posting-2"}})
	defer t1.Close()
	defer t2.Close()

	type group struct {
		key    string
		values []string
	}
	var groups []group
	err := MergeGrouped([]table.Table{t1, t2}, func(k []byte, vs [][]byte) error {
		g := group{key: string(k)}
		for _, v := range vs {
			g.values = append(g.values, string(v))
		}
		groups = append(groups, g)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, groups, 1)
	require.Equal(t, "a", groups[0].key)
	require.Equal(t, []string{"posting-1", "posting-2"}, groups[0].values)
}

func TestMergeEmptyInputs(t *testing.T) {
	err := Merge(nil, func(k, v []byte) error {
		t.Fatal("callback should not run")
		return nil
	})
	require.NoError(t, err)
}
