// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package sstable

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cantera/table/internal/base"
)

func buildTable(t *testing.T, path string, opts WriterOptions, rows [][2]string) {
	t.Helper()
	b, err := Create(path, opts)
	require.NoError(t, err)
	for _, r := range rows {
		require.NoError(t, b.InsertRow([]byte(r[0]), []byte(r[1])))
	}
	require.NoError(t, b.Sync())
}

// S1: build four rows, seek to a mix of present/absent keys.
func TestSeekToKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "t1.sst")
	buildTable(t, path, WriterOptions{NoFSync: true}, [][2]string{
		{"a", "xxx"}, {"b", "yyy"}, {"c", "zzz"}, {"d", "www"},
	})

	r, err := Open(path, ReaderOptions{})
	require.NoError(t, err)
	defer r.Close()

	ok, err := r.SeekToKey([]byte("a"))
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = r.SeekToKey([]byte("D"))
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = r.SeekToKey([]byte("c"))
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = r.SeekToKey([]byte("b"))
	require.NoError(t, err)
	require.True(t, ok)
	_, v, ok, err := r.ReadRow()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "yyy", string(v))
}

// S2: build from unsorted input via the external sorter; result is
// sorted and seekable.
func TestSortingBuilder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "t2.sst")
	b, err := NewSortingBuilder(path, "", WriterOptions{NoFSync: true})
	require.NoError(t, err)

	unsorted := [][2]string{{"a", "1"}, {"c", "3"}, {"d", "4"}, {"b", "2"}}
	for _, r := range unsorted {
		require.NoError(t, b.InsertRow([]byte(r[0]), []byte(r[1])))
	}
	require.NoError(t, b.Sync())

	r, err := Open(path, ReaderOptions{})
	require.NoError(t, err)
	defer r.Close()

	var keys []string
	for {
		k, _, ok, err := r.ReadRow()
		require.NoError(t, err)
		if !ok {
			break
		}
		keys = append(keys, string(k))
	}
	require.Equal(t, []string{"a", "b", "c", "d"}, keys)

	ok, err := r.SeekToKey([]byte("b"))
	require.NoError(t, err)
	require.True(t, ok)
}

// S3: out-of-order insert is rejected.
func TestInsertRowOutOfOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "t3.sst")
	b, err := Create(path, WriterOptions{NoFSync: true})
	require.NoError(t, err)

	require.NoError(t, b.InsertRow([]byte("a"), []byte("1")))
	require.NoError(t, b.InsertRow([]byte("b"), []byte("2")))
	require.NoError(t, b.InsertRow([]byte("c"), []byte("3")))

	err = b.InsertRow([]byte("c"), []byte("4"))
	require.Error(t, err)
	var outOfOrder *base.OutOfOrder
	require.ErrorAs(t, err, &outOfOrder)

	require.NoError(t, b.Abort())
}

// S4: an empty build yields a table with zero rows.
func TestEmptyBuild(t *testing.T) {
	path := filepath.Join(t.TempDir(), "t4.sst")
	b, err := Create(path, WriterOptions{NoFSync: true})
	require.NoError(t, err)
	require.True(t, b.empty())
	require.NoError(t, b.Sync())

	r, err := Open(path, ReaderOptions{})
	require.NoError(t, err)
	defer r.Close()

	_, _, ok, err := r.ReadRow()
	require.NoError(t, err)
	require.False(t, ok)
}

// S5: a dropped, unsynced builder never publishes anything at its final
// path.
func TestAbortLeavesNoFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "t5.sst")
	b, err := Create(path, WriterOptions{NoFSync: true})
	require.NoError(t, err)
	require.NoError(t, b.InsertRow([]byte("a"), []byte("1")))
	require.NoError(t, b.Abort())

	_, err = os.Stat(path)
	require.True(t, os.IsNotExist(err))
}

func TestSeekableReaderOffsetAndSeek(t *testing.T) {
	path := filepath.Join(t.TempDir(), "t6.sst")
	buildTable(t, path, WriterOptions{Seekable: true, NoFSync: true}, [][2]string{
		{"a", "1"}, {"b", "2"}, {"c", "3"},
	})

	r, err := OpenSeekable(path, ReaderOptions{})
	require.NoError(t, err)
	defer r.Close()

	k, _, ok, err := r.ReadRow()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "a", string(k))

	off, err := r.Offset()
	require.NoError(t, err)

	k, _, ok, err = r.ReadRow()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "b", string(k))

	resumed, err := r.Seek(int64(off), 0)
	require.NoError(t, err)
	require.Equal(t, off, resumed)

	k, _, ok, err = r.ReadRow()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "b", string(k))
}

func TestLargeTableSpansMultipleBlocks(t *testing.T) {
	path := filepath.Join(t.TempDir(), "t7.sst")
	b, err := Create(path, WriterOptions{NoFSync: true})
	require.NoError(t, err)

	const n = 5000
	value := make([]byte, 64)
	for i := 0; i < n; i++ {
		key := []byte{byte(i >> 24), byte(i >> 16), byte(i >> 8), byte(i)}
		require.NoError(t, b.InsertRow(key, value))
	}
	require.NoError(t, b.Sync())

	r, err := Open(path, ReaderOptions{})
	require.NoError(t, err)
	defer r.Close()

	count := 0
	for {
		_, _, ok, err := r.ReadRow()
		require.NoError(t, err)
		if !ok {
			break
		}
		count++
	}
	require.Equal(t, n, count)
	require.Greater(t, len(r.idx.blocks), 1)
}
