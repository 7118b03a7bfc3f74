// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package table

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOpenAnyAndOpenBackendAgree(t *testing.T) {
	path := filepath.Join(t.TempDir(), "t.sst")
	b, err := Create(path, WriterOptions{NoFSync: true}, RuntimeConfig{})
	require.NoError(t, err)
	require.NoError(t, b.InsertRow([]byte("a"), []byte("1")))
	require.NoError(t, b.Sync())

	viaAny, err := OpenAny(path, RuntimeConfig{})
	require.NoError(t, err)
	defer viaAny.Close()

	viaBackend, err := OpenBackend("write-once", path, RuntimeConfig{})
	require.NoError(t, err)
	defer viaBackend.Close()

	for _, r := range []Table{viaAny, viaBackend} {
		key, value, ok, err := r.ReadRow()
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, "a", string(key))
		require.Equal(t, "1", string(value))
	}
}

func TestOpenBackendUnknownName(t *testing.T) {
	_, err := OpenBackend("bogus", "/nonexistent", RuntimeConfig{})
	require.Error(t, err)
}

func TestOpenSeekableRejectsNonSeekableTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "t.sst")
	b, err := Create(path, WriterOptions{NoFSync: true}, RuntimeConfig{})
	require.NoError(t, err)
	require.NoError(t, b.InsertRow([]byte("a"), []byte("1")))
	require.NoError(t, b.Sync())

	_, err = OpenSeekable(path, RuntimeConfig{})
	require.Error(t, err)
}
