// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package schema

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cantera/table"
	"github.com/cantera/table/sstable"
)

func writeManifestTable(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	b, err := sstable.Create(path, sstable.WriterOptions{NoFSync: true})
	require.NoError(t, err)
	require.NoError(t, b.InsertRow([]byte("a"), []byte("1")))
	require.NoError(t, b.Sync())
	return path
}

func TestLoadAndOpenTables(t *testing.T) {
	dir := t.TempDir()
	summaryPath := writeManifestTable(t, dir, "summary.sst")
	overridePath := writeManifestTable(t, dir, "override.sst")
	indexPath := writeManifestTable(t, dir, "index.sst")
	tsPath := writeManifestTable(t, dir, "ts.sst")

	manifestPath := filepath.Join(dir, "manifest.tsv")
	content := fmt.Sprintf(
		"# comment line\nsummary\t%s\t1000\nsummary-override\t%s\nindex\t%s\ntime-series\t%s\tprefix-\n",
		summaryPath, overridePath, indexPath, tsPath)
	require.NoError(t, os.WriteFile(manifestPath, []byte(content), 0o644))

	s, err := Load(manifestPath, table.RuntimeConfig{})
	require.NoError(t, err)
	defer s.Close()

	summaries, err := s.SummaryTables()
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	require.Equal(t, uint64(1000), summaries[0].Offset)

	overrides, err := s.SummaryOverrideTables()
	require.NoError(t, err)
	require.Len(t, overrides, 1)

	indexes, err := s.IndexTables()
	require.NoError(t, err)
	require.Len(t, indexes, 1)

	ts, err := s.TimeSeriesTables()
	require.NoError(t, err)
	require.Len(t, ts, 1)
	require.Equal(t, "prefix-", ts[0].Prefix)
}

func TestLoadUnknownKind(t *testing.T) {
	dir := t.TempDir()
	manifestPath := filepath.Join(dir, "manifest.tsv")
	require.NoError(t, os.WriteFile(manifestPath, []byte("bogus\tpath\n"), 0o644))

	_, err := Load(manifestPath, table.RuntimeConfig{})
	require.Error(t, err)
}
