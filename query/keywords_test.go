// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package query

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadKeywords(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "keywords.yaml")
	content := "ephemeral:\n  - daily-\n  - session-\ntimestamped:\n  - last-seen\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	kw, err := LoadKeywords(path)
	require.NoError(t, err)

	require.True(t, kw.IsEphemeral("daily-total"))
	require.True(t, kw.IsEphemeral("session-count"))
	require.False(t, kw.IsEphemeral("static-field"))

	require.True(t, kw.IsTimestamped("last-seen"))
	require.False(t, kw.IsTimestamped("daily-total"))
}

func TestLoadKeywordsRegexEntry(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "keywords.yaml")
	content := "ephemeral:\n  - \"date:\"\n  - \"/^price-[0-9]+$/\"\ntimestamped:\n  - \"timestamp:\"\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	kw, err := LoadKeywords(path)
	require.NoError(t, err)

	require.True(t, kw.IsEphemeral("date:2026-07-30"))
	require.True(t, kw.IsEphemeral("price-42"))
	require.False(t, kw.IsEphemeral("price-abc"))
	require.False(t, kw.IsEphemeral("unrelated"))
}
