// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package query

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cantera/table"
	"github.com/cantera/table/posting"
	"github.com/cantera/table/schema"
	"github.com/cantera/table/sstable"
)

func TestExecuteBasicRanking(t *testing.T) {
	summary := buildSummaryTable(t, [][2]string{
		{"doc-1", `{"title":"alpha"}`},
		{"doc-2", `{"title":"beta"}`},
		{"doc-3", `{"title":"gamma"}`},
	})
	defer summary.Close()

	// Posting offsets address rows by their byte position within the
	// summary table's row stream (base 0 here), in key order: doc-1,
	// doc-2, doc-3 start at byte offsets 0, len(row1), len(row1)+len(row2).
	off1, off2, off3 := seekRowOffsets(t, summary, "doc-1", "doc-2", "doc-3")

	idx := buildIndexTable(t, map[string][]posting.Entry{
		"topic:x": {{Offset: off1, Score: 1}, {Offset: off2, Score: 3}, {Offset: off3, Score: 2}},
	})
	defer idx.Close()

	ctx := &EvalContext{
		Summaries: []schema.SummaryTable{{Table: summary, Offset: 0}},
		Indexes:   []table.Table{idx},
	}

	out, err := Execute(&Request{Tree: Leaf("topic:x"), Limit: 10}, ctx)
	require.NoError(t, err)
	require.Contains(t, out, `"result-count":3`)
	// Highest score (doc-2, score 3) must render first.
	idxDoc2 := indexOf(t, out, `"title":"beta"`)
	idxDoc3 := indexOf(t, out, `"title":"gamma"`)
	idxDoc1 := indexOf(t, out, `"title":"alpha"`)
	require.True(t, idxDoc2 < idxDoc3)
	require.True(t, idxDoc3 < idxDoc1)
}

func TestExecuteOffsetBeyondResultsIsEmpty(t *testing.T) {
	summary := buildSummaryTable(t, [][2]string{{"doc-1", `{}`}})
	defer summary.Close()
	off1 := seekRowOffsets(t, summary, "doc-1")[0]
	idx := buildIndexTable(t, map[string][]posting.Entry{"k": {{Offset: off1, Score: 1}}})
	defer idx.Close()

	ctx := &EvalContext{
		Summaries: []schema.SummaryTable{{Table: summary, Offset: 0}},
		Indexes:   []table.Table{idx},
	}
	out, err := Execute(&Request{Tree: Leaf("k"), Limit: 10, Offset: 5}, ctx)
	require.NoError(t, err)
	require.Contains(t, out, `"result-count":0`)
}

func TestExecuteKeysOnly(t *testing.T) {
	summary := buildSummaryTable(t, [][2]string{{"doc-1", `{"title":"alpha"}`}})
	defer summary.Close()
	off1 := seekRowOffsets(t, summary, "doc-1")[0]
	idx := buildIndexTable(t, map[string][]posting.Entry{"k": {{Offset: off1, Score: 1}}})
	defer idx.Close()

	ctx := &EvalContext{
		Summaries: []schema.SummaryTable{{Table: summary, Offset: 0}},
		Indexes:   []table.Table{idx},
	}
	out, err := Execute(&Request{Tree: Leaf("k"), Limit: 10, KeysOnly: true}, ctx)
	require.NoError(t, err)
	require.Contains(t, out, `"doc-1"`)
	require.NotContains(t, out, "title")
}

func TestExecuteThresholdClauseRescoresAndFilters(t *testing.T) {
	summary := buildSummaryTable(t, [][2]string{
		{"doc-1", `{"title":"alpha"}`},
		{"doc-2", `{"title":"beta"}`},
		{"doc-3", `{"title":"gamma"}`},
	})
	defer summary.Close()
	offs := seekRowOffsets(t, summary, "doc-1", "doc-2", "doc-3")

	idx := buildIndexTable(t, map[string][]posting.Entry{
		"topic:x":    {{Offset: offs[0], Score: 1}, {Offset: offs[1], Score: 1}, {Offset: offs[2], Score: 1}},
		"last-seen:": {{Offset: offs[0], Score: 5}, {Offset: offs[1], Score: 50}, {Offset: offs[2], Score: 500}},
	})
	defer idx.Close()

	ctx := &EvalContext{
		Summaries: []schema.SummaryTable{{Table: summary, Offset: 0}},
		Indexes:   []table.Table{idx},
	}

	out, err := Execute(&Request{
		Tree:      Leaf("topic:x"),
		Limit:     10,
		Threshold: NewThresholdClause("last-seen:", []float64{0, 10, 100, 1000}),
	}, ctx)
	require.NoError(t, err)
	// doc-1 (5) falls in [0,10), doc-2 (50) in [10,100), doc-3 (500) in
	// [100,1000); all three survive, none excluded by the outer [0,1000)
	// bound.
	require.Contains(t, out, `"result-count":3`)
	require.Contains(t, out, `"title":"beta"`)
	// doc-2's bucket is index 2 of the [0,10,100,1000] boundaries ->
	// base-26 header key "AAAAC".
	require.Contains(t, out, `"_header_key":"AAAAC"`)
	require.Contains(t, out, `"_header":"10–100"`)
}

func TestExecuteThresholdClauseExcludesOutOfRange(t *testing.T) {
	summary := buildSummaryTable(t, [][2]string{
		{"doc-1", `{"title":"alpha"}`},
		{"doc-2", `{"title":"beta"}`},
	})
	defer summary.Close()
	offs := seekRowOffsets(t, summary, "doc-1", "doc-2")

	idx := buildIndexTable(t, map[string][]posting.Entry{
		"topic:x":    {{Offset: offs[0], Score: 1}, {Offset: offs[1], Score: 1}},
		"last-seen:": {{Offset: offs[0], Score: 5}, {Offset: offs[1], Score: 5000}},
	})
	defer idx.Close()

	ctx := &EvalContext{
		Summaries: []schema.SummaryTable{{Table: summary, Offset: 0}},
		Indexes:   []table.Table{idx},
	}

	out, err := Execute(&Request{
		Tree:      Leaf("topic:x"),
		Limit:     10,
		Threshold: NewThresholdClause("last-seen:", []float64{0, 10, 100}),
	}, ctx)
	require.NoError(t, err)
	// doc-2 (5000) falls outside the outer [0, 100) bound and is dropped.
	require.Contains(t, out, `"result-count":1`)
	require.Contains(t, out, `"title":"alpha"`)
	require.NotContains(t, out, `"title":"beta"`)
}

func TestExecuteThresholdClauseReverseHeaderKey(t *testing.T) {
	summary := buildSummaryTable(t, [][2]string{{"doc-1", `{"title":"alpha"}`}})
	defer summary.Close()
	off1 := seekRowOffsets(t, summary, "doc-1")[0]

	idx := buildIndexTable(t, map[string][]posting.Entry{
		"topic:x":    {{Offset: off1, Score: 1}},
		"last-seen:": {{Offset: off1, Score: 5}},
	})
	defer idx.Close()

	ctx := &EvalContext{
		Summaries: []schema.SummaryTable{{Table: summary, Offset: 0}},
		Indexes:   []table.Table{idx},
	}

	out, err := Execute(&Request{
		Tree:      Leaf("topic:x"),
		Limit:     10,
		Threshold: NewThresholdClause("~last-seen:", []float64{0, 10, 100, 1000}),
	}, ctx)
	require.NoError(t, err)
	// Bucket index 1 of the [0,10,100,1000] boundaries, reversed: 4-1=3,
	// which base-26-encodes to "AAAAD" (vs. "AAAAB" without the "~" flag).
	require.Contains(t, out, `"_header_key":"AAAAD"`)
}

func TestExecuteSummaryOverrideSplicing(t *testing.T) {
	summary := buildSummaryTable(t, [][2]string{{"doc-1", `{"title":"alpha"}`}})
	defer summary.Close()
	off1 := seekRowOffsets(t, summary, "doc-1")[0]

	overridePath := t.TempDir() + "/override.sst"
	ob, err := sstable.Create(overridePath, sstable.WriterOptions{NoFSync: true})
	require.NoError(t, err)
	require.NoError(t, ob.InsertRow([]byte("doc-1"), []byte(`{"flagged":true}`)))
	require.NoError(t, ob.Sync())
	override, err := sstable.Open(overridePath, sstable.ReaderOptions{})
	require.NoError(t, err)
	defer override.Close()

	idx := buildIndexTable(t, map[string][]posting.Entry{"k": {{Offset: off1, Score: 1}}})
	defer idx.Close()

	ctx := &EvalContext{
		Summaries: []schema.SummaryTable{{Table: summary, Offset: 0}},
		Indexes:   []table.Table{idx},
		Overrides: []table.Table{override},
	}
	out, err := Execute(&Request{Tree: Leaf("k"), Limit: 10}, ctx)
	require.NoError(t, err)
	require.Contains(t, out, `"flagged":true`)
}

// seekRowOffsets returns the byte offset of each named key's row within
// table t, restoring the cursor to the start of the stream afterwards is
// unnecessary since each SeekToKey repositions explicitly.
func seekRowOffsets(t *testing.T, tbl table.SeekableTable, keys ...string) []uint64 {
	t.Helper()
	out := make([]uint64, len(keys))
	for i, k := range keys {
		ok, err := tbl.SeekToKey([]byte(k))
		require.NoError(t, err)
		require.True(t, ok)
		off, err := tbl.Offset()
		require.NoError(t, err)
		out[i] = off
	}
	return out
}

func indexOf(t *testing.T, haystack, needle string) int {
	t.Helper()
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			return i
		}
	}
	t.Fatalf("%q not found in %q", needle, haystack)
	return -1
}
