// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package query

import (
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/cantera/table"
	"github.com/cantera/table/internal/base"
	"github.com/cantera/table/posting"
	"github.com/cantera/table/schema"
)

// ThresholdClause is a grouping directive: it restricts and re-scores a
// query's result by joining it against a second, independently-indexed
// field's posting list, then partitions the result into the named ranges
// [Boundaries[i], Boundaries[i+1]) for display. Grounded on
// original_source/storage/ca-table/query.cc:505-697 (stmt.thresholds).
type ThresholdClause struct {
	// Key is the threshold field's identifier, with any leading "~"
	// reverse-order flag already stripped. Use NewThresholdClause to
	// parse a raw "~key" form.
	Key string
	// Reverse numbers display buckets from the high end down, when set.
	Reverse bool
	// Boundaries is v1 < ... < vk, at least two values, defining the
	// half-open ranges [vi, vi+1) that bucket the result.
	Boundaries []float64
}

// NewThresholdClause builds a ThresholdClause from a raw key (which may
// carry a leading "~" meaning "number buckets in reverse") and an
// unsorted list of boundary values.
func NewThresholdClause(key string, boundaries []float64) *ThresholdClause {
	reverse := false
	if rest, ok := strings.CutPrefix(key, "~"); ok {
		key, reverse = rest, true
	}
	sorted := append([]float64(nil), boundaries...)
	sort.Float64s(sorted)
	return &ThresholdClause{Key: key, Reverse: reverse, Boundaries: sorted}
}

// Request describes one query execution.
type Request struct {
	Tree      *Node
	Limit     int
	Offset    int
	Threshold *ThresholdClause
	KeysOnly  bool
}

// Execute runs req's query tree to completion and renders the
// {"result-count", "result"} JSON document described by the executor
// pipeline (C9).
func Execute(req *Request, ctx *EvalContext) (string, error) {
	entries, err := Evaluate(req.Tree, ctx)
	if err != nil {
		return "", err
	}
	entries = removeDuplicates(sortByOffset(entries), true)

	var headers, headerKeys map[uint64]string
	if th := req.Threshold; th != nil {
		if len(th.Boundaries) < 2 {
			return "", base.InvalidErrorf("threshold clause requires at least two boundaries")
		}
		thresholdEntries, err := lookupLeaf(th.Key, ctx.Indexes)
		if err != nil {
			return "", err
		}
		lo, hi := th.Boundaries[0], th.Boundaries[len(th.Boundaries)-1]
		entries = joinThreshold(entries, thresholdEntries, lo, hi)

		useDateHeaders := ctx.Keywords != nil && ctx.Keywords.IsTimestamped(th.Key)
		headers = make(map[uint64]string, len(entries))
		headerKeys = make(map[uint64]string, len(entries))
		for _, e := range entries {
			idx := bucketIndex(th.Boundaries, float64(e.Score))
			headers[e.Offset] = formatThresholdHeader(th.Boundaries[idx-1], th.Boundaries[idx], useDateHeaders)
			bucket := idx
			if th.Reverse {
				bucket = len(th.Boundaries) - idx
			}
			headerKeys[e.Offset] = headerKeyBase26(bucket)
		}
	}

	if req.Offset >= len(entries) {
		return renderResults(nil), nil
	}

	limit := req.Limit
	if limit <= 0 || req.Offset+limit > len(entries) {
		limit = len(entries) - req.Offset
	}
	top := req.Offset + limit

	ranked := append([]posting.Entry(nil), entries...)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Score > ranked[j].Score })
	chosen := ranked[req.Offset:top]

	owners, err := ownerTables(ctx.Summaries)
	if err != nil {
		return "", err
	}

	// Group chosen entries by owning summary table: within a table, rows
	// must be read in physical-offset order on a single cursor, but
	// distinct tables have independent cursors and can be resolved
	// concurrently.
	groups := groupByOwner(chosen, owners)

	if req.KeysOnly {
		keys := make([]string, len(chosen))
		g := new(errgroup.Group)
		if ctx.MaxWorkers > 0 {
			g.SetLimit(ctx.MaxWorkers)
		}
		for _, grp := range groups {
			grp := grp
			g.Go(func() error {
				for _, m := range grp.members {
					key, _, err := readSummaryRow(m.entry.Offset, owners)
					if err != nil {
						return err
					}
					keys[m.pos] = base.JSONString(key)
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return "", err
		}
		return renderResults(keys), nil
	}

	rows := make([]string, len(chosen))
	// Summary-override tables are shared across every owner group's
	// goroutine below; a single mutex serializes their cursor access
	// (each group already owns its own summary table exclusively, so
	// that half of the work stays concurrent).
	var overrideMu sync.Mutex
	g := new(errgroup.Group)
	if ctx.MaxWorkers > 0 {
		g.SetLimit(ctx.MaxWorkers)
	}
	for _, grp := range groups {
		grp := grp
		g.Go(func() error {
			for _, m := range grp.members {
				key, body, err := readSummaryRow(m.entry.Offset, owners)
				if err != nil {
					return err
				}
				overrideMu.Lock()
				overrideBody, err := lookupOverride(key, ctx.Overrides)
				overrideMu.Unlock()
				if err != nil {
					return err
				}

				var externalHeader string
				if ctx.External != nil {
					overrideMu.Lock()
					externalHeader, _ = ctx.External.Get(m.entry.Offset)
					overrideMu.Unlock()
				}

				rows[m.pos] = spliceRow(key, body, overrideBody, externalHeader, headers[m.entry.Offset], headerKeys[m.entry.Offset])
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", err
	}

	return renderResults(rows), nil
}

// ownerGroup is every chosen entry owned by one summary table, sorted by
// physical offset to minimize seek distance while reading it.
type ownerGroup struct {
	members []struct {
		pos   int
		entry posting.Entry
	}
}

func groupByOwner(chosen []posting.Entry, owners []ownerTable) []ownerGroup {
	byIdx := make(map[int]*ownerGroup, len(owners))
	var order []int
	for pos, e := range chosen {
		idx := sort.Search(len(owners), func(i int) bool { return owners[i].base > e.Offset }) - 1
		if idx < 0 {
			idx = 0
		}
		grp, ok := byIdx[idx]
		if !ok {
			grp = &ownerGroup{}
			byIdx[idx] = grp
			order = append(order, idx)
		}
		grp.members = append(grp.members, struct {
			pos   int
			entry posting.Entry
		}{pos: pos, entry: e})
	}
	out := make([]ownerGroup, 0, len(order))
	for _, idx := range order {
		grp := byIdx[idx]
		sort.Slice(grp.members, func(i, j int) bool { return grp.members[i].entry.Offset < grp.members[j].entry.Offset })
		out = append(out, *grp)
	}
	return out
}

func sortByOffset(entries []posting.Entry) []posting.Entry {
	out := append([]posting.Entry(nil), entries...)
	sort.Slice(out, func(i, j int) bool { return out[i].Offset < out[j].Offset })
	return out
}

// ownerTable is one summary table sorted by its manifest base offset,
// used to find which table a global posting offset belongs to: the
// table with the largest base offset not exceeding the target.
type ownerTable struct {
	seekable table.SeekableTable
	base     uint64
}

func ownerTables(summaries []schema.SummaryTable) ([]ownerTable, error) {
	out := make([]ownerTable, 0, len(summaries))
	for _, st := range summaries {
		seekable, ok := st.Table.(table.SeekableTable)
		if !ok {
			return nil, base.InvalidErrorf("summary table is not seekable")
		}
		out = append(out, ownerTable{seekable: seekable, base: st.Offset})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].base < out[j].base })
	return out, nil
}

func findOwner(offset uint64, owners []ownerTable) (ownerTable, error) {
	idx := sort.Search(len(owners), func(i int) bool { return owners[i].base > offset }) - 1
	if idx < 0 {
		return ownerTable{}, base.CorruptErrorf("query", "no summary table owns offset %d", offset)
	}
	return owners[idx], nil
}

// readSummaryRow seeks the owning summary table to offset and reads the
// row under it, returning its key and value.
func readSummaryRow(offset uint64, owners []ownerTable) (key, value []byte, err error) {
	o, err := findOwner(offset, owners)
	if err != nil {
		return nil, nil, err
	}
	if _, err := o.seekable.Seek(int64(offset-o.base), io.SeekStart); err != nil {
		return nil, nil, err
	}
	key, value, ok, err := o.seekable.ReadRow()
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		return nil, nil, base.CorruptErrorf("query", "offset %d has no summary row", offset)
	}
	return key, value, nil
}

// lookupOverride checks every summary-override table for key, returning
// the first match's value, or nil if none carries an override for it.
func lookupOverride(key []byte, overrides []table.Table) ([]byte, error) {
	for _, t := range overrides {
		ok, err := t.SeekToKey(key)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		_, value, _, err := t.ReadRow()
		if err != nil {
			return nil, err
		}
		return value, nil
	}
	return nil, nil
}

// joinThreshold keeps every entry whose offset also appears in
// thresholdEntries with a score in [lo, hi), replacing its score with the
// threshold posting's score so the caller can bucket by it. Mirrors
// original_source/storage/ca-table/query.cc:529-552's offset merge-join.
func joinThreshold(entries, thresholdEntries []posting.Entry, lo, hi float64) []posting.Entry {
	out := make([]posting.Entry, 0, len(entries))
	i, j := 0, 0
	for i < len(entries) && j < len(thresholdEntries) {
		switch {
		case entries[i].Offset == thresholdEntries[j].Offset:
			score := thresholdEntries[j].Score
			if float64(score) >= lo && float64(score) < hi {
				out = append(out, posting.Entry{Offset: entries[i].Offset, Score: score})
			}
			i++
			j++
		case entries[i].Offset < thresholdEntries[j].Offset:
			i++
		default:
			j++
		}
	}
	return out
}

// bucketIndex returns the index i into boundaries (len(boundaries) >= 2)
// such that boundaries[i-1] <= score < boundaries[i]. score is assumed to
// already lie in [boundaries[0], boundaries[len(boundaries)-1]). Mirrors
// query.cc:665-668's std::lower_bound plus its exact-boundary adjustment.
func bucketIndex(boundaries []float64, score float64) int {
	n := len(boundaries)
	i := 1 + sort.Search(n-1, func(j int) bool { return boundaries[1+j] >= score })
	if boundaries[i] == score && i+1 < n {
		i++
	}
	return i
}

// headerKeyBase26 renders key as a 5-character "AAAAA".."ZZZZZ" string, so
// clients can sort threshold headers without parsing them. Mirrors
// query.cc:691-694's pow(26,4) digit loop.
func headerKeyBase26(key int) string {
	var sb strings.Builder
	for j := 456976; j > 0; j /= 26 {
		sb.WriteByte(byte('A' + (key/j)%26))
	}
	return sb.String()
}

// formatThresholdHeader renders one bucket's [minValue, maxValue) range as
// a display header: a "%B %e, %Y"-style single date when useDateHeaders is
// set and the bucket spans exactly one day (minValue+1 == maxValue,
// boundaries being whole days since the epoch), otherwise a "min–max"
// number range. Mirrors query.cc:671-684.
func formatThresholdHeader(minValue, maxValue float64, useDateHeaders bool) string {
	if !useDateHeaders || minValue+1 != maxValue {
		return base.DoubleToString(minValue) + "–" + base.DoubleToString(maxValue)
	}
	t := time.Unix(int64(minValue*86400), 0).UTC()
	header := t.Format("January _2, 2006")
	return strings.Replace(header, "  ", " ", 1)
}
