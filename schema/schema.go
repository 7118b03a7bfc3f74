// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Package schema parses a tab-separated table manifest describing a set
// of summary, summary-override, index, and time-series tables, and
// lazily opens the tables it names (C7).
package schema

import (
	"bufio"
	"os"
	"strconv"
	"strings"

	"github.com/cantera/table"
	"github.com/cantera/table/internal/base"
)

// Kind identifies one manifest line's table role.
type Kind int

const (
	KindSummary Kind = iota
	KindSummaryOverride
	KindIndex
	// KindTimeSeries is a time-series table, supplemented from
	// original_source/storage/ca-table/schema.cc and not present in the
	// distilled manifest kinds.
	KindTimeSeries
)

func (k Kind) String() string {
	switch k {
	case KindSummary:
		return "summary"
	case KindSummaryOverride:
		return "summary-override"
	case KindIndex:
		return "index"
	case KindTimeSeries:
		return "time-series"
	default:
		return "unknown"
	}
}

// entry is one parsed manifest line.
type entry struct {
	kind   Kind
	path   string
	offset uint64 // summary base offset
	prefix string // time-series prefix
}

// SummaryTable pairs an opened summary table with its base offset in the
// global posting offset space.
type SummaryTable struct {
	Table  table.Table
	Offset uint64
}

// TimeSeriesTable pairs an opened time-series table with its (possibly
// empty) key prefix.
type TimeSeriesTable struct {
	Table  table.Table
	Prefix string
}

// Schema is a parsed manifest with lazily-opened, cached table handles.
// Each accessor opens every table of its kind on first call and returns
// the cached slice thereafter, mirroring ca_schema_summary_tables's
// lazy-population-then-cache behavior.
type Schema struct {
	path    string
	cfg     table.RuntimeConfig
	entries []entry

	summaryTables         []SummaryTable
	summaryOverrideTables []table.Table
	indexTables           []table.Table
	timeSeriesTables      []TimeSeriesTable
}

// Load parses the manifest at path. It does not open any of the tables
// it names; that happens lazily via the Summary/SummaryOverride/Index/
// TimeSeries accessors.
func Load(path string, cfg table.RuntimeConfig) (*Schema, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, base.IoErrorf("open manifest", path, err)
	}
	defer f.Close()

	s := &Schema{path: path, cfg: cfg}

	scanner := bufio.NewScanner(f)
	lineno := 0
	for scanner.Scan() {
		lineno++
		line := strings.TrimRight(scanner.Text(), " \t\r\n")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.SplitN(line, "\t", 3)
		if len(fields) < 2 {
			return nil, base.InvalidErrorf("manifest %s:%d: missing TAB character", path, lineno)
		}

		var e entry
		e.path = fields[1]

		switch fields[0] {
		case "summary":
			e.kind = KindSummary
		case "summary-override":
			e.kind = KindSummaryOverride
		case "index":
			e.kind = KindIndex
		case "time-series":
			e.kind = KindTimeSeries
		default:
			return nil, base.InvalidErrorf("manifest %s:%d: unknown table type %q", path, lineno, fields[0])
		}

		if len(fields) == 3 && fields[2] != "" {
			switch e.kind {
			case KindSummary:
				n, err := strconv.ParseUint(fields[2], 0, 64)
				if err != nil {
					return nil, base.InvalidErrorf("manifest %s:%d: bad offset %q: %s", path, lineno, fields[2], err)
				}
				e.offset = n
			case KindTimeSeries:
				e.prefix = fields[2]
			default:
				return nil, base.InvalidErrorf("manifest %s:%d: unexpected third column for table type %q", path, lineno, fields[0])
			}
		}

		s.entries = append(s.entries, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, base.IoErrorf("read manifest", path, err)
	}

	return s, nil
}

func openAny(path string, cfg table.RuntimeConfig) (table.Table, error) {
	return table.OpenAny(path, cfg)
}

// SummaryTables lazily opens and returns every summary table named by
// the manifest, each paired with its base offset.
func (s *Schema) SummaryTables() ([]SummaryTable, error) {
	if s.summaryTables != nil {
		return s.summaryTables, nil
	}
	for _, e := range s.entries {
		if e.kind != KindSummary {
			continue
		}
		t, err := openAny(e.path, s.cfg)
		if err != nil {
			return nil, err
		}
		s.summaryTables = append(s.summaryTables, SummaryTable{Table: t, Offset: e.offset})
	}
	return s.summaryTables, nil
}

// SummaryOverrideTables lazily opens and returns every summary-override
// table named by the manifest.
func (s *Schema) SummaryOverrideTables() ([]table.Table, error) {
	if s.summaryOverrideTables != nil {
		return s.summaryOverrideTables, nil
	}
	for _, e := range s.entries {
		if e.kind != KindSummaryOverride {
			continue
		}
		t, err := openAny(e.path, s.cfg)
		if err != nil {
			return nil, err
		}
		s.summaryOverrideTables = append(s.summaryOverrideTables, t)
	}
	return s.summaryOverrideTables, nil
}

// IndexTables lazily opens and returns every index table named by the
// manifest.
func (s *Schema) IndexTables() ([]table.Table, error) {
	if s.indexTables != nil {
		return s.indexTables, nil
	}
	for _, e := range s.entries {
		if e.kind != KindIndex {
			continue
		}
		t, err := openAny(e.path, s.cfg)
		if err != nil {
			return nil, err
		}
		s.indexTables = append(s.indexTables, t)
	}
	return s.indexTables, nil
}

// TimeSeriesTables lazily opens and returns every time-series table named
// by the manifest, each paired with its key prefix (empty if none was
// given).
func (s *Schema) TimeSeriesTables() ([]TimeSeriesTable, error) {
	if s.timeSeriesTables != nil {
		return s.timeSeriesTables, nil
	}
	for _, e := range s.entries {
		if e.kind != KindTimeSeries {
			continue
		}
		t, err := openAny(e.path, s.cfg)
		if err != nil {
			return nil, err
		}
		s.timeSeriesTables = append(s.timeSeriesTables, TimeSeriesTable{Table: t, Prefix: e.prefix})
	}
	return s.timeSeriesTables, nil
}

// Close closes every table opened so far.
func (s *Schema) Close() error {
	var firstErr error
	closeAll := func(tbls []table.Table) {
		for _, t := range tbls {
			if err := t.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	for _, st := range s.summaryTables {
		if err := st.Table.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	closeAll(s.summaryOverrideTables)
	closeAll(s.indexTables)
	for _, ts := range s.timeSeriesTables {
		if err := ts.Table.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
