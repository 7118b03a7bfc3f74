// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package query

import (
	"regexp"
	"sort"
	"strings"

	"github.com/cockroachdb/swiss"
	"github.com/google/btree"

	"github.com/cantera/table"
	"github.com/cantera/table/internal/base"
	"github.com/cantera/table/posting"
	"github.com/cantera/table/schema"
)

// offsetItem is a btree.Item wrapping a bare offset, used to de-duplicate
// offsets collected across multiple index tables without re-sorting a
// slice on every insert.
type offsetItem uint64

func (a offsetItem) Less(b btree.Item) bool { return a < b.(offsetItem) }

// CASClient is the external-collaborator contract for the FIELD-in:CAS_KEY
// identifier form. A CAS (content-addressed-storage or similar directory
// lookup) service resolves a key into the set of field tokens it names;
// the query engine evaluates Leaf("FIELD:token") for each and unions the
// result. No concrete network implementation ships with this module: the
// protocol, transport, and backing store are owned by the collaborating
// service, not the table format.
type CASClient interface {
	// Resolve returns the tokens named by key, each optionally preceded
	// by a "{header}" marker giving the metadata to attach to matches
	// produced by that token.
	Resolve(key string) ([]CASToken, error)
}

// CASToken is one token returned by a CASClient, with its optional
// preceding header.
type CASToken struct {
	Header string // empty if the token had no preceding {header} marker
	Token  string
}

var casHeaderRE = regexp.MustCompile(`^\{([^}]*)\}(.*)$`)

// ParseCASTokens splits a CAS resolution body into tokens, recognizing an
// optional leading "{header}" marker on each line.
func ParseCASTokens(body string) []CASToken {
	var out []CASToken
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if m := casHeaderRE.FindStringSubmatch(line); m != nil {
			out = append(out, CASToken{Header: m[1], Token: m[2]})
			continue
		}
		out = append(out, CASToken{Token: line})
	}
	return out
}

// lookupKey resolves a Key node: it probes the summary tables in order
// and synthesizes a single PostingEntry (score 0) for the first table
// whose key matches. Tables are addressed in a global offset space
// partitioned by each table's manifest-declared base offset.
func lookupKey(identifier string, summaries []schema.SummaryTable) (posting.Entry, bool, error) {
	for _, st := range summaries {
		ok, err := st.Table.SeekToKey([]byte(identifier))
		if err != nil {
			return posting.Entry{}, false, err
		}
		if !ok {
			continue
		}
		seekable, isSeekable := st.Table.(table.SeekableTable)
		if !isSeekable {
			return posting.Entry{}, false, base.InvalidErrorf("summary table is not seekable")
		}
		rowOff, err := seekable.Offset()
		if err != nil {
			return posting.Entry{}, false, err
		}
		return posting.Entry{Offset: st.Offset + rowOff, Score: 0}, true, nil
	}
	return posting.Entry{}, false, nil
}

// lookupLeaf resolves a plain Leaf(identifier) against a fixed field
// name: every index table is consulted for an exact key match, and the
// decoded posting lists are unioned (sortedMerge, pairwise), dropping one
// copy of each offset collision.
func lookupLeaf(identifier string, indexTables []table.Table) ([]posting.Entry, error) {
	var result []posting.Entry
	for _, idx := range indexTables {
		ok, err := idx.SeekToKey([]byte(identifier))
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		// SeekToKey landed the cursor on the match; ReadRow returns it.
		_, value, _, err := idx.ReadRow()
		if err != nil {
			return nil, err
		}
		entries, err := posting.Decode(value)
		if err != nil {
			return nil, err
		}
		result = sortedMerge(result, entries)
	}
	return result, nil
}

// lookupPrefixSubstring resolves the "in-PREFIX:SUBSTRING" identifier
// form: a prefix scan over the index table starting at PREFIX, filtering
// to keys whose suffix (the part after PREFIX) contains SUBSTRING
// case-insensitively. Matches from every key in the scan are unioned,
// offsets de-duplicated via a btree-backed sorted set since the scan can
// touch many keys whose posting lists are not individually pre-merged.
func lookupPrefixSubstring(prefix, substring string, indexTables []table.Table) ([]posting.Entry, error) {
	substring = strings.ToLower(substring)
	seen := btree.New(32)
	var result []posting.Entry

	for _, idx := range indexTables {
		if _, err := idx.SeekToKey([]byte(prefix)); err != nil {
			return nil, err
		}
		for {
			key, value, ok, err := idx.ReadRow()
			if err != nil {
				return nil, err
			}
			if !ok {
				break
			}
			if !strings.HasPrefix(string(key), prefix) {
				break
			}
			suffix := strings.ToLower(string(key)[len(prefix):])
			if !strings.Contains(suffix, substring) {
				continue
			}
			entries, err := posting.Decode(value)
			if err != nil {
				return nil, err
			}
			for _, e := range entries {
				item := offsetItem(e.Offset)
				if seen.Has(item) {
					continue
				}
				seen.ReplaceOrInsert(item)
				result = append(result, e)
			}
		}
	}

	sort.Slice(result, func(i, j int) bool { return result[i].Offset < result[j].Offset })
	return result, nil
}

// ExternalMetadata maps a resolved posting's global offset to the header
// string of the CAS token that produced it, for the FIELD-in:CAS_KEY
// identifier form. The executor splices this into "_external" on matching
// summary rows. Backed by a swiss table rather than a builtin map since
// a query tree can carry many FIELD-in:CAS_KEY leaves, each contributing
// its own token set, into a single accumulated EvalContext.External.
type ExternalMetadata = *swiss.Map[uint64, string]

// lookupFieldIn resolves the "FIELD-in:CAS_KEY" identifier form: CAS_KEY
// is handed to the CASClient, whose tokens are each evaluated as
// Leaf("FIELD:token") and unioned; a token's preceding header (if any)
// is attached as external metadata keyed by every offset that token's
// lookup produced.
func lookupFieldIn(field, casKey string, indexTables []table.Table, client CASClient) ([]posting.Entry, ExternalMetadata, error) {
	if client == nil {
		return nil, nil, base.UnsupportedErrorf("FIELD-in:CAS_KEY requires a CASClient")
	}
	tokens, err := client.Resolve(casKey)
	if err != nil {
		return nil, nil, err
	}

	var result []posting.Entry
	meta := swiss.New[uint64, string](len(tokens))
	for _, tok := range tokens {
		entries, err := lookupLeaf(field+":"+tok.Token, indexTables)
		if err != nil {
			return nil, nil, err
		}
		if tok.Header != "" {
			for _, e := range entries {
				meta.Put(e.Offset, tok.Header)
			}
		}
		result = sortedMerge(result, entries)
	}
	return result, meta, nil
}
