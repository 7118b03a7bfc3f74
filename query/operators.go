// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package query

import (
	"math"
	"math/rand"
	"sort"

	"github.com/cantera/table/posting"
)

// defaultRandomSampleSeed is the documented constant seeding
// RandomSample's PRNG so repeated queries over the same data return the
// same sample.
const defaultRandomSampleSeed = 1234

// sortedMerge merges a and b, both sorted by Offset ascending. On an
// offset collision the a-side entry is kept and the b-side entry is
// dropped.
func sortedMerge(a, b []posting.Entry) []posting.Entry {
	out := make([]posting.Entry, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i].Offset < b[j].Offset:
			out = append(out, a[i])
			i++
		case a[i].Offset > b[j].Offset:
			out = append(out, b[j])
			j++
		default:
			out = append(out, a[i])
			i++
			j++
		}
	}
	out = append(out, a[i:]...)
	out = append(out, b[j:]...)
	return out
}

// sortedIntersect keeps every a-entry whose offset also appears in b.
// Duplicate offsets in a are all kept, each once, when the offset appears
// in b at least once.
func sortedIntersect(a, b []posting.Entry) []posting.Entry {
	out := make([]posting.Entry, 0, len(a))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i].Offset < b[j].Offset:
			i++
		case a[i].Offset > b[j].Offset:
			j++
		default:
			out = append(out, a[i])
			i++
		}
	}
	return out
}

// subtract drops every a-entry (including duplicates) whose offset
// appears anywhere in b.
func subtract(a, b []posting.Entry) []posting.Entry {
	excluded := make(map[uint64]struct{}, len(b))
	for _, e := range b {
		excluded[e.Offset] = struct{}{}
	}
	out := make([]posting.Entry, 0, len(a))
	for _, e := range a {
		if _, ok := excluded[e.Offset]; ok {
			continue
		}
		out = append(out, e)
	}
	return out
}

func scalarPredicate(op Op, score float32, v float64) bool {
	if math.IsNaN(float64(score)) {
		return false
	}
	s := float64(score)
	switch op {
	case OpEQ:
		return s == v
	case OpGT:
		return s > v
	case OpGE:
		return s >= v
	case OpLT:
		return s < v
	case OpLE:
		return s <= v
	default:
		return false
	}
}

func filterScalar(a []posting.Entry, op Op, v float64) []posting.Entry {
	out := make([]posting.Entry, 0, len(a))
	for _, e := range a {
		if scalarPredicate(op, e.Score, v) {
			out = append(out, e)
		}
	}
	return out
}

// joinCompare joins a and b on offset and keeps a's entry iff
// a.score (op) b.score, where op is OpGT or OpLT.
func joinCompare(op Op, a, b []posting.Entry) []posting.Entry {
	byOffset := make(map[uint64]float32, len(b))
	for _, e := range b {
		byOffset[e.Offset] = e.Score
	}
	out := make([]posting.Entry, 0, len(a))
	for _, e := range a {
		bScore, ok := byOffset[e.Offset]
		if !ok {
			continue
		}
		if math.IsNaN(float64(e.Score)) || math.IsNaN(float64(bScore)) {
			continue
		}
		var keep bool
		switch op {
		case OpGT:
			keep = e.Score > bScore
		case OpLT:
			keep = e.Score < bScore
		}
		if keep {
			out = append(out, e)
		}
	}
	return out
}

func inRange(a []posting.Entry, lo, hi float64) []posting.Entry {
	out := make([]posting.Entry, 0, len(a))
	for _, e := range a {
		if math.IsNaN(float64(e.Score)) {
			continue
		}
		s := float64(e.Score)
		if s >= lo && s <= hi {
			out = append(out, e)
		}
	}
	return out
}

// orderBy replaces every a-entry's score with b's score at the same
// offset. Offsets absent from b get negative infinity, which sorts to
// the tail of a descending-score ordering.
func orderBy(a, b []posting.Entry) []posting.Entry {
	byOffset := make(map[uint64]float32, len(b))
	for _, e := range b {
		byOffset[e.Offset] = e.Score
	}
	out := make([]posting.Entry, len(a))
	for i, e := range a {
		score, ok := byOffset[e.Offset]
		if !ok {
			score = float32(math.Inf(-1))
		}
		out[i] = posting.Entry{Offset: e.Offset, Score: score}
	}
	return out
}

// randomSample draws n entries from a without replacement using a
// deterministic PRNG, then re-sorts the result by offset. If n >= len(a)
// every entry is returned, re-sorted (a no-op since a is already
// offset-sorted).
func randomSample(a []posting.Entry, n int, seed uint64) []posting.Entry {
	if n >= len(a) {
		out := append([]posting.Entry(nil), a...)
		return out
	}
	if n <= 0 {
		return nil
	}
	rng := rand.New(rand.NewSource(int64(seed)))
	perm := rng.Perm(len(a))[:n]
	out := make([]posting.Entry, n)
	for i, idx := range perm {
		out[i] = a[idx]
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Offset < out[j].Offset })
	return out
}

// removeDuplicates collapses runs of adjacent identical offsets, keeping
// either the maximum or minimum score in the run per useMax. a must be
// sorted by offset.
func removeDuplicates(a []posting.Entry, useMax bool) []posting.Entry {
	if len(a) == 0 {
		return nil
	}
	out := make([]posting.Entry, 0, len(a))
	cur := a[0]
	for _, e := range a[1:] {
		if e.Offset == cur.Offset {
			if (useMax && e.Score > cur.Score) || (!useMax && e.Score < cur.Score) {
				cur.Score = e.Score
			}
			continue
		}
		out = append(out, cur)
		cur = e
	}
	out = append(out, cur)
	return out
}

func negate(a []posting.Entry) []posting.Entry {
	out := make([]posting.Entry, len(a))
	for i, e := range a {
		out[i] = posting.Entry{Offset: e.Offset, Score: -e.Score}
	}
	return out
}
