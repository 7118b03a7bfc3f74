// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package query

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cantera/table/posting"
)

func entries(pairs ...interface{}) []posting.Entry {
	out := make([]posting.Entry, 0, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		out = append(out, posting.Entry{
			Offset: uint64(pairs[i].(int)),
			Score:  float32(pairs[i+1].(float64)),
		})
	}
	return out
}

func TestSortedMergeKeepsASideOnCollision(t *testing.T) {
	a := entries(1, 1.0, 3, 3.0)
	b := entries(1, 99.0, 2, 2.0)
	got := sortedMerge(a, b)
	require.Equal(t, entries(1, 1.0, 2, 2.0, 3, 3.0), got)
}

func TestSortedIntersectKeepsDuplicatesPresentInB(t *testing.T) {
	a := entries(1, 1.0, 1, 1.5, 2, 2.0)
	b := entries(1, 0, 3, 0)
	got := sortedIntersect(a, b)
	require.Equal(t, entries(1, 1.0, 1, 1.5), got)
}

func TestSubtractDropsAllDuplicates(t *testing.T) {
	a := entries(1, 1.0, 1, 1.5, 2, 2.0)
	b := entries(1, 0)
	got := subtract(a, b)
	require.Equal(t, entries(2, 2.0), got)
}

func TestFilterScalarNaNAlwaysFalse(t *testing.T) {
	a := []posting.Entry{{Offset: 1, Score: float32(math.NaN())}, {Offset: 2, Score: 5}}
	got := filterScalar(a, OpGE, 0)
	require.Equal(t, []posting.Entry{{Offset: 2, Score: 5}}, got)
}

func TestJoinCompareGT(t *testing.T) {
	a := entries(1, 5.0, 2, 1.0)
	b := entries(1, 3.0, 2, 9.0)
	got := joinCompare(OpGT, a, b)
	require.Equal(t, entries(1, 5.0), got)
}

func TestOrderByMissingOffsetGetsNegativeInfinity(t *testing.T) {
	a := entries(1, 1.0, 2, 2.0)
	b := entries(1, 10.0)
	got := orderBy(a, b)
	require.Len(t, got, 2)
	require.Equal(t, float32(10.0), got[0].Score)
	require.True(t, math.IsInf(float64(got[1].Score), -1))
}

func TestRandomSampleDeterministicAndOffsetSorted(t *testing.T) {
	a := entries(1, 1.0, 2, 2.0, 3, 3.0, 4, 4.0, 5, 5.0)
	got1 := randomSample(a, 2, defaultRandomSampleSeed)
	got2 := randomSample(a, 2, defaultRandomSampleSeed)
	require.Equal(t, got1, got2)
	require.Len(t, got1, 2)
	require.True(t, got1[0].Offset < got1[1].Offset)
}

func TestRandomSampleNGreaterThanLenReturnsAll(t *testing.T) {
	a := entries(1, 1.0, 2, 2.0)
	got := randomSample(a, 10, defaultRandomSampleSeed)
	require.Equal(t, a, got)
}

func TestRemoveDuplicatesMaxAndMin(t *testing.T) {
	a := entries(1, 1.0, 1, 3.0, 1, 2.0, 2, 5.0)
	require.Equal(t, entries(1, 3.0, 2, 5.0), removeDuplicates(a, true))
	require.Equal(t, entries(1, 1.0, 2, 5.0), removeDuplicates(a, false))
}

func TestNegate(t *testing.T) {
	a := entries(1, 3.0)
	got := negate(a)
	require.Equal(t, entries(1, -3.0), got)
}
