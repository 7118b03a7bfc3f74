// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package posting

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func validateRoundTrip(t *testing.T, entries []Entry) {
	t.Helper()

	payload := Encode(entries)
	got, err := Decode(payload)
	require.NoError(t, err)
	require.Len(t, got, len(entries))

	for i := range entries {
		require.Equal(t, entries[i].Offset, got[i].Offset, "entry %d offset", i)
		require.Equal(t, entries[i].Score, got[i].Score, "entry %d score", i)
		if entries[i].HasPercentiles() {
			require.True(t, got[i].HasPercentiles(), "entry %d expected bands", i)
			require.Equal(t, entries[i].Pct5, got[i].Pct5)
			require.Equal(t, entries[i].Pct25, got[i].Pct25)
			require.Equal(t, entries[i].Pct75, got[i].Pct75)
			require.Equal(t, entries[i].Pct95, got[i].Pct95)
		} else {
			require.False(t, got[i].HasPercentiles(), "entry %d unexpected bands", i)
		}
	}

	maxOffset, ok, err := MaxOffset(payload)
	require.NoError(t, err)
	if len(entries) == 0 {
		require.False(t, ok)
	} else {
		require.True(t, ok)
		require.Equal(t, entries[len(entries)-1].Offset, maxOffset)
	}

	count, err := Count(payload)
	require.NoError(t, err)
	require.Equal(t, len(entries), count)
}

func withoutBands(offset uint64, score float32) Entry {
	p5, p25, p75, p95 := noBands()
	return Entry{Offset: offset, Score: score, Pct5: p5, Pct25: p25, Pct75: p75, Pct95: p95}
}

func TestEmpty(t *testing.T) {
	validateRoundTrip(t, nil)
}

func TestSteppedScore(t *testing.T) {
	var entries []Entry
	var offset uint64
	for i := 0; i < 50; i++ {
		offset += uint64(i + 1)
		entries = append(entries, withoutBands(offset, float32(i/5)))
	}
	validateRoundTrip(t, entries)
}

func TestLinearScore(t *testing.T) {
	var entries []Entry
	var offset uint64
	for i := 0; i < 50; i++ {
		offset += uint64(i + 1)
		entries = append(entries, withoutBands(offset, float32(i)))
	}
	validateRoundTrip(t, entries)
}

func TestSawScore(t *testing.T) {
	var entries []Entry
	var offset uint64
	for i := 0; i < 50; i++ {
		offset += uint64(i + 1)
		score := float32(i % 7)
		entries = append(entries, withoutBands(offset, score))
	}
	validateRoundTrip(t, entries)
}

func TestZeroScore(t *testing.T) {
	var entries []Entry
	var offset uint64
	for i := 0; i < 20; i++ {
		offset += uint64(i + 1)
		entries = append(entries, withoutBands(offset, 0))
	}
	validateRoundTrip(t, entries)
}

func TestNegativeScore(t *testing.T) {
	var entries []Entry
	var offset uint64
	for i := 0; i < 20; i++ {
		offset += uint64(i + 1)
		entries = append(entries, withoutBands(offset, float32(-i)))
	}
	validateRoundTrip(t, entries)
}

func TestScoreCloseToOne(t *testing.T) {
	entries := []Entry{
		withoutBands(1, math.Nextafter32(1, 2)),
		withoutBands(2, math.Nextafter32(1, 0)),
	}
	validateRoundTrip(t, entries)
}

func TestLinearOffset(t *testing.T) {
	var entries []Entry
	for i := 0; i < 100; i++ {
		entries = append(entries, withoutBands(uint64(i), 1.5))
	}
	validateRoundTrip(t, entries)
}

func TestLinearOffset2(t *testing.T) {
	var entries []Entry
	for i := 0; i < 100; i++ {
		entries = append(entries, withoutBands(uint64(i)*17, 1.5))
	}
	validateRoundTrip(t, entries)
}

func TestSingleEntry(t *testing.T) {
	cases := []float32{0, 1, -1, 127, -128, 32000, -32000, 9000000, -9000000, 1.5, -1.5}
	for _, score := range cases {
		validateRoundTrip(t, []Entry{withoutBands(42, score)})
	}
}

func TestWithPrediction(t *testing.T) {
	entries := []Entry{
		{Offset: 1, Score: 0.1, Pct5: 0.01, Pct25: 0.05, Pct75: 0.2, Pct95: 0.4},
		{Offset: 5, Score: 0.2, Pct5: 0.02, Pct25: 0.1, Pct75: 0.3, Pct95: 0.5},
		{Offset: 9, Score: 0.9, Pct5: 0.5, Pct25: 0.7, Pct75: 0.95, Pct95: 0.99},
	}
	validateRoundTrip(t, entries)
}

func TestOffsetScoreFuzz(t *testing.T) {
	rng := rand.New(rand.NewSource(1234))

	for iter := 0; iter < 1000; iter++ {
		n := rng.Intn(6)
		withBands := n > 0 && rng.Intn(2) == 0

		var entries []Entry
		var offset uint64
		step := uint64(rng.Intn(5) + 1)

		for i := 0; i < n; i++ {
			offset += step + uint64(rng.Intn(3))

			var e Entry
			e.Offset = offset

			switch rng.Intn(3) {
			case 0:
				e.Score = float32(rng.Intn(200) - 100)
			case 1:
				e.Score = rng.Float32() * 10
			default:
				e.Score = 0
			}

			if withBands {
				e.Pct5 = rng.Float32()
				e.Pct25 = e.Pct5 + rng.Float32()
				e.Pct75 = e.Pct25 + rng.Float32()
				e.Pct95 = e.Pct75 + rng.Float32()
			} else {
				e.Pct5, e.Pct25, e.Pct75, e.Pct95 = noBands()
			}

			entries = append(entries, e)
		}

		validateRoundTrip(t, entries)
	}
}
