// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Package posting implements the (offset, score) posting-list codec: a
// closed taxonomy of encodings chosen per-list by the encoder, all of which
// must be decodable by the reader.
package posting

import "math"

// Entry is a single (offset, score) pair, with an optional all-or-none set
// of percentile bands. Absent bands are represented as NaN.
type Entry struct {
	Offset uint64
	Score  float32

	Pct5, Pct25, Pct75, Pct95 float32
}

// HasPercentiles reports whether e carries percentile bands.
func (e Entry) HasPercentiles() bool {
	return !math.IsNaN(float64(e.Pct5))
}

func noBands() (p5, p25, p75, p95 float32) {
	nan := float32(math.NaN())
	return nan, nan, nan, nan
}

// Tag identifies the wire encoding used for a posting list payload. The
// taxonomy is closed: readers must handle every value below and nothing
// else. Numeric values for WithPrediction, Plain and Flexi are taken from
// the original format's ca_offset_score_type enum; the remaining tags have
// no surviving wire-compatible numbering and are assigned densely.
type Tag byte

const (
	TagWithPrediction  Tag = 0
	TagPlain           Tag = 1
	TagSinglePos1      Tag = 2
	TagSingleNeg1      Tag = 3
	TagSinglePos2      Tag = 4
	TagSingleNeg2      Tag = 5
	TagFlexi           Tag = 6
	TagSinglePos3      Tag = 7
	TagSingleNeg3      Tag = 8
	TagSingleFloat     Tag = 9
	TagDeltaOrochFloat Tag = 10
	TagDeltaOrochOroch Tag = 11
	TagEmpty           Tag = 12
)
