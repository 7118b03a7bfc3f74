// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package posting

import (
	"encoding/binary"
	"math"

	"github.com/cockroachdb/errors"

	"github.com/cantera/table/internal/varint"
)

// Encode chooses a wire encoding from the closed taxonomy and serializes
// entries, which must have strictly increasing Offset and either all or
// none carrying percentile bands.
func Encode(entries []Entry) []byte {
	if len(entries) == 0 {
		return []byte{byte(TagEmpty)}
	}

	if len(entries) == 1 && !entries[0].HasPercentiles() {
		return encodeSingle(entries[0])
	}

	if allHaveBands(entries) {
		return encodeWithPrediction(entries)
	}

	if allFlexi(entries) {
		return encodeFlexi(entries)
	}

	if allIntegerScores(entries) {
		return encodeDeltaOrochOroch(entries)
	}

	return encodeDeltaOrochFloat(entries)
}

// Decode parses a posting list payload (encoding tag plus body) back into
// entries.
func Decode(b []byte) ([]Entry, error) {
	if len(b) == 0 {
		return nil, errors.New("posting: empty payload")
	}
	tag := Tag(b[0])
	body := b[1:]

	switch tag {
	case TagEmpty:
		return nil, nil
	case TagSinglePos1, TagSingleNeg1, TagSinglePos2, TagSingleNeg2, TagSinglePos3, TagSingleNeg3, TagSingleFloat:
		return decodeSingle(tag, body)
	case TagWithPrediction:
		return decodeWithPrediction(body)
	case TagFlexi:
		return decodeFlexi(body)
	case TagDeltaOrochOroch:
		return decodeDeltaOrochOroch(body)
	case TagDeltaOrochFloat:
		return decodeDeltaOrochFloat(body)
	default:
		return nil, errors.Newf("posting: unsupported encoding tag %d", tag)
	}
}

// MaxOffset returns the largest offset encoded in payload. It decodes the
// whole payload, scores included, and returns the last entry's offset,
// relying on every encoding storing offsets in increasing order.
func MaxOffset(payload []byte) (uint64, bool, error) {
	entries, err := Decode(payload)
	if err != nil {
		return 0, false, err
	}
	if len(entries) == 0 {
		return 0, false, nil
	}
	return entries[len(entries)-1].Offset, true, nil
}

// Count returns the number of entries encoded in payload.
func Count(payload []byte) (int, error) {
	entries, err := Decode(payload)
	if err != nil {
		return 0, err
	}
	return len(entries), nil
}

// --- single-entry encodings ---

func fitsSignedWidth(v int64, k int) bool {
	bits := uint(8*k - 1)
	lo := -(int64(1) << bits)
	hi := int64(1) << bits
	return v >= lo && v < hi
}

func encodeSingle(e Entry) []byte {
	if score, ok := exactInt64(e.Score); ok {
		for k := 1; k <= 3; k++ {
			if fitsSignedWidth(score, k) {
				dst := []byte{byte(singleTag(k, score < 0))}
				dst = varint.Put(dst, e.Offset)
				abs := uint64(score)
				if score < 0 {
					abs = uint64(-score)
				}
				var buf [8]byte
				binary.LittleEndian.PutUint64(buf[:], abs)
				return append(dst, buf[:k]...)
			}
		}
	}

	dst := []byte{byte(TagSingleFloat)}
	dst = varint.Put(dst, e.Offset)
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], math.Float32bits(e.Score))
	return append(dst, buf[:]...)
}

func singleTag(k int, neg bool) Tag {
	switch {
	case k == 1 && !neg:
		return TagSinglePos1
	case k == 1 && neg:
		return TagSingleNeg1
	case k == 2 && !neg:
		return TagSinglePos2
	case k == 2 && neg:
		return TagSingleNeg2
	case k == 3 && !neg:
		return TagSinglePos3
	default:
		return TagSingleNeg3
	}
}

func decodeSingle(tag Tag, body []byte) ([]Entry, error) {
	offset, n, err := varint.Get(body)
	if err != nil {
		return nil, errors.Wrap(err, "posting: decode single offset")
	}
	body = body[n:]

	if tag == TagSingleFloat {
		if len(body) < 4 {
			return nil, errors.New("posting: truncated single float")
		}
		score := math.Float32frombits(binary.LittleEndian.Uint32(body))
		return []Entry{{Offset: offset, Score: score, Pct5: nan(), Pct25: nan(), Pct75: nan(), Pct95: nan()}}, nil
	}

	k, neg := singleWidth(tag)
	if len(body) < k {
		return nil, errors.New("posting: truncated single integer")
	}
	var buf [8]byte
	copy(buf[:], body[:k])
	abs := int64(binary.LittleEndian.Uint64(buf[:]))
	score := float32(abs)
	if neg {
		score = -score
	}
	p5, p25, p75, p95 := noBands()
	return []Entry{{Offset: offset, Score: score, Pct5: p5, Pct25: p25, Pct75: p75, Pct95: p95}}, nil
}

func singleWidth(tag Tag) (int, bool) {
	switch tag {
	case TagSinglePos1:
		return 1, false
	case TagSingleNeg1:
		return 1, true
	case TagSinglePos2:
		return 2, false
	case TagSingleNeg2:
		return 2, true
	case TagSinglePos3:
		return 3, false
	default:
		return 3, true
	}
}

func exactInt64(f float32) (int64, bool) {
	i := int64(f)
	if float32(i) == f {
		return i, true
	}
	return 0, false
}

func nan() float32 { return float32(math.NaN()) }

// --- WITH_PREDICTION ---

func allHaveBands(entries []Entry) bool {
	for _, e := range entries {
		if !e.HasPercentiles() {
			return false
		}
	}
	return true
}

func encodeWithPrediction(entries []Entry) []byte {
	dst := []byte{byte(TagWithPrediction)}
	dst = varint.Put(dst, uint64(len(entries)))

	offsets := make([]uint64, len(entries))
	for i, e := range entries {
		offsets[i] = e.Offset
	}
	dst = varint.PutDeltaArray(dst, offsets)

	for _, e := range entries {
		dst = appendF32(dst, e.Score)
		dst = appendF32(dst, e.Pct5)
		dst = appendF32(dst, e.Pct25)
		dst = appendF32(dst, e.Pct75)
		dst = appendF32(dst, e.Pct95)
	}
	return dst
}

func decodeWithPrediction(body []byte) ([]Entry, error) {
	count, n, err := varint.Get(body)
	if err != nil {
		return nil, errors.Wrap(err, "posting: with_prediction count")
	}
	body = body[n:]

	offsets, n, err := varint.GetDeltaArray(body, int(count))
	if err != nil {
		return nil, errors.Wrap(err, "posting: with_prediction offsets")
	}
	body = body[n:]

	entries := make([]Entry, count)
	for i := range entries {
		if len(body) < 20 {
			return nil, errors.New("posting: truncated with_prediction entry")
		}
		entries[i] = Entry{
			Offset: offsets[i],
			Score:  readF32(body[0:4]),
			Pct5:   readF32(body[4:8]),
			Pct25:  readF32(body[8:12]),
			Pct75:  readF32(body[12:16]),
			Pct95:  readF32(body[16:20]),
		}
		body = body[20:]
	}
	return entries, nil
}

func appendF32(dst []byte, v float32) []byte {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], math.Float32bits(v))
	return append(dst, buf[:]...)
}

func readF32(b []byte) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b))
}

// --- FLEXI ---
//
// The exact GCD-discovery and run-length thresholds of the original FLEXI
// encoding did not survive into the retrieved source; spec.md explicitly
// treats the encoder's internal choices as opaque provided round-trip
// holds. This implementation keeps the documented shape (count, gcd, min,
// delta offsets, run-length scores) but always chooses gcd=1, since the
// only observable contract is that decode(encode(x)) == x.

func allFlexi(entries []Entry) bool {
	for _, e := range entries {
		if _, ok := exactInt64(e.Score); !ok {
			return false
		}
	}
	// FLEXI is reserved for the "all zero or a few repeated small integer
	// values" shape described in spec.md; require a small distinct-value
	// count so it doesn't steal cases better served by DELTA_OROCH_OROCH.
	distinct := map[int64]struct{}{}
	for _, e := range entries {
		v, _ := exactInt64(e.Score)
		distinct[v] = struct{}{}
		if len(distinct) > 4 {
			return false
		}
	}
	return true
}

func encodeFlexi(entries []Entry) []byte {
	dst := []byte{byte(TagFlexi)}
	dst = varint.Put(dst, uint64(len(entries)))
	dst = varint.Put(dst, 1) // gcd, always 1 (see comment above)

	var minScore int64 = math.MaxInt64
	scores := make([]int64, len(entries))
	for i, e := range entries {
		v, _ := exactInt64(e.Score)
		scores[i] = v
		if v < minScore {
			minScore = v
		}
	}
	dst = varint.Put(dst, zigzagEncode(minScore))

	offsets := make([]uint64, len(entries))
	for i, e := range entries {
		offsets[i] = e.Offset
	}
	dst = varint.PutDeltaArray(dst, offsets)

	// Run-length encode (score - min, run length) pairs.
	type run struct {
		val uint64
		len uint64
	}
	var runs []run
	for _, s := range scores {
		v := uint64(s - minScore)
		if len(runs) > 0 && runs[len(runs)-1].val == v {
			runs[len(runs)-1].len++
		} else {
			runs = append(runs, run{val: v, len: 1})
		}
	}
	dst = varint.Put(dst, uint64(len(runs)))
	for _, r := range runs {
		dst = varint.Put(dst, r.val)
		dst = varint.Put(dst, r.len)
	}
	return dst
}

func decodeFlexi(body []byte) ([]Entry, error) {
	count, n, err := varint.Get(body)
	if err != nil {
		return nil, errors.Wrap(err, "posting: flexi count")
	}
	body = body[n:]

	_, n, err = varint.Get(body) // gcd, unused on decode
	if err != nil {
		return nil, errors.Wrap(err, "posting: flexi gcd")
	}
	body = body[n:]

	minZ, n, err := varint.Get(body)
	if err != nil {
		return nil, errors.Wrap(err, "posting: flexi min")
	}
	body = body[n:]
	minScore := zigzagDecode(minZ)

	offsets, n, err := varint.GetDeltaArray(body, int(count))
	if err != nil {
		return nil, errors.Wrap(err, "posting: flexi offsets")
	}
	body = body[n:]

	numRuns, n, err := varint.Get(body)
	if err != nil {
		return nil, errors.Wrap(err, "posting: flexi run count")
	}
	body = body[n:]

	entries := make([]Entry, 0, count)
	for r := uint64(0); r < numRuns; r++ {
		val, n, err := varint.Get(body)
		if err != nil {
			return nil, errors.Wrap(err, "posting: flexi run value")
		}
		body = body[n:]
		runLen, n, err := varint.Get(body)
		if err != nil {
			return nil, errors.Wrap(err, "posting: flexi run length")
		}
		body = body[n:]

		score := float32(minScore + int64(val))
		p5, p25, p75, p95 := noBands()
		for i := uint64(0); i < runLen; i++ {
			idx := len(entries)
			if idx >= len(offsets) {
				return nil, errors.New("posting: flexi run length overruns offsets")
			}
			entries = append(entries, Entry{Offset: offsets[idx], Score: score, Pct5: p5, Pct25: p25, Pct75: p75, Pct95: p95})
		}
	}
	if len(entries) != int(count) {
		return nil, errors.New("posting: flexi run total does not match count")
	}
	return entries, nil
}

// --- DELTA_OROCH_OROCH (integer scores, group-varint both arrays) ---

func allIntegerScores(entries []Entry) bool {
	for _, e := range entries {
		if _, ok := exactInt64(e.Score); !ok {
			return false
		}
	}
	return true
}

func encodeDeltaOrochOroch(entries []Entry) []byte {
	dst := []byte{byte(TagDeltaOrochOroch)}
	dst = varint.Put(dst, uint64(len(entries)))

	offsetDeltas := make([]uint64, len(entries))
	var prev uint64
	for i, e := range entries {
		if i == 0 {
			offsetDeltas[i] = e.Offset
		} else {
			offsetDeltas[i] = e.Offset - prev
		}
		prev = e.Offset
	}
	dst = groupVarintEncode(dst, offsetDeltas)

	scores := make([]uint64, len(entries))
	for i, e := range entries {
		v, _ := exactInt64(e.Score)
		scores[i] = zigzagEncode(v)
	}
	dst = groupVarintEncode(dst, scores)
	return dst
}

func decodeDeltaOrochOroch(body []byte) ([]Entry, error) {
	count, n, err := varint.Get(body)
	if err != nil {
		return nil, errors.Wrap(err, "posting: delta_oroch_oroch count")
	}
	body = body[n:]

	deltas, n, err := groupVarintDecode(body, int(count))
	if err != nil {
		return nil, errors.Wrap(err, "posting: delta_oroch_oroch offsets")
	}
	body = body[n:]

	zscores, _, err := groupVarintDecode(body, int(count))
	if err != nil {
		return nil, errors.Wrap(err, "posting: delta_oroch_oroch scores")
	}

	entries := make([]Entry, count)
	var cur uint64
	for i := range entries {
		if i == 0 {
			cur = deltas[i]
		} else {
			cur += deltas[i]
		}
		p5, p25, p75, p95 := noBands()
		entries[i] = Entry{
			Offset: cur,
			Score:  float32(zigzagDecode(zscores[i])),
			Pct5:   p5, Pct25: p25, Pct75: p75, Pct95: p95,
		}
	}
	return entries, nil
}

// --- DELTA_OROCH_FLOAT (general float scores, group-varint offsets, raw f32 scores) ---

func encodeDeltaOrochFloat(entries []Entry) []byte {
	dst := []byte{byte(TagDeltaOrochFloat)}
	dst = varint.Put(dst, uint64(len(entries)))

	offsetDeltas := make([]uint64, len(entries))
	var prev uint64
	for i, e := range entries {
		if i == 0 {
			offsetDeltas[i] = e.Offset
		} else {
			offsetDeltas[i] = e.Offset - prev
		}
		prev = e.Offset
	}
	dst = groupVarintEncode(dst, offsetDeltas)

	for _, e := range entries {
		dst = appendF32(dst, e.Score)
	}
	return dst
}

func decodeDeltaOrochFloat(body []byte) ([]Entry, error) {
	count, n, err := varint.Get(body)
	if err != nil {
		return nil, errors.Wrap(err, "posting: delta_oroch_float count")
	}
	body = body[n:]

	deltas, n, err := groupVarintDecode(body, int(count))
	if err != nil {
		return nil, errors.Wrap(err, "posting: delta_oroch_float offsets")
	}
	body = body[n:]

	entries := make([]Entry, count)
	var cur uint64
	for i := range entries {
		if i == 0 {
			cur = deltas[i]
		} else {
			cur += deltas[i]
		}
		if len(body) < 4 {
			return nil, errors.New("posting: truncated delta_oroch_float score")
		}
		p5, p25, p75, p95 := noBands()
		entries[i] = Entry{Offset: cur, Score: readF32(body[:4]), Pct5: p5, Pct25: p25, Pct75: p75, Pct95: p95}
		body = body[4:]
	}
	return entries, nil
}
