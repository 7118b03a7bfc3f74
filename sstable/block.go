// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package sstable

import (
	"encoding/binary"

	"github.com/DataDog/zstd"
	"github.com/cespare/xxhash/v2"

	"github.com/cantera/table/internal/base"
	"github.com/cantera/table/internal/varint"
)

// checksumSize is the width of the trailing xxhash64 checksum appended to
// every stored block (compressed or not), matching the teacher's own
// per-block checksum trailer (sstable's block.ChecksumTypeXXHash64) though
// unconditional here rather than a selectable ChecksumType.
const checksumSize = 8

// Row is a single key/value pair as stored in a block.
type Row struct {
	Key   []byte
	Value []byte
}

// marshalCompactBlock serializes rows in the "compact" shape: the row
// count, then all key sizes, then all value sizes, then all key bytes concatenated, then all
// value bytes concatenated. This form has no per-row byte addressing and
// is always fully decoded before use.
func marshalCompactBlock(rows []Row) []byte {
	var buf []byte
	buf = varint.Put(buf, uint64(len(rows)))
	for _, r := range rows {
		buf = varint.Put(buf, uint64(len(r.Key)))
	}
	for _, r := range rows {
		buf = varint.Put(buf, uint64(len(r.Value)))
	}
	for _, r := range rows {
		buf = append(buf, r.Key...)
	}
	for _, r := range rows {
		buf = append(buf, r.Value...)
	}
	return buf
}

func unmarshalCompactBlock(buf []byte) ([]Row, error) {
	n, used, err := varint.Get(buf)
	if err != nil {
		return nil, base.CorruptErrorf("block", "row count: %s", err)
	}
	buf = buf[used:]

	keySizes, used, err := varint.GetArray(buf, int(n))
	if err != nil {
		return nil, base.CorruptErrorf("block", "key sizes: %s", err)
	}
	buf = buf[used:]

	valSizes, used, err := varint.GetArray(buf, int(n))
	if err != nil {
		return nil, base.CorruptErrorf("block", "value sizes: %s", err)
	}
	buf = buf[used:]

	rows := make([]Row, n)
	for i := range rows {
		ks := int(keySizes[i])
		if ks > len(buf) {
			return nil, base.CorruptErrorf("block", "truncated key bytes")
		}
		rows[i].Key = buf[:ks]
		buf = buf[ks:]
	}
	for i := range rows {
		vs := int(valSizes[i])
		if vs > len(buf) {
			return nil, base.CorruptErrorf("block", "truncated value bytes")
		}
		rows[i].Value = buf[:vs]
		buf = buf[vs:]
	}
	return rows, nil
}

// marshalSeekableBlock serializes rows as
// (varint key_size)(varint value_size)(key bytes)(value bytes) per row,
// so that in-block byte offsets address individual rows.
func marshalSeekableBlock(rows []Row) []byte {
	var buf []byte
	for _, r := range rows {
		buf = varint.Put(buf, uint64(len(r.Key)))
		buf = varint.Put(buf, uint64(len(r.Value)))
		buf = append(buf, r.Key...)
		buf = append(buf, r.Value...)
	}
	return buf
}

func unmarshalSeekableBlock(buf []byte) ([]Row, error) {
	var rows []Row
	for len(buf) > 0 {
		ks, used, err := varint.Get(buf)
		if err != nil {
			return nil, base.CorruptErrorf("block", "key size: %s", err)
		}
		buf = buf[used:]

		vs, used, err := varint.Get(buf)
		if err != nil {
			return nil, base.CorruptErrorf("block", "value size: %s", err)
		}
		buf = buf[used:]

		if int(ks)+int(vs) > len(buf) {
			return nil, base.CorruptErrorf("block", "truncated row")
		}
		rows = append(rows, Row{Key: buf[:ks], Value: buf[ks : ks+vs]})
		buf = buf[ks+vs:]
	}
	return rows, nil
}

// seekableRowAt decodes the single row beginning at byte offset off within
// a seekable block's payload, returning the row and the offset of the
// following row (or len(buf) at the last row).
func seekableRowAt(buf []byte, off int) (Row, int, error) {
	if off < 0 || off >= len(buf) {
		return Row{}, 0, base.InvalidErrorf("seekable block offset %d out of range [0,%d)", off, len(buf))
	}
	b := buf[off:]

	ks, used, err := varint.Get(b)
	if err != nil {
		return Row{}, 0, base.CorruptErrorf("block", "key size: %s", err)
	}
	b = b[used:]

	vs, used, err := varint.Get(b)
	if err != nil {
		return Row{}, 0, base.CorruptErrorf("block", "value size: %s", err)
	}
	b = b[used:]

	if int(ks)+int(vs) > len(b) {
		return Row{}, 0, base.CorruptErrorf("block", "truncated row")
	}
	row := Row{Key: b[:ks], Value: b[ks : ks+vs]}
	next := off + (len(buf[off:]) - len(b)) + int(ks) + int(vs)
	return row, next, nil
}

// compressBlock compresses buf per compression, leaving the payload
// unchanged for CompressionNone, then appends an 8-byte xxhash64 checksum
// of the (possibly compressed) payload. The zstd binding used here is the
// teacher's own dependency (github.com/DataDog/zstd), matching the
// original's use of the real zstd C library rather than a pure-Go
// reimplementation; the checksum uses github.com/cespare/xxhash/v2, a
// generic fast hash with no stability requirement across builds, unlike
// internal/base.Hash.
func compressBlock(buf []byte, compression base.Compression, level int) ([]byte, error) {
	var payload []byte
	switch compression {
	case base.CompressionNone:
		payload = buf
	case base.CompressionZstd:
		out, err := zstd.CompressLevel(nil, buf, level)
		if err != nil {
			return nil, base.IoErrorf("zstd compress", "", err)
		}
		payload = out
	default:
		return nil, base.UnsupportedErrorf("unknown compression enum value %d", compression)
	}

	sum := xxhash.Sum64(payload)
	out := make([]byte, len(payload)+checksumSize)
	copy(out, payload)
	binary.LittleEndian.PutUint64(out[len(payload):], sum)
	return out, nil
}

func decompressBlock(buf []byte, compression base.Compression) ([]byte, error) {
	if len(buf) < checksumSize {
		return nil, base.CorruptErrorf("block", "too small to hold a checksum: %d bytes", len(buf))
	}
	split := len(buf) - checksumSize
	payload, wantSum := buf[:split], binary.LittleEndian.Uint64(buf[split:])
	if gotSum := xxhash.Sum64(payload); gotSum != wantSum {
		return nil, base.CorruptErrorf("block", "checksum mismatch: got %x want %x", gotSum, wantSum)
	}

	switch compression {
	case base.CompressionNone:
		return payload, nil
	case base.CompressionZstd:
		out, err := zstd.Decompress(nil, payload)
		if err != nil {
			return nil, base.CorruptErrorf("block", "zstd decompress: %s", err)
		}
		return out, nil
	default:
		return nil, base.UnsupportedErrorf("unknown compression enum value %d", compression)
	}
}

// estimateBlockSize estimates the compact-form serialized size of rows
// without actually marshaling, used by the builder's flush-threshold
// check.
func estimateBlockSize(rows []Row) int {
	n := varint.Space(uint64(len(rows)))
	for _, r := range rows {
		n += varint.Space(uint64(len(r.Key)))
		n += varint.Space(uint64(len(r.Value)))
		n += len(r.Key) + len(r.Value)
	}
	return n
}
