// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package sstable

import (
	"encoding/binary"

	"github.com/cantera/table/internal/base"
)

// header is the fixed 24-byte table header, adapted from the footer
// sniffing/parsing shape of the teacher's sstable package footer but
// describing the write-once layout instead of a LevelDB/RocksDB/Pebble
// footer: the write-once format places its fixed-size metadata at the
// front of the file rather than the end.
type header struct {
	majorVersion uint8
	minorVersion uint8
	flags        uint8
	compression  base.Compression
	indexOffset  uint64
}

func (h header) seekable() bool { return h.flags&flagSeekable != 0 }
func (h header) extended() bool { return h.flags&flagExtended != 0 }

func (h header) encode() []byte {
	buf := make([]byte, headerSize)
	binary.LittleEndian.PutUint64(buf[0:8], magic)
	buf[8] = h.majorVersion
	buf[9] = h.minorVersion
	buf[10] = h.flags
	buf[11] = uint8(h.compression)
	binary.LittleEndian.PutUint32(buf[12:16], 0) // reserved
	binary.LittleEndian.PutUint64(buf[16:24], h.indexOffset)
	return buf
}

// sniffWriteOnceMagic reports whether the first 8 bytes of a file match
// the write-once magic. The root package's format detection does not
// call it; it compares against its own copy of the magic.
func sniffWriteOnceMagic(first8 []byte) bool {
	if len(first8) < 8 {
		return false
	}
	return binary.LittleEndian.Uint64(first8) == magic
}

func decodeHeader(buf []byte) (header, error) {
	if len(buf) < headerSize {
		return header{}, base.CorruptErrorf("header", "file too small for header: %d bytes", len(buf))
	}

	gotMagic := binary.LittleEndian.Uint64(buf[0:8])
	if gotMagic != magic {
		return header{}, base.CorruptErrorf("header", "bad magic: 0x%x", gotMagic)
	}

	h := header{
		majorVersion: buf[8],
		minorVersion: buf[9],
		flags:        buf[10],
		compression:  base.Compression(buf[11]),
		indexOffset:  binary.LittleEndian.Uint64(buf[16:24]),
	}

	if h.majorVersion > maxMajorVersionReadable {
		return header{}, base.UnsupportedErrorf("major version %d exceeds maximum readable version %d", h.majorVersion, maxMajorVersionReadable)
	}
	if h.majorVersion < majorVersion {
		// Versions 0-3 are the legacy hash-indexed v3 format; this
		// module is write-v4-only and read-compatible only with v4.
		return header{}, base.UnsupportedErrorf("legacy table major version %d (v3 hash-indexed format) is not supported for reading; only v%d is", h.majorVersion, majorVersion)
	}
	if h.compression != base.CompressionNone && h.compression != base.CompressionZstd {
		return header{}, base.UnsupportedErrorf("unknown compression enum value %d", h.compression)
	}
	if h.extended() {
		return header{}, base.UnsupportedErrorf("extended flag is set but not supported")
	}
	if h.indexOffset == 0 {
		// Per the atomic-publish invariant, a visible file under its
		// final path never has index_offset == 0; this can only be an
		// unsynced or corrupt file.
		return header{}, base.CorruptErrorf("header", "index_offset is zero")
	}

	return h, nil
}
