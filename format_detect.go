// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package table

import (
	"encoding/binary"
	"os"

	"github.com/cantera/table/internal/base"
	"github.com/cantera/table/sstable"
)

// Backend names an on-disk table format: the result of sniffing an
// existing file, or of OpenBackend looking up an explicit backend name
// instead of sniffing.
type Backend int

const (
	// BackendWriteOnce is this module's own write-once table format.
	BackendWriteOnce Backend = iota
	// BackendLevelDB opens a github.com/syndtr/goleveldb database
	// directory read-only; there is no corresponding Create path.
	BackendLevelDB
)

const leveldbMagicTrailerSize = 48 // footer length LevelDB always writes at EOF

const (
	// writeOnceMagic mirrors sstable's own unexported header magic; kept
	// duplicated here (rather than exported from sstable) since this is
	// the only place outside sstable that ever needs to sniff it.
	writeOnceMagic = uint64(0x6c6261742e692e70)
	// leveldbFooterMagic is LevelDB's table-footer magic number.
	leveldbFooterMagic = uint64(0xdb4775248b80fb57)
)

// sniffBackend inspects path's leading 8 bytes and, failing a match there,
// its trailing 8 bytes to distinguish a write-once table from a LevelDB one. Grounded on the teacher's own
// sstable/table.go magic dispatch (levelDBMagic/rocksDBMagic/pebbleDBMagic
// read from the file's footer), adapted to the write-once format's
// front-of-file magic and to LevelDB's own trailing footer magic.
func sniffBackend(path string) (Backend, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, base.IoErrorf("open", path, err)
	}
	defer f.Close()

	var head [8]byte
	if _, err := f.ReadAt(head[:], 0); err == nil && binary.LittleEndian.Uint64(head[:]) == writeOnceMagic {
		return BackendWriteOnce, nil
	}

	fi, err := f.Stat()
	if err != nil {
		return 0, base.IoErrorf("stat", path, err)
	}
	if fi.Size() >= leveldbMagicTrailerSize {
		var tail [8]byte
		if _, err := f.ReadAt(tail[:], fi.Size()-8); err == nil {
			if binary.LittleEndian.Uint64(tail[:]) == leveldbFooterMagic {
				return BackendLevelDB, nil
			}
		}
	}

	return 0, base.UnsupportedErrorf("%s does not match a known table format", path)
}

// Open opens an existing write-once table for sequential (pread-based)
// reading. Use OpenSeekable for byte-offset addressing, and OpenLevelDB
// to open a LevelDB-format database directory directly without sniffing.
func Open(path string, cfg RuntimeConfig) (Table, error) {
	return sstable.Open(path, sstable.ReaderOptions{Logger: cfg.logger()})
}

// OpenSeekable opens an existing write-once table built with
// WriterOptions.Seekable set, exposing byte-offset addressing.
func OpenSeekable(path string, cfg RuntimeConfig) (SeekableTable, error) {
	return sstable.OpenSeekable(path, sstable.ReaderOptions{Logger: cfg.logger()})
}

// OpenLevelDB opens a LevelDB-format database directory read-only.
func OpenLevelDB(path string) (Table, error) {
	return sstable.OpenLevelDB(path)
}

// OpenAny sniffs path's format and dispatches to the matching reader.
// Seekable write-once tables are opened via OpenSeekable automatically.
func OpenAny(path string, cfg RuntimeConfig) (Table, error) {
	backend, err := sniffBackend(path)
	if err != nil {
		return nil, err
	}
	switch backend {
	case BackendLevelDB:
		return OpenLevelDB(path)
	default:
		f, err := os.Open(path)
		if err != nil {
			return nil, base.IoErrorf("open", path, err)
		}
		var head [11]byte
		_, readErr := f.ReadAt(head[:], 0)
		f.Close()
		if readErr != nil {
			return nil, base.IoErrorf("read header", path, readErr)
		}
		if head[10]&0x1 != 0 { // flagSeekable bit, mirrored from sstable's header layout
			return OpenSeekable(path, cfg)
		}
		return Open(path, cfg)
	}
}

// backendNames maps the manifest-facing backend name to its Backend
// enum value. Used by OpenBackend, which lets a caller name the format
// explicitly instead of relying on sniffing (e.g. when a manifest line
// records which backend a table was written with).
var backendNames = map[string]Backend{
	"write-once": BackendWriteOnce,
	"leveldb":    BackendLevelDB,
}

// OpenBackend opens path using the named backend rather than sniffing
// it. name must be "write-once" or "leveldb". Prefer OpenAny when the
// backend isn't already known from other context.
func OpenBackend(name, path string, cfg RuntimeConfig) (Table, error) {
	backend, ok := backendNames[name]
	if !ok {
		return nil, base.UnsupportedErrorf("unknown table backend %q", name)
	}
	switch backend {
	case BackendLevelDB:
		return OpenLevelDB(path)
	default:
		f, err := os.Open(path)
		if err != nil {
			return nil, base.IoErrorf("open", path, err)
		}
		var head [11]byte
		_, readErr := f.ReadAt(head[:], 0)
		f.Close()
		if readErr != nil {
			return nil, base.IoErrorf("read header", path, readErr)
		}
		if head[10]&0x1 != 0 {
			return OpenSeekable(path, cfg)
		}
		return Open(path, cfg)
	}
}

// Create starts a new write-once table build at path.
func Create(path string, opts WriterOptions, cfg RuntimeConfig) (Builder, error) {
	return sstable.Create(path, opts.toSSTable(cfg))
}

// CreateSorting starts a new write-once table build that accepts rows in
// arbitrary order, sorting them via an external spill-to-disk pass before
// publishing at path. scratchDir selects the spill file's directory;
// empty selects os.TempDir().
func CreateSorting(path, scratchDir string, opts WriterOptions, cfg RuntimeConfig) (Builder, error) {
	return sstable.NewSortingBuilder(path, scratchDir, opts.toSSTable(cfg))
}
