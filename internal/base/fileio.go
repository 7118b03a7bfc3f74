// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package base

import (
	"os"

	"golang.org/x/sys/unix"
)

// FileIO wraps a single file descriptor for positioned reads and writes.
// The non-seekable sstable Reader reads through it; the mmap-backed
// SeekableReader maps its own descriptor and does not use FileIO.
type FileIO struct {
	f *os.File
}

// NewFileIO wraps f.
func NewFileIO(f *os.File) *FileIO {
	return &FileIO{f: f}
}

// File returns the underlying *os.File.
func (io *FileIO) File() *os.File {
	return io.f
}

// Fd returns the raw descriptor.
func (io *FileIO) Fd() int {
	return int(io.f.Fd())
}

// Pread reads len(buf) bytes at offset off without disturbing the file's
// current position, so sequential and random readers can share one fd.
func (io *FileIO) Pread(buf []byte, off int64) (int, error) {
	n, err := unix.Pread(io.Fd(), buf, off)
	return n, err
}

// PreadFull reads exactly len(buf) bytes at offset off.
func (io *FileIO) PreadFull(buf []byte, off int64) error {
	for len(buf) > 0 {
		n, err := io.Pread(buf, off)
		if err != nil {
			return err
		}
		if n == 0 {
			return os.ErrClosed
		}
		buf = buf[n:]
		off += int64(n)
	}
	return nil
}

// Pwrite writes buf at offset off.
func (io *FileIO) Pwrite(buf []byte, off int64) (int, error) {
	return unix.Pwrite(io.Fd(), buf, off)
}

// PwriteFull writes all of buf at offset off.
func (io *FileIO) PwriteFull(buf []byte, off int64) error {
	for len(buf) > 0 {
		n, err := io.Pwrite(buf, off)
		if err != nil {
			return err
		}
		buf = buf[n:]
		off += int64(n)
	}
	return nil
}

// Close closes the underlying file.
func (io *FileIO) Close() error {
	return io.f.Close()
}

// Size returns the current file size.
func (io *FileIO) Size() (int64, error) {
	fi, err := io.f.Stat()
	if err != nil {
		return 0, err
	}
	return fi.Size(), nil
}
