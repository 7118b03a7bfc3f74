// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package base

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// PendingFile is a file under construction that becomes visible under its
// final path only when Finish is called. It prefers an anonymous
// O_TMPFILE descriptor (never visible in the directory at all) and falls
// back to a named temp file in the same directory if O_TMPFILE is
// unsupported by the filesystem; that file stays in the directory until
// Finish renames it into place or Abort removes it.
type PendingFile struct {
	f        *os.File
	dir      string
	finalPath string
	anon     bool
	named    string // set when the fallback named-temp-file path was used
	done     bool
}

const maxLinkRetries = 62 * 62 * 62

// CreatePendingFile opens a new pending file that will be published at
// finalPath once Finish succeeds.
func CreatePendingFile(finalPath string) (*PendingFile, error) {
	dir := filepath.Dir(finalPath)

	fd, err := unix.Open(dir, unix.O_TMPFILE|unix.O_RDWR|unix.O_CLOEXEC, 0o644)
	if err == nil {
		return &PendingFile{
			f:         os.NewFile(uintptr(fd), finalPath),
			dir:       dir,
			finalPath: finalPath,
			anon:      true,
		}, nil
	}

	// O_TMPFILE unsupported (old kernel or filesystem): fall back to a
	// named temp file that is never unlinked until Finish renames it.
	f, err := os.CreateTemp(dir, ".cantera-tmp-*")
	if err != nil {
		return nil, fmt.Errorf("create pending file in %s: %w", dir, err)
	}
	return &PendingFile{
		f:         f,
		dir:       dir,
		finalPath: finalPath,
		anon:      false,
		named:     f.Name(),
	}, nil
}

// File returns the underlying *os.File for writing.
func (p *PendingFile) File() *os.File {
	return p.f
}

// Sync fsyncs the pending file's contents.
func (p *PendingFile) Sync() error {
	return p.f.Sync()
}

// Finish atomically publishes the pending file at its final path. For an
// anonymous O_TMPFILE descriptor this links /proc/self/fd/N into the
// directory, retrying under a random sibling name on EEXIST collisions
// (up to maxLinkRetries times); for the named fallback it renames in
// place, which POSIX already guarantees is atomic.
func (p *PendingFile) Finish() error {
	if p.done {
		return nil
	}
	p.done = true

	if !p.anon {
		if err := os.Rename(p.named, p.finalPath); err != nil {
			return fmt.Errorf("publish %s: %w", p.finalPath, err)
		}
		return nil
	}

	procPath := fmt.Sprintf("/proc/self/fd/%d", p.f.Fd())

	err := unix.Linkat(unix.AT_FDCWD, procPath, unix.AT_FDCWD, p.finalPath, unix.AT_SYMLINK_FOLLOW)
	if err == nil {
		return nil
	}
	if err != unix.EEXIST {
		return fmt.Errorf("link %s to %s: %w", procPath, p.finalPath, err)
	}

	// The final path already exists: publish under a random sibling name
	// then rename over it, which is atomic on POSIX filesystems.
	for attempt := 0; attempt < maxLinkRetries; attempt++ {
		sibling := filepath.Join(p.dir, fmt.Sprintf(".cantera-tmp-%s", randSuffix(6)))
		if err := unix.Linkat(unix.AT_FDCWD, procPath, unix.AT_FDCWD, sibling, unix.AT_SYMLINK_FOLLOW); err != nil {
			if err == unix.EEXIST {
				continue
			}
			return fmt.Errorf("link %s to %s: %w", procPath, sibling, err)
		}
		if err := os.Rename(sibling, p.finalPath); err != nil {
			os.Remove(sibling)
			return fmt.Errorf("rename %s to %s: %w", sibling, p.finalPath, err)
		}
		return nil
	}

	return fmt.Errorf("publish %s: exhausted %d sibling-name attempts", p.finalPath, maxLinkRetries)
}

// Abort discards the pending file. For the named fallback this unlinks the
// temp file; for an anonymous O_TMPFILE descriptor closing the fd is
// sufficient since the kernel never gave it a directory entry.
func (p *PendingFile) Abort() error {
	if p.done {
		return nil
	}
	p.done = true
	err := p.f.Close()
	if !p.anon {
		if rerr := os.Remove(p.named); rerr != nil && err == nil {
			err = rerr
		}
	}
	return err
}

const suffixAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func randSuffix(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = suffixAlphabet[rand.Intn(len(suffixAlphabet))]
	}
	return string(b)
}
