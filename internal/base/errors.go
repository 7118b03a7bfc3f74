// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package base

import "github.com/cockroachdb/errors"

// IoError wraps a failing OS call with the operation name and a free-form
// context string.
type IoError struct {
	Op      string
	Context string
	Err     error
}

func (e *IoError) Error() string {
	if e.Context != "" {
		return "table: io error during " + e.Op + ": " + e.Context + ": " + e.Err.Error()
	}
	return "table: io error during " + e.Op + ": " + e.Err.Error()
}

func (e *IoError) Unwrap() error { return e.Err }

// IoErrorf wraps err as an IoError with errors.Wrap-style stack capture.
func IoErrorf(op, context string, err error) error {
	if err == nil {
		return nil
	}
	return errors.WithStack(&IoError{Op: op, Context: context, Err: err})
}

// Corrupt indicates a checksum, magic, version, or structural mismatch in
// on-disk data.
type Corrupt struct {
	Where  string
	Detail string
}

func (e *Corrupt) Error() string {
	return "table: corrupt " + e.Where + ": " + e.Detail
}

// CorruptErrorf builds a Corrupt error, matching the teacher's
// base.CorruptionErrorf convention of wrapping a formatted detail string
// with stack-trace capture.
func CorruptErrorf(where string, format string, args ...interface{}) error {
	return errors.WithStack(&Corrupt{Where: where, Detail: errors.Newf(format, args...).Error()})
}

// Unsupported indicates a structurally valid but unimplemented feature:
// an unknown encoding tag, unknown backend, or the reserved "extended"
// flag.
type Unsupported struct {
	What string
}

func (e *Unsupported) Error() string {
	return "table: unsupported: " + e.What
}

// UnsupportedErrorf builds an Unsupported error.
func UnsupportedErrorf(format string, args ...interface{}) error {
	return errors.WithStack(&Unsupported{What: errors.Newf(format, args...).Error()})
}

// OutOfOrder indicates a builder received a non-increasing key.
type OutOfOrder struct {
	Prev      []byte
	Attempted []byte
}

func (e *OutOfOrder) Error() string {
	return "table: out of order insert"
}

// OutOfOrderError builds an OutOfOrder error.
func OutOfOrderError(prev, attempted []byte) error {
	return errors.WithStack(&OutOfOrder{Prev: prev, Attempted: attempted})
}

// Invalid indicates a caller-supplied argument or manifest line is
// malformed: a missing TAB, an unknown schema kind, an out-of-range
// offset, or SeekToKey on a non-seekable table.
type Invalid struct {
	Reason string
}

func (e *Invalid) Error() string {
	return "table: invalid: " + e.Reason
}

// InvalidErrorf builds an Invalid error.
func InvalidErrorf(format string, args ...interface{}) error {
	return errors.WithStack(&Invalid{Reason: errors.Newf(format, args...).Error()})
}
