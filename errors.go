// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package table

import (
	stderrors "errors"

	"github.com/cantera/table/internal/base"
)

// IoError, Corrupt, Unsupported, OutOfOrder and Invalid form the closed
// error taxonomy every fallible operation in this module returns from.
// NotFound is intentionally absent: SeekToKey reports it as a bool, not
// an error.
type (
	IoError     = base.IoError
	Corrupt     = base.Corrupt
	Unsupported = base.Unsupported
	OutOfOrder  = base.OutOfOrder
	Invalid     = base.Invalid
)

// IsCorrupt reports whether err (or something it wraps) is a Corrupt
// error.
func IsCorrupt(err error) bool {
	var c *Corrupt
	return stderrors.As(err, &c)
}

// IsUnsupported reports whether err (or something it wraps) is an
// Unsupported error.
func IsUnsupported(err error) bool {
	var u *Unsupported
	return stderrors.As(err, &u)
}

// IsOutOfOrder reports whether err (or something it wraps) is an
// OutOfOrder error.
func IsOutOfOrder(err error) bool {
	var o *OutOfOrder
	return stderrors.As(err, &o)
}

// IsInvalid reports whether err (or something it wraps) is an Invalid
// error.
func IsInvalid(err error) bool {
	var i *Invalid
	return stderrors.As(err, &i)
}

// IsIoError reports whether err (or something it wraps) is an IoError.
func IsIoError(err error) bool {
	var e *IoError
	return stderrors.As(err, &e)
}
