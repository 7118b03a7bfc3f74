// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package base

import "bytes"

// Compare orders two keys as unsigned-byte lexicographic sequences. Go's
// byte slice (and string) comparison is already unsigned-byte lexicographic,
// so this is a documented pass-through rather than a reimplementation.
func Compare(a, b []byte) int {
	return bytes.Compare(a, b)
}

// Less reports whether a sorts strictly before b.
func Less(a, b []byte) bool {
	return bytes.Compare(a, b) < 0
}
