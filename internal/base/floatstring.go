// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package base

import "strconv"

// FloatToString returns the shortest "%.*f" form of v that round-trips
// through strconv.ParseFloat(32), falling back to "%.9g" if no fixed-point
// precision up to 17 digits round-trips.
func FloatToString(v float32) string {
	for prec := 0; prec <= 17; prec++ {
		s := strconv.FormatFloat(float64(v), 'f', prec, 32)
		if p, err := strconv.ParseFloat(s, 32); err == nil && float32(p) == v {
			return s
		}
	}
	return strconv.FormatFloat(float64(v), 'g', 9, 32)
}

// DoubleToString is the float64 analogue of FloatToString, falling back to
// "%.17g".
func DoubleToString(v float64) string {
	for prec := 0; prec <= 17; prec++ {
		s := strconv.FormatFloat(v, 'f', prec, 64)
		if p, err := strconv.ParseFloat(s, 64); err == nil && p == v {
			return s
		}
	}
	return strconv.FormatFloat(v, 'g', 17, 64)
}
