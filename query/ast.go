// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Package query implements the boolean query tree, its evaluation over
// posting lists, and the query executor's resolve/render pipeline
// (C8/C9), plus the keyword-filter metadata used to render threshold
// headers (C13).
package query

// Op is the closed set of binary/unary operators a query tree node can
// carry. Grounded on original_source/storage/ca-table/query.cc's
// UnionOffsets/IntersectOffsets/FilterOffsets/SubtractOffsets family and
// the operator enum implied by their call sites.
type Op int

const (
	OpOr Op = iota
	OpAnd
	OpSubtract
	OpEQ
	OpGT
	OpGE
	OpLT
	OpLE
	OpInRange
	OpOrderBy
	OpRandomSample
	OpMax
	OpMin
	OpNegate
)

// Kind distinguishes the three node shapes a query tree can take.
type Kind int

const (
	KindKey Kind = iota
	KindLeaf
	KindBinary
	KindUnary
)

// Node is a query tree node. Exactly the fields relevant to its Kind are
// populated; see the constructors below.
type Node struct {
	Kind Kind

	// Key/Leaf
	Identifier string

	// Binary/Unary
	Op  Op
	LHS *Node
	RHS *Node // set for Or/And/Subtract, the GT/LT table-join and OrderBy

	HasScalar bool
	Scalar    float64 // EQ/GT/GE/LT/LE scalar comparand

	Lo, Hi float64 // InRange bounds, canonicalized Lo <= Hi

	N int // RandomSample count

	Seed uint64 // RandomSample PRNG seed; zero selects the documented default (1234)
}

// Key constructs a Key(identifier) node: a single-row probe of the
// summary tables.
func Key(identifier string) *Node { return &Node{Kind: KindKey, Identifier: identifier} }

// Leaf constructs a Leaf(identifier) node: a union lookup across index
// tables.
func Leaf(identifier string) *Node { return &Node{Kind: KindLeaf, Identifier: identifier} }

// Or constructs Or(a, b).
func Or(a, b *Node) *Node { return &Node{Kind: KindBinary, Op: OpOr, LHS: a, RHS: b} }

// And constructs And(a, b).
func And(a, b *Node) *Node { return &Node{Kind: KindBinary, Op: OpAnd, LHS: a, RHS: b} }

// Subtract constructs Subtract(a, b).
func Subtract(a, b *Node) *Node { return &Node{Kind: KindBinary, Op: OpSubtract, LHS: a, RHS: b} }

// CompareScalar constructs one of EQ/GT/GE/LT/LE(a, v).
func CompareScalar(op Op, a *Node, v float64) *Node {
	return &Node{Kind: KindUnary, Op: op, LHS: a, HasScalar: true, Scalar: v}
}

// CompareJoin constructs the two-table join form of GT/LT(a, b): keep a's
// entry iff a.score (>/<) b.score at the same offset.
func CompareJoin(op Op, a, b *Node) *Node {
	return &Node{Kind: KindBinary, Op: op, LHS: a, RHS: b}
}

// InRange constructs InRange(a, [lo, hi]), canonicalizing lo <= hi.
func InRange(a *Node, lo, hi float64) *Node {
	if lo > hi {
		lo, hi = hi, lo
	}
	return &Node{Kind: KindUnary, Op: OpInRange, LHS: a, Lo: lo, Hi: hi}
}

// OrderBy constructs OrderBy(a, b).
func OrderBy(a, b *Node) *Node { return &Node{Kind: KindBinary, Op: OpOrderBy, LHS: a, RHS: b} }

// RandomSample constructs RandomSample(a, n) with the default seed (1234)
// unless overridden via WithSeed.
func RandomSample(a *Node, n int) *Node {
	return &Node{Kind: KindUnary, Op: OpRandomSample, LHS: a, N: n}
}

// WithSeed overrides a RandomSample node's PRNG seed; used by tests that
// need a result independent of the documented default.
func (n *Node) WithSeed(seed uint64) *Node {
	n.Seed = seed
	return n
}

// Max constructs Max(a).
func Max(a *Node) *Node { return &Node{Kind: KindUnary, Op: OpMax, LHS: a} }

// Min constructs Min(a).
func Min(a *Node) *Node { return &Node{Kind: KindUnary, Op: OpMin, LHS: a} }

// Negate constructs Negate(a).
func Negate(a *Node) *Node { return &Node{Kind: KindUnary, Op: OpNegate, LHS: a} }
