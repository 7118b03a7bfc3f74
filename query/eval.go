// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package query

import (
	"strings"

	"github.com/cockroachdb/swiss"

	"github.com/cantera/table"
	"github.com/cantera/table/internal/base"
	"github.com/cantera/table/posting"
	"github.com/cantera/table/schema"
)

// EvalContext supplies the table handles and collaborators a query tree
// is evaluated against.
type EvalContext struct {
	Summaries []schema.SummaryTable
	Indexes   []table.Table
	Overrides []table.Table
	CAS       CASClient
	Keywords  *Keywords

	// MaxWorkers bounds the executor's per-summary-table concurrency
	// when resolving result rows. Zero means unbounded.
	MaxWorkers int

	// External is populated (keyed by global offset) by any
	// FIELD-in:CAS_KEY leaf evaluated during the walk, accumulating
	// across the whole tree.
	External ExternalMetadata
}

func (c *EvalContext) recordExternal(meta ExternalMetadata) {
	if meta == nil || meta.Len() == 0 {
		return
	}
	if c.External == nil {
		c.External = swiss.New[uint64, string](meta.Len())
	}
	meta.All(func(k uint64, v string) bool {
		c.External.Put(k, v)
		return true
	})
}

// Evaluate walks a query tree and returns its deduplicated, offset-sorted
// posting list.
func Evaluate(n *Node, ctx *EvalContext) ([]posting.Entry, error) {
	if n == nil {
		return nil, nil
	}

	switch n.Kind {
	case KindKey:
		e, ok, err := lookupKey(n.Identifier, ctx.Summaries)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, nil
		}
		return []posting.Entry{e}, nil

	case KindLeaf:
		return evalLeaf(n.Identifier, ctx)

	case KindBinary:
		return evalBinary(n, ctx)

	case KindUnary:
		return evalUnary(n, ctx)

	default:
		return nil, base.InvalidErrorf("unknown query node kind %d", n.Kind)
	}
}

func evalLeaf(identifier string, ctx *EvalContext) ([]posting.Entry, error) {
	decoded, ok := base.DecodeURIComponent(identifier)
	if !ok {
		return nil, base.InvalidErrorf("malformed %%-escape in identifier %q", identifier)
	}

	if rest, ok := strings.CutPrefix(decoded, "in-"); ok {
		prefix, substring, ok := strings.Cut(rest, ":")
		if !ok {
			return nil, base.InvalidErrorf("malformed in-PREFIX:SUBSTRING identifier %q", decoded)
		}
		return lookupPrefixSubstring(prefix, substring, ctx.Indexes)
	}

	if field, casKey, ok := strings.Cut(decoded, "-in:"); ok {
		entries, meta, err := lookupFieldIn(field, casKey, ctx.Indexes, ctx.CAS)
		if err != nil {
			return nil, err
		}
		ctx.recordExternal(meta)
		return entries, nil
	}

	return lookupLeaf(decoded, ctx.Indexes)
}

func evalBinary(n *Node, ctx *EvalContext) ([]posting.Entry, error) {
	lhs, err := Evaluate(n.LHS, ctx)
	if err != nil {
		return nil, err
	}
	rhs, err := Evaluate(n.RHS, ctx)
	if err != nil {
		return nil, err
	}

	switch n.Op {
	case OpOr:
		return sortedMerge(lhs, rhs), nil
	case OpAnd:
		return sortedIntersect(lhs, rhs), nil
	case OpSubtract:
		return subtract(lhs, rhs), nil
	case OpGT, OpLT:
		return joinCompare(n.Op, lhs, rhs), nil
	case OpOrderBy:
		return orderBy(lhs, rhs), nil
	default:
		return nil, base.InvalidErrorf("unknown binary query operator %d", n.Op)
	}
}

func evalUnary(n *Node, ctx *EvalContext) ([]posting.Entry, error) {
	lhs, err := Evaluate(n.LHS, ctx)
	if err != nil {
		return nil, err
	}

	switch n.Op {
	case OpEQ, OpGT, OpGE, OpLT, OpLE:
		if !n.HasScalar {
			return nil, base.InvalidErrorf("comparison operator %d missing scalar operand", n.Op)
		}
		return filterScalar(lhs, n.Op, n.Scalar), nil
	case OpInRange:
		return inRange(lhs, n.Lo, n.Hi), nil
	case OpRandomSample:
		seed := n.Seed
		if seed == 0 {
			seed = defaultRandomSampleSeed
		}
		return randomSample(lhs, n.N, seed), nil
	case OpMax:
		return removeDuplicates(lhs, true), nil
	case OpMin:
		return removeDuplicates(lhs, false), nil
	case OpNegate:
		return negate(lhs), nil
	default:
		return nil, base.InvalidErrorf("unknown unary query operator %d", n.Op)
	}
}
