// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Package merge implements a k-way merge over sorted tables (C6).
package merge

import (
	"container/heap"

	"github.com/cantera/table"
	"github.com/cantera/table/internal/base"
)

type cursor struct {
	tbl   table.Table
	index int
	key   []byte
	value []byte
}

// cursorHeap is a binary min-heap ordered by key, ties broken by the
// reader's original index so that rows from an earlier table in the
// input slice are emitted before rows with an identical key from a
// later one. Grounded on original_source/storage/ca-table/merge.cc's
// hand-rolled CA_merge_heap, reimplemented over container/heap: no
// example repo models a better-suited custom tournament heap for this
// exact shape (heap.Interface over a cursor slice comparing by
// lexicographic key), so the stdlib container is used directly rather
// than transcribing the hand-rolled sift-up/sift-down routines.
type cursorHeap []*cursor

func (h cursorHeap) Len() int { return len(h) }
func (h cursorHeap) Less(i, j int) bool {
	c := base.Compare(h[i].key, h[j].key)
	if c != 0 {
		return c < 0
	}
	return h[i].index < h[j].index
}
func (h cursorHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *cursorHeap) Push(x any)   { *h = append(*h, x.(*cursor)) }
func (h *cursorHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// RowFunc is called once per row in merged key order; returning an error
// stops the merge early.
type RowFunc func(key, value []byte) error

// GroupFunc is called once per distinct key, with every value across all
// input tables that carried that key, in input-table order.
type GroupFunc func(key []byte, values [][]byte) error

func newHeap(tables []table.Table) (*cursorHeap, error) {
	h := make(cursorHeap, 0, len(tables))
	for i, tbl := range tables {
		if !tbl.IsSorted() {
			return nil, base.InvalidErrorf("merge input table %d is not sorted", i)
		}
		key, value, ok, err := tbl.ReadRow()
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		h = append(h, &cursor{tbl: tbl, index: i, key: key, value: value})
	}
	heap.Init(&h)
	return &h, nil
}

// Merge performs a k-way merge across tables, invoking fn once per row in
// merged key order. Every table must report IsSorted(); rows are drained
// via ReadRow and are not rewound afterwards.
func Merge(tables []table.Table, fn RowFunc) error {
	h, err := newHeap(tables)
	if err != nil {
		return err
	}

	for h.Len() > 0 {
		top := (*h)[0]
		if err := fn(top.key, top.value); err != nil {
			return err
		}

		key, value, ok, err := top.tbl.ReadRow()
		if err != nil {
			return err
		}
		if !ok {
			heap.Pop(h)
			continue
		}
		top.key, top.value = key, value
		heap.Fix(h, 0)
	}
	return nil
}

// MergeGrouped performs a k-way merge, accumulating every value sharing a
// key (across all input tables, in the order rows were emitted) before
// invoking fn once per distinct key.
func MergeGrouped(tables []table.Table, fn GroupFunc) error {
	var currentKey []byte
	var values [][]byte
	haveCurrent := false

	err := Merge(tables, func(key, value []byte) error {
		if haveCurrent && base.Compare(key, currentKey) == 0 {
			values = append(values, value)
			return nil
		}
		if haveCurrent {
			if err := fn(currentKey, values); err != nil {
				return err
			}
		}
		currentKey = append([]byte(nil), key...)
		values = [][]byte{value}
		haveCurrent = true
		return nil
	})
	if err != nil {
		return err
	}
	if haveCurrent {
		return fn(currentKey, values)
	}
	return nil
}
