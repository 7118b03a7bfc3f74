// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package query

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cantera/table"
	"github.com/cantera/table/posting"
)

type fakeCASClient struct {
	tokens []CASToken
}

func (c *fakeCASClient) Resolve(key string) ([]CASToken, error) {
	return c.tokens, nil
}

func TestEvaluateFieldInCASForm(t *testing.T) {
	idx := buildIndexTable(t, map[string][]posting.Entry{
		"domain:a.example.com": {{Offset: 1, Score: 1}},
		"domain:b.example.com": {{Offset: 2, Score: 1}},
	})
	defer idx.Close()

	cas := &fakeCASClient{tokens: []CASToken{
		{Header: "group-1", Token: "a.example.com"},
		{Token: "b.example.com"},
	}}
	ctx := &EvalContext{Indexes: []table.Table{idx}, CAS: cas}

	got, err := Evaluate(Leaf("domain-in:some-cas-key"), ctx)
	require.NoError(t, err)
	require.Equal(t, []posting.Entry{{Offset: 1, Score: 1}, {Offset: 2, Score: 1}}, got)
	header1, ok1 := ctx.External.Get(1)
	require.True(t, ok1)
	require.Equal(t, "group-1", header1)
	_, ok2 := ctx.External.Get(2)
	require.False(t, ok2)
}

func TestParseCASTokens(t *testing.T) {
	got := ParseCASTokens("{hdr1}tok1\ntok2\n\n{hdr3}tok3")
	require.Equal(t, []CASToken{
		{Header: "hdr1", Token: "tok1"},
		{Token: "tok2"},
		{Header: "hdr3", Token: "tok3"},
	}, got)
}
