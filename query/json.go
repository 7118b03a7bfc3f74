// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package query

import (
	"strconv"
	"strings"

	"github.com/cantera/table/internal/base"
)

// stripOuterBraces removes a summary row's enclosing "{" and "}" so its
// fields can be spliced into a larger object alongside synthesized keys.
// For rows that are not themselves a JSON object (malformed or legacy
// data) it returns ("", false); the caller then emits the row as an
// opaque "_body" field instead of splicing.
func stripOuterBraces(body []byte) (inner string, ok bool) {
	s := strings.TrimSpace(string(body))
	if len(s) < 2 || s[0] != '{' || s[len(s)-1] != '}' {
		return "", false
	}
	return strings.TrimSpace(s[1 : len(s)-1]), true
}

// spliceRow assembles one result object: the row's key, the summary
// body's fields (or an opaque "_body" fallback), any summary-override
// fields, offset-indexed external metadata, and (when thresholding) the
// already-rendered threshold header and its sort-friendly header key.
func spliceRow(key []byte, summaryBody []byte, overrideBody []byte, externalHeader string, header string, headerKey string) string {
	var sb strings.Builder
	sb.WriteByte('{')

	sb.WriteString(`"_key":`)
	base.ToJSON(key, &sb)

	if inner, ok := stripOuterBraces(summaryBody); ok && inner != "" {
		sb.WriteByte(',')
		sb.WriteString(inner)
	} else if ok {
		// empty object body contributes no fields
	} else if len(summaryBody) > 0 {
		sb.WriteString(`,"_body":`)
		base.ToJSON(summaryBody, &sb)
	}

	if inner, ok := stripOuterBraces(overrideBody); ok && inner != "" {
		sb.WriteByte(',')
		sb.WriteString(inner)
	}

	if externalHeader != "" {
		sb.WriteString(`,"_external":`)
		base.ToJSON([]byte(externalHeader), &sb)
	}

	if headerKey != "" {
		sb.WriteString(`,"_header_key":`)
		base.ToJSON([]byte(headerKey), &sb)
		sb.WriteString(`,"_header":`)
		base.ToJSON([]byte(header), &sb)
	}

	sb.WriteByte('}')
	return sb.String()
}

// renderResults assembles the final {"result-count": N, "result": [...]}
// document from pre-rendered per-row JSON objects, in display order.
func renderResults(rows []string) string {
	var sb strings.Builder
	sb.WriteString(`{"result-count":`)
	sb.WriteString(strconv.Itoa(len(rows)))
	sb.WriteString(`,"result":[`)
	for i, r := range rows {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(r)
	}
	sb.WriteString(`]}`)
	return sb.String()
}
