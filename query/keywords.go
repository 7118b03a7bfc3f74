// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package query

import (
	"os"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cantera/table/internal/base"
)

// keywordsConfig is the YAML document shape: two lists of keyword
// entries, each a literal prefix or a /regex/ pattern. Grounded on original_source/storage/ca-table/keywords.cc's
// config["ephemeral"]/config["timestamped"] decode.
type keywordsConfig struct {
	Ephemeral   []string `yaml:"ephemeral"`
	Timestamped []string `yaml:"timestamped"`
}

// Keywords holds metadata about index keyword prefixes: which ones name
// ephemeral fields (values that can change every day) and which name
// timestamped fields (scores that are themselves dates, rendered as date
// strings in threshold headers). Each manifest entry is either a literal
// prefix or a "/regex/"-delimited pattern.
type Keywords struct {
	ephemeralPrefixes   []string
	ephemeralPatterns   []*regexp.Regexp
	timestampedPrefixes []string
	timestampedPatterns []*regexp.Regexp
}

// LoadKeywords parses a keywords.yaml document.
func LoadKeywords(path string) (*Keywords, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, base.IoErrorf("open keywords config", path, err)
	}
	defer f.Close()

	var cfg keywordsConfig
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, base.CorruptErrorf("keywords config", "%s: %s", path, err)
	}

	sort.Strings(cfg.Ephemeral)
	sort.Strings(cfg.Timestamped)

	ephemeralPrefixes, ephemeralPatterns, err := splitKeywordEntries(cfg.Ephemeral)
	if err != nil {
		return nil, base.CorruptErrorf("keywords config", "%s: ephemeral: %s", path, err)
	}
	timestampedPrefixes, timestampedPatterns, err := splitKeywordEntries(cfg.Timestamped)
	if err != nil {
		return nil, base.CorruptErrorf("keywords config", "%s: timestamped: %s", path, err)
	}

	return &Keywords{
		ephemeralPrefixes:   ephemeralPrefixes,
		ephemeralPatterns:   ephemeralPatterns,
		timestampedPrefixes: timestampedPrefixes,
		timestampedPatterns: timestampedPatterns,
	}, nil
}

// splitKeywordEntries separates a manifest list into literal prefixes and
// compiled "/regex/"-delimited patterns.
func splitKeywordEntries(entries []string) (prefixes []string, patterns []*regexp.Regexp, err error) {
	for _, e := range entries {
		if pattern, ok := regexKeywordEntry(e); ok {
			re, err := regexp.Compile(pattern)
			if err != nil {
				return nil, nil, err
			}
			patterns = append(patterns, re)
			continue
		}
		prefixes = append(prefixes, e)
	}
	return prefixes, patterns, nil
}

// regexKeywordEntry reports whether e has the "/pattern/" form, returning
// its inner pattern text.
func regexKeywordEntry(e string) (string, bool) {
	if len(e) >= 2 && e[0] == '/' && e[len(e)-1] == '/' {
		return e[1 : len(e)-1], true
	}
	return "", false
}

// IsEphemeral reports whether keyword carries one of the configured
// ephemeral prefixes, or matches one of its regex patterns.
func (k *Keywords) IsEphemeral(keyword string) bool {
	return matchesKeyword(keyword, k.ephemeralPrefixes, k.ephemeralPatterns)
}

// IsTimestamped reports whether keyword carries one of the configured
// timestamped prefixes, or matches one of its regex patterns.
func (k *Keywords) IsTimestamped(keyword string) bool {
	return matchesKeyword(keyword, k.timestampedPrefixes, k.timestampedPatterns)
}

func matchesKeyword(s string, prefixes []string, patterns []*regexp.Regexp) bool {
	if hasAnyPrefix(s, prefixes) {
		return true
	}
	for _, re := range patterns {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
