// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package table

import (
	"github.com/HdrHistogram/hdrhistogram-go"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/cantera/table/sstable"
)

// RuntimeConfig is the process-wide configuration shared by every table
// opened through this package: logging, metrics registration, and an
// unused worker-count field (see MaxWorkers). It mirrors
// the teacher's struct-of-options convention rather than a flag/env
// parser; no example repo in the corpus configures this kind of library
// any other way.
type RuntimeConfig struct {
	// MaxWorkers is not read by any package of this module. The query
	// executor takes its concurrency bound from query.EvalContext.MaxWorkers
	// instead, where zero means unbounded; no default of
	// runtime.GOMAXPROCS(0) is applied.
	MaxWorkers int

	// Logger receives structured diagnostics from every reader/writer.
	// Nil selects a no-op logger.
	Logger *zap.Logger

	// Registerer receives the package's Prometheus collectors. Nil
	// disables metrics registration entirely.
	Registerer prometheus.Registerer

	// LatencyHistogramMax is the highest value (in microseconds) the HDR
	// latency histograms retain; zero selects a 10-second ceiling.
	LatencyHistogramMax int64

	// LatencyHistogramSigFigs is the number of significant decimal
	// digits the HDR histograms preserve; zero selects 3.
	LatencyHistogramSigFigs int
}

func (c RuntimeConfig) logger() *zap.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return zap.NewNop()
}

func (c RuntimeConfig) hdrMax() int64 {
	if c.LatencyHistogramMax != 0 {
		return c.LatencyHistogramMax
	}
	return 10_000_000
}

func (c RuntimeConfig) hdrSigFigs() int {
	if c.LatencyHistogramSigFigs != 0 {
		return c.LatencyHistogramSigFigs
	}
	return 3
}

func (c RuntimeConfig) newLatencyHistogram() *hdrhistogram.Histogram {
	return hdrhistogram.New(1, c.hdrMax(), c.hdrSigFigs())
}

// WriterOptions configures a write-once table build. It maps directly
// onto sstable.WriterOptions; this wrapper exists so callers never need
// to import the sstable package directly.
type WriterOptions struct {
	Seekable         bool
	Compression      TableCompression
	CompressionLevel int
	NoFSync          bool
}

func (o WriterOptions) toSSTable(cfg RuntimeConfig) sstable.WriterOptions {
	return sstable.WriterOptions{
		Seekable:         o.Seekable,
		Compression:      o.Compression,
		CompressionLevel: o.CompressionLevel,
		NoFSync:          o.NoFSync,
		Logger:           cfg.logger(),
	}
}

