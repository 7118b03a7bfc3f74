// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package table

import (
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics is the package's Prometheus collector set (C12), registered
// once per RuntimeConfig.Registerer. Nothing in this module requires
// Metrics to be constructed; components that want observability call
// NewMetrics once at startup and pass the result down explicitly, the
// way the teacher threads its own options structs rather than relying on
// a package-global registry.
type Metrics struct {
	RowsRead      prometheus.Counter
	RowsWritten   prometheus.Counter
	BlocksFlushed prometheus.Counter
	TablesOpened  *prometheus.CounterVec // labeled by backend
	QueryErrors   prometheus.Counter

	mu        sync.Mutex
	queryLat  *hdrhistogram.Histogram
	queryHist prometheus.Histogram
}

// NewMetrics constructs and, if cfg.Registerer is non-nil, registers the
// package's collectors.
func NewMetrics(cfg RuntimeConfig) *Metrics {
	m := &Metrics{
		RowsRead: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cantera_table",
			Name:      "rows_read_total",
			Help:      "Rows returned by ReadRow across all opened tables.",
		}),
		RowsWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cantera_table",
			Name:      "rows_written_total",
			Help:      "Rows accepted by InsertRow across all builders.",
		}),
		BlocksFlushed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cantera_table",
			Name:      "blocks_flushed_total",
			Help:      "Blocks written to disk by write-once builders.",
		}),
		TablesOpened: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cantera_table",
			Name:      "tables_opened_total",
			Help:      "Tables opened, labeled by backend.",
		}, []string{"backend"}),
		QueryErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cantera_table",
			Name:      "query_errors_total",
			Help:      "Query evaluations that returned an error.",
		}),
		queryLat: cfg.newLatencyHistogram(),
		queryHist: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "cantera_table",
			Name:      "query_duration_seconds",
			Help:      "Query evaluation wall-clock latency.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 16),
		}),
	}

	if cfg.Registerer != nil {
		cfg.Registerer.MustRegister(
			m.RowsRead, m.RowsWritten, m.BlocksFlushed, m.TablesOpened,
			m.QueryErrors, m.queryHist,
		)
	}
	return m
}

// ObserveQueryLatency records a completed query's latency into both the
// Prometheus histogram (for dashboards/alerting) and the HDR histogram
// (for precise percentile reporting, matching the teacher's own
// dual-tracking of coarse Prometheus buckets alongside an HDR histogram
// for tail-latency detail).
func (m *Metrics) ObserveQueryLatency(d time.Duration) {
	m.queryHist.Observe(d.Seconds())

	m.mu.Lock()
	defer m.mu.Unlock()
	m.queryLat.RecordValue(d.Microseconds())
}

// QueryLatencyPercentile returns the HDR-tracked query latency, in
// microseconds, at the given percentile (0-100).
func (m *Metrics) QueryLatencyPercentile(p float64) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.queryLat.ValueAtPercentile(p)
}
