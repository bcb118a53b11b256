// Package metrics exposes Prometheus counters and histograms for the
// compiler's own activity: compiles run, bundles emitted, and allocator
// pressure. It mirrors the teacher's observability/metrics packages
// (NewXMetrics(registry) (*XMetrics, error), label-vectored counters) but
// scoped to the one subsystem this repository has: the session compiler.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// CompilerMetrics holds every metric this compiler registers.
type CompilerMetrics struct {
	compilesTotal         *prometheus.CounterVec
	bundlesEmittedTotal   prometheus.Counter
	compileDurationSecs   prometheus.Histogram
	allocatorBlocksInUse  *prometheus.GaugeVec
}

// NewCompilerMetrics registers the compiler's metrics on registry and
// returns the handle used to record them. Passing a fresh
// prometheus.NewRegistry() keeps tests isolated from the package-level
// default registry, the same pattern the teacher's metrics tests use.
func NewCompilerMetrics(registry *prometheus.Registry) (*CompilerMetrics, error) {
	m := &CompilerMetrics{
		compilesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "scsess_compiles_total",
			Help: "Total number of session compiles, partitioned by outcome.",
		}, []string{"outcome"}),
		bundlesEmittedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scsess_bundles_emitted_total",
			Help: "Total number of timestamped bundles emitted across all compiles.",
		}),
		compileDurationSecs: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "scsess_compile_duration_seconds",
			Help:    "Wall-clock duration of to_bundles() calls.",
			Buckets: prometheus.DefBuckets,
		}),
		allocatorBlocksInUse: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "scsess_allocator_blocks_in_use",
			Help: "Bus ID blocks currently allocated, by rate.",
		}, []string{"rate"}),
	}

	collectors := []prometheus.Collector{
		m.compilesTotal,
		m.bundlesEmittedTotal,
		m.compileDurationSecs,
		m.allocatorBlocksInUse,
	}
	for _, c := range collectors {
		if err := registry.Register(c); err != nil {
			return nil, fmt.Errorf("registering compiler metric: %w", err)
		}
	}

	return m, nil
}

// RecordCompile records the outcome and wall-clock duration of one
// to_bundles() call.
func (m *CompilerMetrics) RecordCompile(outcome string, durationSeconds float64, bundleCount int) {
	m.compilesTotal.WithLabelValues(outcome).Inc()
	m.compileDurationSecs.Observe(durationSeconds)
	m.bundlesEmittedTotal.Add(float64(bundleCount))
}

// SetAllocatorBlocksInUse records the current number of allocated blocks
// for a bus rate ("audio" or "control").
func (m *CompilerMetrics) SetAllocatorBlocksInUse(rate string, blocks int) {
	m.allocatorBlocksInUse.WithLabelValues(rate).Set(float64(blocks))
}
