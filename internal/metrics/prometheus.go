// Package metrics instruments the replay pipeline with Prometheus collectors.
// A Manager is created per process run and written out as a node-exporter
// textfile; there is no HTTP endpoint.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Sample kinds used as label values.
const (
	KindPosition   = "position"
	KindBoost      = "boost"
	KindClock      = "clock"
	KindPossession = "possession"
)

// Manager owns the pipeline collectors. A nil *Manager is valid and records nothing.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         *prometheus.Registry

	replaysProcessed prometheus.Counter
	replayErrors     *prometheus.CounterVec
	framesProcessed  prometheus.Counter
	liveEntities     prometheus.Gauge
	samples          *prometheus.CounterVec
	warnings         *prometheus.CounterVec
	stageDuration    *prometheus.HistogramVec
}

// NewManager creates a manager with its own registry unless one is supplied.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "rlmetrics",
		subsystem:        "pipeline",
		histogramBuckets: prometheus.DefBuckets,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.registry == nil {
		m.registry = prometheus.NewRegistry()
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.replaysProcessed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "replays_processed_total",
		Help:      "Total number of replays reduced and analysed",
	})
	m.replayErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "replay_errors_total",
		Help:      "Replays aborted, by error kind",
	}, []string{"kind"})
	m.framesProcessed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "frames_processed_total",
		Help:      "Total number of mutation frames applied",
	})
	m.liveEntities = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "live_entities",
		Help:      "Live entities in the store after the last applied frame",
	})
	m.samples = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "samples_total",
		Help:      "Telemetry samples extracted, by kind",
	}, []string{"kind"})
	m.warnings = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "warnings_total",
		Help:      "Recoverable conditions surfaced in reports, by kind",
	}, []string{"kind"})
	m.stageDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "stage_duration_seconds",
		Help:      "Wall time spent per pipeline stage",
		Buckets:   m.histogramBuckets,
	}, []string{"stage"})
}

// Registry returns the registry the collectors live on.
func (m *Manager) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Manager) RecordReplay() {
	if m == nil {
		return
	}
	m.replaysProcessed.Inc()
}

func (m *Manager) RecordError(kind string) {
	if m == nil {
		return
	}
	m.replayErrors.WithLabelValues(kind).Inc()
}

// RecordFrame counts one applied frame and the store size after it.
func (m *Manager) RecordFrame(liveEntities int) {
	if m == nil {
		return
	}
	m.framesProcessed.Inc()
	m.liveEntities.Set(float64(liveEntities))
}

func (m *Manager) AddSamples(kind string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.samples.WithLabelValues(kind).Add(float64(n))
}

func (m *Manager) RecordWarning(kind string) {
	if m == nil {
		return
	}
	m.warnings.WithLabelValues(kind).Inc()
}

// ObserveStage records the time elapsed since start for a named stage.
func (m *Manager) ObserveStage(stage string, start time.Time) {
	if m == nil {
		return
	}
	m.stageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}

// WriteTextfile writes every collector in node-exporter textfile format.
func (m *Manager) WriteTextfile(path string) error {
	if m == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}
	return nil
}
