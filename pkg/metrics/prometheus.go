// Package metrics provides Prometheus metrics for the transferiq pipeline.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the pipeline stages.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	customLabels     map[string]string
	registry         *prometheus.Registry

	// Record flow
	recordsLoaded   *prometheus.CounterVec
	recordsExcluded *prometheus.CounterVec
	derivedMissing  *prometheus.CounterVec
	categoryRecords *prometheus.GaugeVec

	// Stage health
	stageDuration    *prometheus.HistogramVec
	stageErrors      *prometheus.CounterVec
	stageLastSuccess *prometheus.GaugeVec
	outputsWritten   *prometheus.CounterVec

	// Reporting
	dimensionGroups  *prometheus.GaugeVec
	dimensionSkipped *prometheus.CounterVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "transferiq",
		subsystem:        "pipeline",
		histogramBuckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		enabled:          true,
		customLabels:     make(map[string]string),
		registry:         prometheus.NewRegistry(),
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)
	labels := prometheus.Labels(m.customLabels)

	m.recordsLoaded = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "records_loaded_total",
		Help:        "Records read from the stage input table",
		ConstLabels: labels,
	}, []string{"stage"})

	m.recordsExcluded = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "records_excluded_total",
		Help:        "Records dropped before metric derivation, by reason",
		ConstLabels: labels,
	}, []string{"reason"})

	m.derivedMissing = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "derived_missing_total",
		Help:        "Derived metric values left missing (zero counter or missing input)",
		ConstLabels: labels,
	}, []string{"metric"})

	m.categoryRecords = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "efficiency_category_records",
		Help:        "Records per efficiency category in the last derivation",
		ConstLabels: labels,
	}, []string{"category"})

	m.stageDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "stage_duration_seconds",
		Help:        "Wall time of a pipeline stage",
		Buckets:     m.histogramBuckets,
		ConstLabels: labels,
	}, []string{"stage"})

	m.stageErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "stage_errors_total",
		Help:        "Stages that aborted without writing outputs",
		ConstLabels: labels,
	}, []string{"stage"})

	m.stageLastSuccess = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "stage_last_success_timestamp_seconds",
		Help:        "Unix time of the last successful stage run",
		ConstLabels: labels,
	}, []string{"stage"})

	m.outputsWritten = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "outputs_written_total",
		Help:        "Output files committed, by kind",
		ConstLabels: labels,
	}, []string{"kind"})

	m.dimensionGroups = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "dimension_groups",
		Help:        "Populated groups per reporting dimension",
		ConstLabels: labels,
	}, []string{"dimension"})

	m.dimensionSkipped = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "dimensions_skipped_total",
		Help:        "Reporting dimensions skipped for lack of populated groups",
		ConstLabels: labels,
	}, []string{"dimension"})
}

// Registry returns the registry the manager's metrics live on.
func (m *Manager) Registry() *prometheus.Registry { return m.registry }

// RecordsLoaded adds n loaded records for stage.
func (m *Manager) RecordsLoaded(stage string, n int) {
	if m.enabled {
		m.recordsLoaded.WithLabelValues(stage).Add(float64(n))
	}
}

// RecordsExcluded adds n excluded records for reason.
func (m *Manager) RecordsExcluded(reason string, n int) {
	if m.enabled && n > 0 {
		m.recordsExcluded.WithLabelValues(reason).Add(float64(n))
	}
}

// DerivedMissing adds n missing values for a derived metric.
func (m *Manager) DerivedMissing(metric string, n int) {
	if m.enabled && n > 0 {
		m.derivedMissing.WithLabelValues(metric).Add(float64(n))
	}
}

// SetCategoryRecords sets the record count for an efficiency category.
func (m *Manager) SetCategoryRecords(category string, n int) {
	if m.enabled {
		m.categoryRecords.WithLabelValues(category).Set(float64(n))
	}
}

// ObserveStage records the duration and outcome of a stage.
func (m *Manager) ObserveStage(stage string, took time.Duration, err error) {
	if !m.enabled {
		return
	}
	m.stageDuration.WithLabelValues(stage).Observe(took.Seconds())
	if err != nil {
		m.stageErrors.WithLabelValues(stage).Inc()
		return
	}
	m.stageLastSuccess.WithLabelValues(stage).SetToCurrentTime()
}

// OutputWritten counts a committed output file of kind.
func (m *Manager) OutputWritten(kind string) {
	if m.enabled {
		m.outputsWritten.WithLabelValues(kind).Inc()
	}
}

// SetDimensionGroups sets the populated group count for dimension.
func (m *Manager) SetDimensionGroups(dimension string, n int) {
	if m.enabled {
		m.dimensionGroups.WithLabelValues(dimension).Set(float64(n))
	}
}

// DimensionSkipped counts a skipped dimension report.
func (m *Manager) DimensionSkipped(dimension string) {
	if m.enabled {
		m.dimensionSkipped.WithLabelValues(dimension).Inc()
	}
}

// WriteTextfile flushes the registry in the text exposition format so a
// node_exporter textfile collector can pick up batch results.
func (m *Manager) WriteTextfile(path string) error {
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteTextfile, err)
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteTextfile, err)
	}
	return nil
}

// Default returns the process-wide manager.
func Default() *Manager {
	return globalManager
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
