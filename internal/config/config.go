// Package config defines pipeline configuration structures and loading hooks.
//
// Conventions:
//   - New() returns a Config populated with defaults.
//   - Load layers a YAML file and TRANSFERIQ_ env vars on top of the defaults.
//   - Validation failures wrap ErrInvalidConfig.
package config

import (
	"fmt"
	"math"
	"sort"
)

// weightTolerance bounds float drift when checking that weights sum to 1.
const weightTolerance = 1e-9

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	Paths   Paths         `koanf:"paths"`
	Metrics MetricsConfig `koanf:"metrics"`
	Buckets Buckets       `koanf:"buckets"`
	Report  Report        `koanf:"report"`
	Charts  Charts        `koanf:"charts"`
}

// Paths locates every stage input and output.
type Paths struct {
	// Input is the raw transfers + performance CSV read by the deriver.
	Input string `koanf:"input"`
	// Enriched is the deriver output and the report/chart input.
	Enriched string `koanf:"enriched"`
	// Summary is the deriver's JSON summary.
	Summary string `koanf:"summary"`
	// ResultsDir receives the dimension tables, correlations and insights.
	ResultsDir string `koanf:"results_dir"`
	// FiguresDir receives the chart PNGs.
	FiguresDir string `koanf:"figures_dir"`
	// MetricsFile is the Prometheus textfile; empty disables it.
	MetricsFile string `koanf:"metrics_file"`
}

// PerformanceWeights scale the counters in the performance index.
type PerformanceWeights struct {
	Goal        float64 `koanf:"goal"`
	Assist      float64 `koanf:"assist"`
	Per90Minute float64 `koanf:"per_90_minutes"`
}

// CompositeWeights blend the normalized terms of the efficiency score.
type CompositeWeights struct {
	VfM                 float64 `koanf:"vfm"`
	CostPerGoal         float64 `koanf:"cost_per_goal"`
	CostPerContribution float64 `koanf:"cost_per_contribution"`
}

// Sum returns the total weight.
func (w CompositeWeights) Sum() float64 {
	return w.VfM + w.CostPerGoal + w.CostPerContribution
}

// CategoryThresholds are inclusive lower bounds of each efficiency band.
type CategoryThresholds struct {
	Excellent float64 `koanf:"excellent"`
	Good      float64 `koanf:"good"`
	Average   float64 `koanf:"average"`
	Poor      float64 `koanf:"poor"`
}

// MetricsConfig holds the deriver's formula parameters.
type MetricsConfig struct {
	PerformanceWeights PerformanceWeights `koanf:"performance_weights"`
	CompositeWeights   CompositeWeights   `koanf:"composite_weights"`
	CategoryThresholds CategoryThresholds `koanf:"category_thresholds"`

	// ImputedScore replaces a missing cost term in the composite.
	ImputedScore float64 `koanf:"imputed_score"`
	// DegenerateScore is assigned when a normalized metric has max == min.
	DegenerateScore float64 `koanf:"degenerate_score"`
	// TopN sizes the most/least efficient transfer reports.
	TopN int `koanf:"top_n"`
	// DropDuplicateTransfers keeps only the first row per player|club|season.
	DropDuplicateTransfers bool `koanf:"drop_duplicate_transfers"`
}

// Buckets defines the fee bracket and age group bins. Bins are right-closed:
// (edges[i], edges[i+1]] is labelled labels[i].
type Buckets struct {
	FeeEdges  []float64 `koanf:"fee_edges"`
	FeeLabels []string  `koanf:"fee_labels"`
	AgeEdges  []float64 `koanf:"age_edges"`
	AgeLabels []string  `koanf:"age_labels"`
}

// Report toggles the aggregator's secondary outputs.
type Report struct {
	ExportXLSX bool `koanf:"export_xlsx"`
	Console    bool `koanf:"console"`
}

// Charts sizes the rendered figures.
type Charts struct {
	WidthIn       float64 `koanf:"width_in"`
	HeightIn      float64 `koanf:"height_in"`
	DPI           int     `koanf:"dpi"`
	HistogramBins int     `koanf:"histogram_bins"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:  "info",
		LogFormat: "text",
		Paths: Paths{
			Input:       "data/raw/transfers_with_performance.csv",
			Enriched:    "data/processed/transfer_efficiency_metrics.csv",
			Summary:     "results/efficiency_summary.json",
			ResultsDir:  "results",
			FiguresDir:  "results/figures",
			MetricsFile: "results/pipeline_metrics.prom",
		},
		Metrics: MetricsConfig{
			PerformanceWeights: PerformanceWeights{Goal: 10, Assist: 5, Per90Minute: 0.5},
			CompositeWeights:   CompositeWeights{VfM: 0.4, CostPerGoal: 0.3, CostPerContribution: 0.3},
			CategoryThresholds: CategoryThresholds{Excellent: 80, Good: 60, Average: 40, Poor: 20},
			ImputedScore:       50,
			DegenerateScore:    50,
			TopN:               10,
		},
		Buckets: Buckets{
			FeeEdges:  []float64{0, 1, 5, 10, 20, 50, 200},
			FeeLabels: []string{"<€1M", "€1-5M", "€5-10M", "€10-20M", "€20-50M", ">€50M"},
			AgeEdges:  []float64{0, 21, 24, 27, 30, 100},
			AgeLabels: []string{"<21 (Youth)", "21-24 (Young)", "24-27 (Prime)", "27-30 (Experienced)", "30+ (Veteran)"},
		},
		Report: Report{ExportXLSX: true, Console: true},
		Charts: Charts{WidthIn: 20, HeightIn: 14, DPI: 150, HistogramBins: 30},
	}
}

// Validate checks cross-field invariants.
func (c *Config) Validate() error {
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log_format %q, want text or json", ErrInvalidConfig, c.LogFormat)
	}
	if c.Paths.Input == "" || c.Paths.Enriched == "" || c.Paths.Summary == "" {
		return fmt.Errorf("%w: input, enriched and summary paths must be set", ErrInvalidConfig)
	}
	if c.Paths.ResultsDir == "" || c.Paths.FiguresDir == "" {
		return fmt.Errorf("%w: results_dir and figures_dir must be set", ErrInvalidConfig)
	}

	w := c.Metrics.CompositeWeights
	if w.VfM < 0 || w.CostPerGoal < 0 || w.CostPerContribution < 0 {
		return fmt.Errorf("%w: composite weights must be non-negative", ErrInvalidConfig)
	}
	if math.Abs(w.Sum()-1) > weightTolerance {
		return fmt.Errorf("%w: composite weights sum to %.4f, want 1", ErrInvalidConfig, w.Sum())
	}

	t := c.Metrics.CategoryThresholds
	if !(t.Excellent > t.Good && t.Good > t.Average && t.Average > t.Poor) {
		return fmt.Errorf("%w: category thresholds must be strictly descending", ErrInvalidConfig)
	}

	for name, v := range map[string]float64{
		"imputed_score":    c.Metrics.ImputedScore,
		"degenerate_score": c.Metrics.DegenerateScore,
	} {
		if v < 0 || v > 100 {
			return fmt.Errorf("%w: %s %.2f outside [0,100]", ErrInvalidConfig, name, v)
		}
	}
	if c.Metrics.TopN <= 0 {
		return fmt.Errorf("%w: top_n must be positive", ErrInvalidConfig)
	}

	if err := validateBins("fee", c.Buckets.FeeEdges, c.Buckets.FeeLabels); err != nil {
		return err
	}
	if err := validateBins("age", c.Buckets.AgeEdges, c.Buckets.AgeLabels); err != nil {
		return err
	}

	if c.Charts.WidthIn <= 0 || c.Charts.HeightIn <= 0 || c.Charts.DPI <= 0 || c.Charts.HistogramBins <= 0 {
		return fmt.Errorf("%w: chart dimensions, dpi and histogram_bins must be positive", ErrInvalidConfig)
	}
	return nil
}

func validateBins(name string, edges []float64, labels []string) error {
	if len(edges) < 2 {
		return fmt.Errorf("%w: %s edges need at least two values", ErrInvalidConfig, name)
	}
	if !sort.SliceIsSorted(edges, func(i, j int) bool { return edges[i] < edges[j] }) {
		return fmt.Errorf("%w: %s edges must be ascending", ErrInvalidConfig, name)
	}
	for i := 1; i < len(edges); i++ {
		if edges[i] == edges[i-1] {
			return fmt.Errorf("%w: %s edges must be strictly ascending", ErrInvalidConfig, name)
		}
	}
	if len(labels) != len(edges)-1 {
		return fmt.Errorf("%w: %s has %d labels for %d bins", ErrInvalidConfig, name, len(labels), len(edges)-1)
	}
	return nil
}
