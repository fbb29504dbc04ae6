package efficiency

import (
	"time"

	"github.com/okian/transferiq/internal/config"
	"github.com/okian/transferiq/pkg/logger"
	"github.com/okian/transferiq/pkg/metrics"
)

// Option applies a configuration option to the Deriver.
type Option func(*Deriver)

// WithConfig copies every formula parameter from cfg.
func WithConfig(cfg config.MetricsConfig) Option {
	return func(d *Deriver) {
		d.perf = cfg.PerformanceWeights
		d.composite = cfg.CompositeWeights
		d.thresholds = cfg.CategoryThresholds
		d.imputed = cfg.ImputedScore
		d.degenerate = cfg.DegenerateScore
		if cfg.TopN > 0 {
			d.topN = cfg.TopN
		}
		d.dropDuplicates = cfg.DropDuplicateTransfers
	}
}

// WithPerformanceWeights sets the goal, assist and per-90 weights of the
// performance index.
func WithPerformanceWeights(goal, assist, per90 float64) Option {
	return func(d *Deriver) {
		d.perf = config.PerformanceWeights{Goal: goal, Assist: assist, Per90Minute: per90}
	}
}

// WithCompositeWeights sets the efficiency score blend. Weights are expected
// to sum to 1; config.Validate enforces it for loaded configs.
func WithCompositeWeights(vfm, costPerGoal, costPerContribution float64) Option {
	return func(d *Deriver) {
		d.composite = config.CompositeWeights{VfM: vfm, CostPerGoal: costPerGoal, CostPerContribution: costPerContribution}
	}
}

// WithThresholds sets the inclusive lower bounds of the categories.
func WithThresholds(t config.CategoryThresholds) Option {
	return func(d *Deriver) { d.thresholds = t }
}

// WithDegenerateScore sets the score given to every value of a constant column.
func WithDegenerateScore(score float64) Option {
	return func(d *Deriver) { d.degenerate = score }
}

// WithImputedScore sets the composite stand-in for a missing cost term.
func WithImputedScore(score float64) Option {
	return func(d *Deriver) { d.imputed = score }
}

// WithTopN sets the size of the top-N report.
func WithTopN(n int) Option {
	return func(d *Deriver) {
		if n > 0 {
			d.topN = n
		}
	}
}

// WithDropDuplicates keeps only the first row per player|club|season.
func WithDropDuplicates(enabled bool) Option {
	return func(d *Deriver) { d.dropDuplicates = enabled }
}

// WithRunID stamps the summary with id instead of a fresh uuid.
func WithRunID(id string) Option {
	return func(d *Deriver) {
		if id != "" {
			d.runID = id
		}
	}
}

// WithClock overrides time.Now for the summary timestamp.
func WithClock(now func() time.Time) Option {
	return func(d *Deriver) {
		if now != nil {
			d.now = now
		}
	}
}

// WithLogger sets a custom logger for the deriver.
func WithLogger(l logger.Logger) Option {
	return func(d *Deriver) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithMetrics sets the metrics manager; defaults to metrics.Default().
func WithMetrics(m *metrics.Manager) Option {
	return func(d *Deriver) {
		if m != nil {
			d.metrics = m
		}
	}
}
