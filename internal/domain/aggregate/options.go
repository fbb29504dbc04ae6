package aggregate

import (
	"github.com/okian/transferiq/pkg/logger"
	"github.com/okian/transferiq/pkg/metrics"
)

// Option applies a configuration option to the Aggregator.
type Option func(*Aggregator)

// WithLogger sets a custom logger for the aggregator.
func WithLogger(l logger.Logger) Option {
	return func(a *Aggregator) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithMetrics sets the metrics manager; defaults to metrics.Default().
func WithMetrics(m *metrics.Manager) Option {
	return func(a *Aggregator) {
		if m != nil {
			a.metrics = m
		}
	}
}
