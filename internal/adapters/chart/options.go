package chart

import (
	"github.com/okian/transferiq/pkg/logger"
)

// Option applies a configuration option to the Renderer.
type Option func(*Renderer)

// WithLogger sets a custom logger for the renderer.
func WithLogger(l logger.Logger) Option {
	return func(r *Renderer) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithRankedCount sets how many transfers the top and bottom panels show.
func WithRankedCount(n int) Option {
	return func(r *Renderer) {
		if n > 0 {
			r.ranked = n
		}
	}
}
