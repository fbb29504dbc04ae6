package service

import (
	"io"

	"github.com/okian/transferiq/internal/adapters/repository"
	"github.com/okian/transferiq/internal/config"
	"github.com/okian/transferiq/pkg/logger"
	"github.com/okian/transferiq/pkg/metrics"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithConfig replaces the default configuration.
func WithConfig(cfg *config.Config) Option {
	return func(s *Service) {
		if cfg != nil {
			s.cfg = cfg
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics sets the metrics manager every stage records into.
func WithMetrics(m *metrics.Manager) Option {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithStore sets the table store.
func WithStore(st repository.Store) Option {
	return func(s *Service) {
		if st != nil {
			s.store = st
		}
	}
}

// WithConsole sets where report tables and rankings are printed.
func WithConsole(w io.Writer) Option {
	return func(s *Service) {
		if w != nil {
			s.console = w
		}
	}
}

// WithRunID fixes the run identifier instead of generating one.
func WithRunID(id string) Option {
	return func(s *Service) {
		if id != "" {
			s.runID = id
		}
	}
}
