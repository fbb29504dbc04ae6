package repository

import (
	"os"

	"github.com/okian/transferiq/pkg/logger"
)

// Option applies a configuration option to the FileStore.
type Option func(*FileStore)

// WithLogger sets a custom logger for the store.
func WithLogger(l logger.Logger) Option {
	return func(s *FileStore) {
		if l != nil {
			s.logger = l
		}
	}
}

// BatchOption applies a configuration option to a Batch.
type BatchOption func(*Batch)

// WithBatchLogger sets a custom logger for the batch.
func WithBatchLogger(l logger.Logger) BatchOption {
	return func(b *Batch) {
		if l != nil {
			b.logger = l
		}
	}
}

// WithFileMode sets the permissions of committed files.
func WithFileMode(mode os.FileMode) BatchOption {
	return func(b *Batch) {
		if mode != 0 {
			b.mode = mode
		}
	}
}
