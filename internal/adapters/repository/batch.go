package repository

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/okian/transferiq/pkg/logger"
)

const (
	defaultFileMode = 0o644
	defaultDirMode  = 0o755
)

// WriteFunc renders one output into w.
type WriteFunc func(w io.Writer) error

type pending struct {
	path  string
	kind  string
	write WriteFunc
	tmp   string
}

// Batch collects a stage's outputs and commits them together: every file is
// first rendered to a temp file next to its target, then all temps are
// renamed into place. If any render fails, no target is touched.
type Batch struct {
	files  []*pending
	mode   os.FileMode
	logger logger.Logger
}

// NewBatch creates an empty batch.
func NewBatch(opts ...BatchOption) *Batch {
	b := &Batch{
		mode:   defaultFileMode,
		logger: logger.Get().Named("batch"),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Add queues an output. kind labels it in logs and metrics.
func (b *Batch) Add(path, kind string, write WriteFunc) {
	b.files = append(b.files, &pending{path: path, kind: kind, write: write})
}

// Len returns the number of queued outputs.
func (b *Batch) Len() int { return len(b.files) }

// Kinds returns the kind of every queued output in order.
func (b *Batch) Kinds() []string {
	out := make([]string, len(b.files))
	for i, f := range b.files {
		out[i] = f.kind
	}
	return out
}

// Commit renders every output and moves them into place. A render failure
// or a cancelled ctx removes all temps and returns ErrStageOutput. A failed
// rename returns ErrCommitOutput; outputs renamed before it stay in place.
func (b *Batch) Commit(ctx context.Context) error {
	for _, f := range b.files {
		if err := b.stage(f); err != nil {
			b.cleanup()
			return fmt.Errorf("%w: %s: %v", ErrStageOutput, f.path, err)
		}
	}

	if err := ctx.Err(); err != nil {
		b.cleanup()
		return fmt.Errorf("%w: %v", ErrStageOutput, err)
	}

	for _, f := range b.files {
		if err := os.Rename(f.tmp, f.path); err != nil {
			b.cleanup()
			return fmt.Errorf("%w: %s: %v", ErrCommitOutput, f.path, err)
		}
		f.tmp = ""
		b.logger.Info(ctx, "wrote output",
			logger.String("kind", f.kind),
			logger.String("path", f.path),
		)
	}
	return nil
}

func (b *Batch) stage(f *pending) (err error) {
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, defaultDirMode); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(f.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	f.tmp = tmp.Name()
	defer func() {
		if cerr := tmp.Close(); err == nil && cerr != nil {
			err = cerr
		}
	}()

	if err := tmp.Chmod(b.mode); err != nil {
		return fmt.Errorf("failed to set mode: %w", err)
	}
	if err := f.write(tmp); err != nil {
		return err
	}
	return tmp.Sync()
}

func (b *Batch) cleanup() {
	for _, f := range b.files {
		if f.tmp == "" {
			continue
		}
		_ = os.Remove(f.tmp)
		f.tmp = ""
	}
}
