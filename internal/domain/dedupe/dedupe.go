// Package dedupe drops repeated transfer rows before metric derivation.
package dedupe

import (
	"context"
)

// Deduper records seen keys so each transfer is derived at most once.
type Deduper interface {
	// SeenAndRecord checks if key was seen and records it if not.
	// Returns true if key was already seen, false if it was newly recorded.
	SeenAndRecord(ctx context.Context, key string) bool

	Size() int64
}

// inMemoryDeduper keeps seen keys in a map. In bounded mode (maxSize > 0)
// the oldest key is evicted once the limit is reached; the default is
// unbounded because a batch loads its whole table anyway.
type inMemoryDeduper struct {
	seen    map[string]struct{}
	order   []string // insertion order, oldest first; bounded mode only
	maxSize int
}

// NewInMemoryDeduper creates a new in-memory deduper with configuration options.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{}
	for _, opt := range opts {
		opt(d)
	}
	d.seen = make(map[string]struct{})
	return d
}

// SeenAndRecord checks if key was seen and records it if not.
func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, key string) bool {
	if _, exists := d.seen[key]; exists {
		return true
	}

	if d.maxSize > 0 {
		if len(d.seen) >= d.maxSize {
			oldest := d.order[0]
			d.order = d.order[1:]
			delete(d.seen, oldest)
		}
		d.order = append(d.order, key)
	}
	d.seen[key] = struct{}{}
	return false
}

// Size returns the current number of entries in the deduper.
func (d *inMemoryDeduper) Size() int64 {
	return int64(len(d.seen))
}

// Filter keeps the first item per key and reports how many were dropped.
// Order of the kept items is preserved.
func Filter[T any](ctx context.Context, d Deduper, items []T, key func(T) string) (kept []T, dropped int) {
	kept = make([]T, 0, len(items))
	for _, it := range items {
		if d.SeenAndRecord(ctx, key(it)) {
			dropped++
			continue
		}
		kept = append(kept, it)
	}
	return kept, dropped
}
