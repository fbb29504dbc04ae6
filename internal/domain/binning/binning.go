// Package binning assigns continuous values to labelled, right-closed bins.
package binning

import (
	"fmt"
	"sort"

	"github.com/okian/transferiq/internal/domain/types"
)

// Bins is an ordered set of right-closed intervals (Edges[i], Edges[i+1]]
// labelled Labels[i]. Values at or below Edges[0] or above the last edge fall
// outside every bin.
type Bins struct {
	Edges  []float64
	Labels []string
}

// New validates edges and labels and returns the bins.
func New(edges []float64, labels []string) (Bins, error) {
	if len(edges) < 2 {
		return Bins{}, fmt.Errorf("binning: need at least two edges, got %d", len(edges))
	}
	for i := 1; i < len(edges); i++ {
		if edges[i] <= edges[i-1] {
			return Bins{}, fmt.Errorf("binning: edges must be strictly ascending at index %d", i)
		}
	}
	if len(labels) != len(edges)-1 {
		return Bins{}, fmt.Errorf("binning: %d labels for %d bins", len(labels), len(edges)-1)
	}
	return Bins{Edges: edges, Labels: labels}, nil
}

// Len returns the number of bins.
func (b Bins) Len() int { return len(b.Labels) }

// Index returns the bin index holding v, or false when v is absent or out of
// range.
func (b Bins) Index(v types.NullFloat) (int, bool) {
	if !v.Valid || len(b.Edges) < 2 {
		return 0, false
	}
	x := v.Value
	last := len(b.Edges) - 1
	if x <= b.Edges[0] || x > b.Edges[last] {
		return 0, false
	}
	// First edge >= x closes the bin on the right.
	i := sort.SearchFloat64s(b.Edges, x)
	return i - 1, true
}

// Label returns the label of the bin holding v, or "" when unbinned.
func (b Bins) Label(v types.NullFloat) string {
	i, ok := b.Index(v)
	if !ok {
		return ""
	}
	return b.Labels[i]
}
