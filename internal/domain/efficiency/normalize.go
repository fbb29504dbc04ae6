package efficiency

import (
	"math"

	"github.com/okian/transferiq/internal/domain/stats"
	"github.com/okian/transferiq/internal/domain/types"
)

const (
	scaleMin = 0
	scaleMax = 100
)

// MinMax scales the present values of ns onto [0,100]. Absent values stay
// absent. When every present value is equal the range is degenerate and each
// present value receives the degenerate score.
func MinMax(ns []types.NullFloat, degenerate float64) []types.NullFloat {
	out := make([]types.NullFloat, len(ns))
	lo, hi, ok := stats.Range(ns)
	if !ok {
		return out
	}
	for i, n := range ns {
		if !n.Valid {
			continue
		}
		if hi == lo {
			out[i] = types.Some(degenerate)
			continue
		}
		out[i] = types.Some(clamp((n.Value - lo) / (hi - lo) * scaleMax))
	}
	return out
}

// InvertedMinMax scales like MinMax and flips the result so the lowest value
// scores 100. Degenerate columns keep the degenerate score unflipped.
func InvertedMinMax(ns []types.NullFloat, degenerate float64) []types.NullFloat {
	out := MinMax(ns, degenerate)
	lo, hi, ok := stats.Range(ns)
	if !ok || hi == lo {
		return out
	}
	for i := range out {
		if out[i].Valid {
			out[i] = types.Some(scaleMax - out[i].Value)
		}
	}
	return out
}

// imputeTerm returns the composite contribution of a normalized cost column:
// absent entries become imputed, and a column with no present value at all
// is imputed wholesale.
func imputeTerm(ns []types.NullFloat, imputed float64) []float64 {
	out := make([]float64, len(ns))
	for i, n := range ns {
		out[i] = n.Or(imputed)
	}
	return out
}

func clamp(v float64) float64 {
	return math.Max(scaleMin, math.Min(scaleMax, v))
}
