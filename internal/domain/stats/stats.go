// Package stats provides missing-aware descriptive statistics over nullable
// columns. Absent values are skipped by contract; a statistic that cannot be
// computed (empty input, one sample for a spread, zero variance for a
// correlation) is itself absent.
package stats

import (
	"math"

	mstats "github.com/montanaflynn/stats"

	"github.com/okian/transferiq/internal/domain/types"
)

// Summary describes one nullable column.
type Summary struct {
	Count  int
	Mean   types.NullFloat
	Median types.NullFloat
	Std    types.NullFloat // sample standard deviation (n-1)
	Min    types.NullFloat
	Max    types.NullFloat
}

// Describe summarizes the present values of ns.
func Describe(ns []types.NullFloat) Summary {
	vals := types.Values(ns)
	s := Summary{Count: len(vals)}
	if len(vals) == 0 {
		return s
	}
	s.Mean = Mean(ns)
	s.Median = wrap(mstats.Median(vals))
	s.Std = StdDev(ns)
	s.Min = wrap(mstats.Min(vals))
	s.Max = wrap(mstats.Max(vals))
	return s
}

// Mean returns the arithmetic mean of the present values.
func Mean(ns []types.NullFloat) types.NullFloat {
	return wrap(mstats.Mean(types.Values(ns)))
}

// Median returns the median of the present values.
func Median(ns []types.NullFloat) types.NullFloat {
	return wrap(mstats.Median(types.Values(ns)))
}

// StdDev returns the sample standard deviation; fewer than two values yield
// an absent result.
func StdDev(ns []types.NullFloat) types.NullFloat {
	vals := types.Values(ns)
	if len(vals) < 2 {
		return types.None()
	}
	return wrap(mstats.StandardDeviationSample(vals))
}

// Range returns the min and max of the present values; ok is false when none
// are present.
func Range(ns []types.NullFloat) (lo, hi float64, ok bool) {
	for _, n := range ns {
		if !n.Valid {
			continue
		}
		if !ok {
			lo, hi, ok = n.Value, n.Value, true
			continue
		}
		lo = math.Min(lo, n.Value)
		hi = math.Max(hi, n.Value)
	}
	return lo, hi, ok
}

// Pearson returns the correlation of xs and ys over the rows where both are
// present. Fewer than two complete pairs or a constant column yield an absent
// coefficient.
func Pearson(xs, ys []types.NullFloat) types.NullFloat {
	a, b := pairs(xs, ys)
	if len(a) < 2 {
		return types.None()
	}
	if constant(a) || constant(b) {
		return types.None()
	}
	r, err := mstats.Correlation(a, b)
	if err != nil {
		return types.None()
	}
	return types.FromFloat(math.Max(-1, math.Min(1, r)))
}

// LinearFit returns the least-squares line y = slope*x + intercept through the
// complete pairs; ok is false for fewer than two pairs or constant x.
func LinearFit(xs, ys []types.NullFloat) (slope, intercept float64, ok bool) {
	a, b := pairs(xs, ys)
	if len(a) < 2 || constant(a) {
		return 0, 0, false
	}
	cov, err := mstats.Covariance(a, b)
	if err != nil {
		return 0, 0, false
	}
	varX, err := mstats.SampleVariance(a)
	if err != nil || varX == 0 {
		return 0, 0, false
	}
	mx, _ := mstats.Mean(a)
	my, _ := mstats.Mean(b)
	slope = cov / varX
	return slope, my - slope*mx, true
}

func pairs(xs, ys []types.NullFloat) ([]float64, []float64) {
	n := len(xs)
	if len(ys) < n {
		n = len(ys)
	}
	a := make([]float64, 0, n)
	b := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		if xs[i].Valid && ys[i].Valid {
			a = append(a, xs[i].Value)
			b = append(b, ys[i].Value)
		}
	}
	return a, b
}

func constant(vals []float64) bool {
	for _, v := range vals[1:] {
		if v != vals[0] {
			return false
		}
	}
	return true
}

func wrap(v float64, err error) types.NullFloat {
	if err != nil {
		return types.None()
	}
	return types.FromFloat(v)
}
