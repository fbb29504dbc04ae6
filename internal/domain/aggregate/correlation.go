package aggregate

import (
	"sort"
	"strconv"

	"github.com/okian/transferiq/internal/domain/model"
	"github.com/okian/transferiq/internal/domain/stats"
	"github.com/okian/transferiq/internal/domain/types"
)

// Metrics entering the correlation matrix.
const (
	MetricFee        = "fee_millions"
	MetricAge        = "age"
	MetricEfficiency = "efficiency_score"
	MetricVfM        = "vfm_score"
	MetricGoals      = "perf_after_goals"
	MetricAssists    = "perf_after_assists"
)

// CorrelationMetrics is the matrix order.
var CorrelationMetrics = []string{MetricFee, MetricAge, MetricEfficiency, MetricVfM, MetricGoals, MetricAssists}

// Matrix is a symmetric pairwise-complete Pearson matrix.
type Matrix struct {
	Metrics []string
	Values  [][]types.NullFloat
}

// Correlation is one metric's coefficient against a reference metric.
type Correlation struct {
	Metric      string          `json:"metric"`
	Coefficient types.NullFloat `json:"coefficient"`
}

// Correlate computes the matrix over CorrelationMetrics. Constant columns
// yield absent coefficients, including on the diagonal.
func Correlate(records []model.EnrichedRecord) Matrix {
	cols := make([][]types.NullFloat, len(CorrelationMetrics))
	for i, m := range CorrelationMetrics {
		cols[i] = make([]types.NullFloat, len(records))
		for j, r := range records {
			cols[i][j] = metricValue(r, m)
		}
	}
	m := Matrix{Metrics: CorrelationMetrics, Values: make([][]types.NullFloat, len(cols))}
	for i := range cols {
		m.Values[i] = make([]types.NullFloat, len(cols))
	}
	for i := range cols {
		for j := i; j < len(cols); j++ {
			c := stats.Pearson(cols[i], cols[j])
			if i == j && c.Valid {
				c = types.Some(1)
			}
			m.Values[i][j] = c
			m.Values[j][i] = c
		}
	}
	return m
}

// With returns every other metric's coefficient against metric, highest
// first; absent coefficients go last in matrix order.
func (m Matrix) With(metric string) []Correlation {
	ref := -1
	for i, name := range m.Metrics {
		if name == metric {
			ref = i
		}
	}
	if ref < 0 {
		return nil
	}
	out := make([]Correlation, 0, len(m.Metrics)-1)
	for i, name := range m.Metrics {
		if i == ref {
			continue
		}
		out = append(out, Correlation{Metric: name, Coefficient: m.Values[ref][i]})
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Coefficient, out[j].Coefficient
		if a.Valid != b.Valid {
			return a.Valid
		}
		return a.Valid && a.Value > b.Value
	})
	return out
}

// CorrelationHeader is the header of the rendered efficiency correlations.
var CorrelationHeader = []string{"metric", "correlation_with_efficiency_score"}

// CorrelationRecords renders coefficients to three decimals.
func CorrelationRecords(cs []Correlation) [][]string {
	out := make([][]string, len(cs))
	for i, c := range cs {
		out[i] = []string{c.Metric, c.Coefficient.FormatFixed(3)}
	}
	return out
}

// Records renders the full matrix with a leading metric column.
func (m Matrix) Records() ([]string, [][]string) {
	header := append([]string{"metric"}, m.Metrics...)
	rows := make([][]string, len(m.Metrics))
	for i, name := range m.Metrics {
		row := make([]string, 0, len(m.Metrics)+1)
		row = append(row, name)
		for _, v := range m.Values[i] {
			row = append(row, v.FormatFixed(3))
		}
		rows[i] = row
	}
	return header, rows
}

func metricValue(r model.EnrichedRecord, metric string) types.NullFloat {
	switch metric {
	case MetricFee:
		return r.FeeMillions
	case MetricAge:
		return r.Age
	case MetricEfficiency:
		return r.EfficiencyScore
	case MetricVfM:
		return r.VfMScore
	case MetricGoals:
		return r.Goals
	case MetricAssists:
		return r.Assists
	}
	return types.None()
}

// formatCoefficient renders c for logs.
func formatCoefficient(c types.NullFloat) string {
	if !c.Valid {
		return "n/a"
	}
	return strconv.FormatFloat(c.Value, 'f', 3, 64)
}
