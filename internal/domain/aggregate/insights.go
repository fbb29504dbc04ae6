package aggregate

import "github.com/okian/transferiq/internal/domain/types"

// Insight names the group with the highest mean efficiency in a dimension.
type Insight struct {
	Dimension      Dimension `json:"dimension"`
	Label          string    `json:"label"`
	MeanEfficiency float64   `json:"mean_efficiency_score"`
	Records        int       `json:"records"`
}

// Insights returns the argmax of mean efficiency for each table. Ties keep
// the first row in table order; tables with no scored group are left out.
func Insights(tables []Table) []Insight {
	out := make([]Insight, 0, len(tables))
	for _, t := range tables {
		best := -1
		for i, r := range t.Rows {
			if !r.EfficiencyMean.Valid {
				continue
			}
			if best < 0 || r.EfficiencyMean.Value > t.Rows[best].EfficiencyMean.Value {
				best = i
			}
		}
		if best < 0 {
			continue
		}
		r := t.Rows[best]
		out = append(out, Insight{
			Dimension:      t.Dimension,
			Label:          r.Label,
			MeanEfficiency: types.Round(r.EfficiencyMean.Value, outputPrecision),
			Records:        r.Records,
		})
	}
	return out
}

// Summary is the insights document written next to the tables.
type Summary struct {
	Insights               []Insight     `json:"insights"`
	EfficiencyCorrelations []Correlation `json:"efficiency_correlations"`
	SkippedDimensions      []Dimension   `json:"skipped_dimensions"`
}

// Summary returns the report's JSON document.
func (r Report) Summary() Summary {
	s := Summary{
		Insights:               r.Insights,
		EfficiencyCorrelations: make([]Correlation, len(r.EfficiencyCorrelations)),
		SkippedDimensions:      r.Skipped,
	}
	for i, c := range r.EfficiencyCorrelations {
		s.EfficiencyCorrelations[i] = Correlation{Metric: c.Metric, Coefficient: roundNull(c.Coefficient, 3)}
	}
	if s.Insights == nil {
		s.Insights = []Insight{}
	}
	if s.SkippedDimensions == nil {
		s.SkippedDimensions = []Dimension{}
	}
	return s
}

func roundNull(n types.NullFloat, prec int) types.NullFloat {
	if !n.Valid {
		return n
	}
	return types.Some(types.Round(n.Value, prec))
}
