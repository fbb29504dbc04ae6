package aggregate

import (
	"strconv"

	"github.com/okian/transferiq/internal/domain/types"
)

// outputPrecision is the number of decimals in rendered tables.
const outputPrecision = 2

// Dimension names a grouping of the enriched records.
type Dimension string

// Supported dimensions, in report order.
const (
	FeeBracket Dimension = "fee_bracket"
	Position   Dimension = "position"
	League     Dimension = "league"
	AgeGroup   Dimension = "age_group"
)

// Dimensions lists every dimension in report order.
var Dimensions = []Dimension{FeeBracket, Position, League, AgeGroup}

// Title is a display name for d.
func (d Dimension) Title() string {
	switch d {
	case FeeBracket:
		return "Fee Bracket"
	case Position:
		return "Position"
	case League:
		return "League"
	case AgeGroup:
		return "Age Group"
	}
	return string(d)
}

// Row holds one group's statistics. Means skip missing values; a group with
// no present value has an absent mean.
type Row struct {
	Label   string
	Records int

	EfficiencyMean   types.NullFloat
	EfficiencyMedian types.NullFloat
	EfficiencyStd    types.NullFloat // sample, absent below two values
	EfficiencyCount  int

	VfMMean                 types.NullFloat
	CostPerGoalMean         types.NullFloat
	CostPerContributionMean types.NullFloat
	FeeMean                 types.NullFloat
	GoalsMean               types.NullFloat
	AssistsMean             types.NullFloat
}

// Table is one dimension's summary.
type Table struct {
	Dimension Dimension
	Rows      []Row
	Unbinned  int // records that fell outside every bin
}

// Populated returns the number of groups with at least one record.
func (t Table) Populated() int {
	n := 0
	for _, r := range t.Rows {
		if r.Records > 0 {
			n++
		}
	}
	return n
}

// Total returns the number of records across all groups.
func (t Table) Total() int {
	n := 0
	for _, r := range t.Rows {
		n += r.Records
	}
	return n
}

// Observed returns the rows holding at least one record.
func (t Table) Observed() []Row {
	out := make([]Row, 0, len(t.Rows))
	for _, r := range t.Rows {
		if r.Records > 0 {
			out = append(out, r)
		}
	}
	return out
}

// Header returns the column names of the rendered table.
func (t Table) Header() []string {
	return []string{
		string(t.Dimension),
		"records",
		"efficiency_score_mean",
		"efficiency_score_median",
		"efficiency_score_std",
		"efficiency_score_count",
		"vfm_score_mean",
		"cost_per_goal_mean",
		"cost_per_contribution_mean",
		"fee_millions_mean",
		"perf_after_goals_mean",
		"perf_after_assists_mean",
	}
}

// Records renders the rows with values rounded to two decimals and missing
// values as blank cells.
func (t Table) Records() [][]string {
	out := make([][]string, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = []string{
			r.Label,
			strconv.Itoa(r.Records),
			r.EfficiencyMean.FormatFixed(outputPrecision),
			r.EfficiencyMedian.FormatFixed(outputPrecision),
			r.EfficiencyStd.FormatFixed(outputPrecision),
			strconv.Itoa(r.EfficiencyCount),
			r.VfMMean.FormatFixed(outputPrecision),
			r.CostPerGoalMean.FormatFixed(outputPrecision),
			r.CostPerContributionMean.FormatFixed(outputPrecision),
			r.FeeMean.FormatFixed(outputPrecision),
			r.GoalsMean.FormatFixed(outputPrecision),
			r.AssistsMean.FormatFixed(outputPrecision),
		}
	}
	return out
}
