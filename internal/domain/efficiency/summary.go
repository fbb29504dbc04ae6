package efficiency

import (
	"time"

	"github.com/okian/transferiq/internal/domain/model"
	"github.com/okian/transferiq/internal/domain/types"
)

// Exclusions counts input rows kept out of the paid set.
type Exclusions struct {
	Free       int `json:"free"`
	MissingFee int `json:"missing_fee"`
	Duplicate  int `json:"duplicate"`
}

// Summary is the deriver's scalar report, written as JSON. Averages over an
// empty column encode as null.
type Summary struct {
	RunID       string    `json:"run_id"`
	GeneratedAt time.Time `json:"generated_at"`

	TotalTransfers         int             `json:"total_transfers"`
	AvgFee                 types.NullFloat `json:"avg_fee"`
	MedianFee              types.NullFloat `json:"median_fee"`
	AvgVfMScore            types.NullFloat `json:"avg_vfm_score"`
	AvgCostPerGoal         types.NullFloat `json:"avg_cost_per_goal"`
	AvgCostPerContribution types.NullFloat `json:"avg_cost_per_contribution"`
	AvgEfficiencyScore     types.NullFloat `json:"avg_efficiency_score"`

	ExcellentTransfers int `json:"excellent_transfers"`
	GoodTransfers      int `json:"good_transfers"`
	AverageTransfers   int `json:"average_transfers"`
	PoorTransfers      int `json:"poor_transfers"`
	VeryPoorTransfers  int `json:"very_poor_transfers"`
	UnknownTransfers   int `json:"unknown_transfers"`

	Excluded Exclusions `json:"excluded"`
}

// CategoryCounts returns the per-category counts keyed by category label.
func (s Summary) CategoryCounts() map[string]int {
	return map[string]int{
		model.CategoryExcellent: s.ExcellentTransfers,
		model.CategoryGood:      s.GoodTransfers,
		model.CategoryAverage:   s.AverageTransfers,
		model.CategoryPoor:      s.PoorTransfers,
		model.CategoryVeryPoor:  s.VeryPoorTransfers,
		model.CategoryUnknown:   s.UnknownTransfers,
	}
}

func (s *Summary) count(category string) {
	switch category {
	case model.CategoryExcellent:
		s.ExcellentTransfers++
	case model.CategoryGood:
		s.GoodTransfers++
	case model.CategoryAverage:
		s.AverageTransfers++
	case model.CategoryPoor:
		s.PoorTransfers++
	case model.CategoryVeryPoor:
		s.VeryPoorTransfers++
	default:
		s.UnknownTransfers++
	}
}

// Coverage describes how many paid transfers carry a cost metric and how
// that metric is distributed.
type Coverage struct {
	Metric string
	Label  string // scorers, assisters, contributors
	Count  int
	Share  float64 // percent of paid transfers
	Min    types.NullFloat
	Mean   types.NullFloat
	Median types.NullFloat
	Max    types.NullFloat
}
