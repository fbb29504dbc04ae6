// Package model contains domain models passed between layers.
package model

import "github.com/okian/transferiq/internal/domain/types"

// Labels used when a categorical column cannot be resolved.
const (
	UnknownPosition = "Unknown"
	UnknownLeague   = "Unknown"
)

// Efficiency categories, best first.
const (
	CategoryExcellent = "Excellent"
	CategoryGood      = "Good"
	CategoryAverage   = "Average"
	CategoryPoor      = "Poor"
	CategoryVeryPoor  = "Very Poor"
	CategoryUnknown   = "Unknown"
)

// Categories lists every efficiency category in display order.
var Categories = []string{
	CategoryExcellent,
	CategoryGood,
	CategoryAverage,
	CategoryPoor,
	CategoryVeryPoor,
	CategoryUnknown,
}

// TransferRecord is one input row: a transfer plus the player's
// post-transfer performance counters. Immutable once loaded.
type TransferRecord struct {
	PlayerName  string
	ClubName    string
	Position    string          // collapsed from a position column or is_* indicators
	League      string          // collapsed from a league column or league_* indicators
	Age         types.NullFloat // years at transfer
	Season      string
	FeeMillions types.NullFloat // transfer fee in millions
	Goals       types.NullFloat // perf_after_goals
	Assists     types.NullFloat // perf_after_assists
	Minutes     types.NullFloat // perf_after_minutes
}

// Key identifies a transfer for duplicate detection.
func (r TransferRecord) Key() string {
	return r.PlayerName + "|" + r.ClubName + "|" + r.Season
}

// EnrichedRecord is a paid transfer with every derived metric attached.
// Produced once by the deriver and only read afterwards.
type EnrichedRecord struct {
	TransferRecord

	GoalContribution           types.NullFloat // goals + assists
	PerformanceIndex           types.NullFloat
	PerformanceIndexNormalized types.NullFloat // [0,100] across the paid set
	VfMScore                   types.NullFloat // normalized index per million
	CostPerGoal                types.NullFloat // missing when goals == 0
	CostPerAssist              types.NullFloat // missing when assists == 0
	CostPerContribution        types.NullFloat // missing when goals+assists == 0
	EfficiencyScore            types.NullFloat // weighted composite, [0,100]
	EfficiencyCategory         string
}

// Fee returns the fee in millions; enriched records always carry one.
func (r EnrichedRecord) Fee() float64 { return r.FeeMillions.Value }
