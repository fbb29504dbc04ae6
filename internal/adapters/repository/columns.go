package repository

// Input and enriched column names.
const (
	ColPlayerName          = "player_name"
	ColClubName            = "club_name"
	ColPosition            = "position"
	ColAge                 = "age"
	ColSeason              = "season"
	ColFeeMillions         = "fee_millions"
	ColGoals               = "perf_after_goals"
	ColAssists             = "perf_after_assists"
	ColMinutes             = "perf_after_minutes"
	ColLeague              = "league"
	ColGoalContribution    = "goal_contribution_after"
	ColPerformanceIndex    = "performance_index"
	ColPerformanceIndexNrm = "performance_index_normalized"
	ColVfMScore            = "vfm_score"
	ColCostPerGoal         = "cost_per_goal"
	ColCostPerAssist       = "cost_per_assist"
	ColCostPerContribution = "cost_per_contribution"
	ColEfficiencyScore     = "efficiency_score"
	ColEfficiencyCategory  = "efficiency_category"

	leagueIndicatorPrefix = "league_"
)

// RequiredInputColumns must be present in the raw transfer table.
var RequiredInputColumns = []string{
	ColPlayerName, ColClubName, ColFeeMillions, ColAge, ColSeason,
	ColGoals, ColAssists, ColMinutes,
}

// PositionIndicators maps one-hot position columns to labels. Later entries
// win when a row sets several.
var PositionIndicators = []struct {
	Column string
	Label  string
}{
	{"is_forward", "Forward"},
	{"is_midfielder", "Midfielder"},
	{"is_defender", "Defender"},
	{"is_goalkeeper", "Goalkeeper"},
}

// EnrichedColumns is the enriched table header, in output order.
var EnrichedColumns = []string{
	ColPlayerName, ColClubName, ColPosition, ColAge, ColSeason,
	ColFeeMillions, ColGoals, ColAssists, ColMinutes,
	ColGoalContribution, ColPerformanceIndex, ColPerformanceIndexNrm,
	ColVfMScore, ColCostPerGoal, ColCostPerAssist, ColCostPerContribution,
	ColEfficiencyScore, ColEfficiencyCategory, ColLeague,
}

// requiredEnrichedColumns are needed to reload an enriched table; position
// and league fall back to Unknown.
var requiredEnrichedColumns = []string{
	ColPlayerName, ColClubName, ColAge, ColSeason, ColFeeMillions,
	ColGoals, ColAssists, ColMinutes, ColGoalContribution,
	ColPerformanceIndex, ColPerformanceIndexNrm, ColVfMScore,
	ColCostPerGoal, ColCostPerAssist, ColCostPerContribution,
	ColEfficiencyScore, ColEfficiencyCategory,
}
