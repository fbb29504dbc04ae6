// Package ranking selects the most and least efficient transfers.
package ranking

import (
	"errors"
	"sort"

	"github.com/okian/transferiq/internal/domain/model"
	"github.com/okian/transferiq/internal/domain/types"
)

// ErrInvalidLimit is returned for a non-positive n.
var ErrInvalidLimit = errors.New("invalid ranking limit")

type scored struct {
	idx   int
	score float64
}

// less returns true if a should appear before b in a descending ranking.
// Equal scores keep input order.
func less(a, b scored) bool {
	if a.score != b.score {
		return a.score > b.score
	}
	return a.idx < b.idx
}

// TopN returns up to n records with the highest efficiency score, best first.
// Records without a score are never ranked.
func TopN(records []model.EnrichedRecord, n int) ([]types.Entry, error) {
	return collect(records, n, false)
}

// BottomN returns up to n records with the lowest efficiency score, worst first.
func BottomN(records []model.EnrichedRecord, n int) ([]types.Entry, error) {
	return collect(records, n, true)
}

func collect(records []model.EnrichedRecord, n int, ascending bool) ([]types.Entry, error) {
	if n < 1 {
		return nil, ErrInvalidLimit
	}

	candidates := make([]scored, 0, len(records))
	for i, r := range records {
		if r.EfficiencyScore.Valid {
			candidates = append(candidates, scored{idx: i, score: r.EfficiencyScore.Value})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if ascending {
			a, b := candidates[i], candidates[j]
			if a.score != b.score {
				return a.score < b.score
			}
			return a.idx < b.idx
		}
		return less(candidates[i], candidates[j])
	})

	if len(candidates) > n {
		candidates = candidates[:n]
	}

	out := make([]types.Entry, 0, len(candidates))
	for pos, c := range candidates {
		r := records[c.idx]
		out = append(out, types.Entry{
			Rank:        pos + 1,
			PlayerName:  r.PlayerName,
			ClubName:    r.ClubName,
			FeeMillions: r.Fee(),
			Goals:       r.Goals,
			Assists:     r.Assists,
			Score:       c.score,
			Category:    r.EfficiencyCategory,
		})
	}
	return out, nil
}
