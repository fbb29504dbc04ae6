package sample

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"strings"

	"github.com/google/uuid"

	"github.com/okian/transferiq/internal/domain/model"
	"github.com/okian/transferiq/internal/domain/types"
	"github.com/okian/transferiq/pkg/logger"
)

// Leagues are the league indicator columns the generator emits.
var Leagues = []string{"Premier League", "La Liga", "Serie A", "Bundesliga", "Ligue 1"}

var clubs = []string{
	"Northbridge", "Southport", "Eastvale", "Westfield", "Harbor City",
	"Ironmoor", "Kingsford", "Lakeside", "Redcliff", "Stonegate",
}

var seasons = []string{"2015/16", "2016/17", "2017/18", "2018/19", "2019/20", "2020/21", "2021/22", "2022/23"}

// Fee model: log-normal around a few million, capped at the top bracket.
const (
	feeLogMean  = 1.6
	feeLogSigma = 1.1
	maxFee      = 180.0

	minAge   = 17
	ageRange = 19

	maxMinutes = 3400.0
)

// Performance tiers.
const (
	caseAveragePerformer = 0
	caseHighPerformer    = 1
	caseLowPerformer     = 2
	caseElitePerformer   = 3
	caseBenchPlayer      = 4
	caseWideRange        = 5
	tierCount            = 6
)

// goalRate and assistRate are per-90 base rates per position index.
var (
	goalRate   = []float64{0.45, 0.18, 0.05, 0.0}
	assistRate = []float64{0.20, 0.22, 0.07, 0.01}
)

// Generate builds cfg.Count transfer records. The same seed always yields
// the same rows.
func Generate(ctx context.Context, cfg Config) ([]model.TransferRecord, Stats, error) {
	if cfg.Count <= 0 {
		return nil, Stats{}, fmt.Errorf("sample: count must be positive, got %d", cfg.Count)
	}
	logger.Get().Info(ctx, "generating sample transfers",
		logger.Int("count", cfg.Count),
		logger.Int("seed", int(cfg.Seed)),
	)

	rng := rand.New(rand.NewSource(cfg.Seed)) //nolint:gosec // deterministic seed for reproducible samples
	out := make([]model.TransferRecord, cfg.Count)
	var st Stats
	for i := range out {
		if i%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, Stats{}, fmt.Errorf("context cancelled during sample generation: %w", err)
			}
		}
		r, err := generateSingle(rng, cfg)
		if err != nil {
			return nil, Stats{}, err
		}
		switch {
		case !r.FeeMillions.Valid:
			st.MissingFees++
		case r.FeeMillions.Value == 0:
			st.FreeTransfers++
		}
		if r.League == model.UnknownLeague {
			st.UnknownLeague++
		}
		if r.Position == model.UnknownPosition {
			st.UnknownPosition++
		}
		out[i] = r
	}
	st.Rows = len(out)

	logger.Get().Info(ctx, "generated sample transfers",
		logger.Int("rows", st.Rows),
		logger.Int("free", st.FreeTransfers),
		logger.Int("missing_fee", st.MissingFees),
	)
	return out, st, nil
}

func generateSingle(rng *rand.Rand, cfg Config) (model.TransferRecord, error) {
	id, err := uuid.NewRandomFromReader(rng)
	if err != nil {
		return model.TransferRecord{}, fmt.Errorf("sample: player id: %w", err)
	}

	pos := rng.Intn(len(PositionLabels))
	position := PositionLabels[pos]
	league := Leagues[rng.Intn(len(Leagues))]
	if rng.Float64() < cfg.UnknownShare {
		position = model.UnknownPosition
	}
	if rng.Float64() < cfg.UnknownShare {
		league = model.UnknownLeague
	}

	r := model.TransferRecord{
		PlayerName: "Player " + strings.ToUpper(id.String()[:8]),
		ClubName:   clubs[rng.Intn(len(clubs))],
		Position:   position,
		League:     league,
		Age:        types.Some(float64(minAge + rng.Intn(ageRange))),
		Season:     seasons[rng.Intn(len(seasons))],
	}

	switch p := rng.Float64(); {
	case p < cfg.MissingFeeShare:
		r.FeeMillions = types.None()
	case p < cfg.MissingFeeShare+cfg.FreeShare:
		r.FeeMillions = types.Some(0)
	default:
		fee := math.Exp(feeLogMean + feeLogSigma*rng.NormFloat64())
		r.FeeMillions = types.Some(types.Round(math.Min(maxFee, math.Max(0.1, fee)), 2))
	}

	minutes := math.Round(generateMinutes(rng))
	form := generateForm(rng)
	nineties := minutes / 90
	r.Goals = types.Some(math.Floor(goalRate[pos] * nineties * form * (0.5 + rng.Float64())))
	r.Assists = types.Some(math.Floor(assistRate[pos] * nineties * form * (0.5 + rng.Float64())))
	r.Minutes = types.Some(minutes)
	if rng.Float64() < cfg.MissingMinShare {
		r.Minutes = types.None()
	}
	return r, nil
}

// generateForm returns a multiplier on the base scoring rates.
func generateForm(rng *rand.Rand) float64 {
	switch rng.Intn(tierCount) {
	case caseAveragePerformer:
		return 0.8 + rng.Float64()*0.4
	case caseHighPerformer:
		return 1.2 + rng.Float64()*0.4
	case caseLowPerformer:
		return 0.3 + rng.Float64()*0.4
	case caseElitePerformer:
		return 1.6 + rng.Float64()*0.6
	case caseBenchPlayer:
		return 0.1 + rng.Float64()*0.3
	case caseWideRange:
		return rng.Float64() * 2
	default:
		return 1
	}
}

// generateMinutes skews towards regular starters with a tail of fringe players.
func generateMinutes(rng *rand.Rand) float64 {
	if rng.Intn(5) == 0 {
		return rng.Float64() * 600
	}
	return 600 + rng.Float64()*(maxMinutes-600)
}
