// Package efficiency derives value-for-money metrics and a composite
// efficiency score for paid transfers.
//
// The pipeline runs in a fixed order over the whole paid set:
//  1. performance index from the post-transfer counters
//  2. min-max normalization of the index to [0,100]
//  3. value-for-money = normalized index / fee
//  4. cost per goal, assist and contribution (missing when the counter is 0)
//  5. normalized VfM and inverted normalized cost terms, missing terms imputed
//  6. weighted composite and category bucketing
package efficiency

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/okian/transferiq/internal/config"
	"github.com/okian/transferiq/internal/domain/dedupe"
	"github.com/okian/transferiq/internal/domain/model"
	"github.com/okian/transferiq/internal/domain/ranking"
	"github.com/okian/transferiq/internal/domain/stats"
	"github.com/okian/transferiq/internal/domain/types"
	"github.com/okian/transferiq/pkg/logger"
	"github.com/okian/transferiq/pkg/metrics"
)

const minutesPerMatch = 90

// Exclusion reasons, used as metric labels.
const (
	ReasonFree       = "free_transfer"
	ReasonMissingFee = "missing_fee"
	ReasonDuplicate  = "duplicate"
)

// Result is everything one derivation produces.
type Result struct {
	Records  []model.EnrichedRecord
	Summary  Summary
	Top      []types.Entry
	Coverage []Coverage
}

// Deriver turns raw transfer records into enriched records.
type Deriver struct {
	perf           config.PerformanceWeights
	composite      config.CompositeWeights
	thresholds     config.CategoryThresholds
	imputed        float64
	degenerate     float64
	topN           int
	dropDuplicates bool

	runID   string
	now     func() time.Time
	logger  logger.Logger
	metrics *metrics.Manager
}

// NewDeriver creates a deriver with the default formula parameters.
func NewDeriver(opts ...Option) *Deriver {
	defaults := config.New().Metrics
	d := &Deriver{
		perf:       defaults.PerformanceWeights,
		composite:  defaults.CompositeWeights,
		thresholds: defaults.CategoryThresholds,
		imputed:    defaults.ImputedScore,
		degenerate: defaults.DegenerateScore,
		topN:       defaults.TopN,
		now:        time.Now,
		logger:     logger.Get().Named("deriver"),
		metrics:    metrics.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.runID == "" {
		d.runID = uuid.NewString()
	}
	return d
}

// Derive filters the paid transfers out of in and computes every metric.
// Returns ErrNoPaidTransfers when nothing is left after filtering.
func (d *Deriver) Derive(ctx context.Context, in []model.TransferRecord) (Result, error) {
	log := d.logger.With(logger.String("run_id", d.runID))
	d.metrics.RecordsLoaded("derive", len(in))

	paid, excl := d.filterPaid(ctx, in)
	log.Info(ctx, "filtered paid transfers",
		logger.Int("loaded", len(in)),
		logger.Int("paid", len(paid)),
		logger.Int("free", excl.Free),
		logger.Int("missing_fee", excl.MissingFee),
		logger.Int("duplicate", excl.Duplicate),
	)
	if len(paid) == 0 {
		return Result{}, fmt.Errorf("%w: %d rows loaded", ErrNoPaidTransfers, len(in))
	}
	if err := ctx.Err(); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrCancelled, err)
	}

	out := make([]model.EnrichedRecord, len(paid))
	index := make([]types.NullFloat, len(paid))
	for i, r := range paid {
		out[i].TransferRecord = r
		out[i].GoalContribution = add(r.Goals, r.Assists)
		index[i] = d.performanceIndex(r)
		out[i].PerformanceIndex = index[i]
	}

	normIndex := MinMax(index, d.degenerate)
	vfm := make([]types.NullFloat, len(out))
	cpg := make([]types.NullFloat, len(out))
	cpc := make([]types.NullFloat, len(out))
	for i := range out {
		fee := out[i].Fee()
		out[i].PerformanceIndexNormalized = normIndex[i]
		if normIndex[i].Valid {
			vfm[i] = types.Some(normIndex[i].Value / fee)
		}
		out[i].VfMScore = vfm[i]
		out[i].CostPerGoal = costPer(fee, out[i].Goals)
		out[i].CostPerAssist = costPer(fee, out[i].Assists)
		out[i].CostPerContribution = costPer(fee, out[i].GoalContribution)
		cpg[i] = out[i].CostPerGoal
		cpc[i] = out[i].CostPerContribution
	}

	vfmNorm := MinMax(vfm, d.degenerate)
	cpgTerm := imputeTerm(InvertedMinMax(cpg, d.degenerate), d.imputed)
	cpcTerm := imputeTerm(InvertedMinMax(cpc, d.degenerate), d.imputed)

	w := d.composite
	for i := range out {
		if vfmNorm[i].Valid {
			score := w.VfM*vfmNorm[i].Value + w.CostPerGoal*cpgTerm[i] + w.CostPerContribution*cpcTerm[i]
			out[i].EfficiencyScore = types.Some(clamp(score))
		}
		out[i].EfficiencyCategory = Categorize(out[i].EfficiencyScore, d.thresholds)
	}

	if err := ctx.Err(); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrCancelled, err)
	}

	res := Result{Records: out}
	res.Summary = d.summarize(out, excl)
	res.Coverage = coverage(out)
	top, err := ranking.TopN(out, d.topN)
	if err != nil {
		return Result{}, fmt.Errorf("rank top transfers: %w", err)
	}
	res.Top = top

	d.record(out, res.Summary)
	d.logResult(ctx, log, res)
	return res, nil
}

// Categorize buckets a score; bounds are inclusive at the lower edge.
func Categorize(score types.NullFloat, t config.CategoryThresholds) string {
	if !score.Valid {
		return model.CategoryUnknown
	}
	switch s := score.Value; {
	case s >= t.Excellent:
		return model.CategoryExcellent
	case s >= t.Good:
		return model.CategoryGood
	case s >= t.Average:
		return model.CategoryAverage
	case s >= t.Poor:
		return model.CategoryPoor
	default:
		return model.CategoryVeryPoor
	}
}

// performanceIndex returns goals·w_goal + assists·w_assist + (minutes/90)·w_per90.
// Any missing counter makes the index missing.
func (d *Deriver) performanceIndex(r model.TransferRecord) types.NullFloat {
	if !r.Goals.Valid || !r.Assists.Valid || !r.Minutes.Valid {
		return types.None()
	}
	return types.FromFloat(r.Goals.Value*d.perf.Goal +
		r.Assists.Value*d.perf.Assist +
		(r.Minutes.Value/minutesPerMatch)*d.perf.Per90Minute)
}

func (d *Deriver) filterPaid(ctx context.Context, in []model.TransferRecord) ([]model.TransferRecord, Exclusions) {
	var excl Exclusions
	paid := make([]model.TransferRecord, 0, len(in))
	for _, r := range in {
		switch {
		case !r.FeeMillions.Valid:
			excl.MissingFee++
		case r.FeeMillions.Value <= 0:
			excl.Free++
		default:
			paid = append(paid, r)
		}
	}
	if d.dropDuplicates {
		paid, excl.Duplicate = dedupe.Filter(ctx, dedupe.NewInMemoryDeduper(), paid, model.TransferRecord.Key)
	}
	return paid, excl
}

func (d *Deriver) summarize(out []model.EnrichedRecord, excl Exclusions) Summary {
	s := Summary{
		RunID:          d.runID,
		GeneratedAt:    d.now().UTC(),
		TotalTransfers: len(out),
		Excluded:       excl,
	}
	fee := column(out, func(r model.EnrichedRecord) types.NullFloat { return r.FeeMillions })
	s.AvgFee = stats.Mean(fee)
	s.MedianFee = stats.Median(fee)
	s.AvgVfMScore = stats.Mean(column(out, func(r model.EnrichedRecord) types.NullFloat { return r.VfMScore }))
	s.AvgCostPerGoal = stats.Mean(column(out, func(r model.EnrichedRecord) types.NullFloat { return r.CostPerGoal }))
	s.AvgCostPerContribution = stats.Mean(column(out, func(r model.EnrichedRecord) types.NullFloat { return r.CostPerContribution }))
	s.AvgEfficiencyScore = stats.Mean(column(out, func(r model.EnrichedRecord) types.NullFloat { return r.EfficiencyScore }))
	for _, r := range out {
		s.count(r.EfficiencyCategory)
	}
	return s
}

func coverage(out []model.EnrichedRecord) []Coverage {
	specs := []struct {
		metric, label string
		get           func(model.EnrichedRecord) types.NullFloat
	}{
		{"cost_per_goal", "scorers", func(r model.EnrichedRecord) types.NullFloat { return r.CostPerGoal }},
		{"cost_per_assist", "assisters", func(r model.EnrichedRecord) types.NullFloat { return r.CostPerAssist }},
		{"cost_per_contribution", "contributors", func(r model.EnrichedRecord) types.NullFloat { return r.CostPerContribution }},
	}
	cov := make([]Coverage, 0, len(specs))
	for _, sp := range specs {
		desc := stats.Describe(column(out, sp.get))
		c := Coverage{
			Metric: sp.metric,
			Label:  sp.label,
			Count:  desc.Count,
			Min:    desc.Min,
			Mean:   desc.Mean,
			Median: desc.Median,
			Max:    desc.Max,
		}
		if len(out) > 0 {
			c.Share = float64(desc.Count) / float64(len(out)) * 100
		}
		cov = append(cov, c)
	}
	return cov
}

func (d *Deriver) record(out []model.EnrichedRecord, s Summary) {
	d.metrics.RecordsExcluded(ReasonFree, s.Excluded.Free)
	d.metrics.RecordsExcluded(ReasonMissingFee, s.Excluded.MissingFee)
	d.metrics.RecordsExcluded(ReasonDuplicate, s.Excluded.Duplicate)

	missing := map[string]int{}
	for _, r := range out {
		if !r.PerformanceIndex.Valid {
			missing["performance_index"]++
		}
		if !r.CostPerGoal.Valid {
			missing["cost_per_goal"]++
		}
		if !r.CostPerAssist.Valid {
			missing["cost_per_assist"]++
		}
		if !r.CostPerContribution.Valid {
			missing["cost_per_contribution"]++
		}
		if !r.EfficiencyScore.Valid {
			missing["efficiency_score"]++
		}
	}
	for metric, n := range missing {
		d.metrics.DerivedMissing(metric, n)
	}
	for category, n := range s.CategoryCounts() {
		d.metrics.SetCategoryRecords(category, n)
	}
}

func (d *Deriver) logResult(ctx context.Context, log logger.Logger, res Result) {
	for _, c := range res.Coverage {
		log.Info(ctx, "cost metric coverage",
			logger.String("metric", c.Metric),
			logger.Int(c.Label, c.Count),
			logger.Float64("share_pct", types.Round(c.Share, 1)),
			nullField("min", c.Min),
			nullField("mean", c.Mean),
			nullField("median", c.Median),
			nullField("max", c.Max),
		)
	}

	s := res.Summary
	log.Info(ctx, "efficiency summary",
		logger.Int("total_transfers", s.TotalTransfers),
		nullField("avg_fee", s.AvgFee),
		nullField("median_fee", s.MedianFee),
		nullField("avg_vfm_score", s.AvgVfMScore),
		nullField("avg_efficiency_score", s.AvgEfficiencyScore),
	)
	counts := s.CategoryCounts()
	for _, category := range model.Categories {
		n := counts[category]
		if n == 0 {
			continue
		}
		log.Info(ctx, "efficiency distribution",
			logger.String("category", category),
			logger.Int("count", n),
			logger.Float64("share_pct", types.Round(float64(n)/float64(s.TotalTransfers)*100, 1)),
		)
	}
	for _, e := range res.Top {
		log.Debug(ctx, "top transfer",
			logger.Int("rank", e.Rank),
			logger.String("player", e.PlayerName),
			logger.String("club", e.ClubName),
			logger.Float64("fee_millions", e.FeeMillions),
			logger.Float64("efficiency_score", types.Round(e.Score, 2)),
			logger.String("category", e.Category),
		)
	}
}

// nullField logs a missing value as null and a present one rounded.
func nullField(key string, n types.NullFloat) logger.Field {
	if !n.Valid {
		return logger.Any(key, nil)
	}
	return logger.Float64(key, types.Round(n.Value, 2))
}

func column(rs []model.EnrichedRecord, get func(model.EnrichedRecord) types.NullFloat) []types.NullFloat {
	out := make([]types.NullFloat, len(rs))
	for i, r := range rs {
		out[i] = get(r)
	}
	return out
}

func add(a, b types.NullFloat) types.NullFloat {
	if !a.Valid || !b.Valid {
		return types.None()
	}
	return types.Some(a.Value + b.Value)
}

// costPer divides fee by a counter; zero, negative or missing counters give
// a missing cost.
func costPer(fee float64, counter types.NullFloat) types.NullFloat {
	if !counter.Valid || counter.Value <= 0 {
		return types.None()
	}
	return types.FromFloat(fee / counter.Value)
}
