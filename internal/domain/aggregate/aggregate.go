// Package aggregate groups enriched records by fee bracket, position, league
// and age group, and reports correlations and best-group insights.
package aggregate

import (
	"context"
	"fmt"
	"sort"

	"github.com/okian/transferiq/internal/config"
	"github.com/okian/transferiq/internal/domain/binning"
	"github.com/okian/transferiq/internal/domain/model"
	"github.com/okian/transferiq/internal/domain/stats"
	"github.com/okian/transferiq/internal/domain/types"
	"github.com/okian/transferiq/pkg/logger"
	"github.com/okian/transferiq/pkg/metrics"
)

// Report is the full aggregation output.
type Report struct {
	Tables                 []Table // populated dimensions only, in Dimensions order
	Skipped                []Dimension
	Matrix                 Matrix
	EfficiencyCorrelations []Correlation
	Insights               []Insight
}

// Table returns the table for d, if it was produced.
func (r Report) Table(d Dimension) (Table, bool) {
	for _, t := range r.Tables {
		if t.Dimension == d {
			return t, true
		}
	}
	return Table{}, false
}

// Aggregator computes the dimension tables.
type Aggregator struct {
	fee     binning.Bins
	age     binning.Bins
	logger  logger.Logger
	metrics *metrics.Manager
}

// New creates an aggregator for the given bins.
func New(buckets config.Buckets, opts ...Option) (*Aggregator, error) {
	fee, err := binning.New(buckets.FeeEdges, buckets.FeeLabels)
	if err != nil {
		return nil, fmt.Errorf("%w: fee: %v", ErrInvalidBuckets, err)
	}
	age, err := binning.New(buckets.AgeEdges, buckets.AgeLabels)
	if err != nil {
		return nil, fmt.Errorf("%w: age: %v", ErrInvalidBuckets, err)
	}
	a := &Aggregator{
		fee:     fee,
		age:     age,
		logger:  logger.Get().Named("aggregator"),
		metrics: metrics.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Aggregate builds every dimension table, the correlation report and the
// insights. Dimensions without a populated group are skipped with a warning.
func (a *Aggregator) Aggregate(ctx context.Context, records []model.EnrichedRecord) (Report, error) {
	if len(records) == 0 {
		return Report{}, ErrNoRecords
	}
	a.metrics.RecordsLoaded("report", len(records))

	var rep Report
	for _, d := range Dimensions {
		if err := ctx.Err(); err != nil {
			return Report{}, err
		}
		t, err := a.GroupBy(records, d)
		if err != nil {
			return Report{}, err
		}
		if t.Unbinned > 0 {
			a.logger.Warn(ctx, "records outside every bin",
				logger.String("dimension", string(d)),
				logger.Int("records", t.Unbinned),
			)
		}
		if t.Populated() == 0 {
			a.logger.Warn(ctx, "no data for dimension, skipping report", logger.String("dimension", string(d)))
			a.metrics.DimensionSkipped(string(d))
			rep.Skipped = append(rep.Skipped, d)
			continue
		}
		a.metrics.SetDimensionGroups(string(d), t.Populated())
		a.logger.Info(ctx, "grouped records",
			logger.String("dimension", string(d)),
			logger.Int("groups", t.Populated()),
			logger.Int("records", t.Total()),
		)
		rep.Tables = append(rep.Tables, t)
	}

	rep.Matrix = Correlate(records)
	rep.EfficiencyCorrelations = rep.Matrix.With(MetricEfficiency)
	rep.Insights = Insights(rep.Tables)

	for _, c := range rep.EfficiencyCorrelations {
		a.logger.Info(ctx, "correlation with efficiency score",
			logger.String("metric", c.Metric),
			logger.String("coefficient", formatCoefficient(c.Coefficient)),
		)
	}
	for _, in := range rep.Insights {
		a.logger.Info(ctx, "most efficient group",
			logger.String("dimension", string(in.Dimension)),
			logger.String("label", in.Label),
			logger.Float64("mean_efficiency_score", in.MeanEfficiency),
		)
	}
	return rep, nil
}

// GroupBy builds the table for one dimension. Fee bracket and age group keep
// bin order and include empty bins; position and league sort by mean
// efficiency descending with ties broken by label. League excludes Unknown.
func (a *Aggregator) GroupBy(records []model.EnrichedRecord, d Dimension) (Table, error) {
	t := Table{Dimension: d}
	switch d {
	case FeeBracket:
		t.Rows, t.Unbinned = binned(records, a.fee, func(r model.EnrichedRecord) types.NullFloat { return r.FeeMillions })
	case AgeGroup:
		t.Rows, t.Unbinned = binned(records, a.age, func(r model.EnrichedRecord) types.NullFloat { return r.Age })
	case Position:
		t.Rows = categorical(records, func(r model.EnrichedRecord) (string, bool) { return r.Position, true })
	case League:
		t.Rows = categorical(records, func(r model.EnrichedRecord) (string, bool) {
			return r.League, r.League != model.UnknownLeague
		})
	default:
		return Table{}, fmt.Errorf("%w: %s", ErrUnknownDimension, d)
	}
	return t, nil
}

// FeeBracket returns the fee bracket label of r, or "" when unbinned.
func (a *Aggregator) FeeBracket(r model.EnrichedRecord) string { return a.fee.Label(r.FeeMillions) }

// FeeBins returns the fee bins.
func (a *Aggregator) FeeBins() binning.Bins { return a.fee }

func binned(records []model.EnrichedRecord, bins binning.Bins, value func(model.EnrichedRecord) types.NullFloat) ([]Row, int) {
	groups := make([][]model.EnrichedRecord, bins.Len())
	unbinned := 0
	for _, r := range records {
		i, ok := bins.Index(value(r))
		if !ok {
			unbinned++
			continue
		}
		groups[i] = append(groups[i], r)
	}
	rows := make([]Row, bins.Len())
	for i, g := range groups {
		rows[i] = summarize(bins.Labels[i], g)
	}
	return rows, unbinned
}

func categorical(records []model.EnrichedRecord, key func(model.EnrichedRecord) (string, bool)) []Row {
	groups := map[string][]model.EnrichedRecord{}
	for _, r := range records {
		k, ok := key(r)
		if !ok {
			continue
		}
		groups[k] = append(groups[k], r)
	}
	rows := make([]Row, 0, len(groups))
	for label, g := range groups {
		rows = append(rows, summarize(label, g))
	}
	sort.Slice(rows, func(i, j int) bool { return byEfficiencyDesc(rows[i], rows[j]) })
	return rows
}

// byEfficiencyDesc orders rows by mean efficiency, highest first; absent
// means go last; ties break on label.
func byEfficiencyDesc(a, b Row) bool {
	if a.EfficiencyMean.Valid != b.EfficiencyMean.Valid {
		return a.EfficiencyMean.Valid
	}
	if a.EfficiencyMean.Valid && a.EfficiencyMean.Value != b.EfficiencyMean.Value {
		return a.EfficiencyMean.Value > b.EfficiencyMean.Value
	}
	return a.Label < b.Label
}

func summarize(label string, g []model.EnrichedRecord) Row {
	col := func(get func(model.EnrichedRecord) types.NullFloat) []types.NullFloat {
		out := make([]types.NullFloat, len(g))
		for i, r := range g {
			out[i] = get(r)
		}
		return out
	}
	eff := stats.Describe(col(func(r model.EnrichedRecord) types.NullFloat { return r.EfficiencyScore }))
	return Row{
		Label:                   label,
		Records:                 len(g),
		EfficiencyMean:          eff.Mean,
		EfficiencyMedian:        eff.Median,
		EfficiencyStd:           eff.Std,
		EfficiencyCount:         eff.Count,
		VfMMean:                 stats.Mean(col(func(r model.EnrichedRecord) types.NullFloat { return r.VfMScore })),
		CostPerGoalMean:         stats.Mean(col(func(r model.EnrichedRecord) types.NullFloat { return r.CostPerGoal })),
		CostPerContributionMean: stats.Mean(col(func(r model.EnrichedRecord) types.NullFloat { return r.CostPerContribution })),
		FeeMean:                 stats.Mean(col(func(r model.EnrichedRecord) types.NullFloat { return r.FeeMillions })),
		GoalsMean:               stats.Mean(col(func(r model.EnrichedRecord) types.NullFloat { return r.Goals })),
		AssistsMean:             stats.Mean(col(func(r model.EnrichedRecord) types.NullFloat { return r.Assists })),
	}
}
