package aggregate_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"io"
	"testing"

	"github.com/okian/transferiq/internal/config"
	aggregate "github.com/okian/transferiq/internal/domain/aggregate"
	"github.com/okian/transferiq/internal/domain/model"
	"github.com/okian/transferiq/internal/domain/types"
	"github.com/okian/transferiq/pkg/logger"
	"github.com/okian/transferiq/pkg/metrics"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(logger.WithWriter(io.Discard)); err != nil {
		panic(err)
	}
}

type row struct {
	position, league string
	age, fee, goals  float64
	assists          float64
	score            types.NullFloat
}

func build(rows []row) []model.EnrichedRecord {
	out := make([]model.EnrichedRecord, len(rows))
	for i, r := range rows {
		e := model.EnrichedRecord{}
		e.PlayerName = "p" + string(rune('a'+i))
		e.Position = r.position
		e.League = r.league
		e.Age = types.Some(r.age)
		e.FeeMillions = types.Some(r.fee)
		e.Goals = types.Some(r.goals)
		e.Assists = types.Some(r.assists)
		if r.goals > 0 {
			e.CostPerGoal = types.Some(r.fee / r.goals)
		}
		if r.goals+r.assists > 0 {
			e.CostPerContribution = types.Some(r.fee / (r.goals + r.assists))
		}
		e.EfficiencyScore = r.score
		if r.score.Valid {
			e.VfMScore = types.Some(r.score.Value / r.fee)
		}
		out[i] = e
	}
	return out
}

func fixture() []model.EnrichedRecord {
	return build([]row{
		{"Forward", "Premier League", 20, 0.5, 4, 1, types.Some(70)},
		{"Forward", "Premier League", 23, 3, 0, 2, types.Some(50)},
		{"Midfielder", "La Liga", 25, 8, 2, 3, types.Some(60)},
		{"Midfielder", "Unknown", 28, 15, 1, 0, types.Some(40)},
		{"Defender", "La Liga", 31, 30, 0, 0, types.Some(60)},
		{"Goalkeeper", "Unknown", 22, 4, 0, 0, types.None()},
	})
}

func newAggregator() *aggregate.Aggregator {
	a, err := aggregate.New(config.New().Buckets, aggregate.WithMetrics(metrics.NewManager()))
	if err != nil {
		panic(err)
	}
	return a
}

func render(t aggregate.Table) string {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write(t.Header())
	_ = w.WriteAll(t.Records())
	return buf.String()
}

func TestAggregate_Tables(t *testing.T) {
	Convey("Given enriched records across every dimension", t, func() {
		records := fixture()
		agg := newAggregator()

		Convey("When aggregating", func() {
			rep, err := agg.Aggregate(context.Background(), records)
			So(err, ShouldBeNil)
			So(rep.Tables, ShouldHaveLength, 4)
			So(rep.Skipped, ShouldBeEmpty)

			Convey("Then the fee bracket table should keep bin order and empty bins", func() {
				fee, ok := rep.Table(aggregate.FeeBracket)
				So(ok, ShouldBeTrue)
				labels := make([]string, len(fee.Rows))
				for i, r := range fee.Rows {
					labels[i] = r.Label
				}
				So(labels, ShouldResemble, config.New().Buckets.FeeLabels)
				So(fee.Rows[5].Records, ShouldEqual, 0)
				So(fee.Rows[5].EfficiencyMean.Valid, ShouldBeFalse)
				So(fee.Total(), ShouldEqual, len(records))
			})

			Convey("And the age table should partition every record", func() {
				age, _ := rep.Table(aggregate.AgeGroup)
				So(age.Total(), ShouldEqual, len(records))
				So(age.Rows[0].Label, ShouldEqual, "<21 (Youth)")
				So(age.Rows[0].Records, ShouldEqual, 1)
				So(age.Rows[1].Records, ShouldEqual, 2) // 22 and 23
			})

			Convey("And the league table should drop Unknown and sort by mean efficiency", func() {
				league, _ := rep.Table(aggregate.League)
				So(league.Rows, ShouldHaveLength, 2)
				So(league.Rows[0].Label, ShouldEqual, "La Liga")
				So(league.Rows[0].EfficiencyMean, ShouldResemble, types.Some(60))
				So(league.Rows[1].Label, ShouldEqual, "Premier League")
				So(league.Total(), ShouldBeLessThan, len(records))
			})

			Convey("And position ties should break on label", func() {
				pos, _ := rep.Table(aggregate.Position)
				So(pos.Rows[0].Label, ShouldEqual, "Defender")
				So(pos.Rows[1].Label, ShouldEqual, "Forward")
				So(pos.Rows[2].Label, ShouldEqual, "Midfielder")
				So(pos.Rows[3].Label, ShouldEqual, "Goalkeeper")
				So(pos.Rows[3].EfficiencyMean.Valid, ShouldBeFalse)
				So(pos.Rows[3].EfficiencyCount, ShouldEqual, 0)
			})

			Convey("And means should skip missing cost values", func() {
				pos, _ := rep.Table(aggregate.Position)
				fwd := pos.Rows[1]
				So(fwd.Records, ShouldEqual, 2)
				So(fwd.CostPerGoalMean, ShouldResemble, types.Some(0.125))
				So(fwd.EfficiencyStd.Value, ShouldAlmostEqual, 14.142135623730951, 1e-9)
				So(pos.Rows[0].EfficiencyStd.Valid, ShouldBeFalse)
			})

			Convey("And the rendered rows should round to two decimals", func() {
				pos, _ := rep.Table(aggregate.Position)
				recs := pos.Records()
				So(recs[1][0], ShouldEqual, "Forward")
				So(recs[1][1], ShouldEqual, "2")
				So(recs[1][4], ShouldEqual, "14.14")
				So(recs[0][4], ShouldEqual, "")
				So(pos.Header()[0], ShouldEqual, "position")
			})

			Convey("And insights should name the best group per dimension", func() {
				So(rep.Insights, ShouldHaveLength, 4)
				So(rep.Insights[0].Dimension, ShouldEqual, aggregate.FeeBracket)
				So(rep.Insights[0].Label, ShouldEqual, "<€1M")
				So(rep.Insights[0].MeanEfficiency, ShouldEqual, 70)
				So(rep.Insights[2].Label, ShouldEqual, "La Liga")
			})
		})

		Convey("When aggregating the same records twice", func() {
			first, _ := agg.Aggregate(context.Background(), records)
			second, _ := newAggregator().Aggregate(context.Background(), records)

			Convey("Then every rendered table should be identical", func() {
				for i := range first.Tables {
					So(render(second.Tables[i]), ShouldEqual, render(first.Tables[i]))
				}
			})
		})
	})
}

func TestAggregate_EmptyDimension(t *testing.T) {
	Convey("Given records without league data", t, func() {
		records := build([]row{
			{"Forward", "Unknown", 24, 2, 1, 0, types.Some(55)},
			{"Defender", "Unknown", 26, 6, 0, 1, types.Some(45)},
		})

		Convey("When aggregating", func() {
			rep, err := newAggregator().Aggregate(context.Background(), records)

			Convey("Then the league report should be skipped, not fail", func() {
				So(err, ShouldBeNil)
				So(rep.Skipped, ShouldResemble, []aggregate.Dimension{aggregate.League})
				_, ok := rep.Table(aggregate.League)
				So(ok, ShouldBeFalse)
				So(rep.Tables, ShouldHaveLength, 3)
			})
		})
	})

	Convey("Given no records", t, func() {
		_, err := newAggregator().Aggregate(context.Background(), nil)

		Convey("Then aggregation should fail", func() {
			So(errors.Is(err, aggregate.ErrNoRecords), ShouldBeTrue)
		})
	})
}

func TestAggregate_OutOfRange(t *testing.T) {
	Convey("Given a fee above the last bracket edge", t, func() {
		records := build([]row{
			{"Forward", "Serie A", 24, 250, 1, 0, types.Some(55)},
			{"Forward", "Serie A", 24, 2, 1, 0, types.Some(65)},
		})

		Convey("When grouping by fee bracket", func() {
			tbl, err := newAggregator().GroupBy(records, aggregate.FeeBracket)

			Convey("Then the record should be counted as unbinned", func() {
				So(err, ShouldBeNil)
				So(tbl.Unbinned, ShouldEqual, 1)
				So(tbl.Total(), ShouldEqual, 1)
			})
		})

		Convey("When grouping by an unknown dimension", func() {
			_, err := newAggregator().GroupBy(records, aggregate.Dimension("club"))

			Convey("Then it should fail", func() {
				So(errors.Is(err, aggregate.ErrUnknownDimension), ShouldBeTrue)
			})
		})
	})
}

func TestCorrelate(t *testing.T) {
	Convey("Given records where efficiency tracks goals and age is constant", t, func() {
		records := build([]row{
			{"Forward", "A", 25, 10, 1, 3, types.Some(20)},
			{"Forward", "A", 25, 10, 2, 2, types.Some(40)},
			{"Forward", "A", 25, 10, 3, 1, types.Some(60)},
		})

		Convey("When correlating", func() {
			m := aggregate.Correlate(records)
			eff := m.With(aggregate.MetricEfficiency)

			Convey("Then coefficients should be sorted descending with absent last", func() {
				So(eff, ShouldHaveLength, 5)
				So(eff[0].Metric, ShouldEqual, aggregate.MetricVfM)
				So(eff[0].Coefficient.Value, ShouldAlmostEqual, 1, 1e-9)
				So(eff[1].Metric, ShouldEqual, aggregate.MetricGoals)
				So(eff[2].Metric, ShouldEqual, aggregate.MetricAssists)
				So(eff[2].Coefficient.Value, ShouldAlmostEqual, -1, 1e-9)
				So(eff[3].Metric, ShouldEqual, aggregate.MetricFee)
				So(eff[4].Metric, ShouldEqual, aggregate.MetricAge)
				for _, c := range eff[3:] {
					So(c.Coefficient.Valid, ShouldBeFalse)
				}
			})

			Convey("And the matrix should render with a metric column", func() {
				header, rows := m.Records()
				So(header[0], ShouldEqual, "metric")
				So(rows, ShouldHaveLength, len(aggregate.CorrelationMetrics))
				So(rows[1][2], ShouldEqual, "") // age is constant
			})
		})
	})
}
