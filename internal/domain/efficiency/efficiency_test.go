package efficiency_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/okian/transferiq/internal/config"
	efficiency "github.com/okian/transferiq/internal/domain/efficiency"
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

func transfer(name string, fee, goals, assists, minutes types.NullFloat) model.TransferRecord {
	return model.TransferRecord{
		PlayerName:  name,
		ClubName:    "Club " + name,
		Position:    "Forward",
		League:      "Premier League",
		Age:         types.Some(24),
		Season:      "2021/22",
		FeeMillions: fee,
		Goals:       goals,
		Assists:     assists,
		Minutes:     minutes,
	}
}

func some(v float64) types.NullFloat { return types.Some(v) }

func newDeriver(opts ...efficiency.Option) *efficiency.Deriver {
	base := []efficiency.Option{
		efficiency.WithMetrics(metrics.NewManager()),
		efficiency.WithRunID("run-test"),
		efficiency.WithClock(func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }),
	}
	return efficiency.NewDeriver(append(base, opts...)...)
}

func TestDerive_PerformanceIndex(t *testing.T) {
	Convey("Given a single paid transfer", t, func() {
		in := []model.TransferRecord{transfer("a", some(10), some(5), some(2), some(900))}

		Convey("When deriving", func() {
			res, err := newDeriver().Derive(context.Background(), in)

			Convey("Then the raw index should reproduce the weighted sum exactly", func() {
				So(err, ShouldBeNil)
				So(res.Records, ShouldHaveLength, 1)
				r := res.Records[0]
				So(r.PerformanceIndex, ShouldResemble, some(65.0))
				So(r.GoalContribution, ShouldResemble, some(7))
			})

			Convey("And the degenerate range should score 50 everywhere", func() {
				r := res.Records[0]
				So(r.PerformanceIndexNormalized, ShouldResemble, some(50))
				So(r.VfMScore, ShouldResemble, some(5))
				So(r.EfficiencyScore.Value, ShouldAlmostEqual, 50, 1e-9)
				So(r.EfficiencyCategory, ShouldEqual, model.CategoryAverage)
			})
		})
	})
}

func TestDerive_Composite(t *testing.T) {
	Convey("Given three paid transfers with spread performance", t, func() {
		in := []model.TransferRecord{
			transfer("a", some(10), some(5), some(2), some(900)),  // index 65
			transfer("b", some(20), some(0), some(0), some(0)),    // index 0
			transfer("c", some(5), some(10), some(5), some(1800)), // index 135
		}

		Convey("When deriving", func() {
			res, err := newDeriver().Derive(context.Background(), in)
			So(err, ShouldBeNil)
			a, b, c := res.Records[0], res.Records[1], res.Records[2]

			Convey("Then the min maps to 0 and the max to 100", func() {
				So(b.PerformanceIndexNormalized.Value, ShouldEqual, 0)
				So(c.PerformanceIndexNormalized.Value, ShouldEqual, 100)
				So(a.PerformanceIndexNormalized.Value, ShouldAlmostEqual, 65.0/135.0*100, 1e-9)
			})

			Convey("And VfM should be the normalized index over the fee exactly", func() {
				for _, r := range res.Records {
					So(r.VfMScore.Value, ShouldEqual, r.PerformanceIndexNormalized.Value/r.FeeMillions.Value)
				}
			})

			Convey("And cost per goal should exist only for scorers", func() {
				So(a.CostPerGoal, ShouldResemble, some(2))
				So(b.CostPerGoal.Valid, ShouldBeFalse)
				So(b.CostPerAssist.Valid, ShouldBeFalse)
				So(b.CostPerContribution.Valid, ShouldBeFalse)
				So(c.CostPerGoal, ShouldResemble, some(0.5))
				So(c.CostPerContribution.Value, ShouldAlmostEqual, 5.0/15.0, 1e-12)
			})

			Convey("And the composite should blend normalized VfM with inverted costs", func() {
				So(c.EfficiencyScore.Value, ShouldAlmostEqual, 100, 1e-9)
				So(c.EfficiencyCategory, ShouldEqual, model.CategoryExcellent)
				// b: VfM 0, both cost terms imputed to 50
				So(b.EfficiencyScore.Value, ShouldAlmostEqual, 30, 1e-9)
				So(b.EfficiencyCategory, ShouldEqual, model.CategoryPoor)
				// a: VfM norm 4.8148/20, both costs the worst
				So(a.EfficiencyScore.Value, ShouldAlmostEqual, 0.4*(65.0/135.0*100/10)/20*100, 1e-9)
				So(a.EfficiencyCategory, ShouldEqual, model.CategoryVeryPoor)
			})

			Convey("And every score should lie in [0,100]", func() {
				for _, r := range res.Records {
					So(r.EfficiencyScore.Value, ShouldBeBetweenOrEqual, 0, 100)
					So(r.PerformanceIndexNormalized.Value, ShouldBeBetweenOrEqual, 0, 100)
				}
			})

			Convey("And the mean cost per goal should skip the non-scorer", func() {
				So(res.Summary.AvgCostPerGoal.Value, ShouldAlmostEqual, 1.25, 1e-12)
			})

			Convey("And the top report should be ordered by score", func() {
				So(res.Top, ShouldHaveLength, 3)
				So(res.Top[0].PlayerName, ShouldEqual, "c")
				So(res.Top[2].PlayerName, ShouldEqual, "a")
			})

			Convey("And coverage should count scorers", func() {
				So(res.Coverage[0].Metric, ShouldEqual, "cost_per_goal")
				So(res.Coverage[0].Count, ShouldEqual, 2)
				So(res.Coverage[0].Share, ShouldAlmostEqual, 200.0/3.0, 1e-9)
			})
		})
	})
}

func TestDerive_Filtering(t *testing.T) {
	Convey("Given a mix of paid, free, unpriced and repeated transfers", t, func() {
		in := []model.TransferRecord{
			transfer("a", some(10), some(1), some(0), some(90)),
			transfer("free", some(0), some(3), some(1), some(900)),
			transfer("nofee", types.None(), some(3), some(1), some(900)),
			transfer("a", some(10), some(1), some(0), some(90)),
			transfer("b", some(4), some(2), some(2), some(180)),
		}

		Convey("When deriving without duplicate dropping", func() {
			res, err := newDeriver().Derive(context.Background(), in)

			Convey("Then free and unpriced rows should be excluded and counted", func() {
				So(err, ShouldBeNil)
				So(res.Summary.TotalTransfers, ShouldEqual, 3)
				So(res.Summary.Excluded, ShouldResemble, efficiency.Exclusions{Free: 1, MissingFee: 1})
			})
		})

		Convey("When deriving with duplicate dropping", func() {
			res, err := newDeriver(efficiency.WithDropDuplicates(true)).Derive(context.Background(), in)

			Convey("Then repeated transfers should be dropped", func() {
				So(err, ShouldBeNil)
				So(res.Summary.TotalTransfers, ShouldEqual, 2)
				So(res.Summary.Excluded.Duplicate, ShouldEqual, 1)
			})
		})

		Convey("When nothing is paid", func() {
			_, err := newDeriver().Derive(context.Background(), in[1:3])

			Convey("Then it should fail", func() {
				So(errors.Is(err, efficiency.ErrNoPaidTransfers), ShouldBeTrue)
			})
		})

		Convey("When the context is already cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			_, err := newDeriver().Derive(ctx, in)

			Convey("Then it should abort", func() {
				So(errors.Is(err, efficiency.ErrCancelled), ShouldBeTrue)
			})
		})
	})
}

func TestDerive_MissingCounters(t *testing.T) {
	Convey("Given a transfer with unknown minutes", t, func() {
		in := []model.TransferRecord{
			transfer("a", some(10), some(2), some(1), types.None()),
			transfer("b", some(8), some(0), some(0), some(900)),
			transfer("c", some(3), some(1), some(0), some(450)),
		}

		Convey("When deriving", func() {
			res, err := newDeriver().Derive(context.Background(), in)
			So(err, ShouldBeNil)
			a := res.Records[0]

			Convey("Then its index, VfM and score should be missing", func() {
				So(a.PerformanceIndex.Valid, ShouldBeFalse)
				So(a.VfMScore.Valid, ShouldBeFalse)
				So(a.EfficiencyScore.Valid, ShouldBeFalse)
				So(a.EfficiencyCategory, ShouldEqual, model.CategoryUnknown)
				So(res.Summary.UnknownTransfers, ShouldEqual, 1)
			})

			Convey("And its cost metrics should still be derived", func() {
				So(a.CostPerGoal, ShouldResemble, some(5))
			})
		})
	})
}

func TestDerive_NoScorers(t *testing.T) {
	Convey("Given paid transfers where nobody scored or assisted", t, func() {
		in := []model.TransferRecord{
			transfer("a", some(10), some(0), some(0), some(900)),
			transfer("b", some(5), some(0), some(0), some(1800)),
		}

		Convey("When deriving", func() {
			res, err := newDeriver().Derive(context.Background(), in)
			So(err, ShouldBeNil)

			Convey("Then both cost terms should be imputed wholesale", func() {
				// b: best VfM (100) -> 40 + 15 + 15
				So(res.Records[1].EfficiencyScore.Value, ShouldAlmostEqual, 70, 1e-9)
				// a: worst VfM (0) -> 0 + 15 + 15
				So(res.Records[0].EfficiencyScore.Value, ShouldAlmostEqual, 30, 1e-9)
			})

			Convey("And the summary JSON should carry nulls for the empty averages", func() {
				raw, err := json.Marshal(res.Summary)
				So(err, ShouldBeNil)
				So(string(raw), ShouldContainSubstring, `"avg_cost_per_goal":null`)
				So(string(raw), ShouldContainSubstring, `"run_id":"run-test"`)
				So(string(raw), ShouldContainSubstring, `"generated_at":"2024-01-02T03:04:05Z"`)
				So(string(raw), ShouldContainSubstring, `"total_transfers":2`)
			})
		})
	})
}

func TestCategorize(t *testing.T) {
	Convey("Given the default thresholds", t, func() {
		th := config.New().Metrics.CategoryThresholds

		Convey("Then lower bounds should be inclusive", func() {
			cases := []struct {
				score types.NullFloat
				want  string
			}{
				{some(100), model.CategoryExcellent},
				{some(80), model.CategoryExcellent},
				{some(79.999), model.CategoryGood},
				{some(60), model.CategoryGood},
				{some(40), model.CategoryAverage},
				{some(39.99), model.CategoryPoor},
				{some(20), model.CategoryPoor},
				{some(19.99), model.CategoryVeryPoor},
				{some(0), model.CategoryVeryPoor},
				{types.None(), model.CategoryUnknown},
			}
			for _, c := range cases {
				So(efficiency.Categorize(c.score, th), ShouldEqual, c.want)
			}
		})
	})
}

func TestMinMax(t *testing.T) {
	Convey("Given a column with gaps", t, func() {
		col := []types.NullFloat{some(2), types.None(), some(4), some(6)}

		Convey("When scaling", func() {
			out := efficiency.MinMax(col, 50)

			Convey("Then present values should span [0,100] and gaps stay missing", func() {
				So(out[0], ShouldResemble, some(0))
				So(out[1].Valid, ShouldBeFalse)
				So(out[2], ShouldResemble, some(50))
				So(out[3], ShouldResemble, some(100))
			})
		})

		Convey("When scaling inverted", func() {
			out := efficiency.InvertedMinMax(col, 50)

			Convey("Then the lowest value should score 100", func() {
				So(out[0], ShouldResemble, some(100))
				So(out[3], ShouldResemble, some(0))
			})
		})

		Convey("When the column is constant", func() {
			out := efficiency.InvertedMinMax([]types.NullFloat{some(3), some(3)}, 42)

			Convey("Then every value should get the degenerate score", func() {
				So(out, ShouldResemble, []types.NullFloat{some(42), some(42)})
			})
		})

		Convey("When the column is empty", func() {
			out := efficiency.MinMax([]types.NullFloat{types.None()}, 50)

			Convey("Then nothing should be scored", func() {
				So(out[0].Valid, ShouldBeFalse)
			})
		})
	})
}
