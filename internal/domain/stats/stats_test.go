package stats_test

import (
	"testing"

	"github.com/okian/transferiq/internal/domain/stats"
	"github.com/okian/transferiq/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func col(vals ...float64) []types.NullFloat {
	out := make([]types.NullFloat, len(vals))
	for i, v := range vals {
		out[i] = types.FromFloat(v)
	}
	return out
}

func TestDescribe(t *testing.T) {
	Convey("Given a column with a missing value", t, func() {
		column := append(col(2, 4, 4, 4, 5, 5, 7, 9), types.None())

		Convey("When describing it", func() {
			s := stats.Describe(column)

			Convey("Then the missing value should be skipped", func() {
				So(s.Count, ShouldEqual, 8)
				So(s.Mean.Value, ShouldEqual, 5)
				So(s.Median.Value, ShouldEqual, 4.5)
				So(s.Min.Value, ShouldEqual, 2)
				So(s.Max.Value, ShouldEqual, 9)
				So(s.Std.Value, ShouldAlmostEqual, 2.138089935, 1e-9)
			})
		})
	})

	Convey("Given an all-missing column", t, func() {
		s := stats.Describe([]types.NullFloat{types.None(), types.None()})

		Convey("Then every statistic should be absent", func() {
			So(s.Count, ShouldEqual, 0)
			So(s.Mean.Valid, ShouldBeFalse)
			So(s.Median.Valid, ShouldBeFalse)
			So(s.Std.Valid, ShouldBeFalse)
		})
	})

	Convey("Given a single value", t, func() {
		Convey("Then the sample deviation should be absent", func() {
			So(stats.StdDev(col(3)).Valid, ShouldBeFalse)
			So(stats.Mean(col(3)).Value, ShouldEqual, 3)
		})
	})
}

func TestRange(t *testing.T) {
	Convey("Given nullable values", t, func() {
		lo, hi, ok := stats.Range([]types.NullFloat{types.None(), types.Some(3), types.Some(-1), types.Some(8)})

		Convey("Then the range should ignore missing entries", func() {
			So(ok, ShouldBeTrue)
			So(lo, ShouldEqual, -1)
			So(hi, ShouldEqual, 8)
		})

		Convey("And an empty column should report no range", func() {
			_, _, ok := stats.Range(nil)
			So(ok, ShouldBeFalse)
		})
	})
}

func TestPearson(t *testing.T) {
	Convey("Given two columns", t, func() {
		Convey("When they are perfectly linear", func() {
			r := stats.Pearson(col(1, 2, 3, 4), col(2, 4, 6, 8))
			So(r.Valid, ShouldBeTrue)
			So(r.Value, ShouldAlmostEqual, 1, 1e-12)
		})

		Convey("When they are inversely linear", func() {
			r := stats.Pearson(col(1, 2, 3), col(9, 6, 3))
			So(r.Value, ShouldAlmostEqual, -1, 1e-12)
		})

		Convey("When rows are missing on either side", func() {
			xs := []types.NullFloat{types.Some(1), types.None(), types.Some(2), types.Some(3)}
			ys := []types.NullFloat{types.Some(1), types.Some(100), types.None(), types.Some(3)}
			r := stats.Pearson(xs, ys)

			Convey("Then only complete pairs should count", func() {
				So(r.Valid, ShouldBeTrue)
				So(r.Value, ShouldAlmostEqual, 1, 1e-12)
			})
		})

		Convey("When one column is constant", func() {
			So(stats.Pearson(col(1, 2, 3), col(5, 5, 5)).Valid, ShouldBeFalse)
		})
	})
}

func TestLinearFit(t *testing.T) {
	Convey("Given points on y = 2x + 1", t, func() {
		slope, intercept, ok := stats.LinearFit(col(0, 1, 2, 3), col(1, 3, 5, 7))

		Convey("Then the fit should recover the line", func() {
			So(ok, ShouldBeTrue)
			So(slope, ShouldAlmostEqual, 2, 1e-12)
			So(intercept, ShouldAlmostEqual, 1, 1e-12)
		})
	})

	Convey("Given a vertical cloud", t, func() {
		_, _, ok := stats.LinearFit(col(2, 2, 2), col(1, 2, 3))

		Convey("Then no fit should be reported", func() {
			So(ok, ShouldBeFalse)
		})
	})
}
