package chart_test

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"io"
	"testing"

	chart "github.com/okian/transferiq/internal/adapters/chart"
	"github.com/okian/transferiq/internal/config"
	"github.com/okian/transferiq/internal/domain/aggregate"
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

func newRenderer() *chart.Renderer {
	cfg := config.New()
	agg, err := aggregate.New(cfg.Buckets, aggregate.WithMetrics(metrics.NewManager()))
	if err != nil {
		panic(err)
	}
	return chart.New(config.Charts{WidthIn: 16, HeightIn: 12, DPI: 25, HistogramBins: 10}, agg)
}

func records(leagues ...string) []model.EnrichedRecord {
	positions := []string{"Forward", "Midfielder", "Defender", "Goalkeeper"}
	cats := model.Categories
	out := make([]model.EnrichedRecord, 0, 24)
	for i := 0; i < 24; i++ {
		r := model.EnrichedRecord{}
		r.PlayerName = string(rune('A' + i))
		r.ClubName = "Club"
		r.Position = positions[i%len(positions)]
		r.League = leagues[i%len(leagues)]
		r.Age = types.Some(float64(18 + i%15))
		fee := 0.5 + float64(i)*2.5
		r.FeeMillions = types.Some(fee)
		r.Goals = types.Some(float64(i % 7))
		r.Assists = types.Some(float64(i % 4))
		if i%7 > 0 {
			r.CostPerGoal = types.Some(fee / float64(i%7))
		}
		score := float64((i * 37) % 100)
		r.EfficiencyScore = types.Some(score)
		r.VfMScore = types.Some(score / fee)
		r.EfficiencyCategory = cats[i%len(cats)]
		out = append(out, r)
	}
	return out
}

func decode(fig chart.Figure) (int, int, error) {
	var buf bytes.Buffer
	if err := fig.WritePNG(&buf); err != nil {
		return 0, 0, err
	}
	img, err := png.Decode(&buf)
	if err != nil {
		return 0, 0, err
	}
	b := img.Bounds()
	return b.Dx(), b.Dy(), nil
}

func TestRenderer(t *testing.T) {
	ctx := context.Background()

	Convey("Given enriched records across several leagues", t, func() {
		recs := records("Premier League", "La Liga", "Serie A", "Unknown")
		r := newRenderer()

		Convey("When rendering the dashboard", func() {
			fig, err := r.Dashboard(ctx, recs)

			Convey("Then it should encode a PNG of the configured size", func() {
				So(err, ShouldBeNil)
				w, h, err := decode(fig)
				So(err, ShouldBeNil)
				So(w, ShouldEqual, 400)
				So(h, ShouldEqual, 300)
			})
		})

		Convey("When rendering the league comparison", func() {
			fig, err := r.LeagueComparison(ctx, recs)

			Convey("Then it should encode a PNG", func() {
				So(err, ShouldBeNil)
				_, _, err := decode(fig)
				So(err, ShouldBeNil)
			})
		})
	})

	Convey("Given records without league data or scores", t, func() {
		recs := records("Unknown")
		for i := range recs {
			recs[i].EfficiencyScore = types.None()
			recs[i].VfMScore = types.None()
			recs[i].EfficiencyCategory = model.CategoryUnknown
		}
		r := newRenderer()

		Convey("When rendering both figures", func() {
			dash, dashErr := r.Dashboard(ctx, recs)
			league, leagueErr := r.LeagueComparison(ctx, recs)

			Convey("Then empty panels should render instead of failing", func() {
				So(dashErr, ShouldBeNil)
				So(leagueErr, ShouldBeNil)
				_, _, err := decode(dash)
				So(err, ShouldBeNil)
				_, _, err = decode(league)
				So(err, ShouldBeNil)
			})
		})
	})

	Convey("Given no records", t, func() {
		_, err := newRenderer().Dashboard(ctx, nil)

		Convey("Then rendering should fail", func() {
			So(errors.Is(err, chart.ErrNoRecords), ShouldBeTrue)
		})
	})
}
