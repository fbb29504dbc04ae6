// Package chart renders the efficiency dashboard and the league comparison
// figures as PNG images.
package chart

import (
	"context"
	"fmt"
	"image/color"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/okian/transferiq/internal/config"
	"github.com/okian/transferiq/internal/domain/aggregate"
	"github.com/okian/transferiq/internal/domain/model"
	"github.com/okian/transferiq/internal/domain/ranking"
	"github.com/okian/transferiq/internal/domain/types"
	"github.com/okian/transferiq/pkg/logger"
)

const (
	defaultRanked = 10
	titlePad      = vg.Millimeter * 3
	tilePad       = vg.Millimeter * 8
)

// Figure is a rendered, not yet encoded, image.
type Figure struct {
	canvas *vgimg.Canvas
}

// WritePNG encodes the figure as PNG into w.
func (f Figure) WritePNG(w io.Writer) error {
	if _, err := (vgimg.PngCanvas{Canvas: f.canvas}).WriteTo(w); err != nil {
		return fmt.Errorf("%w: encode png: %v", ErrRender, err)
	}
	return nil
}

// Renderer builds the figures from enriched records.
type Renderer struct {
	width  vg.Length
	height vg.Length
	dpi    int
	bins   int
	ranked int
	agg    *aggregate.Aggregator
	logger logger.Logger
}

// New creates a renderer sized by cfg. Groupings come from agg so the
// figures show the same statistics as the report tables.
func New(cfg config.Charts, agg *aggregate.Aggregator, opts ...Option) *Renderer {
	r := &Renderer{
		width:  vg.Length(cfg.WidthIn) * vg.Inch,
		height: vg.Length(cfg.HeightIn) * vg.Inch,
		dpi:    cfg.DPI,
		bins:   cfg.HistogramBins,
		ranked: defaultRanked,
		agg:    agg,
		logger: logger.Get().Named("chart"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Dashboard renders the 3x3 efficiency dashboard.
func (r *Renderer) Dashboard(ctx context.Context, records []model.EnrichedRecord) (Figure, error) {
	if len(records) == 0 {
		return Figure{}, ErrNoRecords
	}

	fee, err := r.agg.GroupBy(records, aggregate.FeeBracket)
	if err != nil {
		return Figure{}, err
	}
	league, err := r.agg.GroupBy(records, aggregate.League)
	if err != nil {
		return Figure{}, err
	}
	position, err := r.agg.GroupBy(records, aggregate.Position)
	if err != nil {
		return Figure{}, err
	}

	feeBars := bars(fee.Observed(), func(row aggregate.Row) types.NullFloat { return row.EfficiencyMean })
	effByFee, err := barPanel("Efficiency by Fee Bracket", "Mean Efficiency Score", feeBars, steelBlue, false)
	if err != nil {
		return Figure{}, err
	}
	if len(feeBars) > 0 {
		withReference(effByFee, referenceScore)
	}

	effByLeague, err := barPanel("Efficiency by League", "Mean Efficiency Score",
		bars(league.Rows, func(row aggregate.Row) types.NullFloat { return row.EfficiencyMean }), seaGreen, true)
	if err != nil {
		return Figure{}, err
	}
	effByPosition, err := barPanel("Efficiency by Position", "Mean Efficiency Score",
		bars(position.Rows, func(row aggregate.Row) types.NullFloat { return row.EfficiencyMean }), darkOrange, false)
	if err != nil {
		return Figure{}, err
	}
	cpgByFee, err := barPanel("Cost per Goal by Fee Bracket", "Mean Cost per Goal (€M)",
		bars(fee.Observed(), func(row aggregate.Row) types.NullFloat { return row.CostPerGoalMean }), coral, false)
	if err != nil {
		return Figure{}, err
	}

	vfm := make([]float64, 0, len(records))
	counts := map[string]int{}
	for _, rec := range records {
		if rec.VfMScore.Valid {
			vfm = append(vfm, rec.VfMScore.Value)
		}
		counts[rec.EfficiencyCategory]++
	}
	vfmHist, err := histogramPanel("Value-for-Money Distribution", "VfM Score", vfm, r.bins)
	if err != nil {
		return Figure{}, err
	}
	categories, err := piePanel("Efficiency Categories", counts)
	if err != nil {
		return Figure{}, err
	}
	scatter, err := goalsScatterPanel("Fee vs Efficiency", records)
	if err != nil {
		return Figure{}, err
	}

	top, err := r.rankedPanel(records, ranking.TopN, fmt.Sprintf("Top %d Most Efficient", r.ranked), seaGreen)
	if err != nil {
		return Figure{}, err
	}
	bottom, err := r.rankedPanel(records, ranking.BottomN, fmt.Sprintf("Bottom %d Least Efficient", r.ranked), coral)
	if err != nil {
		return Figure{}, err
	}

	if err := ctx.Err(); err != nil {
		return Figure{}, err
	}
	fig := r.compose("Transfer Efficiency Dashboard", [][]*plot.Plot{
		{effByFee, effByLeague, effByPosition},
		{cpgByFee, vfmHist, categories},
		{scatter, top, bottom},
	})
	r.logger.Info(ctx, "rendered dashboard",
		logger.Int("records", len(records)),
		logger.Int("fee_brackets", fee.Populated()),
		logger.Int("leagues", league.Populated()),
		logger.Int("positions", position.Populated()),
	)
	return fig, nil
}

// LeagueComparison renders the 2x2 league comparison. Unknown leagues are
// left out as in the report.
func (r *Renderer) LeagueComparison(ctx context.Context, records []model.EnrichedRecord) (Figure, error) {
	if len(records) == 0 {
		return Figure{}, ErrNoRecords
	}
	league, err := r.agg.GroupBy(records, aggregate.League)
	if err != nil {
		return Figure{}, err
	}

	fee, err := barPanel("Mean Transfer Fee by League", "Mean Fee (€M)",
		bars(league.Rows, func(row aggregate.Row) types.NullFloat { return row.FeeMean }), steelBlue, true)
	if err != nil {
		return Figure{}, err
	}
	goals, err := barPanel("Mean Goals by League", "Mean Goals After Transfer",
		bars(league.Rows, func(row aggregate.Row) types.NullFloat { return row.GoalsMean }), darkOrange, true)
	if err != nil {
		return Figure{}, err
	}
	names := make([]string, len(league.Rows))
	for i, row := range league.Rows {
		names[i] = row.Label
	}
	scatter, err := leagueScatterPanel("Fee vs Efficiency by League", records, names)
	if err != nil {
		return Figure{}, err
	}
	eff, err := barPanel("Mean Efficiency by League", "Mean Efficiency Score",
		bars(league.Rows, func(row aggregate.Row) types.NullFloat { return row.EfficiencyMean }), seaGreen, true)
	if err != nil {
		return Figure{}, err
	}

	if err := ctx.Err(); err != nil {
		return Figure{}, err
	}
	fig := r.compose("League Efficiency Comparison", [][]*plot.Plot{
		{fee, goals},
		{scatter, eff},
	})
	r.logger.Info(ctx, "rendered league comparison", logger.Int("leagues", len(names)))
	return fig, nil
}

func (r *Renderer) rankedPanel(records []model.EnrichedRecord, pick func([]model.EnrichedRecord, int) ([]types.Entry, error), title string, fill color.Color) (*plot.Plot, error) {
	entries, err := pick(records, r.ranked)
	if err != nil {
		return nil, err
	}
	bs := make([]bar, len(entries))
	for i, e := range entries {
		bs[i] = bar{label: fmt.Sprintf("%d. %s (%s)", e.Rank, e.PlayerName, e.ClubName), value: e.Score}
	}
	return barPanel(title, "Efficiency Score", bs, fill, true)
}

// compose lays out panels in a grid under a figure title.
func (r *Renderer) compose(title string, panels [][]*plot.Plot) Figure {
	img := vgimg.NewWith(vgimg.UseWH(r.width, r.height), vgimg.UseDPI(r.dpi))
	dc := draw.New(img)

	sty := plot.New().Title.TextStyle
	sty.Font.Size = vg.Points(20)
	sty.XAlign = draw.XCenter
	sty.YAlign = draw.YTop
	dc.FillText(sty, vg.Point{X: dc.Center().X, Y: dc.Max.Y - titlePad}, title)
	body := draw.Crop(dc, 0, 0, 0, -(sty.Height(title) + 2*titlePad))

	cols := 0
	for _, row := range panels {
		if len(row) > cols {
			cols = len(row)
		}
	}
	tiles := draw.Tiles{
		Rows:      len(panels),
		Cols:      cols,
		PadX:      tilePad,
		PadY:      tilePad,
		PadTop:    titlePad,
		PadBottom: tilePad,
		PadLeft:   tilePad,
		PadRight:  tilePad,
	}
	canvases := plot.Align(panels, tiles, body)
	for i := range panels {
		for j, p := range panels[i] {
			if p != nil {
				p.Draw(canvases[i][j])
			}
		}
	}
	return Figure{canvas: img}
}

// bars maps rows with a present value to bars; absent values are dropped.
func bars(rows []aggregate.Row, value func(aggregate.Row) types.NullFloat) []bar {
	out := make([]bar, 0, len(rows))
	for _, row := range rows {
		if v := value(row); v.Valid {
			out = append(out, bar{label: row.Label, value: types.Round(v.Value, 2)})
		}
	}
	return out
}
