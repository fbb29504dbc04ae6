package chart

import (
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/okian/transferiq/internal/domain/model"
	"github.com/okian/transferiq/internal/domain/stats"
	"github.com/okian/transferiq/internal/domain/types"
)

var (
	steelBlue  = color.RGBA{R: 70, G: 130, B: 180, A: 255}
	coral      = color.RGBA{R: 240, G: 128, B: 128, A: 255}
	seaGreen   = color.RGBA{R: 46, G: 139, B: 87, A: 255}
	darkOrange = color.RGBA{R: 255, G: 140, B: 0, A: 255}
	slateGray  = color.RGBA{R: 112, G: 128, B: 144, A: 255}
	crimson    = color.RGBA{R: 220, G: 20, B: 60, A: 255}

	categoryColors = map[string]color.Color{
		model.CategoryExcellent: color.RGBA{R: 26, G: 152, B: 80, A: 255},
		model.CategoryGood:      color.RGBA{R: 145, G: 207, B: 96, A: 255},
		model.CategoryAverage:   color.RGBA{R: 254, G: 224, B: 139, A: 255},
		model.CategoryPoor:      color.RGBA{R: 252, G: 141, B: 89, A: 255},
		model.CategoryVeryPoor:  color.RGBA{R: 215, G: 48, B: 39, A: 255},
		model.CategoryUnknown:   slateGray,
	}
)

const referenceScore = 50

// bar is one labelled value of a bar panel.
type bar struct {
	label string
	value float64
}

// emptyPanel is a titled panel with a "No data" note.
func emptyPanel(title string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.HideAxes()
	p.X.Min, p.X.Max = 0, 1
	p.Y.Min, p.Y.Max = 0, 1
	l, err := plotter.NewLabels(plotter.XYLabels{
		XYs:    []plotter.XY{{X: 0.5, Y: 0.5}},
		Labels: []string{"No data"},
	})
	if err == nil {
		l.TextStyle[0].XAlign = draw.XCenter
		p.Add(l)
	}
	return p
}

// barPanel draws vertical bars, or horizontal bars with labels on the Y
// axis. Horizontal panels list bars top to bottom in the given order.
func barPanel(title, valueLabel string, bars []bar, fill color.Color, horizontal bool) (*plot.Plot, error) {
	if len(bars) == 0 {
		return emptyPanel(title), nil
	}

	ordered := bars
	if horizontal {
		ordered = make([]bar, len(bars))
		for i, b := range bars {
			ordered[len(bars)-1-i] = b
		}
	}
	values := make(plotter.Values, len(ordered))
	labels := make([]string, len(ordered))
	for i, b := range ordered {
		values[i] = b.value
		labels[i] = b.label
	}

	chart, err := plotter.NewBarChart(values, vg.Points(14))
	if err != nil {
		return nil, fmt.Errorf("bar chart %q: %w", title, err)
	}
	chart.Color = fill
	chart.LineStyle.Width = vg.Length(0)
	chart.Horizontal = horizontal

	p := plot.New()
	p.Title.Text = title
	p.Add(plotter.NewGrid())
	p.Add(chart)
	if horizontal {
		p.NominalY(labels...)
		p.X.Label.Text = valueLabel
	} else {
		p.NominalX(labels...)
		p.Y.Label.Text = valueLabel
		p.X.Tick.Label.Rotation = math.Pi / 6
		p.X.Tick.Label.XAlign = draw.XRight
		p.X.Tick.Label.YAlign = draw.YCenter
	}
	return p, nil
}

// withReference adds a dashed line at y across a vertical bar panel.
func withReference(p *plot.Plot, y float64) {
	f := plotter.NewFunction(func(float64) float64 { return y })
	f.Color = crimson
	f.Dashes = []vg.Length{vg.Points(5), vg.Points(5)}
	p.Add(f)
	if p.Y.Max < y {
		p.Y.Max = y * 1.1
	}
}

// histogramPanel draws the distribution of vs with a dashed median line.
func histogramPanel(title, xLabel string, vs []float64, bins int) (*plot.Plot, error) {
	if len(vs) == 0 {
		return emptyPanel(title), nil
	}
	med := stats.Median(toNull(vs))
	lo, hi, _ := stats.Range(toNull(vs))
	if lo == hi {
		return barPanel(title, "Count", []bar{{label: fmt.Sprintf("%.2f", lo), value: float64(len(vs))}}, steelBlue, false)
	}

	h, err := plotter.NewHist(plotter.Values(vs), bins)
	if err != nil {
		return nil, fmt.Errorf("histogram %q: %w", title, err)
	}
	h.FillColor = steelBlue
	h.LineStyle.Width = vg.Points(0.5)

	top := 0.0
	for _, b := range h.Bins {
		top = math.Max(top, b.Weight)
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = "Count"
	p.Add(plotter.NewGrid())
	p.Add(h)

	if med.Valid {
		line, err := plotter.NewLine(plotter.XYs{{X: med.Value, Y: 0}, {X: med.Value, Y: top}})
		if err != nil {
			return nil, fmt.Errorf("median line: %w", err)
		}
		line.Color = crimson
		line.Width = vg.Points(1.5)
		line.Dashes = []vg.Length{vg.Points(5), vg.Points(5)}
		p.Add(line)
		p.Legend.Add(fmt.Sprintf("Median: %.2f", med.Value), line)
		p.Legend.Top = true
	}
	return p, nil
}

// piePanel draws the category distribution with percentage labels.
func piePanel(title string, counts map[string]int) (*plot.Plot, error) {
	var values []float64
	var names []string
	var colors []color.Color
	total := 0
	for _, c := range model.Categories {
		if n := counts[c]; n > 0 {
			values = append(values, float64(n))
			names = append(names, c)
			colors = append(colors, categoryColors[c])
			total += n
		}
	}
	if total == 0 {
		return emptyPanel(title), nil
	}

	p := plot.New()
	p.Title.Text = title
	p.HideAxes()
	p.Add(&pieChart{values: values, colors: colors})

	mids := sliceMidpoints(values)
	xys := make([]plotter.XY, len(values))
	texts := make([]string, len(values))
	for i := range values {
		xys[i] = plotter.XY{X: 1.15 * math.Cos(mids[i]), Y: 1.15 * math.Sin(mids[i])}
		texts[i] = fmt.Sprintf("%s %.1f%%", names[i], values[i]/float64(total)*100)
	}
	labels, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: texts})
	if err != nil {
		return nil, fmt.Errorf("pie labels: %w", err)
	}
	for i := range labels.TextStyle {
		labels.TextStyle[i].XAlign = draw.XCenter
		labels.TextStyle[i].YAlign = draw.YCenter
	}
	p.Add(labels)
	return p, nil
}

// goalsScatterPanel plots fee against efficiency, coloured by goals, with a
// least-squares trend line.
func goalsScatterPanel(title string, records []model.EnrichedRecord) (*plot.Plot, error) {
	var pts plotter.XYs
	var goals []types.NullFloat
	for _, r := range records {
		if r.FeeMillions.Valid && r.EfficiencyScore.Valid {
			pts = append(pts, plotter.XY{X: r.FeeMillions.Value, Y: r.EfficiencyScore.Value})
			goals = append(goals, r.Goals)
		}
	}
	if len(pts) == 0 {
		return emptyPanel(title), nil
	}

	cm := moreland.SmoothBlueRed()
	lo, hi, ok := stats.Range(goals)
	if !ok {
		lo, hi = 0, 1
	}
	if hi <= lo {
		hi = lo + 1
	}
	cm.SetMin(lo)
	cm.SetMax(hi)

	s, err := plotter.NewScatter(pts)
	if err != nil {
		return nil, fmt.Errorf("scatter %q: %w", title, err)
	}
	s.GlyphStyle.Shape = draw.CircleGlyph{}
	s.GlyphStyle.Radius = vg.Points(2.5)
	s.GlyphStyleFunc = func(i int) draw.GlyphStyle {
		gs := s.GlyphStyle
		gs.Color = slateGray
		if goals[i].Valid {
			if c, err := cm.At(goals[i].Value); err == nil {
				gs.Color = c
			}
		}
		return gs
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Transfer Fee (€M)"
	p.Y.Label.Text = fmt.Sprintf("Efficiency Score (colour: goals %.0f-%.0f)", lo, hi)
	p.Add(plotter.NewGrid())
	p.Add(s)

	xs, ys := make([]types.NullFloat, len(pts)), make([]types.NullFloat, len(pts))
	for i, pt := range pts {
		xs[i], ys[i] = types.Some(pt.X), types.Some(pt.Y)
	}
	if slope, intercept, ok := stats.LinearFit(xs, ys); ok {
		minX, maxX, _ := stats.Range(xs)
		trend, err := plotter.NewLine(plotter.XYs{
			{X: minX, Y: slope*minX + intercept},
			{X: maxX, Y: slope*maxX + intercept},
		})
		if err != nil {
			return nil, fmt.Errorf("trend line: %w", err)
		}
		trend.Color = crimson
		trend.Width = vg.Points(1.5)
		trend.Dashes = []vg.Length{vg.Points(6), vg.Points(3)}
		p.Add(trend)
		p.Legend.Add(fmt.Sprintf("Trend: y=%.2fx+%.2f", slope, intercept), trend)
		p.Legend.Top = true
	}
	return p, nil
}

// leagueScatterPanel plots fee against efficiency with one series per league.
func leagueScatterPanel(title string, records []model.EnrichedRecord, leagues []string) (*plot.Plot, error) {
	if len(leagues) == 0 {
		return emptyPanel(title), nil
	}
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Transfer Fee (€M)"
	p.Y.Label.Text = "Efficiency Score"
	p.Add(plotter.NewGrid())

	for i, league := range leagues {
		var pts plotter.XYs
		for _, r := range records {
			if r.League == league && r.FeeMillions.Valid && r.EfficiencyScore.Valid {
				pts = append(pts, plotter.XY{X: r.FeeMillions.Value, Y: r.EfficiencyScore.Value})
			}
		}
		if len(pts) == 0 {
			continue
		}
		s, err := plotter.NewScatter(pts)
		if err != nil {
			return nil, fmt.Errorf("scatter %q: %w", league, err)
		}
		s.GlyphStyle.Color = plotutil.Color(i)
		s.GlyphStyle.Shape = draw.CircleGlyph{}
		s.GlyphStyle.Radius = vg.Points(2.5)
		p.Add(s)
		p.Legend.Add(league, s)
	}
	p.Legend.Top = true
	return p, nil
}

func toNull(vs []float64) []types.NullFloat {
	out := make([]types.NullFloat, len(vs))
	for i, v := range vs {
		out[i] = types.Some(v)
	}
	return out
}
