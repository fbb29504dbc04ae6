package chart

import (
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// pieExtent is the data range around the unit circle, leaving room for labels.
const pieExtent = 1.35

// pieChart draws slices of a unit circle centred on the origin, clockwise
// from twelve o'clock.
type pieChart struct {
	values []float64
	colors []color.Color
}

// Plot implements plot.Plotter.
func (pc *pieChart) Plot(c draw.Canvas, p *plot.Plot) {
	total := 0.0
	for _, v := range pc.values {
		total += v
	}
	if total <= 0 {
		return
	}

	trX, trY := p.Transforms(&c)
	center := vg.Point{X: trX(0), Y: trY(0)}
	rad := vg.Length(math.Min(float64(trX(1)-trX(0)), float64(trY(1)-trY(0))))

	start := math.Pi / 2
	for i, v := range pc.values {
		sweep := -v / total * 2 * math.Pi
		var path vg.Path
		path.Move(center)
		path.Arc(center, rad, start, sweep)
		path.Close()
		c.SetColor(pc.colors[i%len(pc.colors)])
		c.Fill(path)
		start += sweep
	}
}

// DataRange implements plot.DataRanger.
func (pc *pieChart) DataRange() (xmin, xmax, ymin, ymax float64) {
	return -pieExtent, pieExtent, -pieExtent, pieExtent
}

// sliceMidpoints returns the mid angle of each slice in radians.
func sliceMidpoints(values []float64) []float64 {
	total := 0.0
	for _, v := range values {
		total += v
	}
	out := make([]float64, len(values))
	start := math.Pi / 2
	for i, v := range values {
		sweep := 0.0
		if total > 0 {
			sweep = -v / total * 2 * math.Pi
		}
		out[i] = start + sweep/2
		start += sweep
	}
	return out
}
