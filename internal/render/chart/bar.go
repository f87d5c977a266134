package chart

import (
	"fmt"
	"image/color"
	"io"
	"math"

	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"hdidash/internal/indicator"
	"hdidash/internal/schema"
	"hdidash/internal/stats"
)

// Bar writes the TopN life expectancies of the latest year.
func Bar(w io.Writer, t *indicator.Table, opt Options) error {
	if t.Empty() {
		return ErrNoData
	}
	opt = opt.withDefaults()
	latest, err := stats.LatestYear(t)
	if err != nil {
		return err
	}
	top, err := stats.Rank(t, latest, schema.MetricLife, opt.TopN, true)
	if err != nil {
		return err
	}

	values := make(plotter.Values, len(top))
	names := make([]string, len(top))
	for i, r := range top {
		values[i] = r.Life
		names[i] = r.Country
	}

	p := newPlot(fmt.Sprintf("Life expectancy leaders, %d", latest), "", "Years")
	bars, err := plotter.NewBarChart(values, vg.Points(20))
	if err != nil {
		return fmt.Errorf("bar chart: %w", err)
	}
	bars.Color = color.RGBA{R: 46, G: 139, B: 87, A: 255}
	bars.LineStyle.Width = vg.Length(0)
	p.Add(bars)
	p.NominalX(names...)
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter
	p.Y.Min = 0
	return writePNG(w, p, opt.Width, opt.Height)
}
