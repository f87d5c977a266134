package chart

import (
	"fmt"
	"io"

	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"hdidash/internal/indicator"
	"hdidash/internal/schema"
	"hdidash/internal/stats"
)

// Line writes HDI over time for the TopN countries of the latest year.
func Line(w io.Writer, t *indicator.Table, opt Options) error {
	if t.Empty() {
		return ErrNoData
	}
	opt = opt.withDefaults()
	latest, err := stats.LatestYear(t)
	if err != nil {
		return err
	}
	top, err := stats.Rank(t, latest, schema.MetricHDI, opt.TopN, true)
	if err != nil {
		return err
	}

	p := newPlot(fmt.Sprintf("HDI over time, top %d countries of %d", len(top), latest), "Year", "HDI")
	for i, lead := range top {
		trend, err := stats.Trend(t, lead.Country)
		if err != nil {
			return err
		}
		xys := make(plotter.XYs, len(trend))
		for j, r := range trend {
			xys[j] = plotter.XY{X: float64(r.Year), Y: r.HDI}
		}
		l, err := plotter.NewLine(xys)
		if err != nil {
			return fmt.Errorf("line %s: %w", lead.Country, err)
		}
		l.Color = plotutil.Color(i)
		l.Dashes = plotutil.Dashes(i / len(plotutil.DefaultColors))
		l.Width = vg.Points(2)
		p.Add(l)
		p.Legend.Add(lead.Country, l)
	}
	p.Add(plotter.NewGrid())
	p.Legend.Top = true
	p.Legend.Left = true
	return writePNG(w, p, opt.Width, opt.Height)
}
