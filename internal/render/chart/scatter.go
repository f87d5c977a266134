package chart

import (
	"fmt"
	"image"
	"image/color"
	"image/color/palette"
	imdraw "image/draw"
	"image/gif"
	"io"
	"math"

	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"hdidash/internal/indicator"
	"hdidash/internal/stats"
)

// Bubble radii; records without a population get the minimum.
const (
	minRadius = 3
	maxRadius = 18
)

// Frame is one rendered year of the scatter animation.
type Frame struct {
	Year  int
	Image image.Image
}

type bounds struct{ xmin, xmax, ymin, ymax, popMax float64 }

func tableBounds(t *indicator.Table) bounds {
	b := bounds{xmin: math.Inf(1), xmax: math.Inf(-1), ymin: math.Inf(1), ymax: math.Inf(-1)}
	for _, r := range t.Records {
		b.xmin, b.xmax = math.Min(b.xmin, r.HDI), math.Max(b.xmax, r.HDI)
		b.ymin, b.ymax = math.Min(b.ymin, r.Life), math.Max(b.ymax, r.Life)
		b.popMax = math.Max(b.popMax, r.PopulationOr(0))
	}
	pad := func(lo, hi float64) (float64, float64) {
		d := (hi - lo) * 0.05
		if d == 0 {
			d = 1
		}
		return lo - d, hi + d
	}
	b.xmin, b.xmax = pad(b.xmin, b.xmax)
	b.ymin, b.ymax = pad(b.ymin, b.ymax)
	return b
}

func radius(pop *float64, popMax float64) vg.Length {
	if pop == nil || popMax <= 0 {
		return vg.Points(minRadius)
	}
	return vg.Points(minRadius + (maxRadius-minRadius)*math.Sqrt(*pop/popMax))
}

// ScatterFrames draws life expectancy against HDI, one frame per year, with
// bubble area proportional to population. Axes are fixed across frames.
func ScatterFrames(t *indicator.Table, opt Options) ([]Frame, error) {
	years, err := stats.Years(t)
	if err != nil {
		return nil, ErrNoData
	}
	opt = opt.withDefaults()
	b := tableBounds(t)

	frames := make([]Frame, 0, len(years))
	for _, year := range years {
		recs := t.Year(year)
		xys := make(plotter.XYs, len(recs))
		for i, r := range recs {
			xys[i] = plotter.XY{X: r.HDI, Y: r.Life}
		}
		s, err := plotter.NewScatter(xys)
		if err != nil {
			return nil, fmt.Errorf("scatter %d: %w", year, err)
		}
		s.GlyphStyleFunc = func(i int) draw.GlyphStyle {
			return draw.GlyphStyle{
				Color:  color.RGBA{R: 30, G: 100, B: 200, A: 160},
				Radius: radius(recs[i].Population, b.popMax),
				Shape:  draw.CircleGlyph{},
			}
		}

		p := newPlot(fmt.Sprintf("Life expectancy vs HDI, %d", year), "HDI", "Life expectancy")
		p.Add(plotter.NewGrid(), s)
		p.X.Min, p.X.Max = b.xmin, b.xmax
		p.Y.Min, p.Y.Max = b.ymin, b.ymax
		frames = append(frames, Frame{Year: year, Image: rasterize(p, opt.Width, opt.Height)})
	}
	return frames, nil
}

// WriteFramePNG encodes one frame as PNG.
func WriteFramePNG(w io.Writer, f Frame) error {
	return encodePNG(w, f.Image)
}

// WriteGIF encodes frames as a looping animation; delay is in 100ths of a
// second per frame.
func WriteGIF(w io.Writer, frames []Frame, delay int) error {
	if len(frames) == 0 {
		return ErrNoData
	}
	anim := &gif.GIF{LoopCount: 0}
	for _, f := range frames {
		bnd := f.Image.Bounds()
		pm := image.NewPaletted(bnd, palette.Plan9)
		imdraw.FloydSteinberg.Draw(pm, bnd, f.Image, image.Point{})
		anim.Image = append(anim.Image, pm)
		anim.Delay = append(anim.Delay, delay)
	}
	if err := gif.EncodeAll(w, anim); err != nil {
		return fmt.Errorf("encode gif: %w", err)
	}
	return nil
}
