// Package chart draws the dashboard charts with gonum/plot: the country x
// year HDI heat grid, HDI lines of the leading countries, the life
// expectancy leader bars and the animated life-vs-HDI scatter.
package chart

import (
	"fmt"
	"image"
	"image/png"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// Options sizes the charts.
type Options struct {
	Width  vg.Length
	Height vg.Length
	// TopN bounds the countries shown by the line and bar charts.
	TopN int
}

// DefaultOptions is used for zero fields.
var DefaultOptions = Options{Width: 10 * vg.Inch, Height: 6 * vg.Inch, TopN: 10}

func (o Options) withDefaults() Options {
	if o.Width <= 0 {
		o.Width = DefaultOptions.Width
	}
	if o.Height <= 0 {
		o.Height = DefaultOptions.Height
	}
	if o.TopN <= 0 {
		o.TopN = DefaultOptions.TopN
	}
	return o
}

func newPlot(title, x, y string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.Title.TextStyle.Font.Size = vg.Points(16)
	p.X.Label.Text = x
	p.Y.Label.Text = y
	return p
}

// rasterize draws p onto an RGBA canvas.
func rasterize(p *plot.Plot, w, h vg.Length) image.Image {
	c := vgimg.New(w, h)
	p.Draw(draw.New(c))
	return c.Image()
}

func writePNG(w io.Writer, p *plot.Plot, width, height vg.Length) error {
	return encodePNG(w, rasterize(p, width, height))
}

func encodePNG(w io.Writer, img image.Image) error {
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}
