package chart

import (
	"bytes"
	"errors"
	"image/gif"
	"image/png"
	"math"
	"testing"

	"gonum.org/v1/plot/vg"

	"hdidash/internal/indicator"
)

func fixture() *indicator.Table {
	return &indicator.Table{Records: []indicator.Record{
		{Country: "A", Year: 2001, HDI: 0.5, Life: 70, Population: indicator.Float(100)},
		{Country: "A", Year: 2002, HDI: 0.6, Life: 71, Population: indicator.Float(110)},
		{Country: "B", Year: 2001, HDI: 0.7, Life: 60},
		{Country: "B", Year: 2002, HDI: 0.8, Life: 62, Population: indicator.Float(300)},
		{Country: "C", Year: 2002, HDI: 0.3, Life: 50, Population: indicator.Float(10)},
	}}
}

var small = Options{Width: 3 * vg.Inch, Height: 2 * vg.Inch, TopN: 2}

func TestPNGCharts(t *testing.T) {
	t.Parallel()

	charts := map[string]func(*bytes.Buffer) error{
		"heatmap": func(b *bytes.Buffer) error { return Heatmap(b, fixture(), small) },
		"line":    func(b *bytes.Buffer) error { return Line(b, fixture(), small) },
		"bar":     func(b *bytes.Buffer) error { return Bar(b, fixture(), small) },
	}
	for name, draw := range charts {
		name, draw := name, draw
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			if err := draw(&buf); err != nil {
				t.Fatalf("%s: %v", name, err)
			}
			if _, err := png.Decode(&buf); err != nil {
				t.Fatalf("%s: output is not a PNG: %v", name, err)
			}
		})
	}
}

func TestCharts_EmptyTable(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := Heatmap(&buf, &indicator.Table{}, small); !errors.Is(err, ErrNoData) {
		t.Fatalf("heatmap err=%v", err)
	}
	if err := Bar(&buf, nil, small); !errors.Is(err, ErrNoData) {
		t.Fatalf("bar err=%v", err)
	}
	if _, err := ScatterFrames(&indicator.Table{}, small); !errors.Is(err, ErrNoData) {
		t.Fatalf("scatter err=%v", err)
	}
	if err := WriteGIF(&buf, nil, 10); !errors.Is(err, ErrNoData) {
		t.Fatalf("gif err=%v", err)
	}
}

func TestGrid_MissingCellsAreNaN(t *testing.T) {
	t.Parallel()

	g := newGrid(fixture())
	c, r := g.Dims()
	if c != 2 || r != 3 {
		t.Fatalf("dims=%dx%d want 2x3", c, r)
	}
	// Rows run C, B, A; C has no 2001 record.
	if g.countries[0] != "C" || !math.IsNaN(g.Z(0, 0)) {
		t.Fatalf("countries=%v z(0,0)=%v", g.countries, g.Z(0, 0))
	}
	if g.Z(1, 2) != 0.6 {
		t.Fatalf("A/2002=%v want 0.6", g.Z(1, 2))
	}
}

func TestScatterFramesAndGIF(t *testing.T) {
	t.Parallel()

	frames, err := ScatterFrames(fixture(), small)
	if err != nil {
		t.Fatalf("ScatterFrames: %v", err)
	}
	if len(frames) != 2 || frames[0].Year != 2001 || frames[1].Year != 2002 {
		t.Fatalf("frames=%v", frames)
	}

	var pngBuf bytes.Buffer
	if err := WriteFramePNG(&pngBuf, frames[0]); err != nil {
		t.Fatalf("WriteFramePNG: %v", err)
	}

	var buf bytes.Buffer
	if err := WriteGIF(&buf, frames, 80); err != nil {
		t.Fatalf("WriteGIF: %v", err)
	}
	anim, err := gif.DecodeAll(&buf)
	if err != nil {
		t.Fatalf("decode gif: %v", err)
	}
	if len(anim.Image) != 2 || anim.Delay[1] != 80 {
		t.Fatalf("frames=%d delay=%v", len(anim.Image), anim.Delay)
	}
}

func TestRadius(t *testing.T) {
	t.Parallel()

	if r := radius(nil, 100); r != vg.Points(minRadius) {
		t.Fatalf("nil population radius=%v", r)
	}
	if r := radius(indicator.Float(100), 100); r != vg.Points(maxRadius) {
		t.Fatalf("max population radius=%v", r)
	}
}
