package chart

import (
	"errors"
	"io"
	"math"
	"sort"
	"strconv"

	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"hdidash/internal/indicator"
)

// ErrNoData is returned when there is nothing to draw.
var ErrNoData = errors.New("chart: no data")

// grid is a country x year HDI matrix; cells without a record are NaN.
type grid struct {
	years     []int
	countries []string
	z         [][]float64 // [country][year]
}

func newGrid(t *indicator.Table) grid {
	var g grid
	yi := map[int]int{}
	ci := map[string]int{}
	for _, r := range t.Records {
		if _, ok := yi[r.Year]; !ok {
			yi[r.Year] = 0
			g.years = append(g.years, r.Year)
		}
		if _, ok := ci[r.Country]; !ok {
			ci[r.Country] = 0
			g.countries = append(g.countries, r.Country)
		}
	}
	sort.Ints(g.years)
	// Countries run bottom-up on the Y axis; reverse so A is on top.
	sort.Sort(sort.Reverse(sort.StringSlice(g.countries)))
	for i, y := range g.years {
		yi[y] = i
	}
	for i, c := range g.countries {
		ci[c] = i
	}
	g.z = make([][]float64, len(g.countries))
	for i := range g.z {
		g.z[i] = make([]float64, len(g.years))
		for j := range g.z[i] {
			g.z[i][j] = math.NaN()
		}
	}
	for _, r := range t.Records {
		g.z[ci[r.Country]][yi[r.Year]] = r.HDI
	}
	return g
}

func (g grid) Dims() (c, r int)   { return len(g.years), len(g.countries) }
func (g grid) Z(c, r int) float64 { return g.z[r][c] }
func (g grid) X(c int) float64    { return float64(c) }
func (g grid) Y(r int) float64    { return float64(r) }

func (g grid) yearLabels() []string {
	out := make([]string, len(g.years))
	for i, y := range g.years {
		out[i] = strconv.Itoa(y)
	}
	return out
}

// Heatmap writes the country x year HDI grid as PNG. The height grows with
// the number of countries.
func Heatmap(w io.Writer, t *indicator.Table, opt Options) error {
	if t.Empty() {
		return ErrNoData
	}
	opt = opt.withDefaults()
	g := newGrid(t)

	p := newPlot("HDI by country and year", "Year", "")
	hm := plotter.NewHeatMap(g, palette.Heat(32, 1))
	if hm.Min == hm.Max {
		hm.Min, hm.Max = hm.Min-0.05, hm.Max+0.05
	}
	p.Add(hm)
	p.NominalX(g.yearLabels()...)
	p.NominalY(g.countries...)

	height := opt.Height
	if h := vg.Length(len(g.countries)) * vg.Points(14); h > height {
		height = h
	}
	return writePNG(w, p, opt.Width, height)
}
