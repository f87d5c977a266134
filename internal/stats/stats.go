// Package stats computes the descriptive statistics shown on the dashboard:
// value boxes, rankings, per-country trends and changes between years.
// Every function takes the table explicitly and fails with ErrEmptyTable
// when it has no records.
package stats

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"hdidash/internal/indicator"
	"hdidash/internal/schema"
)

var (
	// ErrEmptyTable is returned for a table without records.
	ErrEmptyTable = errors.New("empty table")

	// ErrNoYear is returned when a year has no records.
	ErrNoYear = errors.New("no records for year")
)

// Extreme is a country together with its metric value.
type Extreme struct {
	Country string  `json:"country"`
	Value   float64 `json:"value"`
}

// Summary describes one year of the table.
type Summary struct {
	Year            int     `json:"year"`
	Countries       int     `json:"countries"`
	MeanHDI         float64 `json:"mean_hdi"`
	MeanLife        float64 `json:"mean_life"`
	TotalPopulation float64 `json:"total_population"`
	// PopulationCount is the number of records that carried a population.
	PopulationCount int `json:"population_count"`
	// WeightedHDI is the population-weighted mean HDI; equal to MeanHDI when
	// no record carries a population (Weighted is false then).
	WeightedHDI float64 `json:"weighted_hdi"`
	Weighted    bool    `json:"weighted"`
	MaxHDI      Extreme `json:"max_hdi"`
	MinHDI      Extreme `json:"min_hdi"`
}

// Years returns the distinct years of t in ascending order.
func Years(t *indicator.Table) ([]int, error) {
	if t.Empty() {
		return nil, ErrEmptyTable
	}
	seen := make(map[int]struct{})
	var out []int
	for _, r := range t.Records {
		if _, ok := seen[r.Year]; !ok {
			seen[r.Year] = struct{}{}
			out = append(out, r.Year)
		}
	}
	sort.Ints(out)
	return out, nil
}

// FirstYear returns the earliest year of t.
func FirstYear(t *indicator.Table) (int, error) {
	ys, err := Years(t)
	if err != nil {
		return 0, err
	}
	return ys[0], nil
}

// LatestYear returns the latest year of t.
func LatestYear(t *indicator.Table) (int, error) {
	ys, err := Years(t)
	if err != nil {
		return 0, err
	}
	return ys[len(ys)-1], nil
}

// Summarize computes the value boxes of one year.
func Summarize(t *indicator.Table, year int) (Summary, error) {
	if t.Empty() {
		return Summary{}, ErrEmptyTable
	}
	f := NewFrame(t).Year(year)
	if err := f.Err(); err != nil {
		return Summary{}, fmt.Errorf("summarize %d: %w", year, err)
	}
	if f.Len() == 0 {
		return Summary{}, fmt.Errorf("%w %d", ErrNoYear, year)
	}

	countries := f.Countries()
	hdi := f.Floats(schema.MetricHDI)
	life := f.Floats(schema.MetricLife)
	pop := f.Floats(schema.MetricPopulation)

	s := Summary{
		Year:      year,
		Countries: len(countries),
		MeanHDI:   stat.Mean(hdi, nil),
		MeanLife:  stat.Mean(life, nil),
	}

	var xs, ws []float64
	for i, p := range pop {
		if math.IsNaN(p) {
			continue
		}
		s.TotalPopulation += p
		s.PopulationCount++
		xs = append(xs, hdi[i])
		ws = append(ws, p)
	}
	if s.TotalPopulation > 0 {
		s.WeightedHDI, s.Weighted = stat.Mean(xs, ws), true
	} else {
		s.WeightedHDI = s.MeanHDI
	}

	s.MaxHDI = Extreme{Country: countries[0], Value: hdi[0]}
	s.MinHDI = s.MaxHDI
	for i := 1; i < len(countries); i++ {
		c, v := countries[i], hdi[i]
		if v > s.MaxHDI.Value || (v == s.MaxHDI.Value && c < s.MaxHDI.Country) {
			s.MaxHDI = Extreme{Country: c, Value: v}
		}
		if v < s.MinHDI.Value || (v == s.MinHDI.Value && c < s.MinHDI.Country) {
			s.MinHDI = Extreme{Country: c, Value: v}
		}
	}
	return s, nil
}

// Overview pairs the summaries of the first and latest years.
type Overview struct {
	Years  []int   `json:"years"`
	First  Summary `json:"first"`
	Latest Summary `json:"latest"`
}

// Overviews summarizes the first and latest years of t.
func Overviews(t *indicator.Table) (Overview, error) {
	ys, err := Years(t)
	if err != nil {
		return Overview{}, err
	}
	first, err := Summarize(t, ys[0])
	if err != nil {
		return Overview{}, err
	}
	latest, err := Summarize(t, ys[len(ys)-1])
	if err != nil {
		return Overview{}, err
	}
	return Overview{Years: ys, First: first, Latest: latest}, nil
}

// Rank returns up to n records of year ordered by metric (descending when
// desc), ties broken by country. Records missing the metric are skipped;
// n <= 0 returns all of them.
func Rank(t *indicator.Table, year int, metric string, n int, desc bool) ([]indicator.Record, error) {
	if t.Empty() {
		return nil, ErrEmptyTable
	}
	if !isMetric(metric) {
		return nil, fmt.Errorf("rank: unknown metric %q", metric)
	}
	f := NewFrame(t).Year(year).Present(metric).Arrange(metric, desc)
	if err := f.Err(); err != nil {
		return nil, fmt.Errorf("rank %s %d: %w", metric, year, err)
	}
	out := f.Records()
	if n > 0 && n < len(out) {
		out = out[:n]
	}
	return out, nil
}

// Trend returns the records of one country ordered by year.
func Trend(t *indicator.Table, country string) ([]indicator.Record, error) {
	if t.Empty() {
		return nil, ErrEmptyTable
	}
	var out []indicator.Record
	for _, r := range t.Records {
		if r.Country == country {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out, nil
}

// Delta is the change of one country between two years.
type Delta struct {
	Country string  `json:"country"`
	From    int     `json:"from"`
	To      int     `json:"to"`
	HDI     float64 `json:"hdi"`
	Life    float64 `json:"life"`
}

// Change returns per-country deltas between from and to for countries
// present in both years, ordered by country.
func Change(t *indicator.Table, from, to int) ([]Delta, error) {
	if t.Empty() {
		return nil, ErrEmptyTable
	}
	base := make(map[string]indicator.Record)
	for _, r := range t.Year(from) {
		base[r.Country] = r
	}
	var out []Delta
	for _, r := range t.Year(to) {
		b, ok := base[r.Country]
		if !ok {
			continue
		}
		out = append(out, Delta{
			Country: r.Country,
			From:    from,
			To:      to,
			HDI:     r.HDI - b.HDI,
			Life:    r.Life - b.Life,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Country < out[j].Country })
	return out, nil
}

func isMetric(m string) bool {
	for _, x := range schema.Metrics {
		if x == m {
			return true
		}
	}
	return false
}
