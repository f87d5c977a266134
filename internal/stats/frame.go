package stats

import (
	"math"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"hdidash/internal/indicator"
	"hdidash/internal/schema"
)

const (
	colCountry = schema.KeyColumn
	colYear    = "year"
)

// Frame is a columnar view of an indicator.Table. Missing populations are NaN.
type Frame struct {
	df dataframe.DataFrame
}

// NewFrame copies t into a dataframe with columns country, year, hdi, life
// and population.
func NewFrame(t *indicator.Table) Frame {
	n := t.Len()
	countries := make([]string, 0, n)
	years := make([]int, 0, n)
	hdi := make([]float64, 0, n)
	life := make([]float64, 0, n)
	pop := make([]float64, 0, n)
	if t != nil {
		for _, r := range t.Records {
			countries = append(countries, r.Country)
			years = append(years, r.Year)
			hdi = append(hdi, r.HDI)
			life = append(life, r.Life)
			pop = append(pop, r.PopulationOr(math.NaN()))
		}
	}
	return Frame{df: dataframe.New(
		series.New(countries, series.String, colCountry),
		series.New(years, series.Int, colYear),
		series.New(hdi, series.Float, schema.MetricHDI),
		series.New(life, series.Float, schema.MetricLife),
		series.New(pop, series.Float, schema.MetricPopulation),
	)}
}

// DataFrame exposes the underlying gota frame.
func (f Frame) DataFrame() dataframe.DataFrame { return f.df }

// Err returns the first error recorded by a frame operation.
func (f Frame) Err() error { return f.df.Error() }

// Len returns the number of rows.
func (f Frame) Len() int { return f.df.Nrow() }

// Year keeps the rows of one year.
func (f Frame) Year(year int) Frame {
	return Frame{df: f.df.Filter(dataframe.F{Colname: colYear, Comparator: series.Eq, Comparando: year})}
}

// Country keeps the rows of one country.
func (f Frame) Country(country string) Frame {
	return Frame{df: f.df.Filter(dataframe.F{Colname: colCountry, Comparator: series.Eq, Comparando: country})}
}

// Present drops rows whose metric is missing.
func (f Frame) Present(metric string) Frame {
	return Frame{df: f.df.Filter(dataframe.F{Colname: metric, Comparator: series.CompFunc, Comparando: func(e series.Element) bool {
		return !e.IsNA()
	}})}
}

// Arrange sorts by metric, then by country ascending.
func (f Frame) Arrange(metric string, desc bool) Frame {
	order := dataframe.Sort(metric)
	if desc {
		order = dataframe.RevSort(metric)
	}
	return Frame{df: f.df.Arrange(order, dataframe.Sort(colCountry))}
}

// Floats returns a numeric column; missing values are NaN.
func (f Frame) Floats(col string) []float64 { return f.df.Col(col).Float() }

// Countries returns the country column.
func (f Frame) Countries() []string { return f.df.Col(colCountry).Records() }

// Records converts the frame back to indicator records, in frame order.
func (f Frame) Records() []indicator.Record {
	if f.Len() == 0 {
		return nil
	}
	countries := f.Countries()
	years, _ := f.df.Col(colYear).Int()
	hdi := f.Floats(schema.MetricHDI)
	life := f.Floats(schema.MetricLife)
	pop := f.Floats(schema.MetricPopulation)

	out := make([]indicator.Record, len(countries))
	for i := range countries {
		out[i] = indicator.Record{Country: countries[i], Year: years[i], HDI: hdi[i], Life: life[i]}
		if !math.IsNaN(pop[i]) {
			out[i].Population = indicator.Float(pop[i])
		}
	}
	return out
}
