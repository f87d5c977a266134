package stats

import (
	"hdidash/internal/indicator"
	"hdidash/internal/schema"
)

// Comparison is one row of the dashboard comparison table.
type Comparison struct {
	Rank       int      `json:"rank"`
	Country    string   `json:"country"`
	HDI        float64  `json:"hdi"`
	Life       float64  `json:"life"`
	Population *float64 `json:"population"`
	// HDIChange is the change since the first year; nil when the country
	// has no record then.
	HDIChange *float64 `json:"hdi_change"`
}

// Compare ranks every country of the latest year by HDI and attaches the
// HDI change since the first year. Countries tie on rank order by name.
func Compare(t *indicator.Table) (year int, rows []Comparison, err error) {
	years, err := Years(t)
	if err != nil {
		return 0, nil, err
	}
	first, latest := years[0], years[len(years)-1]
	ranked, err := Rank(t, latest, schema.MetricHDI, 0, true)
	if err != nil {
		return 0, nil, err
	}
	deltas, err := Change(t, first, latest)
	if err != nil {
		return 0, nil, err
	}
	byCountry := make(map[string]float64, len(deltas))
	for _, d := range deltas {
		byCountry[d.Country] = d.HDI
	}

	rows = make([]Comparison, len(ranked))
	for i, r := range ranked {
		rows[i] = Comparison{
			Rank:       i + 1,
			Country:    r.Country,
			HDI:        r.HDI,
			Life:       r.Life,
			Population: r.Population,
		}
		if d, ok := byCountry[r.Country]; ok && first != latest {
			rows[i].HDIChange = indicator.Float(d)
		}
	}
	return latest, rows, nil
}
