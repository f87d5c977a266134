package stats

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"hdidash/internal/indicator"
)

func fixture() *indicator.Table {
	return &indicator.Table{Records: []indicator.Record{
		{Country: "A", Year: 2001, HDI: 0.5, Life: 70, Population: indicator.Float(100)},
		{Country: "A", Year: 2002, HDI: 0.6, Life: 71, Population: indicator.Float(100)},
		{Country: "B", Year: 2001, HDI: 0.7, Life: 60, Population: indicator.Float(300)},
		{Country: "B", Year: 2002, HDI: 0.8, Life: 62},
		{Country: "C", Year: 2002, HDI: 0.8, Life: 80, Population: indicator.Float(50)},
	}}
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestYears(t *testing.T) {
	t.Parallel()

	ys, err := Years(fixture())
	if err != nil {
		t.Fatalf("Years: %v", err)
	}
	if !reflect.DeepEqual(ys, []int{2001, 2002}) {
		t.Fatalf("years=%v", ys)
	}
	first, _ := FirstYear(fixture())
	latest, _ := LatestYear(fixture())
	if first != 2001 || latest != 2002 {
		t.Fatalf("first=%d latest=%d", first, latest)
	}
}

func TestEmptyTable(t *testing.T) {
	t.Parallel()

	empty := &indicator.Table{}
	checks := map[string]error{}
	_, checks["Years"] = Years(empty)
	_, checks["LatestYear"] = LatestYear(nil)
	_, checks["Summarize"] = Summarize(empty, 2001)
	_, checks["Overviews"] = Overviews(empty)
	_, checks["Rank"] = Rank(empty, 2001, "hdi", 3, true)
	_, checks["Trend"] = Trend(empty, "A")
	_, checks["Change"] = Change(empty, 2001, 2002)
	for name, err := range checks {
		if !errors.Is(err, ErrEmptyTable) {
			t.Errorf("%s: err=%v; want ErrEmptyTable", name, err)
		}
	}
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		year int
		want Summary
	}{
		{
			name: "weighted",
			year: 2001,
			want: Summary{
				Year: 2001, Countries: 2,
				MeanHDI: 0.6, MeanLife: 65,
				TotalPopulation: 400, PopulationCount: 2,
				WeightedHDI: (0.5*100 + 0.7*300) / 400, Weighted: true,
				MaxHDI: Extreme{"B", 0.7}, MinHDI: Extreme{"A", 0.5},
			},
		},
		{
			// B has no population in 2002; B and C tie on max HDI.
			name: "partial_population_and_tie",
			year: 2002,
			want: Summary{
				Year: 2002, Countries: 3,
				MeanHDI: (0.6 + 0.8 + 0.8) / 3, MeanLife: (71 + 62 + 80) / 3.0,
				TotalPopulation: 150, PopulationCount: 2,
				WeightedHDI: (0.6*100 + 0.8*50) / 150, Weighted: true,
				MaxHDI: Extreme{"B", 0.8}, MinHDI: Extreme{"A", 0.6},
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := Summarize(fixture(), tt.year)
			if err != nil {
				t.Fatalf("Summarize: %v", err)
			}
			if !near(got.MeanHDI, tt.want.MeanHDI) || !near(got.MeanLife, tt.want.MeanLife) || !near(got.WeightedHDI, tt.want.WeightedHDI) {
				t.Fatalf("means=%+v want %+v", got, tt.want)
			}
			got.MeanHDI, got.MeanLife, got.WeightedHDI = tt.want.MeanHDI, tt.want.MeanLife, tt.want.WeightedHDI
			if got != tt.want {
				t.Fatalf("summary=%+v want %+v", got, tt.want)
			}
		})
	}
}

func TestSummarize_NoPopulationFallsBack(t *testing.T) {
	t.Parallel()

	tbl := &indicator.Table{Records: []indicator.Record{
		{Country: "A", Year: 2005, HDI: 0.4, Life: 50},
		{Country: "B", Year: 2005, HDI: 0.6, Life: 60},
	}}
	s, err := Summarize(tbl, 2005)
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if s.Weighted || !near(s.WeightedHDI, 0.5) || s.TotalPopulation != 0 {
		t.Fatalf("summary=%+v", s)
	}
}

func TestSummarize_UnknownYear(t *testing.T) {
	t.Parallel()

	if _, err := Summarize(fixture(), 2009); !errors.Is(err, ErrNoYear) {
		t.Fatalf("err=%v; want ErrNoYear", err)
	}
}

func TestOverviews(t *testing.T) {
	t.Parallel()

	o, err := Overviews(fixture())
	if err != nil {
		t.Fatalf("Overviews: %v", err)
	}
	if o.First.Year != 2001 || o.Latest.Year != 2002 || len(o.Years) != 2 {
		t.Fatalf("overview=%+v", o)
	}
}

func countries(rs []indicator.Record) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.Country
	}
	return out
}

func TestRank(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		metric string
		n      int
		desc   bool
		want   []string
	}{
		{name: "hdi_desc_tie_by_country", metric: "hdi", n: 0, desc: true, want: []string{"B", "C", "A"}},
		{name: "life_desc_top2", metric: "life", n: 2, desc: true, want: []string{"C", "A"}},
		{name: "life_asc", metric: "life", n: 1, want: []string{"B"}},
		{name: "population_skips_missing", metric: "population", n: 10, desc: true, want: []string{"A", "C"}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := Rank(fixture(), 2002, tt.metric, tt.n, tt.desc)
			if err != nil {
				t.Fatalf("Rank: %v", err)
			}
			if !reflect.DeepEqual(countries(got), tt.want) {
				t.Fatalf("rank=%v want %v", countries(got), tt.want)
			}
		})
	}
}

func TestRank_KeepsRecordValues(t *testing.T) {
	t.Parallel()

	got, err := Rank(fixture(), 2002, "hdi", 0, true)
	if err != nil {
		t.Fatalf("Rank: %v", err)
	}
	b := got[0]
	if b.Year != 2002 || b.Life != 62 || b.Population != nil {
		t.Fatalf("B=%+v", b)
	}
	if c := got[1]; c.Population == nil || *c.Population != 50 {
		t.Fatalf("C=%+v", c)
	}
}

func TestRank_UnknownMetric(t *testing.T) {
	t.Parallel()

	if _, err := Rank(fixture(), 2002, "gdp", 3, true); err == nil {
		t.Fatalf("expected error")
	}
}

func TestTrend(t *testing.T) {
	t.Parallel()

	tbl := fixture()
	tbl.Records[0], tbl.Records[1] = tbl.Records[1], tbl.Records[0]
	got, err := Trend(tbl, "A")
	if err != nil {
		t.Fatalf("Trend: %v", err)
	}
	if len(got) != 2 || got[0].Year != 2001 || got[1].Year != 2002 {
		t.Fatalf("trend=%+v", got)
	}
	if none, _ := Trend(tbl, "Z"); len(none) != 0 {
		t.Fatalf("unknown country should yield nothing: %+v", none)
	}
}

func TestChange(t *testing.T) {
	t.Parallel()

	got, err := Change(fixture(), 2001, 2002)
	if err != nil {
		t.Fatalf("Change: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("deltas=%+v; C is absent in 2001", got)
	}
	if got[0].Country != "A" || !near(got[0].HDI, 0.1) || !near(got[0].Life, 1) {
		t.Fatalf("A=%+v", got[0])
	}
	if got[1].Country != "B" || !near(got[1].Life, 2) {
		t.Fatalf("B=%+v", got[1])
	}
}

func TestFrame_RoundTrip(t *testing.T) {
	t.Parallel()

	f := NewFrame(fixture())
	if f.Len() != 5 || f.Err() != nil {
		t.Fatalf("len=%d err=%v", f.Len(), f.Err())
	}
	if got := f.Country("B").Records(); len(got) != 2 || got[1].Population != nil {
		t.Fatalf("B rows=%+v", got)
	}
	if n := f.Present("population").Len(); n != 4 {
		t.Fatalf("present populations=%d want 4", n)
	}
}

func TestCompare(t *testing.T) {
	t.Parallel()

	year, rows, err := Compare(fixture())
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	if year != 2002 || len(rows) != 3 {
		t.Fatalf("year=%d rows=%+v", year, rows)
	}
	if rows[0].Rank != 1 || rows[0].Country != "B" || rows[2].Country != "A" {
		t.Fatalf("order=%+v", rows)
	}
	if rows[0].HDIChange == nil || !near(*rows[0].HDIChange, 0.1) {
		t.Fatalf("B change=%v", rows[0].HDIChange)
	}
	if rows[1].Country != "C" || rows[1].HDIChange != nil {
		t.Fatalf("C has no first-year record: %+v", rows[1])
	}
}
