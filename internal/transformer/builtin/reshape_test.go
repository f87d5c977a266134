package builtin

import (
	"reflect"
	"regexp"
	"testing"

	"hdidash/pkg/records"
)

func TestRequire(t *testing.T) {
	t.Parallel()

	in := []records.Record{
		{"country": "A", "hdi": 0.5, "life": 70.0},
		{"country": "B", "hdi": nil, "life": 70.0},
		{"country": "C", "hdi": 0.5},
		{"country": "D", "hdi": 0.5, "life": ""},
	}
	out := Require{Fields: []string{"hdi", "life"}}.Apply(in)
	if len(out) != 1 || out[0]["country"] != "A" {
		t.Fatalf("got %#v", out)
	}
}

func TestTokenRenames(t *testing.T) {
	t.Parallel()

	re := regexp.MustCompile(`(?i)pop(ulation)?`)
	cols := []string{"country", "Population_2005", "pop_2003", "POP_2004", "population_2006"}
	r := TokenRenames(cols, re, "population")

	got := r.Columns(cols)
	want := []string{"country", "population_2005", "population_2003", "population_2004", "population_2006"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("columns=%v want %v", got, want)
	}

	recs := r.Apply([]records.Record{{"country": "A", "Population_2005": "10", "pop_2003": nil}})
	if recs[0]["population_2005"] != "10" || recs[0]["Population_2005"] != nil {
		t.Fatalf("record=%v", recs[0])
	}
	if _, ok := recs[0]["population_2003"]; !ok {
		t.Fatalf("nil cells must be carried under the new name: %v", recs[0])
	}
}

func TestTokenRenames_Collision(t *testing.T) {
	t.Parallel()

	re := regexp.MustCompile(`(?i)pop(ulation)?`)
	cols := []string{"country", "pop_2005", "Population_2005"}
	got := TokenRenames(cols, re, "population").Columns(cols)
	want := []string{"country", "population_2005", "Population_2005"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("columns=%v want %v", got, want)
	}
}

func TestMelt_ColumnMajor(t *testing.T) {
	t.Parallel()

	in := []records.Record{
		{"country": "A", "hdi_2001": "0.5", "life_2001": "70"},
		{"country": "B", "hdi_2001": nil, "life_2001": "71"},
	}
	m := Melt{ID: "country", Columns: []MeltColumn{
		{Name: "hdi_2001", Metric: "hdi", Year: 2001},
		{Name: "life_2001", Metric: "life", Year: 2001},
	}}
	out := m.Apply(in)
	want := []records.Record{
		tuple("A", 2001, "hdi", "0.5"),
		tuple("B", 2001, "hdi", nil),
		tuple("A", 2001, "life", "70"),
		tuple("B", 2001, "life", "71"),
	}
	if !reflect.DeepEqual(out, want) {
		t.Fatalf("got %#v\nwant %#v", out, want)
	}
}

/*
TestPivot_FirstWriterWins verifies that each metric takes the first
non-missing value of its group in input order, that nil values never win,
and that groups come out in order of first appearance.
*/
func TestPivot_FirstWriterWins(t *testing.T) {
	t.Parallel()

	in := []records.Record{
		tuple("B", 2001, "hdi", 0.9),
		tuple("A", 2001, "hdi", nil),
		tuple("A", 2001, "hdi", 0.5),
		tuple("A", 2001, "hdi", 0.6),
		tuple("A", 2001, "life", 70.0),
		tuple("A", 2002, "life", 71.0),
	}
	out := Pivot{Keys: []string{"country", "year"}, Name: "metric", Value: "value"}.Apply(in)
	want := []records.Record{
		{"country": "B", "year": 2001, "hdi": 0.9},
		{"country": "A", "year": 2001, "hdi": 0.5, "life": 70.0},
		{"country": "A", "year": 2002, "life": 71.0},
	}
	if !reflect.DeepEqual(out, want) {
		t.Fatalf("got %#v\nwant %#v", out, want)
	}
}

func TestFill(t *testing.T) {
	t.Parallel()

	out := Fill{Fields: []string{"hdi", "life", "population"}}.Apply([]records.Record{
		{"country": "A", "hdi": 0.5, "life": 70.0},
	})
	v, ok := out[0]["population"]
	if !ok || v != nil {
		t.Fatalf("population should be present and nil: %#v", out[0])
	}
	if out[0]["hdi"] != 0.5 {
		t.Fatalf("existing fields must be untouched")
	}
}
