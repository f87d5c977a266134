package builtin

import (
	"testing"
	"time"

	"hdidash/pkg/records"
)

func TestCoerceApply(t *testing.T) {
	t.Parallel()

	recs := []records.Record{{
		"year":    "2005",
		"value":   "1.5M",
		"bad":     "n/a-ish",
		"flag":    "true",
		"updated": "2010-01-31",
		"missing": nil,
	}}
	c := Coerce{
		Types: map[string]string{
			"year": "int", "value": "float", "bad": "float",
			"flag": "bool", "updated": "date", "missing": "float",
		},
		Layout: "2006-01-02",
	}
	r := c.Apply(recs)[0]

	if v, ok := r["year"].(int); !ok || v != 2005 {
		t.Fatalf("year=%#v", r["year"])
	}
	if v, ok := r["value"].(float64); !ok || v != 1.5e6 {
		t.Fatalf("value=%#v", r["value"])
	}
	if v, ok := r["bad"].(string); !ok || v != "n/a-ish" {
		t.Fatalf("unparseable value must keep its string, got %#v", r["bad"])
	}
	if v, ok := r["flag"].(bool); !ok || !v {
		t.Fatalf("flag=%#v", r["flag"])
	}
	if _, ok := r["updated"].(time.Time); !ok {
		t.Fatalf("updated=%#v", r["updated"])
	}
	if r["missing"] != nil {
		t.Fatalf("nil must stay nil")
	}
}

func TestParseNumber(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{in: "0.512", want: 0.512},
		{in: " 71.3 ", want: 71.3},
		{in: "12k", want: 12000},
		{in: "3.5M", want: 3.5e6},
		{in: "1.2B", want: 1.2e9},
		{in: "-4", want: -4},
		{in: "1e3", want: 1000},
		{in: "", wantErr: true},
		{in: "abc", wantErr: true},
		{in: "Inf", wantErr: true},
		{in: "3m", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseNumber(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseNumber(%q) err=%v wantErr=%v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseNumber(%q)=%v want %v", tt.in, got, tt.want)
		}
	}
}
