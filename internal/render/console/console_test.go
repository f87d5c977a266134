package console

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"hdidash/internal/indicator"
	"hdidash/internal/stats"
)

func TestPrint(t *testing.T) {
	t.Parallel()

	tbl := &indicator.Table{Records: []indicator.Record{
		{Country: "A", Year: 2001, HDI: 0.5, Life: 70, Population: indicator.Float(1000)},
		{Country: "A", Year: 2002, HDI: 0.6, Life: 71, Population: indicator.Float(1100)},
		{Country: "B", Year: 2002, HDI: 0.8, Life: 62},
		{Country: "C", Year: 2002, HDI: 0.3, Life: 50},
	}}
	var buf bytes.Buffer
	if err := Print(&buf, tbl, Options{TopN: 2, Locale: "en"}); err != nil {
		t.Fatalf("Print: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"Human Development Dashboard 2001-2002",
		"Total population",
		"1,100",
		"Top 2 by HDI, 2002",
		"+0.100",
		"n/a",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\x1b[") {
		t.Errorf("colour codes written with Color=false")
	}
	if strings.Contains(out, "0.300 |") {
		t.Errorf("C is outside the top 2:\n%s", out)
	}
}

func TestPrint_Empty(t *testing.T) {
	t.Parallel()

	if err := Print(&bytes.Buffer{}, &indicator.Table{}, Options{}); !errors.Is(err, stats.ErrEmptyTable) {
		t.Fatalf("err=%v", err)
	}
}
