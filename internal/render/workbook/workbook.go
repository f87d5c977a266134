// Package workbook writes the comparison table as an XLSX workbook: a
// styled "Comparison" sheet for the latest year and a "Data" sheet with the
// full cleaned table.
package workbook

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"hdidash/internal/indicator"
	"hdidash/internal/stats"
)

const (
	SheetComparison = "Comparison"
	SheetData       = "Data"
)

var (
	comparisonHeader = []any{"Rank", "Country", "HDI", "Life expectancy", "Population", "HDI change"}
	dataHeader       = []any{"country", "year", "hdi", "life", "population"}
)

// Write renders t into w.
func Write(w io.Writer, t *indicator.Table) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetComparison); err != nil {
		return err
	}
	if _, err := f.NewSheet(SheetData); err != nil {
		return err
	}
	st, err := newStyles(f)
	if err != nil {
		return fmt.Errorf("workbook styles: %w", err)
	}
	if err := writeComparison(f, st, t); err != nil {
		return fmt.Errorf("sheet %s: %w", SheetComparison, err)
	}
	if err := writeData(f, st, t); err != nil {
		return fmt.Errorf("sheet %s: %w", SheetData, err)
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

type styles struct {
	header int
	index  int
	people int
	delta  int
}

func newStyles(f *excelize.File) (styles, error) {
	var s styles
	var err error
	s.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"1F4E78"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return s, err
	}
	idx := "0.000"
	if s.index, err = f.NewStyle(&excelize.Style{CustomNumFmt: &idx}); err != nil {
		return s, err
	}
	if s.people, err = f.NewStyle(&excelize.Style{NumFmt: 3}); err != nil {
		return s, err
	}
	delta := "+0.000;-0.000;0.000"
	s.delta, err = f.NewStyle(&excelize.Style{CustomNumFmt: &delta})
	return s, err
}

func writeComparison(f *excelize.File, st styles, t *indicator.Table) error {
	sh := SheetComparison
	year, rows, err := stats.Compare(t)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sh, "A1", &comparisonHeader); err != nil {
		return err
	}
	for i, r := range rows {
		row := []any{r.Rank, r.Country, r.HDI, r.Life, nil, nil}
		if r.Population != nil {
			row[4] = *r.Population
		}
		if r.HDIChange != nil {
			row[5] = *r.HDIChange
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sh, cell, &row); err != nil {
			return err
		}
	}

	last := len(rows) + 1
	for _, c := range []struct {
		col   string
		style int
	}{{"C", st.index}, {"E", st.people}, {"F", st.delta}} {
		if err := f.SetCellStyle(sh, c.col+"2", fmt.Sprintf("%s%d", c.col, last), c.style); err != nil {
			return err
		}
	}
	if err := f.SetCellStyle(sh, "A1", "F1", st.header); err != nil {
		return err
	}
	if err := f.SetCellValue(sh, "H1", fmt.Sprintf("Latest year: %d", year)); err != nil {
		return err
	}

	// Red-yellow-green scales on HDI, life expectancy and change.
	scale := []excelize.ConditionalFormatOptions{{
		Type:     "3_color_scale",
		Criteria: "=",
		MinType:  "min",
		MidType:  "percentile",
		MidValue: "50",
		MaxType:  "max",
		MinColor: "#F8696B",
		MidColor: "#FFEB84",
		MaxColor: "#63BE7B",
	}}
	for _, col := range []string{"C", "D", "F"} {
		if err := f.SetConditionalFormat(sh, fmt.Sprintf("%s2:%s%d", col, col, last), scale); err != nil {
			return err
		}
	}

	if err := f.SetColWidth(sh, "A", "A", 7); err != nil {
		return err
	}
	if err := f.SetColWidth(sh, "B", "B", 28); err != nil {
		return err
	}
	if err := f.SetColWidth(sh, "C", "F", 16); err != nil {
		return err
	}
	if err := f.AutoFilter(sh, fmt.Sprintf("A1:F%d", last), nil); err != nil {
		return err
	}
	return f.SetPanes(sh, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})
}

func writeData(f *excelize.File, st styles, t *indicator.Table) error {
	sh := SheetData
	if err := f.SetSheetRow(sh, "A1", &dataHeader); err != nil {
		return err
	}
	for i, r := range t.Records {
		row := []any{r.Country, r.Year, r.HDI, r.Life, nil}
		if r.Population != nil {
			row[4] = *r.Population
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sh, cell, &row); err != nil {
			return err
		}
	}
	if err := f.SetCellStyle(sh, "A1", "E1", st.header); err != nil {
		return err
	}
	return f.SetColWidth(sh, "A", "A", 28)
}
