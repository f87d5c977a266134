// Package xlsx reads the first (or a named) worksheet of an Excel workbook
// into a records.Table.
package xlsx

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	pcsv "hdidash/internal/parser/csv"
	"hdidash/pkg/records"
)

// Options configures sheet selection and cell handling.
type Options struct {
	// Sheet names the worksheet to read; empty means the first sheet.
	Sheet string

	// Cells carries header/null/trim handling shared with the CSV parser.
	Cells pcsv.Options
}

// Parser reads workbooks with excelize.
type Parser struct{ opt Options }

// NewParser constructs a Parser with the provided Options.
func NewParser(opt Options) *Parser { return &Parser{opt: opt} }

// Parse reads the workbook from r and returns the selected sheet as a table.
func (p *Parser) Parse(r io.Reader) (records.Table, int, error) {
	wb, err := excelize.OpenReader(r)
	if err != nil {
		return records.Table{}, 0, fmt.Errorf("open xlsx: %w", err)
	}
	defer wb.Close()

	sheet := p.opt.Sheet
	if sheet == "" {
		list := wb.GetSheetList()
		if len(list) == 0 {
			return records.Table{}, 0, fmt.Errorf("xlsx: workbook has no sheets")
		}
		sheet = list[0]
	}

	rows, err := wb.GetRows(sheet)
	if err != nil {
		return records.Table{}, 0, fmt.Errorf("xlsx: rows of sheet %q: %w", sheet, err)
	}
	return pcsv.NewParser(p.opt.Cells).ParseRows(rows)
}
