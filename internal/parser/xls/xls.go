// Package xls reads legacy BIFF (.xls) workbooks into a records.Table.
package xls

import (
	"bytes"
	"fmt"
	"io"

	"github.com/anrid/xls"

	pcsv "hdidash/internal/parser/csv"
	"hdidash/pkg/records"
)

// Options configures sheet selection, text decoding and cell handling.
type Options struct {
	// Sheet is the zero-based worksheet index.
	Sheet int

	// Charset is passed to the BIFF reader; empty means "utf-8".
	Charset string

	// Cells carries header/null/trim handling shared with the CSV parser.
	Cells pcsv.Options
}

// Parser reads .xls workbooks.
type Parser struct{ opt Options }

// NewParser constructs a Parser with the provided Options.
func NewParser(opt Options) *Parser { return &Parser{opt: opt} }

// Parse buffers r (the BIFF reader needs random access) and returns the
// selected sheet as a table.
func (p *Parser) Parse(r io.Reader) (records.Table, int, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return records.Table{}, 0, fmt.Errorf("read xls: %w", err)
	}
	charset := p.opt.Charset
	if charset == "" {
		charset = "utf-8"
	}
	wb, err := xls.OpenReader(bytes.NewReader(raw), charset)
	if err != nil {
		return records.Table{}, 0, fmt.Errorf("open xls: %w", err)
	}

	sheet := wb.GetSheet(p.opt.Sheet)
	if sheet == nil {
		return records.Table{}, 0, fmt.Errorf("xls: sheet %d not found", p.opt.Sheet)
	}

	rows := make([][]string, 0, int(sheet.MaxRow)+1)
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			continue
		}
		cols := make([]string, 0, row.LastCol()+1)
		for j := 0; j <= row.LastCol(); j++ {
			cols = append(cols, row.Col(j))
		}
		rows = append(rows, cols)
	}
	return pcsv.NewParser(p.opt.Cells).ParseRows(rows)
}
