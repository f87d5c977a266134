// Package csv parses delimited text into records.Table values. Headers are
// kept verbatim apart from BOM and surrounding whitespace so downstream code
// can rely on exact column names (the join key "country" is case-sensitive).
package csv

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"hdidash/pkg/records"
)

// DefaultNullValues are the cell spellings treated as missing when
// Options.NullValues is nil.
var DefaultNullValues = []string{"", "NA", "N/A", "NaN", "nan", "null", "NULL"}

// Options configures the CSV parser behavior. All fields are optional; sensible
// defaults are applied when a field is zero.
type Options struct {
	// HasHeader indicates whether the first row contains column headers.
	HasHeader bool

	// Comma specifies the field delimiter. When zero, ',' is used.
	Comma rune

	// TrimSpace trims leading/trailing ASCII spaces from each field value.
	TrimSpace bool

	// ExpectedFields, when > 0, enforces a fixed field count per record.
	ExpectedFields int

	// HeaderMap maps source header names to canonical keys. Only applies when
	// HasHeader is true.
	HeaderMap map[string]string

	// NormalizeHeaders lowercases headers and turns spaces into underscores
	// for headers not covered by HeaderMap.
	NormalizeHeaders bool

	// NullValues lists cell spellings that decode to nil. Nil means
	// DefaultNullValues.
	NullValues []string

	// Strict turns the first malformed row into an error. Otherwise malformed
	// rows are skipped and counted.
	Strict bool
}

// Parser parses CSV input according to Options. It is safe to reuse across
// inputs, but Parser itself is not concurrency-safe.
type Parser struct {
	opt   Options
	nulls map[string]struct{}
}

// NewParser constructs a Parser with the provided Options.
func NewParser(opt Options) *Parser {
	nv := opt.NullValues
	if nv == nil {
		nv = DefaultNullValues
	}
	nulls := make(map[string]struct{}, len(nv))
	for _, s := range nv {
		nulls[s] = struct{}{}
	}
	return &Parser{opt: opt, nulls: nulls}
}

// skipLogLimit caps how many skipped rows are logged individually.
const skipLogLimit = 50

// Parse consumes CSV records from r and returns the parsed table along with
// the number of rows that were skipped due to parse errors or field-count
// mismatches.
func (p *Parser) Parse(r io.Reader) (records.Table, int, error) {
	cr := csv.NewReader(r)
	if p.opt.Comma != 0 {
		cr.Comma = p.opt.Comma
	}
	// Width is enforced below so that a bad row can be skipped rather than
	// aborting the reader.
	cr.FieldsPerRecord = -1

	var (
		headers []string
		out     []records.Record
		skipped int
	)

	if p.opt.HasHeader {
		h, err := cr.Read()
		if err == io.EOF {
			return records.Table{}, 0, fmt.Errorf("read csv header: empty input")
		}
		if err != nil {
			return records.Table{}, 0, fmt.Errorf("read csv header: %w", err)
		}
		headers = normalizeHeaders(h, p.opt)
	} else if p.opt.ExpectedFields > 0 {
		headers = make([]string, p.opt.ExpectedFields)
		for i := range headers {
			headers[i] = fmt.Sprintf("col_%d", i)
		}
	}

	want := len(headers)
	if p.opt.ExpectedFields > 0 {
		want = p.opt.ExpectedFields
	}

	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			if p.opt.Strict {
				return records.Table{}, skipped, fmt.Errorf("csv line %d: %w", line, err)
			}
			if skipped < skipLogLimit {
				slog.Warn("csv: skipping row", "line", line, "err", err)
			}
			skipped++
			continue
		}

		if want > 0 && len(row) != want {
			if p.opt.Strict {
				return records.Table{}, skipped, fmt.Errorf("csv line %d: expected %d fields, got %d", line, want, len(row))
			}
			if skipped < skipLogLimit {
				slog.Warn("csv: skipping row", "line", line, "expected", want, "got", len(row))
			}
			skipped++
			continue
		}

		rec := make(records.Record, len(row))
		for i, val := range row {
			if p.opt.TrimSpace {
				val = strings.TrimSpace(val)
			}
			rec[keyFor(i, headers)] = p.cell(val)
		}
		out = append(out, rec)
	}

	if headers == nil && len(out) > 0 {
		headers = make([]string, len(out[0]))
		for i := range headers {
			headers[i] = keyFor(i, nil)
		}
	}
	return records.Table{Columns: headers, Rows: out}, skipped, nil
}

// cell converts null spellings to nil; all other values are returned as-is.
func (p *Parser) cell(s string) any {
	if _, ok := p.nulls[s]; ok {
		return nil
	}
	return s
}

// keyFor returns the column key for index idx, using headers when available,
// otherwise synthesizing a "col_N" name.
func keyFor(idx int, headers []string) string {
	if idx < len(headers) && headers[idx] != "" {
		return headers[idx]
	}
	return fmt.Sprintf("col_%d", idx)
}

// normalizeHeaders trims headers, strips a UTF-8 BOM from the first cell and
// applies HeaderMap. With NormalizeHeaders it also lowercases and replaces
// spaces with underscores.
func normalizeHeaders(h []string, opt Options) []string {
	res := make([]string, len(h))
	for i, col := range h {
		c := strings.TrimSpace(col)
		if i == 0 {
			c = strings.TrimSpace(strings.TrimPrefix(c, utf8BOM))
		}
		if opt.HeaderMap != nil {
			if m, ok := opt.HeaderMap[c]; ok {
				res[i] = m
				continue
			}
		}
		if opt.NormalizeHeaders {
			c = strings.ReplaceAll(strings.ToLower(c), " ", "_")
		}
		res[i] = c
	}
	return res
}

// ParseRows builds a table from rows that were already split into cells, as
// produced by spreadsheet readers. Spreadsheet libraries drop trailing empty
// cells, so short rows are padded with missing values instead of skipped;
// rows wider than the header are still skipped (or rejected when Strict).
func (p *Parser) ParseRows(rows [][]string) (records.Table, int, error) {
	if len(rows) == 0 {
		return records.Table{}, 0, fmt.Errorf("parse rows: empty input")
	}

	var headers []string
	body := rows
	if p.opt.HasHeader {
		headers = normalizeHeaders(append([]string(nil), rows[0]...), p.opt)
		body = rows[1:]
	}

	var (
		out     = make([]records.Record, 0, len(body))
		skipped int
	)
	for i, row := range body {
		if len(headers) > 0 && len(row) > len(headers) {
			if p.opt.Strict {
				return records.Table{}, skipped, fmt.Errorf("row %d: expected at most %d cells, got %d", i+2, len(headers), len(row))
			}
			skipped++
			continue
		}
		if isBlank(row) {
			continue
		}
		rec := make(records.Record, len(headers))
		for j := range headers {
			var val string
			if j < len(row) {
				val = row[j]
			}
			if p.opt.TrimSpace {
				val = strings.TrimSpace(val)
			}
			rec[keyFor(j, headers)] = p.cell(val)
		}
		if len(headers) == 0 {
			for j, val := range row {
				rec[keyFor(j, nil)] = p.cell(val)
			}
		}
		out = append(out, rec)
	}
	return records.Table{Columns: headers, Rows: out}, skipped, nil
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
