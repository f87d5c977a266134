// Package parser turns raw source bytes into a records.Table and selects the
// implementation from a config.Parser.
package parser

import (
	"fmt"
	"io"

	"hdidash/internal/config"
	pcsv "hdidash/internal/parser/csv"
	pjson "hdidash/internal/parser/json"
	"hdidash/internal/parser/xls"
	"hdidash/internal/parser/xlsx"
	"hdidash/pkg/records"
)

// Parser reads a whole source into a table. The int result is the number of
// rows skipped in lenient mode.
type Parser interface {
	Parse(r io.Reader) (records.Table, int, error)
}

// New builds the Parser named by cfg.Kind ("csv", "xlsx", "xls" or "json").
func New(cfg config.Parser) (Parser, error) {
	cells := cellOptions(cfg.Options)
	switch cfg.Kind {
	case "csv", "":
		return pcsv.NewParser(cells), nil
	case "xlsx":
		return xlsx.NewParser(xlsx.Options{
			Sheet: cfg.Options.String("sheet", ""),
			Cells: cells,
		}), nil
	case "xls":
		return xls.NewParser(xls.Options{
			Sheet:   cfg.Options.Int("sheet", 0),
			Charset: cfg.Options.String("charset", "utf-8"),
			Cells:   cells,
		}), nil
	case "json":
		return pjson.NewParser(pjson.Options{
			Records: cfg.Options.String("records", ""),
			Cells:   cells,
		}), nil
	default:
		return nil, fmt.Errorf("unsupported parser.kind=%s", cfg.Kind)
	}
}

func cellOptions(o config.Options) pcsv.Options {
	nulls := o.StringSlice("null_values")
	if nulls == nil {
		nulls = pcsv.DefaultNullValues
	}
	return pcsv.Options{
		HasHeader:        o.Bool("has_header", true),
		Comma:            o.Rune("comma", ','),
		TrimSpace:        o.Bool("trim_space", true),
		ExpectedFields:   o.Int("expected_fields", 0),
		HeaderMap:        o.StringMap("header_map"),
		NormalizeHeaders: o.Bool("normalize_headers", false),
		NullValues:       nulls,
		Strict:           o.Bool("strict", false),
	}
}
