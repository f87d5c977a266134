// Package probe loads the configured inputs and reports how every header
// resolves against the schema, with a per-column sample of value kinds. It
// backs the CLI -probe flag and the web UI probe page.
package probe

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"hdidash/internal/config"
	"hdidash/internal/datasource"
	"hdidash/internal/schema"
	"hdidash/internal/tablebuilder"
	"hdidash/internal/transformer/builtin"
	"hdidash/pkg/records"
)

// Column is the probe result for one header.
type Column struct {
	Header   string `json:"header"`
	Selected bool   `json:"selected"`
	Metric   string `json:"metric,omitempty"`
	Year     int    `json:"year,omitempty"`
	Rule     string `json:"rule,omitempty"`
	Reason   string `json:"reason,omitempty"`

	// Value kinds over all rows. Invalid counts non-empty, non-numeric cells;
	// a selected column with Invalid > 0 fails the build.
	Numeric int    `json:"numeric"`
	Missing int    `json:"missing"`
	Invalid int    `json:"invalid"`
	Example string `json:"example,omitempty"`
}

// Source is the probe result for one input.
type Source struct {
	Name     string   `json:"name"`
	Location string   `json:"location"`
	Rows     int      `json:"rows"`
	HasKey   bool     `json:"has_key"`
	Columns  []Column `json:"columns"`
	Metrics  []string `json:"metrics"`
}

// Report covers all three inputs, in hdi, lex, pop order.
type Report struct {
	YearFrom int      `json:"year_from"`
	YearTo   int      `json:"year_to"`
	Sources  []Source `json:"sources"`
}

// Run loads the inputs of r and describes them.
func Run(ctx context.Context, r config.Run) (Report, error) {
	in, err := tablebuilder.LoadInputs(ctx, r.Job, r.Inputs)
	if err != nil {
		return Report{}, err
	}
	return Describe(schema.FromConfig(r.Schema), r.Inputs, in), nil
}

// Describe reports on already-parsed inputs.
func Describe(s schema.Schema, cfg config.Inputs, in tablebuilder.Inputs) Report {
	rep := Report{YearFrom: s.YearFrom, YearTo: s.YearTo}
	tables := []struct {
		name string
		cfg  config.Input
		t    records.Table
	}{
		{config.SourceHDI, cfg.HDI, in.HDI},
		{config.SourceLex, cfg.Lex, in.Lex},
		{config.SourcePop, cfg.Pop, in.Pop},
	}
	for _, tb := range tables {
		rep.Sources = append(rep.Sources, describeSource(s, tb.name, tb.cfg, tb.t))
	}
	return rep
}

func describeSource(s schema.Schema, name string, cfg config.Input, t records.Table) Source {
	src := Source{
		Name:     name,
		Location: datasource.Describe(cfg.Source),
		Rows:     len(t.Rows),
		HasKey:   t.HasColumn(schema.KeyColumn),
	}
	metrics := map[string]bool{}
	for _, res := range s.DescribeAs(name, t.Columns, tablebuilder.HeaderNames(name, t.Columns)) {
		c := Column{
			Header:   res.Header,
			Selected: res.Selected,
			Metric:   res.Column.Metric,
			Year:     res.Column.Year,
			Rule:     string(res.Rule),
			Reason:   res.Reason,
		}
		if res.Header != schema.KeyColumn {
			classify(&c, t.Rows)
		}
		if c.Selected {
			metrics[c.Metric] = true
		}
		src.Columns = append(src.Columns, c)
	}
	for m := range metrics {
		src.Metrics = append(src.Metrics, m)
	}
	sort.Strings(src.Metrics)
	return src
}

// classify counts value kinds in one column, like the numeric check the
// builder applies to selected columns. The example is the first invalid cell
// when there is one, else the first numeric cell.
func classify(c *Column, rows []records.Record) {
	var firstNumeric, firstInvalid string
	for _, r := range rows {
		switch v := r[c.Header].(type) {
		case nil:
			c.Missing++
		case float64, int, int64:
			c.Numeric++
			if firstNumeric == "" {
				firstNumeric = fmt.Sprint(v)
			}
		case string:
			if _, err := builtin.ParseNumber(v); err != nil {
				c.Invalid++
				if firstInvalid == "" {
					firstInvalid = v
				}
				continue
			}
			c.Numeric++
			if firstNumeric == "" {
				firstNumeric = v
			}
		default:
			c.Invalid++
			if firstInvalid == "" {
				firstInvalid = fmt.Sprint(v)
			}
		}
	}
	c.Example = firstNumeric
	if firstInvalid != "" {
		c.Example = firstInvalid
	}
}

// WriteText renders rep as one table per source.
func WriteText(w io.Writer, rep Report) error {
	for i, src := range rep.Sources {
		if i > 0 {
			fmt.Fprintln(w)
		}
		key := "yes"
		if !src.HasKey {
			key = "MISSING"
		}
		fmt.Fprintf(w, "%s (%s): %d rows, country column: %s\n", src.Name, src.Location, src.Rows, key)

		tw := tablewriter.NewWriter(w)
		tw.SetHeader([]string{"Header", "Resolves to", "Rule", "Numeric", "Missing", "Invalid", "Example"})
		tw.SetAutoWrapText(false)
		tw.SetAlignment(tablewriter.ALIGN_LEFT)
		for _, c := range src.Columns {
			to := "-"
			switch {
			case c.Selected:
				to = c.Metric + "/" + strconv.Itoa(c.Year)
			case c.Reason != "":
				to = "skipped: " + c.Reason
			}
			tw.Append([]string{
				c.Header, to, c.Rule,
				strconv.Itoa(c.Numeric), strconv.Itoa(c.Missing), strconv.Itoa(c.Invalid),
				c.Example,
			})
		}
		tw.Render()
	}
	return nil
}

// WriteJSON renders rep as indented JSON.
func WriteJSON(w io.Writer, rep Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}
