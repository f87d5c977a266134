// Package page renders the dashboard index.html: value boxes, the chart
// images written next to it, the comparison table and the narrative.
package page

import (
	_ "embed"
	"fmt"
	"html/template"
	"io"

	"hdidash/internal/indicator"
	"hdidash/internal/render"
	"hdidash/internal/stats"
)

// Chart is an image file shown on the page, relative to index.html.
type Chart struct {
	Title string
	File  string
}

// Options describe the page.
type Options struct {
	Title    string
	RunID    string
	Locale   string
	TopN     int
	Charts   []Chart
	Workbook string
}

type data struct {
	Options
	Overview  stats.Overview
	Year      int
	Rows      []stats.Comparison
	Narrative string
}

// Write renders the page for t into w.
func Write(w io.Writer, t *indicator.Table, opt Options) error {
	o, err := stats.Overviews(t)
	if err != nil {
		return err
	}
	year, rows, err := stats.Compare(t)
	if err != nil {
		return err
	}
	if opt.TopN > 0 && opt.TopN < len(rows) {
		rows = rows[:opt.TopN]
	}
	if opt.Title == "" {
		opt.Title = "Human Development Dashboard"
	}
	f := render.NewFormatter(opt.Locale)

	tmpl, err := template.New("index").Funcs(template.FuncMap{
		"index3": f.Index,
		"years":  f.Years,
		"count":  f.Count,
		"pop":    f.Population,
		"delta":  f.Delta,
	}).Parse(indexHTML)
	if err != nil {
		return fmt.Errorf("parse page template: %w", err)
	}
	return tmpl.Execute(w, data{
		Options:   opt,
		Overview:  o,
		Year:      year,
		Rows:      rows,
		Narrative: f.Narrative(o),
	})
}

//go:embed index.tmpl.html
var indexHTML string
