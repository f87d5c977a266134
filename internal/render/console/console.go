// Package console prints the value boxes and the comparison table to a
// terminal.
package console

import (
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"hdidash/internal/indicator"
	"hdidash/internal/render"
	"hdidash/internal/stats"
)

// Options controls console output.
type Options struct {
	TopN   int
	Color  bool
	Locale string
}

// Print writes the dashboard summary for t to w.
func Print(w io.Writer, t *indicator.Table, opt Options) error {
	o, err := stats.Overviews(t)
	if err != nil {
		return err
	}
	year, rows, err := stats.Compare(t)
	if err != nil {
		return err
	}
	f := render.NewFormatter(opt.Locale)

	title := color.New(color.FgYellow, color.Bold)
	label := color.New(color.FgCyan)
	value := color.New(color.FgWhite, color.Bold)
	if !opt.Color {
		for _, c := range []*color.Color{title, label, value} {
			c.DisableColor()
		}
	}

	title.Fprintf(w, "\nHuman Development Dashboard %d-%d\n", o.First.Year, o.Latest.Year)
	s := o.Latest
	for _, box := range []struct{ k, v string }{
		{"Countries", strconv.Itoa(s.Countries)},
		{"Mean HDI", f.Index(s.MeanHDI)},
		{"Population-weighted HDI", f.Index(s.WeightedHDI)},
		{"Mean life expectancy", f.Years(s.MeanLife)},
		{"Total population", f.Count(s.TotalPopulation)},
		{"Highest HDI", fmt.Sprintf("%s (%s)", s.MaxHDI.Country, f.Index(s.MaxHDI.Value))},
		{"Lowest HDI", fmt.Sprintf("%s (%s)", s.MinHDI.Country, f.Index(s.MinHDI.Value))},
	} {
		label.Fprintf(w, "  %-25s", box.k)
		value.Fprintln(w, box.v)
	}

	if opt.TopN > 0 && opt.TopN < len(rows) {
		rows = rows[:opt.TopN]
	}
	title.Fprintf(w, "\nTop %d by HDI, %d\n", len(rows), year)
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Rank", "Country", "HDI", "Life", "Population", "HDI change"})
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	table.SetAutoFormatHeaders(false)
	for _, r := range rows {
		table.Append([]string{
			strconv.Itoa(r.Rank),
			r.Country,
			f.Index(r.HDI),
			f.Years(r.Life),
			f.Population(r.Population),
			f.Delta(r.HDIChange),
		})
	}
	table.Render()

	fmt.Fprintf(w, "\n%s\n", f.Narrative(o))
	return nil
}
