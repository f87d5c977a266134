// Package render holds what the dashboard renderers share: locale-aware
// number formatting and the narrative text block.
package render

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"hdidash/internal/stats"
)

// Formatter formats numbers for one locale.
type Formatter struct {
	p *message.Printer
}

// NewFormatter returns a Formatter for tag; an unparsable tag means English.
func NewFormatter(tag string) Formatter {
	t, err := language.Parse(tag)
	if err != nil {
		t = language.English
	}
	return Formatter{p: message.NewPrinter(t)}
}

// Index formats an HDI value.
func (f Formatter) Index(v float64) string { return f.p.Sprintf("%.3f", v) }

// Years formats a life expectancy.
func (f Formatter) Years(v float64) string { return f.p.Sprintf("%.1f", v) }

// Count formats a whole number with grouping.
func (f Formatter) Count(v float64) string { return f.p.Sprintf("%.0f", v) }

// Population formats an optional population; missing is "n/a".
func (f Formatter) Population(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return f.Count(*v)
}

// Delta formats a signed change; missing is "n/a".
func (f Formatter) Delta(v *float64) string {
	if v == nil {
		return "n/a"
	}
	if *v >= 0 {
		return "+" + f.Index(*v)
	}
	return f.Index(*v)
}

// Narrative describes the first and latest years in a few sentences. Years
// are printed without grouping.
func (f Formatter) Narrative(o stats.Overview) string {
	var b strings.Builder
	l, fs := o.Latest, o.First
	fmt.Fprintf(&b, "In %d, %d countries averaged an HDI of %s and a life expectancy of %s years.",
		l.Year, l.Countries, f.Index(l.MeanHDI), f.Years(l.MeanLife))
	if l.Weighted {
		fmt.Fprintf(&b, " Weighted by population (%s people reported), the HDI was %s.",
			f.Count(l.TotalPopulation), f.Index(l.WeightedHDI))
	}
	fmt.Fprintf(&b, " %s ranked highest at %s and %s lowest at %s.",
		l.MaxHDI.Country, f.Index(l.MaxHDI.Value), l.MinHDI.Country, f.Index(l.MinHDI.Value))
	if fs.Year != l.Year {
		verb := "rose"
		if l.MeanHDI < fs.MeanHDI {
			verb = "fell"
		}
		fmt.Fprintf(&b, " Since %d the mean HDI %s from %s to %s, while mean life expectancy moved from %s to %s years.",
			fs.Year, verb, f.Index(fs.MeanHDI), f.Index(l.MeanHDI), f.Years(fs.MeanLife), f.Years(l.MeanLife))
	}
	return b.String()
}
