// Package schema resolves source column headers to the (metric, year) pair
// they carry. Resolution is declarative: explicit per-source mappings are
// consulted first, then the token rule (first metric token in the header,
// first four-digit run as the year).
package schema

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"hdidash/internal/config"
)

// Metric names of the cleaned table.
const (
	MetricHDI        = "hdi"
	MetricLife       = "life"
	MetricPopulation = "population"
)

// Metrics lists every metric of the cleaned table in field order.
var Metrics = []string{MetricHDI, MetricLife, MetricPopulation}

// KeyColumn is the join key every source must carry (exact, case-sensitive).
const KeyColumn = "country"

var yearRe = regexp.MustCompile(`[0-9]{4}`)

// Column is a resolved header.
type Column struct {
	Metric string
	Year   int
}

// Rule names how a header was resolved.
type Rule string

const (
	RuleExplicit Rule = "explicit"
	RuleToken    Rule = "token"
	RuleNone     Rule = ""
)

// Schema holds the resolution rules. The zero value resolves nothing; use
// Default or FromConfig.
type Schema struct {
	YearFrom int
	YearTo   int

	// Tokens are matched case-insensitively; the leftmost occurrence in the
	// header wins, ties go to the earlier token.
	Tokens []string

	// Explicit maps source -> header -> column.
	Explicit map[string]map[string]Column
}

// Default resolves hdi/life/population columns for 2001-2010.
func Default() Schema {
	return Schema{YearFrom: 2001, YearTo: 2010, Tokens: append([]string(nil), Metrics...)}
}

// FromConfig builds a Schema from its config section.
func FromConfig(c config.Schema) Schema {
	s := Schema{
		YearFrom: c.YearFrom,
		YearTo:   c.YearTo,
		Tokens:   make([]string, 0, len(c.Tokens)),
	}
	for _, t := range c.Tokens {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			s.Tokens = append(s.Tokens, t)
		}
	}
	if len(c.Columns) > 0 {
		s.Explicit = make(map[string]map[string]Column, len(c.Columns))
		for src, cols := range c.Columns {
			m := make(map[string]Column, len(cols))
			for h, cm := range cols {
				m[h] = Column{Metric: cm.Metric, Year: cm.Year}
			}
			s.Explicit[src] = m
		}
	}
	return s
}

// InRange reports whether year lies in [YearFrom, YearTo].
func (s Schema) InRange(year int) bool { return year >= s.YearFrom && year <= s.YearTo }

// Resolve maps a header of the given source to a column. ok is false when
// the header carries no recognised metric, no year, or a year outside the
// range. The key column never resolves.
func (s Schema) Resolve(source, header string) (Column, Rule, bool) {
	return s.ResolveAs(source, header, header)
}

// ResolveAs resolves a column whose original header in source was header but
// which is now called name (after renaming or join suffixing). Explicit
// mappings match on the original header, the token rule on the current name.
func (s Schema) ResolveAs(source, header, name string) (Column, Rule, bool) {
	if name == KeyColumn {
		return Column{}, RuleNone, false
	}
	if c, ok := s.Explicit[source][header]; ok {
		return c, RuleExplicit, s.InRange(c.Year) && isMetric(c.Metric)
	}
	c, ok := s.match(name)
	if !ok {
		return Column{}, RuleNone, false
	}
	return c, RuleToken, s.InRange(c.Year) && isMetric(c.Metric)
}

func isMetric(m string) bool {
	for _, x := range Metrics {
		if m == x {
			return true
		}
	}
	return false
}

// match applies the token rule without a range check.
func (s Schema) match(header string) (Column, bool) {
	metric := MatchToken(header, s.Tokens)
	if metric == "" {
		return Column{}, false
	}
	year, ok := ParseYear(header)
	if !ok {
		return Column{}, false
	}
	return Column{Metric: metric, Year: year}, true
}

// MatchToken returns the token occurring leftmost in name
// (case-insensitive), or "" when none occurs.
func MatchToken(name string, tokens []string) string {
	lower := strings.ToLower(name)
	best, bestAt := "", -1
	for _, t := range tokens {
		if i := strings.Index(lower, t); i >= 0 && (bestAt < 0 || i < bestAt) {
			best, bestAt = t, i
		}
	}
	return best
}

// ParseYear returns the first four-digit run in name.
func ParseYear(name string) (int, bool) {
	m := yearRe.FindString(name)
	if m == "" {
		return 0, false
	}
	y, err := strconv.Atoi(m)
	return y, err == nil
}

// Resolution describes how one header resolved.
type Resolution struct {
	Source   string
	Header   string
	Column   Column
	Rule     Rule
	Selected bool
	Reason   string
}

// String renders r for probe output.
func (r Resolution) String() string {
	if r.Selected {
		return fmt.Sprintf("%s.%s -> %s/%d (%s)", r.Source, r.Header, r.Column.Metric, r.Column.Year, r.Rule)
	}
	return fmt.Sprintf("%s.%s -> skipped: %s", r.Source, r.Header, r.Reason)
}

// Describe reports how each header of a source resolves, in header order.
func (s Schema) Describe(source string, headers []string) []Resolution {
	return s.DescribeAs(source, headers, nil)
}

// DescribeAs is Describe for headers that are renamed before resolution;
// names maps an original header to its new name.
func (s Schema) DescribeAs(source string, headers []string, names map[string]string) []Resolution {
	out := make([]Resolution, 0, len(headers))
	for _, h := range headers {
		r := Resolution{Source: source, Header: h}
		name := h
		if n, ok := names[h]; ok {
			name = n
		}
		switch c, rule, ok := s.ResolveAs(source, h, name); {
		case h == KeyColumn:
			r.Reason = "join key"
		case ok:
			r.Column, r.Rule, r.Selected = c, rule, true
		case rule != RuleNone && !isMetric(c.Metric):
			r.Column, r.Rule = c, rule
			r.Reason = fmt.Sprintf("metric %q is not one of %v", c.Metric, Metrics)
		case rule != RuleNone:
			r.Column, r.Rule = c, rule
			r.Reason = fmt.Sprintf("year %d outside %d-%d", c.Year, s.YearFrom, s.YearTo)
		default:
			r.Reason = "no metric token or year"
		}
		out = append(out, r)
	}
	return out
}
