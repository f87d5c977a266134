package builtin

import (
	"log/slog"
	"regexp"

	"hdidash/pkg/records"
)

// Rename moves values from old to new column names. Columns not in Map are
// left alone.
type Rename struct {
	Map map[string]string
}

// TokenRenames builds a Rename that replaces every match of re in each
// column name with repl. When two columns would land on the same name the
// first keeps the new name and later ones keep their original names.
func TokenRenames(columns []string, re *regexp.Regexp, repl string) Rename {
	m := make(map[string]string)
	taken := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		taken[c] = struct{}{}
	}
	for _, c := range columns {
		to := re.ReplaceAllString(c, repl)
		if to == c {
			continue
		}
		if _, clash := taken[to]; clash {
			slog.Warn("rename collision; keeping original column name", "column", c, "target", to)
			continue
		}
		m[c] = to
		delete(taken, c)
		taken[to] = struct{}{}
	}
	return Rename{Map: m}
}

// Columns returns the renamed column list, preserving order.
func (r Rename) Columns(cols []string) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		if to, ok := r.Map[c]; ok {
			out[i] = to
		} else {
			out[i] = c
		}
	}
	return out
}

func (r Rename) Apply(in []records.Record) []records.Record {
	if len(r.Map) == 0 {
		return in
	}
	for i, rec := range in {
		out := make(records.Record, len(rec))
		for k, v := range rec {
			if to, ok := r.Map[k]; ok {
				out[to] = v
			} else {
				out[k] = v
			}
		}
		in[i] = out
	}
	return in
}
