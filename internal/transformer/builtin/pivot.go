package builtin

import (
	"fmt"

	"hdidash/pkg/records"
)

// Pivot groups long records by Keys and spreads Name/Value pairs into
// columns. Within a group a column takes the first non-missing value
// (first-writer-wins); later values for the same column are ignored. Groups
// are emitted in order of first appearance.
type Pivot struct {
	Keys  []string
	Name  string
	Value string
}

func (p Pivot) Apply(in []records.Record) []records.Record {
	if len(in) == 0 {
		return in
	}
	groups := make(map[string]records.Record)
	var out []records.Record
	for _, r := range in {
		key, ok := Key(r, p.Keys)
		if !ok {
			continue
		}
		g, seen := groups[key]
		if !seen {
			g = make(records.Record, len(p.Keys)+3)
			for _, k := range p.Keys {
				g[k] = r[k]
			}
			groups[key] = g
			out = append(out, g)
		}
		name := fmt.Sprint(r[p.Name])
		if r.Missing(p.Value) || !g.Missing(name) {
			continue
		}
		g[name] = r[p.Value]
	}
	return out
}
