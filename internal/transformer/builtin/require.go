// Package builtin contains the reusable record transformers the table builder
// is assembled from.
package builtin

import "hdidash/pkg/records"

// Require removes any record missing a value for any of the specified fields.
// With every column of a table listed it drops incomplete rows.
type Require struct {
	Fields []string
}

// Apply returns a filtered slice containing only records that have all
// required fields present and non-empty. It filters in place.
func (r Require) Apply(in []records.Record) []records.Record {
	out := in[:0]
	for _, rec := range in {
		ok := true
		for _, f := range r.Fields {
			if rec.Missing(f) {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, rec)
		}
	}
	return out
}
