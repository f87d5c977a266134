// Package records defines the loosely typed row model shared by parsers and
// transformers. A Record maps a column name to a scalar value; a nil value
// (or an absent key) means the cell is missing.
package records

import "sort"

// Record is a single parsed row.
type Record map[string]any

// Missing reports whether key is absent, nil, or an empty string.
func (r Record) Missing(key string) bool {
	v, ok := r[key]
	if !ok || v == nil {
		return true
	}
	if s, ok := v.(string); ok && s == "" {
		return true
	}
	return false
}

// Clone returns a shallow copy of r.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Keys returns the record's column names in lexical order.
func (r Record) Keys() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Table is an ordered set of records together with the column order observed
// at parse time. Maps do not preserve insertion order, so anything that cares
// about column order (melt order, join suffixing) reads Columns.
type Table struct {
	Columns []string
	Rows    []Record
}

// HasColumn reports whether name is one of t's columns (exact match).
func (t Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}
