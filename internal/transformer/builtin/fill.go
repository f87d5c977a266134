package builtin

import "hdidash/pkg/records"

// Fill adds every field in Fields that a record lacks, valued nil.
type Fill struct {
	Fields []string
}

func (f Fill) Apply(in []records.Record) []records.Record {
	for _, r := range in {
		for _, k := range f.Fields {
			if _, ok := r[k]; !ok {
				r[k] = nil
			}
		}
	}
	return in
}
