// Package transformer defines the record-slice transformation contract shared
// by the table builder's steps.
package transformer

import "hdidash/pkg/records"

// Transformer rewrites a batch of records. Implementations may mutate and
// reslice their input; callers must use the returned slice.
type Transformer interface {
	Apply([]records.Record) []records.Record
}

// Func adapts a plain function to Transformer.
type Func func([]records.Record) []records.Record

// Apply calls f(in).
func (f Func) Apply(in []records.Record) []records.Record { return f(in) }

// Chain is an ordered list of transformers.
type Chain []Transformer

// Apply runs each transformer in order, feeding each the previous output.
func (c Chain) Apply(in []records.Record) []records.Record {
	out := in
	for _, t := range c {
		out = t.Apply(out)
	}
	return out
}
