package builtin

import "hdidash/pkg/records"

// Long-format field names produced by Melt and consumed by Pivot.
const (
	FieldMetric = "metric"
	FieldYear   = "year"
	FieldValue  = "value"
)

// MeltColumn is a wide column together with the metric and year it carries.
type MeltColumn struct {
	Name   string
	Metric string
	Year   int
}

// Melt turns each wide row into one long record per column:
// {ID, "year", "metric", "value"}. Output is column-major: every row of the
// first column, then every row of the second, and so on. Missing cells yield
// a nil value.
type Melt struct {
	ID      string
	Columns []MeltColumn
}

func (m Melt) Apply(in []records.Record) []records.Record {
	if len(in) == 0 {
		return in
	}
	out := make([]records.Record, 0, len(in)*len(m.Columns))
	for _, c := range m.Columns {
		for _, r := range in {
			out = append(out, records.Record{
				m.ID:        r[m.ID],
				FieldYear:   c.Year,
				FieldMetric: c.Metric,
				FieldValue:  r[c.Name],
			})
		}
	}
	return out
}
