// Package tablebuilder turns the three raw indicator tables (hdi, lex, pop)
// into the cleaned indicator.Table:
//
//  1. normalize: population headers are renamed to the canonical
//     "population" token and incomplete population rows are dropped;
//  2. merge: hdi ⋈ lex ⋈ pop on "country" (inner joins, relational cross
//     product on duplicate keys);
//  3. select: "country" plus every column resolving to a metric and a year
//     in range;
//  4. reshape: melt column-major, then pivot by (country, year) with
//     first-writer-wins per metric;
//  5. complete: metrics that never appear are added as missing;
//  6. filter: records missing hdi or life are dropped.
//
// Countries absent from any input are dropped without error and reported.
package tablebuilder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"sort"

	"hdidash/internal/config"
	"hdidash/internal/indicator"
	"hdidash/internal/schema"
	"hdidash/internal/transformer"
	"hdidash/internal/transformer/builtin"
	"hdidash/pkg/records"
)

// ErrInput marks a fault in one of the inputs: unreadable, unparsable, no
// "country" column, or a non-numeric metric value.
var ErrInput = errors.New("input fault")

var popToken = regexp.MustCompile(`(?i)pop(ulation)?`)

// Join suffixes for identically named non-key columns.
const (
	suffixHDI = "_hdi"
	suffixLex = "_lex"
	suffixPop = "_pop"
)

// Inputs are the three raw tables.
type Inputs struct {
	HDI records.Table
	Lex records.Table
	Pop records.Table
}

// Options configures Build.
type Options struct {
	// Schema resolves headers; the zero value means schema.Default().
	Schema schema.Schema

	// Logger receives step logs; nil means slog.Default().
	Logger *slog.Logger
}

// Report counts what each step kept and dropped.
type Report struct {
	RowsIn           map[string]int `json:"rows_in"`
	PopRowsDropped   int            `json:"pop_rows_dropped"`
	JoinedRows       int            `json:"joined_rows"`
	DroppedCountries []string       `json:"dropped_countries"`
	SelectedColumns  int            `json:"selected_columns"`
	LongTuples       int            `json:"long_tuples"`
	IgnoredValues    int            `json:"ignored_values"`
	PivotedRecords   int            `json:"pivoted_records"`
	FilteredRecords  int            `json:"filtered_records"`
	MissingMetrics   []string       `json:"missing_metrics"`
	Records          int            `json:"records"`
}

// origin records where a merged column came from.
type origin struct {
	source string
	header string
}

// frame is a table whose columns remember their source and original header.
type frame struct {
	records.Table
	origins map[string]origin
}

func newFrame(source string, t records.Table) frame {
	f := frame{Table: t, origins: make(map[string]origin, len(t.Columns))}
	for _, c := range t.Columns {
		f.origins[c] = origin{source: source, header: c}
	}
	return f
}

// Build runs the pipeline. It takes ownership of the input rows and mutates
// them. An empty result is returned as an empty table without error; the
// caller decides whether that is fatal.
func Build(ctx context.Context, in Inputs, opt Options) (*indicator.Table, Report, error) {
	log := opt.Logger
	if log == nil {
		log = slog.Default()
	}
	sch := opt.Schema
	if sch.YearFrom == 0 && sch.YearTo == 0 && len(sch.Tokens) == 0 && sch.Explicit == nil {
		sch = schema.Default()
	}

	rep := Report{RowsIn: map[string]int{
		config.SourceHDI: len(in.HDI.Rows),
		config.SourceLex: len(in.Lex.Rows),
		config.SourcePop: len(in.Pop.Rows),
	}}

	named := []struct {
		name string
		t    records.Table
	}{{config.SourceHDI, in.HDI}, {config.SourceLex, in.Lex}, {config.SourcePop, in.Pop}}
	frames := make(map[string]frame, len(named))
	for _, n := range named {
		if !n.t.HasColumn(schema.KeyColumn) {
			return nil, rep, fmt.Errorf("%w: %s: no %q column (have %v)", ErrInput, n.name, schema.KeyColumn, n.t.Columns)
		}
		n.t.Rows = builtin.Normalize{}.Apply(n.t.Rows)
		frames[n.name] = newFrame(n.name, n.t)
	}

	// 1. normalize population headers, drop incomplete population rows
	pop := normalizePop(frames[config.SourcePop])
	before := len(pop.Rows)
	pop.Rows = builtin.Require{Fields: pop.Columns}.Apply(pop.Rows)
	rep.PopRowsDropped = before - len(pop.Rows)
	log.Debug("population normalized", "columns", pop.Columns, "rows_dropped", rep.PopRowsDropped)
	if err := ctx.Err(); err != nil {
		return nil, rep, err
	}

	// 2. merge
	merged := join(frames[config.SourceHDI], frames[config.SourceLex], suffixHDI, suffixLex)
	merged = join(merged, pop, "", suffixPop)
	rep.JoinedRows = len(merged.Rows)
	rep.DroppedCountries = droppedCountries(merged, frames[config.SourceHDI], frames[config.SourceLex], pop)
	if len(rep.DroppedCountries) > 0 {
		log.Debug("countries dropped by inner join", "count", len(rep.DroppedCountries), "countries", rep.DroppedCountries)
	}
	if err := ctx.Err(); err != nil {
		return nil, rep, err
	}

	// 3. select
	cols := selectColumns(sch, merged, log)
	rep.SelectedColumns = len(cols)

	// 4. reshape
	types := make(map[string]string, len(cols))
	for _, c := range cols {
		types[c.Name] = "float"
	}
	rows := builtin.Coerce{Types: types}.Apply(merged.Rows)
	if err := checkNumeric(rows, cols); err != nil {
		return nil, rep, err
	}

	long := builtin.Melt{ID: schema.KeyColumn, Columns: cols}.Apply(rows)
	rep.LongTuples = len(long)
	long = builtin.Require{Fields: []string{builtin.FieldValue}}.Apply(long)
	present := len(long)
	long = builtin.DeDup{
		Keys:   []string{schema.KeyColumn, builtin.FieldYear, builtin.FieldMetric},
		Policy: "keep-first",
	}.Apply(long)
	rep.IgnoredValues = present - len(long)
	if rep.IgnoredValues > 0 {
		log.Debug("duplicate metric values ignored (first writer wins)", "count", rep.IgnoredValues)
	}

	wide := builtin.Pivot{
		Keys:  []string{schema.KeyColumn, builtin.FieldYear},
		Name:  builtin.FieldMetric,
		Value: builtin.FieldValue,
	}.Apply(long)
	rep.PivotedRecords = len(wide)
	if err := ctx.Err(); err != nil {
		return nil, rep, err
	}

	// 5. complete, 6. filter
	rep.MissingMetrics = missingMetrics(cols)
	if len(rep.MissingMetrics) > 0 {
		log.Info("metrics without source columns", "metrics", rep.MissingMetrics)
	}
	wide = transformer.Chain{
		builtin.Fill{Fields: schema.Metrics},
		builtin.Require{Fields: []string{schema.MetricHDI, schema.MetricLife}},
	}.Apply(wide)
	rep.FilteredRecords = rep.PivotedRecords - len(wide)

	t := toTable(wide)
	rep.Records = t.Len()
	log.Info("table built",
		"rows_in", rep.RowsIn,
		"joined_rows", rep.JoinedRows,
		"dropped_countries", len(rep.DroppedCountries),
		"selected_columns", rep.SelectedColumns,
		"records", rep.Records,
	)
	return t, rep, nil
}

// HeaderNames returns the renames the builder applies to a source's headers
// before resolving them: population headers get their pop token
// canonicalized. Other sources are resolved under their own names.
func HeaderNames(source string, columns []string) map[string]string {
	if source != config.SourcePop {
		return nil
	}
	return builtin.TokenRenames(columns, popToken, schema.MetricPopulation).Map
}

// normalizePop rewrites pop/population tokens in population headers to the
// canonical "population".
func normalizePop(f frame) frame {
	ren := builtin.TokenRenames(f.Columns, popToken, schema.MetricPopulation)
	out := frame{
		Table: records.Table{
			Columns: ren.Columns(f.Columns),
			Rows:    ren.Apply(f.Rows),
		},
		origins: make(map[string]origin, len(f.origins)),
	}
	for i, c := range f.Columns {
		out.origins[out.Columns[i]] = f.origins[c]
	}
	return out
}

// join is an inner join on the key column. Non-key columns present on both
// sides get lsuf/rsuf appended. Output rows follow left order, then right
// order within a key; rows with a missing key never match.
func join(left, right frame, lsuf, rsuf string) frame {
	rightCols := make(map[string]struct{}, len(right.Columns))
	for _, c := range right.Columns {
		rightCols[c] = struct{}{}
	}
	leftCols := make(map[string]struct{}, len(left.Columns))
	for _, c := range left.Columns {
		leftCols[c] = struct{}{}
	}

	out := frame{
		Table:   records.Table{Columns: []string{schema.KeyColumn}},
		origins: map[string]origin{schema.KeyColumn: left.origins[schema.KeyColumn]},
	}
	taken := map[string]struct{}{schema.KeyColumn: {}}
	lname := make(map[string]string, len(left.Columns))
	rname := make(map[string]string, len(right.Columns))

	place := func(col, suf string, clash bool, f frame, names map[string]string) {
		name := col
		if clash {
			name += suf
		}
		for {
			if _, dup := taken[name]; !dup {
				break
			}
			name += suf
			if suf == "" {
				name += "_"
			}
		}
		taken[name] = struct{}{}
		names[col] = name
		out.Columns = append(out.Columns, name)
		out.origins[name] = f.origins[col]
	}
	for _, c := range left.Columns {
		if c == schema.KeyColumn {
			continue
		}
		_, clash := rightCols[c]
		place(c, lsuf, clash, left, lname)
	}
	for _, c := range right.Columns {
		if c == schema.KeyColumn {
			continue
		}
		_, clash := leftCols[c]
		place(c, rsuf, clash, right, rname)
	}

	index := make(map[string][]records.Record, len(right.Rows))
	for _, r := range right.Rows {
		if k, ok := key(r); ok {
			index[k] = append(index[k], r)
		}
	}
	for _, l := range left.Rows {
		k, ok := key(l)
		if !ok {
			continue
		}
		for _, r := range index[k] {
			row := make(records.Record, len(out.Columns))
			row[schema.KeyColumn] = k
			for c, n := range lname {
				row[n] = l[c]
			}
			for c, n := range rname {
				row[n] = r[c]
			}
			out.Rows = append(out.Rows, row)
		}
	}
	return out
}

func key(r records.Record) (string, bool) {
	if r.Missing(schema.KeyColumn) {
		return "", false
	}
	if s, ok := r[schema.KeyColumn].(string); ok {
		return s, true
	}
	return fmt.Sprint(r[schema.KeyColumn]), true
}

func droppedCountries(merged frame, inputs ...frame) []string {
	kept := make(map[string]struct{}, len(merged.Rows))
	for _, r := range merged.Rows {
		if k, ok := key(r); ok {
			kept[k] = struct{}{}
		}
	}
	seen := make(map[string]struct{})
	var out []string
	for _, f := range inputs {
		for _, r := range f.Rows {
			k, ok := key(r)
			if !ok {
				continue
			}
			if _, ok := kept[k]; ok {
				continue
			}
			if _, ok := seen[k]; !ok {
				seen[k] = struct{}{}
				out = append(out, k)
			}
		}
	}
	sort.Strings(out)
	return out
}

func selectColumns(sch schema.Schema, f frame, log *slog.Logger) []builtin.MeltColumn {
	var cols []builtin.MeltColumn
	for _, name := range f.Columns {
		o := f.origins[name]
		c, rule, ok := sch.ResolveAs(o.source, o.header, name)
		if !ok {
			if rule != schema.RuleNone {
				log.Debug("column out of range", "column", name, "source", o.source, "year", c.Year, "metric", c.Metric)
			}
			continue
		}
		log.Debug("column selected", "column", name, "source", o.source, "metric", c.Metric, "year", c.Year, "rule", rule)
		cols = append(cols, builtin.MeltColumn{Name: name, Metric: c.Metric, Year: c.Year})
	}
	return cols
}

// checkNumeric fails on the first selected cell that Coerce could not turn
// into a number. Integer cells are widened to float64.
func checkNumeric(rows []records.Record, cols []builtin.MeltColumn) error {
	for _, r := range rows {
		for _, c := range cols {
			switch v := r[c.Name].(type) {
			case nil, float64:
			case int:
				r[c.Name] = float64(v)
			default:
				return fmt.Errorf("%w: country %q column %q: value %v is not numeric", ErrInput, r[schema.KeyColumn], c.Name, v)
			}
		}
	}
	return nil
}

func missingMetrics(cols []builtin.MeltColumn) []string {
	seen := make(map[string]bool, len(schema.Metrics))
	for _, c := range cols {
		seen[c.Metric] = true
	}
	var out []string
	for _, m := range schema.Metrics {
		if !seen[m] {
			out = append(out, m)
		}
	}
	return out
}

func toTable(rows []records.Record) *indicator.Table {
	t := &indicator.Table{Records: make([]indicator.Record, 0, len(rows))}
	for _, r := range rows {
		rec := indicator.Record{
			Country: fmt.Sprint(r[schema.KeyColumn]),
			Year:    r[builtin.FieldYear].(int),
			HDI:     r[schema.MetricHDI].(float64),
			Life:    r[schema.MetricLife].(float64),
		}
		if p, ok := r[schema.MetricPopulation].(float64); ok {
			rec.Population = indicator.Float(p)
		}
		t.Records = append(t.Records, rec)
	}
	t.Sort()
	return t
}
