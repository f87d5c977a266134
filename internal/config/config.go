// Package config defines the JSON/YAML-serializable configuration model for a
// dashboard run: where the three indicator sources live and how to parse them,
// how their headers resolve to (metric, year) columns, and which optional
// sinks and metrics backends to use.
//
// Example (trimmed, YAML):
//
//	job: hdi-dashboard
//	inputs:
//	  hdi: { source: { kind: file, file: { path: hdi.csv } }, parser: { kind: csv } }
//	  lex: { source: { kind: file, file: { path: lex.csv } }, parser: { kind: csv } }
//	  pop: { source: { kind: file, file: { path: pop.xlsx } }, parser: { kind: xlsx } }
//	schema: { year_from: 2001, year_to: 2010 }
//	output: { dir: dashboard, top_n: 10 }
//	storage: { kind: sqlite, db: { dsn: hdi.db, table: indicators, auto_create_table: true } }
package config

import "encoding/json"

// Source names used as keys throughout the run (schema mappings, logs).
const (
	SourceHDI = "hdi"
	SourceLex = "lex"
	SourcePop = "pop"
)

// Run is the top-level object decoded from a config file.
type Run struct {
	// Job labels metrics and logs.
	Job string `json:"job" yaml:"job"`

	Inputs  Inputs  `json:"inputs" yaml:"inputs"`
	Schema  Schema  `json:"schema" yaml:"schema"`
	Output  Output  `json:"output" yaml:"output"`
	Storage Storage `json:"storage" yaml:"storage"`
	Export  Export  `json:"export" yaml:"export"`
	Publish Publish `json:"publish" yaml:"publish"`
	Metrics Metrics `json:"metrics" yaml:"metrics"`
	Logging Logging `json:"logging" yaml:"logging"`
}

// Inputs holds the three indicator sources.
type Inputs struct {
	HDI Input `json:"hdi" yaml:"hdi"`
	Lex Input `json:"lex" yaml:"lex"`
	Pop Input `json:"pop" yaml:"pop"`
}

// ByName returns the inputs keyed by source name.
func (in Inputs) ByName() map[string]Input {
	return map[string]Input{SourceHDI: in.HDI, SourceLex: in.Lex, SourcePop: in.Pop}
}

// Input couples a data source with the parser that reads it.
type Input struct {
	Source Source `json:"source" yaml:"source"`
	Parser Parser `json:"parser" yaml:"parser"`
}

// Source identifies the data source. Kinds: "file", "http".
type Source struct {
	Kind string     `json:"kind" yaml:"kind"`
	File SourceFile `json:"file" yaml:"file"`
	HTTP SourceHTTP `json:"http" yaml:"http"`
}

// SourceFile holds configuration for the "file" source kind.
type SourceFile struct {
	// Path is the local filesystem path, relative to the working directory.
	Path string `json:"path" yaml:"path"`
}

// SourceHTTP holds configuration for the "http" source kind.
type SourceHTTP struct {
	URL                string            `json:"url" yaml:"url"`
	TimeoutSeconds     int               `json:"timeout_seconds" yaml:"timeout_seconds"`
	MaxRetries         int               `json:"max_retries" yaml:"max_retries"`
	InsecureSkipVerify bool              `json:"insecure_skip_verify" yaml:"insecure_skip_verify"`
	Headers            map[string]string `json:"headers" yaml:"headers"`
}

// Parser selects how to parse the raw source into rows.
type Parser struct {
	// Kind selects the parser implementation: "csv", "xlsx" or "xls".
	Kind string `json:"kind" yaml:"kind"`

	// Options is a free-form map interpreted by the parser implementation.
	// Common keys: has_header (bool), comma (string), trim_space (bool),
	// null_values ([]string), strict (bool), header_map (object),
	// sheet (string for xlsx, int for xls), charset (xls).
	Options Options `json:"options" yaml:"options"`
}

// Schema declares how source headers resolve to (metric, year) columns.
type Schema struct {
	// YearFrom and YearTo bound the accepted years, inclusive.
	YearFrom int `json:"year_from" yaml:"year_from"`
	YearTo   int `json:"year_to" yaml:"year_to"`

	// Tokens are the metric names searched for in headers, in priority order.
	Tokens []string `json:"tokens" yaml:"tokens"`

	// Columns pins individual headers per source ("hdi", "lex", "pop") to an
	// explicit metric and year. Pinned headers bypass token/year matching.
	Columns map[string]map[string]ColumnMapping `json:"columns" yaml:"columns"`
}

// ColumnMapping is an explicit header resolution.
type ColumnMapping struct {
	Metric string `json:"metric" yaml:"metric"`
	Year   int    `json:"year" yaml:"year"`
}

// Output controls dashboard rendering.
type Output struct {
	// Dir receives every rendered artifact.
	Dir string `json:"dir" yaml:"dir"`

	// TopN bounds rankings (line chart series, bar chart, comparison table).
	TopN int `json:"top_n" yaml:"top_n"`

	// Console prints value boxes and the comparison table to stdout.
	Console bool `json:"console" yaml:"console"`

	// Workers bounds concurrent renderers; 0 means one per artifact.
	Workers int `json:"workers" yaml:"workers"`

	// FrameDelay is the animated scatter frame delay in 1/100 s.
	FrameDelay int `json:"frame_delay" yaml:"frame_delay"`

	// Locale is a BCP 47 tag for number formatting ("en", "de", ...).
	Locale string `json:"locale" yaml:"locale"`
}

// Storage selects the sink used to persist the cleaned table. An empty kind
// disables persistence.
type Storage struct {
	Kind string   `json:"kind" yaml:"kind"`
	DB   DBConfig `json:"db" yaml:"db"`
}

// DBConfig configures the DB sink.
type DBConfig struct {
	// DSN is the backend connection string.
	DSN string `json:"dsn" yaml:"dsn"`

	// Table is the (optionally schema-qualified) destination table.
	Table string `json:"table" yaml:"table"`

	// AutoCreateTable creates the destination table when missing.
	AutoCreateTable bool `json:"auto_create_table" yaml:"auto_create_table"`

	// BatchSize bounds rows per bulk insert.
	BatchSize int `json:"batch_size" yaml:"batch_size"`
}

// Export configures file exports of the cleaned table.
type Export struct {
	// Parquet is the output path of a Parquet file; empty disables it.
	Parquet string `json:"parquet" yaml:"parquet"`
}

// Publish configures upload of rendered artifacts. An empty kind disables it.
type Publish struct {
	Kind string   `json:"kind" yaml:"kind"`
	S3   S3Config `json:"s3" yaml:"s3"`
}

// S3Config addresses an S3-compatible bucket.
type S3Config struct {
	Endpoint        string `json:"endpoint" yaml:"endpoint"`
	Region          string `json:"region" yaml:"region"`
	Bucket          string `json:"bucket" yaml:"bucket"`
	Prefix          string `json:"prefix" yaml:"prefix"`
	AccessKeyID     string `json:"access_key_id" yaml:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key" yaml:"secret_access_key"`
	UseSSL          bool   `json:"use_ssl" yaml:"use_ssl"`
}

// Metrics selects the metrics backend.
type Metrics struct {
	// Backend is "pushgateway", "datadog" or "none".
	Backend        string `json:"backend" yaml:"backend"`
	PushgatewayURL string `json:"pushgateway_url" yaml:"pushgateway_url"`
	DatadogAddr    string `json:"datadog_addr" yaml:"datadog_addr"`
}

// Logging configures the slog handler.
type Logging struct {
	Level  string `json:"level" yaml:"level"`
	Format string `json:"format" yaml:"format"`
}

// Options is a small helper to fetch typed values from arbitrary JSON/YAML
// maps. It performs only minimal type coercion and returns provided defaults
// when a key is absent or of an unexpected type.
type Options map[string]any

// String returns the string value for key or def if key is missing or not a string.
func (o Options) String(key, def string) string {
	if v, ok := o[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return def
}

// Bool returns the bool value for key or def if key is missing or not a bool.
func (o Options) Bool(key string, def bool) bool {
	if v, ok := o[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return def
}

// Int returns the int value for key or def. JSON numbers decode as float64,
// YAML integers as int; both are accepted.
func (o Options) Int(key string, def int) int {
	if v, ok := o[key]; ok {
		switch n := v.(type) {
		case float64:
			return int(n)
		case int:
			return n
		case int64:
			return int(n)
		}
	}
	return def
}

// Rune returns the first rune of a string value for key, or def if key is
// missing or empty.
func (o Options) Rune(key string, def rune) rune {
	if v, ok := o[key]; ok {
		if s, ok := v.(string); ok && len(s) > 0 {
			return []rune(s)[0]
		}
	}
	return def
}

// StringMap returns a map[string]string for key when the value is an object
// whose values are strings. Non-string values are ignored.
func (o Options) StringMap(key string) map[string]string {
	res := map[string]string{}
	if v, ok := o[key]; ok {
		if m, ok := v.(map[string]any); ok {
			for k, vv := range m {
				if s, ok := vv.(string); ok {
					res[k] = s
				}
			}
		}
	}
	return res
}

// StringSlice returns a []string for key when the value is an array of
// strings. Returns nil when the key is missing or the value is not an array.
func (o Options) StringSlice(key string) []string {
	if v, ok := o[key]; ok {
		switch vv := v.(type) {
		case []any:
			out := make([]string, 0, len(vv))
			for _, x := range vv {
				if s, ok := x.(string); ok {
					out = append(out, s)
				}
			}
			return out
		case []string:
			return vv
		}
	}
	return nil
}

// Any returns the raw value for key.
func (o Options) Any(key string) any {
	if v, ok := o[key]; ok {
		return v
	}
	return nil
}

// UnmarshalJSON makes a missing or null "options" object decode to a non-nil,
// empty Options map.
func (o *Options) UnmarshalJSON(b []byte) error {
	var tmp map[string]any
	if len(b) == 0 || string(b) == "null" {
		*o = Options{}
		return nil
	}
	if err := json.Unmarshal(b, &tmp); err != nil {
		return err
	}
	*o = Options(tmp)
	return nil
}
