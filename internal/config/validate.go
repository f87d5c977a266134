package config

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/text/language"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that should block execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning indicates a finding that is surfaced but does not block
	// execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation finding for a Run.
//
// Path is a dotted path into the config (e.g. "inputs.pop.parser.kind",
// "schema.columns.hdi[HDI 2005].year").
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be treated as a single
// error in contexts that expect error.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// Err folds the error-severity issues into a single error. It returns nil
// when no issue is an error; warnings never fail a run.
func Err(issues []Issue) error {
	var merr *multierror.Error
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			merr = multierror.Append(merr, iss)
		}
	}
	return merr.ErrorOrNil()
}

// Validate performs static validation of a Run. It does not mutate the run
// and does not touch the filesystem or network.
func Validate(r Run) []Issue {
	var issues []Issue

	if strings.TrimSpace(r.Job) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "job",
			Message:  "job must not be empty; it is used for metrics labeling and identifying runs",
		})
	}
	inputs := r.Inputs.ByName()
	for _, name := range []string{SourceHDI, SourceLex, SourcePop} {
		in := inputs[name]
		issues = append(issues, validateSource("inputs."+name+".source", in.Source)...)
		issues = append(issues, validateParser("inputs."+name+".parser", in.Parser)...)
	}
	issues = append(issues, validateSchema(r.Schema)...)
	issues = append(issues, validateOutput(r.Output)...)
	issues = append(issues, validateStorage(r.Storage)...)
	issues = append(issues, validatePublish(r.Publish)...)
	issues = append(issues, validateMetrics(r.Metrics)...)

	return issues
}

func validateSource(path string, s Source) []Issue {
	var issues []Issue

	if strings.TrimSpace(s.Kind) == "" {
		return append(issues, Issue{
			Severity: SeverityError,
			Path:     path + ".kind",
			Message:  "source kind must not be empty",
		})
	}

	switch s.Kind {
	case "file":
		if strings.TrimSpace(s.File.Path) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     path + ".file.path",
				Message:  "file source requires a non-empty path",
			})
		}
	case "http":
		if u := strings.TrimSpace(s.HTTP.URL); !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     path + ".http.url",
				Message:  fmt.Sprintf("http source requires an http(s) url, got %q", s.HTTP.URL),
			})
		}
		if s.HTTP.InsecureSkipVerify {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     path + ".http.insecure_skip_verify",
				Message:  "TLS verification is disabled",
			})
		}
	default:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     path + ".kind",
			Message:  fmt.Sprintf("unknown source kind %q", s.Kind),
		})
	}

	return issues
}

func validateParser(path string, p Parser) []Issue {
	var issues []Issue

	if strings.TrimSpace(p.Kind) == "" {
		return append(issues, Issue{
			Severity: SeverityError,
			Path:     path + ".kind",
			Message:  "parser kind must not be empty",
		})
	}

	switch p.Kind {
	case "csv":
		if c := p.Options.String("comma", ","); len([]rune(c)) != 1 {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     path + ".options.comma",
				Message:  fmt.Sprintf("comma must be a single character, got %q", c),
			})
		}
	case "json":
	case "xlsx", "xls":
		// Sheet selection is checked against the workbook at parse time.
	default:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     path + ".kind",
			Message:  fmt.Sprintf("unknown parser kind %q; supported: csv, xlsx, xls, json", p.Kind),
		})
	}
	if !p.Options.Bool("has_header", true) {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     path + ".options.has_header",
			Message:  "has_header=false yields col_N names; no country column will be found",
		})
	}

	return issues
}

func validateSchema(s Schema) []Issue {
	var issues []Issue

	if s.YearFrom > s.YearTo {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "schema.year_from",
			Message:  fmt.Sprintf("year_from (%d) is after year_to (%d)", s.YearFrom, s.YearTo),
		})
	}
	if s.YearFrom < 1000 || s.YearTo > 9999 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "schema.year_from",
			Message:  "years must be four-digit",
		})
	}
	if len(s.Tokens) == 0 {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "schema.tokens",
			Message:  "no metric tokens; only explicitly mapped columns will be selected",
		})
	}

	known := map[string]struct{}{SourceHDI: {}, SourceLex: {}, SourcePop: {}}
	for src, cols := range s.Columns {
		if _, ok := known[src]; !ok {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "schema.columns." + src,
				Message:  fmt.Sprintf("unknown source %q; expected hdi, lex or pop", src),
			})
			continue
		}
		for header, m := range cols {
			p := fmt.Sprintf("schema.columns.%s[%s]", src, header)
			switch m.Metric {
			case "hdi", "life", "population":
			default:
				issues = append(issues, Issue{
					Severity: SeverityError,
					Path:     p + ".metric",
					Message:  fmt.Sprintf("unknown metric %q; expected hdi, life or population", m.Metric),
				})
			}
			if m.Year < s.YearFrom || m.Year > s.YearTo {
				issues = append(issues, Issue{
					Severity: SeverityWarning,
					Path:     p + ".year",
					Message:  fmt.Sprintf("year %d is outside [%d, %d]; column will be ignored", m.Year, s.YearFrom, s.YearTo),
				})
			}
		}
	}

	return issues
}

func validateOutput(o Output) []Issue {
	var issues []Issue

	if strings.TrimSpace(o.Dir) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "output.dir",
			Message:  "output.dir must not be empty",
		})
	}
	if o.TopN <= 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "output.top_n",
			Message:  fmt.Sprintf("top_n=%d; must be positive", o.TopN),
		})
	}
	if o.Workers < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "output.workers",
			Message:  "workers must not be negative",
		})
	}
	if o.FrameDelay < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "output.frame_delay",
			Message:  "frame_delay must not be negative",
		})
	}
	if o.Locale != "" {
		if _, err := language.Parse(o.Locale); err != nil {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     "output.locale",
				Message:  fmt.Sprintf("locale %q is not a valid BCP 47 tag; numbers will use English formatting", o.Locale),
			})
		}
	}

	return issues
}

func validateStorage(s Storage) []Issue {
	var issues []Issue

	if strings.TrimSpace(s.Kind) == "" {
		return nil
	}

	switch s.Kind {
	case "postgres", "mysql", "mssql", "sqlite":
	default:
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "storage.kind",
			Message:  fmt.Sprintf("unknown storage kind %q; ensure a matching backend is registered", s.Kind),
		})
	}
	if strings.TrimSpace(s.DB.DSN) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage.db.dsn",
			Message:  "storage.db.dsn must not be empty",
		})
	}
	if strings.TrimSpace(s.DB.Table) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage.db.table",
			Message:  "storage.db.table must not be empty",
		})
	}
	if s.DB.BatchSize <= 0 {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "storage.db.batch_size",
			Message:  fmt.Sprintf("batch_size=%d; the whole table will be sent in one batch", s.DB.BatchSize),
		})
	}

	return issues
}

func validatePublish(p Publish) []Issue {
	var issues []Issue

	switch p.Kind {
	case "":
		return nil
	case "s3":
	default:
		return append(issues, Issue{
			Severity: SeverityError,
			Path:     "publish.kind",
			Message:  fmt.Sprintf("unknown publish kind %q; supported: s3", p.Kind),
		})
	}
	if strings.TrimSpace(p.S3.Endpoint) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "publish.s3.endpoint",
			Message:  "s3 publish requires an endpoint",
		})
	}
	if strings.TrimSpace(p.S3.Bucket) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "publish.s3.bucket",
			Message:  "s3 publish requires a bucket",
		})
	}
	if p.S3.AccessKeyID == "" || p.S3.SecretAccessKey == "" {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "publish.s3.access_key_id",
			Message:  "s3 credentials are empty; set S3_ACCESS_KEY and S3_SECRET_KEY",
		})
	}

	return issues
}

func validateMetrics(m Metrics) []Issue {
	switch strings.ToLower(m.Backend) {
	case "", "none":
	case "pushgateway", "prom", "prometheus":
		if m.PushgatewayURL == "" {
			return []Issue{{
				Severity: SeverityError,
				Path:     "metrics.pushgateway_url",
				Message:  "pushgateway backend requires pushgateway_url",
			}}
		}
	case "datadog", "dogstatsd":
	default:
		return []Issue{{
			Severity: SeverityError,
			Path:     "metrics.backend",
			Message:  fmt.Sprintf("unknown metrics backend %q", m.Backend),
		}}
	}
	return nil
}
