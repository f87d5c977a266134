package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Default returns a Run that reads hdi.csv, lex.csv and pop.csv from the
// working directory and renders into ./dashboard.
func Default() Run {
	return Run{
		Job: "hdi-dashboard",
		Inputs: Inputs{
			HDI: csvInput("hdi.csv"),
			Lex: csvInput("lex.csv"),
			Pop: csvInput("pop.csv"),
		},
		Schema: Schema{
			YearFrom: 2001,
			YearTo:   2010,
			Tokens:   []string{"hdi", "life", "population"},
		},
		Output: Output{
			Dir:        "dashboard",
			TopN:       10,
			FrameDelay: 80,
			Locale:     "en",
		},
		Storage: Storage{
			DB: DBConfig{
				Table:           "indicators",
				AutoCreateTable: true,
				BatchSize:       500,
			},
		},
		Publish: Publish{
			S3: S3Config{Prefix: "hdidash", Region: "us-east-1"},
		},
		Metrics: Metrics{Backend: "none"},
		Logging: Logging{Level: "info", Format: "text"},
	}
}

func csvInput(path string) Input {
	return Input{
		Source: Source{Kind: "file", File: SourceFile{Path: path}},
		Parser: Parser{Kind: "csv", Options: Options{
			"has_header": true,
			"trim_space": true,
		}},
	}
}

// Load decodes the config file at path on top of Default. Files ending in
// .yaml or .yml are YAML; everything else is JSON. Unknown JSON fields are
// rejected so typos surface early.
func Load(path string) (Run, error) {
	r := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return r, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := Decode(b, filepath.Ext(path), &r); err != nil {
		return r, fmt.Errorf("decode config %s: %w", path, err)
	}
	return r, nil
}

// Decode unmarshals b into r according to the file extension ext.
func Decode(b []byte, ext string, r *Run) error {
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(b))
		dec.KnownFields(true)
		if err := dec.Decode(r); err != nil {
			return err
		}
	default:
		dec := json.NewDecoder(bytes.NewReader(b))
		dec.DisallowUnknownFields()
		if err := dec.Decode(r); err != nil {
			return err
		}
	}
	normalizeOptions(r)
	return nil
}

// normalizeOptions makes every parser Options non-nil so callers never need
// a nil check, mirroring Options.UnmarshalJSON for YAML input.
func normalizeOptions(r *Run) {
	for _, in := range []*Input{&r.Inputs.HDI, &r.Inputs.Lex, &r.Inputs.Pop} {
		if in.Parser.Options == nil {
			in.Parser.Options = Options{}
		}
	}
}

// LoadDotEnv loads KEY=VALUE pairs from the given files into the process
// environment without overriding variables already set. Missing files are
// ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// ApplyEnv overlays environment overrides onto r. lookup is usually
// os.LookupEnv; tests pass a map-backed function.
func ApplyEnv(r *Run, lookup func(string) (string, bool)) {
	set := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	set("HDIDASH_OUT_DIR", &r.Output.Dir)
	set("HDIDASH_LOG_LEVEL", &r.Logging.Level)
	set("HDIDASH_LOG_FORMAT", &r.Logging.Format)
	set("HDIDASH_STORAGE_DSN", &r.Storage.DB.DSN)
	set("METRICS_BACKEND", &r.Metrics.Backend)
	set("PUSHGATEWAY_URL", &r.Metrics.PushgatewayURL)
	set("DD_AGENT_ADDR", &r.Metrics.DatadogAddr)
	set("S3_ACCESS_KEY", &r.Publish.S3.AccessKeyID)
	set("S3_SECRET_KEY", &r.Publish.S3.SecretAccessKey)
}
