// Package datasource opens the byte streams behind the configured inputs.
package datasource

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"hdidash/internal/config"
	"hdidash/internal/datasource/file"
	"hdidash/internal/datasource/httpds"
)

// Source opens a fresh reader over the underlying data.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
}

// New builds the Source described by cfg.
func New(cfg config.Source) (Source, error) {
	switch cfg.Kind {
	case "file", "":
		return file.NewLocal(cfg.File.Path), nil
	case "http":
		h := http.Header{}
		for k, v := range cfg.HTTP.Headers {
			h.Set(k, v)
		}
		return httpds.New(httpds.Config{
			URL:                cfg.HTTP.URL,
			Timeout:            time.Duration(cfg.HTTP.TimeoutSeconds) * time.Second,
			MaxRetries:         cfg.HTTP.MaxRetries,
			InsecureSkipVerify: cfg.HTTP.InsecureSkipVerify,
			Header:             h,
		}), nil
	default:
		return nil, fmt.Errorf("unsupported source.kind=%s", cfg.Kind)
	}
}

// Describe returns a short human-readable location for cfg, used in logs.
func Describe(cfg config.Source) string {
	if cfg.Kind == "http" {
		return cfg.HTTP.URL
	}
	return cfg.File.Path
}
