// Package httpds reads an indicator source over HTTP(S) with retry and
// exponential backoff, e.g. a CSV export published by a statistics portal.
package httpds

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// Config configures the HTTP source.
//
// Zero values are given defaults:
//   - Timeout:        30s
//   - InitialBackoff: 200ms
//   - MaxBackoff:     5s
type Config struct {
	// URL is fetched with GET.
	URL string

	// Timeout is the per-request timeout applied at the http.Client level.
	Timeout time.Duration

	// MaxRetries is the number of retry attempts after the initial request.
	MaxRetries int

	InitialBackoff time.Duration
	MaxBackoff     time.Duration

	// InsecureSkipVerify disables TLS certificate verification.
	InsecureSkipVerify bool

	// Header is added to every request.
	Header http.Header

	// Transport overrides the default *http.Transport (tests).
	Transport http.RoundTripper
}

// Source fetches Config.URL and hands the response body to the parser.
type Source struct {
	url            string
	httpClient     *http.Client
	maxRetries     int
	initialBackoff time.Duration
	maxBackoff     time.Duration
	header         http.Header

	// sleep is injectable to make tests fast and deterministic.
	sleep func(context.Context, time.Duration) error
}

// New constructs a Source from cfg, applying defaults for zero values.
func New(cfg Config) *Source {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = 200 * time.Millisecond
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = 5 * time.Second
	}

	transport := cfg.Transport
	if transport == nil {
		transport = &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			TLSClientConfig: &tls.Config{
				InsecureSkipVerify: cfg.InsecureSkipVerify, //nolint:gosec // explicitly configurable
			},
		}
	}

	return &Source{
		url:            cfg.URL,
		httpClient:     &http.Client{Timeout: cfg.Timeout, Transport: transport},
		maxRetries:     cfg.MaxRetries,
		initialBackoff: cfg.InitialBackoff,
		maxBackoff:     cfg.MaxBackoff,
		header:         cfg.Header.Clone(),
		sleep:          sleepWithContext,
	}
}

// Open GETs the URL, retrying transport errors, 429 and 5xx. Any other
// non-2xx status is returned as an error without retry. The caller closes the
// returned body.
func (s *Source) Open(ctx context.Context) (io.ReadCloser, error) {
	if s.url == "" {
		return nil, fmt.Errorf("httpds: url must not be empty")
	}

	attempts := s.maxRetries + 1
	var lastErr error

	for attempt := 0; attempt < attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
		if err != nil {
			return nil, fmt.Errorf("httpds: build request: %w", err)
		}
		for k, vs := range s.header {
			for _, v := range vs {
				req.Header.Add(k, v)
			}
		}

		resp, err := s.httpClient.Do(req)
		switch {
		case err != nil:
			lastErr = fmt.Errorf("get %s: %w", s.url, err)
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			return resp.Body, nil
		case isRetryableStatus(resp.StatusCode):
			_ = resp.Body.Close()
			lastErr = fmt.Errorf("get %s: retryable status %d", s.url, resp.StatusCode)
		default:
			_ = resp.Body.Close()
			return nil, fmt.Errorf("get %s: status %d", s.url, resp.StatusCode)
		}

		if attempt+1 >= attempts {
			break
		}
		backoff := backoffDuration(s.initialBackoff, attempt, s.maxBackoff)
		slog.Debug("httpds retry", "url", s.url, "attempt", attempt+1, "backoff", backoff, "err", lastErr)
		if err := s.sleep(ctx, backoff); err != nil {
			return nil, err
		}
	}

	return nil, lastErr
}

// isRetryableStatus treats 429 and 5xx as transient.
func isRetryableStatus(code int) bool {
	if code == http.StatusTooManyRequests {
		return true
	}
	return code >= 500 && code <= 599
}

// backoffDuration returns initial * 2^attempt, clamped to max.
func backoffDuration(initial time.Duration, attempt int, max time.Duration) time.Duration {
	if attempt <= 0 {
		if initial > max {
			return max
		}
		return initial
	}
	d := initial << attempt
	if d > max || d <= 0 {
		return max
	}
	return d
}

// sleepWithContext waits for d but aborts early if ctx is canceled.
func sleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
