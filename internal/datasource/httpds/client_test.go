package httpds

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func noSleep(sleeps *[]time.Duration) func(context.Context, time.Duration) error {
	return func(_ context.Context, d time.Duration) error {
		if sleeps != nil {
			*sleeps = append(*sleeps, d)
		}
		return nil
	}
}

func TestNew_Defaults(t *testing.T) {
	t.Parallel()

	s := New(Config{URL: "http://x", InsecureSkipVerify: true})
	if s.httpClient.Timeout <= 0 {
		t.Fatalf("expected non-zero timeout")
	}
	if s.maxRetries != 0 || s.initialBackoff <= 0 || s.maxBackoff <= 0 {
		t.Fatalf("unexpected defaults: %+v", s)
	}
	tr, ok := s.httpClient.Transport.(*http.Transport)
	if !ok || tr.TLSClientConfig == nil || !tr.TLSClientConfig.InsecureSkipVerify {
		t.Fatalf("expected insecure TLS transport, got %T", s.httpClient.Transport)
	}
}

func TestOpen_ReturnsBody(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Accept") != "text/csv" {
			t.Errorf("missing Accept header")
		}
		_, _ = io.WriteString(w, "country,hdi_2001\nA,0.5\n")
	}))
	defer srv.Close()

	s := New(Config{URL: srv.URL, Header: http.Header{"Accept": []string{"text/csv"}}})
	rc, err := s.Open(context.Background())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer rc.Close()
	b, _ := io.ReadAll(rc)
	if !strings.HasPrefix(string(b), "country,") {
		t.Fatalf("body=%q", b)
	}
}

func TestOpen_RetryOn5xxThenSuccess(t *testing.T) {
	t.Parallel()

	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) <= 2 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = io.WriteString(w, "ok")
	}))
	defer srv.Close()

	s := New(Config{URL: srv.URL, MaxRetries: 3, InitialBackoff: time.Millisecond, MaxBackoff: 3 * time.Millisecond})
	var sleeps []time.Duration
	s.sleep = noSleep(&sleeps)

	rc, err := s.Open(context.Background())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	rc.Close()

	if got := atomic.LoadInt32(&hits); got != 3 {
		t.Fatalf("hits=%d want 3", got)
	}
	want := []time.Duration{time.Millisecond, 2 * time.Millisecond}
	if len(sleeps) != len(want) || sleeps[0] != want[0] || sleeps[1] != want[1] {
		t.Fatalf("sleeps=%v want %v", sleeps, want)
	}
}

func TestOpen_NonRetryableStatus(t *testing.T) {
	t.Parallel()

	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	s := New(Config{URL: srv.URL, MaxRetries: 3})
	s.sleep = noSleep(nil)

	if _, err := s.Open(context.Background()); err == nil || !strings.Contains(err.Error(), "status 404") {
		t.Fatalf("err=%v", err)
	}
	if hits != 1 {
		t.Fatalf("404 must not be retried, hits=%d", hits)
	}
}

func TestOpen_ExhaustsRetries(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	s := New(Config{URL: srv.URL, MaxRetries: 2})
	s.sleep = noSleep(nil)

	if _, err := s.Open(context.Background()); err == nil || !strings.Contains(err.Error(), "retryable status 429") {
		t.Fatalf("err=%v", err)
	}
}

func TestOpen_CanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := New(Config{URL: "http://127.0.0.1:1"}).Open(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("err=%v want context.Canceled", err)
	}
}

func TestBackoffDuration(t *testing.T) {
	t.Parallel()

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, 100 * time.Millisecond},
		{1, 200 * time.Millisecond},
		{2, 400 * time.Millisecond},
		{5, time.Second},
	}
	for _, tt := range tests {
		if got := backoffDuration(100*time.Millisecond, tt.attempt, time.Second); got != tt.want {
			t.Errorf("attempt %d: got %v want %v", tt.attempt, got, tt.want)
		}
	}
}

func TestSleepWithContext_Canceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := sleepWithContext(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Fatalf("err=%v", err)
	}
}
