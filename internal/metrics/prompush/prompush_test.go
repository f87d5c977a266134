package prompush

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"hdidash/internal/metrics"
)

// readCounterValue reads the current value of a Counter for assertions.
func readCounterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()

	m := &dto.Metric{}
	if err := c.Write(m); err != nil {
		t.Fatalf("Counter.Write() error = %v", err)
	}
	if m.GetCounter() == nil {
		t.Fatalf("metric did not contain Counter value")
	}
	return m.GetCounter().GetValue()
}

// readSummaryCountSum reads sample count and sum from a SummaryVec.
func readSummaryCountSum(t *testing.T, v *prometheus.SummaryVec, labels ...string) (uint64, float64) {
	t.Helper()

	m := &dto.Metric{}
	metric, ok := v.WithLabelValues(labels...).(prometheus.Metric)
	if !ok {
		t.Fatalf("SummaryVec.WithLabelValues(...) does not implement prometheus.Metric")
	}
	if err := metric.Write(m); err != nil {
		t.Fatalf("Summary.Write() error = %v", err)
	}
	return m.GetSummary().GetSampleCount(), m.GetSummary().GetSampleSum()
}

func TestNewBackend(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		jobName     string
		gatewayURL  string
		wantErr     bool
		wantJobName string
	}{
		{name: "missing gateway URL", jobName: "x", wantErr: true},
		{name: "default job name", gatewayURL: "http://pushgateway:9091", wantJobName: "hdidash"},
		{name: "explicit job name", jobName: "nightly", gatewayURL: "http://pushgateway:9091", wantJobName: "nightly"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			b, err := NewBackend(tt.jobName, tt.gatewayURL)
			if tt.wantErr {
				if err == nil || b != nil {
					t.Fatalf("NewBackend(%q, %q) = %v, %v; want nil, error", tt.jobName, tt.gatewayURL, b, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewBackend: %v", err)
			}
			if b.jobName != tt.wantJobName {
				t.Fatalf("jobName=%q want %q", b.jobName, tt.wantJobName)
			}
		})
	}
}

/*
TestIncCounter verifies that IncCounter routes each metric name to its
collector with the right labels and ignores unknown names.
*/
func TestIncCounter(t *testing.T) {
	t.Parallel()

	b, err := NewBackend("hdidash", "http://example.com")
	if err != nil {
		t.Fatalf("NewBackend: %v", err)
	}

	b.IncCounter(metrics.StepTotal, 2, metrics.Labels{"step": "build", "status": "success"})
	b.IncCounter(metrics.RecordsTotal, 40, metrics.Labels{"kind": "records"})
	b.IncCounter(metrics.ArtifactsTotal, 1, metrics.Labels{"kind": "png"})
	b.IncCounter(metrics.BatchesTotal, 3, nil)
	b.IncCounter("unknown_metric", 10, metrics.Labels{"kind": "records"})

	if got := readCounterValue(t, b.stepCounter.WithLabelValues("build", "success")); got != 2 {
		t.Fatalf("step=%v want 2", got)
	}
	if got := readCounterValue(t, b.recordCounter.WithLabelValues("records")); got != 40 {
		t.Fatalf("records=%v want 40", got)
	}
	if got := readCounterValue(t, b.artifactCounter.WithLabelValues("png")); got != 1 {
		t.Fatalf("artifacts=%v want 1", got)
	}
	if got := readCounterValue(t, b.batchCounter); got != 3 {
		t.Fatalf("batches=%v want 3", got)
	}
}

func TestIncCounter_ZeroBackendIsSafe(t *testing.T) {
	t.Parallel()

	b := &Backend{}
	b.IncCounter(metrics.StepTotal, 1, metrics.Labels{"step": "s", "status": "success"})
	b.IncCounter(metrics.RecordsTotal, 1, metrics.Labels{"kind": "records"})
	b.IncCounter(metrics.BatchesTotal, 1, nil)
	b.ObserveHistogram(metrics.StepDuration, 1, nil)
}

func TestObserveHistogram(t *testing.T) {
	t.Parallel()

	b, err := NewBackend("hdidash", "http://example.com")
	if err != nil {
		t.Fatalf("NewBackend: %v", err)
	}
	lbls := metrics.Labels{"step": "render", "status": "success"}
	b.ObserveHistogram(metrics.StepDuration, 1.5, lbls)
	b.ObserveHistogram("other_metric", 2, lbls)

	count, sum := readSummaryCountSum(t, b.stepDuration, "render", "success")
	if count != 1 || sum != 1.5 {
		t.Fatalf("count=%d sum=%v; want 1/1.5", count, sum)
	}
}

func TestFlush_PushesToGateway(t *testing.T) {
	t.Parallel()

	type pushed struct {
		method, path, body string
	}
	reqCh := make(chan pushed, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		reqCh <- pushed{r.Method, r.URL.Path, string(body)}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	b, err := NewBackend("nightly", srv.URL)
	if err != nil {
		t.Fatalf("NewBackend: %v", err)
	}
	b.IncCounter(metrics.StepTotal, 1, metrics.Labels{"step": "build", "status": "success"})

	if err := b.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	var got pushed
	select {
	case got = <-reqCh:
	default:
		t.Fatalf("Flush did not reach the gateway")
	}
	if got.method != http.MethodPut {
		t.Fatalf("method=%s want PUT", got.method)
	}
	if !strings.Contains(got.path, "/job/nightly") {
		t.Fatalf("path=%s", got.path)
	}
	if got.body == "" {
		t.Fatalf("empty push body")
	}
}
