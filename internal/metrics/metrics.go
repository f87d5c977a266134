// Package metrics records operational metrics for a dashboard run behind a
// small, pluggable Backend. The default backend is a no-op, so callers never
// need to check whether metrics are configured.
//
// Concrete systems live in subpackages (prompush, datadog) so the rest of
// the code depends only on this package.
package metrics

import (
	"sync"
	"time"
)

// Metric names emitted by the helpers below.
const (
	StepTotal      = "hdidash_step_total"
	StepDuration   = "hdidash_step_duration_seconds"
	RecordsTotal   = "hdidash_records_total"
	BatchesTotal   = "hdidash_batches_total"
	ArtifactsTotal = "hdidash_artifacts_total"
)

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveHistogram records a value in a latency/duration style metric.
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush pushes or flushes metrics, if the backend needs it (e.g. Pushgateway).
	Flush() error
}

// nopBackend is used by default so metrics are optional.
type nopBackend struct{}

func (nopBackend) IncCounter(string, float64, Labels)       {}
func (nopBackend) ObserveHistogram(string, float64, Labels) {}
func (nopBackend) Flush() error                             { return nil }

var (
	mu      sync.RWMutex
	backend Backend = nopBackend{}
)

func current() Backend {
	mu.RLock()
	defer mu.RUnlock()
	return backend
}

// SetBackend installs a concrete backend. Passing nil keeps the existing backend.
func SetBackend(b Backend) {
	if b == nil {
		return
	}
	mu.Lock()
	backend = b
	mu.Unlock()
}

// Flush delegates to the current backend.
func Flush() error {
	return current().Flush()
}

// RecordStep measures latency and success/failure of one run step
// (load_hdi, build, render, store, ...).
func RecordStep(job, step string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	lbls := Labels{"job": job, "step": step, "status": status}

	b := current()
	b.IncCounter(StepTotal, 1, lbls)
	b.ObserveHistogram(StepDuration, d.Seconds(), lbls)
}

// RecordRow increments a record-level counter. Typical kinds: parsed_hdi,
// joined, records, dropped_countries, inserted.
func RecordRow(job, kind string, n int) {
	if n <= 0 {
		return
	}
	current().IncCounter(RecordsTotal, float64(n), Labels{"job": job, "kind": kind})
}

// RecordBatches increments the storage batch counter.
func RecordBatches(job string, n int) {
	if n <= 0 {
		return
	}
	current().IncCounter(BatchesTotal, float64(n), Labels{"job": job})
}

// RecordArtifact counts one rendered artifact of the given kind (png, gif,
// xlsx, html, ...).
func RecordArtifact(job, kind string) {
	current().IncCounter(ArtifactsTotal, 1, Labels{"job": job, "kind": kind})
}
