// Package metrics provides a small, backend-agnostic abstraction for
// recording operational metrics from the loader.
//
// It exposes a narrow Backend interface (counters plus duration
// observations) behind a global, pluggable backend that defaults to a
// no-op implementation, so metric calls are always safe even when no real
// backend is configured. Concrete systems (Prometheus Pushgateway,
// Datadog) live in subpackages, mirroring the storage abstraction pattern
// used elsewhere in the project.
package metrics

import "time"

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveHistogram records a value in a latency/duration style metric.
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush pushes buffered metrics if the backend needs it (e.g. Pushgateway).
	Flush() error
}

// nopBackend is used by default so metrics are optional.
type nopBackend struct{}

func (nopBackend) IncCounter(name string, delta float64, labels Labels)       {}
func (nopBackend) ObserveHistogram(name string, value float64, labels Labels) {}
func (nopBackend) Flush() error                                               { return nil }

var backend Backend = nopBackend{}

// SetBackend installs a concrete backend. Passing nil keeps the existing one.
func SetBackend(b Backend) {
	if b == nil {
		return
	}
	backend = b
}

// Flush delegates to the current backend.
func Flush() error {
	return backend.Flush()
}

// RecordFile measures one processed input file: outcome plus duration,
// partitioned by corpus.
func RecordFile(corpus string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	lbls := Labels{"corpus": corpus, "status": status}
	backend.IncCounter("load_files_total", 1, lbls)
	backend.ObserveHistogram("load_file_duration_seconds", d.Seconds(), lbls)
}

// RecordRows counts rows written per corpus and table kind. Typical kinds
// are the table names: "songs", "artists", "time", "users", "songplays".
func RecordRows(corpus, kind string, n int64) {
	if n == 0 {
		return
	}
	backend.IncCounter("load_rows_total", float64(n), Labels{"corpus": corpus, "kind": kind})
}
