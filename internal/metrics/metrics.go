// Package metrics defines the Prometheus counters for fetch fallbacks and
// comment submissions. A nil *Metrics is valid and records nothing.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Fetch sources.
const (
	SourceRemote   = "remote"
	SourceSnapshot = "snapshot"
	SourceEmpty    = "empty"
)

// Submission and upload outcomes.
const (
	ResultCreated = "created"
	ResultInvalid = "invalid"
	ResultBackend = "backend_error"
	ResultOK      = "ok"
	ResultFailed  = "failed"
)

// Metrics groups the showcase counters.
type Metrics struct {
	fetches     *prometheus.CounterVec
	submissions *prometheus.CounterVec
	uploads     *prometheus.CounterVec
}

// New registers the counters with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		fetches: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "showcase",
			Name:      "fetches_total",
			Help:      "Collection reads by collection and the source that answered.",
		}, []string{"collection", "source"}),
		submissions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "showcase",
			Name:      "comment_submissions_total",
			Help:      "Comment submissions by outcome.",
		}, []string{"result"}),
		uploads: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "showcase",
			Name:      "photo_uploads_total",
			Help:      "Comment photo uploads by outcome.",
		}, []string{"result"}),
	}
}

// ObserveFetch counts one read of collection answered by source.
func (m *Metrics) ObserveFetch(collection, source string) {
	if m == nil {
		return
	}
	m.fetches.WithLabelValues(collection, source).Inc()
}

// ObserveSubmission counts one comment submission outcome.
func (m *Metrics) ObserveSubmission(result string) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(result).Inc()
}

// ObserveUpload counts one photo upload outcome.
func (m *Metrics) ObserveUpload(result string) {
	if m == nil {
		return
	}
	m.uploads.WithLabelValues(result).Inc()
}
