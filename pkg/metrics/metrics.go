package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Upload and submission outcomes used as the "outcome" label.
const (
	OutcomeSuccess  = "success"
	OutcomeTooLarge = "too_large"
	OutcomeFailed   = "failed"
	OutcomeStale    = "stale"
)

// Recorder holds the landing page metrics. A nil *Recorder is valid and records nothing.
type Recorder struct {
	uploadsTotal   *prometheus.CounterVec
	uploadDuration prometheus.Histogram
	submissions    *prometheus.CounterVec
}

// New registers the landing page metrics on registry.
func New(registry prometheus.Registerer) *Recorder {
	factory := promauto.With(registry)

	return &Recorder{
		uploadsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "landing",
			Name:      "logo_uploads_total",
			Help:      "Logo selections handled, by outcome",
		}, []string{"outcome"}),

		uploadDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "landing",
			Name:      "logo_upload_duration_seconds",
			Help:      "Time spent waiting on the media host for a logo upload",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		}),

		submissions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "landing",
			Name:      "submissions_total",
			Help:      "Lead form submissions relayed to the form processor, by outcome",
		}, []string{"outcome"}),
	}
}

// ObserveUpload counts a logo selection outcome.
func (r *Recorder) ObserveUpload(outcome string) {
	if r == nil {
		return
	}
	r.uploadsTotal.WithLabelValues(outcome).Inc()
}

// ObserveUploadDuration records how long the media host call took.
func (r *Recorder) ObserveUploadDuration(d time.Duration) {
	if r == nil {
		return
	}
	r.uploadDuration.Observe(d.Seconds())
}

// ObserveSubmission counts a relayed submission outcome.
func (r *Recorder) ObserveSubmission(outcome string) {
	if r == nil {
		return
	}
	r.submissions.WithLabelValues(outcome).Inc()
}
