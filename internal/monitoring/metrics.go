// Package monitoring records form submission metrics with Prometheus.
package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rotisserie/eris"
)

const namespace = "income_predict"

// Metrics holds the submission collectors on a private registry.
type Metrics struct {
	registry    *prometheus.Registry
	submissions *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	invalid     *prometheus.CounterVec
}

// NewMetrics creates and registers the submission collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submissions_total",
			Help:      "Form submissions sent to the classification service, by model and outcome.",
		}, []string{"model", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "submission_duration_seconds",
			Help:      "Time from submit to a resolved response.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"model"}),
		invalid: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "validation_failures_total",
			Help:      "Submits stopped by local validation, by variant and field.",
		}, []string{"variant", "field"}),
	}
	m.registry.MustRegister(m.submissions, m.duration, m.invalid)
	return m
}

// ObserveSubmission counts one resolved submission.
func (m *Metrics) ObserveSubmission(model, outcome string, elapsed time.Duration) {
	m.submissions.WithLabelValues(model, outcome).Inc()
	m.duration.WithLabelValues(model).Observe(elapsed.Seconds())
}

// ObserveValidationFailure counts one submit stopped by validation.
func (m *Metrics) ObserveValidationFailure(variant, field string) {
	m.invalid.WithLabelValues(variant, field).Inc()
}

// WriteTextfile writes the current metrics in the text exposition format,
// for the node exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return eris.Wrap(err, "monitoring: write metrics textfile")
	}
	return nil
}
