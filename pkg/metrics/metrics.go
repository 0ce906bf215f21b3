// Package metrics exports form activity as Prometheus metrics. A Metrics
// value implements form.Recorder and supplies a notify.Listener.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/goliatone/go-authform/pkg/form"
	"github.com/goliatone/go-authform/pkg/notify"
	"github.com/goliatone/go-authform/pkg/validation"
)

const namespace = "authform"

// Metrics holds the collectors for one registry.
type Metrics struct {
	validations    *prometheus.CounterVec
	submissions    *prometheus.CounterVec
	submitDuration *prometheus.HistogramVec
	notifications  *prometheus.CounterVec
}

var _ form.Recorder = (*Metrics)(nil)

// New registers the collectors with reg. A nil reg leaves them unregistered,
// which keeps tests isolated from the default registry.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		validations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "field_validations_total",
			Help:      "Field validations by form, field and resulting state.",
		}, []string{"form", "field", "state"}),
		submissions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submissions_total",
			Help:      "Submit attempts by form and outcome.",
		}, []string{"form", "outcome"}),
		submitDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "submit_duration_seconds",
			Help:      "Latency of submissions that reached the backend.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 3, 5, 10},
		}, []string{"form", "outcome"}),
		notifications: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Notification slot transitions by kind and reason.",
		}, []string{"kind", "reason"}),
	}
}

// FieldValidated implements form.Recorder.
func (m *Metrics) FieldValidated(formID, field string, state validation.State) {
	m.validations.WithLabelValues(formID, field, string(state)).Inc()
}

// SubmitFinished implements form.Recorder. Busy and invalid attempts never
// reach the backend, so only their count is recorded.
func (m *Metrics) SubmitFinished(formID string, outcome form.Outcome, elapsed time.Duration) {
	m.submissions.WithLabelValues(formID, string(outcome)).Inc()
	if outcome == form.OutcomeSuccess || outcome == form.OutcomeFailure {
		m.submitDuration.WithLabelValues(formID, string(outcome)).Observe(elapsed.Seconds())
	}
}

// NotificationListener counts notifier transitions.
func (m *Metrics) NotificationListener() notify.Listener {
	return func(ev notify.Event) {
		m.notifications.WithLabelValues(string(ev.Notification.Kind), string(ev.Reason)).Inc()
	}
}
