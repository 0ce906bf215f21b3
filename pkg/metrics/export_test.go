package metrics

import "github.com/prometheus/client_golang/prometheus"

// Validations exposes one validation counter to tests.
func (m *Metrics) Validations(formID, field, state string) prometheus.Counter {
	return m.validations.WithLabelValues(formID, field, state)
}
