package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var Observer = &Metrics{
	mutex:      new(sync.RWMutex),
	prometheus: NewPrometheusMetrics(),
}

func init() {
	prometheus.MustRegister(Observer.prometheus.Fits)
	prometheus.MustRegister(Observer.prometheus.Trials)
}

type Metrics struct {
	mutex      *sync.RWMutex
	prometheus Prometheus
}

// Fit counts a single model fit for the given model and backend.
func (m *Metrics) Fit(model, backend string) {
	m.prometheus.Fits.WithLabelValues(model, backend).Inc()
}

// Trial counts a completed search trial with its outcome.
func (m *Metrics) Trial(model, backend, outcome string) {
	m.prometheus.Trials.WithLabelValues(model, backend, outcome).Inc()
}
