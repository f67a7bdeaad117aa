package metrics

import "github.com/prometheus/client_golang/prometheus"

type Prometheus struct {
	Fits   *prometheus.CounterVec
	Trials *prometheus.CounterVec
}

func NewPrometheusMetrics() Prometheus {
	return Prometheus{
		Fits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "scalearn",
				Name:      "fits",
			}, []string{"model", "backend"}),
		Trials: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "scalearn",
				Name:      "trials",
			}, []string{"model", "backend", "outcome"}),
	}
}
