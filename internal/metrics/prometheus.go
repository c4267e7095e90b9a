package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "freevis"

// Prometheus holds the prometheus collectors.
type Prometheus struct {
	Computations  *prometheus.CounterVec
	Degenerate    *prometheus.CounterVec
	DeviceTensors *prometheus.GaugeVec
}

func NewPrometheusMetrics() Prometheus {
	return Prometheus{
		Computations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "computations_total",
				Help:      "number of statistics computations",
			}, []string{"op"}),
		Degenerate: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "degenerate_inputs_total",
				Help:      "inputs resolved to sentinel values",
			}, []string{"op", "kind"}),
		DeviceTensors: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "device_tensors",
				Help:      "tensors allocated and not yet disposed",
			}, []string{"device"}),
	}
}
