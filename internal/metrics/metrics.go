package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Observer is the process wide metrics collector.
var Observer = &Metrics{
	mutex:      new(sync.RWMutex),
	prometheus: NewPrometheusMetrics(),
	devices:    make(map[string]int),
}

func init() {
	prometheus.MustRegister(
		Observer.prometheus.Computations,
		Observer.prometheus.Degenerate,
		Observer.prometheus.DeviceTensors,
	)
}

// Metrics tracks the computations and the device memory of the process.
type Metrics struct {
	mutex      *sync.RWMutex
	prometheus Prometheus
	devices    map[string]int
}

// Compute counts one computation of the given operation.
func (m *Metrics) Compute(op string) {
	m.prometheus.Computations.WithLabelValues(op).Inc()
}

// Degenerate counts an input that produced a sentinel result e.g. empty or all NaN.
func (m *Metrics) Degenerate(op, kind string) {
	m.prometheus.Degenerate.WithLabelValues(op, kind).Inc()
}

// Tensors records the number of live tensors for the given device.
func (m *Metrics) Tensors(device string, live int) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.devices[device] = live
	m.prometheus.DeviceTensors.WithLabelValues(device).Set(float64(live))
}

// Live returns the last recorded number of live tensors for the device.
func (m *Metrics) Live(device string) int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return m.devices[device]
}
