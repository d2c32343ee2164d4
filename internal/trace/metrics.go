package trace

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// traceMetrics holds Prometheus metrics for a single trace
type traceMetrics struct {
	inserts      prometheus.Counter
	evictions    prometheus.Counter
	replacements prometheus.Counter
	removals     prometheus.Counter

	size     prometheus.Gauge
	pending  prometheus.Gauge
	capacity prometheus.Gauge
}

func newTraceMetrics(reg prometheus.Registerer, name string) (*traceMetrics, error) {
	labels := prometheus.Labels{"trace": name}
	counter := func(metric, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "tracedog",
			Subsystem:   "trace",
			Name:        metric,
			ConstLabels: labels,
			Help:        help,
		})
	}
	gauge := func(metric, help string) prometheus.Gauge {
		return prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "tracedog",
			Subsystem:   "trace",
			Name:        metric,
			ConstLabels: labels,
			Help:        help,
		})
	}

	m := &traceMetrics{
		inserts:      counter("inserts_total", "Total number of points inserted into the trace"),
		evictions:    counter("evictions_total", "Total number of points overwritten because the trace was full"),
		replacements: counter("replacements_total", "Total number of points updated in place"),
		removals:     counter("removals_total", "Total number of points removed from the trace"),
		size:         gauge("size", "Current number of retained points, including pending overflow"),
		pending:      gauge("pending", "Points displaced by a resize and not yet removed"),
		capacity:     gauge("capacity", "Current trace capacity"),
	}

	for _, c := range []prometheus.Collector{
		m.inserts, m.evictions, m.replacements, m.removals,
		m.size, m.pending, m.capacity,
	} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register trace metrics for %q: %w", name, err)
		}
	}
	return m, nil
}

// observe updates the gauges from the current buffer state.
// Safe on a nil receiver so callers don't have to check.
func (m *traceMetrics) observe(size, pending, capacity int) {
	if m == nil {
		return
	}
	m.size.Set(float64(size))
	m.pending.Set(float64(pending))
	m.capacity.Set(float64(capacity))
}

func (m *traceMetrics) recordInsert(evicted bool) {
	if m == nil {
		return
	}
	m.inserts.Inc()
	if evicted {
		m.evictions.Inc()
	}
}

func (m *traceMetrics) recordReplace() {
	if m == nil {
		return
	}
	m.replacements.Inc()
}

func (m *traceMetrics) recordRemove(n int) {
	if m == nil {
		return
	}
	m.removals.Add(float64(n))
}
