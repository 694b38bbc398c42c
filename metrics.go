// SPDX-License-Identifier: GPL-3.0
// Copyright 2024 Pete Heist

package fctsim

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the simulator's Prometheus instrumentation. A nil *Metrics
// is valid and every method on it is a no-op, so instrumentation is opt-in.
type Metrics struct {
	eventsDispatched prometheus.Counter
	simTimeNs        prometheus.Gauge
	recordsEmitted   prometheus.Counter
	queueOccupancy   *prometheus.GaugeVec
}

// NewMetrics registers the simulator's collectors on reg and returns a
// Metrics instrumented with them.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		eventsDispatched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fctsim",
			Name:      "events_dispatched_total",
			Help:      "Number of events dispatched by the simulator loop.",
		}),
		simTimeNs: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "fctsim",
			Name:      "sim_time_ns",
			Help:      "Current simulated time in nanoseconds.",
		}),
		recordsEmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fctsim",
			Name:      "records_emitted_total",
			Help:      "Number of FCT records emitted.",
		}),
		queueOccupancy: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "fctsim",
			Name:      "bottleneck_queue_occupancy_bytes",
			Help:      "Current byte occupancy of each bottleneck sub-queue.",
		}, []string{"q_index"}),
	}
	reg.MustRegister(m.eventsDispatched, m.simTimeNs, m.recordsEmitted, m.queueOccupancy)
	return m
}

func (m *Metrics) dispatched(now Clock) {
	if m == nil {
		return
	}
	m.eventsDispatched.Inc()
	m.simTimeNs.Set(float64(now))
}

func (m *Metrics) recorded() {
	if m == nil {
		return
	}
	m.recordsEmitted.Inc()
}

func (m *Metrics) queueOccupied(idx QIndex, bytes Bytes) {
	if m == nil {
		return
	}
	m.queueOccupancy.WithLabelValues(idx.String()).Set(float64(bytes))
}
