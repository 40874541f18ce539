package client

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors for one client instance.
// A nil *Metrics disables instrumentation; every method is nil-safe.
type Metrics struct {
	calls        *prometheus.CounterVec
	callDuration *prometheus.HistogramVec
	pushes       *prometheus.CounterVec
	reconnects   prometheus.Counter
	protocolErrs prometheus.Counter
	state        prometheus.Gauge
}

// NewMetrics creates the client collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		calls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "session_layer",
				Subsystem: "client",
				Name:      "calls_total",
				Help:      "Total number of coordinator calls issued.",
			},
			[]string{"method", "outcome"},
		),
		callDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "session_layer",
				Subsystem: "client",
				Name:      "call_duration_seconds",
				Help:      "Duration of coordinator calls.",
				Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
			},
			[]string{"method"},
		),
		pushes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "session_layer",
				Subsystem: "client",
				Name:      "pushes_total",
				Help:      "Total number of push notifications dispatched.",
			},
			[]string{"category"},
		),
		reconnects: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "session_layer",
				Subsystem: "client",
				Name:      "reconnect_attempts_total",
				Help:      "Total number of reconnect attempts scheduled.",
			},
		),
		protocolErrs: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "session_layer",
				Subsystem: "client",
				Name:      "protocol_errors_total",
				Help:      "Total number of malformed envelopes dropped.",
			},
		),
		state: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "session_layer",
				Subsystem: "client",
				Name:      "connection_state",
				Help:      "Current connection state (enumerated State value).",
			},
		),
	}

	reg.MustRegister(m.calls, m.callDuration, m.pushes, m.reconnects, m.protocolErrs, m.state)
	return m
}

func (m *Metrics) observeCall(method, outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.calls.WithLabelValues(method, outcome).Inc()
	m.callDuration.WithLabelValues(method).Observe(seconds)
}

func (m *Metrics) observePush(category string) {
	if m == nil {
		return
	}
	m.pushes.WithLabelValues(category).Inc()
}

func (m *Metrics) observeReconnect() {
	if m == nil {
		return
	}
	m.reconnects.Inc()
}

func (m *Metrics) observeProtocolError() {
	if m == nil {
		return
	}
	m.protocolErrs.Inc()
}

func (m *Metrics) observeState(s State) {
	if m == nil {
		return
	}
	m.state.Set(float64(s))
}
