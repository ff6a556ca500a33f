// Package metrics provides Prometheus collectors for the socket server.
// All recording methods are safe on a nil receiver so the server can run
// with metrics disabled at zero cost to call sites.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ServerMetrics holds the operational counters and gauges for one server.
type ServerMetrics struct {
	sessionsActive prometheus.Gauge
	acceptedTotal  prometheus.Counter
	bytesSent      prometheus.Counter
	routingMisses  prometheus.Counter
	broadcasts     prometheus.Counter
}

// NewServerMetrics registers the server collectors with the given registerer.
//
// Parameters:
//   - reg: The Prometheus registerer to register collectors with
//
// Returns:
//   - A new ServerMetrics instance
func NewServerMetrics(reg prometheus.Registerer) *ServerMetrics {
	return &ServerMetrics{
		sessionsActive: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "socketserver_sessions_active",
			Help: "Number of currently registered live sessions",
		}),
		acceptedTotal: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "socketserver_connections_accepted_total",
			Help: "Total number of accepted connections",
		}),
		bytesSent: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "socketserver_bytes_sent_total",
			Help: "Total bytes written to sessions via send and broadcast",
		}),
		routingMisses: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "socketserver_routing_misses_total",
			Help: "Total sends addressed to a session key that was not registered",
		}),
		broadcasts: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "socketserver_broadcasts_total",
			Help: "Total broadcast operations",
		}),
	}
}

// SessionStarted records a session entering the registry.
func (m *ServerMetrics) SessionStarted() {
	if m == nil {
		return
	}
	m.sessionsActive.Inc()
}

// SessionEnded records a session leaving the registry.
func (m *ServerMetrics) SessionEnded() {
	if m == nil {
		return
	}
	m.sessionsActive.Dec()
}

// ConnectionAccepted records one accepted connection.
func (m *ServerMetrics) ConnectionAccepted() {
	if m == nil {
		return
	}
	m.acceptedTotal.Inc()
}

// BytesSent records n bytes written to a session.
func (m *ServerMetrics) BytesSent(n int) {
	if m == nil {
		return
	}
	m.bytesSent.Add(float64(n))
}

// RoutingMiss records a send addressed to an unknown session key.
func (m *ServerMetrics) RoutingMiss() {
	if m == nil {
		return
	}
	m.routingMisses.Inc()
}

// Broadcast records one broadcast operation.
func (m *ServerMetrics) Broadcast() {
	if m == nil {
		return
	}
	m.broadcasts.Inc()
}
