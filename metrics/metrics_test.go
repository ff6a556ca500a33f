package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServerMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewServerMetrics(reg)
	require.NotNil(t, m)

	m.ConnectionAccepted()
	m.ConnectionAccepted()
	m.SessionStarted()
	m.SessionStarted()
	m.SessionEnded()
	m.BytesSent(42)
	m.RoutingMiss()
	m.Broadcast()

	assert.Equal(t, float64(2), testutil.ToFloat64(m.acceptedTotal))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.sessionsActive))
	assert.Equal(t, float64(42), testutil.ToFloat64(m.bytesSent))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.routingMisses))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.broadcasts))
}

func TestServerMetrics_nil_receiver(t *testing.T) {
	var m *ServerMetrics

	assert.NotPanics(t, func() {
		m.ConnectionAccepted()
		m.SessionStarted()
		m.SessionEnded()
		m.BytesSent(10)
		m.RoutingMiss()
		m.Broadcast()
	})
}
