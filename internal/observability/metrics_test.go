package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsCount(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.Dial(true)
	m.Dial(false)
	m.Dial(false)
	m.Connected()
	m.EventReceived("message:new")
	m.HandlerPanicked("typing")
	m.Request("messages", 200)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.SocketDials.WithLabelValues("ok")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.SocketDials.WithLabelValues("error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SocketConnects))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SocketEvents.WithLabelValues("message:new")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BusPanics.WithLabelValues("typing")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.APIRequests.WithLabelValues("messages", "200")))
}

func TestNilMetricsAreNoops(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.Dial(true)
		m.Connected()
		m.Disconnected()
		m.EventReceived("x")
		m.HandlerPanicked("x")
		m.Request("x", 500)
	})
}
