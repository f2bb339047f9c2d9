// Package observability holds the Prometheus metrics of the chat client.
//
// Metrics are registered on a caller-supplied registry so tests and embedding
// applications stay isolated. Every method is safe on a nil *Metrics.
package observability

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "petzone_chat"

type Metrics struct {
	SocketDials       *prometheus.CounterVec
	SocketConnects    prometheus.Counter
	SocketDisconnects prometheus.Counter
	SocketEvents      *prometheus.CounterVec
	BusPanics         *prometheus.CounterVec
	APIRequests       *prometheus.CounterVec
}

// NewMetrics registers all collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		SocketDials: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "socket",
			Name:      "dials_total",
			Help:      "Socket dial attempts by result.",
		}, []string{"result"}),
		SocketConnects: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "socket",
			Name:      "connects_total",
			Help:      "Established socket connections.",
		}),
		SocketDisconnects: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "socket",
			Name:      "disconnects_total",
			Help:      "Socket connections that ended.",
		}),
		SocketEvents: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "socket",
			Name:      "events_received_total",
			Help:      "Server pushed events by type.",
		}, []string{"event"}),
		BusPanics: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "bus",
			Name:      "handler_panics_total",
			Help:      "Event handlers that panicked, by event name.",
		}, []string{"event"}),
		APIRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "REST requests by operation and status code.",
		}, []string{"op", "code"}),
	}
}

func (m *Metrics) Dial(ok bool) {
	if m == nil {
		return
	}
	result := "error"
	if ok {
		result = "ok"
	}
	m.SocketDials.WithLabelValues(result).Inc()
}

func (m *Metrics) Connected() {
	if m == nil {
		return
	}
	m.SocketConnects.Inc()
}

func (m *Metrics) Disconnected() {
	if m == nil {
		return
	}
	m.SocketDisconnects.Inc()
}

func (m *Metrics) EventReceived(event string) {
	if m == nil {
		return
	}
	m.SocketEvents.WithLabelValues(event).Inc()
}

func (m *Metrics) HandlerPanicked(event string) {
	if m == nil {
		return
	}
	m.BusPanics.WithLabelValues(event).Inc()
}

// Request records a finished REST call. code 0 means the request never got
// a response.
func (m *Metrics) Request(op string, code int) {
	if m == nil {
		return
	}
	m.APIRequests.WithLabelValues(op, strconv.Itoa(code)).Inc()
}
