package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the server's Prometheus collectors. Each Server carries
// its own registry so multiple instances can coexist in one process.
type Metrics struct {
	reg *prometheus.Registry

	ConnectionsTotal  prometheus.Counter
	ActiveConnections prometheus.Gauge
	OnlineUsers       prometheus.Gauge
	Documents         prometheus.Gauge
	RequestsTotal     *prometheus.CounterVec
	BroadcastsTotal   prometheus.Counter
	BroadcastWrites   prometheus.Counter
}

func newMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		reg: reg,
		ConnectionsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "collabtex_connections_total",
			Help: "Connections accepted since start, over both transports.",
		}),
		ActiveConnections: factory.NewGauge(prometheus.GaugeOpts{
			Name: "collabtex_active_connections",
			Help: "Currently open connections.",
		}),
		OnlineUsers: factory.NewGauge(prometheus.GaugeOpts{
			Name: "collabtex_online_users",
			Help: "Currently logged-in users.",
		}),
		Documents: factory.NewGauge(prometheus.GaugeOpts{
			Name: "collabtex_documents",
			Help: "Documents created since start.",
		}),
		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "collabtex_requests_total",
			Help: "Dispatched requests by kind.",
		}, []string{"kind"}),
		BroadcastsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "collabtex_broadcasts_total",
			Help: "Responses broadcast by the dispatcher.",
		}),
		BroadcastWrites: factory.NewCounter(prometheus.CounterOpts{
			Name: "collabtex_broadcast_writes_total",
			Help: "Individual writer deliveries across all broadcasts.",
		}),
	}
}

// Handler serves the collectors in Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}
