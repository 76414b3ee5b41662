// app/metrics.go
package app

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics carries its own registry so tests can build isolated
// instances without colliding on the default one.
type Metrics struct {
	reg *prometheus.Registry

	TxAccepted *prometheus.CounterVec
	TxRejected *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		TxAccepted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_transactions_total",
			Help: "Accepted ledger transactions by action.",
		}, []string{"action"}),
		TxRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_rejections_total",
			Help: "Rejected ledger commands by reason.",
		}, []string{"reason"}),
	}
	m.reg.MustRegister(m.TxAccepted, m.TxRejected)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}
