package httpapi

import (
	"github.com/prometheus/client_golang/prometheus"
)

// apiMetrics tracks command and query traffic.
type apiMetrics struct {
	executeTotal *prometheus.CounterVec
	queryTotal   *prometheus.CounterVec
}

func newAPIMetrics(reg prometheus.Registerer) *apiMetrics {
	m := &apiMetrics{
		executeTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "oracle_execute_total",
			Help: "Total executed commands by type and result.",
		}, []string{"command", "result"}),
		queryTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "oracle_query_total",
			Help: "Total queries by result.",
		}, []string{"result"}),
	}
	reg.MustRegister(m.executeTotal, m.queryTotal)
	return m
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (m *apiMetrics) observeExecute(command string, err error) {
	m.executeTotal.WithLabelValues(command, result(err)).Inc()
}

func (m *apiMetrics) observeQuery(err error) {
	m.queryTotal.WithLabelValues(result(err)).Inc()
}
