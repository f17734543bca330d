package mcp

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/routy-labs/routy/internal/core/domain"
)

// Tool call outcomes used as metric labels.
const (
	outcomeOK          = "ok"
	outcomeRejected    = "rejected"
	outcomeRateLimited = "rate_limited"
	outcomeError       = "error"
)

// metrics holds the Prometheus collectors of one server. Each server owns a
// registry so that several servers can live in one process.
type metrics struct {
	registry *prometheus.Registry
	calls    *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

func newMetrics() *metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &metrics{
		registry: reg,
		calls: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "routy_mcp_tool_calls_total",
			Help: "Total number of MCP tool calls by tool and outcome",
		}, []string{"tool", "outcome"}),
		latency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "routy_mcp_tool_duration_seconds",
			Help:    "MCP tool call latency in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30},
		}, []string{"tool"}),
	}
}

// observe records one finished call.
func (m *metrics) observe(tool string, start time.Time, err error) {
	m.calls.WithLabelValues(tool, outcome(err)).Inc()
	m.latency.WithLabelValues(tool).Observe(time.Since(start).Seconds())
}

func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func outcome(err error) string {
	switch {
	case err == nil:
		return outcomeOK
	case errors.Is(err, ErrRateLimited):
		return outcomeRateLimited
	case isRecoverable(err):
		return outcomeRejected
	default:
		return outcomeError
	}
}

// isRecoverable reports whether err is caused by the request rather than the system.
func isRecoverable(err error) bool {
	return errors.Is(err, domain.ErrInvalidTarget) ||
		errors.Is(err, domain.ErrInvalidInput) ||
		errors.Is(err, domain.ErrNoCandidate) ||
		errors.Is(err, domain.ErrNoDiverseAlternative) ||
		errors.Is(err, domain.ErrSessionExpired)
}
