package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vidtube/backend/internal/models"
)

// Metrics holds the service's Prometheus collectors.
type Metrics struct {
	Toggles         *prometheus.CounterVec
	ToggleConflicts *prometheus.CounterVec
	Responses       *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Toggles: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "vidtube",
				Name:      "toggles_total",
				Help:      "Total number of completed like and subscription toggles",
			},
			[]string{"edge_kind", "state"},
		),
		ToggleConflicts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "vidtube",
				Name:      "toggle_conflicts_total",
				Help:      "Total number of toggles that lost a create race and removed the edge instead",
			},
			[]string{"edge_kind"},
		),
		Responses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "vidtube",
				Name:      "http_responses_total",
				Help:      "Total number of HTTP responses by method and status code",
			},
			[]string{"method", "code"},
		),
	}

	for _, c := range []prometheus.Collector{m.Toggles, m.ToggleConflicts, m.Responses} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// ObserveToggle counts a completed toggle.
func (m *Metrics) ObserveToggle(kind models.EdgeKind, state models.ToggleState) {
	m.Toggles.WithLabelValues(string(kind), string(state)).Inc()
}

// ObserveConflict counts a toggle that absorbed a uniqueness conflict.
func (m *Metrics) ObserveConflict(kind models.EdgeKind) {
	m.ToggleConflicts.WithLabelValues(string(kind)).Inc()
}

// ObserveResponse counts an HTTP response.
func (m *Metrics) ObserveResponse(method string, status int) {
	m.Responses.WithLabelValues(method, strconv.Itoa(status)).Inc()
}

// Handler exposes the collectors gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
