package metrics

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/moimran/netdata/pkg/application"
)

// HTTPRequestsTotal counts handled requests by method and status class.
var HTTPRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "netdata_http_requests_total",
		Help: "HTTP requests handled by the admin UI.",
	},
	[]string{"method", "status"},
)

// UpstreamRequestsTotal counts calls to the IPAM API by entity and outcome.
var UpstreamRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "netdata_upstream_requests_total",
		Help: "Requests issued to the upstream IPAM API.",
	},
	[]string{"entity", "outcome"},
)

type PrometheusController struct {
	path string
}

func NewPrometheusController(path string) application.Controller {
	if path == "" {
		path = "/debug/prometheus"
	}
	return &PrometheusController{path: path}
}

func (c *PrometheusController) Key() string {
	return c.path
}

func (c *PrometheusController) Register(r *mux.Router) {
	r.Handle(c.path, promhttp.Handler()).Methods(http.MethodGet)
}
