package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewServer creates the metrics listener. It serves the gatherer's metrics
// on /metrics and, when ready is non-nil, the central server readiness
// check on /readyz, both without Basic auth.
func NewServer(addr string, gatherer prometheus.Gatherer, ready http.Handler) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	if ready != nil {
		mux.Handle("GET /readyz", ready)
	}

	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
}
