package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	forwardRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "central_server_requests_total",
			Help: "Total number of requests forwarded to central servers",
		},
		[]string{"central_server", "method", "outcome"},
	)

	forwardRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "central_server_request_duration_seconds",
			Help:    "Duration of requests forwarded to central servers",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"central_server", "method"},
	)

	shardLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "central_server_db_queries_total",
			Help: "Total number of membership and count queries against central server databases",
		},
		[]string{"central_server", "query", "outcome"},
	)
)

// ObserveForward records one forwarded request.
func ObserveForward(shardID int, method string, start time.Time, err error) {
	id := strconv.Itoa(shardID)
	forwardRequestsTotal.WithLabelValues(id, method, outcome(err)).Inc()
	forwardRequestDuration.WithLabelValues(id, method).Observe(time.Since(start).Seconds())
}

// ObserveShardQuery records one database query against a central server.
func ObserveShardQuery(shardID int, query string, err error) {
	shardLookupsTotal.WithLabelValues(strconv.Itoa(shardID), query, outcome(err)).Inc()
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
