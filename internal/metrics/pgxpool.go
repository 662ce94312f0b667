package metrics

import (
	"strconv"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
)

// RegisterShardPoolMetrics exposes pgx connection pool statistics of every
// central server database as Prometheus gauges labelled by central server id.
func RegisterShardPoolMetrics(reg prometheus.Registerer, pools map[int]*pgxpool.Pool) error {
	for id, pool := range pools {
		labels := prometheus.Labels{"central_server": strconv.Itoa(id)}
		stat := pool.Stat
		collectors := []prometheus.Collector{
			prometheus.NewGaugeFunc(prometheus.GaugeOpts{
				Name:        "pgxpool_acquired_conns",
				Help:        "Number of currently acquired connections in the pool",
				ConstLabels: labels,
			}, func() float64 {
				return float64(stat().AcquiredConns())
			}),
			prometheus.NewGaugeFunc(prometheus.GaugeOpts{
				Name:        "pgxpool_max_conns",
				Help:        "Maximum number of connections in the pool",
				ConstLabels: labels,
			}, func() float64 {
				return float64(stat().MaxConns())
			}),
			prometheus.NewGaugeFunc(prometheus.GaugeOpts{
				Name:        "pgxpool_total_conns",
				Help:        "Total number of connections in the pool",
				ConstLabels: labels,
			}, func() float64 {
				return float64(stat().TotalConns())
			}),
			prometheus.NewGaugeFunc(prometheus.GaugeOpts{
				Name:        "pgxpool_idle_conns",
				Help:        "Number of idle connections in the pool",
				ConstLabels: labels,
			}, func() float64 {
				return float64(stat().IdleConns())
			}),
		}
		for _, c := range collectors {
			if err := reg.Register(c); err != nil {
				return err
			}
		}
	}
	return nil
}
