package sync

import "github.com/prometheus/client_golang/prometheus"

var (
	queueDepth = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "pos_sync_queue_depth",
		Help: "Approximate number of sales waiting to be synced",
	})
	pushedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pos_sync_pushed_total",
		Help: "Sale sync attempts grouped by outcome",
	}, []string{"outcome"})
)

func init() {
	prometheus.MustRegister(queueDepth, pushedTotal)
}

func observeOutcome(outcome string) {
	pushedTotal.WithLabelValues(outcome).Inc()
}
