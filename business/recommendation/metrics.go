package recommendation

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RecoRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reco_runs_total",
			Help: "Count of recommendation runs by final status.",
		},
		[]string{"status"},
	)

	RecoCustomersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reco_customers_total",
			Help: "Count of customers processed by per-customer outcome.",
		},
		[]string{"result"},
	)

	RecoItemsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reco_items_total",
			Help: "Count of recommendation items produced by scenario.",
		},
		[]string{"scenario"},
	)

	RecoRunDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "reco_run_duration_seconds",
		Help:    "Wall-clock duration of batch recommendation runs.",
		Buckets: prometheus.ExponentialBuckets(0.1, 4, 8),
	})
)

func init() {
	prometheus.MustRegister(
		RecoRunsTotal,
		RecoCustomersTotal,
		RecoItemsTotal,
		RecoRunDuration,
	)
}
