package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsMetric = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sparkgraph_requests_total",
		Help: "The total number of spark graph requests by response status",
	}, []string{"status"})

	upstreamErrorsMetric = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sparkgraph_upstream_errors_total",
		Help: "Total number of failed market data fetches",
	})

	renderDurationMetric = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "sparkgraph_render_seconds",
		Help:    "Time spent rendering each spark graph",
		Buckets: prometheus.DefBuckets,
	})
)
