package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "glutenornot",
		Name:      "requests_total",
		Help:      "API requests by endpoint and outcome.",
	}, []string{"endpoint", "outcome"})

	upstreamDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "glutenornot",
		Name:      "upstream_duration_seconds",
		Help:      "Latency of outbound calls by upstream service.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"service"})
)
