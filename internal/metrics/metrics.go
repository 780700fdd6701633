package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	FetchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "govsignal_fetch_total",
		Help: "Feed fetch attempts by source and outcome.",
	}, []string{"source", "outcome"})

	FetchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "govsignal_fetch_duration_seconds",
		Help:    "Time spent fetching one source.",
		Buckets: prometheus.DefBuckets,
	}, []string{"source"})

	ItemsFetched = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "govsignal_items_fetched_total",
		Help: "Raw items pulled off feeds by source.",
	}, []string{"source"})

	RunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "govsignal_runs_total",
		Help: "Pipeline runs by trigger and outcome.",
	}, []string{"trigger", "outcome"})

	RunDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "govsignal_run_duration_seconds",
		Help:    "End-to-end pipeline run time.",
		Buckets: []float64{1, 5, 10, 30, 60, 120, 300},
	})

	SignalsStored = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "govsignal_signals_stored_total",
		Help: "Signals upserted into the store by feed group.",
	}, []string{"feed_group"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "govsignal_http_requests_total",
		Help: "API requests by method, path and status.",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "govsignal_http_request_duration_seconds",
		Help:    "API request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})
)
