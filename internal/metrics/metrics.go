// Package metrics declares the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	UpstreamRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tagboard_upstream_requests_total",
		Help: "Requests sent to the tag collection endpoint.",
	}, []string{"method", "status"})

	UpstreamRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tagboard_upstream_request_duration_seconds",
		Help:    "Latency of requests to the tag collection endpoint.",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
	}, []string{"method"})

	CacheLookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tagboard_query_cache_lookups_total",
		Help: "Query cache lookups by scope and result (hit, miss).",
	}, []string{"scope", "result"})

	CacheInvalidationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tagboard_query_cache_invalidations_total",
		Help: "Query cache scope invalidations.",
	}, []string{"scope"})

	CacheStaleDiscardsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tagboard_query_cache_stale_discards_total",
		Help: "Fetch results dropped because their scope was invalidated mid-flight.",
	}, []string{"scope"})

	TagsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tagboard_tags_created_total",
		Help: "Tags successfully submitted to the collection.",
	})
)
