package catalog

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	upstreamRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "menu_upstream_requests_total",
		Help: "Total upstream catalog API requests by endpoint and status",
	}, []string{"endpoint", "status"})

	upstreamRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "menu_upstream_request_duration_seconds",
		Help:    "Upstream catalog API request duration in seconds by endpoint",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
	}, []string{"endpoint"})

	upstreamErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "menu_upstream_errors_total",
		Help: "Total upstream catalog API failures by class",
	}, []string{"class"})

	staleFallbacksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "menu_stale_fallbacks_total",
		Help: "Total operations served from an expired cache entry after an upstream failure",
	}, []string{"operation"})
)
