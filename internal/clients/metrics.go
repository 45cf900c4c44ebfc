package clients

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// requestDuration measures collaborator call latency.
	// Labels: service (users, route_sessions, routes, statuses), outcome (ok, not_found, timeout, error)
	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "condor",
		Subsystem: "collaborator",
		Name:      "request_duration_seconds",
		Help:      "Collaborator request latency in seconds",
		Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
	}, []string{"service", "outcome"})

	// regionCacheLookups counts route region cache hits and misses.
	// Labels: result (hit, miss)
	regionCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "condor",
		Subsystem: "collaborator",
		Name:      "region_cache_lookups_total",
		Help:      "Route region cache lookups by result",
	}, []string{"result"})
)
