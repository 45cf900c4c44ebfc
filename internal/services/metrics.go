package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("condor.services")

var (
	// evaluationsTotal counts earn attempts by result.
	// Labels: outcome (granted, not_qualified, collaborator_unavailable, catalog_inconsistency, error)
	evaluationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "condor",
		Subsystem: "achievements",
		Name:      "evaluations_total",
		Help:      "Achievement earn attempts by outcome",
	}, []string{"outcome"})

	// grantConflictsTotal counts grants rejected by the award uniqueness constraint
	grantConflictsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "condor",
		Subsystem: "achievements",
		Name:      "grant_conflicts_total",
		Help:      "Award grants that lost a race to a concurrent evaluation",
	})

	// metricsComputeDuration measures the collaborator fan-out.
	// Labels: status (success, error)
	metricsComputeDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "condor",
		Subsystem: "achievements",
		Name:      "metrics_compute_duration_seconds",
		Help:      "Time spent aggregating user metrics from collaborators",
		Buckets:   prometheus.DefBuckets,
	}, []string{"status"})
)

const (
	outcomeCollaboratorUnavailable = "collaborator_unavailable"
	outcomeCatalogInconsistency    = "catalog_inconsistency"
	outcomeError                   = "error"
)
