package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/logicaltomy/CONDOR-BACK-TS/internal/clients"
	"github.com/logicaltomy/CONDOR-BACK-TS/internal/models"
)

const defaultMaxConcurrentLookups = 8

type metricsAggregator struct {
	profiles      ProfileSource
	sessions      SessionSource
	routes        RegionSource
	maxConcurrent int
	logger        *zap.Logger
}

// NewMetricsAggregator creates the collaborator fan-out. maxConcurrent bounds
// the number of route lookups in flight for one user.
func NewMetricsAggregator(
	profiles ProfileSource,
	sessions SessionSource,
	routes RegionSource,
	maxConcurrent int,
	logger *zap.Logger,
) MetricsAggregator {
	if maxConcurrent <= 0 {
		maxConcurrent = defaultMaxConcurrentLookups
	}
	return &metricsAggregator{
		profiles:      profiles,
		sessions:      sessions,
		routes:        routes,
		maxConcurrent: maxConcurrent,
		logger:        logger,
	}
}

// Compute fetches distance and sessions concurrently, then resolves the
// region of every distinct completed route. The first failure cancels the
// remaining lookups and no partial metrics are returned.
func (a *metricsAggregator) Compute(ctx context.Context, userID int64) (models.UserMetrics, error) {
	ctx, span := tracer.Start(ctx, "MetricsAggregator.Compute")
	defer span.End()
	span.SetAttributes(attribute.Int64("user.id", userID))

	start := time.Now()

	var (
		distance  decimal.Decimal
		completed int
		regions   int
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		km, err := a.profiles.CumulativeDistance(gctx, userID)
		if err != nil {
			return collaboratorFailure("profile", userID, err)
		}
		distance = km
		return nil
	})

	g.Go(func() error {
		sessions, err := a.sessions.ListSessionsForUser(gctx, userID)
		switch {
		case errors.Is(err, clients.ErrNotFound):
			// no session log yet
			sessions = nil
		case err != nil:
			return collaboratorFailure("session log", userID, err)
		}

		routeIDs := make([]int64, 0, len(sessions))
		seen := make(map[int64]struct{}, len(sessions))
		for _, s := range sessions {
			if !s.Completed() {
				continue
			}
			completed++
			if _, ok := seen[s.RouteID]; !ok {
				seen[s.RouteID] = struct{}{}
				routeIDs = append(routeIDs, s.RouteID)
			}
		}

		n, err := a.countRegions(gctx, userID, routeIDs)
		if err != nil {
			return err
		}
		regions = n
		return nil
	})

	err := g.Wait()

	status := "success"
	if err != nil {
		status = "error"
	}
	metricsComputeDuration.WithLabelValues(status).Observe(time.Since(start).Seconds())

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "metrics aggregation failed")
		return models.UserMetrics{}, err
	}

	metrics := models.UserMetrics{
		TotalDistanceKm:     distance,
		DistinctRegionCount: regions,
		CompletedRouteCount: completed,
	}

	span.SetAttributes(
		attribute.String("metrics.distance_km", distance.String()),
		attribute.Int("metrics.distinct_regions", regions),
		attribute.Int("metrics.completed_routes", completed),
	)
	a.logger.Debug("User metrics computed",
		zap.Int64("user_id", userID),
		zap.String("distance_km", distance.String()),
		zap.Int("distinct_regions", regions),
		zap.Int("completed_routes", completed),
		zap.Duration("elapsed", time.Since(start)))

	return metrics, nil
}

// countRegions resolves each route to its region and counts distinct regions
func (a *metricsAggregator) countRegions(ctx context.Context, userID int64, routeIDs []int64) (int, error) {
	if len(routeIDs) == 0 {
		return 0, nil
	}

	regionIDs := make([]int64, len(routeIDs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.maxConcurrent)

	for i, routeID := range routeIDs {
		g.Go(func() error {
			regionID, err := a.routes.RegionOfRoute(gctx, routeID)
			if err != nil {
				return collaboratorFailure(fmt.Sprintf("route %d", routeID), userID, err)
			}
			regionIDs[i] = regionID
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return 0, err
	}

	distinct := make(map[int64]struct{}, len(regionIDs))
	for _, id := range regionIDs {
		distinct[id] = struct{}{}
	}
	return len(distinct), nil
}

func collaboratorFailure(source string, userID int64, err error) error {
	return NewCollaboratorUnavailableError(source+" lookup failed", err).WithContext(&ErrorContext{
		UserID:    &userID,
		Operation: "compute_metrics",
	})
}
