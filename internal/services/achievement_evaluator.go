package services

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/logicaltomy/CONDOR-BACK-TS/internal/contextutils"
	"github.com/logicaltomy/CONDOR-BACK-TS/internal/models"
	"github.com/logicaltomy/CONDOR-BACK-TS/internal/repositories"
)

type achievementEvaluator struct {
	aggregator MetricsAggregator
	catalog    ConditionCatalog
	ledger     AwardLedger
	logger     *zap.Logger
}

// NewAchievementEvaluator composes the aggregator, catalog and ledger
func NewAchievementEvaluator(
	aggregator MetricsAggregator,
	catalog ConditionCatalog,
	ledger AwardLedger,
	logger *zap.Logger,
) AchievementEvaluator {
	return &achievementEvaluator{
		aggregator: aggregator,
		catalog:    catalog,
		ledger:     ledger,
		logger:     logger,
	}
}

// TryEarn grants the lowest-id achievement the user newly qualifies for.
// A user that qualifies for nothing new gets OutcomeNotQualified and a nil
// error; errors are reserved for collaborator, catalog and storage failures.
// Callers collect every earned achievement by calling until NotQualified.
func (e *achievementEvaluator) TryEarn(ctx context.Context, userID int64) (*models.EarnResult, error) {
	if userID <= 0 {
		return nil, InvalidInputError("user_id", "must be positive")
	}

	ctx, span := tracer.Start(ctx, "AchievementEvaluator.TryEarn")
	defer span.End()
	span.SetAttributes(attribute.Int64("user.id", userID))

	logger := contextutils.GetLogger(ctx, e.logger).With(zap.Int64("user_id", userID))

	result, outcome, err := e.tryEarn(ctx, userID, logger)
	evaluationsTotal.WithLabelValues(outcome).Inc()
	span.SetAttributes(attribute.String("evaluation.outcome", outcome))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
		return nil, err
	}
	return result, nil
}

func (e *achievementEvaluator) tryEarn(ctx context.Context, userID int64, logger *zap.Logger) (*models.EarnResult, string, error) {
	metrics, err := e.aggregator.Compute(ctx, userID)
	if err != nil {
		logger.Warn("Metrics unavailable, evaluation aborted", zap.Error(err))
		if IsCollaboratorUnavailable(err) {
			return nil, outcomeCollaboratorUnavailable, err
		}
		return nil, outcomeCollaboratorUnavailable, NewCollaboratorUnavailableError("user metrics unavailable", err)
	}

	achievements, err := e.catalog.AllAchievements(ctx)
	if err != nil {
		return nil, outcomeError, fmt.Errorf("failed to load achievement catalog: %w", err)
	}

	ordered := slices.Clone(achievements)
	slices.SortFunc(ordered, func(a, b *models.Achievement) int {
		return cmp.Compare(a.ID, b.ID)
	})

	for _, achievement := range ordered {
		earned, err := e.ledger.HasAward(ctx, userID, achievement.ID)
		if err != nil {
			return nil, outcomeError, err
		}
		if earned {
			continue
		}

		condition, err := e.catalog.ConditionFor(ctx, achievement)
		if err != nil {
			if errors.Is(err, ErrConditionUnresolved) {
				logger.Error("Achievement references a missing condition",
					zap.Int64("achievement_id", achievement.ID),
					zap.Int64("condition_id", achievement.ConditionID))
				return nil, outcomeCatalogInconsistency, NewCatalogInconsistencyError(achievement.ID, achievement.ConditionID, err)
			}
			return nil, outcomeError, err
		}

		value, ok := metrics.Value(condition.Type)
		if !ok {
			logger.Error("Condition has an unknown type",
				zap.Int64("achievement_id", achievement.ID),
				zap.Int64("condition_id", condition.ID),
				zap.Stringer("type", condition.Type))
			return nil, outcomeCatalogInconsistency, NewCatalogInconsistencyError(
				achievement.ID, condition.ID, fmt.Errorf("unknown condition type %s", condition.Type))
		}

		if value.LessThan(condition.Threshold) {
			continue
		}

		award, err := e.ledger.Grant(ctx, userID, achievement.ID)
		if errors.Is(err, repositories.ErrDuplicateAward) {
			// a concurrent evaluation granted it first
			grantConflictsTotal.Inc()
			continue
		}
		if err != nil {
			return nil, outcomeError, err
		}

		logger.Info("Achievement granted",
			zap.Int64("achievement_id", achievement.ID),
			zap.String("achievement", achievement.Name),
			zap.Int64("award_id", award.ID))

		return &models.EarnResult{
			Outcome:     models.OutcomeGranted,
			Achievement: achievement,
			Award:       award,
			Metrics:     metrics,
		}, string(models.OutcomeGranted), nil
	}

	logger.Debug("No new achievement qualifies",
		zap.String("distance_km", metrics.TotalDistanceKm.String()),
		zap.Int("distinct_regions", metrics.DistinctRegionCount),
		zap.Int("completed_routes", metrics.CompletedRouteCount))

	return &models.EarnResult{
		Outcome: models.OutcomeNotQualified,
		Metrics: metrics,
	}, string(models.OutcomeNotQualified), nil
}
