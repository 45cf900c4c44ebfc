package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/logicaltomy/CONDOR-BACK-TS/internal/models"
	"github.com/logicaltomy/CONDOR-BACK-TS/internal/repositories"
)

type conditionService struct {
	types      repositories.ConditionTypeRepository
	conditions repositories.ConditionRepository
	logger     *zap.Logger
}

// NewConditionService creates the condition administration service
func NewConditionService(
	types repositories.ConditionTypeRepository,
	conditions repositories.ConditionRepository,
	logger *zap.Logger,
) ConditionService {
	return &conditionService{
		types:      types,
		conditions: conditions,
		logger:     logger,
	}
}

func (s *conditionService) ListConditionTypes(ctx context.Context) ([]*models.ConditionTypeInfo, error) {
	types, err := s.types.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list condition types: %w", err)
	}
	return types, nil
}

func (s *conditionService) GetConditionType(ctx context.Context, id int64) (*models.ConditionTypeInfo, error) {
	if id <= 0 {
		return nil, InvalidInputError("id", "must be positive")
	}

	info, err := s.types.GetByID(ctx, models.ConditionType(id))
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, EntityNotFoundError("condition type", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get condition type: %w", err)
	}
	return info, nil
}

func (s *conditionService) ListConditions(ctx context.Context) ([]*models.Condition, error) {
	conditions, err := s.conditions.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list conditions: %w", err)
	}
	return conditions, nil
}

func (s *conditionService) GetCondition(ctx context.Context, id int64) (*models.Condition, error) {
	if id <= 0 {
		return nil, InvalidInputError("id", "must be positive")
	}

	condition, err := s.conditions.GetByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, EntityNotFoundError("condition", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get condition: %w", err)
	}
	return condition, nil
}

// CreateCondition stores a new condition with its derived description
func (s *conditionService) CreateCondition(ctx context.Context, req *CreateConditionRequest) (*models.Condition, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	conditionType := models.ConditionType(req.Type)
	condition := &models.Condition{
		Type:        conditionType,
		Threshold:   req.Threshold,
		Description: models.DescribeCondition(conditionType, req.Threshold),
	}

	if err := s.conditions.Create(ctx, condition); err != nil {
		if errors.Is(err, repositories.ErrReferenceViolation) {
			return nil, EntityNotFoundError("condition type", req.Type)
		}
		return nil, fmt.Errorf("failed to create condition: %w", err)
	}

	s.logger.Info("Condition created",
		zap.Int64("condition_id", condition.ID),
		zap.Stringer("type", condition.Type),
		zap.String("threshold", condition.Threshold.String()))

	return condition, nil
}

// UpdateThreshold changes the threshold and regenerates the description
func (s *conditionService) UpdateThreshold(ctx context.Context, req *UpdateThresholdRequest) (*models.Condition, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	return s.mutate(ctx, req.ConditionID, func(c *models.Condition) {
		c.Threshold = req.Threshold
	})
}

// UpdateType changes the compared metric and regenerates the description
func (s *conditionService) UpdateType(ctx context.Context, req *UpdateConditionTypeRequest) (*models.Condition, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	return s.mutate(ctx, req.ConditionID, func(c *models.Condition) {
		c.Type = models.ConditionType(req.Type)
	})
}

func (s *conditionService) mutate(ctx context.Context, id int64, apply func(*models.Condition)) (*models.Condition, error) {
	condition, err := s.GetCondition(ctx, id)
	if err != nil {
		return nil, err
	}

	apply(condition)
	condition.Description = models.DescribeCondition(condition.Type, condition.Threshold)

	if err := s.conditions.Update(ctx, condition); err != nil {
		switch {
		case errors.Is(err, repositories.ErrNotFound):
			return nil, EntityNotFoundError("condition", id)
		case errors.Is(err, repositories.ErrReferenceViolation):
			return nil, EntityNotFoundError("condition type", int64(condition.Type))
		}
		return nil, fmt.Errorf("failed to update condition: %w", err)
	}

	s.logger.Info("Condition updated",
		zap.Int64("condition_id", condition.ID),
		zap.String("description", condition.Description))

	return condition, nil
}
