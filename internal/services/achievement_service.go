package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/logicaltomy/CONDOR-BACK-TS/internal/clients"
	"github.com/logicaltomy/CONDOR-BACK-TS/internal/models"
	"github.com/logicaltomy/CONDOR-BACK-TS/internal/repositories"
)

type achievementService struct {
	achievements repositories.AchievementRepository
	conditions   repositories.ConditionRepository
	statuses     StatusSource
	logger       *zap.Logger
}

// NewAchievementService creates the achievement administration service
func NewAchievementService(
	achievements repositories.AchievementRepository,
	conditions repositories.ConditionRepository,
	statuses StatusSource,
	logger *zap.Logger,
) AchievementService {
	return &achievementService{
		achievements: achievements,
		conditions:   conditions,
		statuses:     statuses,
		logger:       logger,
	}
}

func (s *achievementService) ListAchievements(ctx context.Context) ([]*models.Achievement, error) {
	achievements, err := s.achievements.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list achievements: %w", err)
	}
	return achievements, nil
}

func (s *achievementService) GetAchievement(ctx context.Context, id int64) (*models.Achievement, error) {
	if id <= 0 {
		return nil, InvalidInputError("id", "must be positive")
	}

	achievement, err := s.achievements.GetByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, EntityNotFoundError("achievement", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get achievement: %w", err)
	}
	return achievement, nil
}

// CreateAchievement validates the referenced condition and status, then
// stores the achievement
func (s *achievementService) CreateAchievement(ctx context.Context, req *CreateAchievementRequest) (*models.Achievement, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	if _, err := s.conditions.GetByID(ctx, req.ConditionID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, conditionNotFound(req.ConditionID)
		}
		return nil, fmt.Errorf("failed to get condition: %w", err)
	}

	if err := s.checkStatus(ctx, req.StatusID); err != nil {
		return nil, err
	}

	achievement := &models.Achievement{
		Name:        req.Name,
		Description: req.Description,
		Icon:        req.Icon,
		StatusID:    req.StatusID,
		ConditionID: req.ConditionID,
	}

	if err := s.achievements.Create(ctx, achievement); err != nil {
		if errors.Is(err, repositories.ErrReferenceViolation) {
			// condition removed between the check and the insert
			return nil, conditionNotFound(req.ConditionID)
		}
		return nil, fmt.Errorf("failed to create achievement: %w", err)
	}

	s.logger.Info("Achievement created",
		zap.Int64("achievement_id", achievement.ID),
		zap.String("name", achievement.Name),
		zap.Int64("condition_id", achievement.ConditionID))

	return achievement, nil
}

func (s *achievementService) UpdateName(ctx context.Context, req *UpdateNameRequest) (*models.Achievement, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	return s.patch(ctx, req.AchievementID, func() error {
		return s.achievements.UpdateName(ctx, req.AchievementID, req.Name)
	})
}

func (s *achievementService) UpdateDescription(ctx context.Context, req *UpdateDescriptionRequest) (*models.Achievement, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	return s.patch(ctx, req.AchievementID, func() error {
		return s.achievements.UpdateDescription(ctx, req.AchievementID, req.Description)
	})
}

func (s *achievementService) UpdateStatus(ctx context.Context, req *UpdateStatusRequest) (*models.Achievement, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	if err := s.checkStatus(ctx, req.StatusID); err != nil {
		return nil, err
	}
	return s.patch(ctx, req.AchievementID, func() error {
		return s.achievements.UpdateStatus(ctx, req.AchievementID, req.StatusID)
	})
}

func (s *achievementService) UpdateIcon(ctx context.Context, req *UpdateIconRequest) (*models.Achievement, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	return s.patch(ctx, req.AchievementID, func() error {
		return s.achievements.UpdateIcon(ctx, req.AchievementID, req.Icon)
	})
}

// patch applies a single column update and returns the stored achievement
func (s *achievementService) patch(ctx context.Context, id int64, update func() error) (*models.Achievement, error) {
	if err := update(); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, EntityNotFoundError("achievement", id)
		}
		return nil, fmt.Errorf("failed to update achievement: %w", err)
	}
	return s.GetAchievement(ctx, id)
}

// checkStatus confirms the status exists in the users service catalog
func (s *achievementService) checkStatus(ctx context.Context, statusID int64) error {
	_, err := s.statuses.GetStatus(ctx, statusID)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, clients.ErrNotFound):
		notFound := EntityNotFoundError("status", statusID)
		notFound.Code = "STATUS_NOT_FOUND"
		return notFound
	default:
		s.logger.Warn("Status lookup failed",
			zap.Int64("status_id", statusID),
			zap.Error(err))
		return NewCollaboratorUnavailableError("status lookup failed", err)
	}
}

func conditionNotFound(conditionID int64) *ServiceError {
	err := EntityNotFoundError("condition", conditionID)
	err.Code = "CONDITION_NOT_FOUND"
	return err
}
