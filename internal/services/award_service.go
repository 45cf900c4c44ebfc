package services

import (
	"context"
	"fmt"

	"github.com/logicaltomy/CONDOR-BACK-TS/internal/models"
	"github.com/logicaltomy/CONDOR-BACK-TS/internal/repositories"
)

type awardService struct {
	awards       repositories.AwardRepository
	achievements AchievementService
}

// NewAwardService creates the read-only award query service
func NewAwardService(awards repositories.AwardRepository, achievements AchievementService) AwardService {
	return &awardService{
		awards:       awards,
		achievements: achievements,
	}
}

// ListAwardsForUser returns the user's awards, oldest first
func (s *awardService) ListAwardsForUser(ctx context.Context, userID int64) ([]*models.Award, error) {
	if userID <= 0 {
		return nil, InvalidInputError("user_id", "must be positive")
	}

	awards, err := s.awards.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list awards: %w", err)
	}
	return awards, nil
}

// CountAwards returns how many users hold the achievement
func (s *awardService) CountAwards(ctx context.Context, achievementID int64) (*models.AwardCount, error) {
	if _, err := s.achievements.GetAchievement(ctx, achievementID); err != nil {
		return nil, err
	}

	count, err := s.awards.CountByAchievement(ctx, achievementID)
	if err != nil {
		return nil, fmt.Errorf("failed to count awards: %w", err)
	}
	return &models.AwardCount{AchievementID: achievementID, Count: count}, nil
}
