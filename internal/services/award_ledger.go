package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/logicaltomy/CONDOR-BACK-TS/internal/models"
	"github.com/logicaltomy/CONDOR-BACK-TS/internal/repositories"
)

type awardLedger struct {
	awards repositories.AwardRepository
	logger *zap.Logger
}

// NewAwardLedger creates the award ledger. Uniqueness is enforced by the
// awards table constraint, not by HasAward.
func NewAwardLedger(awards repositories.AwardRepository, logger *zap.Logger) AwardLedger {
	return &awardLedger{
		awards: awards,
		logger: logger,
	}
}

func (l *awardLedger) HasAward(ctx context.Context, userID, achievementID int64) (bool, error) {
	exists, err := l.awards.Exists(ctx, userID, achievementID)
	if err != nil {
		return false, fmt.Errorf("failed to check award: %w", err)
	}
	return exists, nil
}

func (l *awardLedger) Grant(ctx context.Context, userID, achievementID int64) (*models.Award, error) {
	award := &models.Award{
		UserID:        userID,
		AchievementID: achievementID,
	}

	if err := l.awards.Create(ctx, award); err != nil {
		if errors.Is(err, repositories.ErrDuplicateAward) {
			l.logger.Debug("Award already granted",
				zap.Int64("user_id", userID),
				zap.Int64("achievement_id", achievementID))
			return nil, err
		}
		return nil, fmt.Errorf("failed to grant award: %w", err)
	}

	return award, nil
}
