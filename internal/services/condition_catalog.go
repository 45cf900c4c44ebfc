package services

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/logicaltomy/CONDOR-BACK-TS/internal/models"
	"github.com/logicaltomy/CONDOR-BACK-TS/internal/repositories"
)

// ErrConditionUnresolved is returned when an achievement references a
// condition that does not exist
var ErrConditionUnresolved = errors.New("condition cannot be resolved")

type conditionCatalog struct {
	achievements repositories.AchievementRepository
	conditions   repositories.ConditionRepository
}

// NewConditionCatalog creates the read side of the achievement catalog
func NewConditionCatalog(achievements repositories.AchievementRepository, conditions repositories.ConditionRepository) ConditionCatalog {
	return &conditionCatalog{
		achievements: achievements,
		conditions:   conditions,
	}
}

// AllAchievements returns a snapshot of the catalog sorted by ascending id
func (c *conditionCatalog) AllAchievements(ctx context.Context) ([]*models.Achievement, error) {
	achievements, err := c.achievements.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list achievements: %w", err)
	}
	slices.SortFunc(achievements, func(a, b *models.Achievement) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return achievements, nil
}

// ConditionFor resolves the condition an achievement references
func (c *conditionCatalog) ConditionFor(ctx context.Context, achievement *models.Achievement) (*models.Condition, error) {
	condition, err := c.conditions.GetByID(ctx, achievement.ConditionID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("achievement %d: condition %d: %w", achievement.ID, achievement.ConditionID, ErrConditionUnresolved)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get condition %d: %w", achievement.ConditionID, err)
	}
	return condition, nil
}
