// file: internal/repositories/interfaces.go
package repositories

import (
	"context"

	"github.com/logicaltomy/CONDOR-BACK-TS/internal/models"
)

// ConditionTypeRepository reads the seeded condition type catalog
type ConditionTypeRepository interface {
	List(ctx context.Context) ([]*models.ConditionTypeInfo, error)
	GetByID(ctx context.Context, id models.ConditionType) (*models.ConditionTypeInfo, error)
}

// ConditionRepository defines the contract for condition data operations
type ConditionRepository interface {
	Create(ctx context.Context, condition *models.Condition) error
	GetByID(ctx context.Context, id int64) (*models.Condition, error)
	List(ctx context.Context) ([]*models.Condition, error)

	// Update persists type, threshold and description together so the
	// description never drifts from the values it is derived from
	Update(ctx context.Context, condition *models.Condition) error
}

// AchievementRepository defines the contract for achievement data operations
type AchievementRepository interface {
	Create(ctx context.Context, achievement *models.Achievement) error
	GetByID(ctx context.Context, id int64) (*models.Achievement, error)

	// List returns the whole catalog in ascending id order
	List(ctx context.Context) ([]*models.Achievement, error)

	UpdateName(ctx context.Context, id int64, name string) error
	UpdateDescription(ctx context.Context, id int64, description string) error
	UpdateStatus(ctx context.Context, id int64, statusID int64) error
	UpdateIcon(ctx context.Context, id int64, icon []byte) error
}

// AwardRepository defines the contract for granted awards
type AwardRepository interface {
	Exists(ctx context.Context, userID, achievementID int64) (bool, error)

	// Create inserts a new award and fails with ErrDuplicateAward when the
	// user already holds the achievement
	Create(ctx context.Context, award *models.Award) error

	ListByUser(ctx context.Context, userID int64) ([]*models.Award, error)
	CountByAchievement(ctx context.Context, achievementID int64) (int64, error)
}
