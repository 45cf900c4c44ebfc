// file: internal/services/interface.go
package services

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/logicaltomy/CONDOR-BACK-TS/internal/models"
)

// ===============================
// COLLABORATOR CONTRACTS
// ===============================

// ProfileSource provides a user's cumulative distance
type ProfileSource interface {
	CumulativeDistance(ctx context.Context, userID int64) (decimal.Decimal, error)
}

// SessionSource lists a user's route sessions
type SessionSource interface {
	ListSessionsForUser(ctx context.Context, userID int64) ([]models.RouteSession, error)
}

// RegionSource resolves a route to its region id
type RegionSource interface {
	RegionOfRoute(ctx context.Context, routeID int64) (int64, error)
}

// StatusSource reads the shared status catalog
type StatusSource interface {
	GetStatus(ctx context.Context, statusID int64) (*models.Status, error)
}

// ===============================
// EVALUATION ENGINE
// ===============================

// MetricsAggregator computes the signals conditions are evaluated against
type MetricsAggregator interface {
	Compute(ctx context.Context, userID int64) (models.UserMetrics, error)
}

// ConditionCatalog gives read access to achievements and their conditions
type ConditionCatalog interface {
	AllAchievements(ctx context.Context) ([]*models.Achievement, error)

	// ConditionFor fails with ErrConditionUnresolved when the referenced
	// condition does not exist
	ConditionFor(ctx context.Context, achievement *models.Achievement) (*models.Condition, error)
}

// AwardLedger records granted awards
type AwardLedger interface {
	HasAward(ctx context.Context, userID, achievementID int64) (bool, error)

	// Grant fails with repositories.ErrDuplicateAward when the user already
	// holds the achievement, including when a concurrent grant won the race
	Grant(ctx context.Context, userID, achievementID int64) (*models.Award, error)
}

// AchievementEvaluator grants at most one new achievement per call
type AchievementEvaluator interface {
	TryEarn(ctx context.Context, userID int64) (*models.EarnResult, error)
}

// ===============================
// ADMINISTRATION
// ===============================

// ConditionService manages condition types and conditions
type ConditionService interface {
	ListConditionTypes(ctx context.Context) ([]*models.ConditionTypeInfo, error)
	GetConditionType(ctx context.Context, id int64) (*models.ConditionTypeInfo, error)

	ListConditions(ctx context.Context) ([]*models.Condition, error)
	GetCondition(ctx context.Context, id int64) (*models.Condition, error)
	CreateCondition(ctx context.Context, req *CreateConditionRequest) (*models.Condition, error)
	UpdateThreshold(ctx context.Context, req *UpdateThresholdRequest) (*models.Condition, error)
	UpdateType(ctx context.Context, req *UpdateConditionTypeRequest) (*models.Condition, error)
}

// AchievementService manages the achievement catalog
type AchievementService interface {
	ListAchievements(ctx context.Context) ([]*models.Achievement, error)
	GetAchievement(ctx context.Context, id int64) (*models.Achievement, error)
	CreateAchievement(ctx context.Context, req *CreateAchievementRequest) (*models.Achievement, error)

	UpdateName(ctx context.Context, req *UpdateNameRequest) (*models.Achievement, error)
	UpdateDescription(ctx context.Context, req *UpdateDescriptionRequest) (*models.Achievement, error)
	UpdateStatus(ctx context.Context, req *UpdateStatusRequest) (*models.Achievement, error)
	UpdateIcon(ctx context.Context, req *UpdateIconRequest) (*models.Achievement, error)
}

// AwardService answers queries about granted awards
type AwardService interface {
	ListAwardsForUser(ctx context.Context, userID int64) ([]*models.Award, error)
	CountAwards(ctx context.Context, achievementID int64) (*models.AwardCount, error)
}
