// file: internal/repositories/collection.go
package repositories

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/logicaltomy/CONDOR-BACK-TS/internal/database"
)

// Collection holds all repository instances for dependency injection
type Collection struct {
	ConditionType ConditionTypeRepository
	Condition     ConditionRepository
	Achievement   AchievementRepository
	Award         AwardRepository
}

// NewCollection creates a repository collection over one database manager
func NewCollection(db *database.Manager, logger *zap.Logger) (*Collection, error) {
	if db == nil {
		return nil, fmt.Errorf("database manager is required")
	}

	collection := &Collection{
		ConditionType: NewConditionTypeRepository(db, logger),
		Condition:     NewConditionRepository(db, logger),
		Achievement:   NewAchievementRepository(db, logger),
		Award:         NewAwardRepository(db, logger),
	}

	logger.Info("Repository collection initialized successfully")
	return collection, nil
}
