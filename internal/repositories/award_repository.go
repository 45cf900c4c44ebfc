// internal/repositories/award_repository.go
package repositories

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/logicaltomy/CONDOR-BACK-TS/internal/database"
	"github.com/logicaltomy/CONDOR-BACK-TS/internal/models"
)

// awardRepository implements AwardRepository. The awards table carries a
// unique constraint on (user_id, achievement_id); that constraint, not the
// Exists check, decides concurrent grants.
type awardRepository struct {
	*BaseRepository
}

// NewAwardRepository creates a new instance of AwardRepository
func NewAwardRepository(db *database.Manager, logger *zap.Logger) AwardRepository {
	return &awardRepository{
		BaseRepository: NewBaseRepository(db, logger),
	}
}

func (r *awardRepository) Exists(ctx context.Context, userID, achievementID int64) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM awards WHERE user_id = $1 AND achievement_id = $2)`

	var exists bool
	if err := r.QueryRowContext(ctx, query, userID, achievementID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check award: %w", err)
	}
	return exists, nil
}

func (r *awardRepository) Create(ctx context.Context, award *models.Award) error {
	query := `
		INSERT INTO awards (user_id, achievement_id)
		VALUES ($1, $2)
		RETURNING id, granted_at`

	err := r.QueryRowContext(ctx, query, award.UserID, award.AchievementID).
		Scan(&award.ID, &award.GrantedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateAward
		}
		if isForeignKeyViolation(err) {
			return fmt.Errorf("achievement %d: %w", award.AchievementID, ErrReferenceViolation)
		}
		return fmt.Errorf("failed to create award: %w", err)
	}

	r.GetLogger().Info("Award granted",
		zap.Int64("award_id", award.ID),
		zap.Int64("user_id", award.UserID),
		zap.Int64("achievement_id", award.AchievementID),
	)
	return nil
}

func (r *awardRepository) ListByUser(ctx context.Context, userID int64) ([]*models.Award, error) {
	query := `
		SELECT id, user_id, achievement_id, granted_at
		FROM awards
		WHERE user_id = $1
		ORDER BY granted_at, id`

	rows, err := r.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list awards: %w", err)
	}
	defer rows.Close()

	var awards []*models.Award
	for rows.Next() {
		var a models.Award
		if err := rows.Scan(&a.ID, &a.UserID, &a.AchievementID, &a.GrantedAt); err != nil {
			return nil, fmt.Errorf("failed to scan award: %w", err)
		}
		awards = append(awards, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate awards: %w", err)
	}

	return awards, nil
}

func (r *awardRepository) CountByAchievement(ctx context.Context, achievementID int64) (int64, error) {
	var count int64
	err := r.QueryRowContext(ctx, `SELECT COUNT(*) FROM awards WHERE achievement_id = $1`, achievementID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count awards: %w", err)
	}
	return count, nil
}
