// internal/repositories/achievement_repository.go
package repositories

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/logicaltomy/CONDOR-BACK-TS/internal/database"
	"github.com/logicaltomy/CONDOR-BACK-TS/internal/models"
)

// achievementRepository implements AchievementRepository
type achievementRepository struct {
	*BaseRepository
}

// NewAchievementRepository creates a new instance of AchievementRepository
func NewAchievementRepository(db *database.Manager, logger *zap.Logger) AchievementRepository {
	return &achievementRepository{
		BaseRepository: NewBaseRepository(db, logger),
	}
}

const achievementColumns = `id, name, description, icon, status_id, condition_id, created_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAchievement(row rowScanner) (*models.Achievement, error) {
	var a models.Achievement
	err := row.Scan(&a.ID, &a.Name, &a.Description, &a.Icon, &a.StatusID, &a.ConditionID, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Create inserts an achievement. The referenced condition must exist.
func (r *achievementRepository) Create(ctx context.Context, achievement *models.Achievement) error {
	query := `
		INSERT INTO achievements (name, description, icon, status_id, condition_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err := r.QueryRowContext(ctx, query,
		achievement.Name, achievement.Description, achievement.Icon,
		achievement.StatusID, achievement.ConditionID,
	).Scan(&achievement.ID, &achievement.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("condition %d: %w", achievement.ConditionID, ErrReferenceViolation)
		}
		return fmt.Errorf("failed to create achievement: %w", err)
	}

	r.GetLogger().Info("Achievement created",
		zap.Int64("achievement_id", achievement.ID),
		zap.Int64("condition_id", achievement.ConditionID),
	)
	return nil
}

func (r *achievementRepository) GetByID(ctx context.Context, id int64) (*models.Achievement, error) {
	query := `SELECT ` + achievementColumns + ` FROM achievements WHERE id = $1`

	achievement, err := scanAchievement(r.QueryRowContext(ctx, query, id))
	if err != nil {
		if r.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get achievement by ID: %w", err)
	}
	return achievement, nil
}

func (r *achievementRepository) List(ctx context.Context) ([]*models.Achievement, error) {
	query := `SELECT ` + achievementColumns + ` FROM achievements ORDER BY id ASC`

	rows, err := r.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list achievements: %w", err)
	}
	defer rows.Close()

	var achievements []*models.Achievement
	for rows.Next() {
		achievement, err := scanAchievement(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan achievement: %w", err)
		}
		achievements = append(achievements, achievement)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate achievements: %w", err)
	}

	return achievements, nil
}

func (r *achievementRepository) UpdateName(ctx context.Context, id int64, name string) error {
	return r.updateColumn(ctx, id, "name", name)
}

func (r *achievementRepository) UpdateDescription(ctx context.Context, id int64, description string) error {
	return r.updateColumn(ctx, id, "description", description)
}

func (r *achievementRepository) UpdateStatus(ctx context.Context, id int64, statusID int64) error {
	return r.updateColumn(ctx, id, "status_id", statusID)
}

func (r *achievementRepository) UpdateIcon(ctx context.Context, id int64, icon []byte) error {
	return r.updateColumn(ctx, id, "icon", icon)
}

// updateColumn patches a single column. column is always a constant from this file.
func (r *achievementRepository) updateColumn(ctx context.Context, id int64, column string, value interface{}) error {
	query := fmt.Sprintf(`UPDATE achievements SET %s = $2, updated_at = NOW() WHERE id = $1`, column)

	result, err := r.ExecContext(ctx, query, id, value)
	if err != nil {
		return fmt.Errorf("failed to update achievement %s: %w", column, err)
	}
	if err := r.requireAffected(result); err != nil {
		return err
	}

	r.GetLogger().Info("Achievement updated",
		zap.Int64("achievement_id", id),
		zap.String("column", column),
	)
	return nil
}
