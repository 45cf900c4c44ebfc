// internal/repositories/condition_repository.go
package repositories

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/logicaltomy/CONDOR-BACK-TS/internal/database"
	"github.com/logicaltomy/CONDOR-BACK-TS/internal/models"
)

// conditionTypeRepository implements ConditionTypeRepository
type conditionTypeRepository struct {
	*BaseRepository
}

// NewConditionTypeRepository creates a new instance of ConditionTypeRepository
func NewConditionTypeRepository(db *database.Manager, logger *zap.Logger) ConditionTypeRepository {
	return &conditionTypeRepository{
		BaseRepository: NewBaseRepository(db, logger),
	}
}

func (r *conditionTypeRepository) List(ctx context.Context) ([]*models.ConditionTypeInfo, error) {
	rows, err := r.QueryContext(ctx, `SELECT id, name FROM condition_types ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list condition types: %w", err)
	}
	defer rows.Close()

	var types []*models.ConditionTypeInfo
	for rows.Next() {
		var t models.ConditionTypeInfo
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, fmt.Errorf("failed to scan condition type: %w", err)
		}
		types = append(types, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate condition types: %w", err)
	}

	return types, nil
}

func (r *conditionTypeRepository) GetByID(ctx context.Context, id models.ConditionType) (*models.ConditionTypeInfo, error) {
	var t models.ConditionTypeInfo
	err := r.QueryRowContext(ctx, `SELECT id, name FROM condition_types WHERE id = $1`, id).Scan(&t.ID, &t.Name)
	if err != nil {
		if r.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get condition type by ID: %w", err)
	}
	return &t, nil
}

// conditionRepository implements ConditionRepository
type conditionRepository struct {
	*BaseRepository
}

// NewConditionRepository creates a new instance of ConditionRepository
func NewConditionRepository(db *database.Manager, logger *zap.Logger) ConditionRepository {
	return &conditionRepository{
		BaseRepository: NewBaseRepository(db, logger),
	}
}

// Create inserts a condition. The caller derives the description.
func (r *conditionRepository) Create(ctx context.Context, condition *models.Condition) error {
	query := `
		INSERT INTO conditions (condition_type_id, threshold, description)
		VALUES ($1, $2, $3)
		RETURNING id`

	err := r.QueryRowContext(ctx, query,
		condition.Type, condition.Threshold, condition.Description,
	).Scan(&condition.ID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("condition type %d: %w", condition.Type, ErrReferenceViolation)
		}
		return fmt.Errorf("failed to create condition: %w", err)
	}

	r.GetLogger().Info("Condition created",
		zap.Int64("condition_id", condition.ID),
		zap.Stringer("type", condition.Type),
		zap.String("threshold", condition.Threshold.String()),
	)
	return nil
}

func (r *conditionRepository) GetByID(ctx context.Context, id int64) (*models.Condition, error) {
	query := `
		SELECT id, condition_type_id, threshold, description
		FROM conditions
		WHERE id = $1`

	var c models.Condition
	err := r.QueryRowContext(ctx, query, id).Scan(&c.ID, &c.Type, &c.Threshold, &c.Description)
	if err != nil {
		if r.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get condition by ID: %w", err)
	}
	return &c, nil
}

func (r *conditionRepository) List(ctx context.Context) ([]*models.Condition, error) {
	query := `
		SELECT id, condition_type_id, threshold, description
		FROM conditions
		ORDER BY id`

	rows, err := r.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list conditions: %w", err)
	}
	defer rows.Close()

	var conditions []*models.Condition
	for rows.Next() {
		var c models.Condition
		if err := rows.Scan(&c.ID, &c.Type, &c.Threshold, &c.Description); err != nil {
			return nil, fmt.Errorf("failed to scan condition: %w", err)
		}
		conditions = append(conditions, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate conditions: %w", err)
	}

	return conditions, nil
}

func (r *conditionRepository) Update(ctx context.Context, condition *models.Condition) error {
	query := `
		UPDATE conditions
		SET condition_type_id = $2, threshold = $3, description = $4, updated_at = NOW()
		WHERE id = $1`

	result, err := r.ExecContext(ctx, query,
		condition.ID, condition.Type, condition.Threshold, condition.Description,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("condition type %d: %w", condition.Type, ErrReferenceViolation)
		}
		return fmt.Errorf("failed to update condition: %w", err)
	}
	if err := r.requireAffected(result); err != nil {
		if errors.Is(err, ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to update condition: %w", err)
	}

	r.GetLogger().Info("Condition updated",
		zap.Int64("condition_id", condition.ID),
		zap.String("description", condition.Description),
	)
	return nil
}
