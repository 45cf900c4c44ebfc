package repositories

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/logicaltomy/CONDOR-BACK-TS/internal/database"
	"github.com/logicaltomy/CONDOR-BACK-TS/internal/models"
)

func newTestManager(t *testing.T) (*database.Manager, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return database.NewManagerFromDB(db, nil, zap.NewNop()), mock
}

func TestAwardRepository_Create(t *testing.T) {
	insert := regexp.QuoteMeta("INSERT INTO awards (user_id, achievement_id)")

	t.Run("grants award", func(t *testing.T) {
		db, mock := newTestManager(t)
		repo := NewAwardRepository(db, zap.NewNop())

		grantedAt := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
		mock.ExpectQuery(insert).
			WithArgs(7, 1).
			WillReturnRows(sqlmock.NewRows([]string{"id", "granted_at"}).AddRow(42, grantedAt))

		award := &models.Award{UserID: 7, AchievementID: 1}
		require.NoError(t, repo.Create(context.Background(), award))
		assert.Equal(t, int64(42), award.ID)
		assert.Equal(t, grantedAt, award.GrantedAt)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unique violation maps to duplicate award", func(t *testing.T) {
		db, mock := newTestManager(t)
		repo := NewAwardRepository(db, zap.NewNop())

		mock.ExpectQuery(insert).
			WithArgs(7, 1).
			WillReturnError(&pq.Error{Code: "23505", Constraint: "awards_user_achievement_key"})

		err := repo.Create(context.Background(), &models.Award{UserID: 7, AchievementID: 1})
		assert.ErrorIs(t, err, ErrDuplicateAward)
	})

	t.Run("missing achievement maps to reference violation", func(t *testing.T) {
		db, mock := newTestManager(t)
		repo := NewAwardRepository(db, zap.NewNop())

		mock.ExpectQuery(insert).WillReturnError(&pq.Error{Code: "23503"})

		err := repo.Create(context.Background(), &models.Award{UserID: 7, AchievementID: 99})
		assert.ErrorIs(t, err, ErrReferenceViolation)
		assert.NotErrorIs(t, err, ErrDuplicateAward)
	})

	t.Run("other errors are wrapped", func(t *testing.T) {
		db, mock := newTestManager(t)
		repo := NewAwardRepository(db, zap.NewNop())

		mock.ExpectQuery(insert).WillReturnError(errors.New("connection reset"))

		err := repo.Create(context.Background(), &models.Award{UserID: 7, AchievementID: 1})
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrDuplicateAward)
		assert.Contains(t, err.Error(), "failed to create award")
	})
}

func TestAwardRepository_Queries(t *testing.T) {
	db, mock := newTestManager(t)
	repo := NewAwardRepository(db, zap.NewNop())
	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).
		WithArgs(7, 2).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.Exists(ctx, 7, 2)
	require.NoError(t, err)
	assert.True(t, exists)

	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta("FROM awards")).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "achievement_id", "granted_at"}).
			AddRow(1, 7, 1, now).
			AddRow(2, 7, 3, now))

	awards, err := repo.ListByUser(ctx, 7)
	require.NoError(t, err)
	require.Len(t, awards, 2)
	assert.Equal(t, int64(3), awards[1].AchievementID)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM awards")).
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))

	count, err := repo.CountByAchievement(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(12), count)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestConditionRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("get by id scans decimal threshold", func(t *testing.T) {
		db, mock := newTestManager(t)
		repo := NewConditionRepository(db, zap.NewNop())

		mock.ExpectQuery(regexp.QuoteMeta("FROM conditions")).
			WithArgs(5).
			WillReturnRows(sqlmock.NewRows([]string{"id", "condition_type_id", "threshold", "description"}).
				AddRow(5, 1, "50.00", "Travel 50.00 km"))

		condition, err := repo.GetByID(ctx, 5)
		require.NoError(t, err)
		assert.Equal(t, models.ConditionDistanceKm, condition.Type)
		assert.True(t, condition.Threshold.Equal(decimal.RequireFromString("50")))
		assert.Equal(t, "Travel 50.00 km", condition.Description)
	})

	t.Run("get by id not found", func(t *testing.T) {
		db, mock := newTestManager(t)
		repo := NewConditionRepository(db, zap.NewNop())

		mock.ExpectQuery(regexp.QuoteMeta("FROM conditions")).
			WithArgs(9).
			WillReturnRows(sqlmock.NewRows([]string{"id", "condition_type_id", "threshold", "description"}))

		_, err := repo.GetByID(ctx, 9)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("update writes description with values", func(t *testing.T) {
		db, mock := newTestManager(t)
		repo := NewConditionRepository(db, zap.NewNop())

		condition := &models.Condition{
			ID:          5,
			Type:        models.ConditionRouteCount,
			Threshold:   decimal.NewFromInt(10),
			Description: "Complete 10 routes",
		}
		mock.ExpectExec(regexp.QuoteMeta("UPDATE conditions")).
			WithArgs(5, models.ConditionRouteCount, decimal.NewFromInt(10), "Complete 10 routes").
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.Update(ctx, condition))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("update missing row", func(t *testing.T) {
		db, mock := newTestManager(t)
		repo := NewConditionRepository(db, zap.NewNop())

		mock.ExpectExec(regexp.QuoteMeta("UPDATE conditions")).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Update(ctx, &models.Condition{ID: 404, Type: models.ConditionRouteCount})
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestAchievementRepository(t *testing.T) {
	ctx := context.Background()
	columns := []string{"id", "name", "description", "icon", "status_id", "condition_id", "created_at"}

	t.Run("list is ordered by id", func(t *testing.T) {
		db, mock := newTestManager(t)
		repo := NewAchievementRepository(db, zap.NewNop())

		now := time.Now()
		mock.ExpectQuery(regexp.QuoteMeta("FROM achievements ORDER BY id ASC")).
			WillReturnRows(sqlmock.NewRows(columns).
				AddRow(1, "Walker", "", nil, 1, 10, now).
				AddRow(2, "Explorer", "", []byte{0x89, 0x50}, 1, 11, now))

		achievements, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, achievements, 2)
		assert.Equal(t, "Walker", achievements[0].Name)
		assert.Equal(t, []byte{0x89, 0x50}, achievements[1].Icon)
	})

	t.Run("create with unknown condition", func(t *testing.T) {
		db, mock := newTestManager(t)
		repo := NewAchievementRepository(db, zap.NewNop())

		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO achievements")).
			WillReturnError(&pq.Error{Code: "23503"})

		err := repo.Create(ctx, &models.Achievement{Name: "Walker", ConditionID: 77, StatusID: 1})
		assert.ErrorIs(t, err, ErrReferenceViolation)
	})

	t.Run("patch name", func(t *testing.T) {
		db, mock := newTestManager(t)
		repo := NewAchievementRepository(db, zap.NewNop())

		mock.ExpectExec(regexp.QuoteMeta("UPDATE achievements SET name = $2")).
			WithArgs(3, "Trailblazer").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(regexp.QuoteMeta("UPDATE achievements SET status_id = $2")).
			WithArgs(4, 2).
			WillReturnResult(sqlmock.NewResult(0, 0))

		require.NoError(t, repo.UpdateName(ctx, 3, "Trailblazer"))
		assert.ErrorIs(t, repo.UpdateStatus(ctx, 4, 2), ErrNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}
