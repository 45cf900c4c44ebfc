package services

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/logicaltomy/CONDOR-BACK-TS/internal/models"
	"github.com/logicaltomy/CONDOR-BACK-TS/internal/repositories"
)

type evaluatorFixture struct {
	achievements *memAchievementRepo
	conditions   *memConditionRepo
	awards       *memAwardRepo
	profiles     *fakeProfiles
	sessions     *fakeSessions
	routes       *fakeRoutes
	evaluator    AchievementEvaluator
}

func newEvaluatorFixture() *evaluatorFixture {
	f := &evaluatorFixture{
		achievements: &memAchievementRepo{},
		conditions:   newMemConditionRepo(),
		awards:       &memAwardRepo{},
		profiles:     &fakeProfiles{},
		sessions:     &fakeSessions{},
		routes:       &fakeRoutes{regions: map[int64]int64{}},
	}
	aggregator := NewMetricsAggregator(f.profiles, f.sessions, f.routes, 4, zap.NewNop())
	f.evaluator = NewAchievementEvaluator(
		aggregator,
		NewConditionCatalog(f.achievements, f.conditions),
		NewAwardLedger(f.awards, zap.NewNop()),
		zap.NewNop(),
	)
	return f
}

// addAchievement stores an achievement with an explicit id and its condition
func (f *evaluatorFixture) addAchievement(id int64, name string, t models.ConditionType, threshold string) {
	conditionID := id + 1000
	f.conditions.put(&models.Condition{
		ID:          conditionID,
		Type:        t,
		Threshold:   dec(threshold),
		Description: models.DescribeCondition(t, dec(threshold)),
	})
	f.achievements.items = append(f.achievements.items, &models.Achievement{
		ID:          id,
		Name:        name,
		ConditionID: conditionID,
	})
}

func TestAchievementEvaluator_GrantsOnePerCallInIDOrder(t *testing.T) {
	f := newEvaluatorFixture()

	// inserted out of order; evaluation order is by id
	f.addAchievement(3, "A3", models.ConditionRouteCount, "5")
	f.addAchievement(1, "A1", models.ConditionDistanceKm, "50")
	f.addAchievement(2, "A2", models.ConditionDistinctRegions, "3")

	f.profiles.km = dec("60.00")
	f.routes.regions = map[int64]int64{11: 1, 12: 2, 13: 3, 14: 4, 15: 4}
	for i, routeID := range []int64{11, 12, 13, 14, 15, 11, 12} {
		f.sessions.sessions = append(f.sessions.sessions, models.RouteSession{RouteID: routeID, CompletedAt: completedAt(i + 1)})
	}

	ctx := context.Background()
	for _, expected := range []string{"A1", "A2", "A3"} {
		result, err := f.evaluator.TryEarn(ctx, 42)
		require.NoError(t, err)
		require.True(t, result.Granted())
		assert.Equal(t, expected, result.Achievement.Name)
		assert.Equal(t, int64(42), result.Award.UserID)
		assert.Equal(t, 4, result.Metrics.DistinctRegionCount)
		assert.Equal(t, 7, result.Metrics.CompletedRouteCount)
	}

	// exhausted: repeated calls never create new awards
	for i := 0; i < 3; i++ {
		result, err := f.evaluator.TryEarn(ctx, 42)
		require.NoError(t, err)
		assert.Equal(t, models.OutcomeNotQualified, result.Outcome)
		assert.Nil(t, result.Achievement)
	}
	assert.Equal(t, 3, f.awards.count())
}

func TestAchievementEvaluator_InclusiveThreshold(t *testing.T) {
	tests := []struct {
		distance string
		granted  bool
	}{
		{"49.99", false},
		{"50.00", true},
		{"50", true},
		{"50.01", true},
	}

	for _, tt := range tests {
		t.Run(tt.distance, func(t *testing.T) {
			f := newEvaluatorFixture()
			f.addAchievement(1, "Fifty", models.ConditionDistanceKm, "50.00")
			f.profiles.km = dec(tt.distance)

			result, err := f.evaluator.TryEarn(context.Background(), 1)
			require.NoError(t, err)
			assert.Equal(t, tt.granted, result.Granted())
		})
	}
}

func TestAchievementEvaluator_CountThresholdsCompareAsDecimals(t *testing.T) {
	f := newEvaluatorFixture()
	f.addAchievement(1, "Two and a half", models.ConditionRouteCount, "2.5")
	f.routes.regions = map[int64]int64{1: 1}
	f.sessions.sessions = []models.RouteSession{
		{RouteID: 1, CompletedAt: completedAt(1)},
		{RouteID: 1, CompletedAt: completedAt(2)},
	}

	result, err := f.evaluator.TryEarn(context.Background(), 1)
	require.NoError(t, err)
	assert.False(t, result.Granted())

	f.sessions.sessions = append(f.sessions.sessions, models.RouteSession{RouteID: 1, CompletedAt: completedAt(3)})
	result, err = f.evaluator.TryEarn(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, result.Granted())
}

func TestAchievementEvaluator_SkipsAlreadyEarned(t *testing.T) {
	f := newEvaluatorFixture()
	f.addAchievement(1, "A1", models.ConditionDistanceKm, "10")
	f.addAchievement(2, "A2", models.ConditionDistanceKm, "20")
	f.profiles.km = dec("25")
	require.NoError(t, f.awards.Create(context.Background(), &models.Award{UserID: 5, AchievementID: 1}))

	result, err := f.evaluator.TryEarn(context.Background(), 5)
	require.NoError(t, err)
	require.True(t, result.Granted())
	assert.Equal(t, int64(2), result.Achievement.ID)
}

func TestAchievementEvaluator_CollaboratorFailureGrantsNothing(t *testing.T) {
	f := newEvaluatorFixture()
	f.addAchievement(1, "A1", models.ConditionDistanceKm, "50")
	f.profiles.km = dec("500")
	f.routes.regions = map[int64]int64{1: 1, 3: 3}
	f.sessions.sessions = []models.RouteSession{
		{RouteID: 1, CompletedAt: completedAt(1)},
		{RouteID: 2, CompletedAt: completedAt(2)},
		{RouteID: 3, CompletedAt: completedAt(3)},
	}

	result, err := f.evaluator.TryEarn(context.Background(), 1)
	require.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, IsCollaboratorUnavailable(err))
	assert.Equal(t, 503, GetServiceError(err).GetStatusCode())
	assert.Zero(t, f.awards.count())
}

func TestAchievementEvaluator_CatalogInconsistency(t *testing.T) {
	t.Run("missing condition aborts", func(t *testing.T) {
		f := newEvaluatorFixture()
		f.achievements.items = append(f.achievements.items, &models.Achievement{ID: 1, Name: "Broken", ConditionID: 999})
		f.addAchievement(2, "Fine", models.ConditionDistanceKm, "0")

		result, err := f.evaluator.TryEarn(context.Background(), 1)
		require.Error(t, err)
		assert.Nil(t, result)
		assert.True(t, IsCatalogInconsistency(err))
		assert.Zero(t, f.awards.count(), "later achievements are not considered")
	})

	t.Run("unknown condition type aborts", func(t *testing.T) {
		f := newEvaluatorFixture()
		f.addAchievement(1, "Odd", models.ConditionType(9), "1")

		_, err := f.evaluator.TryEarn(context.Background(), 1)
		require.Error(t, err)
		assert.True(t, IsCatalogInconsistency(err))
	})

	t.Run("earned achievement with missing condition is never reached", func(t *testing.T) {
		f := newEvaluatorFixture()
		f.achievements.items = append(f.achievements.items, &models.Achievement{ID: 1, Name: "Broken", ConditionID: 999})
		f.addAchievement(2, "Fine", models.ConditionDistanceKm, "0")
		require.NoError(t, f.awards.Create(context.Background(), &models.Award{UserID: 1, AchievementID: 1}))

		result, err := f.evaluator.TryEarn(context.Background(), 1)
		require.NoError(t, err)
		assert.Equal(t, int64(2), result.Achievement.ID)
	})
}

func TestAchievementEvaluator_DuplicateAwardKeepsScanning(t *testing.T) {
	achievements := &memAchievementRepo{}
	conditions := newMemConditionRepo()
	for id := int64(1); id <= 2; id++ {
		conditions.put(&models.Condition{ID: id, Type: models.ConditionDistanceKm, Threshold: decimal.Zero})
		achievements.items = append(achievements.items, &models.Achievement{ID: id, ConditionID: id})
	}

	ledger := &mockLedger{}
	ledger.On("HasAward", mock.Anything, int64(9), mock.Anything).Return(false, nil)
	ledger.On("Grant", mock.Anything, int64(9), int64(1)).Return(nil, repositories.ErrDuplicateAward)
	ledger.On("Grant", mock.Anything, int64(9), int64(2)).Return(&models.Award{ID: 77, UserID: 9, AchievementID: 2}, nil)

	evaluator := NewAchievementEvaluator(
		NewMetricsAggregator(&fakeProfiles{}, &fakeSessions{}, &fakeRoutes{}, 1, zap.NewNop()),
		NewConditionCatalog(achievements, conditions),
		ledger,
		zap.NewNop(),
	)

	result, err := evaluator.TryEarn(context.Background(), 9)
	require.NoError(t, err)
	require.True(t, result.Granted())
	assert.Equal(t, int64(2), result.Achievement.ID)
	ledger.AssertExpectations(t)
}

func TestAchievementEvaluator_ConcurrentAttemptsGrantOnce(t *testing.T) {
	f := newEvaluatorFixture()
	f.addAchievement(1, "Only", models.ConditionDistanceKm, "1")
	f.profiles.km = dec("10")

	const attempts = 32
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		granted int
		start   = make(chan struct{})
	)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			result, err := f.evaluator.TryEarn(context.Background(), 3)
			if !assert.NoError(t, err) {
				return
			}
			if result.Granted() {
				mu.Lock()
				granted++
				mu.Unlock()
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, 1, granted)
	count, err := f.awards.CountByAchievement(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestAchievementEvaluator_RejectsInvalidUser(t *testing.T) {
	f := newEvaluatorFixture()
	_, err := f.evaluator.TryEarn(context.Background(), 0)
	assert.True(t, IsValidationError(err))
}
