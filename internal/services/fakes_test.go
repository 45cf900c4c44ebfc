package services

import (
	"context"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/logicaltomy/CONDOR-BACK-TS/internal/clients"
	"github.com/logicaltomy/CONDOR-BACK-TS/internal/models"
	"github.com/logicaltomy/CONDOR-BACK-TS/internal/repositories"
)

// ===============================
// REPOSITORIES
// ===============================

type memAwardRepo struct {
	mu     sync.Mutex
	nextID int64
	awards []*models.Award
}

func (r *memAwardRepo) Exists(ctx context.Context, userID, achievementID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.find(userID, achievementID) != nil, nil
}

func (r *memAwardRepo) find(userID, achievementID int64) *models.Award {
	for _, a := range r.awards {
		if a.UserID == userID && a.AchievementID == achievementID {
			return a
		}
	}
	return nil
}

// Create behaves like the (user_id, achievement_id) unique constraint
func (r *memAwardRepo) Create(ctx context.Context, award *models.Award) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.find(award.UserID, award.AchievementID) != nil {
		return repositories.ErrDuplicateAward
	}
	r.nextID++
	award.ID = r.nextID
	award.GrantedAt = time.Now()
	stored := *award
	r.awards = append(r.awards, &stored)
	return nil
}

func (r *memAwardRepo) ListByUser(ctx context.Context, userID int64) ([]*models.Award, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Award
	for _, a := range r.awards {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *memAwardRepo) CountByAchievement(ctx context.Context, achievementID int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, a := range r.awards {
		if a.AchievementID == achievementID {
			n++
		}
	}
	return n, nil
}

func (r *memAwardRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.awards)
}

type memAchievementRepo struct {
	mu     sync.Mutex
	items  []*models.Achievement
	nextID int64
}

func (r *memAchievementRepo) Create(ctx context.Context, a *models.Achievement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	a.ID = r.nextID
	stored := *a
	r.items = append(r.items, &stored)
	return nil
}

func (r *memAchievementRepo) GetByID(ctx context.Context, id int64) (*models.Achievement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.items {
		if a.ID == id {
			copied := *a
			return &copied, nil
		}
	}
	return nil, repositories.ErrNotFound
}

// List keeps insertion order so callers must sort
func (r *memAchievementRepo) List(ctx context.Context) ([]*models.Achievement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.items), nil
}

func (r *memAchievementRepo) update(id int64, apply func(*models.Achievement)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.items {
		if a.ID == id {
			apply(a)
			return nil
		}
	}
	return repositories.ErrNotFound
}

func (r *memAchievementRepo) UpdateName(ctx context.Context, id int64, name string) error {
	return r.update(id, func(a *models.Achievement) { a.Name = name })
}

func (r *memAchievementRepo) UpdateDescription(ctx context.Context, id int64, description string) error {
	return r.update(id, func(a *models.Achievement) { a.Description = description })
}

func (r *memAchievementRepo) UpdateStatus(ctx context.Context, id int64, statusID int64) error {
	return r.update(id, func(a *models.Achievement) { a.StatusID = statusID })
}

func (r *memAchievementRepo) UpdateIcon(ctx context.Context, id int64, icon []byte) error {
	return r.update(id, func(a *models.Achievement) { a.Icon = icon })
}

type memConditionRepo struct {
	mu     sync.Mutex
	items  map[int64]*models.Condition
	nextID int64
}

func newMemConditionRepo() *memConditionRepo {
	return &memConditionRepo{items: make(map[int64]*models.Condition), nextID: 100}
}

func (r *memConditionRepo) put(c *models.Condition) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *c
	r.items[c.ID] = &stored
}

func (r *memConditionRepo) Create(ctx context.Context, c *models.Condition) error {
	r.mu.Lock()
	r.nextID++
	c.ID = r.nextID
	r.mu.Unlock()
	r.put(c)
	return nil
}

func (r *memConditionRepo) GetByID(ctx context.Context, id int64) (*models.Condition, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.items[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *c
	return &copied, nil
}

func (r *memConditionRepo) List(ctx context.Context) ([]*models.Condition, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Condition, 0, len(r.items))
	for _, c := range r.items {
		out = append(out, c)
	}
	return out, nil
}

func (r *memConditionRepo) Update(ctx context.Context, c *models.Condition) error {
	r.mu.Lock()
	_, ok := r.items[c.ID]
	r.mu.Unlock()
	if !ok {
		return repositories.ErrNotFound
	}
	r.put(c)
	return nil
}

type memConditionTypeRepo struct{}

func (memConditionTypeRepo) List(ctx context.Context) ([]*models.ConditionTypeInfo, error) {
	return []*models.ConditionTypeInfo{
		{ID: models.ConditionDistanceKm, Name: "DistanceKm"},
		{ID: models.ConditionDistinctRegions, Name: "DistinctRegions"},
		{ID: models.ConditionRouteCount, Name: "RouteCount"},
	}, nil
}

func (r memConditionTypeRepo) GetByID(ctx context.Context, id models.ConditionType) (*models.ConditionTypeInfo, error) {
	if !id.Valid() {
		return nil, repositories.ErrNotFound
	}
	return &models.ConditionTypeInfo{ID: id, Name: id.String()}, nil
}

// ===============================
// COLLABORATORS
// ===============================

type fakeProfiles struct {
	km  decimal.Decimal
	err error
}

func (f *fakeProfiles) CumulativeDistance(ctx context.Context, userID int64) (decimal.Decimal, error) {
	return f.km, f.err
}

type fakeSessions struct {
	sessions []models.RouteSession
	err      error
}

func (f *fakeSessions) ListSessionsForUser(ctx context.Context, userID int64) ([]models.RouteSession, error) {
	return f.sessions, f.err
}

type fakeRoutes struct {
	regions  map[int64]int64
	failing  map[int64]error
	calls    int32
	inFlight int32
	maxSeen  int32
	delay    time.Duration
}

func (f *fakeRoutes) RegionOfRoute(ctx context.Context, routeID int64) (int64, error) {
	atomic.AddInt32(&f.calls, 1)
	current := atomic.AddInt32(&f.inFlight, 1)
	defer atomic.AddInt32(&f.inFlight, -1)
	for {
		seen := atomic.LoadInt32(&f.maxSeen)
		if current <= seen || atomic.CompareAndSwapInt32(&f.maxSeen, seen, current) {
			break
		}
	}

	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}

	if err, ok := f.failing[routeID]; ok {
		return 0, err
	}
	region, ok := f.regions[routeID]
	if !ok {
		return 0, clients.ErrNotFound
	}
	return region, nil
}

type fakeStatuses struct {
	known map[int64]string
	err   error
}

func (f *fakeStatuses) GetStatus(ctx context.Context, statusID int64) (*models.Status, error) {
	if f.err != nil {
		return nil, f.err
	}
	name, ok := f.known[statusID]
	if !ok {
		return nil, clients.ErrNotFound
	}
	return &models.Status{ID: statusID, Name: name}, nil
}

// mockLedger lets tests script ledger answers
type mockLedger struct {
	mock.Mock
}

func (m *mockLedger) HasAward(ctx context.Context, userID, achievementID int64) (bool, error) {
	args := m.Called(ctx, userID, achievementID)
	return args.Bool(0), args.Error(1)
}

func (m *mockLedger) Grant(ctx context.Context, userID, achievementID int64) (*models.Award, error) {
	args := m.Called(ctx, userID, achievementID)
	award, _ := args.Get(0).(*models.Award)
	return award, args.Error(1)
}

// ===============================
// HELPERS
// ===============================

func completedAt(day int) *time.Time {
	t := time.Date(2026, time.May, day, 10, 0, 0, 0, time.UTC)
	return &t
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
