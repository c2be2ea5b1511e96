package services

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/mainsmentor/answer-evaluation/internal/domain"
	"github.com/mainsmentor/answer-evaluation/internal/models"
)

// MockUserRepository реализует интерфейс subscription.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetUser(ctx context.Context, userUID string) (*models.User, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) UpdateSubscription(ctx context.Context, userUID string, planID int, expiry time.Time) error {
	args := m.Called(ctx, userUID, planID, expiry)
	return args.Error(0)
}

// MockPlanRepository реализует интерфейс subscription.PlanRepository
type MockPlanRepository struct {
	mock.Mock
}

func (m *MockPlanRepository) GetPlan(ctx context.Context, id int) (*models.SubscriptionPlan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SubscriptionPlan), args.Error(1)
}

func (m *MockPlanRepository) ListActivePlans(ctx context.Context) ([]*models.SubscriptionPlan, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.SubscriptionPlan), args.Error(1)
}

// MockCache реализует интерфейс subscription.Cache
type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(key string, result any) (bool, error) {
	args := m.Called(key, result)
	return args.Bool(0), args.Error(1)
}

func (m *MockCache) Set(key string, value any, expiration time.Duration) error {
	args := m.Called(key, value, expiration)
	return args.Error(0)
}

func (m *MockCache) Invalidate(key string) error {
	args := m.Called(key)
	return args.Error(0)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func TestActivate(t *testing.T) {
	const uid = "user-uid"
	plan := &models.SubscriptionPlan{ID: 2, Name: "One Month 1 questions/day"}

	t.Run("активация без действующей подписки", func(t *testing.T) {
		users := new(MockUserRepository)
		plans := new(MockPlanRepository)

		plans.On("GetPlan", mock.Anything, 2).Return(plan, nil)
		users.On("GetUser", mock.Anything, uid).Return(&models.User{UID: uid}, nil)
		users.On("UpdateSubscription", mock.Anything, uid, 2, mock.AnythingOfType("time.Time")).Return(nil)

		service := NewSubscriptionService(users, plans, new(MockCache), testLogger())
		expiry, err := service.Activate(context.Background(), uid, 2, 1)

		assert.NoError(t, err)
		lower := time.Now().UTC().AddDate(0, 0, 27)
		upper := time.Now().UTC().AddDate(0, 0, 32)
		assert.True(t, expiry.After(lower) && expiry.Before(upper),
			"expiry %v must be about one month from now", expiry)
		users.AssertExpectations(t)
	})

	t.Run("продление действующей подписки складывается", func(t *testing.T) {
		users := new(MockUserRepository)
		plans := new(MockPlanRepository)

		current := time.Now().UTC().AddDate(0, 0, 10).Truncate(time.Second)
		user := &models.User{UID: uid, SubscriptionExpiry: &current}

		plans.On("GetPlan", mock.Anything, 2).Return(plan, nil)
		users.On("GetUser", mock.Anything, uid).Return(user, nil)
		users.On("UpdateSubscription", mock.Anything, uid, 2, mock.MatchedBy(func(expiry time.Time) bool {
			return expiry.After(current)
		})).Return(nil)

		service := NewSubscriptionService(users, plans, new(MockCache), testLogger())
		expiry, err := service.Activate(context.Background(), uid, 2, 2)

		assert.NoError(t, err)
		assert.True(t, expiry.After(current.AddDate(0, 0, 55)))
	})

	t.Run("срок вне диапазона", func(t *testing.T) {
		service := NewSubscriptionService(new(MockUserRepository), new(MockPlanRepository), new(MockCache), testLogger())

		_, err := service.Activate(context.Background(), uid, 2, 0)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)

		_, err = service.Activate(context.Background(), uid, 2, 25)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("неизвестный тариф", func(t *testing.T) {
		plans := new(MockPlanRepository)
		plans.On("GetPlan", mock.Anything, 99).Return(nil, domain.NewNotFoundError("plan", "99"))

		service := NewSubscriptionService(new(MockUserRepository), plans, new(MockCache), testLogger())
		_, err := service.Activate(context.Background(), uid, 99, 1)

		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestListPlans(t *testing.T) {
	catalog := []*models.SubscriptionPlan{
		{ID: 1, Name: "One Month 2 questions/day"},
		{ID: 2, Name: "One Month 1 questions/day"},
	}

	t.Run("промах кеша читает репозиторий и кеширует", func(t *testing.T) {
		plans := new(MockPlanRepository)
		cache := new(MockCache)

		cache.On("Get", "plans:active", mock.Anything).Return(false, nil)
		plans.On("ListActivePlans", mock.Anything).Return(catalog, nil)
		cache.On("Set", "plans:active", catalog, 10*time.Minute).Return(nil)

		service := NewSubscriptionService(new(MockUserRepository), plans, cache, testLogger())
		got, err := service.ListPlans(context.Background())

		assert.NoError(t, err)
		assert.Len(t, got, 2)
		plans.AssertExpectations(t)
		cache.AssertExpectations(t)
	})

	t.Run("попадание в кеш не трогает репозиторий", func(t *testing.T) {
		plans := new(MockPlanRepository)
		cache := new(MockCache)

		cache.On("Get", "plans:active", mock.Anything).
			Run(func(args mock.Arguments) {
				out := args.Get(1).(*[]*models.SubscriptionPlan)
				*out = catalog
			}).
			Return(true, nil)

		service := NewSubscriptionService(new(MockUserRepository), plans, cache, testLogger())
		got, err := service.ListPlans(context.Background())

		assert.NoError(t, err)
		assert.Len(t, got, 2)
		plans.AssertNotCalled(t, "ListActivePlans", mock.Anything)
	})
}
