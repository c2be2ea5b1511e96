// Package services содержит бизнес-логику подписок: активацию после
// оплаты и каталог тарифов с кешированием.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mainsmentor/answer-evaluation/internal/domain"
	"github.com/mainsmentor/answer-evaluation/internal/lib/month"
	"github.com/mainsmentor/answer-evaluation/internal/lib/sl"
	"github.com/mainsmentor/answer-evaluation/internal/models"
)

// Границы срока активации в месяцах.
const (
	MinActivationMonths = 1
	MaxActivationMonths = 24
)

const plansCacheKey = "plans:active"

// UserRepository определяет методы для работы с подпиской пользователя.
type UserRepository interface {
	// GetUser возвращает пользователя по UID.
	GetUser(ctx context.Context, userUID string) (*models.User, error)
	// UpdateSubscription записывает тарифный план и дату окончания подписки.
	UpdateSubscription(ctx context.Context, userUID string, planID int, expiry time.Time) error
}

// PlanRepository определяет методы для работы с каталогом тарифов.
type PlanRepository interface {
	// GetPlan возвращает тарифный план по ID.
	GetPlan(ctx context.Context, id int) (*models.SubscriptionPlan, error)
	// ListActivePlans возвращает активные тарифы каталога.
	ListActivePlans(ctx context.Context) ([]*models.SubscriptionPlan, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	// Get пытается получить значение из кеша по ключу.
	Get(key string, result any) (bool, error)
	// Set сохраняет значение в кеш с временем жизни.
	Set(key string, value any, expiration time.Duration) error
	// Invalidate удаляет значение из кеша по ключу.
	Invalidate(key string) error
}

// SubscriptionService реализует активацию подписок и каталог тарифов.
type SubscriptionService struct {
	users UserRepository
	plans PlanRepository
	cache Cache
	log   *slog.Logger
}

// NewSubscriptionService создает новый экземпляр SubscriptionService.
func NewSubscriptionService(users UserRepository, plans PlanRepository, cache Cache, log *slog.Logger) *SubscriptionService {
	return &SubscriptionService{
		users: users,
		plans: plans,
		cache: cache,
		log:   log,
	}
}

// Activate включает подписку пользователя на months календарных месяцев.
// Если текущая подписка ещё действует, срок прибавляется к её дате
// окончания, иначе отсчитывается от текущего момента. Дата окончания
// прижимается к последнему дню месяца при переполнении.
func (s *SubscriptionService) Activate(ctx context.Context, userUID string, planID, months int) (time.Time, error) {
	const op = "services.subscription.Activate"

	if months < MinActivationMonths || months > MaxActivationMonths {
		return time.Time{}, fmt.Errorf("%s: months out of range: %w", op, domain.ErrInvalidInput)
	}

	if _, err := s.plans.GetPlan(ctx, planID); err != nil {
		return time.Time{}, fmt.Errorf("%s: %w", op, err)
	}

	user, err := s.users.GetUser(ctx, userUID)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: %w", op, err)
	}

	now := time.Now().UTC()
	base := now
	if user.SubscriptionExpiry != nil && user.SubscriptionExpiry.After(now) {
		base = *user.SubscriptionExpiry
	}
	expiry := month.Add(base, months)

	if err := s.users.UpdateSubscription(ctx, userUID, planID, expiry); err != nil {
		return time.Time{}, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("subscription activated",
		slog.String("user_uid", userUID),
		slog.Int("plan_id", planID),
		slog.Int("months", months),
		slog.Time("expiry", expiry))

	return expiry, nil
}

// ListPlans возвращает активные тарифы, используя кеш или репозиторий.
func (s *SubscriptionService) ListPlans(ctx context.Context) ([]*models.SubscriptionPlan, error) {
	const op = "services.subscription.ListPlans"

	var cached []*models.SubscriptionPlan
	found, err := s.cache.Get(plansCacheKey, &cached)
	if err != nil {
		s.log.Warn("failed to read plans from cache", sl.Err(err))
	}
	if found {
		return cached, nil
	}

	plans, err := s.plans.ListActivePlans(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.cache.Set(plansCacheKey, plans, 10*time.Minute); err != nil {
		s.log.Warn("failed to cache plans", sl.Err(err))
	}

	return plans, nil
}
