// Package services содержит проверку права пользователя на отправку ответа:
// бесплатный лимит и лимиты тарифного плана.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mainsmentor/answer-evaluation/internal/domain"
	"github.com/mainsmentor/answer-evaluation/internal/lib/month"
	"github.com/mainsmentor/answer-evaluation/internal/models"
)

// FreeSubmissionLimit число отправок, доступных без подписки за всё время.
const FreeSubmissionLimit = 2

// UserRepository описывает доступ к пользователям.
type UserRepository interface {
	// GetUser возвращает пользователя по UID.
	GetUser(ctx context.Context, userUID string) (*models.User, error)
}

// PlanRepository описывает доступ к каталогу тарифов.
type PlanRepository interface {
	// GetPlan возвращает тарифный план по ID.
	GetPlan(ctx context.Context, id int) (*models.SubscriptionPlan, error)
}

// AnswerCounter считает отправки пользователя.
type AnswerCounter interface {
	// CountAnswers возвращает число отправок пользователя начиная с since.
	// Nil since означает подсчёт за всё время.
	CountAnswers(ctx context.Context, userUID string, since *time.Time) (int, error)
}

// EntitlementService решает, может ли пользователь отправить ещё один ответ.
type EntitlementService struct {
	users   UserRepository
	plans   PlanRepository
	answers AnswerCounter
	log     *slog.Logger
}

// NewEntitlementService создает новый экземпляр EntitlementService.
func NewEntitlementService(users UserRepository, plans PlanRepository, answers AnswerCounter, log *slog.Logger) *EntitlementService {
	return &EntitlementService{
		users:   users,
		plans:   plans,
		answers: answers,
		log:     log,
	}
}

// CanSubmit возвращает nil, если пользователю разрешена ещё одна отправка,
// либо *domain.QuotaError с кодом причины отказа.
//
// Без активной подписки действует пожизненный бесплатный лимит.
// С подпиской сначала проверяется месячный лимит тарифа, затем дневной;
// нулевое значение лимита означает безлимит. Истёкшая подписка
// откатывает пользователя на бесплатный лимит.
func (s *EntitlementService) CanSubmit(ctx context.Context, userUID string) error {
	const op = "services.entitlement.CanSubmit"

	user, err := s.users.GetUser(ctx, userUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	now := time.Now().UTC()

	if user.SubscriptionPlanID == nil || user.SubscriptionExpiry == nil || !user.SubscriptionExpiry.After(now) {
		count, err := s.answers.CountAnswers(ctx, userUID, nil)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		if count >= FreeSubmissionLimit {
			s.log.Info("free quota exhausted", slog.String("user_uid", userUID), slog.Int("count", count))
			return domain.NewFreeQuotaError()
		}
		return nil
	}

	plan, err := s.plans.GetPlan(ctx, *user.SubscriptionPlanID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if plan.EvaluationsPerMonth > 0 {
		startOfMonth := month.StartOfMonth(now)
		count, err := s.answers.CountAnswers(ctx, userUID, &startOfMonth)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		if count >= plan.EvaluationsPerMonth {
			s.log.Info("monthly limit reached",
				slog.String("user_uid", userUID),
				slog.Int("limit", plan.EvaluationsPerMonth))
			return domain.NewMonthlyLimitError(plan.EvaluationsPerMonth)
		}
	}

	if plan.EvaluationsPerDay > 0 {
		startOfDay := month.StartOfDay(now)
		count, err := s.answers.CountAnswers(ctx, userUID, &startOfDay)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		if count >= plan.EvaluationsPerDay {
			s.log.Info("daily limit reached",
				slog.String("user_uid", userUID),
				slog.Int("limit", plan.EvaluationsPerDay))
			return domain.NewDailyLimitError(plan.EvaluationsPerDay)
		}
	}

	return nil
}
