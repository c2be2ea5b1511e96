// Package services содержит бизнес-логику оплаты подписок: создание
// заказа у платёжного провайдера и проверку подписи подтверждения.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/mainsmentor/answer-evaluation/internal/domain"
	"github.com/mainsmentor/answer-evaluation/internal/lib/sl"
	"github.com/mainsmentor/answer-evaluation/internal/models"
	"github.com/mainsmentor/answer-evaluation/internal/paymentprovider"
)

// OrderRepository определяет методы для работы с заказами в хранилище.
type OrderRepository interface {
	// CreateOrder сохраняет новый заказ и возвращает его ID.
	CreateOrder(ctx context.Context, o models.Order) (int, error)
	// UpdateOrderStatus обновляет статус заказа по ID заказа провайдера.
	UpdateOrderStatus(ctx context.Context, providerOrderID, paymentID, status string) error
}

// PlanRepository возвращает тарифы для расчёта суммы заказа.
type PlanRepository interface {
	// GetPlan возвращает тарифный план по ID.
	GetPlan(ctx context.Context, id int) (*models.SubscriptionPlan, error)
}

// ProviderClient описывает клиент платёжного провайдера.
type ProviderClient interface {
	// CreateOrder создаёт заказ на стороне провайдера.
	CreateOrder(req paymentprovider.CreateOrderRequest) (*paymentprovider.CreateOrderResponse, error)
}

// PaymentService реализует создание и подтверждение оплат.
type PaymentService struct {
	orders    OrderRepository
	plans     PlanRepository
	provider  ProviderClient
	keySecret string
	log       *slog.Logger
}

// NewPaymentService создает новый экземпляр PaymentService.
func NewPaymentService(orders OrderRepository, plans PlanRepository, provider ProviderClient, keySecret string, log *slog.Logger) *PaymentService {
	return &PaymentService{
		orders:    orders,
		plans:     plans,
		provider:  provider,
		keySecret: keySecret,
		log:       log,
	}
}

// CreateOrder создаёт заказ на оплату тарифа у провайдера и сохраняет
// его локально. Сумма берётся из каталога и передаётся провайдеру
// в пайсах.
func (s *PaymentService) CreateOrder(ctx context.Context, userUID string, planID int) (*models.Order, error) {
	const op = "services.payment.CreateOrder"

	plan, err := s.plans.GetPlan(ctx, planID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	amount := int64(plan.AnnualPrice) * 100 // рупии -> пайсы

	resp, err := s.provider.CreateOrder(paymentprovider.CreateOrderRequest{
		Amount:   amount,
		Currency: "INR",
		Notes: map[string]string{
			"user_uid": userUID,
			"plan_id":  strconv.Itoa(planID),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	order := models.Order{
		UserUID:         userUID,
		PlanID:          planID,
		Amount:          amount,
		Currency:        "INR",
		ProviderOrderID: resp.ID,
		Status:          models.OrderStatusCreated,
	}
	id, err := s.orders.CreateOrder(ctx, order)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	order.ID = id

	s.log.Info("payment order created",
		slog.Int("id", id),
		slog.String("provider_order_id", resp.ID),
		slog.String("user_uid", userUID))

	return &order, nil
}

// VerifyPayment проверяет подпись подтверждения платежа и помечает заказ
// оплаченным. При расхождении подписи заказ помечается неуспешным
// и возвращается domain.ErrSignatureMismatch.
func (s *PaymentService) VerifyPayment(ctx context.Context, orderID, paymentID, signature string) error {
	const op = "services.payment.VerifyPayment"

	if !paymentprovider.VerifySignature(s.keySecret, orderID, paymentID, signature) {
		if err := s.orders.UpdateOrderStatus(ctx, orderID, paymentID, models.OrderStatusFailed); err != nil {
			s.log.Warn("failed to mark order as failed", slog.String("provider_order_id", orderID), sl.Err(err))
		}
		return fmt.Errorf("%s: %w", op, domain.ErrSignatureMismatch)
	}

	if err := s.orders.UpdateOrderStatus(ctx, orderID, paymentID, models.OrderStatusPaid); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("payment verified", slog.String("provider_order_id", orderID))
	return nil
}
