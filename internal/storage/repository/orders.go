package repository

import (
	"context"
	"fmt"

	"github.com/mainsmentor/answer-evaluation/internal/domain"
	"github.com/mainsmentor/answer-evaluation/internal/models"
)

// CreateOrder сохраняет новую попытку оплаты и возвращает её ID.
func (s *Storage) CreateOrder(ctx context.Context, o models.Order) (int, error) {
	const op = "storage.CreateOrder"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO orders (user_uid, plan_id, amount, currency,
			      provider_order_id, status, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, NOW())
			  RETURNING id`
	var newID int
	err := s.DB.QueryRowContext(ctx, query,
		o.UserUID, o.PlanID, o.Amount, o.Currency,
		o.ProviderOrderID, o.Status).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// UpdateOrderStatus обновляет статус заказа по идентификатору заказа
// у платёжного провайдера и сохраняет идентификатор платежа.
func (s *Storage) UpdateOrderStatus(ctx context.Context, providerOrderID, paymentID, status string) error {
	const op = "storage.UpdateOrderStatus"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE orders
			  SET status = $1, provider_payment_id = $2
			  WHERE provider_order_id = $3`
	res, err := s.DB.ExecContext(ctx, query, status, paymentID, providerOrderID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s: %w", op, domain.NewNotFoundError("order", providerOrderID))
	}
	return nil
}
