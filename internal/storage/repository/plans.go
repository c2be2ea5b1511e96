package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/mainsmentor/answer-evaluation/internal/domain"
	"github.com/mainsmentor/answer-evaluation/internal/models"
)

// GetPlan возвращает тарифный план по его ID.
func (s *Storage) GetPlan(ctx context.Context, id int) (*models.SubscriptionPlan, error) {
	const op = "storage.GetPlan"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, name, description, monthly_price, annual_price,
			      evaluations_per_month, evaluations_per_day,
			      access_to_resources, access_to_videos, personalized_feedback,
			      mentorship_sessions, mock_interviews, is_popular, is_active
			  FROM subscription_plans
			  WHERE id = $1`
	p := &models.SubscriptionPlan{}
	row := s.DB.QueryRowContext(ctx, query, id)
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &p.MonthlyPrice, &p.AnnualPrice,
		&p.EvaluationsPerMonth, &p.EvaluationsPerDay,
		&p.AccessToResources, &p.AccessToVideos, &p.PersonalizedFeedback,
		&p.MentorshipSessions, &p.MockInterviews, &p.IsPopular, &p.IsActive); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, domain.NewNotFoundError("plan", strconv.Itoa(id)))
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

// ListActivePlans возвращает все активные тарифные планы каталога.
func (s *Storage) ListActivePlans(ctx context.Context) ([]*models.SubscriptionPlan, error) {
	const op = "storage.ListActivePlans"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, name, description, monthly_price, annual_price,
			      evaluations_per_month, evaluations_per_day,
			      access_to_resources, access_to_videos, personalized_feedback,
			      mentorship_sessions, mock_interviews, is_popular, is_active
			  FROM subscription_plans
			  WHERE is_active = true
			  ORDER BY id`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.SubscriptionPlan
	for rows.Next() {
		var p models.SubscriptionPlan
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.MonthlyPrice, &p.AnnualPrice,
			&p.EvaluationsPerMonth, &p.EvaluationsPerDay,
			&p.AccessToResources, &p.AccessToVideos, &p.PersonalizedFeedback,
			&p.MentorshipSessions, &p.MockInterviews, &p.IsPopular, &p.IsActive); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
