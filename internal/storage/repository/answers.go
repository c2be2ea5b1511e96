package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/mainsmentor/answer-evaluation/internal/domain"
	"github.com/mainsmentor/answer-evaluation/internal/models"
)

// Разрешённые ключи сортировки выборки ответов. Всё остальное
// приводится к submission_date, чтобы не подставлять ввод в ORDER BY.
var answerSortColumns = map[string]string{
	"submission_date": "submission_date",
	"subject":         "subject",
	"status":          "status",
	"id":              "id",
}

// CreateAnswer вставляет новый ответ и возвращает его ID.
func (s *Storage) CreateAnswer(ctx context.Context, a models.Answer) (int, error) {
	const op = "storage.CreateAnswer"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	attachments, err := json.Marshal(a.Attachments)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	query := `INSERT INTO answers (user_uid, subject, submission_date, status,
			      attachments, is_deleted)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  RETURNING id`
	var newID int
	err = s.DB.QueryRowContext(ctx, query,
		a.UserUID, a.Subject, a.SubmissionDate, a.Status,
		attachments, a.IsDeleted).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// GetAnswer возвращает ответ по его ID.
func (s *Storage) GetAnswer(ctx context.Context, id int) (*models.Answer, error) {
	const op = "storage.GetAnswer"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, subject, submission_date, status,
			      evaluation_id, attachments, is_deleted
			  FROM answers
			  WHERE id = $1`
	row := s.DB.QueryRowContext(ctx, query, id)

	a, err := scanAnswer(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, domain.NewNotFoundError("answer", strconv.Itoa(id)))
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return a, nil
}

// CountAnswers подсчитывает ответы пользователя, отправленные не раньше since.
// При since == nil считается вся история. Мягко удалённые ответы учитываются:
// удаление отправки не возвращает квоту.
func (s *Storage) CountAnswers(ctx context.Context, userUID string, since *time.Time) (int, error) {
	const op = "storage.CountAnswers"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT COUNT(*) FROM answers
			  WHERE user_uid = $1
			    AND ($2::timestamptz IS NULL OR submission_date >= $2)`
	var count int
	if err := s.DB.QueryRowContext(ctx, query, userUID, since).Scan(&count); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}

// ListAnswers возвращает страницу ответов по фильтру вместе с общим количеством.
// Пустой UserUID означает выборку по всем пользователям.
func (s *Storage) ListAnswers(ctx context.Context, f models.ListFilter) ([]*models.Answer, int, error) {
	const op = "storage.ListAnswers"
	select {
	case <-ctx.Done():
		return nil, 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	sortColumn, ok := answerSortColumns[f.SortBy]
	if !ok {
		sortColumn = "submission_date"
	}
	direction := "DESC"
	if f.SortDir == "asc" {
		direction = "ASC"
	}

	where := `WHERE is_deleted = false
			    AND ($1 = '' OR user_uid::text = $1)
			    AND ($2 = '' OR status = $2)
			    AND ($3 = '' OR subject = $3)`

	var total int
	countQuery := `SELECT COUNT(*) FROM answers ` + where
	if err := s.DB.QueryRowContext(ctx, countQuery, f.UserUID, f.Status, f.Subject).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	offset := (f.Page - 1) * f.PageSize
	query := `SELECT id, user_uid, subject, submission_date, status,
			      evaluation_id, attachments, is_deleted
			  FROM answers ` + where +
		fmt.Sprintf(" ORDER BY %s %s LIMIT $4 OFFSET $5", sortColumn, direction)
	rows, err := s.DB.QueryContext(ctx, query, f.UserUID, f.Status, f.Subject, f.PageSize, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Answer
	for rows.Next() {
		a, err := scanAnswer(rows.Scan)
		if err != nil {
			return nil, 0, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, a)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	return result, total, nil
}

// GetStats возвращает сводную статистику проверок пользователя:
// количество отправок по статусам, средний балл и разбивку по предметам.
func (s *Storage) GetStats(ctx context.Context, userUID string) (*models.Stats, error) {
	const op = "storage.GetStats"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	stats := &models.Stats{}
	query := `SELECT
			      COUNT(*),
			      COUNT(*) FILTER (WHERE status = 'pending'),
			      COUNT(*) FILTER (WHERE status = 'evaluated'),
			      COALESCE(ROUND(AVG(e.total_score) FILTER (WHERE a.status = 'evaluated'), 1), 0)
			  FROM answers a
			  LEFT JOIN evaluations e ON e.id = a.evaluation_id
			  WHERE a.user_uid = $1 AND a.is_deleted = false`
	if err := s.DB.QueryRowContext(ctx, query, userUID).Scan(
		&stats.TotalSubmissions, &stats.PendingSubmissions,
		&stats.EvaluatedSubmissions, &stats.AverageScore); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	subjectQuery := `SELECT a.subject,
			      COALESCE(ROUND(AVG(e.total_score), 1), 0),
			      COUNT(*)
			  FROM answers a
			  JOIN evaluations e ON e.id = a.evaluation_id
			  WHERE a.user_uid = $1 AND a.status = 'evaluated' AND a.is_deleted = false
			  GROUP BY a.subject
			  ORDER BY a.subject`
	rows, err := s.DB.QueryContext(ctx, subjectQuery, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	for rows.Next() {
		var st models.SubjectStat
		if err := rows.Scan(&st.Subject, &st.AverageScore, &st.SubmissionsCount); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		stats.SubjectPerformance = append(stats.SubjectPerformance, st)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return stats, nil
}

func scanAnswer(scan func(dest ...any) error) (*models.Answer, error) {
	var a models.Answer
	var evaluationID sql.NullInt64
	var attachments []byte
	if err := scan(&a.ID, &a.UserUID, &a.Subject, &a.SubmissionDate, &a.Status,
		&evaluationID, &attachments, &a.IsDeleted); err != nil {
		return nil, err
	}
	if evaluationID.Valid {
		id := int(evaluationID.Int64)
		a.EvaluationID = &id
	}
	if len(attachments) > 0 {
		if err := json.Unmarshal(attachments, &a.Attachments); err != nil {
			return nil, err
		}
	}
	return &a, nil
}
