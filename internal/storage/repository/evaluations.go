package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/mainsmentor/answer-evaluation/internal/domain"
	"github.com/mainsmentor/answer-evaluation/internal/models"
)

// CreateEvaluationForAnswer атомарно создаёт проверку и переводит ответ
// в статус evaluated. Оба изменения выполняются в одной транзакции:
// читатель не должен увидеть evaluated-ответ без связанной проверки
// и наоборот. Строка ответа блокируется FOR UPDATE, поэтому две
// конкурентные проверки одного ответа не создадут дубликат.
func (s *Storage) CreateEvaluationForAnswer(ctx context.Context, e models.Evaluation) (int, error) {
	const op = "storage.CreateEvaluationForAnswer"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var status string
	row := tx.QueryRowContext(ctx,
		`SELECT status FROM answers WHERE id = $1 FOR UPDATE`, e.AnswerID)
	if err := row.Scan(&status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("%s: %w", op, domain.NewNotFoundError("answer", strconv.Itoa(e.AnswerID)))
		}
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	if status == models.AnswerStatusEvaluated {
		return 0, fmt.Errorf("%s: %w", op, domain.ErrAlreadyEvaluated)
	}

	feedback, err := json.Marshal(e.Feedback)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	var newID int
	err = tx.QueryRowContext(ctx,
		`INSERT INTO evaluations (answer_id, evaluator_uid,
		     score_understanding, score_structure, score_relevance,
		     score_language, score_examples, total_score,
		     feedback, evaluation_date, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 RETURNING id`,
		e.AnswerID, e.EvaluatorUID,
		e.Scores.Understanding, e.Scores.Structure, e.Scores.Relevance,
		e.Scores.Language, e.Scores.Examples, e.TotalScore,
		feedback, e.EvaluationDate, e.Status).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE answers SET status = $1, evaluation_id = $2 WHERE id = $3`,
		models.AnswerStatusEvaluated, newID, e.AnswerID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// GetEvaluation возвращает проверку по её ID.
func (s *Storage) GetEvaluation(ctx context.Context, id int) (*models.Evaluation, error) {
	const op = "storage.GetEvaluation"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, answer_id, evaluator_uid,
			      score_understanding, score_structure, score_relevance,
			      score_language, score_examples, total_score,
			      feedback, evaluation_date, status, evaluated_document
			  FROM evaluations
			  WHERE id = $1`
	row := s.DB.QueryRowContext(ctx, query, id)

	var e models.Evaluation
	var feedback, document []byte
	if err := row.Scan(&e.ID, &e.AnswerID, &e.EvaluatorUID,
		&e.Scores.Understanding, &e.Scores.Structure, &e.Scores.Relevance,
		&e.Scores.Language, &e.Scores.Examples, &e.TotalScore,
		&feedback, &e.EvaluationDate, &e.Status, &document); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, domain.NewNotFoundError("evaluation", strconv.Itoa(id)))
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if len(feedback) > 0 {
		if err := json.Unmarshal(feedback, &e.Feedback); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}
	if len(document) > 0 {
		var att models.FileAttachment
		if err := json.Unmarshal(document, &att); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		e.EvaluatedDocument = &att
	}
	return &e, nil
}

// UpdateEvaluation перезаписывает изменяемые поля проверки.
func (s *Storage) UpdateEvaluation(ctx context.Context, e models.Evaluation) error {
	const op = "storage.UpdateEvaluation"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	feedback, err := json.Marshal(e.Feedback)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	query := `UPDATE evaluations
			  SET score_understanding = $1, score_structure = $2, score_relevance = $3,
			      score_language = $4, score_examples = $5, total_score = $6,
			      feedback = $7, status = $8
			  WHERE id = $9`
	res, err := s.DB.ExecContext(ctx, query,
		e.Scores.Understanding, e.Scores.Structure, e.Scores.Relevance,
		e.Scores.Language, e.Scores.Examples, e.TotalScore,
		feedback, e.Status, e.ID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s: %w", op, domain.NewNotFoundError("evaluation", strconv.Itoa(e.ID)))
	}
	return nil
}

// SetEvaluatedDocument сохраняет дескриптор проверенного документа.
// Повторное сохранение заменяет предыдущий дескриптор.
func (s *Storage) SetEvaluatedDocument(ctx context.Context, id int, att models.FileAttachment) error {
	const op = "storage.SetEvaluatedDocument"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	document, err := json.Marshal(att)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	res, err := s.DB.ExecContext(ctx,
		`UPDATE evaluations SET evaluated_document = $1 WHERE id = $2`, document, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s: %w", op, domain.NewNotFoundError("evaluation", strconv.Itoa(id)))
	}
	return nil
}
