// Package services содержит бизнес-логику проверки ответов: создание
// проверки с атомарной сменой статуса ответа, корректировку и загрузку
// проверенного документа.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mainsmentor/answer-evaluation/internal/domain"
	"github.com/mainsmentor/answer-evaluation/internal/lib/sl"
	"github.com/mainsmentor/answer-evaluation/internal/models"
	"github.com/mainsmentor/answer-evaluation/internal/notify"
)

// EvaluationRepository определяет методы для работы с проверками в хранилище.
type EvaluationRepository interface {
	// CreateEvaluationForAnswer создаёт проверку и переводит ответ
	// в статус evaluated одной транзакцией.
	CreateEvaluationForAnswer(ctx context.Context, e models.Evaluation) (int, error)
	// GetEvaluation возвращает проверку по ID.
	GetEvaluation(ctx context.Context, id int) (*models.Evaluation, error)
	// UpdateEvaluation перезаписывает оценки, отзыв и статус проверки.
	UpdateEvaluation(ctx context.Context, e models.Evaluation) error
	// SetEvaluatedDocument сохраняет описание проверенного документа.
	SetEvaluatedDocument(ctx context.Context, id int, att models.FileAttachment) error
}

// AnswerReader возвращает ответы для обогащения событий.
type AnswerReader interface {
	// GetAnswer возвращает ответ по ID.
	GetAnswer(ctx context.Context, id int) (*models.Answer, error)
}

// FileStore сохраняет загруженные файлы.
type FileStore interface {
	// Put сохраняет содержимое файла и возвращает описание вложения.
	Put(data []byte, originalName, contentType string) (models.FileAttachment, error)
}

// EventPublisher публикует события о завершённых проверках.
type EventPublisher interface {
	// PublishEvaluationCompleted отправляет событие в брокер.
	PublishEvaluationCompleted(event notify.EvaluationCompletedEvent) error
}

// EvaluationService реализует бизнес-логику проверки ответов.
type EvaluationService struct {
	repo    EvaluationRepository
	answers AnswerReader
	files   FileStore
	events  EventPublisher
	log     *slog.Logger
}

// NewEvaluationService создает новый экземпляр EvaluationService.
func NewEvaluationService(repo EvaluationRepository, answers AnswerReader, files FileStore, events EventPublisher, log *slog.Logger) *EvaluationService {
	return &EvaluationService{
		repo:    repo,
		answers: answers,
		files:   files,
		events:  events,
		log:     log,
	}
}

// Evaluate создаёт проверку ответа. Присланный итоговый балл обязан
// совпадать с суммой пяти оценок, иначе возвращается
// domain.ErrInvalidInput. Ответ и проверка меняются атомарно;
// повторная проверка того же ответа возвращает domain.ErrAlreadyEvaluated.
func (s *EvaluationService) Evaluate(ctx context.Context, answerID int, evaluatorUID, role string, req models.DummyEvaluation) (int, error) {
	const op = "services.evaluation.Evaluate"

	if role != models.RoleEvaluator && role != models.RoleAdmin {
		return 0, domain.ErrForbidden
	}

	if req.TotalScore != totalScore(req.Scores) {
		return 0, fmt.Errorf("%s: total score mismatch: %w", op, domain.ErrInvalidInput)
	}

	eval := models.Evaluation{
		AnswerID:       answerID,
		EvaluatorUID:   evaluatorUID,
		Scores:         req.Scores,
		TotalScore:     totalScore(req.Scores),
		Feedback:       req.Feedback,
		EvaluationDate: time.Now().UTC(),
		Status:         models.EvaluationStatusCompleted,
	}

	id, err := s.repo.CreateEvaluationForAnswer(ctx, eval)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("answer evaluated",
		slog.Int("answer_id", answerID),
		slog.Int("evaluation_id", id),
		slog.String("evaluator_uid", evaluatorUID))

	s.publishCompleted(ctx, answerID, id, eval)

	return id, nil
}

// Update корректирует существующую проверку. Разрешено только её автору
// или администратору. Nil-поля не меняются; при смене оценок итоговый
// балл пересчитывается.
func (s *EvaluationService) Update(ctx context.Context, id int, callerUID, role string, patch models.DummyEvaluationPatch) (*models.Evaluation, error) {
	const op = "services.evaluation.Update"

	eval, err := s.repo.GetEvaluation(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if eval.EvaluatorUID != callerUID && role != models.RoleAdmin {
		return nil, domain.ErrForbidden
	}

	if patch.Scores != nil {
		eval.Scores = *patch.Scores
		eval.TotalScore = totalScore(*patch.Scores)
	}
	if patch.Feedback != nil {
		eval.Feedback = *patch.Feedback
	}
	if patch.Status != nil {
		eval.Status = *patch.Status
	}

	if err := s.repo.UpdateEvaluation(ctx, *eval); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("evaluation updated", slog.Int("id", id), slog.String("caller_uid", callerUID))

	return eval, nil
}

// AttachDocument сохраняет проверенный документ и привязывает его
// к проверке. Повторная загрузка заменяет предыдущий документ.
func (s *EvaluationService) AttachDocument(ctx context.Context, id int, callerUID, role string, data []byte, originalName, contentType string) (*models.FileAttachment, error) {
	const op = "services.evaluation.AttachDocument"

	eval, err := s.repo.GetEvaluation(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if eval.EvaluatorUID != callerUID && role != models.RoleAdmin {
		return nil, domain.ErrForbidden
	}

	attachment, err := s.files.Put(data, originalName, contentType)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.repo.SetEvaluatedDocument(ctx, id, attachment); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &attachment, nil
}

// publishCompleted отправляет событие о завершённой проверке.
// Сбой публикации не откатывает проверку и только логируется.
func (s *EvaluationService) publishCompleted(ctx context.Context, answerID, evaluationID int, eval models.Evaluation) {
	subject := ""
	answer, err := s.answers.GetAnswer(ctx, answerID)
	if err == nil {
		subject = answer.Subject
	}

	event := notify.EvaluationCompletedEvent{
		AnswerID:     answerID,
		EvaluationID: evaluationID,
		UserUID:      userUIDOrEmpty(answer),
		Subject:      subject,
		TotalScore:   eval.TotalScore,
		EvaluatedAt:  eval.EvaluationDate,
	}
	if err := s.events.PublishEvaluationCompleted(event); err != nil {
		s.log.Warn("failed to publish evaluation event", slog.Int("answer_id", answerID), sl.Err(err))
	}
}

func userUIDOrEmpty(a *models.Answer) string {
	if a == nil {
		return ""
	}
	return a.UserUID
}

// totalScore суммирует пять оценок проверки.
func totalScore(sc models.Scores) int {
	return sc.Understanding + sc.Structure + sc.Relevance + sc.Language + sc.Examples
}
