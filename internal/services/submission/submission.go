// Package services содержит бизнес-логику жизненного цикла ответов:
// приём с проверкой квоты, выборки с учётом роли и статистику.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mainsmentor/answer-evaluation/internal/domain"
	"github.com/mainsmentor/answer-evaluation/internal/models"
)

// AnswerRepository определяет методы для работы с ответами в хранилище.
type AnswerRepository interface {
	// CreateAnswer сохраняет новый ответ и возвращает его ID.
	CreateAnswer(ctx context.Context, a models.Answer) (int, error)
	// GetAnswer возвращает ответ по ID.
	GetAnswer(ctx context.Context, id int) (*models.Answer, error)
	// ListAnswers возвращает страницу ответов и общее число записей по фильтру.
	ListAnswers(ctx context.Context, f models.ListFilter) ([]*models.Answer, int, error)
	// GetStats возвращает сводную статистику пользователя.
	GetStats(ctx context.Context, userUID string) (*models.Stats, error)
}

// FileStore сохраняет загруженные файлы и выдаёт подписанные ссылки.
type FileStore interface {
	// Put сохраняет содержимое файла и возвращает описание вложения.
	Put(data []byte, originalName, contentType string) (models.FileAttachment, error)
	// SignedReadURL строит подписанную ссылку на чтение файла.
	SignedReadURL(key string) string
}

// Entitlement проверяет право пользователя на отправку.
type Entitlement interface {
	// CanSubmit возвращает nil либо *domain.QuotaError.
	CanSubmit(ctx context.Context, userUID string) error
}

// SubmissionService реализует жизненный цикл присланных ответов.
type SubmissionService struct {
	repo        AnswerRepository
	files       FileStore
	entitlement Entitlement
	log         *slog.Logger
}

// NewSubmissionService создает новый экземпляр SubmissionService.
func NewSubmissionService(repo AnswerRepository, files FileStore, entitlement Entitlement, log *slog.Logger) *SubmissionService {
	return &SubmissionService{
		repo:        repo,
		files:       files,
		entitlement: entitlement,
		log:         log,
	}
}

// Submit принимает новый ответ: проверяет квоту, сохраняет файл и создаёт
// запись. Файл сохраняется до записи в базу; при сбое хранилища запись
// не создаётся, поэтому осиротевших записей без файла не бывает.
func (s *SubmissionService) Submit(ctx context.Context, userUID, subject string, data []byte, originalName, contentType string) (int, error) {
	const op = "services.submission.Submit"

	if err := s.entitlement.CanSubmit(ctx, userUID); err != nil {
		return 0, err
	}

	attachment, err := s.files.Put(data, originalName, contentType)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	answer := models.Answer{
		UserUID:        userUID,
		Subject:        subject,
		SubmissionDate: time.Now().UTC(),
		Status:         models.AnswerStatusPending,
		Attachments:    []models.FileAttachment{attachment},
	}

	id, err := s.repo.CreateAnswer(ctx, answer)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("answer submitted",
		slog.Int("id", id),
		slog.String("user_uid", userUID),
		slog.String("subject", subject))

	return id, nil
}

// Get возвращает ответ по ID с подписанными ссылками на файлы.
// Обычный пользователь видит только собственные ответы.
func (s *SubmissionService) Get(ctx context.Context, id int, callerUID, role string) (*models.Answer, error) {
	const op = "services.submission.Get"

	answer, err := s.repo.GetAnswer(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if role == models.RoleUser && answer.UserUID != callerUID {
		return nil, domain.ErrForbidden
	}
	s.signAttachments(answer)
	return answer, nil
}

// List возвращает страницу ответов. Для роли user выборка всегда
// ограничивается собственными ответами вызывающего.
func (s *SubmissionService) List(ctx context.Context, f models.ListFilter, callerUID, role string) (*models.Page, error) {
	const op = "services.submission.List"

	if role == models.RoleUser {
		f.UserUID = callerUID
	}
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 || f.PageSize > 100 {
		f.PageSize = 20
	}

	items, total, err := s.repo.ListAnswers(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	for _, a := range items {
		s.signAttachments(a)
	}

	totalPages := (total + f.PageSize - 1) / f.PageSize
	return &models.Page{
		Items:      items,
		Total:      total,
		TotalPages: totalPages,
		Page:       f.Page,
	}, nil
}

// ListPending возвращает очередь непроверенных ответов для проверяющих.
func (s *SubmissionService) ListPending(ctx context.Context, page, pageSize int) (*models.Page, error) {
	f := models.ListFilter{
		Status:   models.AnswerStatusPending,
		Page:     page,
		PageSize: pageSize,
		SortBy:   "submission_date",
		SortDir:  "asc",
	}
	return s.List(ctx, f, "", models.RoleEvaluator)
}

// Stats возвращает сводную статистику по ответам пользователя.
func (s *SubmissionService) Stats(ctx context.Context, userUID string) (*models.Stats, error) {
	const op = "services.submission.Stats"
	stats, err := s.repo.GetStats(ctx, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return stats, nil
}

// signAttachments заменяет пути вложений на подписанные ссылки.
func (s *SubmissionService) signAttachments(a *models.Answer) {
	for i := range a.Attachments {
		a.Attachments[i].Path = s.files.SignedReadURL(a.Attachments[i].Key)
	}
}
