package services

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/mainsmentor/answer-evaluation/internal/domain"
	"github.com/mainsmentor/answer-evaluation/internal/models"
)

// MockAnswerRepository реализует интерфейс AnswerRepository
type MockAnswerRepository struct {
	mock.Mock
}

func (m *MockAnswerRepository) CreateAnswer(ctx context.Context, a models.Answer) (int, error) {
	args := m.Called(ctx, a)
	return args.Int(0), args.Error(1)
}

func (m *MockAnswerRepository) GetAnswer(ctx context.Context, id int) (*models.Answer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Answer), args.Error(1)
}

func (m *MockAnswerRepository) ListAnswers(ctx context.Context, f models.ListFilter) ([]*models.Answer, int, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*models.Answer), args.Int(1), args.Error(2)
}

func (m *MockAnswerRepository) GetStats(ctx context.Context, userUID string) (*models.Stats, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Stats), args.Error(1)
}

// MockFileStore реализует интерфейс FileStore
type MockFileStore struct {
	mock.Mock
}

func (m *MockFileStore) Put(data []byte, originalName, contentType string) (models.FileAttachment, error) {
	args := m.Called(data, originalName, contentType)
	return args.Get(0).(models.FileAttachment), args.Error(1)
}

func (m *MockFileStore) SignedReadURL(key string) string {
	args := m.Called(key)
	return args.String(0)
}

// MockEntitlement реализует интерфейс Entitlement
type MockEntitlement struct {
	mock.Mock
}

func (m *MockEntitlement) CanSubmit(ctx context.Context, userUID string) error {
	args := m.Called(ctx, userUID)
	return args.Error(0)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func TestSubmit(t *testing.T) {
	const uid = "student-uid"

	t.Run("успешная отправка", func(t *testing.T) {
		repo := new(MockAnswerRepository)
		files := new(MockFileStore)
		quota := new(MockEntitlement)

		quota.On("CanSubmit", mock.Anything, uid).Return(nil)
		files.On("Put", []byte("essay"), "essay.pdf", "application/pdf").
			Return(models.FileAttachment{Key: "key.pdf"}, nil)
		repo.On("CreateAnswer", mock.Anything, mock.MatchedBy(func(a models.Answer) bool {
			return a.UserUID == uid && a.Status == models.AnswerStatusPending && len(a.Attachments) == 1
		})).Return(7, nil)

		service := NewSubmissionService(repo, files, quota, testLogger())
		id, err := service.Submit(context.Background(), uid, "GS1", []byte("essay"), "essay.pdf", "application/pdf")

		assert.NoError(t, err)
		assert.Equal(t, 7, id)
		repo.AssertExpectations(t)
	})

	t.Run("отказ по квоте не трогает хранилище", func(t *testing.T) {
		repo := new(MockAnswerRepository)
		files := new(MockFileStore)
		quota := new(MockEntitlement)

		quota.On("CanSubmit", mock.Anything, uid).Return(domain.NewFreeQuotaError())

		service := NewSubmissionService(repo, files, quota, testLogger())
		_, err := service.Submit(context.Background(), uid, "GS1", []byte("essay"), "essay.pdf", "application/pdf")

		assert.ErrorIs(t, err, domain.ErrQuotaExceeded)
		files.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything)
		repo.AssertNotCalled(t, "CreateAnswer", mock.Anything, mock.Anything)
	})

	t.Run("сбой хранилища не создаёт запись", func(t *testing.T) {
		repo := new(MockAnswerRepository)
		files := new(MockFileStore)
		quota := new(MockEntitlement)

		quota.On("CanSubmit", mock.Anything, uid).Return(nil)
		files.On("Put", mock.Anything, mock.Anything, mock.Anything).
			Return(models.FileAttachment{}, domain.NewStorageError("key", assert.AnError))

		service := NewSubmissionService(repo, files, quota, testLogger())
		_, err := service.Submit(context.Background(), uid, "GS1", []byte("essay"), "essay.pdf", "application/pdf")

		assert.ErrorIs(t, err, domain.ErrStorage)
		repo.AssertNotCalled(t, "CreateAnswer", mock.Anything, mock.Anything)
	})
}

func TestGet(t *testing.T) {
	answer := &models.Answer{
		ID:      5,
		UserUID: "owner-uid",
		Attachments: []models.FileAttachment{
			{Key: "key.pdf", Path: "/var/uploads/key.pdf"},
		},
	}

	t.Run("владелец получает ответ с подписанной ссылкой", func(t *testing.T) {
		repo := new(MockAnswerRepository)
		files := new(MockFileStore)

		repo.On("GetAnswer", mock.Anything, 5).Return(answer, nil)
		files.On("SignedReadURL", "key.pdf").Return("/files/key.pdf?expires=1&sig=abc")

		service := NewSubmissionService(repo, files, new(MockEntitlement), testLogger())
		got, err := service.Get(context.Background(), 5, "owner-uid", models.RoleUser)

		assert.NoError(t, err)
		assert.Equal(t, "/files/key.pdf?expires=1&sig=abc", got.Attachments[0].Path)
	})

	t.Run("чужой ответ запрещён обычному пользователю", func(t *testing.T) {
		repo := new(MockAnswerRepository)
		repo.On("GetAnswer", mock.Anything, 5).Return(answer, nil)

		service := NewSubmissionService(repo, new(MockFileStore), new(MockEntitlement), testLogger())
		_, err := service.Get(context.Background(), 5, "another-uid", models.RoleUser)

		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("проверяющий видит чужой ответ", func(t *testing.T) {
		repo := new(MockAnswerRepository)
		files := new(MockFileStore)

		repo.On("GetAnswer", mock.Anything, 5).Return(answer, nil)
		files.On("SignedReadURL", "key.pdf").Return("/files/key.pdf?expires=1&sig=abc")

		service := NewSubmissionService(repo, files, new(MockEntitlement), testLogger())
		got, err := service.Get(context.Background(), 5, "evaluator-uid", models.RoleEvaluator)

		assert.NoError(t, err)
		assert.Equal(t, 5, got.ID)
	})
}

func TestList(t *testing.T) {
	t.Run("роль user всегда ограничена своими ответами", func(t *testing.T) {
		repo := new(MockAnswerRepository)

		repo.On("ListAnswers", mock.Anything, mock.MatchedBy(func(f models.ListFilter) bool {
			return f.UserUID == "caller-uid" && f.Page == 1 && f.PageSize == 20
		})).Return([]*models.Answer{}, 0, nil)

		service := NewSubmissionService(repo, new(MockFileStore), new(MockEntitlement), testLogger())
		_, err := service.List(context.Background(), models.ListFilter{UserUID: "someone-else"}, "caller-uid", models.RoleUser)

		assert.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("очередь непроверенных отдаётся от старых к новым", func(t *testing.T) {
		repo := new(MockAnswerRepository)

		repo.On("ListAnswers", mock.Anything, mock.MatchedBy(func(f models.ListFilter) bool {
			return f.Status == models.AnswerStatusPending &&
				f.SortBy == "submission_date" && f.SortDir == "asc" &&
				f.UserUID == ""
		})).Return([]*models.Answer{}, 0, nil)

		service := NewSubmissionService(repo, new(MockFileStore), new(MockEntitlement), testLogger())
		_, err := service.ListPending(context.Background(), 1, 20)

		assert.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("подсчёт страниц", func(t *testing.T) {
		repo := new(MockAnswerRepository)
		repo.On("ListAnswers", mock.Anything, mock.Anything).
			Return([]*models.Answer{}, 45, nil)

		service := NewSubmissionService(repo, new(MockFileStore), new(MockEntitlement), testLogger())
		page, err := service.List(context.Background(), models.ListFilter{Page: 2, PageSize: 20}, "", models.RoleAdmin)

		assert.NoError(t, err)
		assert.Equal(t, 45, page.Total)
		assert.Equal(t, 3, page.TotalPages)
		assert.Equal(t, 2, page.Page)
	})
}
