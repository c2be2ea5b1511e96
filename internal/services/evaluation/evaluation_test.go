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
	"github.com/mainsmentor/answer-evaluation/internal/notify"
)

// MockEvaluationRepository реализует интерфейс EvaluationRepository
type MockEvaluationRepository struct {
	mock.Mock
}

func (m *MockEvaluationRepository) CreateEvaluationForAnswer(ctx context.Context, e models.Evaluation) (int, error) {
	args := m.Called(ctx, e)
	return args.Int(0), args.Error(1)
}

func (m *MockEvaluationRepository) GetEvaluation(ctx context.Context, id int) (*models.Evaluation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Evaluation), args.Error(1)
}

func (m *MockEvaluationRepository) UpdateEvaluation(ctx context.Context, e models.Evaluation) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *MockEvaluationRepository) SetEvaluatedDocument(ctx context.Context, id int, att models.FileAttachment) error {
	args := m.Called(ctx, id, att)
	return args.Error(0)
}

// MockAnswerReader реализует интерфейс AnswerReader
type MockAnswerReader struct {
	mock.Mock
}

func (m *MockAnswerReader) GetAnswer(ctx context.Context, id int) (*models.Answer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Answer), args.Error(1)
}

// MockFileStore реализует интерфейс FileStore
type MockFileStore struct {
	mock.Mock
}

func (m *MockFileStore) Put(data []byte, originalName, contentType string) (models.FileAttachment, error) {
	args := m.Called(data, originalName, contentType)
	return args.Get(0).(models.FileAttachment), args.Error(1)
}

// MockEventPublisher реализует интерфейс EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) PublishEvaluationCompleted(event notify.EvaluationCompletedEvent) error {
	args := m.Called(event)
	return args.Error(0)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func validRequest() models.DummyEvaluation {
	return models.DummyEvaluation{
		Scores: models.Scores{
			Understanding: 8,
			Structure:     7,
			Relevance:     9,
			Language:      6,
			Examples:      5,
		},
		TotalScore: 35,
		Feedback:   models.Feedback{General: "well structured answer"},
	}
}

func TestEvaluate(t *testing.T) {
	const evaluatorUID = "evaluator-uid"

	t.Run("успешная проверка с пересчётом итога", func(t *testing.T) {
		repo := new(MockEvaluationRepository)
		answers := new(MockAnswerReader)
		events := new(MockEventPublisher)

		repo.On("CreateEvaluationForAnswer", mock.Anything, mock.MatchedBy(func(e models.Evaluation) bool {
			return e.TotalScore == 35 && e.Status == models.EvaluationStatusCompleted
		})).Return(17, nil)
		answers.On("GetAnswer", mock.Anything, 42).
			Return(&models.Answer{ID: 42, UserUID: "student-uid", Subject: "GS2"}, nil)
		events.On("PublishEvaluationCompleted", mock.MatchedBy(func(ev notify.EvaluationCompletedEvent) bool {
			return ev.AnswerID == 42 && ev.EvaluationID == 17 && ev.TotalScore == 35
		})).Return(nil)

		service := NewEvaluationService(repo, answers, new(MockFileStore), events, testLogger())
		id, err := service.Evaluate(context.Background(), 42, evaluatorUID, models.RoleEvaluator, validRequest())

		assert.NoError(t, err)
		assert.Equal(t, 17, id)
		repo.AssertExpectations(t)
		events.AssertExpectations(t)
	})

	t.Run("итог не совпадает с суммой оценок", func(t *testing.T) {
		repo := new(MockEvaluationRepository)
		service := NewEvaluationService(repo, new(MockAnswerReader), new(MockFileStore), new(MockEventPublisher), testLogger())

		req := validRequest()
		req.TotalScore = 20
		_, err := service.Evaluate(context.Background(), 42, evaluatorUID, models.RoleEvaluator, req)

		assert.ErrorIs(t, err, domain.ErrInvalidInput)
		repo.AssertNotCalled(t, "CreateEvaluationForAnswer", mock.Anything, mock.Anything)
	})

	t.Run("обычному пользователю запрещено", func(t *testing.T) {
		service := NewEvaluationService(new(MockEvaluationRepository), new(MockAnswerReader), new(MockFileStore), new(MockEventPublisher), testLogger())

		_, err := service.Evaluate(context.Background(), 42, evaluatorUID, models.RoleUser, validRequest())

		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("повторная проверка возвращает конфликт", func(t *testing.T) {
		repo := new(MockEvaluationRepository)
		repo.On("CreateEvaluationForAnswer", mock.Anything, mock.Anything).
			Return(0, domain.ErrAlreadyEvaluated)

		service := NewEvaluationService(repo, new(MockAnswerReader), new(MockFileStore), new(MockEventPublisher), testLogger())
		_, err := service.Evaluate(context.Background(), 42, evaluatorUID, models.RoleAdmin, validRequest())

		assert.ErrorIs(t, err, domain.ErrAlreadyEvaluated)
	})

	t.Run("сбой публикации события не ломает проверку", func(t *testing.T) {
		repo := new(MockEvaluationRepository)
		answers := new(MockAnswerReader)
		events := new(MockEventPublisher)

		repo.On("CreateEvaluationForAnswer", mock.Anything, mock.Anything).Return(17, nil)
		answers.On("GetAnswer", mock.Anything, 42).
			Return(&models.Answer{ID: 42, UserUID: "student-uid", Subject: "GS2"}, nil)
		events.On("PublishEvaluationCompleted", mock.Anything).
			Return(assert.AnError)

		service := NewEvaluationService(repo, answers, new(MockFileStore), events, testLogger())
		id, err := service.Evaluate(context.Background(), 42, evaluatorUID, models.RoleEvaluator, validRequest())

		assert.NoError(t, err)
		assert.Equal(t, 17, id)
	})
}

func TestUpdate(t *testing.T) {
	const creatorUID = "evaluator-uid"

	existing := func() *models.Evaluation {
		return &models.Evaluation{
			ID:           17,
			AnswerID:     42,
			EvaluatorUID: creatorUID,
			Scores:       models.Scores{Understanding: 5, Structure: 5, Relevance: 5, Language: 5, Examples: 5},
			TotalScore:   25,
			Feedback:     models.Feedback{General: "initial feedback"},
			Status:       models.EvaluationStatusCompleted,
		}
	}

	t.Run("автор меняет оценки с пересчётом итога", func(t *testing.T) {
		repo := new(MockEvaluationRepository)
		repo.On("GetEvaluation", mock.Anything, 17).Return(existing(), nil)
		repo.On("UpdateEvaluation", mock.Anything, mock.MatchedBy(func(e models.Evaluation) bool {
			return e.TotalScore == 40 && e.Scores.Understanding == 8
		})).Return(nil)

		service := NewEvaluationService(repo, new(MockAnswerReader), new(MockFileStore), new(MockEventPublisher), testLogger())

		newScores := models.Scores{Understanding: 8, Structure: 8, Relevance: 8, Language: 8, Examples: 8}
		eval, err := service.Update(context.Background(), 17, creatorUID, models.RoleEvaluator, models.DummyEvaluationPatch{
			Scores: &newScores,
		})

		assert.NoError(t, err)
		assert.Equal(t, 40, eval.TotalScore)
		assert.Equal(t, "initial feedback", eval.Feedback.General)
		repo.AssertExpectations(t)
	})

	t.Run("чужая проверка запрещена не-администратору", func(t *testing.T) {
		repo := new(MockEvaluationRepository)
		repo.On("GetEvaluation", mock.Anything, 17).Return(existing(), nil)

		service := NewEvaluationService(repo, new(MockAnswerReader), new(MockFileStore), new(MockEventPublisher), testLogger())
		_, err := service.Update(context.Background(), 17, "another-evaluator", models.RoleEvaluator, models.DummyEvaluationPatch{})

		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("администратор меняет чужую проверку", func(t *testing.T) {
		repo := new(MockEvaluationRepository)
		repo.On("GetEvaluation", mock.Anything, 17).Return(existing(), nil)
		repo.On("UpdateEvaluation", mock.Anything, mock.Anything).Return(nil)

		service := NewEvaluationService(repo, new(MockAnswerReader), new(MockFileStore), new(MockEventPublisher), testLogger())

		feedback := models.Feedback{General: "revised feedback"}
		eval, err := service.Update(context.Background(), 17, "admin-uid", models.RoleAdmin, models.DummyEvaluationPatch{
			Feedback: &feedback,
		})

		assert.NoError(t, err)
		assert.Equal(t, "revised feedback", eval.Feedback.General)
		assert.Equal(t, 25, eval.TotalScore)
	})
}

func TestAttachDocument(t *testing.T) {
	const creatorUID = "evaluator-uid"

	t.Run("автор загружает документ", func(t *testing.T) {
		repo := new(MockEvaluationRepository)
		files := new(MockFileStore)

		repo.On("GetEvaluation", mock.Anything, 17).
			Return(&models.Evaluation{ID: 17, EvaluatorUID: creatorUID}, nil)
		files.On("Put", []byte("annotated"), "annotated.pdf", "application/pdf").
			Return(models.FileAttachment{Key: "abc.pdf", OriginalName: "annotated.pdf"}, nil)
		repo.On("SetEvaluatedDocument", mock.Anything, 17, mock.AnythingOfType("models.FileAttachment")).
			Return(nil)

		service := NewEvaluationService(repo, new(MockAnswerReader), files, new(MockEventPublisher), testLogger())
		att, err := service.AttachDocument(context.Background(), 17, creatorUID, models.RoleEvaluator, []byte("annotated"), "annotated.pdf", "application/pdf")

		assert.NoError(t, err)
		assert.Equal(t, "abc.pdf", att.Key)
		repo.AssertExpectations(t)
	})

	t.Run("чужому проверяющему запрещено", func(t *testing.T) {
		repo := new(MockEvaluationRepository)
		repo.On("GetEvaluation", mock.Anything, 17).
			Return(&models.Evaluation{ID: 17, EvaluatorUID: creatorUID}, nil)

		service := NewEvaluationService(repo, new(MockAnswerReader), new(MockFileStore), new(MockEventPublisher), testLogger())
		_, err := service.AttachDocument(context.Background(), 17, "another-evaluator", models.RoleEvaluator, []byte("x"), "x.pdf", "application/pdf")

		assert.ErrorIs(t, err, domain.ErrForbidden)
	})
}
