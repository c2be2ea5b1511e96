// Package models содержит доменные структуры платформы проверки ответов:
// пользователей, тарифные планы, присланные ответы, проверки и заказы,
// а также вспомогательные Dummy-типы для приёма данных из JSON-запросов.
package models

import "time"

// Статусы ответа. Переходы in-review и rejected зарезервированы
// за инструментами проверяющих и пока не используются основным потоком.
const (
	AnswerStatusPending   = "pending"
	AnswerStatusInReview  = "in-review"
	AnswerStatusEvaluated = "evaluated"
	AnswerStatusRejected  = "rejected"
)

// Статусы проверки.
const (
	EvaluationStatusDraft     = "draft"
	EvaluationStatusCompleted = "completed"
)

// Статусы заказа на оплату.
const (
	OrderStatusCreated = "created"
	OrderStatusPaid    = "paid"
	OrderStatusFailed  = "failed"
)

// Роли пользователей.
const (
	RoleUser      = "user"
	RoleEvaluator = "evaluator"
	RoleAdmin     = "admin"
)

// User описывает пользователя платформы.
// SubscriptionPlanID и SubscriptionExpiry могут быть nil —
// это означает отсутствие активной подписки (бесплатный уровень).
type User struct {
	UID                string     // UUID пользователя
	Email              string     // Электронная почта
	Username           string     // Имя пользователя
	PasswordHash       string     // bcrypt-хэш пароля
	Role               string     // user | evaluator | admin
	SubscriptionPlanID *int       // Ссылка на тарифный план
	SubscriptionExpiry *time.Time // Дата окончания подписки
	IsActive           bool       // Деактивация вместо удаления
	CreatedAt          time.Time
}

// SubscriptionPlan описывает запись каталога тарифов.
// Нулевое значение лимита означает отсутствие ограничения.
type SubscriptionPlan struct {
	ID                   int
	Name                 string
	Description          string
	MonthlyPrice         int
	AnnualPrice          int
	EvaluationsPerMonth  int // 0 = безлимит
	EvaluationsPerDay    int // 0 = безлимит
	AccessToResources    bool
	AccessToVideos       bool
	PersonalizedFeedback bool
	MentorshipSessions   int
	MockInterviews       int
	IsPopular            bool
	IsActive             bool
}

// FileAttachment описывает сохранённый файл: ключ в хранилище,
// путь или URL для чтения и исходные атрибуты загрузки.
type FileAttachment struct {
	Key          string `json:"key"`
	Path         string `json:"path"`
	OriginalName string `json:"original_name"`
	ContentType  string `json:"content_type"`
	Size         int64  `json:"size"`
}

// Answer представляет один присланный на проверку ответ.
type Answer struct {
	ID             int
	UserUID        string
	Subject        string
	SubmissionDate time.Time
	Status         string
	EvaluationID   *int            // Заполняется только при статусе evaluated
	Attachments    []FileAttachment
	IsDeleted      bool
}

// Scores содержит пять оценок проверки, каждая в диапазоне 0-10.
type Scores struct {
	Understanding int `json:"understanding" validate:"min=0,max=10"`
	Structure     int `json:"structure" validate:"min=0,max=10"`
	Relevance     int `json:"relevance" validate:"min=0,max=10"`
	Language      int `json:"language" validate:"min=0,max=10"`
	Examples      int `json:"examples" validate:"min=0,max=10"`
}

// LineComment комментарий проверяющего, привязанный к строке ответа.
type LineComment struct {
	Text       string `json:"text"`
	LineNumber int    `json:"line_number"`
}

// Feedback текстовая часть проверки.
type Feedback struct {
	General             string        `json:"general" validate:"required"`
	Strengths           []string      `json:"strengths"`
	AreasForImprovement []string      `json:"areas_for_improvement"`
	SpecificComments    []LineComment `json:"specific_comments"`
}

// Evaluation — запись проверки, один к одному с Answer после создания.
type Evaluation struct {
	ID                int
	AnswerID          int
	EvaluatorUID      string
	Scores            Scores
	TotalScore        int
	Feedback          Feedback
	EvaluationDate    time.Time
	Status            string
	EvaluatedDocument *FileAttachment // Загруженный проверенный документ
}

// Order — одна попытка оплаты подписки.
type Order struct {
	ID                int
	UserUID           string
	PlanID            int
	Amount            int64 // Сумма в младших единицах валюты
	Currency          string
	ProviderOrderID   string
	ProviderPaymentID string
	Status            string
	CreatedAt         time.Time
}

// DummyEvaluation используется для приёма проверки из JSON-запроса.
// TotalScore обязан совпадать с суммой пяти оценок.
type DummyEvaluation struct {
	Scores     Scores   `json:"scores" validate:"required"`
	TotalScore int      `json:"total_score" validate:"min=0,max=50"`
	Feedback   Feedback `json:"feedback" validate:"required"`
}

// DummyEvaluationPatch частичное обновление проверки: nil-поля не меняются.
type DummyEvaluationPatch struct {
	Scores     *Scores   `json:"scores"`
	TotalScore *int      `json:"total_score"`
	Feedback   *Feedback `json:"feedback"`
	Status     *string   `json:"status"`
}

// ListFilter параметры выборки ответов.
type ListFilter struct {
	UserUID  string // Пустое значение — все пользователи (для admin/evaluator)
	Status   string
	Subject  string
	Page     int
	PageSize int
	SortBy   string
	SortDir  string
}

// Page результат постраничной выборки ответов.
type Page struct {
	Items      []*Answer `json:"items"`
	Total      int       `json:"total"`
	TotalPages int       `json:"total_pages"`
	Page       int       `json:"page"`
}

// SubjectStat агрегат по одному предмету.
type SubjectStat struct {
	Subject          string  `json:"subject"`
	AverageScore     float64 `json:"average_score"`
	SubmissionsCount int     `json:"submissions_count"`
}

// Stats сводная статистика пользователя по проверкам.
type Stats struct {
	TotalSubmissions     int           `json:"total_submissions"`
	PendingSubmissions   int           `json:"pending_submissions"`
	EvaluatedSubmissions int           `json:"evaluated_submissions"`
	AverageScore         float64       `json:"average_score"`
	SubjectPerformance   []SubjectStat `json:"subject_performance"`
}
