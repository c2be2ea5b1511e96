// Package domain содержит доменные ошибки платформы и коды причин,
// по которым обработчики выбирают HTTP-статус и машинно-читаемый ответ.
package domain

import (
	"errors"
	"fmt"
)

// Sentinel-ошибки ядра.
var (
	// ErrNotFound запись не найдена
	ErrNotFound = errors.New("record not found")

	// ErrForbidden действие запрещено для данного пользователя
	ErrForbidden = errors.New("not authorized")

	// ErrAlreadyEvaluated ответ уже проверен, повторная проверка запрещена
	ErrAlreadyEvaluated = errors.New("submission already evaluated")

	// ErrQuotaExceeded лимит отправок исчерпан
	ErrQuotaExceeded = errors.New("submission quota exceeded")

	// ErrStorage ошибка файлового хранилища
	ErrStorage = errors.New("storage failure")

	// ErrSignatureMismatch подпись платежа не совпала с ожидаемой
	ErrSignatureMismatch = errors.New("payment signature mismatch")

	// ErrInvalidInput неверные входные данные
	ErrInvalidInput = errors.New("invalid input data")
)

// Коды причин отказа в отправке ответа.
const (
	ReasonFreeQuotaExhausted  = "FREE_QUOTA_EXHAUSTED"
	ReasonMonthlyLimitReached = "MONTHLY_LIMIT_REACHED"
	ReasonDailyLimitReached   = "DAILY_LIMIT_REACHED"
)

// QuotaError отказ в отправке с кодом причины и числовым лимитом.
type QuotaError struct {
	Reason  string
	Message string
	Limit   int
}

// Error реализует интерфейс error.
func (e *QuotaError) Error() string {
	return fmt.Sprintf("%s: %s", e.Reason, e.Message)
}

// Is позволяет сопоставлять QuotaError с ErrQuotaExceeded через errors.Is.
func (e *QuotaError) Is(target error) bool {
	return target == ErrQuotaExceeded
}

// NewFreeQuotaError отказ бесплатного уровня: использованы обе бесплатные отправки.
func NewFreeQuotaError() *QuotaError {
	return &QuotaError{
		Reason:  ReasonFreeQuotaExhausted,
		Message: "you have used your 2 free uploads, please subscribe to continue submitting answers",
		Limit:   2,
	}
}

// NewMonthlyLimitError отказ по месячному лимиту тарифа.
func NewMonthlyLimitError(limit int) *QuotaError {
	return &QuotaError{
		Reason:  ReasonMonthlyLimitReached,
		Message: fmt.Sprintf("monthly limit of %d evaluations reached", limit),
		Limit:   limit,
	}
}

// NewDailyLimitError отказ по дневному лимиту тарифа.
func NewDailyLimitError(limit int) *QuotaError {
	return &QuotaError{
		Reason:  ReasonDailyLimitReached,
		Message: fmt.Sprintf("daily limit of %d evaluations reached", limit),
		Limit:   limit,
	}
}

// NotFoundError уточняет, какая сущность не найдена.
type NotFoundError struct {
	Entity string
	ID     string
}

// Error реализует интерфейс error.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with id %s not found", e.Entity, e.ID)
}

// Is сопоставляет NotFoundError с ErrNotFound.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFoundError создает ошибку "не найдено" для сущности.
func NewNotFoundError(entity, id string) *NotFoundError {
	return &NotFoundError{Entity: entity, ID: id}
}

// StorageError оборачивает сбой файлового хранилища с указанием ключа.
type StorageError struct {
	Key         string
	OriginalErr error
}

// Error реализует интерфейс error.
func (e *StorageError) Error() string {
	return fmt.Sprintf("storage failure for key %q: %v", e.Key, e.OriginalErr)
}

// Unwrap возвращает оригинальную ошибку.
func (e *StorageError) Unwrap() error {
	return e.OriginalErr
}

// Is сопоставляет StorageError с ErrStorage.
func (e *StorageError) Is(target error) bool {
	return target == ErrStorage
}

// NewStorageError создает ошибку хранилища.
func NewStorageError(key string, err error) *StorageError {
	return &StorageError{Key: key, OriginalErr: err}
}
