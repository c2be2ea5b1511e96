// Package submit реализует HTTP-обработчик приёма ответа на проверку.
//
// Handler принимает multipart-форму с предметом и файлом ответа,
// проверяет квоту пользователя через сервис и возвращает ID созданной
// записи. Отказ по квоте отдаётся с кодом причины для клиента.
package submit

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/mainsmentor/answer-evaluation/internal/domain"
	"github.com/mainsmentor/answer-evaluation/internal/http/middlewarectx"
	"github.com/mainsmentor/answer-evaluation/internal/http/response"
	"github.com/mainsmentor/answer-evaluation/internal/lib/sl"
)

// maxUploadSize ограничивает размер загружаемого файла ответа.
const maxUploadSize = 20 << 20 // 20 MiB

// Handler управляет HTTP-запросами на отправку ответов.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики приёма ответа.
type Service interface {
	Submit(ctx context.Context, userUID, subject string, data []byte, originalName, contentType string) (int, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Отправить ответ на проверку
// @Description Принимает файл ответа и предмет. Возвращает ID созданной записи.
// @Tags Answers
// @Accept  multipart/form-data
// @Produce  json
// @Param subject formData string true "Предмет"
// @Param file formData file true "Файл ответа"
// @Success 200 {object} map[string]any "Ответ принят"
// @Failure 400 {object} response.ErrorResponse "Некорректная форма"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.Response "Квота отправок исчерпана"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /answers [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.answer.submit"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || userUID == "" {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		log.Error("failed to parse multipart form", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid multipart form"))
		return
	}

	subject := r.FormValue("subject")
	if subject == "" {
		log.Error("subject is missing")
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.Error("field subject is a required field"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		log.Error("failed to read uploaded file", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("file is required"))
		return
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		log.Error("failed to read uploaded file", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to read uploaded file"))
		return
	}
	log.Info("file received",
		slog.String("name", header.Filename),
		slog.Int("size", len(data)))

	id, err := h.service.Submit(r.Context(), userUID, subject, data, header.Filename, header.Header.Get("Content-Type"))
	if err != nil {
		var qe *domain.QuotaError
		if errors.As(err, &qe) {
			log.Info("submission rejected", slog.String("reason", qe.Reason))
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.QuotaError(qe))
			return
		}
		log.Error("failed to submit answer", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not submit answer"))
		return
	}

	log.Info("answer submitted", slog.Int("id", id))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"id":     id,
		"status": "pending",
	}))
}
