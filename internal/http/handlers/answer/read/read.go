// Package read реализует HTTP-обработчик получения одного ответа по ID.
package read

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/mainsmentor/answer-evaluation/internal/domain"
	"github.com/mainsmentor/answer-evaluation/internal/http/middlewarectx"
	"github.com/mainsmentor/answer-evaluation/internal/http/response"
	"github.com/mainsmentor/answer-evaluation/internal/lib/sl"
	"github.com/mainsmentor/answer-evaluation/internal/models"
)

// Handler управляет HTTP-запросами на чтение ответа.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики чтения ответа.
type Service interface {
	Get(ctx context.Context, id int, callerUID, role string) (*models.Answer, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Получить ответ
// @Description Возвращает ответ по ID с подписанными ссылками на файлы.
// @Tags Answers
// @Produce  json
// @Param id path int true "ID ответа"
// @Success 200 {object} map[string]any "Найденный ответ"
// @Failure 400 {object} response.ErrorResponse "Некорректный ID"
// @Failure 403 {object} response.ErrorResponse "Чужой ответ"
// @Failure 404 {object} response.ErrorResponse "Ответ не найден"
// @Router /answers/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.answer.read"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		log.Error("invalid answer id", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid answer id"))
		return
	}

	userUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	role, _ := r.Context().Value(middlewarectx.Role).(string)
	if !ok || userUID == "" {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	answer, err := h.service.Get(r.Context(), id, userUID, role)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			log.Info("answer not found", slog.Int("id", id))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("answer not found"))
		case errors.Is(err, domain.ErrForbidden):
			log.Info("access to foreign answer denied", slog.Int("id", id))
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error("access denied"))
		default:
			log.Error("failed to read answer", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not read answer"))
		}
		return
	}

	log.Info("answer found", slog.Int("id", id))
	render.JSON(w, r, response.OKWithData(answer))
}
