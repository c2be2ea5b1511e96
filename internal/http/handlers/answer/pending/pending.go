// Package pending реализует HTTP-обработчик очереди непроверенных ответов
// для проверяющих.
package pending

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/mainsmentor/answer-evaluation/internal/http/response"
	"github.com/mainsmentor/answer-evaluation/internal/lib/sl"
	"github.com/mainsmentor/answer-evaluation/internal/models"
)

// Handler управляет HTTP-запросами на получение очереди проверок.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики очереди проверок.
type Service interface {
	ListPending(ctx context.Context, page, pageSize int) (*models.Page, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Очередь непроверенных ответов
// @Description Возвращает непроверенные ответы от старых к новым. Доступно проверяющим и администраторам.
// @Tags Answers
// @Produce  json
// @Param page query int false "Номер страницы"
// @Param page_size query int false "Размер страницы"
// @Success 200 {object} map[string]any "Очередь ответов"
// @Failure 403 {object} response.ErrorResponse "Недостаточно прав"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /answers/pending [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.answer.pending"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	pageSize, _ := strconv.Atoi(q.Get("page_size"))

	result, err := h.service.ListPending(r.Context(), page, pageSize)
	if err != nil {
		log.Error("failed to list pending answers", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list pending answers"))
		return
	}

	log.Info("pending answers listed", slog.Int("total", result.Total))
	render.JSON(w, r, response.OKWithData(result))
}
