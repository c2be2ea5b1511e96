// Package list реализует HTTP-обработчик постраничной выборки ответов.
//
// Обычный пользователь видит только собственные ответы, проверяющий
// и администратор — все. Параметры фильтра и сортировки берутся
// из query-строки.
package list

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/mainsmentor/answer-evaluation/internal/http/middlewarectx"
	"github.com/mainsmentor/answer-evaluation/internal/http/response"
	"github.com/mainsmentor/answer-evaluation/internal/lib/sl"
	"github.com/mainsmentor/answer-evaluation/internal/models"
)

// Handler управляет HTTP-запросами на получение списка ответов.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики выборки ответов.
type Service interface {
	List(ctx context.Context, f models.ListFilter, callerUID, role string) (*models.Page, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Список ответов
// @Description Возвращает страницу ответов с фильтрами по статусу и предмету.
// @Tags Answers
// @Produce  json
// @Param status query string false "Фильтр по статусу"
// @Param subject query string false "Фильтр по предмету"
// @Param page query int false "Номер страницы"
// @Param page_size query int false "Размер страницы"
// @Param sort_by query string false "Поле сортировки"
// @Param sort_dir query string false "Направление сортировки: asc или desc"
// @Success 200 {object} map[string]any "Страница ответов"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /answers [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.answer.list"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	role, _ := r.Context().Value(middlewarectx.Role).(string)
	if !ok || userUID == "" {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	pageSize, _ := strconv.Atoi(q.Get("page_size"))

	filter := models.ListFilter{
		Status:   q.Get("status"),
		Subject:  q.Get("subject"),
		Page:     page,
		PageSize: pageSize,
		SortBy:   q.Get("sort_by"),
		SortDir:  q.Get("sort_dir"),
	}

	result, err := h.service.List(r.Context(), filter, userUID, role)
	if err != nil {
		log.Error("failed to list answers", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list answers"))
		return
	}

	log.Info("answers listed", slog.Int("total", result.Total))
	render.JSON(w, r, response.OKWithData(result))
}
