// Package update реализует HTTP-обработчик корректировки проверки.
//
// Обновление разрешено только автору проверки или администратору.
// Nil-поля запроса не меняются.
package update

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/mainsmentor/answer-evaluation/internal/domain"
	"github.com/mainsmentor/answer-evaluation/internal/http/middlewarectx"
	"github.com/mainsmentor/answer-evaluation/internal/http/response"
	"github.com/mainsmentor/answer-evaluation/internal/lib/sl"
	"github.com/mainsmentor/answer-evaluation/internal/models"
)

// Handler управляет HTTP-запросами на корректировку проверок.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики корректировки проверки.
type Service interface {
	Update(ctx context.Context, id int, callerUID, role string, patch models.DummyEvaluationPatch) (*models.Evaluation, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Скорректировать проверку
// @Description Обновляет оценки, отзыв или статус проверки. Доступно автору проверки и администратору.
// @Tags Evaluations
// @Accept  json
// @Produce  json
// @Param id path int true "ID проверки"
// @Param request body models.DummyEvaluationPatch true "Изменяемые поля"
// @Success 200 {object} map[string]any "Обновлённая проверка"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 403 {object} response.ErrorResponse "Чужая проверка"
// @Failure 404 {object} response.ErrorResponse "Проверка не найдена"
// @Router /evaluations/{id} [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.evaluation.update"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		log.Error("invalid evaluation id", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid evaluation id"))
		return
	}

	var patch models.DummyEvaluationPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	log.Info("request body decoded", slog.Int("id", id))

	if patch.Scores != nil {
		if err := h.validate.Struct(*patch.Scores); err != nil {
			log.Error("validation failed", sl.Err(err))
			w.WriteHeader(http.StatusUnprocessableEntity)
			render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
			return
		}
	}
	if patch.Feedback != nil {
		if err := h.validate.Struct(*patch.Feedback); err != nil {
			log.Error("validation failed", sl.Err(err))
			w.WriteHeader(http.StatusUnprocessableEntity)
			render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
			return
		}
	}

	callerUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	role, _ := r.Context().Value(middlewarectx.Role).(string)
	if !ok || callerUID == "" {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	eval, err := h.service.Update(r.Context(), id, callerUID, role, patch)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			log.Info("evaluation not found", slog.Int("id", id))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("evaluation not found"))
		case errors.Is(err, domain.ErrForbidden):
			log.Info("update denied", slog.String("caller_uid", callerUID))
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error("access denied"))
		default:
			log.Error("failed to update evaluation", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not update evaluation"))
		}
		return
	}

	log.Info("evaluation updated", slog.Int("id", id))
	render.JSON(w, r, response.OKWithData(eval))
}
