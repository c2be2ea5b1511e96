// Package create реализует HTTP-обработчик создания проверки ответа.
//
// Handler принимает JSON с оценками и отзывом, валидирует их и создаёт
// проверку через сервис. Повторная проверка уже проверенного ответа
// возвращает HTTP 409 Conflict.
package create

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

// Handler управляет HTTP-запросами на создание проверок.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики создания проверки.
type Service interface {
	Evaluate(ctx context.Context, answerID int, evaluatorUID, role string, req models.DummyEvaluation) (int, error)
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
// @Summary Создать проверку ответа
// @Description Записывает оценки и отзыв, переводит ответ в статус evaluated.
// @Tags Evaluations
// @Accept  json
// @Produce  json
// @Param id path int true "ID ответа"
// @Param request body models.DummyEvaluation true "Оценки и отзыв"
// @Success 200 {object} map[string]any "Проверка создана"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 403 {object} response.ErrorResponse "Недостаточно прав"
// @Failure 404 {object} response.ErrorResponse "Ответ не найден"
// @Failure 409 {object} response.ErrorResponse "Ответ уже проверен"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /answers/{id}/evaluation [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.evaluation.create"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	answerID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		log.Error("invalid answer id", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid answer id"))
		return
	}

	var req models.DummyEvaluation
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	log.Info("request body decoded", slog.Int("answer_id", answerID))

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}
	log.Info("all fields are validated")

	evaluatorUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	role, _ := r.Context().Value(middlewarectx.Role).(string)
	if !ok || evaluatorUID == "" {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	id, err := h.service.Evaluate(r.Context(), answerID, evaluatorUID, role, req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			log.Info("answer not found", slog.Int("answer_id", answerID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("answer not found"))
		case errors.Is(err, domain.ErrAlreadyEvaluated):
			log.Info("answer already evaluated", slog.Int("answer_id", answerID))
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("answer already evaluated"))
		case errors.Is(err, domain.ErrForbidden):
			log.Info("evaluation denied", slog.String("role", role))
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error("access denied"))
		case errors.Is(err, domain.ErrInvalidInput):
			log.Info("total score mismatch", slog.Int("answer_id", answerID))
			w.WriteHeader(http.StatusUnprocessableEntity)
			render.JSON(w, r, response.Error("total score does not match scores"))
		default:
			log.Error("failed to create evaluation", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not create evaluation"))
		}
		return
	}

	log.Info("evaluation created", slog.Int("id", id), slog.Int("answer_id", answerID))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"evaluation_id": id,
		"answer_id":     answerID,
	}))
}
