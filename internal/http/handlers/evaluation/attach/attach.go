// Package attach реализует HTTP-обработчик загрузки проверенного документа
// к существующей проверке. Повторная загрузка заменяет предыдущий файл.
package attach

import (
	"context"
	"errors"
	"io"
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

const maxUploadSize = 20 << 20 // 20 MiB

// Handler управляет HTTP-запросами на загрузку проверенного документа.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики загрузки документа.
type Service interface {
	AttachDocument(ctx context.Context, id int, callerUID, role string, data []byte, originalName, contentType string) (*models.FileAttachment, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Загрузить проверенный документ
// @Description Привязывает файл с пометками проверяющего к проверке. Повторная загрузка заменяет файл.
// @Tags Evaluations
// @Accept  multipart/form-data
// @Produce  json
// @Param id path int true "ID проверки"
// @Param file formData file true "Проверенный документ"
// @Success 200 {object} map[string]any "Документ сохранён"
// @Failure 400 {object} response.ErrorResponse "Некорректная форма"
// @Failure 403 {object} response.ErrorResponse "Чужая проверка"
// @Failure 404 {object} response.ErrorResponse "Проверка не найдена"
// @Router /evaluations/{id}/document [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.evaluation.attach"
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

	callerUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	role, _ := r.Context().Value(middlewarectx.Role).(string)
	if !ok || callerUID == "" {
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

	attachment, err := h.service.AttachDocument(r.Context(), id, callerUID, role, data, header.Filename, header.Header.Get("Content-Type"))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			log.Info("evaluation not found", slog.Int("id", id))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("evaluation not found"))
		case errors.Is(err, domain.ErrForbidden):
			log.Info("attach denied", slog.String("caller_uid", callerUID))
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error("access denied"))
		default:
			log.Error("failed to attach document", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not attach document"))
		}
		return
	}

	log.Info("document attached", slog.Int("id", id), slog.String("key", attachment.Key))
	render.JSON(w, r, response.OKWithData(attachment))
}
