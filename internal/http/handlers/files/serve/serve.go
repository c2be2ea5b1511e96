// Package serve реализует HTTP-обработчик выдачи файлов по подписанным
// ссылкам. Ссылка действует ограниченное время; подпись и срок передаются
// в query-строке.
package serve

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/mainsmentor/answer-evaluation/internal/domain"
	"github.com/mainsmentor/answer-evaluation/internal/http/response"
	"github.com/mainsmentor/answer-evaluation/internal/lib/sl"
)

// Handler управляет HTTP-запросами на чтение файлов.
type Handler struct {
	log   *slog.Logger
	store Store
}

// Store описывает интерфейс файлового хранилища.
type Store interface {
	// Open открывает сохранённый файл по ключу.
	Open(key string) (*os.File, error)
	// VerifyReadToken проверяет подпись и срок действия ссылки.
	VerifyReadToken(key string, expires int64, sig string) bool
}

// New создает новый Handler с переданными логгером и хранилищем.
func New(log *slog.Logger, store Store) *Handler {
	return &Handler{
		log:   log,
		store: store,
	}
}

// ServeHTTP godoc
// @Summary Скачать файл
// @Description Отдаёт файл по подписанной ссылке с ограниченным сроком действия.
// @Tags Files
// @Produce  octet-stream
// @Param key path string true "Ключ файла"
// @Param expires query int true "Срок действия ссылки (unix)"
// @Param sig query string true "Подпись ссылки"
// @Success 200 {file} binary "Содержимое файла"
// @Failure 403 {object} response.ErrorResponse "Подпись неверна или ссылка истекла"
// @Failure 404 {object} response.ErrorResponse "Файл не найден"
// @Router /files/{key} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.files.serve"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	key := chi.URLParam(r, "key")
	expires, err := strconv.ParseInt(r.URL.Query().Get("expires"), 10, 64)
	sig := r.URL.Query().Get("sig")
	if err != nil || sig == "" {
		log.Error("missing or invalid signature params")
		w.WriteHeader(http.StatusForbidden)
		render.JSON(w, r, response.Error("invalid file link"))
		return
	}

	if !h.store.VerifyReadToken(key, expires, sig) {
		log.Error("signature verification failed", slog.String("key", key))
		w.WriteHeader(http.StatusForbidden)
		render.JSON(w, r, response.Error("link expired or signature invalid"))
		return
	}

	f, err := h.store.Open(key)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			log.Info("file not found", slog.String("key", key))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("file not found"))
			return
		}
		log.Error("failed to open file", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not read file"))
		return
	}
	defer func() { _ = f.Close() }()

	w.Header().Set("Content-Type", "application/octet-stream")
	if _, err := io.Copy(w, f); err != nil {
		log.Error("failed to stream file", sl.Err(err))
	}
}
