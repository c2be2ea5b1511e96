// Package filestore хранит загруженные файлы ответов на локальном диске
// и выдаёт подписанные ссылки на чтение с ограниченным сроком действия.
package filestore

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mainsmentor/answer-evaluation/internal/config"
	"github.com/mainsmentor/answer-evaluation/internal/domain"
	"github.com/mainsmentor/answer-evaluation/internal/models"
)

// Store файловое хранилище на локальном диске.
type Store struct {
	basePath      string
	publicBaseURL string
	signSecret    []byte
	signedURLTTL  time.Duration
}

// New создаёт хранилище и каталог под файлы, если его ещё нет.
func New(cfg config.FileStorage) (*Store, error) {
	const op = "filestore.New"
	if err := os.MkdirAll(cfg.BasePath, 0o755); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Store{
		basePath:      cfg.BasePath,
		publicBaseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
		signSecret:    []byte(cfg.SignSecret),
		signedURLTTL:  cfg.SignedURLTTL,
	}, nil
}

// Put сохраняет содержимое файла под новым ключом и возвращает описание
// вложения. Ключ — uuid с расширением исходного имени, подкаталогов нет.
func (s *Store) Put(data []byte, originalName, contentType string) (models.FileAttachment, error) {
	const op = "filestore.Put"

	ext := strings.ToLower(filepath.Ext(originalName))
	key := uuid.NewString() + ext
	path := filepath.Join(s.basePath, key)

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return models.FileAttachment{}, fmt.Errorf("%s: %w", op, domain.NewStorageError(key, err))
	}

	return models.FileAttachment{
		Key:          key,
		Path:         path,
		OriginalName: originalName,
		ContentType:  contentType,
		Size:         int64(len(data)),
	}, nil
}

// Open открывает сохранённый файл по ключу.
func (s *Store) Open(key string) (*os.File, error) {
	const op = "filestore.Open"
	if !validKey(key) {
		return nil, fmt.Errorf("%s: %w", op, domain.NewNotFoundError("file", key))
	}
	f, err := os.Open(filepath.Join(s.basePath, key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", op, domain.NewNotFoundError("file", key))
		}
		return nil, fmt.Errorf("%s: %w", op, domain.NewStorageError(key, err))
	}
	return f, nil
}

// SignedReadURL строит ссылку на чтение файла, подписанную HMAC-SHA256.
// Срок действия берётся из конфигурации хранилища.
func (s *Store) SignedReadURL(key string) string {
	expires := time.Now().Add(s.signedURLTTL).Unix()
	sig := s.sign(key, expires)

	q := url.Values{}
	q.Set("expires", strconv.FormatInt(expires, 10))
	q.Set("sig", sig)
	return s.publicBaseURL + "/" + url.PathEscape(key) + "?" + q.Encode()
}

// VerifyReadToken проверяет подпись и срок действия ссылки на чтение.
func (s *Store) VerifyReadToken(key string, expires int64, sig string) bool {
	if time.Now().Unix() > expires {
		return false
	}
	expected := s.sign(key, expires)
	return hmac.Equal([]byte(expected), []byte(sig))
}

func (s *Store) sign(key string, expires int64) string {
	mac := hmac.New(sha256.New, s.signSecret)
	mac.Write([]byte(key + "|" + strconv.FormatInt(expires, 10)))
	return hex.EncodeToString(mac.Sum(nil))
}

// validKey отсекает ключи с разделителями пути.
func validKey(key string) bool {
	return key != "" && !strings.ContainsAny(key, "/\\") && key != "." && key != ".."
}
