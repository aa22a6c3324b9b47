package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/petsafe/petsafe-api/internal/domain"
	"github.com/petsafe/petsafe-api/internal/mapper"
	"github.com/petsafe/petsafe-api/internal/storage"
	"go.uber.org/zap"
)

var (
	// ErrUnsupportedPhoto is returned for files that are not JPEG or PNG images
	ErrUnsupportedPhoto = errors.New("only jpg and png images are accepted")

	// ErrPhotoTooLarge is returned when the upload exceeds the configured size
	ErrPhotoTooLarge = errors.New("photo exceeds the maximum upload size")

	// ErrPhotoNotFound is returned when no photo is stored under the key
	ErrPhotoNotFound = errors.New("photo not found")
)

// PhotoService stores account and animal photos
type PhotoService struct {
	storage  storage.Storage
	maxBytes int64
	photos   mapper.PhotoURLs
	logger   *zap.Logger
}

// NewPhotoService creates a new photo service instance. maxBytes <= 0 disables the size limit.
func NewPhotoService(store storage.Storage, maxBytes int64, photos mapper.PhotoURLs, logger *zap.Logger) *PhotoService {
	return &PhotoService{
		storage:  store,
		maxBytes: maxBytes,
		photos:   photos,
		logger:   logger,
	}
}

// Upload validates and stores an image, returning the key clients reference it by.
// The extension must be jpg, jpeg or png and match the sniffed content.
func (s *PhotoService) Upload(ctx context.Context, filename string, data io.Reader) (*domain.PhotoUploadResponse, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	key := storage.NewKey(ext)
	contentType := storage.ContentTypeFor(key)
	if contentType == "" {
		return nil, ErrUnsupportedPhoto
	}

	reader := data
	if s.maxBytes > 0 {
		reader = io.LimitReader(data, s.maxBytes+1)
	}
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read photo: %w", err)
	}
	if s.maxBytes > 0 && int64(len(content)) > s.maxBytes {
		return nil, ErrPhotoTooLarge
	}
	if http.DetectContentType(content) != contentType {
		return nil, ErrUnsupportedPhoto
	}

	size, err := s.storage.Upload(ctx, key, contentType, bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to store photo: %w", err)
	}

	s.logger.Info("photo uploaded",
		zap.String("key", key),
		zap.String("content_type", contentType),
		zap.Int64("size", size))

	return &domain.PhotoUploadResponse{Key: key, URL: s.photos.URL(key)}, nil
}

// Download opens a stored photo and returns its content type
func (s *PhotoService) Download(ctx context.Context, key string) (io.ReadCloser, string, error) {
	if !storage.ValidKey(key) {
		return nil, "", ErrPhotoNotFound
	}
	body, err := s.storage.Download(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, "", ErrPhotoNotFound
		}
		return nil, "", fmt.Errorf("failed to download photo: %w", err)
	}
	return body, storage.ContentTypeFor(key), nil
}
