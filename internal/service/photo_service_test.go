package service_test

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/petsafe/petsafe-api/internal/service"
	"github.com/petsafe/petsafe-api/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var (
	pngHeader  = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	jpegHeader = []byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00")
)

func createPhotoService(t *testing.T, maxBytes int64) *service.PhotoService {
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	return service.NewPhotoService(store, maxBytes, testPhotos, zap.NewNop())
}

func TestPhotoService_UploadAndDownload(t *testing.T) {
	svc := createPhotoService(t, 1024)
	ctx := context.Background()

	resp, err := svc.Upload(ctx, "gato.PNG", bytes.NewReader(pngHeader))
	require.NoError(t, err)
	assert.True(t, storage.ValidKey(resp.Key))
	assert.Equal(t, "https://petsafe.test/api/v1/photos/"+resp.Key, resp.URL)

	body, contentType, err := svc.Download(ctx, resp.Key)
	require.NoError(t, err)
	defer body.Close()
	assert.Equal(t, "image/png", contentType)
	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, pngHeader, data)

	_, err = svc.Upload(ctx, "perro.jpeg", bytes.NewReader(jpegHeader))
	assert.NoError(t, err)
}

func TestPhotoService_Rejects(t *testing.T) {
	svc := createPhotoService(t, 16)
	ctx := context.Background()

	_, err := svc.Upload(ctx, "animado.gif", bytes.NewReader([]byte("GIF89a")))
	assert.ErrorIs(t, err, service.ErrUnsupportedPhoto)

	_, err = svc.Upload(ctx, "falso.jpg", bytes.NewReader([]byte("not really a jpeg")))
	assert.ErrorIs(t, err, service.ErrPhotoTooLarge)

	_, err = svc.Upload(ctx, "falso.jpg", bytes.NewReader([]byte("plain text")))
	assert.ErrorIs(t, err, service.ErrUnsupportedPhoto)

	_, err = svc.Upload(ctx, "grande.png", bytes.NewReader(append(pngHeader, make([]byte, 32)...)))
	assert.ErrorIs(t, err, service.ErrPhotoTooLarge)

	_, _, err = svc.Download(ctx, storage.NewKey(".png"))
	assert.ErrorIs(t, err, service.ErrPhotoNotFound)

	_, _, err = svc.Download(ctx, "../secret.png")
	assert.ErrorIs(t, err, service.ErrPhotoNotFound)
}
