package fetcher

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ecosnap/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pngHeader is enough for http.DetectContentType to report image/png
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestImageLoader_DataURL(t *testing.T) {
	loader := NewImageLoader(NewClient(Config{}))
	ref := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString([]byte("jpeg-bytes"))

	img, err := loader.Load(context.Background(), ref)

	require.NoError(t, err)
	assert.Equal(t, []byte("jpeg-bytes"), img.Data)
	assert.Equal(t, "image/jpeg", img.MIMEType)
}

func TestImageLoader_DataURLErrors(t *testing.T) {
	loader := NewImageLoader(NewClient(Config{}))

	tests := []struct {
		name string
		ref  string
	}{
		{"no comma", "data:image/png;base64"},
		{"not base64", "data:text/plain,hello"},
		{"bad base64", "data:image/png;base64,!!!"},
		{"empty payload", "data:image/png;base64,"},
		{"unsupported scheme", "ftp://images.example/a.png"},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loader.Load(context.Background(), tt.ref)
			assert.ErrorIs(t, err, domain.ErrImageUnavailable)
		})
	}
}

func TestImageLoader_Download(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Write(pngHeader)
	}))
	defer server.Close()

	img, err := NewImageLoader(NewClient(Config{})).Load(context.Background(), server.URL+"/photo")

	require.NoError(t, err)
	assert.Equal(t, pngHeader, img.Data)
	assert.Equal(t, "image/png", img.MIMEType)
}

func TestImageLoader_DownloadNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := NewImageLoader(NewClient(Config{})).Load(context.Background(), server.URL)

	assert.ErrorIs(t, err, domain.ErrImageUnavailable)
}

func TestNewImage_MIMEType(t *testing.T) {
	assert.Equal(t, "image/webp", newImage([]byte("x"), "image/webp; charset=binary").MIMEType)
	assert.Equal(t, "image/png", newImage(pngHeader, "").MIMEType)
	assert.Equal(t, "image/jpeg", newImage([]byte("plain text"), "text/plain").MIMEType)
}
