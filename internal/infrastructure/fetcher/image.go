package fetcher

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	"github.com/ecosnap/backend/internal/domain"
)

// maxImageBytes caps downloaded and decoded product photos
const maxImageBytes = 8 << 20

// ImageLoader resolves the imageUrl sent by the frontend into image bytes.
// It accepts base64 data URLs and http(s) URLs.
type ImageLoader struct {
	client *Client
}

// NewImageLoader creates an image loader that downloads through client
func NewImageLoader(client *Client) *ImageLoader {
	return &ImageLoader{client: client}
}

// Load returns the image referenced by ref
func (l *ImageLoader) Load(ctx context.Context, ref string) (*domain.ProductImage, error) {
	ref = strings.TrimSpace(ref)
	switch {
	case strings.HasPrefix(ref, "data:"):
		return decodeDataURL(ref)
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"):
		return l.download(ctx, ref)
	default:
		return nil, fmt.Errorf("%w: unsupported image reference", domain.ErrImageUnavailable)
	}
}

// decodeDataURL decodes "data:image/jpeg;base64,...."
func decodeDataURL(ref string) (*domain.ProductImage, error) {
	header, payload, found := strings.Cut(strings.TrimPrefix(ref, "data:"), ",")
	if !found {
		return nil, fmt.Errorf("%w: malformed data URL", domain.ErrImageUnavailable)
	}
	if !strings.HasSuffix(header, ";base64") {
		return nil, fmt.Errorf("%w: data URL is not base64 encoded", domain.ErrImageUnavailable)
	}
	if base64.StdEncoding.DecodedLen(len(payload)) > maxImageBytes {
		return nil, fmt.Errorf("%w: image exceeds %d bytes", domain.ErrImageUnavailable, maxImageBytes)
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrImageUnavailable, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty image", domain.ErrImageUnavailable)
	}

	mimeType := strings.TrimSuffix(header, ";base64")
	return newImage(data, mimeType), nil
}

// download fetches an image over HTTP. The URL comes from the caller and is
// not restricted, so any host reachable from the server, internal ones
// included, can be requested; deployments exposing the API publicly should
// put an egress filter in front of it.
func (l *ImageLoader) download(ctx context.Context, ref string) (*domain.ProductImage, error) {
	resp, err := l.client.doRequest(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrImageUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", domain.ErrImageUnavailable, resp.StatusCode)
	}

	data, err := readLimitedBody(resp.Body, maxImageBytes+1)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrImageUnavailable, err)
	}
	if len(data) > maxImageBytes {
		return nil, fmt.Errorf("%w: image exceeds %d bytes", domain.ErrImageUnavailable, maxImageBytes)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty image", domain.ErrImageUnavailable)
	}

	return newImage(data, resp.Header.Get("Content-Type")), nil
}

// newImage fills in the MIME type by sniffing when the source did not give an image type
func newImage(data []byte, mimeType string) *domain.ProductImage {
	if mt, _, _ := strings.Cut(mimeType, ";"); strings.HasPrefix(mt, "image/") {
		mimeType = mt
	} else {
		mimeType = http.DetectContentType(data)
	}
	if !strings.HasPrefix(mimeType, "image/") {
		mimeType = "image/jpeg"
	}
	return &domain.ProductImage{Data: data, MIMEType: mimeType}
}
