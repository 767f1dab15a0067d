package domain

import (
	"context"
	"time"
)

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) (interface{}, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// PageFetcher retrieves raw markup for a source URL. Failures are reported
// inside the FetchResult, never as a panic or separate error.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) FetchResult
}

// FragmentExtractor pulls attribute fragments out of raw markup
type FragmentExtractor interface {
	Extract(markup string, rules LocatorRules) Fragments
}

// GenerativeClient sends a prompt, optionally with an image, to the
// generative model and returns its text answer.
type GenerativeClient interface {
	GenerateContent(ctx context.Context, prompt string, image *ProductImage) (string, error)
}

// ImageLoader resolves an image reference (data URL or http(s) URL) to bytes
type ImageLoader interface {
	Load(ctx context.Context, ref string) (*ProductImage, error)
}
