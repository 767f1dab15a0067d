package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/ecosnap/backend/internal/domain"
)

// MockCacheRepository is a mock implementation of domain.CacheRepository
type MockCacheRepository struct {
	data      map[string]interface{}
	getError  error
	setError  error
	getCalled bool
	setCalled bool
}

func NewMockCacheRepository() *MockCacheRepository {
	return &MockCacheRepository{
		data: make(map[string]interface{}),
	}
}

func (m *MockCacheRepository) Get(ctx context.Context, key string) (interface{}, error) {
	m.getCalled = true
	if m.getError != nil {
		return nil, m.getError
	}
	if value, ok := m.data[key]; ok {
		return value, nil
	}
	return nil, domain.ErrCacheMiss
}

func (m *MockCacheRepository) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	m.setCalled = true
	if m.setError != nil {
		return m.setError
	}
	m.data[key] = value
	return nil
}

func (m *MockCacheRepository) Delete(ctx context.Context, key string) error {
	delete(m.data, key)
	return nil
}

func (m *MockCacheRepository) Exists(ctx context.Context, key string) (bool, error) {
	_, ok := m.data[key]
	return ok, nil
}

// MockPageFetcher returns canned results keyed by URL. Unknown URLs fail
// with a network error.
type MockPageFetcher struct {
	mu      sync.Mutex
	results map[string]domain.FetchResult
	panicOn string
	calls   []string
}

func NewMockPageFetcher() *MockPageFetcher {
	return &MockPageFetcher{results: make(map[string]domain.FetchResult)}
}

func (m *MockPageFetcher) respond(url, markup string) {
	m.results[url] = domain.FetchResult{Markup: markup}
}

func (m *MockPageFetcher) fail(url string, err *domain.FetchError) {
	m.results[url] = domain.FetchResult{Err: err}
}

func (m *MockPageFetcher) Fetch(ctx context.Context, url string) domain.FetchResult {
	m.mu.Lock()
	m.calls = append(m.calls, url)
	m.mu.Unlock()

	if m.panicOn != "" && m.panicOn == url {
		panic("fetcher exploded")
	}
	if result, ok := m.results[url]; ok {
		return result
	}
	return domain.FetchResult{Err: &domain.FetchError{
		Kind: domain.FetchNetworkError,
		URL:  url,
		Err:  context.DeadlineExceeded,
	}}
}

// MockExtractor treats the markup as a key into canned fragments, so tests
// do not depend on real HTML.
type MockExtractor struct {
	fragments map[string]domain.Fragments
}

func NewMockExtractor() *MockExtractor {
	return &MockExtractor{fragments: make(map[string]domain.Fragments)}
}

func (m *MockExtractor) Extract(markup string, rules domain.LocatorRules) domain.Fragments {
	if f, ok := m.fragments[markup]; ok {
		return f
	}
	return domain.Fragments{}
}

// MockGenerativeClient answers prompts in order from a queue of responses
type MockGenerativeClient struct {
	responses []string
	errs      []error
	prompts   []string
	images    []*domain.ProductImage
}

func (m *MockGenerativeClient) GenerateContent(ctx context.Context, prompt string, image *domain.ProductImage) (string, error) {
	i := len(m.prompts)
	m.prompts = append(m.prompts, prompt)
	m.images = append(m.images, image)

	if i < len(m.errs) && m.errs[i] != nil {
		return "", m.errs[i]
	}
	if i < len(m.responses) {
		return m.responses[i], nil
	}
	return "", domain.ErrGenerativeAPIFailure
}

// MockImageLoader returns a fixed image or error
type MockImageLoader struct {
	image *domain.ProductImage
	err   error
}

func (m *MockImageLoader) Load(ctx context.Context, ref string) (*domain.ProductImage, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.image, nil
}

// testSource builds a source whose URL is "https://{id}.test/?q={query}"
func testSource(id string) domain.SourceSpec {
	return domain.SourceSpec{
		ID:          id,
		URLTemplate: "https://" + id + ".test/?q={query}",
		Rules: domain.LocatorRules{
			Ingredients: ".ingredients",
			ProductInfo: ".info",
			Packaging:   ".packaging",
		},
	}
}

var testImage = &domain.ProductImage{Data: []byte{0xff, 0xd8, 0xff}, MIMEType: "image/jpeg"}
