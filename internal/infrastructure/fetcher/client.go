package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/ecosnap/backend/internal/domain"
)

// DefaultUserAgent is the browser identity sent to every source.
// Several retail sites reject requests without one.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// maxBodyBytes caps how much of a page is read into memory
const maxBodyBytes = 10 << 20

// maxDetailBytes caps the body snippet kept on HTTP errors
const maxDetailBytes = 256

// Config holds fetcher configuration
type Config struct {
	UserAgent      string
	Timeout        time.Duration
	TLSFingerprint bool // use a Chrome TLS ClientHello
}

// Client fetches source pages. It never retries: moving on to the next
// source is the orchestrator's job.
type Client struct {
	httpClient *http.Client
	userAgent  string
	debug      bool
}

// NewClient creates a new page fetcher
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	httpClient := &http.Client{Timeout: timeout}
	if cfg.TLSFingerprint {
		httpClient.Transport = newChromeTransport()
	}

	return &Client{
		httpClient: httpClient,
		userAgent:  userAgent,
	}
}

// SetDebug enables or disables debug logging
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

// debugLog logs a message only when debug mode is enabled
func (c *Client) debugLog(format string, args ...interface{}) {
	if c.debug {
		log.Printf("[FETCH] "+format, args...)
	}
}

// Fetch GETs url and returns its body as markup. Any failure, including a
// panic inside the transport, comes back as a FetchError in the result.
func (c *Client) Fetch(ctx context.Context, url string) (result domain.FetchResult) {
	defer func() {
		if r := recover(); r != nil {
			result = domain.FetchResult{Err: &domain.FetchError{
				Kind: domain.FetchNetworkError,
				URL:  url,
				Err:  fmt.Errorf("panic during fetch: %v", r),
			}}
		}
	}()

	start := time.Now()

	resp, err := c.doRequest(ctx, url)
	if err != nil {
		return domain.FetchResult{Err: &domain.FetchError{Kind: domain.FetchNetworkError, URL: url, Err: err}}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := readLimitedBody(resp.Body, maxDetailBytes)
		return domain.FetchResult{Err: &domain.FetchError{
			Kind:       domain.FetchHTTPError,
			URL:        url,
			StatusCode: resp.StatusCode,
			Detail:     strings.TrimSpace(string(snippet)),
			Err:        fmt.Errorf("%w: %d", domain.ErrHTTPStatus, resp.StatusCode),
		}}
	}

	// Content-Type is not checked; every body is handed to the extractor as HTML.
	body, err := readLimitedBody(resp.Body, maxBodyBytes)
	if err != nil {
		return domain.FetchResult{Err: &domain.FetchError{
			Kind: domain.FetchNetworkError,
			URL:  url,
			Err:  fmt.Errorf("read body: %w", err),
		}}
	}

	c.debugLog("GET %s -> %d (%d bytes, %s)", url, resp.StatusCode, len(body), time.Since(start))
	return domain.FetchResult{Markup: string(body)}
}

// doRequest executes an HTTP GET request with the browser identity headers
func (c *Client) doRequest(ctx context.Context, reqURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: timeout: %v", domain.ErrNetwork, err)
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrNetwork, err)
	}

	return resp, nil
}

// readLimitedBody reads at most limit bytes from r
func readLimitedBody(r io.Reader, limit int64) ([]byte, error) {
	return io.ReadAll(io.LimitReader(r, limit))
}
