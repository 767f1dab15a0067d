package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/ecosnap/backend/internal/domain"
	"golang.org/x/time/rate"
)

// maxResponseBytes limits how much of an API response is read
const maxResponseBytes = 4 << 20

// maxAttempts is the number of tries for retryable failures
const maxAttempts = 3

// Client calls the Gemini generateContent REST endpoint
type Client struct {
	httpClient  *http.Client
	apiKey      string
	baseURL     string
	model       string
	rateLimiter *rate.Limiter
	debug       bool
}

// NewClient creates a new Gemini API client. requestsPerMinute bounds the
// outbound call rate; 0 selects the free-tier default of 15.
func NewClient(apiKey, baseURL, model string, requestsPerMinute int) *Client {
	if requestsPerMinute <= 0 {
		requestsPerMinute = 15
	}
	limiter := rate.NewLimiter(rate.Limit(float64(requestsPerMinute)/60.0), 5)

	return &Client{
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		apiKey:      apiKey,
		baseURL:     strings.TrimRight(baseURL, "/"),
		model:       model,
		rateLimiter: limiter,
	}
}

// SetDebug enables or disables debug logging
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

// debugLog logs a message only when debug mode is enabled
func (c *Client) debugLog(format string, args ...interface{}) {
	if c.debug {
		log.Printf("[GEMINI] "+format, args...)
	}
}

// exponentialBackoff returns the delay before the given retry attempt
func exponentialBackoff(attempt int) time.Duration {
	return time.Duration(500*(1<<(attempt-1))) * time.Millisecond
}

type inlineData struct {
	MIMEType string `json:"mime_type"`
	Data     string `json:"data"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback,omitempty"`
}

type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// GenerateContent sends prompt, and image when non-nil, and returns the
// concatenated text of the first candidate.
func (c *Client) GenerateContent(ctx context.Context, prompt string, image *domain.ProductImage) (string, error) {
	parts := []part{{Text: prompt}}
	if image != nil {
		parts = append(parts, part{InlineData: &inlineData{
			MIMEType: image.MIMEType,
			Data:     base64.StdEncoding.EncodeToString(image.Data),
		}})
	}

	body, err := json.Marshal(generateRequest{Contents: []content{{Role: "user", Parts: parts}}})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.baseURL, c.model)

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("%w: rate limiter: %v", domain.ErrGenerativeAPIFailure, err)
		}

		text, retry, err := c.do(ctx, endpoint, body)
		if err == nil {
			return text, nil
		}
		lastErr = err
		if !retry || attempt == maxAttempts {
			break
		}

		c.debugLog("attempt %d failed, retrying: %v", attempt, err)
		select {
		case <-ctx.Done():
			return "", fmt.Errorf("%w: %v", domain.ErrGenerativeAPIFailure, ctx.Err())
		case <-time.After(exponentialBackoff(attempt)):
		}
	}

	log.Printf("[GEMINI] generateContent failed: %v", lastErr)
	return "", lastErr
}

// do performs one request. retry reports whether the failure is transient.
func (c *Client) do(ctx context.Context, endpoint string, body []byte) (text string, retry bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", false, fmt.Errorf("%w: create request: %v", domain.ErrGenerativeAPIFailure, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", ctx.Err() == nil, fmt.Errorf("%w: %v", domain.ErrGenerativeAPIFailure, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", true, fmt.Errorf("%w: read response: %v", domain.ErrGenerativeAPIFailure, err)
	}
	c.debugLog("POST %s -> %d (%d bytes, %s)", c.model, resp.StatusCode, len(respBody), time.Since(start))

	if resp.StatusCode != http.StatusOK {
		return "", isRetryableStatus(resp.StatusCode), classifyError(resp.StatusCode, respBody)
	}

	var parsed generateResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", false, fmt.Errorf("%w: failed to decode response: %v", domain.ErrGenerativeAPIFailure, err)
	}

	if len(parsed.Candidates) == 0 {
		if parsed.PromptFeedback != nil && parsed.PromptFeedback.BlockReason != "" {
			return "", false, fmt.Errorf("%w: prompt blocked: %s", domain.ErrGenerativeAPIFailure, parsed.PromptFeedback.BlockReason)
		}
		return "", false, fmt.Errorf("%w: no candidates returned", domain.ErrGenerativeAPIFailure)
	}

	var sb strings.Builder
	for _, p := range parsed.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	return strings.TrimSpace(sb.String()), false, nil
}

// isRetryableStatus reports whether a status code is worth retrying
func isRetryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

// classifyError turns an error response into a wrapped ErrGenerativeAPIFailure
func classifyError(status int, body []byte) error {
	msg := strings.TrimSpace(string(body))
	var errResp errorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error.Message != "" {
		msg = errResp.Error.Message
	}

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return fmt.Errorf("%w: authentication failed: %s", domain.ErrGenerativeAPIFailure, msg)
	case status == http.StatusTooManyRequests:
		return fmt.Errorf("%w: rate limited: %s", domain.ErrGenerativeAPIFailure, msg)
	default:
		return fmt.Errorf("%w: status %d: %s", domain.ErrGenerativeAPIFailure, status, msg)
	}
}
