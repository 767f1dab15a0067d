package http

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/ecosnap/backend/internal/domain"
	"github.com/gin-gonic/gin"
)

// ProductAnalyzer is the use case surface the handlers need
type ProductAnalyzer interface {
	AnalyzeProduct(ctx context.Context, request *domain.AnalyzeRequest) (*domain.ProductAnalysis, error)
	AnalyzeAttributes(ctx context.Context, productName string) *domain.AttributeAccumulator
	CalculateCarbonFootprint(ctx context.Context, attrs *domain.ProductAttributes) (*domain.CarbonFootprint, error)
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	analyzer       ProductAnalyzer
	requestTimeout time.Duration
}

// NewHandler creates a new HTTP handler. A zero requestTimeout leaves the
// request context untouched.
func NewHandler(analyzer ProductAnalyzer, requestTimeout time.Duration) *Handler {
	return &Handler{
		analyzer:       analyzer,
		requestTimeout: requestTimeout,
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "ecosnap-backend",
		"version": "1.0.0",
	})
}

// AnalyzeProduct handles POST /api/v1/products/analyze
func (h *Handler) AnalyzeProduct(c *gin.Context) {
	var request domain.AnalyzeRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "imageUrl is required"})
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	analysis, err := h.analyzer.AnalyzeProduct(ctx, &request)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, analysis)
}

// ScrapeAttributes handles POST /api/v1/products/attributes. An empty
// attribute set is a valid answer.
func (h *Handler) ScrapeAttributes(c *gin.Context) {
	var request domain.AttributesRequest
	if err := c.ShouldBindJSON(&request); err != nil || strings.TrimSpace(request.ProductName) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "productName is required"})
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	acc := h.analyzer.AnalyzeAttributes(ctx, request.ProductName)
	if acc == nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "scraping failed"})
		return
	}

	c.JSON(http.StatusOK, acc)
}

// CarbonFootprint handles POST /api/v1/products/footprint
func (h *Handler) CarbonFootprint(c *gin.Context) {
	var attrs domain.ProductAttributes
	if err := c.ShouldBindJSON(&attrs); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product attributes"})
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	footprint, err := h.analyzer.CalculateCarbonFootprint(ctx, &attrs)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, footprint)
}

func (h *Handler) requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	if h.requestTimeout <= 0 {
		return context.WithCancel(c.Request.Context())
	}
	return context.WithTimeout(c.Request.Context(), h.requestTimeout)
}

// respondError maps use case errors to HTTP status codes
func (h *Handler) respondError(c *gin.Context, err error) {
	status, message := statusForError(err)
	if status >= http.StatusInternalServerError {
		log.Printf("[HTTP] %s %s failed (request %s): %v", c.Request.Method, c.FullPath(), RequestID(c), err)
	}
	c.JSON(status, gin.H{"error": message})
}

func statusForError(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		return http.StatusBadRequest, "invalid request"
	case errors.Is(err, domain.ErrImageUnavailable):
		return http.StatusBadRequest, "image could not be loaded"
	case errors.Is(err, domain.ErrProductNotIdentified):
		return http.StatusUnprocessableEntity, "product could not be identified"
	case errors.Is(err, domain.ErrInvalidResponseFormat),
		errors.Is(err, domain.ErrMalformedJSON),
		errors.Is(err, domain.ErrGenerativeAPIFailure):
		return http.StatusBadGateway, "could not analyze product"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "analysis timed out"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}
