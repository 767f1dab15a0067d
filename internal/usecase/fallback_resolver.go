package usecase

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/ecosnap/backend/internal/domain"
	"github.com/ecosnap/backend/internal/infrastructure/metrics"
)

// fallbackPayload is the JSON shape fallbackPrompt asks for
type fallbackPayload struct {
	Ingredients []string `json:"ingredients"`
	Packaging   struct {
		Materials  []string `json:"materials"`
		Recyclable bool     `json:"recyclable"`
	} `json:"packaging"`
}

// FallbackResolver infers attributes from the product photo when scraping
// found no ingredients. Its parse failures are final.
type FallbackResolver struct {
	client domain.GenerativeClient
}

// NewFallbackResolver creates a fallback resolver
func NewFallbackResolver(client domain.GenerativeClient) *FallbackResolver {
	return &FallbackResolver{client: client}
}

// Resolve asks the generative model for the attribute set of the pictured
// product. The result has no AdditionalInfo.
func (r *FallbackResolver) Resolve(ctx context.Context, image *domain.ProductImage) (*domain.ProductAttributes, error) {
	if image == nil || len(image.Data) == 0 {
		return nil, domain.ErrImageUnavailable
	}

	text, err := r.client.GenerateContent(ctx, fallbackPrompt, image)
	if err != nil {
		metrics.ObserveFallback("error")
		return nil, err
	}

	var payload fallbackPayload
	if err := decodeJSONResponse(text, &payload); err != nil {
		var parseErr *domain.ResponseParseError
		if errors.As(err, &parseErr) {
			log.Printf("[FALLBACK] %v; raw response: %s", parseErr.Kind, parseErr.Raw)
		}
		if errors.Is(err, domain.ErrInvalidResponseFormat) {
			metrics.ObserveFallback("invalid_format")
		} else {
			metrics.ObserveFallback("malformed_json")
		}
		return nil, err
	}

	metrics.ObserveFallback("ok")
	return normalizeFallback(payload), nil
}

// normalizeFallback makes model output obey the same invariants as scraped
// data: unique non-blank ingredients and materials from the known vocabulary.
func normalizeFallback(payload fallbackPayload) *domain.ProductAttributes {
	acc := domain.NewAttributeAccumulator()
	for _, ingredient := range payload.Ingredients {
		acc.AddIngredient(strings.TrimSpace(ingredient))
	}

	materials := []string{}
	for _, m := range payload.Packaging.Materials {
		m = strings.ToLower(strings.TrimSpace(m))
		if domain.IsPackagingMaterial(m) {
			materials = append(materials, m)
		}
	}

	return &domain.ProductAttributes{
		Ingredients: acc.Ingredients,
		Packaging: domain.Packaging{
			Materials:  materials,
			Recyclable: payload.Packaging.Recyclable,
		},
	}
}
