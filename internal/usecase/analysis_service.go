package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/ecosnap/backend/internal/domain"
)

// Package-level compiled regex patterns for performance
var multipleSpacesRegex = regexp.MustCompile(`\s+`)

// AttributeScraper is the source orchestrator as seen by the analysis service
type AttributeScraper interface {
	ScrapeProductDetails(ctx context.Context, productName string) *domain.AttributeAccumulator
}

// AnalysisServiceConfig holds configuration for the analysis service
type AnalysisServiceConfig struct {
	CacheTTL           time.Duration
	EnableDebugLogging bool
}

// AnalysisService runs the full product analysis:
// identify -> scrape -> fallback if needed -> score.
type AnalysisService struct {
	cache      domain.CacheRepository
	scraper    AttributeScraper
	generative domain.GenerativeClient
	images     domain.ImageLoader
	fallback   *FallbackResolver
	cacheTTL   time.Duration
	debug      bool
}

// NewAnalysisService creates a new analysis service with dependencies
func NewAnalysisService(
	cache domain.CacheRepository,
	scraper AttributeScraper,
	generative domain.GenerativeClient,
	images domain.ImageLoader,
	config AnalysisServiceConfig,
) *AnalysisService {
	cacheTTL := config.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 24 * time.Hour
	}

	return &AnalysisService{
		cache:      cache,
		scraper:    scraper,
		generative: generative,
		images:     images,
		fallback:   NewFallbackResolver(generative),
		cacheTTL:   cacheTTL,
		debug:      config.EnableDebugLogging,
	}
}

// AnalyzeAttributes returns the scraped attribute set for productName.
// Results with ingredients are cached. Like the scraper, it returns nil
// only when scraping broke.
func (s *AnalysisService) AnalyzeAttributes(ctx context.Context, productName string) *domain.AttributeAccumulator {
	acc, _ := s.analyzeAttributes(ctx, productName)
	return acc
}

// analyzeAttributes also reports whether the result came from cache
func (s *AnalysisService) analyzeAttributes(ctx context.Context, productName string) (*domain.AttributeAccumulator, bool) {
	cacheKey, cacheable := generateCacheKey(productName)
	if !cacheable {
		return s.scraper.ScrapeProductDetails(ctx, productName), false
	}

	if cached, err := s.getFromCache(ctx, cacheKey); err == nil && cached.HasIngredients() {
		s.debugLog("cache hit for %q", productName)
		return cached, true
	}

	acc := s.scraper.ScrapeProductDetails(ctx, productName)
	if acc.HasIngredients() {
		if err := s.cache.Set(ctx, cacheKey, acc, s.cacheTTL); err != nil {
			log.Printf("[ANALYSIS] Failed to cache attributes for %q: %v", productName, err)
		}
	}
	return acc, false
}

// ResolveAttributes returns scraped attributes for productName, falling back
// to inference from image when scraping yields no ingredients. The second
// return value says which path produced the attributes.
func (s *AnalysisService) ResolveAttributes(
	ctx context.Context,
	productName string,
	image *domain.ProductImage,
) (*domain.ProductAttributes, string, error) {
	acc, fromCache := s.analyzeAttributes(ctx, productName)
	if !domain.NeedsFallback(acc) {
		if fromCache {
			return acc.Attributes(), domain.SourceCache, nil
		}
		return acc.Attributes(), domain.SourceScrape, nil
	}

	log.Printf("[ANALYSIS] Web scraping failed or no ingredients found for %q, using generative fallback", productName)
	attrs, err := s.fallback.Resolve(ctx, image)
	if err != nil {
		return nil, "", fmt.Errorf("fallback analysis: %w", err)
	}
	return attrs, domain.SourceFallback, nil
}

// IdentifyProduct recovers the product name and brand from a photo
func (s *AnalysisService) IdentifyProduct(ctx context.Context, image *domain.ProductImage) (*domain.ProductIdentity, error) {
	text, err := s.generative.GenerateContent(ctx, identifyPrompt, image)
	if err != nil {
		return nil, err
	}

	var identity domain.ProductIdentity
	if err := decodeJSONResponse(text, &identity); err != nil {
		return nil, fmt.Errorf("identify product: %w", err)
	}

	identity.Name = strings.TrimSpace(identity.Name)
	identity.Brand = strings.TrimSpace(identity.Brand)
	if identity.Name == "" {
		return nil, domain.ErrProductNotIdentified
	}
	return &identity, nil
}

// CalculateCarbonFootprint scores the environmental impact of attrs
func (s *AnalysisService) CalculateCarbonFootprint(ctx context.Context, attrs *domain.ProductAttributes) (*domain.CarbonFootprint, error) {
	if attrs == nil {
		return nil, domain.ErrInvalidRequest
	}

	text, err := s.generative.GenerateContent(ctx, footprintPrompt(attrs), nil)
	if err != nil {
		return nil, err
	}

	var footprint domain.CarbonFootprint
	if err := decodeJSONResponse(text, &footprint); err != nil {
		return nil, fmt.Errorf("carbon footprint: %w", err)
	}
	return &footprint, nil
}

// AnalyzeProduct runs the whole pipeline for one product photo
func (s *AnalysisService) AnalyzeProduct(ctx context.Context, request *domain.AnalyzeRequest) (*domain.ProductAnalysis, error) {
	if request == nil || strings.TrimSpace(request.ImageURL) == "" {
		return nil, domain.ErrInvalidRequest
	}

	image, err := s.images.Load(ctx, request.ImageURL)
	if err != nil {
		return nil, err
	}

	identity, err := s.IdentifyProduct(ctx, image)
	if err != nil {
		return nil, err
	}
	s.debugLog("identified %q (brand %q)", identity.Name, identity.Brand)

	attrs, source, err := s.ResolveAttributes(ctx, identity.Name, image)
	if err != nil {
		return nil, err
	}

	footprint, err := s.CalculateCarbonFootprint(ctx, attrs)
	if err != nil {
		return nil, err
	}

	analysis := &domain.ProductAnalysis{
		Name:            identity.Name,
		Brand:           identity.Brand,
		Ingredients:     attrs.Ingredients,
		Packaging:       attrs.Packaging,
		Source:          source,
		CarbonFootprint: footprint,
		SimilarProducts: []domain.SimilarProduct{},
	}
	if source != domain.SourceFallback {
		analysis.AdditionalInfo = attrs.AdditionalInfo
	}
	return analysis, nil
}

// generateCacheKey creates a normalized cache key from a product name.
// Format: "attributes:{normalized_product_name}". Names that normalize to
// nothing are not cacheable.
func generateCacheKey(productName string) (string, bool) {
	normalized := normalizeForCacheKey(productName)
	if normalized == "" {
		return "", false
	}
	return "attributes:" + normalized, true
}

// normalizeForCacheKey converts to lowercase, drops punctuation and symbols
// in any script, and collapses whitespace. Combining marks are kept because
// scripts such as Devanagari spell vowels with them.
func normalizeForCacheKey(s string) string {
	if s == "" {
		return ""
	}
	result := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), unicode.IsMark(r):
			return unicode.ToLower(r)
		case unicode.IsSpace(r):
			return ' '
		default:
			return -1
		}
	}, s)
	result = multipleSpacesRegex.ReplaceAllString(result, " ")
	return strings.TrimSpace(result)
}

// getFromCache retrieves an accumulator from cache. Values stored by the
// memory cache come back as generic JSON maps and are re-decoded.
func (s *AnalysisService) getFromCache(ctx context.Context, key string) (*domain.AttributeAccumulator, error) {
	value, err := s.cache.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	if acc, ok := value.(*domain.AttributeAccumulator); ok {
		return acc, nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return nil, domain.ErrCacheMiss
	}
	var acc domain.AttributeAccumulator
	if err := json.Unmarshal(data, &acc); err != nil {
		return nil, domain.ErrCacheMiss
	}
	return &acc, nil
}

// debugLog logs a message only when debug mode is enabled
func (s *AnalysisService) debugLog(format string, args ...interface{}) {
	if s.debug {
		log.Printf("[ANALYSIS] "+format, args...)
	}
}
