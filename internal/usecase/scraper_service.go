package usecase

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/ecosnap/backend/internal/domain"
	"github.com/ecosnap/backend/internal/infrastructure/metrics"
)

// Scrape run results reported to metrics
const (
	scrapeResultIngredients = "ingredients"
	scrapeResultEmpty       = "empty"
	scrapeResultAborted     = "aborted"
)

// ScraperServiceConfig holds configuration for the scraper service
type ScraperServiceConfig struct {
	EnableDebugLogging bool
}

// ScraperService walks the source registry in order and merges what each
// source yields into one attribute set.
type ScraperService struct {
	sources   []domain.SourceSpec
	fetcher   domain.PageFetcher
	extractor domain.FragmentExtractor
	debug     bool
}

// NewScraperService creates a new scraper service with dependencies
func NewScraperService(
	sources []domain.SourceSpec,
	fetcher domain.PageFetcher,
	extractor domain.FragmentExtractor,
	config ScraperServiceConfig,
) *ScraperService {
	return &ScraperService{
		sources:   append([]domain.SourceSpec(nil), sources...),
		fetcher:   fetcher,
		extractor: extractor,
		debug:     config.EnableDebugLogging,
	}
}

// Sources returns the registry this service walks, in priority order
func (s *ScraperService) Sources() []domain.SourceSpec {
	return append([]domain.SourceSpec(nil), s.sources...)
}

// ScrapeProductDetails visits sources one at a time until one of them
// yields at least one ingredient. Failing sources are logged and skipped.
//
// The result is never an error: an empty accumulator means no source had
// data, and nil means the walk itself broke. Both call for the fallback.
// A cancelled ctx stops further fetches and returns what was gathered.
func (s *ScraperService) ScrapeProductDetails(ctx context.Context, productName string) (acc *domain.AttributeAccumulator) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[SCRAPER] Error in web scraping for %q: %v", productName, r)
			metrics.ObserveScrape(scrapeResultAborted)
			acc = nil
		}
	}()

	acc = domain.NewAttributeAccumulator()

	productName = strings.TrimSpace(productName)
	if productName == "" {
		log.Printf("[SCRAPER] Empty product name, nothing to scrape")
		metrics.ObserveScrape(scrapeResultEmpty)
		return acc
	}

	for _, source := range s.sources {
		if err := ctx.Err(); err != nil {
			log.Printf("[SCRAPER] Stopping before %s: %v", source.ID, err)
			break
		}

		sourceURL := source.URL(productName)
		start := time.Now()
		result := s.fetcher.Fetch(ctx, sourceURL)
		if !result.OK() {
			log.Printf("[SCRAPER] Error scraping from %s: %v", sourceURL, result.Err)
			metrics.ObserveFetch(source.ID, fetchOutcome(result.Err), time.Since(start))
			continue
		}
		metrics.ObserveFetch(source.ID, metrics.OutcomeOK, time.Since(start))

		fragments := s.extractor.Extract(result.Markup, source.Rules)
		s.merge(acc, source.ID, fragments)

		if acc.HasIngredients() {
			s.debugLog("%s yielded %d ingredients, stopping", source.ID, len(acc.Ingredients))
			break
		}
	}

	if acc.HasIngredients() {
		metrics.ObserveScrape(scrapeResultIngredients)
	} else {
		log.Printf("[SCRAPER] No ingredients found for %q in %d sources", productName, len(s.sources))
		metrics.ObserveScrape(scrapeResultEmpty)
	}

	return acc
}

// merge folds one source's fragments into the accumulator
func (s *ScraperService) merge(acc *domain.AttributeAccumulator, sourceID string, fragments domain.Fragments) {
	added := 0
	for _, text := range fragments.Ingredients {
		if acc.AddIngredient(text) {
			added++
		}
	}
	for _, text := range fragments.ProductInfo {
		acc.AddAdditionalInfo(text)
	}

	packaging := ClassifyPackaging(fragments.Packaging)
	acc.MarkRecyclable(packaging.Recyclable)
	acc.AddMaterials(packaging.Materials...)

	metrics.AddFragments(sourceID, "ingredients", len(fragments.Ingredients))
	metrics.AddFragments(sourceID, "productInfo", len(fragments.ProductInfo))
	metrics.AddFragments(sourceID, "packaging", len(fragments.Packaging))

	s.debugLog("%s: %d ingredient fragments (%d new), %d info, %d packaging, materials=%v recyclable=%v",
		sourceID, len(fragments.Ingredients), added, len(fragments.ProductInfo), len(fragments.Packaging),
		packaging.Materials, packaging.Recyclable)
}

// debugLog logs a message only when debug mode is enabled
func (s *ScraperService) debugLog(format string, args ...interface{}) {
	if s.debug {
		log.Printf("[SCRAPER] "+format, args...)
	}
}

// fetchOutcome maps a fetch error to its metrics label
func fetchOutcome(err *domain.FetchError) string {
	if err != nil && err.Kind == domain.FetchHTTPError {
		return metrics.OutcomeHTTPError
	}
	return metrics.OutcomeNetworkError
}
