package sources

import (
	"fmt"
	"os"
	"strings"

	"github.com/andybalholm/cascadia"
	"github.com/ecosnap/backend/internal/domain"
	"gopkg.in/yaml.v3"
)

// defaultSources are tried in order; the first one that yields ingredients wins.
var defaultSources = []domain.SourceSpec{
	{
		ID:          "amazon",
		URLTemplate: "https://www.amazon.in/s?k={query}",
		Rules: domain.LocatorRules{
			Ingredients: "#feature-bullets .a-list-item, #productDetails_techSpec_section_1 .prodDetAttrValue, #productDetails_db_sections .content",
			ProductInfo: "#productDescription p, #feature-bullets .a-list-item",
			Packaging:   "#important-information .a-section, #sustainability-section",
		},
	},
	{
		ID:          "flipkart",
		URLTemplate: "https://www.flipkart.com/search?q={query}",
		Rules: domain.LocatorRules{
			Ingredients: "._2418kt, ._3nUwn8, .RmoJUa",
			ProductInfo: "._1mXcCf, ._2-riNZ",
			Packaging:   "._2-N8zT, ._1UhVsV",
		},
	},
	{
		ID:          "nykaa",
		URLTemplate: "https://www.nykaa.com/search/result/?q={query}",
		Rules: domain.LocatorRules{
			Ingredients: ".product-ingredients-content, .product-description p",
			ProductInfo: ".product-description, .product-overview",
			Packaging:   ".product-overview p",
		},
	},
	{
		ID:          "bigbasket",
		URLTemplate: "https://www.bigbasket.com/ps/?q={query}",
		Rules: domain.LocatorRules{
			Ingredients: ".pd-ingredient-content, .mt-20 p",
			ProductInfo: ".pd-description-content, .pd-about-content",
			Packaging:   ".pd-about-content",
		},
	},
	{
		ID:          "1mg",
		URLTemplate: "https://www.1mg.com/search/all?name={query}",
		Rules: domain.LocatorRules{
			Ingredients: ".DrugOverview__description___1Jwqq, .ProductDescription__description-content___A_qCZ",
			ProductInfo: ".DrugOverview__content___22ZBX, .ProductDescription__description-content___A_qCZ",
			Packaging:   ".PackSizeLabel__pack-size___3jScl",
		},
	},
	{
		ID:          "incidecoder",
		URLTemplate: "https://incidecoder.com/search?query={query}",
		Rules: domain.LocatorRules{
			Ingredients: ".ingredients-list, .ingred-list",
			ProductInfo: ".product-description",
			Packaging:   ".product-details",
		},
	},
}

// Default returns a copy of the built-in source registry
func Default() []domain.SourceSpec {
	return append([]domain.SourceSpec(nil), defaultSources...)
}

// registryFile is the on-disk layout of a source registry
type registryFile struct {
	Sources []domain.SourceSpec `yaml:"sources"`
}

// Load returns the registry to use. An empty path selects the built-in
// registry; otherwise the YAML file replaces it entirely.
func Load(path string) ([]domain.SourceSpec, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sources file: %w", err)
	}

	return Parse(data)
}

// Parse decodes and validates a YAML source registry
func Parse(data []byte) ([]domain.SourceSpec, error) {
	var file registryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode sources file: %w", err)
	}

	if err := Validate(file.Sources); err != nil {
		return nil, err
	}
	return file.Sources, nil
}

// Validate checks every entry once at startup so a bad selector or template
// is reported immediately instead of silently matching nothing.
func Validate(specs []domain.SourceSpec) error {
	if len(specs) == 0 {
		return fmt.Errorf("%w: registry is empty", domain.ErrInvalidSource)
	}

	seen := make(map[string]bool, len(specs))
	for i, spec := range specs {
		if strings.TrimSpace(spec.ID) == "" {
			return fmt.Errorf("%w: entry %d has no id", domain.ErrInvalidSource, i)
		}
		if seen[spec.ID] {
			return fmt.Errorf("%w: duplicate id %q", domain.ErrInvalidSource, spec.ID)
		}
		seen[spec.ID] = true

		if !strings.Contains(spec.URLTemplate, domain.QueryPlaceholder) {
			return fmt.Errorf("%w: %s: url must contain %s", domain.ErrInvalidSource, spec.ID, domain.QueryPlaceholder)
		}
		if !strings.HasPrefix(spec.URLTemplate, "http://") && !strings.HasPrefix(spec.URLTemplate, "https://") {
			return fmt.Errorf("%w: %s: url must be http(s)", domain.ErrInvalidSource, spec.ID)
		}

		locators := map[string]domain.LocatorExpr{
			"ingredients": spec.Rules.Ingredients,
			"productInfo": spec.Rules.ProductInfo,
			"packaging":   spec.Rules.Packaging,
		}
		for class, expr := range locators {
			if expr == "" {
				continue
			}
			if _, err := cascadia.Compile(string(expr)); err != nil {
				return fmt.Errorf("%w: %s: %s selector: %v", domain.ErrInvalidSource, spec.ID, class, err)
			}
		}
	}

	return nil
}
