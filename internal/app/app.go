// Package app wires configuration into the service graph shared by the
// HTTP server and the command line tool.
package app

import (
	"fmt"
	"log"

	"github.com/ecosnap/backend/config"
	httpDelivery "github.com/ecosnap/backend/internal/delivery/http"
	"github.com/ecosnap/backend/internal/infrastructure/cache"
	"github.com/ecosnap/backend/internal/infrastructure/extractor"
	"github.com/ecosnap/backend/internal/infrastructure/fetcher"
	"github.com/ecosnap/backend/internal/infrastructure/gemini"
	"github.com/ecosnap/backend/internal/infrastructure/sources"
	"github.com/ecosnap/backend/internal/usecase"
	"github.com/gin-gonic/gin"
)

// Version is reported by /health logs and the CLI
const Version = "1.0.0"

// NewScraper builds the source orchestrator from the scraper settings
func NewScraper(cfg *config.Config) (*usecase.ScraperService, *fetcher.Client, error) {
	registry, err := sources.Load(cfg.Scraper.SourcesFile)
	if err != nil {
		return nil, nil, fmt.Errorf("load sources: %w", err)
	}

	pageFetcher := fetcher.NewClient(fetcher.Config{
		UserAgent:      cfg.Scraper.UserAgent,
		Timeout:        cfg.Scraper.Timeout,
		TLSFingerprint: cfg.Scraper.TLSFingerprint,
	})
	htmlExtractor := extractor.New()

	debug := cfg.Scraper.Debug || cfg.Server.Environment == "development"
	pageFetcher.SetDebug(debug)
	htmlExtractor.SetDebug(cfg.Scraper.Debug)

	scraper := usecase.NewScraperService(registry, pageFetcher, htmlExtractor, usecase.ScraperServiceConfig{
		EnableDebugLogging: debug,
	})
	return scraper, pageFetcher, nil
}

// App is the fully wired service
type App struct {
	Config   *config.Config
	Cache    *cache.MemoryCache
	Scraper  *usecase.ScraperService
	Analysis *usecase.AnalysisService
	Router   *gin.Engine
}

// New wires every dependency described by cfg
func New(cfg *config.Config) (*App, error) {
	scraper, pageFetcher, err := NewScraper(cfg)
	if err != nil {
		return nil, err
	}
	log.Printf("Sources: %d registered", len(scraper.Sources()))

	memoryCache := cache.NewMemoryCache(cfg.Cache.SweepInterval)
	log.Printf("Cache TTL: %s", cfg.Cache.TTL)

	geminiClient := gemini.NewClient(cfg.Gemini.APIKey, cfg.Gemini.BaseURL, cfg.Gemini.Model, cfg.Gemini.RequestsPerMinute)
	if cfg.Server.Environment == "development" {
		geminiClient.SetDebug(true)
		log.Printf("Gemini client debug mode enabled")
	}
	log.Printf("Gemini API configured: %s model=%s (key: %s...)", cfg.Gemini.BaseURL, cfg.Gemini.Model, keyPrefix(cfg.Gemini.APIKey))

	analysis := usecase.NewAnalysisService(
		memoryCache,
		scraper,
		geminiClient,
		fetcher.NewImageLoader(pageFetcher),
		usecase.AnalysisServiceConfig{
			CacheTTL:           cfg.Cache.TTL,
			EnableDebugLogging: cfg.Scraper.Debug,
		},
	)

	handler := httpDelivery.NewHandler(analysis, cfg.Server.RequestTimeout)

	return &App{
		Config:   cfg,
		Cache:    memoryCache,
		Scraper:  scraper,
		Analysis: analysis,
		Router:   httpDelivery.SetupRouter(cfg, handler),
	}, nil
}

// Close releases background resources
func (a *App) Close() {
	a.Cache.Close()
}

// keyPrefix shows enough of an API key to tell keys apart in logs
func keyPrefix(key string) string {
	if len(key) <= 4 {
		return "****"
	}
	return key[:4]
}
