package extractor

import (
	"log"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/ecosnap/backend/internal/domain"
	"golang.org/x/net/html"
)

// Extractor evaluates a source's locator rules against raw markup.
// Compiled selectors are cached, so one Extractor is meant to be shared.
type Extractor struct {
	mu       sync.RWMutex
	compiled map[domain.LocatorExpr]cascadia.Selector
	debug    bool
}

// New creates an Extractor
func New() *Extractor {
	return &Extractor{
		compiled: make(map[domain.LocatorExpr]cascadia.Selector),
	}
}

// SetDebug enables or disables debug logging
func (e *Extractor) SetDebug(debug bool) {
	e.debug = debug
}

// Extract returns the trimmed, non-empty text of every element matched by
// each rule, in document order. Unparsable markup or a selector that does
// not compile yields empty results, never an error.
func (e *Extractor) Extract(markup string, rules domain.LocatorRules) domain.Fragments {
	fragments := domain.Fragments{
		Ingredients: []string{},
		ProductInfo: []string{},
		Packaging:   []string{},
	}

	root, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		log.Printf("[EXTRACT] Failed to parse markup: %v", err)
		return fragments
	}
	doc := goquery.NewDocumentFromNode(root)

	fragments.Ingredients = e.texts(doc, rules.Ingredients)
	fragments.ProductInfo = e.texts(doc, rules.ProductInfo)
	fragments.Packaging = e.texts(doc, rules.Packaging)

	if e.debug {
		log.Printf("[EXTRACT] ingredients=%d productInfo=%d packaging=%d",
			len(fragments.Ingredients), len(fragments.ProductInfo), len(fragments.Packaging))
	}

	return fragments
}

// texts collects the text of every node matched by expr
func (e *Extractor) texts(doc *goquery.Document, expr domain.LocatorExpr) []string {
	out := []string{}
	if expr == "" {
		return out
	}

	sel, ok := e.selector(expr)
	if !ok {
		return out
	}

	doc.FindMatcher(sel).Each(func(_ int, s *goquery.Selection) {
		if text := strings.TrimSpace(s.Text()); text != "" {
			out = append(out, text)
		}
	})
	return out
}

// selector compiles expr once and caches the result
func (e *Extractor) selector(expr domain.LocatorExpr) (cascadia.Selector, bool) {
	e.mu.RLock()
	sel, ok := e.compiled[expr]
	e.mu.RUnlock()
	if ok {
		return sel, true
	}

	sel, err := cascadia.Compile(string(expr))
	if err != nil {
		log.Printf("[EXTRACT] Invalid selector %q: %v", expr, err)
		return nil, false
	}

	e.mu.Lock()
	e.compiled[expr] = sel
	e.mu.Unlock()
	return sel, true
}
