package domain

import (
	"fmt"
	"net/url"
	"strings"
)

// QueryPlaceholder marks where the encoded product name goes in a source URL template
const QueryPlaceholder = "{query}"

// LocatorExpr is a CSS selector group evaluated against a parsed page.
// It may match zero or more elements.
type LocatorExpr string

// LocatorRules maps each attribute class to the locator used to find it on a page
type LocatorRules struct {
	Ingredients LocatorExpr `yaml:"ingredients" json:"ingredients"`
	ProductInfo LocatorExpr `yaml:"productInfo" json:"productInfo"`
	Packaging   LocatorExpr `yaml:"packaging" json:"packaging"`
}

// SourceSpec describes one external product data source.
// Registry order defines priority.
type SourceSpec struct {
	ID          string       `yaml:"id" json:"id"`
	URLTemplate string       `yaml:"url" json:"url"`
	Rules       LocatorRules `yaml:"selectors" json:"selectors"`
}

// URL builds the search URL for productName. The name is percent-encoded the
// way browsers encode a URI component (spaces become %20, not +).
func (s SourceSpec) URL(productName string) string {
	return strings.ReplaceAll(s.URLTemplate, QueryPlaceholder, EncodeQueryComponent(productName))
}

// uriComponentUnescapes undoes the escapes url.QueryEscape adds for
// characters a browser's encodeURIComponent leaves as-is.
var uriComponentUnescapes = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// EncodeQueryComponent percent-encodes s like encodeURIComponent: only
// A-Z a-z 0-9 - _ . ! ~ * ' ( ) are left unescaped.
func EncodeQueryComponent(s string) string {
	return uriComponentUnescapes.Replace(url.QueryEscape(s))
}

// FetchErrorKind distinguishes transport failures from HTTP status failures
type FetchErrorKind int

const (
	// FetchNetworkError covers DNS, connection, TLS, timeout and body read failures
	FetchNetworkError FetchErrorKind = iota + 1
	// FetchHTTPError covers non-2xx responses
	FetchHTTPError
)

func (k FetchErrorKind) String() string {
	switch k {
	case FetchNetworkError:
		return "network"
	case FetchHTTPError:
		return "http"
	default:
		return "unknown"
	}
}

// FetchError describes why a source page could not be retrieved.
type FetchError struct {
	Kind       FetchErrorKind
	URL        string
	StatusCode int
	Detail     string
	Err        error
}

func (e *FetchError) Error() string {
	switch e.Kind {
	case FetchHTTPError:
		if e.Detail != "" {
			return fmt.Sprintf("fetch %s: status %d: %s", e.URL, e.StatusCode, e.Detail)
		}
		return fmt.Sprintf("fetch %s: status %d", e.URL, e.StatusCode)
	default:
		return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
	}
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match a FetchError against ErrNetwork or ErrHTTPStatus.
func (e *FetchError) Is(target error) bool {
	switch target {
	case ErrNetwork:
		return e.Kind == FetchNetworkError
	case ErrHTTPStatus:
		return e.Kind == FetchHTTPError
	}
	return false
}

// FetchResult is the outcome of fetching one page: either Markup or Err.
type FetchResult struct {
	Markup string
	Err    *FetchError
}

// OK reports whether the fetch produced markup
func (r FetchResult) OK() bool {
	return r.Err == nil
}
