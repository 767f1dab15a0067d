package domain

// ProductIdentity is what visual identification recovers from a product photo
type ProductIdentity struct {
	Name  string `json:"name"`
	Brand string `json:"brand,omitempty"`
}

// ProductImage is a product photo as sent to the generative collaborator
type ProductImage struct {
	Data     []byte
	MIMEType string // e.g., "image/jpeg"
}

// FootprintDetails breaks the carbon footprint down by lifecycle stage
type FootprintDetails struct {
	Manufacturing  float64 `json:"manufacturing"`
	Transportation float64 `json:"transportation"`
	Packaging      float64 `json:"packaging"`
	Lifecycle      float64 `json:"lifecycle"`
}

// CarbonFootprint is the 0-100 environmental-impact score for a product
type CarbonFootprint struct {
	Score   float64          `json:"score"`
	Details FootprintDetails `json:"details"`
}

// Attribute sources reported in ProductAnalysis.Source
const (
	SourceScrape   = "scrape"
	SourceFallback = "fallback"
	SourceCache    = "cache"
)

// SimilarProduct is a comparable product suggestion
type SimilarProduct struct {
	Name     string  `json:"name"`
	Brand    string  `json:"brand,omitempty"`
	Price    float64 `json:"price"`
	ImageURL string  `json:"imageUrl,omitempty"`
}

// ProductAnalysis is the complete result of analyzing one product photo
type ProductAnalysis struct {
	Name            string           `json:"name"`
	Brand           string           `json:"brand,omitempty"`
	Ingredients     []string         `json:"ingredients"`
	Packaging       Packaging        `json:"packaging"`
	AdditionalInfo  []string         `json:"additionalInfo,omitempty"`
	Source          string           `json:"source"` // "scrape", "fallback" or "cache"
	CarbonFootprint *CarbonFootprint `json:"carbonFootprint,omitempty"`
	SimilarProducts []SimilarProduct `json:"similarProducts"`
}

// AnalyzeRequest is the body of an analyze call. ImageURL is either a data
// URL (as produced by canvas.toDataURL) or an http(s) URL.
type AnalyzeRequest struct {
	ImageURL string  `json:"imageUrl" binding:"required"`
	Price    float64 `json:"price,omitempty"`
}

// AttributesRequest asks for scraped attributes of a named product
type AttributesRequest struct {
	ProductName string `json:"productName" binding:"required"`
}
