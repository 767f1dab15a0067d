package domain

import "strings"

// PackagingMaterials is the closed vocabulary of packaging materials the
// classifier recognizes, in match order.
var PackagingMaterials = []string{"plastic", "cardboard", "glass", "metal", "paper"}

// IsPackagingMaterial reports whether m is a member of PackagingMaterials.
func IsPackagingMaterial(m string) bool {
	for _, known := range PackagingMaterials {
		if m == known {
			return true
		}
	}
	return false
}

// Packaging describes what a product is packed in
type Packaging struct {
	Materials  []string `json:"materials"`
	Recyclable bool     `json:"recyclable"`
}

// ProductAttributes is the final attribute set handed to scoring, whichever
// path (scrape or fallback) produced it.
type ProductAttributes struct {
	Ingredients    []string  `json:"ingredients"`
	Packaging      Packaging `json:"packaging"`
	AdditionalInfo []string  `json:"additionalInfo,omitempty"`
}

// Fragments holds the trimmed, non-empty text fragments one source page
// produced for each attribute class, in document order.
type Fragments struct {
	Ingredients []string
	ProductInfo []string
	Packaging   []string
}

// IsEmpty reports whether no class produced any fragment
func (f Fragments) IsEmpty() bool {
	return len(f.Ingredients) == 0 && len(f.ProductInfo) == 0 && len(f.Packaging) == 0
}

// AttributeAccumulator merges fragments from several sources for a single
// scrape. It only ever grows: ingredients and additional info are ordered
// sets keyed by exact text, materials may repeat, and Recyclable is sticky.
type AttributeAccumulator struct {
	Ingredients    []string  `json:"ingredients"`
	Packaging      Packaging `json:"packaging"`
	AdditionalInfo []string  `json:"additionalInfo"`

	seenIngredients map[string]struct{}
	seenInfo        map[string]struct{}
}

// NewAttributeAccumulator returns an empty accumulator with non-nil slices,
// so it serializes as empty arrays rather than null.
func NewAttributeAccumulator() *AttributeAccumulator {
	return &AttributeAccumulator{
		Ingredients:     []string{},
		Packaging:       Packaging{Materials: []string{}},
		AdditionalInfo:  []string{},
		seenIngredients: make(map[string]struct{}),
		seenInfo:        make(map[string]struct{}),
	}
}

// AddIngredient appends text unless it is blank or already present.
// Returns true when the fragment was added.
func (a *AttributeAccumulator) AddIngredient(text string) bool {
	return addUnique(&a.Ingredients, a.seenIngredientsSet(), text)
}

// AddAdditionalInfo appends text unless it is blank or already present.
func (a *AttributeAccumulator) AddAdditionalInfo(text string) bool {
	return addUnique(&a.AdditionalInfo, a.seenInfoSet(), text)
}

// AddMaterials appends materials as-is; duplicates are kept.
func (a *AttributeAccumulator) AddMaterials(materials ...string) {
	a.Packaging.Materials = append(a.Packaging.Materials, materials...)
}

// MarkRecyclable ORs recyclable into the packaging flag. Once true it stays true.
func (a *AttributeAccumulator) MarkRecyclable(recyclable bool) {
	a.Packaging.Recyclable = a.Packaging.Recyclable || recyclable
}

// HasIngredients reports whether at least one ingredient fragment was collected
func (a *AttributeAccumulator) HasIngredients() bool {
	return a != nil && len(a.Ingredients) > 0
}

// Attributes converts the accumulator into the final ProductAttributes shape.
func (a *AttributeAccumulator) Attributes() *ProductAttributes {
	return &ProductAttributes{
		Ingredients: append([]string{}, a.Ingredients...),
		Packaging: Packaging{
			Materials:  append([]string{}, a.Packaging.Materials...),
			Recyclable: a.Packaging.Recyclable,
		},
		AdditionalInfo: append([]string{}, a.AdditionalInfo...),
	}
}

// seenIngredientsSet lazily rebuilds the dedup index, which is lost when an
// accumulator is decoded from JSON (e.g. a cache round trip).
func (a *AttributeAccumulator) seenIngredientsSet() map[string]struct{} {
	if a.seenIngredients == nil {
		a.seenIngredients = indexOf(a.Ingredients)
	}
	return a.seenIngredients
}

func (a *AttributeAccumulator) seenInfoSet() map[string]struct{} {
	if a.seenInfo == nil {
		a.seenInfo = indexOf(a.AdditionalInfo)
	}
	return a.seenInfo
}

func indexOf(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

func addUnique(list *[]string, seen map[string]struct{}, text string) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}
	if _, dup := seen[text]; dup {
		return false
	}
	seen[text] = struct{}{}
	*list = append(*list, text)
	return true
}

// NeedsFallback reports whether scraping produced nothing usable: either the
// orchestrator gave up (nil) or no ingredient fragment was found.
func NeedsFallback(acc *AttributeAccumulator) bool {
	return !acc.HasIngredients()
}
