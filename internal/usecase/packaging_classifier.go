package usecase

import (
	"regexp"
	"strings"

	"github.com/ecosnap/backend/internal/domain"
)

// recyclableKeyword marks packaging text as recyclable. It is a plain
// substring test: "non-recyclable" also matches.
const recyclableKeyword = "recycl"

// materialPattern finds every material keyword, anywhere in a word
var materialPattern = regexp.MustCompile(strings.Join(domain.PackagingMaterials, "|"))

// PackagingClassification is what the classifier learned from a set of fragments
type PackagingClassification struct {
	Materials  []string
	Recyclable bool
}

// ClassifyPackaging scans lower-cased packaging fragments for the recycling
// keyword and for material names. Every material occurrence is reported, so
// the same material can appear more than once.
func ClassifyPackaging(fragments []string) PackagingClassification {
	result := PackagingClassification{Materials: []string{}}

	for _, fragment := range fragments {
		text := strings.ToLower(fragment)
		if strings.Contains(text, recyclableKeyword) {
			result.Recyclable = true
		}
		result.Materials = append(result.Materials, materialPattern.FindAllString(text, -1)...)
	}

	return result
}
