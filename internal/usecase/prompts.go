package usecase

import (
	"fmt"
	"strings"

	"github.com/ecosnap/backend/internal/domain"
)

// identifyPrompt asks for the product name and brand shown in a photo
const identifyPrompt = `Analyze this product image and provide ONLY the product name and brand in JSON format:
{
  "name": "full product name",
  "brand": "brand name"
}`

// fallbackPrompt asks the model to infer attributes directly from the photo
const fallbackPrompt = `Analyze this product image and list its likely ingredients and packaging materials in JSON format:
{
  "ingredients": ["ingredient1", "ingredient2"],
  "packaging": {
    "materials": ["material1", "material2"],
    "recyclable": true/false
  }
}`

// footprintPrompt builds the carbon-footprint scoring prompt for attrs
func footprintPrompt(attrs *domain.ProductAttributes) string {
	return fmt.Sprintf(`Calculate the carbon footprint score (0-100) for a product with the following details:
    Ingredients: %s
    Packaging: %s
    Recyclable: %t

    Provide the response in JSON format with the following structure, no other text:
    {
      "score": number,
      "details": {
        "manufacturing": number,
        "transportation": number,
        "packaging": number,
        "lifecycle": number
      }
    }`,
		strings.Join(attrs.Ingredients, ", "),
		strings.Join(attrs.Packaging.Materials, ", "),
		attrs.Packaging.Recyclable,
	)
}
