package analysis

import (
	"strings"

	"github.com/amr05008/glutenornot.com/internal/lookup"
)

// BuildIngredientContext flattens a product record into the text block the
// lookup prompt consumes. The empty string is a control-flow signal meaning
// "nothing useful to analyze": the orchestrator then skips the model call
// and answers with a direct low-confidence caution result.
//
// A product with neither ingredients text nor allergen tags yields the
// empty string; name, traces and certifications alone are not enough to
// analyze.
func BuildIngredientContext(p *lookup.Product) string {
	if p == nil {
		return ""
	}
	if p.IngredientsText == "" && len(p.AllergensTags) == 0 {
		return ""
	}

	var parts []string

	if p.ProductName != "" {
		name := p.ProductName
		if p.Brand != "" {
			name = p.Brand + " - " + name
		}
		parts = append(parts, "Product: "+name)
	}

	if p.IngredientsText != "" {
		parts = append(parts, "Ingredients: "+p.IngredientsText)
	}

	if len(p.AllergensTags) > 0 {
		parts = append(parts, "Allergens: "+joinTags(p.AllergensTags))
	}

	if len(p.TracesTags) > 0 {
		parts = append(parts, "Cross-contamination traces: "+joinTags(p.TracesTags))
	}

	var certs []string
	for _, tag := range p.LabelsTags {
		stripped := stripTagNamespace(tag)
		if strings.Contains(stripped, "gluten") ||
			strings.Contains(stripped, "celiac") ||
			strings.Contains(stripped, "coeliac") {
			certs = append(certs, stripped)
		}
	}
	if len(certs) > 0 {
		parts = append(parts, "Certifications: "+strings.Join(certs, ", "))
	}

	return strings.Join(parts, "\n")
}

// stripTagNamespace drops the "en:" language prefix Open Food Facts puts on
// its taxonomy tags.
func stripTagNamespace(tag string) string {
	return strings.TrimPrefix(tag, "en:")
}

func joinTags(tags []string) string {
	stripped := make([]string, 0, len(tags))
	for _, tag := range tags {
		stripped = append(stripped, stripTagNamespace(tag))
	}
	return strings.Join(stripped, ", ")
}
