// Package analysis turns untrusted model completions into canonical
// verdict.AnalysisResult values, builds the fixed prompts, and assembles
// prompt context from product-database records.
package analysis

import (
	"encoding/json"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/amr05008/glutenornot.com/pkg/verdict"
)

// Flavor parameterizes Parse. The two paths through the product want
// slightly different strictness, but they are configurations of one parser,
// not two copies of the logic.
type Flavor struct {
	// AllowMenu keeps the model's menu mode and menu_items. When false the
	// result is forced to label mode and menu fields are discarded.
	AllowMenu bool

	// RequireCanonicalVerdict rejects (i.e. degrades to the fallback) any
	// response whose verdict is not literally "safe", "caution" or
	// "unsafe". When false, NormalizeVerdict collapses whatever arrived.
	RequireCanonicalVerdict bool

	fallbackExplanation string
}

// ScanFlavor parses completions from the photo-analysis path: menu-aware,
// language-aware, and strict about the verdict vocabulary.
var ScanFlavor = Flavor{
	AllowMenu:               true,
	RequireCanonicalVerdict: true,
	fallbackExplanation:     "Unable to fully analyze the ingredients. Please review manually.",
}

// LookupFlavor parses completions from the barcode path: always label mode,
// permissive about off-vocabulary verdicts.
var LookupFlavor = Flavor{
	fallbackExplanation: "Unable to fully analyze the product. Please review the ingredients manually.",
}

// Parse converts a raw model completion into a canonical result. It is
// total: no input, however malformed, produces an error. Anything the
// parser cannot trust degrades to a fixed low-confidence caution result,
// because in this domain a hard failure could be mistaken for "safe".
func Parse(raw string, f Flavor) verdict.AnalysisResult {
	text := strings.TrimSpace(raw)
	if text == "" {
		return fallback(f)
	}

	// Models legitimately wrap the JSON object in prose. Take the span from
	// the first '{' to the last '}'. Greedy and known to misfire on literal
	// braces in surrounding prose; accepted behavior.
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end <= start {
		return fallback(f)
	}
	span := text[start : end+1]

	if !gjson.Valid(span) {
		return fallback(f)
	}
	parsed := gjson.Parse(span)
	if !parsed.IsObject() {
		return fallback(f)
	}
	if f.RequireCanonicalVerdict {
		switch parsed.Get("verdict").String() {
		case "safe", "caution", "unsafe":
		default:
			return fallback(f)
		}
	}

	var body rawResult
	if err := json.Unmarshal([]byte(span), &body); err != nil {
		return fallback(f)
	}

	res := verdict.AnalysisResult{
		Verdict:            verdict.NormalizeVerdict(body.Verdict),
		FlaggedIngredients: body.FlaggedIngredients,
		AllergenWarnings:   body.AllergenWarnings,
		Explanation:        body.Explanation,
		Confidence:         normalizeConfidence(body.Confidence),
		DetectedLanguage:   strings.TrimSpace(body.DetectedLanguage),
	}
	if res.FlaggedIngredients == nil {
		res.FlaggedIngredients = []string{}
	}
	if res.AllergenWarnings == nil {
		res.AllergenWarnings = []string{}
	}

	if !f.AllowMenu {
		res.Mode = verdict.ModeLabel
		return res
	}

	mode := verdict.NormalizeMode(body.Mode)
	if mode == verdict.ModeUnknown {
		if len(body.MenuItems) > 0 {
			mode = verdict.ModeMenu
		} else {
			mode = verdict.ModeLabel
		}
	}
	res.Mode = mode

	if mode == verdict.ModeMenu {
		items := make([]verdict.MenuItem, 0, len(body.MenuItems))
		for _, it := range body.MenuItems {
			if strings.TrimSpace(it.Name) == "" {
				continue
			}
			items = append(items, verdict.MenuItem{
				Name:    it.Name,
				Verdict: verdict.NormalizeVerdict(it.Verdict),
				Notes:   it.Notes,
			})
		}
		res.MenuItems = items
	}

	return res
}

// rawResult is the wire shape as the model emits it, before any field is
// trusted.
type rawResult struct {
	Mode               string        `json:"mode"`
	DetectedLanguage   string        `json:"detected_language"`
	Verdict            string        `json:"verdict"`
	FlaggedIngredients []string      `json:"flagged_ingredients"`
	AllergenWarnings   []string      `json:"allergen_warnings"`
	Explanation        string        `json:"explanation"`
	Confidence         string        `json:"confidence"`
	MenuItems          []rawMenuItem `json:"menu_items"`
}

type rawMenuItem struct {
	Name    string `json:"name"`
	Verdict string `json:"verdict"`
	Notes   string `json:"notes"`
}

func normalizeConfidence(raw string) verdict.Confidence {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "high":
		return verdict.High
	case "low":
		return verdict.Low
	default:
		// Absent or off-vocabulary both land on medium.
		return verdict.Medium
	}
}

// fallback is the fixed fail-safe result: caution, low confidence, empty
// arrays. Returned whenever the upstream response cannot be trusted.
func fallback(f Flavor) verdict.AnalysisResult {
	return verdict.AnalysisResult{
		Mode:               verdict.ModeLabel,
		Verdict:            verdict.Caution,
		FlaggedIngredients: []string{},
		AllergenWarnings:   []string{},
		Explanation:        f.fallbackExplanation,
		Confidence:         verdict.Low,
	}
}
