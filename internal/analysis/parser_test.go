package analysis

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amr05008/glutenornot.com/pkg/verdict"
)

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}

func assertFallback(t *testing.T, got verdict.AnalysisResult) {
	t.Helper()
	assert.Equal(t, verdict.Caution, got.Verdict)
	assert.Equal(t, verdict.Low, got.Confidence)
	assert.Equal(t, []string{}, got.FlaggedIngredients)
	assert.Equal(t, []string{}, got.AllergenWarnings)
	assert.NotEmpty(t, got.Explanation)
}

func TestParseBlankInputReturnsFallback(t *testing.T) {
	for _, in := range []string{"", "   ", "\n\t "} {
		assertFallback(t, Parse(in, ScanFlavor))
		assertFallback(t, Parse(in, LookupFlavor))
	}
}

func TestParseNoJSONReturnsFallback(t *testing.T) {
	assertFallback(t, Parse("I could not read anything useful from that image.", ScanFlavor))
}

func TestParseMalformedJSONReturnsFallback(t *testing.T) {
	assertFallback(t, Parse(`{"verdict": "safe", "flagged_ingredients": [`, ScanFlavor))
}

func TestParseValidUnsafeResponse(t *testing.T) {
	in := mustJSON(t, map[string]any{
		"verdict":             "unsafe",
		"flagged_ingredients": []string{"wheat flour", "malt extract"},
		"allergen_warnings":   []string{"Contains wheat"},
		"explanation":         "Contains wheat flour and malt extract.",
		"confidence":          "high",
	})

	got := Parse(in, ScanFlavor)

	assert.Equal(t, verdict.Unsafe, got.Verdict)
	assert.Equal(t, verdict.ModeLabel, got.Mode, "mode defaults to label when unspecified")
	assert.Equal(t, []string{"wheat flour", "malt extract"}, got.FlaggedIngredients)
	assert.Equal(t, []string{"Contains wheat"}, got.AllergenWarnings)
	assert.Equal(t, verdict.High, got.Confidence)
}

func TestParseExtractsJSONFromSurroundingProse(t *testing.T) {
	in := "Here is my analysis:\n" + mustJSON(t, map[string]any{
		"verdict":    "safe",
		"confidence": "high",
	}) + "\nHope that helps!"

	got := Parse(in, ScanFlavor)

	assert.Equal(t, verdict.Safe, got.Verdict)
	assert.Equal(t, verdict.High, got.Confidence)
}

func TestParseFillsDefaultsForMissingOptionalFields(t *testing.T) {
	got := Parse(`{"verdict": "safe"}`, ScanFlavor)

	assert.Equal(t, verdict.Safe, got.Verdict)
	assert.Equal(t, []string{}, got.FlaggedIngredients)
	assert.Equal(t, []string{}, got.AllergenWarnings)
	assert.Equal(t, "", got.Explanation)
	assert.Equal(t, verdict.Medium, got.Confidence)
	assert.Empty(t, got.DetectedLanguage)
}

func TestParseScanFlavorRejectsOffVocabularyVerdict(t *testing.T) {
	// The photo path gates hard on the canonical vocabulary; anything else
	// is treated as a structural failure.
	for _, v := range []string{"maybe", "warning", "Safe", "UNSAFE", ""} {
		got := Parse(mustJSON(t, map[string]any{"verdict": v}), ScanFlavor)
		assertFallback(t, got)
	}
}

func TestParseLookupFlavorNormalizesOffVocabularyVerdict(t *testing.T) {
	got := Parse(mustJSON(t, map[string]any{"verdict": "maybe"}), LookupFlavor)
	assert.Equal(t, verdict.Caution, got.Verdict)
	assert.Equal(t, verdict.Medium, got.Confidence, "a parsed response is not the fallback")

	got = Parse(mustJSON(t, map[string]any{"verdict": "Not Safe"}), LookupFlavor)
	assert.Equal(t, verdict.Unsafe, got.Verdict)
}

func TestParseLookupFlavorForcesLabelMode(t *testing.T) {
	in := mustJSON(t, map[string]any{
		"mode":    "menu",
		"verdict": "safe",
		"menu_items": []map[string]any{
			{"name": "Dish", "verdict": "safe"},
		},
	})

	got := Parse(in, LookupFlavor)

	assert.Equal(t, verdict.ModeLabel, got.Mode)
	assert.Nil(t, got.MenuItems, "lookup flavor discards menu items")
}

func TestParseMenuResponse(t *testing.T) {
	in := mustJSON(t, map[string]any{
		"mode":        "menu",
		"verdict":     "caution",
		"explanation": "Several dishes contain gluten.",
		"confidence":  "medium",
		"menu_items": []map[string]any{
			{"name": "Grilled Salmon", "verdict": "safe", "notes": "Naturally gluten-free"},
			{"name": "Caesar Salad", "verdict": "caution", "notes": "Croutons, dressing may contain gluten"},
			{"name": "Pasta Carbonara", "verdict": "unsafe", "notes": "Wheat pasta"},
		},
	})

	got := Parse(in, ScanFlavor)

	assert.Equal(t, verdict.ModeMenu, got.Mode)
	require.Len(t, got.MenuItems, 3)
	assert.Equal(t, "Grilled Salmon", got.MenuItems[0].Name)
	assert.Equal(t, verdict.Safe, got.MenuItems[0].Verdict)
	assert.Equal(t, verdict.Unsafe, got.MenuItems[2].Verdict)
}

func TestParseMenuDropsNamelessItemsAndNormalizesVerdicts(t *testing.T) {
	in := mustJSON(t, map[string]any{
		"mode":    "menu",
		"verdict": "caution",
		"menu_items": []map[string]any{
			{"name": "Good Item", "verdict": "safe"},
			{"verdict": "unsafe", "notes": "no name"},
			{"name": "", "verdict": "safe"},
			{"name": "Bad Item", "verdict": "ask"},
		},
	})

	got := Parse(in, ScanFlavor)

	require.Len(t, got.MenuItems, 2)
	assert.Equal(t, "Good Item", got.MenuItems[0].Name)
	assert.Equal(t, "Bad Item", got.MenuItems[1].Name)
	assert.Equal(t, verdict.Caution, got.MenuItems[1].Verdict)
	assert.Equal(t, "", got.MenuItems[1].Notes)
}

func TestParseInfersMenuModeFromItems(t *testing.T) {
	in := mustJSON(t, map[string]any{
		"verdict": "caution",
		"menu_items": []map[string]any{
			{"name": "Tacos", "verdict": "caution"},
		},
	})

	got := Parse(in, ScanFlavor)

	assert.Equal(t, verdict.ModeMenu, got.Mode)
	require.Len(t, got.MenuItems, 1)
}

func TestParseNormalizesCapitalizedMode(t *testing.T) {
	in := mustJSON(t, map[string]any{
		"mode":    "Menu",
		"verdict": "safe",
		"menu_items": []map[string]any{
			{"name": "Rice Bowl", "verdict": "safe"},
		},
	})

	got := Parse(in, ScanFlavor)

	assert.Equal(t, verdict.ModeMenu, got.Mode)
}

func TestParseMenuModeWithoutItemsGetsEmptySlice(t *testing.T) {
	got := Parse(mustJSON(t, map[string]any{"mode": "menu", "verdict": "caution"}), ScanFlavor)

	assert.Equal(t, verdict.ModeMenu, got.Mode)
	require.NotNil(t, got.MenuItems)
	assert.Len(t, got.MenuItems, 0)

	// The empty array must survive serialization; clients index into
	// menu_items unconditionally in menu mode.
	assert.Contains(t, mustJSON(t, got), `"menu_items":[]`)
}

func TestParsePreservesDetectedLanguage(t *testing.T) {
	in := mustJSON(t, map[string]any{
		"mode":                "label",
		"detected_language":   "es",
		"verdict":             "unsafe",
		"flagged_ingredients": []string{"harina de trigo (wheat flour)", "cebada (barley)"},
		"explanation":         "Contains wheat flour and barley.",
		"confidence":          "high",
	})

	got := Parse(in, ScanFlavor)

	assert.Equal(t, "es", got.DetectedLanguage)
	assert.Contains(t, got.FlaggedIngredients, "harina de trigo (wheat flour)")
	assert.Contains(t, got.FlaggedIngredients, "cebada (barley)")
}

func TestParseOmitsDetectedLanguageWhenAbsent(t *testing.T) {
	got := Parse(mustJSON(t, map[string]any{"verdict": "safe"}), ScanFlavor)

	data := mustJSON(t, got)
	assert.NotContains(t, data, "detected_language")
}

func TestParseGreedySpanIsAcceptedBehavior(t *testing.T) {
	// Prose after the JSON containing a brace extends the greedy span and
	// breaks the parse; the contract is to degrade, not to error.
	in := `{"verdict": "safe"} and then some {weird} trailer`
	assertFallback(t, Parse(in, ScanFlavor))
}
