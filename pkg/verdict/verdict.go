// Package verdict defines the canonical analysis result shape shared by the
// server, the response parser, and API clients. Everything downstream of the
// parser sees exactly these types; raw model vocabulary never crosses this
// boundary.
package verdict

import (
	"encoding/json"
	"strings"
)

// Verdict is the system's core output judgment.
type Verdict string

const (
	Safe    Verdict = "safe"
	Caution Verdict = "caution"
	Unsafe  Verdict = "unsafe"
)

// Mode says whether an analysis pertains to a packaged-good ingredient label
// or a restaurant menu. The empty value means "unknown" and only exists
// before normalization; parsed results always carry label or menu.
type Mode string

const (
	ModeLabel   Mode = "label"
	ModeMenu    Mode = "menu"
	ModeUnknown Mode = ""
)

// Confidence grades how much the model trusted its own read.
type Confidence string

const (
	High   Confidence = "high"
	Medium Confidence = "medium"
	Low    Confidence = "low"
)

// AnalysisResult is the canonical, UI-ready verdict structure.
//
// Invariants: Verdict is always one of the three canonical values, Mode is
// always label or menu, and the two slices are never nil. MenuItems is
// present (and non-nil) only when Mode is menu.
type AnalysisResult struct {
	Mode               Mode       `json:"mode"`
	DetectedLanguage   string     `json:"detected_language,omitempty"`
	Verdict            Verdict    `json:"verdict"`
	FlaggedIngredients []string   `json:"flagged_ingredients"`
	AllergenWarnings   []string   `json:"allergen_warnings"`
	Explanation        string     `json:"explanation"`
	Confidence         Confidence `json:"confidence"`
	MenuItems          []MenuItem `json:"menu_items,omitempty"`

	// Attached by the barcode-lookup path only.
	ProductName string `json:"product_name,omitempty"`
	Barcode     string `json:"barcode,omitempty"`
	DataSource  string `json:"data_source,omitempty"`
}

// MarshalJSON emits menu_items as an explicit empty array in menu mode even
// when every item was filtered out; clients index into it unconditionally.
// Label-mode results omit the key entirely.
func (r AnalysisResult) MarshalJSON() ([]byte, error) {
	type alias AnalysisResult
	out := struct {
		alias
		MenuItems *[]MenuItem `json:"menu_items,omitempty"`
	}{alias: alias(r)}

	if r.Mode == ModeMenu {
		items := r.MenuItems
		if items == nil {
			items = []MenuItem{}
		}
		out.MenuItems = &items
	}
	return json.Marshal(out)
}

// MenuItem is one dish from a menu analysis. Items without a name are
// dropped during parsing.
type MenuItem struct {
	Name    string  `json:"name"`
	Verdict Verdict `json:"verdict"`
	Notes   string  `json:"notes"`
}

// NormalizeVerdict collapses a raw verdict string into one of the three
// canonical values. Models sometimes return off-vocabulary verdicts like
// "warning" or "ask server"; everything unrecognized becomes Caution, the
// conservative default. Recognized unsafe synonyms map to Unsafe.
func NormalizeVerdict(raw string) Verdict {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "safe":
		return Safe
	case "unsafe", "not safe", "danger", "dangerous":
		return Unsafe
	default:
		return Caution
	}
}

// NormalizeMode maps a raw mode string to label or menu. Anything else
// yields ModeUnknown, signaling "let the caller infer".
func NormalizeMode(raw string) Mode {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "menu":
		return ModeMenu
	case "label":
		return ModeLabel
	default:
		return ModeUnknown
	}
}
