package verdict

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeVerdict(t *testing.T) {
	cases := []struct {
		in   string
		want Verdict
	}{
		{"safe", Safe},
		{"Safe", Safe},
		{"  SAFE  ", Safe},
		{"unsafe", Unsafe},
		{"not safe", Unsafe},
		{"danger", Unsafe},
		{"Dangerous", Unsafe},
		{"NOT SAFE", Unsafe},
		{"caution", Caution},
		{"warning", Caution},
		{"ask server", Caution},
		{"check", Caution},
		{"unknown", Caution},
		{"", Caution},
		{"42", Caution},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, NormalizeVerdict(c.in), "input %q", c.in)
	}
}

func TestMarshalMenuItemsPresence(t *testing.T) {
	menu := AnalysisResult{Mode: ModeMenu, Verdict: Caution, Confidence: Medium}
	b, err := json.Marshal(menu)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"menu_items":[]`, "menu mode always carries the array")

	menu.MenuItems = []MenuItem{{Name: "Salad", Verdict: Safe}}
	b, err = json.Marshal(menu)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"name":"Salad"`)

	label := AnalysisResult{Mode: ModeLabel, Verdict: Safe, Confidence: High}
	b, err = json.Marshal(label)
	require.NoError(t, err)
	assert.NotContains(t, string(b), "menu_items")
}

func TestNormalizeMode(t *testing.T) {
	assert.Equal(t, ModeMenu, NormalizeMode("Menu"))
	assert.Equal(t, ModeMenu, NormalizeMode("menu"))
	assert.Equal(t, ModeLabel, NormalizeMode("LABEL"))
	assert.Equal(t, ModeLabel, NormalizeMode(" label "))
	assert.Equal(t, ModeUnknown, NormalizeMode("unknown"))
	assert.Equal(t, ModeUnknown, NormalizeMode(""))
	assert.Equal(t, ModeUnknown, NormalizeMode("123"))
}
