// Copyright 2025 Zintix Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package spec

import (
	"testing"

	"github.com/zintix-labs/spinlab/errs"
)

// buildSetting returns a minimal valid three-reel setting for mutation in tests.
func buildSetting() *VariantSetting {
	return &VariantSetting{
		VariantName: "testslot",
		VariantID:   VID(7),
		SymbolsStr:  []string{"cherry", "bar", "seven"},
		Weights:     []int{5, 3, 2},
		ReelCount:   3,
		PayTable: map[string]float64{
			"sevensevenseven": 120,
			"barbarbar":       30,
			"cherrybarseven":  4,
			"sevenseven":      5,
		},
	}
}

func assertFatal(t *testing.T, err error, msg string) {
	t.Helper()
	if err == nil {
		t.Fatalf("%s: expected error, got nil", msg)
	}
	e, ok := errs.AsErr(err)
	if !ok || e.ErrLv != errs.Fatal {
		t.Fatalf("%s: expected fatal level, got %v", msg, err)
	}
}

func TestVariantSettingInitDerives(t *testing.T) {
	vs := buildSetting()
	if err := vs.Init(); err != nil {
		t.Fatalf("unexpected init error: %v", err)
	}

	if len(vs.Symbols) != 3 {
		t.Fatalf("expected 3 symbols, got %d", len(vs.Symbols))
	}
	if vs.WeightTotal != 10 {
		t.Fatalf("expected weight total 10, got %d", vs.WeightTotal)
	}
	if idx, ok := vs.SymbolIndex[Symbol("bar")]; !ok || idx != 1 {
		t.Fatalf("expected bar at index 1, got %d ok=%v", idx, ok)
	}
	if !vs.Member(Symbol("seven")) || vs.Member(Symbol("lemon")) {
		t.Fatal("membership check mismatch")
	}
	if vs.HasBonus() || vs.HasScatter() {
		t.Fatal("expected no bonus/scatter on plain setting")
	}

	// Init must be idempotent
	if err := vs.Init(); err != nil {
		t.Fatalf("second init should be a no-op, got %v", err)
	}
}

func TestVariantSettingInitRejects(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(vs *VariantSetting)
	}{
		{"blank name", func(vs *VariantSetting) { vs.VariantName = "  " }},
		{"empty symbols", func(vs *VariantSetting) { vs.SymbolsStr = nil }},
		{"blank symbol", func(vs *VariantSetting) { vs.SymbolsStr[1] = " " }},
		{"duplicate symbol", func(vs *VariantSetting) { vs.SymbolsStr[2] = "cherry" }},
		{"weights length", func(vs *VariantSetting) { vs.Weights = []int{1, 2} }},
		{"zero weight", func(vs *VariantSetting) { vs.Weights[0] = 0 }},
		{"negative weight", func(vs *VariantSetting) { vs.Weights[2] = -1 }},
		{"zero reels", func(vs *VariantSetting) { vs.ReelCount = 0 }},
		{"negative payout", func(vs *VariantSetting) { vs.PayTable["barbarbar"] = -3 }},
		{"alien paytable key", func(vs *VariantSetting) { vs.PayTable["lemonlemonlemon"] = 5 }},
		{"short paytable key", func(vs *VariantSetting) { vs.PayTable["cherrybar"] = 2 }},
		{"bonus not member", func(vs *VariantSetting) { vs.BonusSymbol = "ghost" }},
		{"scatter not member", func(vs *VariantSetting) { vs.ScatterSymbol = "ghost" }},
	}
	for _, tc := range cases {
		vs := buildSetting()
		tc.mutate(vs)
		assertFatal(t, vs.Init(), tc.name)
	}
}

// TestPayTableKeyPrefixSymbols exercises segmentation when one symbol name is a
// prefix of another. "barbarbar" can be read as bar|bar|bar or barbar|bar,
// the validator must accept it for reel_count 3 and also as a 2-of partial key.
func TestPayTableKeyPrefixSymbols(t *testing.T) {
	vs := &VariantSetting{
		VariantName: "prefix",
		VariantID:   VID(9),
		SymbolsStr:  []string{"bar", "barbar", "seven"},
		Weights:     []int{4, 3, 3},
		ReelCount:   3,
		PayTable: map[string]float64{
			"barbarbar":          20, // bar x3 full key
			"barbarbarbarbarbar": 90, // barbar x3 full key
			"barbar":             2,  // bar x2 partial (also symbol "barbar" alone, still valid)
			"sevensevenseven":    50,
		},
	}
	if err := vs.Init(); err != nil {
		t.Fatalf("prefix symbols should validate, got %v", err)
	}

	vs2 := &VariantSetting{
		VariantName: "prefix-bad",
		VariantID:   VID(10),
		SymbolsStr:  []string{"bar", "barbar"},
		Weights:     []int{1, 1},
		ReelCount:   3,
		PayTable:    map[string]float64{"barbarba": 1},
	}
	assertFatal(t, vs2.Init(), "non-segmentable key")
}

func TestGetVariantSettingByYAML(t *testing.T) {
	raw := []byte(`
variant_name: yamltest
variant_id: 42
reel_count: 3
symbols: [a, b]
weights: [6, 4]
pay_table:
  aaa: 100
  bbb: 10
  aa: 2
`)
	vs, err := GetVariantSettingByYAML(raw)
	if err != nil {
		t.Fatalf("yaml parse failed: %v", err)
	}
	if vs.VariantName != "yamltest" || vs.VariantID != VID(42) {
		t.Fatalf("identity mismatch: %s %d", vs.VariantName, vs.VariantID)
	}
	if vs.WeightTotal != 10 {
		t.Fatalf("expected weight total 10, got %d", vs.WeightTotal)
	}

	if _, err := GetVariantSettingByYAML([]byte("variant_name: [broken")); err == nil {
		t.Fatal("expected error for malformed yaml")
	}
	// Parses fine, fails Init
	if _, err := GetVariantSettingByYAML([]byte("variant_name: x")); err == nil {
		t.Fatal("expected init error for incomplete yaml")
	}
}

func TestGetVariantSettingByJSON(t *testing.T) {
	raw := []byte(`{
		"variant_name": "jsontest",
		"variant_id": 43,
		"reel_count": 3,
		"symbols": ["a", "b"],
		"weights": [1, 9],
		"pay_table": {"bbb": 40}
	}`)
	vs, err := GetVariantSettingByJSON(raw)
	if err != nil {
		t.Fatalf("json parse failed: %v", err)
	}
	if mult, ok := vs.Pay("bbb"); !ok || mult != 40 {
		t.Fatalf("pay lookup mismatch: %v %v", mult, ok)
	}

	if _, err := GetVariantSettingByJSON([]byte("{")); err == nil {
		t.Fatal("expected error for malformed json")
	}
}

func TestWinTierString(t *testing.T) {
	cases := map[WinTier]string{
		TierNone:    "none",
		TierSmall:   "small",
		TierMedium:  "medium",
		TierBig:     "big",
		TierJackpot: "jackpot",
		WinTier(99): "none",
	}
	for tier, want := range cases {
		if got := tier.String(); got != want {
			t.Fatalf("tier %d: got %q want %q", tier, got, want)
		}
	}
}
