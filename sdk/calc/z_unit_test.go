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

package calc

import (
	"math"
	"testing"

	"github.com/zintix-labs/spinlab/errs"
	"github.com/zintix-labs/spinlab/sdk/buf"
	"github.com/zintix-labs/spinlab/spec"
)

// buildVariant returns a five-reel setting covering every pipeline branch:
// exact keys across all tiers, partial keys, bonus and scatter symbols.
func buildVariant() *spec.VariantSetting {
	return &spec.VariantSetting{
		VariantName:   "pipeline",
		VariantID:     spec.VID(1),
		SymbolsStr:    []string{"cherry", "bar", "seven", "bonus", "scatter"},
		Weights:       []int{40, 30, 10, 12, 8},
		ReelCount:     5,
		BonusSymbol:   "bonus",
		ScatterSymbol: "scatter",
		PayTable: map[string]float64{
			"sevensevensevensevenseven":      150, // jackpot tier
			"barbarbarbarbar":                60,  // big tier
			"cherrycherrycherrycherrycherry": 20,  // medium tier
			"cherrycherrybarbarbar":          3,   // small tier mixed key
			"sevenseven":                     5,   // partial 2-of
			"sevensevenseven":                12,
			"sevensevensevenseven":           50,
			"barbar":                         2,
			"barbarbar":                      4,
		},
	}
}

func evaluate(t *testing.T, vs *spec.VariantSetting, outcome []spec.Symbol, bet float64) *buf.SpinResult {
	t.Helper()
	ev, err := NewEvaluator(vs)
	if err != nil {
		t.Fatalf("evaluator build failed: %v", err)
	}
	res := buf.NewSpinResult(vs)
	if err := ev.Evaluate(outcome, bet, res); err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
	return res
}

func syms(names ...string) []spec.Symbol {
	out := make([]spec.Symbol, len(names))
	for i, n := range names {
		out[i] = spec.Symbol(n)
	}
	return out
}

func TestEvaluateRejectsBadBet(t *testing.T) {
	vs := buildVariant()
	ev, err := NewEvaluator(vs)
	if err != nil {
		t.Fatalf("evaluator build failed: %v", err)
	}
	res := buf.NewSpinResult(vs)

	for _, bet := range []float64{0, -1, -0.01} {
		err := ev.Evaluate(syms("cherry", "cherry", "cherry", "cherry", "cherry"), bet, res)
		if err == nil {
			t.Fatalf("bet %v should be rejected", bet)
		}
		e, ok := errs.AsErr(err)
		if !ok || e.ErrLv != errs.Warn {
			t.Fatalf("bet %v: expected warn level, got %v", bet, err)
		}
	}
}

func TestEvaluateRejectsContractViolations(t *testing.T) {
	vs := buildVariant()
	ev, err := NewEvaluator(vs)
	if err != nil {
		t.Fatalf("evaluator build failed: %v", err)
	}
	res := buf.NewSpinResult(vs)

	// wrong outcome length
	err = ev.Evaluate(syms("cherry", "bar"), 1, res)
	if e, ok := errs.AsErr(err); !ok || e.ErrLv != errs.Fatal {
		t.Fatalf("short outcome: expected fatal, got %v", err)
	}

	// alien symbol
	err = ev.Evaluate(syms("cherry", "bar", "ghost", "bar", "cherry"), 1, res)
	if e, ok := errs.AsErr(err); !ok || e.ErrLv != errs.Fatal {
		t.Fatalf("alien symbol: expected fatal, got %v", err)
	}
}

func TestExactMatchTiers(t *testing.T) {
	vs := buildVariant()
	cases := []struct {
		name    string
		outcome []string
		bet     float64
		payout  float64
		tier    spec.WinTier
		mult    float64
	}{
		// jackpot: base 150x, 1.5x applied after tiering -> 225x
		{"jackpot", []string{"seven", "seven", "seven", "seven", "seven"}, 2, 2 * 150 * 1.5, spec.TierJackpot, 1.5},
		{"big", []string{"bar", "bar", "bar", "bar", "bar"}, 1, 60, spec.TierBig, 1.0},
		{"medium", []string{"cherry", "cherry", "cherry", "cherry", "cherry"}, 1, 20, spec.TierMedium, 1.0},
		{"small mixed", []string{"cherry", "cherry", "bar", "bar", "bar"}, 1, 3, spec.TierSmall, 1.0},
	}
	for _, tc := range cases {
		res := evaluate(t, vs, syms(tc.outcome...), tc.bet)
		if math.Abs(res.Payout-tc.payout) > 1e-12 {
			t.Fatalf("[%s] payout got %v want %v", tc.name, res.Payout, tc.payout)
		}
		if res.Tier != tc.tier {
			t.Fatalf("[%s] tier got %v want %v", tc.name, res.Tier, tc.tier)
		}
		if res.Multiplier != tc.mult {
			t.Fatalf("[%s] multiplier got %v want %v", tc.name, res.Multiplier, tc.mult)
		}
		if !res.IsWin {
			t.Fatalf("[%s] expected win", tc.name)
		}
	}
}

// TestJackpotTierOnBasePayout pins the ordering contract: the tier is decided
// by the base payout/bet ratio, then the 1.5x multiplier scales the payout.
// A 150x base at bet 1 must stay jackpot with payout 225, not be re-tiered.
func TestJackpotTierOnBasePayout(t *testing.T) {
	vs := buildVariant()
	res := evaluate(t, vs, syms("seven", "seven", "seven", "seven", "seven"), 1)
	if res.Tier != spec.TierJackpot {
		t.Fatalf("tier got %v want jackpot", res.Tier)
	}
	if math.Abs(res.Payout-225) > 1e-12 {
		t.Fatalf("payout got %v want 225", res.Payout)
	}
}

// TestPartialMatchBestOf verifies partial fallback picks the highest paying
// candidate when several symbols repeat, and tiers by repeat count.
func TestPartialMatchBestOf(t *testing.T) {
	vs := buildVariant()

	// two sevens (5x) beat two bars (2x); count==2 -> small tier
	res := evaluate(t, vs, syms("seven", "bar", "seven", "bar", "cherry"), 1)
	if res.Payout != 5 || res.Tier != spec.TierSmall {
		t.Fatalf("2-of partial: got payout %v tier %v", res.Payout, res.Tier)
	}

	// three sevens (12x); count>2 -> medium tier
	res = evaluate(t, vs, syms("seven", "seven", "seven", "bar", "cherry"), 1)
	if res.Payout != 12 || res.Tier != spec.TierMedium {
		t.Fatalf("3-of partial: got payout %v tier %v", res.Payout, res.Tier)
	}

	// four sevens (50x) still medium: tier from count, not ratio
	res = evaluate(t, vs, syms("seven", "seven", "seven", "seven", "cherry"), 1)
	if res.Payout != 50 || res.Tier != spec.TierMedium {
		t.Fatalf("4-of partial: got payout %v tier %v", res.Payout, res.Tier)
	}

	// repeats exist but no partial key in table -> no win
	res = evaluate(t, vs, syms("cherry", "cherry", "bar", "seven", "bonus"), 1)
	if res.IsWin || res.Payout != 0 || res.Tier != spec.TierNone {
		t.Fatalf("unpaid repeats: got payout %v tier %v", res.Payout, res.Tier)
	}
}

// TestExactSuppressesPartial: partial fallback must not run when the exact
// key hit, even if a partial candidate would pay more.
func TestExactSuppressesPartial(t *testing.T) {
	vs := buildVariant()
	// exact "cherrycherrybarbarbar" pays 3x although barbarbar partial pays 4x
	res := evaluate(t, vs, syms("cherry", "cherry", "bar", "bar", "bar"), 1)
	if res.Payout != 3 {
		t.Fatalf("exact hit must suppress partial: got payout %v", res.Payout)
	}
}

func TestBonusAndScatterOverlay(t *testing.T) {
	vs := buildVariant()

	// 3 bonus: +10 free spins, payout doubled (partial sevenseven 5x -> 10x)
	res := evaluate(t, vs, syms("seven", "seven", "bonus", "bonus", "bonus"), 1)
	if !res.BonusTriggered || res.FreeSpins != 10 {
		t.Fatalf("bonus x3: triggered=%v freespins=%d", res.BonusTriggered, res.FreeSpins)
	}
	if res.Payout != 10 {
		t.Fatalf("bonus x3: payout got %v want 10", res.Payout)
	}

	// 4 bonus: 10+(4-3)*5 = 15 free spins
	res = evaluate(t, vs, syms("seven", "bonus", "bonus", "bonus", "bonus"), 1)
	if res.FreeSpins != 15 {
		t.Fatalf("bonus x4: freespins got %d want 15", res.FreeSpins)
	}

	// 2 scatter: +4 free spins, no payout change, no trigger
	res = evaluate(t, vs, syms("seven", "seven", "cherry", "scatter", "scatter"), 1)
	if res.BonusTriggered || res.FreeSpins != 4 {
		t.Fatalf("scatter x2: triggered=%v freespins=%d", res.BonusTriggered, res.FreeSpins)
	}
	if res.Payout != 5 {
		t.Fatalf("scatter must not scale payout: got %v", res.Payout)
	}

	// single scatter below threshold awards nothing
	res = evaluate(t, vs, syms("seven", "seven", "cherry", "bar", "scatter"), 1)
	if res.FreeSpins != 0 {
		t.Fatalf("scatter x1: freespins got %d want 0", res.FreeSpins)
	}

	// bonus and scatter stack additively: 3 bonus + 2 scatter = 10 + 4
	res = evaluate(t, vs, syms("bonus", "bonus", "bonus", "scatter", "scatter"), 1)
	if !res.BonusTriggered || res.FreeSpins != 14 {
		t.Fatalf("bonus+scatter: triggered=%v freespins=%d want 14", res.BonusTriggered, res.FreeSpins)
	}
	// no line win: doubled zero stays zero, free spins alone are not a win
	if res.Payout != 0 || res.IsWin {
		t.Fatalf("free spins alone must not flag a win: payout=%v win=%v", res.Payout, res.IsWin)
	}
}

// TestEvaluatorReusesBuffers ensures repeated Evaluate calls on the same
// result buffer leave no residue between spins.
func TestEvaluatorReusesBuffers(t *testing.T) {
	vs := buildVariant()
	ev, err := NewEvaluator(vs)
	if err != nil {
		t.Fatalf("evaluator build failed: %v", err)
	}
	res := buf.NewSpinResult(vs)

	if err := ev.Evaluate(syms("bonus", "bonus", "bonus", "scatter", "scatter"), 1, res); err != nil {
		t.Fatalf("first evaluate failed: %v", err)
	}
	if err := ev.Evaluate(syms("cherry", "bar", "seven", "bonus", "scatter"), 1, res); err != nil {
		t.Fatalf("second evaluate failed: %v", err)
	}
	if res.BonusTriggered || res.FreeSpins != 0 || res.Payout != 0 {
		t.Fatalf("residue from previous spin: %+v", res)
	}
}

// TestEvaluateDeterministic: same outcome and bet always produce the same result.
func TestEvaluateDeterministic(t *testing.T) {
	vs := buildVariant()
	outcome := syms("seven", "seven", "seven", "bar", "cherry")
	first := evaluate(t, vs, outcome, 2.5)
	for i := 0; i < 10; i++ {
		again := evaluate(t, vs, outcome, 2.5)
		if again.Payout != first.Payout || again.Tier != first.Tier || again.FreeSpins != first.FreeSpins {
			t.Fatalf("evaluation not deterministic: %+v vs %+v", first, again)
		}
	}
}
