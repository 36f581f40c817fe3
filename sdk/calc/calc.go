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

// Package calc 實作派彩計算管線。
//
// 計算順序固定：
//  1. 完全匹配：整條轉軸串接為 key 查賠付表，依 base 派彩與押注比例分級。
//  2. 部分匹配：僅在完全匹配落空時執行，取所有符合符號中最佳的一筆。
//  3. Bonus/Scatter 疊加：與上兩步獨立，兩者互不影響、可同時成立。
//  4. 倍數終結：payout *= multiplier，為整條管線的最後一步。
//
// Jackpot 分級以「base 派彩」判定，1.5 倍數在分級之後才套用。
package calc

import (
	"strings"

	"github.com/zintix-labs/spinlab/errs"
	"github.com/zintix-labs/spinlab/sdk/buf"
	"github.com/zintix-labs/spinlab/spec"
)

// 分級門檻：base 派彩 / 押注。
const (
	JackpotRatio = 100.0
	BigRatio     = 50.0
	MediumRatio  = 10.0
)

// JackpotMultiplier 是 jackpot 級距觸發後套用的派彩倍數。
const JackpotMultiplier = 1.5

// Bonus / Scatter 免費旋轉規則。
const (
	bonusTriggerCount   = 3
	bonusBaseFreeSpins  = 10
	bonusExtraFreeSpins = 5
	scatterMinCount     = 2
	scatterFreeSpinsPer = 2
)

// Evaluator 針對單一變體預先建好查表結構，供熱路徑免配置計算。
// 非併發安全：與 ReelGenerator 同樣由 Machine 的鎖保護。
type Evaluator struct {
	Setting *spec.VariantSetting

	// partialKeys[i][k] = 符號 i 重複 k 次的賠付表 key，建構時展開
	partialKeys [][]string
	// counts 為符號計數緩衝，依 SymbolIndex 編號
	counts []int
	// keyBuf 為完全匹配 key 的串接緩衝
	keyBuf []byte
}

// NewEvaluator 依變體設定建立計算器。設定未初始化時先行 Init。
func NewEvaluator(vs *spec.VariantSetting) (*Evaluator, error) {
	if err := vs.Init(); err != nil {
		return nil, err
	}

	partial := make([][]string, len(vs.Symbols))
	for i, sym := range vs.Symbols {
		partial[i] = make([]string, vs.ReelCount)
		for k := scatterMinCount; k < vs.ReelCount; k++ {
			partial[i][k] = strings.Repeat(string(sym), k)
		}
	}

	return &Evaluator{
		Setting:     vs,
		partialKeys: partial,
		counts:      make([]int, len(vs.Symbols)),
		keyBuf:      make([]byte, 0, 64),
	}, nil
}

// Evaluate 對單次轉軸結果計算派彩，並將結果寫入 res 的派彩欄位。
//
// bet <= 0 回傳 Warn，結果欄位不寫入。
// outcome 長度必須等於變體轉軸數、成員必須屬於符號集，違反視為上游契約破壞。
func (e *Evaluator) Evaluate(outcome []spec.Symbol, bet float64, res *buf.SpinResult) error {
	if bet <= 0 {
		return errs.Warnf("bet must be positive, got %v", bet)
	}
	if len(outcome) != e.Setting.ReelCount {
		return errs.Fatalf("outcome length %d != reel count %d", len(outcome), e.Setting.ReelCount)
	}

	// 符號計數，同時檢查成員資格
	for i := range e.counts {
		e.counts[i] = 0
	}
	for _, sym := range outcome {
		idx, ok := e.Setting.SymbolIndex[sym]
		if !ok {
			return errs.Fatalf("outcome symbol %q not in variant %s symbol set", sym, e.Setting.VariantName)
		}
		e.counts[idx]++
	}

	res.Bet = bet
	res.Payout = 0
	res.Tier = spec.TierNone
	res.Multiplier = 1.0
	res.BonusTriggered = false
	res.FreeSpins = 0

	// 1) 完全匹配
	matched := e.exactMatch(outcome, bet, res)

	// 2) 部分匹配（僅在完全匹配落空時）
	if !matched {
		e.partialMatch(bet, res)
	}

	// 3) Bonus / Scatter 疊加
	e.bonusOverlay(res)

	// 4) 倍數終結
	e.finalScale(res)

	res.IsWin = res.Payout > 0
	return nil
}

// exactMatch 查整條轉軸串接 key。命中時設定 base 派彩與級距，
// jackpot 級距同時設定 1.5 倍數（倍數到 finalScale 才套用）。
func (e *Evaluator) exactMatch(outcome []spec.Symbol, bet float64, res *buf.SpinResult) bool {
	e.keyBuf = e.keyBuf[:0]
	for _, sym := range outcome {
		e.keyBuf = append(e.keyBuf, sym...)
	}
	mult, ok := e.Setting.Pay(string(e.keyBuf))
	if !ok {
		return false
	}

	base := bet * mult
	res.Payout = base
	res.Tier = tierForRatio(base / bet)
	if res.Tier == spec.TierJackpot {
		res.Multiplier = JackpotMultiplier
	}
	return true
}

// partialMatch 對每個出現 >= 2 次的符號組出重複 key 查表，
// 取派彩最高的一筆。級距：恰兩枚 small，超過兩枚 medium。
func (e *Evaluator) partialMatch(bet float64, res *buf.SpinResult) {
	best := 0.0
	bestCount := 0
	for i, n := range e.counts {
		if n < scatterMinCount || n >= e.Setting.ReelCount {
			continue
		}
		key := e.partialKeys[i][n]
		mult, ok := e.Setting.Pay(key)
		if !ok {
			continue
		}
		payout := bet * mult
		if payout > best {
			best = payout
			bestCount = n
		}
	}
	if best <= 0 {
		return
	}

	res.Payout = best
	if bestCount == scatterMinCount {
		res.Tier = spec.TierSmall
	} else {
		res.Tier = spec.TierMedium
	}
}

// bonusOverlay 套用 bonus 與 scatter 規則。兩者獨立計算、免費旋轉相加：
//   - bonus >= 3：觸發，免費旋轉 +10+(n-3)*5，當前派彩加倍。
//   - scatter >= 2：免費旋轉 +n*2。
func (e *Evaluator) bonusOverlay(res *buf.SpinResult) {
	vs := e.Setting
	if vs.HasBonus() {
		idx := vs.SymbolIndex[spec.Symbol(vs.BonusSymbol)]
		if n := e.counts[idx]; n >= bonusTriggerCount {
			res.BonusTriggered = true
			res.FreeSpins += bonusBaseFreeSpins + (n-bonusTriggerCount)*bonusExtraFreeSpins
			res.Payout *= 2
		}
	}
	if vs.HasScatter() {
		idx := vs.SymbolIndex[spec.Symbol(vs.ScatterSymbol)]
		if n := e.counts[idx]; n >= scatterMinCount {
			res.FreeSpins += n * scatterFreeSpinsPer
		}
	}
}

// finalScale 為管線最後一步：payout *= multiplier。
func (e *Evaluator) finalScale(res *buf.SpinResult) {
	res.Payout *= res.Multiplier
}

// tierForRatio 依 base 派彩與押注比例分級。
func tierForRatio(ratio float64) spec.WinTier {
	switch {
	case ratio >= JackpotRatio:
		return spec.TierJackpot
	case ratio >= BigRatio:
		return spec.TierBig
	case ratio >= MediumRatio:
		return spec.TierMedium
	case ratio > 0:
		return spec.TierSmall
	default:
		return spec.TierNone
	}
}
