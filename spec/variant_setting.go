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
	"strings"

	"github.com/zintix-labs/spinlab/errs"
)

// VariantSetting 描述一種機台變體：符號集、抽取權重、轉軸數與賠付表。
//
// 賠付表以「符號名稱依轉軸順序串接」為 key：
//   - 完整 key：恰好 reelCount 個符號串接，對應完全匹配賠付。
//   - 部分 key：同一符號重複 k 次（2 <= k < reelCount），對應部分匹配賠付。
//
// BonusSymbol / ScatterSymbol 為選填；宣告時必須屬於符號集。
type VariantSetting struct {
	VariantName   string             `yaml:"variant_name"   json:"variant_name"`
	VariantID     VID                `yaml:"variant_id"     json:"variant_id"`
	SymbolsStr    []string           `yaml:"symbols"        json:"symbols"`
	Weights       []int              `yaml:"weights"        json:"weights"`
	ReelCount     int                `yaml:"reel_count"     json:"reel_count"`
	PayTable      map[string]float64 `yaml:"pay_table"      json:"pay_table"`
	BonusSymbol   string             `yaml:"bonus_symbol"   json:"bonus_symbol"`
	ScatterSymbol string             `yaml:"scatter_symbol" json:"scatter_symbol"`

	Symbols     []Symbol       `yaml:"-" json:"-"`
	SymbolIndex map[Symbol]int `yaml:"-" json:"-"`
	WeightTotal int            `yaml:"-" json:"-"`
	initFlag    bool
}

// Init 檢查設定並賦值衍生欄位。所有違規一律回傳 Fatal，引擎拒絕啟動。
func (vs *VariantSetting) Init() error {
	// 檢查初始化旗標
	if vs.initFlag {
		return nil
	}

	if strings.TrimSpace(vs.VariantName) == "" {
		return errs.NewFatal("variant_name required")
	}

	// 解析符號集
	if len(vs.SymbolsStr) == 0 {
		return errs.Fatalf("variant %s: empty symbols", vs.VariantName)
	}
	vs.Symbols = make([]Symbol, len(vs.SymbolsStr))
	vs.SymbolIndex = make(map[Symbol]int, len(vs.SymbolsStr))
	for i, str := range vs.SymbolsStr {
		if strings.TrimSpace(str) == "" {
			return errs.Fatalf("variant %s: symbols[%d] is blank", vs.VariantName, i)
		}
		sym := Symbol(str)
		if _, ok := vs.SymbolIndex[sym]; ok {
			return errs.Fatalf("variant %s: duplicate symbol %q", vs.VariantName, str)
		}
		vs.Symbols[i] = sym
		vs.SymbolIndex[sym] = i
	}

	// 權重向量與符號集必須等長且全為正數
	if len(vs.Weights) != len(vs.Symbols) {
		return errs.Fatalf("variant %s: len(weights)=%d != len(symbols)=%d",
			vs.VariantName, len(vs.Weights), len(vs.Symbols))
	}
	vs.WeightTotal = 0
	for i, w := range vs.Weights {
		if w <= 0 {
			return errs.Fatalf("variant %s: weights[%d]=%d must be positive", vs.VariantName, i, w)
		}
		vs.WeightTotal += w
	}

	if vs.ReelCount <= 0 {
		return errs.Fatalf("variant %s: reel_count=%d must be positive", vs.VariantName, vs.ReelCount)
	}

	// 賠付表 key 必須能切分為符號集成員：
	// 恰為 reelCount 段（完整 key），或同一符號重複 2..reelCount 次（部分 key）。
	for key, mult := range vs.PayTable {
		if mult < 0 {
			return errs.Fatalf("variant %s: pay_table[%q]=%v must be non-negative", vs.VariantName, key, mult)
		}
		if err := vs.validKey(key); err != nil {
			return err
		}
	}

	// Bonus / Scatter 宣告時必須是符號集成員
	if vs.BonusSymbol != "" {
		if _, ok := vs.SymbolIndex[Symbol(vs.BonusSymbol)]; !ok {
			return errs.Fatalf("variant %s: bonus_symbol %q not in symbol set", vs.VariantName, vs.BonusSymbol)
		}
	}
	if vs.ScatterSymbol != "" {
		if _, ok := vs.SymbolIndex[Symbol(vs.ScatterSymbol)]; !ok {
			return errs.Fatalf("variant %s: scatter_symbol %q not in symbol set", vs.VariantName, vs.ScatterSymbol)
		}
	}

	// set 初始化旗標
	vs.initFlag = true
	return nil
}

// validKey 以 DP 檢查 key 是否能由符號集串接組成。
// 符號名稱可能互為前綴，因此必須列舉所有可行的切分段數。
func (vs *VariantSetting) validKey(key string) error {
	if key == "" {
		return errs.Fatalf("variant %s: empty pay_table key", vs.VariantName)
	}

	// reach[i] = 從 key[0:i] 切分出的可行段數集合
	reach := make([]map[int]struct{}, len(key)+1)
	reach[0] = map[int]struct{}{0: {}}
	for i := 0; i <= len(key); i++ {
		if reach[i] == nil {
			continue
		}
		for _, sym := range vs.Symbols {
			s := string(sym)
			if !strings.HasPrefix(key[i:], s) {
				continue
			}
			j := i + len(s)
			if reach[j] == nil {
				reach[j] = map[int]struct{}{}
			}
			for n := range reach[i] {
				reach[j][n+1] = struct{}{}
			}
		}
	}
	counts := reach[len(key)]
	if len(counts) == 0 {
		return errs.Fatalf("variant %s: pay_table key %q is not a symbol sequence", vs.VariantName, key)
	}

	// 完整 key
	if _, ok := counts[vs.ReelCount]; ok {
		return nil
	}
	// 部分 key：同一符號重複 2..reelCount-1 次
	for _, sym := range vs.Symbols {
		for k := 2; k < vs.ReelCount; k++ {
			if key == strings.Repeat(string(sym), k) {
				return nil
			}
		}
	}
	return errs.Fatalf("variant %s: pay_table key %q does not segment into %d reels or a uniform partial run",
		vs.VariantName, key, vs.ReelCount)
}

// Pay 查詢賠付表（完整或部分 key 均適用）。
func (vs *VariantSetting) Pay(key string) (float64, bool) {
	m, ok := vs.PayTable[key]
	return m, ok
}

// Member 回傳符號是否屬於符號集。
func (vs *VariantSetting) Member(s Symbol) bool {
	_, ok := vs.SymbolIndex[s]
	return ok
}

// HasBonus 回傳變體是否宣告 bonus 符號。
func (vs *VariantSetting) HasBonus() bool { return vs.BonusSymbol != "" }

// HasScatter 回傳變體是否宣告 scatter 符號。
func (vs *VariantSetting) HasScatter() bool { return vs.ScatterSymbol != "" }
