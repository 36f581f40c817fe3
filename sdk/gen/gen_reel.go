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

package gen

import (
	"github.com/zintix-labs/spinlab/sdk/core"
	"github.com/zintix-labs/spinlab/sdk/sampler"
	"github.com/zintix-labs/spinlab/spec"
)

// ReelGenerator 保存生成轉軸結果所需的所有狀態。
// 會快取轉軸數、符號表與抽樣結構，並重用輸出緩衝，避免熱路徑重複配置。
//
// 每次抽取皆為獨立同分布的加權抽樣（放回式）：轉軸之間互不影響，
// 同一符號可在多個位置重複出現。index 0 為最左側轉軸。
type ReelGenerator struct {
	core    *core.Core
	Setting *spec.VariantSetting
	// Setting 內容建立
	Reels   int
	Symbols []spec.Symbol
	picker  sampler.Picker
	// 輸出緩衝(避免重複new)
	Outcome []spec.Symbol
}

// NewReelGenerator 根據變體設定與核心亂數器建立生成器，並立即完成初始化，
// 讓之後的生成流程可以免配置快速執行。
func NewReelGenerator(core *core.Core, vs *spec.VariantSetting) (*ReelGenerator, error) {
	// 防止錯誤
	if err := vs.Init(); err != nil {
		return nil, err
	}

	rg := &ReelGenerator{
		core:    core,
		Setting: vs,
		Reels:   vs.ReelCount,
		Symbols: vs.Symbols,
		picker:  sampler.ForWeights(vs.Weights),
		Outcome: make([]spec.Symbol, vs.ReelCount),
	}
	return rg, nil
}

// Draw 生成轉軸結果熱路徑函數。
// 回傳的切片為內部緩衝，呼叫端若需保存必須複製。
func (rg *ReelGenerator) Draw() []spec.Symbol {
	s := rg.Outcome
	_ = s[rg.Reels-1] // BCE hint

	for reel := 0; reel < rg.Reels; reel++ {
		id := rg.picker.Pick(rg.core)
		s[reel] = rg.Symbols[id]
	}
	return rg.Outcome
}

// DrawInto 將轉軸結果寫入外部緩衝並回傳，供需要自管記憶體的呼叫端使用。
// dst 容量不足時會重新配置。
func (rg *ReelGenerator) DrawInto(dst []spec.Symbol) []spec.Symbol {
	if cap(dst) < rg.Reels {
		dst = make([]spec.Symbol, rg.Reels)
	}
	dst = dst[:rg.Reels]
	for reel := 0; reel < rg.Reels; reel++ {
		id := rg.picker.Pick(rg.core)
		dst[reel] = rg.Symbols[id]
	}
	return dst
}
