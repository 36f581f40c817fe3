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

// Package sampler 提供一系列高效能的加權抽樣演算法與工具。
//
// 本檔案 (lut.go) 實作查找表 (Look-Up Table) 加權抽樣。
//
// 原理：以空間換時間。將權重展開為長陣列，每個索引出現次數等於其權重，
// 抽樣只需一次 IntN，O(1)。
//
// 特性：
//   - 建表 O(sum(weights))，抽樣 O(1)，記憶體與權重總和成正比。
//   - 權重總和小（轉軸權重通常是兩位數）時是最快的選擇；
//     總和很大時應改用 AliasTable。
package sampler

import (
	"fmt"
	"math"

	"github.com/zintix-labs/spinlab/sdk/core"
)

const maxLUTCap uint64 = 10_000_000 // 約 80MB (int slice)

// LUT 是展開式查找表。
//
// 例：權重 [3,5,0] 展開為 [0,0,0,1,1,1,1,1]，
// 直接從 slice 隨機取一個值即完成加權抽樣。
type LUT []int

// BuildLUT 根據權重列表建立查找表。
//
// src 為任意非負整數權重列表，遇到負權重、全零權重或總和超過
// maxLUTCap 會 panic。權重是啟動期驗證過的設定值，violation 即程式錯誤。
func BuildLUT[T Integers](src []T) LUT {
	if len(src) == 0 {
		return []int{}
	}

	acc := uint64(0)
	// 累加權重總和，用於預估 LUT 長度並避免 overflow
	for _, v := range src {
		if v < 0 {
			panic("lut: negative value encountered")
		}
		uv := uint64(v)
		if acc > math.MaxUint64-uv {
			panic("lut: total weight overflow uint64 range")
		}
		acc += uv
	}

	if acc == 0 {
		panic("lut: all weights are zero")
	}

	if acc > maxLUTCap {
		panic(fmt.Sprintf("lut: total weight %d exceeds limit %d, use alias table instead", acc, maxLUTCap))
	}

	lut := make([]int, 0, int(acc))
	for i, v := range src {
		// 將索引 i 重複寫入 v 次
		for j := T(0); j < v; j++ {
			lut = append(lut, i)
		}
	}
	return lut
}

// Pick 會透過 Core 的 RNG 從 LUT 中隨機位置取一個值
// 若 lut 為空，回傳 -1
func (l LUT) Pick(c *core.Core) int {
	return c.Pick(l)
}
