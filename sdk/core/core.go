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

package core

// PRNG 定義 Core 所需的亂數來源，需同時支援取樣與狀態保存/還原。
type PRNG interface {
	RAND
	Restorable
}

// Restorable 定義可快照與還原的狀態介面。
type Restorable interface {
	// Snapshot 回傳可用於還原的序列化狀態。
	Snapshot() ([]byte, error)
	// Restore 依序列化狀態還原 PRNG 內部狀態。
	Restore([]byte) error
}

// RAND 定義核心亂數取樣能力。
//
// 四個方法（Uint64 / Float64 / UintN / IntN）都交由 PRNG 自己實作，
// 讓 32-bit 與 64-bit 原生輸出的 PRNG 各自選擇最合適的 bounded 與浮點路徑，
// 不被迫統一走 uint64 轉換。
type RAND interface {
	// Uint64 回傳非負 uint64 亂數。
	Uint64() uint64
	// Float64 回傳 [0,1) 的浮點亂數。
	Float64() float64
	// UintN 回傳 [0,max) 的 uint 亂數，若 max == 0 回傳 0。
	UintN(uint) uint
	// IntN 回傳 [0,max) 的 int 亂數，若 max <= 0 回傳 -1。
	IntN(int) int
}

type PRNGFactory interface {
	// New 以指定 seed 建立新的 PRNG。
	//
	// 合約：在同一個實作與同一個版本下，New(seed) 必須是決定性的，
	// 相同的 seed 必須產生相同的初始內部狀態與輸出序列。
	// seed 的生命週期由 spinlab 統一管理：外部未提供時由 Lab 產生並保存
	// baseSeed，後續所有 Machine/Sim 皆由 baseSeed 以固定算法派生子 seed。
	New(int64) PRNG
}

// DefaultPRNG 實作預設的 PRNGFactory，底層為 PCG64。
type DefaultPRNG struct{}

// New 滿足合約
func (d *DefaultPRNG) New(seed int64) PRNG {
	return NewPCG64WithSeed(seed)
}

func Default() *DefaultPRNG {
	return &DefaultPRNG{}
}

// Core 封裝 PRNG，並提供常用取樣與工具方法。
type Core struct {
	PRNG
}

// New 允許使用外部自實現的 PRNG 建立 Core。
func New(rng PRNG) *Core {
	return &Core{rng}
}

// Pick 從列表中隨機選取一個元素，若列表為空回傳 -1
// 熱路徑中只使用哨兵值回傳
func (c *Core) Pick(src []int) int {
	if len(src) == 0 {
		return -1
	}
	idx := c.IntN(len(src))
	return src[idx]
}

// ShuffleInts 使用 Fisher-Yates 演算法對 []int 進行就地隨機重排。
// O(N) 時間、零配置，且 N! 種排列出現機率嚴格相等。
func (c *Core) ShuffleInts(src []int) {
	if len(src) <= 1 {
		return
	}

	for i := len(src) - 1; i > 0; i-- {
		j := c.IntN(i + 1)
		src[i], src[j] = src[j], src[i]
	}
}
