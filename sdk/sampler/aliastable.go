// Package sampler 提供一系列高效能的加權抽樣演算法與工具。
//
// 本檔案 (aliastable.go) 實作 Vose's Alias Method 加權抽樣（整數優化版）。
//
// 原理：將任意離散分佈轉換為均勻分佈的組合。每個槽位只存放「自己」
// 與「別名」兩個選項，抽樣先選槽位，再決定取自己或別名。
//
// 特性：
//   - 建表 O(N)，抽樣 O(1)（固定兩次 IntN），空間 O(N) 與權重總和無關。
//   - 全整數運算（integer scaling），避免浮點精度誤差與累積。
//   - 權重總和很大或差異懸殊時優先選用；小總和場景 LUT 更快。
package sampler

import (
	"math"
	"math/bits"

	"github.com/zintix-labs/spinlab/sdk/core"
)

// AliasTable 是 Vose Alias Method 的整數版 O(1) 加權抽樣結構。
//
// 欄位說明：
//   - Prob: 每個槽位調整後的整數機率（scaled by n）。
//   - Aliases: 機率不足槽位的補足來源索引。
//   - Size: 槽位（元素）數量。
//   - Total: 權重總和，用於 scaling 與抽樣判斷。
type AliasTable struct {
	Prob    []int
	Aliases []int
	Size    int
	Total   int
}

// BuildAliasTable 根據輸入的權重(weights)建立 AliasTable。
//
// weights 為任意非負整數權重陣列，不需事先正規化；
// 個別權重可為零，但全部為零會 panic，負權重與溢位也會 panic。
//
// 流程：
//  1. 將每個權重 w 乘以元素數量 n 做整數 scaling，得到 prob。
//  2. 依 prob[i] 與 total 比較，分類索引到 small 或 large 兩桶。
//  3. 從兩桶各取 s, l，將 l 指派為 s 的 alias 並調整 l 的 prob。
//  4. 重複直到其中一桶為空。
func BuildAliasTable(weights []int) *AliasTable {
	if len(weights) == 0 {
		return &AliasTable{
			Prob:    []int{},
			Aliases: []int{},
			Size:    0,
			Total:   0,
		}
	}

	n := len(weights)
	total := uint64(0)
	for _, w := range weights {
		if w < 0 {
			panic("AliasTable: negative weight encountered")
		}
		if total > uint64(math.MaxInt)-uint64(w) {
			panic("AliasTable: total weight overflow int range")
		}
		total += uint64(w)
	}

	if total == 0 {
		panic("AliasTable: all weights are zero")
	}

	if !isSafeMultiply(int(total), n) {
		panic("AliasTable: weights are too large, causing overflow")
	}

	prob := make([]int, n)
	aliases := make([]int, n)

	small := make([]int, 0)
	large := make([]int, 0)

	for i, w := range weights {
		prob[i] = w * n           // 整數 scaling: 權重乘以元素數量 n，方便整數比較
		if prob[i] < int(total) { // 以 total 做 partition
			small = append(small, i)
		} else {
			large = append(large, i)
		}
	}

	for len(small) > 0 && len(large) > 0 {
		s := small[len(small)-1]
		small = small[:len(small)-1]
		l := large[len(large)-1]
		large = large[:len(large)-1]

		aliases[s] = l                           // 把 s 的剩餘機率補到 l
		prob[l] = prob[l] + prob[s] - int(total) // 維持 sum(prob) = total * n 的不變性

		if prob[l] < int(total) {
			small = append(small, l)
		} else {
			large = append(large, l)
		}
	}

	return &AliasTable{
		Prob:    prob,
		Aliases: aliases,
		Size:    n,
		Total:   int(total),
	}
}

// isSafeMultiply 使用 bits.Mul64 檢查乘積是否超過 math.MaxInt64。
// 建表階段先擋掉 w*n 溢位，避免後續整數計算錯誤。
func isSafeMultiply(a, b int) bool {
	a1 := uint64(a)
	b1 := uint64(b)
	hi, lo := bits.Mul64(a1, b1)
	return hi == 0 && (lo <= math.MaxInt64)
}

// Pick 從 AliasTable 中抽取一個索引，若表為空則回傳 -1。
//
// 先以 IntN(Size) 選槽位，再以 IntN(Total) < Prob[idx] 決定取自己或別名。
// 後者即浮點版 U < p[idx] 的整數放大比較，完全不經過 float64。
func (at *AliasTable) Pick(c *core.Core) int {
	if at.Size == 0 {
		return -1
	}
	idx := c.IntN(at.Size)
	if c.IntN(at.Total) < at.Prob[idx] {
		return idx
	}
	return at.Aliases[idx]
}
