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

package sampler

import (
	"crypto/rand"
	"math"
	"math/big"
	"testing"

	"github.com/zintix-labs/spinlab/sdk/core"
)

// -----------------------------------------------------------------------------
// Helper Functions
// -----------------------------------------------------------------------------

// assertPanic 驗證函數是否如預期觸發 panic
func assertPanic(t *testing.T, f func(), msg string) {
	t.Helper()
	defer func() {
		if r := recover(); r == nil {
			t.Errorf("expected panic for %s, but got none", msg)
		}
	}()
	f()
}

// checkDistribution 驗證抽樣結果的分佈是否符合預期權重
func checkDistribution(t *testing.T, name string, weights []int, samples []int, tolerance float64) {
	t.Helper()
	totalW := 0
	for _, w := range weights {
		totalW += w
	}
	if totalW == 0 {
		return
	}

	counts := make(map[int]int)
	for _, idx := range samples {
		counts[idx]++
	}

	totalSamples := len(samples)
	for i, w := range weights {
		if w == 0 {
			if counts[i] > 0 {
				t.Errorf("[%s] expected 0 samples for index %d (weight 0), got %d", name, i, counts[i])
			}
			continue
		}
		expectedProb := float64(w) / float64(totalW)
		actualProb := float64(counts[i]) / float64(totalSamples)
		diff := math.Abs(expectedProb - actualProb)

		if diff > tolerance {
			t.Errorf("[%s] index %d: expected prob %.3f, got %.3f (diff %.3f > tol %.3f)",
				name, i, expectedProb, actualProb, diff, tolerance)
		}
	}
}

func cryptoCore(t *testing.T) *core.Core {
	t.Helper()
	seed, _ := rand.Int(rand.Reader, big.NewInt(math.MaxInt64))
	return core.New(core.Default().New(seed.Int64()))
}

// -----------------------------------------------------------------------------
// Tests for Look-Up Table (LUT)
// -----------------------------------------------------------------------------

// TestLUT_Distribution 驗證 LUT 的抽樣分佈
// 檢查項目: 大量抽樣結果應符合權重比例
func TestLUT_Distribution(t *testing.T) {
	c := cryptoCore(t)
	weights := []int{1, 2, 7} // 適合 LUT 的小權重
	lut := BuildLUT(weights)

	trials := 10000
	samples := make([]int, trials)
	for i := 0; i < trials; i++ {
		samples[i] = lut.Pick(c)
	}
	checkDistribution(t, "LUT", weights, samples, 0.015)
}

// TestLUT_SkipsZeroWeight 驗證零權重項目不會被展開
func TestLUT_SkipsZeroWeight(t *testing.T) {
	lut := BuildLUT([]int{3, 0, 2})
	if len(lut) != 5 {
		t.Fatalf("expected expanded length 5, got %d", len(lut))
	}
	for _, idx := range lut {
		if idx == 1 {
			t.Fatal("zero-weight index appeared in table")
		}
	}
}

// TestLUT_EmptyAndPanics 驗證 LUT 的各種錯誤情境
// 檢查項目: 空輸入回空表、超限/負權重/全零權重應觸發 panic
func TestLUT_EmptyAndPanics(t *testing.T) {
	empty := BuildLUT([]int{})
	if got := empty.Pick(cryptoCore(t)); got != -1 {
		t.Fatalf("empty LUT pick should return -1, got %d", got)
	}

	// Capacity Limit
	assertPanic(t, func() {
		weights := []int{int(maxLUTCap) + 1}
		BuildLUT(weights)
	}, "Exceed MaxLUTCapacity")

	// Negative
	assertPanic(t, func() {
		BuildLUT([]int{10, -10})
	}, "Negative weight")

	// All zero
	assertPanic(t, func() {
		BuildLUT([]int{0, 0})
	}, "All zero weights")
}

// -----------------------------------------------------------------------------
// Tests for AliasTable
// -----------------------------------------------------------------------------

// TestAliasTable_Distribution 驗證 Alias Table 的抽樣分佈
// 檢查項目: 大量抽樣結果應符合權重比例
func TestAliasTable_Distribution(t *testing.T) {
	c := cryptoCore(t)
	weights := []int{10, 20, 70}
	at := BuildAliasTable(weights)

	trials := 100000
	samples := make([]int, trials)
	for i := 0; i < trials; i++ {
		samples[i] = at.Pick(c)
	}
	checkDistribution(t, "AliasTable", weights, samples, 0.01)
}

// TestAliasTable_EmptyAndPanics 驗證 Alias Table 的各種錯誤情境
// 檢查項目: 空輸入回空表、全零權重、負權重、總權重溢位應觸發 panic
func TestAliasTable_EmptyAndPanics(t *testing.T) {
	empty := BuildAliasTable([]int{})
	if got := empty.Pick(cryptoCore(t)); got != -1 {
		t.Fatalf("empty alias table pick should return -1, got %d", got)
	}

	// All zero
	assertPanic(t, func() {
		BuildAliasTable([]int{0, 0, 0})
	}, "All zero weights")

	// Negative
	assertPanic(t, func() {
		BuildAliasTable([]int{10, -1})
	}, "Negative weight")

	// Total overflow check
	assertPanic(t, func() {
		BuildAliasTable([]int{math.MaxInt, 1})
	}, "Total overflow")
}

// -----------------------------------------------------------------------------
// Tests for ForWeights
// -----------------------------------------------------------------------------

// TestForWeightsSelection 驗證權重總和決定底層結構
// 檢查項目: 小總和回傳 LUT，大總和回傳 AliasTable
func TestForWeightsSelection(t *testing.T) {
	small := ForWeights([]int{30, 25, 20, 15, 10})
	if _, ok := small.(LUT); !ok {
		t.Fatalf("small total should select LUT, got %T", small)
	}

	large := ForWeights([]int{lutPreferredTotal, 1})
	if _, ok := large.(*AliasTable); !ok {
		t.Fatalf("large total should select AliasTable, got %T", large)
	}
}

// TestForWeightsEquivalentDistribution 驗證兩種底層結構抽樣分佈一致
func TestForWeightsEquivalentDistribution(t *testing.T) {
	weights := []int{5, 15, 30, 50}
	p := ForWeights(weights)
	c := cryptoCore(t)

	trials := 100000
	samples := make([]int, trials)
	for i := 0; i < trials; i++ {
		samples[i] = p.Pick(c)
	}
	checkDistribution(t, "ForWeights", weights, samples, 0.01)
}
