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
	"math"
	"slices"
	"testing"

	"github.com/zintix-labs/spinlab/sdk/core"
	"github.com/zintix-labs/spinlab/spec"
)

func buildSetting() *spec.VariantSetting {
	return &spec.VariantSetting{
		VariantName: "gentest",
		VariantID:   spec.VID(1),
		SymbolsStr:  []string{"cherry", "bar", "seven"},
		Weights:     []int{60, 30, 10},
		ReelCount:   3,
		PayTable:    map[string]float64{"sevensevenseven": 100},
	}
}

func newGen(t *testing.T, seed int64) *ReelGenerator {
	t.Helper()
	c := core.New(core.Default().New(seed))
	rg, err := NewReelGenerator(c, buildSetting())
	if err != nil {
		t.Fatalf("generator build failed: %v", err)
	}
	return rg
}

// TestDrawShape 驗證輸出長度與符號成員資格
func TestDrawShape(t *testing.T) {
	rg := newGen(t, 1)
	for i := 0; i < 1000; i++ {
		outcome := rg.Draw()
		if len(outcome) != 3 {
			t.Fatalf("expected 3 reels, got %d", len(outcome))
		}
		for reel, sym := range outcome {
			if !rg.Setting.Member(sym) {
				t.Fatalf("reel %d produced alien symbol %q", reel, sym)
			}
		}
	}
}

// TestDrawDeterministic 驗證相同 seed 的生成器輸出完全一致
func TestDrawDeterministic(t *testing.T) {
	a := newGen(t, 99)
	b := newGen(t, 99)
	for i := 0; i < 500; i++ {
		if !slices.Equal(a.Draw(), b.Draw()) {
			t.Fatalf("sequences diverged at spin %d", i)
		}
	}
}

// TestDrawDistribution 驗證單軸符號分佈符合權重（iid 放回式抽樣）
func TestDrawDistribution(t *testing.T) {
	rg := newGen(t, 7)
	trials := 100000
	counts := map[spec.Symbol]int{}
	for i := 0; i < trials; i++ {
		for _, sym := range rg.Draw() {
			counts[sym]++
		}
	}

	total := float64(trials * 3)
	want := map[spec.Symbol]float64{"cherry": 0.6, "bar": 0.3, "seven": 0.1}
	for sym, p := range want {
		got := float64(counts[sym]) / total
		if math.Abs(got-p) > 0.01 {
			t.Fatalf("symbol %q: expected prob %.2f, got %.4f", sym, p, got)
		}
	}
}

// TestDrawInto 驗證外部緩衝路徑：容量足夠時重用、不足時重新配置
func TestDrawInto(t *testing.T) {
	rg := newGen(t, 3)

	buf := make([]spec.Symbol, 0, 8)
	out := rg.DrawInto(buf)
	if len(out) != 3 {
		t.Fatalf("expected 3 reels, got %d", len(out))
	}
	if &out[0] != &buf[:1][0] {
		t.Fatal("sufficient capacity buffer was not reused")
	}

	out2 := rg.DrawInto(nil)
	if len(out2) != 3 {
		t.Fatalf("nil dst: expected 3 reels, got %d", len(out2))
	}
}

// TestDrawBufferReuse 驗證 Draw 重用內部緩衝：呼叫端必須自行複製
func TestDrawBufferReuse(t *testing.T) {
	rg := newGen(t, 5)
	first := rg.Draw()
	second := rg.Draw()
	if &first[0] != &second[0] {
		t.Fatal("Draw should reuse the internal outcome buffer")
	}
}
