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

package spinlab

import (
	"crypto/rand"
	"math"
	"math/big"
	"sync"

	"github.com/zintix-labs/spinlab/dto"
	"github.com/zintix-labs/spinlab/errs"
	"github.com/zintix-labs/spinlab/sdk/buf"
	"github.com/zintix-labs/spinlab/sdk/calc"
	"github.com/zintix-labs/spinlab/sdk/core"
	"github.com/zintix-labs/spinlab/sdk/gen"
	"github.com/zintix-labs/spinlab/spec"
)

// Machine 封裝一台「可對外提供 Spin」的機台。
//
// 對外：提供 Spin 入口（HTTP/模擬器通常只操作 Machine）。
// 對內：持有 RNG（Core）、轉軸生成器（gen.ReelGenerator）與派彩計算器（calc.Evaluator）。
//
// 並發語意：
//   - Machine 內含可重用的 result buffer（熱路徑），同一台 Machine 不應被多
//     goroutine 同時 Spin；Spin 以 mutex 保護。
//   - 若要併發模擬/服務，由更高層（MachinePool / Simulator）建立多台 Machine
//     分散到不同 worker 並管理其生命週期。
//
// Buffer 語意：
//   - SpinResult 會被重用（避免 GC），每次 Spin 會覆寫內容。
//   - 若需要在 Spin 後保留結果，請在離開臨界區前轉成 DTO 或呼叫 Clone()。
type Machine struct {
	variantName string               // 變體名稱（主要用於觀測/日誌）
	vid         spec.VID             // 變體 ID（Catalog 內唯一；用於路由與查表）
	core        *core.Core           // RNG 核心（PRNG + Snapshot/Restore 合約）
	setting     *spec.VariantSetting // 變體設定（初始化完成）
	gen         *gen.ReelGenerator   // 轉軸生成器
	eval        *calc.Evaluator      // 派彩計算器
	SpinResult  *buf.SpinResult      // 可重用的結果 buffer（熱路徑；每次 Spin 會覆寫）
	mu          sync.Mutex           // 防併發鎖：保護可重用 buffers 與核心狀態一致性
	initseed    int64                // 出生 seed（便於追溯；完整重現請用 Snapshot/Restore）
	isSim       bool                 // 模擬模式：Spin 跳過每局 PRNG 快照
}

// newMachine 以「隨機 seed」建立 Machine。
//
// 使用 crypto/rand 產生 seed 是為了在對外服務情境避免可預測 RNG，
// 同時保留可追溯性（seed 會被記錄在 Machine.initseed）。
func newMachine(vs *spec.VariantSetting, cf core.PRNGFactory, isSim bool) (*Machine, error) {
	seed, err := rand.Int(rand.Reader, big.NewInt(math.MaxInt64))
	if err != nil {
		return nil, errs.Wrap(err, "new crypto seed error in go std lib")
	}
	return newMachineWithSeed(vs, cf, seed.Int64(), isSim)
}

// newMachineWithSeed 以指定 seed 建立 Machine。
//
// 這是最常用的「可重現」入口：同一份 VariantSetting + 同一個 seed，
// 應能得到一致的隨機序列（取決於 Core 實作）。
func newMachineWithSeed(vs *spec.VariantSetting, cf core.PRNGFactory, seed int64, isSim bool) (*Machine, error) {
	if err := vs.Init(); err != nil {
		return nil, err
	}

	c := core.New(cf.New(seed))
	g, err := gen.NewReelGenerator(c, vs)
	if err != nil {
		return nil, err
	}
	e, err := calc.NewEvaluator(vs)
	if err != nil {
		return nil, err
	}

	return &Machine{
		variantName: vs.VariantName,
		vid:         vs.VariantID,
		core:        c,
		setting:     vs,
		gen:         g,
		eval:        e,
		SpinResult:  buf.NewSpinResult(vs),
		initseed:    seed,
		isSim:       isSim,
	}, nil
}

// Spin 為主要公開入口，會驗證投注請求，抽轉軸、算派彩並回傳 DTO。
//
// 流程：
//  1. 校驗請求（變體身分、押注交由計算器判定）。
//  2. 取 spin 前 PRNG 快照。
//  3. 生成轉軸結果並執行派彩管線。
//  4. 取 spin 後快照，連同結果轉為 DTO 回傳。
func (m *Machine) Spin(r *buf.SpinRequest) (dto.SpinResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// 1. 校驗請求合法性
	if err := m.valid(r); err != nil {
		return dto.SpinResult{}, err
	}

	// 2. spin 前快照（sim 模式跳過，省去序列化成本）
	var startsnap []byte
	if !m.isSim {
		var err error
		startsnap, err = m.SnapshotCore()
		if err != nil {
			return dto.SpinResult{}, errs.Wrap(err, "before snapshot error")
		}
	}

	// 3. 抽轉軸 + 派彩
	sr := m.SpinResult
	sr.Reset()
	outcome := m.gen.Draw()
	sr.Outcome = append(sr.Outcome, outcome...)
	if err := m.eval.Evaluate(outcome, r.Bet, sr); err != nil {
		return dto.SpinResult{}, err
	}

	// 4. spin 後快照
	if !m.isSim {
		aftersnap, err := m.SnapshotCore()
		if err != nil {
			return dto.SpinResult{}, errs.Wrap(err, "after snapshot error")
		}
		sr.State.StartCoreSnap = startsnap
		sr.State.AfterCoreSnap = aftersnap
	}

	return dto.NewSpinResultDTO(sr)
}

// SpinInternal 直接取得內部 SpinResult；常用於模擬器或測試。
//
// 請勿在正式環境使用：跳過請求校驗與 PRNG 快照，回傳內部可重用 buffer。
// bet 必須為正值，違反視為呼叫端程式錯誤。
func (m *Machine) SpinInternal(bet float64) *buf.SpinResult {
	sr := m.SpinResult
	sr.Reset()
	outcome := m.gen.Draw()
	sr.Outcome = append(sr.Outcome, outcome...)
	if err := m.eval.Evaluate(outcome, bet, sr); err != nil {
		panic(err)
	}
	return sr
}

func (m *Machine) valid(req *buf.SpinRequest) error {
	if req == nil {
		return errs.NewWarn("nil spin request")
	}
	if m.vid != req.VID {
		return errs.NewWarn("variant id is not matched")
	}
	if req.Variant != "" && m.variantName != req.Variant {
		return errs.NewWarn("variant name is not matched")
	}
	return nil
}

// Setting 回傳機台使用的變體設定（唯讀）。
func (m *Machine) Setting() *spec.VariantSetting {
	return m.setting
}

// VID 回傳機台的變體 ID。
func (m *Machine) VID() spec.VID { return m.vid }

// Name 回傳機台的變體名稱。
func (m *Machine) Name() string { return m.variantName }

// InitSeed 回傳出生 seed，用於追溯。
func (m *Machine) InitSeed() int64 { return m.initseed }

// SnapshotCore 取得 Core 狀態暫存。
func (m *Machine) SnapshotCore() ([]byte, error) {
	return m.core.Snapshot()
}

// RestoreCore 恢復 Core 狀態暫存。
func (m *Machine) RestoreCore(src []byte) error {
	return m.core.Restore(src)
}
