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

package dto

import (
	"github.com/zintix-labs/spinlab/corefmt"
	"github.com/zintix-labs/spinlab/errs"
	"github.com/zintix-labs/spinlab/sdk/buf"
	"github.com/zintix-labs/spinlab/spec"
)

type SpinResult struct {
	Variant        string    `json:"variant"`         // 變體名稱
	VID            spec.VID  `json:"vid"`             // 變體編號
	Bet            float64   `json:"bet"`             // 本次押注
	Outcome        []string  `json:"outcome"`         // 轉軸結果，index 0 為最左側
	Payout         float64   `json:"payout"`          // 最終派彩
	IsWin          bool      `json:"is_win"`          // 是否贏分
	Tier           string    `json:"tier"`            // 贏分級距
	Multiplier     float64   `json:"multiplier"`      // 套用倍數
	BonusTriggered bool      `json:"bonus_triggered"` // 是否觸發 bonus
	FreeSpins      int       `json:"free_spins"`      // 授予免費旋轉數
	State          SpinState `json:"spin_state"`      // PRNG 快照
}

type SpinState struct {
	StartCoreSnapB64U string `json:"start_b64u"` // 必回
	AfterCoreSnapB64U string `json:"after_b64u"` // 必回
}

// NewSpinResultDTO 將內部可重用緩衝轉為對外序列化結構。
// 回傳值不共享緩衝記憶體，可安全跨越 Machine 鎖邊界。
func NewSpinResultDTO(sr *buf.SpinResult) (SpinResult, error) {
	if sr == nil {
		return SpinResult{}, errs.NewWarn("spin result is nil")
	}

	outcome := make([]string, len(sr.Outcome))
	for i, sym := range sr.Outcome {
		outcome[i] = string(sym)
	}

	return SpinResult{
		Variant:        sr.VariantName,
		VID:            sr.VariantID,
		Bet:            sr.Bet,
		Outcome:        outcome,
		Payout:         sr.Payout,
		IsWin:          sr.IsWin,
		Tier:           sr.Tier.String(),
		Multiplier:     sr.Multiplier,
		BonusTriggered: sr.BonusTriggered,
		FreeSpins:      sr.FreeSpins,
		State: SpinState{
			StartCoreSnapB64U: corefmt.EncodeBase64URL(sr.State.StartCoreSnap),
			AfterCoreSnapB64U: corefmt.EncodeBase64URL(sr.State.AfterCoreSnap),
		},
	}, nil
}
