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

package recorder

import (
	"fmt"

	"github.com/zintix-labs/spinlab/errs"
	"github.com/zintix-labs/spinlab/sdk/buf"
	"github.com/zintix-labs/spinlab/spec"
	"github.com/zintix-labs/spinlab/stats"
)

// SpinRecorder 遊戲紀錄員
//
// SpinRecorder 負責紀錄單一變體、固定押注額的 spin 結果，
// 並透過Done輸出統計報表
type SpinRecorder struct {
	VariantName string
	VID         spec.VID
	Bet         float64 // 固定押注額（每局相同）
	InitBets    int     // 玩家帶入的本金（以押注數計）
	Basic       *BasicRecord
	Dist        *DistRecord
	Player      *PlayerRecord
}

// BasicRecord 基本遊戲資料紀錄
//
// 贏倍（派彩/押注）以 float64 累積總和與平方和，標準差在 Done 時計算。
type BasicRecord struct {
	TotalBet     float64
	TotalWin     float64
	WinMultSum   float64
	WinMultSqSum float64 // 平方和
	Trigger      int     // bonus 觸發局數
	FreeSpins    int     // 授予的免費旋轉總數
	Rounds       int
}

// DistRecord 贏倍區間落點統計與贏分級距統計
type DistRecord struct {
	WinCollect  []int
	TierCollect []int // index 對齊 spec.WinTier
}

// PlayerRecord 玩家統計
type PlayerRecord struct {
	leaveLine   float64
	InitBalance float64
	Balance     float64
	MaxBalance  float64
	MinBalance  float64
	Bust        bool
	Cashout     bool
	Alive       bool
}

func NewSpinRecorder(name string, id spec.VID, bet float64, initBets int) (*SpinRecorder, error) {
	s := new(SpinRecorder)

	if bet <= 0 {
		return s, errs.NewFatal(fmt.Sprintf("bet err %v", bet))
	}

	if initBets < 0 {
		return s, errs.NewFatal(fmt.Sprintf("init bets must not negative integer, got: %d", initBets))
	}
	// 通過valid
	s.VariantName = name
	s.VID = id
	s.Bet = bet
	s.InitBets = initBets
	s.Basic = new(BasicRecord)
	s.Dist = newDistRecord()
	s.Player = newPlayerRecord(bet, initBets)

	return s, nil
}

func MergeSpinRecorder(r []*SpinRecorder) (*SpinRecorder, error) {
	r0 := r[0]
	s, err := NewSpinRecorder(r0.VariantName, r0.VID, r0.Bet, r0.InitBets)
	if err != nil {
		return s, err
	}
	for _, v := range r {
		if v.VariantName != r0.VariantName {
			return s, errs.NewFatal("merge spin record err : different variant name")
		}
		if v.VID != r0.VID {
			return s, errs.NewFatal("merge spin record err : different variant id")
		}
		if v.Bet != r0.Bet {
			return s, errs.NewFatal("merge spin record err : different bet")
		}
		if v.InitBets != r0.InitBets {
			return s, errs.NewFatal("merge spin record err : different init bets")
		}
		s.Basic.TotalBet += v.Basic.TotalBet
		s.Basic.TotalWin += v.Basic.TotalWin
		s.Basic.WinMultSum += v.Basic.WinMultSum
		s.Basic.WinMultSqSum += v.Basic.WinMultSqSum
		s.Basic.Trigger += v.Basic.Trigger
		s.Basic.FreeSpins += v.Basic.FreeSpins
		s.Basic.Rounds += v.Basic.Rounds

		// 整合Dist
		for i := range len(v.Dist.WinCollect) {
			s.Dist.WinCollect[i] += v.Dist.WinCollect[i]
		}
		for i := range len(v.Dist.TierCollect) {
			s.Dist.TierCollect[i] += v.Dist.TierCollect[i]
		}
	}
	return s, nil
}

// Record 以單次 SpinResult 更新基本統計（不含玩家）
func (s *SpinRecorder) Record(sr *buf.SpinResult) {
	s.recordBasic(sr) // Basic
	s.recordDist(sr)  // Dist
}

// RecordWithPlayer 在 Record 的基礎上，進一步更新玩家餘額／離場狀態，並回傳玩家是否停止遊戲。
func (s *SpinRecorder) RecordWithPlayer(sr *buf.SpinResult) bool {
	if s.Player.Balance < s.Bet {
		return true
	}
	s.recordBasic(sr)
	s.recordDist(sr)
	r := s.recordPlayer(sr)
	return r
}

func (s *SpinRecorder) Done() *stats.StatReport {
	report := &stats.StatReport{
		Summary: &stats.SummaryReport{
			VariantName: s.VariantName,
			VID:         s.VID,
			Bet:         s.Bet,
			TotalBet:    s.Basic.TotalBet,
			TotalWin:    s.Basic.TotalWin,
			RTP:         s.rtp(),
			Trigger:     s.Basic.Trigger,
			TriggerRate: float64(s.Basic.Trigger) / float64(s.Basic.Rounds),
			FreeSpins:   s.Basic.FreeSpins,
			NoWinRounds: s.Dist.WinCollect[0],
			HitRate:     1.0 - (float64(s.Dist.WinCollect[0]) / float64(s.Basic.Rounds)),
			Rounds:      s.Basic.Rounds,
		},
		Mult: &stats.MultReport{
			WinMult:      s.Basic.WinMultSum,
			WinMultSqSum: s.Basic.WinMultSqSum,
		},
		Dist: &stats.DistReport{
			WinBucket:   stats.Buckets.WinBucketStr(),
			WinCollect:  s.Dist.WinCollect,
			WinDist:     nil,
			TierLabel:   stats.TierLabels(),
			TierCollect: s.Dist.TierCollect,
			TierDist:    nil,
		},
		Player: &stats.PlayerReport{
			InitBalance: s.Player.InitBalance,
			Balance:     s.Player.Balance,
			MaxBalance:  s.Player.MaxBalance,
			MinBalance:  s.Player.MinBalance,
			Bust:        s.Player.Bust,
			Cashout:     s.Player.Cashout,
			Alive:       s.Player.Alive,
		},
	}

	rf := float64(report.Summary.Rounds)

	winF := make([]float64, len(report.Dist.WinBucket))
	for i := range winF {
		winF[i] = float64(report.Dist.WinCollect[i]) / rf
	}
	tierF := make([]float64, len(report.Dist.TierLabel))
	for i := range tierF {
		tierF[i] = float64(report.Dist.TierCollect[i]) / rf
	}

	report.Dist.WinDist = winF
	report.Dist.TierDist = tierF

	return report
}

func (s *SpinRecorder) rtp() float64 {
	if s.Basic.Rounds == 0 || s.Basic.TotalBet == 0 {
		return 0
	}
	return (s.Basic.TotalWin / s.Basic.TotalBet)
}

func (s *SpinRecorder) recordBasic(res *buf.SpinResult) {
	w := res.Payout
	m := w / s.Bet

	// Basic
	s.Basic.TotalBet += res.Bet
	s.Basic.TotalWin += w
	s.Basic.WinMultSum += m
	s.Basic.WinMultSqSum += m * m

	if res.BonusTriggered {
		s.Basic.Trigger++
	}
	s.Basic.FreeSpins += res.FreeSpins
	s.Basic.Rounds++
}

func (s *SpinRecorder) recordDist(res *buf.SpinResult) {
	d := s.Dist
	m := res.Payout / s.Bet

	d.WinCollect[stats.Buckets.Index(m)]++
	if t := int(res.Tier); t >= 0 && t < len(d.TierCollect) {
		d.TierCollect[t]++
	}
}

func (s *SpinRecorder) recordPlayer(sr *buf.SpinResult) bool {
	p := s.Player
	w := sr.Payout
	b := s.Bet

	// 更新資金
	p.Balance -= b
	p.Balance += w

	// 更新歷史最高資產
	if p.Balance > p.MaxBalance {
		p.MaxBalance = p.Balance
	}
	// 更新歷史最低資產
	if p.Balance < p.MinBalance {
		p.MinBalance = p.Balance
	}

	// 更新結局
	leave := false
	if p.Balance < b {
		p.Bust = true
		leave = true
	}
	if p.Balance >= p.leaveLine {
		p.Cashout = true
		leave = true
	}
	return leave
}

func newDistRecord() *DistRecord {
	d := new(DistRecord)
	d.WinCollect = make([]int, stats.Buckets.Size())
	d.TierCollect = make([]int, len(stats.TierLabels()))
	return d
}

func newPlayerRecord(bet float64, initBets int) *PlayerRecord {

	p := new(PlayerRecord)

	b := bet * float64(initBets) // 初始帶入總金額

	p.InitBalance = b
	p.Balance = b
	p.MaxBalance = b
	p.MinBalance = b
	p.Cashout = false
	p.Bust = false
	p.Alive = false
	p.leaveLine = 3 * b // 設定離場條件(3倍本金)

	return p
}
