package buf

import (
	"github.com/zintix-labs/spinlab/spec"
)

// SpinResult 保存一次完整 Spin 的結果。
// 為可重用緩衝：Machine 在鎖內重複使用同一份實體，外發前需複製。
type SpinResult struct {
	VariantName    string        // 變體名稱
	VariantID      spec.VID      // 變體Id
	Bet            float64       // 當次押注
	Outcome        []spec.Symbol // 轉軸結果，index 0 為最左側轉軸
	Payout         float64       // 最終派彩（含倍數）
	IsWin          bool          // Payout > 0
	Tier           spec.WinTier  // 贏分級距
	Multiplier     float64       // 最終套用的派彩倍數，>= 1.0
	BonusTriggered bool          // 是否觸發 bonus
	FreeSpins      int           // 累計授予的免費旋轉數
	State          SpinState     // spin 前後的 PRNG 快照
}

// SpinState 保存 spin 前後的 PRNG 快照，供審計與回放。
type SpinState struct {
	StartCoreSnap []byte
	AfterCoreSnap []byte
}

// NewSpinResult 建立指定變體的 SpinResult 實體，並預先配置轉軸緩衝。
func NewSpinResult(vs *spec.VariantSetting) *SpinResult {
	return &SpinResult{
		VariantName: vs.VariantName,
		VariantID:   vs.VariantID,
		Outcome:     make([]spec.Symbol, 0, vs.ReelCount),
		Multiplier:  1.0,
	}
}

// Reset 重置累積資料，保留已配置的轉軸切片容量。
func (s *SpinResult) Reset() {
	s.Bet = 0
	s.Outcome = s.Outcome[:0]
	s.Payout = 0
	s.IsWin = false
	s.Tier = spec.TierNone
	s.Multiplier = 1.0
	s.BonusTriggered = false
	s.FreeSpins = 0
	s.State.StartCoreSnap = s.State.StartCoreSnap[:0]
	s.State.AfterCoreSnap = s.State.AfterCoreSnap[:0]
}

// Clone 回傳結果的深拷貝，供需要跨越 Machine 鎖邊界的呼叫端使用。
func (s *SpinResult) Clone() *SpinResult {
	c := *s
	c.Outcome = append([]spec.Symbol(nil), s.Outcome...)
	c.State.StartCoreSnap = append([]byte(nil), s.State.StartCoreSnap...)
	c.State.AfterCoreSnap = append([]byte(nil), s.State.AfterCoreSnap...)
	return &c
}
