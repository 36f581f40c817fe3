package v1

import (
	"encoding/json"
	"net/http"

	"github.com/zintix-labs/spinlab/errs"
	"github.com/zintix-labs/spinlab/recorder"
	"github.com/zintix-labs/spinlab/sdk/buf"
	"github.com/zintix-labs/spinlab/sdk/calc"
	"github.com/zintix-labs/spinlab/server/httperr"
	"github.com/zintix-labs/spinlab/spec"
)

// 回放上限 一百萬局的 payload 已約 20MB
const maxStatRounds = 1000000

// Stat 從外部記錄的派彩序列重建統計報表。
// payouts 為每局總派彩（乘數已套用），tiers/bonus/free_spins 可省略，
// 省略的 tier 會以派彩倍率回推分級。
func (sh *SimHandler) Stat(w http.ResponseWriter, r *http.Request) {
	// 內部結構 不影響外部 也不被外部使用
	type StatRequestBody struct {
		VariantName string    `json:"variant_name"`
		VID         spec.VID  `json:"vid"`
		Bet         float64   `json:"bet"`
		Payouts     []float64 `json:"payouts"`
		Tiers       []int     `json:"tiers,omitempty"`
		Bonus       []bool    `json:"bonus,omitempty"`
		FreeSpins   []int     `json:"free_spins,omitempty"`
	}
	// ---
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxCfgBodySize*8)
	req := new(StatRequestBody)
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		httperr.Errs(w, errs.NewWarn("invalid json:"+err.Error()))
		return
	}

	// 業務檢驗
	if req.Bet <= 0 {
		httperr.Errs(w, errs.NewWarn("bet must be positive"))
		return
	}
	if len(req.Payouts) < 1 || len(req.Payouts) > maxStatRounds {
		httperr.Errs(w, errs.NewWarn("payouts must hold 1 to 1,000,000 rounds"))
		return
	}
	if len(req.Tiers) != 0 && len(req.Tiers) != len(req.Payouts) {
		httperr.Errs(w, errs.NewWarn("tiers length must match payouts"))
		return
	}
	if len(req.Bonus) != 0 && len(req.Bonus) != len(req.Payouts) {
		httperr.Errs(w, errs.NewWarn("bonus length must match payouts"))
		return
	}
	if len(req.FreeSpins) != 0 && len(req.FreeSpins) != len(req.Payouts) {
		httperr.Errs(w, errs.NewWarn("free_spins length must match payouts"))
		return
	}
	if req.VariantName == "" {
		req.VariantName = "replay"
	}

	rec, err := recorder.NewSpinRecorder(req.VariantName, req.VID, req.Bet, 0)
	if err != nil {
		httperr.Errs(w, err)
		return
	}

	res := new(buf.SpinResult)
	for i, payout := range req.Payouts {
		if payout < 0 {
			httperr.Errs(w, errs.NewWarn("payout must be non-negative"))
			return
		}
		res.Reset()
		res.VariantName = req.VariantName
		res.VariantID = req.VID
		res.Bet = req.Bet
		res.Payout = payout
		res.IsWin = payout > 0
		if len(req.Tiers) != 0 {
			t := req.Tiers[i]
			if t < int(spec.TierNone) || t > int(spec.TierJackpot) {
				httperr.Errs(w, errs.NewWarn("tier out of range"))
				return
			}
			res.Tier = spec.WinTier(t)
		} else {
			res.Tier = replayTier(payout, req.Bet)
		}
		if len(req.Bonus) != 0 {
			res.BonusTriggered = req.Bonus[i]
		}
		if len(req.FreeSpins) != 0 {
			res.FreeSpins = req.FreeSpins[i]
		}
		rec.Record(res)
	}

	st := rec.Done()
	st.Done()

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(st); err != nil {
		httperr.Errs(w, err)
		return
	}
}

// replayTier 只看派彩倍率，回放的派彩已含乘數，分級只是近似。
func replayTier(payout, bet float64) spec.WinTier {
	ratio := payout / bet
	switch {
	case ratio >= calc.JackpotRatio:
		return spec.TierJackpot
	case ratio >= calc.BigRatio:
		return spec.TierBig
	case ratio >= calc.MediumRatio:
		return spec.TierMedium
	case ratio > 0:
		return spec.TierSmall
	default:
		return spec.TierNone
	}
}
