package v1

import (
	"crypto/rand"
	"encoding/json"
	"math"
	"math/big"
	"net/http"

	"github.com/zintix-labs/spinlab/errs"
	"github.com/zintix-labs/spinlab/server/httperr"
	"github.com/zintix-labs/spinlab/stats"
)

// 上限 5MB，設定檔不該比這更大
const maxCfgBodySize = 5 << 20

// SetByJson 接收一份未註冊的變體設定，臨時建 simulator 跑完即丟。
// 用於調參：改 weights/paytable 後直接看 RTP，不必重啟服務。
func (sh *SimHandler) SetByJson(w http.ResponseWriter, r *http.Request) {
	// 內部結構 不影響外部 也不被外部使用
	type SimByCfgRequestBody struct {
		Bet   float64         `json:"bet"`
		Round int             `json:"round"`
		Cfg   json.RawMessage `json:"cfg"`
		Seed  *int64          `json:"seed,omitempty"`
	}
	// 內部結構 不影響外部 也不被外部使用
	type SimByCfgResponse struct {
		Stats    *stats.StatReport `json:"stats"`
		UsedTime int64             `json:"used_ms"`
	}
	// ---
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxCfgBodySize)
	req := new(SimByCfgRequestBody)
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		httperr.Errs(w, errs.NewWarn("invalid json:"+err.Error()))
		return
	}

	// 業務檢驗
	if req.Bet <= 0 {
		httperr.Errs(w, errs.NewWarn("bet must be positive"))
		return
	}
	if req.Round < 1 || req.Round > 1000000 {
		httperr.Errs(w, errs.NewWarn("round must be between 1 to 1,000,000"))
		return
	}
	if len(req.Cfg) == 0 {
		httperr.Errs(w, errs.NewWarn("cfg is required"))
		return
	}
	if req.Seed == nil {
		rnd, err := rand.Int(rand.Reader, big.NewInt(math.MaxInt64))
		if err != nil {
			httperr.Errs(w, errs.NewWarn("seed generate failed"))
			return
		}
		v := rnd.Int64()
		req.Seed = &v
	}

	// 設定本身的錯誤（weights、paytable）在這裡以 Warn 回 400
	sim, err := sh.Lab.NewSimulatorByJSON(req.Cfg, *req.Seed)
	if err != nil {
		httperr.Errs(w, errs.NewWarn("build simulator from cfg err: "+err.Error()))
		return
	}
	st, used, err := sim.Sim(req.Bet, req.Round, false)
	if err != nil {
		httperr.Errs(w, errs.Wrap(err, "simulate err"))
		return
	}
	resp := SimByCfgResponse{
		Stats:    st,
		UsedTime: used.Milliseconds(),
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
