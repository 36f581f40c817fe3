package v1

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/zintix-labs/spinlab"
	"github.com/zintix-labs/spinlab/errs"
	"github.com/zintix-labs/spinlab/sdk/buf"
	"github.com/zintix-labs/spinlab/server/httperr"
	"github.com/zintix-labs/spinlab/server/svrcfg"
)

func (c *SpinHandler) Spin(w http.ResponseWriter, q *http.Request) {
	// 請求方法、結構體校驗
	if q.Method != http.MethodGet && q.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	req, err := buf.DecodeSpinRequest(q)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	// 請求解析完成，設置超時 context
	ctx := q.Context()
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	// 開始 Spin
	result, err := c.rt.Spin(ctx, req)
	if err != nil {
		httperr.Errs(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(result); err != nil {
		httperr.Errs(w, err)
		return
	}
}

// Metrics 回傳所有機台池的觀測快照（pull 式，無綁定 metrics SDK）。
func (c *SpinHandler) Metrics(w http.ResponseWriter, q *http.Request) {
	if q.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(c.rt.Metrics()); err != nil {
		httperr.Errs(w, err)
		return
	}
}

// ============================================================
// ** SpinHandler **
// ============================================================

type SpinHandler struct {
	rt *spinlab.SlotRuntime
}

func NewSpinHandler(sCfg *svrcfg.SvrCfg) (*SpinHandler, error) {
	rt, err := sCfg.Lab.BuildRuntime(sCfg.SlotBufSize)
	if err != nil {
		return nil, errs.Wrap(err, "build spin handler error")
	}
	return &SpinHandler{rt: rt}, nil
}
