package buf

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/zintix-labs/spinlab/errs"
	"github.com/zintix-labs/spinlab/spec"
)

type SpinRequest struct {
	UID     string   `json:"uid"`     // 唯一識別碼
	Variant string   `json:"variant"` // 要玩的變體名稱
	VID     spec.VID `json:"vid"`     // 變體編號
	Bet     float64  `json:"bet"`     // 投注額
}

// DecodeSpinRequest 會把 HTTP 請求解碼成 SpinRequest。
//
// 支援：
//   - GET：從 query string 讀取參數（uid/variant/vid/bet）。
//   - POST：從 JSON body 反序列化。
//
// 注意：
//   - 這裡只負責「解碼（decode）」與基本型別轉換，不做任何投注合法性校驗；
//     合法性（例如該 VID 是否存在、bet 是否為正）由上層（Machine/Runtime）決定。
//   - 為避免過大 body 影響服務，POST 會對 body 做大小限制（預設 1MiB）。
func DecodeSpinRequest(r *http.Request) (*SpinRequest, error) {
	if r == nil {
		return nil, errs.NewWarn("nil request")
	}

	req := new(SpinRequest)

	switch r.Method {
	case http.MethodGet:
		q := r.URL.Query()
		req.UID = q.Get("uid")
		req.Variant = q.Get("variant")

		if s := q.Get("vid"); s != "" {
			u, err := strconv.ParseUint(s, 10, 0)
			if err != nil {
				return nil, errs.Warnf("invalid vid: %v", err)
			}
			req.VID = spec.VID(u)
		}

		if s := q.Get("bet"); s != "" {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, errs.Warnf("invalid bet: %v", err)
			}
			req.Bet = v
		}

		return req, nil

	case http.MethodPost:
		// 防止 body 過大（預設 1MiB）
		const maxBody = 1 << 20
		body := io.LimitReader(r.Body, maxBody)
		dec := json.NewDecoder(body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(req); err != nil {
			return nil, fmt.Errorf("invalid json: %w", err)
		}
		return req, nil

	default:
		return nil, fmt.Errorf("method not allowed")
	}
}
