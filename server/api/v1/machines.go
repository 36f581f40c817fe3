package v1

import (
	"encoding/json"
	"net/http"

	"github.com/zintix-labs/spinlab/server/httperr"
)

// Machines 列出已註冊的變體摘要（id、名稱、盤面、符號數）。
func (sh *SimHandler) Machines(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	sum, err := sh.Lab.Summary()
	if err != nil {
		httperr.Errs(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(sum); err != nil {
		httperr.Errs(w, err)
		return
	}
}
