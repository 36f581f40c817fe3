package index

import (
	"net/http"
)

// IndexHandlerFn 回應簡單的服務說明，當作 liveness 檢查也行。
func IndexHandlerFn(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("spinlab lab server\n\n" +
		"GET  /v1/machines            list registered variants\n" +
		"GET  /v1/metrics             machine pool metrics\n" +
		"GET  /v1/spin?vid=&bet=      spin once\n" +
		"POST /v1/spin                spin once (json body)\n" +
		"GET  /v1/sim                 run a simulation\n" +
		"GET  /v1/simplayer           simulate player sessions\n" +
		"POST /v1/simbycfg            simulate an ad-hoc variant config\n" +
		"POST /v1/stat                rebuild stats from recorded payouts\n"))
}
