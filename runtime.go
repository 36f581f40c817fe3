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
	"context"
	"sync"
	"sync/atomic"

	"github.com/zintix-labs/spinlab/dto"
	"github.com/zintix-labs/spinlab/errs"
	"github.com/zintix-labs/spinlab/sdk/buf"
	"github.com/zintix-labs/spinlab/spec"
)

// SlotRuntime 是對外服務的資料平面：每個變體一個 MachinePool，
// 以 VID 路由請求。由 Lab.BuildRuntime 建立。
type SlotRuntime struct {
	// build-time 來源（只讀引用）
	lab *Lab // 方便取 catalog/corefactory 與共用一些 helper

	// data-plane：關鍵主池（每個變體一個 pool）
	pools map[spec.VID]*MachinePool
	ids   []spec.VID // 固定順序，用於觀測/列舉（來自 cat.IDs()）

	// lifecycle
	done      chan struct{}
	closeOnce sync.Once
	closed    atomic.Bool
	reason    atomic.Value // string

	// runtime 行為設定（一期先簡單，之後可擴展）
	poolSize int // 每個變體的池大小（BuildRuntime(n) 的 n）
}

func (rt *SlotRuntime) Spin(ctx context.Context, req *buf.SpinRequest) (dto.SpinResult, error) {
	select {
	case <-ctx.Done():
		// 如果通知取消
		return dto.SpinResult{}, errs.NewWarn("spin canceled/timeout: " + ctx.Err().Error())
	case <-rt.done:
		// done is the source of truth; keep a fast boolean for cheap reads/telemetry.
		rt.closed.Store(true)
		return dto.SpinResult{}, errs.NewFatal("slot runtime closed: " + rt.ClosedReason())
	default:
	}

	if req == nil {
		return dto.SpinResult{}, errs.NewWarn("nil spin request")
	}

	// VID 為主要路由鍵；未帶 VID 時允許以名稱查表補上，
	// 讓純文字客戶端（curl 等）也能打。
	if req.VID == 0 && req.Variant != "" {
		e, ok := rt.lab.EntryByName(req.Variant)
		if !ok {
			return dto.SpinResult{}, errs.NewWarn("variant name not found")
		}
		req.VID = e.VID
	}

	mp, ok := rt.pools[req.VID]
	if !ok {
		return dto.SpinResult{}, errs.NewWarn("variant id not found")
	}

	// pool 自己會處理 done / close / rebuild / metrics
	return mp.Spin(ctx, req)
}

// Close transitions the runtime into a closed state. It is safe to call multiple times.
func (rt *SlotRuntime) Close() {
	rt.closeWithReason("closed")
}

// closeWithReason closes the runtime and records the reason (written once).
// All machine pools are closed as part of the transition.
func (rt *SlotRuntime) closeWithReason(reason string) {
	rt.closeOnce.Do(func() {
		if reason == "" {
			reason = "closed"
		}
		rt.reason.Store(reason)
		rt.closed.Store(true)
		close(rt.done)
		for _, mp := range rt.pools {
			mp.closeWithReason(reason)
		}
	})
}

// Closed reports whether the runtime has been closed.
func (rt *SlotRuntime) Closed() bool {
	return rt.closed.Load()
}

func (rt *SlotRuntime) ClosedReason() string {
	if v := rt.reason.Load(); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// IDs 回傳 runtime 管理的變體清單（固定順序）。
func (rt *SlotRuntime) IDs() []spec.VID {
	return append([]spec.VID(nil), rt.ids...)
}

// PoolSize 回傳每個變體的池容量設定。
func (rt *SlotRuntime) PoolSize() int {
	return rt.poolSize
}

// Metrics 聚合所有 pool 的觀測快照，順序與 IDs() 一致。
func (rt *SlotRuntime) Metrics() []MachinePoolMetrics {
	out := make([]MachinePoolMetrics, 0, len(rt.ids))
	for _, id := range rt.ids {
		if mp, ok := rt.pools[id]; ok {
			out = append(out, mp.Metrics())
		}
	}
	return out
}
