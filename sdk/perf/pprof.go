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

package perf

import (
	"os"
	"runtime"
	"runtime/pprof"
)

const pprofDir = "build/profiling" // pprof檔案寫入路徑

// 建檔失敗直接 panic，profiling 是顯式要求的，不該被吃掉
func createProfileFile(name string) *os.File {
	_ = os.MkdirAll(pprofDir, 0o755)
	f, err := os.Create(pprofDir + "/" + name)
	if err != nil {
		panic("failed to create " + name + " : " + err.Error())
	}
	return f
}

// RunPProf 依 mode 決定用哪種 profiling 包住 exe
// 空字串或未知模式就直接執行
func RunPProf(exe func(), mode string) {
	switch mode {
	case "cpu":
		PProfCPU(exe)
	case "heap":
		PProfHeap(exe)
	case "allocs":
		PProfAllocs(exe)
	default:
		exe()
	}
}

// PProfCPU 對送入的函數做 CPU profiling。
//
// 可以作性能分析，也可以拿來做構建時給pgo的優化blueprint
//
// Usage like:
//
//	go run ./cmd/run -pprof cpu
func PProfCPU(exe func()) {
	f := createProfileFile("cpu.pprof")
	defer f.Close()

	if err := pprof.StartCPUProfile(f); err != nil {
		panic("failed to start pprof : " + err.Error())
	}
	defer pprof.StopCPUProfile()

	exe()
}

// PProfHeap 會在 exe() 執行完後，寫出一次 Heap Snapshot（in-use memory）。
// 寫出前先呼叫一次 runtime.GC()，以獲得較準確的 Live Objects 視圖。
// 輸出檔：build/profiling/heap.pprof
func PProfHeap(exe func()) {
	// 先執行目標邏輯，再拍一次快照
	exe()

	// 盡量讓快照貼近最新狀態
	runtime.GC()

	f := createProfileFile("heap.pprof")
	defer f.Close()

	if err := pprof.WriteHeapProfile(f); err != nil {
		panic("failed to write heap profile : " + err.Error())
	}
}

// PProfAllocs 會在 exe() 後寫出「累積配置」(allocs) Profile，
// 可用於追蹤整體分配熱點（需要搭配 -alloc_space / -alloc_objects 指標查看）。
// 輸出檔：build/profiling/allocs.pprof
func PProfAllocs(exe func()) {
	exe()

	f := createProfileFile("allocs.pprof")
	defer f.Close()

	if prof := pprof.Lookup("allocs"); prof != nil {
		if err := prof.WriteTo(f, 0); err != nil {
			panic("failed to write allocs profile : " + err.Error())
		}
	}
}
