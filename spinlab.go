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

// Package spinlab 提供 slot 派彩引擎的「組裝入口（assembler）」與「運行入口（runtime entry）」。
//
// Spinlab 把兩個必需的地基組裝在一起，並提供建立 Machine 的入口：
//  1. Catalog：變體目錄（Single Source of Truth），定義有哪些機台變體、各自對應的設定檔名稱（ConfigName）。
//  2. PRNGFactory：亂數核心工廠，保證可重現（reproducible）與可審計（auditable）。
//
// 設計重點：
//   - Spinlab 本身不綁定任何「檔案路徑」概念：設定檔來源一律以 fs.FS 的形式注入。
//   - 派彩規則是固定管線（完全匹配 -> 部分匹配 -> bonus 疊加 -> 倍數終結），
//     變體之間的差異完全由 VariantSetting 資料決定，不走 plugin。
//   - Machine 是對外提供 Spin 的最小單位。
//
// 典型使用情境：
//   - 後端服務（HTTP）：由 Spinlab 建立 Machine / Runtime，Machine 對外提供 Spin。
//   - 模擬器（sim）：由 Spinlab 建立多台 Machine 進行大量 RTP 模擬。
package spinlab

import (
	"crypto/rand"
	"io/fs"
	"math"
	"math/big"
	"path/filepath"
	"strings"

	"github.com/zintix-labs/spinlab/catalog"
	"github.com/zintix-labs/spinlab/errs"
	"github.com/zintix-labs/spinlab/sdk/core"
	"github.com/zintix-labs/spinlab/spec"
)

// Configs 用來把一或多個設定檔來源（fs.FS）打包成 New() 需要的參數。
//
// 為什麼是 fs.FS：
//   - 可以用 go:embed 把 configs 直接編進 binary（部署最穩定，不依賴工作目錄）。
//   - 也可以用 os.DirFS 在本機開發時讀取目錄。
//
// Spinlab 不解析「路徑」：它只依賴 fs.FS + ConfigName（檔名）來取得設定內容。
func Configs(cfgs ...fs.FS) []fs.FS {
	return cfgs
}

// Lab 是組裝器與運行入口。
//
// 使用流程分成兩階段：
//   - 註冊/組裝階段：建立 catalog、檢查重複與缺漏。
//   - 執行階段：依據變體 ID 產生 Machine，並在 Machine 上執行 Spin。
//
// Catalog 的 ID 唯一性只保證在同一個 Lab instance 內。
// runtime 一旦開始（已建立 Machine 並對外服務），不可再變更 Catalog。
type Lab struct {
	cat *catalog.Catalog
	cf  core.PRNGFactory
	sum []catalog.Summary
}

// New 建立一個 Lab instance。
//
// 這是「組裝階段」的入口：
//   - 會建立 Catalog（同時做檔名存在性/重複性檢查，避免 runtime 才爆）。
//   - 會保存 PRNGFactory，確保由這個 Lab 建出來的 Machine 在 RNG 行為上一致。
//
// 參數要求（合約的一部分）：
//   - cf 不能為 nil：沒有 RNG 工廠就無法建立可重現/可審計的核心。
//   - cfgs 至少一個：沒有設定檔來源，Catalog 無法解析 VariantSetting。
func New(cf core.PRNGFactory, cfgs []fs.FS) (*Lab, error) {
	if cf == nil {
		return nil, errs.NewFatal("prng factory required")
	}
	if len(cfgs) == 0 {
		return nil, errs.NewFatal("configs required")
	}
	cata, err := catalog.New(cfgs...)
	if err != nil {
		return nil, err
	}
	return &Lab{
		cat: cata,
		cf:  cf,
	}, nil
}

// NewAuto 建立一個直接進入執行階段的 Lab instance：
// 掃描所有設定檔、批次註冊並凍結目錄。
func NewAuto(cf core.PRNGFactory, cfgs []fs.FS) (*Lab, error) {
	lab, err := New(cf, cfgs)
	if err != nil {
		return nil, err
	}
	if err := lab.RegisterAll(); err != nil {
		return nil, err
	}
	lab.Freeze()
	return lab, nil
}

func (l *Lab) Register(ents ...catalog.Entry) error {
	return l.cat.Register(ents...)
}

// RegisterAll
//
// 會掃描 catalog 持有的設定檔來源（fs.FS），把所有可辨識的設定檔（.yaml/.yml/.json）
// 解析成 *spec.VariantSetting，並用設定檔內宣告的 VariantID/VariantName 產生對應的
// catalog.Entry 來批次註冊。
//
// 行為特性：
//  1. Fail-fast：任何一個檔案讀取/解析/基本檢查失敗，都會立刻回傳 error。
//  2. 原子性：只有當全部檔案都成功解析並通過基本檢查時，才會呼叫 Register(...) 一次性寫入，
//     不會出現只註冊一半的 catalog 半完成狀態。
//  3. 穩定性：依檔名排序後再處理，確保 determinism。
func (l *Lab) RegisterAll() error {
	sources := l.cat.Cfg().Sources()
	if len(sources) == 0 {
		return errs.NewFatal("configs required")
	}

	entries := make([]catalog.Entry, 0, 16)
	seenID := map[spec.VID]string{}
	seenName := map[string]string{}

	for _, src := range sources {
		walkErr := fs.WalkDir(src, ".", func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path == "." {
					return nil
				}
				return errs.Fatalf("configs must be flat (no subdir): %q", path)
			}

			base := filepath.Base(path)
			if strings.Contains(path, "/") && path != base {
				return errs.Fatalf("configs must be flat (nested path): %q", path)
			}
			if strings.HasPrefix(base, ".") {
				return nil
			}

			ext := strings.ToLower(filepath.Ext(base))
			if ext != ".yaml" && ext != ".yml" && ext != ".json" {
				return nil
			}

			raw, rerr := fs.ReadFile(src, path)
			if rerr != nil {
				return errs.Fatalf("read config failed: %s", base)
			}

			var (
				vs   *spec.VariantSetting
				verr error
			)
			switch ext {
			case ".yaml", ".yml":
				vs, verr = spec.GetVariantSettingByYAML(raw)
			case ".json":
				vs, verr = spec.GetVariantSettingByJSON(raw)
			}
			if verr != nil {
				return errs.Wrap(verr, "parse variant setting failed: "+base)
			}

			name := strings.TrimSpace(vs.VariantName)
			if name == "" {
				return errs.Fatalf("variant name required: %s", base)
			}

			id := vs.VariantID
			if prev, ok := seenID[id]; ok {
				return errs.Fatalf("duplicate variant id: %d (config=%s and %s)", id, prev, base)
			}
			if _, ok := l.cat.GetByID(id); ok {
				return errs.Fatalf("variant id already registered: %d (config=%s)", id, base)
			}
			seenID[id] = base

			nameKey := strings.ToLower(name)
			if prev, ok := seenName[nameKey]; ok {
				return errs.Fatalf("duplicate variant name: %s (config=%s and %s)", nameKey, prev, base)
			}
			if _, ok := l.cat.GetByName(name); ok {
				return errs.Fatalf("variant name already registered: %s (config=%s)", name, base)
			}
			seenName[nameKey] = base

			entries = append(entries, catalog.Entry{
				VID:        id,
				Name:       name,
				ConfigName: base,
			})
			return nil
		})
		if walkErr != nil {
			return walkErr
		}
	}

	if len(entries) == 0 {
		return errs.NewFatal("no config files found to register")
	}

	return l.cat.Register(entries...)
}

func (l *Lab) Freeze() {
	l.cat.Freeze()
}

func (l *Lab) EntryById(id spec.VID) (catalog.Entry, bool) {
	return l.cat.GetByID(id)
}

func (l *Lab) EntryByName(name string) (catalog.Entry, bool) {
	return l.cat.GetByName(name)
}

func (l *Lab) IDs() []spec.VID {
	return l.cat.IDs()
}

func (l *Lab) All() []catalog.Entry {
	return l.cat.All()
}

func (l *Lab) Summary() ([]catalog.Summary, error) {
	if !l.cat.IsFrozen() {
		return nil, errs.NewFatal("catalog is not frozen yet")
	}
	if l.sum != nil {
		return l.sum, nil
	}
	ids := l.cat.IDs()
	cs := make([]catalog.Summary, 0, len(ids))
	for _, id := range ids {
		vs, err := l.cat.VariantSettingById(id)
		if err != nil {
			return nil, errs.Wrap(err, "parse variant setting failed")
		}
		cs = append(cs, catalog.Summary{
			VID:       id,
			Name:      vs.VariantName,
			ReelCount: vs.ReelCount,
			Symbols:   vs.SymbolsStr,
		})
	}
	l.sum = cs
	return l.sum, nil
}

// NewMachine 依據 Catalog 內的變體 ID 建立一台 Machine。
//
// 行為：
//  1. 由 Catalog 取得對應的 VariantSetting（來自 fs.FS 內的 YAML/JSON）。
//  2. 以 PRNGFactory 產生 RNG 核心（seed 由 crypto/rand 產生）。
//  3. 建出生成器與派彩計算器。
//
// isSim 用於區分「模擬/分析」與「對外服務」的執行模式
// （sim 模式跳過每局 PRNG 快照以增加模擬性能）。
//
// seed 會被記錄在 Machine 內（initseed），用於追溯/重現；
// 完整審計能力以 Core 的 Snapshot/Restore 合約為準。
func (l *Lab) NewMachine(id spec.VID, isSim bool) (*Machine, error) {
	if !l.cat.IsFrozen() {
		return nil, errs.NewFatal("catalog is not frozen yet")
	}
	vs, err := l.cat.VariantSettingById(id)
	if err != nil {
		return nil, err
	}
	return newMachine(vs, l.cf, isSim)
}

// NewMachineWithSeed 與 NewMachine 相同，但由呼叫端指定初始 seed。
//
// 使用情境：可重現的測試。同一份 VariantSetting + 同一個 seed，
// 應產生一致的隨機序列（取決於 Core 實作）。
//
// seed 只是「出生入口」。若要在任意時間點完整重現，
// 請使用 Core 的 Snapshot/Restore（以 []byte 交換狀態）。
func (l *Lab) NewMachineWithSeed(id spec.VID, seed int64, isSim bool) (*Machine, error) {
	if !l.cat.IsFrozen() {
		return nil, errs.NewFatal("catalog is not frozen yet")
	}
	vs, err := l.cat.VariantSettingById(id)
	if err != nil {
		return nil, err
	}
	return newMachineWithSeed(vs, l.cf, seed, isSim)
}

// NewMachineByYAML 以外部提供的 YAML 設定建立機台，僅限已註冊的變體（id/name 必須對得上）。
func (l *Lab) NewMachineByYAML(raw []byte, seed int64) (*Machine, error) {
	if !l.cat.IsFrozen() {
		return nil, errs.NewFatal("catalog is not frozen yet")
	}
	cfg, err := spec.GetVariantSettingByYAML(raw)
	if err != nil {
		return nil, err
	}
	if err := l.validCfg(cfg); err != nil {
		return nil, err
	}
	return newMachineWithSeed(cfg, l.cf, seed, true)
}

// NewMachineByJSON 以外部提供的 JSON 設定建立機台，僅限已註冊的變體（id/name 必須對得上）。
func (l *Lab) NewMachineByJSON(raw []byte, seed int64) (*Machine, error) {
	if !l.cat.IsFrozen() {
		return nil, errs.NewFatal("catalog is not frozen yet")
	}
	cfg, err := spec.GetVariantSettingByJSON(raw)
	if err != nil {
		return nil, err
	}
	if err := l.validCfg(cfg); err != nil {
		return nil, err
	}
	return newMachineWithSeed(cfg, l.cf, seed, true)
}

func (l *Lab) validCfg(cfg *spec.VariantSetting) error {
	ent, ok := l.cat.GetByID(cfg.VariantID)
	if !ok {
		return errs.NewWarn("vid not exist")
	}
	ent2, ok := l.cat.GetByName(cfg.VariantName)
	if !ok {
		return errs.NewWarn("variant name not exist")
	}
	if ent.VID != ent2.VID {
		return errs.NewWarn("variant id is not matched variant name")
	}
	return nil
}

func (l *Lab) NewSimulator(id spec.VID) (*Simulator, error) {
	if !l.cat.IsFrozen() {
		return nil, errs.NewFatal("catalog is not frozen yet")
	}
	vs, err := l.cat.VariantSettingById(id)
	if err != nil {
		return nil, err
	}
	return newSimulator(vs, l.cf)
}

func (l *Lab) NewSimulatorWithSeed(id spec.VID, seed int64) (*Simulator, error) {
	if !l.cat.IsFrozen() {
		return nil, errs.NewFatal("catalog is not frozen yet")
	}
	vs, err := l.cat.VariantSettingById(id)
	if err != nil {
		return nil, err
	}
	return newSimulatorWithSeed(vs, l.cf, seed)
}

// NewSimulatorByYAML 以外部提供的 YAML 設定建立模擬器，僅限已註冊的變體。
func (l *Lab) NewSimulatorByYAML(raw []byte, seed int64) (*Simulator, error) {
	if !l.cat.IsFrozen() {
		return nil, errs.NewFatal("catalog is not frozen yet")
	}
	cfg, err := spec.GetVariantSettingByYAML(raw)
	if err != nil {
		return nil, err
	}
	if err := l.validCfg(cfg); err != nil {
		return nil, err
	}
	return newSimulatorWithSeed(cfg, l.cf, seed)
}

// NewSimulatorByJSON 以外部提供的 JSON 設定建立模擬器，僅限已註冊的變體。
func (l *Lab) NewSimulatorByJSON(raw []byte, seed int64) (*Simulator, error) {
	if !l.cat.IsFrozen() {
		return nil, errs.NewFatal("catalog is not frozen yet")
	}
	cfg, err := spec.GetVariantSettingByJSON(raw)
	if err != nil {
		return nil, err
	}
	if err := l.validCfg(cfg); err != nil {
		return nil, err
	}
	return newSimulatorWithSeed(cfg, l.cf, seed)
}

// BuildRuntime 進入對外服務階段：凍結 catalog，為每個變體建立機台池。
func (l *Lab) BuildRuntime(poolSize int) (*SlotRuntime, error) {
	// 進入 runtime 前，catalog 必須 Freeze
	l.Freeze()

	ids := l.cat.IDs()
	if len(ids) == 0 {
		return nil, errs.NewFatal("no variants registered")
	}

	rt := &SlotRuntime{
		lab:      l,
		pools:    make(map[spec.VID]*MachinePool, len(ids)),
		ids:      ids,
		done:     make(chan struct{}),
		poolSize: max(1, poolSize),
	}
	rt.reason.Store("")

	// 先全建好（fail-fast）
	for _, id := range ids {
		vs, err := l.cat.VariantSettingById(id)
		if err != nil {
			return nil, err
		}

		seed, _ := rand.Int(rand.Reader, big.NewInt(math.MaxInt64))
		mp, err := newMachinePool(rt.poolSize, vs, l.cf, seed.Int64())
		if err != nil {
			return nil, err
		}
		rt.pools[id] = mp
	}
	return rt, nil
}
