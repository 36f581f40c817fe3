package catalog

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/zintix-labs/spinlab/errs"
	"github.com/zintix-labs/spinlab/spec"
)

var (
	ErrDupID   = errs.NewFatal("duplicate variant id")
	ErrDupName = errs.NewFatal("duplicate variant name")
)

type Entry struct {
	VID        spec.VID
	Name       string
	ConfigName string
}

type Summary struct {
	VID       spec.VID `json:"vid"`
	Name      string   `json:"name"`
	ReelCount int      `json:"reel_count"`
	Symbols   []string `json:"symbols"`
}

// Catalog 是變體設定的註冊表，設定檔來源為一組扁平目錄的 fs.FS。
// Runtime 建立前必須 Freeze，凍結後不再接受註冊。
type Catalog struct {
	byID   map[spec.VID]Entry
	byName map[string]Entry
	ids    []spec.VID          // 用來穩定排序
	unique map[string]struct{} // 一組變體，檔名需唯一
	config *multiFS
	frozen bool
}

func New(cfg ...fs.FS) (*Catalog, error) {
	multFS, err := newMultiFS(cfg...)
	if err != nil {
		return nil, errs.Wrap(err, "can not create catalog")
	}
	return &Catalog{
		byID:   map[spec.VID]Entry{},
		byName: map[string]Entry{},
		ids:    make([]spec.VID, 0, 16),
		unique: map[string]struct{}{},
		config: multFS,
		frozen: false,
	}, nil
}

func (c *Catalog) Register(metas ...Entry) error {
	if c.frozen {
		return errs.NewWarn("can not register when catalog already frozen")
	}
	seenID := map[spec.VID]struct{}{}
	seenName := map[string]struct{}{}
	seenCfg := map[string]struct{}{}
	for _, meta := range metas {
		meta.Name = strings.TrimSpace(meta.Name)
		meta.Name = strings.ToLower(meta.Name)
		if meta.Name == "" {
			return errs.NewFatal("variant name required")
		}
		if err := validFileName(meta.ConfigName); err != nil {
			return err
		}
		if _, ok := c.config.index[meta.ConfigName]; !ok {
			return errs.Fatalf("config file not found: %s", meta.ConfigName)
		}
		if _, ok := c.byID[meta.VID]; ok {
			return ErrDupID
		}
		if _, ok := c.byName[meta.Name]; ok {
			return ErrDupName
		}
		if _, ok := c.unique[meta.ConfigName]; ok {
			return errs.Fatalf("duplicate config name: %s", meta.ConfigName)
		}
		if _, ok := seenID[meta.VID]; ok {
			return ErrDupID
		}
		if _, ok := seenName[meta.Name]; ok {
			return ErrDupName
		}
		if _, ok := seenCfg[meta.ConfigName]; ok {
			return errs.Fatalf("duplicate config name: %s", meta.ConfigName)
		}
		seenID[meta.VID] = struct{}{}
		seenName[meta.Name] = struct{}{}
		seenCfg[meta.ConfigName] = struct{}{}
	}
	for _, meta := range metas {
		meta.Name = strings.ToLower(strings.TrimSpace(meta.Name))
		c.unique[meta.ConfigName] = struct{}{}
		c.byID[meta.VID] = meta
		c.byName[meta.Name] = meta
		c.ids = append(c.ids, meta.VID)
	}
	sort.Slice(c.ids, func(i, j int) bool { return c.ids[i] < c.ids[j] })
	return nil
}

func (c *Catalog) GetByID(id spec.VID) (Entry, bool) {
	m, ok := c.byID[id]
	return m, ok
}

func (c *Catalog) GetByName(name string) (Entry, bool) {
	name = strings.TrimSpace(name)
	name = strings.ToLower(name)
	m, ok := c.byName[name]
	return m, ok
}

func (c *Catalog) IDs() []spec.VID {
	if len(c.ids) == 0 {
		return nil
	}
	return append([]spec.VID(nil), c.ids...)
}

func (c *Catalog) All() []Entry {
	order := c.IDs()
	m := make([]Entry, 0, len(c.ids))
	for _, id := range order {
		if meta, ok := c.GetByID(id); ok {
			m = append(m, meta)
		}
	}
	return m
}

func (c *Catalog) Cfg() *multiFS {
	return c.config
}

func (c *Catalog) Freeze() {
	c.frozen = true
}

func (c *Catalog) IsFrozen() bool {
	return c.frozen
}

func validFileName(file string) error {
	if file == "" {
		return errs.NewFatal("empty config filename")
	}
	// 不能包含路徑或類似字元
	if strings.ContainsAny(file, `/\:`) {
		return errs.Fatalf("invalid config filename: %q (must be a basename)", file)
	}
	// 必須以 .yaml/.yml/.json 結尾（大小寫不敏感）
	lower := strings.ToLower(file)
	if !(strings.HasSuffix(lower, ".yaml") || strings.HasSuffix(lower, ".yml") || strings.HasSuffix(lower, ".json")) {
		return errs.Fatalf("invalid config filename: %q (must end with .yaml, .yml, or .json)", file)
	}
	// 不能以 . 開頭（防止直接 .yaml / .yml）
	if strings.HasPrefix(file, ".") {
		return errs.Fatalf("invalid config filename: %q (cannot start with '.')", file)
	}
	return nil
}

func parseVariantSettingByExt(filename string, raw []byte) (*spec.VariantSetting, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		return spec.GetVariantSettingByYAML(raw)
	case ".json":
		return spec.GetVariantSettingByJSON(raw)
	default:
		return nil, errs.Fatalf("unsupported config format: %q", filename)
	}
}

// VariantSettingById
//
// 會讀取 fs.FS 中的 YAML/JSON 設定、初始化並執行基本檢查後回傳
func (c *Catalog) VariantSettingById(id spec.VID) (*spec.VariantSetting, error) {
	e, ok := c.GetByID(id)
	if !ok {
		return nil, errs.NewWarn("id does not exist in catalog")
	}
	return c.loadEntry(e)
}

// VariantSettingByName
//
// 會讀取fs中的 YAML/JSON 設定、初始化並執行基本檢查後回傳
func (c *Catalog) VariantSettingByName(name string) (*spec.VariantSetting, error) {
	e, ok := c.GetByName(name)
	if !ok {
		return nil, errs.NewWarn("name does not exist in catalog")
	}
	return c.loadEntry(e)
}

func (c *Catalog) loadEntry(e Entry) (*spec.VariantSetting, error) {
	src, ok := c.config.GetFS(e.ConfigName)
	if !ok {
		return nil, errs.NewWarn("file name does not exist in catalog")
	}
	raw, err := fs.ReadFile(src, e.ConfigName)
	if err != nil {
		return nil, errs.Wrap(err, "catalog parse file error")
	}
	return parseVariantSettingByExt(e.ConfigName, raw)
}

type multiFS struct {
	src   []fs.FS
	index map[string]int // name -> src index
}

func newMultiFS(src ...fs.FS) (*multiFS, error) {
	if len(src) == 0 {
		return nil, errs.NewFatal("no fs provided")
	}
	for i, s := range src {
		if s == nil {
			return nil, errs.Fatalf("fs[%d] is nil", i)
		}
	}

	m := &multiFS{
		src:   src,
		index: make(map[string]int, 64),
	}

	// eager validate: build index and detect duplicates
	for i := 0; i < len(src); i++ {
		err := fs.WalkDir(src[i], ".", func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				// 設定來源必須是扁平目錄，只允許根目錄 "."，
				// 任何子目錄（即使不含設定檔）都視為違反契約。
				if path == "." {
					return nil
				}
				return errs.Fatalf("config FS must be flat (no subdirectories): %q", path)
			}

			if strings.Contains(path, "/") {
				return errs.Fatalf("config FS must be flat (no subdirectories): %q", path)
			}

			// 只索引 yaml/json 設定，其他檔案忽略
			lower := strings.ToLower(path)
			if !(strings.HasSuffix(lower, ".yaml") || strings.HasSuffix(lower, ".yml") || strings.HasSuffix(lower, ".json")) {
				return nil
			}

			name := path // flat FS guarantees path is a basename

			if prev, ok := m.index[name]; ok {
				// duplicate across FS: fail fast
				return errs.Fatalf("duplicate config %q in fs[%d] and fs[%d]", name, prev, i)
			}
			m.index[name] = i
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *multiFS) GetFS(name string) (fs.FS, bool) {
	if id, ok := m.index[name]; ok {
		return m.src[id], ok
	}
	return nil, false
}

// Sources exposes config FS sources for read-only iteration.
func (m *multiFS) Sources() []fs.FS {
	if m == nil || len(m.src) == 0 {
		return nil
	}
	return append([]fs.FS(nil), m.src...)
}
