package catalog

import (
	"testing"
	"testing/fstest"

	"github.com/zintix-labs/spinlab/errs"
	"github.com/zintix-labs/spinlab/spec"
)

func yamlFor(name, id string) *fstest.MapFile {
	data := []byte("variant_name: " + name + "\nvariant_id: " + id + "\nreel_count: 3\nsymbols: [a, b]\nweights: [7, 3]\npay_table:\n  aaa: 100\n")
	return &fstest.MapFile{Data: data}
}

func buildCatalog(t *testing.T) *Catalog {
	t.Helper()
	src := fstest.MapFS{
		"one.yaml": yamlFor("one", "1"),
		"two.yml":  yamlFor("two", "2"),
		"notes.md": {Data: []byte("ignored")},
	}
	c, err := New(src)
	if err != nil {
		t.Fatalf("catalog build failed: %v", err)
	}
	return c
}

func TestRegisterAndLookup(t *testing.T) {
	c := buildCatalog(t)
	err := c.Register(
		Entry{VID: 1, Name: "One", ConfigName: "one.yaml"},
		Entry{VID: 2, Name: "two", ConfigName: "two.yml"},
	)
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	// lookup is case-insensitive on names
	e, ok := c.GetByName(" ONE ")
	if !ok || e.VID != spec.VID(1) {
		t.Fatalf("name lookup failed: %+v ok=%v", e, ok)
	}
	if _, ok := c.GetByID(spec.VID(3)); ok {
		t.Fatal("unknown id should miss")
	}

	ids := c.IDs()
	if len(ids) != 2 || ids[0] != 1 || ids[1] != 2 {
		t.Fatalf("ids not sorted: %v", ids)
	}
	if got := len(c.All()); got != 2 {
		t.Fatalf("expected 2 entries, got %d", got)
	}

	vs, err := c.VariantSettingById(spec.VID(2))
	if err != nil {
		t.Fatalf("load setting failed: %v", err)
	}
	if vs.VariantName != "two" || vs.WeightTotal != 10 {
		t.Fatalf("loaded setting mismatch: %+v", vs)
	}
}

func TestRegisterRejections(t *testing.T) {
	cases := []struct {
		name  string
		entry Entry
	}{
		{"blank name", Entry{VID: 5, Name: "  ", ConfigName: "one.yaml"}},
		{"missing config", Entry{VID: 5, Name: "five", ConfigName: "ghost.yaml"}},
		{"path in config", Entry{VID: 5, Name: "five", ConfigName: "sub/one.yaml"}},
		{"bad extension", Entry{VID: 5, Name: "five", ConfigName: "one.txt"}},
		{"dot prefix", Entry{VID: 5, Name: "five", ConfigName: ".yaml"}},
	}
	for _, tc := range cases {
		c := buildCatalog(t)
		if err := c.Register(tc.entry); err == nil {
			t.Fatalf("%s: expected rejection", tc.name)
		}
	}
}

func TestRegisterDuplicates(t *testing.T) {
	c := buildCatalog(t)
	if err := c.Register(Entry{VID: 1, Name: "one", ConfigName: "one.yaml"}); err != nil {
		t.Fatalf("first register failed: %v", err)
	}

	if err := c.Register(Entry{VID: 1, Name: "other", ConfigName: "two.yml"}); err != ErrDupID {
		t.Fatalf("expected ErrDupID, got %v", err)
	}
	if err := c.Register(Entry{VID: 9, Name: "ONE", ConfigName: "two.yml"}); err != ErrDupName {
		t.Fatalf("expected ErrDupName (case-insensitive), got %v", err)
	}
	if err := c.Register(Entry{VID: 9, Name: "nine", ConfigName: "one.yaml"}); err == nil {
		t.Fatal("expected duplicate config rejection")
	}

	// duplicates within a single batch are also rejected, atomically
	c2 := buildCatalog(t)
	err := c2.Register(
		Entry{VID: 3, Name: "a3", ConfigName: "one.yaml"},
		Entry{VID: 3, Name: "b3", ConfigName: "two.yml"},
	)
	if err != ErrDupID {
		t.Fatalf("expected ErrDupID within batch, got %v", err)
	}
	if len(c2.IDs()) != 0 {
		t.Fatal("failed batch must not partially register")
	}
}

func TestFreezeBlocksRegister(t *testing.T) {
	c := buildCatalog(t)
	c.Freeze()
	if !c.IsFrozen() {
		t.Fatal("freeze flag not set")
	}
	err := c.Register(Entry{VID: 1, Name: "one", ConfigName: "one.yaml"})
	e, ok := errs.AsErr(err)
	if !ok || e.ErrLv != errs.Warn {
		t.Fatalf("register after freeze: expected warn, got %v", err)
	}
}

func TestMultiFSContracts(t *testing.T) {
	// no sources
	if _, err := New(); err == nil {
		t.Fatal("expected error for empty source list")
	}

	// nested directories violate the flat contract
	nested := fstest.MapFS{"sub/one.yaml": yamlFor("one", "1")}
	if _, err := New(nested); err == nil {
		t.Fatal("expected error for nested config FS")
	}

	// duplicate file names across sources fail fast
	a := fstest.MapFS{"one.yaml": yamlFor("one", "1")}
	b := fstest.MapFS{"one.yaml": yamlFor("uno", "9")}
	if _, err := New(a, b); err == nil {
		t.Fatal("expected error for duplicate config across sources")
	}
}
