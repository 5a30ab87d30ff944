package repository

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/pawkit/pawx/internal/manifest"
)

func TestLoad_MissingFile(t *testing.T) {
	repo, err := Load(filepath.Join(t.TempDir(), "installed.json"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(repo.Packages()) != 0 {
		t.Errorf("expected empty repository, got %d packages", len(repo.Packages()))
	}
}

func TestAddWriteLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pawx", "installed.json")
	repo, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	pkg := &manifest.Package{
		PrettyName: "Acme/Foo",
		Version:    "1.0.0",
		Type:       manifest.TypePlugin,
		Autoload: manifest.Autoload{PSR4: manifest.NamespaceMap{
			{Namespace: `Acme\Foo\`, Path: "src/"},
		}},
	}
	if err := repo.Add(pkg); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := repo.Write(); err != nil {
		t.Fatalf("Write: %v", err)
	}

	reloaded, err := Load(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	got, err := reloaded.Find("acme/foo")
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if got.PrettyName != "Acme/Foo" || got.Version != "1.0.0" {
		t.Errorf("got %s, want Acme/Foo (1.0.0)", got)
	}
	if len(got.Autoload.PSR4) != 1 || !got.Autoload.PSR4[0].Single() {
		t.Errorf("autoload not preserved: %+v", got.Autoload.PSR4)
	}
}

func TestWrite_SkipsWhenUnchanged(t *testing.T) {
	path := filepath.Join(t.TempDir(), "installed.json")
	repo, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := repo.Write(); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("expected no file for an untouched repository, stat err = %v", err)
	}
}

func TestRemove(t *testing.T) {
	repo, _ := Load(filepath.Join(t.TempDir(), "installed.json"))
	pkg := &manifest.Package{PrettyName: "acme/foo", Version: "1.0.0"}

	if err := repo.Remove(pkg); !errors.Is(err, ErrNotInstalled) {
		t.Errorf("Remove of missing package: err = %v, want ErrNotInstalled", err)
	}

	_ = repo.Add(pkg)
	if !repo.Has(pkg) {
		t.Fatal("Has = false after Add")
	}
	if err := repo.Remove(pkg); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if repo.Has(pkg) {
		t.Error("Has = true after Remove")
	}
}

func TestPackages_Sorted(t *testing.T) {
	repo, _ := Load(filepath.Join(t.TempDir(), "installed.json"))
	for _, name := range []string{"zeta/z", "alpha/a", "mid/m"} {
		_ = repo.Add(&manifest.Package{PrettyName: name, Version: "1.0.0"})
	}

	pkgs := repo.Packages()
	want := []string{"alpha/a", "mid/m", "zeta/z"}
	for i, name := range want {
		if pkgs[i].Name() != name {
			t.Errorf("Packages()[%d] = %s, want %s", i, pkgs[i].Name(), name)
		}
	}
}

func TestLoad_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "installed.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for corrupt repository")
	}
}
