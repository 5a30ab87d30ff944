package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/pawkit/pawx/internal/manifest"
)

// ErrNotInstalled is returned when a package is not present in the repository.
var ErrNotInstalled = errors.New("package is not installed")

// FileName is the name of the installed repository file inside the
// package manager's state directory.
const FileName = "installed.json"

// Installed is a file-backed repository of installed packages, keyed by
// package name.
type Installed struct {
	path     string
	packages map[string]*manifest.Package
	dirty    bool
}

// installedFile is the on-disk form of the repository.
type installedFile struct {
	Packages  []*manifest.Package `json:"packages"`
	UpdatedAt time.Time           `json:"updated_at"`
}

// Load reads the repository at path. A missing file yields an empty
// repository.
func Load(path string) (*Installed, error) {
	repo := &Installed{path: path, packages: make(map[string]*manifest.Package)}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return repo, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading installed repository: %w", err)
	}

	var f installedFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing installed repository %s: %w", path, err)
	}
	for _, pkg := range f.Packages {
		repo.packages[pkg.Name()] = pkg
	}
	return repo, nil
}

// Path returns the file backing the repository.
func (r *Installed) Path() string {
	return r.path
}

// Has reports whether the given package (any version) is installed.
func (r *Installed) Has(pkg *manifest.Package) bool {
	_, ok := r.packages[pkg.Name()]
	return ok
}

// Find returns the installed package with the given name.
func (r *Installed) Find(name string) (*manifest.Package, error) {
	pkg, ok := r.packages[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, ErrNotInstalled)
	}
	return pkg, nil
}

// Add records pkg as installed, replacing any previous version.
func (r *Installed) Add(pkg *manifest.Package) error {
	r.packages[pkg.Name()] = pkg
	r.dirty = true
	return nil
}

// Remove drops pkg from the repository.
func (r *Installed) Remove(pkg *manifest.Package) error {
	if _, ok := r.packages[pkg.Name()]; !ok {
		return fmt.Errorf("%s: %w", pkg.PrettyName, ErrNotInstalled)
	}
	delete(r.packages, pkg.Name())
	r.dirty = true
	return nil
}

// Packages returns the installed packages sorted by name.
func (r *Installed) Packages() []*manifest.Package {
	out := make([]*manifest.Package, 0, len(r.packages))
	for _, pkg := range r.packages {
		out = append(out, pkg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// Write persists the repository if it changed since it was loaded.
func (r *Installed) Write() error {
	if !r.dirty {
		return nil
	}

	data, err := json.MarshalIndent(installedFile{
		Packages:  r.Packages(),
		UpdatedAt: time.Now().UTC(),
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling installed repository: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(r.path), 0755); err != nil {
		return fmt.Errorf("creating repository directory: %w", err)
	}
	if err := os.WriteFile(r.path, data, 0644); err != nil {
		return fmt.Errorf("writing installed repository: %w", err)
	}
	r.dirty = false
	return nil
}
