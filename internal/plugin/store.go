package plugin

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"
)

// DefaultFile is the registry file location relative to the vendor directory.
const DefaultFile = "pawx/plugins.yaml"

const fileHeader = "# This file is generated by pawx. Do not edit.\n" +
	"# Paths starting with " + VendorDirToken + " are relative to vendorDir,\n" +
	"# which is itself relative to this file's directory.\n"

// registryDocument is the on-disk form of the registry.
type registryDocument struct {
	VendorDir string   `yaml:"vendorDir"`
	Plugins   Registry `yaml:"plugins"`
}

// Store reads and writes the registry file. It is the only component that
// touches the file.
type Store struct {
	vendorDir string
	file      string
	cache     *Cache
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithFile overrides the registry file location.
func WithFile(path string) StoreOption {
	return func(s *Store) { s.file = path }
}

// WithCache uses c instead of DefaultCache.
func WithCache(c *Cache) StoreOption {
	return func(s *Store) { s.cache = c }
}

// NewStore creates a store for the registry under vendorDir.
func NewStore(vendorDir string, opts ...StoreOption) *Store {
	s := &Store{
		vendorDir: absPath(vendorDir),
		cache:     DefaultCache,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.file == "" {
		s.file = filepath.Join(s.vendorDir, filepath.FromSlash(DefaultFile))
	}
	s.file = absPath(s.file)
	return s
}

// VendorDir returns the install root.
func (s *Store) VendorDir() string {
	return s.vendorDir
}

// File returns the registry file path.
func (s *Store) File() string {
	return s.file
}

// Load reads the registry. A missing file yields an empty registry.
func (s *Store) Load() (Registry, error) {
	defer s.cache.Invalidate(s.file)
	return s.read()
}

// Save writes the whole registry, replacing the file. A nil record is
// rejected before anything is written.
func (s *Store) Save(reg Registry) error {
	defer s.cache.Invalidate(s.file)

	doc := registryDocument{
		VendorDir: s.relativeVendorDir(),
		Plugins:   make(Registry, len(reg)),
	}
	portable := func(p string) string { return Portabilize(p, s.vendorDir) }
	for name, rec := range reg {
		if rec == nil {
			return fmt.Errorf("%w %s: empty entry for %s", ErrCorruptRegistry, s.file, name)
		}
		doc.Plugins[name] = rec.mapPaths(portable)
	}

	var buf bytes.Buffer
	buf.WriteString(fileHeader)
	buf.WriteByte('\n')
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding plugin registry: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encoding plugin registry: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.file), 0755); err != nil {
		return fmt.Errorf("creating registry directory: %w", err)
	}
	if err := os.WriteFile(s.file, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("writing plugin registry: %w", err)
	}
	return nil
}

// Register adds or replaces the record for name.
func (s *Store) Register(name string, rec *Record) error {
	reg, err := s.Load()
	if err != nil {
		return err
	}
	reg[name] = rec
	return s.Save(reg)
}

// Unregister removes the record for name and returns it. Unknown names are
// a no-op returning nil.
func (s *Store) Unregister(name string) (*Record, error) {
	reg, err := s.Load()
	if err != nil {
		return nil, err
	}
	rec, ok := reg[name]
	if !ok {
		return nil, nil
	}
	delete(reg, name)
	return rec, s.Save(reg)
}

// Cached returns the registry from the in-process cache, reading the file
// on a miss.
func (s *Store) Cached() (Registry, error) {
	if reg, ok := s.cache.Get(s.file); ok {
		return reg, nil
	}
	reg, err := s.read()
	if err != nil {
		return nil, err
	}
	s.cache.Add(s.file, reg)
	return reg, nil
}

// Watch keeps the cache entry for this store's file fresh while ctx is live.
func (s *Store) Watch(ctx context.Context, onChange func()) error {
	if err := os.MkdirAll(filepath.Dir(s.file), 0755); err != nil {
		return fmt.Errorf("creating registry directory: %w", err)
	}
	return s.cache.Watch(ctx, s.file, onChange)
}

// read parses the file and expands vendor-dir tokens.
func (s *Store) read() (Registry, error) {
	data, err := os.ReadFile(s.file)
	if os.IsNotExist(err) {
		return Registry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading plugin registry: %w", err)
	}

	var doc registryDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w %s: %v", ErrCorruptRegistry, s.file, err)
	}

	reg := make(Registry, len(doc.Plugins))
	expand := func(p string) string { return Expand(p, s.vendorDir) }
	for name, rec := range doc.Plugins {
		if rec == nil {
			return nil, fmt.Errorf("%w %s: empty entry for %s", ErrCorruptRegistry, s.file, name)
		}
		reg[name] = rec.mapPaths(expand)
	}
	return reg, nil
}

// relativeVendorDir returns the vendor directory relative to the registry
// file's directory, e.g. "..".
func (s *Store) relativeVendorDir() string {
	rel, err := filepath.Rel(filepath.Dir(s.file), s.vendorDir)
	if err != nil {
		return filepath.ToSlash(s.vendorDir)
	}
	return filepath.ToSlash(rel)
}

func absPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	return abs
}
