package plugin

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize is the number of registry files kept by DefaultCache.
const DefaultCacheSize = 16

// DefaultCache is the process-wide cache of parsed registry files.
var DefaultCache = mustNewCache(DefaultCacheSize)

// Cache holds parsed registries keyed by the registry file's absolute path.
// Stores invalidate their entry whenever they read or write the file, so
// in-process consumers never observe a stale registry.
type Cache struct {
	entries *lru.Cache[string, Registry]
}

// NewCache creates a cache holding up to size registries.
func NewCache(size int) (*Cache, error) {
	entries, err := lru.New[string, Registry](size)
	if err != nil {
		return nil, fmt.Errorf("creating registry cache: %w", err)
	}
	return &Cache{entries: entries}, nil
}

func mustNewCache(size int) *Cache {
	c, err := NewCache(size)
	if err != nil {
		panic(err)
	}
	return c
}

// Get returns a copy of the cached registry for path.
func (c *Cache) Get(path string) (Registry, bool) {
	reg, ok := c.entries.Get(path)
	if !ok {
		return nil, false
	}
	return reg.Clone(), true
}

// Add caches a copy of reg for path.
func (c *Cache) Add(path string, reg Registry) {
	c.entries.Add(path, reg.Clone())
}

// Invalidate drops the cached registry for path.
func (c *Cache) Invalidate(path string) {
	c.entries.Remove(path)
}

// Len returns the number of cached registries.
func (c *Cache) Len() int {
	return c.entries.Len()
}

// Watch invalidates the entry for path whenever the file is written,
// created, removed or renamed by another process. onChange, if not nil, is
// called after each invalidation. Watch blocks until ctx is done and
// requires path's directory to exist.
func (c *Cache) Watch(ctx context.Context, path string, onChange func()) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer w.Close()

	path = filepath.Clean(path)
	// Watch the directory: editors and Save replace the file itself.
	if err := w.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(path), err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != path || ev.Op == fsnotify.Chmod {
				continue
			}
			c.Invalidate(path)
			if onChange != nil {
				onChange()
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watching %s: %w", path, err)
		}
	}
}
