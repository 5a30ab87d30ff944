package source

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/pawkit/pawx/internal/manifest"
)

// IndexFileName is the discovery cache kept next to the installed
// repository.
const IndexFileName = "source-index.json"

// indexedSource is a source together with the fingerprint of its manifest
// tree at the time it was indexed.
type indexedSource struct {
	Source
	Fingerprint string `json:"fingerprint"`
}

// cachedIndex holds the candidates discovered from an ordered source list.
type cachedIndex struct {
	Sources    []indexedSource `json:"sources"`
	Candidates []*Candidate    `json:"candidates"`
	CachedAt   time.Time       `json:"cached_at"`
}

// DiscoverCached returns the same candidates as Discover, reading them from
// the index at indexPath while every source's manifest tree is unchanged.
// A missing, unreadable or stale index is rebuilt and rewritten.
func DiscoverCached(sources []Source, indexPath string) ([]*Candidate, error) {
	current := fingerprintAll(sources)

	if cached, err := loadIndex(indexPath); err == nil && slices.Equal(cached.Sources, current) {
		return cached.Candidates, nil
	}

	candidates, err := Discover(sources)
	if err != nil {
		return nil, err
	}

	// Best effort: discovery still works without the index.
	writeIndex(indexPath, cachedIndex{
		Sources:    current,
		Candidates: candidates,
		CachedAt:   time.Now(),
	})
	return candidates, nil
}

func loadIndex(path string) (*cachedIndex, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var idx cachedIndex
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, fmt.Errorf("parsing source index %s: %w", path, err)
	}
	for _, c := range idx.Candidates {
		if c == nil || c.Package == nil {
			return nil, fmt.Errorf("source index %s has an empty candidate", path)
		}
	}
	return &idx, nil
}

func writeIndex(path string, idx cachedIndex) {
	data, err := json.MarshalIndent(idx, "", "  ")
	if err != nil {
		return
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return
	}
	os.WriteFile(path, data, 0644)
}

func fingerprintAll(sources []Source) []indexedSource {
	out := make([]indexedSource, len(sources))
	for i, src := range sources {
		out[i] = indexedSource{Source: src, Fingerprint: fingerprint(src.BasePath)}
	}
	return out
}

// fingerprint hashes the path, size and mtime of every manifest below
// basePath, walking the same directories as discovery. Adding, removing or
// editing a manifest changes it. A missing source has an empty fingerprint.
func fingerprint(basePath string) string {
	if _, err := os.Stat(basePath); err != nil {
		return ""
	}

	h := sha256.New()
	filepath.WalkDir(basePath, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if skippedDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Name() != manifest.FileName {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		fmt.Fprintf(h, "%s\x00%d\x00%d\n", path, info.Size(), info.ModTime().UnixNano())
		return nil
	})
	return hex.EncodeToString(h.Sum(nil))
}
