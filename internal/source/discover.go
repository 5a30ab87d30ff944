package source

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/pawkit/pawx/internal/manifest"
)

// skippedDirs are never descended into while walking a source.
var skippedDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
}

// Discover walks all sources and returns every package version found,
// sorted by name and then by descending version. Candidates found in earlier
// sources take priority (later duplicates of the same name and version are
// skipped). Inaccessible sources and unparseable manifests are skipped.
func Discover(sources []Source) ([]*Candidate, error) {
	seen := make(map[string]bool)
	var result []*Candidate

	for _, src := range sources {
		found, err := walkSource(src)
		if err != nil {
			continue
		}
		for _, c := range found {
			key := c.Package.Name() + "@" + c.Package.Version
			if !seen[key] {
				seen[key] = true
				result = append(result, c)
			}
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		a, b := result[i].Package, result[j].Package
		if a.Name() != b.Name() {
			return a.Name() < b.Name()
		}
		cmp, err := manifest.CompareVersions(a.Version, b.Version)
		if err != nil {
			return a.Version > b.Version
		}
		return cmp > 0
	})
	return result, nil
}

// Versions returns the candidates for a single package name.
func Versions(name string, sources []Source) ([]*Candidate, error) {
	all, err := Discover(sources)
	if err != nil {
		return nil, err
	}
	return named(ParseRequest(name).Name, all), nil
}

// named keeps the candidates whose package is called name.
func named(name string, all []*Candidate) []*Candidate {
	var filtered []*Candidate
	for _, c := range all {
		if c.Package.Name() == name {
			filtered = append(filtered, c)
		}
	}
	return filtered
}

// walkSource finds all package manifests below a single source directory.
func walkSource(src Source) ([]*Candidate, error) {
	if _, err := os.Stat(src.BasePath); err != nil {
		return nil, err
	}

	var result []*Candidate
	err := filepath.WalkDir(src.BasePath, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // skip inaccessible entries
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

		pkg, err := manifest.ParseFile(path)
		if err != nil {
			return nil
		}
		result = append(result, &Candidate{
			Package:      pkg,
			ManifestPath: path,
			SourceName:   src.Name,
		})
		return nil
	})
	return result, err
}
