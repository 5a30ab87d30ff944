package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"
)

// ParseFile reads a package manifest from disk. The package's SourceDir is
// set to the manifest's directory.
func ParseFile(path string) (*Package, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	pkg, err := Parse(data, path)
	if err != nil {
		return nil, err
	}
	pkg.SourceDir = dirOf(path)
	return pkg, nil
}

// Parse unmarshals manifest YAML. path is only used in error messages.
func Parse(data []byte, path string) (*Package, error) {
	var pkg Package
	if err := yaml.Unmarshal(data, &pkg); err != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w", path, err)
	}
	if pkg.PrettyName == "" {
		return nil, fmt.Errorf("manifest %s missing required 'name' field", path)
	}
	return &pkg, nil
}

// readFile reads the contents of a file at the given path.
func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", path, err)
	}
	return data, nil
}

// dirOf returns the absolute directory containing path.
func dirOf(path string) string {
	abs, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return filepath.Dir(path)
	}
	return abs
}
