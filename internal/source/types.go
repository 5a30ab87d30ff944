package source

import (
	"errors"

	"github.com/pawkit/pawx/internal/manifest"
)

// ErrNotFound is returned when no source provides a requested package.
var ErrNotFound = errors.New("package not found")

// Source represents a location to search for packages.
type Source struct {
	Name     string `json:"name"`      // e.g., "local", "acme-corp"
	BasePath string `json:"base_path"` // absolute path to the source root
}

// Candidate is one package version found in a source.
type Candidate struct {
	Package      *manifest.Package `json:"package"`
	ManifestPath string            `json:"manifest_path"` // absolute path to package.yaml
	SourceName   string            `json:"source"`        // name of the source it was found in
}

// Request is a parsed name[:constraint] install request.
type Request struct {
	Name       string // lower-cased package name
	Constraint string // semver constraint; empty means any version
}
