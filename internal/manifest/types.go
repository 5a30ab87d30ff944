package manifest

import (
	"fmt"
	"strings"

	"go.yaml.in/yaml/v3"
)

// Package type constants.
const (
	TypeLibrary = "library"
	TypePlugin  = "plugin"
)

// FileName is the manifest file name looked up in package directories.
const FileName = "package.yaml"

// Package is a parsed package manifest. Optional metadata (description,
// authors) is simply left empty when the manifest does not declare it.
type Package struct {
	PrettyName  string                 `yaml:"name" json:"name"`
	Type        string                 `yaml:"type,omitempty" json:"type,omitempty"`
	Version     string                 `yaml:"version" json:"version"`
	Description string                 `yaml:"description,omitempty" json:"description,omitempty"`
	Authors     []Author               `yaml:"authors,omitempty" json:"authors,omitempty"`
	Extra       map[string]interface{} `yaml:"extra,omitempty" json:"extra,omitempty"`
	Autoload    Autoload               `yaml:"autoload,omitempty" json:"autoload,omitempty"`

	// SourceDir is the directory the package was resolved from. It is not
	// part of the manifest file but is kept in the installed repository.
	SourceDir string `yaml:"-" json:"source,omitempty"`
}

// Author is a single entry of the manifest's authors list.
type Author struct {
	Name     string `yaml:"name,omitempty" json:"name,omitempty"`
	Email    string `yaml:"email,omitempty" json:"email,omitempty"`
	Homepage string `yaml:"homepage,omitempty" json:"homepage,omitempty"`
	Role     string `yaml:"role,omitempty" json:"role,omitempty"`
}

// Autoload holds the class-loading declarations of a package.
type Autoload struct {
	PSR4 NamespaceMap `yaml:"psr-4,omitempty" json:"psr-4,omitempty"`
}

// NamespaceEntry maps a namespace prefix to its directory. Path is set when
// the manifest declares a single directory; Paths is set when it declares a
// list of alternatives.
type NamespaceEntry struct {
	Namespace string   `json:"namespace"`
	Path      string   `json:"path,omitempty"`
	Paths     []string `json:"paths"`
}

// Single reports whether the entry maps to exactly one declared path.
func (e NamespaceEntry) Single() bool {
	return e.Paths == nil
}

// NamespaceMap is a namespace → path mapping that keeps declaration order.
type NamespaceMap []NamespaceEntry

// UnmarshalYAML decodes a YAML mapping while preserving key order.
func (m *NamespaceMap) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: psr-4 must be a mapping", node.Line)
	}
	out := make(NamespaceMap, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i], node.Content[i+1]
		entry := NamespaceEntry{Namespace: key.Value}
		switch val.Kind {
		case yaml.ScalarNode:
			entry.Path = val.Value
		case yaml.SequenceNode:
			entry.Paths = []string{}
			if err := val.Decode(&entry.Paths); err != nil {
				return fmt.Errorf("line %d: namespace %q: %w", val.Line, key.Value, err)
			}
		default:
			return fmt.Errorf("line %d: namespace %q must map to a path or a list of paths", val.Line, key.Value)
		}
		out = append(out, entry)
	}
	*m = out
	return nil
}

// MarshalYAML encodes the mapping in declaration order.
func (m NamespaceMap) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, e := range m {
		var val yaml.Node
		var err error
		if e.Single() {
			err = val.Encode(e.Path)
		} else {
			err = val.Encode(e.Paths)
		}
		if err != nil {
			return nil, err
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: e.Namespace},
			&val,
		)
	}
	return node, nil
}

// Name returns the registry key of the package: the lower-cased pretty name.
func (p *Package) Name() string {
	return strings.ToLower(p.PrettyName)
}

// Vendor returns the vendor segment of the pretty name and false when the
// pretty name has none.
func (p *Package) Vendor() (string, bool) {
	vendor, _, ok := strings.Cut(p.PrettyName, "/")
	if !ok {
		return "", false
	}
	return vendor, true
}

// ShortName returns the pretty name without its vendor segment.
func (p *Package) ShortName() string {
	if _, name, ok := strings.Cut(p.PrettyName, "/"); ok {
		return name
	}
	return p.PrettyName
}

// PackageType returns the declared type, defaulting to "library".
func (p *Package) PackageType() string {
	if p.Type == "" {
		return TypeLibrary
	}
	return p.Type
}

// String returns "pretty/name (version)".
func (p *Package) String() string {
	return fmt.Sprintf("%s (%s)", p.PrettyName, p.Version)
}
