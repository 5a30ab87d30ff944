package plugin

import (
	"bytes"
	"encoding/json"
	"fmt"

	"go.yaml.in/yaml/v3"
)

// Record is the registry entry of one installed plugin.
type Record struct {
	Class       string  `yaml:"class" json:"class"`
	BasePath    string  `yaml:"basePath" json:"basePath"`
	Handle      string  `yaml:"handle" json:"handle"`
	Aliases     Aliases `yaml:"aliases,omitempty" json:"aliases,omitempty"`
	Name        string  `yaml:"name" json:"name"`
	Version     string  `yaml:"version" json:"version"`
	Description string  `yaml:"description,omitempty" json:"description,omitempty"`
	Developer   string  `yaml:"developer,omitempty" json:"developer,omitempty"`
}

// Clone returns a deep copy of the record. An empty alias list is
// returned as nil, which is how the registry file stores it.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	c := *r
	c.Aliases = nil
	if len(r.Aliases) > 0 {
		c.Aliases = append(Aliases(nil), r.Aliases...)
	}
	return &c
}

// mapPaths returns a copy of the record with fn applied to the base path
// and every alias path.
func (r *Record) mapPaths(fn func(string) string) *Record {
	c := r.Clone()
	c.BasePath = fn(c.BasePath)
	for i := range c.Aliases {
		c.Aliases[i].Path = fn(c.Aliases[i].Path)
	}
	return c
}

// Alias maps a namespace alias such as "@Acme/Foo" to a directory.
type Alias struct {
	Name string
	Path string
}

// Aliases is an alias → path mapping that keeps discovery order.
type Aliases []Alias

// Get returns the path registered for name.
func (a Aliases) Get(name string) (string, bool) {
	for _, alias := range a {
		if alias.Name == name {
			return alias.Path, true
		}
	}
	return "", false
}

// Set returns a with name mapped to path. An existing entry keeps its
// position.
func (a Aliases) Set(name, path string) Aliases {
	for i := range a {
		if a[i].Name == name {
			a[i].Path = path
			return a
		}
	}
	return append(a, Alias{Name: name, Path: path})
}

// MarshalYAML encodes the aliases as an ordered mapping.
func (a Aliases) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, alias := range a {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: alias.Name},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: alias.Path},
		)
	}
	return node, nil
}

// UnmarshalYAML decodes an ordered mapping.
func (a *Aliases) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: aliases must be a mapping", node.Line)
	}
	out := make(Aliases, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i], node.Content[i+1]
		if val.Kind != yaml.ScalarNode {
			return fmt.Errorf("line %d: alias %q must map to a path", val.Line, key.Value)
		}
		out = append(out, Alias{Name: key.Value, Path: val.Value})
	}
	*a = out
	return nil
}

// MarshalJSON encodes the aliases as an ordered JSON object.
func (a Aliases) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, alias := range a {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(alias.Name)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(alias.Path)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Registry maps package names to their plugin records.
type Registry map[string]*Record

// Clone returns a deep copy of the registry.
func (r Registry) Clone() Registry {
	out := make(Registry, len(r))
	for name, rec := range r {
		out[name] = rec.Clone()
	}
	return out
}
