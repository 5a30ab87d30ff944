// Package manifest handles parsing and validation of package manifests
// (package.yaml). A manifest declares the package's pretty name, type,
// version, authors, an arbitrary extra block and its PSR-4 style autoload
// mapping. Manifests are validated against the JSON Schema embedded from
// schema/package.schema.json.
package manifest
