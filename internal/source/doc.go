// Package source finds installable packages. A source is a directory tree
// holding package.yaml manifests at any depth; every manifest is one
// candidate (name and version). Requests of the form name[:constraint] are
// resolved to the highest version satisfying the constraint, earlier
// sources winning when the same name and version appear more than once.
package source
