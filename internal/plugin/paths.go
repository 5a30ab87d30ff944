package plugin

import (
	"path/filepath"
	"strings"
)

// VendorDirToken stands for the vendor directory in persisted paths.
const VendorDirToken = "<vendor-dir>"

// Portabilize replaces the vendorDir prefix of path with VendorDirToken.
// Paths outside vendorDir are returned unchanged.
func Portabilize(path, vendorDir string) string {
	p := filepath.ToSlash(path)
	// A root vendor directory ("/" or "C:/") keeps its trailing slash
	// after Clean; strip it so every path below it matches.
	v := strings.TrimSuffix(filepath.ToSlash(filepath.Clean(vendorDir)), "/")
	if strings.HasPrefix(p+"/", v+"/") {
		return VendorDirToken + p[len(v):]
	}
	return path
}

// Expand turns a VendorDirToken path back into an absolute path under
// vendorDir. Other paths are returned unchanged.
func Expand(path, vendorDir string) string {
	rest, ok := strings.CutPrefix(path, VendorDirToken)
	if !ok {
		return path
	}
	return filepath.Join(vendorDir, filepath.FromSlash(rest))
}
