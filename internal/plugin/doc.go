// Package plugin maintains the registry of installed plugin packages.
//
// When a package of type "plugin" is installed, updated or removed, the
// Installer delegates the file operations to the library installer, builds
// a Record from the package's extra block and autoload mapping (Extractor),
// and persists the aggregated Registry (Store). A Record that fails
// validation causes the file operation to be reversed so the registry and
// the installed repository never disagree.
//
// Paths are absolute in memory. On disk every path under the vendor
// directory is written with the <vendor-dir> token, so the registry file
// stays valid when the vendor directory moves.
package plugin
