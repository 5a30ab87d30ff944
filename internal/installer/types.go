package installer

import "github.com/pawkit/pawx/internal/manifest"

// Repository is the installed-package bookkeeping an installer keeps in
// step with the filesystem.
type Repository interface {
	Has(pkg *manifest.Package) bool
	Add(pkg *manifest.Package) error
	Remove(pkg *manifest.Package) error
}

// Installer installs, updates and removes packages of the types it supports.
type Installer interface {
	// Supports reports whether the installer handles the given package type.
	Supports(packageType string) bool
	Install(repo Repository, pkg *manifest.Package) error
	Update(repo Repository, initial, target *manifest.Package) error
	Uninstall(repo Repository, pkg *manifest.Package) error
	// InstallPath returns the absolute directory the package is installed to.
	InstallPath(pkg *manifest.Package) string
}

// writer is implemented by repositories that persist themselves.
type writer interface {
	Write() error
}
