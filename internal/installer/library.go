package installer

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pawkit/pawx/internal/manifest"
	"github.com/sirupsen/logrus"
)

// LibraryInstaller is the generic installer: it copies a package's source
// directory to <vendor>/<pretty-name> and keeps the repository in step.
type LibraryInstaller struct {
	vendorDir string
	log       *logrus.Logger
}

// NewLibraryInstaller creates a library installer rooted at vendorDir.
func NewLibraryInstaller(vendorDir string, log *logrus.Logger) *LibraryInstaller {
	if log == nil {
		log = logrus.New()
	}
	return &LibraryInstaller{
		vendorDir: filepath.Clean(vendorDir),
		log:       log,
	}
}

// VendorDir returns the install root.
func (l *LibraryInstaller) VendorDir() string {
	return l.vendorDir
}

// Supports returns true for every package type.
func (l *LibraryInstaller) Supports(packageType string) bool {
	return true
}

// InstallPath returns <vendor>/<pretty-name>.
func (l *LibraryInstaller) InstallPath(pkg *manifest.Package) string {
	return filepath.Join(l.vendorDir, filepath.FromSlash(pkg.PrettyName))
}

// Install copies the package into the vendor directory and records it.
func (l *LibraryInstaller) Install(repo Repository, pkg *manifest.Package) error {
	dst := l.InstallPath(pkg)
	l.log.WithFields(logrus.Fields{"package": pkg.PrettyName, "version": pkg.Version, "path": dst}).Debug("installing package files")

	if err := l.copyPackage(pkg, dst); err != nil {
		return err
	}

	if !repo.Has(pkg) {
		if err := repo.Add(pkg); err != nil {
			return fmt.Errorf("recording %s as installed: %w", pkg.PrettyName, err)
		}
	}
	return nil
}

// Update replaces the initial package's files with the target's.
func (l *LibraryInstaller) Update(repo Repository, initial, target *manifest.Package) error {
	if !repo.Has(initial) {
		return fmt.Errorf("package %s is not installed", initial.PrettyName)
	}
	l.log.WithFields(logrus.Fields{"package": target.PrettyName, "from": initial.Version, "to": target.Version}).Debug("updating package files")

	if err := l.removeFiles(l.InstallPath(initial)); err != nil {
		return err
	}
	if err := l.copyPackage(target, l.InstallPath(target)); err != nil {
		return err
	}

	if err := repo.Remove(initial); err != nil {
		return fmt.Errorf("updating repository for %s: %w", initial.PrettyName, err)
	}
	if err := repo.Add(target); err != nil {
		return fmt.Errorf("updating repository for %s: %w", target.PrettyName, err)
	}
	return nil
}

// Uninstall removes the package's files and drops it from the repository.
func (l *LibraryInstaller) Uninstall(repo Repository, pkg *manifest.Package) error {
	if !repo.Has(pkg) {
		return fmt.Errorf("package %s is not installed", pkg.PrettyName)
	}
	l.log.WithFields(logrus.Fields{"package": pkg.PrettyName, "version": pkg.Version}).Debug("removing package files")

	if err := l.removeFiles(l.InstallPath(pkg)); err != nil {
		return err
	}
	return repo.Remove(pkg)
}

// copyPackage replaces dst with a fresh copy of the package's source directory.
func (l *LibraryInstaller) copyPackage(pkg *manifest.Package, dst string) error {
	if pkg.SourceDir == "" {
		return fmt.Errorf("package %s has no source directory", pkg.PrettyName)
	}

	// Remove existing installation to ensure clean copy.
	if _, err := os.Stat(dst); err == nil {
		if err := os.RemoveAll(dst); err != nil {
			return fmt.Errorf("removing existing installation at %s: %w", dst, err)
		}
	}

	if err := l.copyTree(pkg.SourceDir, dst); err != nil {
		return fmt.Errorf("copying %s to %s: %w", pkg.SourceDir, dst, err)
	}
	return nil
}

// removeFiles deletes an install directory and prunes the vendor segment
// directory when it is left empty.
func (l *LibraryInstaller) removeFiles(dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("removing %s: %w", dir, err)
	}

	parent := filepath.Dir(dir)
	if parent != l.vendorDir {
		if entries, err := os.ReadDir(parent); err == nil && len(entries) == 0 {
			os.Remove(parent)
		}
	}
	return nil
}

// shouldExclude reports whether an entry met while copying a package is
// left out of the install. path is the entry's location in the source tree.
func (l *LibraryInstaller) shouldExclude(path string, d fs.DirEntry) bool {
	switch d.Name() {
	case ".git", ".svn", "node_modules", ".DS_Store":
		return true
	}
	// A package that contains the vendor directory must not copy it into itself.
	return d.IsDir() && filepath.Clean(path) == l.vendorDir
}

// copyTree copies the regular files under src to dst. Symlinks and other
// special files are skipped.
func (l *LibraryInstaller) copyTree(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		if rel != "." && l.shouldExclude(path, d) {
			l.log.WithField("path", rel).Trace("skipping excluded entry")
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		switch {
		case d.IsDir():
			return os.MkdirAll(target, info.Mode().Perm()|0700)
		case info.Mode().IsRegular():
			return copyFile(path, target, info.Mode().Perm())
		}
		return nil
	})
}

func copyFile(src, dst string, perm fs.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
