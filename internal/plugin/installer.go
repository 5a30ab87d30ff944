package plugin

import (
	"errors"
	"fmt"

	"github.com/pawkit/pawx/internal/installer"
	"github.com/pawkit/pawx/internal/manifest"
	"github.com/sirupsen/logrus"
)

// Installer handles packages of type "plugin". File operations are
// delegated to another installer; the plugin registry is updated around
// them. When a package's plugin metadata is invalid the file operation is
// reversed and the *InvalidPluginError is returned.
type Installer struct {
	delegate  installer.Installer
	extractor *Extractor
	store     *Store
	log       *logrus.Logger
}

var _ installer.Installer = (*Installer)(nil)

// NewInstaller creates a plugin installer. Handle deprecation warnings are
// written to out.
func NewInstaller(delegate installer.Installer, store *Store, out IO, log *logrus.Logger) *Installer {
	if log == nil {
		log = logrus.New()
	}
	return &Installer{
		delegate:  delegate,
		extractor: NewExtractor(store.VendorDir(), out),
		store:     store,
		log:       log,
	}
}

// Extractor returns the extractor used to build records.
func (i *Installer) Extractor() *Extractor {
	return i.extractor
}

// Supports returns true only for the plugin package type.
func (i *Installer) Supports(packageType string) bool {
	return packageType == manifest.TypePlugin
}

// InstallPath delegates to the wrapped installer.
func (i *Installer) InstallPath(pkg *manifest.Package) string {
	return i.delegate.InstallPath(pkg)
}

// Install installs the package files and registers the plugin. Invalid
// metadata uninstalls the files again.
func (i *Installer) Install(repo installer.Repository, pkg *manifest.Package) error {
	if err := i.delegate.Install(repo, pkg); err != nil {
		return err
	}

	err := i.addPlugin(pkg)
	if err == nil || !IsInvalidPlugin(err) {
		return err
	}

	i.log.WithFields(logrus.Fields{"package": pkg.PrettyName, "reason": err}).Warn("rolling back plugin install")
	if rbErr := i.delegate.Uninstall(repo, pkg); rbErr != nil {
		return errors.Join(err, fmt.Errorf("rolling back install of %s: %w", pkg.PrettyName, rbErr))
	}
	return err
}

// Update moves the package files from initial to target and replaces the
// registry entry. Invalid target metadata restores the initial files and
// the initial registry entry.
func (i *Installer) Update(repo installer.Repository, initial, target *manifest.Package) error {
	if err := i.delegate.Update(repo, initial, target); err != nil {
		return err
	}

	previous, err := i.store.Unregister(initial.Name())
	if err != nil {
		return err
	}

	err = i.addPlugin(target)
	if err == nil || !IsInvalidPlugin(err) {
		return err
	}

	i.log.WithFields(logrus.Fields{"package": target.PrettyName, "reason": err}).Warn("rolling back plugin update")
	errs := []error{err}
	if rbErr := i.delegate.Update(repo, target, initial); rbErr != nil {
		errs = append(errs, fmt.Errorf("rolling back update of %s: %w", target.PrettyName, rbErr))
	}
	if previous != nil {
		if rbErr := i.store.Register(initial.Name(), previous); rbErr != nil {
			errs = append(errs, fmt.Errorf("restoring registry entry for %s: %w", initial.PrettyName, rbErr))
		}
	}
	if len(errs) == 1 {
		return err
	}
	return errors.Join(errs...)
}

// Uninstall removes the package files and its registry entry, if any.
func (i *Installer) Uninstall(repo installer.Repository, pkg *manifest.Package) error {
	if err := i.delegate.Uninstall(repo, pkg); err != nil {
		return err
	}
	if _, err := i.store.Unregister(pkg.Name()); err != nil {
		return err
	}
	return nil
}

// addPlugin builds the package's record and registers it.
func (i *Installer) addPlugin(pkg *manifest.Package) error {
	rec, err := i.extractor.Extract(pkg, i.delegate.InstallPath(pkg))
	if err != nil {
		return err
	}
	i.log.WithFields(logrus.Fields{"package": pkg.PrettyName, "class": rec.Class, "handle": rec.Handle}).Debug("registering plugin")
	return i.store.Register(pkg.Name(), rec)
}
