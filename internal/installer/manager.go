package installer

import (
	"errors"
	"fmt"

	"github.com/pawkit/pawx/internal/manifest"
	"github.com/sirupsen/logrus"
)

// Manager routes package operations to the installer registered for the
// package's type. Installers added later take precedence.
type Manager struct {
	installers []Installer
	log        *logrus.Logger
}

// NewManager creates a manager with no installers.
func NewManager(log *logrus.Logger) *Manager {
	if log == nil {
		log = logrus.New()
	}
	return &Manager{log: log}
}

// AddInstaller registers an installer ahead of the existing ones.
func (m *Manager) AddInstaller(i Installer) {
	m.installers = append([]Installer{i}, m.installers...)
}

// Installer returns the first installer that supports packageType.
func (m *Manager) Installer(packageType string) (Installer, error) {
	for _, i := range m.installers {
		if i.Supports(packageType) {
			return i, nil
		}
	}
	return nil, fmt.Errorf("no installer supports package type %q", packageType)
}

// InstallPath returns where pkg is (or would be) installed.
func (m *Manager) InstallPath(pkg *manifest.Package) (string, error) {
	i, err := m.Installer(pkg.PackageType())
	if err != nil {
		return "", err
	}
	return i.InstallPath(pkg), nil
}

// Install installs pkg with its type's installer.
func (m *Manager) Install(repo Repository, pkg *manifest.Package) error {
	i, err := m.Installer(pkg.PackageType())
	if err != nil {
		return err
	}
	m.log.WithFields(logrus.Fields{"package": pkg.PrettyName, "version": pkg.Version, "type": pkg.PackageType()}).Info("installing")
	return m.persist(repo, i.Install(repo, pkg))
}

// Update moves an installed package from initial to target. When the package
// type changed between versions the initial installer removes it and the
// target installer installs the new version.
func (m *Manager) Update(repo Repository, initial, target *manifest.Package) error {
	from, err := m.Installer(initial.PackageType())
	if err != nil {
		return err
	}
	to, err := m.Installer(target.PackageType())
	if err != nil {
		return err
	}
	m.log.WithFields(logrus.Fields{"package": target.PrettyName, "from": initial.Version, "to": target.Version}).Info("updating")

	if from == to {
		return m.persist(repo, from.Update(repo, initial, target))
	}

	if err := from.Uninstall(repo, initial); err != nil {
		return m.persist(repo, err)
	}
	return m.persist(repo, to.Install(repo, target))
}

// Uninstall removes pkg with its type's installer.
func (m *Manager) Uninstall(repo Repository, pkg *manifest.Package) error {
	i, err := m.Installer(pkg.PackageType())
	if err != nil {
		return err
	}
	m.log.WithFields(logrus.Fields{"package": pkg.PrettyName, "version": pkg.Version}).Info("removing")
	return m.persist(repo, i.Uninstall(repo, pkg))
}

// persist writes the repository after an operation, whether or not it
// succeeded, so rolled-back state is recorded too.
func (m *Manager) persist(repo Repository, opErr error) error {
	w, ok := repo.(writer)
	if !ok {
		return opErr
	}
	if err := w.Write(); err != nil {
		return errors.Join(opErr, fmt.Errorf("writing installed repository: %w", err))
	}
	return opErr
}
