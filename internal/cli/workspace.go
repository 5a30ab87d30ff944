package cli

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/pawkit/pawx/internal/branding"
	"github.com/pawkit/pawx/internal/config"
	"github.com/pawkit/pawx/internal/installer"
	"github.com/pawkit/pawx/internal/plugin"
	"github.com/pawkit/pawx/internal/repository"
	"github.com/pawkit/pawx/internal/source"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// workspace bundles everything a command needs to operate on one vendor
// directory.
type workspace struct {
	vendorDir string
	sources   []source.Source
	indexPath string
	repo      *repository.Installed
	store     *plugin.Store
	manager   *installer.Manager
	log       *logrus.Logger
}

// resolve finds the package for an install or update request through the
// workspace's source index.
func (ws *workspace) resolve(request string) (*source.Candidate, error) {
	return source.ResolveCached(request, ws.sources, ws.indexPath)
}

// openWorkspace resolves the vendor directory and sources from flags and
// config, loads the installed repository and wires the installers: the
// library installer handles every type and the plugin installer, added
// last, takes precedence for plugins.
func openWorkspace(cmd *cobra.Command) (*workspace, error) {
	vendorDir, err := resolveVendorDir()
	if err != nil {
		return nil, err
	}

	log := newLogger(cmd.ErrOrStderr())

	stateDir := filepath.Join(vendorDir, filepath.Dir(filepath.FromSlash(branding.RegistryFile())))
	repo, err := repository.Load(filepath.Join(stateDir, repository.FileName))
	if err != nil {
		return nil, fmt.Errorf("loading installed packages: %w", err)
	}

	store := plugin.NewStore(vendorDir, plugin.WithFile(filepath.Join(vendorDir, filepath.FromSlash(branding.RegistryFile()))))
	library := installer.NewLibraryInstaller(vendorDir, log)

	manager := installer.NewManager(log)
	manager.AddInstaller(library)
	manager.AddInstaller(plugin.NewInstaller(library, store, plugin.NewConsoleIO(cmd.ErrOrStderr()), log))

	return &workspace{
		vendorDir: vendorDir,
		sources:   resolveSources(),
		indexPath: filepath.Join(stateDir, source.IndexFileName),
		repo:      repo,
		store:     store,
		manager:   manager,
		log:       log,
	}, nil
}

// resolveVendorDir returns the absolute install root. The flag wins over
// PAWX_VENDOR_DIR, which wins over the config file.
func resolveVendorDir() (string, error) {
	dir := flagVendorDir
	if dir == "" {
		dir = config.VendorDir()
	}
	if dir == "" {
		dir = config.DefaultVendorDir
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving vendor directory %s: %w", dir, err)
	}
	return abs, nil
}

// resolveSources parses --source flags followed by configured sources.
// Earlier sources take priority.
func resolveSources() []source.Source {
	var out []source.Source
	for _, entry := range append(append([]string(nil), flagSources...), config.Sources()...) {
		out = append(out, parseSource(entry))
	}
	return out
}

// parseSource parses "dir" or "name=dir".
func parseSource(entry string) source.Source {
	name, dir, ok := strings.Cut(entry, "=")
	if !ok {
		dir = entry
		name = filepath.Base(filepath.Clean(entry))
	}
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	return source.Source{Name: name, BasePath: dir}
}

// newLogger builds the process logger. --verbose forces debug; otherwise
// the log-level config key applies.
func newLogger(w io.Writer) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(w)
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})

	level, err := logrus.ParseLevel(config.LogLevel())
	if err != nil {
		level = logrus.InfoLevel
	}
	if flagVerbose {
		level = logrus.DebugLevel
	}
	log.SetLevel(level)
	return log
}
