// Package branding provides compile-time identity values for the CLI.
//
// The values live in branding.yaml next to this file and are baked into the
// binary with //go:embed. Hard defaults apply when a key is missing.
package branding

import (
	_ "embed"
	"strings"
	"sync"

	"go.yaml.in/yaml/v3"
)

//go:embed branding.yaml
var rawBranding []byte

var (
	once     sync.Once
	defaults brand
)

type brand struct {
	CLIName      string `yaml:"cli_name"`
	DisplayName  string `yaml:"display_name"`
	Description  string `yaml:"description"`
	HomeDir      string `yaml:"home_dir"`
	EnvPrefix    string `yaml:"env_prefix"`
	GoModule     string `yaml:"go_module"`
	RegistryFile string `yaml:"registry_file"`
}

func load() {
	once.Do(func() {
		defaults = brand{
			CLIName:      "pawx",
			DisplayName:  "Pawx",
			Description:  "Source-based package manager with a plugin registry",
			HomeDir:      ".pawx",
			EnvPrefix:    "PAWX",
			GoModule:     "github.com/pawkit/pawx",
			RegistryFile: "pawx/plugins.yaml",
		}
		_ = yaml.Unmarshal(rawBranding, &defaults)
	})
}

// CLIName returns the root command name (e.g., "pawx").
func CLIName() string { load(); return defaults.CLIName }

// DisplayName returns the human-readable product name.
func DisplayName() string { load(); return defaults.DisplayName }

// Description returns the short product description.
func Description() string { load(); return defaults.Description }

// HomeDir returns the dot-directory name under $HOME (e.g., ".pawx").
func HomeDir() string { load(); return defaults.HomeDir }

// EnvPrefix returns the environment variable prefix (e.g., "PAWX").
func EnvPrefix() string { load(); return defaults.EnvPrefix }

// GoModule returns the Go module path.
func GoModule() string { load(); return defaults.GoModule }

// RegistryFile returns the plugin registry location relative to the vendor
// directory, slash-separated.
func RegistryFile() string { load(); return defaults.RegistryFile }

// EnvVar returns a fully qualified env var name, e.g., EnvVar("vendor-dir") → "PAWX_VENDOR_DIR".
func EnvVar(suffix string) string {
	load()
	return defaults.EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(suffix, "-", "_"))
}
