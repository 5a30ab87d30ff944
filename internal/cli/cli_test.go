package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/pawkit/pawx/internal/plugin"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetFlags restores every flag in the command tree to its default so
// consecutive Execute calls do not leak state.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

type cliEnv struct {
	vendor string
	source string
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	viper.Reset()
	t.Cleanup(viper.Reset)

	env := &cliEnv{
		vendor: filepath.Join(t.TempDir(), "vendor"),
		source: t.TempDir(),
	}
	for _, v := range []struct{ version, handle string }{
		{"1.0.0", "blog"},
		{"1.1.0", "blog"},
		{"2.0.0", "2blog"},
	} {
		dir := filepath.Join(env.source, "acme", "blog", v.version)
		writeTestFile(t, filepath.Join(dir, "package.yaml"), "name: acme/blog\ntype: plugin\nversion: \""+v.version+"\"\n"+
			"extra:\n  handle: "+v.handle+"\nautoload:\n  psr-4:\n    Acme\\Blog\\: src/\n")
		writeTestFile(t, filepath.Join(dir, "src", "Plugin.php"), "<?php // "+v.version+"\n")
	}
	writeTestFile(t, filepath.Join(env.source, "acme", "util", "package.yaml"), "name: acme/util\nversion: \"0.1.0\"\n")
	return env
}

func writeTestFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

// run executes the root command against the env's vendor dir and source.
func (e *cliEnv) run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(append(args, "--vendor-dir", e.vendor, "--source", "local="+e.source))
	err := rootCmd.Execute()
	return out.String(), errOut.String(), err
}

func (e *cliEnv) registry(t *testing.T) plugin.Registry {
	t.Helper()
	reg, err := plugin.NewStore(e.vendor).Load()
	require.NoError(t, err)
	return reg
}

func TestInstallListAndUninstall(t *testing.T) {
	env := newCLIEnv(t)

	out, _, err := env.run(t, "install", "acme/blog:~1.0.0", "acme/util")
	require.NoError(t, err)
	assert.Contains(t, out, "Installing acme/blog (1.0.0)")
	assert.Contains(t, out, "Installing acme/util (0.1.0)")
	assert.Contains(t, out, "Installed 2 package(s)")

	out, _, err = env.run(t, "install", "acme/blog:~1.0.0")
	require.NoError(t, err)
	assert.Contains(t, out, "already installed")

	_, _, err = env.run(t, "install", "acme/blog")
	assert.ErrorContains(t, err, "update")

	out, _, err = env.run(t, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "acme/blog")
	assert.Contains(t, out, "plugin")
	assert.Contains(t, out, "library")

	out, _, err = env.run(t, "list", "--json")
	require.NoError(t, err)
	var entries []listEntry
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, filepath.Join(env.vendor, "acme", "blog"), entries[0].Path)

	reg := env.registry(t)
	require.Contains(t, reg, "acme/blog")
	assert.NotContains(t, reg, "acme/util")

	_, _, err = env.run(t, "uninstall", "acme/blog")
	require.NoError(t, err)
	assert.Empty(t, env.registry(t))

	_, _, err = env.run(t, "uninstall", "acme/blog")
	assert.Error(t, err)
}

func TestUpdateDirectionsAndRollback(t *testing.T) {
	env := newCLIEnv(t)
	_, _, err := env.run(t, "install", "acme/blog:1.0.0")
	require.NoError(t, err)

	out, _, err := env.run(t, "update", "acme/blog:^1.0")
	require.NoError(t, err)
	assert.Contains(t, out, "Upgrading acme/blog (1.0.0 => 1.1.0)")

	out, _, err = env.run(t, "update", "acme/blog:1.0.0")
	require.NoError(t, err)
	assert.Contains(t, out, "Downgrading acme/blog (1.1.0 => 1.0.0)")

	out, _, err = env.run(t, "update", "acme/blog:1.0.0")
	require.NoError(t, err)
	assert.Contains(t, out, "up to date")

	before, err := os.ReadFile(filepath.Join(env.vendor, "pawx", "plugins.yaml"))
	require.NoError(t, err)

	_, _, err = env.run(t, "update", "acme/blog:2.0.0")
	require.Error(t, err)
	assert.True(t, plugin.IsInvalidPlugin(err))

	after, err := os.ReadFile(filepath.Join(env.vendor, "pawx", "plugins.yaml"))
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))
	assert.Equal(t, "1.0.0", env.registry(t)["acme/blog"].Version)
}

func TestUpdateSeesNewSourceVersions(t *testing.T) {
	env := newCLIEnv(t)
	_, _, err := env.run(t, "install", "acme/util")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(env.vendor, "pawx", "source-index.json"))

	out, _, err := env.run(t, "update", "acme/util")
	require.NoError(t, err)
	assert.Contains(t, out, "up to date")

	writeTestFile(t, filepath.Join(env.source, "acme", "util", "0.2.0", "package.yaml"), "name: acme/util\nversion: \"0.2.0\"\n")

	out, _, err = env.run(t, "update", "acme/util")
	require.NoError(t, err)
	assert.Contains(t, out, "Upgrading acme/util (0.1.0 => 0.2.0)")
}

func TestInstallInvalidPluginFails(t *testing.T) {
	env := newCLIEnv(t)

	_, _, err := env.run(t, "install", "acme/blog:2.0.0")
	require.Error(t, err)
	var invalid *plugin.InvalidPluginError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, plugin.ReasonInvalidHandle, invalid.Reason)

	assert.NoDirExists(t, filepath.Join(env.vendor, "acme", "blog"))
	out, _, err := env.run(t, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No packages installed.")
}

func TestPluginsCommands(t *testing.T) {
	env := newCLIEnv(t)

	out, _, err := env.run(t, "plugins", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No plugins registered.")

	_, _, err = env.run(t, "install", "acme/blog:1.1.0")
	require.NoError(t, err)

	out, _, err = env.run(t, "plugins", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "acme/blog")
	assert.Contains(t, out, `Acme\Blog\Plugin`)

	out, _, err = env.run(t, "plugins", "list", "--json")
	require.NoError(t, err)
	var reg map[string]map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &reg))
	assert.Equal(t, "blog", reg["acme/blog"]["handle"])

	out, _, err = env.run(t, "plugins", "show", "acme/blog")
	require.NoError(t, err)
	assert.Contains(t, out, "handle: blog")
	assert.Contains(t, out, "version: 1.1.0")

	out, _, err = env.run(t, "plugins", "show", "Acme/Blog")
	require.NoError(t, err)
	assert.Contains(t, out, "acme/blog")
	assert.Contains(t, out, "handle: blog")

	_, _, err = env.run(t, "plugins", "show", "acme/missing")
	assert.Error(t, err)

	out, _, err = env.run(t, "plugins", "check")
	require.NoError(t, err)
	assert.Contains(t, out, "1 plugin(s) OK")

	require.NoError(t, os.RemoveAll(filepath.Join(env.vendor, "acme", "blog", "src")))
	out, _, err = env.run(t, "plugins", "check")
	assert.Error(t, err)
	assert.Contains(t, out, "base path")
	assert.Contains(t, out, "@Acme/Blog")
}

func TestValidateCommand(t *testing.T) {
	env := newCLIEnv(t)

	out, _, err := env.run(t, "validate", filepath.Join(env.source, "acme", "blog", "1.1.0"))
	require.NoError(t, err)
	assert.Contains(t, out, `Acme\Blog\Plugin`)
	assert.Contains(t, out, "acme/blog (plugin) is valid")

	out, _, err = env.run(t, "validate", filepath.Join(env.source, "acme", "blog", "2.0.0", "package.yaml"))
	assert.True(t, plugin.IsInvalidPlugin(err))
	assert.Contains(t, out, plugin.ReasonInvalidHandle)

	bad := filepath.Join(t.TempDir(), "package.yaml")
	writeTestFile(t, bad, "name: acme/bad\nversion: 1\n")
	_, _, err = env.run(t, "validate", bad)
	assert.ErrorContains(t, err, "schema issue")
}

func TestVersionCommand(t *testing.T) {
	env := newCLIEnv(t)
	buildVersion, buildCommit, buildDate = "1.2.3", "abc123", "2026-10-19"

	out, _, err := env.run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "pawx version 1.2.3 (commit: abc123, built: 2026-10-19)\n", out)

	out, _, err = env.run(t, "version", "--short")
	require.NoError(t, err)
	assert.Equal(t, "1.2.3\n", out)
}

func TestConfigCommands(t *testing.T) {
	env := newCLIEnv(t)

	out, _, err := env.run(t, "config", "set", "log-level", "debug")
	require.NoError(t, err)
	assert.Contains(t, out, "Set log-level = debug")

	out, _, err = env.run(t, "config", "get", "log-level")
	require.NoError(t, err)
	assert.Equal(t, "debug\n", out)
}

func TestParseSource(t *testing.T) {
	tests := []struct {
		entry    string
		wantName string
		wantBase string
	}{
		{"/srv/packages", "packages", "/srv/packages"},
		{"mirror=/srv/mirror", "mirror", "/srv/mirror"},
		{"/srv/trailing/", "trailing", "/srv/trailing"},
	}
	for _, tt := range tests {
		got := parseSource(tt.entry)
		assert.Equal(t, tt.wantName, got.Name, tt.entry)
		assert.Equal(t, tt.wantBase, got.BasePath, tt.entry)
	}
}
