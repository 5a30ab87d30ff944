//go:build integration

package integration_test

import (
	"os"
	"path/filepath"
	"testing"
)

// testEnv holds paths to isolated test directories.
type testEnv struct {
	HomeDir   string // HOME, holds .pawx/config.yaml
	VendorDir string // install root
	SourceDir string // package source with vendor/name/version layout
}

// setupTestEnv creates isolated temp directories and points HOME and
// PAWX_VENDOR_DIR at them for the duration of the test.
func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		HomeDir:   t.TempDir(),
		VendorDir: filepath.Join(t.TempDir(), "vendor"),
		SourceDir: t.TempDir(),
	}

	t.Setenv("HOME", env.HomeDir)
	t.Setenv("PAWX_VENDOR_DIR", env.VendorDir)
	return env
}

// setupSource creates a synthetic source with a library and three plugin
// versions; 2.0.0 carries an invalid handle.
func setupSource(t *testing.T, root string) {
	t.Helper()

	writeManifest(t, root, "acme/util/1.0.0", `name: acme/util
version: "1.0.0"
description: Shared helpers
`)
	writeFile(t, filepath.Join(root, "acme/util/1.0.0/lib/helpers.php"), "<?php\n")

	for _, v := range []struct{ version, handle string }{
		{"1.0.0", "blog"},
		{"2.0.0", "2blog"},
		{"3.0.0", "BlogTools"},
	} {
		dir := "acme/blog/" + v.version
		writeManifest(t, root, dir, `name: acme/blog
type: plugin
version: "`+v.version+`"
authors:
  - name: Jane Roe
extra:
  handle: `+v.handle+`
autoload:
  psr-4:
    Acme\Blog\: src/
`)
		writeFile(t, filepath.Join(root, dir, "src/Plugin.php"), "<?php // "+v.version+"\n")
	}
}

func writeManifest(t *testing.T, root, rel, content string) {
	t.Helper()
	writeFile(t, filepath.Join(root, rel, "package.yaml"), content)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("creating %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return string(data)
}

func assertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if err != nil {
		t.Errorf("expected directory %s to exist: %v", path, err)
		return
	}
	if !info.IsDir() {
		t.Errorf("expected %s to be a directory", path)
	}
}

func assertNotExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("expected %s to not exist (err=%v)", path, err)
	}
}
